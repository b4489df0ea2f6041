package timing

// Standard device rates in Hz.
const (
	ScanlineHz    = 31500
	PITStepHz     = 119318
	SoundSourceHz = 8000
	AdlibHz       = 48000
)

// Event is a periodic device service routine driven by the Scheduler.
type Event struct {
	name     string
	interval uint64
	last     uint64
	enabled  bool
	fired    uint64
	fire     func()

	sched *Scheduler
}

// Name returns the event's name.
func (e *Event) Name() string {
	return e.name
}

// Interval returns the number of host ticks between services.
func (e *Event) Interval() uint64 {
	return e.interval
}

// Fired returns how many times the event has been serviced.
func (e *Event) Fired() uint64 {
	return e.fired
}

// Enabled reports whether the event is serviced.
func (e *Event) Enabled() bool {
	return e.enabled
}

// SetInterval sets the number of host ticks between services. An interval
// of 0 suspends the event.
func (e *Event) SetInterval(ticks uint64) {
	e.interval = ticks
}

// SetRate sets the service rate in Hz. Non-positive rates suspend the
// event.
func (e *Event) SetRate(hz float64) {
	if hz <= 0 {
		e.interval = 0
		return
	}
	e.interval = uint64(float64(e.sched.clock.HostFreq()) / hz)
}

// SetEnabled turns servicing on or off. Enabling restarts the interval from
// the current host tick so that time spent disabled is not caught up.
func (e *Event) SetEnabled(on bool) {
	if on && !e.enabled {
		e.last = e.sched.clock.Ticks()
	}
	e.enabled = on
}

// Scheduler services device events from a single host clock. Every event
// keeps its own last-serviced marker which advances by exactly one interval
// per service, so a late Tick never fires an event twice and never loses
// fractional time.
type Scheduler struct {
	clock  Clock
	events []*Event
	start  uint64
	now    uint64
}

// NewScheduler creates a scheduler on the given clock.
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

// Clock returns the scheduler's host clock.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Every registers an enabled event serviced at hz. Events are serviced in
// registration order.
func (s *Scheduler) Every(name string, hz float64, fire func()) *Event {
	e := &Event{
		name:    name,
		enabled: true,
		fire:    fire,
		sched:   s,
		last:    s.clock.Ticks(),
	}
	e.SetRate(hz)
	s.events = append(s.events, e)
	return e
}

// Event returns the event registered under name, or nil.
func (s *Scheduler) Event(name string) *Event {
	for _, e := range s.events {
		if e.name == name {
			return e
		}
	}
	return nil
}

// Init captures the start tick and restarts every event from it.
func (s *Scheduler) Init() {
	s.start = s.clock.Ticks()
	s.now = s.start
	for _, e := range s.events {
		e.last = s.start
	}
}

// Tick services every enabled event whose interval has elapsed, at most
// once per call.
func (s *Scheduler) Tick() {
	s.now = s.clock.Ticks()

	for _, e := range s.events {
		if !e.enabled || e.interval == 0 {
			continue
		}
		if s.now < e.last+e.interval {
			continue
		}
		e.last += e.interval
		e.fired++
		e.fire()
	}
}

// Now returns the host tick observed by the last Tick or Init.
func (s *Scheduler) Now() uint64 {
	return s.now
}

// ElapsedMS returns the milliseconds since prevTick.
func (s *Scheduler) ElapsedMS(prevTick uint64) uint64 {
	return (s.clock.Ticks() - prevTick) * 1000 / s.clock.HostFreq()
}
