package timing

import "time"

// TaskFunc runs one slice of work and returns how long to wait before it
// should run again.
type TaskFunc func() time.Duration

type task struct {
	name string
	run  TaskFunc
	next uint64
}

// TaskManager runs tasks cooperatively on one goroutine.
type TaskManager struct {
	clock Clock
	tasks []*task
}

// NewTaskManager creates an empty task manager.
func NewTaskManager(clock Clock) *TaskManager {
	return &TaskManager{clock: clock}
}

// Add registers a task. It is due immediately.
func (m *TaskManager) Add(name string, run TaskFunc) {
	m.tasks = append(m.tasks, &task{
		name: name,
		run:  run,
		next: m.clock.Ticks(),
	})
}

// Len returns the number of registered tasks.
func (m *TaskManager) Len() int {
	return len(m.tasks)
}

// Update runs every due task once and returns the time until the earliest
// next run.
func (m *TaskManager) Update() time.Duration {
	freq := m.clock.HostFreq()
	now := m.clock.Ticks()

	for _, t := range m.tasks {
		if now < t.next {
			continue
		}
		delay := t.run()
		if delay < 0 {
			delay = 0
		}
		t.next = m.clock.Ticks() + uint64(delay)*freq/uint64(time.Second)
	}

	if len(m.tasks) == 0 {
		return 0
	}

	now = m.clock.Ticks()
	var earliest uint64
	for i, t := range m.tasks {
		if i == 0 || t.next < earliest {
			earliest = t.next
		}
	}
	if earliest <= now {
		return 0
	}

	return time.Duration((earliest - now) * uint64(time.Second) / freq)
}
