// Package pic models the Intel 8259 programmable interrupt controller.
package pic

// Ports occupied by the controller.
const (
	CommandPort = 0x20
	DataPort    = 0x21
)

// Controller is an 8259 with a single-chip (PC/XT) configuration. Only the
// features a PC BIOS and DOS rely on are modelled.
type Controller struct {
	imr byte
	irr byte
	isr byte

	icwStep int
	icw     [5]byte

	// readISR selects ISR (true) or IRR (false) for command port reads.
	readISR bool

	// catchUp counts timer interrupts raised while a previous one was
	// still pending. A nonzero count re-arms line 0 on its EOI.
	catchUp int

	onEOI func()
}

// New creates a controller with all lines unmasked and vector base 0.
func New() *Controller {
	return &Controller{}
}

// OnEOI registers a callback run on every EOI command. The keyboard uses it
// to learn that its interrupt was acknowledged.
func (c *Controller) OnEOI(f func()) {
	c.onEOI = f
}

// DoIRQ raises a request on line. Repeated requests before service leave a
// single request bit set.
func (c *Controller) DoIRQ(line int) {
	bit := byte(1) << (uint(line) & 7)
	if line == 0 && c.irr&bit != 0 {
		c.catchUp++
	}
	c.irr |= bit
}

// Pending reports whether any unmasked request is waiting.
func (c *Controller) Pending() bool {
	return c.irr&^c.imr != 0
}

// NextIntr moves the lowest-numbered eligible request from IRR to ISR and
// returns its vector. Callers must check Pending first; with nothing
// eligible it returns the vector base unchanged.
func (c *Controller) NextIntr() byte {
	eligible := c.irr &^ c.imr
	for i := uint(0); i < 8; i++ {
		bit := byte(1) << i
		if eligible&bit != 0 {
			c.irr &^= bit
			c.isr |= bit
			return c.icw[2] + byte(i)
		}
	}
	return c.icw[2]
}

// IRR returns the interrupt request register.
func (c *Controller) IRR() byte { return c.irr }

// ISR returns the in-service register.
func (c *Controller) ISR() byte { return c.isr }

// IMR returns the interrupt mask register.
func (c *Controller) IMR() byte { return c.imr }

// SetIMR replaces the interrupt mask register.
func (c *Controller) SetIMR(v byte) { c.imr = v }

// VectorBase returns the vector offset programmed by ICW2.
func (c *Controller) VectorBase() byte { return c.icw[2] }

// CatchUp returns the number of timer interrupts waiting to be re-armed.
func (c *Controller) CatchUp() int { return c.catchUp }

// ReadPort implements ports.Handler.
func (c *Controller) ReadPort(port uint16) (byte, bool) {
	if port&1 == 0 {
		if c.readISR {
			return c.isr, true
		}
		return c.irr, true
	}
	return c.imr, true
}

// WritePort implements ports.Handler.
func (c *Controller) WritePort(port uint16, value byte) {
	if port&1 == 0 {
		c.writeCommand(value)
		return
	}
	c.writeData(value)
}

func (c *Controller) writeCommand(value byte) {
	if value&0x10 != 0 {
		c.icwStep = 1
		c.imr = 0
		c.icw[c.icwStep] = value
		c.icwStep++
		return
	}

	if value&0x98 == 0x08 && value&0x02 != 0 {
		c.readISR = value&0x01 != 0
	}

	if value&0x20 != 0 {
		c.eoi()
	}
}

// eoi clears the highest priority in-service bit. Re-arming line 0 when
// timer ticks were lost is a compatibility workaround for guests that
// service IRQ0 slowly, not 8259 behaviour.
func (c *Controller) eoi() {
	if c.onEOI != nil {
		c.onEOI()
	}

	for i := uint(0); i < 8; i++ {
		bit := byte(1) << i
		if c.isr&bit == 0 {
			continue
		}
		c.isr &^= bit
		if i == 0 && c.catchUp > 0 {
			c.catchUp = 0
			c.irr |= 1
		}
		return
	}
}

func (c *Controller) writeData(value byte) {
	if c.icwStep == 3 && c.icw[1]&0x02 != 0 {
		// Single mode: there is no ICW3.
		c.icwStep = 4
	}
	if c.icwStep == 4 && c.icw[1]&0x01 == 0 {
		// ICW4 not requested.
		c.icwStep = 5
	}
	if c.icwStep > 0 && c.icwStep < 5 {
		c.icw[c.icwStep] = value
		c.icwStep++
		return
	}
	c.imr = value
}
