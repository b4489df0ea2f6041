// Package dma models the Intel 8237 DMA controller as used by PC sound
// hardware.
package dma

// NumChannels is the number of 8-bit DMA channels on a PC/XT.
const NumChannels = 4

// Sentinel is returned by Read for masked or exhausted channels.
const Sentinel = 128

// Memory is the physical memory the controller transfers from.
type Memory interface {
	ReadByte(addr uint32) byte
}

// Channel holds one channel's registers.
type Channel struct {
	Page   uint32
	Addr   uint32
	Reload uint32
	Count  uint32

	// Direction set means addresses decrement.
	Direction bool
	AutoInit  bool
	WriteMode bool
	Masked    bool
}

// pageChannel returns the channel whose page register sits on port.
func pageChannel(port uint16) (int, bool) {
	switch port {
	case 0x87:
		return 0, true
	case 0x83:
		return 1, true
	case 0x81:
		return 2, true
	case 0x82:
		return 3, true
	}
	return 0, false
}

// Controller is a four-channel 8237.
type Controller struct {
	mem      Memory
	channels [NumChannels]Channel
	flipFlop bool
}

// New creates a controller reading from mem.
func New(mem Memory) *Controller {
	return &Controller{mem: mem}
}

// Channel returns a copy of a channel's registers.
func (c *Controller) Channel(i int) Channel {
	return c.channels[i&3]
}

// Reset clears every channel and the byte pointer flip-flop.
func (c *Controller) Reset() {
	c.channels = [NumChannels]Channel{}
	c.flipFlop = false
}

// Read transfers the next byte from memory for a device on channel.
// Masked or exhausted channels yield Sentinel.
func (c *Controller) Read(channel int) byte {
	ch := &c.channels[channel&3]
	if ch.Masked {
		return Sentinel
	}
	if ch.AutoInit && ch.Count > ch.Reload {
		ch.Count = 0
	}
	if ch.Count > ch.Reload {
		return Sentinel
	}

	var addr uint32
	if ch.Direction {
		addr = ch.Page + ch.Addr - ch.Count
	} else {
		addr = ch.Page + ch.Addr + ch.Count
	}
	ch.Count++

	return c.mem.ReadByte(addr)
}

// WritePort implements ports.Handler.
func (c *Controller) WritePort(port uint16, value byte) {
	if idx, ok := pageChannel(port); ok {
		c.channels[idx].Page = uint32(value) << 16
		return
	}

	switch {
	case port < 0x08:
		c.writeChannelRegister(port, value)
	case port == 0x0A:
		ch := &c.channels[value&3]
		ch.Masked = value&0x04 != 0
	case port == 0x0B:
		ch := &c.channels[value&3]
		ch.Direction = value&0x20 != 0
		ch.AutoInit = value&0x10 != 0
		ch.WriteMode = value&0x04 != 0
	case port == 0x0C:
		c.flipFlop = false
	case port == 0x0D:
		c.Reset()
		for i := range c.channels {
			c.channels[i].Masked = true
		}
	case port == 0x0F:
		for i := range c.channels {
			c.channels[i].Masked = value&(1<<uint(i)) != 0
		}
	}
}

func (c *Controller) writeChannelRegister(port uint16, value byte) {
	ch := &c.channels[port>>1]
	high := c.flipFlop
	c.flipFlop = !c.flipFlop

	if port&1 == 0 {
		if high {
			ch.Addr = ch.Addr&0x00FF | uint32(value)<<8
		} else {
			ch.Addr = ch.Addr&0xFF00 | uint32(value)
		}
		return
	}

	if high {
		ch.Reload = ch.Reload&0x00FF | uint32(value)<<8
		if ch.Reload == 0 {
			ch.Reload = 65536
		}
		ch.Count = 0
	} else {
		ch.Reload = ch.Reload&0xFF00 | uint32(value)
	}
}

// ReadPort implements ports.Handler.
func (c *Controller) ReadPort(port uint16) (byte, bool) {
	if idx, ok := pageChannel(port); ok {
		return byte(c.channels[idx].Page >> 16), true
	}
	if port >= 0x08 {
		return 0, true
	}

	ch := &c.channels[port>>1]
	high := c.flipFlop
	c.flipFlop = !c.flipFlop

	var v uint32
	if port&1 == 0 {
		v = ch.Addr
	} else {
		v = ch.Reload
	}
	if high {
		return byte(v >> 8), true
	}
	return byte(v), true
}
