// Package pia6532 implements the RAM, interval timer and port registers of a 6532 PIA
// as described in http://www.ionpool.net/arcade/gottlieb/technical/datasheets/R6532_datasheet.pdf
// and http://www.devili.iki.fi/pub/Commodore/docs/datasheets/CSG/6532-8102.zip
//
// The chip is exposed as two memory.Bank's (RAM and I/O) so it can be placed
// on a memory.Mapped bus. Its timer interrupt drives an irq.Sender. Port inputs
// come from an io.Port8 installed with Connect. Pins with nothing attached read
// as pulled high. PA7 edge detection isn't implemented.
package pia6532

import (
	"fmt"
	"math/rand"

	"github.com/jmchacon/m6502/io"
	"github.com/jmchacon/m6502/irq"
	"github.com/jmchacon/m6502/memory"
)

var (
	_ = memory.Bank(&Chip{})
	_ = memory.Bank(&ioRam{})
	_ = irq.Sender(&Chip{})
)

const (
	kREAD_PORT_A       = uint16(0x0000)
	kREAD_PORT_A_DDR   = uint16(0x0001)
	kREAD_PORT_B       = uint16(0x0002)
	kREAD_PORT_B_DDR   = uint16(0x0003)
	kREAD_TIMER_NO_INT = uint16(0x0004)
	kREAD_INT          = uint16(0x0005)
	kREAD_TIMER_INT    = uint16(0x000C)

	kWRITE_PORT_A            = uint16(0x0000)
	kWRITE_PORT_A_DDR        = uint16(0x0001)
	kWRITE_PORT_B            = uint16(0x0002)
	kWRITE_PORT_B_DDR        = uint16(0x0003)
	kWRITE_TIMER_1_NO_INT    = uint16(0x0014)
	kWRITE_TIMER_8_NO_INT    = uint16(0x0015)
	kWRITE_TIMER_64_NO_INT   = uint16(0x0016)
	kWRITE_TIMER_1024_NO_INT = uint16(0x0017)
	kWRITE_TIMER_1_INT       = uint16(0x001C)
	kWRITE_TIMER_8_INT       = uint16(0x001D)
	kWRITE_TIMER_64_INT      = uint16(0x001E)
	kWRITE_TIMER_1024_INT    = uint16(0x001F)

	kMASK_INT = uint8(0x80)

	kMASK_RAM        = uint16(0x7F)
	kMASK_RW         = uint16(0x1F)
	kMASK_INT_BIT    = uint16(0x08)
	kMASK_TIMER_MULT = uint16(0x07)
	kMASK_TIMER      = uint16(0x14) // Bits which must be set for a timer write.

	kMASK_TIMER_MULT1    = uint16(0x04)
	kMASK_TIMER_MULT8    = uint16(0x05)
	kMASK_TIMER_MULT64   = uint16(0x06)
	kMASK_TIMER_MULT1024 = uint16(0x07)

	kTIMER_MULT1    = uint16(0x0001)
	kTIMER_MULT8    = uint16(0x0008)
	kTIMER_MULT64   = uint16(0x0040)
	kTIMER_MULT1024 = uint16(0x0400)
)

// ioRam is used as an abstraction for getting at the I/O portion of the PIA
// through a memory.Bank interface.
type ioRam struct {
	p *Chip
}

// Chip implements the RAM, ports and timer of a 6532.
type Chip struct {
	clocks         int // Total number of clock cycles since start.
	ram            [128]uint8
	io             *ioRam
	portA          uint8    // Port A output register.
	portADDR       uint8    // Port A DDR register.
	portB          uint8    // Port B output register.
	portBDDR       uint8    // Port B DDR register.
	portAInput     io.Port8 // Input pins for port A. May be nil.
	portBInput     io.Port8 // Input pins for port B. May be nil.
	timer          uint8    // Current timer value.
	timerMult      uint16   // Timer value adjustment multiplier.
	timerMultCount uint16   // The current countdown for timerMult.
	timerExpired   bool     // Whether current timer countdown has hit the end.
	timerFlag      bool     // Timer interrupt flag. Set on expiry, cleared by reading or writing the timer.
	interrupt      bool     // Whether timer interrupts are raised or not.
}

// Init returns a powered on 6532.
func Init() *Chip {
	p := &Chip{}
	p.io = &ioRam{p}
	p.PowerOn()
	return p
}

// PowerOn implements the memory interface for ram.
// It performs a full power-on/reset for the 6532.
func (p *Chip) PowerOn() {
	for i := range p.ram {
		p.ram[i] = uint8(rand.Intn(256))
	}
	p.Reset()
}

// Reset does a soft reset on the 6532 based on holding RES low on the chip.
func (p *Chip) Reset() {
	p.portA = 0x00
	p.portADDR = 0x00
	p.portB = 0x00
	p.portBDDR = 0x00
	p.timer = uint8(rand.Intn(256))
	// Evidently the real hardware starts up in this mode
	// which some implementation depend on to loop watching for
	// a zero crossing without bothering to program the chip first.
	p.timerMult = kTIMER_MULT1024
	p.timerMultCount = kTIMER_MULT1024
	p.timerExpired = false
	p.timerFlag = false
	p.interrupt = false
}

// Connect installs the devices driving the input pins of each port. Either may be nil.
func (p *Chip) Connect(portA, portB io.Port8) {
	p.portAInput = portA
	p.portBInput = portB
}

// IO returns a memory.Bank which interfaces to the I/O portion of the PIA.
func (p *Chip) IO() memory.Bank {
	return p.io
}

// Read implements the interface for memory.Bank and gives access to the RAM
// portion of the PIA. Use IO() to get an inteface to the I/O section.
func (p *Chip) Read(addr uint16) uint8 {
	return p.ram[addr&kMASK_RAM]
}

// ReadOnly implements the interface for memory.Bank. RAM reads have no side effects.
func (p *Chip) ReadOnly(addr uint16) uint8 {
	return p.ram[addr&kMASK_RAM]
}

// Write implements the interface for memory.Bank and gives access to the RAM
// portion of the PIA. Use IO() to get an inteface to the I/O section.
func (p *Chip) Write(addr uint16, val uint8) {
	p.ram[addr&kMASK_RAM] = val
}

// Read implements the interface for memory.Bank and gives access to the I/O
// portion of the PIA.
func (i *ioRam) Read(addr uint16) uint8 {
	return i.p.read(addr, true)
}

// ReadOnly implements the interface for memory.Bank. Unlike Read, reading the
// timer this way doesn't acknowledge the timer interrupt.
func (i *ioRam) ReadOnly(addr uint16) uint8 {
	return i.p.read(addr, false)
}

// Write implements the interface for memory.Bank and gives access to the I/O
// portion of the PIA.
func (i *ioRam) Write(addr uint16, val uint8) {
	i.p.write(addr, val)
}

// PowerOn for the I/O bank is a no-op. The chip's PowerOn handles it.
func (i *ioRam) PowerOn() {}

// read returns the internal register at the given address. Internal addresses
// are masked to 5 bits. If effects is false the read has no side effects.
func (p *Chip) read(addr uint16, effects bool) uint8 {
	// Strip to 5 bits for internal regs.
	addr &= kMASK_RW

	// There's a lot of aliasing due to don't care bits.
	switch addr {
	case kREAD_PORT_A, 0x08, 0x10, 0x18:
		return portValue(p.portA, p.portADDR, p.portAInput)
	case kREAD_PORT_A_DDR, 0x09, 0x11, 0x19:
		return p.portADDR
	case kREAD_PORT_B, 0x0A, 0x12, 0x1A:
		return portValue(p.portB, p.portBDDR, p.portBInput)
	case kREAD_PORT_B_DDR, 0x0B, 0x13, 0x1B:
		return p.portBDDR
	case kREAD_TIMER_NO_INT, 0x06, 0x14, 0x16, kREAD_TIMER_INT, 0x0E, 0x1C, 0x1E:
		if effects {
			// Reading the timer acknowledges the interrupt and
			// A3 determines whether it's enabled going forward.
			p.timerFlag = false
			p.interrupt = addr&kMASK_INT_BIT == kMASK_INT_BIT
		}
		return p.timer
	}
	// Everything else is the interrupt flag register.
	var ret uint8
	if p.timerFlag {
		ret |= kMASK_INT
	}
	return ret
}

// portValue combines the output register for pins set as outputs with the
// input pins. Unconnected inputs float high.
func portValue(out, ddr uint8, in io.Port8) uint8 {
	pins := uint8(0xFF)
	if in != nil {
		pins = in.Input()
	}
	return (out & ddr) | (pins &^ ddr)
}

// write stores the value at the given internal address. Internal addresses
// are masked to 5 bits.
func (p *Chip) write(addr uint16, val uint8) {
	// Strip to 5 bits for internal regs
	addr &= kMASK_RW

	if addr&kMASK_TIMER == kMASK_TIMER {
		p.timer = val
		p.timerExpired = false
		p.timerFlag = false
		p.interrupt = addr&kMASK_INT_BIT == kMASK_INT_BIT
		switch addr & kMASK_TIMER_MULT {
		case kMASK_TIMER_MULT1:
			p.timerMult = kTIMER_MULT1
		case kMASK_TIMER_MULT8:
			p.timerMult = kTIMER_MULT8
		case kMASK_TIMER_MULT64:
			p.timerMult = kTIMER_MULT64
		case kMASK_TIMER_MULT1024:
			p.timerMult = kTIMER_MULT1024
		}
		p.timerMultCount = p.timerMult
		return
	}

	// There's a lot of aliasing due to don't care bits.
	switch addr {
	case kWRITE_PORT_A, 0x08, 0x10, 0x18:
		p.portA = val
	case kWRITE_PORT_A_DDR, 0x09, 0x11, 0x19:
		p.portADDR = val
	case kWRITE_PORT_B, 0x0A, 0x12, 0x1A:
		p.portB = val
	case kWRITE_PORT_B_DDR, 0x0B, 0x13, 0x1B:
		p.portBDDR = val
	}
	// Edge detect control writes are accepted and ignored since PA7 has nothing attached.
}

// Raised implements the irq.Sender interface for determining interrupt state when called.
func (p *Chip) Raised() bool {
	return p.interrupt && p.timerFlag
}

// Tick does a single clock cycle on the chip which decrements the timer.
func (p *Chip) Tick() {
	p.clocks++

	// If we expired the timer free runs (and wraps around) until the timer value gets reset.
	if p.timerExpired {
		p.timer--
		return
	}
	// When the multiplier resets we decrement the timer.
	// This allows it to run at p.timer == 0x00 until the
	// multiplier is done.
	if p.timerMultCount == p.timerMult {
		p.timer--
	}
	p.timerMultCount--
	if p.timerMultCount == 0x0000 {
		p.timerMultCount = p.timerMult
	}
	if p.timer == 0xFF {
		p.timerExpired = true
		p.timerFlag = true
	}
}

// Debug returns a one line dump of the timer state.
func (p *Chip) Debug() string {
	return fmt.Sprintf("%.6d timer: %.2X mult: %.4X multCount: %.4X expired: %t flag: %t", p.clocks, p.timer, p.timerMult, p.timerMultCount, p.timerExpired, p.timerFlag)
}
