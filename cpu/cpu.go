// Package cpu defines the 6502 architecture and provides
// the methods needed to run the CPU and interface with it
// for emulation.
//
// Instructions execute atomically: on the first clock of an instruction
// it is fetched, decoded, its operand resolved and the operation applied.
// The remaining clocks only count down so the instruction reports as busy
// for its full cycle cost.
package cpu

import (
	"fmt"

	"github.com/jmchacon/m6502/irq"
	"github.com/jmchacon/m6502/memory"
)

// CPUType is an enumeration of the valid CPU types.
type CPUType int

const (
	CPU_UNIMPLMENTED CPUType = iota // Start of valid cpu enumerations.
	CPU_NMOS                        // Basic NMOS 6502 including undocumented opcodes.
	CPU_NMOS_RICOH                  // Ricoh version used in NES which is identical to NMOS except BCD mode is unimplmented.
	CPU_MAX                         // End of CPU enumerations.
)

const (
	NMI_VECTOR   = uint16(0xFFFA)
	RESET_VECTOR = uint16(0xFFFC)
	IRQ_VECTOR   = uint16(0xFFFE)

	// Reset, IRQ and NMI sequences all take 7 cycles.
	INTERRUPT_CYCLES = 7

	P_NEGATIVE  = uint8(0x80)
	P_OVERFLOW  = uint8(0x40)
	P_S1        = uint8(0x20) // Always 1
	P_B         = uint8(0x10) // Only set during BRK/PHP pushes. Never set in the register.
	P_DECIMAL   = uint8(0x8)
	P_INTERRUPT = uint8(0x4)
	P_ZERO      = uint8(0x2)
	P_CARRY     = uint8(0x1)

	kSTACK_PAGE = uint16(0x0100)
)

// ChipDef defines a 6502 and what it's wired to.
type ChipDef struct {
	// Cpu is the CPU variant to emulate.
	Cpu CPUType
	// Ram is the memory map the CPU reads and writes through.
	Ram memory.Bank
	// Irq if non-nil is polled at each instruction boundary as a level triggered IRQ line.
	Irq irq.Sender
	// Nmi if non-nil is polled at each instruction boundary as an edge triggered NMI line.
	Nmi irq.Sender
}

type Processor struct {
	A       uint8       // Accumulator register
	X       uint8       // X register
	Y       uint8       // Y register
	S       uint8       // Stack pointer
	P       uint8       // Processor status register
	PC      uint16      // Program counter
	CPUType CPUType     // Must be between UNIMPLEMENTED and MAX from above.
	Ram     memory.Bank // Memory the CPU is attached to.

	irq     irq.Sender
	nmi     irq.Sender
	nmiLine bool // Last sampled state of the nmi sender for edge detection.

	op         uint8       // The current working opcode.
	inst       Instruction // The decoded instruction for op.
	addrAbs    uint16      // Effective address computed by the addressing mode.
	addrRel    uint16      // Sign extended branch offset for relative mode.
	fetched    uint8       // Operand latched by Fetch.
	fetchDone  bool        // Whether fetched is valid for the current instruction.
	cycles     int         // Ticks remaining for the current instruction.
	irqPending bool        // Set by IRQ() until the next instruction boundary.
	nmiPending bool        // Set by NMI() until the next instruction boundary.
	halted     bool        // If stopped due to an error.
	haltErr    error       // Error returned on every Clock while halted.
	clocks     uint64      // Total clocks since power on.
}

// A few custom error types to distinguish why the CPU stopped

// UnimplementedOpcode represents an opcode with no assigned instruction.
type UnimplementedOpcode struct {
	Opcode uint8
}

// Error implements the interface for error types.
func (e UnimplementedOpcode) Error() string {
	return fmt.Sprintf("0x%.2X is an unimplemented opcode", e.Opcode)
}

// InvalidCPUState represents an invalid CPU state in the emulator.
type InvalidCPUState struct {
	Reason string
}

// Error implements the interface for error types.
func (e InvalidCPUState) Error() string {
	return fmt.Sprintf("invalid CPU state: %s", e.Reason)
}

// Init will create a new CPU of the type requested and return it in powered on state.
// The memory passed in will also be powered on.
func Init(def *ChipDef) (*Processor, error) {
	if def == nil {
		return nil, fmt.Errorf("nil ChipDef")
	}
	if def.Cpu <= CPU_UNIMPLMENTED || def.Cpu >= CPU_MAX {
		return nil, fmt.Errorf("CPU type valid %d is invalid", def.Cpu)
	}
	if def.Ram == nil {
		return nil, fmt.Errorf("CPU needs a memory bank")
	}
	p := &Processor{
		CPUType: def.Cpu,
		Ram:     def.Ram,
		irq:     def.Irq,
		nmi:     def.Nmi,
	}
	p.Ram.PowerOn()
	p.PowerOn()
	return p, nil
}

// PowerOn will reset the CPU to specific power on state. Registers are zero, stack is at 0xFD
// and P is cleared with interrupts disabled. The starting PC value is loaded from the reset
// vector.
func (p *Processor) PowerOn() {
	p.A = 0
	p.X = 0
	p.Y = 0
	p.S = 0x0
	// This bit is always set.
	p.P = P_S1
	p.clocks = 0
	p.Reset()
}

// Reset is similar to PowerOn except the main registers are not touched. The stack is moved
// 3 bytes as if PC/P have been pushed. Flags are not disturbed except for interrupts being disabled
// and the PC is loaded from the reset vector. The CPU is then busy for INTERRUPT_CYCLES clocks.
// Any halt is cleared along with a fault recorded by the memory bank.
func (p *Processor) Reset() {
	// Most registers unaffected but stack acts like PC/P have been pushed so decrement by 3 bytes.
	p.S -= 3
	p.P |= P_INTERRUPT | P_S1
	p.PC = memory.ReadAddr(p.Ram, RESET_VECTOR)
	p.op = 0x00
	p.inst = Instruction{}
	p.addrAbs = RESET_VECTOR
	p.addrRel = 0
	p.fetched = 0
	p.fetchDone = false
	p.irqPending = false
	p.nmiPending = false
	p.nmiLine = false
	if p.nmi != nil {
		p.nmiLine = p.nmi.Raised()
	}
	p.halted = false
	p.haltErr = nil
	if f, ok := p.Ram.(memory.Faulter); ok {
		f.ClearFault()
	}
	p.cycles = INTERRUPT_CYCLES
}

// IRQ requests a maskable interrupt. It's serviced at the next instruction
// boundary if the I flag is clear at that point, otherwise it's dropped.
func (p *Processor) IRQ() {
	p.irqPending = true
}

// NMI requests a non-maskable interrupt which is serviced at the next
// instruction boundary.
func (p *Processor) NMI() {
	p.nmiPending = true
}

// Clock runs a clock cycle through the CPU which may execute a new instruction or may be finishing
// an existing one. True is returned if the current instruction has finished on this clock.
// An error is returned if the opcode can't be decoded, the memory bank faults or the
// internal state is invalid. Once an error is returned the CPU is halted and returns the
// same error on every call until Reset.
func (p *Processor) Clock() (bool, error) {
	if p.halted {
		return true, p.haltErr
	}
	if p.cycles < 0 {
		return true, p.halt(InvalidCPUState{fmt.Sprintf("cycles is negative: %d", p.cycles)})
	}
	p.clocks++

	if p.cycles == 0 {
		var err error
		p.cycles, err = p.start()
		if err != nil {
			return true, p.halt(err)
		}
		if f, ok := p.Ram.(memory.Faulter); ok {
			if err := f.Fault(); err != nil {
				return true, p.halt(err)
			}
		}
	}
	p.cycles--
	return p.cycles == 0, nil
}

func (p *Processor) halt(err error) error {
	p.halted = true
	p.haltErr = err
	return err
}

// start begins a new instruction (or interrupt sequence) and returns its full cycle cost.
func (p *Processor) start() (int, error) {
	// NMI is edge triggered from the line so only a low->high transition counts.
	if p.nmi != nil {
		raised := p.nmi.Raised()
		if raised && !p.nmiLine {
			p.nmiPending = true
		}
		p.nmiLine = raised
	}
	if p.irq != nil && p.irq.Raised() {
		p.irqPending = true
	}

	switch {
	case p.nmiPending:
		p.nmiPending = false
		// An NMI pre-empts any pending IRQ which is then sampled again next boundary.
		p.irqPending = false
		return p.service(NMI_VECTOR), nil
	case p.irqPending:
		p.irqPending = false
		if p.P&P_INTERRUPT == 0x00 {
			return p.service(IRQ_VECTOR), nil
		}
	}

	p.op = p.Ram.Read(p.PC)
	p.PC++
	inst, err := Decode(p.op)
	if err != nil {
		return 0, err
	}
	p.inst = inst
	p.fetchDone = false

	extra := p.resolve(inst.Mode)
	if !inst.PageSensitive {
		extra = 0
	}
	extra += p.execute(inst.Op)
	return inst.Cycles + extra, nil
}

// service runs a hardware interrupt sequence in place of the next instruction.
func (p *Processor) service(vector uint16) int {
	p.op = 0x00
	p.inst = Instruction{}
	p.fetchDone = false
	return p.interrupt(vector, false)
}

// Fetch returns the operand for the current instruction. For implied modes this is
// whatever was last latched (A for accumulator mode). Otherwise the value at the
// effective address is read once and cached so repeated calls don't cause
// additional bus reads.
func (p *Processor) Fetch() uint8 {
	if p.fetchDone {
		return p.fetched
	}
	switch p.inst.Mode {
	case MODE_IMPLIED, MODE_ACCUMULATOR:
		return p.fetched
	}
	p.fetched = p.Ram.Read(p.addrAbs)
	p.fetchDone = true
	return p.fetched
}

// Step clocks the CPU until the current instruction (or pending cycles from a reset or
// interrupt) completes and returns the number of clocks consumed.
func (p *Processor) Step() (int, error) {
	cycles := 0
	for {
		done, err := p.Clock()
		cycles++
		if err != nil {
			return cycles, err
		}
		if done {
			return cycles, nil
		}
	}
}

// Busy returns true if the CPU is in the middle of an instruction.
func (p *Processor) Busy() bool {
	return p.cycles > 0
}

// Cycles returns the number of clocks remaining for the current instruction.
func (p *Processor) Cycles() int {
	return p.cycles
}

// Opcode returns the most recently fetched opcode.
func (p *Processor) Opcode() uint8 {
	return p.op
}

// Instruction returns the decoded form of the most recently fetched opcode.
func (p *Processor) Instruction() Instruction {
	return p.inst
}

// TotalCycles returns the number of clocks run since power on.
func (p *Processor) TotalCycles() uint64 {
	return p.clocks
}

// Halted returns the error which halted the CPU or nil if it's running.
func (p *Processor) Halted() error {
	return p.haltErr
}

// String returns a one line register dump suitable for traces.
func (p *Processor) String() string {
	return fmt.Sprintf("A:%.2X X:%.2X Y:%.2X P:%.2X SP:%.2X PC:%.4X CYC:%d", p.A, p.X, p.Y, p.P, p.S, p.PC, p.clocks)
}
