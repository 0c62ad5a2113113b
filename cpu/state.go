package cpu

import "fmt"

// State is a snapshot of everything the Processor owns. It doesn't include
// memory or the installed interrupt lines.
type State struct {
	A, X, Y, S, P          uint8
	PC, AddrAbs, AddrRel   uint16
	Opcode, Fetched        uint8
	// Instruction is zero during reset and interrupt sequences.
	Instruction            Instruction
	FetchDone              bool
	Cycles                 int
	Clocks                 uint64
	IrqPending, NmiPending bool
	NmiLine                bool
}

// State returns a snapshot of the current processor state.
func (p *Processor) State() State {
	return State{
		A:           p.A,
		X:           p.X,
		Y:           p.Y,
		S:           p.S,
		P:           p.P,
		PC:          p.PC,
		AddrAbs:     p.addrAbs,
		AddrRel:     p.addrRel,
		Opcode:      p.op,
		Instruction: p.inst,
		Fetched:     p.fetched,
		FetchDone:   p.fetchDone,
		Cycles:      p.cycles,
		Clocks:      p.clocks,
		IrqPending:  p.irqPending,
		NmiPending:  p.nmiPending,
		NmiLine:     p.nmiLine,
	}
}

// LoadState restores a snapshot taken with State. Any halt is cleared.
// An InvalidCPUState is returned if the snapshot can't have come from a running CPU.
func (p *Processor) LoadState(s State) error {
	if s.Cycles < 0 {
		return InvalidCPUState{"snapshot has negative cycles"}
	}
	if s.Instruction != (Instruction{}) {
		inst, err := Decode(s.Opcode)
		if err != nil {
			return InvalidCPUState{"snapshot opcode can't be decoded: " + err.Error()}
		}
		if inst != s.Instruction {
			return InvalidCPUState{fmt.Sprintf("snapshot instruction %s doesn't match opcode 0x%.2X", s.Instruction, s.Opcode)}
		}
	}
	p.A, p.X, p.Y, p.S, p.P = s.A, s.X, s.Y, s.S, s.P
	p.PC, p.addrAbs, p.addrRel = s.PC, s.AddrAbs, s.AddrRel
	p.op, p.inst, p.fetched, p.fetchDone = s.Opcode, s.Instruction, s.Fetched, s.FetchDone
	p.cycles, p.clocks = s.Cycles, s.Clocks
	p.irqPending, p.nmiPending, p.nmiLine = s.IrqPending, s.NmiPending, s.NmiLine
	p.halted = false
	p.haltErr = nil
	return nil
}
