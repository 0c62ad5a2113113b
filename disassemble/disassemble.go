// Package disassemble implements a disassembler for 6502 opcodes
// driven by the cpu package's instruction table.
package disassemble

import (
	"fmt"

	"github.com/jmchacon/m6502/cpu"
	"github.com/jmchacon/m6502/memory"
)

// mnemonic returns the assembler name for the instruction. The skip/ignore
// variants are written as NOP which is what assemblers accept.
func mnemonic(inst cpu.Instruction) string {
	switch inst.Op {
	case cpu.SKB, cpu.IGN:
		return "NOP"
	}
	return inst.Op.String()
}

// Step will take the given PC value and disassemble the instruction at that location
// returning a string for the disassembly and the bytes forward the PC should move to get to
// the next instruction. This does not interpret the instructions so LDA, JMP, LDA in memory
// will disassemble as that sequence and not follow the JMP.
// Memory is only accessed through ReadOnly so disassembling device registers has no side effects.
// Unassigned opcodes disassemble as ??? and advance one byte.
func Step(pc uint16, r memory.Bank) (string, int) {
	// All instructions read a 2nd byte generally so just do that now.
	pc1 := r.ReadOnly(pc + 1)
	// Setup a 16 bit value so it can be added the the PC for branch offsets.
	// Sign extend it as needed.
	pc116 := uint16(int16(int8(pc1)))
	// And preread the 2nd byte for 3 byte instructions.
	pc2 := r.ReadOnly(pc + 2)

	o := r.ReadOnly(pc)
	out := fmt.Sprintf("%.4X %.2X ", pc, o)
	inst, err := cpu.Decode(o)
	if err != nil {
		out += fmt.Sprintf("        %s           ", "???")
		return out, 1
	}
	op := mnemonic(inst)
	mode := inst.Mode
	if inst.Op == cpu.BRK {
		// Ok, not really but the byte after BRK is read and skipped.
		mode = cpu.MODE_IMMEDIATE
	}

	count := mode.Bytes()
	switch mode {
	case cpu.MODE_IMMEDIATE:
		out += fmt.Sprintf("%.2X      %s #%.2X       ", pc1, op, pc1)
	case cpu.MODE_ZP:
		out += fmt.Sprintf("%.2X      %s %.2X        ", pc1, op, pc1)
	case cpu.MODE_ZPX:
		out += fmt.Sprintf("%.2X      %s %.2X,X      ", pc1, op, pc1)
	case cpu.MODE_ZPY:
		out += fmt.Sprintf("%.2X      %s %.2X,Y      ", pc1, op, pc1)
	case cpu.MODE_INDIRECTX:
		out += fmt.Sprintf("%.2X      %s (%.2X,X)    ", pc1, op, pc1)
	case cpu.MODE_INDIRECTY:
		out += fmt.Sprintf("%.2X      %s (%.2X),Y    ", pc1, op, pc1)
	case cpu.MODE_ABSOLUTE:
		out += fmt.Sprintf("%.2X %.2X   %s %.2X%.2X      ", pc1, pc2, op, pc2, pc1)
	case cpu.MODE_ABSOLUTEX:
		out += fmt.Sprintf("%.2X %.2X   %s %.2X%.2X,X    ", pc1, pc2, op, pc2, pc1)
	case cpu.MODE_ABSOLUTEY:
		out += fmt.Sprintf("%.2X %.2X   %s %.2X%.2X,Y    ", pc1, pc2, op, pc2, pc1)
	case cpu.MODE_INDIRECT:
		out += fmt.Sprintf("%.2X %.2X   %s (%.2X%.2X)    ", pc1, pc2, op, pc2, pc1)
	case cpu.MODE_IMPLIED:
		out += fmt.Sprintf("        %s           ", op)
	case cpu.MODE_ACCUMULATOR:
		out += fmt.Sprintf("        %s A         ", op)
	case cpu.MODE_RELATIVE:
		out += fmt.Sprintf("%.2X      %s %.2X (%.4X) ", pc1, op, pc1, pc+pc116+2)
	default:
		panic(fmt.Sprintf("Invalid mode: %s", mode))
	}
	return out, count
}
