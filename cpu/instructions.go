package cpu

import "fmt"

// Operation is an enumeration of the operations the 6502 can perform.
// Combined with an AddressingMode it fully describes an opcode.
type Operation int

const (
	OP_UNIMPLEMENTED Operation = iota // Start of valid operation enumerations.
	ADC
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	ROL
	ROR
	RTI
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA

	// Undocumented operations.
	ALR // AND #i then LSR A
	ANC // AND #i then C = bit 7
	ARR // AND #i then ROR A with odd flags
	AXS // X = (A & X) - #i
	LAX // LDA + LDX
	SAX // Store A & X
	DCP // DEC then CMP
	ISC // INC then SBC
	RLA // ROL then AND
	RRA // ROR then ADC
	SLO // ASL then ORA
	SRE // LSR then EOR
	SKB // Skip (read) an immediate byte
	IGN // Ignore (read) a memory operand

	OP_MAX // End of operation enumerations.
)

var opNames = [...]string{
	OP_UNIMPLEMENTED: "???",
	ADC:              "ADC",
	AND:              "AND",
	ASL:              "ASL",
	BCC:              "BCC",
	BCS:              "BCS",
	BEQ:              "BEQ",
	BIT:              "BIT",
	BMI:              "BMI",
	BNE:              "BNE",
	BPL:              "BPL",
	BRK:              "BRK",
	BVC:              "BVC",
	BVS:              "BVS",
	CLC:              "CLC",
	CLD:              "CLD",
	CLI:              "CLI",
	CLV:              "CLV",
	CMP:              "CMP",
	CPX:              "CPX",
	CPY:              "CPY",
	DEC:              "DEC",
	DEX:              "DEX",
	DEY:              "DEY",
	EOR:              "EOR",
	INC:              "INC",
	INX:              "INX",
	INY:              "INY",
	JMP:              "JMP",
	JSR:              "JSR",
	LDA:              "LDA",
	LDX:              "LDX",
	LDY:              "LDY",
	LSR:              "LSR",
	NOP:              "NOP",
	ORA:              "ORA",
	PHA:              "PHA",
	PHP:              "PHP",
	PLA:              "PLA",
	PLP:              "PLP",
	ROL:              "ROL",
	ROR:              "ROR",
	RTI:              "RTI",
	RTS:              "RTS",
	SBC:              "SBC",
	SEC:              "SEC",
	SED:              "SED",
	SEI:              "SEI",
	STA:              "STA",
	STX:              "STX",
	STY:              "STY",
	TAX:              "TAX",
	TAY:              "TAY",
	TSX:              "TSX",
	TXA:              "TXA",
	TXS:              "TXS",
	TYA:              "TYA",
	ALR:              "ALR",
	ANC:              "ANC",
	ARR:              "ARR",
	AXS:              "AXS",
	LAX:              "LAX",
	SAX:              "SAX",
	DCP:              "DCP",
	ISC:              "ISC",
	RLA:              "RLA",
	RRA:              "RRA",
	SLO:              "SLO",
	SRE:              "SRE",
	SKB:              "SKB",
	IGN:              "IGN",
}

// String returns the assembler mnemonic for the operation.
func (o Operation) String() string {
	if o <= OP_UNIMPLEMENTED || o >= OP_MAX {
		return fmt.Sprintf("Operation(%d)", int(o))
	}
	return opNames[o]
}

// AddressingMode is an enumeration of the ways an instruction locates its operand.
type AddressingMode int

const (
	MODE_UNIMPLEMENTED AddressingMode = iota // Start of valid mode enumerations.
	MODE_IMPLIED                             // No operand.
	MODE_ACCUMULATOR                         // Operand is A.
	MODE_IMMEDIATE                           // #i
	MODE_ZP                                  // d
	MODE_ZPX                                 // d,x
	MODE_ZPY                                 // d,y
	MODE_ABSOLUTE                            // a
	MODE_ABSOLUTEX                           // a,x
	MODE_ABSOLUTEY                           // a,y
	MODE_RELATIVE                            // *+r
	MODE_INDIRECT                            // (a)
	MODE_INDIRECTX                           // (d,x)
	MODE_INDIRECTY                           // (d),y
	MODE_MAX                                 // End of mode enumerations.
)

var modeNames = [...]string{
	MODE_UNIMPLEMENTED: "Unimplemented",
	MODE_IMPLIED:       "Implied",
	MODE_ACCUMULATOR:   "Accumulator",
	MODE_IMMEDIATE:     "Immediate",
	MODE_ZP:            "ZeroPage",
	MODE_ZPX:           "ZeroPageX",
	MODE_ZPY:           "ZeroPageY",
	MODE_ABSOLUTE:      "Absolute",
	MODE_ABSOLUTEX:     "AbsoluteX",
	MODE_ABSOLUTEY:     "AbsoluteY",
	MODE_RELATIVE:      "Relative",
	MODE_INDIRECT:      "Indirect",
	MODE_INDIRECTX:     "IndirectX",
	MODE_INDIRECTY:     "IndirectY",
}

func (m AddressingMode) String() string {
	if m <= MODE_UNIMPLEMENTED || m >= MODE_MAX {
		return fmt.Sprintf("AddressingMode(%d)", int(m))
	}
	return modeNames[m]
}

// Bytes returns the length of an instruction using this mode including the opcode.
func (m AddressingMode) Bytes() int {
	switch m {
	case MODE_IMPLIED, MODE_ACCUMULATOR:
		return 1
	case MODE_ABSOLUTE, MODE_ABSOLUTEX, MODE_ABSOLUTEY, MODE_INDIRECT:
		return 3
	}
	return 2
}

// EffectCategory categorises an operation by what it does with its operand.
type EffectCategory int

const (
	EFFECT_READ       EffectCategory = iota // Reads the operand (or works only on registers).
	EFFECT_WRITE                            // Writes the operand without reading it.
	EFFECT_RMW                              // Reads, modifies and writes back the operand.
	EFFECT_FLOW                             // Branches and jumps.
	EFFECT_SUBROUTINE                       // JSR/RTS.
	EFFECT_INTERRUPT                        // BRK/RTI.
)

// Instruction describes one opcode. Values are immutable and come from Decode.
type Instruction struct {
	Opcode uint8
	Op     Operation
	Mode   AddressingMode
	// Cycles is the base cost. Page crossings and branches add to it.
	Cycles int
	Effect EffectCategory
	// PageSensitive is true if crossing a page while indexing costs an extra cycle.
	PageSensitive bool
	// Unofficial marks undocumented opcodes.
	Unofficial bool
}

// String returns a single instruction definition as a string.
func (i Instruction) String() string {
	return fmt.Sprintf("%.2X %s %s (%d cycles)", i.Opcode, i.Op, i.Mode, i.Cycles)
}

func effect(op Operation) EffectCategory {
	switch op {
	case STA, STX, STY, SAX:
		return EFFECT_WRITE
	case ASL, LSR, ROL, ROR, INC, DEC, DCP, ISC, RLA, RRA, SLO, SRE:
		return EFFECT_RMW
	case BCC, BCS, BEQ, BMI, BNE, BPL, BVC, BVS, JMP:
		return EFFECT_FLOW
	case JSR, RTS:
		return EFFECT_SUBROUTINE
	case BRK, RTI:
		return EFFECT_INTERRUPT
	}
	return EFFECT_READ
}

// opcodes holds every decoded instruction indexed by opcode. It's built once
// at init and never modified afterwards. Entries with Op == OP_UNIMPLEMENTED are
// unassigned.
var opcodes = buildOpcodes()

func buildOpcodes() [256]Instruction {
	var t [256]Instruction
	def := func(op Operation, mode AddressingMode, cycles int, unofficial bool, codes ...uint8) {
		for _, c := range codes {
			if t[c].Op != OP_UNIMPLEMENTED {
				panic(fmt.Sprintf("opcode 0x%.2X defined twice", c))
			}
			e := effect(op)
			t[c] = Instruction{
				Opcode:        c,
				Op:            op,
				Mode:          mode,
				Cycles:        cycles,
				Effect:        e,
				PageSensitive: e == EFFECT_READ && (mode == MODE_ABSOLUTEX || mode == MODE_ABSOLUTEY || mode == MODE_INDIRECTY),
				Unofficial:    unofficial,
			}
		}
	}
	official := func(op Operation, mode AddressingMode, cycles int, codes ...uint8) {
		def(op, mode, cycles, false, codes...)
	}
	unofficial := func(op Operation, mode AddressingMode, cycles int, codes ...uint8) {
		def(op, mode, cycles, true, codes...)
	}

	// The 8 mode ALU group (ORA/AND/EOR/ADC/LDA/CMP/SBC) shares a layout.
	alu := func(op Operation, base uint8) {
		official(op, MODE_INDIRECTX, 6, base+0x01)
		official(op, MODE_ZP, 3, base+0x05)
		official(op, MODE_IMMEDIATE, 2, base+0x09)
		official(op, MODE_ABSOLUTE, 4, base+0x0D)
		official(op, MODE_INDIRECTY, 5, base+0x11)
		official(op, MODE_ZPX, 4, base+0x15)
		official(op, MODE_ABSOLUTEY, 4, base+0x19)
		official(op, MODE_ABSOLUTEX, 4, base+0x1D)
	}
	alu(ORA, 0x00)
	alu(AND, 0x20)
	alu(EOR, 0x40)
	alu(ADC, 0x60)
	alu(LDA, 0xA0)
	alu(CMP, 0xC0)
	alu(SBC, 0xE0)

	// STA has no immediate and stores always pay for the index fixup.
	official(STA, MODE_INDIRECTX, 6, 0x81)
	official(STA, MODE_ZP, 3, 0x85)
	official(STA, MODE_ABSOLUTE, 4, 0x8D)
	official(STA, MODE_INDIRECTY, 6, 0x91)
	official(STA, MODE_ZPX, 4, 0x95)
	official(STA, MODE_ABSOLUTEY, 5, 0x99)
	official(STA, MODE_ABSOLUTEX, 5, 0x9D)

	// Shifts, rotates, INC and DEC.
	rmw := func(op Operation, base uint8) {
		official(op, MODE_ZP, 5, base+0x06)
		official(op, MODE_ABSOLUTE, 6, base+0x0E)
		official(op, MODE_ZPX, 6, base+0x16)
		official(op, MODE_ABSOLUTEX, 7, base+0x1E)
	}
	rmw(ASL, 0x00)
	rmw(ROL, 0x20)
	rmw(LSR, 0x40)
	rmw(ROR, 0x60)
	rmw(DEC, 0xC0)
	rmw(INC, 0xE0)
	official(ASL, MODE_ACCUMULATOR, 2, 0x0A)
	official(ROL, MODE_ACCUMULATOR, 2, 0x2A)
	official(LSR, MODE_ACCUMULATOR, 2, 0x4A)
	official(ROR, MODE_ACCUMULATOR, 2, 0x6A)

	official(LDX, MODE_IMMEDIATE, 2, 0xA2)
	official(LDX, MODE_ZP, 3, 0xA6)
	official(LDX, MODE_ABSOLUTE, 4, 0xAE)
	official(LDX, MODE_ZPY, 4, 0xB6)
	official(LDX, MODE_ABSOLUTEY, 4, 0xBE)

	official(LDY, MODE_IMMEDIATE, 2, 0xA0)
	official(LDY, MODE_ZP, 3, 0xA4)
	official(LDY, MODE_ABSOLUTE, 4, 0xAC)
	official(LDY, MODE_ZPX, 4, 0xB4)
	official(LDY, MODE_ABSOLUTEX, 4, 0xBC)

	official(STX, MODE_ZP, 3, 0x86)
	official(STX, MODE_ABSOLUTE, 4, 0x8E)
	official(STX, MODE_ZPY, 4, 0x96)

	official(STY, MODE_ZP, 3, 0x84)
	official(STY, MODE_ABSOLUTE, 4, 0x8C)
	official(STY, MODE_ZPX, 4, 0x94)

	official(CPX, MODE_IMMEDIATE, 2, 0xE0)
	official(CPX, MODE_ZP, 3, 0xE4)
	official(CPX, MODE_ABSOLUTE, 4, 0xEC)

	official(CPY, MODE_IMMEDIATE, 2, 0xC0)
	official(CPY, MODE_ZP, 3, 0xC4)
	official(CPY, MODE_ABSOLUTE, 4, 0xCC)

	official(BIT, MODE_ZP, 3, 0x24)
	official(BIT, MODE_ABSOLUTE, 4, 0x2C)

	official(BPL, MODE_RELATIVE, 2, 0x10)
	official(BMI, MODE_RELATIVE, 2, 0x30)
	official(BVC, MODE_RELATIVE, 2, 0x50)
	official(BVS, MODE_RELATIVE, 2, 0x70)
	official(BCC, MODE_RELATIVE, 2, 0x90)
	official(BCS, MODE_RELATIVE, 2, 0xB0)
	official(BNE, MODE_RELATIVE, 2, 0xD0)
	official(BEQ, MODE_RELATIVE, 2, 0xF0)

	official(BRK, MODE_IMPLIED, 7, 0x00)
	official(JSR, MODE_ABSOLUTE, 6, 0x20)
	official(RTI, MODE_IMPLIED, 6, 0x40)
	official(RTS, MODE_IMPLIED, 6, 0x60)
	official(JMP, MODE_ABSOLUTE, 3, 0x4C)
	official(JMP, MODE_INDIRECT, 5, 0x6C)

	official(PHP, MODE_IMPLIED, 3, 0x08)
	official(PLP, MODE_IMPLIED, 4, 0x28)
	official(PHA, MODE_IMPLIED, 3, 0x48)
	official(PLA, MODE_IMPLIED, 4, 0x68)

	official(CLC, MODE_IMPLIED, 2, 0x18)
	official(SEC, MODE_IMPLIED, 2, 0x38)
	official(CLI, MODE_IMPLIED, 2, 0x58)
	official(SEI, MODE_IMPLIED, 2, 0x78)
	official(CLV, MODE_IMPLIED, 2, 0xB8)
	official(CLD, MODE_IMPLIED, 2, 0xD8)
	official(SED, MODE_IMPLIED, 2, 0xF8)

	official(DEY, MODE_IMPLIED, 2, 0x88)
	official(TXA, MODE_IMPLIED, 2, 0x8A)
	official(TYA, MODE_IMPLIED, 2, 0x98)
	official(TXS, MODE_IMPLIED, 2, 0x9A)
	official(TAY, MODE_IMPLIED, 2, 0xA8)
	official(TAX, MODE_IMPLIED, 2, 0xAA)
	official(TSX, MODE_IMPLIED, 2, 0xBA)
	official(INY, MODE_IMPLIED, 2, 0xC8)
	official(DEX, MODE_IMPLIED, 2, 0xCA)
	official(INX, MODE_IMPLIED, 2, 0xE8)
	official(NOP, MODE_IMPLIED, 2, 0xEA)

	// Undocumented opcodes.
	// See http://wiki.nesdev.com/w/index.php/CPU_unofficial_opcodes
	unofficial(ALR, MODE_IMMEDIATE, 2, 0x4B)
	unofficial(ANC, MODE_IMMEDIATE, 2, 0x0B, 0x2B)
	unofficial(ARR, MODE_IMMEDIATE, 2, 0x6B)
	unofficial(AXS, MODE_IMMEDIATE, 2, 0xCB)
	unofficial(SBC, MODE_IMMEDIATE, 2, 0xEB)

	unofficial(LAX, MODE_INDIRECTX, 6, 0xA3)
	unofficial(LAX, MODE_ZP, 3, 0xA7)
	unofficial(LAX, MODE_ABSOLUTE, 4, 0xAF)
	unofficial(LAX, MODE_INDIRECTY, 5, 0xB3)
	unofficial(LAX, MODE_ZPY, 4, 0xB7)
	unofficial(LAX, MODE_ABSOLUTEY, 4, 0xBF)

	unofficial(SAX, MODE_INDIRECTX, 6, 0x83)
	unofficial(SAX, MODE_ZP, 3, 0x87)
	unofficial(SAX, MODE_ABSOLUTE, 4, 0x8F)
	unofficial(SAX, MODE_ZPY, 4, 0x97)

	// The combined RMW+ALU ops all share a layout in the xx3-xxF columns.
	combo := func(op Operation, base uint8) {
		unofficial(op, MODE_INDIRECTX, 8, base+0x03)
		unofficial(op, MODE_ZP, 5, base+0x07)
		unofficial(op, MODE_ABSOLUTE, 6, base+0x0F)
		unofficial(op, MODE_INDIRECTY, 8, base+0x13)
		unofficial(op, MODE_ZPX, 6, base+0x17)
		unofficial(op, MODE_ABSOLUTEY, 7, base+0x1B)
		unofficial(op, MODE_ABSOLUTEX, 7, base+0x1F)
	}
	combo(SLO, 0x00)
	combo(RLA, 0x20)
	combo(SRE, 0x40)
	combo(RRA, 0x60)
	combo(DCP, 0xC0)
	combo(ISC, 0xE0)

	unofficial(SKB, MODE_IMMEDIATE, 2, 0x80, 0x82, 0x89, 0xC2, 0xE2)
	unofficial(IGN, MODE_ABSOLUTE, 4, 0x0C)
	unofficial(IGN, MODE_ABSOLUTEX, 4, 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC)
	unofficial(IGN, MODE_ZP, 3, 0x04, 0x44, 0x64)
	unofficial(IGN, MODE_ZPX, 4, 0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4)
	unofficial(NOP, MODE_IMPLIED, 2, 0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA)

	return t
}

// Decode returns the instruction for the given opcode. Unassigned opcodes
// (the KIL/JAM opcodes and the unstable store/transfer opcodes) return an
// UnimplementedOpcode error.
func Decode(op uint8) (Instruction, error) {
	i := opcodes[op]
	if i.Op == OP_UNIMPLEMENTED {
		return Instruction{}, UnimplementedOpcode{op}
	}
	return i, nil
}
