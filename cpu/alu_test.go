package cpu

import (
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
)

// runImmediate executes a single immediate mode instruction at RESET.
func runImmediate(t *testing.T, c *Processor, r *flatMemory, op, arg uint8) {
	r.addr[RESET] = op
	r.addr[RESET+1] = arg
	c.PC = RESET
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step error: %v\nstate: %s", err, spew.Sdump(c))
	}
	if got, want := cycles, 2; got != want {
		t.Fatalf("Bad cycles for 0x%.2X. Got %d want %d", op, got, want)
	}
}

func TestLogicalFlags(t *testing.T) {
	tests := []struct {
		name string
		op   uint8
		f    func(a, b uint8) uint8
	}{
		{"AND", 0x29, func(a, b uint8) uint8 { return a & b }},
		{"EOR", 0x49, func(a, b uint8) uint8 { return a ^ b }},
		{"ORA", 0x09, func(a, b uint8) uint8 { return a | b }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, r := Setup(t.Fatalf, CPU_NMOS, 0xEA, 0x0202)
			for a := 0; a < 256; a++ {
				for b := 0; b < 256; b++ {
					c.A = uint8(a)
					c.P = P_S1 | P_CARRY | P_OVERFLOW
					runImmediate(t, c, r, test.op, uint8(b))
					res := test.f(uint8(a), uint8(b))
					if got, want := c.A, res; got != want {
						t.Fatalf("%.2X %s %.2X: bad A. Got 0x%.2X want 0x%.2X", a, test.name, b, got, want)
					}
					if got, want := c.P&P_ZERO != 0, res == 0; got != want {
						t.Fatalf("%.2X %s %.2X: Z flag is incorrect. Status - 0x%.2X", a, test.name, b, c.P)
					}
					if got, want := c.P&P_NEGATIVE != 0, res&0x80 != 0; got != want {
						t.Fatalf("%.2X %s %.2X: N flag is incorrect. Status - 0x%.2X", a, test.name, b, c.P)
					}
					// Nothing else moves.
					if got, want := c.P&(P_CARRY|P_OVERFLOW), P_CARRY|P_OVERFLOW; got != want {
						t.Fatalf("%.2X %s %.2X: C/V changed. Status - 0x%.2X", a, test.name, b, c.P)
					}
				}
			}
		})
	}
}

func TestArithmeticFlags(t *testing.T) {
	tests := []struct {
		name string
		op   uint8
		sub  bool
	}{
		{"ADC", 0x69, false},
		{"SBC", 0xE9, true},
		{"SBC unofficial", 0xEB, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, r := Setup(t.Fatalf, CPU_NMOS, 0xEA, 0x0202)
			for carry := 0; carry < 2; carry++ {
				for a := 0; a < 256; a++ {
					for b := 0; b < 256; b++ {
						c.A = uint8(a)
						c.P = P_S1 | uint8(carry)
						runImmediate(t, c, r, test.op, uint8(b))
						arg := uint8(b)
						if test.sub {
							arg = ^arg
						}
						sum := a + int(arg) + carry
						res := uint8(sum)
						desc := fmt.Sprintf("%.2X %s %.2X (C=%d)", a, test.name, b, carry)
						if got, want := c.A, res; got != want {
							t.Fatalf("%s: bad A. Got 0x%.2X want 0x%.2X", desc, got, want)
						}
						if got, want := c.P&P_ZERO != 0, res == 0; got != want {
							t.Fatalf("%s: Z flag is incorrect. Status - 0x%.2X", desc, c.P)
						}
						if got, want := c.P&P_NEGATIVE != 0, res&0x80 != 0; got != want {
							t.Fatalf("%s: N flag is incorrect. Status - 0x%.2X", desc, c.P)
						}
						if got, want := c.P&P_CARRY != 0, sum > 0xFF; got != want {
							t.Fatalf("%s: C flag is incorrect. Status - 0x%.2X", desc, c.P)
						}
						// V is set when both inputs share a sign the result doesn't have.
						v := (uint8(a)^res)&(arg^res)&0x80 != 0
						if got, want := c.P&P_OVERFLOW != 0, v; got != want {
							t.Fatalf("%s: V flag is incorrect. Status - 0x%.2X", desc, c.P)
						}
					}
				}
			}
		})
	}
}

func TestCompareFlags(t *testing.T) {
	tests := []struct {
		name string
		op   uint8
		reg  func(c *Processor) *uint8
	}{
		{"CMP", 0xC9, func(c *Processor) *uint8 { return &c.A }},
		{"CPX", 0xE0, func(c *Processor) *uint8 { return &c.X }},
		{"CPY", 0xC0, func(c *Processor) *uint8 { return &c.Y }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, r := Setup(t.Fatalf, CPU_NMOS, 0xEA, 0x0202)
			for a := 0; a < 256; a++ {
				for b := 0; b < 256; b++ {
					*test.reg(c) = uint8(a)
					c.P = P_S1
					runImmediate(t, c, r, test.op, uint8(b))
					diff := uint8(a) - uint8(b)
					if got, want := c.P&P_ZERO != 0, a == b; got != want {
						t.Fatalf("%.2X %s %.2X: Z flag is incorrect. Status - 0x%.2X", a, test.name, b, c.P)
					}
					if got, want := c.P&P_NEGATIVE != 0, diff&0x80 != 0; got != want {
						t.Fatalf("%.2X %s %.2X: N flag is incorrect. Status - 0x%.2X", a, test.name, b, c.P)
					}
					if got, want := c.P&P_CARRY != 0, a >= b; got != want {
						t.Fatalf("%.2X %s %.2X: C flag is incorrect. Status - 0x%.2X", a, test.name, b, c.P)
					}
					if got, want := *test.reg(c), uint8(a); got != want {
						t.Fatalf("%.2X %s %.2X: register changed. Got 0x%.2X", a, test.name, b, got)
					}
				}
			}
		})
	}
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		name  string
		cpu   CPUType
		op    uint8
		a     uint8
		arg   uint8
		carry bool
		want  uint8
		wantC bool
	}{
		{
			name: "ADC 09+01",
			cpu:  CPU_NMOS,
			op:   0x69,
			a:    0x09,
			arg:  0x01,
			want: 0x10,
		},
		{
			name:  "ADC 99+01",
			cpu:   CPU_NMOS,
			op:    0x69,
			a:     0x99,
			arg:   0x01,
			want:  0x00,
			wantC: true,
		},
		{
			name:  "ADC 58+46+1",
			cpu:   CPU_NMOS,
			op:    0x69,
			a:     0x58,
			arg:   0x46,
			carry: true,
			want:  0x05,
			wantC: true,
		},
		{
			name:  "SBC 10-01",
			cpu:   CPU_NMOS,
			op:    0xE9,
			a:     0x10,
			arg:   0x01,
			carry: true,
			want:  0x09,
			wantC: true,
		},
		{
			name:  "SBC 00-01",
			cpu:   CPU_NMOS,
			op:    0xE9,
			a:     0x00,
			arg:   0x01,
			carry: true,
			want:  0x99,
			wantC: false,
		},
		{
			name: "Ricoh ADC 09+01 is binary",
			cpu:  CPU_NMOS_RICOH,
			op:   0x69,
			a:    0x09,
			arg:  0x01,
			want: 0x0A,
		},
		{
			name:  "Ricoh SBC 10-01 is binary",
			cpu:   CPU_NMOS_RICOH,
			op:    0xE9,
			a:     0x10,
			arg:   0x01,
			carry: true,
			want:  0x0F,
			wantC: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, r := Setup(t.Fatalf, test.cpu, 0xEA, 0x0202)
			c.A = test.a
			c.P = P_S1 | P_DECIMAL
			if test.carry {
				c.P |= P_CARRY
			}
			runImmediate(t, c, r, test.op, test.arg)
			if got, want := c.A, test.want; got != want {
				t.Errorf("Bad A. Got 0x%.2X want 0x%.2X", got, want)
			}
			if got, want := c.P&P_CARRY != 0, test.wantC; got != want {
				t.Errorf("Bad carry. Got %t want %t", got, want)
			}
			if got, want := c.P&P_DECIMAL, P_DECIMAL; got != want {
				t.Errorf("D was cleared")
			}
		})
	}
}

func TestInstructions(t *testing.T) {
	const start = uint16(0x0400)
	type regs struct {
		A, X, Y, S, P uint8
		PC            uint16
	}
	tests := []struct {
		name    string
		prog    []uint8
		pre     regs
		mem     map[uint16]uint8
		want    regs
		wantMem map[uint16]uint8
		cycles  int
	}{
		{
			name:   "LDA #00",
			prog:   []uint8{0xA9, 0x00},
			pre:    regs{A: 0x55, S: 0xFD, P: P_S1},
			want:   regs{A: 0x00, S: 0xFD, P: P_S1 | P_ZERO},
			cycles: 2,
		},
		{
			name:   "LDA ($FF,X) wraps in page zero",
			prog:   []uint8{0xA1, 0xFF},
			pre:    regs{S: 0xFD, P: P_S1},
			mem:    map[uint16]uint8{0x00FF: 0xFA, 0x0000: 0xA1, 0xA1FA: 0xEF},
			want:   regs{A: 0xEF, S: 0xFD, P: P_S1 | P_NEGATIVE},
			cycles: 6,
		},
		{
			name:   "LDA ($EA,X)",
			prog:   []uint8{0xA1, 0xEA},
			pre:    regs{X: 0x10, S: 0xFD, P: P_S1},
			mem:    map[uint16]uint8{0x00FA: 0x1F, 0x00FB: 0x55, 0x551F: 0x42},
			want:   regs{A: 0x42, X: 0x10, S: 0xFD, P: P_S1},
			cycles: 6,
		},
		{
			name:   "LDA ($FF),Y pointer wraps in page zero",
			prog:   []uint8{0xB1, 0xFF},
			pre:    regs{Y: 0x01, S: 0xFD, P: P_S1},
			mem:    map[uint16]uint8{0x00FF: 0xFF, 0x0000: 0x10, 0x1100: 0x01},
			want:   regs{A: 0x01, Y: 0x01, S: 0xFD, P: P_S1},
			cycles: 6,
		},
		{
			name:   "LDX $FF,Y wraps",
			prog:   []uint8{0xB6, 0xFF},
			pre:    regs{Y: 0x02, S: 0xFD, P: P_S1},
			mem:    map[uint16]uint8{0x0001: 0x33, 0x0101: 0x44},
			want:   regs{X: 0x33, Y: 0x02, S: 0xFD, P: P_S1},
			cycles: 4,
		},
		{
			name:    "STA $FF,X wraps",
			prog:    []uint8{0x95, 0xFF},
			pre:     regs{A: 0x77, X: 0x02, S: 0xFD, P: P_S1},
			want:    regs{A: 0x77, X: 0x02, S: 0xFD, P: P_S1},
			wantMem: map[uint16]uint8{0x0001: 0x77},
			cycles:  4,
		},
		{
			name:    "INC $10",
			prog:    []uint8{0xE6, 0x10},
			pre:     regs{S: 0xFD, P: P_S1},
			mem:     map[uint16]uint8{0x0010: 0xFF},
			want:    regs{S: 0xFD, P: P_S1 | P_ZERO},
			wantMem: map[uint16]uint8{0x0010: 0x00},
			cycles:  5,
		},
		{
			name:    "DEC $10",
			prog:    []uint8{0xC6, 0x10},
			pre:     regs{S: 0xFD, P: P_S1},
			mem:     map[uint16]uint8{0x0010: 0x00},
			want:    regs{S: 0xFD, P: P_S1 | P_NEGATIVE},
			wantMem: map[uint16]uint8{0x0010: 0xFF},
			cycles:  5,
		},
		{
			name:   "ASL A",
			prog:   []uint8{0x0A},
			pre:    regs{A: 0x80, S: 0xFD, P: P_S1},
			want:   regs{A: 0x00, S: 0xFD, P: P_S1 | P_ZERO | P_CARRY},
			cycles: 2,
		},
		{
			name:   "ROR A with carry",
			prog:   []uint8{0x6A},
			pre:    regs{A: 0x01, S: 0xFD, P: P_S1 | P_CARRY},
			want:   regs{A: 0x80, S: 0xFD, P: P_S1 | P_NEGATIVE | P_CARRY},
			cycles: 2,
		},
		{
			name:    "ROL $10",
			prog:    []uint8{0x26, 0x10},
			pre:     regs{S: 0xFD, P: P_S1},
			mem:     map[uint16]uint8{0x0010: 0x40},
			want:    regs{S: 0xFD, P: P_S1 | P_NEGATIVE},
			wantMem: map[uint16]uint8{0x0010: 0x80},
			cycles:  5,
		},
		{
			name:    "LSR $1000",
			prog:    []uint8{0x4E, 0x00, 0x10},
			pre:     regs{S: 0xFD, P: P_S1},
			mem:     map[uint16]uint8{0x1000: 0x01},
			want:    regs{S: 0xFD, P: P_S1 | P_ZERO | P_CARRY},
			wantMem: map[uint16]uint8{0x1000: 0x00},
			cycles:  6,
		},
		{
			name:   "BIT $10",
			prog:   []uint8{0x24, 0x10},
			pre:    regs{S: 0xFD, P: P_S1},
			mem:    map[uint16]uint8{0x0010: 0xC0},
			want:   regs{S: 0xFD, P: P_S1 | P_ZERO | P_NEGATIVE | P_OVERFLOW},
			cycles: 3,
		},
		{
			name:    "PHP",
			prog:    []uint8{0x08},
			pre:     regs{S: 0xFD, P: P_S1 | P_CARRY},
			want:    regs{S: 0xFC, P: P_S1 | P_CARRY},
			wantMem: map[uint16]uint8{0x01FD: P_S1 | P_B | P_CARRY},
			cycles:  3,
		},
		{
			name:   "PLP",
			prog:   []uint8{0x28},
			pre:    regs{S: 0xFD, P: P_S1},
			mem:    map[uint16]uint8{0x01FE: 0xFF},
			want:   regs{S: 0xFE, P: 0xFF &^ P_B},
			cycles: 4,
		},
		{
			name:   "PLA",
			prog:   []uint8{0x68},
			pre:    regs{S: 0xFD, P: P_S1},
			mem:    map[uint16]uint8{0x01FE: 0x00},
			want:   regs{S: 0xFE, P: P_S1 | P_ZERO},
			cycles: 4,
		},
		{
			name:   "TXS sets no flags",
			prog:   []uint8{0x9A},
			pre:    regs{X: 0x00, S: 0xFD, P: P_S1},
			want:   regs{X: 0x00, S: 0x00, P: P_S1},
			cycles: 2,
		},
		{
			name:   "TSX",
			prog:   []uint8{0xBA},
			pre:    regs{S: 0x80, P: P_S1},
			want:   regs{X: 0x80, S: 0x80, P: P_S1 | P_NEGATIVE},
			cycles: 2,
		},
		{
			name:   "TAY",
			prog:   []uint8{0xA8},
			pre:    regs{A: 0x00, Y: 0x12, S: 0xFD, P: P_S1},
			want:   regs{S: 0xFD, P: P_S1 | P_ZERO},
			cycles: 2,
		},
		{
			name:   "CLV",
			prog:   []uint8{0xB8},
			pre:    regs{S: 0xFD, P: P_S1 | P_OVERFLOW},
			want:   regs{S: 0xFD, P: P_S1},
			cycles: 2,
		},
		{
			name:   "SED",
			prog:   []uint8{0xF8},
			pre:    regs{S: 0xFD, P: P_S1},
			want:   regs{S: 0xFD, P: P_S1 | P_DECIMAL},
			cycles: 2,
		},
		{
			name:   "JMP $1234",
			prog:   []uint8{0x4C, 0x34, 0x12},
			pre:    regs{S: 0xFD, P: P_S1},
			want:   regs{S: 0xFD, P: P_S1, PC: 0x1234},
			cycles: 3,
		},
		{
			name:   "LAX $10",
			prog:   []uint8{0xA7, 0x10},
			pre:    regs{S: 0xFD, P: P_S1},
			mem:    map[uint16]uint8{0x0010: 0x80},
			want:   regs{A: 0x80, X: 0x80, S: 0xFD, P: P_S1 | P_NEGATIVE},
			cycles: 3,
		},
		{
			name:    "SAX $10",
			prog:    []uint8{0x87, 0x10},
			pre:     regs{A: 0xF0, X: 0x3C, S: 0xFD, P: P_S1},
			want:    regs{A: 0xF0, X: 0x3C, S: 0xFD, P: P_S1},
			wantMem: map[uint16]uint8{0x0010: 0x30},
			cycles:  3,
		},
		{
			name:    "DCP $10",
			prog:    []uint8{0xC7, 0x10},
			pre:     regs{A: 0x10, S: 0xFD, P: P_S1},
			mem:     map[uint16]uint8{0x0010: 0x11},
			want:    regs{A: 0x10, S: 0xFD, P: P_S1 | P_ZERO | P_CARRY},
			wantMem: map[uint16]uint8{0x0010: 0x10},
			cycles:  5,
		},
		{
			name:    "ISC $10",
			prog:    []uint8{0xE7, 0x10},
			pre:     regs{A: 0x05, S: 0xFD, P: P_S1 | P_CARRY},
			mem:     map[uint16]uint8{0x0010: 0x00},
			want:    regs{A: 0x04, S: 0xFD, P: P_S1 | P_CARRY},
			wantMem: map[uint16]uint8{0x0010: 0x01},
			cycles:  5,
		},
		{
			name:    "SLO $10",
			prog:    []uint8{0x07, 0x10},
			pre:     regs{A: 0x01, S: 0xFD, P: P_S1},
			mem:     map[uint16]uint8{0x0010: 0x81},
			want:    regs{A: 0x03, S: 0xFD, P: P_S1 | P_CARRY},
			wantMem: map[uint16]uint8{0x0010: 0x02},
			cycles:  5,
		},
		{
			name:    "RLA $10",
			prog:    []uint8{0x27, 0x10},
			pre:     regs{A: 0x0F, S: 0xFD, P: P_S1 | P_CARRY},
			mem:     map[uint16]uint8{0x0010: 0x81},
			want:    regs{A: 0x03, S: 0xFD, P: P_S1 | P_CARRY},
			wantMem: map[uint16]uint8{0x0010: 0x03},
			cycles:  5,
		},
		{
			name:    "SRE $10",
			prog:    []uint8{0x47, 0x10},
			pre:     regs{A: 0xFF, S: 0xFD, P: P_S1},
			mem:     map[uint16]uint8{0x0010: 0x03},
			want:    regs{A: 0xFE, S: 0xFD, P: P_S1 | P_NEGATIVE | P_CARRY},
			wantMem: map[uint16]uint8{0x0010: 0x01},
			cycles:  5,
		},
		{
			name:    "RRA $10",
			prog:    []uint8{0x67, 0x10},
			pre:     regs{A: 0x10, S: 0xFD, P: P_S1},
			mem:     map[uint16]uint8{0x0010: 0x03},
			want:    regs{A: 0x12, S: 0xFD, P: P_S1},
			wantMem: map[uint16]uint8{0x0010: 0x01},
			cycles:  5,
		},
		{
			name:   "ALR #FF",
			prog:   []uint8{0x4B, 0xFF},
			pre:    regs{A: 0x03, S: 0xFD, P: P_S1},
			want:   regs{A: 0x01, S: 0xFD, P: P_S1 | P_CARRY},
			cycles: 2,
		},
		{
			name:   "ANC #80",
			prog:   []uint8{0x0B, 0x80},
			pre:    regs{A: 0xFF, S: 0xFD, P: P_S1},
			want:   regs{A: 0x80, S: 0xFD, P: P_S1 | P_NEGATIVE | P_CARRY},
			cycles: 2,
		},
		{
			name:   "ARR #FF",
			prog:   []uint8{0x6B, 0xFF},
			pre:    regs{A: 0xC0, S: 0xFD, P: P_S1},
			want:   regs{A: 0x60, S: 0xFD, P: P_S1 | P_CARRY},
			cycles: 2,
		},
		{
			name:   "ARR #FF sets V",
			prog:   []uint8{0x6B, 0xFF},
			pre:    regs{A: 0x80, S: 0xFD, P: P_S1},
			want:   regs{A: 0x40, S: 0xFD, P: P_S1 | P_CARRY | P_OVERFLOW},
			cycles: 2,
		},
		{
			name:   "ARR #FF decimal",
			prog:   []uint8{0x6B, 0xFF},
			pre:    regs{A: 0x40, S: 0xFD, P: P_S1 | P_DECIMAL | P_CARRY},
			want:   regs{A: 0xA0, S: 0xFD, P: P_S1 | P_DECIMAL | P_NEGATIVE | P_OVERFLOW},
			cycles: 2,
		},
		{
			name:   "AXS #02",
			prog:   []uint8{0xCB, 0x02},
			pre:    regs{A: 0x0F, X: 0x05, S: 0xFD, P: P_S1 | P_OVERFLOW},
			want:   regs{A: 0x0F, X: 0x03, S: 0xFD, P: P_S1 | P_OVERFLOW | P_CARRY},
			cycles: 2,
		},
		{
			name:   "SKB #12",
			prog:   []uint8{0x80, 0x12},
			pre:    regs{A: 0x01, S: 0xFD, P: P_S1},
			want:   regs{A: 0x01, S: 0xFD, P: P_S1},
			cycles: 2,
		},
		{
			name:   "IGN $10",
			prog:   []uint8{0x04, 0x10},
			pre:    regs{S: 0xFD, P: P_S1},
			want:   regs{S: 0xFD, P: P_S1},
			cycles: 3,
		},
		{
			name:   "NOP 1A",
			prog:   []uint8{0x1A},
			pre:    regs{S: 0xFD, P: P_S1},
			want:   regs{S: 0xFD, P: P_S1},
			cycles: 2,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, r := Setup(t.Fatalf, CPU_NMOS, 0xEA, 0x0202)
			copy(r.addr[start:], test.prog)
			for k, v := range test.mem {
				r.addr[k] = v
			}
			c.A, c.X, c.Y, c.S, c.P = test.pre.A, test.pre.X, test.pre.Y, test.pre.S, test.pre.P
			c.PC = start
			cycles, err := c.Step()
			if err != nil {
				t.Fatalf("Step error: %v\nstate: %s", err, spew.Sdump(c))
			}
			if got, want := cycles, test.cycles; got != want {
				t.Errorf("Bad cycles. Got %d want %d", got, want)
			}
			want := test.want
			if want.PC == 0 {
				want.PC = start + uint16(len(test.prog))
			}
			got := regs{c.A, c.X, c.Y, c.S, c.P, c.PC}
			if diff := deep.Equal(got, want); diff != nil {
				t.Errorf("Bad registers: %v\ngot:  %s\nwant: %s", diff, spew.Sdump(got), spew.Sdump(want))
			}
			for k, v := range test.wantMem {
				if got, want := r.addr[k], v; got != want {
					t.Errorf("Bad memory at 0x%.4X. Got 0x%.2X want 0x%.2X", k, got, want)
				}
			}
		})
	}
}
