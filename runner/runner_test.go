package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
	"github.com/jmchacon/m6502/cpu"
)

// countdown loads X with 5, decrements to zero and then jumps to itself.
var countdown = []uint8{
	0xA2, 0x05, // LDX #05
	0xCA,       // DEX
	0xD0, 0xFD, // BNE -3
	0x4C, 0x05, 0x04, // JMP $0405
}

func TestRun(t *testing.T) {
	for _, withPIA := range []bool{false, true} {
		withPIA := withPIA
		t.Run(fmt.Sprintf("pia %t", withPIA), func(t *testing.T) {
			m, err := newMachine(cpu.CPU_NMOS, 0x00, withPIA, countdown, 0x0400, 0x0400)
			if err != nil {
				t.Fatalf("Can't create machine: %v", err)
			}
			if got, want := m.cpu.PC, uint16(0x0400); got != want {
				t.Fatalf("Bad start PC. Got 0x%.4X want 0x%.4X", got, want)
			}
			// Loading the image mustn't look like a second reset.
			if got, want := m.cpu.S, uint8(0xFD); got != want {
				t.Errorf("Bad start S. Got 0x%.2X want 0x%.2X", got, want)
			}
			if got, want := m.cpu.P, uint8(0x24); got != want {
				t.Errorf("Bad start P. Got 0x%.2X want 0x%.2X", got, want)
			}
			got := m.run(config{trap: true})
			// 7 reset + LDX 2 + DEX 5*2 + BNE 4*3 + 2 + JMP 3
			want := result{
				Instructions: 12,
				Cycles:       36,
				Trapped:      true,
				TrapPC:       0x0405,
			}
			if diff := deep.Equal(got, want); diff != nil {
				t.Errorf("Bad result: %v\n%s", diff, spew.Sdump(m.cpu))
			}
			if got, want := m.cpu.X, uint8(0x00); got != want {
				t.Errorf("Bad X. Got 0x%.2X want 0x%.2X", got, want)
			}
		})
	}
}

func TestMaxCycles(t *testing.T) {
	m, err := newMachine(cpu.CPU_NMOS, 0xEA, false, []uint8{0x4C, 0x00, 0x04}, 0x0400, 0x0400)
	if err != nil {
		t.Fatalf("Can't create machine: %v", err)
	}
	got := m.run(config{maxCycles: 100})
	if got.Trapped || got.Err != nil {
		t.Fatalf("Run didn't stop on cycles: %s", spew.Sdump(got))
	}
	if got, want := got.Cycles, uint64(100); got != want {
		t.Errorf("Bad cycle count. Got %d want %d", got, want)
	}
}

func TestHalt(t *testing.T) {
	m, err := newMachine(cpu.CPU_NMOS, 0x00, false, []uint8{0xEA, 0x02}, 0x0400, 0x0400)
	if err != nil {
		t.Fatalf("Can't create machine: %v", err)
	}
	got := m.run(config{trap: true})
	if diff := deep.Equal(got.Err, error(cpu.UnimplementedOpcode{Opcode: 0x02})); diff != nil {
		t.Errorf("Bad halt error: %v", diff)
	}
	if got, want := got.Instructions, uint64(1); got != want {
		t.Errorf("Bad instruction count. Got %d want %d", got, want)
	}
}

func TestTrace(t *testing.T) {
	m, err := newMachine(cpu.CPU_NMOS, 0x00, false, countdown, 0x0400, 0x0400)
	if err != nil {
		t.Fatalf("Can't create machine: %v", err)
	}
	var b bytes.Buffer
	m.run(config{trap: true, trace: &b})
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if got, want := len(lines), 12; got != want {
		t.Fatalf("Bad trace length. Got %d want %d\n%s", got, want, b.String())
	}
	if got, want := lines[0], "0400 A2 05      LDX #05        A:00 X:00 Y:00 P:24 SP:FD PC:0400 CYC:7"; got != want {
		t.Errorf("Bad first trace line.\nGot  %q\nWant %q", got, want)
	}
	if !strings.HasPrefix(lines[11], "0405 4C 05 04   JMP 0405") {
		t.Errorf("Bad last trace line: %q", lines[11])
	}
}

func TestPIAInterrupt(t *testing.T) {
	prog := []uint8{
		0xA9, 0x02, // LDA #02
		0x8D, 0x9C, 0x02, // STA $029C - 1x timer with interrupt
		0x58,             // CLI
		0x4C, 0x06, 0x04, // JMP $0406
	}
	m, err := newMachine(cpu.CPU_NMOS, 0x00, true, prog, 0x0400, 0x0400)
	if err != nil {
		t.Fatalf("Can't create machine: %v", err)
	}
	m.ram.Load(0x0500, []uint8{
		0xAD, 0x84, 0x02, // LDA $0284 - ack and disable
		0xEE, 0x00, 0x02, // INC $0200
		0x40, // RTI
	})
	m.ram.SetVector(cpu.IRQ_VECTOR, 0x0500)
	res := m.run(config{maxCycles: 300})
	if res.Err != nil {
		t.Fatalf("CPU error: %v", res.Err)
	}
	if got, want := m.ram.Read(0x0200), uint8(0x01); got != want {
		t.Errorf("Handler ran wrong number of times. Got %d want %d\n%s", got, want, m.pia.Debug())
	}
	if m.pia.Raised() {
		t.Errorf("Interrupt still raised after handler acknowledged it")
	}
	if got, want := m.cpu.PC, uint16(0x0406); got != want {
		t.Errorf("CPU not back in main loop. Got PC 0x%.4X want 0x%.4X", got, want)
	}
}

func TestParseCPU(t *testing.T) {
	tests := []struct {
		in      string
		want    cpu.CPUType
		wantErr bool
	}{
		{in: "nmos", want: cpu.CPU_NMOS},
		{in: "RICOH", want: cpu.CPU_NMOS_RICOH},
		{in: "cmos", want: cpu.CPU_UNIMPLMENTED, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			got, err := parseCPU(test.in)
			if gotErr := err != nil; gotErr != test.wantErr {
				t.Fatalf("Bad error state. Got %v want error %t", err, test.wantErr)
			}
			if got != test.want {
				t.Errorf("Bad CPU type. Got %d want %d", got, test.want)
			}
		})
	}
}
