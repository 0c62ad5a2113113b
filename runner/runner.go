// runner takes a filename, loads it into memory and runs it on a 6502
// until it traps (an instruction which leaves PC unchanged), the CPU
// halts or a cycle limit is reached.
// If the filename ends in .prg (case insensitive) it will assume
// this is a C64 program file and use the first 2 bytes as the load
// address. Unless -start_pc is given the reset vector in the image is used.
package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/jmchacon/m6502/cpu"
	"github.com/jmchacon/m6502/disassemble"
	"github.com/jmchacon/m6502/memory"
	"github.com/jmchacon/m6502/pia6532"
	"github.com/jmchacon/m6502/statsview"
)

var (
	startPC   = flag.Int("start_pc", -1, "If non-negative the reset vector is set to this PC before starting")
	offset    = flag.Int("offset", 0x0000, "Offset into RAM to start loading data. Ignored for PRG files.")
	cpuType   = flag.String("cpu", "nmos", "CPU variant to emulate: nmos or ricoh")
	maxCycles = flag.Uint64("max_cycles", 0, "If non-zero stop after this many cycles")
	trace     = flag.Bool("trace", false, "Print the disassembly and registers for every instruction")
	trap      = flag.Bool("trap", true, "Stop when an instruction jumps or branches to itself")
	successPC = flag.Int("success_pc", -1, "If non-negative trapping anywhere other than this PC is a failure")
	fill      = flag.Int("fill", 0x00, "Value RAM is filled with on power on")
	pia       = flag.Bool("pia", false, "Map a 6532 at 0x0080-0x00FF (RAM) and 0x0280-0x029F (I/O) with its timer on the IRQ line")
	stats     = flag.Bool("statsview", false, "Serve live runtime statistics while running. Requires building with -tags statsview.")
)

const (
	kPIA_RAM_START = uint16(0x0080)
	kPIA_RAM_END   = uint16(0x00FF)
	kPIA_IO_START  = uint16(0x0280)
	kPIA_IO_END    = uint16(0x029F)
)

// machine is a CPU wired to 64k of RAM and optionally a PIA.
type machine struct {
	cpu *cpu.Processor
	ram *memory.Flat
	pia *pia6532.Chip
}

// config controls a run.
type config struct {
	// maxCycles if non-zero stops the run once the CPU has been clocked this many times.
	maxCycles uint64
	// trace if non-nil gets one line per instruction.
	trace io.Writer
	// trap stops the run when an instruction leaves PC where it started.
	trap bool
}

// result describes how a run ended.
type result struct {
	Instructions uint64
	Cycles       uint64
	Trapped      bool
	TrapPC       uint16
	Err          error
}

func parseCPU(s string) (cpu.CPUType, error) {
	switch strings.ToLower(s) {
	case "nmos":
		return cpu.CPU_NMOS, nil
	case "ricoh":
		return cpu.CPU_NMOS_RICOH, nil
	}
	return cpu.CPU_UNIMPLMENTED, fmt.Errorf("unknown cpu type %q", s)
}

// newMachine powers on a CPU, loads image at offset and powers the CPU on again so it
// starts from the reset vector with power on register values. A non-negative start overwrites the reset vector first.
// With withPIA the PIA RAM and I/O are mapped over the flat RAM and its timer drives IRQ.
func newMachine(typ cpu.CPUType, fill uint8, withPIA bool, image []byte, offset uint16, start int) (*machine, error) {
	m := &machine{
		ram: memory.NewFlat(fill),
	}
	def := &cpu.ChipDef{
		Cpu: typ,
		Ram: m.ram,
	}
	if withPIA {
		m.pia = pia6532.Init()
		bus, err := memory.NewMapped(memory.POLICY_IGNORE, 0x00,
			memory.Region{Name: "zero page", Start: 0x0000, End: kPIA_RAM_START - 1, Bank: &memory.Window{Bank: m.ram}},
			memory.Region{Name: "PIA RAM", Start: kPIA_RAM_START, End: kPIA_RAM_END, Mask: 0x007F, Bank: m.pia},
			memory.Region{Name: "RAM", Start: kPIA_RAM_END + 1, End: kPIA_IO_START - 1, Bank: &memory.Window{Bank: m.ram, Base: kPIA_RAM_END + 1}},
			memory.Region{Name: "PIA I/O", Start: kPIA_IO_START, End: kPIA_IO_END, Mask: 0x001F, Bank: m.pia.IO()},
			memory.Region{Name: "high RAM", Start: kPIA_IO_END + 1, End: 0xFFFF, Bank: &memory.Window{Bank: m.ram, Base: kPIA_IO_END + 1}},
		)
		if err != nil {
			return nil, err
		}
		def.Ram = bus
		def.Irq = m.pia
	}
	c, err := cpu.Init(def)
	if err != nil {
		return nil, err
	}
	m.cpu = c

	// Power on cleared memory so the image goes in now.
	m.ram.Load(offset, image)
	if m.pia != nil {
		// The PIA RAM shadows this part of the image.
		for a := kPIA_RAM_START; a <= kPIA_RAM_END; a++ {
			m.pia.Write(a, m.ram.Read(a))
		}
	}
	if start >= 0 {
		m.ram.SetVector(cpu.RESET_VECTOR, uint16(start))
	}
	c.PowerOn()
	return m, nil
}

// run clocks the machine until it traps, halts or runs out of cycles.
func (m *machine) run(cfg config) result {
	c := m.cpu
	var res result
	pc := c.PC
	inInst := false
	for {
		if cfg.maxCycles > 0 && c.TotalCycles() >= cfg.maxCycles {
			break
		}
		if !c.Busy() {
			pc = c.PC
			inInst = true
			if cfg.trace != nil {
				dis, _ := disassemble.Step(pc, c.Ram)
				fmt.Fprintf(cfg.trace, "%s %s\n", dis, c)
			}
		}
		done, err := c.Clock()
		if m.pia != nil {
			m.pia.Tick()
		}
		if err != nil {
			res.Err = err
			break
		}
		// The reset sequence isn't an instruction.
		if done && inInst {
			res.Instructions++
			if cfg.trap && c.PC == pc {
				res.Trapped = true
				res.TrapPC = pc
				break
			}
		}
	}
	res.Cycles = c.TotalCycles()
	return res
}

func main() {
	flag.Parse()
	if len(flag.Args()) != 1 {
		log.Fatalf("Invalid command: %s [-start_pc <PC> -offset <offset> -cpu <nmos|ricoh> -max_cycles <N> -trace -trap -success_pc <PC> -fill <val> -pia -statsview] <filename>", os.Args[0])
	}
	fn := flag.Args()[0]

	typ, err := parseCPU(*cpuType)
	if err != nil {
		log.Fatalf("Bad -cpu: %v", err)
	}
	if *fill < 0 || *fill > 0xFF {
		log.Fatalf("Fill 0x%X out of range", *fill)
	}
	if *startPC > 0xFFFF {
		log.Fatalf("Start PC 0x%X out of range", *startPC)
	}

	b, err := ioutil.ReadFile(fn)
	if err != nil {
		log.Fatalf("Can't open %s - %v", fn, err)
	}
	if strings.HasSuffix(strings.ToLower(fn), ".prg") {
		if len(b) < 2 {
			log.Fatalf("%s is too short to be a PRG file", fn)
		}
		// We're supplied with the load offset instead of using the flag (which we'll override).
		*offset = int((uint16(b[1]) << 8) + uint16(b[0]))
		if *startPC < 0 {
			*startPC = *offset
		}
		b = b[2:]
	}
	if *offset < 0 || *offset > 0xFFFF {
		log.Fatalf("Offset 0x%X out of range", *offset)
	}
	max := 65536 - *offset
	if l := len(b); l > max {
		log.Printf("Length %d at offset %d too long, truncating to 64k", l, *offset)
		b = b[:max]
	}

	m, err := newMachine(typ, uint8(*fill), *pia, b, uint16(*offset), *startPC)
	if err != nil {
		log.Fatalf("Can't create machine: %v", err)
	}
	if *stats {
		if !statsview.Available() {
			log.Fatalf("-statsview requires building with -tags statsview")
		}
		statsview.Launch(os.Stdout, log.Printf)
	}
	cfg := config{
		maxCycles: *maxCycles,
		trap:      *trap,
	}
	if *trace {
		cfg.trace = os.Stdout
	}
	res := m.run(cfg)
	fmt.Printf("%d instructions in %d cycles\n%s\n", res.Instructions, res.Cycles, m.cpu)
	switch {
	case res.Err != nil:
		log.Fatalf("CPU halted: %v", res.Err)
	case res.Trapped && *successPC >= 0 && res.TrapPC != uint16(*successPC):
		log.Fatalf("Trapped at 0x%.4X, success is 0x%.4X", res.TrapPC, *successPC)
	case res.Trapped:
		fmt.Printf("Trapped at 0x%.4X\n", res.TrapPC)
	default:
		fmt.Printf("Stopped after %d cycles\n", res.Cycles)
	}
}
