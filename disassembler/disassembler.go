// disassembler takes a filename and loads it and then
// disassembles it to stdout starting at the first instruction.
// If the filename ends in .prg (case insensitive) it will assume
// this is a C64 program file and use the first 2 bytes as the load
// address.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/jmchacon/m6502/disassemble"
	"github.com/jmchacon/m6502/memory"
)

var (
	startPC = flag.Int("start_pc", 0x0000, "PC value to start disassembling")
	offset  = flag.Int("offset", 0x0000, "Offset into RAM to start loading data. All other RAM will be zero'd out. Ignored for PRG files.")
	count   = flag.Int("count", 0, "If non-zero the number of bytes to disassemble instead of the image length")
)

func main() {
	flag.Parse()
	if len(flag.Args()) != 1 {
		log.Fatalf("Invalid command: %s [-start_pc <PC> -offset <offset> -count <bytes>] <filename>", os.Args[0])
	}
	fn := flag.Args()[0]

	b, err := ioutil.ReadFile(fn)
	if err != nil {
		log.Fatalf("Can't open %s - %v", fn, err)
	}
	pc := uint16(*startPC)
	if strings.HasSuffix(strings.ToLower(fn), ".prg") {
		if len(b) < 2 {
			log.Fatalf("%s is too short to be a PRG file", fn)
		}
		fmt.Println("C64 program file")
		// We're supplied with the load offset instead of using the flag (which we'll override).
		*offset = int((uint16(b[1]) << 8) + uint16(b[0]))
		pc = uint16(*offset)
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
	fmt.Printf("0x%.2X bytes at pc: %.4X\n", len(b), pc)

	f := memory.NewFlat(0x00)
	f.Load(uint16(*offset), b)

	total := len(b)
	if *count > 0 {
		total = *count
	}
	cnt := 0
	// Can't base it on PC since it may rollover so just disassemble until we run out of buffer.
	for cnt < total {
		dis, off := disassemble.Step(pc, f)
		pc += uint16(off)
		cnt += off
		fmt.Printf("%s\n", dis)
	}
}
