// hand_asm takes a filename and produces a bin file
// from parsing the output as a hand assembled file
// of the form:
//
// XXXX OP A1 A2 ....
//
// Where XXXX is the address field and OP is the opcode
// A1,A2 are then optional params as needed. Anything after the
// bytes (mnemonics, comments) is ignored so disassembler output
// can be fed back in. Lines not starting with an address are skipped.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jmchacon/m6502/cpu"
)

var (
	offset = flag.Int("offset", 0x0000, "Address of the first byte of output. Lines below this are an error and gaps are zero filled.")
)

// isHexByte returns whether tok is exactly 2 hex digits.
func isHexByte(tok string) bool {
	if len(tok) != 2 {
		return false
	}
	_, err := strconv.ParseUint(tok, 16, 8)
	return err == nil
}

// assemble reads a listing from r and returns the image it describes starting at offset.
// The byte count on each line must match the length of the opcode's addressing mode.
func assemble(r io.Reader, offset uint16) ([]byte, error) {
	scanner := bufio.NewScanner(r)
	var output []byte
	l := 0
	for scanner.Scan() {
		t := scanner.Text()
		l++
		toks := strings.Fields(t)
		if len(toks) == 0 || len(toks[0]) != 4 {
			continue
		}
		addr, err := strconv.ParseUint(toks[0], 16, 16)
		if err != nil {
			continue
		}
		var b []byte
		for _, v := range toks[1:] {
			if !isHexByte(v) || len(b) == 3 {
				break
			}
			n, _ := strconv.ParseUint(v, 16, 8)
			b = append(b, byte(n))
		}
		if len(b) == 0 {
			return nil, fmt.Errorf("line %d %q has an address and no bytes", l, t)
		}
		if inst, err := cpu.Decode(b[0]); err == nil {
			want := inst.Mode.Bytes()
			// BRK is followed by a padding byte which is optional here.
			if inst.Op == cpu.BRK && len(b) == 2 {
				want = 2
			}
			if len(b) > want {
				// Trailing hex looking tokens are part of the operand text (i.e. BNE FC).
				b = b[:want]
			}
			if len(b) < want {
				return nil, fmt.Errorf("line %d %q: %s needs %d bytes, got %d", l, t, inst, want, len(b))
			}
		} else {
			// Unassigned opcodes are data bytes.
			b = b[:1]
		}
		pos := int(offset) + len(output)
		if int(addr) < pos {
			return nil, fmt.Errorf("line %d %q: address 0x%.4X is before the current position 0x%.4X", l, t, addr, pos)
		}
		for ; pos < int(addr); pos++ {
			output = append(output, 0x00)
		}
		output = append(output, b...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return output, nil
}

func main() {
	flag.Parse()
	if len(flag.Args()) != 2 {
		log.Fatalf("Invalid command: %s [-offset <offset>] <input> <output>", os.Args[0])
	}
	fn := flag.Args()[0]
	out := flag.Args()[1]
	if *offset < 0 || *offset > 0xFFFF {
		log.Fatalf("Offset 0x%X out of range", *offset)
	}

	f, err := os.Open(fn)
	if err != nil {
		log.Fatalf("Can't open %q for input - %v", fn, err)
	}
	defer f.Close()
	output, err := assemble(f, uint16(*offset))
	if err != nil {
		log.Fatalf("Can't process %q - %v", fn, err)
	}
	if err := ioutil.WriteFile(out, output, 0644); err != nil {
		log.Fatalf("Got error writing to %q - %v", out, err)
	}
}
