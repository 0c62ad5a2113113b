package cpu

// readPC returns the byte at PC and advances it.
func (p *Processor) readPC() uint8 {
	v := p.Ram.Read(p.PC)
	p.PC++
	return v
}

// readZPAddr reads a 16 bit pointer from the zero page. The high byte
// wraps within page zero so 0xFF reads its high byte from 0x00.
func (p *Processor) readZPAddr(addr uint8) uint16 {
	lo := uint16(p.Ram.Read(uint16(addr)))
	hi := uint16(p.Ram.Read(uint16(addr + 1)))
	return (hi << 8) + lo
}

// pageCrossed returns 1 if a and b are on different pages.
func pageCrossed(a, b uint16) int {
	if a&0xFF00 != b&0xFF00 {
		return 1
	}
	return 0
}

// resolve computes the effective address for the given mode into p.addrAbs (or p.addrRel for
// branches) consuming any operand bytes after the opcode. It returns 1 if indexing crossed a
// page boundary. The caller decides whether the instruction pays for that.
func (p *Processor) resolve(mode AddressingMode) int {
	switch mode {
	case MODE_IMPLIED:
		// Nothing to compute.
	case MODE_ACCUMULATOR:
		// The operand is A so latch it now.
		p.fetched = p.A
	case MODE_IMMEDIATE:
		// The operand is the next byte so point at it.
		p.addrAbs = p.PC
		p.PC++
	case MODE_ZP:
		p.addrAbs = uint16(p.readPC())
	case MODE_ZPX:
		// Does this as a uint8 so it wraps as needed.
		p.addrAbs = uint16(p.readPC() + p.X)
	case MODE_ZPY:
		p.addrAbs = uint16(p.readPC() + p.Y)
	case MODE_ABSOLUTE:
		lo := uint16(p.readPC())
		hi := uint16(p.readPC())
		p.addrAbs = (hi << 8) + lo
	case MODE_ABSOLUTEX:
		return p.absoluteIndexed(p.X)
	case MODE_ABSOLUTEY:
		return p.absoluteIndexed(p.Y)
	case MODE_RELATIVE:
		// Sign extend the offset. The branch itself computes the target.
		p.addrRel = uint16(int16(int8(p.readPC())))
	case MODE_INDIRECT:
		lo := uint16(p.readPC())
		hi := uint16(p.readPC())
		ptr := (hi << 8) + lo
		// The high byte of the target is read without carrying into the pointer's high byte.
		// i.e. JMP ($02FF) reads 0x02FF and 0x0200.
		next := (ptr & 0xFF00) + uint16(uint8(ptr&0xFF)+1)
		p.addrAbs = (uint16(p.Ram.Read(next)) << 8) + uint16(p.Ram.Read(ptr))
	case MODE_INDIRECTX:
		p.addrAbs = p.readZPAddr(p.readPC() + p.X)
	case MODE_INDIRECTY:
		base := p.readZPAddr(p.readPC())
		p.addrAbs = base + uint16(p.Y)
		return pageCrossed(base, p.addrAbs)
	}
	return 0
}

func (p *Processor) absoluteIndexed(reg uint8) int {
	lo := uint16(p.readPC())
	hi := uint16(p.readPC())
	base := (hi << 8) + lo
	p.addrAbs = base + uint16(reg)
	return pageCrossed(base, p.addrAbs)
}
