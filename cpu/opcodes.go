package cpu

import (
	"fmt"

	"github.com/jmchacon/m6502/memory"
)

// execute performs the operation for the current instruction using the address computed by resolve.
// It returns any extra cycles owed beyond the base count (only branches do this).
func (p *Processor) execute(op Operation) int {
	switch op {
	case ADC:
		p.iADC(p.Fetch())
	case SBC:
		p.iSBC(p.Fetch())
	case AND:
		p.loadRegister(&p.A, p.A&p.Fetch())
	case EOR:
		p.loadRegister(&p.A, p.A^p.Fetch())
	case ORA:
		p.loadRegister(&p.A, p.A|p.Fetch())
	case ASL:
		p.writeBack(p.iASL(p.Fetch()))
	case LSR:
		p.writeBack(p.iLSR(p.Fetch()))
	case ROL:
		p.writeBack(p.iROL(p.Fetch()))
	case ROR:
		p.writeBack(p.iROR(p.Fetch()))
	case INC:
		p.storeWithFlags(p.Fetch()+1, p.addrAbs)
	case DEC:
		p.storeWithFlags(p.Fetch()-1, p.addrAbs)
	case INX:
		p.loadRegister(&p.X, p.X+1)
	case INY:
		p.loadRegister(&p.Y, p.Y+1)
	case DEX:
		p.loadRegister(&p.X, p.X-1)
	case DEY:
		p.loadRegister(&p.Y, p.Y-1)
	case LDA:
		p.loadRegister(&p.A, p.Fetch())
	case LDX:
		p.loadRegister(&p.X, p.Fetch())
	case LDY:
		p.loadRegister(&p.Y, p.Fetch())
	case STA:
		p.store(p.A, p.addrAbs)
	case STX:
		p.store(p.X, p.addrAbs)
	case STY:
		p.store(p.Y, p.addrAbs)
	case SEC:
		p.P |= P_CARRY
	case SED:
		p.P |= P_DECIMAL
	case SEI:
		p.P |= P_INTERRUPT
	case CLC:
		p.P &^= P_CARRY
	case CLD:
		p.P &^= P_DECIMAL
	case CLI:
		p.P &^= P_INTERRUPT
	case CLV:
		p.P &^= P_OVERFLOW
	case CMP:
		p.compare(p.A, p.Fetch())
	case CPX:
		p.compare(p.X, p.Fetch())
	case CPY:
		p.compare(p.Y, p.Fetch())
	case JMP:
		p.PC = p.addrAbs
	case JSR:
		p.iJSR()
	case RTI:
		p.iRTI()
	case RTS:
		p.iRTS()
	case BCC:
		return p.branch(p.P&P_CARRY == 0x00)
	case BCS:
		return p.branch(p.P&P_CARRY != 0x00)
	case BEQ:
		return p.branch(p.P&P_ZERO != 0x00)
	case BNE:
		return p.branch(p.P&P_ZERO == 0x00)
	case BMI:
		return p.branch(p.P&P_NEGATIVE != 0x00)
	case BPL:
		return p.branch(p.P&P_NEGATIVE == 0x00)
	case BVC:
		return p.branch(p.P&P_OVERFLOW == 0x00)
	case BVS:
		return p.branch(p.P&P_OVERFLOW != 0x00)
	case PHA:
		p.pushStack(p.A)
	case PHP:
		// B and S1 are always set on the pushed copy.
		p.pushStack(p.P | P_B | P_S1)
	case PLA:
		p.loadRegister(&p.A, p.popStack())
	case PLP:
		p.loadFlags(p.popStack())
	case TAX:
		p.loadRegister(&p.X, p.A)
	case TAY:
		p.loadRegister(&p.Y, p.A)
	case TSX:
		p.loadRegister(&p.X, p.S)
	case TXA:
		p.loadRegister(&p.A, p.X)
	case TXS:
		// No flags are changed for TXS.
		p.S = p.X
	case TYA:
		p.loadRegister(&p.A, p.Y)
	case BRK:
		// The byte after BRK is skipped so RTI returns past it.
		p.PC++
		p.interrupt(IRQ_VECTOR, true)
	case BIT:
		p.iBIT(p.Fetch())
	case NOP:
	case ALR:
		p.iALR(p.Fetch())
	case ANC:
		p.iANC(p.Fetch())
	case ARR:
		p.iARR(p.Fetch())
	case AXS:
		p.iAXS(p.Fetch())
	case LAX:
		p.iLAX(p.Fetch())
	case SAX:
		p.store(p.A&p.X, p.addrAbs)
	case DCP:
		p.iDCP(p.Fetch(), p.addrAbs)
	case ISC:
		p.iISC(p.Fetch(), p.addrAbs)
	case RLA:
		p.iRLA(p.Fetch(), p.addrAbs)
	case RRA:
		p.iRRA(p.Fetch(), p.addrAbs)
	case SLO:
		p.iSLO(p.Fetch(), p.addrAbs)
	case SRE:
		p.iSRE(p.Fetch(), p.addrAbs)
	case SKB, IGN:
		// These only perform the read.
		_ = p.Fetch()
	default:
		// Decode only hands out assigned operations so this can't happen.
		panic(fmt.Sprintf("no implementation for %s", op))
	}
	return 0
}

// zeroCheck sets the Z flag based on the register contents.
func (p *Processor) zeroCheck(reg uint8) {
	if reg == 0 {
		p.P |= P_ZERO
	} else {
		p.P &^= P_ZERO
	}
}

// negativeCheck sets the N flag based on the register contents.
func (p *Processor) negativeCheck(reg uint8) {
	if (reg & P_NEGATIVE) == 0x80 {
		p.P |= P_NEGATIVE
	} else {
		p.P &^= P_NEGATIVE
	}
}

// carryCheck sets the C flag if the result of an 8 bit ALU operation
// (passed as a 16 bit result) caused a carry out by generating a value >= 0x100.
// NOTE: normally this just means masking 0x100 but in some overflow cases for BCD
//       math the value can be 0x200 here so it's still a carry.
func (p *Processor) carryCheck(res uint16) {
	if res >= 0x100 {
		p.P |= P_CARRY
	} else {
		p.P &^= P_CARRY
	}
}

// overflowCheck sets the V flag if the result of the ALU operation
// caused a two's complement sign change.
// Taken from http://www.righto.com/2012/12/the-6502-overflow-flag-explained.html
func (p *Processor) overflowCheck(reg uint8, arg uint8, res uint8) {
	// If the originals signs differ from the end sign bit
	if (reg^res)&(arg^res)&0x80 != 0x00 {
		p.P |= P_OVERFLOW
	} else {
		p.P &^= P_OVERFLOW
	}
}

// loadRegister takes the val and inserts it into the register passed in. It then does
// Z and N checks against the new value.
func (p *Processor) loadRegister(reg *uint8, val uint8) {
	*reg = val
	p.zeroCheck(*reg)
	p.negativeCheck(*reg)
}

// loadFlags sets P from a pulled value. The actual flags register always has S1 set
// and B is never set in the register.
func (p *Processor) loadFlags(val uint8) {
	p.P = (val | P_S1) &^ P_B
}

// pushStack pushes the given byte onto the stack and adjusts the stack pointer accordingly.
func (p *Processor) pushStack(val uint8) {
	p.Ram.Write(kSTACK_PAGE+uint16(p.S), val)
	p.S--
}

// popStack pops the top byte off the stack and adjusts the stack pointer accordingly.
func (p *Processor) popStack() uint8 {
	p.S++
	return p.Ram.Read(kSTACK_PAGE + uint16(p.S))
}

// store implements the STA/STX/STY instruction for storing a value (from a register) in RAM.
func (p *Processor) store(val uint8, addr uint16) {
	p.Ram.Write(addr, val)
}

// storeWithFlags stores the val to the given addr and also sets Z/N flags accordingly.
// Generally used to implmenet INC/DEC.
func (p *Processor) storeWithFlags(val uint8, addr uint16) {
	p.zeroCheck(val)
	p.negativeCheck(val)
	p.store(val, addr)
}

// writeBack stores the result of a shift/rotate into A for accumulator mode
// or back into memory otherwise.
func (p *Processor) writeBack(val uint8) {
	if p.inst.Mode == MODE_ACCUMULATOR {
		p.A = val
		return
	}
	p.store(val, p.addrAbs)
}

// branch moves the PC by the relative offset if taken is true. Taking a branch costs one
// cycle and landing on a different page than the next instruction costs another.
func (p *Processor) branch(taken bool) int {
	if !taken {
		return 0
	}
	// Per http://www.6502.org/tutorials/6502opcodes.html
	// the wrong page is defined as the a different page than
	// the next byte after the jump. i.e. current PC at the moment.
	p.addrAbs = p.PC + p.addrRel
	extra := 1 + pageCrossed(p.PC, p.addrAbs)
	p.PC = p.addrAbs
	return extra
}

// interrupt pushes PC and P and then loads the PC from the given vector. B is only
// set in the pushed P for BRK. Returns the cycle cost of an interrupt sequence.
func (p *Processor) interrupt(vector uint16, brk bool) int {
	p.pushStack(uint8((p.PC & 0xFF00) >> 8))
	p.pushStack(uint8(p.PC & 0xFF))
	push := p.P | P_S1
	if brk {
		push |= P_B
	} else {
		push &^= P_B
	}
	p.pushStack(push)
	p.P |= P_INTERRUPT
	p.addrAbs = vector
	p.PC = memory.ReadAddr(p.Ram, vector)
	return INTERRUPT_CYCLES
}

// iADC implements the ADC/SBC instructions and sets all associated flags.
// For SBC (non BCD) simply ones-complement the arg before calling.
func (p *Processor) iADC(arg uint8) {
	// Pull the carry bit out which thankfully is the low bit so can be
	// used directly.
	carry := p.P & P_CARRY

	// The Ricoh version didn't implement BCD (used in NES)
	if (p.P&P_DECIMAL) != 0x00 && p.CPUType != CPU_NMOS_RICOH {
		// BCD details - http://6502.org/tutorials/decimal_mode.html
		// Also http://nesdev.com/6502_cpu.txt but it has errors
		aL := (p.A & 0x0F) + (arg & 0x0F) + carry
		// Low nibble fixup
		if aL >= 0x0A {
			aL = ((aL + 0x06) & 0x0f) + 0x10
		}
		sum := uint16(p.A&0xF0) + uint16(arg&0xF0) + uint16(aL)
		// High nibble fixup
		if sum >= 0xA0 {
			sum += 0x60
		}
		res := uint8(sum & 0xFF)
		seq := (p.A & 0xF0) + (arg & 0xF0) + aL
		bin := p.A + arg + carry
		p.overflowCheck(p.A, arg, seq)
		p.carryCheck(sum)
		p.negativeCheck(seq)
		p.zeroCheck(bin)
		p.A = res
		return
	}

	// Otherwise do normal binary math.
	sum := p.A + arg + carry
	p.overflowCheck(p.A, arg, sum)
	// Yes, could do bit checks here like the hardware but
	// just treating as uint16 math is simpler to code.
	p.carryCheck(uint16(p.A) + uint16(arg) + uint16(carry))

	// Now set the accumulator so the other flag checks are against the result.
	p.loadRegister(&p.A, sum)
}

// iSBC implements the SBC instruction for both binary and BCD modes (if implemented) and sets all associated flags.
func (p *Processor) iSBC(arg uint8) {
	// The Ricoh version didn't implement BCD (used in NES)
	if (p.P&P_DECIMAL) != 0x00 && p.CPUType != CPU_NMOS_RICOH {
		carry := p.P & P_CARRY

		// BCD details - http://6502.org/tutorials/decimal_mode.html
		// Also http://nesdev.com/6502_cpu.txt but it has errors
		aL := int8(p.A&0x0F) - int8(arg&0x0F) + int8(carry) - 1
		// Low nibble fixup
		if aL < 0 {
			aL = ((aL - 0x06) & 0x0F) - 0x10
		}
		sum := int16(p.A&0xF0) - int16(arg&0xF0) + int16(aL)
		// High nibble fixup
		if sum < 0x0000 {
			sum -= 0x60
		}
		res := uint8(sum & 0xFF)

		// Do normal binary math to set C,N,Z
		b := p.A + ^arg + carry
		p.overflowCheck(p.A, ^arg, b)
		p.negativeCheck(b)
		p.carryCheck(uint16(p.A) + uint16(^arg) + uint16(carry))
		p.zeroCheck(b)
		p.A = res
		return
	}

	// Otherwise binary mode is just ones complement the arg and ADC.
	p.iADC(^arg)
}

// iASL shifts val left returning the new value and setting C/N/Z.
func (p *Processor) iASL(val uint8) uint8 {
	n := val << 1
	p.carryCheck(uint16(val) << 1)
	p.zeroCheck(n)
	p.negativeCheck(n)
	return n
}

// iLSR shifts val right returning the new value and setting C/N/Z.
func (p *Processor) iLSR(val uint8) uint8 {
	n := val >> 1
	// Get bit0 from orig but in a 16 bit value and then shift it up into
	// the carry position
	p.carryCheck(uint16(val&0x01) << 8)
	p.zeroCheck(n)
	p.negativeCheck(n)
	return n
}

// iROL rotates val left through carry returning the new value and setting C/N/Z.
func (p *Processor) iROL(val uint8) uint8 {
	carry := p.P & P_CARRY
	n := (val << 1) | carry
	p.carryCheck(uint16(val) << 1)
	p.zeroCheck(n)
	p.negativeCheck(n)
	return n
}

// iROR rotates val right through carry returning the new value and setting C/N/Z.
func (p *Processor) iROR(val uint8) uint8 {
	carry := (p.P & P_CARRY) << 7
	n := (val >> 1) | carry
	// Just see if carry is set or not.
	p.carryCheck((uint16(val) << 8) & 0x0100)
	p.zeroCheck(n)
	p.negativeCheck(n)
	return n
}

// iBIT implements the BIT instruction for AND'ing against A
// and setting N/V based on the value.
func (p *Processor) iBIT(val uint8) {
	p.zeroCheck(p.A & val)
	p.negativeCheck(val)
	// Copy V from bit 6
	if val&P_OVERFLOW != 0x00 {
		p.P |= P_OVERFLOW
	} else {
		p.P &^= P_OVERFLOW
	}
}

// compare implements the logic for all CMP/CPX/CPY instructions and
// sets flags accordingly from the results.
func (p *Processor) compare(reg uint8, val uint8) {
	p.zeroCheck(reg - val)
	p.negativeCheck(reg - val)
	// A-M done as 2's complement addition by ones complement and add 1
	// This way we get valid sign extension and a carry bit test.
	p.carryCheck(uint16(reg) + uint16(^val) + uint16(1))
}

// iJSR pushes the address of the last byte of the JSR and jumps to the target.
// RTS handles this by adding one to the popped PC value.
func (p *Processor) iJSR() {
	ret := p.PC - 1
	p.pushStack(uint8((ret & 0xFF00) >> 8))
	p.pushStack(uint8(ret & 0xFF))
	p.PC = p.addrAbs
}

// iRTS pops the PC off the stack adding one to it.
func (p *Processor) iRTS() {
	lo := uint16(p.popStack())
	hi := uint16(p.popStack())
	p.PC = (hi << 8) + lo + 1
}

// iRTI pops the flags and PC off the stack for returning from an interrupt.
func (p *Processor) iRTI() {
	p.loadFlags(p.popStack())
	lo := uint16(p.popStack())
	hi := uint16(p.popStack())
	p.PC = (hi << 8) + lo
}

// iALR implements the undocumented opcode for ALR. This does AND #i and then LSR setting all associated flags.
func (p *Processor) iALR(arg uint8) {
	p.loadRegister(&p.A, p.iLSR(p.A&arg))
}

// iANC implements the undocumented opcode for ANC. This does AND #i and then sets carry based on bit 7 (sign extend).
func (p *Processor) iANC(arg uint8) {
	p.loadRegister(&p.A, p.A&arg)
	p.carryCheck(uint16(p.A) << 1)
}

// iARR implements the undocumented opcode for ARR. This does And #i and then ROR except some flags are set differently.
// Implemented as described in http://nesdev.com/6502_cpu.txt
func (p *Processor) iARR(arg uint8) {
	t := p.A & arg
	p.loadRegister(&p.A, p.iROR(t))
	// Flags are different based on BCD or not (since the ALU acts different).
	if p.P&P_DECIMAL != 0x00 && p.CPUType != CPU_NMOS_RICOH {
		// If bit 6 changed state between the AND and the rotate set V.
		if (t^p.A)&0x40 != 0x00 {
			p.P |= P_OVERFLOW
		} else {
			p.P &^= P_OVERFLOW
		}
		// Now do possible odd BCD fixups and set C
		ah := t >> 4
		al := t & 0x0F
		if (al + (al & 0x01)) > 5 {
			p.A = (p.A & 0xF0) | ((p.A + 6) & 0x0F)
		}
		if (ah + (ah & 1)) > 5 {
			p.P |= P_CARRY
			p.A += 0x60
		} else {
			p.P &^= P_CARRY
		}
		return
	}
	// C is bit 6
	p.carryCheck(uint16(p.A) << 2)
	// V is bit 5 ^ bit 6
	if ((p.A&0x40)>>6)^((p.A&0x20)>>5) != 0x00 {
		p.P |= P_OVERFLOW
	} else {
		p.P &^= P_OVERFLOW
	}
}

// iAXS implements the undocumented opcode for AXS. (A AND X) - arg (no borrow) setting all associated flags post SBC.
// V and D are never changed.
func (p *Processor) iAXS(arg uint8) {
	t := p.A & p.X
	p.carryCheck(uint16(t) + uint16(^arg) + 1)
	p.loadRegister(&p.X, t-arg)
}

// iLAX implements the undocumented opcode for LAX. This loads A and X with the same value and sets all associated flags.
func (p *Processor) iLAX(arg uint8) {
	p.loadRegister(&p.A, arg)
	p.loadRegister(&p.X, arg)
}

// iDCP implements the undocumented opcode for DCP. This decrements the given address and then does a CMP with A setting associated flags.
func (p *Processor) iDCP(val uint8, addr uint16) {
	p.store(val-1, addr)
	p.compare(p.A, val-1)
}

// iISC implements the undocumented opcode for ISC. This increments the given address and then does an SBC with setting associated flags.
func (p *Processor) iISC(val uint8, addr uint16) {
	p.store(val+1, addr)
	p.iSBC(val + 1)
}

// iSLO implements the undocumented opcode for SLO. This does an ASL on the given address and then OR's it against A. Sets flags and carry.
func (p *Processor) iSLO(val uint8, addr uint16) {
	n := p.iASL(val)
	p.store(n, addr)
	p.loadRegister(&p.A, n|p.A)
}

// iRLA implements the undocumented opcode for RLA. This does a ROL on the given address and then AND's it against A. Sets flags and carry.
func (p *Processor) iRLA(val uint8, addr uint16) {
	n := p.iROL(val)
	p.store(n, addr)
	p.loadRegister(&p.A, n&p.A)
}

// iSRE implements the undocumented opcode for SRE. This does a LSR on the given address and then EOR's it against A. Sets flags and carry.
func (p *Processor) iSRE(val uint8, addr uint16) {
	n := p.iLSR(val)
	p.store(n, addr)
	p.loadRegister(&p.A, n^p.A)
}

// iRRA implements the undocumented opcode for RRA. This does a ROR on the given address and then ADC's it against A. Sets flags and carry.
func (p *Processor) iRRA(val uint8, addr uint16) {
	n := p.iROR(val)
	p.store(n, addr)
	p.iADC(n)
}
