// This file is part of pp5021sim.
//
// pp5021sim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// pp5021sim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with pp5021sim.  If not, see <https://www.gnu.org/licenses/>.

package cpu

import "math/bits"

// thumbMoveShiftedRegister implements format 1 - LSL/LSR/ASR by immediate.
func (c *CPU) thumbMoveShiftedRegister(opcode uint16) (int, error) {
	op := (opcode >> 11) & 0x3
	amount := uint32((opcode >> 6) & 0x1F)
	rs := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	value, carry := shiftByAmount(shiftType(op), c.GetReg(rs), amount, c.regs.C(), true)
	c.SetReg(rd, value)
	c.regs.SetNZ(value)
	c.regs.SetC(carry)
	return 1, nil
}

// thumbAddSubtract implements format 2 - three-operand ADD/SUB with an
// immediate or register third operand.
func (c *CPU) thumbAddSubtract(opcode uint16) (int, error) {
	immediate := opcode&0x0400 != 0
	sub := opcode&0x0200 != 0
	field := uint32((opcode >> 6) & 0x7)
	rs := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	var operand uint32
	if immediate {
		operand = field
	} else {
		operand = c.GetReg(int(field))
	}

	rsVal := c.GetReg(rs)
	var result uint32
	var carry, overflow bool
	if sub {
		result, carry, overflow = subWithBorrow(rsVal, operand)
	} else {
		result, carry, overflow = addWithCarry(rsVal, operand, false)
	}
	c.SetReg(rd, result)
	c.regs.SetNZ(result)
	c.regs.SetC(carry)
	c.regs.SetV(overflow)
	return 1, nil
}

// thumbMovCmpAddSubImm implements format 3 - MOV/CMP/ADD/SUB with an 8-bit
// immediate against a single low register.
func (c *CPU) thumbMovCmpAddSubImm(opcode uint16) (int, error) {
	op := (opcode >> 11) & 0x3
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode & 0xFF)
	rdVal := c.GetReg(rd)

	switch op {
	case 0b00: // MOV
		c.SetReg(rd, imm)
		c.regs.SetNZ(imm)
	case 0b01: // CMP
		result, carry, overflow := subWithBorrow(rdVal, imm)
		c.regs.SetNZ(result)
		c.regs.SetC(carry)
		c.regs.SetV(overflow)
	case 0b10: // ADD
		result, carry, overflow := addWithCarry(rdVal, imm, false)
		c.SetReg(rd, result)
		c.regs.SetNZ(result)
		c.regs.SetC(carry)
		c.regs.SetV(overflow)
	case 0b11: // SUB
		result, carry, overflow := subWithBorrow(rdVal, imm)
		c.SetReg(rd, result)
		c.regs.SetNZ(result)
		c.regs.SetC(carry)
		c.regs.SetV(overflow)
	}
	return 1, nil
}

// thumbALUOperations implements format 4 - the sixteen two-operand ALU
// opcodes over low registers.
func (c *CPU) thumbALUOperations(opcode uint16) (int, error) {
	op := (opcode >> 6) & 0xF
	rs := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	rdVal := c.GetReg(rd)
	rsVal := c.GetReg(rs)

	var result uint32
	writeback := true
	cycles := 1

	switch op {
	case 0x0: // AND
		result = rdVal & rsVal
	case 0x1: // EOR
		result = rdVal ^ rsVal
	case 0x2: // LSL
		var carry bool
		result, carry = shiftByAmount(shiftLSL, rdVal, rsVal&0xFF, c.regs.C(), false)
		c.regs.SetC(carry)
	case 0x3: // LSR
		var carry bool
		result, carry = shiftByAmount(shiftLSR, rdVal, rsVal&0xFF, c.regs.C(), false)
		c.regs.SetC(carry)
	case 0x4: // ASR
		var carry bool
		result, carry = shiftByAmount(shiftASR, rdVal, rsVal&0xFF, c.regs.C(), false)
		c.regs.SetC(carry)
	case 0x5: // ADC
		var carry, overflow bool
		result, carry, overflow = addWithCarry(rdVal, rsVal, c.regs.C())
		c.regs.SetC(carry)
		c.regs.SetV(overflow)
	case 0x6: // SBC
		var carry, overflow bool
		result, carry, overflow = subWithBorrow2(rdVal, rsVal, c.regs.C())
		c.regs.SetC(carry)
		c.regs.SetV(overflow)
	case 0x7: // ROR
		var carry bool
		result, carry = shiftByAmount(shiftROR, rdVal, rsVal&0xFF, c.regs.C(), false)
		c.regs.SetC(carry)
	case 0x8: // TST
		result = rdVal & rsVal
		writeback = false
	case 0x9: // NEG
		var carry, overflow bool
		result, carry, overflow = subWithBorrow(0, rsVal)
		c.regs.SetC(carry)
		c.regs.SetV(overflow)
	case 0xA: // CMP
		var carry, overflow bool
		result, carry, overflow = subWithBorrow(rdVal, rsVal)
		c.regs.SetC(carry)
		c.regs.SetV(overflow)
		writeback = false
	case 0xB: // CMN
		var carry, overflow bool
		result, carry, overflow = addWithCarry(rdVal, rsVal, false)
		c.regs.SetC(carry)
		c.regs.SetV(overflow)
		writeback = false
	case 0xC: // ORR
		result = rdVal | rsVal
	case 0xD: // MUL
		result = rdVal * rsVal
		cycles = 2
	case 0xE: // BIC
		result = rdVal &^ rsVal
	case 0xF: // MVN
		result = ^rsVal
	}

	c.regs.SetNZ(result)
	if writeback {
		c.SetReg(rd, result)
	}
	return cycles, nil
}

// thumbHiRegisterOps implements format 5 - ADD/CMP/MOV/BX across the full
// register file (including the banked Hi registers R8-R15).
func (c *CPU) thumbHiRegisterOps(opcode uint16) (int, error) {
	op := (opcode >> 8) & 0x3
	rs := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)
	if opcode&0x80 != 0 {
		rd += 8
	}
	if opcode&0x40 != 0 {
		rs += 8
	}

	switch op {
	case 0b00: // ADD
		c.SetReg(rd, c.GetReg(rd)+c.GetReg(rs))
	case 0b01: // CMP
		result, carry, overflow := subWithBorrow(c.GetReg(rd), c.GetReg(rs))
		c.regs.SetNZ(result)
		c.regs.SetC(carry)
		c.regs.SetV(overflow)
	case 0b10: // MOV
		c.SetReg(rd, c.GetReg(rs))
	case 0b11: // BX
		target := c.GetReg(rs)
		c.regs.SetT(target&1 != 0)
		c.SetReg(15, target)
		return 3, nil
	}

	if rd == 15 {
		return 3, nil
	}
	return 1, nil
}

// thumbPCRelativeLoad implements format 6 - a word load relative to the
// word-aligned PC.
func (c *CPU) thumbPCRelativeLoad(opcode uint16) (int, error) {
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) << 2

	base := c.GetReg(15) &^ 3
	c.SetReg(rd, c.mem.Read32(base+imm))
	return 2, nil
}

// thumbLoadStoreRegOffset implements format 7 - byte/word load or store at a
// register+register address.
func (c *CPU) thumbLoadStoreRegOffset(opcode uint16) (int, error) {
	load := opcode&0x0800 != 0
	byteAccess := opcode&0x0400 != 0
	rm := int((opcode >> 6) & 0x7)
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	addr := c.GetReg(rb) + c.GetReg(rm)
	cycles := 1
	switch {
	case load && byteAccess:
		c.SetReg(rd, uint32(c.mem.Read8(addr)))
		cycles = 2
	case load && !byteAccess:
		c.SetReg(rd, c.mem.Read32(addr))
		cycles = 2
	case !load && byteAccess:
		c.mem.Write8(addr, uint8(c.GetReg(rd)))
	default:
		c.mem.Write32(addr, c.GetReg(rd))
	}
	return cycles, nil
}

// thumbLoadStoreSignExtended implements format 8 - halfword and
// sign-extended byte/halfword load, halfword store.
func (c *CPU) thumbLoadStoreSignExtended(opcode uint16) (int, error) {
	hFlag := opcode&0x0800 != 0
	sFlag := opcode&0x0400 != 0
	rm := int((opcode >> 6) & 0x7)
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	addr := c.GetReg(rb) + c.GetReg(rm)

	switch {
	case !hFlag && !sFlag: // STRH
		c.mem.Write16(addr, uint16(c.GetReg(rd)))
		return 1, nil
	case !hFlag && sFlag: // LDSB
		c.SetReg(rd, uint32(int32(int8(c.mem.Read8(addr)))))
	case hFlag && !sFlag: // LDRH
		c.SetReg(rd, uint32(c.mem.Read16(addr)))
	default: // LDSH
		c.SetReg(rd, uint32(int32(int16(c.mem.Read16(addr)))))
	}
	return 2, nil
}

// thumbLoadStoreImmOffset implements format 9 - byte/word load or store at a
// register+5-bit-immediate address.
func (c *CPU) thumbLoadStoreImmOffset(opcode uint16) (int, error) {
	byteAccess := opcode&0x1000 != 0
	load := opcode&0x0800 != 0
	imm := uint32((opcode >> 6) & 0x1F)
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	cycles := 1
	if byteAccess {
		addr := c.GetReg(rb) + imm
		if load {
			c.SetReg(rd, uint32(c.mem.Read8(addr)))
			cycles = 2
		} else {
			c.mem.Write8(addr, uint8(c.GetReg(rd)))
		}
	} else {
		addr := c.GetReg(rb) + imm*4
		if load {
			c.SetReg(rd, c.mem.Read32(addr))
			cycles = 2
		} else {
			c.mem.Write32(addr, c.GetReg(rd))
		}
	}
	return cycles, nil
}

// thumbLoadStoreHalfword implements format 10 - halfword load/store at a
// register+5-bit-immediate (scaled by 2) address.
func (c *CPU) thumbLoadStoreHalfword(opcode uint16) (int, error) {
	load := opcode&0x0800 != 0
	imm := uint32((opcode>>6)&0x1F) * 2
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	addr := c.GetReg(rb) + imm
	if load {
		c.SetReg(rd, uint32(c.mem.Read16(addr)))
		return 2, nil
	}
	c.mem.Write16(addr, uint16(c.GetReg(rd)))
	return 1, nil
}

// thumbSPRelativeLoadStore implements format 11 - word load/store relative
// to the current stack pointer.
func (c *CPU) thumbSPRelativeLoadStore(opcode uint16) (int, error) {
	load := opcode&0x0800 != 0
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) << 2

	addr := c.GetReg(13) + imm
	if load {
		c.SetReg(rd, c.mem.Read32(addr))
		return 2, nil
	}
	c.mem.Write32(addr, c.GetReg(rd))
	return 1, nil
}

// thumbLoadAddress implements format 12 - computing a PC- or SP-relative
// address into a low register (no memory access).
func (c *CPU) thumbLoadAddress(opcode uint16) (int, error) {
	useSP := opcode&0x0800 != 0
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) << 2

	var base uint32
	if useSP {
		base = c.GetReg(13)
	} else {
		base = c.GetReg(15) &^ 3
	}
	c.SetReg(rd, base+imm)
	return 1, nil
}

// thumbAddOffsetToSP implements format 13 - adjusting SP by a signed
// 7-bit-times-4 immediate.
func (c *CPU) thumbAddOffsetToSP(opcode uint16) (int, error) {
	negative := opcode&0x80 != 0
	imm := uint32(opcode&0x7F) << 2

	if negative {
		c.SetReg(13, c.GetReg(13)-imm)
	} else {
		c.SetReg(13, c.GetReg(13)+imm)
	}
	return 1, nil
}

// thumbPushPopRegisters implements format 14 - PUSH/POP with the optional
// LR/PC slot. The stack grows down; LR sits at the highest address of a
// push so that POP (ascending) reads PC last, matching the "register 7
// first, LR/PC last" convention of the real core.
func (c *CPU) thumbPushPopRegisters(opcode uint16) (int, error) {
	load := opcode&0x0800 != 0
	includeLRorPC := opcode&0x0100 != 0
	regList := uint8(opcode & 0xFF)

	count := bits.OnesCount8(regList)
	if includeLRorPC {
		count++
	}

	if load {
		addr := c.GetReg(13)
		for i := 0; i < 8; i++ {
			if regList&(1<<uint(i)) != 0 {
				c.SetReg(i, c.mem.Read32(addr))
				addr += 4
			}
		}
		if includeLRorPC {
			c.SetReg(15, c.mem.Read32(addr)&^1)
			addr += 4
		}
		c.SetReg(13, addr)
	} else {
		start := c.GetReg(13) - uint32(count)*4
		addr := start
		for i := 0; i < 8; i++ {
			if regList&(1<<uint(i)) != 0 {
				c.mem.Write32(addr, c.GetReg(i))
				addr += 4
			}
		}
		if includeLRorPC {
			c.mem.Write32(addr, c.GetReg(14))
			addr += 4
		}
		c.SetReg(13, start)
	}
	return count + 1, nil
}

// thumbMultipleLoadStore implements format 15 - LDMIA/STMIA over the low
// registers, with the base register always written back.
func (c *CPU) thumbMultipleLoadStore(opcode uint16) (int, error) {
	load := opcode&0x0800 != 0
	rb := int((opcode >> 8) & 0x7)
	regList := uint8(opcode & 0xFF)

	addr := c.GetReg(rb)
	for i := 0; i < 8; i++ {
		if regList&(1<<uint(i)) == 0 {
			continue
		}
		if load {
			c.SetReg(i, c.mem.Read32(addr))
		} else {
			c.mem.Write32(addr, c.GetReg(i))
		}
		addr += 4
	}
	c.SetReg(rb, addr)
	return bits.OnesCount8(regList) + 1, nil
}

// thumbConditionalBranch implements format 16 - a PC-relative branch gated
// by one of the 16 ARM condition codes.
func (c *CPU) thumbConditionalBranch(opcode uint16) (int, error) {
	cond := uint32((opcode >> 8) & 0xF)
	offset := int32(int8(opcode & 0xFF))

	if !c.evalCondition(cond) {
		return 1, nil
	}
	target := uint32(int32(c.GetReg(15)) + offset*2)
	c.SetReg(15, target)
	return 3, nil
}

// thumbSoftwareInterrupt implements format 17.
func (c *CPU) thumbSoftwareInterrupt(opcode uint16) (int, error) {
	c.enter(ExceptionSWI, c.regs.PC())
	return 0, nil
}

// thumbUnconditionalBranch implements format 18 - an unconditional
// PC-relative branch with an 11-bit signed offset.
func (c *CPU) thumbUnconditionalBranch(opcode uint16) (int, error) {
	raw := uint32(opcode & 0x7FF)
	if raw&0x400 != 0 {
		raw |= 0xFFFFF800
	}
	offset := int32(raw) << 1

	target := uint32(int32(c.GetReg(15)) + offset)
	c.SetReg(15, target)
	return 3, nil
}

// thumbLongBranchWithLink implements format 19 - BL, encoded as a pair of
// halfwords. The first stages a target address into LR; the second
// combines it with LR to form the branch target and leaves the return
// address (with its low bit set, a historical Thumb-interworking marker)
// in LR.
func (c *CPU) thumbLongBranchWithLink(opcode uint16) (int, error) {
	low := opcode&0x0800 != 0
	offset := uint32(opcode & 0x7FF)

	if !low {
		raw := offset << 12
		if raw&0x400000 != 0 {
			raw |= 0xFF800000
		}
		c.regs.Set(14, uint32(int32(c.GetReg(15))+int32(raw)))
		return 1, nil
	}

	rawPC := c.regs.PC()
	target := c.regs.Get(14) + (offset << 1)
	c.regs.Set(14, rawPC|1)
	c.SetReg(15, target)
	return 3, nil
}
