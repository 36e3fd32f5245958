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

// dataProcOpcode identifies one of the sixteen ARM data-processing ALU
// operations (bits[24:21] of the instruction word).
type dataProcOpcode uint32

const (
	opAND dataProcOpcode = iota
	opEOR
	opSUB
	opRSB
	opADD
	opADC
	opSBC
	opRSC
	opTST
	opTEQ
	opCMP
	opCMN
	opORR
	opMOV
	opBIC
	opMVN
)

// execDataProcessing implements the sixteen ALU opcodes, both immediate and
// register-shifted-register operand forms.
func (c *CPU) execDataProcessing(word uint32) (int, error) {
	immediate := (word>>25)&1 == 1
	op := dataProcOpcode((word >> 21) & 0xF)
	setFlags := (word>>20)&1 == 1
	rn := int((word >> 16) & 0xF)
	rd := int((word >> 12) & 0xF)

	cycles := 1

	var operand2 uint32
	var shiftCarry bool
	haveShiftCarry := false

	if immediate {
		imm8 := word & 0xFF
		rotate := (word >> 8) & 0xF
		value, carryOut, carryIn := shifterImmediate(imm8, rotate)
		if carryIn {
			carryOut = c.regs.C()
		}
		operand2, shiftCarry, haveShiftCarry = value, carryOut, true
	} else {
		rm := int(word & 0xF)
		st := shiftType((word >> 5) & 0x3)
		byRegister := (word>>4)&1 == 1

		var amount uint32
		if byRegister {
			rs := int((word >> 8) & 0xF)
			amount = c.GetReg(rs) & 0xFF
			cycles++
		} else {
			amount = (word >> 7) & 0x1F
		}

		value, carryOut := shiftByAmount(st, c.GetReg(rm), amount, c.regs.C(), !byRegister)
		operand2, shiftCarry, haveShiftCarry = value, carryOut, true
	}

	rnVal := c.GetReg(rn)
	var result uint32
	writeback := true
	var carry, overflow bool
	haveArith := false

	switch op {
	case opAND:
		result = rnVal & operand2
	case opEOR:
		result = rnVal ^ operand2
	case opSUB:
		result, carry, overflow = subWithBorrow(rnVal, operand2)
		haveArith = true
	case opRSB:
		result, carry, overflow = subWithBorrow(operand2, rnVal)
		haveArith = true
	case opADD:
		result, carry, overflow = addWithCarry(rnVal, operand2, false)
		haveArith = true
	case opADC:
		result, carry, overflow = addWithCarry(rnVal, operand2, c.regs.C())
		haveArith = true
	case opSBC:
		result, carry, overflow = subWithBorrow2(rnVal, operand2, c.regs.C())
		haveArith = true
	case opRSC:
		result, carry, overflow = subWithBorrow2(operand2, rnVal, c.regs.C())
		haveArith = true
	case opTST:
		result = rnVal & operand2
		writeback = false
	case opTEQ:
		result = rnVal ^ operand2
		writeback = false
	case opCMP:
		result, carry, overflow = subWithBorrow(rnVal, operand2)
		haveArith = true
		writeback = false
	case opCMN:
		result, carry, overflow = addWithCarry(rnVal, operand2, false)
		haveArith = true
		writeback = false
	case opORR:
		result = rnVal | operand2
	case opMOV:
		result = operand2
	case opBIC:
		result = rnVal &^ operand2
	case opMVN:
		result = ^operand2
	}

	if setFlags {
		if rd == 15 {
			// writing the flags as a side effect of a PC-destination
			// instruction restores the whole CPSR from SPSR instead of
			// touching individual flags.
			if spsr, ok := c.regs.SPSR(); ok {
				c.regs.SetCPSR(spsr)
			}
		} else {
			c.regs.SetNZ(result)
			if haveArith {
				c.regs.SetC(carry)
				c.regs.SetV(overflow)
			} else if haveShiftCarry {
				c.regs.SetC(shiftCarry)
			}
		}
	}

	if writeback {
		c.SetReg(rd, result)
		if rd == 15 {
			cycles += 2
		}
	}

	return cycles, nil
}

// addWithCarry computes a+b+carryIn and the resulting carry-out/overflow,
// per the standard ARM ADD/ADC/CMN definition.
func addWithCarry(a, b uint32, carryIn bool) (result uint32, carryOut, overflow bool) {
	var cin uint64
	if carryIn {
		cin = 1
	}
	wide := uint64(a) + uint64(b) + cin
	result = uint32(wide)
	carryOut = wide > 0xFFFFFFFF
	signA, signB, signR := a&0x80000000, b&0x80000000, result&0x80000000
	overflow = signA == signB && signR != signA
	return
}

// subWithBorrow computes a-b (SUB/RSB/CMP), which on ARM is defined as
// a + ^b + 1.
func subWithBorrow(a, b uint32) (result uint32, carryOut, overflow bool) {
	return addWithCarry(a, ^b, true)
}

// subWithBorrow2 computes a-b-(!carryIn), i.e. SBC/RSC.
func subWithBorrow2(a, b uint32, carryIn bool) (result uint32, carryOut, overflow bool) {
	return addWithCarry(a, ^b, carryIn)
}

// execSingleDataTransfer implements LDR/STR (word and byte, all four
// addressing-mode combinations).
func (c *CPU) execSingleDataTransfer(word uint32) (int, error) {
	registerOffset := (word>>25)&1 == 1
	preIndex := (word>>24)&1 == 1
	up := (word>>23)&1 == 1
	byteAccess := (word>>22)&1 == 1
	writeback := (word>>21)&1 == 1
	load := (word>>20)&1 == 1
	rn := int((word >> 16) & 0xF)
	rd := int((word >> 12) & 0xF)

	var offset uint32
	if registerOffset {
		rm := int(word & 0xF)
		st := shiftType((word >> 5) & 0x3)
		amount := (word >> 7) & 0x1F
		offset, _ = shiftByAmount(st, c.GetReg(rm), amount, c.regs.C(), true)
	} else {
		offset = word & 0xFFF
	}

	base := c.GetReg(rn)
	addr := base
	if preIndex {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	cycles := 1
	if load {
		cycles = 2
		var v uint32
		if byteAccess {
			v = uint32(c.mem.Read8(addr))
		} else {
			v = c.mem.Read32(addr)
		}
		c.SetReg(rd, v)
		if rd == 15 {
			cycles++
		}
	} else {
		var v uint32
		if rd == 15 {
			v = c.pcOperand(4) + 4
		} else {
			v = c.GetReg(rd)
		}
		if byteAccess {
			c.mem.Write8(addr, uint8(v))
		} else {
			c.mem.Write32(addr, v)
		}
	}

	if !preIndex {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
		c.SetReg(rn, addr)
	} else if writeback {
		c.SetReg(rn, addr)
	}

	return cycles, nil
}

// execHalfwordTransfer implements LDRH/STRH/LDRSB/LDRSH.
func (c *CPU) execHalfwordTransfer(word uint32) (int, error) {
	preIndex := (word>>24)&1 == 1
	up := (word>>23)&1 == 1
	immediateOffset := (word>>22)&1 == 1
	writeback := (word>>21)&1 == 1
	load := (word>>20)&1 == 1
	rn := int((word >> 16) & 0xF)
	rd := int((word >> 12) & 0xF)
	sh := (word >> 5) & 0x3

	var offset uint32
	if immediateOffset {
		hi := (word >> 8) & 0xF
		lo := word & 0xF
		offset = hi<<4 | lo
	} else {
		offset = c.GetReg(int(word & 0xF))
	}

	base := c.GetReg(rn)
	addr := base
	if preIndex {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	if load {
		switch sh {
		case 0b01:
			c.SetReg(rd, uint32(c.mem.Read16(addr)))
		case 0b10:
			c.SetReg(rd, uint32(int32(int8(c.mem.Read8(addr)))))
		case 0b11:
			c.SetReg(rd, uint32(int32(int16(c.mem.Read16(addr)))))
		}
	} else {
		c.mem.Write16(addr, uint16(c.GetReg(rd)))
	}

	if !preIndex {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
		c.SetReg(rn, addr)
	} else if writeback {
		c.SetReg(rn, addr)
	}

	return 2, nil
}

// execBlockTransfer implements LDM/STM, including the forced-user-bank (S)
// variant used by firmware to touch User-mode registers from a privileged
// handler.
func (c *CPU) execBlockTransfer(word uint32) (int, error) {
	preIndex := (word>>24)&1 == 1
	up := (word>>23)&1 == 1
	forceUser := (word>>22)&1 == 1
	writeback := (word>>21)&1 == 1
	load := (word>>20)&1 == 1
	rn := int((word >> 16) & 0xF)
	regList := word & 0xFFFF

	count := bits.OnesCount16(uint16(regList))
	total := uint32(count) * 4
	base := c.GetReg(rn)

	var start uint32
	if up {
		start = base
		if preIndex {
			start += 4
		}
	} else {
		start = base - total
		if !preIndex {
			start += 4
		}
	}

	addr := start
	for r := 0; r < 16; r++ {
		if regList&(1<<uint(r)) == 0 {
			continue
		}
		if load {
			v := c.mem.Read32(addr)
			if r == 15 {
				c.SetReg(15, v)
				if forceUser {
					if spsr, ok := c.regs.SPSR(); ok {
						c.regs.SetCPSR(spsr)
					}
				}
			} else {
				c.SetReg(r, v)
			}
		} else {
			var v uint32
			if r == 15 {
				v = c.pcOperand(4) + 4
			} else {
				v = c.GetReg(r)
			}
			c.mem.Write32(addr, v)
		}
		addr += 4
	}

	if writeback {
		if up {
			c.SetReg(rn, base+total)
		} else {
			c.SetReg(rn, base-total)
		}
	}

	return count + 1, nil
}

// execBranch implements B and BL.
func (c *CPU) execBranch(word uint32) (int, error) {
	link := (word>>24)&1 == 1
	raw := word & 0xFFFFFF
	if raw&0x800000 != 0 {
		raw |= 0xFF000000
	}
	offset := int32(raw) << 2

	target := uint32(int32(c.pcOperand(4)) + offset)

	if link {
		c.SetReg(14, c.regs.PC())
	}
	c.SetReg(15, target)

	return 3, nil
}

// execBX implements branch-and-exchange: a jump that also switches the
// processor between ARM and Thumb state based on the target address's low
// bit.
func (c *CPU) execBX(word uint32) (int, error) {
	rm := int(word & 0xF)
	target := c.GetReg(rm)
	c.regs.SetT(target&1 != 0)
	c.SetReg(15, target)
	return 3, nil
}

// execMRS copies CPSR or the current mode's SPSR into a register.
func (c *CPU) execMRS(word uint32) (int, error) {
	rd := int((word >> 12) & 0xF)
	fromSPSR := (word>>22)&1 == 1

	var v uint32
	if fromSPSR {
		v, _ = c.regs.SPSR()
	} else {
		v = c.regs.CPSR()
	}
	c.SetReg(rd, v)
	return 1, nil
}

// execMSR writes the control and/or flag fields of CPSR or SPSR. Only the
// control (bit 0) and flags (bit 3) fields of the mask exist on an ARMv4T
// core; the status and extension fields are reserved.
func (c *CPU) execMSR(word uint32) (int, error) {
	toSPSR := (word>>22)&1 == 1
	fieldMask := (word >> 16) & 0xF
	immediate := (word>>25)&1 == 1

	var value uint32
	if immediate {
		imm8 := word & 0xFF
		rotate := (word >> 8) & 0xF
		value, _, _ = shifterImmediate(imm8, rotate)
	} else {
		value = c.GetReg(int(word & 0xF))
	}

	var mask uint32
	if fieldMask&0x1 != 0 {
		mask |= 0x000000FF
	}
	if fieldMask&0x8 != 0 {
		mask |= 0xFF000000
	}
	if !toSPSR && c.regs.Mode() == ModeUser {
		mask &= 0xFF000000
	}

	if toSPSR {
		current, ok := c.regs.SPSR()
		if !ok {
			return 1, nil
		}
		c.regs.SetSPSR((current &^ mask) | (value & mask))
	} else {
		current := c.regs.CPSR()
		c.regs.SetCPSR((current &^ mask) | (value & mask))
	}
	return 1, nil
}

// execSWP implements the atomic SWP/SWPB register-memory exchange.
func (c *CPU) execSWP(word uint32) (int, error) {
	byteAccess := (word>>22)&1 == 1
	rn := int((word >> 16) & 0xF)
	rd := int((word >> 12) & 0xF)
	rm := int(word & 0xF)

	addr := c.GetReg(rn)
	if byteAccess {
		old := c.mem.Read8(addr)
		c.mem.Write8(addr, uint8(c.GetReg(rm)))
		c.SetReg(rd, uint32(old))
	} else {
		old := c.mem.Read32(addr)
		c.mem.Write32(addr, c.GetReg(rm))
		c.SetReg(rd, old)
	}
	return 4, nil
}

// execMultiply implements MUL and MLA (32x32 -> 32).
func (c *CPU) execMultiply(word uint32) (int, error) {
	accumulate := (word>>21)&1 == 1
	setFlags := (word>>20)&1 == 1
	rd := int((word >> 16) & 0xF)
	rn := int((word >> 12) & 0xF)
	rs := int((word >> 8) & 0xF)
	rm := int(word & 0xF)

	result := c.GetReg(rm) * c.GetReg(rs)
	if accumulate {
		result += c.GetReg(rn)
	}
	c.SetReg(rd, result)
	if setFlags {
		c.regs.SetNZ(result)
	}

	cycles := 2
	if accumulate {
		cycles++
	}
	return cycles, nil
}

// execMultiplyLong implements UMULL/UMLAL/SMULL/SMLAL (32x32 -> 64).
func (c *CPU) execMultiplyLong(word uint32) (int, error) {
	signed := (word>>22)&1 == 1
	accumulate := (word>>21)&1 == 1
	setFlags := (word>>20)&1 == 1
	rdHi := int((word >> 16) & 0xF)
	rdLo := int((word >> 12) & 0xF)
	rs := int((word >> 8) & 0xF)
	rm := int(word & 0xF)

	var product uint64
	if signed {
		product = uint64(int64(int32(c.GetReg(rm))) * int64(int32(c.GetReg(rs))))
	} else {
		product = uint64(c.GetReg(rm)) * uint64(c.GetReg(rs))
	}
	if accumulate {
		product += uint64(c.GetReg(rdHi))<<32 | uint64(c.GetReg(rdLo))
	}

	c.SetReg(rdLo, uint32(product))
	c.SetReg(rdHi, uint32(product>>32))
	if setFlags {
		c.regs.SetN(product&0x8000000000000000 != 0)
		c.regs.SetZ(product == 0)
	}

	cycles := 3
	if accumulate {
		cycles++
	}
	return cycles, nil
}

// execSWI enters the software-interrupt exception. Cycle accounting for
// exception entry happens inside enter, so this reports zero additional
// cycles to its caller.
func (c *CPU) execSWI(word uint32) (int, error) {
	c.enter(ExceptionSWI, c.regs.PC())
	return 0, nil
}
