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

// executeARM classifies a 32-bit ARM instruction word and dispatches to its
// executor.
func (c *CPU) executeARM(word uint32) (int, error) {
	cond := word >> 28
	if !c.evalCondition(cond) {
		return 1, nil
	}

	bits27_25 := (word >> 25) & 0x7

	switch {
	case (word>>24)&0xF == 0xF:
		// "1111 xxxx" top nibble -> SWI.
		return c.execSWI(word)

	case bits27_25 == 0b101:
		return c.execBranch(word)

	case bits27_25 == 0b100:
		return c.execBlockTransfer(word)

	case bits27_25 == 0b011 || bits27_25 == 0b010:
		return c.execSingleDataTransfer(word)

	case bits27_25 == 0b000:
		switch {
		case word&0x0FFFFFF0 == 0x012FFF10:
			return c.execBX(word)
		case isPSRTransfer(word):
			if (word>>21)&1 == 1 {
				return c.execMSR(word)
			}
			return c.execMRS(word)
		case (word>>23)&0x1F == 0b00010 && (word>>20)&0x3 == 0b00 && (word>>4)&0xFF == 0b00001001:
			return c.execSWP(word)
		case (word>>22)&0x3F == 0b000000 && (word>>4)&0xF == 0b1001:
			return c.execMultiply(word)
		case (word>>23)&0x1F == 0b00001 && (word>>4)&0xF == 0b1001:
			return c.execMultiplyLong(word)
		case word&0x90 == 0x90 && (word>>5)&0x3 != 0:
			return c.execHalfwordTransfer(word)
		default:
			return c.execDataProcessing(word)
		}

	case bits27_25 == 0b001:
		if isPSRTransfer(word) {
			// only the MSR immediate form exists with I=1.
			return c.execMSR(word)
		}
		return c.execDataProcessing(word)

	default:
		c.raiseUndefined(word, c.regs.PC()-4)
		if c.Halted {
			return 1, nil
		}
		return 0, nil
	}
}

// isPSRTransfer recognises the shared bit pattern of MRS/MSR:
// bits[27:26]=00, bits[24:23]=10, S=0. This is what distinguishes PSR
// transfer from the TST/TEQ/CMP/CMN data-processing opcodes, which share
// the same bits[24:23] but require S=1.
func isPSRTransfer(word uint32) bool {
	return (word>>26)&0x3 == 0 && (word>>23)&0x3 == 0b10 && (word>>20)&1 == 0
}
