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

// executeThumb classifies a 16-bit Thumb instruction and dispatches to its
// executor. The classification order works backwards up the instruction
// summary table: formats with more fixed high bits are matched first.
func (c *CPU) executeThumb(opcode uint16) (int, error) {
	switch {
	case opcode&0xf000 == 0xf000:
		return c.thumbLongBranchWithLink(opcode)
	case opcode&0xf000 == 0xe000:
		return c.thumbUnconditionalBranch(opcode)
	case opcode&0xff00 == 0xdf00:
		return c.thumbSoftwareInterrupt(opcode)
	case opcode&0xf000 == 0xd000:
		return c.thumbConditionalBranch(opcode)
	case opcode&0xf000 == 0xc000:
		return c.thumbMultipleLoadStore(opcode)
	case opcode&0xf600 == 0xb400:
		return c.thumbPushPopRegisters(opcode)
	case opcode&0xff00 == 0xb000:
		return c.thumbAddOffsetToSP(opcode)
	case opcode&0xf000 == 0xa000:
		return c.thumbLoadAddress(opcode)
	case opcode&0xf000 == 0x9000:
		return c.thumbSPRelativeLoadStore(opcode)
	case opcode&0xf000 == 0x8000:
		return c.thumbLoadStoreHalfword(opcode)
	case opcode&0xe000 == 0x6000:
		return c.thumbLoadStoreImmOffset(opcode)
	case opcode&0xf200 == 0x5200:
		return c.thumbLoadStoreSignExtended(opcode)
	case opcode&0xf200 == 0x5000:
		return c.thumbLoadStoreRegOffset(opcode)
	case opcode&0xf800 == 0x4800:
		return c.thumbPCRelativeLoad(opcode)
	case opcode&0xfc00 == 0x4400:
		return c.thumbHiRegisterOps(opcode)
	case opcode&0xfc00 == 0x4000:
		return c.thumbALUOperations(opcode)
	case opcode&0xe000 == 0x2000:
		return c.thumbMovCmpAddSubImm(opcode)
	case opcode&0xf800 == 0x1800:
		return c.thumbAddSubtract(opcode)
	case opcode&0xe000 == 0x0000:
		return c.thumbMoveShiftedRegister(opcode)
	default:
		c.raiseUndefined(uint32(opcode), c.regs.PC()-2)
		if c.Halted {
			return 1, nil
		}
		return 0, nil
	}
}
