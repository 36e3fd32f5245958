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

// shiftType identifies one of the four ARM shift operations.
type shiftType uint32

const (
	shiftLSL shiftType = 0
	shiftLSR shiftType = 1
	shiftASR shiftType = 2
	shiftROR shiftType = 3
)

// shifterImmediate computes the data-processing immediate operand: an 8-bit
// value rotated right by 2*rotate.
func shifterImmediate(imm8, rotate uint32) (value uint32, carryOut bool, carryIn bool) {
	if rotate == 0 {
		return imm8, false, true // caller substitutes current C
	}
	shift := (rotate * 2) & 31
	value = bits.RotateLeft32(imm8, -int(shift))
	carryOut = value&0x80000000 != 0
	return value, carryOut, false
}

// shiftByAmount applies one of the four shift types to value by the given
// amount, following the ARM7TDMI special cases for amount 0/32/>32.
// currentCarry is the incoming C flag, needed for LSL#0/RRX.
func shiftByAmount(st shiftType, value, amount uint32, currentCarry bool, immediateForm bool) (result uint32, carryOut bool) {
	switch st {
	case shiftLSL:
		switch {
		case amount == 0:
			return value, currentCarry
		case amount < 32:
			carryOut = value&(1<<(32-amount)) != 0
			return value << amount, carryOut
		case amount == 32:
			return 0, value&1 != 0
		default:
			return 0, false
		}

	case shiftLSR:
		if immediateForm && amount == 0 {
			amount = 32
		}
		switch {
		case amount == 0:
			return value, currentCarry
		case amount < 32:
			carryOut = value&(1<<(amount-1)) != 0
			return value >> amount, carryOut
		case amount == 32:
			return 0, value&0x80000000 != 0
		default:
			return 0, false
		}

	case shiftASR:
		if immediateForm && amount == 0 {
			amount = 32
		}
		switch {
		case amount == 0:
			return value, currentCarry
		case amount < 32:
			carryOut = value&(1<<(amount-1)) != 0
			return uint32(int32(value) >> amount), carryOut
		default: // amount >= 32: result is all sign bits
			if value&0x80000000 != 0 {
				return 0xFFFFFFFF, true
			}
			return 0, false
		}

	case shiftROR:
		if immediateForm && amount == 0 {
			// RRX: 33-bit rotate right through carry.
			result = value >> 1
			if currentCarry {
				result |= 0x80000000
			}
			return result, value&1 != 0
		}
		if amount == 0 {
			return value, currentCarry
		}
		amount &= 31
		if amount == 0 { // a non-zero multiple of 32
			return value, value&0x80000000 != 0
		}
		result = bits.RotateLeft32(value, -int(amount))
		return result, result&0x80000000 != 0

	default:
		return value, currentCarry
	}
}
