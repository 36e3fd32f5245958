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

// CPSR/SPSR bit positions.
const (
	FlagN uint32 = 1 << 31
	FlagZ uint32 = 1 << 30
	FlagC uint32 = 1 << 29
	FlagV uint32 = 1 << 28

	FlagI uint32 = 1 << 7
	FlagF uint32 = 1 << 6
	FlagT uint32 = 1 << 5

	modeMask = 0x1F
)

// numBanks is the number of physical banks for R13/R14/SPSR: one shared by
// User+System, and one each for FIQ/IRQ/Supervisor/Abort/Undefined.
const numBanks = 6

// RegisterFile implements the ARM7TDMI's sixteen logical registers with
// mode-banked SP/LR/SPSR and FIQ-banked R8-R12.
//
// R15 is deliberately NOT exposed through Get/Set: reading R15 mid-
// instruction must include the pipeline offset, which depends on the
// current instruction's size (ARM vs Thumb) and is therefore the CPU's
// responsibility, not the register file's. Use PC()/SetPC() for the raw
// program counter.
type RegisterFile struct {
	r    [8]uint32 // R0-R7, shared by every mode
	mid  [5]uint32 // R8-R12, normal bank
	fiq  [5]uint32 // R8-R12, FIQ bank
	sp   [numBanks]uint32
	lr   [numBanks]uint32
	spsr [numBanks]uint32

	pc   uint32
	cpsr uint32
}

// NewRegisterFile creates a register file in its power-on state: Supervisor
// mode, both interrupt masks set, PC=0, ARM (not Thumb) state.
func NewRegisterFile() *RegisterFile {
	rf := &RegisterFile{}
	rf.cpsr = uint32(ModeSupervisor) | FlagI | FlagF
	return rf
}

// Mode returns the processor mode encoded in CPSR.
func (rf *RegisterFile) Mode() Mode {
	return Mode(rf.cpsr & modeMask)
}

// Thumb reports whether CPSR.T is set.
func (rf *RegisterFile) Thumb() bool {
	return rf.cpsr&FlagT != 0
}

// Get returns the current-mode view of register n (0-14). Use PC() for R15.
func (rf *RegisterFile) Get(n int) uint32 {
	switch {
	case n >= 0 && n <= 7:
		return rf.r[n]
	case n >= 8 && n <= 12:
		if rf.Mode() == ModeFIQ {
			return rf.fiq[n-8]
		}
		return rf.mid[n-8]
	case n == 13:
		return rf.sp[bankIndex(rf.Mode())]
	case n == 14:
		return rf.lr[bankIndex(rf.Mode())]
	default:
		panic("cpu: register index out of range")
	}
}

// Set assigns the current-mode view of register n (0-14). Use SetPC() for
// R15.
func (rf *RegisterFile) Set(n int, v uint32) {
	switch {
	case n >= 0 && n <= 7:
		rf.r[n] = v
	case n >= 8 && n <= 12:
		if rf.Mode() == ModeFIQ {
			rf.fiq[n-8] = v
		} else {
			rf.mid[n-8] = v
		}
	case n == 13:
		rf.sp[bankIndex(rf.Mode())] = v
	case n == 14:
		rf.lr[bankIndex(rf.Mode())] = v
	default:
		panic("cpu: register index out of range")
	}
}

// PC returns the raw program counter as stored by the CPU. The CPU adds the
// pipeline offset (+8 ARM / +4 Thumb) when R15 is read as an instruction
// operand; this method never does.
func (rf *RegisterFile) PC() uint32 {
	return rf.pc
}

// SetPC assigns the raw program counter.
func (rf *RegisterFile) SetPC(v uint32) {
	rf.pc = v
}

// CPSR returns the packed current program status register.
func (rf *RegisterFile) CPSR() uint32 {
	return rf.cpsr
}

// SetCPSR assigns the packed CPSR wholesale. Because every mode's banked
// registers live in their own always-addressable slot, changing the mode
// bits here is sufficient to "switch banks" — there is no separate save/
// restore step.
func (rf *RegisterFile) SetCPSR(v uint32) {
	rf.cpsr = v
}

// SwitchMode changes only the mode bits of CPSR, preserving flags and
// control bits. This is the primitive exception entry/return build on.
func (rf *RegisterFile) SwitchMode(m Mode) {
	rf.cpsr = (rf.cpsr &^ modeMask) | uint32(m)
}

// SPSR returns the current mode's saved program status register. ok is
// false in User/System mode, where SPSR is undefined.
func (rf *RegisterFile) SPSR() (value uint32, ok bool) {
	m := rf.Mode()
	if !m.hasSPSR() {
		return 0, false
	}
	return rf.spsr[bankIndex(m)], true
}

// SetSPSR assigns the current mode's SPSR. ok is false in User/System mode.
func (rf *RegisterFile) SetSPSR(v uint32) (ok bool) {
	m := rf.Mode()
	if !m.hasSPSR() {
		return false
	}
	rf.spsr[bankIndex(m)] = v
	return true
}

// Flag accessors. N/Z/C/V are read constantly by condition evaluation and
// the shifter, so they're exposed directly rather than via CPSR()&mask at
// every call site.

func (rf *RegisterFile) N() bool { return rf.cpsr&FlagN != 0 }
func (rf *RegisterFile) Z() bool { return rf.cpsr&FlagZ != 0 }
func (rf *RegisterFile) C() bool { return rf.cpsr&FlagC != 0 }
func (rf *RegisterFile) V() bool { return rf.cpsr&FlagV != 0 }
func (rf *RegisterFile) I() bool { return rf.cpsr&FlagI != 0 }
func (rf *RegisterFile) F() bool { return rf.cpsr&FlagF != 0 }

func (rf *RegisterFile) setFlag(flag uint32, set bool) {
	if set {
		rf.cpsr |= flag
	} else {
		rf.cpsr &^= flag
	}
}

func (rf *RegisterFile) SetN(v bool) { rf.setFlag(FlagN, v) }
func (rf *RegisterFile) SetZ(v bool) { rf.setFlag(FlagZ, v) }
func (rf *RegisterFile) SetC(v bool) { rf.setFlag(FlagC, v) }
func (rf *RegisterFile) SetV(v bool) { rf.setFlag(FlagV, v) }
func (rf *RegisterFile) SetI(v bool) { rf.setFlag(FlagI, v) }
func (rf *RegisterFile) SetF(v bool) { rf.setFlag(FlagF, v) }
func (rf *RegisterFile) SetT(v bool) { rf.setFlag(FlagT, v) }

// SetNZ sets the N and Z flags from a computed 32-bit result, the common
// case for data-processing instructions with S=1.
func (rf *RegisterFile) SetNZ(result uint32) {
	rf.SetN(result&0x80000000 != 0)
	rf.SetZ(result == 0)
}
