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

// EntryCycles is the fixed cost of taking any exception.
const EntryCycles = 3

// enter performs exception entry for e, given that the processor's PC (the
// pipeline fetch address, i.e. RegisterFile.PC()) was pc at the moment the
// exception was recognised. It is a pure function of the old CPSR and the
// exception being taken.
func (c *CPU) enter(e Exception, pc uint32) {
	oldCPSR := c.regs.CPSR()
	thumb := c.regs.Thumb()

	returnAddr := pc - e.ReturnOffset(thumb)

	c.regs.SwitchMode(e.TargetMode())
	c.regs.SetSPSR(oldCPSR)
	c.regs.Set(14, returnAddr)

	c.regs.SetI(true)
	if e == ExceptionReset || e == ExceptionFIQ {
		c.regs.SetF(true)
	}
	c.regs.SetT(false)

	c.regs.SetPC(e.Vector())
	c.cycles += EntryCycles
}

// exceptionReturn restores CPSR from the current mode's SPSR (which
// switches mode as a side effect of loading a full CPSR value) and sets PC
// to target. This is what `MOVS PC, LR`, `SUBS PC, LR, #imm`, and
// `LDM ...{PC}^` all boil down to.
func (c *CPU) exceptionReturn(target uint32) {
	if spsr, ok := c.regs.SPSR(); ok {
		c.regs.SetCPSR(spsr)
	}
	c.regs.SetPC(target)
}
