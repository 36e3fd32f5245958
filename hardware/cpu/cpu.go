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

import (
	"pp5021sim/curated"
	"pp5021sim/logger"
)

// Memory is the interface the CPU borrows from the memory bus to fetch
// instructions and perform loads/stores. The CPU never owns memory: it only
// holds this interface, so construction order between CPU and bus never
// matters.
type Memory interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, v uint8)
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)
}

// InterruptSource is the interface the CPU borrows from the interrupt
// controller to decide whether to take IRQ/FIQ before fetching the next
// instruction.
type InterruptSource interface {
	PendingIRQ() bool
	PendingFIQ() bool
}

// Faulting is an optional capability of a Memory backing: it reports
// whether the access just completed raised a bus fault (an unmapped
// address under strict mode), without requiring every Read/Write call site
// in the instruction decoders to thread an error return. A backing that is
// always fully mapped, such as a flat test harness, need not implement it.
//
// Only the CPU knows whether a given access was an instruction fetch or a
// data access, so it - not the bus - decides whether a fault becomes a
// Prefetch Abort or a Data Abort.
type Faulting interface {
	// TookFault reports whether the most recently completed access
	// faulted, and clears the flag.
	TookFault() bool
}

// StepResult reports what Step actually did, for the simulator core and for
// tests.
type StepResult struct {
	// ExceptionTaken is non-nil if this Step entered an exception instead
	// of fetching an instruction.
	ExceptionTaken *Exception

	// Cycles consumed.
	Cycles int
}

// CPU implements the ARM7TDMI found in the PP5021C: ARM and Thumb
// instruction sets, seven processor modes, and the full exception model.
type CPU struct {
	regs     *RegisterFile
	mem      Memory
	irq      InterruptSource
	faulting Faulting // nil if mem does not implement Faulting

	cycles       uint64
	instructions uint64

	// Halted is set by an undefined-instruction exception when
	// HaltOnUndefined is configured, or by RequestHalt. The simulator's Run
	// loop stops when this is true.
	Halted bool

	// HaltOnUndefined controls whether an Undefined-Instruction exception
	// halts the CPU (useful for catching firmware bugs in a host tool)
	// instead of entering the handler normally.
	HaltOnUndefined bool
}

// NewCPU creates a CPU wired to mem for memory access and irq for interrupt
// observation. The register file starts in its power-on state.
func NewCPU(mem Memory, irq InterruptSource) *CPU {
	c := &CPU{
		regs: NewRegisterFile(),
		mem:  mem,
		irq:  irq,
	}
	c.faulting, _ = mem.(Faulting)
	return c
}

// tookFault reports whether the access just performed against mem raised a
// bus fault, for a Memory backing that implements Faulting.
func (c *CPU) tookFault() bool {
	return c.faulting != nil && c.faulting.TookFault()
}

// Registers returns the CPU's register file, for simulator/debugger access.
func (c *CPU) Registers() *RegisterFile { return c.regs }

// Cycles returns the total number of cycles consumed since construction or
// the last Reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Instructions returns the total number of instructions executed (not
// counting suppressed-by-condition instructions or exception entries).
func (c *CPU) Instructions() uint64 { return c.instructions }

// Reset puts the CPU back into its power-on state and performs a Reset
// exception entry, matching real ARM7TDMI behaviour: PC ends up at the
// reset vector and the processor is in Supervisor mode with both interrupt
// masks set.
func (c *CPU) Reset() {
	c.regs = NewRegisterFile()
	c.cycles = 0
	c.instructions = 0
	c.Halted = false
	c.enter(ExceptionReset, 0)
}

// pcOperand returns R15 as it would be read by an executing instruction:
// the raw stored PC (already advanced past the current instruction) plus
// one more instruction-size, i.e. instrAddr+8 (ARM) or instrAddr+4 (Thumb).
func (c *CPU) pcOperand(instrSize uint32) uint32 {
	return c.regs.PC() + instrSize
}

// GetReg returns register n (0-15) as an instruction operand would see it.
func (c *CPU) GetReg(n int) uint32 {
	if n == 15 {
		size := uint32(4)
		if c.regs.Thumb() {
			size = 2
		}
		return c.pcOperand(size)
	}
	return c.regs.Get(n)
}

// SetReg assigns register n (0-15). Writing R15 clears the low bits
// appropriate to the current state (bit 0 in Thumb, bits 1:0 in ARM) and
// takes effect immediately as the next fetch address.
func (c *CPU) SetReg(n int, v uint32) {
	if n == 15 {
		if c.regs.Thumb() {
			v &^= 1
		} else {
			v &^= 3
		}
		c.regs.SetPC(v)
		return
	}
	c.regs.Set(n, v)
}

// Step executes a single step: consult interrupts, and either take an
// exception or fetch-decode-execute one instruction.
func (c *CPU) Step() (StepResult, error) {
	if c.Halted {
		return StepResult{}, curated.Errorf(curated.SimNoImageLoaded)
	}

	if c.irq.PendingFIQ() && !c.regs.F() {
		e := ExceptionFIQ
		c.enter(e, c.regs.PC())
		return StepResult{ExceptionTaken: &e, Cycles: EntryCycles}, nil
	}
	if c.irq.PendingIRQ() && !c.regs.I() {
		e := ExceptionIRQ
		c.enter(e, c.regs.PC())
		return StepResult{ExceptionTaken: &e, Cycles: EntryCycles}, nil
	}

	if c.regs.Thumb() {
		return c.stepThumb()
	}
	return c.stepARM()
}

func (c *CPU) stepARM() (StepResult, error) {
	addr := c.regs.PC()
	word := c.mem.Read32(addr)
	if c.tookFault() {
		c.regs.SetPC(addr + 4)
		return c.abort(ExceptionPrefetchAbort), nil
	}
	c.regs.SetPC(addr + 4)

	cycles, err := c.executeARM(word)
	if c.tookFault() {
		return c.abort(ExceptionDataAbort), nil
	}
	c.instructions++
	c.cycles += uint64(cycles)
	return StepResult{Cycles: cycles}, err
}

func (c *CPU) stepThumb() (StepResult, error) {
	addr := c.regs.PC()
	half := c.mem.Read16(addr)
	if c.tookFault() {
		c.regs.SetPC(addr + 2)
		return c.abort(ExceptionPrefetchAbort), nil
	}
	c.regs.SetPC(addr + 2)

	cycles, err := c.executeThumb(half)
	if c.tookFault() {
		return c.abort(ExceptionDataAbort), nil
	}
	c.instructions++
	c.cycles += uint64(cycles)
	return StepResult{Cycles: cycles}, err
}

// abort performs exception entry for a Prefetch or Data Abort raised by a
// strict-mode unmapped access, mirroring the IRQ/FIQ entry in Step: the
// instruction that triggered it is not counted, and its cycles are not
// added again since enter already accounted for EntryCycles.
func (c *CPU) abort(e Exception) StepResult {
	c.enter(e, c.regs.PC())
	return StepResult{ExceptionTaken: &e, Cycles: EntryCycles}
}

// raiseUndefined enters the Undefined-Instruction exception, or halts the
// CPU if configured to do so (useful for a host tool that wants to treat an
// undefined opcode as a firmware bug rather than silently handling it).
func (c *CPU) raiseUndefined(opcode, pc uint32) {
	if c.HaltOnUndefined {
		c.Halted = true
		logger.Logf("cpu", curated.CPUUndefinedInstruction, opcode, pc)
		return
	}
	c.enter(ExceptionUndefined, c.regs.PC())
}

// RequestHalt stops the CPU at the next Step call, as if a CPU-halt
// peripheral request had been made.
func (c *CPU) RequestHalt() {
	c.Halted = true
}
