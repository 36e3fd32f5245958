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

// Package simulator is the aggregate that owns every component of the
// PP5021C host simulation and exposes the single public entry point an
// embedding tool (GUI, test harness, CLI) drives.
package simulator

import (
	"pp5021sim/assert"
	"pp5021sim/curated"
	"pp5021sim/hardware/ata"
	"pp5021sim/hardware/cpu"
	"pp5021sim/hardware/interrupt"
	"pp5021sim/hardware/mailbox"
	"pp5021sim/hardware/membus"
	"pp5021sim/hardware/timer"
	"pp5021sim/telemetry"
)

// Config supplies every construction-time choice. Only SDRAMBytes is
// mandatory; everything else has a usable zero value.
type Config struct {
	// SDRAMBytes must be a non-zero multiple of 4.
	SDRAMBytes uint32

	// DiskImagePath, if set, opens a file-backed disk for ATA storage.
	DiskImagePath string

	// MemoryDiskSectors allocates an in-memory disk of this many 512-byte
	// sectors when DiskImagePath is empty and ProjectionRoot is empty.
	MemoryDiskSectors uint64

	// ProjectionRoot, if set, synthesizes a FAT32 image from a host
	// directory tree instead of an empty in-memory disk.
	ProjectionRoot string

	// ROMShim, if non-nil, overrides the default synthesized boot ROM
	// trampoline.
	ROMShim membus.ROMShimProfile

	// StrictBusFaults makes an unmapped bus access raise a fault instead
	// of returning the default filler instruction.
	StrictBusFaults bool

	// HaltOnUndefined makes an undefined ARM/Thumb opcode halt the CPU
	// instead of entering the Undefined-Instruction handler.
	HaltOnUndefined bool

	// TelemetryCapacity overrides the default event-ring size; zero uses
	// telemetry.DefaultCapacity.
	TelemetryCapacity int

	// IdentifyIdentity describes the IDENTIFY fields the ATA controller
	// reports for its disk.
	IdentifyIdentity ata.Identity
}

// StopReason explains why Run returned.
type StopReason int

const (
	StopCycleLimit StopReason = iota
	StopBreakpoint
	StopHalted
	StopNoCPU
	StopExecutionError
)

func (s StopReason) String() string {
	switch s {
	case StopCycleLimit:
		return "cycle_limit"
	case StopBreakpoint:
		return "breakpoint"
	case StopHalted:
		return "halted"
	case StopNoCPU:
		return "no_cpu"
	case StopExecutionError:
		return "execution_error"
	default:
		return "???"
	}
}

// RunResult reports the outcome of a Run call.
type RunResult struct {
	Cycles       uint64
	Instructions uint64
	StopReason   StopReason
}

// interruptLines narrows *interrupt.Controller to what the CPU needs,
// matching the cyclic-reference-avoidance rule: the CPU borrows this, it
// never sees the rest of the Simulator.
type interruptLines = cpu.InterruptSource

// timerAsserter adapts a fixed interrupt.Source to timer.Asserter so each
// Timer can report through the shared controller without importing it.
type timerAsserter struct {
	ctrl *interrupt.Controller
	src  [2]interrupt.Source
}

func (a timerAsserter) AssertTimer(id int) {
	a.ctrl.Assert(a.src[id])
}

// Simulator owns the CPU, the memory bus, every peripheral, the disk
// image, and the telemetry ring — the aggregate the rest of the system
// drives through Step/Run rather than touching components directly.
type Simulator struct {
	cpu        *cpu.CPU
	bus        *membus.Bus
	interrupts *interrupt.Controller
	timers     [2]*timer.Timer
	mailbox    *mailbox.Queue
	ata        *ata.Controller
	disk       ata.Disk
	telemetry  *telemetry.Ring

	breakpoints map[uint32]bool
	guard       assert.ExclusiveAccess
}

// New constructs a Simulator from cfg. The CPU is left unreset; call
// ResetCPU before stepping.
func New(cfg Config) (*Simulator, error) {
	if cfg.SDRAMBytes == 0 || cfg.SDRAMBytes%4 != 0 {
		return nil, curated.Errorf(curated.ConfigInvalidSDRAMSize, cfg.SDRAMBytes)
	}

	bus := membus.NewBus(cfg.SDRAMBytes, cfg.ROMShim)
	bus.Strict = cfg.StrictBusFaults

	ctrl := interrupt.NewController()
	bus.Attach(membus.KindInterruptController, ctrl)

	asserter := timerAsserter{ctrl: ctrl, src: [2]interrupt.Source{interrupt.SourceTimer0, interrupt.SourceTimer1}}
	timers := [2]*timer.Timer{timer.New(0, asserter), timer.New(1, asserter)}
	bus.Attach(membus.KindTimers, &multiTimer{timers: timers})

	mb := mailbox.New()
	bus.Attach(membus.KindMailbox, mb)

	disk, err := buildDisk(cfg)
	if err != nil {
		return nil, err
	}
	ataCtrl := ata.NewController(disk, cfg.IdentifyIdentity)
	bus.Attach(membus.KindATA, ataCtrl)

	c := cpu.NewCPU(bus, ctrl)
	c.HaltOnUndefined = cfg.HaltOnUndefined

	capacity := cfg.TelemetryCapacity
	ring := telemetry.NewRing(capacity)

	return &Simulator{
		cpu:         c,
		bus:         bus,
		interrupts:  ctrl,
		timers:      timers,
		mailbox:     mb,
		ata:         ataCtrl,
		disk:        disk,
		telemetry:   ring,
		breakpoints: make(map[uint32]bool),
	}, nil
}

func buildDisk(cfg Config) (ata.Disk, error) {
	switch {
	case cfg.DiskImagePath != "":
		return ata.OpenFileDisk(cfg.DiskImagePath)
	case cfg.ProjectionRoot != "":
		return ata.Project(cfg.ProjectionRoot)
	case cfg.MemoryDiskSectors > 0:
		return ata.NewMemoryDisk(cfg.MemoryDiskSectors), nil
	default:
		return ata.NewMemoryDisk(0), nil
	}
}

// multiTimer maps the timer region's offset range onto two independent
// Timer instances, each owning a 0x10-byte register window.
type multiTimer struct {
	timers [2]*timer.Timer
}

func (m *multiTimer) Read(offset uint32) uint32 {
	idx := offset / 0x10
	if idx > 1 {
		return 0
	}
	return m.timers[idx].Read(offset % 0x10)
}

func (m *multiTimer) Write(offset uint32, value uint32) {
	idx := offset / 0x10
	if idx > 1 {
		return
	}
	m.timers[idx].Write(offset%0x10, value)
}

// LoadROM installs the boot ROM image.
func (s *Simulator) LoadROM(image []byte) error {
	return s.bus.LoadROM(image)
}

// LoadSDRAM copies data into SDRAM at byte offset off.
func (s *Simulator) LoadSDRAM(off uint32, data []byte) {
	s.bus.LoadSDRAM(off, data)
}

// LoadIRAM copies data into IRAM at byte offset off.
func (s *Simulator) LoadIRAM(off uint32, data []byte) {
	s.bus.LoadIRAM(off, data)
}

// ResetCPU performs a Reset exception entry and records a boot in
// telemetry.
func (s *Simulator) ResetCPU() {
	s.cpu.Reset()
	s.telemetry.IncrementBootCount()
}

// SetPC overrides the program counter directly, bypassing exception entry
// (used by tests to start execution at an arbitrary address).
func (s *Simulator) SetPC(addr uint32) {
	s.cpu.Registers().SetPC(addr)
}

// GetReg returns register n as the CPU would see it as an operand.
func (s *Simulator) GetReg(n int) uint32 {
	return s.cpu.GetReg(n)
}

// SetReg assigns register n.
func (s *Simulator) SetReg(n int, v uint32) {
	s.cpu.SetReg(n, v)
}

// AddBreakpoint installs a breakpoint at addr.
func (s *Simulator) AddBreakpoint(addr uint32) {
	s.breakpoints[addr] = true
}

// RemoveBreakpoint removes a previously-installed breakpoint.
func (s *Simulator) RemoveBreakpoint(addr uint32) {
	delete(s.breakpoints, addr)
}

// Telemetry exposes the event ring for recording and persistence.
func (s *Simulator) Telemetry() *telemetry.Ring {
	return s.telemetry
}

// ReadFramebuffer returns a read-only view of the LCD framebuffer region
// for a host renderer; the caller must not retain it across a Step/Run
// call.
func (s *Simulator) ReadFramebuffer(base uint32, size int) []byte {
	buf := make([]byte, size)
	for i := 0; i < size; i += 4 {
		v := s.bus.Read32(base + uint32(i))
		buf[i] = byte(v)
		if i+1 < size {
			buf[i+1] = byte(v >> 8)
		}
		if i+2 < size {
			buf[i+2] = byte(v >> 16)
		}
		if i+3 < size {
			buf[i+3] = byte(v >> 24)
		}
	}
	return buf
}

// Step advances the timer system by one cycle, refreshes nothing else
// (the CPU consults the interrupt controller directly), and executes one
// CPU instruction or exception entry.
func (s *Simulator) Step() (cpu.StepResult, error) {
	leave, ok := s.guard.Enter()
	if !ok {
		return cpu.StepResult{}, curated.Errorf(curated.SimAlreadyRunning)
	}
	defer leave()

	for _, t := range s.timers {
		t.Step(1)
	}
	return s.cpu.Step()
}

// Run executes Step in a loop until maxCycles is reached, a breakpoint is
// hit, the CPU halts, or an execution error occurs.
func (s *Simulator) Run(maxCycles uint64) RunResult {
	start := s.cpu.Cycles()
	startInstr := s.cpu.Instructions()

	for s.cpu.Cycles()-start < maxCycles {
		if s.cpu.Halted {
			return s.runResult(StopHalted, start, startInstr)
		}
		if s.breakpoints[s.cpu.Registers().PC()] {
			return s.runResult(StopBreakpoint, start, startInstr)
		}
		if _, err := s.Step(); err != nil {
			return s.runResult(StopExecutionError, start, startInstr)
		}
	}
	return s.runResult(StopCycleLimit, start, startInstr)
}

func (s *Simulator) runResult(reason StopReason, start, startInstr uint64) RunResult {
	return RunResult{
		Cycles:       s.cpu.Cycles() - start,
		Instructions: s.cpu.Instructions() - startInstr,
		StopReason:   reason,
	}
}

var _ interruptLines = (*interrupt.Controller)(nil)
