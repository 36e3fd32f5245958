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

package simulator_test

import (
	"testing"

	"pp5021sim/simulator"
)

func newTestSim(t *testing.T) *simulator.Simulator {
	t.Helper()
	sim, err := simulator.New(simulator.Config{SDRAMBytes: 0x1000, MemoryDiskSectors: 32})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sim
}

// ARM ADD R0, R0, #2 at 0x10000000 (SDRAM base), executed after SetPC bypasses
// reset so the test is a pure arithmetic check.
func TestStepExecutesARMAdd(t *testing.T) {
	sim := newTestSim(t)
	sim.LoadSDRAM(0, []byte{0x02, 0x00, 0x80, 0xE2}) // ADD R0, R0, #2
	sim.SetPC(0x10000000)

	if _, err := sim.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := sim.GetReg(0); got != 2 {
		t.Fatalf("R0 = %d, want 2", got)
	}
}

func TestRunStopsAtBreakpoint(t *testing.T) {
	sim := newTestSim(t)
	// Two NOP-equivalent ADD R0,R0,#0 instructions followed by a third;
	// a breakpoint at the third instruction's address should stop Run
	// there with R0 still 0.
	nop := []byte{0x00, 0x00, 0x80, 0xE2}
	sim.LoadSDRAM(0, append(append(append([]byte{}, nop...), nop...), nop...))
	sim.SetPC(0x10000000)
	sim.AddBreakpoint(0x10000008)

	result := sim.Run(1000)
	if result.StopReason != simulator.StopBreakpoint {
		t.Fatalf("stop reason = %v, want breakpoint", result.StopReason)
	}
}

func TestRunStopsAtCycleLimit(t *testing.T) {
	sim := newTestSim(t)
	nop := []byte{0x00, 0x00, 0x80, 0xE2}
	var program []byte
	for i := 0; i < 64; i++ {
		program = append(program, nop...)
	}
	sim.LoadSDRAM(0, program)
	sim.SetPC(0x10000000)

	result := sim.Run(3)
	if result.StopReason != simulator.StopCycleLimit {
		t.Fatalf("stop reason = %v, want cycle_limit", result.StopReason)
	}
}

func TestRegisterRoundTrip(t *testing.T) {
	sim := newTestSim(t)
	sim.SetReg(5, 0xDEADBEEF)
	if got := sim.GetReg(5); got != 0xDEADBEEF {
		t.Fatalf("R5 = %#x, want 0xdeadbeef", got)
	}
}

func TestRemoveBreakpointStopsFiring(t *testing.T) {
	sim := newTestSim(t)
	nop := []byte{0x00, 0x00, 0x80, 0xE2}
	sim.LoadSDRAM(0, append(append([]byte{}, nop...), nop...))
	sim.SetPC(0x10000000)
	sim.AddBreakpoint(0x10000004)
	sim.RemoveBreakpoint(0x10000004)

	result := sim.Run(10)
	if result.StopReason == simulator.StopBreakpoint {
		t.Fatalf("breakpoint fired after removal")
	}
}

func TestNewRejectsMisalignedSDRAMSize(t *testing.T) {
	if _, err := simulator.New(simulator.Config{SDRAMBytes: 3}); err == nil {
		t.Fatalf("expected an error for a non-multiple-of-4 sdram size")
	}
}

func TestResetCPUDoesNotRecordTelemetryEvent(t *testing.T) {
	sim := newTestSim(t)
	sim.LoadROM(make([]byte, 0x1000))
	sim.ResetCPU()
	sim.ResetCPU()

	if got := sim.Telemetry().EventCount(); got != 0 {
		t.Fatalf("reset should not itself record an event, got count %d", got)
	}
}
