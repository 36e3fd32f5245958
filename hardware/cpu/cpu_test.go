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

package cpu_test

import (
	"encoding/binary"
	"testing"

	"pp5021sim/hardware/cpu"
)

type flatMemory struct {
	data [0x1000]byte
}

func (m *flatMemory) Read8(addr uint32) uint8  { return m.data[addr] }
func (m *flatMemory) Read16(addr uint32) uint16 {
	return binary.LittleEndian.Uint16(m.data[addr:])
}
func (m *flatMemory) Read32(addr uint32) uint32 {
	return binary.LittleEndian.Uint32(m.data[addr:])
}
func (m *flatMemory) Write8(addr uint32, v uint8) { m.data[addr] = v }
func (m *flatMemory) Write16(addr uint32, v uint16) {
	binary.LittleEndian.PutUint16(m.data[addr:], v)
}
func (m *flatMemory) Write32(addr uint32, v uint32) {
	binary.LittleEndian.PutUint32(m.data[addr:], v)
}

func (m *flatMemory) putARM(addr uint32, word uint32) {
	m.Write32(addr, word)
}

func (m *flatMemory) putThumb(addr uint32, half uint16) {
	m.Write16(addr, half)
}

type noInterrupts struct{}

func (noInterrupts) PendingIRQ() bool { return false }
func (noInterrupts) PendingFIQ() bool { return false }

func newTestCPU() (*cpu.CPU, *flatMemory) {
	mem := &flatMemory{}
	c := cpu.NewCPU(mem, noInterrupts{})
	c.Registers().SetCPSR(uint32(cpu.ModeSupervisor))
	c.Registers().SetPC(0)
	return c, mem
}

// faultingMemory wraps flatMemory and implements cpu.Faulting, faulting
// every access at or past faultAt until armed is cleared.
type faultingMemory struct {
	flatMemory
	faultAt uint32
	armed   bool
	faulted bool
}

func (m *faultingMemory) arm(addr uint32) {
	m.faultAt = addr
	m.armed = true
}

func (m *faultingMemory) Read32(addr uint32) uint32 {
	if m.armed && addr >= m.faultAt {
		m.faulted = true
		return 0
	}
	return m.flatMemory.Read32(addr)
}

func (m *faultingMemory) Write32(addr uint32, v uint32) {
	if m.armed && addr >= m.faultAt {
		m.faulted = true
		return
	}
	m.flatMemory.Write32(addr, v)
}

func (m *faultingMemory) TookFault() bool {
	f := m.faulted
	m.faulted = false
	return f
}

func TestRegisterBankingRoundTrip(t *testing.T) {
	rf := cpu.NewRegisterFile()
	rf.SwitchMode(cpu.ModeSupervisor)
	rf.Set(13, 0x1111)

	rf.SwitchMode(cpu.ModeIRQ)
	rf.Set(13, 0x2222)

	rf.SwitchMode(cpu.ModeSupervisor)
	if got := rf.Get(13); got != 0x1111 {
		t.Fatalf("svc r13 = %#x, want 0x1111", got)
	}

	rf.SwitchMode(cpu.ModeIRQ)
	if got := rf.Get(13); got != 0x2222 {
		t.Fatalf("irq r13 = %#x, want 0x2222", got)
	}
}

func TestRegisterFileUserAndSystemShareBank(t *testing.T) {
	rf := cpu.NewRegisterFile()
	rf.SwitchMode(cpu.ModeUser)
	rf.Set(13, 0xABCD)

	rf.SwitchMode(cpu.ModeSystem)
	if got := rf.Get(13); got != 0xABCD {
		t.Fatalf("sys r13 = %#x, want 0xabcd (shared with usr)", got)
	}
}

func TestSPSRUndefinedInUserMode(t *testing.T) {
	rf := cpu.NewRegisterFile()
	rf.SwitchMode(cpu.ModeUser)
	if _, ok := rf.SPSR(); ok {
		t.Fatalf("expected ok=false reading SPSR in User mode")
	}
	if ok := rf.SetSPSR(0); ok {
		t.Fatalf("expected ok=false writing SPSR in User mode")
	}
}

func TestResetEntryEntersSupervisorMasked(t *testing.T) {
	c, _ := newTestCPU()
	c.Registers().SwitchMode(cpu.ModeUser)
	c.Registers().SetN(true)

	c.Reset()

	if c.Registers().Mode() != cpu.ModeSupervisor {
		t.Fatalf("mode after reset = %s, want svc", c.Registers().Mode())
	}
	if !c.Registers().I() || !c.Registers().F() {
		t.Fatalf("reset must mask both irq and fiq")
	}
	if c.Registers().PC() != cpu.ExceptionReset.Vector() {
		t.Fatalf("pc after reset = %#x, want reset vector", c.Registers().PC())
	}
}

func TestARMDataProcessingADD(t *testing.T) {
	c, mem := newTestCPU()
	c.Registers().SetT(false)
	c.Registers().Set(0, 10)
	c.Registers().Set(1, 32)

	// ADD r2, r0, r1
	mem.putARM(0, 0xE0802001)

	res, err := c.Step()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cycles != 1 {
		t.Fatalf("cycles = %d, want 1", res.Cycles)
	}
	if got := c.Registers().Get(2); got != 42 {
		t.Fatalf("r2 = %d, want 42", got)
	}
	if c.Registers().PC() != 4 {
		t.Fatalf("pc = %#x, want 4", c.Registers().PC())
	}
}

func TestARMConditionalSkipsInstruction(t *testing.T) {
	c, mem := newTestCPU()
	c.Registers().SetT(false)
	c.Registers().SetZ(false)
	c.Registers().Set(0, 99)

	// MOVEQ r0, #0 -- condition false because Z is clear.
	mem.putARM(0, 0x03A00000)

	_, err := c.Step()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Registers().Get(0); got != 99 {
		t.Fatalf("r0 = %d, want 99 (instruction should have been skipped)", got)
	}
}

func TestThumbAddImmediate(t *testing.T) {
	c, mem := newTestCPU()
	c.Registers().SetT(true)
	c.Registers().Set(0, 5)

	// ADD r0, #10 (format 3)
	mem.putThumb(0, 0x300A)

	_, err := c.Step()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Registers().Get(0); got != 15 {
		t.Fatalf("r0 = %d, want 15", got)
	}
	if c.Registers().PC() != 2 {
		t.Fatalf("pc = %#x, want 2", c.Registers().PC())
	}
}

func TestThumbUnconditionalBranch(t *testing.T) {
	c, mem := newTestCPU()
	c.Registers().SetT(true)

	// B forward by 2 halfwords (offset field 2, counted in halfwords).
	mem.putThumb(0, 0xE002)

	_, err := c.Step()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// PC target is (pcOperand base of 4) + (offset field of 2 halfwords) = 8.
	if got := c.Registers().PC(); got != 8 {
		t.Fatalf("pc = %#x, want 8", got)
	}
}

func TestARMStoreOfPCStoresPCPlus12(t *testing.T) {
	c, mem := newTestCPU()
	c.Registers().SetT(false)
	c.Registers().Set(1, 0x100)

	// STR r15, [r1]
	mem.putARM(0, 0xE581F000)

	if _, err := c.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mem.Read32(0x100); got != 12 {
		t.Fatalf("stored pc = %#x, want 12 (pc+12 at time of store)", got)
	}
}

func TestThumbLongBranchWithLinkSetsReturnAddress(t *testing.T) {
	c, mem := newTestCPU()
	c.Registers().SetT(true)

	// BL pair with both offset fields zero: high half stages LR = PC+4 (no
	// displacement), low half leaves PC unchanged and folds the pair's own
	// length into LR so it points at the halfword after the pair.
	mem.putThumb(0, 0xF000)
	mem.putThumb(2, 0xF800)

	if _, err := c.Step(); err != nil {
		t.Fatalf("unexpected error (first half): %v", err)
	}
	if _, err := c.Step(); err != nil {
		t.Fatalf("unexpected error (second half): %v", err)
	}

	// The pair spans addresses 0-3; the instruction after it is at 4, and
	// bit 0 is set as the Thumb-interworking marker.
	if got := c.Registers().Get(14); got != 4|1 {
		t.Fatalf("lr = %#x, want %#x", got, 4|1)
	}
}

func newFaultingTestCPU() (*cpu.CPU, *faultingMemory) {
	mem := &faultingMemory{}
	c := cpu.NewCPU(mem, noInterrupts{})
	c.Registers().SetCPSR(uint32(cpu.ModeSupervisor))
	c.Registers().SetPC(0)
	return c, mem
}

func TestStrictUnmappedFetchRaisesPrefetchAbort(t *testing.T) {
	c, mem := newFaultingTestCPU()
	c.Registers().SetT(false)
	mem.arm(0)

	res, err := c.Step()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExceptionTaken == nil || *res.ExceptionTaken != cpu.ExceptionPrefetchAbort {
		t.Fatalf("exception taken = %v, want PrefetchAbort", res.ExceptionTaken)
	}
	if got := c.Registers().PC(); got != cpu.ExceptionPrefetchAbort.Vector() {
		t.Fatalf("pc = %#x, want prefetch abort vector", got)
	}
	if got := c.Registers().Mode(); got != cpu.ModeAbort {
		t.Fatalf("mode = %s, want abt", got)
	}
}

func TestStrictUnmappedStoreRaisesDataAbort(t *testing.T) {
	c, mem := newFaultingTestCPU()
	c.Registers().SetT(false)
	c.Registers().Set(1, 0x800)
	mem.arm(0x800)

	// STR r0, [r1]
	mem.putARM(0, 0xE5810000)

	res, err := c.Step()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExceptionTaken == nil || *res.ExceptionTaken != cpu.ExceptionDataAbort {
		t.Fatalf("exception taken = %v, want DataAbort", res.ExceptionTaken)
	}
	if got := c.Registers().PC(); got != cpu.ExceptionDataAbort.Vector() {
		t.Fatalf("pc = %#x, want data abort vector", got)
	}
}
