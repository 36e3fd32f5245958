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

package main

import (
	"bytes"
	"strings"
	"testing"

	"pp5021sim/simulator"
)

func newTestREPL(t *testing.T) (*repl, *bytes.Buffer) {
	t.Helper()
	sim, err := simulator.New(simulator.Config{SDRAMBytes: 0x1000, MemoryDiskSectors: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var out bytes.Buffer
	return &repl{sim: sim, out: &out, geom: termGeometry{rows: 24, cols: 80}}, &out
}

func TestSetRegThenRegReportsValue(t *testing.T) {
	r, out := newTestREPL(t)
	r.dispatch("setreg 3 0x2a")
	out.Reset()
	r.dispatch("reg 3")

	if got := out.String(); !strings.Contains(got, "0x0000002a") {
		t.Fatalf("reg 3 output = %q, want it to contain 0x0000002a", got)
	}
}

func TestQuitReturnsTrue(t *testing.T) {
	r, _ := newTestREPL(t)
	if !r.dispatch("quit") {
		t.Fatalf("dispatch(\"quit\") = false, want true")
	}
	if r.dispatch("step") {
		t.Fatalf("dispatch(\"step\") = true, want false")
	}
}

func TestUnknownCommandReportsError(t *testing.T) {
	r, out := newTestREPL(t)
	r.dispatch("frobnicate")

	if got := out.String(); !strings.Contains(got, "unrecognised command") {
		t.Fatalf("output = %q, want an unrecognised-command message", got)
	}
}

func TestBreakThenUnbreakRemovesBreakpoint(t *testing.T) {
	r, out := newTestREPL(t)
	nop := []byte{0x00, 0x00, 0x80, 0xE2}
	r.sim.LoadSDRAM(0, append(append([]byte{}, nop...), nop...))
	r.sim.SetPC(0x10000000)
	r.dispatch("break 0x10000004")
	r.dispatch("unbreak 0x10000004")

	out.Reset()
	r.dispatch("run 10")
	if got := out.String(); strings.Contains(got, "breakpoint") {
		t.Fatalf("run output = %q, breakpoint should have been removed", got)
	}
}
