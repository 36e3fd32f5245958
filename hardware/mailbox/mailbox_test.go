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

package mailbox_test

import (
	"testing"

	"pp5021sim/hardware/mailbox"
	"pp5021sim/hardware/membus"
)

func TestCPUWriteThenCOPReadClearsStickyBit(t *testing.T) {
	q := mailbox.New()

	q.WriteAs(0x00, 1<<29|0x3, membus.RequesterCPU)

	if got := q.ReadAs(0x00, membus.RequesterCOP); got != 1<<29|0x3 {
		t.Fatalf("first cop read = %#x, want sticky bit still set", got)
	}
	if got := q.ReadAs(0x00, membus.RequesterCOP); got != 0x3 {
		t.Fatalf("second cop read = %#x, want sticky bit cleared", got)
	}
}

func TestSymmetricForCOPQueue(t *testing.T) {
	q := mailbox.New()
	q.WriteAs(0x04, 1<<29, membus.RequesterCOP)

	if got := q.ReadAs(0x04, membus.RequesterCPU); got != 1<<29 {
		t.Fatalf("cpu read = %#x, want sticky bit set", got)
	}
	if got := q.ReadAs(0x04, membus.RequesterCPU); got != 0 {
		t.Fatalf("second cpu read = %#x, want 0", got)
	}
}

func TestWrongProcessorAccessIsSideEffectFree(t *testing.T) {
	q := mailbox.New()

	// COP "writing" to the CPU queue should have no effect.
	q.WriteAs(0x00, 0xFF, membus.RequesterCOP)
	if got := q.ReadAs(0x00, membus.RequesterCPU); got != 0 {
		t.Fatalf("cop write to cpu queue should be ignored, got %#x", got)
	}

	q.WriteAs(0x00, 0x5, membus.RequesterCPU)
	// CPU reading its own queue observes without clearing the sticky bit.
	q.WriteAs(0x00, 1<<29, membus.RequesterCPU)
	if got := q.ReadAs(0x00, membus.RequesterCPU); got != 1<<29|0x5 {
		t.Fatalf("own-queue read should not clear sticky bit, got %#x", got)
	}
}
