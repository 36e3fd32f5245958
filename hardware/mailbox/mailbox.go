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

// Package mailbox implements the CPU<->COP mailbox: two sticky-bit queue
// registers, each writable only by its owning processor and clearable only
// by the opposite processor's read.
package mailbox

import "pp5021sim/hardware/membus"

// stickyBit is the bit a COP/CPU read clears after observing it, matching
// the real PP5021C mailbox's "bit 29 marks an unread message" convention.
const stickyBit = 1 << 29

// Register offsets within the mailbox's mapped region.
const (
	regCPUQueue = 0x00
	regCOPQueue = 0x04
)

// Queue holds the two mailbox registers. It implements
// membus.RequesterAware rather than plain membus.PeripheralHandler because
// a read or write means something different depending on which processor
// issued it.
type Queue struct {
	cpuQueue uint32
	copQueue uint32
}

// New returns an empty mailbox.
func New() *Queue {
	return &Queue{}
}

// ReadAs implements membus.RequesterAware. Reading the queue you own is
// side-effect-free and simply observes the current value; reading the
// other processor's queue clears its sticky bit after returning the value
// it held.
func (q *Queue) ReadAs(offset uint32, req membus.Requester) uint32 {
	switch offset {
	case regCPUQueue:
		v := q.cpuQueue
		if req == membus.RequesterCOP {
			q.cpuQueue &^= stickyBit
		}
		return v
	case regCOPQueue:
		v := q.copQueue
		if req == membus.RequesterCPU {
			q.copQueue &^= stickyBit
		}
		return v
	default:
		return 0
	}
}

// WriteAs implements membus.RequesterAware. Writing to a queue ORs the
// written bits in, and only the owning processor's write has effect; a
// write by the wrong processor is side-effect-free.
func (q *Queue) WriteAs(offset uint32, value uint32, req membus.Requester) {
	switch offset {
	case regCPUQueue:
		if req == membus.RequesterCPU {
			q.cpuQueue |= value
		}
	case regCOPQueue:
		if req == membus.RequesterCOP {
			q.copQueue |= value
		}
	}
}

// Read and Write satisfy membus.PeripheralHandler so a Queue can still be
// attached to a Bus that (unlike this simulator's) doesn't know about
// RequesterAware; membus.Bus itself always prefers ReadAs/WriteAs and
// never calls these.
func (q *Queue) Read(offset uint32) uint32 {
	return q.ReadAs(offset, membus.RequesterCPU)
}

func (q *Queue) Write(offset uint32, value uint32) {
	q.WriteAs(offset, value, membus.RequesterCPU)
}
