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

package telemetry

import (
	"encoding/binary"
	"io"
)

// magic identifies the telemetry buffer format: 0x5A504454 spells "ZPDT"
// most-significant byte first; stored little-endian, its bytes are "TDPZ".
const magic = 0x5A504454

// headerSize is the fixed 32-byte header preceding the event array.
const headerSize = 32

// DefaultCapacity is the number of event records carried by a ring
// constructed with NewRing's zero capacity, matching the "~1,360 records"
// sizing a 32-byte header plus a round buffer size implies.
const DefaultCapacity = 1360

// Ring is a fixed-capacity, oldest-overwritten-first buffer of telemetry
// events, the same trip-wire-free bounded log the rest of the simulator
// uses for text, specialised to fixed-size binary records.
type Ring struct {
	capacity   int
	events     []Event
	writeIndex uint32
	total      uint32 // monotonic count of every Record call, including overwrites
	bootCount  uint32
	version    uint16
	flags      uint16
}

// NewRing constructs a Ring of the given capacity (DefaultCapacity if
// capacity <= 0).
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{
		capacity: capacity,
		events:   make([]Event, capacity),
		version:  1,
	}
}

// Record appends e, overwriting the oldest record once capacity is
// reached.
func (r *Ring) Record(e Event) {
	r.events[r.writeIndex] = e
	r.writeIndex = (r.writeIndex + 1) % uint32(r.capacity)
	r.total++
}

// EventCount is the number of valid (non-garbage) slots currently held:
// capacity once the ring has wrapped, otherwise total.
func (r *Ring) EventCount() uint32 {
	if r.total >= uint32(r.capacity) {
		return uint32(r.capacity)
	}
	return r.total
}

// IncrementBootCount marks a new simulated boot in the persisted buffer,
// called once by the simulator core on reset.
func (r *Ring) IncrementBootCount() {
	r.bootCount++
}

// Clear empties the ring without touching the boot count, matching a
// warm-reset that does not consider itself a fresh boot.
func (r *Ring) Clear() {
	for i := range r.events {
		r.events[i] = Event{}
	}
	r.writeIndex = 0
	r.total = 0
}

// WriteTo serialises the header and the full (capacity-sized) event array
// to w, in the documented wire format, so an external parser never needs
// this package.
func (r *Ring) WriteTo(w io.Writer) (int64, error) {
	body := make([]byte, r.capacity*recordSize)

	// Once the ring has wrapped, writeIndex points at the oldest surviving
	// record (the next slot due for overwrite); serialise starting there so
	// the persisted array reads in insertion order rather than physical
	// slot order. Before any wrap, slot 0 already is the oldest record.
	start := uint32(0)
	if r.total >= uint32(r.capacity) {
		start = r.writeIndex
	}

	for n := 0; n < r.capacity; n++ {
		e := r.events[(start+uint32(n))%uint32(r.capacity)]
		off := n * recordSize
		binary.LittleEndian.PutUint32(body[off:], e.TimestampMs)
		body[off+4] = byte(e.Type)
		body[off+5] = e.Flags
		binary.LittleEndian.PutUint16(body[off+6:], e.Data)
		binary.LittleEndian.PutUint32(body[off+8:], e.Extended)
	}

	checksum := uint32(0)
	for _, b := range body {
		checksum += uint32(b)
	}

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:], magic)
	binary.LittleEndian.PutUint16(header[4:], r.version)
	binary.LittleEndian.PutUint16(header[6:], r.flags)
	binary.LittleEndian.PutUint32(header[8:], r.total)
	binary.LittleEndian.PutUint32(header[12:], r.writeIndex)
	binary.LittleEndian.PutUint32(header[16:], r.EventCount())
	binary.LittleEndian.PutUint32(header[20:], r.bootCount)
	binary.LittleEndian.PutUint32(header[24:], checksum)
	// header[28:32] reserved, left zero.

	n1, err := w.Write(header)
	if err != nil {
		return int64(n1), err
	}
	n2, err := w.Write(body)
	return int64(n1 + n2), err
}
