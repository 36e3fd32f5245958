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

package telemetry_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"pp5021sim/telemetry"
)

func TestWriteToProducesWellFormedHeader(t *testing.T) {
	r := telemetry.NewRing(4)
	r.Record(telemetry.Event{TimestampMs: 1, Type: telemetry.EventSystemBoot})
	r.Record(telemetry.Event{TimestampMs: 2, Type: telemetry.EventStorageRead})

	var buf bytes.Buffer
	if _, err := r.WriteTo(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	header := buf.Bytes()[:32]
	if got := binary.LittleEndian.Uint32(header[0:]); got != 0x5A504454 {
		t.Fatalf("magic = %#x, want 0x5a504454", got)
	}
	if got := binary.LittleEndian.Uint32(header[16:]); got != 2 {
		t.Fatalf("event-count = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(header[12:]); got != 2 {
		t.Fatalf("write-index = %d, want 2", got)
	}
}

func TestRingOverwritesOldestOnWrap(t *testing.T) {
	r := telemetry.NewRing(2)
	r.Record(telemetry.Event{TimestampMs: 1})
	r.Record(telemetry.Event{TimestampMs: 2})
	r.Record(telemetry.Event{TimestampMs: 3})

	if got := r.EventCount(); got != 2 {
		t.Fatalf("event count after wrap = %d, want capacity of 2", got)
	}

	var buf bytes.Buffer
	if _, err := r.WriteTo(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := binary.LittleEndian.Uint32(buf.Bytes()[8:])
	if total != 3 {
		t.Fatalf("total-events = %d, want 3 (monotonic across overwrites)", total)
	}
}

func TestWriteToOrdersEventsChronologicallyAfterWrap(t *testing.T) {
	r := telemetry.NewRing(3)
	r.Record(telemetry.Event{TimestampMs: 0})
	r.Record(telemetry.Event{TimestampMs: 1})
	r.Record(telemetry.Event{TimestampMs: 2})
	r.Record(telemetry.Event{TimestampMs: 3})
	r.Record(telemetry.Event{TimestampMs: 4})

	var buf bytes.Buffer
	if _, err := r.WriteTo(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := buf.Bytes()[32:]

	want := []uint32{2, 3, 4}
	for i, w := range want {
		got := binary.LittleEndian.Uint32(body[i*12:])
		if got != w {
			t.Fatalf("record %d timestamp = %d, want %d (oldest-surviving-first)", i, got, w)
		}
	}
}

func TestChecksumIsModularSumOfEventBytes(t *testing.T) {
	r := telemetry.NewRing(1)
	r.Record(telemetry.Event{TimestampMs: 0x01020304, Type: telemetry.EventDebugMarker, Flags: 0xFF, Data: 0x1111, Extended: 0xAABBCCDD})

	var buf bytes.Buffer
	if _, err := r.WriteTo(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := buf.Bytes()
	header := data[:32]
	body := data[32:]

	var want uint32
	for _, b := range body {
		want += uint32(b)
	}
	got := binary.LittleEndian.Uint32(header[24:])
	if got != want {
		t.Fatalf("checksum = %d, want %d", got, want)
	}
}

func TestClearResetsCountersButNotBootCount(t *testing.T) {
	r := telemetry.NewRing(4)
	r.IncrementBootCount()
	r.Record(telemetry.Event{TimestampMs: 1})
	r.Clear()

	var buf bytes.Buffer
	if _, err := r.WriteTo(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	header := buf.Bytes()[:32]
	if got := binary.LittleEndian.Uint32(header[8:]); got != 0 {
		t.Fatalf("total-events after clear = %d, want 0", got)
	}
	if got := binary.LittleEndian.Uint32(header[20:]); got != 1 {
		t.Fatalf("boot-count after clear = %d, want 1 (unaffected)", got)
	}
}
