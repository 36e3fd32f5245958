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

// Package telemetry implements the fixed-capacity ring buffer of debug
// event records a host tool can persist and an external parser can read
// back without this package's help, given the documented wire format.
package telemetry

// EventType tags a Event with the subsystem that raised it. Tags are
// grouped into fixed subsystem ranges so an external parser can bucket
// unknown tags by range even across versions.
type EventType uint8

// Subsystem ranges. Only a representative few tags are named per range;
// the ranges themselves are the stable contract.
const (
	EventSystemBoot    EventType = 0x01
	EventSystemHalt    EventType = 0x02
	EventAudioUnderrun EventType = 0x10
	EventStorageRead   EventType = 0x20
	EventStorageWrite  EventType = 0x21
	EventStorageError  EventType = 0x2F
	EventDisplayFlush  EventType = 0x30
	EventInputKey      EventType = 0x40
	EventPowerLow      EventType = 0x50
	EventErrorBusFault EventType = 0x60
	EventErrorCPUFault EventType = 0x61
	EventPerfCycleMark EventType = 0x70
	EventDebugMarker   EventType = 0xF0
)

// recordSize is the on-wire size of one Event: u32 timestamp, u8 type,
// u8 flags, u16 data, u32 extended.
const recordSize = 12

// Event is one 12-byte telemetry record.
type Event struct {
	TimestampMs uint32
	Type        EventType
	Flags       uint8
	Data        uint16
	Extended    uint32
}
