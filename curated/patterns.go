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

package curated

// Simulator-fault patterns. These never propagate through the CPU: they
// are returned directly to the caller of the Simulator API.
const (
	ConfigInvalidSDRAMSize  = "sdram size must be a non-zero multiple of 4: %d"
	ConfigDiskImageUnusable = "cannot open disk image %q: %v"
	ConfigROMTooLarge       = "rom image of %d bytes exceeds the boot rom window"
	ConfigProjectionFailed  = "cannot project directory tree %q as a disk image: %v"

	SimNoImageLoaded  = "no rom or sdram image has been loaded"
	SimAlreadyRunning = "simulator is already executing (reentrant or concurrent step/run)"
)

// CPU-fault and bus-fault patterns. These drive a real ARM exception rather
// than being returned to the caller; they are formatted here only so
// logging is consistent.
const (
	CPUUndefinedInstruction = "undefined instruction %#08x at %#08x"
	BusMisalignedFetch      = "misaligned fetch at %#08x"
	BusUnmappedStrictAccess = "strict-mode access to unmapped address %#08x"
)

// ATA command/state-machine patterns.
const (
	ATAIllegalLBA   = "illegal lba %d for disk of %d sectors"
	ATAZeroCount    = "zero sector count is not a valid request"
	ATADiskReadOnly = "write rejected: disk %q is read-only"
)
