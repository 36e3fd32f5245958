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

// Package cpu implements an ARM7TDMI interpreter: both the ARM (32-bit) and
// Thumb (16-bit) instruction sets, the seven processor modes with their
// banked register files, and the full exception model. It does not attempt
// cycle-accurate timing, MMU/TLB emulation (the ARM7TDMI has none), or
// coprocessor instruction execution.
package cpu
