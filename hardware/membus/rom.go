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

package membus

import "encoding/binary"

// overlaySize is the size of the low-memory window (exception vectors, their
// literal pool, and the boot-ROM callback trampoline) shadowing the start
// of ROM; only its part from writableOverlayOffset up accepts writes.
const overlaySize = 0x400

// writableOverlayOffset is the first offset at which firmware writes to ROM
// are honoured; everything below is the synthesized trampoline and ignores
// writes.
const writableOverlayOffset = 0x270

// ROMShimProfile supplies the values a real boot ROM would contain at the
// handful of offsets firmware depends on before its own image is mapped in
// (the exception vector trampoline and its literal pool). A host that has a
// captured boot ROM image can supply one loaded from bytes instead; absent
// that, DefaultShimProfile reproduces the well-known trampoline shape.
type ROMShimProfile interface {
	// Trampoline returns the word at offset off within [0x00, 0x1C], the
	// branch-through-literal-pool sequence for one exception vector.
	Trampoline(off uint32) uint32

	// LiteralPool returns the word at offset off within [0x20, 0x3C], the
	// handler address each trampoline entry loads.
	LiteralPool(off uint32) uint32

	// CallbackStub returns the word at offset off within the boot-ROM
	// callback trampoline region.
	CallbackStub(off uint32) uint32
}

// defaultShimProfile synthesizes `LDR PC, [PC, #0x18]` at every vector slot
// plus a literal pool pointing into SDRAM at a fixed offset past the
// vectors, matching the well-documented PP5021C boot ROM shape closely
// enough for firmware that only cares about reaching its own handlers.
type defaultShimProfile struct{}

// DefaultShimProfile is the synthesized trampoline used when no captured
// boot ROM image is supplied.
var DefaultShimProfile ROMShimProfile = defaultShimProfile{}

func (defaultShimProfile) Trampoline(off uint32) uint32 {
	return 0xE59FF018 // LDR PC, [PC, #0x18]
}

func (defaultShimProfile) LiteralPool(off uint32) uint32 {
	vectorIndex := (off - 0x20) / 4
	return 0x10000800 + vectorIndex*4
}

func (defaultShimProfile) CallbackStub(off uint32) uint32 {
	// BX LR: return immediately. A host wanting real callback semantics
	// supplies its own profile backed by a captured image.
	return 0xE12FFF1E
}

// rom is the boot ROM backing: a read-only firmware image plus a writable
// low-memory overlay that shadows it.
type rom struct {
	image   []byte
	shim    ROMShimProfile
	overlay [overlaySize / 4]uint32
	written [overlaySize / 4]bool
}

func newROM(shim ROMShimProfile) *rom {
	if shim == nil {
		shim = DefaultShimProfile
	}
	return &rom{shim: shim}
}

func (r *rom) load(image []byte) {
	r.image = image
}

func (r *rom) read32(addr uint32) uint32 {
	if addr < overlaySize {
		idx := addr / 4
		if r.written[idx] {
			return r.overlay[idx]
		}
		if int(addr)+4 <= len(r.image) {
			return binary.LittleEndian.Uint32(r.image[addr:])
		}
		return r.synthesize(addr)
	}
	if int(addr)+4 <= len(r.image) {
		return binary.LittleEndian.Uint32(r.image[addr:])
	}
	return 0
}

func (r *rom) write32(addr, v uint32) {
	if addr < writableOverlayOffset {
		return
	}
	if addr < overlaySize {
		idx := addr / 4
		r.overlay[idx] = v
		r.written[idx] = true
	}
	// writes above the overlay but still "in ROM" are dropped: real flash
	// is not writable through this window.
}

func (r *rom) synthesize(addr uint32) uint32 {
	switch {
	case addr <= 0x1C:
		return r.shim.Trampoline(addr)
	case addr >= 0x20 && addr <= 0x3C:
		return r.shim.LiteralPool(addr)
	case addr >= 0x23C && addr <= 0x26C:
		return r.shim.CallbackStub(addr)
	default:
		return 0
	}
}
