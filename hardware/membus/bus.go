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

import (
	"pp5021sim/curated"
	"pp5021sim/logger"
)

// unmappedReadValue is returned for a read of an unmapped address when
// Strict mode is off: the encoding of BX LR, a harmless "return from
// subroutine" a stray fetch can execute without corrupting firmware state.
const unmappedReadValue = 0xE12FFF1E

// Requester distinguishes which bus master issued an access; it matters to
// the processor-ID register, which returns a different byte to the CPU than
// to the coprocessor, and to RequesterAware peripherals such as the mailbox.
type Requester int

const (
	RequesterCPU Requester = iota
	RequesterCOP
)

// AccessKind distinguishes a read from a write, for tracing.
type AccessKind int

const (
	AccessRead AccessKind = iota
	AccessWrite
)

// AccessTrace describes one completed bus transaction, delivered to an
// optional OnAccess hook for telemetry or debugger use.
type AccessTrace struct {
	Addr   uint32
	Value  uint32
	Width  int
	Kind   AccessKind
	Region Kind
}

// Bus routes every CPU and coprocessor memory access to the region of the
// PP5021C address space it falls within, translating encoded SDRAM
// references and narrowing sub-word accesses against the appropriate
// backing store.
type Bus struct {
	rom   *rom
	sdram *ram
	iram  *ram

	peripherals map[Kind]PeripheralHandler

	// Strict makes an unmapped access raise a bus fault instead of
	// returning the default filler value.
	Strict bool

	// faulted is a sticky flag set by unmapped when Strict is on and
	// cleared by TookFault. The bus cannot tell an instruction fetch from
	// a data access, so it only records that a fault happened; the CPU
	// decides whether that becomes a Prefetch or a Data Abort.
	faulted bool

	// Requester is set by the caller (the CPU or COP driver) before each
	// access so the processor-ID register can answer correctly.
	Requester Requester

	// OnAccess, if set, is called after every completed access.
	OnAccess func(AccessTrace)
}

// NewBus constructs a Bus with SDRAM and IRAM sized per the PP5021C memory
// map. shim may be nil to use DefaultShimProfile.
func NewBus(sdramSize uint32, shim ROMShimProfile) *Bus {
	return &Bus{
		rom:         newROM(shim),
		sdram:       newRAM(sdramSize),
		iram:        newRAM(0x40018000 - 0x40000000),
		peripherals: make(map[Kind]PeripheralHandler),
	}
}

// Attach wires a peripheral handler into the region identified by kind,
// replacing the stub register bank a Read/Write against that region would
// otherwise fall back to.
func (b *Bus) Attach(kind Kind, h PeripheralHandler) {
	b.peripherals[kind] = h
}

// LoadROM installs the boot ROM image.
func (b *Bus) LoadROM(image []byte) error {
	if len(image) > 0x20000 {
		return curated.Errorf(curated.ConfigROMTooLarge, len(image))
	}
	b.rom.load(image)
	return nil
}

// LoadSDRAM copies data into SDRAM starting at byte offset off.
func (b *Bus) LoadSDRAM(off uint32, data []byte) {
	b.sdram.load(off, data)
}

// LoadIRAM copies data into IRAM starting at byte offset off.
func (b *Bus) LoadIRAM(off uint32, data []byte) {
	b.iram.load(off, data)
}

func (b *Bus) peripheralFor(r *region) PeripheralHandler {
	h, ok := b.peripherals[r.Kind]
	if ok {
		return h
	}
	stub := newStubRegisters()
	b.peripherals[r.Kind] = stub
	return stub
}

// Read32 implements cpu.Memory.
func (b *Bus) Read32(addr uint32) uint32 {
	addr = translate(addr)
	r := classify(addr)
	if r == nil {
		return b.unmapped(addr)
	}

	var v uint32
	switch r.Kind {
	case KindBootROM:
		v = b.rom.read32(addr - r.Base)
	case KindSDRAM:
		v = readWord(b.sdram, addr-r.Base)
	case KindIRAM:
		v = readWord(b.iram, addr-r.Base)
	case KindProcessorID:
		if b.Requester == RequesterCOP {
			v = 0xAA
		} else {
			v = 0x55
		}
	default:
		h := b.peripheralFor(r)
		if ra, ok := h.(RequesterAware); ok {
			v = ra.ReadAs(addr-r.Base, b.Requester)
		} else {
			v = h.Read(addr - r.Base)
		}
	}

	b.trace(addr, v, 4, AccessRead, r.Kind)
	return v
}

// Write32 implements cpu.Memory.
func (b *Bus) Write32(addr, v uint32) {
	addr = translate(addr)
	r := classify(addr)
	if r == nil {
		b.unmapped(addr)
		return
	}

	switch r.Kind {
	case KindBootROM:
		b.rom.write32(addr-r.Base, v)
	case KindSDRAM:
		writeWord(b.sdram, addr-r.Base, v)
	case KindIRAM:
		writeWord(b.iram, addr-r.Base, v)
	case KindProcessorID:
		// writes to the identification register are ignored.
	default:
		h := b.peripheralFor(r)
		if ra, ok := h.(RequesterAware); ok {
			ra.WriteAs(addr-r.Base, v, b.Requester)
		} else {
			h.Write(addr-r.Base, v)
		}
	}

	b.trace(addr, v, 4, AccessWrite, r.Kind)
}

// Read16 narrows a Read32 of the containing word.
func (b *Bus) Read16(addr uint32) uint16 {
	word := b.Read32(addr &^ 3)
	shift := (addr & 2) * 8
	return uint16(word >> shift)
}

// Write16 performs a read-modify-write against the containing word.
func (b *Bus) Write16(addr uint32, v uint16) {
	base := addr &^ 3
	word := b.Read32(base)
	shift := (addr & 2) * 8
	mask := uint32(0xFFFF) << shift
	word = (word &^ mask) | (uint32(v) << shift)
	b.Write32(base, word)
}

// Read8 narrows a Read32 of the containing word.
func (b *Bus) Read8(addr uint32) uint8 {
	word := b.Read32(addr &^ 3)
	shift := (addr & 3) * 8
	return uint8(word >> shift)
}

// Write8 performs a read-modify-write against the containing word.
func (b *Bus) Write8(addr uint32, v uint8) {
	base := addr &^ 3
	word := b.Read32(base)
	shift := (addr & 3) * 8
	mask := uint32(0xFF) << shift
	word = (word &^ mask) | (uint32(v) << shift)
	b.Write32(base, word)
}

func (b *Bus) unmapped(addr uint32) uint32 {
	if b.Strict {
		logger.Logf("membus", curated.BusUnmappedStrictAccess, addr)
		b.faulted = true
	}
	b.trace(addr, unmappedReadValue, 4, AccessRead, KindUnmapped)
	return unmappedReadValue
}

// TookFault implements cpu.Faulting.
func (b *Bus) TookFault() bool {
	f := b.faulted
	b.faulted = false
	return f
}

func (b *Bus) trace(addr, v uint32, width int, kind AccessKind, rk Kind) {
	if b.OnAccess != nil {
		b.OnAccess(AccessTrace{Addr: addr, Value: v, Width: width, Kind: kind, Region: rk})
	}
}

func readWord(r *ram, off uint32) uint32 {
	return uint32(r.read8(off)) |
		uint32(r.read8(off+1))<<8 |
		uint32(r.read8(off+2))<<16 |
		uint32(r.read8(off+3))<<24
}

func writeWord(r *ram, off, v uint32) {
	r.write8(off, uint8(v))
	r.write8(off+1, uint8(v>>8))
	r.write8(off+2, uint8(v>>16))
	r.write8(off+3, uint8(v>>24))
}
