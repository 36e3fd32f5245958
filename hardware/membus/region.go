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

// Kind identifies which region of the address space an access falls into.
type Kind int

const (
	KindUnmapped Kind = iota
	KindBootROM
	KindSDRAM
	KindLCDFramebuffer
	KindIRAM
	KindProcessorID
	KindMailbox
	KindInterruptController
	KindTimers
	KindSystemController
	KindHardwareAccelerator
	KindCacheControl
	KindDMA
	KindGPIO
	KindDeviceInit
	KindGPO32
	KindATA
	KindFlashController
)

func (k Kind) String() string {
	switch k {
	case KindUnmapped:
		return "unmapped"
	case KindBootROM:
		return "boot_rom"
	case KindSDRAM:
		return "sdram"
	case KindLCDFramebuffer:
		return "lcd_framebuffer"
	case KindIRAM:
		return "iram"
	case KindProcessorID:
		return "processor_id"
	case KindMailbox:
		return "mailbox"
	case KindInterruptController:
		return "interrupt_controller"
	case KindTimers:
		return "timers"
	case KindSystemController:
		return "system_controller"
	case KindHardwareAccelerator:
		return "hardware_accelerator"
	case KindCacheControl:
		return "cache_control"
	case KindDMA:
		return "dma"
	case KindGPIO:
		return "gpio"
	case KindDeviceInit:
		return "device_init"
	case KindGPO32:
		return "gpo32"
	case KindATA:
		return "ata"
	case KindFlashController:
		return "flash_controller"
	default:
		return "???"
	}
}

// region is one entry of the address space partition: a contiguous,
// inclusive [Base, End] range tagged with a Kind.
type region struct {
	Name string
	Kind Kind
	Base uint32
	End  uint32
}

// regionTable is the PP5021C address space partition. Lookup is a linear
// scan; ~20 entries makes this cheap enough not to need a sorted index.
var regionTable = []region{
	{"boot_rom", KindBootROM, 0x00000000, 0x0001FFFF},
	{"sdram", KindSDRAM, 0x10000000, 0x13FFFFFF},
	{"lcd_bridge", KindLCDFramebuffer, 0x30000000, 0x30000FFF},
	{"iram", KindIRAM, 0x40000000, 0x40017FFF},
	{"processor_id", KindProcessorID, 0x60000000, 0x60000003},
	{"hw_accelerator", KindHardwareAccelerator, 0x60003000, 0x60003FFF},
	{"mailbox", KindMailbox, 0x60001000, 0x60001FFF},
	{"interrupt_controller", KindInterruptController, 0x60004000, 0x600041FF},
	{"timers", KindTimers, 0x60005000, 0x6000503F},
	{"system_controller", KindSystemController, 0x60006000, 0x60007FFF},
	{"dma", KindDMA, 0x6000A000, 0x6000BFFF},
	{"cache_control", KindCacheControl, 0x6000C000, 0x6000C003},
	{"gpio", KindGPIO, 0x6000D000, 0x6000D2FF},
	{"device_init", KindDeviceInit, 0x70000000, 0x7000007F},
	{"gpo32_i2s_i2c_clickwheel_lcd", KindGPO32, 0x70000080, 0x7000FFFF},
	{"ata", KindATA, 0xC3000000, 0xC30003FF},
	{"flash_controller", KindFlashController, 0xF000F000, 0xF000F0FF},
}

// classify returns the region containing addr, or nil if addr is Unmapped.
func classify(addr uint32) *region {
	for i := range regionTable {
		r := &regionTable[i]
		if addr >= r.Base && addr <= r.End {
			return r
		}
	}
	return nil
}

// translate applies the encoded-address rewrite: an address whose top byte
// is 0x04 is firmware's own image-relative reference to SDRAM, rewritten to
// 0x10000000 + the low 24 bits.
func translate(addr uint32) uint32 {
	if addr>>24 == 0x04 {
		return 0x10000000 + addr&0x00FFFFFF
	}
	return addr
}
