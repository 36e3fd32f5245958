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

package ata_test

import (
	"testing"

	"pp5021sim/hardware/ata"
)

func TestIdentifySetsDataRequest(t *testing.T) {
	disk := ata.NewMemoryDisk(1000)
	c := ata.NewController(disk, ata.Identity{Model: "pp5021sim disk"})

	c.Write(0x14, ata.CmdIdentify)
	if got := c.Read(0x14); got&0x08 == 0 {
		t.Fatalf("status after IDENTIFY should have DRQ set, got %#x", got)
	}
}

func TestWriteThenReadSector(t *testing.T) {
	disk := ata.NewMemoryDisk(1000)
	c := ata.NewController(disk, ata.Identity{})

	// Build a 512-byte sector: first byte 0xEE, rest 0xDD.
	var sector [512]byte
	sector[0] = 0xEE
	for i := 1; i < len(sector); i++ {
		sector[i] = 0xDD
	}

	c.Write(0x0C, 5) // LBA low = 5
	c.Write(0x08, 1) // count = 1
	c.Write(0x14, ata.CmdWriteSectors)

	for off := 0; off < len(sector); off += 4 {
		v := uint32(sector[off]) | uint32(sector[off+1])<<8 | uint32(sector[off+2])<<16 | uint32(sector[off+3])<<24
		c.Write(0x00, v)
	}

	readBack := make([]byte, 512)
	if err := disk.ReadSector(5, readBack); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if readBack[0] != 0xEE || readBack[1] != 0xDD {
		t.Fatalf("buf[0]=%#x buf[1]=%#x, want 0xee, 0xdd", readBack[0], readBack[1])
	}
}

func TestIllegalLBAFailsCommand(t *testing.T) {
	disk := ata.NewMemoryDisk(10)
	c := ata.NewController(disk, ata.Identity{})

	c.Write(0x0C, 50)
	c.Write(0x08, 1)
	c.Write(0x14, ata.CmdReadSectors)

	if got := c.Read(0x14); got&0x01 == 0 {
		t.Fatalf("expected error status bit set for illegal lba, got %#x", got)
	}
}

func TestZeroCountFailsCommand(t *testing.T) {
	disk := ata.NewMemoryDisk(10)
	c := ata.NewController(disk, ata.Identity{})

	c.Write(0x08, 0)
	c.Write(0x14, ata.CmdReadSectors)

	if got := c.Read(0x14); got&0x01 == 0 {
		t.Fatalf("expected error status bit set for zero count, got %#x", got)
	}
}

func TestFlushAndStandbyAreNoOps(t *testing.T) {
	disk := ata.NewMemoryDisk(10)
	c := ata.NewController(disk, ata.Identity{})

	c.Write(0x14, ata.CmdFlushCache)
	if got := c.Read(0x14); got&0x01 != 0 {
		t.Fatalf("flush should not set error status, got %#x", got)
	}

	c.Write(0x14, ata.CmdStandbyImmediate)
	if got := c.Read(0x14); got&0x01 != 0 {
		t.Fatalf("standby should not set error status, got %#x", got)
	}
}
