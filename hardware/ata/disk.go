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

// Package ata implements the ATA/IDE register file and command state
// machine backing the PP5021C's storage bus, over either a file-backed or
// an in-memory disk image.
package ata

import (
	"os"

	"pp5021sim/curated"
)

// SectorSize is the fixed sector size this controller understands.
const SectorSize = 512

// Disk is a sector-addressable backing store.
type Disk interface {
	Sectors() uint64
	ReadSector(lba uint64, buf []byte) error
	WriteSector(lba uint64, buf []byte) error
	ReadOnly() bool
}

// MemoryDisk is a Disk backed entirely by an in-process byte slice, used
// for tests and for a directory tree projected by Project (see fat32.go).
type MemoryDisk struct {
	data     []byte
	readOnly bool
}

// NewMemoryDisk allocates an all-zero in-memory disk of the given sector
// count.
func NewMemoryDisk(sectors uint64) *MemoryDisk {
	return &MemoryDisk{data: make([]byte, sectors*SectorSize)}
}

func (d *MemoryDisk) Sectors() uint64 { return uint64(len(d.data)) / SectorSize }
func (d *MemoryDisk) ReadOnly() bool  { return d.readOnly }

func (d *MemoryDisk) ReadSector(lba uint64, buf []byte) error {
	if lba >= d.Sectors() {
		return curated.Errorf(curated.ATAIllegalLBA, lba, d.Sectors())
	}
	copy(buf, d.data[lba*SectorSize:(lba+1)*SectorSize])
	return nil
}

func (d *MemoryDisk) WriteSector(lba uint64, buf []byte) error {
	if lba >= d.Sectors() {
		return curated.Errorf(curated.ATAIllegalLBA, lba, d.Sectors())
	}
	if d.readOnly {
		return curated.Errorf(curated.ATADiskReadOnly, "memory")
	}
	copy(d.data[lba*SectorSize:(lba+1)*SectorSize], buf)
	return nil
}

// FileDisk is a Disk backed by a regular file opened for exclusive
// read-write access for the simulator's lifetime.
type FileDisk struct {
	f       *os.File
	sectors uint64
}

// OpenFileDisk opens path read-write and reports its capacity in sectors,
// truncating partial trailing sectors out of the count.
func OpenFileDisk(path string) (*FileDisk, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, curated.Errorf(curated.ConfigDiskImageUnusable, path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, curated.Errorf(curated.ConfigDiskImageUnusable, path, err)
	}
	return &FileDisk{f: f, sectors: uint64(info.Size()) / SectorSize}, nil
}

func (d *FileDisk) Sectors() uint64 { return d.sectors }
func (d *FileDisk) ReadOnly() bool  { return false }

func (d *FileDisk) ReadSector(lba uint64, buf []byte) error {
	if lba >= d.sectors {
		return curated.Errorf(curated.ATAIllegalLBA, lba, d.sectors)
	}
	_, err := d.f.ReadAt(buf[:SectorSize], int64(lba*SectorSize))
	return err
}

func (d *FileDisk) WriteSector(lba uint64, buf []byte) error {
	if lba >= d.sectors {
		return curated.Errorf(curated.ATAIllegalLBA, lba, d.sectors)
	}
	_, err := d.f.WriteAt(buf[:SectorSize], int64(lba*SectorSize))
	return err
}

// Close releases the backing file, if any.
func (d *FileDisk) Close() error {
	return d.f.Close()
}
