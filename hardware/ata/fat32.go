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

package ata

import (
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pp5021sim/curated"
)

const (
	bytesPerSector    = SectorSize
	sectorsPerCluster = 8
	reservedSectors   = 32
	fatCount          = 1
	rootDirEntries    = 512
	rootDirSectors    = rootDirEntries * 32 / bytesPerSector
)

// Project walks root and packs its regular files into a minimal single-FAT,
// single-cluster-chain-per-file FAT32 volume, returned as a MemoryDisk. It
// is a best-effort read-only projection, not a general-purpose filesystem
// writer: subdirectories are flattened into the root directory and long
// file names are truncated to 8.3.
func Project(root string) (*MemoryDisk, error) {
	type file struct {
		name string
		data []byte
	}
	var files []file

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, file{name: shortName(d.Name()), data: data})
		return nil
	})
	if err != nil {
		return nil, curated.Errorf(curated.ConfigProjectionFailed, root, err)
	}

	dataClusters := uint32(0)
	for _, f := range files {
		dataClusters += clustersFor(len(f.data))
	}

	fatSectors := (2 + dataClusters + 1) * 4 / bytesPerSector
	if fatSectors == 0 {
		fatSectors = 1
	}
	totalSectors := reservedSectors + fatCount*fatSectors + rootDirSectors + dataClusters*sectorsPerCluster

	disk := NewMemoryDisk(uint64(totalSectors))

	writeBootSector(disk, fatSectors, totalSectors)

	fat := make([]byte, fatSectors*bytesPerSector)
	binary.LittleEndian.PutUint32(fat[0:4], 0x0FFFFFF8)
	binary.LittleEndian.PutUint32(fat[4:8], 0x0FFFFFFF)

	rootDir := make([]byte, rootDirSectors*bytesPerSector)
	nextCluster := uint32(2)
	dataAreaLBA := uint64(reservedSectors) + uint64(fatCount)*uint64(fatSectors) + uint64(rootDirSectors)

	for i, f := range files {
		if i >= rootDirEntries-1 {
			break // best-effort: root directory is fixed-size.
		}
		n := clustersFor(len(f.data))
		writeDirEntry(rootDir[i*32:], f.name, nextCluster, uint32(len(f.data)))
		writeClusterChain(fat, nextCluster, n)

		for c := uint32(0); c < n; c++ {
			lba := dataAreaLBA + uint64(nextCluster-2+c)*sectorsPerCluster
			for s := uint32(0); s < sectorsPerCluster; s++ {
				off := int(c)*sectorsPerCluster*bytesPerSector + int(s)*bytesPerSector
				end := off + bytesPerSector
				if off >= len(f.data) {
					continue
				}
				if end > len(f.data) {
					buf := make([]byte, bytesPerSector)
					copy(buf, f.data[off:])
					disk.WriteSector(lba+uint64(s), buf)
					continue
				}
				disk.WriteSector(lba+uint64(s), f.data[off:end])
			}
		}
		nextCluster += n
	}

	for s := uint32(0); s < fatSectors; s++ {
		off := int(s) * bytesPerSector
		end := off + bytesPerSector
		if end > len(fat) {
			end = len(fat)
		}
		buf := make([]byte, bytesPerSector)
		copy(buf, fat[off:end])
		disk.WriteSector(uint64(reservedSectors+s), buf)
	}
	for s := 0; s < len(rootDir)/bytesPerSector; s++ {
		disk.WriteSector(uint64(reservedSectors)+uint64(fatCount)*uint64(fatSectors)+uint64(s),
			rootDir[s*bytesPerSector:(s+1)*bytesPerSector])
	}

	return disk, nil
}

func clustersFor(size int) uint32 {
	clusterBytes := sectorsPerCluster * bytesPerSector
	return uint32((size + clusterBytes - 1) / clusterBytes)
}

func writeClusterChain(fat []byte, start, count uint32) {
	for i := uint32(0); i < count; i++ {
		cluster := start + i
		var next uint32
		if i+1 == count {
			next = 0x0FFFFFFF // end of chain
		} else {
			next = cluster + 1
		}
		binary.LittleEndian.PutUint32(fat[cluster*4:], next)
	}
}

func writeDirEntry(dst []byte, name string, cluster, size uint32) {
	for i := 0; i < 11; i++ {
		dst[i] = ' '
	}
	base, ext, _ := strings.Cut(name, ".")
	copy(dst[0:8], strings.ToUpper(base))
	copy(dst[8:11], strings.ToUpper(ext))
	dst[11] = 0x20 // archive attribute
	binary.LittleEndian.PutUint16(dst[20:22], uint16(cluster>>16))
	binary.LittleEndian.PutUint16(dst[26:28], uint16(cluster))
	binary.LittleEndian.PutUint32(dst[28:32], size)
}

func shortName(name string) string {
	base, ext, ok := strings.Cut(name, ".")
	if len(base) > 8 {
		base = base[:8]
	}
	if !ok {
		return base
	}
	if len(ext) > 3 {
		ext = ext[:3]
	}
	return base + "." + ext
}

func writeBootSector(disk *MemoryDisk, fatSectors, totalSectors uint32) {
	var bs [SectorSize]byte
	bs[0] = 0xEB
	bs[1] = 0x58
	bs[2] = 0x90
	copy(bs[3:11], "PP5021F ")
	binary.LittleEndian.PutUint16(bs[11:13], bytesPerSector)
	bs[13] = sectorsPerCluster
	binary.LittleEndian.PutUint16(bs[14:16], reservedSectors)
	bs[16] = fatCount
	binary.LittleEndian.PutUint32(bs[32:36], totalSectors)
	binary.LittleEndian.PutUint32(bs[36:40], fatSectors)
	binary.LittleEndian.PutUint32(bs[44:48], 2) // root cluster
	bs[510] = 0x55
	bs[511] = 0xAA
	_ = disk.WriteSector(0, bs[:])
}
