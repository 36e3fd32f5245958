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
	"os"
	"path/filepath"
	"testing"

	"pp5021sim/hardware/ata"
)

func TestProjectWritesBootSectorSignature(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hello pp5021sim"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	disk, err := ata.Project(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	boot := make([]byte, 512)
	if err := disk.ReadSector(0, boot); err != nil {
		t.Fatalf("unexpected error reading boot sector: %v", err)
	}
	if boot[510] != 0x55 || boot[511] != 0xAA {
		t.Fatalf("boot sector signature = %#x %#x, want 0x55 0xaa", boot[510], boot[511])
	}
}

func TestProjectHandlesEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	disk, err := ata.Project(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if disk.Sectors() == 0 {
		t.Fatalf("expected a non-empty volume even with no files")
	}
}
