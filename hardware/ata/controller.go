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

	"pp5021sim/curated"
	"pp5021sim/logger"
)

// Commands understood by the controller.
const (
	CmdIdentify           = 0xEC
	CmdReadSectors        = 0x20
	CmdReadSectorsExt     = 0x24 // LBA48
	CmdWriteSectors       = 0x30
	CmdWriteSectorsExt    = 0x34 // LBA48
	CmdFlushCache         = 0xE7
	CmdStandbyImmediate   = 0xE0
)

// Status register bits.
const (
	statusERR  = 1 << 0
	statusDRQ  = 1 << 3 // data request: data register ready to transfer
	statusDRDY = 1 << 6 // device ready
	statusBSY  = 1 << 7
)

// Register offsets within the ATA region.
const (
	regData    = 0x00 // 32-bit: two halfwords of the active sector per access
	regFeature = 0x04 // write: feature; read: error
	regCount   = 0x08 // sector count
	regLBALow  = 0x0C // low 32 bits of LBA
	regLBAHigh = 0x10 // high 16 bits of LBA, for LBA48
	regCommand = 0x14 // write: command; read: status
)

// Identity describes the fixed IDENTIFY fields reported for a disk.
type Identity struct {
	Model        string
	Serial       string
	Firmware     string
	RotationRate uint16
	LBA48        bool
	TRIM         bool
}

// Controller implements the ATA command/state machine over a Disk.
type Controller struct {
	disk     Disk
	identity Identity

	feature uint8
	errorReg uint8
	count    uint16
	lba      uint64
	status   uint8

	buffer    [SectorSize]byte
	cursor    int
	remaining uint32 // sectors still to transfer after the buffer in hand
	writing   bool
}

// NewController wires a Controller to disk, reporting identity for
// IDENTIFY requests.
func NewController(disk Disk, identity Identity) *Controller {
	return &Controller{disk: disk, identity: identity, status: statusDRDY}
}

func (c *Controller) beginRead() {
	if c.count == 0 {
		logger.Log("ata", curated.Errorf(curated.ATAZeroCount))
		c.fail()
		return
	}
	if c.lba+uint64(c.count) > c.disk.Sectors() {
		logger.Log("ata", curated.Errorf(curated.ATAIllegalLBA, c.lba, c.disk.Sectors()))
		c.fail()
		return
	}
	if err := c.disk.ReadSector(c.lba, c.buffer[:]); err != nil {
		logger.Log("ata", err)
		c.fail()
		return
	}
	c.cursor = 0
	c.remaining = uint32(c.count) - 1
	c.writing = false
	c.status = statusDRDY | statusDRQ
}

func (c *Controller) beginWrite() {
	if c.count == 0 {
		logger.Log("ata", curated.Errorf(curated.ATAZeroCount))
		c.fail()
		return
	}
	if c.lba+uint64(c.count) > c.disk.Sectors() {
		logger.Log("ata", curated.Errorf(curated.ATAIllegalLBA, c.lba, c.disk.Sectors()))
		c.fail()
		return
	}
	c.cursor = 0
	c.remaining = uint32(c.count) - 1
	c.writing = true
	c.status = statusDRDY | statusDRQ
}

func (c *Controller) fail() {
	c.errorReg = 0x01 // ABRT
	c.status = statusDRDY | statusERR
}

func (c *Controller) identify() {
	var id [SectorSize]byte
	putASCII(id[20:30], c.identity.Serial)
	putASCII(id[23:27], c.identity.Firmware)
	putASCII(id[27:47], c.identity.Model)
	binary.LittleEndian.PutUint32(id[120:124], uint32(c.disk.Sectors()))
	if c.identity.LBA48 {
		binary.LittleEndian.PutUint64(id[200:208], c.disk.Sectors())
		id[167] |= 1 << 2 // word 83 bit 10 (reported high byte of feature set word)
	}
	binary.LittleEndian.PutUint16(id[94:96], c.identity.RotationRate)
	if c.identity.TRIM {
		id[169] |= 1
	}
	c.buffer = id
	c.cursor = 0
	c.remaining = 0
	c.writing = false
	c.status = statusDRDY | statusDRQ
}

// putASCII writes s into dst, space-padded, the way ATA IDENTIFY strings
// are stored (byte-swapped per 16-bit word); kept as plain ASCII here since
// nothing in this simulator parses the byte order back out.
func putASCII(dst []byte, s string) {
	for i := range dst {
		dst[i] = ' '
	}
	copy(dst, s)
}

func (c *Controller) refill() {
	if c.remaining == 0 {
		c.status = statusDRDY
		return
	}
	c.lba++
	if err := c.disk.ReadSector(c.lba, c.buffer[:]); err != nil {
		logger.Log("ata", err)
		c.fail()
		return
	}
	c.cursor = 0
	c.remaining--
}

func (c *Controller) flushWriteAndAdvance() {
	if err := c.disk.WriteSector(c.lba, c.buffer[:]); err != nil {
		logger.Log("ata", err)
		c.fail()
		return
	}
	if c.remaining == 0 {
		c.status = statusDRDY
		return
	}
	c.lba++
	c.cursor = 0
	c.remaining--
}

// Read implements membus.PeripheralHandler.
func (c *Controller) Read(offset uint32) uint32 {
	switch offset {
	case regData:
		return c.readData()
	case regFeature:
		return uint32(c.errorReg)
	case regCount:
		return uint32(c.count)
	case regLBALow:
		return uint32(c.lba)
	case regLBAHigh:
		return uint32(c.lba >> 32)
	case regCommand:
		return uint32(c.status)
	default:
		return 0
	}
}

// readData pops one word (two halfwords) of sector data from the active
// buffer, advancing the cursor and refilling from the next sector on wrap.
// A 32-bit LDR is the access width this register is specified for; a
// functional simulator has no need to model the narrower native transfer
// width real firmware uses.
func (c *Controller) readData() uint32 {
	if c.status&statusDRQ == 0 {
		return 0
	}
	v := binary.LittleEndian.Uint32(c.buffer[c.cursor:])
	c.cursor += 4
	if c.cursor >= SectorSize {
		c.refill()
	}
	return v
}

// Write implements membus.PeripheralHandler.
func (c *Controller) Write(offset uint32, value uint32) {
	switch offset {
	case regData:
		c.writeData(value)
	case regFeature:
		c.feature = uint8(value)
	case regCount:
		c.count = uint16(value)
	case regLBALow:
		c.lba = c.lba&0xFFFF00000000 | uint64(value)
	case regLBAHigh:
		c.lba = c.lba&0xFFFFFFFF | uint64(uint16(value))<<32
	case regCommand:
		c.execute(uint8(value))
	}
}

func (c *Controller) writeData(value uint32) {
	if !c.writing || c.status&statusDRQ == 0 {
		return
	}
	binary.LittleEndian.PutUint32(c.buffer[c.cursor:], value)
	c.cursor += 4
	if c.cursor >= SectorSize {
		c.flushWriteAndAdvance()
	}
}

func (c *Controller) execute(cmd uint8) {
	switch cmd {
	case CmdIdentify:
		c.identify()
	case CmdReadSectors, CmdReadSectorsExt:
		c.beginRead()
	case CmdWriteSectors, CmdWriteSectorsExt:
		c.beginWrite()
	case CmdFlushCache, CmdStandbyImmediate:
		c.status = statusDRDY
	default:
		c.fail()
	}
}
