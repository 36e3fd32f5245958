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

// Package interrupt implements the PP5021C's interrupt controller: per-source
// pending and enable bits, masked and routed to either IRQ or FIQ, exposed
// both as a cpu.InterruptSource and as a memory-mapped register bank.
package interrupt

// Source identifies one of the controller's 32 interrupt lines. Peripherals
// that can raise an interrupt are handed the bit for their own source at
// construction.
type Source uint32

// The handful of sources this simulator's peripherals actually assert.
// Real PP5021C firmware sees many more lines than this; unused bits are
// still readable/writable through the register bank, they simply never
// go high on their own.
const (
	SourceTimer0 Source = 1 << iota
	SourceTimer1
	SourceATA
	SourceMailboxCPU
	SourceMailboxCOP
	SourceDMA
	SourceGPIO
)

// Controller tracks pending, enabled, and FIQ-routed interrupt sources and
// answers the CPU's per-instruction "is anything pending" questions.
type Controller struct {
	pending uint32
	enable  uint32
	fiq     uint32 // bits routed to FIQ rather than IRQ
}

// NewController returns a Controller with every source masked and clear.
func NewController() *Controller {
	return &Controller{}
}

// Assert raises the pending bit for src. Idempotent: asserting an
// already-pending source is a no-op.
func (c *Controller) Assert(src Source) {
	c.pending |= uint32(src)
}

// Clear lowers the pending bit for src, as a peripheral does once it has
// been serviced.
func (c *Controller) Clear(src Source) {
	c.pending &^= uint32(src)
}

// active is the set of sources that are both pending and enabled.
func (c *Controller) active() uint32 {
	return c.pending & c.enable
}

// PendingIRQ implements cpu.InterruptSource: any active source not routed
// to FIQ.
func (c *Controller) PendingIRQ() bool {
	return c.active()&^c.fiq != 0
}

// PendingFIQ implements cpu.InterruptSource: any active source routed to
// FIQ. FIQ is always checked first by the CPU, matching a real ARM7TDMI.
func (c *Controller) PendingFIQ() bool {
	return c.active()&c.fiq != 0
}

// Register offsets within the interrupt controller's mapped region.
const (
	regPendingStatus = 0x00 // read-only: currently pending sources
	regEnableStatus  = 0x04 // read: currently enabled; write: set enable bits
	regEnableClear   = 0x08 // write: clear enable bits
	regFIQSelect     = 0x0C // read/write: sources routed to FIQ
	regPendingClear  = 0x10 // write: clear pending bits
)

// Read implements membus.PeripheralHandler.
func (c *Controller) Read(offset uint32) uint32 {
	switch offset {
	case regPendingStatus:
		return c.pending
	case regEnableStatus:
		return c.enable
	case regFIQSelect:
		return c.fiq
	default:
		return 0
	}
}

// Write implements membus.PeripheralHandler.
func (c *Controller) Write(offset uint32, value uint32) {
	switch offset {
	case regEnableStatus:
		c.enable |= value
	case regEnableClear:
		c.enable &^= value
	case regFIQSelect:
		c.fiq = value
	case regPendingClear:
		c.pending &^= value
	}
}
