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
	"io"

	"github.com/bradleyjkemp/memviz"
)

// WriteRegionDiagram renders the address space partition as a graphviz dot
// file, useful when a change to regionTable needs a sanity check by eye
// rather than by reading the raw ranges.
func WriteRegionDiagram(w io.Writer) {
	memviz.Map(w, &regionTable)
}

// WriteBusDiagram renders the live state of b: which peripheral handler is
// attached to which region, and the backing stores' current sizes.
func (b *Bus) WriteBusDiagram(w io.Writer) {
	memviz.Map(w, b)
}
