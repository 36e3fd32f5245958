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

package assert

import "sync/atomic"

// ExclusiveAccess gives the "single-threaded cooperative core, concurrent
// access during run is undefined" rule a runtime trip-wire. Enter returns a
// Leave function; calling Enter again before Leave has been called, from any
// goroutine, is reported as a violation rather than silently tolerated.
type ExclusiveAccess struct {
	held   atomic.Bool
	holder atomic.Uint64
}

// Enter marks the guard as held. ok is false if the guard was already held,
// meaning the caller has detected reentrant or concurrent use.
func (g *ExclusiveAccess) Enter() (leave func(), ok bool) {
	if !g.held.CompareAndSwap(false, true) {
		return func() {}, false
	}
	g.holder.Store(GetGoRoutineID())
	return func() { g.held.Store(false) }, true
}

// Holder returns the goroutine ID that currently holds the guard, for use
// in a violation log when Enter fails; the result is meaningless once the
// guard is free.
func (g *ExclusiveAccess) Holder() uint64 {
	return g.holder.Load()
}
