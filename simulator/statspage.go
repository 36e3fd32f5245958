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

package simulator

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// StatsAddress is the default host:port the runtime-statistics page
// listens on when StartStatsServer is called without an override.
const StatsAddress = "localhost:18087"

// StartStatsServer launches a background HTTP server exposing live
// goroutine/heap/GC charts, independent of any running Simulator. It
// returns a stop function; calling it shuts the server's listener down.
func StartStatsServer(addr string, echo io.Writer) (stop func()) {
	if addr == "" {
		addr = StatsAddress
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()

	go func() {
		if echo != nil {
			fmt.Fprintf(echo, "runtime statistics available at http://%s/debug/statsview\n", addr)
		}
		_ = mgr.Start()
	}()

	return mgr.Stop
}
