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

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
	"unsafe"

	"github.com/pkg/term/termios"

	"pp5021sim/logger"
	"pp5021sim/simulator"
)

// termGeometry holds the output terminal's size in characters, queried
// through pkg/term's termios wrapper and reported in the REPL's start-up
// banner, falling back to 80x24 when stdout isn't a terminal (a pipe or
// redirect).
type termGeometry struct {
	rows, cols uint16
}

func queryGeometry(f *os.File) termGeometry {
	var attr syscall.Termios
	if err := termios.Tcgetattr(f.Fd(), &attr); err != nil {
		return termGeometry{rows: 24, cols: 80}
	}

	var dim struct{ rows, cols, x, y uint16 }
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(),
		uintptr(syscall.TIOCGWINSZ), uintptr(unsafe.Pointer(&dim)))
	if errno != 0 || dim.cols == 0 {
		return termGeometry{rows: 24, cols: 80}
	}
	return termGeometry{rows: dim.rows, cols: dim.cols}
}

// repl is a line-oriented command interpreter over a running Simulator:
// step/run/reg/setreg/pc/break/unbreak/log/help/quit. It reads whole lines rather than raw
// keystrokes, so the terminal is left in its normal canonical mode.
type repl struct {
	sim    *simulator.Simulator
	in     *bufio.Scanner
	out    io.Writer
	geom   termGeometry
	prompt string
}

func newREPL(sim *simulator.Simulator, in *os.File, out *os.File) *repl {
	return &repl{
		sim:    sim,
		in:     bufio.NewScanner(in),
		out:    out,
		geom:   queryGeometry(out),
		prompt: "pp5021sim> ",
	}
}

func (r *repl) run() error {
	fmt.Fprintf(r.out, "pp5021sim REPL (%dx%d terminal). type 'help' for commands.\n", r.geom.cols, r.geom.rows)
	for {
		fmt.Fprint(r.out, r.prompt)
		if !r.in.Scan() {
			return r.in.Err()
		}
		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			continue
		}
		if r.dispatch(line) {
			return nil
		}
	}
}

// dispatch executes one line; it returns true if the REPL should exit.
func (r *repl) dispatch(line string) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit":
		return true

	case "help":
		fmt.Fprint(r.out, "commands: step, run <cycles>, reg [n], setreg <n> <value>, "+
			"break <addr>, unbreak <addr>, pc <addr>, log [n], quit\n")

	case "step":
		result, err := r.sim.Step()
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		if result.ExceptionTaken != nil {
			fmt.Fprintf(r.out, "exception taken: %v (%d cycles)\n", *result.ExceptionTaken, result.Cycles)
		} else {
			fmt.Fprintf(r.out, "stepped (%d cycles)\n", result.Cycles)
		}

	case "run":
		cycles := uint64(1_000_000)
		if len(args) > 0 {
			if v, err := strconv.ParseUint(args[0], 0, 64); err == nil {
				cycles = v
			}
		}
		result := r.sim.Run(cycles)
		fmt.Fprintf(r.out, "stopped: %s after %d cycles, %d instructions\n",
			result.StopReason, result.Cycles, result.Instructions)

	case "reg":
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 || n > 15 {
				fmt.Fprintf(r.out, "error: register must be 0-15\n")
				return false
			}
			fmt.Fprintf(r.out, "r%d = %#010x\n", n, r.sim.GetReg(n))
			return false
		}
		for n := 0; n < 16; n++ {
			fmt.Fprintf(r.out, "r%-2d = %#010x\n", n, r.sim.GetReg(n))
		}

	case "setreg":
		if len(args) != 2 {
			fmt.Fprintf(r.out, "usage: setreg <n> <value>\n")
			return false
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 || n > 15 {
			fmt.Fprintf(r.out, "error: register must be 0-15\n")
			return false
		}
		v, err := strconv.ParseUint(args[1], 0, 32)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		r.sim.SetReg(n, uint32(v))

	case "pc":
		if len(args) != 1 {
			fmt.Fprintf(r.out, "usage: pc <addr>\n")
			return false
		}
		v, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		r.sim.SetPC(uint32(v))

	case "break":
		if len(args) != 1 {
			fmt.Fprintf(r.out, "usage: break <addr>\n")
			return false
		}
		v, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		r.sim.AddBreakpoint(uint32(v))

	case "unbreak":
		if len(args) != 1 {
			fmt.Fprintf(r.out, "usage: unbreak <addr>\n")
			return false
		}
		v, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		r.sim.RemoveBreakpoint(uint32(v))

	case "log":
		n := 20
		if len(args) > 0 {
			if v, err := strconv.Atoi(args[0]); err == nil {
				n = v
			}
		}
		logger.Tail(r.out, n)

	default:
		fmt.Fprintf(r.out, "unrecognised command %q, type 'help'\n", cmd)
	}
	return false
}
