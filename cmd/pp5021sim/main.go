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

// Command pp5021sim runs a host-based functional simulation of the
// PortalPlayer PP5021C SoC: load a boot ROM image (and optionally an
// SDRAM image or a disk), then either run it to a cycle limit or drop
// into an interactive register/breakpoint REPL.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"pp5021sim/hardware/ata"
	"pp5021sim/logger"
	"pp5021sim/simulator"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("pp5021sim", flag.ExitOnError)

	romPath := fs.String("rom", "", "path to a boot ROM image (required)")
	sdramBytes := fs.Uint("sdram", 32*1024*1024, "SDRAM size in bytes")
	diskPath := fs.String("disk", "", "path to a raw disk image")
	projectionRoot := fs.String("projection", "", "host directory to project as a FAT32 disk image")
	diskSectors := fs.Uint64("disk-sectors", 0, "sectors for an empty in-memory disk, when -disk and -projection are unset")
	maxCycles := fs.Uint64("max-cycles", 0, "run headlessly for this many cycles, then exit (0 means: start the interactive REPL instead)")
	strictBus := fs.Bool("strict-bus", false, "treat unmapped bus accesses as faults instead of returning filler data")
	haltOnUndefined := fs.Bool("halt-on-undefined", false, "halt instead of entering the Undefined-Instruction handler")
	statsAddr := fs.String("stats", "", "address to serve runtime statistics charts on (e.g. localhost:18087); empty disables it")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *romPath == "" {
		return fmt.Errorf("pp5021sim: -rom is required")
	}

	rom, err := os.ReadFile(*romPath)
	if err != nil {
		return fmt.Errorf("pp5021sim: reading rom: %w", err)
	}

	sim, err := simulator.New(simulator.Config{
		SDRAMBytes:        uint32(*sdramBytes),
		DiskImagePath:     *diskPath,
		ProjectionRoot:    *projectionRoot,
		MemoryDiskSectors: *diskSectors,
		StrictBusFaults:   *strictBus,
		HaltOnUndefined:   *haltOnUndefined,
		IdentifyIdentity: ata.Identity{
			Model:    "PP5021C SIM DISK",
			Serial:   "0000000000000000",
			Firmware: "1.00",
			LBA48:    true,
		},
	})
	if err != nil {
		return fmt.Errorf("pp5021sim: %w", err)
	}

	if err := sim.LoadROM(rom); err != nil {
		return fmt.Errorf("pp5021sim: loading rom: %w", err)
	}
	sim.ResetCPU()

	if *statsAddr != "" {
		stop := simulator.StartStatsServer(*statsAddr, os.Stdout)
		defer stop()
	}

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	go func() {
		<-intChan
		logger.Log("pp5021sim", "interrupted, flushing log")
		logger.Tail(os.Stderr, 50)
		os.Exit(130)
	}()

	if *maxCycles > 0 {
		result := sim.Run(*maxCycles)
		fmt.Printf("stopped: %s after %d cycles, %d instructions\n", result.StopReason, result.Cycles, result.Instructions)
		return nil
	}

	return newREPL(sim, os.Stdin, os.Stdout).run()
}
