package main

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"

	"github.com/sarchlab/tomasim/loader"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// profileOptions holds the settings of a profiling run.
type profileOptions struct {
	CPUProfile string
	MemProfile string
	Repeat     int
	Cycles     uint64
	Engine     bool
}

var profileOpts profileOptions

var profileCmd = &cobra.Command{
	Use:   "profile <input>",
	Short: "Simulate a program repeatedly under pprof",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProfile(args[0], profileOpts, cmd.OutOrStdout())
	},
}

func init() {
	flags := profileCmd.Flags()
	flags.StringVar(&profileOpts.CPUProfile, "cpuprofile", "", "write cpu profile to file")
	flags.StringVar(&profileOpts.MemProfile, "memprofile", "", "write memory profile to file")
	flags.IntVar(&profileOpts.Repeat, "repeat", 1000, "number of simulations to run")
	flags.Uint64Var(&profileOpts.Cycles, "cycles", 0, "override the cycle count of the input file")
	flags.BoolVar(&profileOpts.Engine, "engine", false, "drive the simulation from the akita engine")
	rootCmd.AddCommand(profileCmd)
}

func runProfile(path string, opts profileOptions, w io.Writer) error {
	prog, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("error loading program: %w", err)
	}

	cycles := prog.Cycles
	if opts.Cycles > 0 {
		cycles = opts.Cycles
	}

	if opts.CPUProfile != "" {
		f, err := os.Create(opts.CPUProfile)
		if err != nil {
			return fmt.Errorf("error creating CPU profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("error starting CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	start := time.Now()

	var total uint64
	for i := 0; i < opts.Repeat; i++ {
		machine := tomasulo.NewMachine(prog.Registers)
		if _, err := machine.Load(prog.Instructions); err != nil {
			return err
		}

		if opts.Engine {
			err = core.NewCore("Core", sim.NewSerialEngine(), machine).Run(cycles)
		} else {
			err = machine.RunCycles(cycles)
		}
		total += machine.Cycle()

		if err != nil {
			_, _ = fmt.Fprintf(w, "Run %d stopped: %v\n", i, err)
			break
		}
	}

	elapsed := time.Since(start)

	if opts.MemProfile != "" {
		f, err := os.Create(opts.MemProfile)
		if err != nil {
			return fmt.Errorf("error creating memory profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("error writing memory profile: %w", err)
		}
	}

	_, _ = fmt.Fprintf(w, "\nProfiling Results:\n")
	_, _ = fmt.Fprintf(w, "Runs: %d\n", opts.Repeat)
	_, _ = fmt.Fprintf(w, "Cycles simulated: %d\n", total)
	_, _ = fmt.Fprintf(w, "Elapsed time: %v\n", elapsed)
	if total > 0 && elapsed > 0 {
		_, _ = fmt.Fprintf(w, "Cycles/second: %.0f\n", float64(total)/elapsed.Seconds())
	}

	return nil
}
