package main

import (
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"

	"github.com/sarchlab/tomasim/loader"
	"github.com/sarchlab/tomasim/report"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// runOptions holds the settings of one simulation run.
type runOptions struct {
	InputPath   string
	ConfigPath  string
	Cycles      uint64
	CyclesSet   bool
	QueueLimit  int
	QueuePolicy string
	Trace       bool
	Detailed    bool
	Format      string
	Engine      bool
	Verbose     bool
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run <input>",
	Short: "Simulate a program file",
	Long: `Run loads a program file (instruction count, cycle count, one
"op dst src1 src2" line per instruction and the eight initial register
values) and simulates it for the given number of cycles.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOpts
		opts.InputPath = args[0]
		opts.CyclesSet = cmd.Flags().Changed("cycles")
		opts.Verbose = verbose
		return runSimulation(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	flags := runCmd.Flags()
	flags.StringVar(&runOpts.ConfigPath, "config", "", "path to timing configuration JSON file")
	flags.Uint64Var(&runOpts.Cycles, "cycles", 0, "override the cycle count of the input file")
	flags.IntVar(&runOpts.QueueLimit, "queue-limit", tomasulo.DefaultQueueLimit,
		"instruction queue soft limit (0 disables the check)")
	flags.StringVar(&runOpts.QueuePolicy, "queue-policy", "warn", "queue overflow policy: warn or enforce")
	flags.BoolVar(&runOpts.Trace, "trace", true, "print the per-cycle trace")
	flags.BoolVar(&runOpts.Detailed, "detailed", false, "include stalls and captures in the trace")
	flags.StringVar(&runOpts.Format, "format", "text", "final state format: text or json")
	flags.BoolVar(&runOpts.Engine, "engine", false, "drive the simulation from the akita engine")

	rootCmd.AddCommand(runCmd)
}

// runSimulation loads, simulates and reports one program. The final state is
// written even when the run ends in a fault; the fault is then returned.
func runSimulation(opts runOptions, stdout, stderr io.Writer) error {
	if opts.Format != "text" && opts.Format != "json" {
		return fmt.Errorf("unknown format %q", opts.Format)
	}

	policy, err := tomasulo.ParseQueuePolicy(opts.QueuePolicy)
	if err != nil {
		return err
	}

	prog, err := loader.Load(opts.InputPath)
	if err != nil {
		return fmt.Errorf("error loading program: %w", err)
	}

	timingConfig := latency.DefaultTimingConfig()
	if opts.ConfigPath != "" {
		timingConfig, err = latency.LoadConfig(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("error loading timing config: %w", err)
		}
	}

	logger := newLogger(stderr, opts.Verbose)
	machineOpts := []tomasulo.MachineOption{
		tomasulo.WithLatencyTable(latency.NewTableWithConfig(timingConfig)),
		tomasulo.WithQueueLimit(opts.QueueLimit),
		tomasulo.WithQueuePolicy(policy),
		tomasulo.WithLogger(logger),
	}

	var tracer *report.TraceWriter
	if opts.Trace && opts.Format == "text" {
		tracer = report.NewTraceWriter(stdout)
		tracer.Detailed = opts.Detailed
		machineOpts = append(machineOpts, tomasulo.WithTracer(tracer))
	}

	machine := tomasulo.NewMachine(prog.Registers, machineOpts...)
	if _, err := machine.Load(prog.Instructions); err != nil {
		return fmt.Errorf("error loading program: %w", err)
	}

	cycles := prog.Cycles
	if opts.CyclesSet {
		cycles = opts.Cycles
	}

	var runErr error
	if opts.Engine {
		runErr = core.NewCore("Core", sim.NewSerialEngine(), machine).Run(cycles)
	} else {
		runErr = machine.RunCycles(cycles)
	}

	if tracer != nil && tracer.Err() != nil {
		return tracer.Err()
	}

	if err := writeFinalState(stdout, opts.Format, machine); err != nil {
		return err
	}

	return runErr
}

func writeFinalState(w io.Writer, format string, machine *tomasulo.Machine) error {
	if format == "json" {
		return report.WriteJSON(w, machine.Snapshot())
	}

	if err := report.WriteText(w, machine.Snapshot()); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, "-------------------------------------------")
	return report.WriteStats(w, machine.Stats())
}
