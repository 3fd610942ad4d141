package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/tomasim/benchmarks"
	"github.com/sarchlab/tomasim/timing/latency"
)

var (
	benchFormat string
	benchCore   bool
	benchEngine bool
	benchConfig string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the scheduling microbenchmarks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBenchmarks(cmd.OutOrStdout())
	},
}

func init() {
	flags := benchCmd.Flags()
	flags.StringVar(&benchFormat, "format", "text", "output format: text, csv or json")
	flags.BoolVar(&benchCore, "core", false, "run only the core benchmark set")
	flags.BoolVar(&benchEngine, "engine", false, "drive the benchmarks from the akita engine")
	flags.StringVar(&benchConfig, "config", "", "path to timing configuration JSON file")
	rootCmd.AddCommand(benchCmd)
}

func runBenchmarks(w io.Writer) error {
	switch benchFormat {
	case "text", "csv", "json":
	default:
		return fmt.Errorf("unknown format %q", benchFormat)
	}

	config := benchmarks.DefaultConfig()
	config.Output = w
	config.UseEngine = benchEngine
	config.Verbose = verbose

	if benchConfig != "" {
		timingConfig, err := latency.LoadConfig(benchConfig)
		if err != nil {
			return fmt.Errorf("error loading timing config: %w", err)
		}
		config.Latencies = timingConfig
	}

	harness := benchmarks.NewHarness(config)
	if benchCore {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	results := harness.RunAll()

	switch benchFormat {
	case "text":
		harness.PrintResults(results)
	case "csv":
		harness.PrintCSV(results)
	case "json":
		return harness.PrintJSON(results)
	}

	return nil
}
