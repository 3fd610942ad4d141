// Package benchmarks provides scheduling benchmark infrastructure for tomasim.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// BenchmarkResult holds the scheduling results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the number of cycles simulated
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// Issued is the number of instructions that entered a station
	Issued uint64 `json:"issued"`

	// Completed is the number of results broadcast on the bus
	Completed uint64 `json:"completed"`

	// IPC is completed instructions per cycle
	IPC float64 `json:"ipc"`

	// IssueStalls counts cycles the queue head waited for a station
	IssueStalls uint64 `json:"issue_stalls"`

	// BusConflicts counts finished stations that lost bus arbitration
	BusConflicts uint64 `json:"bus_conflicts"`

	// Captures counts operands resolved from the bus
	Captures uint64 `json:"captures"`

	// QueueWarnings counts instructions past the queue limit
	QueueWarnings int `json:"queue_warnings"`

	// Registers is the final register file
	Registers [insts.NumRegisters]int64 `json:"registers"`

	// Correct is set when the final registers match the expected values
	Correct bool `json:"correct"`

	// Fault describes the error that ended the run early
	Fault string `json:"fault,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Registers is the initial register file
	Registers emu.RegFile

	// Program is the instruction sequence
	Program []insts.Instruction

	// Cycles is the number of cycles to simulate
	Cycles uint64

	// Expected is the final register file (nil skips validation)
	Expected *emu.RegFile
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Latencies overrides the default operation latencies
	Latencies *latency.TimingConfig

	// QueueLimit is the instruction queue soft limit
	QueueLimit int

	// QueuePolicy decides what happens past the queue limit
	QueuePolicy tomasulo.QueuePolicy

	// UseEngine drives the machine from an akita serial engine
	UseEngine bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Latencies:   latency.DefaultTimingConfig(),
		QueueLimit:  tomasulo.DefaultQueueLimit,
		QueuePolicy: tomasulo.QueueWarnOnly,
		Output:      os.Stdout,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Latencies == nil {
		config.Latencies = latency.DefaultTimingConfig()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark on a fresh machine.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	machine := tomasulo.NewMachine(bench.Registers,
		tomasulo.WithLatencyTable(latency.NewTableWithConfig(h.config.Latencies)),
		tomasulo.WithQueueLimit(h.config.QueueLimit),
		tomasulo.WithQueuePolicy(h.config.QueuePolicy),
	)

	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	warnings, err := machine.Load(bench.Program)
	if err != nil {
		result.Fault = err.Error()
		return result
	}
	result.QueueWarnings = len(warnings)

	start := time.Now()
	if h.config.UseEngine {
		c := core.NewCore("Core", sim.NewSerialEngine(), machine)
		err = c.Run(bench.Cycles)
	} else {
		err = machine.RunCycles(bench.Cycles)
	}
	result.WallTime = time.Since(start)

	if err != nil {
		result.Fault = err.Error()
	}

	stats := machine.Stats()
	result.SimulatedCycles = stats.Cycles
	result.Issued = stats.Issued
	result.Completed = stats.Broadcasts
	result.IPC = stats.IPC()
	result.IssueStalls = stats.IssueStalls
	result.BusConflicts = stats.BusConflicts
	result.Captures = stats.Captures
	result.Registers = machine.State().Regs.R

	if bench.Expected != nil {
		result.Correct = err == nil && result.Registers == bench.Expected.R
	}

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "ran %s: %d cycles, %d completed\n",
			bench.Name, result.SimulatedCycles, result.Completed)
	}

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== tomasim Scheduling Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Scheduling ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles: %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Issued:           %d\n", r.Issued)
		_, _ = fmt.Fprintf(h.config.Output, "  Completed:        %d\n", r.Completed)
		_, _ = fmt.Fprintf(h.config.Output, "  IPC:              %.3f\n", r.IPC)
		_, _ = fmt.Fprintf(h.config.Output, "  Issue Stalls:     %d\n", r.IssueStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Bus Conflicts:    %d\n", r.BusConflicts)
		_, _ = fmt.Fprintf(h.config.Output, "  Captures:         %d\n", r.Captures)
		if r.QueueWarnings > 0 {
			_, _ = fmt.Fprintf(h.config.Output, "  Queue Warnings:   %d\n", r.QueueWarnings)
		}
		_, _ = fmt.Fprintf(h.config.Output, "  Registers: %v\n", r.Registers)
		_, _ = fmt.Fprintf(h.config.Output, "  Correct: %t\n", r.Correct)
		if r.Fault != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Fault: %s\n", r.Fault)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,issued,completed,ipc,issue_stalls,bus_conflicts,captures,queue_warnings,correct")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%.3f,%d,%d,%d,%d,%t\n",
			r.Name,
			r.SimulatedCycles,
			r.Issued,
			r.Completed,
			r.IPC,
			r.IssueStalls,
			r.BusConflicts,
			r.Captures,
			r.QueueWarnings,
			r.Correct,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Config is the latency configuration used
	Config *latency.TimingConfig `json:"config"`

	// QueueLimit and QueuePolicy describe the instruction queue
	QueueLimit  int    `json:"queue_limit"`
	QueuePolicy string `json:"queue_policy"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	TotalBenchmarks int     `json:"total_benchmarks"`
	TotalCycles     uint64  `json:"total_cycles"`
	TotalCompleted  uint64  `json:"total_completed"`
	AverageIPC      float64 `json:"average_ipc"`
	Failures        int     `json:"failures"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		summary.TotalCycles += r.SimulatedCycles
		summary.TotalCompleted += r.Completed
		summary.TotalWallTime += r.WallTime
		if !r.Correct {
			summary.Failures++
		}
	}
	if summary.TotalCycles > 0 {
		summary.AverageIPC = float64(summary.TotalCompleted) / float64(summary.TotalCycles)
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Config:      h.config.Latencies,
			QueueLimit:  h.config.QueueLimit,
			QueuePolicy: h.config.QueuePolicy.String(),
		},
		Results: results,
		Summary: summary,
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
