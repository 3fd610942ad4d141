// Package main provides accuracy validation for the scheduler drivers.
// Ensures that every way of running a program produces the same result.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/benchmarks"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/loader"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// testInstructionDecoding validates that every instruction survives a
// write and parse through the input format.
func testInstructionDecoding() bool {
	fmt.Println("Testing instruction format round trip...")

	for _, bench := range benchmarks.GetMicrobenchmarks() {
		prog := &loader.Program{
			Instructions: bench.Program,
			Registers:    bench.Registers,
			Cycles:       bench.Cycles,
		}

		var buf bytes.Buffer
		if err := loader.Write(&buf, prog); err != nil {
			fmt.Printf("❌ %s: write failed: %v\n", bench.Name, err)
			return false
		}

		parsed, err := loader.Parse(&buf)
		if err != nil {
			fmt.Printf("❌ %s: parse failed: %v\n", bench.Name, err)
			return false
		}

		if !sameProgram(parsed.Instructions, bench.Program) ||
			parsed.Registers != bench.Registers ||
			parsed.Cycles != bench.Cycles {
			fmt.Printf("❌ %s: round trip mismatch\n", bench.Name)
			return false
		}

		fmt.Printf("✅ %s: %d instructions round-tripped\n", bench.Name, len(parsed.Instructions))
	}

	return true
}

func sameProgram(a, b []insts.Instruction) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newMachine(bench benchmarks.Benchmark) *tomasulo.Machine {
	m := tomasulo.NewMachine(bench.Registers)
	if _, err := m.Load(bench.Program); err != nil {
		panic(err)
	}
	return m
}

// testDriverEquivalence validates that stepping, RunCycles and the akita
// engine reach identical machine states.
func testDriverEquivalence() bool {
	fmt.Println("\nTesting driver equivalence...")

	for _, bench := range benchmarks.GetMicrobenchmarks() {
		direct := newMachine(bench)
		directErr := direct.RunCycles(bench.Cycles)

		stepped := newMachine(bench)
		var steppedErr error
		for i := uint64(0); i < bench.Cycles && steppedErr == nil; i++ {
			steppedErr = stepped.Tick()
		}

		engined := newMachine(bench)
		engineErr := core.NewCore("Core", sim.NewSerialEngine(), engined).Run(bench.Cycles)

		if (directErr == nil) != (steppedErr == nil) || (directErr == nil) != (engineErr == nil) {
			fmt.Printf("❌ %s: drivers disagree on faults\n", bench.Name)
			return false
		}

		want := direct.State().Regs
		if stepped.State().Regs != want || engined.State().Regs != want {
			fmt.Printf("❌ %s: register mismatch\n", bench.Name)
			fmt.Printf("  RunCycles: %v\n", want.R)
			fmt.Printf("  Tick:      %v\n", stepped.State().Regs.R)
			fmt.Printf("  Engine:    %v\n", engined.State().Regs.R)
			return false
		}

		if stepped.Stats() != direct.Stats() || engined.Stats() != direct.Stats() {
			fmt.Printf("❌ %s: statistics mismatch\n", bench.Name)
			return false
		}

		fmt.Printf("✅ %s: %d cycles, registers %v\n", bench.Name, direct.Cycle(), want.R)
	}

	return true
}

// testExpectedResults validates the benchmark programs against their
// precomputed final registers.
func testExpectedResults() bool {
	fmt.Println("\nTesting expected results...")

	var out bytes.Buffer
	config := benchmarks.DefaultConfig()
	config.Output = &out
	harness := benchmarks.NewHarness(config)
	harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())

	passed := true
	for _, r := range harness.RunAll() {
		if !r.Correct {
			fmt.Printf("❌ %s: got %v\n", r.Name, r.Registers)
			passed = false
			continue
		}
		fmt.Printf("✅ %s: IPC %.3f\n", r.Name, r.IPC)
	}

	return passed
}

func main() {
	fmt.Println("tomasim Accuracy Validation - Scheduler Drivers")
	fmt.Println("=======================================================")

	allPassed := true

	if !testInstructionDecoding() {
		allPassed = false
	}

	if !testDriverEquivalence() {
		allPassed = false
	}

	if !testExpectedResults() {
		allPassed = false
	}

	fmt.Println("\n=======================================================")
	if allPassed {
		fmt.Println("🎉 ALL ACCURACY TESTS PASSED")
		os.Exit(0)
	} else {
		fmt.Println("❌ ACCURACY TESTS FAILED")
		os.Exit(1)
	}
}
