// Package main provides the entry point for tomasim.
// tomasim is a cycle-accurate Tomasulo scheduling simulator.
//
// For the full CLI, use: go run ./cmd/tomasim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("tomasim - Tomasulo Scheduling Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: tomasim run [options] <input>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run       Simulate a program file")
	fmt.Println("  bench     Run the scheduling microbenchmarks")
	fmt.Println("  config    Write the default timing configuration")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/tomasim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/tomasim' instead.")
	}
}
