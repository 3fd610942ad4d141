// Validate decoder allocation behavior - measures allocations per decode
package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sarchlab/tomasim/insts"
)

func main() {
	decoder := insts.NewDecoder()

	records := []insts.Record{
		{0, 1, 2, 3}, // Add R1, R2, R3
		{1, 4, 1, 2}, // Sub R4, R1, R2
		{2, 5, 4, 4}, // Mul R5, R4, R4
		{3, 6, 5, 1}, // Div R6, R5, R1
	}

	// Warm up
	for i := 0; i < 1000; i++ {
		_, _ = decoder.Decode(records[0])
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	var sink *insts.Instruction
	for i := 0; i < iterations; i++ {
		for _, rec := range records {
			inst, err := decoder.Decode(rec)
			if err != nil {
				panic(err)
			}
			sink = inst
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(records)
	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("Decoder Validation Results:\n")
	fmt.Printf("========================================\n")
	fmt.Printf("Last instruction: %v\n", sink)
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocated bytes: %d\n", allocatedBytes)
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))
	fmt.Printf("Bytes per decode: %.1f\n", float64(allocatedBytes)/float64(totalDecodes))

	if float64(allocations)/float64(totalDecodes) <= 1.0 {
		fmt.Printf("\n✅ GOOD: At most one allocation per decode\n")
	} else {
		fmt.Printf("\n⚠️  WARNING: High allocation rate detected\n")
	}
}
