package benchmarks

import (
	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

// GetMicrobenchmarks returns the standard set of scheduling microbenchmarks.
// Each benchmark targets one behavior of the scheduler. All start from the
// register file R0..R7 = 1..8.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		independentAdds(),
		dependencyChain(),
		mulHeavy(),
		divideStall(),
		wawRename(),
		busConflict(),
		queueOverflow(),
		mixedOperations(),
	}
}

// GetCoreBenchmarks returns a minimal set of benchmarks for quick validation.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		dependencyChain(),
		wawRename(),
		mixedOperations(),
	}
}

func initialRegisters() emu.RegFile {
	return emu.NewRegFile(1, 2, 3, 4, 5, 6, 7, 8)
}

func expect(values ...int64) *emu.RegFile {
	regs := emu.NewRegFile(values...)
	return &regs
}

func inst(op insts.Op, rd, rs1, rs2 uint8) insts.Instruction {
	return insts.Instruction{Op: op, Rd: rd, Rs1: rs1, Rs2: rs2}
}

// 1. Independent Adds - one Add/Sub dispatch per cycle at best
func independentAdds() Benchmark {
	return Benchmark{
		Name:        "independent_adds",
		Description: "6 independent Add/Sub operations - measures station throughput",
		Registers:   initialRegisters(),
		Program: []insts.Instruction{
			inst(insts.OpAdd, 0, 6, 7),
			inst(insts.OpAdd, 1, 6, 7),
			inst(insts.OpAdd, 2, 6, 7),
			inst(insts.OpSub, 3, 7, 6),
			inst(insts.OpAdd, 4, 6, 6),
			inst(insts.OpSub, 5, 7, 7),
		},
		Cycles:   10,
		Expected: expect(15, 15, 15, 1, 14, 0, 7, 8),
	}
}

// 2. Dependency Chain - every link waits for a broadcast
func dependencyChain() Benchmark {
	chain := make([]insts.Instruction, 6)
	for i := range chain {
		chain[i] = inst(insts.OpAdd, 1, 1, 2)
	}

	return Benchmark{
		Name:        "dependency_chain",
		Description: "6 dependent Adds (R1 = R1 + R2) - measures capture-to-dispatch latency",
		Registers:   initialRegisters(),
		Program:     chain,
		Cycles:      19,
		Expected:    expect(1, 20, 3, 4, 5, 6, 7, 8),
	}
}

// 3. Mul Heavy - more multiplies than Mul/Div stations
func mulHeavy() Benchmark {
	return Benchmark{
		Name:        "mul_heavy",
		Description: "4 independent Muls on 2 stations - measures structural stalls",
		Registers:   initialRegisters(),
		Program: []insts.Instruction{
			inst(insts.OpMul, 1, 2, 3),
			inst(insts.OpMul, 4, 5, 6),
			inst(insts.OpMul, 7, 2, 2),
			inst(insts.OpMul, 0, 3, 3),
		},
		Cycles:   25,
		Expected: expect(16, 12, 3, 4, 42, 6, 7, 9),
	}
}

// 4. Divide Stall - the third Div blocks the queue for a full latency
func divideStall() Benchmark {
	return Benchmark{
		Name:        "divide_stall",
		Description: "3 Divs and a dependent Add - measures in-order issue stalls",
		Registers:   initialRegisters(),
		Program: []insts.Instruction{
			inst(insts.OpDiv, 1, 7, 2),
			inst(insts.OpDiv, 3, 6, 2),
			inst(insts.OpDiv, 4, 5, 2),
			inst(insts.OpAdd, 5, 1, 3),
		},
		Cycles:   84,
		Expected: expect(1, 2, 3, 2, 2, 4, 7, 8),
	}
}

// 5. WAW Rename - a slow Mul must not overwrite the younger Add's result
func wawRename() Benchmark {
	return Benchmark{
		Name:        "waw_rename",
		Description: "Mul and Add writing R1 - measures renaming of output dependencies",
		Registers:   initialRegisters(),
		Program: []insts.Instruction{
			inst(insts.OpMul, 1, 2, 3),
			inst(insts.OpAdd, 1, 4, 5),
			inst(insts.OpAdd, 6, 1, 1),
		},
		Cycles:   12,
		Expected: expect(1, 11, 3, 4, 5, 6, 22, 8),
	}
}

// 6. Bus Conflict - a Mul and an Add finish in the same cycle
func busConflict() Benchmark {
	program := []insts.Instruction{
		inst(insts.OpMul, 1, 2, 3),
		inst(insts.OpAdd, 6, 6, 6),
	}
	for range 4 {
		program = append(program, inst(insts.OpAdd, 4, 4, 5))
	}

	return Benchmark{
		Name:        "bus_conflict",
		Description: "Add chain racing a Mul - measures completion bus arbitration",
		Registers:   initialRegisters(),
		Program:     program,
		Cycles:      16,
		Expected:    expect(1, 12, 3, 4, 29, 6, 14, 8),
	}
}

// 7. Queue Overflow - more instructions than the default queue limit
func queueOverflow() Benchmark {
	program := make([]insts.Instruction, 12)
	for i := range program {
		program[i] = inst(insts.OpAdd, uint8(i%8), uint8((i+1)%8), uint8((i+2)%8))
	}

	return Benchmark{
		Name:        "queue_overflow",
		Description: "12 Adds against a queue limit of 10 - exercises the queue policy",
		Registers:   initialRegisters(),
		Program:     program,
		Cycles:      18,
		Expected:    expect(16, 20, 24, 28, 13, 15, 13, 12),
	}
}

// 8. Mixed Operations - all four operations with true and false dependencies
func mixedOperations() Benchmark {
	return Benchmark{
		Name:        "mixed_operations",
		Description: "10 mixed operations - measures overall scheduling behavior",
		Registers:   initialRegisters(),
		Program: []insts.Instruction{
			inst(insts.OpAdd, 0, 1, 2),
			inst(insts.OpMul, 3, 0, 4),
			inst(insts.OpSub, 5, 3, 1),
			inst(insts.OpDiv, 6, 7, 1),
			inst(insts.OpAdd, 0, 0, 0),
			inst(insts.OpMul, 2, 5, 6),
			inst(insts.OpAdd, 7, 2, 3),
			inst(insts.OpSub, 1, 1, 1),
			inst(insts.OpAdd, 4, 4, 4),
			inst(insts.OpMul, 5, 4, 0),
		},
		Cycles:   60,
		Expected: expect(10, 0, 92, 25, 10, 100, 4, 117),
	}
}
