// Package insts provides the instruction definitions for the Tomasulo
// scheduling simulator.
//
// The instruction set has four register-to-register integer operations
// split over two functional-unit classes.
//   - Add/Subtract class: Add (opcode 0), Sub (opcode 1)
//   - Multiply/Divide class: Mul (opcode 2), Div (opcode 3)
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode(insts.Record{0, 1, 2, 3}) // Add R1, R2, R3
//	fmt.Println(inst) // "Add R1, R2, R3"
package insts
