package insts

import (
	"errors"
	"fmt"
)

// NumRegisters is the number of architectural general-purpose registers.
const NumRegisters = 8

// Op represents an operation code.
type Op uint8

// Operations, numbered by their input opcode.
const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	numOps
)

var opNames = [numOps]string{"Add", "Sub", "Mul", "Div"}

var opSymbols = [numOps]string{"+", "-", "*", "/"}

// String returns the mnemonic of the operation.
func (o Op) String() string {
	if o >= numOps {
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
	return opNames[o]
}

// Symbol returns the infix arithmetic symbol of the operation.
func (o Op) Symbol() string {
	if o >= numOps {
		return "?"
	}
	return opSymbols[o]
}

// Valid returns true if o names a known operation.
func (o Op) Valid() bool {
	return o < numOps
}

// Class returns the functional-unit class that executes the operation.
func (o Op) Class() Class {
	if o == OpMul || o == OpDiv {
		return ClassMulDiv
	}
	return ClassAddSub
}

// Class identifies a functional-unit class.
type Class uint8

// Functional-unit classes.
const (
	ClassAddSub Class = iota
	ClassMulDiv
)

// String returns a human-readable class name.
func (c Class) String() string {
	switch c {
	case ClassAddSub:
		return "add/sub"
	case ClassMulDiv:
		return "mul/div"
	default:
		return fmt.Sprintf("Class(%d)", uint8(c))
	}
}

// Instruction represents a decoded register-to-register instruction.
type Instruction struct {
	Op  Op    // Operation code
	Rd  uint8 // Destination register
	Rs1 uint8 // First source register
	Rs2 uint8 // Second source register
}

// String formats the instruction as "Add R1, R2, R3".
func (i Instruction) String() string {
	return fmt.Sprintf("%s R%d, R%d, R%d", i.Op, i.Rd, i.Rs1, i.Rs2)
}

// Expr formats the instruction as an assignment, e.g. "R1 = R2 + R3".
func (i Instruction) Expr() string {
	return fmt.Sprintf("R%d = R%d %s R%d", i.Rd, i.Rs1, i.Op.Symbol(), i.Rs2)
}

// Record is a raw instruction record: opcode, destination, source A,
// source B.
type Record [4]int64

// ErrInvalidInstruction is returned for records that do not decode.
var ErrInvalidInstruction = errors.New("invalid instruction")

// Decoder turns raw instruction records into instructions.
type Decoder struct{}

// NewDecoder creates a new instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode validates and decodes a raw record.
func (d *Decoder) Decode(rec Record) (*Instruction, error) {
	if rec[0] < 0 || rec[0] >= int64(numOps) {
		return nil, fmt.Errorf("%w: unknown opcode %d", ErrInvalidInstruction, rec[0])
	}

	names := [3]string{"destination", "source A", "source B"}
	for i, name := range names {
		if err := d.checkRegister(name, rec[i+1]); err != nil {
			return nil, err
		}
	}

	return &Instruction{
		Op:  Op(rec[0]),
		Rd:  uint8(rec[1]),
		Rs1: uint8(rec[2]),
		Rs2: uint8(rec[3]),
	}, nil
}

func (d *Decoder) checkRegister(name string, reg int64) error {
	if reg < 0 || reg >= NumRegisters {
		return fmt.Errorf("%w: %s register R%d out of range [0, %d)",
			ErrInvalidInstruction, name, reg, NumRegisters)
	}
	return nil
}
