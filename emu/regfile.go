// Package emu provides the functional model of the architectural state:
// the register file and the integer ALU.
package emu

import "github.com/sarchlab/tomasim/insts"

// RegFile represents the architectural register file.
// It holds insts.NumRegisters signed general-purpose registers (R0-R7).
type RegFile struct {
	// R holds general-purpose registers R0-R7.
	R [insts.NumRegisters]int64
}

// NewRegFile creates a register file initialized with the given values.
// Missing values are zero; extra values are ignored.
func NewRegFile(values ...int64) RegFile {
	var r RegFile
	copy(r.R[:], values)
	return r
}

// ReadReg reads a register value. Out-of-range registers read as 0.
func (r *RegFile) ReadReg(reg uint8) int64 {
	if int(reg) >= insts.NumRegisters {
		return 0
	}
	return r.R[reg]
}

// WriteReg writes a value to a register. Writes to out-of-range registers
// are ignored.
func (r *RegFile) WriteReg(reg uint8, value int64) {
	if int(reg) >= insts.NumRegisters {
		return
	}
	r.R[reg] = value
}
