package tomasulo

import (
	"fmt"

	"github.com/sarchlab/tomasim/insts"
)

// ArithmeticFault reports an operation that cannot produce a result, such
// as a division by zero, at broadcast time.
type ArithmeticFault struct {
	Cycle   uint64
	Station StationID
	Op      insts.Op
	Left    int64
	Right   int64
	Err     error
}

func (f *ArithmeticFault) Error() string {
	return fmt.Sprintf("arithmetic fault in %v: %v %d %s %d: %v",
		f.Station, f.Op, f.Left, f.Op.Symbol(), f.Right, f.Err)
}

func (f *ArithmeticFault) Unwrap() error {
	return f.Err
}

// CycleFault terminates a simulation run. Cycle is zero-based; the message
// uses the one-based numbering of the trace.
type CycleFault struct {
	Cycle uint64
	Err   error
}

func (f *CycleFault) Error() string {
	return fmt.Sprintf("simulation aborted in cycle %d: %v", f.Cycle+1, f.Err)
}

func (f *CycleFault) Unwrap() error {
	return f.Err
}
