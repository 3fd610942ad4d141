package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/tomasim/insts"
)

// ErrDivideByZero is returned when a Div operation has a zero divisor.
var ErrDivideByZero = errors.New("integer divide by zero")

// Execute computes op over two resolved operand values.
// Division truncates toward zero.
func Execute(op insts.Op, a, b int64) (int64, error) {
	switch op {
	case insts.OpAdd:
		return a + b, nil
	case insts.OpSub:
		return a - b, nil
	case insts.OpMul:
		return a * b, nil
	case insts.OpDiv:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a / b, nil
	default:
		return 0, fmt.Errorf("unsupported operation %v", op)
	}
}
