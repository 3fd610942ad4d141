// Package latency provides the functional-unit timing model.
//
// Latencies default to Add/Sub = 2, Mul = 10 and Div = 40 cycles and can be
// overridden via TimingConfig.
package latency

import (
	"github.com/sarchlab/tomasim/insts"
)

// Table provides operation latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the execution latency in cycles for the given operation.
func (t *Table) GetLatency(op insts.Op) uint64 {
	switch op {
	case insts.OpAdd:
		return t.config.AddLatency
	case insts.OpSub:
		return t.config.SubLatency
	case insts.OpMul:
		return t.config.MulLatency
	case insts.OpDiv:
		return t.config.DivLatency
	default:
		return 1
	}
}

// ReadyAt returns the first cycle at which an operation dispatched at
// dispatchCycle may broadcast its result.
func (t *Table) ReadyAt(op insts.Op, dispatchCycle uint64) uint64 {
	return dispatchCycle + t.GetLatency(op)
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
