// Package tomasulo implements dynamic instruction scheduling with
// Tomasulo's algorithm: in-order issue into reservation stations, register
// renaming through a register alias table, out-of-order dispatch and a
// single completion bus.
package tomasulo

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
)

// MachineOption is a functional option for configuring the Machine.
type MachineOption func(*Machine)

// WithLatencyTable sets the latency table used to time execution.
func WithLatencyTable(table *latency.Table) MachineOption {
	return func(m *Machine) {
		m.latencyTable = table
	}
}

// WithQueueLimit sets the soft limit of the instruction queue. 0 disables
// the limit.
func WithQueueLimit(limit int) MachineOption {
	return func(m *Machine) {
		m.queueLimit = limit
	}
}

// WithQueuePolicy sets what happens to instructions past the queue limit.
func WithQueuePolicy(policy QueuePolicy) MachineOption {
	return func(m *Machine) {
		m.queuePolicy = policy
	}
}

// WithTracer sets the observer of scheduling events.
func WithTracer(tracer Tracer) MachineOption {
	return func(m *Machine) {
		m.tracer = tracer
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		m.logger = logger
	}
}

// Machine drives the scheduler one cycle at a time.
type Machine struct {
	state *State

	latencyTable *latency.Table
	queueLimit   int
	queuePolicy  QueuePolicy
	tracer       Tracer
	logger       *slog.Logger

	cycle    uint64
	stats    Statistics
	warnings []*QueueOverflowError
	fault    error
}

// NewMachine creates a machine with the given initial register file and an
// empty instruction queue.
func NewMachine(regs emu.RegFile, opts ...MachineOption) *Machine {
	m := &Machine{
		latencyTable: latency.NewTable(),
		queueLimit:   DefaultQueueLimit,
		queuePolicy:  QueueWarnOnly,
		tracer:       nopTracer{},
		logger:       slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.state = NewState(regs, NewInstructionQueue(m.queueLimit, m.queuePolicy))

	return m
}

// Load appends program to the instruction queue. Queue overflows are
// returned as warnings. The whole program is validated first; an invalid
// instruction rejects the load and leaves the queue untouched.
func (m *Machine) Load(program []insts.Instruction) ([]*QueueOverflowError, error) {
	for i, inst := range program {
		if err := validate(inst); err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
	}

	var warnings []*QueueOverflowError
	for _, inst := range program {
		err := m.state.Queue.Push(inst)
		if err == nil {
			continue
		}

		var overflow *QueueOverflowError
		if !errors.As(err, &overflow) {
			m.warnings = append(m.warnings, warnings...)
			return warnings, err
		}
		m.logger.Warn("instruction queue overloaded",
			"index", overflow.Index,
			"inst", overflow.Inst.String(),
			"limit", overflow.Limit,
			"policy", overflow.Policy.String(),
			"accepted", overflow.Accepted())
		warnings = append(warnings, overflow)
	}

	m.warnings = append(m.warnings, warnings...)

	return warnings, nil
}

func validate(inst insts.Instruction) error {
	if !inst.Op.Valid() {
		return fmt.Errorf("%w: unknown operation %v", insts.ErrInvalidInstruction, inst.Op)
	}
	for _, reg := range [...]uint8{inst.Rd, inst.Rs1, inst.Rs2} {
		if int(reg) >= insts.NumRegisters {
			return fmt.Errorf("%w: register R%d out of range", insts.ErrInvalidInstruction, reg)
		}
	}
	return nil
}

// Cycle returns the number of cycles simulated so far, which is also the
// zero-based number of the next cycle.
func (m *Machine) Cycle() uint64 {
	return m.cycle
}

// Stats returns scheduler statistics.
func (m *Machine) Stats() Statistics {
	return m.stats
}

// State returns the live machine state. Callers must not mutate it.
func (m *Machine) State() *State {
	return m.state
}

// Warnings returns every queue overflow reported by Load.
func (m *Machine) Warnings() []*QueueOverflowError {
	return m.warnings
}

// Fault returns the error that terminated the run, or nil.
func (m *Machine) Fault() error {
	return m.fault
}

// Faulted returns true once a fault terminated the run.
func (m *Machine) Faulted() bool {
	return m.fault != nil
}

// LatencyTable returns the latency table.
func (m *Machine) LatencyTable() *latency.Table {
	return m.latencyTable
}

// Snapshot returns a read-only copy of the machine state.
func (m *Machine) Snapshot() Snapshot {
	snap := TakeSnapshot(m.state)
	snap.Cycle = m.cycle
	snap.Stats = m.stats
	snap.Fault = m.fault
	return snap
}

// RunCycles executes exactly cycles cycles, idle or not. It stops early
// only on a fault, which it returns.
func (m *Machine) RunCycles(cycles uint64) error {
	for i := uint64(0); i < cycles; i++ {
		if err := m.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// Tick executes one cycle.
//
// The stages always run in the same order:
//  1. Issue the queue head into a free station.
//  2. Broadcast one finished result and let waiting stations capture it.
//  3. Dispatch ready stations, skipping the station issued into and the
//     stations that captured a value in this cycle.
//
// A fault in Broadcast aborts the cycle; the machine stays faulted and
// every later Tick returns the same error.
func (m *Machine) Tick() error {
	if m.fault != nil {
		return m.fault
	}

	cycle := m.cycle
	m.emit(Event{Kind: EventCycleStart, Cycle: cycle})

	var excluded ExclusionSet

	head, hasHead := m.state.Queue.Head()
	if id, ok := Issue(m.state); ok {
		excluded.Add(id)
		m.stats.Issued++
		m.emit(Event{Kind: EventIssue, Cycle: cycle, Station: id, Inst: head})
	} else if hasHead {
		m.stats.IssueStalls++
		m.emit(Event{Kind: EventIssueStall, Cycle: cycle, Inst: head})
	}

	res, err := Broadcast(m.state, cycle, m.latencyTable)
	if err != nil {
		m.fault = &CycleFault{Cycle: cycle, Err: err}
		m.logger.Error("simulation fault", "cycle", cycle+1, "err", err)
		return m.fault
	}
	m.recordBroadcast(cycle, res)

	for _, id := range res.Captured {
		excluded.Add(id)
	}

	for _, id := range Dispatch(m.state, cycle, excluded) {
		m.stats.Dispatched++
		m.emit(Event{Kind: EventDispatch, Cycle: cycle, Station: id})
	}

	m.cycle++
	m.stats.Cycles++
	m.emit(Event{Kind: EventCycleEnd, Cycle: cycle})

	return nil
}

func (m *Machine) recordBroadcast(cycle uint64, res BroadcastResult) {
	m.stats.BusConflicts += uint64(len(res.Deferred))

	if !res.Broadcast {
		return
	}

	m.stats.Broadcasts++
	m.emit(Event{
		Kind:          EventBroadcast,
		Cycle:         cycle,
		Station:       res.Station,
		Value:         res.Value,
		Register:      res.Register,
		WroteRegister: res.WroteRegister,
	})

	for _, id := range res.Captured {
		m.stats.Captures++
		m.emit(Event{
			Kind:     EventCapture,
			Cycle:    cycle,
			Station:  id,
			Producer: res.Station,
			Value:    res.Value,
		})
	}
}

func (m *Machine) emit(ev Event) {
	m.tracer.Trace(ev)

	attrs := []any{"cycle", ev.Cycle + 1}
	switch ev.Kind {
	case EventCycleStart, EventCycleEnd:
		return
	case EventIssue:
		attrs = append(attrs, "station", ev.Station.String(), "inst", ev.Inst.String())
	case EventIssueStall:
		attrs = append(attrs, "inst", ev.Inst.String())
	case EventBroadcast:
		attrs = append(attrs, "station", ev.Station.String(), "value", ev.Value)
	case EventCapture:
		attrs = append(attrs, "station", ev.Station.String(),
			"producer", ev.Producer.String(), "value", ev.Value)
	case EventDispatch:
		attrs = append(attrs, "station", ev.Station.String())
	}
	m.logger.Debug(ev.Kind.String(), attrs...)
}
