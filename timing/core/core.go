// Package core provides the engine-driven CPU core model.
// It wraps the Tomasulo machine in an Akita ticking component so that the
// scheduler advances one cycle per tick of the simulation engine.
package core

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// DefaultFreq is the clock frequency the core ticks at.
const DefaultFreq = 1 * sim.GHz

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of results broadcast.
	Instructions uint64
	// Stalls is the number of issue stall cycles.
	Stalls uint64
	// BusConflicts is the number of lost completion-bus arbitrations.
	BusConflicts uint64
}

// Core represents an engine-driven Tomasulo core.
type Core struct {
	*sim.TickingComponent

	// Machine is the underlying scheduler.
	Machine *tomasulo.Machine

	engine    sim.Engine
	remaining uint64
	fault     error
}

// NewCore creates a Core named name that ticks machine on engine.
func NewCore(name string, engine sim.Engine, machine *tomasulo.Machine) *Core {
	c := &Core{
		Machine: machine,
		engine:  engine,
	}
	c.TickingComponent = sim.NewTickingComponent(name, engine, DefaultFreq, c)
	return c
}

// Tick executes one machine cycle. It returns false once the requested
// cycles are exhausted or the machine faulted, which stops the ticking.
func (c *Core) Tick() bool {
	if c.remaining == 0 || c.fault != nil {
		return false
	}

	if err := c.Machine.Tick(); err != nil {
		c.fault = err
		return false
	}

	c.remaining--
	return c.remaining > 0
}

// Run executes exactly cycles machine cycles on the engine. The engine does
// not stop early when the program drains; only a fault ends the run early.
func (c *Core) Run(cycles uint64) error {
	if c.fault != nil {
		return c.fault
	}
	if cycles == 0 {
		return nil
	}

	c.remaining = cycles
	c.TickLater()

	if err := c.engine.Run(); err != nil {
		return fmt.Errorf("simulation engine failed: %w", err)
	}

	return c.fault
}

// Cycle returns the number of machine cycles simulated.
func (c *Core) Cycle() uint64 {
	return c.Machine.Cycle()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	s := c.Machine.Stats()
	return Stats{
		Cycles:       s.Cycles,
		Instructions: s.Broadcasts,
		Stalls:       s.IssueStalls,
		BusConflicts: s.BusConflicts,
	}
}

// Snapshot returns the machine state for reporting.
func (c *Core) Snapshot() tomasulo.Snapshot {
	return c.Machine.Snapshot()
}
