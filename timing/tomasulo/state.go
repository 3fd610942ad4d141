package tomasulo

import (
	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

// State is the complete machine state. Stage functions receive it
// explicitly; the cycle driver is its only owner.
type State struct {
	Stations StationPool
	RAT      RAT
	Regs     emu.RegFile
	Queue    InstructionQueue
}

// NewState creates a state with free stations, a clean RAT, the given
// register file and an empty queue.
func NewState(regs emu.RegFile, queue InstructionQueue) *State {
	return &State{
		Stations: NewStationPool(),
		Regs:     regs,
		Queue:    queue,
	}
}

// readOperand snapshots reg, or renames it to its producing station.
func (s *State) readOperand(reg uint8) OperandRef {
	if id, pending := s.RAT.Lookup(reg); pending {
		return Pending(id)
	}
	return Ready(s.Regs.ReadReg(reg))
}

// ExclusionSet holds the stations that may not dispatch in the current
// cycle. The driver rebuilds it every cycle.
type ExclusionSet [NumStations]bool

// Add excludes station id.
func (e *ExclusionSet) Add(id StationID) {
	e[id] = true
}

// Contains returns true if station id is excluded.
func (e *ExclusionSet) Contains(id StationID) bool {
	return e[id]
}

// stationClasses lists the classes in dispatch scan order.
var stationClasses = [...]insts.Class{insts.ClassAddSub, insts.ClassMulDiv}
