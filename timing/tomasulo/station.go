package tomasulo

import (
	"fmt"

	"github.com/sarchlab/tomasim/insts"
)

// Station pool layout. Stations [0, NumAddSubStations) serve the Add/Sub
// unit, the following NumMulDivStations serve the Mul/Div unit.
const (
	NumAddSubStations = 3
	NumMulDivStations = 2
	NumStations       = NumAddSubStations + NumMulDivStations
)

// StationID identifies a reservation station by its index in the pool.
type StationID uint8

// String returns "RS<n>".
func (id StationID) String() string {
	return fmt.Sprintf("RS%d", uint8(id))
}

// Partition returns the half-open index range [lo, hi) of the stations that
// serve class.
func Partition(class insts.Class) (lo, hi StationID) {
	if class == insts.ClassMulDiv {
		return NumAddSubStations, NumStations
	}
	return 0, NumAddSubStations
}

// ClassOf returns the functional-unit class station id belongs to.
func ClassOf(id StationID) insts.Class {
	if id >= NumAddSubStations {
		return insts.ClassMulDiv
	}
	return insts.ClassAddSub
}

// ReservationStation holds one in-flight operation and its operands.
type ReservationStation struct {
	// ID is the station's index in the pool.
	ID StationID

	// Busy indicates the station holds an issued operation.
	Busy bool

	// Op is the operation. Only meaningful while Busy.
	Op insts.Op

	// Left and Right are the source operands.
	Left  OperandRef
	Right OperandRef

	dispatched    bool
	dispatchCycle uint64
}

// Dispatched returns the cycle execution began. ok is false if the station
// has not been dispatched.
func (s *ReservationStation) Dispatched() (cycle uint64, ok bool) {
	return s.dispatchCycle, s.dispatched
}

// MarkDispatched records that execution began at cycle.
func (s *ReservationStation) MarkDispatched(cycle uint64) {
	s.dispatched = true
	s.dispatchCycle = cycle
}

// OperandsReady returns true if both operands hold values.
func (s *ReservationStation) OperandsReady() bool {
	return s.Left.IsReady() && s.Right.IsReady()
}

// capture resolves every operand pending on producer to value and reports
// whether any operand changed.
func (s *ReservationStation) capture(producer StationID, value int64) bool {
	captured := false
	if s.Left.WaitsOn(producer) {
		s.Left = Ready(value)
		captured = true
	}
	if s.Right.WaitsOn(producer) {
		s.Right = Ready(value)
		captured = true
	}
	return captured
}

// Reset frees the station.
func (s *ReservationStation) Reset() {
	*s = ReservationStation{ID: s.ID}
}

// StationPool is the fixed set of reservation stations.
type StationPool [NumStations]ReservationStation

// NewStationPool creates a pool of free stations.
func NewStationPool() StationPool {
	var p StationPool
	for i := range p {
		p[i].ID = StationID(i)
	}
	return p
}

// Station returns the station with the given id.
func (p *StationPool) Station(id StationID) *ReservationStation {
	return &p[id]
}

// FreeStation returns the lowest-index free station serving class.
func (p *StationPool) FreeStation(class insts.Class) (StationID, bool) {
	lo, hi := Partition(class)
	for id := lo; id < hi; id++ {
		if !p[id].Busy {
			return id, true
		}
	}
	return 0, false
}

// BusyCount returns the number of occupied stations.
func (p *StationPool) BusyCount() int {
	n := 0
	for i := range p {
		if p[i].Busy {
			n++
		}
	}
	return n
}
