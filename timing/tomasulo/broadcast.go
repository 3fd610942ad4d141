package tomasulo

import (
	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
)

// arbitrationOrder is the completion bus priority: Mul/Div before Add/Sub.
var arbitrationOrder = [...]insts.Class{insts.ClassMulDiv, insts.ClassAddSub}

// BroadcastResult describes what happened on the completion bus in one
// cycle.
type BroadcastResult struct {
	// Broadcast is false if no station was eligible.
	Broadcast bool

	// Station is the station that won the bus.
	Station StationID

	// Op is the operation the winner executed.
	Op insts.Op

	// Value is the broadcast result.
	Value int64

	// Register is the architectural register written, valid only when
	// WroteRegister is set.
	Register      uint8
	WroteRegister bool

	// Captured lists the stations that resolved an operand from the bus.
	Captured []StationID

	// Deferred lists eligible stations that lost arbitration.
	Deferred []StationID
}

// Eligible returns true if station st has finished executing by cycle.
func Eligible(st *ReservationStation, cycle uint64, table *latency.Table) bool {
	if !st.Busy {
		return false
	}
	dispatchCycle, ok := st.Dispatched()
	if !ok {
		return false
	}
	return cycle >= table.ReadyAt(st.Op, dispatchCycle)
}

// Broadcast lets at most one finished station complete. The Mul/Div
// stations are scanned first; any eligible Mul/Div station blocks every
// Add/Sub station for the cycle. Within a class the lowest index wins.
//
// The winner's result is written to the register file only if the RAT
// still maps a register to the winner. Every busy station waiting on the
// winner captures the value, then the winner is freed.
//
// On an arithmetic fault the state is left untouched.
func Broadcast(s *State, cycle uint64, table *latency.Table) (BroadcastResult, error) {
	var res BroadcastResult

	for _, class := range arbitrationOrder {
		lo, hi := Partition(class)
		for id := lo; id < hi; id++ {
			if !Eligible(s.Stations.Station(id), cycle, table) {
				continue
			}
			if res.Broadcast {
				res.Deferred = append(res.Deferred, id)
				continue
			}
			res.Broadcast = true
			res.Station = id
		}
	}

	if !res.Broadcast {
		return res, nil
	}

	winner := s.Stations.Station(res.Station)
	left, _ := winner.Left.Value()
	right, _ := winner.Right.Value()

	value, err := emu.Execute(winner.Op, left, right)
	if err != nil {
		return BroadcastResult{}, &ArithmeticFault{
			Cycle:   cycle,
			Station: res.Station,
			Op:      winner.Op,
			Left:    left,
			Right:   right,
			Err:     err,
		}
	}

	res.Op = winner.Op
	res.Value = value

	if reg, ok := s.RAT.ReleaseOwner(res.Station); ok {
		s.Regs.WriteReg(reg, value)
		res.Register = reg
		res.WroteRegister = true
	}

	for i := range s.Stations {
		st := &s.Stations[i]
		if !st.Busy || st.ID == res.Station {
			continue
		}
		if st.capture(res.Station, value) {
			res.Captured = append(res.Captured, st.ID)
		}
	}

	winner.Reset()

	return res, nil
}
