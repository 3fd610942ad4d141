package tomasulo

import "github.com/sarchlab/tomasim/insts"

// StationSnapshot is a read-only copy of a reservation station.
type StationSnapshot struct {
	ID            StationID
	Class         insts.Class
	Busy          bool
	Op            insts.Op
	Left          OperandRef
	Right         OperandRef
	Dispatched    bool
	DispatchCycle uint64
}

// OpName returns the operation mnemonic, or "--" for a free station.
func (s StationSnapshot) OpName() string {
	if !s.Busy {
		return "--"
	}
	return s.Op.String()
}

// RegisterSnapshot is a read-only copy of one register and its RAT entry.
type RegisterSnapshot struct {
	Index   uint8
	Value   int64
	Pending bool
	Station StationID
}

// Snapshot is the machine state exposed to reporting.
type Snapshot struct {
	// Cycle is the number of cycles simulated.
	Cycle     uint64
	Stations  []StationSnapshot
	Registers []RegisterSnapshot
	// Queue holds the instructions not yet issued, oldest first.
	Queue []insts.Instruction
	Stats Statistics
	// Fault is the error that terminated the run, if any.
	Fault error
}

// TakeSnapshot copies s.
func TakeSnapshot(s *State) Snapshot {
	snap := Snapshot{
		Stations:  make([]StationSnapshot, 0, NumStations),
		Registers: make([]RegisterSnapshot, 0, insts.NumRegisters),
		Queue:     s.Queue.Entries(),
	}

	for i := range s.Stations {
		st := &s.Stations[i]
		cycle, dispatched := st.Dispatched()
		snap.Stations = append(snap.Stations, StationSnapshot{
			ID:            st.ID,
			Class:         ClassOf(st.ID),
			Busy:          st.Busy,
			Op:            st.Op,
			Left:          st.Left,
			Right:         st.Right,
			Dispatched:    dispatched,
			DispatchCycle: cycle,
		})
	}

	for reg := range s.RAT {
		id, pending := s.RAT[reg].Station()
		snap.Registers = append(snap.Registers, RegisterSnapshot{
			Index:   uint8(reg),
			Value:   s.Regs.R[reg],
			Pending: pending,
			Station: id,
		})
	}

	return snap
}
