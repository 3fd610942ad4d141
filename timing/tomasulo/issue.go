package tomasulo

// Issue moves the instruction at the head of the queue into the
// lowest-index free station of its class. It returns false without side
// effects when the queue is empty or no station is free; later
// instructions are never considered.
//
// Source registers are read before the destination is renamed, so an
// instruction that reads and writes the same register sees the previous
// producer.
func Issue(s *State) (StationID, bool) {
	inst, ok := s.Queue.Head()
	if !ok {
		return 0, false
	}

	id, ok := s.Stations.FreeStation(inst.Op.Class())
	if !ok {
		return 0, false
	}

	st := s.Stations.Station(id)
	st.Busy = true
	st.Op = inst.Op
	st.Left = s.readOperand(inst.Rs1)
	st.Right = s.readOperand(inst.Rs2)

	s.RAT.Rename(inst.Rd, id)
	s.Queue.Pop()

	return id, true
}
