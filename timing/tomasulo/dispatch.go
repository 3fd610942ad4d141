package tomasulo

// Dispatch starts execution on at most one station per functional-unit
// class. In each class the lowest-index busy station that is not excluded,
// not yet dispatched and has both operands ready is marked dispatched at
// cycle. The dispatched stations are returned, Add/Sub first.
func Dispatch(s *State, cycle uint64, excluded ExclusionSet) []StationID {
	var dispatched []StationID

	for _, class := range stationClasses {
		lo, hi := Partition(class)
		for id := lo; id < hi; id++ {
			if excluded.Contains(id) {
				continue
			}

			st := s.Stations.Station(id)
			if !st.Busy || !st.OperandsReady() {
				continue
			}
			if _, done := st.Dispatched(); done {
				continue
			}

			st.MarkDispatched(cycle)
			dispatched = append(dispatched, id)
			break
		}
	}

	return dispatched
}
