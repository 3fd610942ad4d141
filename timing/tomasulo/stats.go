package tomasulo

// Statistics holds scheduler performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Issued is the number of instructions moved into stations.
	Issued uint64
	// IssueStalls counts cycles the queue head found no free station.
	IssueStalls uint64
	// Dispatched is the number of stations that began execution.
	Dispatched uint64
	// Broadcasts is the number of results put on the completion bus.
	Broadcasts uint64
	// BusConflicts counts eligible stations that lost bus arbitration,
	// summed over cycles.
	BusConflicts uint64
	// Captures counts stations that resolved an operand from the bus.
	Captures uint64
}

// IPC returns completed instructions per cycle.
func (s Statistics) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Broadcasts) / float64(s.Cycles)
}
