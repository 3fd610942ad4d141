package tomasulo

import "github.com/sarchlab/tomasim/insts"

// RATEntry maps one architectural register either to the register file
// (resolved) or to the station that will produce its next value.
type RATEntry struct {
	station StationID
	pending bool
}

// Station returns the producing station. ok is false when the register is
// resolved.
func (e RATEntry) Station() (id StationID, ok bool) {
	return e.station, e.pending
}

// RAT is the register alias table.
type RAT [insts.NumRegisters]RATEntry

// Lookup returns the station register reg is pending on.
func (r *RAT) Lookup(reg uint8) (StationID, bool) {
	return r[reg].Station()
}

// Rename points reg at station id.
func (r *RAT) Rename(reg uint8, id StationID) {
	r[reg] = RATEntry{station: id, pending: true}
}

// ReleaseOwner clears the entry still pointing at id, if any, and returns
// its register. Entries renamed to a later station are left untouched.
func (r *RAT) ReleaseOwner(id StationID) (uint8, bool) {
	for reg := range r {
		if r[reg].pending && r[reg].station == id {
			r[reg] = RATEntry{}
			return uint8(reg), true
		}
	}
	return 0, false
}

// PendingCount returns the number of renamed registers.
func (r *RAT) PendingCount() int {
	n := 0
	for _, e := range r {
		if e.pending {
			n++
		}
	}
	return n
}
