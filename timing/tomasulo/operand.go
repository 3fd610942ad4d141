package tomasulo

import "strconv"

// OperandRef is a source operand held by a reservation station. It is
// either a resolved value or a pending reference to the station that will
// produce the value. Exactly one variant is active.
type OperandRef struct {
	value   int64
	tag     StationID
	pending bool
}

// Ready returns a resolved operand.
func Ready(value int64) OperandRef {
	return OperandRef{value: value}
}

// Pending returns an operand waiting on station id's broadcast.
func Pending(id StationID) OperandRef {
	return OperandRef{tag: id, pending: true}
}

// IsReady returns true if the operand holds a value.
func (o OperandRef) IsReady() bool {
	return !o.pending
}

// Value returns the resolved value. ok is false while pending.
func (o OperandRef) Value() (value int64, ok bool) {
	if o.pending {
		return 0, false
	}
	return o.value, true
}

// Tag returns the producing station. ok is false once resolved.
func (o OperandRef) Tag() (id StationID, ok bool) {
	if !o.pending {
		return 0, false
	}
	return o.tag, true
}

// WaitsOn returns true if the operand is pending on station id.
func (o OperandRef) WaitsOn(id StationID) bool {
	return o.pending && o.tag == id
}

// String renders the value, or the producing station as "RS<n>".
func (o OperandRef) String() string {
	if o.pending {
		return o.tag.String()
	}
	return strconv.FormatInt(o.value, 10)
}
