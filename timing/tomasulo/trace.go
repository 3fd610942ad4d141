package tomasulo

import (
	"fmt"

	"github.com/sarchlab/tomasim/insts"
)

// EventKind identifies a scheduling event.
type EventKind uint8

// Scheduling events, in the order they can occur within a cycle.
const (
	EventCycleStart EventKind = iota
	EventIssue
	EventIssueStall
	EventBroadcast
	EventCapture
	EventDispatch
	EventCycleEnd
)

var eventKindNames = [...]string{
	EventCycleStart: "cycle-start",
	EventIssue:      "issue",
	EventIssueStall: "issue-stall",
	EventBroadcast:  "broadcast",
	EventCapture:    "capture",
	EventDispatch:   "dispatch",
	EventCycleEnd:   "cycle-end",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is one step of the scheduler.
//
//   - Issue and IssueStall carry Inst; Issue also carries Station.
//   - Broadcast carries Station, Value and, if WroteRegister, Register.
//   - Capture carries the capturing Station, the Producer and the Value.
//   - Dispatch carries Station.
type Event struct {
	Kind          EventKind
	Cycle         uint64
	Station       StationID
	Producer      StationID
	Inst          insts.Instruction
	Value         int64
	Register      uint8
	WroteRegister bool
}

// Tracer observes scheduling events.
type Tracer interface {
	Trace(ev Event)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(ev Event)

// Trace calls f(ev).
func (f TracerFunc) Trace(ev Event) {
	f(ev)
}

type nopTracer struct{}

func (nopTracer) Trace(Event) {}
