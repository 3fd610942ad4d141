package report

import (
	"fmt"
	"io"

	"github.com/sarchlab/tomasim/timing/tomasulo"
)

const cycleSeparator = "======================================================="

// TraceWriter prints scheduling events as they happen. Cycles are numbered
// from 1.
type TraceWriter struct {
	w io.Writer

	// Detailed adds issue stalls and operand captures to the trace.
	Detailed bool

	err error
}

// NewTraceWriter creates a TraceWriter writing to w.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: w}
}

// Trace implements tomasulo.Tracer.
func (t *TraceWriter) Trace(ev tomasulo.Event) {
	switch ev.Kind {
	case tomasulo.EventCycleStart:
		t.printf("Cycle : %d\n", ev.Cycle+1)
	case tomasulo.EventIssue:
		t.printf("Instruction %v issued to %v\n", ev.Inst, ev.Station)
	case tomasulo.EventIssueStall:
		if t.Detailed {
			t.printf("Issue stalled: no free %v station for %v\n", ev.Inst.Op.Class(), ev.Inst)
		}
	case tomasulo.EventBroadcast:
		t.printf("%v broadcasting its result = %d\n", ev.Station, ev.Value)
	case tomasulo.EventCapture:
		if t.Detailed {
			t.printf("%v captured %d from %v\n", ev.Station, ev.Value, ev.Producer)
		}
	case tomasulo.EventDispatch:
		t.printf("Dispatched %v\n", ev.Station)
	case tomasulo.EventCycleEnd:
		t.printf("%s\n", cycleSeparator)
	}
}

// Err returns the first write error.
func (t *TraceWriter) Err() error {
	return t.err
}

func (t *TraceWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	if _, err := fmt.Fprintf(t.w, format, args...); err != nil {
		t.err = fmt.Errorf("failed to write trace: %w", err)
	}
}
