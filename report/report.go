// Package report renders simulation results: the final machine state as
// text tables or JSON, and the per-cycle trace.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/tomasim/timing/tomasulo"
)

const none = "--"

// WriteText renders the station table, the register file with its RAT
// entries and the remaining instruction queue.
func WriteText(w io.Writer, snap tomasulo.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, "RS\tBusy\tOp\tVj\tVk\tQj\tQk\tDisp\t")
	for _, st := range snap.Stations {
		vj, qj := operandColumns(st.Left, st.Busy)
		vk, qk := operandColumns(st.Right, st.Busy)
		_, _ = fmt.Fprintf(tw, "%v\t%d\t%s\t%s\t%s\t%s\t%s\t%d\t\n",
			st.ID, boolInt(st.Busy), st.OpName(), vj, vk, qj, qk, boolInt(st.Dispatched))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write station table: %w", err)
	}

	_, _ = fmt.Fprintln(w, "-------------------------------------------")
	_, _ = fmt.Fprintln(tw, "\tRF\tRAT\t")
	for _, reg := range snap.Registers {
		rat := none
		if reg.Pending {
			rat = reg.Station.String()
		}
		_, _ = fmt.Fprintf(tw, "%d:\t%d\t%s\t\n", reg.Index, reg.Value, rat)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write register table: %w", err)
	}

	_, _ = fmt.Fprintln(w, "-------------------------------------------")
	_, _ = fmt.Fprintln(w, "Instruction Queue")
	for _, inst := range snap.Queue {
		_, _ = fmt.Fprintln(w, inst)
	}

	if snap.Fault != nil {
		_, _ = fmt.Fprintf(w, "Fault: %v\n", snap.Fault)
	}

	return nil
}

// WriteStats renders the scheduler statistics.
func WriteStats(w io.Writer, stats tomasulo.Statistics) error {
	_, err := fmt.Fprintf(w,
		"Cycles: %d\nIssued: %d\nIssue stalls: %d\nDispatched: %d\nBroadcasts: %d\nBus conflicts: %d\nCaptures: %d\nIPC: %.3f\n",
		stats.Cycles, stats.Issued, stats.IssueStalls, stats.Dispatched,
		stats.Broadcasts, stats.BusConflicts, stats.Captures, stats.IPC())
	return err
}

func operandColumns(op tomasulo.OperandRef, busy bool) (value, tag string) {
	if !busy {
		return none, none
	}
	if id, pending := op.Tag(); pending {
		return none, id.String()
	}
	return op.String(), none
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type stationJSON struct {
	Name          string  `json:"name"`
	Class         string  `json:"class"`
	Busy          bool    `json:"busy"`
	Op            string  `json:"op,omitempty"`
	Vj            *int64  `json:"vj,omitempty"`
	Vk            *int64  `json:"vk,omitempty"`
	Qj            string  `json:"qj,omitempty"`
	Qk            string  `json:"qk,omitempty"`
	Dispatched    bool    `json:"dispatched"`
	DispatchCycle *uint64 `json:"dispatch_cycle,omitempty"`
}

type registerJSON struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
	RAT   string `json:"rat,omitempty"`
}

type statsJSON struct {
	Cycles       uint64  `json:"cycles"`
	Issued       uint64  `json:"issued"`
	IssueStalls  uint64  `json:"issue_stalls"`
	Dispatched   uint64  `json:"dispatched"`
	Broadcasts   uint64  `json:"broadcasts"`
	BusConflicts uint64  `json:"bus_conflicts"`
	Captures     uint64  `json:"captures"`
	IPC          float64 `json:"ipc"`
}

type snapshotJSON struct {
	Cycle     uint64         `json:"cycle"`
	Stations  []stationJSON  `json:"stations"`
	Registers []registerJSON `json:"registers"`
	Queue     []string       `json:"queue"`
	Stats     statsJSON      `json:"stats"`
	Fault     string         `json:"fault,omitempty"`
}

func operandJSON(op tomasulo.OperandRef, busy bool) (*int64, string) {
	if !busy {
		return nil, ""
	}
	if id, pending := op.Tag(); pending {
		return nil, id.String()
	}
	v, _ := op.Value()
	return &v, ""
}

// WriteJSON renders the snapshot as indented JSON.
func WriteJSON(w io.Writer, snap tomasulo.Snapshot) error {
	out := snapshotJSON{
		Cycle:     snap.Cycle,
		Stations:  make([]stationJSON, 0, len(snap.Stations)),
		Registers: make([]registerJSON, 0, len(snap.Registers)),
		Queue:     make([]string, 0, len(snap.Queue)),
		Stats: statsJSON{
			Cycles:       snap.Stats.Cycles,
			Issued:       snap.Stats.Issued,
			IssueStalls:  snap.Stats.IssueStalls,
			Dispatched:   snap.Stats.Dispatched,
			Broadcasts:   snap.Stats.Broadcasts,
			BusConflicts: snap.Stats.BusConflicts,
			Captures:     snap.Stats.Captures,
			IPC:          snap.Stats.IPC(),
		},
	}

	for _, st := range snap.Stations {
		js := stationJSON{
			Name:       st.ID.String(),
			Class:      st.Class.String(),
			Busy:       st.Busy,
			Dispatched: st.Dispatched,
		}
		if st.Busy {
			js.Op = st.Op.String()
		}
		js.Vj, js.Qj = operandJSON(st.Left, st.Busy)
		js.Vk, js.Qk = operandJSON(st.Right, st.Busy)
		if st.Dispatched {
			cycle := st.DispatchCycle
			js.DispatchCycle = &cycle
		}
		out.Stations = append(out.Stations, js)
	}

	for _, reg := range snap.Registers {
		js := registerJSON{
			Name:  fmt.Sprintf("R%d", reg.Index),
			Value: reg.Value,
		}
		if reg.Pending {
			js.RAT = reg.Station.String()
		}
		out.Registers = append(out.Registers, js)
	}

	for _, inst := range snap.Queue {
		out.Queue = append(out.Queue, inst.String())
	}

	if snap.Fault != nil {
		out.Fault = snap.Fault.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}
