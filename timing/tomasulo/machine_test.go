package tomasulo_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

type recorder struct {
	events []tomasulo.Event
}

func (r *recorder) Trace(ev tomasulo.Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) ofKind(kind tomasulo.EventKind) []tomasulo.Event {
	var out []tomasulo.Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

var _ = Describe("Machine", func() {
	var (
		regs emu.RegFile
		rec  *recorder
	)

	newMachine := func(program []insts.Instruction, opts ...tomasulo.MachineOption) *tomasulo.Machine {
		opts = append(opts, tomasulo.WithTracer(rec))
		m := tomasulo.NewMachine(regs, opts...)
		_, err := m.Load(program)
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	BeforeEach(func() {
		regs = emu.NewRegFile(0, 0, 5, 3, 0, 0, 0, 0)
		rec = &recorder{}
	})

	Describe("single Add", func() {
		It("should issue, dispatch one cycle later and broadcast after the latency", func() {
			m := newMachine([]insts.Instruction{add(1, 2, 3)})

			Expect(m.RunCycles(3)).To(Succeed())
			Expect(m.State().Regs.ReadReg(1)).To(Equal(int64(0)))
			cycle, ok := m.State().Stations.Station(0).Dispatched()
			Expect(ok).To(BeTrue())
			Expect(cycle).To(Equal(uint64(1)))

			Expect(m.Tick()).To(Succeed())
			Expect(m.State().Regs.ReadReg(1)).To(Equal(int64(8)))
			_, pending := m.State().RAT.Lookup(1)
			Expect(pending).To(BeFalse())
			Expect(m.State().Stations.Station(0).Busy).To(BeFalse())

			broadcasts := rec.ofKind(tomasulo.EventBroadcast)
			Expect(broadcasts).To(HaveLen(1))
			Expect(broadcasts[0].Cycle).To(Equal(uint64(3)))
			Expect(broadcasts[0].Value).To(Equal(int64(8)))
			Expect(broadcasts[0].Register).To(Equal(uint8(1)))
		})
	})

	Describe("chained Mul", func() {
		It("should not dispatch the consumer before it captures", func() {
			m := newMachine([]insts.Instruction{add(1, 2, 3), mul(4, 1, 1)})

			Expect(m.RunCycles(4)).To(Succeed())

			consumer := m.State().Stations.Station(3)
			Expect(consumer.Left).To(Equal(tomasulo.Ready(8)))
			Expect(consumer.Right).To(Equal(tomasulo.Ready(8)))
			_, dispatched := consumer.Dispatched()
			Expect(dispatched).To(BeFalse())

			captures := rec.ofKind(tomasulo.EventCapture)
			Expect(captures).To(HaveLen(1))
			Expect(captures[0].Cycle).To(Equal(uint64(3)))
			Expect(captures[0].Producer).To(Equal(tomasulo.StationID(0)))

			Expect(m.Tick()).To(Succeed())
			cycle, dispatched := consumer.Dispatched()
			Expect(dispatched).To(BeTrue())
			Expect(cycle).To(Equal(uint64(4)))

			Expect(m.RunCycles(9)).To(Succeed())
			Expect(m.State().Regs.ReadReg(4)).To(Equal(int64(0)))
			Expect(m.Tick()).To(Succeed())
			Expect(m.State().Regs.ReadReg(4)).To(Equal(int64(64)))
		})
	})

	Describe("division", func() {
		It("should truncate the quotient", func() {
			regs = emu.NewRegFile(0, 0, 7, 2)
			m := newMachine([]insts.Instruction{div(1, 2, 3)})

			Expect(m.RunCycles(41)).To(Succeed())
			Expect(m.State().Stations.Station(3).Busy).To(BeTrue())

			Expect(m.Tick()).To(Succeed())
			Expect(m.State().Regs.ReadReg(1)).To(Equal(int64(3)))
		})

		It("should terminate the run on division by zero", func() {
			regs = emu.NewRegFile(0, 0, 7, 0)
			m := newMachine([]insts.Instruction{div(1, 2, 3)})

			err := m.RunCycles(100)

			Expect(err).To(MatchError(emu.ErrDivideByZero))
			var cycleFault *tomasulo.CycleFault
			Expect(errors.As(err, &cycleFault)).To(BeTrue())
			Expect(cycleFault.Cycle).To(Equal(uint64(41)))
			Expect(cycleFault.Error()).To(ContainSubstring("cycle 42"))

			var fault *tomasulo.ArithmeticFault
			Expect(errors.As(err, &fault)).To(BeTrue())
			Expect(fault.Station).To(Equal(tomasulo.StationID(3)))

			Expect(m.Faulted()).To(BeTrue())
			Expect(m.Cycle()).To(Equal(uint64(41)))
			Expect(m.Tick()).To(MatchError(err))
			Expect(m.Snapshot().Fault).To(MatchError(err))
		})
	})

	Describe("renaming", func() {
		It("should not let a stale producer overwrite a renamed register", func() {
			m := newMachine([]insts.Instruction{
				mul(1, 2, 3),
				add(4, 1, 1),
				add(1, 2, 3),
			})

			Expect(m.RunCycles(15)).To(Succeed())

			Expect(m.State().Regs.ReadReg(1)).To(Equal(int64(8)))
			Expect(m.State().Regs.ReadReg(4)).To(Equal(int64(30)))
			Expect(m.State().RAT.PendingCount()).To(Equal(0))
			Expect(m.State().Stations.BusyCount()).To(Equal(0))

			mulBroadcast := rec.ofKind(tomasulo.EventBroadcast)[1]
			Expect(mulBroadcast.Station).To(Equal(tomasulo.StationID(3)))
			Expect(mulBroadcast.Value).To(Equal(int64(15)))
			Expect(mulBroadcast.WroteRegister).To(BeFalse())
		})
	})

	Describe("in-order issue", func() {
		It("should hold younger instructions behind a stalled head", func() {
			m := newMachine([]insts.Instruction{
				div(1, 2, 3),
				div(4, 2, 3),
				div(5, 2, 3),
				add(6, 2, 3),
			})

			Expect(m.RunCycles(3)).To(Succeed())

			Expect(m.State().Queue.Len()).To(Equal(2))
			Expect(m.State().Stations.Station(0).Busy).To(BeFalse())
			Expect(m.Stats().IssueStalls).To(Equal(uint64(1)))

			Expect(m.RunCycles(60)).To(Succeed())
			issues := rec.ofKind(tomasulo.EventIssue)
			Expect(issues).To(HaveLen(4))
			for i, ev := range issues {
				Expect(ev.Inst).To(Equal([]insts.Instruction{
					div(1, 2, 3), div(4, 2, 3), div(5, 2, 3), add(6, 2, 3),
				}[i]))
			}
		})
	})

	Describe("invariants over a mixed program", func() {
		var m *tomasulo.Machine

		BeforeEach(func() {
			regs = emu.NewRegFile(1, 2, 3, 4, 5, 6, 7, 8)
			m = newMachine([]insts.Instruction{
				add(0, 1, 2),
				mul(3, 0, 4),
				sub(5, 3, 1),
				div(6, 7, 1),
				add(0, 0, 0),
				mul(2, 5, 6),
				add(7, 2, 3),
				sub(1, 1, 1),
				add(4, 4, 4),
				mul(5, 4, 0),
			})
			Expect(m.RunCycles(300)).To(Succeed())
		})

		byCycle := func(kind tomasulo.EventKind) map[uint64][]tomasulo.Event {
			out := map[uint64][]tomasulo.Event{}
			for _, ev := range rec.ofKind(kind) {
				out[ev.Cycle] = append(out[ev.Cycle], ev)
			}
			return out
		}

		It("should complete every instruction", func() {
			Expect(m.Stats().Issued).To(Equal(uint64(10)))
			Expect(m.Stats().Broadcasts).To(Equal(uint64(10)))
			Expect(m.State().Stations.BusyCount()).To(Equal(0))
			Expect(m.State().RAT.PendingCount()).To(Equal(0))
		})

		It("should produce the sequential result", func() {
			r := m.State().Regs.R
			Expect(r).To(Equal([8]int64{10, 0, 92, 25, 10, 100, 4, 117}))
		})

		It("should broadcast at most once per cycle", func() {
			for _, evs := range byCycle(tomasulo.EventBroadcast) {
				Expect(evs).To(HaveLen(1))
			}
		})

		It("should never dispatch a station issued or capturing in the same cycle", func() {
			issues := byCycle(tomasulo.EventIssue)
			captures := byCycle(tomasulo.EventCapture)
			for cycle, evs := range byCycle(tomasulo.EventDispatch) {
				for _, d := range evs {
					for _, i := range issues[cycle] {
						Expect(d.Station).NotTo(Equal(i.Station))
					}
					for _, c := range captures[cycle] {
						Expect(d.Station).NotTo(Equal(c.Station))
					}
				}
			}
		})

		It("should respect operation latencies", func() {
			table := latency.NewTable()
			ops := map[tomasulo.StationID]insts.Op{}
			dispatchedAt := map[tomasulo.StationID]uint64{}

			for _, ev := range rec.events {
				switch ev.Kind {
				case tomasulo.EventIssue:
					ops[ev.Station] = ev.Inst.Op
				case tomasulo.EventDispatch:
					dispatchedAt[ev.Station] = ev.Cycle
				case tomasulo.EventBroadcast:
					ready := table.ReadyAt(ops[ev.Station], dispatchedAt[ev.Station])
					Expect(ev.Cycle).To(BeNumerically(">=", ready))
				}
			}
		})

		It("should dispatch at most one station per class per cycle", func() {
			for _, evs := range byCycle(tomasulo.EventDispatch) {
				Expect(len(evs)).To(BeNumerically("<=", 2))
				if len(evs) == 2 {
					Expect(tomasulo.ClassOf(evs[0].Station)).NotTo(Equal(tomasulo.ClassOf(evs[1].Station)))
				}
			}
		})

		It("should keep running idle cycles to the requested count", func() {
			Expect(m.Cycle()).To(Equal(uint64(300)))
			Expect(m.Stats().Cycles).To(Equal(uint64(300)))
			Expect(rec.ofKind(tomasulo.EventCycleEnd)).To(HaveLen(300))
		})
	})

	Describe("zero cycles", func() {
		It("should leave the loaded state untouched", func() {
			program := []insts.Instruction{add(1, 2, 3), mul(4, 1, 1), div(5, 4, 2)}
			m := newMachine(program)

			Expect(m.RunCycles(0)).To(Succeed())

			snap := m.Snapshot()
			Expect(snap.Cycle).To(Equal(uint64(0)))
			Expect(snap.Queue).To(Equal(program))
			for _, st := range snap.Stations {
				Expect(st.Busy).To(BeFalse())
				Expect(st.OpName()).To(Equal("--"))
			}
			for _, reg := range snap.Registers {
				Expect(reg.Pending).To(BeFalse())
				Expect(reg.Value).To(Equal(regs.R[reg.Index]))
			}
			Expect(rec.events).To(BeEmpty())
		})
	})

	Describe("queue soft limit", func() {
		program := func(n int) []insts.Instruction {
			out := make([]insts.Instruction, n)
			for i := range out {
				out[i] = add(uint8(i%8), 2, 3)
			}
			return out
		}

		It("should warn but keep every instruction by default", func() {
			m := tomasulo.NewMachine(regs)
			warnings, err := m.Load(program(12))

			Expect(err).NotTo(HaveOccurred())
			Expect(warnings).To(HaveLen(2))
			Expect(warnings[0].Index).To(Equal(10))
			Expect(m.Warnings()).To(HaveLen(2))
			Expect(m.State().Queue.Len()).To(Equal(12))

			Expect(m.RunCycles(100)).To(Succeed())
			Expect(m.Stats().Issued).To(Equal(uint64(12)))
			Expect(m.Stats().Broadcasts).To(Equal(uint64(12)))
		})

		It("should drop instructions past the limit when enforced", func() {
			m := tomasulo.NewMachine(regs,
				tomasulo.WithQueueLimit(4),
				tomasulo.WithQueuePolicy(tomasulo.QueueEnforce))
			warnings, err := m.Load(program(6))

			Expect(err).NotTo(HaveOccurred())
			Expect(warnings).To(HaveLen(2))
			Expect(warnings[1].Accepted()).To(BeFalse())
			Expect(m.State().Queue.Len()).To(Equal(4))
		})
	})

	Describe("Load", func() {
		It("should reject invalid instructions", func() {
			m := tomasulo.NewMachine(regs)
			_, err := m.Load([]insts.Instruction{add(1, 2, 3), add(9, 2, 3)})

			Expect(err).To(MatchError(insts.ErrInvalidInstruction))
			Expect(err.Error()).To(ContainSubstring("instruction 1"))
		})

		It("should leave the queue untouched when any instruction is invalid", func() {
			var logs bytes.Buffer
			m := tomasulo.NewMachine(regs,
				tomasulo.WithQueueLimit(1),
				tomasulo.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

			warnings, err := m.Load([]insts.Instruction{add(1, 2, 3), add(4, 2, 3), mul(1, 8, 3)})

			Expect(err).To(MatchError(insts.ErrInvalidInstruction))
			Expect(err.Error()).To(ContainSubstring("instruction 2"))
			Expect(warnings).To(BeEmpty())
			Expect(m.Warnings()).To(BeEmpty())
			Expect(m.State().Queue.Len()).To(BeZero())
			Expect(logs.String()).To(BeEmpty())
		})
	})

	Describe("debug logging", func() {
		It("should log only the attributes each event carries", func() {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
			m := newMachine([]insts.Instruction{mul(1, 2, 3), mul(4, 2, 3), mul(5, 2, 3)},
				tomasulo.WithLogger(logger))

			Expect(m.RunCycles(3)).To(Succeed())

			var issues, stalls []string
			for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
				switch {
				case strings.Contains(line, "msg=issue-stall"):
					stalls = append(stalls, line)
				case strings.Contains(line, "msg=issue"):
					issues = append(issues, line)
				}
			}

			Expect(issues).To(HaveLen(2))
			Expect(issues[0]).To(ContainSubstring("station=RS3"))
			Expect(issues[0]).To(ContainSubstring(`inst="Mul R1, R2, R3"`))

			Expect(stalls).To(HaveLen(1))
			Expect(stalls[0]).To(ContainSubstring("cycle=3"))
			Expect(stalls[0]).To(ContainSubstring(`inst="Mul R5, R2, R3"`))
			Expect(stalls[0]).NotTo(ContainSubstring("station="))
		})
	})

	Describe("custom latencies", func() {
		It("should time execution from the latency table", func() {
			config := latency.DefaultTimingConfig()
			config.AddLatency = 5
			m := newMachine([]insts.Instruction{add(1, 2, 3)},
				tomasulo.WithLatencyTable(latency.NewTableWithConfig(config)))

			Expect(m.RunCycles(6)).To(Succeed())
			Expect(m.State().Regs.ReadReg(1)).To(Equal(int64(0)))
			Expect(m.Tick()).To(Succeed())
			Expect(m.State().Regs.ReadReg(1)).To(Equal(int64(8)))
		})
	})

	Describe("statistics", func() {
		It("should count bus conflicts", func() {
			m := newMachine([]insts.Instruction{mul(1, 2, 3), add(4, 2, 3)},
				tomasulo.WithLatencyTable(latency.NewTableWithConfig(&latency.TimingConfig{
					AddLatency: 9, SubLatency: 9, MulLatency: 10, DivLatency: 10,
				})))

			Expect(m.RunCycles(20)).To(Succeed())

			stats := m.Stats()
			Expect(stats.BusConflicts).To(Equal(uint64(1)))
			Expect(stats.Broadcasts).To(Equal(uint64(2)))
			Expect(stats.IPC()).To(BeNumerically("~", 0.1))
		})

		It("should report zero IPC before any cycle", func() {
			Expect(tomasulo.Statistics{}.IPC()).To(BeZero())
		})
	})
})
