package tomasulo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/tomasim/insts"
)

// DefaultQueueLimit is the default soft limit of the instruction queue.
const DefaultQueueLimit = 10

// QueuePolicy selects what happens to instructions pushed past the soft
// limit of the instruction queue.
type QueuePolicy uint8

const (
	// QueueWarnOnly accepts the instruction and reports a warning.
	QueueWarnOnly QueuePolicy = iota
	// QueueEnforce rejects the instruction and reports a warning.
	QueueEnforce
)

// String returns the policy name used on the command line.
func (p QueuePolicy) String() string {
	switch p {
	case QueueWarnOnly:
		return "warn"
	case QueueEnforce:
		return "enforce"
	default:
		return fmt.Sprintf("QueuePolicy(%d)", uint8(p))
	}
}

// ParseQueuePolicy parses "warn" or "enforce".
func ParseQueuePolicy(s string) (QueuePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warn", "warn-only":
		return QueueWarnOnly, nil
	case "enforce":
		return QueueEnforce, nil
	default:
		return 0, fmt.Errorf("unknown queue policy %q (want warn or enforce)", s)
	}
}

// ErrQueueOverflow is the sentinel wrapped by QueueOverflowError.
var ErrQueueOverflow = errors.New("instruction queue overloaded")

// QueueOverflowError reports an instruction pushed past the soft limit.
type QueueOverflowError struct {
	// Index is the program-order position of the instruction.
	Index int
	// Inst is the offending instruction.
	Inst insts.Instruction
	// Limit is the configured soft limit.
	Limit int
	// Policy tells whether the instruction was kept.
	Policy QueuePolicy
}

// Accepted returns true if the instruction was still enqueued.
func (e *QueueOverflowError) Accepted() bool {
	return e.Policy == QueueWarnOnly
}

func (e *QueueOverflowError) Error() string {
	action := "accepted"
	if !e.Accepted() {
		action = "dropped"
	}
	return fmt.Sprintf("%v (limit %d): %s instruction %d: %s",
		ErrQueueOverflow, e.Limit, action, e.Index, e.Inst)
}

func (e *QueueOverflowError) Unwrap() error {
	return ErrQueueOverflow
}

// InstructionQueue is the FIFO of instructions waiting to issue.
type InstructionQueue struct {
	entries []insts.Instruction
	limit   int
	policy  QueuePolicy
	pushed  int
}

// NewInstructionQueue creates an empty queue. A limit of 0 disables the
// soft limit.
func NewInstructionQueue(limit int, policy QueuePolicy) InstructionQueue {
	return InstructionQueue{limit: limit, policy: policy}
}

// Push appends inst. Once the queue holds limit entries, every further push
// returns a *QueueOverflowError; the instruction is appended anyway under
// QueueWarnOnly and discarded under QueueEnforce.
func (q *InstructionQueue) Push(inst insts.Instruction) error {
	index := q.pushed
	q.pushed++

	if q.limit <= 0 || len(q.entries) < q.limit {
		q.entries = append(q.entries, inst)
		return nil
	}

	err := &QueueOverflowError{
		Index:  index,
		Inst:   inst,
		Limit:  q.limit,
		Policy: q.policy,
	}
	if err.Accepted() {
		q.entries = append(q.entries, inst)
	}
	return err
}

// Head returns the oldest instruction without removing it.
func (q *InstructionQueue) Head() (insts.Instruction, bool) {
	if len(q.entries) == 0 {
		return insts.Instruction{}, false
	}
	return q.entries[0], true
}

// Pop removes and returns the oldest instruction.
func (q *InstructionQueue) Pop() (insts.Instruction, bool) {
	inst, ok := q.Head()
	if ok {
		q.entries = q.entries[1:]
	}
	return inst, ok
}

// Len returns the number of queued instructions.
func (q *InstructionQueue) Len() int {
	return len(q.entries)
}

// Entries returns a copy of the queued instructions, oldest first.
func (q *InstructionQueue) Entries() []insts.Instruction {
	return append([]insts.Instruction(nil), q.entries...)
}

// Limit returns the soft limit.
func (q *InstructionQueue) Limit() int {
	return q.limit
}

// Policy returns the overflow policy.
func (q *InstructionQueue) Policy() QueuePolicy {
	return q.policy
}
