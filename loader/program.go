// Package loader reads simulation inputs: the instruction program, the
// cycle count and the initial register file.
//
// The input is a whitespace-separated text file:
//
//	N                 instruction count
//	T                 cycles to simulate
//	op rd rs1 rs2     N lines, op 0=Add 1=Sub 2=Mul 3=Div
//	v                 8 lines, initial values of R0..R7
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

// ErrMalformed is wrapped by every input validation error.
var ErrMalformed = errors.New("malformed input")

// ParseError reports a validation failure at a line of the input.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Unwrap returns the underlying errors, including ErrMalformed.
func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformed, e.Err}
	}
	return []error{ErrMalformed}
}

// Program is a validated simulation input.
type Program struct {
	// Instructions in program order.
	Instructions []insts.Instruction
	// Registers is the initial register file.
	Registers emu.RegFile
	// Cycles is the number of cycles to simulate.
	Cycles uint64
}

// Load reads and validates the input file at path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return prog, nil
}

type lineReader struct {
	scanner *bufio.Scanner
	line    int
}

// next returns the fields of the next line. Blank lines are only allowed
// after the last expected line, so they are reported here as missing data.
func (r *lineReader) next(what string) ([]string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		return nil, &ParseError{Line: r.line + 1, Msg: "missing " + what}
	}
	r.line++

	fields := strings.Fields(r.scanner.Text())
	if len(fields) == 0 {
		return nil, &ParseError{Line: r.line, Msg: "missing " + what}
	}
	return fields, nil
}

func (r *lineReader) ints(what string, want int) ([]int64, error) {
	fields, err := r.next(what)
	if err != nil {
		return nil, err
	}
	if len(fields) != want {
		return nil, &ParseError{
			Line: r.line,
			Msg:  fmt.Sprintf("%s: expected %d fields, got %d", what, want, len(fields)),
		}
	}

	values := make([]int64, want)
	for i, field := range fields {
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, &ParseError{Line: r.line, Msg: what, Err: err}
		}
		values[i] = v
	}
	return values, nil
}

func (r *lineReader) count(what string) (int64, error) {
	values, err := r.ints(what, 1)
	if err != nil {
		return 0, err
	}
	if values[0] < 0 {
		return 0, &ParseError{Line: r.line, Msg: fmt.Sprintf("%s must not be negative, got %d", what, values[0])}
	}
	return values[0], nil
}

// maxPreallocated bounds the instruction slice allocated up front; the
// instruction count is untrusted until its lines have been read.
const maxPreallocated = 1024

// Parse reads and validates a program from r.
func Parse(r io.Reader) (*Program, error) {
	lr := &lineReader{scanner: bufio.NewScanner(r)}

	n, err := lr.count("instruction count")
	if err != nil {
		return nil, err
	}

	cycles, err := lr.count("cycle count")
	if err != nil {
		return nil, err
	}

	prog := &Program{
		Instructions: make([]insts.Instruction, 0, min(n, maxPreallocated)),
		Cycles:       uint64(cycles),
	}

	decoder := insts.NewDecoder()
	for i := int64(0); i < n; i++ {
		fields, err := lr.ints(fmt.Sprintf("instruction %d", i), 4)
		if err != nil {
			return nil, err
		}

		inst, err := decoder.Decode(insts.Record(fields))
		if err != nil {
			return nil, &ParseError{Line: lr.line, Msg: fmt.Sprintf("instruction %d", i), Err: err}
		}
		prog.Instructions = append(prog.Instructions, *inst)
	}

	for reg := 0; reg < insts.NumRegisters; reg++ {
		values, err := lr.ints(fmt.Sprintf("value of R%d", reg), 1)
		if err != nil {
			return nil, err
		}
		prog.Registers.R[reg] = values[0]
	}

	for lr.scanner.Scan() {
		lr.line++
		if strings.TrimSpace(lr.scanner.Text()) != "" {
			return nil, &ParseError{Line: lr.line, Msg: "unexpected trailing content"}
		}
	}
	if err := lr.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	return prog, nil
}

// Write renders p in the input format accepted by Parse.
func Write(w io.Writer, p *Program) error {
	bw := bufio.NewWriter(w)

	_, _ = fmt.Fprintf(bw, "%d\n%d\n", len(p.Instructions), p.Cycles)
	for _, inst := range p.Instructions {
		_, _ = fmt.Fprintf(bw, "%d %d %d %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
	}
	for _, v := range p.Registers.R {
		_, _ = fmt.Fprintf(bw, "%d\n", v)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write program: %w", err)
	}
	return nil
}
