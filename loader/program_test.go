package loader_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/loader"
)

const sampleInput = `2
10
0 1 2 3
2 4 1 1
0
0
5
3
0
0
-7
0
`

var _ = Describe("Program Loader", func() {
	parse := func(s string) (*loader.Program, error) {
		return loader.Parse(strings.NewReader(s))
	}

	Describe("Parse", func() {
		It("should parse a valid program", func() {
			prog, err := parse(sampleInput)

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Cycles).To(Equal(uint64(10)))
			Expect(prog.Instructions).To(Equal([]insts.Instruction{
				{Op: insts.OpAdd, Rd: 1, Rs1: 2, Rs2: 3},
				{Op: insts.OpMul, Rd: 4, Rs1: 1, Rs2: 1},
			}))
			Expect(prog.Registers).To(Equal(emu.NewRegFile(0, 0, 5, 3, 0, 0, -7, 0)))
		})

		It("should accept zero instructions and zero cycles", func() {
			prog, err := parse("0\n0\n1\n2\n3\n4\n5\n6\n7\n8\n")

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Instructions).To(BeEmpty())
			Expect(prog.Cycles).To(BeZero())
			Expect(prog.Registers.R[7]).To(Equal(int64(8)))
		})

		It("should tolerate extra whitespace and trailing blank lines", func() {
			in := "1\n 3 \n3   0  1   2\n" + strings.Repeat("1\n", 8) + "\n\n"
			prog, err := parse(in)

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Instructions[0].Op).To(Equal(insts.OpDiv))
		})

		It("should accept Windows line endings", func() {
			in := strings.ReplaceAll(sampleInput, "\n", "\r\n")
			_, err := parse(in)
			Expect(err).NotTo(HaveOccurred())
		})

		DescribeTable("should reject malformed input",
			func(in string, msg string) {
				_, err := parse(in)

				Expect(err).To(MatchError(loader.ErrMalformed))
				Expect(err.Error()).To(ContainSubstring(msg))
			},
			Entry("empty input", "", "line 1: missing instruction count"),
			Entry("negative instruction count", "-1\n5\n", "must not be negative"),
			Entry("negative cycle count", "0\n-5\n", "cycle count must not be negative"),
			Entry("non-numeric count", "abc\n", "instruction count"),
			Entry("too few instruction fields", "1\n1\n0 1 2\n", "expected 4 fields, got 3"),
			Entry("unknown opcode", "1\n1\n7 1 2 3\n", "unknown opcode 7"),
			Entry("register out of range", "1\n1\n0 8 2 3\n", "out of range"),
			Entry("missing instructions", "2\n1\n0 1 2 3\n", "line 4: missing instruction 1"),
			Entry("oversized instruction count", "9223372036854775807\n1\n0 1 2 3\n", "line 4: missing instruction 1"),
			Entry("missing registers", "0\n1\n1\n2\n", "missing value of R2"),
			Entry("non-numeric register", "0\n1\n1\n2\nx\n", "value of R2"),
			Entry("trailing content", "0\n0\n"+strings.Repeat("0\n", 8)+"9\n", "unexpected trailing content"),
		)

		It("should keep the decoder error in the chain", func() {
			_, err := parse("1\n1\n9 1 2 3\n")

			Expect(errors.Is(err, insts.ErrInvalidInstruction)).To(BeTrue())
			var parseErr *loader.ParseError
			Expect(errors.As(err, &parseErr)).To(BeTrue())
			Expect(parseErr.Line).To(Equal(3))
		})
	})

	Describe("Write", func() {
		It("should produce input that parses back", func() {
			prog, err := parse(sampleInput)
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(loader.Write(&buf, prog)).To(Succeed())
			Expect(buf.String()).To(Equal(sampleInput))
		})
	})

	Describe("Load", func() {
		var tempDir string

		BeforeEach(func() {
			tempDir = GinkgoT().TempDir()
		})

		It("should load a file", func() {
			path := filepath.Join(tempDir, "input.txt")
			Expect(os.WriteFile(path, []byte(sampleInput), 0644)).To(Succeed())

			prog, err := loader.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Instructions).To(HaveLen(2))
		})

		It("should report a missing file", func() {
			_, err := loader.Load(filepath.Join(tempDir, "missing.txt"))
			Expect(err).To(MatchError(ContainSubstring("failed to open input file")))
			Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
		})

		It("should name the file in parse errors", func() {
			path := filepath.Join(tempDir, "bad.txt")
			Expect(os.WriteFile(path, []byte("x\n"), 0644)).To(Succeed())

			_, err := loader.Load(path)
			Expect(err).To(MatchError(loader.ErrMalformed))
			Expect(err.Error()).To(ContainSubstring("bad.txt"))
		})
	})
})
