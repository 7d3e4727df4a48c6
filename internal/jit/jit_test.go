package jit_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/xyproto/bfjit/internal/diag"
	"github.com/xyproto/bfjit/internal/jit"
	"github.com/xyproto/bfjit/internal/native"
	"github.com/xyproto/bfjit/internal/tape"
)

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

// squares prints the squares from 0 to 10000, one per line
const squares = `++++[>+++++<-]>[<+++++>-]+<+[>[>+>+<<-]++>>[<<+>>-]>>>[-]++>[-]+>>>+[[-]++++++>>>]<<<[[<++++++++<++>>-]+<.<[>----<-]<]<<[>>>>>[>>>[-]+++++++++<[>-<-]+++++++++>[-[<->-]+[<<<]]<[>+<-]>]<<-]<<-]`

func runWith(mode jit.Mode, src, input string, noOpt bool) (*tape.Tape, string, error) {
	buf := &tape.Buffer{Input: []byte(input)}
	t, err := jit.Run([]byte(src), buf, jit.Options{Mode: mode, TapeSize: 4096, NoOptimize: noOpt})
	return t, string(buf.Output), err
}

var _ = Describe("Mode", func() {
	It("should parse backend names", func() {
		for i, name := range jit.ModeNames {
			m, err := jit.ParseMode(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(Equal(jit.Mode(i)))
			Expect(m.String()).To(Equal(name))
		}
		_, err := jit.ParseMode("gpu")
		Expect(err).To(HaveOccurred())
	})

	It("should always give the interpreter when asked for it", func() {
		Expect(jit.Select(jit.Options{Mode: jit.Interpreter}).Name()).To(Equal("interp"))
	})

	It("should pick the native runner when the host has one", func() {
		exec := jit.Select(jit.Options{})
		if _, err := native.ForHost(); err != nil || !native.Available {
			Expect(exec.Name()).To(Equal("interp"))
			return
		}
		Expect(exec.Name()).To(HavePrefix("native-"))
	})
})

var _ = Describe("Run", func() {
	It("should print hello world with every backend", func() {
		for _, mode := range []jit.Mode{jit.Auto, jit.Native, jit.Interpreter} {
			_, out, err := runWith(mode, helloWorld, "", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("Hello World!\n"), "mode %s", mode)
		}
	})

	It("should report an unmatched open bracket before running", func() {
		t, out, err := runWith(jit.Auto, ".[", "", false)
		Expect(err).To(MatchError(diag.ErrUnmatchedOpen))
		Expect(t).To(BeNil())
		Expect(out).To(BeEmpty())
	})

	It("should report an unmatched close bracket before running", func() {
		_, out, err := runWith(jit.Auto, "+.]", "", false)
		Expect(err).To(MatchError(diag.ErrUnmatchedClose))
		Expect(out).To(BeEmpty())
	})

	It("should leave the copy loop result on the tape", func() {
		t, _, err := runWith(jit.Auto, ">+++>++<[->+<]", "", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Cells[:3]).To(Equal([]byte{0, 0, 5}))
		Expect(t.Pos).To(Equal(1))
	})

	It("should leave a cleared cell", func() {
		t, _, err := runWith(jit.Auto, "+++[-]", "", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Cells[0]).To(BeZero())
	})

	It("should hand the machine code to DumpCode on native runs", func() {
		var code []byte
		buf := &tape.Buffer{}
		_, err := jit.Run([]byte("+."), buf, jit.Options{DumpCode: func(c []byte) {
			code = append([]byte(nil), c...)
		}})
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.Output).To(Equal([]byte{1}))
		if _, herr := native.ForHost(); herr == nil && native.Available {
			Expect(code).NotTo(BeEmpty())
		}
	})

	DescribeTable("native and interpreted runs should agree",
		func(src, input string) {
			for _, noOpt := range []bool{false, true} {
				wantTape, wantOut, err := runWith(jit.Interpreter, src, input, true)
				Expect(err).NotTo(HaveOccurred())
				gotTape, gotOut, err := runWith(jit.Auto, src, input, noOpt)
				Expect(err).NotTo(HaveOccurred())
				Expect(gotOut).To(Equal(wantOut))
				Expect(gotTape.Cells).To(Equal(wantTape.Cells))
				Expect(gotTape.Pos).To(Equal(wantTape.Pos))
			}
		},
		Entry("hello world", helloWorld, ""),
		Entry("squares", squares, ""),
		Entry("echo", ",+[-.,+]", "echo this"),
		Entry("end of input", ",", ""),
		Entry("even step", "+++++[>+++++++<-]>[<++>-]<[>>+<<[-->+<]]", ""),
		Entry("origin step of three", "++++++[->++>+++<<]>[--->+<]", ""),
		Entry("backwards multiply", ">>>+++++[-<<++<+++>>>]", ""),
		Entry("wide loop", "+++[-"+strings.Repeat(">+", 31)+strings.Repeat("<", 31)+"]", ""),
		Entry("far moves", strings.Repeat(">", 300)+"+++[-"+strings.Repeat("<", 200)+"++"+strings.Repeat(">", 200)+"]", ""),
	)
})
