package interp_test

import (
	"strings"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/xyproto/bfjit/internal/diag"
	"github.com/xyproto/bfjit/internal/interp"
	"github.com/xyproto/bfjit/internal/ir"
	"github.com/xyproto/bfjit/internal/tape"
)

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

func run(src string, input string, opts ir.Options) (*tape.Tape, string) {
	prog, err := ir.Compile([]byte(src), opts)
	Expect(err).NotTo(HaveOccurred())
	t := tape.New(64)
	buf := &tape.Buffer{Input: []byte(input)}
	Expect(interp.New().Execute(prog, t, buf)).To(Succeed())
	return t, string(buf.Output)
}

var _ = Describe("Interpreter", func() {
	It("should be named", func() {
		Expect(interp.New().Name()).To(Equal("interp"))
	})

	It("should print hello world", func() {
		Expect(len(helloWorld)).To(Equal(106))
		_, out := run(helloWorld, "", ir.Options{})
		Expect(out).To(Equal("Hello World!\n"))
	})

	It("should run the copy loop", func() {
		t, _ := run(">+++>++<[->+<]", "", ir.Options{})
		Expect(t.Cells[:3]).To(Equal([]byte{0, 0, 5}))
		Expect(t.Pos).To(Equal(1))
	})

	It("should run the clear loop", func() {
		t, _ := run("+++[-]", "", ir.Options{})
		Expect(t.Cells[0]).To(BeZero())
	})

	It("should run a multiply loop with an origin step of three", func() {
		t, _ := run("++++++[->++>+++<<]>[--->+<]", "", ir.Options{})
		Expect(t.Cells[:3]).To(Equal([]byte{0, 0, 22}))
	})

	It("should keep even steps as real loops", func() {
		t, _ := run("+++++[>+++++++<-]>[<++>-]<[>>+<<[-->+<]]", "", ir.Options{})
		Expect(t.Cells[:3]).To(Equal([]byte{0, 35, 1}))
		Expect(t.Pos).To(BeZero())
	})

	It("should run a loop touching more cells than the rewrite allows", func() {
		src := "+++[-" + strings.Repeat(">+", 31) + strings.Repeat("<", 31) + "]"
		t, _ := run(src, "", ir.Options{})
		Expect(t.Cells[0]).To(BeZero())
		for i := 1; i <= 31; i++ {
			Expect(t.Cells[i]).To(Equal(byte(3)), "cell %d", i)
		}
	})

	It("should wrap cells modulo 256", func() {
		t, _ := run("-", "", ir.Options{})
		Expect(t.Cells[0]).To(Equal(byte(255)))
		t, _ = run(strings.Repeat("+", 257), "", ir.Options{})
		Expect(t.Cells[0]).To(Equal(byte(1)))
	})

	It("should echo input until end of input", func() {
		_, out := run(",+[-.,+]", "abc", ir.Options{})
		Expect(out).To(Equal("abc"))
	})

	DescribeTable("should match the unoptimized program",
		func(src, input string) {
			want, wantOut := run(src, input, ir.Options{NoOptimize: true})
			got, gotOut := run(src, input, ir.Options{})
			Expect(gotOut).To(Equal(wantOut))
			Expect(got.Cells).To(Equal(want.Cells))
			Expect(got.Pos).To(Equal(want.Pos))
		},
		Entry("hello world", helloWorld, ""),
		Entry("copy", ">+++>++<[->+<]", ""),
		Entry("backwards multiply", ">>>+++++[-<<++<+++>>>]", ""),
		Entry("incrementing origin", "+++++[+>-<]", ""),
		Entry("zero multiplier", "+++[>+<->-<]", ""),
		Entry("input driven", ",[->+>++>+++<<<]", "\x07"),
		Entry("end of input", ",[->+<]", ""),
		Entry("nested", "++[>++[>+++<-]<-]", ""),
	)

	Context("with a mocked IO", func() {
		var (
			mockCtrl *gomock.Controller
			mockIO   *MockIO
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			mockIO = NewMockIO(mockCtrl)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should read before it writes", func() {
			gomock.InOrder(
				mockIO.EXPECT().GetByte().Return(int('A')),
				mockIO.EXPECT().PutByte(byte('B')),
				mockIO.EXPECT().PutByte(byte('B')),
			)

			prog, err := ir.Compile([]byte(",+.."), ir.Options{})
			Expect(err).NotTo(HaveOccurred())
			Expect(interp.New().Execute(prog, tape.New(8), mockIO)).To(Succeed())
		})

		It("should store end of input as 255", func() {
			mockIO.EXPECT().GetByte().Return(tape.EOF)

			prog, err := ir.Compile([]byte(","), ir.Options{})
			Expect(err).NotTo(HaveOccurred())
			t := tape.New(8)
			Expect(interp.New().Execute(prog, t, mockIO)).To(Succeed())
			Expect(t.Cells[0]).To(Equal(byte(255)))
		})

		It("should not call IO for a program without io", func() {
			prog, err := ir.Compile([]byte("+++[->+<]"), ir.Options{})
			Expect(err).NotTo(HaveOccurred())
			Expect(interp.New().Execute(prog, tape.New(8), mockIO)).To(Succeed())
		})
	})

	Context("when the pointer leaves the tape", func() {
		It("should report a tape fault moving left", func() {
			prog, err := ir.Compile([]byte("<+"), ir.Options{})
			Expect(err).NotTo(HaveOccurred())
			t := tape.New(8)
			err = interp.New().Execute(prog, t, &tape.Buffer{})
			Expect(err).To(MatchError(diag.ErrTapeFault))
			Expect(t.Pos).To(Equal(-1))
		})

		It("should report a tape fault moving right", func() {
			prog, err := ir.Compile([]byte("+[>+]"), ir.Options{})
			Expect(err).NotTo(HaveOccurred())
			t := tape.New(4)
			err = interp.New().Execute(prog, t, &tape.Buffer{})
			Expect(err).To(MatchError(diag.ErrTapeFault))
			Expect(t.Pos).To(Equal(4))
		})

		It("should keep the output produced before the fault", func() {
			prog, err := ir.Compile([]byte("+.<."), ir.Options{})
			Expect(err).NotTo(HaveOccurred())
			buf := &tape.Buffer{}
			err = interp.New().Execute(prog, tape.New(4), buf)
			Expect(err).To(MatchError(diag.ErrTapeFault))
			Expect(buf.Output).To(Equal([]byte{1}))
		})
	})
})
