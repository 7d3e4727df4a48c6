// Completion: 100% - Compile and run pipeline complete
package jit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/xyproto/bfjit/internal/diag"
	"github.com/xyproto/bfjit/internal/interp"
	"github.com/xyproto/bfjit/internal/ir"
	"github.com/xyproto/bfjit/internal/native"
	"github.com/xyproto/bfjit/internal/tape"
)

// Mode selects the execution backend
type Mode int

const (
	Auto        Mode = iota // native code when the host has a backend, else the interpreter
	Native                  // native code, falling back to the interpreter
	Interpreter             // always the interpreter
)

// ModeNames lists the accepted spellings, in Mode order
var ModeNames = []string{"auto", "native", "interp"}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(ModeNames) {
		return ModeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode parses a backend name as given on the command line
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "native", "jit":
		return Native, nil
	case "interp", "interpreter":
		return Interpreter, nil
	}
	return Auto, fmt.Errorf("unknown backend %q", s)
}

// Options controls compilation and execution
type Options struct {
	Mode       Mode
	TapeSize   int  // 0 means tape.DefaultSize
	NoOptimize bool // skip the peephole rewrites
	MaxOffsets int  // 0 means ir.DefaultMaxOffsets
	// DumpCode, when set, receives the generated machine code of a native run
	DumpCode func(code []byte)
}

// Executor runs a resolved program over a tape
type Executor interface {
	Name() string
	Execute(prog ir.Program, t *tape.Tape, io tape.IO) error
}

func logger() commonlog.Logger {
	return commonlog.GetLogger("bfjit.jit")
}

// Compile turns source into a resolved, and unless disabled optimized, program
func Compile(src []byte, opts Options) (ir.Program, error) {
	return ir.Compile(src, ir.Options{NoOptimize: opts.NoOptimize, MaxOffsets: opts.MaxOffsets})
}

// Select picks the executor for opts. A missing native backend is not an error:
// the interpreter is returned instead.
func Select(opts Options) Executor {
	if opts.Mode == Interpreter {
		return interp.New()
	}
	if !native.Available {
		degrade(opts.Mode, errors.New("built without a native runner"))
		return interp.New()
	}
	b, err := native.ForHost()
	if err != nil {
		degrade(opts.Mode, err)
		return interp.New()
	}
	r := native.NewRunner(b)
	r.Dump = opts.DumpCode
	return r
}

func degrade(mode Mode, err error) {
	if mode == Native {
		logger().Noticef("using the interpreter: %v", err)
		return
	}
	logger().Debugf("using the interpreter: %v", err)
}

// Run compiles src and executes it with io, returning the final tape.
// Bracket errors are reported before anything runs.
func Run(src []byte, io tape.IO, opts Options) (*tape.Tape, error) {
	prog, err := Compile(src, opts)
	if err != nil {
		return nil, err
	}
	t := tape.New(opts.TapeSize)
	return t, Execute(prog, t, io, opts)
}

// Execute runs an already compiled program over t
func Execute(prog ir.Program, t *tape.Tape, io tape.IO, opts Options) error {
	exec := Select(opts)
	logger().Infof("running %d instructions with %s", prog.Len(), exec.Name())
	err := exec.Execute(prog, t, io)
	if errors.Is(err, diag.ErrUnsupported) {
		degrade(opts.Mode, err)
		return interp.New().Execute(prog, t, io)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", exec.Name(), err)
	}
	return nil
}
