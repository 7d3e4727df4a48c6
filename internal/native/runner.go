// Completion: 100% - Native runner complete
//go:build !bfjit_nojit && (linux || darwin || freebsd || windows) && (amd64 || arm64)
// +build !bfjit_nojit
// +build linux darwin freebsd windows
// +build amd64 arm64

package native

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/xyproto/bfjit/internal/diag"
	"github.com/xyproto/bfjit/internal/execmem"
	"github.com/xyproto/bfjit/internal/ir"
	"github.com/xyproto/bfjit/internal/tape"
)

// Available reports whether this build can run generated code
const Available = true

// The two callbacks handed to generated code are created once, since callback
// slots are never freed. They route to the IO of the run holding runMu.
var (
	runMu         sync.Mutex
	activeIO      tape.IO
	callbacksOnce sync.Once
	putCallback   uintptr
	getCallback   uintptr
)

func initCallbacks() {
	putCallback = purego.NewCallback(func(c uintptr) uintptr {
		activeIO.PutByte(byte(c))
		return 0
	})
	getCallback = purego.NewCallback(func() uintptr {
		return uintptr(activeIO.GetByte())
	})
}

// Runner compiles a program to machine code and runs it
type Runner struct {
	backend Backend
	// Dump, when set, receives the machine code before it is sealed
	Dump func(code []byte)
}

// NewRunner returns a runner for the given backend
func NewRunner(b Backend) *Runner {
	return &Runner{backend: b}
}

// Name returns the backend name
func (r *Runner) Name() string {
	return "native-" + r.backend.Name()
}

// Execute compiles prog and runs it over t, starting at t.Pos. Only one program
// runs at a time. The data pointer is not bounds checked.
func (r *Runner) Execute(prog ir.Program, t *tape.Tape, io tape.IO) error {
	if len(t.Cells) == 0 {
		return diag.Wrap(diag.AllocationFailure, nil, "empty tape")
	}
	if t.Pos < 0 || t.Pos >= len(t.Cells) {
		return diag.Wrap(diag.TapeFault, nil, "data pointer %d is off the tape of %d cells", t.Pos, len(t.Cells))
	}

	runMu.Lock()
	defer runMu.Unlock()
	callbacksOnce.Do(initCallbacks)
	activeIO = io
	defer func() { activeIO = nil }()

	var pinner runtime.Pinner
	pinner.Pin(&t.Cells[0])
	defer pinner.Unpin()
	base := uintptr(unsafe.Pointer(&t.Cells[0]))

	size := CodeSize(r.backend, prog)
	emit := func(code []byte) (int, error) {
		n, err := Generate(r.backend, prog, code)
		if err != nil {
			return 0, err
		}
		if r.Dump != nil {
			r.Dump(code[:n])
		}
		return n, nil
	}
	run := func(code *execmem.Executable) error {
		logger().Debugf("%s: running %d bytes of code", r.Name(), size)
		ret, _, _ := purego.SyscallN(code.Entry(), base+uintptr(t.Pos), putCallback, getCallback)
		t.Pos = int(ret - base)
		return nil
	}
	return execmem.Scope(size, emit, run)
}
