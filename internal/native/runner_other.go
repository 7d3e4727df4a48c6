// Completion: 100% - Platform-specific module complete
//go:build bfjit_nojit || !(linux || darwin || freebsd || windows) || !(amd64 || arm64)

package native

import (
	"github.com/xyproto/bfjit/internal/diag"
	"github.com/xyproto/bfjit/internal/ir"
	"github.com/xyproto/bfjit/internal/tape"
)

// Available reports whether this build can run generated code
const Available = false

// Runner is a stub for builds without a native runner. Execute always fails with UnsupportedBackend.
type Runner struct {
	backend Backend
	Dump    func(code []byte)
}

// NewRunner returns a runner that cannot run anything
func NewRunner(b Backend) *Runner {
	return &Runner{backend: b}
}

// Name returns the backend name
func (r *Runner) Name() string {
	return "native-" + r.backend.Name()
}

// Execute always fails with UnsupportedBackend
func (r *Runner) Execute(ir.Program, *tape.Tape, tape.IO) error {
	return diag.Wrap(diag.UnsupportedBackend, nil, "this build has no native runner")
}
