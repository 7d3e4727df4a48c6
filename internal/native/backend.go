// Completion: 100% - Backend contract and driver complete
package native

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/xyproto/bfjit/internal/diag"
	"github.com/xyproto/bfjit/internal/ir"
)

// Backend is the interface that all architecture backends must implement.
//
// The generated function has the C signature
//
//	uint8_t *run(uint8_t *cell, void (*put)(int), int (*get)(void))
//
// and returns the final data pointer.
type Backend interface {
	Name() string

	// Worst-case sizes, used to size the code region before emission
	InitLen() int
	CleanupLen() int
	MaxLen(in ir.Instruction) int

	// CompileInit binds the three arguments to callee-saved registers
	CompileInit(buf *CodeBuffer) int
	// CompileInstruction emits one IR instruction; index is its position in the program
	CompileInstruction(in ir.Instruction, index int, buf *CodeBuffer) (int, error)
	// CompileCleanup returns the data pointer and restores the saved registers
	CompileCleanup(buf *CodeBuffer) int
}

func logger() commonlog.Logger {
	return commonlog.GetLogger("bfjit.native")
}

// CodeSize returns an upper bound of the machine code size of prog
func CodeSize(b Backend, prog ir.Program) int {
	size := b.InitLen() + b.CleanupLen()
	for _, in := range prog.Code {
		size += b.MaxLen(in)
	}
	return size
}

// Generate emits the machine code for prog into code, which must hold at least
// CodeSize bytes, and returns the number of bytes used.
func Generate(b Backend, prog ir.Program, code []byte) (int, error) {
	buf := NewCodeBuffer(code)
	b.CompileInit(buf)
	for i, in := range prog.Code {
		if _, err := b.CompileInstruction(in, i, buf); err != nil {
			return 0, fmt.Errorf("%s: instruction %d (%s): %w", b.Name(), i, in, err)
		}
	}
	b.CompileCleanup(buf)

	if err := buf.Err(); err != nil {
		return 0, diag.Wrap(diag.KindInternal, err, "%s", b.Name())
	}
	if n := buf.Pending(); n > 0 {
		return 0, diag.Wrap(diag.KindInternal, nil, "%s: %d loops were never closed", b.Name(), n)
	}
	logger().Debugf("%s: %d instructions -> %d bytes", b.Name(), prog.Len(), buf.Len())
	return buf.Len(), nil
}
