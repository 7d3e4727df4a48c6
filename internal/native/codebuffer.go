// Completion: 100% - Code buffer and fixup table complete
package native

import (
	"encoding/binary"
	"fmt"
)

// Fixup is a forward branch waiting for its target.
// Site is the byte offset of the branch instruction (or of its rel32 field on
// x86_64), Resume is the first byte of the loop body it skips.
type Fixup struct {
	Site   int
	Resume int
}

// CodeBuffer is an append-only arena over a region sized for the worst case.
// Emission past the end is recorded as an error rather than growing the buffer.
type CodeBuffer struct {
	code   []byte
	n      int
	fixups map[int]Fixup // keyed by the IR index of the LoopStart
	err    error
}

// NewCodeBuffer returns a buffer writing into code
func NewCodeBuffer(code []byte) *CodeBuffer {
	return &CodeBuffer{
		code:   code,
		fixups: make(map[int]Fixup),
	}
}

// Len returns the number of bytes emitted so far
func (b *CodeBuffer) Len() int {
	return b.n
}

// Bytes returns the emitted bytes
func (b *CodeBuffer) Bytes() []byte {
	return b.code[:b.n]
}

// Err returns the first overflow, if any
func (b *CodeBuffer) Err() error {
	return b.err
}

// Emit appends raw bytes and returns how many were written
func (b *CodeBuffer) Emit(bs ...byte) int {
	if b.err != nil {
		return 0
	}
	if b.n+len(bs) > len(b.code) {
		b.err = fmt.Errorf("code buffer overflow: %d + %d bytes > %d", b.n, len(bs), len(b.code))
		return 0
	}
	copy(b.code[b.n:], bs)
	b.n += len(bs)
	return len(bs)
}

// Emit32 appends a little-endian 32-bit word (one ARM64 instruction, or an x86 rel32/imm32)
func (b *CodeBuffer) Emit32(v uint32) int {
	var w [4]byte
	binary.LittleEndian.PutUint32(w[:], v)
	return b.Emit(w[:]...)
}

// Uint32 reads back a little-endian word at offset at
func (b *CodeBuffer) Uint32(at int) uint32 {
	return binary.LittleEndian.Uint32(b.code[at:])
}

// Patch32 overwrites a little-endian word at offset at
func (b *CodeBuffer) Patch32(at int, v uint32) {
	if at < 0 || at+4 > b.n {
		b.err = fmt.Errorf("patch at %d outside the %d emitted bytes", at, b.n)
		return
	}
	binary.LittleEndian.PutUint32(b.code[at:], v)
}

// Defer records a fixup for the loop starting at IR index
func (b *CodeBuffer) Defer(index int, f Fixup) {
	b.fixups[index] = f
}

// Resolve takes the fixup recorded for the loop starting at IR index
func (b *CodeBuffer) Resolve(index int) (Fixup, bool) {
	f, ok := b.fixups[index]
	if ok {
		delete(b.fixups, index)
	}
	return f, ok
}

// Pending returns the number of fixups that were never resolved
func (b *CodeBuffer) Pending() int {
	return len(b.fixups)
}
