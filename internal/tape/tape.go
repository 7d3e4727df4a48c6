// Completion: 100% - Tape and byte I/O complete
package tape

import (
	"bufio"
	"io"
)

// DefaultSize is the number of cells on a tape when none is given
const DefaultSize = 65536

// EOF is returned by IO.GetByte at end of input. Stored into a cell it becomes 255.
const EOF = -1

// IO is the pair of byte callbacks a running program talks to
type IO interface {
	PutByte(b byte)
	GetByte() int
}

// Tape is the cell array and the data pointer after (or during) a run
type Tape struct {
	Cells []byte
	Pos   int
}

// New returns a zeroed tape with size cells, DefaultSize if size is not positive
func New(size int) *Tape {
	if size <= 0 {
		size = DefaultSize
	}
	return &Tape{Cells: make([]byte, size)}
}

// Current returns the cell under the data pointer, or 0 if the pointer is off the tape
func (t *Tape) Current() byte {
	if t.Pos < 0 || t.Pos >= len(t.Cells) {
		return 0
	}
	return t.Cells[t.Pos]
}

// Stream adapts an io.Reader and io.Writer to IO. Output is buffered and flushed
// before every read, so prompts show up before the program blocks on input.
type Stream struct {
	r   *bufio.Reader
	w   *bufio.Writer
	err error // first write error, sticky
}

// NewStream wraps r and w. Either may be nil: a nil reader is always at EOF and
// a nil writer discards output.
func NewStream(r io.Reader, w io.Writer) *Stream {
	s := &Stream{}
	if r != nil {
		s.r = bufio.NewReader(r)
	}
	if w == nil {
		w = io.Discard
	}
	s.w = bufio.NewWriter(w)
	return s
}

// PutByte implements IO
func (s *Stream) PutByte(b byte) {
	if s.err != nil {
		return
	}
	s.err = s.w.WriteByte(b)
}

// GetByte implements IO
func (s *Stream) GetByte() int {
	s.Flush()
	if s.r == nil {
		return EOF
	}
	b, err := s.r.ReadByte()
	if err != nil {
		return EOF
	}
	return int(b)
}

// Flush writes out buffered output and returns the first write error seen
func (s *Stream) Flush() error {
	if s.err == nil {
		s.err = s.w.Flush()
	}
	return s.err
}

// Buffer is an in-memory IO: GetByte consumes Input, PutByte appends to Output
type Buffer struct {
	Input  []byte
	Output []byte
}

// PutByte implements IO
func (b *Buffer) PutByte(c byte) {
	b.Output = append(b.Output, c)
}

// GetByte implements IO
func (b *Buffer) GetByte() int {
	if len(b.Input) == 0 {
		return EOF
	}
	c := b.Input[0]
	b.Input = b.Input[1:]
	return int(c)
}
