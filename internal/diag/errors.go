// Completion: 100% - Error handling complete, clear and helpful messages
package diag

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure of the compile/execute cycle
type Kind int

const (
	KindInternal Kind = iota
	UnmatchedOpenBracket
	UnmatchedCloseBracket
	AllocationFailure
	UnsupportedBackend
	TapeFault
)

func (k Kind) String() string {
	switch k {
	case UnmatchedOpenBracket:
		return "unmatched '['"
	case UnmatchedCloseBracket:
		return "unmatched ']'"
	case AllocationFailure:
		return "allocation failure"
	case UnsupportedBackend:
		return "unsupported backend"
	case TapeFault:
		return "tape fault"
	case KindInternal:
		return "internal error"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrUnmatchedOpen   = &Error{Kind: UnmatchedOpenBracket, Offset: -1}
	ErrUnmatchedClose  = &Error{Kind: UnmatchedCloseBracket, Offset: -1}
	ErrAllocation      = &Error{Kind: AllocationFailure, Offset: -1}
	ErrUnsupported     = &Error{Kind: UnsupportedBackend, Offset: -1}
	ErrTapeFault       = &Error{Kind: TapeFault, Offset: -1}
	ErrInternal        = &Error{Kind: KindInternal, Offset: -1}
	errNoSourceContext = errors.New("no source context")
)

// SourceLocation represents a position in source code
type SourceLocation struct {
	Line   int
	Column int
}

func (loc SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
}

// Locate converts a byte offset into a 1-based line and column
func Locate(src []byte, offset int) SourceLocation {
	if offset < 0 {
		return SourceLocation{}
	}
	if offset > len(src) {
		offset = len(src)
	}
	before := src[:offset]
	line := bytes.Count(before, []byte{'\n'}) + 1
	col := offset - bytes.LastIndexByte(before, '\n')
	return SourceLocation{Line: line, Column: col}
}

// Error is the single error type reported by the compiler and the runtimes.
// Offset is a source byte offset, or -1 when the failure has no source position.
type Error struct {
	Kind     Kind
	Offset   int
	Location SourceLocation
	Message  string
	Err      error
}

// Error implements the error interface
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Offset >= 0 {
		fmt.Fprintf(&sb, "position %d", e.Offset)
		if e.Location.Line > 0 {
			fmt.Fprintf(&sb, " (%s)", e.Location)
		}
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.String())
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Offset == -1 && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// At creates a positioned error for the given source
func At(kind Kind, src []byte, offset int, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Offset:   offset,
		Location: Locate(src, offset),
		Message:  fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a kind to an underlying error that has no source position
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Offset:  -1,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Format returns the error with the offending source line and a caret under the position
func (e *Error) Format(src []byte, useColor bool) string {
	var sb strings.Builder

	if useColor {
		sb.WriteString("\033[1;31m") // Bold red
	}
	sb.WriteString("error: ")
	if useColor {
		sb.WriteString("\033[0m")
	}
	sb.WriteString(e.Kind.String())
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	sb.WriteString("\n")

	line, err := sourceLine(src, e.Location.Line)
	if e.Offset < 0 || err != nil {
		return sb.String()
	}

	if useColor {
		sb.WriteString("\033[1;34m") // Bold blue
	}
	fmt.Fprintf(&sb, "  --> position %d (%s)\n", e.Offset, e.Location)
	if useColor {
		sb.WriteString("\033[0m")
	}

	lineNum := fmt.Sprintf("%d", e.Location.Line)
	padding := strings.Repeat(" ", len(lineNum)+1)
	sb.WriteString(padding)
	sb.WriteString("|\n")
	sb.WriteString(lineNum)
	sb.WriteString(" | ")
	sb.WriteString(line)
	sb.WriteString("\n")
	sb.WriteString(padding)
	sb.WriteString("| ")
	if e.Location.Column > 0 {
		sb.WriteString(strings.Repeat(" ", e.Location.Column-1))
	}
	if useColor {
		sb.WriteString("\033[1;31m")
	}
	sb.WriteString("^")
	if useColor {
		sb.WriteString("\033[0m")
	}
	sb.WriteString("\n")
	return sb.String()
}

// sourceLine extracts a specific line from source code, tabs expanded to keep the caret aligned
func sourceLine(src []byte, lineNum int) (string, error) {
	if len(src) == 0 || lineNum <= 0 {
		return "", errNoSourceContext
	}
	lines := bytes.Split(src, []byte{'\n'})
	if lineNum > len(lines) {
		return "", errNoSourceContext
	}
	return strings.ReplaceAll(string(lines[lineNum-1]), "\t", " "), nil
}
