package diag

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestLocate(t *testing.T) {
	src := []byte("ab\n\tcd\nef")
	tests := []struct {
		offset int
		want   SourceLocation
	}{
		{0, SourceLocation{1, 1}},
		{1, SourceLocation{1, 2}},
		{3, SourceLocation{2, 1}},
		{5, SourceLocation{2, 3}},
		{7, SourceLocation{3, 1}},
		{100, SourceLocation{3, 3}},
		{-1, SourceLocation{}},
	}
	for _, tt := range tests {
		if got := Locate(src, tt.offset); got != tt.want {
			t.Errorf("Locate(%d) = %s, want %s", tt.offset, got, tt.want)
		}
	}
}

func TestErrorMatchesSentinel(t *testing.T) {
	err := At(UnmatchedCloseBracket, []byte("+]"), 1, "no loop is open here")
	wrapped := fmt.Errorf("compile: %w", err)

	if !errors.Is(wrapped, ErrUnmatchedClose) {
		t.Errorf("expected %v to match ErrUnmatchedClose", wrapped)
	}
	if errors.Is(wrapped, ErrUnmatchedOpen) {
		t.Errorf("did not expect %v to match ErrUnmatchedOpen", wrapped)
	}
	want := "position 1 (1:2): unmatched ']': no loop is open here"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("mmap: cannot allocate memory")
	err := Wrap(AllocationFailure, cause, "code region of %d bytes", 4096)
	if !errors.Is(err, cause) {
		t.Error("expected the cause to be reachable through Unwrap")
	}
	if !errors.Is(err, ErrAllocation) {
		t.Error("expected the error to match ErrAllocation")
	}
	if strings.Contains(err.Error(), "position") {
		t.Errorf("an error without offset should not print a position: %q", err.Error())
	}
}

func TestFormatCaret(t *testing.T) {
	src := []byte("+++\n\t+]")
	err := At(UnmatchedCloseBracket, src, 6, "no loop is open here")
	out := err.Format(src, false)

	lines := strings.Split(out, "\n")
	if len(lines) < 5 {
		t.Fatalf("Format output too short:\n%s", out)
	}
	if !strings.HasPrefix(lines[0], "error: unmatched ']'") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "position 6 (2:3)") {
		t.Errorf("location line = %q", lines[1])
	}
	if lines[3] != "2 |  +]" {
		t.Errorf("source line = %q", lines[3])
	}
	if lines[4] != "  |   ^" {
		t.Errorf("caret line = %q", lines[4])
	}
	if strings.Contains(out, "\033[") {
		t.Error("uncoloured output contains escape codes")
	}
	if !strings.Contains(err.Format(src, true), "\033[1;31m") {
		t.Error("coloured output contains no escape codes")
	}
}
