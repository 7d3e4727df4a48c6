// Completion: 100% - IR listing and CBOR encoding complete
package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ir: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalProgram serializes a Program to canonical CBOR bytes.
func MarshalProgram(p Program) ([]byte, error) {
	return cborEncMode.Marshal(p)
}

// UnmarshalProgram deserializes a Program from CBOR bytes and checks its loop links.
func UnmarshalProgram(data []byte) (Program, error) {
	var p Program
	if err := cbor.Unmarshal(data, &p); err != nil {
		return Program{}, fmt.Errorf("ir: unmarshal program: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Program{}, fmt.Errorf("ir: invalid program: %w", err)
	}
	return p, nil
}

// Dump writes a human readable listing, one instruction per line, indented by loop depth
func Dump(w io.Writer, p Program) error {
	depth := 0
	for i, in := range p.Code {
		if in.Op == LoopEnd {
			depth--
		}
		if _, err := fmt.Fprintf(w, "%5d  @%-5d %s%s\n", i, in.Pos, strings.Repeat("  ", max(depth, 0)), in); err != nil {
			return err
		}
		if in.Op == LoopStart {
			depth++
		}
	}
	return nil
}
