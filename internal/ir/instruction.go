// Completion: 100% - IR model complete
package ir

import (
	"fmt"
	"strings"
)

// Op is the operation of a resolved IR instruction
type Op uint8

const (
	Nop Op = iota
	Add
	Move
	Output
	Input
	Clear
	CopyMul
	LoopStart
	LoopEnd
)

func (o Op) String() string {
	switch o {
	case Nop:
		return "nop"
	case Add:
		return "add"
	case Move:
		return "move"
	case Output:
		return "out"
	case Input:
		return "in"
	case Clear:
		return "clear"
	case CopyMul:
		return "copymul"
	case LoopStart:
		return "loop"
	case LoopEnd:
		return "end"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Term is one cell[Offset] += cell[0] * Multiplier update of a CopyMul.
// Multiplier is already reduced modulo 256.
type Term struct {
	Offset     int   `cbor:"1,keyasint"`
	Multiplier uint8 `cbor:"2,keyasint"`
}

// Instruction is a single IR operation.
//
//	Add, Move       Delta holds the fused run length (never zero)
//	LoopStart       Target is the index of the matching LoopEnd
//	LoopEnd         Target is the index of the matching LoopStart
//	CopyMul         Terms lists the cells updated from the current cell
//
// Pos is the source offset the instruction came from.
type Instruction struct {
	Op     Op     `cbor:"1,keyasint"`
	Delta  int    `cbor:"2,keyasint,omitempty"`
	Target int    `cbor:"3,keyasint,omitempty"`
	Terms  []Term `cbor:"4,keyasint,omitempty"`
	Pos    int    `cbor:"5,keyasint"`
}

func (in Instruction) String() string {
	switch in.Op {
	case Add, Move:
		return fmt.Sprintf("%s %d", in.Op, in.Delta)
	case LoopStart, LoopEnd:
		return fmt.Sprintf("%s -> %d", in.Op, in.Target)
	case CopyMul:
		parts := make([]string, len(in.Terms))
		for i, t := range in.Terms {
			parts[i] = fmt.Sprintf("[%+d]*%d", t.Offset, int8(t.Multiplier))
		}
		return fmt.Sprintf("%s %s", in.Op, strings.Join(parts, " "))
	default:
		return in.Op.String()
	}
}

// Program is a resolved instruction sequence. Once returned by Resolve it is read-only.
type Program struct {
	Code      []Instruction `cbor:"1,keyasint"`
	Optimized bool          `cbor:"2,keyasint"`
}

// Len returns the number of instructions
func (p Program) Len() int {
	return len(p.Code)
}

// MaxDepth returns the deepest loop nesting of the program
func (p Program) MaxDepth() int {
	depth, deepest := 0, 0
	for _, in := range p.Code {
		switch in.Op {
		case LoopStart:
			depth++
			deepest = max(deepest, depth)
		case LoopEnd:
			depth--
		}
	}
	return deepest
}

// Validate checks that every loop is linked both ways
func (p Program) Validate() error {
	for i, in := range p.Code {
		switch in.Op {
		case LoopStart:
			if in.Target <= i || in.Target >= len(p.Code) || p.Code[in.Target].Op != LoopEnd || p.Code[in.Target].Target != i {
				return fmt.Errorf("loop start %d is not linked to its end (target %d)", i, in.Target)
			}
		case LoopEnd:
			if in.Target >= i || in.Target < 0 || p.Code[in.Target].Op != LoopStart || p.Code[in.Target].Target != i {
				return fmt.Errorf("loop end %d is not linked to its start (target %d)", i, in.Target)
			}
		case Add, Move:
			if in.Delta == 0 {
				return fmt.Errorf("%s at %d has a zero delta", in.Op, i)
			}
		}
	}
	return nil
}
