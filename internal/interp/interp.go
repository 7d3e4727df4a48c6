// Completion: 100% - Quickened interpreter complete
package interp

import (
	"fmt"
	"runtime"

	"github.com/xyproto/bfjit/internal/diag"
	"github.com/xyproto/bfjit/internal/ir"
	"github.com/xyproto/bfjit/internal/tape"
)

// opcode is a quickened instruction, specialized from the IR for the common cases
type opcode uint8

const (
	opAdd opcode = iota
	opInc
	opDec
	opMove
	opRight
	opLeft
	opOut
	opIn
	opClear
	opCopy // cells[p+arg] += cells[p]
	opMul  // cells[p+arg] += cells[p] * mul
	opJz   // jump past arg if the cell is zero
	opJnz  // jump back to arg if the cell is non-zero
)

type op struct {
	code opcode
	mul  byte
	arg  int
}

// Interpreter runs IR programs without generating machine code. It works on every platform.
type Interpreter struct{}

// New returns an interpreter
func New() *Interpreter {
	return &Interpreter{}
}

// Name returns the backend name
func (*Interpreter) Name() string {
	return "interp"
}

// quicken lowers the IR into the op array. Jump targets are indices into the op array.
func quicken(prog ir.Program) ([]op, error) {
	ops := make([]op, 0, len(prog.Code))
	var stack []int
	for i, in := range prog.Code {
		switch in.Op {
		case ir.Nop:
		case ir.Add:
			switch byte(in.Delta) {
			case 0:
			case 1:
				ops = append(ops, op{code: opInc})
			case 255:
				ops = append(ops, op{code: opDec})
			default:
				ops = append(ops, op{code: opAdd, mul: byte(in.Delta)})
			}
		case ir.Move:
			switch in.Delta {
			case 1:
				ops = append(ops, op{code: opRight})
			case -1:
				ops = append(ops, op{code: opLeft})
			default:
				ops = append(ops, op{code: opMove, arg: in.Delta})
			}
		case ir.Output:
			ops = append(ops, op{code: opOut})
		case ir.Input:
			ops = append(ops, op{code: opIn})
		case ir.Clear:
			ops = append(ops, op{code: opClear})
		case ir.CopyMul:
			for _, term := range in.Terms {
				if term.Multiplier == 1 {
					ops = append(ops, op{code: opCopy, arg: term.Offset})
				} else {
					ops = append(ops, op{code: opMul, arg: term.Offset, mul: term.Multiplier})
				}
			}
		case ir.LoopStart:
			stack = append(stack, len(ops))
			ops = append(ops, op{code: opJz})
		case ir.LoopEnd:
			if len(stack) == 0 {
				return nil, diag.Wrap(diag.KindInternal, nil, "loop end at %d has no start", i)
			}
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			ops[start].arg = len(ops) + 1
			ops = append(ops, op{code: opJnz, arg: start + 1})
		default:
			return nil, diag.Wrap(diag.KindInternal, nil, "unknown op %s at %d", in.Op, i)
		}
	}
	if len(stack) > 0 {
		return nil, diag.Wrap(diag.KindInternal, nil, "%d loops are never closed", len(stack))
	}
	return ops, nil
}

// Execute runs prog over t, starting at t.Pos. A data pointer that leaves the
// tape stops the run with a TapeFault; t.Pos then holds the offending position.
func (*Interpreter) Execute(prog ir.Program, t *tape.Tape, io tape.IO) (err error) {
	ops, err := quicken(prog)
	if err != nil {
		return err
	}

	cells := t.Cells
	p := t.Pos
	calling := false // a panic raised inside an IO callback is not ours to report
	defer func() {
		t.Pos = p
		if r := recover(); r != nil {
			if re, ok := r.(runtime.Error); ok && !calling {
				err = &diag.Error{
					Kind:    diag.TapeFault,
					Offset:  -1,
					Message: fmt.Sprintf("data pointer %d is off the tape of %d cells", p, len(cells)),
					Err:     re,
				}
				return
			}
			panic(r)
		}
	}()

	for pc := 0; pc < len(ops); pc++ {
		o := &ops[pc]
		switch o.code {
		case opAdd:
			cells[p] += o.mul
		case opInc:
			cells[p]++
		case opDec:
			cells[p]--
		case opMove:
			p += o.arg
		case opRight:
			p++
		case opLeft:
			p--
		case opOut:
			c := cells[p]
			calling = true
			io.PutByte(c)
			calling = false
		case opIn:
			_ = cells[p]
			calling = true
			c := io.GetByte()
			calling = false
			cells[p] = byte(c)
		case opClear:
			cells[p] = 0
		case opCopy:
			cells[p+o.arg] += cells[p]
		case opMul:
			cells[p+o.arg] += cells[p] * o.mul
		case opJz:
			if cells[p] == 0 {
				pc = o.arg - 1
			}
		case opJnz:
			if cells[p] != 0 {
				pc = o.arg - 1
			}
		}
	}
	return nil
}
