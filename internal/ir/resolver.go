// Completion: 100% - Loop resolution complete, leaf loops rewritten on close
package ir

import (
	"github.com/tliron/commonlog"

	"github.com/xyproto/bfjit/internal/diag"
)

// DefaultMaxOffsets bounds the number of distinct cells a copy loop may touch
const DefaultMaxOffsets = 30

// Options controls resolution
type Options struct {
	NoOptimize bool
	MaxOffsets int // 0 means DefaultMaxOffsets
}

func (o Options) maxOffsets() int {
	if o.MaxOffsets <= 0 {
		return DefaultMaxOffsets
	}
	return o.MaxOffsets
}

type loopEntry struct {
	index int  // index of the LoopStart in the code
	pos   int  // source offset of the [
	leaf  bool // no nested loop seen yet
}

func logger() commonlog.Logger {
	return commonlog.GetLogger("bfjit.ir")
}

// Compile scans and resolves source in one step. src is only used for error locations.
func Compile(src []byte, opts Options) (Program, error) {
	prog, err := resolve(Scan(src), opts)
	if err != nil {
		if de, ok := err.(*diag.Error); ok {
			de.Location = diag.Locate(src, de.Offset)
		}
		return Program{}, err
	}
	return prog, nil
}

// Resolve links the brackets of a token stream into a Program. Leaf loops are
// handed to RewriteLoop as soon as their ] is seen, unless opts.NoOptimize is set.
// Error locations only carry the byte offset; use Compile to get line and column.
func Resolve(tokens []Token, opts Options) (Program, error) {
	return resolve(tokens, opts)
}

func resolve(tokens []Token, opts Options) (Program, error) {
	code := make([]Instruction, 0, len(tokens))
	stack := make([]loopEntry, 0, 16)
	limit := opts.maxOffsets()

	for _, tok := range tokens {
		switch tok.Kind {
		case TokAdd:
			code = append(code, Instruction{Op: Add, Delta: tok.Count, Pos: tok.Pos})
		case TokMove:
			code = append(code, Instruction{Op: Move, Delta: tok.Count, Pos: tok.Pos})
		case TokOutput:
			code = append(code, Instruction{Op: Output, Pos: tok.Pos})
		case TokInput:
			code = append(code, Instruction{Op: Input, Pos: tok.Pos})
		case TokLoopStart:
			if n := len(stack); n > 0 {
				stack[n-1].leaf = false
			}
			stack = append(stack, loopEntry{index: len(code), pos: tok.Pos, leaf: true})
			code = append(code, Instruction{Op: LoopStart, Pos: tok.Pos})
		case TokLoopEnd:
			n := len(stack)
			if n == 0 {
				return Program{}, &diag.Error{
					Kind:    diag.UnmatchedCloseBracket,
					Offset:  tok.Pos,
					Message: "no loop is open here",
				}
			}
			top := stack[n-1]
			stack = stack[:n-1]

			if top.leaf && !opts.NoOptimize {
				if rewritten, ok := RewriteLoop(code[top.index+1:], limit); ok {
					logger().Debugf("rewrote loop at %d: %d instructions -> %d", top.pos, len(code)-top.index+1, len(rewritten))
					for i := range rewritten {
						rewritten[i].Pos = top.pos
					}
					code = append(code[:top.index], rewritten...)
					continue
				}
			}
			end := len(code)
			code = append(code, Instruction{Op: LoopEnd, Target: top.index, Pos: tok.Pos})
			code[top.index].Target = end
		default:
			return Program{}, diag.Wrap(diag.KindInternal, nil, "unknown token kind %d at %d", tok.Kind, tok.Pos)
		}
	}

	if len(stack) > 0 {
		return Program{}, &diag.Error{
			Kind:    diag.UnmatchedOpenBracket,
			Offset:  stack[0].pos,
			Message: "loop is never closed",
		}
	}
	return Program{Code: code, Optimized: !opts.NoOptimize}, nil
}
