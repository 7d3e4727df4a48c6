// Completion: 100% - Clear and copy/multiply loop rewriting complete
package ir

// peephole.go - rewriting of innermost loops
//
// Two patterns are recognized, both by evaluating the loop body symbolically:
//
//	[-] [+] [---]         cell = 0                               -> Clear
//	[->+>++<<] [>-<-] ... cell[k] += cell * m for each k, cell=0 -> CopyMul, Clear
//
// A body only qualifies when it is made of Add and Move, returns to the cell it
// started on, and changes that cell by an odd amount per iteration. An odd step
// visits every value mod 256, so the loop always terminates and the iteration
// count can be computed up front.

// RewriteLoop tries to replace a loop body (the instructions strictly between
// LoopStart and LoopEnd) with straight-line code. ok is false when the body does
// not match, in which case the loop must be kept as it is. The returned slice is
// freshly allocated.
func RewriteLoop(body []Instruction, maxOffsets int) ([]Instruction, bool) {
	if maxOffsets <= 0 {
		maxOffsets = DefaultMaxOffsets
	}

	// Clear loop: a single odd Add
	if len(body) == 1 && body[0].Op == Add && body[0].Delta&1 != 0 {
		return []Instruction{{Op: Clear}}, true
	}

	offset := 0
	deltas := make(map[int]int)
	var order []int // non-zero offsets in first-touch order
	for _, in := range body {
		switch in.Op {
		case Move:
			offset += in.Delta
		case Add:
			if _, seen := deltas[offset]; !seen && offset != 0 {
				order = append(order, offset)
				if len(order) > maxOffsets {
					return nil, false
				}
			}
			deltas[offset] += in.Delta
		default:
			return nil, false
		}
	}
	if offset != 0 {
		return nil, false
	}
	d := uint8(deltas[0])
	if d&1 == 0 {
		return nil, false
	}

	// The loop runs v * inverse(-d) times for a start value v
	scale := inverse(-d)
	terms := make([]Term, 0, len(order))
	for _, off := range order {
		m := uint8(deltas[off]) * scale
		if m == 0 {
			continue
		}
		terms = append(terms, Term{Offset: off, Multiplier: m})
	}

	if len(terms) == 0 {
		return []Instruction{{Op: Clear}}, true
	}
	return []Instruction{{Op: CopyMul, Terms: terms}, {Op: Clear}}, true
}

// inverse returns the multiplicative inverse of an odd byte mod 256
func inverse(a uint8) uint8 {
	x := a // correct to 3 bits for any odd a
	for i := 0; i < 3; i++ {
		x *= 2 - a*x
	}
	return x
}

// Optimize rewrites every loop that contains no nested loop, relinking the
// brackets afterwards. Running it on already optimized code changes nothing.
func Optimize(p Program) Program {
	code := make([]Instruction, 0, len(p.Code))
	var stack []int
	for i := 0; i < len(p.Code); i++ {
		in := p.Code[i]
		switch in.Op {
		case LoopStart:
			end := in.Target
			if end > i && end < len(p.Code) && innermost(p.Code[i+1:end]) {
				if rewritten, ok := RewriteLoop(p.Code[i+1:end], DefaultMaxOffsets); ok {
					logger().Debugf("rewrote loop at %d", in.Pos)
					for j := range rewritten {
						rewritten[j].Pos = in.Pos
					}
					code = append(code, rewritten...)
					i = end
					continue
				}
			}
			stack = append(stack, len(code))
			code = append(code, Instruction{Op: LoopStart, Pos: in.Pos})
		case LoopEnd:
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			code[start].Target = len(code)
			code = append(code, Instruction{Op: LoopEnd, Target: start, Pos: in.Pos})
		default:
			in.Terms = append([]Term(nil), in.Terms...)
			code = append(code, in)
		}
	}
	return Program{Code: code, Optimized: true}
}

func innermost(body []Instruction) bool {
	for _, in := range body {
		if in.Op == LoopStart || in.Op == LoopEnd {
			return false
		}
	}
	return true
}
