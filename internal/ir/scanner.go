// Completion: 100% - Scanner complete
package ir

// scanner.go - source bytes to fused tokens
//
// Only the eight command bytes mean anything; every other byte is a comment.
// Runs of + and - fuse into one Add token, runs of > and < into one Move token.
// Output, Input and the two brackets never fuse.

// Kind is the class of a scanned token
type Kind uint8

const (
	TokAdd Kind = iota + 1
	TokMove
	TokOutput
	TokInput
	TokLoopStart
	TokLoopEnd
)

func (k Kind) String() string {
	switch k {
	case TokAdd:
		return "+"
	case TokMove:
		return ">"
	case TokOutput:
		return "."
	case TokInput:
		return ","
	case TokLoopStart:
		return "["
	case TokLoopEnd:
		return "]"
	default:
		return "?"
	}
}

// Token is the raw scanned representation: a fused run of one command class.
// Count is signed (> and + count up, < and - count down) and only meaningful for TokAdd and TokMove.
type Token struct {
	Kind  Kind
	Count int
	Pos   int
}

// classify maps a source byte to its token class and step
func classify(c byte) (Kind, int) {
	switch c {
	case '+':
		return TokAdd, 1
	case '-':
		return TokAdd, -1
	case '>':
		return TokMove, 1
	case '<':
		return TokMove, -1
	case '.':
		return TokOutput, 0
	case ',':
		return TokInput, 0
	case '[':
		return TokLoopStart, 0
	case ']':
		return TokLoopEnd, 0
	}
	return 0, 0
}

// Scanner fuses source bytes into tokens, keeping one pending run
type Scanner struct {
	tokens  []Token
	pending Token // Kind 0 means nothing pending
}

// Scan converts source bytes into a fused token stream. It never fails.
func Scan(src []byte) []Token {
	s := &Scanner{tokens: make([]Token, 0, len(src)/2+1)}
	for i, c := range src {
		s.Feed(c, i)
	}
	return s.Finish()
}

// Feed consumes one source byte found at pos
func (s *Scanner) Feed(c byte, pos int) {
	kind, step := classify(c)
	switch kind {
	case 0:
		return
	case TokAdd, TokMove:
		if s.pending.Kind != kind {
			s.flush()
			s.open(kind, pos)
		}
		s.pending.Count += step
	default:
		s.flush()
		s.tokens = append(s.tokens, Token{Kind: kind, Pos: pos})
	}
}

// Finish flushes the pending run and returns the token stream
func (s *Scanner) Finish() []Token {
	s.flush()
	return s.tokens
}

// open starts a new run. A run of the same class that was emitted right before a
// cancelled-out run (e.g. the first + in "+><+") is reopened instead, so two Add
// or two Move tokens are never adjacent.
func (s *Scanner) open(kind Kind, pos int) {
	if n := len(s.tokens); n > 0 && s.tokens[n-1].Kind == kind {
		s.pending = s.tokens[n-1]
		s.tokens = s.tokens[:n-1]
		return
	}
	s.pending = Token{Kind: kind, Pos: pos}
}

func (s *Scanner) flush() {
	if s.pending.Kind != 0 && s.pending.Count != 0 {
		s.tokens = append(s.tokens, s.pending)
	}
	s.pending = Token{}
}
