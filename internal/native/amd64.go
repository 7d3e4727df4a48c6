// Completion: 100% - x86_64 backend complete
package native

import (
	"fmt"
	"math"

	"github.com/xyproto/bfjit/internal/diag"
	"github.com/xyproto/bfjit/internal/ir"
)

// ABI selects the x86_64 calling convention
type ABI int

const (
	SysV  ABI = iota // rdi, rsi, rdx
	Win64            // rcx, rdx, r8 and 32 bytes of shadow space
)

func (a ABI) String() string {
	if a == Win64 {
		return "win64"
	}
	return "sysv"
}

// AMD64 emits x86_64 code.
//
//	rbx  data pointer
//	r14  output callback
//	r12  input callback
//
// All three are callee-saved in both ABIs, so they survive the callback calls.
type AMD64 struct {
	ABI ABI
}

func (a AMD64) Name() string {
	return "x86_64-" + a.ABI.String()
}

func (a AMD64) InitLen() int {
	if a.ABI == Win64 {
		return 18
	}
	return 14
}

func (a AMD64) CleanupLen() int {
	if a.ABI == Win64 {
		return 13
	}
	return 9
}

func (a AMD64) MaxLen(in ir.Instruction) int {
	switch in.Op {
	case ir.Add, ir.Clear:
		return 3
	case ir.Move:
		return 7
	case ir.Output:
		return 6
	case ir.Input:
		return 5
	case ir.CopyMul:
		return 3 + 9*len(in.Terms)
	case ir.LoopStart, ir.LoopEnd:
		return 9
	default:
		return 0
	}
}

func (a AMD64) CompileInit(buf *CodeBuffer) int {
	n := buf.Emit(0x53)       // push rbx
	n += buf.Emit(0x41, 0x54) // push r12
	n += buf.Emit(0x41, 0x56) // push r14
	if a.ABI == Win64 {
		n += buf.Emit(0x48, 0x83, 0xEC, 0x20) // sub rsp, 32
		n += buf.Emit(0x48, 0x89, 0xCB)       // mov rbx, rcx
		n += buf.Emit(0x49, 0x89, 0xD6)       // mov r14, rdx
		n += buf.Emit(0x4D, 0x89, 0xC4)       // mov r12, r8
		return n
	}
	n += buf.Emit(0x48, 0x89, 0xFB) // mov rbx, rdi
	n += buf.Emit(0x49, 0x89, 0xF6) // mov r14, rsi
	n += buf.Emit(0x49, 0x89, 0xD4) // mov r12, rdx
	return n
}

func (a AMD64) CompileCleanup(buf *CodeBuffer) int {
	n := buf.Emit(0x48, 0x89, 0xD8) // mov rax, rbx
	if a.ABI == Win64 {
		n += buf.Emit(0x48, 0x83, 0xC4, 0x20) // add rsp, 32
	}
	n += buf.Emit(0x41, 0x5E) // pop r14
	n += buf.Emit(0x41, 0x5C) // pop r12
	n += buf.Emit(0x5B)       // pop rbx
	n += buf.Emit(0xC3)       // ret
	return n
}

func (a AMD64) CompileInstruction(in ir.Instruction, index int, buf *CodeBuffer) (int, error) {
	switch in.Op {
	case ir.Nop:
		return 0, nil

	case ir.Add:
		switch v := byte(in.Delta); v {
		case 0:
			return 0, nil
		case 1:
			return buf.Emit(0xFE, 0x03), nil // inc byte [rbx]
		case 0xFF:
			return buf.Emit(0xFE, 0x0B), nil // dec byte [rbx]
		default:
			return buf.Emit(0x80, 0x03, v), nil // add byte [rbx], imm8
		}

	case ir.Move:
		d := in.Delta
		switch {
		case d == 1:
			return buf.Emit(0x48, 0xFF, 0xC3), nil // inc rbx
		case d == -1:
			return buf.Emit(0x48, 0xFF, 0xCB), nil // dec rbx
		case d >= math.MinInt8 && d <= math.MaxInt8:
			return buf.Emit(0x48, 0x83, 0xC3, byte(int8(d))), nil // add rbx, imm8
		case d >= math.MinInt32 && d <= math.MaxInt32:
			n := buf.Emit(0x48, 0x81, 0xC3) // add rbx, imm32
			return n + buf.Emit32(uint32(int32(d))), nil
		default:
			return 0, fmt.Errorf("move of %d cells does not fit in 32 bits", d)
		}

	case ir.Output:
		var n int
		if a.ABI == Win64 {
			n = buf.Emit(0x0F, 0xB6, 0x0B) // movzx ecx, byte [rbx]
		} else {
			n = buf.Emit(0x0F, 0xB6, 0x3B) // movzx edi, byte [rbx]
		}
		return n + buf.Emit(0x41, 0xFF, 0xD6), nil // call r14

	case ir.Input:
		n := buf.Emit(0x41, 0xFF, 0xD4)     // call r12
		return n + buf.Emit(0x88, 0x03), nil // mov [rbx], al

	case ir.Clear:
		return buf.Emit(0xC6, 0x03, 0x00), nil // mov byte [rbx], 0

	case ir.CopyMul:
		n := buf.Emit(0x0F, 0xB6, 0x03) // movzx eax, byte [rbx]
		for _, t := range in.Terms {
			if t.Offset < math.MinInt32 || t.Offset > math.MaxInt32 {
				return n, fmt.Errorf("offset %d does not fit in 32 bits", t.Offset)
			}
			// modrm reg field: al for a plain copy, cl for the product
			reg := byte(0)
			if t.Multiplier != 1 {
				n += buf.Emit(0x6B, 0xC8, t.Multiplier) // imul ecx, eax, imm8
				reg = 1
			}
			if t.Offset >= math.MinInt8 && t.Offset <= math.MaxInt8 {
				n += buf.Emit(0x00, 0x43|reg<<3, byte(int8(t.Offset))) // add [rbx+disp8], al/cl
			} else {
				n += buf.Emit(0x00, 0x83|reg<<3) // add [rbx+disp32], al/cl
				n += buf.Emit32(uint32(int32(t.Offset)))
			}
		}
		return n, nil

	case ir.LoopStart:
		n := buf.Emit(0x80, 0x3B, 0x00) // cmp byte [rbx], 0
		n += buf.Emit(0x0F, 0x84)       // je rel32
		site := buf.Len()
		n += buf.Emit32(0)
		buf.Defer(index, Fixup{Site: site, Resume: buf.Len()})
		return n, nil

	case ir.LoopEnd:
		f, ok := buf.Resolve(in.Target)
		if !ok {
			return 0, diag.Wrap(diag.KindInternal, nil, "loop end %d has no pending start %d", index, in.Target)
		}
		n := buf.Emit(0x80, 0x3B, 0x00) // cmp byte [rbx], 0
		n += buf.Emit(0x0F, 0x85)       // jne rel32
		site := buf.Len()
		n += buf.Emit32(uint32(int32(f.Resume - (site + 4))))
		// the je at the loop start lands right after this jne
		buf.Patch32(f.Site, uint32(int32(buf.Len()-f.Resume)))
		return n, nil

	default:
		return 0, diag.Wrap(diag.KindInternal, nil, "unknown op %s", in.Op)
	}
}
