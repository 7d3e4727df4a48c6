// Completion: 100% - ARM64 backend complete
package native

import (
	"fmt"

	"github.com/xyproto/bfjit/internal/diag"
	"github.com/xyproto/bfjit/internal/ir"
)

// ARM64 emits AArch64 code (AAPCS64).
//
//	x19  data pointer
//	x20  output callback
//	x21  input callback
//	w9-w12, x11  scratch, reloaded after every call
type ARM64 struct{}

const (
	arm64Ret      = 0xD65F03C0
	arm64LdrbW9   = 0x39400269 // ldrb w9, [x19]
	arm64StrbW9   = 0x39000269 // strb w9, [x19]
	arm64LdrbW10  = 0x3940026A // ldrb w10, [x19]
	arm64Cbz      = 0x34000009 // cbz w9, #0
	arm64Cbnz     = 0x35000009 // cbnz w9, #0
	arm64Imm19Max = 1<<18 - 1
)

func (ARM64) Name() string {
	return "aarch64"
}

func (ARM64) InitLen() int {
	return 5 * 4
}

func (ARM64) CleanupLen() int {
	return 4 * 4
}

func (ARM64) MaxLen(in ir.Instruction) int {
	switch in.Op {
	case ir.Add, ir.Move:
		return 3 * 4
	case ir.Output, ir.Input, ir.LoopStart, ir.LoopEnd:
		return 2 * 4
	case ir.Clear:
		return 4
	case ir.CopyMul:
		return 4 + 7*4*len(in.Terms)
	default:
		return 0
	}
}

func (ARM64) CompileInit(buf *CodeBuffer) int {
	n := buf.Emit32(0xA9BF53F3)  // stp x19, x20, [sp, #-16]!
	n += buf.Emit32(0xA9BF7BF5) // stp x21, x30, [sp, #-16]!
	n += buf.Emit32(0xAA0003F3) // mov x19, x0
	n += buf.Emit32(0xAA0103F4) // mov x20, x1
	n += buf.Emit32(0xAA0203F5) // mov x21, x2
	return n
}

func (ARM64) CompileCleanup(buf *CodeBuffer) int {
	n := buf.Emit32(0xAA1303E0)  // mov x0, x19
	n += buf.Emit32(0xA8C17BF5) // ldp x21, x30, [sp], #16
	n += buf.Emit32(0xA8C153F3) // ldp x19, x20, [sp], #16
	n += buf.Emit32(arm64Ret)
	return n
}

// movImm loads a 32-bit unsigned value into xd with movz (and movk when needed)
func movImm(buf *CodeBuffer, rd uint32, v uint32) int {
	n := buf.Emit32(0xD2800000 | (v&0xFFFF)<<5 | rd) // movz xd, #lo
	if hi := v >> 16; hi != 0 {
		n += buf.Emit32(0xF2A00000 | hi<<5 | rd) // movk xd, #hi, lsl #16
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (ARM64) CompileInstruction(in ir.Instruction, index int, buf *CodeBuffer) (int, error) {
	switch in.Op {
	case ir.Nop:
		return 0, nil

	case ir.Add:
		v := uint32(byte(in.Delta))
		if v == 0 {
			return 0, nil
		}
		n := buf.Emit32(arm64LdrbW9)
		n += buf.Emit32(0x11000129 | v<<10) // add w9, w9, #v
		n += buf.Emit32(arm64StrbW9)
		return n, nil

	case ir.Move:
		d := in.Delta
		m := abs(d)
		switch {
		case m < 1<<12 && d >= 0:
			return buf.Emit32(0x91000273 | uint32(m)<<10), nil // add x19, x19, #m
		case m < 1<<12:
			return buf.Emit32(0xD1000273 | uint32(m)<<10), nil // sub x19, x19, #m
		case int64(m) < 1<<32:
			n := movImm(buf, 9, uint32(m))
			if d >= 0 {
				return n + buf.Emit32(0x8B090273), nil // add x19, x19, x9
			}
			return n + buf.Emit32(0xCB090273), nil // sub x19, x19, x9
		default:
			return 0, fmt.Errorf("move of %d cells does not fit in 32 bits", d)
		}

	case ir.Output:
		n := buf.Emit32(0x39400260)       // ldrb w0, [x19]
		return n + buf.Emit32(0xD63F0280), nil // blr x20

	case ir.Input:
		n := buf.Emit32(0xD63F02A0)       // blr x21
		return n + buf.Emit32(0x39000260), nil // strb w0, [x19]

	case ir.Clear:
		return buf.Emit32(0x3900027F), nil // strb wzr, [x19]

	case ir.CopyMul:
		n := buf.Emit32(arm64LdrbW10)
		for _, t := range in.Terms {
			off := t.Offset
			m := abs(off)
			if int64(m) >= 1<<32 {
				return n, fmt.Errorf("offset %d does not fit in 32 bits", off)
			}
			load, store := uint32(0x39400169), uint32(0x39000169) // ldrb/strb w9, [x11]
			switch {
			case off > 0 && off < 1<<12:
				load = arm64LdrbW9 | uint32(off)<<10 // ldrb w9, [x19, #off]
				store = arm64StrbW9 | uint32(off)<<10
			case off < 0 && m < 1<<12:
				n += buf.Emit32(0xD100026B | uint32(m)<<10) // sub x11, x19, #m
			default:
				n += movImm(buf, 11, uint32(m))
				if off >= 0 {
					n += buf.Emit32(0x8B0B026B) // add x11, x19, x11
				} else {
					n += buf.Emit32(0xCB0B026B) // sub x11, x19, x11
				}
			}
			n += buf.Emit32(load)
			if t.Multiplier == 1 {
				n += buf.Emit32(0x0B0A0129) // add w9, w9, w10
			} else {
				n += buf.Emit32(0x5280000C | uint32(t.Multiplier)<<5) // movz w12, #mul
				n += buf.Emit32(0x1B0C2549)                          // madd w9, w10, w12, w9
			}
			n += buf.Emit32(store)
		}
		return n, nil

	case ir.LoopStart:
		n := buf.Emit32(arm64LdrbW9)
		site := buf.Len()
		n += buf.Emit32(arm64Cbz)
		buf.Defer(index, Fixup{Site: site, Resume: buf.Len()})
		return n, nil

	case ir.LoopEnd:
		f, ok := buf.Resolve(in.Target)
		if !ok {
			return 0, diag.Wrap(diag.KindInternal, nil, "loop end %d has no pending start %d", index, in.Target)
		}
		n := buf.Emit32(arm64LdrbW9)
		site := buf.Len()
		back := (f.Resume - site) / 4
		forward := (site + 4 - f.Site) / 4
		if forward > arm64Imm19Max {
			return n, fmt.Errorf("loop of %d bytes is too long for cbz", site+4-f.Site)
		}
		n += buf.Emit32(arm64Cbnz | imm19(back))
		// the cbz at the loop start lands right after this cbnz
		buf.Patch32(f.Site, buf.Uint32(f.Site)|imm19(forward))
		return n, nil

	default:
		return 0, diag.Wrap(diag.KindInternal, nil, "unknown op %s", in.Op)
	}
}

// imm19 encodes a word offset into the imm19 field of cbz/cbnz
func imm19(words int) uint32 {
	return (uint32(words) & 0x7FFFF) << 5
}
