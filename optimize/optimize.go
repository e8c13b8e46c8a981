// Package optimize rewrites an instruction buffer in place under a set of
// flags derived from an optimization level. It repeats its
// enabled passes until a pass makes no changes, capped at 10 iterations to
// guarantee termination even in the presence of oscillating rewrites.
package optimize

import "github.com/stanimation3d/bessambly/ir"

// Level names an optimization level, mirroring the compiler's -O flags.
type Level int

const (
	O0 Level = iota
	O1
	O2
	O3
	OFast
	OFlash
	OSize
	OZ
	ONano
)

// ParseLevel maps an -O flag suffix ("0","1","2","3","fast","flash","s",
// "z","nano") to a Level. ok is false for an unrecognized suffix.
func ParseLevel(suffix string) (Level, bool) {
	switch suffix {
	case "0":
		return O0, true
	case "1":
		return O1, true
	case "2":
		return O2, true
	case "3":
		return O3, true
	case "fast":
		return OFast, true
	case "flash":
		return OFlash, true
	case "s":
		return OSize, true
	case "z":
		return OZ, true
	case "nano":
		return ONano, true
	default:
		return O0, false
	}
}

// Flags is the set of independently-togglable optimization passes.
type Flags struct {
	RemoveNOP   bool
	Peephole    bool
	DeadCode    bool
	JumpFold    bool
	ConstFold   bool
	RegAlloc    bool
}

// FlagsFor returns the fixed flag set for a given level.
func FlagsFor(level Level) Flags {
	switch level {
	case O0:
		return Flags{}
	case O1:
		return Flags{RemoveNOP: true, Peephole: true}
	case O2:
		return Flags{RemoveNOP: true, Peephole: true, DeadCode: true, JumpFold: true}
	case O3, OFast, OFlash:
		return Flags{RemoveNOP: true, Peephole: true, DeadCode: true, JumpFold: true, ConstFold: true, RegAlloc: true}
	case OSize:
		return Flags{RemoveNOP: true, Peephole: true, JumpFold: true}
	case OZ, ONano:
		return Flags{RemoveNOP: true, Peephole: true, DeadCode: true, JumpFold: true}
	default:
		return Flags{}
	}
}

const maxIterations = 10

// Run rewrites buf in place according to level's flag set, iterating the
// enabled passes to a fixed point (or the 10-iteration cap). It returns
// the total number of instructions removed.
func Run(buf *ir.Buffer, level Level) int {
	flags := FlagsFor(level)
	if level == O0 {
		return 0
	}

	totalRemoved := 0
	changed := true
	for iteration := 0; changed && iteration < maxIterations; iteration++ {
		changed = false

		if flags.RemoveNOP || flags.DeadCode {
			removed := cleanupPass(buf)
			if removed > 0 {
				totalRemoved += removed
				changed = true
			}
		}

		// Peephole, jump-folding and constant-folding are flagged but not
		// implemented — a future pass may add them behind their flags
		// without changing any other component's contract. Register allocation
		// likewise has no effect here: the lowerer's static mapping
		// already assigns every register, and there is no liveness
		// analysis to act on.
	}

	return totalRemoved
}

// registerWritingOps are the only ops whose Rd field is a real destination
// register; for every other op (branches, JAL, SW, HALT) Rd is either
// unused or carries a different meaning, so it must never be treated as a
// dead-write candidate.
var registerWritingOps = map[ir.Op]bool{
	ir.ADDI: true,
	ir.ADD:  true,
	ir.SUB:  true,
	ir.ANDI: true,
	ir.ORI:  true,
	ir.LW:   true,
	ir.LUI:  true,
}

// cleanupPass applies the two always-first rules: drop `ADDI rd, rs1, 0`
// where rd == rs1, and drop any register-writing instruction whose
// destination is x0 (it cannot affect program-observable state). Branches,
// JAL/JALR, SW and HALT are exempted: their Rd field is either a link
// register, unused, or not a destination at all, so the rule must not
// touch them.
func cleanupPass(buf *ir.Buffer) int {
	instructions := buf.Instructions
	writeIdx := 0
	removed := 0

	for readIdx := 0; readIdx < len(instructions); readIdx++ {
		inst := instructions[readIdx]

		redundant := false
		if inst.Op == ir.ADDI && inst.Imm == 0 && inst.Rd == inst.Rs1 {
			redundant = true
		}
		if registerWritingOps[inst.Op] && inst.Rd == ir.X0 {
			redundant = true
		}

		if redundant {
			removed++
			continue
		}

		if writeIdx != readIdx {
			instructions[writeIdx] = inst
		}
		writeIdx++
	}

	buf.Instructions = instructions[:writeIdx]
	return removed
}
