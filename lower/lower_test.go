package lower_test

import (
	"testing"

	"github.com/stanimation3d/bessambly/ir"
	"github.com/stanimation3d/bessambly/lower"
	"github.com/stanimation3d/bessambly/parser"
)

func lowerSource(t *testing.T, src string) *lower.Result {
	t.Helper()
	p := parser.New(src)
	prog, perr := p.Parse()
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	res, lerr := lower.Lower(prog)
	if lerr != nil {
		t.Fatalf("lower error: %v", lerr)
	}
	return res
}

func TestLower_ImmediateAssignment(t *testing.T) {
	res := lowerSource(t, "A = 10\n")
	want := []ir.Instruction{
		{Op: ir.ADDI, Rd: ir.S1, Rs1: ir.X0, Imm: 10},
		{Op: ir.HALT},
	}
	assertInstructions(t, res.Buffer.Instructions, want)
}

func TestLower_BinaryAssignment(t *testing.T) {
	res := lowerSource(t, "C = A + B\n")
	want := []ir.Instruction{
		{Op: ir.ADD, Rd: ir.T0, Rs1: ir.S1, Rs2: ir.X0},
		{Op: ir.ADD, Rd: ir.T1, Rs1: ir.S2, Rs2: ir.X0},
		{Op: ir.ADD, Rd: ir.S3, Rs1: ir.T0, Rs2: ir.T1},
		{Op: ir.HALT},
	}
	assertInstructions(t, res.Buffer.Instructions, want)
}

func TestLower_MemoryAssignment(t *testing.T) {
	res := lowerSource(t, "MEM[0x10] = A\n")
	want := []ir.Instruction{
		{Op: ir.ADD, Rd: ir.T0, Rs1: ir.S1, Rs2: ir.X0},
		{Op: ir.SW, Rs1: ir.X0, Rs2: ir.T0, Imm: 16},
		{Op: ir.HALT},
	}
	assertInstructions(t, res.Buffer.Instructions, want)
}

func TestLower_MemoryOperandLoad(t *testing.T) {
	res := lowerSource(t, "A = MEM[0x20]\n")
	want := []ir.Instruction{
		{Op: ir.LW, Rd: ir.S1, Rs1: ir.X0, Imm: 32},
		{Op: ir.HALT},
	}
	assertInstructions(t, res.Buffer.Instructions, want)
}

func TestLower_Goto_EmitsJAL(t *testing.T) {
	res := lowerSource(t, "LOOP:\nA = 1\ngoto LOOP\n")
	if len(res.Buffer.Instructions) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(res.Buffer.Instructions))
	}
	jal := res.Buffer.Instructions[1]
	if jal.Op != ir.JAL || jal.Rd != ir.X0 || jal.Target != "LOOP" {
		t.Errorf("expected JAL x0, LOOP, got %+v", jal)
	}
	if addr, ok := res.Labels["LOOP"]; !ok || addr != 0 {
		t.Errorf("expected LOOP at address 0 (zero-width), got %d ok=%v", addr, ok)
	}
}

func TestLower_IfGoto_SwapsOperandsForGreaterThan(t *testing.T) {
	res := lowerSource(t, "if A > B goto DONE\nDONE:\nA = 1\n")
	branch := res.Buffer.Instructions[2]
	if branch.Op != ir.BLT {
		t.Fatalf("expected BLT (via operand swap), got %v", branch.Op)
	}
	if branch.Rs1 != ir.T1 || branch.Rs2 != ir.T0 {
		t.Errorf("expected operands swapped (t1,t0), got rs1=%d rs2=%d", branch.Rs1, branch.Rs2)
	}
}

func TestLower_IfGoto_SwapsOperandsForLessOrEqual(t *testing.T) {
	res := lowerSource(t, "if A <= B goto DONE\nDONE:\nA = 1\n")
	branch := res.Buffer.Instructions[2]
	if branch.Op != ir.BGE {
		t.Fatalf("expected BGE (via operand swap), got %v", branch.Op)
	}
	if branch.Rs1 != ir.T1 || branch.Rs2 != ir.T0 {
		t.Errorf("expected operands swapped (t1,t0), got rs1=%d rs2=%d", branch.Rs1, branch.Rs2)
	}
}

func TestLower_IfGoto_DirectConditions(t *testing.T) {
	cases := map[string]ir.Op{
		"==": ir.BEQ,
		"!=": ir.BNE,
		"<":  ir.BLT,
		">=": ir.BGE,
	}
	for cond, want := range cases {
		res := lowerSource(t, "if A "+cond+" B goto DONE\nDONE:\nA = 1\n")
		branch := res.Buffer.Instructions[2]
		if branch.Op != want {
			t.Errorf("condition %q: expected %v, got %v", cond, want, branch.Op)
		}
		if branch.Rs1 != ir.T0 || branch.Rs2 != ir.T1 {
			t.Errorf("condition %q: expected un-swapped operands, got rs1=%d rs2=%d", cond, branch.Rs1, branch.Rs2)
		}
	}
}

func TestLower_MultiCharRegisterFallsBackToT0(t *testing.T) {
	res := lowerSource(t, "foo = 5\n")
	addi := res.Buffer.Instructions[0]
	if addi.Rd != ir.T0 {
		t.Errorf("expected multi-char identifier to fall back to t0, got %d", addi.Rd)
	}
}

func assertInstructions(t *testing.T, got, want []ir.Instruction) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d instructions, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instruction %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}
