package ir_test

import (
	"testing"

	"github.com/stanimation3d/bessambly/ir"
)

func TestBuffer_AppendAndLen(t *testing.T) {
	buf := &ir.Buffer{}
	buf.Append(ir.Instruction{Op: ir.ADDI})
	buf.Append(ir.Instruction{Op: ir.HALT})

	if buf.Len() != 2 {
		t.Fatalf("expected length 2, got %d", buf.Len())
	}
}

func TestAddressOf_IsFourByteAligned(t *testing.T) {
	cases := map[int]uint32{0: 0, 1: 4, 2: 8, 10: 40}
	for index, want := range cases {
		if got := ir.AddressOf(index); got != want {
			t.Errorf("AddressOf(%d): expected %d, got %d", index, want, got)
		}
	}
}

func TestOp_StringNamesEveryOp(t *testing.T) {
	ops := []ir.Op{ir.ADDI, ir.ADD, ir.SUB, ir.ANDI, ir.ORI, ir.LW, ir.SW,
		ir.BEQ, ir.BNE, ir.BLT, ir.BGE, ir.JAL, ir.JALR, ir.LUI, ir.HALT}
	for _, op := range ops {
		if op.String() == "" {
			t.Errorf("expected a non-empty name for op %d", int(op))
		}
	}
}
