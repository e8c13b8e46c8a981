// Package lower translates a parsed program into the RISC-V micro-IR
// instruction buffer, assigning synthetic registers via a
// static name mapping — there is no liveness analysis.
//
// Label-address accounting: labels
// are zero-width here. Lower tracks the real emitted-instruction address
// for every label as it walks the program and returns that map; it does
// not reuse the semantic analyzer's pass-1 counter, which also counts
// label statements.
package lower

import (
	"github.com/stanimation3d/bessambly/ast"
	"github.com/stanimation3d/bessambly/errs"
	"github.com/stanimation3d/bessambly/ir"
	"github.com/stanimation3d/bessambly/token"
)

// Result is the output of lowering: the instruction buffer and the real
// (zero-width-label) address of every label definition, keyed by name.
type Result struct {
	Buffer *ir.Buffer
	Labels map[string]uint32
}

// Lower translates prog, statement by statement, into an instruction
// buffer. The symbol table produced by the semantic analyzer is not
// consulted here — labels are resolved from Lower's own address map
// instead, since the semantic table's addressing is not byte-accurate.
func Lower(prog *ast.Program) (*Result, *errs.CompileError) {
	buf := &ir.Buffer{}
	labels := make(map[string]uint32)

	for _, stmt := range prog.Statements {
		switch stmt.Kind {
		case ast.StmtLabel:
			labels[stmt.Label] = ir.AddressOf(buf.Len())

		case ast.StmtAssign:
			if err := lowerAssign(buf, stmt); err != nil {
				return nil, err
			}

		case ast.StmtGoto:
			buf.Append(ir.Instruction{Op: ir.JAL, Rd: ir.X0, Target: stmt.Target})

		case ast.StmtIfGoto:
			if err := lowerIfGoto(buf, stmt); err != nil {
				return nil, err
			}
		}
	}

	buf.Append(ir.Instruction{Op: ir.HALT})

	return &Result{Buffer: buf, Labels: labels}, nil
}

func lowerAssign(buf *ir.Buffer, stmt ast.Statement) *errs.CompileError {
	switch stmt.Dest.Kind {
	case ast.OpRegister:
		dest, err := registerFor(stmt.Dest.Name, stmt.Line)
		if err != nil {
			return err
		}
		return lowerExprInto(buf, stmt.Expr, dest, stmt.Line)

	case ast.OpMemory:
		if err := lowerExprInto(buf, stmt.Expr, ir.T0, stmt.Line); err != nil {
			return err
		}
		buf.Append(ir.Instruction{Op: ir.SW, Rs1: ir.X0, Rs2: ir.T0, Imm: stmt.Dest.Memory})
		return nil

	default:
		// Rejected earlier by the parser; unreachable for well-formed
		// programs.
		return errs.New(errs.Semantic, stmt.Line, "invalid assignment destination")
	}
}

// lowerExprInto lowers expr into dest. A single-operand expression is one
// operand load; a binary expression loads both sides into t0/t1 first.
func lowerExprInto(buf *ir.Buffer, expr ast.Expression, dest uint32, line int) *errs.CompileError {
	if !expr.IsBin {
		return loadOperand(buf, expr.Left, dest, line)
	}

	if err := loadOperand(buf, expr.Left, ir.T0, line); err != nil {
		return err
	}
	if err := loadOperand(buf, expr.Right, ir.T1, line); err != nil {
		return err
	}

	op := binaryOp(expr.Op)
	buf.Append(ir.Instruction{Op: op, Rd: dest, Rs1: ir.T0, Rs2: ir.T1})
	return nil
}

// binaryOp maps a binary expression operator to its micro-IR op. ADD and
// SUB are implemented directly; the remaining operators (*, /, &, |)
// currently fall back to ADD — multiply, divide and bitwise ops have no
// dedicated RV32I lowering here.
func binaryOp(t token.Type) ir.Op {
	switch t {
	case token.MINUS:
		return ir.SUB
	default:
		return ir.ADD
	}
}

func loadOperand(buf *ir.Buffer, opnd ast.Operand, dest uint32, line int) *errs.CompileError {
	switch opnd.Kind {
	case ast.OpRegister:
		src, err := registerFor(opnd.Name, line)
		if err != nil {
			return err
		}
		buf.Append(ir.Instruction{Op: ir.ADD, Rd: dest, Rs1: src, Rs2: ir.X0})
		return nil

	case ast.OpImmediate:
		// The immediate is truncated to its low 12 bits at encode time;
		// the 12-bit signed range of ADDI is not enforced here.
		buf.Append(ir.Instruction{Op: ir.ADDI, Rd: dest, Rs1: ir.X0, Imm: opnd.Value})
		return nil

	case ast.OpMemory:
		buf.Append(ir.Instruction{Op: ir.LW, Rd: dest, Rs1: ir.X0, Imm: opnd.Memory})
		return nil

	default:
		return errs.New(errs.Semantic, line, "invalid operand")
	}
}

func lowerIfGoto(buf *ir.Buffer, stmt ast.Statement) *errs.CompileError {
	if err := loadOperand(buf, stmt.Left, ir.T0, stmt.Line); err != nil {
		return err
	}
	if err := loadOperand(buf, stmt.Right, ir.T1, stmt.Line); err != nil {
		return err
	}

	// > and <= are synthesized from < and >= by swapping operands
	// (a > b  <=>  b < a;  a <= b  <=>  b >= a),.
	rs1, rs2 := ir.T0, ir.T1
	var op ir.Op
	switch stmt.Cond {
	case token.EQ:
		op = ir.BEQ
	case token.NE:
		op = ir.BNE
	case token.LT:
		op = ir.BLT
	case token.GE:
		op = ir.BGE
	case token.GT:
		op = ir.BLT
		rs1, rs2 = ir.T1, ir.T0
	case token.LE:
		op = ir.BGE
		rs1, rs2 = ir.T1, ir.T0
	default:
		return errs.New(errs.Semantic, stmt.Line, "invalid condition operator")
	}

	buf.Append(ir.Instruction{Op: op, Rs1: rs1, Rs2: rs2, Target: stmt.Target})
	return nil
}

// registerFor maps a Bessambly register name to its RV32I saved register.
// A single uppercase letter maps by ASCII offset from s1: A->s1, B->s2,
// C->s3, and so on through K->s11; later letters have no saved register
// and are an error. Any longer identifier falls back to t0. x0 and t0-t2 are never valid user register names, but nothing
// here rejects them explicitly — they simply alias into the same
// temporaries the lowerer itself uses.
func registerFor(name string, line int) (uint32, *errs.CompileError) {
	if name == "" {
		return 0, errs.New(errs.Semantic, line, "register operand has an empty name")
	}
	if len(name) != 1 || name[0] < 'A' || name[0] > 'Z' {
		return ir.T0, nil
	}

	offset := int(name[0] - 'A')
	var reg uint32
	if offset == 0 {
		reg = ir.S1 // s1 == x9
	} else {
		reg = 18 + uint32(offset-1) // s2==x18, s3==x19, ..., s11==x27
	}
	if reg > 27 {
		return 0, errs.New(errs.Semantic, line, "register %q has no RV32I saved-register mapping", name)
	}
	return reg, nil
}
