// Package encode implements the bit-exact RV32I instruction encoder.
// Each micro-IR instruction becomes one 32-bit word; the caller is
// responsible for writing the resulting words little-endian, in buffer
// order, to the output sink.
package encode

import (
	"fmt"

	"github.com/stanimation3d/bessambly/ir"
)

// Opcodes, per RV32I.
const (
	opImm    = 0x13 // ADDI, ANDI, ORI
	opLoad   = 0x03 // LW (LOAD major opcode, distinct from opImm)
	opReg    = 0x33 // ADD, SUB
	opStore  = 0x23 // SW
	opBranch = 0x63 // BEQ, BNE, BLT, BGE
	opJAL    = 0x6F
	opJALR   = 0x67
	opLUI    = 0x37
	opSystem = 0x73
)

const ebreak = 0x00100073
const nop = 0x00000013

// Resolver looks up the byte address of a label, for branch/jump targets.
type Resolver interface {
	Resolve(label string) (uint32, bool)
}

// LabelMap is a Resolver backed by a plain map, as produced by the lower
// package.
type LabelMap map[string]uint32

func (m LabelMap) Resolve(label string) (uint32, bool) {
	addr, ok := m[label]
	return addr, ok
}

// Encoder converts micro-IR instructions into RV32I machine words.
type Encoder struct {
	labels Resolver
}

// New creates an Encoder that resolves branch/jump targets against labels.
func New(labels Resolver) *Encoder {
	return &Encoder{labels: labels}
}

// EncodeInstruction encodes a single instruction at the given byte
// address. If the instruction references a label that labels does not
// contain, this is an internal-consistency error: semantic analysis
// should have caught an unresolvable target before lowering ever ran.
func (e *Encoder) EncodeInstruction(inst ir.Instruction, address uint32) (uint32, error) {
	switch inst.Op {
	case ir.ADDI:
		return encodeIType(opImm, 0x0, inst.Rd, inst.Rs1, inst.Imm), nil
	case ir.ANDI:
		return encodeIType(opImm, 0x7, inst.Rd, inst.Rs1, inst.Imm), nil
	case ir.ORI:
		return encodeIType(opImm, 0x6, inst.Rd, inst.Rs1, inst.Imm), nil
	case ir.LW:
		return encodeIType(opLoad, 0x2, inst.Rd, inst.Rs1, inst.Imm), nil
	case ir.JALR:
		return encodeIType(opJALR, 0x0, inst.Rd, inst.Rs1, inst.Imm), nil

	case ir.ADD:
		return encodeRType(0x00, inst.Rd, inst.Rs1, inst.Rs2), nil
	case ir.SUB:
		return encodeRType(0x20, inst.Rd, inst.Rs1, inst.Rs2), nil

	case ir.SW:
		return encodeSType(inst.Rs1, inst.Rs2, inst.Imm), nil

	case ir.BEQ, ir.BNE, ir.BLT, ir.BGE:
		target, ok := e.labels.Resolve(inst.Target)
		if !ok {
			return 0, fmt.Errorf("internal error: unresolved branch target %q", inst.Target)
		}
		offset := int64(target) - int64(address)
		return encodeBType(funct3ForBranch(inst.Op), inst.Rs1, inst.Rs2, offset), nil

	case ir.JAL:
		target, ok := e.labels.Resolve(inst.Target)
		if !ok {
			return 0, fmt.Errorf("internal error: unresolved jump target %q", inst.Target)
		}
		offset := int64(target) - int64(address)
		return encodeJType(inst.Rd, offset), nil

	case ir.LUI:
		return encodeUType(inst.Rd, inst.Imm), nil

	case ir.HALT:
		return ebreak, nil

	default:
		return nop, nil
	}
}

func funct3ForBranch(op ir.Op) uint32 {
	switch op {
	case ir.BEQ:
		return 0x0
	case ir.BNE:
		return 0x1
	case ir.BLT:
		return 0x4
	case ir.BGE:
		return 0x5
	default:
		return 0x0
	}
}

// encodeIType packs an I-type instruction: imm[11:0] | rs1 | funct3 | rd |
// opcode. The immediate is truncated to its low 12 bits here; the 12-bit
// signed range of ADDI is not range-checked anywhere upstream.
func encodeIType(opcode, funct3, rd, rs1 uint32, imm int64) uint32 {
	immBits := uint32(imm) & 0xFFF
	return (immBits << 20) | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

func encodeRType(funct7, rd, rs1, rs2 uint32) uint32 {
	return (funct7 << 25) | (rs2 << 20) | (rs1 << 15) | (0x0 << 12) | (rd << 7) | opReg
}

func encodeSType(rs1, rs2 uint32, imm int64) uint32 {
	immBits := uint32(imm) & 0xFFF
	imm115 := (immBits >> 5) & 0x7F
	imm40 := immBits & 0x1F
	return (imm115 << 25) | (rs2 << 20) | (rs1 << 15) | (0x2 << 12) | (imm40 << 7) | opStore
}

// encodeBType packs the B-type instruction's non-contiguous 13-bit signed
// immediate (bit 0 is always implicitly zero — branch targets are
// 2-byte-aligned at minimum, 4-byte-aligned in practice for this
// compiler): {imm[12],imm[10:5],rs2,rs1,funct3,imm[4:1],imm[11],opcode}.
func encodeBType(funct3, rs1, rs2 uint32, offset int64) uint32 {
	immBits := uint32(offset) & 0x1FFF
	imm12 := (immBits >> 12) & 0x1
	imm105 := (immBits >> 5) & 0x3F
	imm41 := (immBits >> 1) & 0xF
	imm11 := (immBits >> 11) & 0x1

	return (imm12 << 31) | (imm105 << 25) | (rs2 << 20) | (rs1 << 15) |
		(funct3 << 12) | (imm41 << 8) | (imm11 << 7) | opBranch
}

// encodeJType packs the J-type instruction's non-contiguous 21-bit signed
// immediate (bit 0 implicitly zero): {imm[20],imm[10:1],imm[11],imm[19:12],
// rd,opcode}.
func encodeJType(rd uint32, offset int64) uint32 {
	immBits := uint32(offset) & 0x1FFFFF
	imm20 := (immBits >> 20) & 0x1
	imm101 := (immBits >> 1) & 0x3FF
	imm11 := (immBits >> 11) & 0x1
	imm1912 := (immBits >> 12) & 0xFF

	return (imm20 << 31) | (imm101 << 21) | (imm11 << 20) | (imm1912 << 12) | (rd << 7) | opJAL
}

func encodeUType(rd uint32, imm int64) uint32 {
	return (uint32(imm) & 0xFFFFF000) | (rd << 7) | opLUI
}

// EncodeBuffer encodes every instruction in buf in order, returning the
// resulting machine words.
func (e *Encoder) EncodeBuffer(buf *ir.Buffer) ([]uint32, error) {
	words := make([]uint32, 0, buf.Len())
	for i, inst := range buf.Instructions {
		word, err := e.EncodeInstruction(inst, ir.AddressOf(i))
		if err != nil {
			return nil, err
		}
		words = append(words, word)
	}
	return words, nil
}
