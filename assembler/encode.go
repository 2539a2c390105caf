package assembler

import (
	"fmt"

	"github.com/lc3toolchain/lc3/parser"
)

// Opcode nibbles (bits 15..12).
const (
	opcodeBR   = 0x0
	opcodeADD  = 0x1
	opcodeLD   = 0x2
	opcodeST   = 0x3
	opcodeJSR  = 0x4
	opcodeAND  = 0x5
	opcodeLDR  = 0x6
	opcodeSTR  = 0x7
	opcodeRTI  = 0x8
	opcodeNOT  = 0x9
	opcodeLDI  = 0xA
	opcodeSTI  = 0xB
	opcodeJMP  = 0xC
	opcodeLEA  = 0xE
	opcodeTRAP = 0xF
)

func fitsSigned(v int32, width uint) bool {
	minV, maxV := signedRange(width)
	return v >= minV && v <= maxV
}

func maskBits(v int32, width uint) uint16 {
	return uint16(uint32(v) & ((uint32(1) << width) - 1))
}

// encodeInstruction translates a single parsed instruction into its 16-bit
// word. addr is the instruction's own address (the "pc of the instruction"
// used in the PC-relative offset formula, i.e. one less than pc-after-fetch).
func (a *Assembler) encodeInstruction(inst *parser.Instruction, addr uint16) uint16 {
	switch inst.Op {
	case parser.OpADD, parser.OpAND:
		return a.encodeAddAnd(inst)
	case parser.OpNOT:
		return a.encodeNot(inst)
	case parser.OpBR:
		return a.encodeBr(inst, addr)
	case parser.OpJMP:
		return uint16(opcodeJMP)<<12 | uint16(inst.Operands[0].Register)<<6
	case parser.OpRET:
		return uint16(opcodeJMP)<<12 | 7<<6
	case parser.OpJSR:
		return a.encodeJsr(inst, addr)
	case parser.OpJSRR:
		return uint16(opcodeJSR)<<12 | uint16(inst.Operands[0].Register)<<6
	case parser.OpLD:
		return a.encodePCOffsetOp(opcodeLD, inst, addr)
	case parser.OpLDI:
		return a.encodePCOffsetOp(opcodeLDI, inst, addr)
	case parser.OpLEA:
		return a.encodePCOffsetOp(opcodeLEA, inst, addr)
	case parser.OpST:
		return a.encodePCOffsetOp(opcodeST, inst, addr)
	case parser.OpSTI:
		return a.encodePCOffsetOp(opcodeSTI, inst, addr)
	case parser.OpLDR:
		return a.encodeBaseOffset(opcodeLDR, inst)
	case parser.OpSTR:
		return a.encodeBaseOffset(opcodeSTR, inst)
	case parser.OpTRAP:
		return a.encodeTrap(inst)
	case parser.OpRTI:
		return uint16(opcodeRTI) << 12
	default:
		if vec, ok := parser.TrapVector(inst.Op); ok {
			return uint16(opcodeTRAP)<<12 | uint16(vec)
		}
		return 0
	}
}

func (a *Assembler) encodeAddAnd(inst *parser.Instruction) uint16 {
	opcode := uint16(opcodeADD)
	if inst.Op == parser.OpAND {
		opcode = opcodeAND
	}
	dr := inst.Operands[0].Register
	sr1 := inst.Operands[1].Register
	last := inst.Operands[2]
	word := opcode<<12 | uint16(dr)<<9 | uint16(sr1)<<6
	if last.Kind == parser.OperandRegister {
		return word | uint16(last.Register)
	}
	imm := int32(last.Immediate)
	name := "ADD"
	if inst.Op == parser.OpAND {
		name = "AND"
	}
	if !fitsSigned(imm, 5) {
		a.errors.add(last.Span, ErrorImmediateOutOfRange, rangeMessage(name, imm, 5))
		imm = 0
	}
	return word | 0x20 | maskBits(imm, 5)
}

func (a *Assembler) encodeNot(inst *parser.Instruction) uint16 {
	dr := inst.Operands[0].Register
	sr := inst.Operands[1].Register
	return uint16(opcodeNOT)<<12 | uint16(dr)<<9 | uint16(sr)<<6 | 0x3F
}

func (a *Assembler) encodeBr(inst *parser.Instruction, addr uint16) uint16 {
	offset := a.pcRelativeOffset("BR", inst.Operands[0], addr, 9)
	var nzp uint16
	if inst.N {
		nzp |= 0x4
	}
	if inst.Z {
		nzp |= 0x2
	}
	if inst.P {
		nzp |= 0x1
	}
	return uint16(opcodeBR)<<12 | nzp<<9 | offset
}

func (a *Assembler) encodeJsr(inst *parser.Instruction, addr uint16) uint16 {
	offset := a.pcRelativeOffset("JSR", inst.Operands[0], addr, 11)
	return uint16(opcodeJSR)<<12 | 0x0800 | offset
}

func (a *Assembler) encodePCOffsetOp(opcode uint16, inst *parser.Instruction, addr uint16) uint16 {
	name := inst.Op.String()
	reg := inst.Operands[0].Register
	offset := a.pcRelativeOffset(name, inst.Operands[1], addr, 9)
	return opcode<<12 | uint16(reg)<<9 | offset
}

func (a *Assembler) encodeBaseOffset(opcode uint16, inst *parser.Instruction) uint16 {
	reg := inst.Operands[0].Register
	base := inst.Operands[1].Register
	offOp := inst.Operands[2]
	imm := int32(offOp.Immediate)
	name := "LDR"
	if opcode == opcodeSTR {
		name = "STR"
	}
	if !fitsSigned(imm, 6) {
		a.errors.add(offOp.Span, ErrorImmediateOutOfRange, rangeMessage(name, imm, 6))
		imm = 0
	}
	return opcode<<12 | uint16(reg)<<9 | uint16(base)<<6 | maskBits(imm, 6)
}

func (a *Assembler) encodeTrap(inst *parser.Instruction) uint16 {
	vecOp := inst.Operands[0]
	v := int32(vecOp.Immediate)
	if v < 0 || v > 255 {
		a.errors.add(vecOp.Span, ErrorTrapVectorOutOfRange, fmt.Sprintf("TRAP vector out of range (0 to 255): got %d", v))
		v = 0
	}
	return uint16(opcodeTRAP)<<12 | uint16(v)
}

// pcRelativeOffset resolves label to an address via the symbol table and
// computes offset = target - (addr + 1), masked to width bits. On an
// undefined label or an offset that doesn't fit, it records a semantic
// error and returns 0 so encoding can still produce a best-effort word.
func (a *Assembler) pcRelativeOffset(opName string, label parser.Operand, addr uint16, width uint) uint16 {
	sym, ok := a.symbols.Lookup(label.Label)
	if !ok {
		a.errors.add(label.Span, ErrorUndefinedSymbol, "undefined label: "+label.Label)
		return 0
	}
	raw := int32(sym.Address) - int32(addr+1)
	if !fitsSigned(raw, width) {
		a.errors.add(label.Span, ErrorOffsetOutOfRange, rangeMessage(opName, raw, width))
		return 0
	}
	return maskBits(raw, width)
}

// resolveFillValue implements ".FILL accepts a number or a label"; using a
// register or string operand is a semantic error.
func (a *Assembler) resolveFillValue(op parser.Operand) uint16 {
	switch op.Kind {
	case parser.OperandImmediate:
		return uint16(op.Immediate)
	case parser.OperandLabel:
		sym, ok := a.symbols.Lookup(op.Label)
		if !ok {
			a.errors.add(op.Span, ErrorUndefinedSymbol, "undefined label: "+op.Label)
			return 0
		}
		return sym.Address
	default:
		a.errors.add(op.Span, ErrorInvalidFillOperand, ".FILL requires a number or label operand")
		return 0
	}
}
