// Package disasm implements the inverse of the assembler's encoder: given
// an instruction word and the address of the following instruction, it
// renders a human-readable mnemonic line, with optional label resolution
// via an address→name map.
package disasm

import "fmt"

// Opcode nibbles, mirrored from the assembler/VM's shared encoding table.
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

var trapNames = map[uint16]string{
	0x20: "GETC",
	0x21: "OUT",
	0x22: "PUTS",
	0x23: "IN",
	0x24: "PUTSP",
	0x25: "HALT",
}

func signExtend(val uint16, width uint) int32 {
	v := int32(val)
	if val&(1<<(width-1)) != 0 {
		return v - (1 << width)
	}
	return v
}

// Disassemble renders one instruction word. pcAfterFetch is the address of
// the instruction following this one (the PC the VM would have after
// fetching word), used to resolve PC-relative operands. labels, if
// non-nil, is consulted to print a symbolic name instead of a raw address
// for any PC-relative or absolute-address operand.
func Disassemble(word uint16, pcAfterFetch uint16, labels map[uint16]string) string {
	if word == 0 {
		return fillFallback(word)
	}
	opcode := word >> 12

	switch opcode {
	case opcodeBR:
		return disassembleBR(word, pcAfterFetch, labels)
	case opcodeADD:
		return disassembleAddAnd("ADD", word)
	case opcodeAND:
		return disassembleAddAnd("AND", word)
	case opcodeNOT:
		dr := (word >> 9) & 0x7
		sr := (word >> 6) & 0x7
		return fmt.Sprintf("NOT R%d, R%d", dr, sr)
	case opcodeLD:
		return disassemblePCOffset("LD", word, pcAfterFetch, labels)
	case opcodeLDI:
		return disassemblePCOffset("LDI", word, pcAfterFetch, labels)
	case opcodeLEA:
		return disassemblePCOffset("LEA", word, pcAfterFetch, labels)
	case opcodeST:
		return disassemblePCOffset("ST", word, pcAfterFetch, labels)
	case opcodeSTI:
		return disassemblePCOffset("STI", word, pcAfterFetch, labels)
	case opcodeLDR:
		return disassembleBaseOffset("LDR", word)
	case opcodeSTR:
		return disassembleBaseOffset("STR", word)
	case opcodeJMP:
		base := (word >> 6) & 0x7
		if base == 7 {
			return "RET"
		}
		return fmt.Sprintf("JMP R%d", base)
	case opcodeJSR:
		return disassembleJSR(word, pcAfterFetch, labels)
	case opcodeTRAP:
		return disassembleTrap(word)
	case opcodeRTI:
		return "RTI"
	case 0xD:
		return fillFallback(word)
	default:
		return fillFallback(word)
	}
}

func fillFallback(word uint16) string {
	return fmt.Sprintf(".FILL x%04X", word)
}

func resolve(addr uint16, labels map[uint16]string) string {
	if labels != nil {
		if name, ok := labels[addr]; ok {
			return name
		}
	}
	return fmt.Sprintf("#x%04X", addr)
}

func disassembleBR(word uint16, pcAfterFetch uint16, labels map[uint16]string) string {
	n := word&0x0800 != 0
	z := word&0x0400 != 0
	p := word&0x0200 != 0
	offset := signExtend(word&0x01FF, 9)
	target := uint16(int32(pcAfterFetch) + offset)

	mnemonic := "BR"
	if !(n && z && p) {
		flags := ""
		if n {
			flags += "n"
		}
		if z {
			flags += "z"
		}
		if p {
			flags += "p"
		}
		mnemonic = "BR" + flags
	}
	return fmt.Sprintf("%s %s", mnemonic, resolve(target, labels))
}

func disassembleAddAnd(name string, word uint16) string {
	dr := (word >> 9) & 0x7
	sr1 := (word >> 6) & 0x7
	if word&0x20 != 0 {
		imm := signExtend(word&0x1F, 5)
		return fmt.Sprintf("%s R%d, R%d, #%d", name, dr, sr1, imm)
	}
	sr2 := word & 0x7
	return fmt.Sprintf("%s R%d, R%d, R%d", name, dr, sr1, sr2)
}

func disassemblePCOffset(name string, word uint16, pcAfterFetch uint16, labels map[uint16]string) string {
	reg := (word >> 9) & 0x7
	offset := signExtend(word&0x01FF, 9)
	target := uint16(int32(pcAfterFetch) + offset)
	return fmt.Sprintf("%s R%d, %s", name, reg, resolve(target, labels))
}

func disassembleBaseOffset(name string, word uint16) string {
	reg := (word >> 9) & 0x7
	base := (word >> 6) & 0x7
	offset := signExtend(word&0x3F, 6)
	return fmt.Sprintf("%s R%d, R%d, #%d", name, reg, base, offset)
}

func disassembleJSR(word uint16, pcAfterFetch uint16, labels map[uint16]string) string {
	if word&0x0800 != 0 {
		offset := signExtend(word&0x07FF, 11)
		target := uint16(int32(pcAfterFetch) + offset)
		return fmt.Sprintf("JSR %s", resolve(target, labels))
	}
	base := (word >> 6) & 0x7
	return fmt.Sprintf("JSRR R%d", base)
}

func disassembleTrap(word uint16) string {
	vec := word & 0xFF
	if name, ok := trapNames[vec]; ok {
		return name
	}
	return fmt.Sprintf("TRAP x%02X", vec)
}
