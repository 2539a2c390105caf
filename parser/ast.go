package parser

import (
	"sort"
	"strings"
)

// Mnemonic identifies an LC-3 instruction opcode family. ADD/AND cover two
// operand shapes (register or immediate last operand); the shape lives in
// the Instruction's Operands, not in a separate Mnemonic value.
type Mnemonic int

const (
	OpADD Mnemonic = iota
	OpAND
	OpNOT
	OpBR
	OpJMP
	OpRET
	OpJSR
	OpJSRR
	OpLD
	OpLDI
	OpLDR
	OpLEA
	OpST
	OpSTI
	OpSTR
	OpTRAP
	OpRTI
	OpGETC
	OpOUT
	OpPUTS
	OpIN
	OpPUTSP
	OpHALT
)

var mnemonicNames = map[Mnemonic]string{
	OpADD: "ADD", OpAND: "AND", OpNOT: "NOT", OpBR: "BR", OpJMP: "JMP",
	OpRET: "RET", OpJSR: "JSR", OpJSRR: "JSRR", OpLD: "LD", OpLDI: "LDI",
	OpLDR: "LDR", OpLEA: "LEA", OpST: "ST", OpSTI: "STI", OpSTR: "STR",
	OpTRAP: "TRAP", OpRTI: "RTI", OpGETC: "GETC", OpOUT: "OUT", OpPUTS: "PUTS",
	OpIN: "IN", OpPUTSP: "PUTSP", OpHALT: "HALT",
}

func (m Mnemonic) String() string {
	if n, ok := mnemonicNames[m]; ok {
		return n
	}
	return "?"
}

// trapShortcuts maps the named trap mnemonics to their fixed vector.
var trapShortcuts = map[Mnemonic]uint8{
	OpGETC: 0x20, OpOUT: 0x21, OpPUTS: 0x22, OpIN: 0x23, OpPUTSP: 0x24, OpHALT: 0x25,
}

// TrapVector returns the fixed trap vector for a named trap shortcut
// mnemonic (GETC, OUT, PUTS, IN, PUTSP, HALT).
func TrapVector(op Mnemonic) (uint8, bool) {
	v, ok := trapShortcuts[op]
	return v, ok
}

// IsTrapShortcut reports whether op is one of the named trap mnemonics.
func IsTrapShortcut(op Mnemonic) bool {
	_, ok := trapShortcuts[op]
	return ok
}

// mnemonicTable maps every reserved mnemonic spelling (excluding BR variants)
// to its Mnemonic. BR condition variants are expanded separately since their
// flags (n/z/p) aren't part of the spelling table.
var mnemonicTable = map[string]Mnemonic{
	"ADD": OpADD, "AND": OpAND, "NOT": OpNOT,
	"JMP": OpJMP, "RET": OpRET, "JSR": OpJSR, "JSRR": OpJSRR,
	"LD": OpLD, "LDI": OpLDI, "LDR": OpLDR, "LEA": OpLEA,
	"ST": OpST, "STI": OpSTI, "STR": OpSTR,
	"TRAP": OpTRAP, "RTI": OpRTI,
	"GETC": OpGETC, "OUT": OpOUT, "PUTS": OpPUTS, "IN": OpIN, "PUTSP": OpPUTSP, "HALT": OpHALT,
}

// decodeBranchCondition recognizes an identifier of the form BR, BRN, BRZ,
// BRP, BRNZ, BRNP, BRZP, BRNZP. The flag letters may appear in any order
// (BRPN is accepted like BRNP); a repeated letter is rejected. Returns
// ok=false if name isn't a BR spelling.
func decodeBranchCondition(name string) (n, z, p, ok bool) {
	upper := strings.ToUpper(name)
	if !strings.HasPrefix(upper, "BR") {
		return false, false, false, false
	}
	rest := upper[2:]
	if rest == "" {
		return true, true, true, true
	}
	seen := map[byte]bool{}
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c != 'N' && c != 'Z' && c != 'P' {
			return false, false, false, false
		}
		if seen[c] {
			return false, false, false, false
		}
		seen[c] = true
	}
	return seen['N'], seen['Z'], seen['P'], true
}

// reservedIdentifiers is the set of spellings that cannot be used as bare
// labels (without a trailing colon): every mnemonic, every BR condition
// variant, and the trap shortcuts.
var reservedIdentifiers = func() map[string]bool {
	m := make(map[string]bool)
	for name := range mnemonicTable {
		m[name] = true
	}
	for _, br := range []string{"BR", "BRN", "BRZ", "BRP", "BRNZ", "BRNP", "BRZP", "BRNZP"} {
		m[br] = true
	}
	return m
}()

// IsReservedIdentifier reports whether name (case-insensitive) is a mnemonic
// or BR condition variant and therefore requires a colon to be used as a label.
func IsReservedIdentifier(name string) bool {
	return reservedIdentifiers[strings.ToUpper(name)]
}

// AllMnemonics returns every reserved instruction spelling, including BR
// condition variants, sorted alphabetically. Used by the analyzer's
// completion list.
func AllMnemonics() []string {
	names := make([]string, 0, len(reservedIdentifiers))
	for name := range reservedIdentifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OperandKind tags the variant carried by an Operand.
type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandImmediate
	OperandLabel
	OperandString
)

// Operand is a tagged union: Register | Immediate(signed 16-bit) |
// Label(name + span) | String(unescaped).
type Operand struct {
	Kind      OperandKind
	Register  uint8
	Immediate int16
	Label     string
	Value     string // unescaped text, for OperandString
	Span      Span
}

// DirectiveKind tags the variant carried by a Directive.
type DirectiveKind int

const (
	DirOrig DirectiveKind = iota
	DirFill
	DirBlkw
	DirStringz
	DirEnd
)

// Directive is a tagged union: Orig(u16) | Fill(Operand) | Blkw(u16 count) |
// Stringz(string) | End.
type Directive struct {
	Kind  DirectiveKind
	Orig  uint16
	Fill  Operand
	Count uint16
	Str   string
	Span  Span
}

// Instruction is one mnemonic with its operand list. BR additionally carries
// its three condition flags. The PC-offset vs base+offset split for
// LD/LDI/LEA/ST/STI vs LDR/STR is expressed by operand shape: a 2-operand
// form with a Label operand is PC-relative, a 3-operand form with a register
// and immediate is base+offset.
type Instruction struct {
	Op       Mnemonic
	N, Z, P  bool // BR flags; meaningless for other mnemonics
	Operands []Operand
	Span     Span
}

// LineKind tags the variant carried by a Line.
type LineKind int

const (
	LineLabel LineKind = iota
	LineLabeledDirective
	LineLabeledInstruction
	LineDirective
	LineInstruction
	LineEmpty
	LineError
)

// Line is a tagged union over what a single source line contains, wrapped
// with the span of the whole line.
type Line struct {
	Kind        LineKind
	Label       string
	LabelSpan   Span // span of the label identifier itself, when Label != ""
	Directive   *Directive
	Instruction *Instruction
	Span        Span
	LineNumber  int // 1-based
}

// Program is the ordered sequence of parsed lines.
type Program struct {
	Lines      []Line
	LineStarts []int
}
