// Package symtab builds the shared symbol table and reference list consumed
// by both the assembler and the analyzer. Keeping the builder in one place
// avoids two independent implementations of the assembler's address-
// assignment pass drifting apart, and keeps the symbol/reference
// relationship a join on name strings rather than pointer links between the
// two subsystems — see the "cyclic references" design note.
package symtab

import "github.com/lc3toolchain/lc3/parser"

// SymbolKind classifies what a symbol's address denotes.
type SymbolKind int

const (
	SymbolLabel SymbolKind = iota
	SymbolSubroutine
	SymbolData
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolSubroutine:
		return "subroutine"
	case SymbolData:
		return "data"
	default:
		return "label"
	}
}

// Symbol is a resolved label: its canonical (uppercased) name, the address
// it resolves to, its inferred kind, and where it was defined.
type Symbol struct {
	Name    string
	Address uint16
	Kind    SymbolKind
	DefSpan parser.Span
	DefLine int
}

// Reference is one use of a label name, in source order.
type Reference struct {
	Name string
	Span parser.Span
	Line int
}

// Table holds the whole-document symbol map and the ordered reference list.
// At most one symbol per name is retained: a later definition silently
// overwrites an earlier one (a future pass could upgrade this to a
// diagnostic; see DESIGN.md).
type Table struct {
	Symbols     map[string]*Symbol
	References  []Reference
	FirstOrigin uint16
	HasOrigin   bool
}

// BuildTable walks program once, in the same order as the assembler's Pass 1
// (initial pc 0x3000, .ORIG resets pc, directives and instructions advance
// it), defining every label at its address and recording every
// label-shaped operand use as a Reference.
func BuildTable(program *parser.Program) *Table {
	t := &Table{Symbols: make(map[string]*Symbol)}
	pc := uint16(0x3000)

	for _, line := range program.Lines {
		switch line.Kind {
		case parser.LineLabel:
			t.define(line.Label, pc, SymbolLabel, line.LabelSpan, line.LineNumber)

		case parser.LineLabeledDirective:
			kind := symbolKindForDirective(line.Directive.Kind)
			t.define(line.Label, pc, kind, line.LabelSpan, line.LineNumber)
			t.collectDirectiveRefs(line.Directive, line.LineNumber)
			pc = t.advance(pc, line.Directive)

		case parser.LineDirective:
			t.collectDirectiveRefs(line.Directive, line.LineNumber)
			pc = t.advance(pc, line.Directive)

		case parser.LineLabeledInstruction:
			t.define(line.Label, pc, SymbolLabel, line.LabelSpan, line.LineNumber)
			t.collectInstructionRefs(line.Instruction, line.LineNumber)
			pc++

		case parser.LineInstruction:
			t.collectInstructionRefs(line.Instruction, line.LineNumber)
			pc++
		}
	}

	return t
}

func symbolKindForDirective(kind parser.DirectiveKind) SymbolKind {
	switch kind {
	case parser.DirStringz, parser.DirFill, parser.DirBlkw:
		return SymbolData
	default:
		return SymbolLabel
	}
}

func (t *Table) define(name string, addr uint16, kind SymbolKind, span parser.Span, line int) {
	t.Symbols[name] = &Symbol{Name: name, Address: addr, Kind: kind, DefSpan: span, DefLine: line}
}

func (t *Table) addReference(name string, span parser.Span, line int) {
	t.References = append(t.References, Reference{Name: name, Span: span, Line: line})
}

func (t *Table) advance(pc uint16, d *parser.Directive) uint16 {
	switch d.Kind {
	case parser.DirOrig:
		if !t.HasOrigin {
			t.FirstOrigin = d.Orig
			t.HasOrigin = true
		}
		return d.Orig
	case parser.DirFill:
		return pc + 1
	case parser.DirBlkw:
		return pc + d.Count
	case parser.DirStringz:
		return pc + uint16(len(d.Str)) + 1
	default: // DirEnd
		return pc
	}
}

func (t *Table) collectDirectiveRefs(d *parser.Directive, line int) {
	if d.Kind == parser.DirFill && d.Fill.Kind == parser.OperandLabel {
		t.addReference(d.Fill.Label, d.Fill.Span, line)
	}
}

func (t *Table) collectInstructionRefs(inst *parser.Instruction, line int) {
	for _, op := range inst.Operands {
		if op.Kind == parser.OperandLabel {
			t.addReference(op.Label, op.Span, line)
		}
	}
}

// Lookup finds a symbol by its canonical (uppercased) name.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	s, ok := t.Symbols[name]
	return s, ok
}

// UndefinedReferences returns every Reference whose name has no matching
// Symbol, in source order — the basis of the analyzer's "undefined label"
// diagnostics.
func (t *Table) UndefinedReferences() []Reference {
	var out []Reference
	for _, ref := range t.References {
		if _, ok := t.Symbols[ref.Name]; !ok {
			out = append(out, ref)
		}
	}
	return out
}
