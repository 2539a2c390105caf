// Package analyzer builds a semantic model on top of a parsed Program:
// diagnostics, symbol lookup, hover, completions, and a semantic-token
// stream suitable for an editor host. Every query is keyed by 1-based
// (line, column), converted to a byte offset via the same line-starts
// table the parser computes.
package analyzer

import (
	"fmt"
	"sort"

	"github.com/lc3toolchain/lc3/parser"
	"github.com/lc3toolchain/lc3/symtab"
)

// Document is the analyzed form of one source string: its parsed Program
// (nil if parsing failed outright, which in practice never happens since
// the parser always recovers a best-effort Program), the parse error
// list, and the shared symbol table.
type Document struct {
	Source      string
	Program     *parser.Program
	ParseErrors *parser.ErrorList
	Symbols     *symtab.Table

	lineStarts []int
}

// Analyze parses source and builds its symbol table in one pass. Running
// Analyze twice on identical source yields byte-for-byte identical
// results: nothing here depends on map iteration order or wall-clock
// time.
func Analyze(source string) *Document {
	p := parser.NewParser(source)
	prog, _ := p.Parse()
	return &Document{
		Source:      source,
		Program:     prog,
		ParseErrors: p.Errors(),
		Symbols:     symtab.BuildTable(prog),
		lineStarts:  prog.LineStarts,
	}
}

// Diagnostic is a single problem report: a parse error or an undefined
// label reference.
type Diagnostic struct {
	Span    parser.Span
	Message string
}

// Diagnostics returns every parse error plus one "undefined label: X"
// diagnostic per reference whose name has no defining symbol.
func (d *Document) Diagnostics() []Diagnostic {
	var diags []Diagnostic
	for _, e := range d.ParseErrors.Errors {
		diags = append(diags, Diagnostic{Span: e.Span, Message: e.Message})
	}
	for _, ref := range d.Symbols.UndefinedReferences() {
		diags = append(diags, Diagnostic{
			Span:    ref.Span,
			Message: fmt.Sprintf("undefined label: %s", ref.Name),
		})
	}
	return diags
}

func spanContains(span parser.Span, offset int) bool {
	return offset >= span.Start && offset < span.End
}

// offsetFromPosition inverts parser.PositionFromOffset: given a 1-based
// (line, column), it finds the byte offset into Source. Returns -1 if the
// position is out of range.
func (d *Document) offsetFromPosition(pos parser.Position) int {
	if pos.Line < 1 || pos.Line > len(d.lineStarts) {
		return -1
	}
	offset := d.lineStarts[pos.Line-1] + pos.Column - 1
	if offset < 0 || offset > len(d.Source) {
		return -1
	}
	return offset
}

// nameAt returns the canonical (uppercased) label name whose definition
// or reference span contains offset, if any.
func (d *Document) nameAt(offset int) (string, bool) {
	for name, sym := range d.Symbols.Symbols {
		if spanContains(sym.DefSpan, offset) {
			return name, true
		}
	}
	for _, ref := range d.Symbols.References {
		if spanContains(ref.Span, offset) {
			return ref.Name, true
		}
	}
	return "", false
}

// Definition returns the span of the symbol whose name appears at pos,
// whether pos is itself over the definition or over a reference to it.
func (d *Document) Definition(pos parser.Position) (parser.Span, bool) {
	offset := d.offsetFromPosition(pos)
	if offset < 0 {
		return parser.Span{}, false
	}
	name, ok := d.nameAt(offset)
	if !ok {
		return parser.Span{}, false
	}
	sym, ok := d.Symbols.Lookup(name)
	if !ok {
		return parser.Span{}, false
	}
	return sym.DefSpan, true
}

// References returns every span (the definition, plus every use) sharing
// the name found at pos, in source order. An undefined name still
// returns its reference spans, just with no leading definition span.
func (d *Document) References(pos parser.Position) []parser.Span {
	offset := d.offsetFromPosition(pos)
	if offset < 0 {
		return nil
	}
	name, ok := d.nameAt(offset)
	if !ok {
		return nil
	}
	var spans []parser.Span
	if sym, ok := d.Symbols.Lookup(name); ok {
		spans = append(spans, sym.DefSpan)
	}
	for _, ref := range d.Symbols.References {
		if ref.Name == name {
			spans = append(spans, ref.Span)
		}
	}
	return spans
}

// Hover renders a short description for the symbol at pos, or returns
// false if pos isn't over any known or referenced name.
func (d *Document) Hover(pos parser.Position) (string, bool) {
	offset := d.offsetFromPosition(pos)
	if offset < 0 {
		return "", false
	}
	name, ok := d.nameAt(offset)
	if !ok {
		return "", false
	}
	sym, ok := d.Symbols.Lookup(name)
	if !ok {
		return fmt.Sprintf("**%s** (undefined)", name), true
	}
	return fmt.Sprintf("**%s** (%s)\n\nAddress: `x%04X`", sym.Name, sym.Kind, sym.Address), true
}

// CompletionItem is one entry in a completions response.
type CompletionItem struct {
	Label         string
	Detail        string
	Snippet       string
	Documentation string
}

// Completions returns every known symbol, instruction mnemonic, and
// directive. pos is accepted for a future context-sensitive pass but
// currently does not filter the result.
func (d *Document) Completions(pos parser.Position) []CompletionItem {
	var items []CompletionItem

	names := make([]string, 0, len(d.Symbols.Symbols))
	for name := range d.Symbols.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sym := d.Symbols.Symbols[name]
		items = append(items, CompletionItem{
			Label:  sym.Name,
			Detail: fmt.Sprintf("%s @ x%04X", sym.Kind, sym.Address),
		})
	}

	for _, m := range parser.AllMnemonics() {
		items = append(items, CompletionItem{
			Label:  m,
			Detail: "instruction",
		})
	}

	for _, dir := range directiveKeywords {
		items = append(items, CompletionItem{
			Label:   dir.name,
			Detail:  dir.detail,
			Snippet: dir.snippet,
		})
	}

	return items
}

type directiveKeyword struct {
	name    string
	detail  string
	snippet string
}

var directiveKeywords = []directiveKeyword{
	{".ORIG", "set segment origin", ".ORIG x3000"},
	{".FILL", "fill one word", ".FILL 0"},
	{".BLKW", "reserve N words", ".BLKW 1"},
	{".STRINGZ", "null-terminated string", ".STRINGZ \"\""},
	{".END", "end segment", ".END"},
}

// SymbolInfo is one entry in the full symbol list.
type SymbolInfo struct {
	Name    string
	Address uint16
	Kind    symtab.SymbolKind
	DefSpan parser.Span
}

// SymbolList returns every defined symbol, sorted by name for determinism.
func (d *Document) SymbolList() []SymbolInfo {
	names := make([]string, 0, len(d.Symbols.Symbols))
	for name := range d.Symbols.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]SymbolInfo, 0, len(names))
	for _, name := range names {
		sym := d.Symbols.Symbols[name]
		out = append(out, SymbolInfo{Name: sym.Name, Address: sym.Address, Kind: sym.Kind, DefSpan: sym.DefSpan})
	}
	return out
}
