// Package assembler implements the LC-3 two-pass assembler: symbol
// resolution (delegated to symtab, shared with the analyzer), then bit-exact
// encoding into addressed segments.
package assembler

import (
	"github.com/lc3toolchain/lc3/parser"
	"github.com/lc3toolchain/lc3/symtab"
)

// Segment is a contiguous block of assembled code starting at Origin.
type Segment struct {
	Origin uint16
	Code   []uint16
}

// Result is everything Assemble produces: the segment list (best-effort,
// zeros filled in for anything that failed to resolve) and the errors found.
type Result struct {
	Segments []Segment
	Symbols  *symtab.Table
	Errors   *ErrorList
}

// Assembler holds the per-call state for one Assemble invocation. Its symbol
// table and segment list are rebuilt from scratch on every call.
type Assembler struct {
	symbols *symtab.Table
	errors  *ErrorList
}

// Assemble runs both passes over program and returns the resulting segments.
// Result.Errors.HasErrors() reports overall success; a non-empty error list
// still comes with a best-effort Segments (zeros filled in for whatever
// didn't resolve), so callers that only need an approximate memory image can
// use it even after a failed assembly.
func Assemble(program *parser.Program) *Result {
	a := &Assembler{
		symbols: symtab.BuildTable(program),
		errors:  &ErrorList{},
	}
	segments := a.encodeSegments(program)
	return &Result{Segments: segments, Symbols: a.symbols, Errors: a.errors}
}

// segmentBuilder accumulates the in-progress segment across Pass 2.
type segmentBuilder struct {
	origin uint16
	code   []uint16
	active bool
}

func (a *Assembler) encodeSegments(program *parser.Program) []Segment {
	var segments []Segment
	cur := &segmentBuilder{}
	pc := uint16(0x3000)

	ensureActive := func() {
		if !cur.active {
			cur.origin = pc
			cur.code = nil
			cur.active = true
		}
	}
	finalize := func() {
		if cur.active && len(cur.code) > 0 {
			segments = append(segments, Segment{Origin: cur.origin, Code: cur.code})
		}
		cur.code = nil
		cur.active = false
	}

	for _, line := range program.Lines {
		switch line.Kind {
		case parser.LineDirective, parser.LineLabeledDirective:
			d := line.Directive
			switch d.Kind {
			case parser.DirOrig:
				finalize()
				cur.origin = d.Orig
				cur.code = nil
				cur.active = true
				pc = d.Orig
			case parser.DirFill:
				ensureActive()
				cur.code = append(cur.code, a.resolveFillValue(d.Fill))
				pc++
			case parser.DirBlkw:
				ensureActive()
				cur.code = append(cur.code, make([]uint16, d.Count)...)
				pc += d.Count
			case parser.DirStringz:
				ensureActive()
				for i := 0; i < len(d.Str); i++ {
					cur.code = append(cur.code, uint16(d.Str[i]))
				}
				cur.code = append(cur.code, 0)
				pc += uint16(len(d.Str)) + 1
			case parser.DirEnd:
				finalize()
			}

		case parser.LineInstruction, parser.LineLabeledInstruction:
			ensureActive()
			word := a.encodeInstruction(line.Instruction, pc)
			cur.code = append(cur.code, word)
			pc++
		}
	}

	// End of input with an unfinalized segment still holding code.
	finalize()
	return segments
}
