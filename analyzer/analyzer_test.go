package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lc3toolchain/lc3/parser"
)

func TestDiagnosticsReportsUndefinedLabel(t *testing.T) {
	doc := Analyze(".ORIG x3000\nBRZ MISSING\n.END\n")
	diags := doc.Diagnostics()
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "undefined label")
}

func TestDiagnosticsEmptyOnCleanSource(t *testing.T) {
	doc := Analyze(".ORIG x3000\nLOOP ADD R0, R0, #1\nBRnzp LOOP\nHALT\n.END\n")
	assert.Empty(t, doc.Diagnostics())
}

func TestHoverOnDefinedSymbol(t *testing.T) {
	src := ".ORIG x3000\nLOOP ADD R0, R0, #1\nBRnzp LOOP\n.END\n"
	doc := Analyze(src)

	// "LOOP" label def starts at byte 12 (after ".ORIG x3000\n"), line 2 col 1.
	pos := parser.Position{Line: 2, Column: 1}
	hover, ok := doc.Hover(pos)
	require.True(t, ok)
	assert.Contains(t, hover, "LOOP")
	assert.Contains(t, hover, "label")
	assert.Contains(t, hover, "x3000")
}

func TestHoverOnUndefinedReference(t *testing.T) {
	src := ".ORIG x3000\nBRZ MISSING\n.END\n"
	doc := Analyze(src)

	// "MISSING" starts right after "BRZ " on line 2.
	pos := parser.Position{Line: 2, Column: 5}
	hover, ok := doc.Hover(pos)
	require.True(t, ok)
	assert.Contains(t, hover, "MISSING")
	assert.Contains(t, hover, "undefined")
}

func TestDefinitionAndReferencesRoundTrip(t *testing.T) {
	src := ".ORIG x3000\nLOOP ADD R0, R0, #1\nBRnzp LOOP\n.END\n"
	doc := Analyze(src)

	defSpan, ok := doc.Definition(parser.Position{Line: 2, Column: 1})
	require.True(t, ok)

	refs := doc.References(parser.Position{Line: 2, Column: 1})
	require.Len(t, refs, 2) // definition + the BRnzp use
	assert.Equal(t, defSpan, refs[0])
}

func TestSymbolListSortedAndKinded(t *testing.T) {
	src := ".ORIG x3000\nDATA .FILL 5\nLOOP ADD R0, R0, #1\n.END\n"
	doc := Analyze(src)
	symbols := doc.SymbolList()
	require.Len(t, symbols, 2)
	assert.Equal(t, "DATA", symbols[0].Name)
	assert.Equal(t, "data", symbols[0].Kind.String())
	assert.Equal(t, "LOOP", symbols[1].Name)
	assert.Equal(t, "label", symbols[1].Kind.String())
}

func TestCompletionsIncludeMnemonicsDirectivesAndSymbols(t *testing.T) {
	doc := Analyze(".ORIG x3000\nLOOP ADD R0, R0, #1\n.END\n")
	items := doc.Completions(parser.Position{Line: 1, Column: 1})

	var hasLoop, hasAdd, hasOrig bool
	for _, it := range items {
		switch it.Label {
		case "LOOP":
			hasLoop = true
		case "ADD":
			hasAdd = true
		case ".ORIG":
			hasOrig = true
		}
	}
	assert.True(t, hasLoop)
	assert.True(t, hasAdd)
	assert.True(t, hasOrig)
}

func TestTokensClassifyKeywordLabelAndRef(t *testing.T) {
	src := ".ORIG x3000\nLOOP ADD R0, R0, #1\nBRnzp LOOP\n.END\n"
	doc := Analyze(src)
	toks := doc.Tokens()

	var sawDirective, sawKeyword, sawLabel, sawLabelRef, sawRegister, sawNumber bool
	for _, tok := range toks {
		switch tok.Kind {
		case TokDirective:
			sawDirective = true
		case TokKeyword:
			sawKeyword = true
		case TokLabel:
			sawLabel = true
		case TokLabelRef:
			sawLabelRef = true
		case TokRegister:
			sawRegister = true
		case TokNumber:
			sawNumber = true
		}
	}
	assert.True(t, sawDirective)
	assert.True(t, sawKeyword)
	assert.True(t, sawLabel)
	assert.True(t, sawLabelRef)
	assert.True(t, sawRegister)
	assert.True(t, sawNumber)
}

func TestDiagnosticsIdempotent(t *testing.T) {
	src := ".ORIG x3000\nBRZ MISSING\n.END\n"
	first := Analyze(src).Diagnostics()
	second := Analyze(src).Diagnostics()
	assert.Equal(t, first, second)
}
