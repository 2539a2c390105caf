package analyzer

import (
	"strings"

	"github.com/lc3toolchain/lc3/parser"
)

// SemanticTokenKind classifies one token for editor syntax highlighting.
type SemanticTokenKind int

const (
	TokKeyword SemanticTokenKind = iota
	TokDirective
	TokRegister
	TokNumber
	TokString
	TokComment
	TokLabel
	TokLabelRef
	TokOperator
)

func (k SemanticTokenKind) String() string {
	switch k {
	case TokKeyword:
		return "keyword"
	case TokDirective:
		return "directive"
	case TokRegister:
		return "register"
	case TokNumber:
		return "number"
	case TokString:
		return "string"
	case TokComment:
		return "comment"
	case TokLabel:
		return "label"
	case TokLabelRef:
		return "labelRef"
	case TokOperator:
		return "operator"
	default:
		return "unknown"
	}
}

// SemanticToken is one classified lexical token, in source order.
type SemanticToken struct {
	Kind SemanticTokenKind
	Span parser.Span
	Text string
}

// Tokens re-lexes the source and classifies every token for highlighting.
// A bare identifier is a Keyword if it's a reserved mnemonic or BR
// variant, a Label if its span is exactly a symbol's definition span, and
// a LabelRef otherwise (a use, known or not — the distinction between a
// known and unknown reference belongs to Diagnostics, not to token kind).
func (d *Document) Tokens() []SemanticToken {
	lexer := parser.NewLexer(d.Source)
	toks, _ := lexer.TokenizeAll()

	defSpans := make(map[parser.Span]bool, len(d.Symbols.Symbols))
	for _, sym := range d.Symbols.Symbols {
		defSpans[sym.DefSpan] = true
	}

	var out []SemanticToken
	for _, t := range toks {
		switch t.Type {
		case parser.TokenDirective:
			out = append(out, SemanticToken{TokDirective, t.Span, t.Literal})
		case parser.TokenComment:
			out = append(out, SemanticToken{TokComment, t.Span, t.Literal})
		case parser.TokenString:
			out = append(out, SemanticToken{TokString, t.Span, t.Literal})
		case parser.TokenNumber:
			out = append(out, SemanticToken{TokNumber, t.Span, t.Literal})
		case parser.TokenRegister:
			out = append(out, SemanticToken{TokRegister, t.Span, t.Literal})
		case parser.TokenComma, parser.TokenColon:
			out = append(out, SemanticToken{TokOperator, t.Span, t.Literal})
		case parser.TokenIdentifier:
			out = append(out, SemanticToken{classifyIdentifier(t, defSpans), t.Span, t.Literal})
		}
	}
	return out
}

func classifyIdentifier(t parser.Token, defSpans map[parser.Span]bool) SemanticTokenKind {
	if parser.IsReservedIdentifier(strings.ToUpper(t.Literal)) {
		return TokKeyword
	}
	if defSpans[t.Span] {
		return TokLabel
	}
	return TokLabelRef
}
