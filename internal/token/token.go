// Package token defines the lexical tokens of the cflat source language and
// their text-stream representation.
package token

// Kind identifies a token's lexical class.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	// Literal-carrying tokens.
	Id  // identifier, carries Lexeme
	Num // integer literal, carries Lexeme (digits only)

	// Keywords.
	Fn
	Let
	Struct
	Return
	If
	Else
	While
	Break
	Continue
	New
	Extern
	Int
	Nil

	// Punctuation and operators.
	OpenParen
	CloseParen
	OpenBrace
	CloseBrace
	OpenBracket
	CloseBracket
	Arrow
	Star
	Plus
	Dash
	Slash
	Equal
	NotEq
	Lt
	Lte
	Gt
	Gte
	Gets
	Colon
	Semicolon
	Comma
	Dot
	Address
	Underscore
)

// names holds the exact tag text each Kind prints as in the token stream.
var names = map[Kind]string{
	ILLEGAL:      "Illegal",
	EOF:          "EOF",
	Id:           "Id",
	Num:          "Num",
	Fn:           "Fn",
	Let:          "Let",
	Struct:       "Struct",
	Return:       "Return",
	If:           "If",
	Else:         "Else",
	While:        "While",
	Break:        "Break",
	Continue:     "Continue",
	New:          "New",
	Extern:       "Extern",
	Int:          "Int",
	Nil:          "Nil",
	OpenParen:    "OpenParen",
	CloseParen:   "CloseParen",
	OpenBrace:    "OpenBrace",
	CloseBrace:   "CloseBrace",
	OpenBracket:  "OpenBracket",
	CloseBracket: "CloseBracket",
	Arrow:        "Arrow",
	Star:         "Star",
	Plus:         "Plus",
	Dash:         "Dash",
	Slash:        "Slash",
	Equal:        "Equal",
	NotEq:        "NotEq",
	Lt:           "Lt",
	Lte:          "Lte",
	Gt:           "Gt",
	Gte:          "Gte",
	Gets:         "Gets",
	Colon:        "Colon",
	Semicolon:    "Semicolon",
	Comma:        "Comma",
	Dot:          "Dot",
	Address:      "Address",
	Underscore:   "Underscore",
}

func (k Kind) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	return "Unknown"
}

// Keywords maps the reserved-word spelling to its Kind, used by the lexer
// once it has scanned a maximal identifier run.
var Keywords = map[string]Kind{
	"fn":       Fn,
	"let":      Let,
	"struct":   Struct,
	"return":   Return,
	"if":       If,
	"else":     Else,
	"while":    While,
	"break":    Break,
	"continue": Continue,
	"new":      New,
	"extern":   Extern,
	"int":      Int,
	"nil":      Nil,
	"_":        Underscore,
}

// Token is one lexeme with its source position.
type Token struct {
	Kind   Kind
	Lexeme string // set for Id and Num; empty otherwise
	Pos    Position
}

// Position mirrors ast.Position without importing the ast package, so the
// lexer has no dependency on the parser's tree types.
type Position struct {
	Line   int
	Column int
	Offset int
}

// String renders a token the way the `lex` output requires: "Id(name)" /
// "Num(digits)" for literal-carrying tokens, and the bare keyword tag
// otherwise.
func (t Token) String() string {
	switch t.Kind {
	case Id, Num:
		return t.Kind.String() + "(" + t.Lexeme + ")"
	default:
		return t.Kind.String()
	}
}
