package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStreamRoundTripsTokenString(t *testing.T) {
	toks := []Token{
		{Kind: Fn}, {Kind: Id, Lexeme: "main"}, {Kind: OpenParen}, {Kind: CloseParen},
		{Kind: Arrow}, {Kind: Int}, {Kind: OpenBrace}, {Kind: Return},
		{Kind: Num, Lexeme: "3"}, {Kind: Semicolon}, {Kind: CloseBrace}, {Kind: EOF},
	}

	var dump string
	for i, tok := range toks {
		if i > 0 {
			dump += " "
		}
		dump += tok.String()
	}

	got, err := ParseStream(dump)
	require.NoError(t, err)
	assert.Equal(t, toks, got)
}

func TestParseStreamAppendsMissingEOF(t *testing.T) {
	got, err := ParseStream("Fn Id(main)")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, EOF, got[2].Kind)
}

func TestParseStreamRejectsUnknownTag(t *testing.T) {
	_, err := ParseStream("Fn Bogus")
	require.Error(t, err)
}

func TestParseStreamAcceptsMultilineDumps(t *testing.T) {
	got, err := ParseStream("Fn Id(main)\nOpenParen\nCloseParen\n")
	require.NoError(t, err)
	assert.Equal(t, []Kind{Fn, Id, OpenParen, CloseParen, EOF}, kindsOf(got))
}

func kindsOf(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}
