package lexer

import (
	"testing"

	"cflat/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanFunctionSignature(t *testing.T) {
	toks, err := Scan("fn main() -> int { return 3; }")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Fn, token.Id, token.OpenParen, token.CloseParen, token.Arrow, token.Int,
		token.OpenBrace, token.Return, token.Num, token.Semicolon, token.CloseBrace,
		token.EOF,
	}, kinds(toks))
}

func TestScanOperatorsDisambiguate(t *testing.T) {
	toks, err := Scan("a == b != c <= d >= e -> f")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Id, token.Equal, token.Id, token.NotEq, token.Id, token.Lte, token.Id,
		token.Gte, token.Id, token.Arrow, token.Id, token.EOF,
	}, kinds(toks))
}

func TestScanUnderscoreIsKeywordOnlyWhenBare(t *testing.T) {
	toks, err := Scan("_ _foo")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{token.Underscore, token.Id, token.EOF}, kinds(toks))
	assert.Equal(t, "_foo", toks[1].Lexeme)
}

func TestScanLineComment(t *testing.T) {
	toks, err := Scan("let x:int = 1; // trailing comment\nreturn x;")
	require.NoError(t, err)
	assert.NotContains(t, kinds(toks), token.ILLEGAL)
	last := toks[len(toks)-1]
	assert.Equal(t, token.EOF, last.Kind)
}

func TestScanIllegalCharacterFails(t *testing.T) {
	_, err := Scan("let x = 1 $ 2;")
	require.Error(t, err)
	var scanErr ScanError
	require.ErrorAs(t, err, &scanErr)
}

func TestTokenStringFormat(t *testing.T) {
	toks, err := Scan("foo 42")
	require.NoError(t, err)
	assert.Equal(t, "Id(foo)", toks[0].String())
	assert.Equal(t, "Num(42)", toks[1].String())
}
