package token

import (
	"fmt"
	"strings"
)

// fromName is the inverse of names, built once so ParseStream can map a
// bare keyword tag back to its Kind.
var fromName = func() map[string]Kind {
	m := make(map[string]Kind, len(names))
	for k, name := range names {
		m[name] = k
	}
	return m
}()

// ParseStream reconstructs the token slice a `lex` dump serialized via
// Token.String(). Tokens are whitespace-separated; Id and Num carry their
// lexeme inside parens, every other kind is its bare tag. The stream has no
// position information — the "Id(name)" / "Num(digits)" / bare-tag format
// never carries line:column, so every reconstructed Token's Pos is zero.
//
// A trailing EOF tag is appended if the stream doesn't already end with
// one, so callers always get an EOF-terminated slice regardless of whether
// the dump included it.
func ParseStream(s string) ([]Token, error) {
	fields := strings.Fields(s)
	toks := make([]Token, 0, len(fields)+1)
	for _, f := range fields {
		switch {
		case strings.HasPrefix(f, "Id(") && strings.HasSuffix(f, ")"):
			toks = append(toks, Token{Kind: Id, Lexeme: f[len("Id(") : len(f)-1]})
		case strings.HasPrefix(f, "Num(") && strings.HasSuffix(f, ")"):
			toks = append(toks, Token{Kind: Num, Lexeme: f[len("Num(") : len(f)-1]})
		default:
			k, ok := fromName[f]
			if !ok {
				return nil, fmt.Errorf("malformed token %q", f)
			}
			toks = append(toks, Token{Kind: k})
		}
	}
	if len(toks) == 0 || toks[len(toks)-1].Kind != EOF {
		toks = append(toks, Token{Kind: EOF})
	}
	return toks, nil
}
