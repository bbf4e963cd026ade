package lexer

import "testing"

func typesOf(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}

func assertTypes(t *testing.T, got []Token, want []TokenType) {
	t.Helper()
	gotTypes := typesOf(got)
	if len(gotTypes) != len(want) {
		t.Fatalf("token count = %d, want %d\ngot: %v\nwant: %v", len(gotTypes), len(want), gotTypes, want)
	}
	for i := range want {
		if gotTypes[i] != want[i] {
			t.Fatalf("token[%d] = %s, want %s\ngot: %v", i, gotTypes[i], want[i], gotTypes)
		}
	}
}

func TestScanArithmeticAndCompound(t *testing.T) {
	toks := NewScanner("x += 1; x -= 2").ScanTokens()
	assertTypes(t, toks, []TokenType{
		TokenIdent, TokenPlusEq, TokenInt, TokenSemi,
		TokenIdent, TokenMinusEq, TokenInt, TokenEOF,
	})
}

func TestScanHexLiteral(t *testing.T) {
	toks := NewScanner("0xFF").ScanTokens()
	if toks[0].Type != TokenInt || toks[0].Lexeme != "0xFF" {
		t.Fatalf("got %v", toks[0])
	}
}

func TestScanDoubleLiteral(t *testing.T) {
	for _, src := range []string{"1.5", "1.", "1e9", "1.2e-3"} {
		toks := NewScanner(src).ScanTokens()
		if toks[0].Type != TokenDouble {
			t.Fatalf("scanning %q: got %v", src, toks[0])
		}
	}
}

func TestScanRangeOperators(t *testing.T) {
	toks := NewScanner("0..10 0..=10").ScanTokens()
	assertTypes(t, toks, []TokenType{
		TokenInt, TokenDotDot, TokenInt,
		TokenInt, TokenDotDotEq, TokenInt,
		TokenEOF,
	})
}

func TestScanNewOperatorCharacters(t *testing.T) {
	toks := NewScanner("a & b | c $ d @ e ~f").ScanTokens()
	assertTypes(t, toks, []TokenType{
		TokenIdent, TokenAmp, TokenIdent, TokenPipe, TokenIdent,
		TokenDollar, TokenIdent, TokenAt, TokenIdent,
		TokenTilde, TokenIdent, TokenEOF,
	})
}

func TestScanStringEscapes(t *testing.T) {
	toks := NewScanner(`"a\nb\tc\\\""`).ScanTokens()
	want := "a\nb\tc\\\""
	if toks[0].Lexeme != want {
		t.Fatalf("got %q, want %q", toks[0].Lexeme, want)
	}
}

func TestScanTripleQuotedTemplate(t *testing.T) {
	toks := NewScanner(`"""hello ${name}!"""`).ScanTokens()
	if toks[0].Type != TokenTemplate {
		t.Fatalf("got %v", toks[0])
	}
	if toks[0].Lexeme != "hello ${name}!" {
		t.Fatalf("lexeme = %q", toks[0].Lexeme)
	}
}

func TestScanLineComments(t *testing.T) {
	toks := NewScanner("x = 1 # comment\ny = 2 // also a comment\n").ScanTokens()
	assertTypes(t, toks, []TokenType{
		TokenIdent, TokenAssign, TokenInt,
		TokenIdent, TokenAssign, TokenInt,
		TokenEOF,
	})
}

func TestScanShebangSkipped(t *testing.T) {
	toks := NewScanner("#!/usr/bin/env sentra\nx = 1").ScanTokens()
	assertTypes(t, toks, []TokenType{TokenIdent, TokenAssign, TokenInt, TokenEOF})
}

func TestScanKeywordsAndUnderscore(t *testing.T) {
	toks := NewScanner("if else while for in struct true false null _").ScanTokens()
	assertTypes(t, toks, []TokenType{
		TokenIf, TokenElse, TokenWhile, TokenFor, TokenIn, TokenStruct,
		TokenTrue, TokenFalse, TokenNull, TokenUnderscore, TokenEOF,
	})
}

func TestScanPowAndCompoundStar(t *testing.T) {
	toks := NewScanner("x ** 2; x *= 2").ScanTokens()
	assertTypes(t, toks, []TokenType{
		TokenIdent, TokenPow, TokenInt, TokenSemi,
		TokenIdent, TokenStarEq, TokenInt, TokenEOF,
	})
}

func TestScanLambdaArrow(t *testing.T) {
	toks := NewScanner("x => x + 1").ScanTokens()
	assertTypes(t, toks, []TokenType{
		TokenIdent, TokenArrow, TokenIdent, TokenPlus, TokenInt, TokenEOF,
	})
}
