package token_test

import (
	"testing"

	"github.com/sixfiveohtwo/dbginfo/diag"
	"github.com/sixfiveohtwo/dbginfo/token"
)

func TestLexer_BasicRecord(t *testing.T) {
	src := []byte("file id=0,name=\"a.s\",size=10,mtime=0x500\n")
	lx := token.NewLexer(src, "t.dbg", nil)

	want := []token.Kind{
		token.KwFile, token.KwID, token.Equals, token.IntConst, token.Comma,
		token.KwName, token.Equals, token.StrConst, token.Comma,
		token.KwSize, token.Equals, token.IntConst, token.Comma,
		token.KwMtime, token.Equals, token.IntConst,
		token.EOL, token.EOF,
	}
	for i, w := range want {
		tok := lx.Next()
		if tok.Kind != w {
			t.Fatalf("token %d: got %v, want %v", i, tok.Kind, w)
		}
	}
}

func TestLexer_IntegerBases(t *testing.T) {
	lx := token.NewLexer([]byte("10 010 0x10"), "t.dbg", nil)
	for _, want := range []uint64{10, 8, 16} {
		tok := lx.Next()
		if tok.Kind != token.IntConst || tok.Int != want {
			t.Fatalf("got %v %d, want %d", tok.Kind, tok.Int, want)
		}
	}
}

func TestLexer_UnknownIdentIsGenericIdent(t *testing.T) {
	lx := token.NewLexer([]byte("futurething"), "t.dbg", nil)
	tok := lx.Next()
	if tok.Kind != token.Ident || tok.Str != "futurething" {
		t.Fatalf("got %v %q, want Ident", tok.Kind, tok.Str)
	}
}

func TestLexer_UnterminatedString(t *testing.T) {
	var got []diag.Diagnostic
	lx := token.NewLexer([]byte("mod id=0,name=\"oops\n"), "t.dbg", func(d diag.Diagnostic) {
		got = append(got, d)
	})
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			break
		}
	}
	if len(got) != 1 || got[0].Severity != diag.Error {
		t.Fatalf("expected one error diagnostic, got %+v", got)
	}
}

func TestLexer_StringHasNoEscapeProcessing(t *testing.T) {
	lx := token.NewLexer([]byte(`"a\nb"`), "t.dbg", nil)
	tok := lx.Next()
	if tok.Kind != token.StrConst || tok.Str != `a\nb` {
		t.Fatalf("got %q, want verbatim %q", tok.Str, `a\nb`)
	}
}

func TestLexer_LineColumnTracking(t *testing.T) {
	lx := token.NewLexer([]byte("a\nb"), "t.dbg", nil)
	first := lx.Next() // ident "a"
	if first.Pos.Line != 1 || first.Pos.Column != 1 {
		t.Fatalf("got %+v, want line 1 col 1", first.Pos)
	}
	eol := lx.Next()
	if eol.Kind != token.EOL {
		t.Fatalf("expected EOL, got %v", eol.Kind)
	}
	second := lx.Next() // ident "b"
	if second.Pos.Line != 2 {
		t.Fatalf("got line %d, want 2", second.Pos.Line)
	}
}
