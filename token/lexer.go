package token

import (
	"fmt"

	"github.com/sixfiveohtwo/dbginfo/diag"
)

// Lexer scans a debug info file character-at-a-time, the way the reference
// scanner's NextChar/NextToken pair does. It never aborts: on an error it
// reports through sink and keeps producing tokens.
type Lexer struct {
	src  []byte
	file string
	pos  int
	line int
	col  int
	ch   int // current character, or -1 at EOF
	sink diag.Sink
}

// NewLexer returns a Lexer over src, attributing diagnostics to file and
// reporting them to sink (which may be nil).
func NewLexer(src []byte, file string, sink diag.Sink) *Lexer {
	l := &Lexer{src: src, file: file, line: 1, col: 0, sink: sink}
	l.readChar()
	return l
}

// readChar advances to the next source byte, tracking line/column the way
// the reference NextChar does (newline seen -> next char starts line+1,
// column 1).
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.pos >= len(l.src) {
		l.ch = -1
		return
	}
	l.ch = int(l.src[l.pos])
	l.pos++
	l.col++
}

func (l *Lexer) curPos() Position {
	return Position{File: l.file, Line: l.line, Column: l.col}
}

func (l *Lexer) report(pos Position, sev diag.Severity, format string, args ...any) {
	if l.sink == nil {
		return
	}
	l.sink(diag.Diagnostic{Severity: sev, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func isDigit(c int) bool  { return c >= '0' && c <= '9' }
func isAlpha(c int) bool  { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isAlnum(c int) bool  { return isAlpha(c) || isDigit(c) }
func digitVal(c int) int {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return -1
	}
}

// Next scans and returns the next token. It skips spaces, tabs and carriage
// returns between tokens; newline is its own token, not whitespace.
func (l *Lexer) Next() Token {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}

	pos := l.curPos()

	switch {
	case l.ch == -1:
		return Token{Kind: EOF, Pos: pos}

	case l.ch == '\n':
		l.readChar()
		return Token{Kind: EOL, Pos: pos}

	case isAlpha(l.ch):
		start := l.pos - 1
		for isAlnum(l.ch) {
			l.readChar()
		}
		end := l.pos - 1
		if l.ch == -1 {
			end = l.pos
		}
		word := string(l.src[start:end])
		if kind, ok := LookupKeyword(word); ok {
			return Token{Kind: kind, Str: word, Pos: pos}
		}
		return Token{Kind: Ident, Str: word, Pos: pos}

	case isDigit(l.ch):
		return l.scanNumber(pos)

	case l.ch == '"':
		return l.scanString(pos)

	case l.ch == '-':
		l.readChar()
		return Token{Kind: Minus, Pos: pos}

	case l.ch == '+':
		l.readChar()
		return Token{Kind: Plus, Pos: pos}

	case l.ch == ',':
		l.readChar()
		return Token{Kind: Comma, Pos: pos}

	case l.ch == '=':
		l.readChar()
		return Token{Kind: Equals, Pos: pos}

	default:
		l.report(pos, diag.Error, "invalid input character %q", rune(l.ch))
		l.readChar()
		return l.Next()
	}
}

// scanNumber reads a decimal, octal (leading 0) or hexadecimal (leading
// 0x/0X) integer constant. The accumulator is a uint64; overflow wraps,
// which is deterministic and acceptable per the format's unspecified
// overflow semantics.
func (l *Lexer) scanNumber(pos Position) Token {
	base := 10
	if l.ch == '0' {
		l.readChar()
		if l.ch == 'x' || l.ch == 'X' {
			l.readChar()
			base = 16
		} else {
			base = 8
		}
	}
	var val uint64
	for {
		v := digitVal(l.ch)
		if v < 0 || v >= base {
			break
		}
		val = val*uint64(base) + uint64(v)
		l.readChar()
	}
	return Token{Kind: IntConst, Int: val, Pos: pos}
}

// scanString reads a double-quoted string constant verbatim; no escapes are
// recognized, matching the reference scanner. Newline or EOF before the
// closing quote is a recoverable error: the partial literal is returned so
// the parser can keep going.
func (l *Lexer) scanString(pos Position) Token {
	l.readChar() // consume opening quote
	start := l.pos - 1
	for {
		if l.ch == '\n' || l.ch == -1 {
			l.report(pos, diag.Error, "unterminated string constant")
			break
		}
		if l.ch == '"' {
			s := string(l.src[start : l.pos-1])
			l.readChar() // consume closing quote
			return Token{Kind: StrConst, Str: s, Pos: pos}
		}
		l.readChar()
	}
	end := l.pos - 1
	if l.ch == -1 {
		end = l.pos
	}
	return Token{Kind: StrConst, Str: string(l.src[start:end]), Pos: pos}
}
