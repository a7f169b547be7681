// Package record parses one logical line of a debug info file — the
// sequence of "keyword = value" attributes between a leading record
// keyword and the end of line — into the database package's record types.
// Each line is independent: a malformed line is reported through a Sink and
// skipped, but parsing continues with the next line, exactly as the
// reference implementation's per-keyword Parse* functions behave.
package record

import (
	"fmt"

	"github.com/sixfiveohtwo/dbginfo/database"
	"github.com/sixfiveohtwo/dbginfo/diag"
	"github.com/sixfiveohtwo/dbginfo/token"
)

// Reader pulls tokens one at a time, the interface record needs from
// token.Lexer without depending on its concrete type.
type Reader interface {
	Next() token.Token
}

// Parser turns a token stream into a sequence of record lines. It owns one
// look-ahead token, mirroring the reference InputData's D->Tok.
type Parser struct {
	lx   Reader
	tok  token.Token
	sink diag.Sink
	file string
}

// NewParser returns a Parser reading from lx, attributing diagnostics to
// file via sink.
func NewParser(lx Reader, file string, sink diag.Sink) *Parser {
	p := &Parser{lx: lx, sink: sink, file: file}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.tok = p.lx.Next()
}

func (p *Parser) report(sev diag.Severity, format string, args ...any) {
	if p.sink != nil {
		p.sink(diag.Diagnostic{Severity: sev, Pos: p.tok.Pos, Message: fmt.Sprintf(format, args...)})
	}
}

// skipLine discards tokens until EOL or EOF, the reference SkipLine.
func (p *Parser) skipLine() {
	for p.tok.Kind != token.EOL && p.tok.Kind != token.EOF {
		p.advance()
	}
}

func (p *Parser) unexpectedToken() {
	p.report(diag.Error, "unexpected input token %v", p.tok.Kind)
	p.skipLine()
}

// unknownKeyword recovers from a keyword the reader doesn't know about yet
// (e.g. one added by a newer minor version): warn, then either skip the
// "= value" that follows or skip to EOL if no '=' follows at all.
func (p *Parser) unknownKeyword() {
	p.report(diag.Warning, "unknown keyword %q - skipping", p.tok.Str)
	p.advance()
	if p.tok.Kind == token.Equals {
		p.advance()
		for p.tok.Kind != token.Comma && p.tok.Kind != token.EOL && p.tok.Kind != token.EOF {
			p.advance()
		}
	} else if p.tok.Kind != token.Comma && p.tok.Kind != token.EOL && p.tok.Kind != token.EOF {
		p.skipLine()
	}
}

func (p *Parser) consumeEqual() bool {
	if p.tok.Kind != token.Equals {
		p.unexpectedToken()
		return false
	}
	p.advance()
	return true
}

func (p *Parser) intConst() (uint64, bool) {
	if p.tok.Kind != token.IntConst {
		p.unexpectedToken()
		return 0, false
	}
	v := p.tok.Int
	return v, true
}

func (p *Parser) strConst() (string, bool) {
	if p.tok.Kind != token.StrConst {
		p.unexpectedToken()
		return "", false
	}
	return p.tok.Str, true
}

// idList parses "intconst (+ intconst)*", the +-separated id list grammar
// shared by file/mod, line/span and scope/span attributes.
func (p *Parser) idList() ([]database.ID, bool) {
	var ids []database.ID
	for {
		v, ok := p.intConst()
		if !ok {
			return nil, false
		}
		ids = append(ids, database.ID(v))
		p.advance()
		if p.tok.Kind != token.Plus {
			break
		}
		p.advance()
	}
	return ids, true
}

// AtEOL reports whether the parser has reached the end of the current
// record line (EOL or EOF).
func (p *Parser) AtEOL() bool {
	return p.tok.Kind == token.EOL || p.tok.Kind == token.EOF
}

// AtEOF reports whether the input is exhausted.
func (p *Parser) AtEOF() bool {
	return p.tok.Kind == token.EOF
}

// NextLineKind returns the record keyword that starts the current line
// (e.g. token.KwFile), skipping a leading blank line first.
func (p *Parser) NextLineKind() token.Kind {
	for p.tok.Kind == token.EOL {
		p.advance()
	}
	return p.tok.Kind
}

// SkipRestOfLine advances past whatever remains of the current line,
// including the terminating EOL itself if present.
func (p *Parser) SkipRestOfLine() {
	p.skipLine()
	if p.tok.Kind == token.EOL {
		p.advance()
	}
}

// expectEOL checks that the line actually ended where the attribute loop
// stopped; a trailing stray token is reported and the rest of the line
// discarded.
func (p *Parser) expectEOL() bool {
	if p.tok.Kind != token.EOL && p.tok.Kind != token.EOF {
		p.unexpectedToken()
		return false
	}
	return true
}
