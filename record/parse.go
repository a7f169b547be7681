package record

import (
	"github.com/sixfiveohtwo/dbginfo/database"
	"github.com/sixfiveohtwo/dbginfo/diag"
	"github.com/sixfiveohtwo/dbginfo/token"
)

// required-attribute bitmasks, one set per record kind. A record missing
// any bit in its kind's required mask is rejected with "required
// attributes missing", matching the reference parser's InfoBits checks.
const (
	fileID uint32 = 1 << iota
	fileName
	fileSize
	fileMTime
	fileModID
)

const fileRequired = fileID | fileName | fileSize | fileMTime | fileModID

const (
	libID uint32 = 1 << iota
	libName
)

const libRequired = libID | libName

const (
	lineFileID uint32 = 1 << iota
	lineID
	lineLineNo
	lineSpanID
	lineType
	lineCount
)

const lineRequired = lineFileID | lineID | lineLineNo

const (
	modFileID uint32 = 1 << iota
	modID
	modName
	modLibID
)

const modRequired = modID | modName | modFileID

const (
	scopeID uint32 = 1 << iota
	scopeModID
	scopeName
	scopeParentID
	scopeSize
	scopeSpanID
	scopeSymID
	scopeType
)

const scopeRequired = scopeID | scopeModID | scopeName

const (
	segAddrSize uint32 = 1 << iota
	segID
	segOutputName
	segOutputOffs
	segName
	segSize
	segStart
	segType
)

const segRequired = segID | segName | segStart | segSize | segAddrSize | segType

const (
	spanID uint32 = 1 << iota
	spanSegID
	spanSize
	spanStart
)

const spanRequired = spanID | spanSegID | spanSize | spanStart

const (
	symAddrSize uint32 = 1 << iota
	symFileID
	symID
	symParentID
	symScopeID
	symSegID
	symSize
	symName
	symType
	symValue
)

const symRequired = symAddrSize | symID | symName | symType | symValue

// ParseVersion reads the leading "version major=.,minor=." line. Unlike
// every other record kind this one is mandatory and positional: Load
// refuses to proceed without it.
func (p *Parser) ParseVersion() (major, minor uint64, ok bool) {
	p.advance() // skip "version"

	var have uint32
	const haveMajor, haveMinor uint32 = 1, 2

	for p.tok.Kind != token.EOL && p.tok.Kind != token.EOF {
		switch p.tok.Kind {
		case token.KwMajor:
			p.advance()
			if !p.consumeEqual() {
				return 0, 0, false
			}
			v, okv := p.intConst()
			if !okv {
				return 0, 0, false
			}
			major = v
			have |= haveMajor
			p.advance()

		case token.KwMinor:
			p.advance()
			if !p.consumeEqual() {
				return 0, 0, false
			}
			v, okv := p.intConst()
			if !okv {
				return 0, 0, false
			}
			minor = v
			have |= haveMinor
			p.advance()

		case token.Ident:
			p.unknownKeyword()

		default:
			p.unexpectedToken()
			return 0, 0, false
		}

		if p.tok.Kind == token.Comma {
			p.advance()
		} else if p.tok.Kind == token.EOL || p.tok.Kind == token.EOF {
			break
		} else {
			p.unexpectedToken()
			return 0, 0, false
		}
	}

	if have&(haveMajor|haveMinor) != haveMajor|haveMinor {
		p.report(diag.Error, "required attributes missing")
		return 0, 0, false
	}
	return major, minor, true
}

// InfoHints is the advisory per-kind record count carried by an "info"
// line, used only to pre-size the Database's by-id collections.
type InfoHints struct {
	File, Lib, Line, Module, Scope, Segment, Span, Sym int
}

// ParseInfo reads an "info" line's count hints. Hints for kinds the line
// doesn't mention stay zero and are simply not applied.
func (p *Parser) ParseInfo() (InfoHints, bool) {
	p.advance() // skip "info"

	var h InfoHints
	for {
		switch p.tok.Kind {
		case token.KwFile, token.KwLib, token.KwLine, token.KwMod,
			token.KwScope, token.KwSeg, token.KwSpan, token.KwSym:
			kw := p.tok.Kind
			p.advance()
			if !p.consumeEqual() {
				return h, false
			}
			v, ok := p.intConst()
			if !ok {
				return h, false
			}
			switch kw {
			case token.KwFile:
				h.File = int(v)
			case token.KwLib:
				h.Lib = int(v)
			case token.KwLine:
				h.Line = int(v)
			case token.KwMod:
				h.Module = int(v)
			case token.KwScope:
				h.Scope = int(v)
			case token.KwSeg:
				h.Segment = int(v)
			case token.KwSpan:
				h.Span = int(v)
			case token.KwSym:
				h.Sym = int(v)
			}
			p.advance()

		default:
			if p.tok.Kind == token.Ident || p.tok.Kind.IsKeyword() {
				p.unknownKeyword()
				continue
			}
			goto done
		}

		if p.tok.Kind != token.Comma {
			break
		}
		p.advance()
	}
done:
	if !p.expectEOL() {
		return h, false
	}
	return h, true
}

// ParseFile reads a "file" record.
func (p *Parser) ParseFile() (database.File, bool) {
	p.advance() // skip "file"

	var f database.File
	var have uint32

	for {
		switch p.tok.Kind {
		case token.KwID, token.KwMod, token.KwMtime, token.KwName, token.KwSize:
			kw := p.tok.Kind
			p.advance()
			if !p.consumeEqual() {
				return f, false
			}
			switch kw {
			case token.KwID:
				v, ok := p.intConst()
				if !ok {
					return f, false
				}
				f.ID = database.ID(v)
				have |= fileID
				p.advance()

			case token.KwMtime:
				v, ok := p.intConst()
				if !ok {
					return f, false
				}
				f.MTime = v
				have |= fileMTime
				p.advance()

			case token.KwMod:
				ids, ok := p.idList()
				if !ok {
					return f, false
				}
				f.ModuleIDs = ids
				have |= fileModID

			case token.KwName:
				s, ok := p.strConst()
				if !ok {
					return f, false
				}
				f.Name = s
				have |= fileName
				p.advance()

			case token.KwSize:
				v, ok := p.intConst()
				if !ok {
					return f, false
				}
				f.Size = v
				have |= fileSize
				p.advance()
			}

		default:
			if p.tok.Kind == token.Ident || p.tok.Kind.IsKeyword() {
				p.unknownKeyword()
				continue
			}
			goto done
		}

		if p.tok.Kind != token.Comma {
			break
		}
		p.advance()
	}
done:
	if !p.expectEOL() {
		return f, false
	}
	if have&fileRequired != fileRequired {
		p.report(diag.Error, "required attributes missing")
		return f, false
	}
	return f, true
}

// ParseLibrary reads a "lib" record.
func (p *Parser) ParseLibrary() (database.Library, bool) {
	p.advance() // skip "lib"

	var l database.Library
	var have uint32

	for {
		switch p.tok.Kind {
		case token.KwID, token.KwName:
			kw := p.tok.Kind
			p.advance()
			if !p.consumeEqual() {
				return l, false
			}
			switch kw {
			case token.KwID:
				v, ok := p.intConst()
				if !ok {
					return l, false
				}
				l.ID = database.ID(v)
				have |= libID
				p.advance()
			case token.KwName:
				s, ok := p.strConst()
				if !ok {
					return l, false
				}
				l.Name = s
				have |= libName
				p.advance()
			}

		default:
			if p.tok.Kind == token.Ident || p.tok.Kind.IsKeyword() {
				p.unknownKeyword()
				continue
			}
			goto done
		}

		if p.tok.Kind != token.Comma {
			break
		}
		p.advance()
	}
done:
	if !p.expectEOL() {
		return l, false
	}
	if have&libRequired != libRequired {
		p.report(diag.Error, "required attributes missing")
		return l, false
	}
	return l, true
}

// ParseLine reads a "line" record. Count is accepted and discarded, like
// the reference parser's Count field which nothing ever reads back.
func (p *Parser) ParseLine() (database.Line, bool) {
	p.advance() // skip "line"

	var l database.Line
	var have uint32

	for {
		switch p.tok.Kind {
		case token.KwCount, token.KwFile, token.KwID, token.KwLine, token.KwSpan, token.KwType:
			kw := p.tok.Kind
			p.advance()
			if !p.consumeEqual() {
				return l, false
			}
			switch kw {
			case token.KwFile:
				v, ok := p.intConst()
				if !ok {
					return l, false
				}
				l.File = database.ID(v)
				have |= lineFileID
				p.advance()

			case token.KwID:
				v, ok := p.intConst()
				if !ok {
					return l, false
				}
				l.ID = database.ID(v)
				have |= lineID
				p.advance()

			case token.KwLine:
				v, ok := p.intConst()
				if !ok {
					return l, false
				}
				l.LineNumber = v
				have |= lineLineNo
				p.advance()

			case token.KwSpan:
				ids, ok := p.idList()
				if !ok {
					return l, false
				}
				l.SpanIDs = ids
				have |= lineSpanID

			case token.KwType:
				v, ok := p.intConst()
				if !ok {
					return l, false
				}
				l.Type = database.LineType(v)
				have |= lineType
				p.advance()

			case token.KwCount:
				_, ok := p.intConst()
				if !ok {
					return l, false
				}
				have |= lineCount
				p.advance()
			}

		default:
			if p.tok.Kind == token.Ident || p.tok.Kind.IsKeyword() {
				p.unknownKeyword()
				continue
			}
			goto done
		}

		if p.tok.Kind != token.Comma {
			break
		}
		p.advance()
	}
done:
	if !p.expectEOL() {
		return l, false
	}
	if have&lineRequired != lineRequired {
		p.report(diag.Error, "required attributes missing")
		return l, false
	}
	return l, true
}

// ParseModule reads a "mod" record.
func (p *Parser) ParseModule() (database.Module, bool) {
	p.advance() // skip "mod"

	var m database.Module
	m.Library = database.NoID
	var have uint32

	for {
		switch p.tok.Kind {
		case token.KwFile, token.KwID, token.KwName, token.KwLib:
			kw := p.tok.Kind
			p.advance()
			if !p.consumeEqual() {
				return m, false
			}
			switch kw {
			case token.KwFile:
				v, ok := p.intConst()
				if !ok {
					return m, false
				}
				m.MainFile = database.ID(v)
				have |= modFileID
				p.advance()

			case token.KwID:
				v, ok := p.intConst()
				if !ok {
					return m, false
				}
				m.ID = database.ID(v)
				have |= modID
				p.advance()

			case token.KwName:
				s, ok := p.strConst()
				if !ok {
					return m, false
				}
				m.Name = s
				have |= modName
				p.advance()

			case token.KwLib:
				v, ok := p.intConst()
				if !ok {
					return m, false
				}
				m.Library = database.ID(v)
				have |= modLibID
				p.advance()
			}

		default:
			if p.tok.Kind == token.Ident || p.tok.Kind.IsKeyword() {
				p.unknownKeyword()
				continue
			}
			goto done
		}

		if p.tok.Kind != token.Comma {
			break
		}
		p.advance()
	}
done:
	if !p.expectEOL() {
		return m, false
	}
	if have&modRequired != modRequired {
		p.report(diag.Error, "required attributes missing")
		return m, false
	}
	return m, true
}

// ParseScope reads a "scope" record.
func (p *Parser) ParseScope() (database.Scope, bool) {
	p.advance() // skip "scope"

	var s database.Scope
	s.Parent = database.NoID
	s.Label = database.NoID
	var have uint32

	for {
		switch p.tok.Kind {
		case token.KwID, token.KwMod, token.KwName, token.KwParent,
			token.KwSize, token.KwSpan, token.KwSym, token.KwType:
			kw := p.tok.Kind
			p.advance()
			if !p.consumeEqual() {
				return s, false
			}
			switch kw {
			case token.KwID:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.ID = database.ID(v)
				have |= scopeID
				p.advance()

			case token.KwMod:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.Module = database.ID(v)
				have |= scopeModID
				p.advance()

			case token.KwName:
				str, ok := p.strConst()
				if !ok {
					return s, false
				}
				s.Name = str
				have |= scopeName
				p.advance()

			case token.KwParent:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.Parent = database.ID(v)
				have |= scopeParentID
				p.advance()

			case token.KwSize:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.Size = v
				have |= scopeSize
				p.advance()

			case token.KwSpan:
				ids, ok := p.idList()
				if !ok {
					return s, false
				}
				s.SpanIDs = ids
				have |= scopeSpanID

			case token.KwSym:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.Label = database.ID(v)
				have |= scopeSymID
				p.advance()

			case token.KwType:
				switch p.tok.Kind {
				case token.KwGlobal:
					s.Type = database.ScopeGlobal
				case token.KwFile:
					s.Type = database.ScopeModule
				case token.KwScope:
					s.Type = database.ScopeScope
				case token.KwStruct:
					s.Type = database.ScopeStruct
				case token.KwEnum:
					s.Type = database.ScopeEnum
				default:
					p.report(diag.Error, "unknown value for attribute \"type\"")
					p.skipLine()
					return s, false
				}
				have |= scopeType
				p.advance()
			}

		default:
			if p.tok.Kind == token.Ident || p.tok.Kind.IsKeyword() {
				p.unknownKeyword()
				continue
			}
			goto done
		}

		if p.tok.Kind != token.Comma {
			break
		}
		p.advance()
	}
done:
	if !p.expectEOL() {
		return s, false
	}
	if have&scopeRequired != scopeRequired {
		p.report(diag.Error, "required attributes missing")
		return s, false
	}
	return s, true
}

// ParseSegment reads a "seg" record. Unlike the reference parser, which
// accepts and discards the "type" value, this one keeps it as
// database.Segment.Kind. The "addrsize" value is required but, as in the
// reference parser, skipped without being stored.
func (p *Parser) ParseSegment() (database.Segment, bool) {
	p.advance() // skip "seg"

	var s database.Segment
	var have uint32
	var haveOutputName, haveOutputOffs bool

	for {
		switch p.tok.Kind {
		case token.KwAddrsize, token.KwID, token.KwName, token.KwOname,
			token.KwOoffs, token.KwSize, token.KwStart, token.KwType:
			kw := p.tok.Kind
			p.advance()
			if !p.consumeEqual() {
				return s, false
			}
			switch kw {
			case token.KwAddrsize:
				p.advance()
				have |= segAddrSize

			case token.KwID:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.ID = database.ID(v)
				have |= segID
				p.advance()

			case token.KwName:
				str, ok := p.strConst()
				if !ok {
					return s, false
				}
				s.Name = str
				have |= segName
				p.advance()

			case token.KwOname:
				str, ok := p.strConst()
				if !ok {
					return s, false
				}
				s.OutputName = str
				s.HasOutput = true
				haveOutputName = true
				have |= segOutputName
				p.advance()

			case token.KwOoffs:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.OutputOffs = v
				haveOutputOffs = true
				have |= segOutputOffs
				p.advance()

			case token.KwSize:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.Size = v
				have |= segSize
				p.advance()

			case token.KwStart:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.Start = v
				have |= segStart
				p.advance()

			case token.KwType:
				switch p.tok.Kind {
				case token.KwRO:
					s.Kind = database.SegmentReadOnly
				case token.KwRW:
					s.Kind = database.SegmentReadWrite
				default:
					p.report(diag.Error, "unknown value for attribute \"type\"")
					p.skipLine()
					return s, false
				}
				have |= segType
				p.advance()
			}

		default:
			if p.tok.Kind == token.Ident || p.tok.Kind.IsKeyword() {
				p.unknownKeyword()
				continue
			}
			goto done
		}

		if p.tok.Kind != token.Comma {
			break
		}
		p.advance()
	}
done:
	if !p.expectEOL() {
		return s, false
	}
	if have&segRequired != segRequired {
		p.report(diag.Error, "required attributes missing")
		return s, false
	}
	if haveOutputName != haveOutputOffs {
		p.report(diag.Error, "attributes \"oname\" and \"ooffs\" must be paired")
		return s, false
	}
	return s, true
}

// ParseSpan reads a "span" record. Size is folded into Start/End
// immediately: Span carries an inclusive [Start, End] range, not a
// (start, size) pair, matching the query surface's range semantics.
func (p *Parser) ParseSpan() (database.Span, bool) {
	p.advance() // skip "span"

	var s database.Span
	var size uint64
	var have uint32

	for {
		switch p.tok.Kind {
		case token.KwID, token.KwSeg, token.KwSize, token.KwStart:
			kw := p.tok.Kind
			p.advance()
			if !p.consumeEqual() {
				return s, false
			}
			switch kw {
			case token.KwID:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.ID = database.ID(v)
				have |= spanID
				p.advance()

			case token.KwSeg:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.Segment = database.ID(v)
				have |= spanSegID
				p.advance()

			case token.KwSize:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				size = v
				have |= spanSize
				p.advance()

			case token.KwStart:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.Start = v
				have |= spanStart
				p.advance()
			}

		default:
			if p.tok.Kind == token.Ident || p.tok.Kind.IsKeyword() {
				p.unknownKeyword()
				continue
			}
			goto done
		}

		if p.tok.Kind != token.Comma {
			break
		}
		p.advance()
	}
done:
	if !p.expectEOL() {
		return s, false
	}
	if have&spanRequired != spanRequired {
		p.report(diag.Error, "required attributes missing")
		return s, false
	}
	if size == 0 {
		s.End = s.Start
	} else {
		s.End = s.Start + size - 1
	}
	return s, true
}

// ParseSym reads a "sym" record. The file attribute, if present, is
// captured on Symbol.File for data-model completeness but — matching the
// reference parser, which parses it into a local variable and then never
// stores it — it takes no part in resolution or any query.
func (p *Parser) ParseSym() (database.Symbol, bool) {
	p.advance() // skip "sym"

	var s database.Symbol
	s.Scope = database.NoID
	s.Parent = database.NoID
	s.Segment = database.NoID
	s.File = database.NoID
	var have uint32

	for {
		switch p.tok.Kind {
		case token.KwAddrsize, token.KwFile, token.KwID, token.KwName,
			token.KwParent, token.KwScope, token.KwSeg, token.KwSize,
			token.KwType, token.KwVal:
			kw := p.tok.Kind
			p.advance()
			if !p.consumeEqual() {
				return s, false
			}
			switch kw {
			case token.KwAddrsize:
				p.advance()
				have |= symAddrSize

			case token.KwFile:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.File = database.ID(v)
				have |= symFileID
				p.advance()

			case token.KwID:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.ID = database.ID(v)
				have |= symID
				p.advance()

			case token.KwName:
				str, ok := p.strConst()
				if !ok {
					return s, false
				}
				s.Name = str
				have |= symName
				p.advance()

			case token.KwParent:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.Parent = database.ID(v)
				have |= symParentID
				p.advance()

			case token.KwScope:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.Scope = database.ID(v)
				have |= symScopeID
				p.advance()

			case token.KwSeg:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.Segment = database.ID(v)
				have |= symSegID
				p.advance()

			case token.KwSize:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.Size = v
				have |= symSize
				p.advance()

			case token.KwType:
				switch p.tok.Kind {
				case token.KwEqu:
					s.Type = database.SymEquate
				case token.KwLab:
					s.Type = database.SymLabel
				default:
					p.report(diag.Error, "unknown value for attribute \"type\"")
					p.skipLine()
					return s, false
				}
				have |= symType
				p.advance()

			case token.KwVal:
				v, ok := p.intConst()
				if !ok {
					return s, false
				}
				s.Value = int64(v)
				have |= symValue
				p.advance()
			}

		default:
			if p.tok.Kind == token.Ident || p.tok.Kind.IsKeyword() {
				p.unknownKeyword()
				continue
			}
			goto done
		}

		if p.tok.Kind != token.Comma {
			break
		}
		p.advance()
	}
done:
	if !p.expectEOL() {
		return s, false
	}
	if have&symRequired != symRequired {
		p.report(diag.Error, "required attributes missing")
		return s, false
	}
	if have&(symScopeID|symParentID) == 0 || have&(symScopeID|symParentID) == symScopeID|symParentID {
		p.report(diag.Error, "only one of \"parent\", \"scope\" must be specified")
		return s, false
	}
	return s, true
}
