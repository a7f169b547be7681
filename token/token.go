package token

import "sort"

// Kind identifies the lexical class of a Token.
type Kind int

const (
	Invalid Kind = iota
	EOF
	EOL

	IntConst
	StrConst
	Ident

	Equals
	Comma
	Plus
	Minus

	// Keywords, in the order the format's record parser reaches for them.
	// The set is closed: record.Parser switches over exactly this list.
	KwAbs
	KwAddrsize
	KwCount
	KwEnum
	KwEqu
	KwFile
	KwGlobal
	KwID
	KwInfo
	KwLab
	KwLib
	KwLine
	KwLong
	KwMajor
	KwMinor
	KwMod
	KwMtime
	KwName
	KwOname
	KwOoffs
	KwParent
	KwRO
	KwRW
	KwScope
	KwSeg
	KwSize
	KwSpan
	KwStart
	KwStruct
	KwSym
	KwType
	KwVal
	KwVersion
	KwZp
)

var kindNames = map[Kind]string{
	Invalid:  "INVALID",
	EOF:      "EOF",
	EOL:      "EOL",
	IntConst: "INTCONST",
	StrConst: "STRCONST",
	Ident:    "IDENT",
	Equals:   "=",
	Comma:    ",",
	Plus:     "+",
	Minus:    "-",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	for _, e := range keywordTable {
		if e.kind == k {
			return e.word
		}
	}
	return "KEYWORD"
}

// IsKeyword reports whether k is one of the fixed record/attribute keywords.
func (k Kind) IsKeyword() bool {
	return k >= KwAbs && k <= KwZp
}

type keywordEntry struct {
	word string
	kind Kind
}

// keywordTable must stay sorted by word: Lookup binary-searches it, matching
// the reference scanner's bsearch over its KeywordTable.
var keywordTable = []keywordEntry{
	{"abs", KwAbs},
	{"addrsize", KwAddrsize},
	{"count", KwCount},
	{"enum", KwEnum},
	{"equ", KwEqu},
	{"file", KwFile},
	{"global", KwGlobal},
	{"id", KwID},
	{"info", KwInfo},
	{"lab", KwLab},
	{"lib", KwLib},
	{"line", KwLine},
	{"long", KwLong},
	{"major", KwMajor},
	{"minor", KwMinor},
	{"mod", KwMod},
	{"mtime", KwMtime},
	{"name", KwName},
	{"oname", KwOname},
	{"ooffs", KwOoffs},
	{"parent", KwParent},
	{"ro", KwRO},
	{"rw", KwRW},
	{"scope", KwScope},
	{"seg", KwSeg},
	{"size", KwSize},
	{"span", KwSpan},
	{"start", KwStart},
	{"struct", KwStruct},
	{"sym", KwSym},
	{"type", KwType},
	{"val", KwVal},
	{"version", KwVersion},
	{"zp", KwZp},
}

// LookupKeyword returns the keyword Kind for word, or (Ident, false) if word
// is not one of the fixed keywords.
func LookupKeyword(word string) (Kind, bool) {
	i := sort.Search(len(keywordTable), func(i int) bool {
		return keywordTable[i].word >= word
	})
	if i < len(keywordTable) && keywordTable[i].word == word {
		return keywordTable[i].kind, true
	}
	return Ident, false
}

// Token is one lexical unit together with its source position.
type Token struct {
	Kind Kind
	Str  string // Ident/StrConst literal text
	Int  uint64 // IntConst value
	Pos  Position
}
