package dbginfo_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/sixfiveohtwo/dbginfo/addrindex"
	"github.com/sixfiveohtwo/dbginfo/dbginfo"
	"github.com/sixfiveohtwo/dbginfo/diag"
)

func writeDbg(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.dbg")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

const fullFixture = `version major=2,minor=0
info file=1,line=2,mod=1,scope=1,seg=1,span=1,sym=2
file id=0,name="main.s",size=100,mtime=0x0,mod=0
mod id=0,name="main",file=0
scope id=0,mod=0,name="global",size=0,type=global
seg id=0,name="CODE",start=0x8000,size=0x1000,addrsize=abs,type=ro
span id=0,seg=0,start=0x0,size=0x10
line id=0,file=0,line=10,span=0
line id=1,file=0,line=20
sym id=0,name="_start",addrsize=abs,size=1,type=lab,val=0x8000,scope=0
sym id=1,name="BUFSIZE",addrsize=abs,size=1,type=equ,val=0x100,scope=0
`

func TestLoad_MinimalVersionOnlyFile(t *testing.T) {
	path := writeDbg(t, "version major=2,minor=0\n")
	state, err := dbginfo.Load(path, nil, dbginfo.DefaultVersionPolicy())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if state.Query.FileCount() != 0 || state.Query.SymbolCount() != 0 {
		t.Fatalf("expected an empty database, got %+v", state.DB)
	}
}

func TestLoad_FullFixture(t *testing.T) {
	path := writeDbg(t, fullFixture)
	state, err := dbginfo.Load(path, nil, dbginfo.DefaultVersionPolicy())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	lines := state.Query.LineByFileAndLine(0, 10)
	if len(lines) != 1 {
		t.Fatalf("got %d lines for file 0 line 10, want 1", len(lines))
	}

	spans := state.Query.SpansByAddress(0x8005)
	if len(spans) != 1 {
		t.Fatalf("got %d spans at 0x8005, want 1", len(spans))
	}

	syms := state.Query.SymbolsInRange(0, 0xFFFF)
	if len(syms) != 1 {
		t.Fatalf("expected exactly the one label symbol, equates excluded, got %d", len(syms))
	}
}

func TestLoad_OverlappingSpansBothMatchAtSharedAddress(t *testing.T) {
	fixture := `version major=2,minor=0
seg id=0,name="CODE",start=0,size=0x1000,addrsize=abs,type=ro
span id=0,seg=0,start=0x10,size=0x20
span id=1,seg=0,start=0x10,size=0x10
`
	path := writeDbg(t, fixture)
	state, err := dbginfo.Load(path, nil, dbginfo.DefaultVersionPolicy())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	spans := state.Query.SpansByAddress(0x15)
	if len(spans) != 2 {
		t.Fatalf("got %d overlapping spans, want 2", len(spans))
	}
}

func TestLoad_UnknownAttributeIsToleratedAsWarning(t *testing.T) {
	fixture := `version major=2,minor=0
seg id=0,name="CODE",start=0,size=0x100,addrsize=abs,type=ro,futuristic=1
`
	var diags []diag.Diagnostic
	path := writeDbg(t, fixture)
	state, err := dbginfo.Load(path, func(d diag.Diagnostic) { diags = append(diags, d) }, dbginfo.DefaultVersionPolicy())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if state.Query.SegmentCount() != 1 {
		t.Fatalf("segment with an unknown trailing attribute should still load")
	}
	foundWarning := false
	for _, d := range diags {
		if d.Severity == diag.Warning {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Fatalf("expected a warning diagnostic for the unknown attribute")
	}
}

func TestLoad_SymWithNeitherScopeNorParentFailsLoad(t *testing.T) {
	fixture := `version major=2,minor=0
sym id=0,name="_orphan",addrsize=abs,size=1,type=lab,val=0x10
`
	path := writeDbg(t, fixture)
	_, err := dbginfo.Load(path, nil, dbginfo.DefaultVersionPolicy())
	if err == nil {
		t.Fatalf("expected Load to fail: a sym needs exactly one of scope/parent")
	}
}

func TestLoad_UnterminatedStringIsRecoverable(t *testing.T) {
	fixture := "version major=2,minor=0\n" +
		"seg id=0,name=\"CODE,start=0,size=0x100,addrsize=abs,type=ro\n" +
		"seg id=1,name=\"DATA\",start=0x100,size=0x100,addrsize=abs,type=rw\n"
	var diags []diag.Diagnostic
	path := writeDbg(t, fixture)
	_, err := dbginfo.Load(path, func(d diag.Diagnostic) { diags = append(diags, d) }, dbginfo.DefaultVersionPolicy())
	if err == nil {
		t.Fatalf("the malformed first segment record should still fail the overall load")
	}
	if len(diags) == 0 {
		t.Fatalf("expected at least one diagnostic describing the unterminated string")
	}
}

func TestLoad_OldMajorVersionIsFatal(t *testing.T) {
	path := writeDbg(t, "version major=1,minor=0\n")
	_, err := dbginfo.Load(path, nil, dbginfo.DefaultVersionPolicy())
	if err == nil {
		t.Fatalf("a major version older than supported must never load")
	}
}

func TestLoad_NewerMinorWarnsButSucceedsByDefault(t *testing.T) {
	path := writeDbg(t, "version major=2,minor=5\n")
	var diags []diag.Diagnostic
	_, err := dbginfo.Load(path, func(d diag.Diagnostic) { diags = append(diags, d) }, dbginfo.DefaultVersionPolicy())
	if err != nil {
		t.Fatalf("default policy should accept a newer minor version, got %v", err)
	}
	foundWarning := false
	for _, d := range diags {
		if d.Severity == diag.Warning {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Fatalf("expected a warning about the newer minor version")
	}
}

func TestLoad_NewerMinorRejectedWhenPolicyDisallows(t *testing.T) {
	path := writeDbg(t, "version major=2,minor=5\n")
	_, err := dbginfo.Load(path, nil, dbginfo.VersionPolicy{AcceptNewerMinor: false, AcceptNewerMajor: true})
	if err == nil {
		t.Fatalf("expected Load to fail when the policy disallows a newer minor version")
	}
}

func TestLoad_IsIdempotent(t *testing.T) {
	path := writeDbg(t, fullFixture)
	s1, err := dbginfo.Load(path, nil, dbginfo.DefaultVersionPolicy())
	if err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	s2, err := dbginfo.Load(path, nil, dbginfo.DefaultVersionPolicy())
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}

	diff := cmp.Diff(s1.DB, s2.DB, cmpopts.IgnoreUnexported(addrindex.Index{}))
	if diff != "" {
		t.Fatalf("loading the same file twice produced different databases:\n%s", diff)
	}
}
