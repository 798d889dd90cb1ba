package affix

import (
	"strings"
	"testing"

	"github.com/bastiangx/gospell/pkg/langdata"
)

const sampleAff = `
SET UTF-8
FLAG long
MIDWORD '
TRY esianrtolcdugmphbyfvkwzESIANRTOLCDUGMPHBYFVKWZ
COMPOUNDFLAG Cc
COMPOUNDMIN 3
PFXPOSTPONE
PFX Re Y 1
PFX Re 0 re 0
SFX Ds Y 1
SFX Ds 0 s .
REP 1
REP teh the
MAP 2
MAP aá
MAP eé
`

func TestCompileBasicDirectives(t *testing.T) {
	tbl, err := Compile(strings.NewReader(sampleAff))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if tbl.FlagMode != FlagDoubleChar {
		t.Fatalf("expected long flag mode, got %v", tbl.FlagMode)
	}
	if !tbl.Midword['\''] {
		t.Fatalf("expected midword apostrophe")
	}
	if tbl.CompoundFlag != "Cc" {
		t.Fatalf("expected compound flag Cc, got %q", tbl.CompoundFlag)
	}
	if tbl.CompoundMin != 3 {
		t.Fatalf("expected compoundmin 3, got %d", tbl.CompoundMin)
	}
	pfx, ok := tbl.Prefixes["Re"]
	if !ok || len(pfx.Entries) != 1 || pfx.Entries[0].Add != "re" {
		t.Fatalf("prefix Re not parsed correctly: %+v", tbl.Prefixes["Re"])
	}
	sfx, ok := tbl.Suffixes["Ds"]
	if !ok || len(sfx.Entries) != 1 || sfx.Entries[0].Add != "s" {
		t.Fatalf("suffix Ds not parsed correctly: %+v", tbl.Suffixes["Ds"])
	}
	if len(tbl.Rep) != 1 || tbl.Rep[0].From != "teh" || tbl.Rep[0].To != "the" {
		t.Fatalf("REP not parsed: %+v", tbl.Rep)
	}
	if len(tbl.Map) != 2 {
		t.Fatalf("expected 2 MAP groups, got %d", len(tbl.Map))
	}
}

func TestApplyToLanguageBuildsPostponedPrefixTree(t *testing.T) {
	tbl, err := Compile(strings.NewReader(sampleAff))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	l := langdata.NewLanguage("test", "")
	if err := tbl.ApplyToLanguage(l); err != nil {
		t.Fatalf("ApplyToLanguage: %v", err)
	}
	if l.Prefix == nil {
		t.Fatalf("expected a prefix tree to be built")
	}
	node, ok := l.Prefix.Lookup([]byte("re"))
	if !ok {
		t.Fatalf("expected \"re\" in postponed prefix tree")
	}
	leaves := l.Prefix.NulLeaves(node)
	if len(leaves) != 1 {
		t.Fatalf("expected one leaf for re, got %d", len(leaves))
	}
	meta := langdata.DecodePrefix(leaves[0])
	if meta.AffixID != 1 {
		t.Fatalf("expected affix id 1, got %d", meta.AffixID)
	}
	if l.Rep == nil || len(l.Rep.Pairs) != 1 {
		t.Fatalf("expected REP list applied")
	}
}

func TestCompileRejectsUnterminatedBlock(t *testing.T) {
	bad := "PFX Re Y 2\nPFX Re 0 re 0\n"
	if _, err := Compile(strings.NewReader(bad)); err == nil {
		t.Fatalf("expected error for unterminated PFX block")
	}
}
