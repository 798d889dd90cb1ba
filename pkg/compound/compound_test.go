package compound

import (
	"testing"

	"github.com/bastiangx/gospell/pkg/affixregex"
)

func TestMatchCompoundRulePruning(t *testing.T) {
	if !MatchCompoundRule([]byte{'f'}, "f+") {
		t.Fatalf("expected f to be found in raw rule")
	}
	if MatchCompoundRule([]byte{'g'}, "f+") {
		t.Fatalf("expected g to be absent from raw rule")
	}
}

func TestCanCompoundFootball(t *testing.T) {
	m, err := affixregex.Compile("^f+$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !CanCompound([]byte("ff"), m, 2, 1, 0) {
		t.Fatalf("expected ff to satisfy f+")
	}
	if CanCompound([]byte("fg"), m, 2, 1, 0) {
		t.Fatalf("expected fg to fail f+")
	}
}

func TestCanCompoundSyllableOverflowButShortWordCount(t *testing.T) {
	m, err := affixregex.Compile("^f+$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !CanCompound([]byte("ff"), m, 3, 5, 2) {
		t.Fatalf("expected syllable overflow to be forgiven for a short word count")
	}
	if CanCompound([]byte("fff"), m, 2, 5, 2) {
		t.Fatalf("expected syllable overflow to fail once word count also exceeds compmax")
	}
}

func TestCountSyllablesPrefersLongestTableEntry(t *testing.T) {
	table := [][]byte{[]byte("a"), []byte("ea")}
	n := CountSyllables([]byte("eat"), nil, table)
	if n != 1 {
		t.Fatalf("expected 1 syllable for \"eat\" via longest-entry match, got %d", n)
	}
}

func TestCountSyllablesSetFallback(t *testing.T) {
	n := CountSyllables([]byte("aeiou"), []byte("aeiou"), nil)
	if n != 1 {
		t.Fatalf("expected a run of vowels to count as one syllable, got %d", n)
	}
	n = CountSyllables([]byte("banana"), []byte("a"), nil)
	if n != 3 {
		t.Fatalf("expected 3 syllables in banana, got %d", n)
	}
}
