package matcher

import (
	"testing"

	"github.com/bastiangx/gospell/pkg/langdata"
	"github.com/bastiangx/gospell/pkg/trie"
)

func buildTestLanguage() *langdata.Language {
	b := trie.NewBuilder()
	b.Add(trie.Entry{Word: []byte("cat"), Leaves: []uint32{langdata.WordMeta{}.Encode()}})
	b.Add(trie.Entry{Word: []byte("cats"), Leaves: []uint32{langdata.WordMeta{Base: langdata.WFRare}.Encode()}})
	b.Add(trie.Entry{Word: []byte("bad"), Leaves: []uint32{langdata.WordMeta{Base: langdata.WFBanned}.Encode()}})

	l := langdata.NewLanguage("test", "")
	l.FoldCase = b.Finish()
	for _, c := range "abcdstzABCDSTZ" {
		l.WordChars[c] = true
	}
	return l
}

func TestCheckWordOK(t *testing.T) {
	l := buildTestLanguage()
	class, n := CheckWord(l, langdata.AllRegionsMask, []byte("cat"), 0)
	if class != langdata.ResultOK || n != 3 {
		t.Fatalf("expected ok/3, got %v/%d", class, n)
	}
}

func TestCheckWordRare(t *testing.T) {
	l := buildTestLanguage()
	class, n := CheckWord(l, langdata.AllRegionsMask, []byte("cats"), 0)
	if class != langdata.ResultRare || n != 4 {
		t.Fatalf("expected rare/4, got %v/%d", class, n)
	}
}

func TestCheckWordBanned(t *testing.T) {
	l := buildTestLanguage()
	class, n := CheckWord(l, langdata.AllRegionsMask, []byte("bad"), 0)
	if class != langdata.ResultBanned || n != 3 {
		t.Fatalf("expected banned/3, got %v/%d", class, n)
	}
}

func TestCheckWordUnknown(t *testing.T) {
	l := buildTestLanguage()
	class, n := CheckWord(l, langdata.AllRegionsMask, []byte("zzz"), 0)
	if class != langdata.ResultBad || n != 3 {
		t.Fatalf("expected bad/3, got %v/%d", class, n)
	}
}

func TestCheckWordWhitespacePassthrough(t *testing.T) {
	l := buildTestLanguage()
	class, n := CheckWord(l, langdata.AllRegionsMask, []byte(" cat"), 0)
	if class != langdata.ResultOK || n != 1 {
		t.Fatalf("expected ok/1 for leading space, got %v/%d", class, n)
	}
}

func TestCheckWordCaseFolds(t *testing.T) {
	l := buildTestLanguage()
	class, n := CheckWord(l, langdata.AllRegionsMask, []byte("CAT"), 0)
	if class != langdata.ResultOK || n != 3 {
		t.Fatalf("expected ok/3 for CAT, got %v/%d", class, n)
	}
}

func buildCompoundTestLanguage() *langdata.Language {
	b := trie.NewBuilder()
	b.Add(trie.Entry{Word: []byte("foot"), Leaves: []uint32{langdata.WordMeta{Extra: langdata.WFCompRoot}.Encode()}})
	b.Add(trie.Entry{Word: []byte("ball"), Leaves: []uint32{langdata.WordMeta{Extra: langdata.WFCompRoot}.Encode()}})

	l := langdata.NewLanguage("test", "")
	l.FoldCase = b.Finish()
	for _, c := range "abflot" {
		l.WordChars[c] = true
	}
	l.Compound.MinLength = 1
	l.Compound.MaxWords = 2
	l.Compound.Flag = 'f'
	return l
}

func TestCheckWordCompoundContinuation(t *testing.T) {
	l := buildCompoundTestLanguage()
	class, n := CheckWord(l, langdata.AllRegionsMask, []byte("football"), 0)
	if class != langdata.ResultOK || n != len("football") {
		t.Fatalf("expected ok/%d for football, got %v/%d", len("football"), class, n)
	}
}

func buildRegionTestLanguage() *langdata.Language {
	b := trie.NewBuilder()
	b.Add(trie.Entry{Word: []byte("colour"), Leaves: []uint32{langdata.WordMeta{Base: langdata.WFRegion, Region: 0x02}.Encode()}})

	l := langdata.NewLanguage("test", "")
	l.FoldCase = b.Finish()
	for _, c := range "colur" {
		l.WordChars[c] = true
	}
	l.Regions.Names[1] = "gb"
	l.Regions.Count = 2
	return l
}

func TestCheckWordRegionActive(t *testing.T) {
	l := buildRegionTestLanguage()
	mask := l.ActiveRegionMask([]string{"gb"})
	class, n := CheckWord(l, mask, []byte("colour"), 0)
	if class != langdata.ResultOK || n != len("colour") {
		t.Fatalf("expected ok/%d for colour with gb active, got %v/%d", len("colour"), class, n)
	}
}

func TestCheckWordRegionInactive(t *testing.T) {
	l := buildRegionTestLanguage()
	mask := l.ActiveRegionMask([]string{"us"})
	class, n := CheckWord(l, mask, []byte("colour"), 0)
	if class != langdata.ResultLocal || n != len("colour") {
		t.Fatalf("expected local/%d for colour with us active, got %v/%d", len("colour"), class, n)
	}
}
