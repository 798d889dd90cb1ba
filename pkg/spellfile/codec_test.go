package spellfile

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/bastiangx/gospell/pkg/langdata"
	"github.com/bastiangx/gospell/pkg/trie"
)

func sampleLanguage() *langdata.Language {
	b := trie.NewBuilder()
	b.Add(trie.Entry{Word: []byte("cat"), Leaves: []uint32{langdata.WordMeta{}.Encode()}})
	b.Add(trie.Entry{Word: []byte("cats"), Leaves: []uint32{langdata.WordMeta{Base: langdata.WFRare}.Encode()}})
	b.Add(trie.Entry{Word: []byte("dog"), Leaves: []uint32{langdata.WordMeta{}.Encode()}})

	l := langdata.NewLanguage("test", "")
	l.FoldCase = b.Finish()
	l.WordChars['a'] = true
	l.WordChars['c'] = true
	l.WordChars['t'] = true
	l.WordChars['d'] = true
	l.WordChars['o'] = true
	l.WordChars['g'] = true
	l.WordChars['s'] = true
	l.Regions.Count = 1
	l.Regions.Names[0] = "us"
	l.Midword['\''] = true
	l.Compound.MaxWords = 3
	l.Compound.RawRule = "A+"
	l.CommonWords["cat"] = 10
	return l
}

func TestWriteReadRoundTrip(t *testing.T) {
	in := sampleLanguage()
	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if out.Regions.Count != 1 || out.Regions.Names[0] != "us" {
		t.Fatalf("regions not round-tripped: %+v", out.Regions)
	}
	if !out.Midword['\''] {
		t.Fatalf("midword not round-tripped")
	}
	if out.Compound.MaxWords != 3 || out.Compound.RawRule != "A+" {
		t.Fatalf("compound not round-tripped: %+v", out.Compound)
	}
	if out.CommonWords["cat"] != 10 {
		t.Fatalf("common words not round-tripped: %+v", out.CommonWords)
	}

	node, ok := out.FoldCase.Lookup([]byte("cats"))
	if !ok {
		t.Fatalf("lookup cats failed after round trip")
	}
	leaves := out.FoldCase.NulLeaves(node)
	if len(leaves) != 1 {
		t.Fatalf("expected one leaf for cats, got %d", len(leaves))
	}
	if langdata.Decode(leaves[0]).Base&langdata.WFRare == 0 {
		t.Fatalf("rare flag lost in round trip")
	}
}

func TestWriteRejectsBadMagicOnRead(t *testing.T) {
	bad := bytes.NewReader([]byte("not a spell file"))
	if _, err := Read(bad); err == nil {
		t.Fatalf("expected error for bad magic")
	}
}

func TestSugNrRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 127, 128, -128, 16384, -16384, 3000000, -3000000} {
		enc := EncodeSugNr(v)
		r := bufio.NewReader(bytes.NewReader(enc))
		got, err := DecodeSugNr(r)
		if err != nil {
			t.Fatalf("DecodeSugNr(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("sugnr round trip: want %d got %d (encoded %v)", v, got, enc)
		}
	}
}

func TestSugRoundTrip(t *testing.T) {
	l := sampleLanguage()
	sb := trie.NewBuilder()
	sb.Add(trie.Entry{Word: []byte("kt"), Leaves: []uint32{0}})
	l.SoundFold = sb.Finish()
	l.SugTable = [][]uint32{{0, 1, 4}}

	var buf bytes.Buffer
	if err := WriteSug(&buf, l, 12345); err != nil {
		t.Fatalf("WriteSug: %v", err)
	}
	out := langdata.NewLanguage("test", "")
	if err := ReadSug(&buf, out, 12345); err != nil {
		t.Fatalf("ReadSug: %v", err)
	}
	if !out.SugLoaded {
		t.Fatalf("expected SugLoaded")
	}
	if len(out.SugTable) != 1 || len(out.SugTable[0]) != 3 || out.SugTable[0][2] != 4 {
		t.Fatalf("sugtable not round-tripped: %+v", out.SugTable)
	}
}

func TestSugStaleTimestampIgnored(t *testing.T) {
	l := sampleLanguage()
	var buf bytes.Buffer
	if err := WriteSug(&buf, l, 111); err != nil {
		t.Fatalf("WriteSug: %v", err)
	}
	out := langdata.NewLanguage("test", "")
	if err := ReadSug(&buf, out, 222); err != nil {
		t.Fatalf("ReadSug: %v", err)
	}
	if out.SugLoaded {
		t.Fatalf("expected stale .sug to be rejected, not loaded")
	}
	if !out.SugLoadFailed {
		t.Fatalf("expected SugLoadFailed set on stale timestamp")
	}
}
