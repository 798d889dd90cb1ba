package suggest

import (
	"testing"

	"github.com/bastiangx/gospell/pkg/editdist"
	"github.com/bastiangx/gospell/pkg/langdata"
	"github.com/bastiangx/gospell/pkg/soundfold"
	"github.com/bastiangx/gospell/pkg/trie"
)

func buildTestLanguage() *langdata.Language {
	b := trie.NewBuilder()
	for _, w := range []string{"cat", "cats", "cot", "dog", "cart"} {
		b.Add(trie.Entry{Word: []byte(w), Leaves: []uint32{langdata.WordMeta{}.Encode()}})
	}
	l := langdata.NewLanguage("test", "")
	l.FoldCase = b.Finish()
	return l
}

func TestSuggestFindsNearbyWords(t *testing.T) {
	l := buildTestLanguage()
	sugs := Suggest(l, []byte("cet"), Options{Max: 5})
	found := false
	for _, s := range sugs {
		if s.Word == "cat" || s.Word == "cot" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a near match for \"cet\", got %+v", sugs)
	}
}

func TestSuggestExcludesBadWordItself(t *testing.T) {
	l := buildTestLanguage()
	sugs := Suggest(l, []byte("cat"), Options{Max: 5})
	for _, s := range sugs {
		if s.Word == "cat" {
			t.Fatalf("expected the bad word itself to be auto-banned, got it in results: %+v", sugs)
		}
	}
}

func TestSuggestRespectsMax(t *testing.T) {
	l := buildTestLanguage()
	sugs := Suggest(l, []byte("cxt"), Options{Max: 1})
	if len(sugs) > 1 {
		t.Fatalf("expected at most 1 suggestion, got %d", len(sugs))
	}
}

func TestSuggestSwapTransposition(t *testing.T) {
	b := trie.NewBuilder()
	b.Add(trie.Entry{Word: []byte("form"), Leaves: []uint32{langdata.WordMeta{}.Encode()}})
	l := langdata.NewLanguage("test", "")
	l.FoldCase = b.Finish()

	sugs := Suggest(l, []byte("from"), Options{Max: 5})
	var got *langdata.Suggestion
	for i := range sugs {
		if sugs[i].Word == "form" {
			got = &sugs[i]
		}
	}
	if got == nil {
		t.Fatalf("expected \"form\" as a swap-transposition suggestion for \"from\", got %+v", sugs)
	}
	if got.Score != editdist.CostSwap {
		t.Fatalf("expected swap score %d, got %d", editdist.CostSwap, got.Score)
	}
}

func TestSuggestRepTable(t *testing.T) {
	b := trie.NewBuilder()
	b.Add(trie.Entry{Word: []byte("fax"), Leaves: []uint32{langdata.WordMeta{}.Encode()}})
	l := langdata.NewLanguage("test", "")
	l.FoldCase = b.Finish()
	l.Rep = langdata.NewRepList([]langdata.RepPair{{From: "ph", To: "f"}})

	sugs := Suggest(l, []byte("phax"), Options{Max: 5})
	var got *langdata.Suggestion
	for i := range sugs {
		if sugs[i].Word == "fax" {
			got = &sugs[i]
		}
	}
	if got == nil {
		t.Fatalf("expected \"fax\" as a REP-table suggestion for \"phax\", got %+v", sugs)
	}
	if got.Score != editdist.CostRep {
		t.Fatalf("expected REP score %d, got %d", editdist.CostRep, got.Score)
	}
}

func TestSuggestSplit(t *testing.T) {
	b := trie.NewBuilder()
	b.Add(trie.Entry{Word: []byte("foot"), Leaves: []uint32{langdata.WordMeta{}.Encode()}})
	b.Add(trie.Entry{Word: []byte("ball"), Leaves: []uint32{langdata.WordMeta{}.Encode()}})
	l := langdata.NewLanguage("test", "")
	l.FoldCase = b.Finish()

	sugs := Suggest(l, []byte("football"), Options{Max: 5})
	var got *langdata.Suggestion
	for i := range sugs {
		if sugs[i].Word == "foot ball" {
			got = &sugs[i]
		}
	}
	if got == nil {
		t.Fatalf("expected \"foot ball\" split suggestion for \"football\", got %+v", sugs)
	}
	if !got.SplitWord {
		t.Fatalf("expected SplitWord set on the split suggestion")
	}
	if got.Score != editdist.CostSplit {
		t.Fatalf("expected split score %d, got %d", editdist.CostSplit, got.Score)
	}
}

func TestSuggestSoundAlike(t *testing.T) {
	fb := trie.NewBuilder()
	fb.Add(trie.Entry{Word: []byte("knight"), Leaves: []uint32{langdata.WordMeta{}.Encode()}})
	l := langdata.NewLanguage("test", "")
	l.FoldCase = fb.Finish()

	rules := []soundfold.SalRule{
		{Lead: "kn", AnchorStart: true, Replace: "n"},
		{Lead: "ght", Replace: "t"},
	}
	l.Sal = soundfold.NewSalFolder(rules, false, false, false)

	sb := trie.NewBuilder()
	folded := l.Sal.Fold([]byte("night"))
	sb.Add(trie.Entry{Word: folded, Leaves: []uint32{0}})
	l.SoundFold = sb.Finish()
	l.SugTable = [][]uint32{{0}} // index 0 in SoundFold -> good-word index 0 ("knight", the only FoldCase entry)

	sugs := Suggest(l, []byte("night"), Options{Max: 5})
	var got *langdata.Suggestion
	for i := range sugs {
		if sugs[i].Word == "knight" {
			got = &sugs[i]
		}
	}
	if got == nil {
		t.Fatalf("expected \"knight\" as a sound-a-like suggestion for \"night\", got %+v", sugs)
	}
}

func TestSuggestCommonWordDampening(t *testing.T) {
	l := buildTestLanguage()
	l.CommonWords["cat"] = 5000
	sugs := Suggest(l, []byte("cet"), Options{Max: 5})
	var catScore, cotScore int
	var sawCat, sawCot bool
	for _, s := range sugs {
		if s.Word == "cat" {
			catScore, sawCat = s.Score, true
		}
		if s.Word == "cot" {
			cotScore, sawCot = s.Score, true
		}
	}
	if sawCat && sawCot && catScore >= cotScore {
		t.Fatalf("expected common-word dampening to favor cat over cot: cat=%d cot=%d", catScore, cotScore)
	}
}
