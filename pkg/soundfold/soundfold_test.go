package soundfold

import "testing"

func TestSofoFoldIdempotent(t *testing.T) {
	from := []byte("bpv")
	to := []byte("bbb")
	f := NewSofoFolder(from, to, nil)

	words := []string{"bob", "pub", "verb", "hello"}
	for _, w := range words {
		once := f.Fold([]byte(w))
		twice := f.Fold(once)
		if string(once) != string(twice) {
			t.Errorf("Fold(Fold(%q)) = %q, want %q", w, twice, once)
		}
	}
}

func TestSofoFoldIdentityByDefault(t *testing.T) {
	f := NewSofoFolder(nil, nil, nil)
	got := f.Fold([]byte("unchanged"))
	if string(got) != "unchanged" {
		t.Errorf("Fold with empty table = %q, want unchanged", got)
	}
}

func TestSalFolderNightKnight(t *testing.T) {
	// A tiny rule set that folds a leading "kn" to "n" and drops
	// trailing "ght" to "t", so "night" and "knight" converge.
	rules := []SalRule{
		{Lead: "kn", AnchorStart: true, Replace: "n"},
		{Lead: "ght", Replace: "t"},
	}
	f := NewSalFolder(rules, false, false, false)

	night := f.Fold([]byte("night"))
	knight := f.Fold([]byte("knight"))
	if string(night) != string(knight) {
		t.Errorf("Fold(night)=%q, Fold(knight)=%q, want equal", night, knight)
	}
}
