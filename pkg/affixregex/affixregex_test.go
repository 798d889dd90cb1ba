package affixregex

import "testing"

func TestCompoundRulePlus(t *testing.T) {
	m, err := Compile("^(f+)$")
	if err != nil {
		t.Fatal(err)
	}
	if !m.MatchFull([]byte("f")) {
		t.Error("expected f to match f+")
	}
	if !m.MatchFull([]byte("ff")) {
		t.Error("expected ff to match f+")
	}
	if m.MatchFull([]byte("fb")) {
		t.Error("did not expect fb to match f+")
	}
	if m.MatchFull([]byte("")) {
		t.Error("did not expect empty string to match f+")
	}
}

func TestCompoundRuleAlternation(t *testing.T) {
	m, err := Compile("^(ab|cd)$")
	if err != nil {
		t.Fatal(err)
	}
	for _, good := range []string{"ab", "cd"} {
		if !m.MatchFull([]byte(good)) {
			t.Errorf("expected %q to match", good)
		}
	}
	if m.MatchFull([]byte("ac")) {
		t.Error("did not expect ac to match")
	}
}

func TestAffixCondition(t *testing.T) {
	m, err := Compile("^[^aeiou]")
	if err != nil {
		t.Fatal(err)
	}
	if !m.MatchAnchoredPrefix([]byte("bcd")) {
		t.Error("expected bcd to match non-vowel-start condition")
	}
	if m.MatchAnchoredPrefix([]byte("abc")) {
		t.Error("did not expect abc to match non-vowel-start condition")
	}
}

func TestSuffixCondition(t *testing.T) {
	m, err := Compile("tion$")
	if err != nil {
		t.Fatal(err)
	}
	if !m.MatchAnchoredSuffix([]byte("disconnection")) {
		t.Error("expected disconnection to end in tion")
	}
	if m.MatchAnchoredSuffix([]byte("disconnected")) {
		t.Error("did not expect disconnected to end in tion")
	}
}

func TestCharClassRange(t *testing.T) {
	m, err := Compile("^[a-z]$")
	if err != nil {
		t.Fatal(err)
	}
	if !m.MatchFull([]byte("m")) {
		t.Error("expected m to match [a-z]")
	}
	if m.MatchFull([]byte("5")) {
		t.Error("did not expect 5 to match [a-z]")
	}
}
