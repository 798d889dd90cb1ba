package engine

import (
	"bytes"
	"os"
	"testing"

	"github.com/bastiangx/gospell/pkg/langdata"
	"github.com/bastiangx/gospell/pkg/spellfile"
	"github.com/bastiangx/gospell/pkg/trie"
)

func sampleLanguageBytes(t *testing.T) []byte {
	t.Helper()
	b := trie.NewBuilder()
	b.Add(trie.Entry{Word: []byte("cat"), Leaves: []uint32{langdata.WordMeta{}.Encode()}})
	b.Add(trie.Entry{Word: []byte("cats"), Leaves: []uint32{langdata.WordMeta{}.Encode()}})
	b.Add(trie.Entry{Word: []byte("dog"), Leaves: []uint32{langdata.WordMeta{}.Encode()}})

	l := langdata.NewLanguage("test", "")
	l.FoldCase = b.Finish()
	for _, c := range "abcdgotszABCDGOTSZ" {
		l.WordChars[c] = true
	}

	var buf bytes.Buffer
	if err := spellfile.Write(&buf, l); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes()
}

type fakeLines struct {
	lines []string
}

func (f *fakeLines) Line(buffer any, lnum int) ([]byte, error) {
	if lnum < 0 || lnum >= len(f.lines) {
		return nil, errOutOfRange
	}
	return []byte(f.lines[lnum]), nil
}

var errOutOfRange = &outOfRangeErr{}

type outOfRangeErr struct{}

func (e *outOfRangeErr) Error() string { return "line out of range" }

func loadTestEngine(t *testing.T, path string) *Engine {
	t.Helper()
	e := New()
	if err := e.LoadLanguage("test", path); err != nil {
		t.Fatalf("LoadLanguage: %v", err)
	}
	return e
}

func TestEngineLoadAndCheckWord(t *testing.T) {
	data := sampleLanguageBytes(t)
	dir := t.TempDir()
	path := dir + "/test.spl"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	e := loadTestEngine(t, path)

	class, n := e.CheckWord([]byte("cat"), 0)
	if class != langdata.ResultOK || n != 3 {
		t.Fatalf("expected ok/3, got %v/%d", class, n)
	}

	class, n = e.CheckWord([]byte("zzz"), 0)
	if class != langdata.ResultBad || n != 3 {
		t.Fatalf("expected bad/3, got %v/%d", class, n)
	}
}

func TestEngineSuggestions(t *testing.T) {
	data := sampleLanguageBytes(t)
	dir := t.TempDir()
	path := dir + "/test.spl"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	e := loadTestEngine(t, path)

	sugs := e.Suggestions([]byte("cet"), 5)
	found := false
	for _, s := range sugs {
		if s.Word == "cat" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected cat among suggestions for cet, got %+v", sugs)
	}
}

func TestEngineReloadSwapsLanguage(t *testing.T) {
	data := sampleLanguageBytes(t)
	dir := t.TempDir()
	path := dir + "/test.spl"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	e := loadTestEngine(t, path)
	first := e.Language("test")

	if err := e.LoadLanguage("test", path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	second := e.Language("test")
	if first == second {
		t.Fatalf("expected reload to swap in a new *langdata.Language pointer")
	}
}

func TestEngineFreeAllLanguages(t *testing.T) {
	data := sampleLanguageBytes(t)
	dir := t.TempDir()
	path := dir + "/test.spl"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	e := loadTestEngine(t, path)
	e.FreeAllLanguages()
	class, n := e.CheckWord([]byte("cat"), 0)
	if class != langdata.ResultOK || n != 1 {
		t.Fatalf("expected a no-language passthrough result, got %v/%d", class, n)
	}
}

func TestEngineMoveToNextError(t *testing.T) {
	data := sampleLanguageBytes(t)
	dir := t.TempDir()
	path := dir + "/test.spl"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	e := loadTestEngine(t, path)
	e.Lines = &fakeLines{lines: []string{"cat zzz dog"}}

	line, col, length, ok := e.MoveToNextError(nil, 0, 0, 1, false, true)
	if !ok {
		t.Fatalf("expected to find an error word")
	}
	if line != 0 || col != 4 || length != 3 {
		t.Fatalf("expected error at (0,4,3) for \"zzz\", got (%d,%d,%d)", line, col, length)
	}
}

func sampleRegionLanguageBytes(t *testing.T) []byte {
	t.Helper()
	b := trie.NewBuilder()
	b.Add(trie.Entry{Word: []byte("colour"), Leaves: []uint32{langdata.WordMeta{Base: langdata.WFRegion, Region: 0x02}.Encode()}})

	l := langdata.NewLanguage("test", "")
	l.FoldCase = b.Finish()
	for _, c := range "colur" {
		l.WordChars[c] = true
	}
	l.Regions.Names[0] = "us"
	l.Regions.Names[1] = "gb"
	l.Regions.Count = 2

	var buf bytes.Buffer
	if err := spellfile.Write(&buf, l); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes()
}

func TestEngineLoadLanguageActiveRegion(t *testing.T) {
	data := sampleRegionLanguageBytes(t)
	dir := t.TempDir()
	path := dir + "/test.spl"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	e := New()
	if err := e.LoadLanguage("test", path, "gb"); err != nil {
		t.Fatalf("LoadLanguage: %v", err)
	}
	class, n := e.CheckWord([]byte("colour"), 0)
	if class != langdata.ResultOK || n != len("colour") {
		t.Fatalf("expected ok/%d for colour with gb active, got %v/%d", len("colour"), class, n)
	}
}

func TestEngineLoadLanguageInactiveRegionDemotesToLocal(t *testing.T) {
	data := sampleRegionLanguageBytes(t)
	dir := t.TempDir()
	path := dir + "/test.spl"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	e := New()
	if err := e.LoadLanguage("test", path, "us"); err != nil {
		t.Fatalf("LoadLanguage: %v", err)
	}
	class, n := e.CheckWord([]byte("colour"), 0)
	if class != langdata.ResultLocal || n != len("colour") {
		t.Fatalf("expected local/%d for colour with us active, got %v/%d", len("colour"), class, n)
	}
}

func TestEngineDumpWords(t *testing.T) {
	data := sampleLanguageBytes(t)
	dir := t.TempDir()
	path := dir + "/test.spl"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	e := loadTestEngine(t, path)

	seen := make(map[string]bool)
	e.DumpWords("", func(word string, meta langdata.WordMeta) {
		seen[word] = true
	})
	for _, w := range []string{"cat", "cats", "dog"} {
		if !seen[w] {
			t.Fatalf("expected DumpWords to visit %q, got %v", w, seen)
		}
	}
}

