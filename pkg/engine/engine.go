/*
Package engine implements the consumer API of spec.md §6.3: an Engine
owns every loaded Language, serves CheckWord/Suggestions/SoundFold/
MoveToNextError/DumpWords, and exposes the host-collaborator interfaces
(LineSource, WordCharClassifier, SentenceEndPredicate, Clock) that the
engine calls into but never implements — those are out of scope for
this core per spec.md §1, same as expr:/file: suggestion sources.

Global mutable state (spec.md's Design Notes) is handled by giving each
Language a private *languageSlot with its own RWMutex; LoadLanguage
builds a brand-new *langdata.Language off to the side and only then
swaps the slot's pointer under the slot's own lock, so a matcher
mid-CheckWord against the old Language is never handed a half-built
new one — it either finishes against the old snapshot or starts fresh
against the new one.
*/
package engine

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/bastiangx/gospell/internal/logger"
	"github.com/bastiangx/gospell/pkg/langdata"
	"github.com/bastiangx/gospell/pkg/matcher"
	"github.com/bastiangx/gospell/pkg/spellfile"
	"github.com/bastiangx/gospell/pkg/suggest"
	"github.com/bastiangx/gospell/pkg/trie"
)

var log = logger.New("engine")

// LineSource returns the raw bytes of buffer's line lnum. The engine
// calls this while scanning for the next misspelled word; it never
// reads a buffer's contents any other way.
type LineSource interface {
	Line(buffer any, lnum int) ([]byte, error)
}

// WordCharClassifier classifies a byte not covered by a Language's own
// WordChars table — used for multi-byte input that falls back to a
// Unicode category check the host, not this core, performs.
type WordCharClassifier interface {
	IsWordChar(r rune) bool
}

// SentenceEndPredicate reports whether pos in line ends a sentence, for
// capitalisation checks (OneCap validation against a sentence-initial
// word).
type SentenceEndPredicate interface {
	IsSentenceEnd(line []byte, pos int) bool
}

// Clock supplies a monotonic timestamp, used for .sug staleness checks
// at load time.
type Clock interface {
	Now() int64
}

type languageSlot struct {
	mu   sync.RWMutex
	lang *langdata.Language
	mask uint8 // active-region bitmask, computed once at load time
}

// loadedLanguage is a consistent (Language, active-region mask) snapshot
// taken from one slot, so a caller never mixes one generation's Language
// with a different generation's mask.
type loadedLanguage struct {
	lang *langdata.Language
	mask uint8
}

func (s *languageSlot) get() loadedLanguage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return loadedLanguage{lang: s.lang, mask: s.mask}
}

func (s *languageSlot) swap(l *langdata.Language, mask uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = l
	s.mask = mask
}

// Engine is the single owner of every loaded Language.
type Engine struct {
	mu     sync.RWMutex
	slots  map[string]*languageSlot // name -> slot
	active []string                 // load order, for deterministic iteration

	Lines    LineSource
	Classify WordCharClassifier
	SentEnd  SentenceEndPredicate
	Clock    Clock
}

// New returns an empty Engine. The collaborator fields are left nil; a
// host wires them in before calling MoveToNextError, the only
// operation that needs them.
func New() *Engine {
	return &Engine{slots: make(map[string]*languageSlot)}
}

// LoadLanguage reads a .spl (and, if present alongside it, a .sug) file
// from path and registers it under name, replacing any Language
// already registered under that name via a pointer swap rather than an
// in-place mutation. activeRegions, if given, restricts WF_REGION words
// to those regions (spec.md §4.4 step 6); with none given every region
// is considered active. A language that sets NOBREAK together with a
// compound flag is rejected with spellfile.ErrRule.
func (e *Engine) LoadLanguage(name, path string, activeRegions ...string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("engine: open %s: %w", path, err)
	}
	defer f.Close()

	lang, err := spellfile.Read(f)
	if err != nil {
		return fmt.Errorf("engine: load language %s: %w", name, err)
	}
	if lang.Compound.NoBreak && (len(lang.Compound.StartFlags) > 0 || len(lang.Compound.AnyFlags) > 0) {
		return fmt.Errorf("engine: load language %s: NOBREAK together with a compound flag: %w", name, spellfile.ErrRule)
	}
	lang.Name = name
	lang.FilePath = path

	if sugPath := sugPathFor(path); sugPath != "" {
		if sf, serr := os.Open(sugPath); serr == nil {
			func() {
				defer sf.Close()
				ts := int64(0)
				if e.Clock != nil {
					ts = e.Clock.Now()
				}
				if rerr := spellfile.ReadSug(sf, lang, ts); rerr != nil {
					log.Warnf("engine: .sug load failed for %s, sound suggestions unavailable: %v", name, rerr)
				}
			}()
		}
	}

	mask := lang.ActiveRegionMask(activeRegions)

	e.mu.Lock()
	slot, ok := e.slots[name]
	if !ok {
		slot = &languageSlot{}
		e.slots[name] = slot
		e.active = append(e.active, name)
	}
	e.mu.Unlock()

	slot.swap(lang, mask)
	return nil
}

// sugPathFor derives a .sug companion path from a .spl path by
// replacing its final extension, matching spec.md §6.2's "same base
// name" convention.
func sugPathFor(splPath string) string {
	if !strings.HasSuffix(splPath, ".spl") {
		return ""
	}
	return strings.TrimSuffix(splPath, ".spl") + ".sug"
}

// FreeAllLanguages drops every loaded Language. Matchers already
// holding a *langdata.Language pointer from before the call keep
// working against it; the GC reclaims it once they finish.
func (e *Engine) FreeAllLanguages() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.slots = make(map[string]*languageSlot)
	e.active = nil
}

// languages returns a snapshot of the currently loaded languages, each
// paired with its active-region mask, in load order.
func (e *Engine) languages() []loadedLanguage {
	e.mu.RLock()
	names := append([]string(nil), e.active...)
	slots := make(map[string]*languageSlot, len(e.slots))
	for n, s := range e.slots {
		slots[n] = s
	}
	e.mu.RUnlock()

	out := make([]loadedLanguage, 0, len(names))
	for _, n := range names {
		if s, ok := slots[n]; ok {
			if ll := s.get(); ll.lang != nil {
				out = append(out, ll)
			}
		}
	}
	return out
}

// Language returns the currently loaded Language registered under
// name, or nil if none is loaded under that name.
func (e *Engine) Language(name string) *langdata.Language {
	e.mu.RLock()
	slot, ok := e.slots[name]
	e.mu.RUnlock()
	if !ok {
		return nil
	}
	return slot.get().lang
}

// CheckWord implements spec.md §6.3's checkWord(langSet, text, cursor):
// it runs pkg/matcher.CheckWord against every loaded language at the
// cursor and returns the best (highest-precedence, then longest-match)
// result across all of them, since a word need only be valid in one
// loaded language to be accepted.
func (e *Engine) CheckWord(text []byte, cursor int) (langdata.ResultClass, int) {
	langs := e.languages()
	if len(langs) == 0 {
		return langdata.ResultOK, 1
	}
	best := langdata.ResultBad
	bestN := 0
	for _, ll := range langs {
		class, n := matcher.CheckWord(ll.lang, ll.mask, text, cursor)
		if rankClass(class) > rankClass(best) || (rankClass(class) == rankClass(best) && n > bestN) {
			best, bestN = class, n
		}
	}
	return best, bestN
}

func rankClass(c langdata.ResultClass) int {
	switch c {
	case langdata.ResultOK:
		return 4
	case langdata.ResultRare:
		return 3
	case langdata.ResultLocal:
		return 2
	case langdata.ResultBanned:
		return 1
	default:
		return 0
	}
}

// Suggestions implements spec.md §6.3's suggestions(langSet, word, max,
// needCap, interactive): it runs pkg/suggest.Suggest against every
// loaded language and merges the results, keeping the lowest score for
// a word that more than one language proposes.
func (e *Engine) Suggestions(word []byte, max int) []langdata.Suggestion {
	langs := e.languages()
	merged := make(map[string]int)
	for _, ll := range langs {
		for _, s := range suggest.Suggest(ll.lang, word, suggest.Options{Max: max}) {
			if prev, ok := merged[s.Word]; !ok || s.Score < prev {
				merged[s.Word] = s.Score
			}
		}
	}
	out := make([]langdata.Suggestion, 0, len(merged))
	for w, score := range merged {
		out = append(out, langdata.Suggestion{Word: w, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Word < out[j].Word
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// SoundFold folds word through langName's sound-a-like folder (SAL if
// the language has one, otherwise SOFO), matching spec.md §6.3's
// soundFold(lang, word). Returns "" if the language has neither or
// isn't loaded.
func (e *Engine) SoundFold(langName string, word []byte) string {
	l := e.Language(langName)
	if l == nil {
		return ""
	}
	switch {
	case l.Sal != nil:
		return string(l.Sal.Fold(word))
	case l.Sofo != nil:
		return string(l.Sofo.Fold(word))
	default:
		return ""
	}
}

// MoveToNextError implements spec.md §6.3's
// moveToNextError(buffer, direction, allWords, curLineOnly). direction
// is +1 (forward) or -1 (backward). It walks lines via e.Lines starting
// at (fromLine, fromCol) until it finds a word CheckWord rejects, or
// reports ok=false if none is found within the scanned range.
func (e *Engine) MoveToNextError(buffer any, fromLine, fromCol, direction int, allWords, curLineOnly bool) (line, col, length int, ok bool) {
	if e.Lines == nil {
		return 0, 0, 0, false
	}
	maxLines := 10000
	if curLineOnly {
		maxLines = 1
	}
	lnum := fromLine
	for steps := 0; steps < maxLines; steps++ {
		text, err := e.Lines.Line(buffer, lnum)
		if err != nil {
			return 0, 0, 0, false
		}
		start := 0
		if steps == 0 {
			start = fromCol
		}
		if pos, n, found := e.firstBadWord(text, start, allWords); found {
			return lnum, pos, n, true
		}
		lnum += direction
	}
	return 0, 0, 0, false
}

func (e *Engine) firstBadWord(text []byte, from int, allWords bool) (pos, length int, found bool) {
	i := from
	for i < len(text) {
		class, n := e.CheckWord(text, i)
		if n <= 0 {
			break
		}
		if class == langdata.ResultBad || class == langdata.ResultBanned ||
			(allWords && class == langdata.ResultLocal) {
			return i, n, true
		}
		i += n
	}
	return 0, 0, false
}

// DumpWords implements spec.md §6.3's dumpWords(langSet, pattern?,
// callback): it iterates every loaded language's fold-case trie,
// invoking callback once per word with its decoded flags. pattern, if
// non-empty, is matched as a plain substring filter — the
// collaborator-level expr:/file: pattern languages are out of scope,
// same as spellsuggest's expr:/file: tokens.
func (e *Engine) DumpWords(pattern string, callback func(word string, meta langdata.WordMeta)) {
	for _, ll := range e.languages() {
		l := ll.lang
		if l.FoldCase == nil {
			continue
		}
		walkWords(l.FoldCase, trie.Root, nil, func(word []byte, raw uint32) {
			if pattern != "" && !strings.Contains(string(word), pattern) {
				return
			}
			callback(string(word), langdata.Decode(raw))
		})
	}
}

// walkWords enumerates every word in s reachable from node, calling
// visit once per NUL leaf encountered, in the trie's own sibling order.
func walkWords(s *trie.Store, node int, prefix []byte, visit func(word []byte, raw uint32)) {
	for _, raw := range s.NulLeaves(node) {
		visit(prefix, raw)
	}
	siblings, idxStart, k := s.NodeSiblings(node)
	for i := 0; i < k; i++ {
		b := siblings[i]
		if b == 0 {
			continue
		}
		child := trie.ChildIndex(s.Idxs[idxStart+i])
		walkWords(s, child, append(append([]byte(nil), prefix...), b), visit)
	}
}
