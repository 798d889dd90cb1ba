/*
Package suggest implements the suggestion engine of spec.md §4.6: a
backtracking DFS over the fold-case trie trying the edit operations
(accept/substitute/delete/insert/swap/REP-table) at each step, scored
with the pkg/editdist cost constants, plus two strategies that don't
fit the single-trie DFS — word splitting and sound-a-like lookup via
pkg/soundfold and the .sug good-word table — run as separate passes
over the same result set. Word-count/common-word score dampening and
banned-word filtering apply uniformly across all three. The DFS is
array-stack driven rather than recursive, the same re-architecture
spec.md's Design Notes call for in pkg/editdist.ScoreLimit; the
collection/dedup/cleanup discipline is adapted from the teacher's
sync.Pool-backed completion collector (pkg/suggest/completion.go in
the original wordserve tree), kept as a plain map+slice here since a
DFS walk, unlike wordserve's flat prefix iteration, already runs on
one goroutine per call with no contention to pool against.

Simplification carried from spec.md §4.6's full operation table (see
DESIGN.md): swap3/rotate/icase-as-own-operation/region/rare/non-word
candidates are not generated — an icase difference still surfaces via
editdist's own same-fold cost break, and a 3-letter rotation still
surfaces, at a higher score, as a pair of ordinary substitutions.
*/
package suggest

import (
	"sort"
	"strings"

	"github.com/bastiangx/gospell/pkg/editdist"
	"github.com/bastiangx/gospell/pkg/langdata"
	"github.com/bastiangx/gospell/pkg/trie"
)

const (
	initialMaxScore = 350
	cleanupThreshold = 50 // candidates beyond maxCount+this trigger a sort+truncate pass
	common1, common2, common3 = 30, 40, 50
	pollEvery = 1000
)

// walkFrame is one level of the backtracking stack. Unlike
// langdata.SearchFrame (which enumerates every state tag spec.md §3
// names, including ones this walk never produces — only Start, Plain,
// Ins, Del, Swap and Rep occur here), this frame only carries
// what the implemented operations need; State still records which
// spec.md tag produced the frame, for log/debug purposes.
type walkFrame struct {
	state langdata.SearchFrameState
	node  int
	pos   int // position consumed in the folded bad word
	score int
	built []byte
}

// Options configures one Suggest call.
type Options struct {
	Max        int
	MaxScore   int
	Cancel     func() bool // polled every pollEvery frames; returning true stops the walk early
}

// Suggest enumerates candidate corrections for bad (already expected
// to be case-folded by the caller, matching spec.md's badword_fold)
// against lang's fold-case trie.
func Suggest(lang *langdata.Language, bad []byte, opts Options) []langdata.Suggestion {
	if opts.Max <= 0 {
		opts.Max = 25
	}
	maxScore := opts.MaxScore
	if maxScore <= 0 {
		maxScore = initialMaxScore
	}
	if lang.FoldCase == nil {
		return nil
	}

	banned := map[string]bool{string(bad): true}
	results := make(map[string]int)

	stack := []walkFrame{{state: langdata.StateStart, node: trie.Root, pos: 0, score: 0}}
	frames := 0
	for len(stack) > 0 {
		frames++
		if frames%pollEvery == 0 && opts.Cancel != nil && opts.Cancel() {
			break
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.score >= maxScore {
			continue
		}

		if f.pos == len(bad) {
			considerWordEnd(lang, f, banned, results)
		}

		siblings, idxStart, k := lang.FoldCase.NodeSiblings(f.node)
		for i := 0; i < k; i++ {
			b := siblings[i]
			childIdx := fcIdxAt(lang, idxStart, i)
			if b == 0 {
				continue // handled by considerWordEnd at pos==len(bad)
			}
			child := trie.ChildIndex(childIdx)

			if f.pos < len(bad) {
				if bad[f.pos] == b {
					stack = append(stack, walkFrame{langdata.StatePlain, child, f.pos + 1, f.score, appendByte(f.built, b)})
				} else {
					stack = append(stack, walkFrame{langdata.StatePlain, child, f.pos + 1, f.score + editdist.CostSubst, appendByte(f.built, b)})
				}
			}
			stack = append(stack, walkFrame{langdata.StateIns, child, f.pos, f.score + editdist.CostInsert, appendByte(f.built, b)})
		}
		if f.pos < len(bad) {
			stack = append(stack, walkFrame{langdata.StateDel, f.node, f.pos + 1, f.score + editdist.CostDelete, f.built})
		}
		stack = trySwap(lang, f, bad, stack)
		stack = tryRep(lang, f, bad, stack)

		if len(results) > opts.Max+cleanupThreshold {
			truncate(results, opts.Max)
		}
	}

	trySplit(lang, bad, banned, results)
	soundAlikeCandidates(lang, bad, banned, results)

	return rank(lang, bad, results, opts.Max)
}

// trySwap pushes a two-position-consuming frame for an adjacent
// transposition, spec.md §4.6's swap operation: bad[pos] and
// bad[pos+1] appear reversed in the candidate. Scored CostSwap
// regardless of character identity once both descends succeed.
func trySwap(lang *langdata.Language, f walkFrame, bad []byte, stack []walkFrame) []walkFrame {
	if f.pos+1 >= len(bad) || bad[f.pos] == bad[f.pos+1] {
		return stack
	}
	idx1, _, ok := lang.FoldCase.Descend(f.node, bad[f.pos+1])
	if !ok {
		return stack
	}
	child1 := trie.ChildIndex(idx1)
	idx2, _, ok := lang.FoldCase.Descend(child1, bad[f.pos])
	if !ok {
		return stack
	}
	child2 := trie.ChildIndex(idx2)
	built := appendByte(appendByte(f.built, bad[f.pos+1]), bad[f.pos])
	return append(stack, walkFrame{langdata.StateSwap, child2, f.pos + 2, f.score + editdist.CostSwap, built})
}

// tryRep pushes a frame for every REP table entry whose From matches
// bad at f.pos, descending the trie by To instead of consuming bad
// byte-for-byte — spec.md §4.6's REP operation, scored CostRep once
// per applied rule regardless of From/To length.
func tryRep(lang *langdata.Language, f walkFrame, bad []byte, stack []walkFrame) []walkFrame {
	if lang.Rep == nil || f.pos >= len(bad) {
		return stack
	}
	if lang.Rep.FirstByte[bad[f.pos]] < 0 {
		return stack
	}
	for _, pair := range lang.Rep.Pairs {
		if len(pair.From) == 0 || pair.From[0] != bad[f.pos] {
			continue
		}
		end := f.pos + len(pair.From)
		if end > len(bad) || string(bad[f.pos:end]) != pair.From {
			continue
		}
		node, ok := descendBytes(lang.FoldCase, f.node, []byte(pair.To))
		if !ok {
			continue
		}
		built := append(append([]byte(nil), f.built...), pair.To...)
		stack = append(stack, walkFrame{langdata.StateRep, node, end, f.score + editdist.CostRep, built})
	}
	return stack
}

func descendBytes(s *trie.Store, node int, bytes []byte) (int, bool) {
	for _, b := range bytes {
		idx, _, ok := s.Descend(node, b)
		if !ok {
			return 0, false
		}
		node = trie.ChildIndex(idx)
	}
	return node, true
}

// trySplit implements spec.md §4.6's split operation: if bad can be
// cut into two exact, non-banned dictionary words, propose the pair
// joined by a space at SCORE_SPLIT, independent of any edit distance
// between the halves and bad.
func trySplit(lang *langdata.Language, bad []byte, banned map[string]bool, results map[string]int) {
	for i := 1; i < len(bad); i++ {
		left, leftOK := isExactWord(lang, bad[:i])
		if !leftOK {
			continue
		}
		right, rightOK := isExactWord(lang, bad[i:])
		if !rightOK {
			continue
		}
		word := left + " " + right
		if banned[word] {
			continue
		}
		if prev, ok := results[word]; !ok || editdist.CostSplit < prev {
			results[word] = editdist.CostSplit
		}
	}
}

// isExactWord reports whether seg is a complete, non-banned,
// non-no-suggest entry of lang's fold-case trie.
func isExactWord(lang *langdata.Language, seg []byte) (string, bool) {
	node, ok := lang.FoldCase.Lookup(seg)
	if !ok {
		return "", false
	}
	for _, raw := range lang.FoldCase.NulLeaves(node) {
		meta := langdata.Decode(raw)
		if meta.Base&langdata.WFBanned != 0 || meta.Extra&langdata.WFNoSuggest != 0 {
			continue
		}
		return string(seg), true
	}
	return "", false
}

// soundAlikeCandidates implements spec.md §4.6's sound-a-like
// strategy: fold bad through the language's SAL/SOFO folder, look the
// folded form up in the .sug SoundFold tree, resolve its good-word
// indices against the fold-case trie's own enumeration order, and
// score each hit by the spec's combined formula (3*editScore + 0) / 4
// — the edit distance against bad dominates, softened relative to a
// plain edit-distance candidate since a sound match is stronger
// evidence than spelling proximity alone.
func soundAlikeCandidates(lang *langdata.Language, bad []byte, banned map[string]bool, results map[string]int) {
	if lang.SoundFold == nil || len(lang.SugTable) == 0 {
		return
	}
	var folded []byte
	switch {
	case lang.Sal != nil:
		folded = lang.Sal.Fold(bad)
	case lang.Sofo != nil:
		folded = lang.Sofo.Fold(bad)
	default:
		return
	}
	node, ok := lang.SoundFold.Lookup(folded)
	if !ok {
		return
	}
	leaves := lang.SoundFold.NulLeaves(node)
	if len(leaves) == 0 {
		return
	}
	badRunes := []rune(string(bad))
	for _, raw := range leaves {
		idx := int(raw)
		if idx < 0 || idx >= len(lang.SugTable) {
			continue
		}
		for _, goodIdx := range lang.SugTable[idx] {
			word, ok := wordAtIndex(lang.FoldCase, int(goodIdx))
			if !ok || banned[word] {
				continue
			}
			editScore := editdist.Score(badRunes, []rune(word))
			combined := (3*editScore + 0) / 4
			if prev, ok := results[word]; !ok || combined < prev {
				results[word] = combined
			}
		}
	}
}

// wordAtIndex resolves a 0-based good-word index (as recorded in a
// .sug SugTable entry) back to word text, walking s in the same
// NUL-leaves-then-siblings order pkg/engine.walkWords enumerates words
// in, one index per NUL leaf. No code in this module writes the
// SugTable of a .sug file; WriteSug stores the table it is given.
func wordAtIndex(s *trie.Store, target int) (string, bool) {
	counter := 0
	var found []byte
	var walk func(node int, prefix []byte) bool
	walk = func(node int, prefix []byte) bool {
		leaves := s.NulLeaves(node)
		for range leaves {
			if counter == target {
				found = append([]byte(nil), prefix...)
				return true
			}
			counter++
		}
		siblings, idxStart, k := s.NodeSiblings(node)
		for i := 0; i < k; i++ {
			b := siblings[i]
			if b == 0 {
				continue
			}
			child := trie.ChildIndex(s.Idxs[idxStart+i])
			if walk(child, append(append([]byte(nil), prefix...), b)) {
				return true
			}
		}
		return false
	}
	if walk(trie.Root, nil) {
		return string(found), true
	}
	return "", false
}

func appendByte(b []byte, c byte) []byte {
	out := make([]byte, len(b)+1)
	copy(out, b)
	out[len(b)] = c
	return out
}

func fcIdxAt(lang *langdata.Language, idxStart, i int) uint32 {
	// NodeSiblings only exposes the byte slice; the matching Idxs
	// entry lives at the same offset in the parallel array, which
	// Descend also relies on (see pkg/trie.Store).
	return lang.FoldCase.Idxs[idxStart+i]
}

func considerWordEnd(lang *langdata.Language, f walkFrame, banned map[string]bool, results map[string]int) {
	for _, raw := range lang.FoldCase.NulLeaves(f.node) {
		meta := langdata.Decode(raw)
		if meta.Base&langdata.WFBanned != 0 || meta.Extra&langdata.WFNoSuggest != 0 {
			continue
		}
		word := string(f.built)
		if banned[word] {
			continue
		}
		if prev, ok := results[word]; !ok || f.score < prev {
			results[word] = f.score
		}
	}
}

func truncate(results map[string]int, max int) {
	type kv struct {
		word  string
		score int
	}
	all := make([]kv, 0, len(results))
	for w, s := range results {
		all = append(all, kv{w, s})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].score < all[j].score })
	if len(all) > max+cleanupThreshold {
		all = all[:max+cleanupThreshold]
	}
	for w := range results {
		delete(results, w)
	}
	for _, e := range all {
		results[e.word] = e.score
	}
}

func rank(lang *langdata.Language, bad []byte, results map[string]int, max int) []langdata.Suggestion {
	out := make([]langdata.Suggestion, 0, len(results))
	for w, score := range results {
		dampened := score
		if count, ok := lang.CommonWords[w]; ok {
			bonus := common1
			switch {
			case count > 1000:
				bonus = common3
			case count > 100:
				bonus = common2
			}
			dampened -= bonus
			if dampened < 0 {
				dampened = 0
			}
		}
		out = append(out, langdata.Suggestion{Word: w, Score: dampened, SplitWord: strings.Contains(w, " ")})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > max {
		out = out[:max]
	}
	return out
}
