/*
Package matcher implements CheckWord, the word-lookup state machine of
spec.md §4.4: word-char extension with MIDWORD handling, case-folded
trie descent with longest-match-wins candidate tracking, NUL-leaf flag
validation (including region-mask-aware WF_REGION classification), a
keep-case retry, a postponed-prefix retry, and a compound continuation
built on pkg/compound's rule/syllable primitives.
*/
package matcher

import (
	"github.com/bastiangx/gospell/internal/logger"
	"github.com/bastiangx/gospell/pkg/langdata"
	"github.com/bastiangx/gospell/pkg/trie"
)

// log uses the no-timestamp hot-path logger: CheckWord runs on every
// keystroke a host forwards, so per-call timestamp formatting is
// avoided the way spellfile/affix's load-time logging does not need to.
var log = logger.Default("matcher")

// CheckWord implements spec.md §4.4's checkWord(lang, text, position).
// activeMask is the active-region bitmask (langdata.AllRegionsMask if
// the caller applies no region restriction) used to classify a
// WF_REGION word. It returns the result class and the number of bytes
// consumed: the length of the word span, or 1 (with ResultOK) when the
// byte at pos starts no word.
func CheckWord(lang *langdata.Language, activeMask uint8, text []byte, pos int) (langdata.ResultClass, int) {
	if pos >= len(text) {
		return langdata.ResultOK, 0
	}
	if text[pos] <= 0x20 {
		return langdata.ResultOK, 1
	}

	start := pos
	end := extendWord(lang, text, pos)
	if end == start {
		return langdata.ResultOK, 1
	}
	word := text[start:end]

	folded := make([]byte, 0, langdata.MaxWordLen)
	folded = appendFolded(folded, word)

	// A trie match counts only when it spans the whole word; a dictionary
	// word that is merely a prefix of it does not.
	class, matchLen := lookupWord(lang, lang.FoldCase, activeMask, folded)
	if matchLen != len(folded) {
		class = langdata.ResultBad
	}
	if class == langdata.ResultBad && lang.KeepCase != nil {
		if c2, l2 := lookupWord(lang, lang.KeepCase, activeMask, word); c2 != langdata.ResultBad && l2 == len(word) {
			class, matchLen = c2, l2
		}
	}
	if class == langdata.ResultBad && lang.Prefix != nil {
		if c2, l2 := checkWithPrefix(lang, activeMask, folded); c2 != langdata.ResultBad {
			class, matchLen = c2, l2
		}
	}
	if class == langdata.ResultBad {
		if c2, l2 := checkCompound(lang, folded); c2 != langdata.ResultBad {
			class, matchLen = c2, l2
		}
	}

	return class, end - start
}

// extendWord finds the end of the word-char run starting at pos,
// treating a MIDWORD character as a word character only when the byte
// that follows it is itself a word character.
func extendWord(lang *langdata.Language, text []byte, pos int) int {
	i := pos
	for i < len(text) {
		b := text[i]
		if lang.Midword[b] {
			if i+1 < len(text) && lang.WordChars[text[i+1]] {
				i++
				continue
			}
			break
		}
		if !lang.WordChars[b] {
			break
		}
		i++
	}
	return i
}

func appendFolded(dst, word []byte) []byte {
	for _, b := range word {
		if len(dst) >= langdata.MaxWordLen {
			break
		}
		dst = append(dst, toLowerByte(b))
	}
	return dst
}

func toLowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// lookupWord descends s byte by byte, remembering the deepest node
// with a NUL sibling (a candidate word end) as it goes, then validates
// the NUL leaves at that candidate — the longest acceptable match
// wins, consistent with spec.md §4.4 step 6.
func lookupWord(lang *langdata.Language, s *trie.Store, activeMask uint8, word []byte) (langdata.ResultClass, int) {
	if s == nil {
		return langdata.ResultBad, 0
	}
	node := trie.Root
	bestClass := langdata.ResultBad
	bestLen := -1

	tryCandidate := func(n, depth int) {
		for _, raw := range s.NulLeaves(n) {
			meta := langdata.Decode(raw)
			class := classifyWordMeta(meta, activeMask)
			if class == langdata.ResultBad {
				continue
			}
			if depth > bestLen || (depth == bestLen && better(class, bestClass)) {
				bestLen = depth
				bestClass = class
			}
		}
	}

	tryCandidate(node, 0)
	for i, b := range word {
		idx, _, ok := s.Descend(node, b)
		if !ok {
			break
		}
		node = trie.ChildIndex(idx)
		tryCandidate(node, i+1)
	}
	if bestLen < 0 {
		return langdata.ResultBad, 0
	}
	return bestClass, bestLen
}

// classifyWordMeta applies spec.md §4.4 step 6's precedence: banned
// beats region beats rare beats ok. A WF_REGION word is only demoted to
// "local" when none of its region bits intersect mask; with
// langdata.AllRegionsMask it is always treated as ok, matching a caller
// that applies no region restriction.
func classifyWordMeta(m langdata.WordMeta, mask uint8) langdata.ResultClass {
	if m.Base&langdata.WFBanned != 0 {
		return langdata.ResultBanned
	}
	if m.Base&langdata.WFRegion != 0 && m.Region&mask == 0 {
		return langdata.ResultLocal
	}
	if m.Base&langdata.WFRare != 0 {
		return langdata.ResultRare
	}
	return langdata.ResultOK
}

// better reports whether a beats b by the spec's ok > rare > local
// precedence used to break length ties.
func better(a, b langdata.ResultClass) bool {
	rank := func(c langdata.ResultClass) int {
		switch c {
		case langdata.ResultOK:
			return 3
		case langdata.ResultRare:
			return 2
		case langdata.ResultLocal:
			return 1
		default:
			return 0
		}
	}
	return rank(a) > rank(b)
}

// checkWithPrefix implements spec.md §4.4 step 8: descend the
// postponed-prefix trie over folded, collect prefix IDs at each NUL
// run, then retry the fold-case trie on the remainder for each
// candidate prefix whose condition matches the tail.
func checkWithPrefix(lang *langdata.Language, activeMask uint8, folded []byte) (langdata.ResultClass, int) {
	node := trie.Root
	for i := 0; i < len(folded); i++ {
		for _, raw := range lang.Prefix.NulLeaves(node) {
			meta := langdata.DecodePrefix(raw)
			if !validWordPrefix(lang, meta, folded[i:]) {
				continue
			}
			class, rest := lookupWord(lang, lang.FoldCase, activeMask, folded[i:])
			if class != langdata.ResultBad && rest == len(folded)-i {
				return class, len(folded)
			}
		}
		idx, _, ok := lang.Prefix.Descend(node, folded[i])
		if !ok {
			return langdata.ResultBad, 0
		}
		node = trie.ChildIndex(idx)
	}
	for _, raw := range lang.Prefix.NulLeaves(node) {
		meta := langdata.DecodePrefix(raw)
		if !validWordPrefix(lang, meta, nil) {
			continue
		}
		if class, _ := lookupWord(lang, lang.FoldCase, activeMask, nil); class != langdata.ResultBad {
			return class, len(folded)
		}
	}
	return langdata.ResultBad, 0
}

// validWordPrefix checks the condition regex for meta's affix against
// the tail following the prefix, per spec.md §4.4's valid_word_prefix.
func validWordPrefix(lang *langdata.Language, meta langdata.PrefixMeta, tail []byte) bool {
	if int(meta.CondIndex) >= len(lang.PrefixConds.Conditions) {
		if meta.CondIndex == 0 && len(lang.PrefixConds.Conditions) == 0 {
			return true // no condition table: postponed prefix had an empty condition
		}
		log.Warnf("matcher: prefix condition index %d out of range", meta.CondIndex)
		return false
	}
	cond := lang.PrefixConds.Conditions[meta.CondIndex]
	return cond.MatchAnchoredPrefix(tail)
}
