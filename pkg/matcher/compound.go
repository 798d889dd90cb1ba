package matcher

import (
	"github.com/bastiangx/gospell/pkg/compound"
	"github.com/bastiangx/gospell/pkg/langdata"
	"github.com/bastiangx/gospell/pkg/trie"
)

// compoundFlag picks the flag byte every compound-eligible segment
// contributes to the flag sequence pkg/compound matches against
// COMPOUNDRULE. This core's on-disk word encoding only carries the
// boolean WFCompRoot bit per word (set by whatever built the .spl
// file), not an arbitrary per-word COMPOUNDRULE flag class, so every
// segment is treated as bearing the language's single configured
// COMPOUNDFLAG (lang.Compound.Flag) — accurate for the common
// single-flag case (spec.md scenario 2's "f+" against a shared flag
// "f"), not for a COMPOUNDRULE spanning several distinct per-word flag
// classes. See DESIGN.md.
func compoundFlag(lang *langdata.Language) byte {
	if lang.Compound.Flag != 0 {
		return lang.Compound.Flag
	}
	return 'A'
}

// checkCompound implements spec.md §4.4's compound continuation: split
// folded into two or more fold-case dictionary segments, each tagged
// compound-eligible (WFCompRoot), honoring compminlen/compmax/compsylmax
// and the CHECKCOMPOUNDDUP/TRIPLE options, then verify the whole split
// via pkg/compound. Returns ResultBad if the language has no compound
// settings configured at all, or no split satisfies every constraint.
//
// Every compound-eligible word shares the single WFCompRoot bit, so a
// start-only vs. any-position flag distinction (COMPOUNDFLAG doesn't
// carry one; a from-scratch COMPOUNDBEGIN/MIDDLE/END scheme would) is
// not enforced here — any permutation of eligible segments that
// satisfies COMPOUNDRULE is accepted, not just the ones beginning with
// a designated start word.
func checkCompound(lang *langdata.Language, folded []byte) (langdata.ResultClass, int) {
	c := lang.Compound
	if lang.FoldCase == nil {
		return langdata.ResultBad, 0
	}
	if c.MinLength <= 0 && c.RuleRegex == nil && len(c.AnyFlags) == 0 && len(c.StartFlags) == 0 {
		return langdata.ResultBad, 0
	}
	minLen := c.MinLength
	if minLen <= 0 {
		minLen = 1
	}
	var segs [][]byte
	var flags []byte
	if splitCompound(lang, folded, minLen, &segs, &flags) {
		return langdata.ResultOK, len(folded)
	}
	return langdata.ResultBad, 0
}

// splitCompound is a DFS over every split point of remaining, pruning on
// MaxWords and the DUP/TRIPLE boundary options, verifying the completed
// flag/syllable constraints only once a split consumes the whole word.
func splitCompound(lang *langdata.Language, remaining []byte, minLen int, segs *[][]byte, flags *[]byte) bool {
	c := lang.Compound
	if c.MaxWords > 0 && len(*segs)+1 > c.MaxWords {
		return false
	}
	flag := compoundFlag(lang)
	for i := minLen; i <= len(remaining); i++ {
		seg := remaining[:i]
		meta, ok := matchCompoundSegment(lang, seg)
		if !ok {
			continue
		}
		if len(*segs) > 0 {
			prev := (*segs)[len(*segs)-1]
			if c.Options&langdata.CompCheckDup != 0 && compound.ViolatesDup(prev, seg) {
				continue
			}
			if c.Options&langdata.CompCheckTriple != 0 && compound.ViolatesTriple(prev, seg) {
				continue
			}
		}
		_ = meta

		*segs = append(*segs, seg)
		*flags = append(*flags, flag)

		if i == len(remaining) {
			if len(*segs) >= 2 && acceptCompound(lang, *segs, *flags) {
				return true
			}
		} else if splitCompound(lang, remaining[i:], minLen, segs, flags) {
			return true
		}

		*segs = (*segs)[:len(*segs)-1]
		*flags = (*flags)[:len(*flags)-1]
	}
	return false
}

// matchCompoundSegment reports whether seg is an exact, non-banned,
// compound-eligible (WFCompRoot) dictionary entry.
func matchCompoundSegment(lang *langdata.Language, seg []byte) (langdata.WordMeta, bool) {
	node := trie.Root
	for _, b := range seg {
		idx, _, ok := lang.FoldCase.Descend(node, b)
		if !ok {
			return langdata.WordMeta{}, false
		}
		node = trie.ChildIndex(idx)
	}
	for _, raw := range lang.FoldCase.NulLeaves(node) {
		meta := langdata.Decode(raw)
		if meta.Base&langdata.WFBanned != 0 {
			continue
		}
		if meta.Extra&langdata.WFCompRoot != 0 {
			return meta, true
		}
	}
	return langdata.WordMeta{}, false
}

// acceptCompound runs pkg/compound's final verification over a complete
// split: the COMPOUNDRULE regex (if configured) against the flag
// sequence, and the syllable/word-count tradeoff either way.
func acceptCompound(lang *langdata.Language, segs [][]byte, flags []byte) bool {
	c := lang.Compound
	syllables := 0
	for _, s := range segs {
		syllables += compound.CountSyllables(s, c.SyllableSet, c.SyllableTable)
	}
	if c.RuleRegex != nil {
		return compound.CanCompound(flags, c.RuleRegex, c.MaxWords, syllables, c.MaxSyllables)
	}
	return compound.SimpleAccept(len(segs), c.MaxWords, syllables, c.MaxSyllables)
}
