/*
Package compound implements the compound-word rules of spec.md §4.5:
matching a word's accumulated compound-flag sequence against the
language's COMPOUNDRULE regex, and counting syllables against the
SYLLABLE sub-table/set.
*/
package compound

import "github.com/bastiangx/gospell/pkg/affixregex"

// MatchCompoundRule runs a cheap literal pre-check over raw (the
// concatenated COMPOUNDRULE source, flag letters joined by '|') before
// the caller falls back to the full regex. It looks only for every
// flag in flags appearing somewhere in raw, which prunes words that
// use a flag the language's compound rules never mention at all.
func MatchCompoundRule(flags []byte, raw string) bool {
	for _, f := range flags {
		found := false
		for i := 0; i < len(raw); i++ {
			if raw[i] == f {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// CanCompound reports whether flags (one byte per compound segment, in
// order) forms an acceptable compound: the full COMPOUNDRULE regex
// must match the flag sequence, and either syllables stays within
// compsylmax or the segment count itself is still under compmax (a
// long compound that exceeds the syllable budget is still accepted if
// it is short in word count, per spec.md §4.5).
func CanCompound(flags []byte, regex *affixregex.Matcher, compmax int, syllables int, compsylmax int) bool {
	if regex == nil {
		return false
	}
	if !regex.MatchFull(flags) {
		return false
	}
	if compsylmax > 0 && syllables > compsylmax {
		return compmax <= 0 || len(flags) < compmax
	}
	return true
}

// CountSyllables counts word's syllables: first preferring the longest
// matching entry of syllableTable (checked longest-first so a
// multi-char syllable unit isn't double-counted as several
// single-char ones), falling back to treating any byte in
// syllableSet as starting a new syllable — but only when the
// previous byte did not already start one, so a run of vowels counts
// once.
func CountSyllables(word []byte, syllableSet []byte, syllableTable [][]byte) int {
	table := make([][]byte, len(syllableTable))
	copy(table, syllableTable)
	for i := 1; i < len(table); i++ {
		for j := i; j > 0 && len(table[j-1]) < len(table[j]); j-- {
			table[j-1], table[j] = table[j], table[j-1]
		}
	}

	count := 0
	inSyllable := false
	pos := 0
	for pos < len(word) {
		matched := false
		for _, entry := range table {
			if len(entry) == 0 || pos+len(entry) > len(word) {
				continue
			}
			if string(word[pos:pos+len(entry)]) == string(entry) {
				count++
				pos += len(entry)
				matched = true
				inSyllable = true
				break
			}
		}
		if matched {
			continue
		}
		if inSet(word[pos], syllableSet) {
			if !inSyllable {
				count++
			}
			inSyllable = true
		} else {
			inSyllable = false
		}
		pos++
	}
	return count
}

// SimpleAccept is CanCompound's regex-free path, for a language that
// configures COMPOUNDFLAG/COMPOUNDMIN without a COMPOUNDRULE: any
// segment count is acceptable as long as it respects compmax, with the
// same syllable-overflow forgiveness CanCompound grants.
func SimpleAccept(segCount int, compmax int, syllables int, compsylmax int) bool {
	if compmax > 0 && segCount > compmax {
		return false
	}
	if compsylmax > 0 && syllables > compsylmax {
		return compmax <= 0 || segCount < compmax
	}
	return true
}

// ViolatesDup reports whether two adjacent compound segments are
// identical, which CHECKCOMPOUNDDUP forbids (e.g. "foofoo").
func ViolatesDup(left, right []byte) bool {
	return string(left) == string(right)
}

// ViolatesTriple reports whether joining left and right stacks the same
// letter three times across the boundary, which CHECKCOMPOUNDTRIPLE
// forbids (e.g. "cross" + "ssection").
func ViolatesTriple(left, right []byte) bool {
	if len(left) < 2 || len(right) < 1 {
		return false
	}
	a, b, c := left[len(left)-2], left[len(left)-1], right[0]
	return a == b && b == c
}

func inSet(b byte, set []byte) bool {
	for _, s := range set {
		if s == b {
			return true
		}
	}
	return false
}
