package langdata

import (
	"github.com/bastiangx/gospell/pkg/affixregex"
	"github.com/bastiangx/gospell/pkg/soundfold"
	"github.com/bastiangx/gospell/pkg/trie"
)

// RegionTable holds up to 8 two-letter region names; position i encodes
// region bit (1 << i) in a WordMeta.Region mask.
type RegionTable struct {
	Names [8]string
	Count int
}

// RepPair is one REP or REPSAL replacement rule.
type RepPair struct {
	From string
	To   string
}

// RepList is an ordered replacement list plus a 256-entry first-byte
// acceleration table mapping a leading byte to the first candidate index
// in Pairs (so the suggestion engine doesn't scan rules whose From
// cannot possibly match).
type RepList struct {
	Pairs     []RepPair
	FirstByte [256]int // index of first Pairs entry starting with that byte, -1 if none
}

// NewRepList builds the first-byte acceleration table for pairs. pairs
// must already be in file order; FirstByte records the first match per
// leading byte, consistent with "ordered, with a 256-entry... index".
func NewRepList(pairs []RepPair) *RepList {
	rl := &RepList{Pairs: pairs}
	for i := range rl.FirstByte {
		rl.FirstByte[i] = -1
	}
	for i, p := range pairs {
		if len(p.From) == 0 {
			continue
		}
		b := p.From[0]
		if rl.FirstByte[b] == -1 {
			rl.FirstByte[b] = i
		}
	}
	return rl
}

// PrefixCondTable is the ordered set of compiled, anchored prefix
// condition regexes a postponed-prefix trie leaf's CondIndex refers
// into.
type PrefixCondTable struct {
	Conditions []*affixregex.Matcher
}

// CompoundState holds everything needed to validate and score compound
// words for one Language.
type CompoundState struct {
	MaxWords       int
	MinLength      int
	MaxSyllables   int
	Options        uint8
	Flag           byte          // COMPOUNDFLAG: the single flag marking a word compound-eligible
	StartFlags     map[byte]bool // compstartflags
	AnyFlags       map[byte]bool // compallflags (may appear anywhere but start)
	RuleRegex      *affixregex.Matcher
	RawRule        string
	PatternPairs   [][2]string // CHECKCOMPOUNDPATTERN end/begin literal pairs
	SyllableSet    []byte
	SyllableTable  [][]byte
	NoBreak        bool
}

// Compound option bits (CHECKCOMPOUND{DUP,REP,CASE,TRIPLE}).
const (
	CompCheckDup = 1 << iota
	CompCheckRep
	CompCheckCase
	CompCheckTriple
)

// CharMap implements the MAP directive's `similar_chars` grouping: low
// 256 codepoints via a direct array, higher codepoints via a map to a
// representative "head" character so two characters in the same group
// compare equal for SIMILAR-cost substitution scoring.
type CharMap struct {
	Low  [256]byte // 0 means "no group"; otherwise the group's head byte
	High map[rune]rune
}

// SimilarHead returns the representative character for r's similarity
// group, or r itself if it is in no group.
func (m *CharMap) SimilarHead(r rune) rune {
	if r < 256 {
		if h := m.Low[r]; h != 0 {
			return rune(h)
		}
		return r
	}
	if m.High != nil {
		if h, ok := m.High[r]; ok {
			return h
		}
	}
	return r
}

// Language owns all trees and tables for one dictionary file (plus zero
// or more additions merged into the same trees at load time).
type Language struct {
	Name      string
	FilePath  string
	IsAddition bool

	FoldCase *trie.Store
	KeepCase *trie.Store
	Prefix   *trie.Store

	SoundFold      *trie.Store // nil until/unless the .sug tree is loaded
	SugLoaded      bool
	SugLoadFailed  bool
	SugTable       [][]uint32 // per soundfold-word-index: good-word indices (already delta-decoded)
	SugTimestamp   int64

	Regions RegionTable
	Midword map[byte]bool // MIDWORD character set

	WordCount map[string]uint16 // word -> occurrence count, capped at 0xFFFF

	Compound CompoundState

	PrefixConds PrefixCondTable

	Rep    *RepList
	RepSal *RepList

	Sal  *soundfold.SalFolder
	Sofo *soundfold.SofoFolder

	CharMap CharMap

	CommonWords map[string]int // WORDS section: word -> count as stored; no default count is assigned

	// NeedAffix / circumfix flags recorded for affix-application checks
	// that live in pkg/affix and pkg/matcher.
	NeedAffixFlag byte
	CircumfixFlag byte

	WordChars [256]bool // word-char classification table (CHARFLAGS bit 0)
	UpperChars [256]bool // CHARFLAGS bit 1
}

// NewLanguage returns an empty Language ready for a codec Read to
// populate.
func NewLanguage(name, path string) *Language {
	return &Language{
		Name:        name,
		FilePath:    path,
		Midword:     make(map[byte]bool),
		WordCount:   make(map[string]uint16),
		CommonWords: make(map[string]int),
	}
}

// AllRegionsMask is the active-region mask to use when no region
// restriction applies: every region bit is considered active.
const AllRegionsMask uint8 = 0xFF

// ActiveRegionMask computes the bitmask for a set of active two-letter
// region names (e.g. loaded from `spelllang=en_us`).
func (l *Language) ActiveRegionMask(active []string) uint8 {
	if len(active) == 0 {
		return AllRegionsMask // no restriction requested: all regions active
	}
	var mask uint8
	for _, a := range active {
		for i := 0; i < l.Regions.Count; i++ {
			if l.Regions.Names[i] == a {
				mask |= 1 << uint(i)
			}
		}
	}
	return mask
}
