/*
Package langdata holds the Language value and its scratch-state
companions (MatchContext, SuggestState, SearchFrame) — the data model of
spec.md §3. Nothing here performs trie traversal or suggestion scoring;
those live in pkg/matcher, pkg/compound, and pkg/suggest and only ever
see WordMeta/PrefixMeta, never the raw packed integer.
*/
package langdata

// Base (low-byte) word flags, packed into a fold/keep-case trie's
// NUL-sibling leaf value.
const (
	WFRegion = 1 << iota // a region byte follows
	WFOneCap             // word valid with first letter capitalised only
	WFAllCap             // word valid fully capitalised only
	WFRare
	WFBanned
	WFAfx // an affix-ID byte follows
	WFFixCap
	WFKeepCap
)

// Second-byte word flags.
const (
	WFHasAff = 1 << iota
	WFNeedComp
	WFNoSuggest
	WFCompRoot
	WFNoCompBef
	WFNoCompAft
)

// WordMeta is the decoded form of a fold/keep-case NUL-sibling leaf
// value. Base and Extra hold the raw flag bitsets (WF* constants);
// Region and AffixID are only meaningful when WFRegion/WFAfx are set.
type WordMeta struct {
	Base    uint8
	Extra   uint8
	Region  uint8
	AffixID uint8
}

// Encode packs a WordMeta into the uint32 stored in Store.Idxs at a NUL
// sibling: low byte = Base, second byte = Extra, third byte = Region
// (valid only if WFRegion set), high byte = AffixID (valid only if
// WFAfx set). Raw integers never cross the package boundary in the
// other direction — callers always go through Decode.
func (w WordMeta) Encode() uint32 {
	return uint32(w.Base) | uint32(w.Extra)<<8 | uint32(w.Region)<<16 | uint32(w.AffixID)<<24
}

// Decode is the inverse of Encode.
func Decode(v uint32) WordMeta {
	return WordMeta{
		Base:    uint8(v),
		Extra:   uint8(v >> 8),
		Region:  uint8(v >> 16),
		AffixID: uint8(v >> 24),
	}
}

// PrefixMeta is the decoded form of a postponed-prefix trie's
// NUL-sibling leaf value: affix ID in the low byte, the prefix
// condition-table index in the middle 16 bits, and postponed-prefix
// flags (rare, non-combining, upper, compound-permit, compound-forbid)
// in the high byte.
type PrefixMeta struct {
	AffixID   uint8
	CondIndex uint16
	Flags     uint8
}

const (
	PFRare = 1 << iota
	PFNonCombining
	PFUpper
	PFCompoundPermit
	PFCompoundForbid
)

// Encode packs a PrefixMeta the same way Encode packs a WordMeta.
func (p PrefixMeta) Encode() uint32 {
	return uint32(p.AffixID) | uint32(p.CondIndex)<<8 | uint32(p.Flags)<<24
}

// DecodePrefix is the inverse of PrefixMeta.Encode.
func DecodePrefix(v uint32) PrefixMeta {
	return PrefixMeta{
		AffixID:   uint8(v),
		CondIndex: uint16(v >> 8),
		Flags:     uint8(v >> 24),
	}
}
