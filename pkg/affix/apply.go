package affix

import (
	"github.com/bastiangx/gospell/pkg/affixregex"
	"github.com/bastiangx/gospell/pkg/langdata"
	"github.com/bastiangx/gospell/pkg/soundfold"
	"github.com/bastiangx/gospell/pkg/trie"
)

// ApplyToLanguage pushes every directive this table recorded onto l.
// Prefix entries eligible for postponement (PFXPOSTPONE set, no chop,
// no chain flags, no condition) are compiled into l.Prefix, the
// postponed-prefix trie pkg/matcher's checkWithPrefix walks at lookup time;
// entries with a chop, chain flags, or a condition are not postponable
// (spec.md §4.3) and are left for a future direct-application path, not
// implemented in this core (see DESIGN.md).
func (t *AffixTable) ApplyToLanguage(l *langdata.Language) error {
	l.Midword = t.Midword
	l.NeedAffixFlag = firstByte(t.NeedAffixFlag)
	l.CircumfixFlag = firstByte(t.CircumfixFlag)

	l.Compound.MinLength = t.CompoundMin
	l.Compound.MaxWords = t.CompoundMax
	l.Compound.MaxSyllables = t.CompoundSylMax
	l.Compound.Options = t.CompoundOptions
	l.Compound.NoBreak = t.NoBreak
	l.Compound.SyllableSet = t.SyllableSet
	l.Compound.SyllableTable = t.SyllableTable
	l.Compound.PatternPairs = t.PatternPairs
	l.Compound.Flag = firstByte(t.CompoundFlag)
	l.Compound.StartFlags = flagSet(t.CompoundFlag)
	l.Compound.AnyFlags = flagSet(t.CompoundFlag)

	if len(t.CompoundRules) > 0 {
		raw := "^(" + joinRules(t.CompoundRules) + ")$"
		m, err := affixregex.Compile(raw)
		if err != nil {
			return ruleErrf("compiling COMPOUNDRULE %q: %v", raw, err)
		}
		l.Compound.RuleRegex = m
		l.Compound.RawRule = raw
	}

	if len(t.Rep) > 0 {
		pairs := make([]langdata.RepPair, len(t.Rep))
		for i, r := range t.Rep {
			pairs[i] = langdata.RepPair{From: r.From, To: r.To}
		}
		l.Rep = langdata.NewRepList(pairs)
	}
	if len(t.RepSal) > 0 {
		pairs := make([]langdata.RepPair, len(t.RepSal))
		for i, r := range t.RepSal {
			pairs[i] = langdata.RepPair{From: r.From, To: r.To}
		}
		l.RepSal = langdata.NewRepList(pairs)
	}

	applyMap(l, t.Map)

	if t.SofoFrom != "" && t.SofoTo != "" {
		l.Sofo = soundfold.NewSofoFolder([]byte(t.SofoFrom), []byte(t.SofoTo), nil)
	} else if len(t.SalRules) > 0 {
		rules := make([]soundfold.SalRule, len(t.SalRules))
		for i, r := range t.SalRules {
			rules[i] = soundfold.SalRule{
				Lead:        r.Lead,
				OneOf:       r.OneOf,
				AnchorStart: r.AnchorStart,
				AnchorEnd:   r.AnchorEnd,
				Priority:    r.Priority,
				Replace:     r.Replace,
				Backtrack:   r.Backtrack,
			}
		}
		l.Sal = soundfold.NewSalFolder(rules, t.SalFollowup, t.SalCollapse, t.SalStripAcc)
	}

	if err := t.buildPrefixTree(l); err != nil {
		return err
	}
	return nil
}

func firstByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}

func flagSet(s string) map[byte]bool {
	if s == "" {
		return nil
	}
	return map[byte]bool{s[0]: true}
}

func joinRules(rules []string) string {
	out := rules[0]
	for _, r := range rules[1:] {
		out += "|" + r
	}
	return out
}

func applyMap(l *langdata.Language, groups []string) {
	if len(groups) == 0 {
		return
	}
	if l.CharMap.High == nil {
		l.CharMap.High = make(map[rune]rune)
	}
	for _, g := range groups {
		runes := []rune(g)
		if len(runes) == 0 {
			continue
		}
		head := runes[0]
		for _, member := range runes[1:] {
			if member < 256 {
				l.CharMap.Low[member] = byte(head)
			} else {
				l.CharMap.High[member] = head
			}
		}
	}
}

// buildPrefixTree assigns postponed-prefix IDs from a pool starting at
// 1 and builds l.Prefix from every eligible PFX entry across all flags.
// The pool stops at 127: eligible entries after that are not added.
// l.PrefixConds is left as it is, since eligible entries carry no
// condition and every leaf records condition index 0.
func (t *AffixTable) buildPrefixTree(l *langdata.Language) error {
	if !t.PFXPostpone {
		return nil
	}
	b := trie.NewBuilder()
	var nextID uint8 = 1
	for _, group := range t.Prefixes {
		for _, e := range group.Entries {
			if e.Chop != "" || len(e.ChainFlags) > 0 || e.Condition != nil {
				continue // not postponable; needs direct application, out of scope
			}
			if e.Add == "" {
				continue
			}
			if nextID == 128 {
				break // ID pool exhausted at the compound-ID split point
			}
			var flags byte
			if e.CompoundForbid {
				flags |= langdata.PFCompoundForbid
			}
			if e.CompoundPermit {
				flags |= langdata.PFCompoundPermit
			}
			meta := langdata.PrefixMeta{AffixID: nextID, CondIndex: 0, Flags: flags}
			b.Add(trie.Entry{Word: []byte(e.Add), Leaves: []uint32{meta.Encode()}})
			nextID++
		}
	}
	l.Prefix = b.Finish()
	return nil
}
