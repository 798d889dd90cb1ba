/*
Package affix parses a Hunspell/Myspell-style .aff directive stream
into an AffixTable: the prefix/suffix rule sets keyed by flag ID, the
compound configuration, and the REP/MAP/SAL/SOFO ambient tables a
Language carries. Suffix expansion into a word tree and full
dictionary compilation are mkspell-equivalent concerns this core does
not implement (see DESIGN.md); what lives here is exactly what
pkg/matcher needs at lookup time for postponed-prefix handling, plus
the directive-level state pkg/affix.ApplyToLanguage pushes onto a
langdata.Language.
*/
package affix

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bastiangx/gospell/internal/logger"
	"github.com/bastiangx/gospell/pkg/affixregex"
)

var log = logger.New("affix")

// FlagMode is the .aff FLAG directive's naming scheme.
type FlagMode int

const (
	FlagSingleChar FlagMode = iota // one byte per flag (default)
	FlagDoubleChar                 // two bytes per flag, e.g. "ab"
	FlagNumeric                    // comma-separated decimal numbers
	FlagCapLong                    // upper-case first letter starts a two-char flag, else one char
)

// AffixEntry is one PFX/SFX row.
type AffixEntry struct {
	Chop            string
	Add             string
	Condition       *affixregex.Matcher
	ChainFlags      []string
	CompoundForbid  bool
	CompoundPermit  bool
	Upper           bool
}

// AffixGroup is one PFX or SFX block (all rows sharing one flag name).
type AffixGroup struct {
	Flag     string
	Prefix   bool
	Combines bool
	Entries  []AffixEntry
}

// AffixTable is the parsed result of one .aff file.
type AffixTable struct {
	FlagMode FlagMode

	Prefixes map[string]*AffixGroup
	Suffixes map[string]*AffixGroup

	Midword map[byte]bool
	TryChars string

	RareFlag          string
	KeepCaseFlag      string
	ForbiddenFlag     string
	NeedAffixFlag     string
	CircumfixFlag     string
	NoSuggestFlag     string
	NeedCompoundFlag  string
	CompoundRootFlag  string
	CompoundForbidFlag string
	CompoundPermitFlag string
	CompoundFlag      string

	CompoundRules []string // raw alternatives, flag-letter sequences
	CompoundMin   int
	CompoundMax   int
	CompoundSylMax int
	CompoundOptions uint8 // CompCheck{Dup,Rep,Case,Triple} bits, see langdata

	SyllableSet   []byte
	SyllableTable [][]byte

	NoBreak       bool
	NoSplitSugs   bool
	NoSugFile     bool

	PFXPostpone bool

	Fol, Low, Upp string

	Rep    []RepLine
	RepSal []RepLine
	Map    []string

	SalRules      []SalLine
	SalFollowup   bool
	SalCollapse   bool
	SalStripAcc   bool

	SofoFrom, SofoTo string

	Common []string

	PatternPairs [][2]string // CHECKCOMPOUNDPATTERN
}

// RepLine is one REP/REPSAL from/to pair as written in the .aff file.
type RepLine struct{ From, To string }

// SalLine is one SAL rule line. A leading '^' and a trailing '$' on the
// lead are parsed into AnchorStart/AnchorEnd and a leading '<' on the
// replacement into Backtrack; any other marker stays in the text as
// written. ApplyToLanguage translates it to a soundfold.SalRule.
type SalLine struct {
	Lead, OneOf, Replace string
	AnchorStart, AnchorEnd, Backtrack bool
	Priority int
}

func newTable() *AffixTable {
	return &AffixTable{
		Prefixes: make(map[string]*AffixGroup),
		Suffixes: make(map[string]*AffixGroup),
		Midword:  make(map[byte]bool),
	}
}

// pendingBlock tracks an in-progress PFX/SFX block while its entry
// lines are read.
type pendingBlock struct {
	group   *AffixGroup
	want    int
	got     int
}

// Compile parses the full .aff text from r. A malformed directive that
// is recoverable (unknown directive, bad flag syntax on a data line) is
// logged and skipped; a structural error (mismatched PFX/SFX block
// counts, a condition that fails to compile, COMPOUNDSYLMAX 0) aborts
// the load and
// returns a RuleError-wrapped error.
func Compile(r io.Reader) (*AffixTable, error) {
	t := newTable()
	sc := bufio.NewScanner(r)
	var block *pendingBlock
	lastLine := 0

	for lineNo := 1; sc.Scan(); lineNo++ {
		lastLine = lineNo
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		kw := strings.ToUpper(fields[0])

		if block != nil && (kw == "PFX" || kw == "SFX") && len(fields) >= 2 && fields[1] == block.group.Flag {
			if err := t.parseAffixEntry(block, fields, lineNo); err != nil {
				return nil, err
			}
			if block.got == block.want {
				block = nil
			}
			continue
		}

		if err := t.dispatch(kw, fields, lineNo, &block); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning .aff: %v: %w", err, ErrIO)
	}
	if block != nil {
		return nil, ruleErrf("line %d: PFX/SFX block for %q ended with %d/%d entries", lastLine, block.group.Flag, block.got, block.want)
	}
	return t, nil
}

func (t *AffixTable) dispatch(kw string, f []string, line int, block **pendingBlock) error {
	switch kw {
	case "SET", "FOL", "LOW", "UPP", "COMMON":
		return t.simpleString(kw, f, line)
	case "FLAG":
		return t.parseFlagMode(f, line)
	case "MIDWORD":
		return t.parseMidword(f, line)
	case "TRY":
		if len(f) >= 2 {
			t.TryChars = f[1]
		}
	case "RARE", "RAR":
		return assignFlag(&t.RareFlag, f, line)
	case "KEEPCASE", "KEP":
		return assignFlag(&t.KeepCaseFlag, f, line)
	case "FORBIDDENWORD", "BAD":
		return assignFlag(&t.ForbiddenFlag, f, line)
	case "NEEDAFFIX":
		return assignFlag(&t.NeedAffixFlag, f, line)
	case "CIRCUMFIX":
		return assignFlag(&t.CircumfixFlag, f, line)
	case "NOSUGGEST":
		return assignFlag(&t.NoSuggestFlag, f, line)
	case "NEEDCOMPOUND", "ONLYINCOMPOUND":
		return assignFlag(&t.NeedCompoundFlag, f, line)
	case "COMPOUNDROOT":
		return assignFlag(&t.CompoundRootFlag, f, line)
	case "COMPOUNDFORBIDFLAG":
		return assignFlag(&t.CompoundForbidFlag, f, line)
	case "COMPOUNDPERMITFLAG":
		return assignFlag(&t.CompoundPermitFlag, f, line)
	case "COMPOUNDFLAG":
		return assignFlag(&t.CompoundFlag, f, line)
	case "COMPOUNDRULE":
		if len(f) >= 2 {
			if _, err := strconv.Atoi(f[1]); err == nil && len(f) == 2 {
				return nil // count-only header line, rules follow
			}
			t.CompoundRules = append(t.CompoundRules, f[1])
		}
	case "COMPOUNDMIN":
		return assignInt(&t.CompoundMin, f, line)
	case "COMPOUNDWORDMAX":
		return assignInt(&t.CompoundMax, f, line)
	case "COMPOUNDSYLMAX":
		if len(f) >= 2 {
			if n, err := strconv.Atoi(f[1]); err == nil && n == 0 {
				return ruleErrf("line %d: COMPOUNDSYLMAX 0 is not accepted", line)
			}
		}
		return assignInt(&t.CompoundSylMax, f, line)
	case "CHECKCOMPOUNDDUP":
		t.CompoundOptions |= 1
	case "CHECKCOMPOUNDREP":
		t.CompoundOptions |= 2
	case "CHECKCOMPOUNDCASE":
		t.CompoundOptions |= 4
	case "CHECKCOMPOUNDTRIPLE":
		t.CompoundOptions |= 8
	case "CHECKCOMPOUNDPATTERN":
		if len(f) >= 3 {
			t.PatternPairs = append(t.PatternPairs, [2]string{f[1], f[2]})
		}
	case "SYLLABLE":
		if len(f) >= 2 {
			t.SyllableSet = []byte(f[1])
		}
		if len(f) >= 3 {
			t.SyllableTable = append(t.SyllableTable, []byte(f[2]))
		}
	case "NOBREAK":
		t.NoBreak = true
	case "NOSPLITSUGS":
		t.NoSplitSugs = true
	case "NOSUGFILE":
		t.NoSugFile = true
	case "PFXPOSTPONE":
		t.PFXPostpone = true
	case "REP":
		return t.parseRepLine(&t.Rep, f, line)
	case "REPSAL":
		return t.parseRepLine(&t.RepSal, f, line)
	case "MAP":
		if len(f) >= 2 {
			if n, err := strconv.Atoi(f[1]); err == nil && len(f) == 2 {
				_ = n
				return nil
			}
			t.Map = append(t.Map, f[1])
		}
	case "SAL":
		return t.parseSal(f, line)
	case "SOFOFROM":
		if len(f) >= 2 {
			t.SofoFrom = f[1]
		}
	case "SOFOTO":
		if len(f) >= 2 {
			t.SofoTo = f[1]
		}
	case "PFX", "SFX":
		return t.startBlock(kw == "PFX", f, line, block)
	default:
		log.Warnf("affix: unrecognized directive %q at line %d, skipped", kw, line)
	}
	return nil
}

func (t *AffixTable) simpleString(kw string, f []string, line int) error {
	if len(f) < 2 {
		log.Warnf("affix: %s missing argument at line %d, skipped", kw, line)
		return nil
	}
	switch kw {
	case "FOL":
		t.Fol = f[1]
	case "LOW":
		t.Low = f[1]
	case "UPP":
		t.Upp = f[1]
	case "COMMON":
		t.Common = append(t.Common, f[1:]...)
	}
	return nil
}

func (t *AffixTable) parseFlagMode(f []string, line int) error {
	if len(f) < 2 {
		return ruleErrf("line %d: FLAG missing mode", line)
	}
	switch strings.ToLower(f[1]) {
	case "long":
		t.FlagMode = FlagDoubleChar
	case "num":
		t.FlagMode = FlagNumeric
	case "caplong":
		t.FlagMode = FlagCapLong
	default:
		t.FlagMode = FlagSingleChar
	}
	return nil
}

func (t *AffixTable) parseMidword(f []string, line int) error {
	if len(f) < 2 {
		log.Warnf("affix: MIDWORD missing argument at line %d, skipped", line)
		return nil
	}
	for _, b := range []byte(f[1]) {
		t.Midword[b] = true
	}
	return nil
}

func (t *AffixTable) parseRepLine(list *[]RepLine, f []string, line int) error {
	if len(f) < 3 {
		if len(f) == 2 {
			return nil // count-only header
		}
		log.Warnf("affix: REP/REPSAL bad line %d, skipped", line)
		return nil
	}
	*list = append(*list, RepLine{From: f[1], To: f[2]})
	return nil
}

func (t *AffixTable) parseSal(f []string, line int) error {
	if len(f) < 2 {
		log.Warnf("affix: SAL missing argument at line %d, skipped", line)
		return nil
	}
	switch strings.ToLower(f[1]) {
	case "followup":
		t.SalFollowup = hasOnFlag(f)
		return nil
	case "collapse_result":
		t.SalCollapse = hasOnFlag(f)
		return nil
	case "remove_accents":
		t.SalStripAcc = hasOnFlag(f)
		return nil
	}
	if len(f) < 3 {
		return nil // count-only header
	}
	rule := SalLine{Lead: f[1], Replace: f[2]}
	if strings.HasPrefix(rule.Lead, "^") {
		rule.AnchorStart = true
		rule.Lead = rule.Lead[1:]
	}
	if strings.HasSuffix(rule.Lead, "$") {
		rule.AnchorEnd = true
		rule.Lead = rule.Lead[:len(rule.Lead)-1]
	}
	if strings.HasPrefix(rule.Replace, "<") {
		rule.Backtrack = true
		rule.Replace = rule.Replace[1:]
	}
	if len(f) >= 4 {
		rule.OneOf = f[3]
	}
	t.SalRules = append(t.SalRules, rule)
	return nil
}

func hasOnFlag(f []string) bool {
	return len(f) < 3 || strings.ToLower(f[2]) != "0"
}

func (t *AffixTable) startBlock(prefix bool, f []string, line int, block **pendingBlock) error {
	if len(f) < 4 {
		return ruleErrf("line %d: malformed PFX/SFX header", line)
	}
	flag := f[1]
	combines := strings.EqualFold(f[2], "Y")
	count, err := strconv.Atoi(f[3])
	if err != nil {
		return ruleErrf("line %d: bad PFX/SFX entry count %q", line, f[3])
	}
	g := &AffixGroup{Flag: flag, Prefix: prefix, Combines: combines}
	if prefix {
		t.Prefixes[flag] = g
	} else {
		t.Suffixes[flag] = g
	}
	*block = &pendingBlock{group: g, want: count}
	return nil
}

func (t *AffixTable) parseAffixEntry(b *pendingBlock, f []string, line int) error {
	if len(f) < 5 {
		return ruleErrf("line %d: malformed PFX/SFX entry", line)
	}
	chop, add, cond := f[2], f[3], f[4]
	if chop == "0" {
		chop = ""
	}
	var chainFlags []string
	if slash := strings.IndexByte(add, '/'); slash >= 0 {
		chainFlags = splitFlagString(add[slash+1:], t.FlagMode)
		add = add[:slash]
	}
	if add == "0" {
		add = ""
	}
	pattern := cond
	if cond == "0" || cond == "" {
		pattern = ""
	}
	if b.group.Prefix {
		pattern = "^" + pattern
	} else {
		pattern = pattern + "$"
	}
	var matcher *affixregex.Matcher
	if pattern != "^" && pattern != "$" {
		var err error
		matcher, err = affixregex.Compile(pattern)
		if err != nil {
			return ruleErrf("line %d: bad affix condition %q: %v", line, cond, err)
		}
	}

	entry := AffixEntry{Chop: chop, Add: add, Condition: matcher, ChainFlags: chainFlags}
	for _, extra := range f[5:] {
		if strings.EqualFold(extra, t.CompoundForbidFlag) && t.CompoundForbidFlag != "" {
			entry.CompoundForbid = true
		}
		if strings.EqualFold(extra, t.CompoundPermitFlag) && t.CompoundPermitFlag != "" {
			entry.CompoundPermit = true
		}
	}
	b.group.Entries = append(b.group.Entries, entry)
	b.got++
	return nil
}

func assignFlag(dst *string, f []string, line int) error {
	if len(f) < 2 {
		log.Warnf("affix: flag directive missing argument at line %d, skipped", line)
		return nil
	}
	*dst = f[1]
	return nil
}

func assignInt(dst *int, f []string, line int) error {
	if len(f) < 2 {
		log.Warnf("affix: integer directive missing argument at line %d, skipped", line)
		return nil
	}
	n, err := strconv.Atoi(f[1])
	if err != nil {
		log.Warnf("affix: bad integer %q at line %d, skipped", f[1], line)
		return nil
	}
	*dst = n
	return nil
}

// splitFlagString splits a Myspell flag string according to mode.
func splitFlagString(s string, mode FlagMode) []string {
	switch mode {
	case FlagNumeric:
		return strings.Split(s, ",")
	case FlagDoubleChar:
		var out []string
		r := []rune(s)
		for i := 0; i+1 < len(r); i += 2 {
			out = append(out, string(r[i:i+2]))
		}
		return out
	case FlagCapLong:
		var out []string
		r := []rune(s)
		for i := 0; i < len(r); {
			if r[i] >= 'A' && r[i] <= 'Z' && i+1 < len(r) {
				out = append(out, string(r[i:i+2]))
				i += 2
			} else {
				out = append(out, string(r[i]))
				i++
			}
		}
		return out
	default:
		var out []string
		for _, r := range s {
			out = append(out, string(r))
		}
		return out
	}
}

func ruleErrf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrRule)...)
}
