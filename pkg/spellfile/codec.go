/*
Package spellfile implements the .spl/.sug binary codec of spec.md §6:
a magic-prefixed header, a stream of optional/required sections, three
word trees (fold-case, keep-case, postponed-prefix), and the companion
suggestion-tree file with its delta-encoded word-index table.
*/
package spellfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/bastiangx/gospell/internal/logger"
	"github.com/bastiangx/gospell/pkg/affixregex"
	"github.com/bastiangx/gospell/pkg/langdata"
	"github.com/bastiangx/gospell/pkg/soundfold"
	"github.com/bastiangx/gospell/pkg/trie"
)

var log = logger.New("spellfile")

const fileVersion = 52

// Write encodes l as a .spl file onto w.
func Write(w io.Writer, l *langdata.Language) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(splMagic); err != nil {
		return fmt.Errorf("%w: magic: %v", ErrIO, err)
	}
	if err := bw.WriteByte(fileVersion); err != nil {
		return fmt.Errorf("%w: version: %v", ErrIO, err)
	}

	sections := buildSections(l)
	for _, sec := range sections {
		if err := bw.WriteByte(sec.id); err != nil {
			return fmt.Errorf("%w: section id: %v", ErrIO, err)
		}
		if err := bw.WriteByte(sec.flags); err != nil {
			return fmt.Errorf("%w: section flags: %v", ErrIO, err)
		}
		if err := writeU32(bw, uint32(len(sec.payload))); err != nil {
			return err
		}
		if _, err := bw.Write(sec.payload); err != nil {
			return fmt.Errorf("%w: section payload: %v", ErrIO, err)
		}
	}
	if err := bw.WriteByte(SnEnd); err != nil {
		return fmt.Errorf("%w: end marker: %v", ErrIO, err)
	}

	for _, t := range []*trie.Store{l.FoldCase, l.KeepCase, l.Prefix} {
		prefixTree := t == l.Prefix
		if t == nil {
			t = &trie.Store{}
		}
		if err := writeTree(bw, t, prefixTree); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

type section struct {
	id      byte
	flags   byte
	payload []byte
}

func buildSections(l *langdata.Language) []section {
	var out []section
	add := func(id byte, required bool, payload []byte) {
		if payload == nil {
			return
		}
		flags := byte(0)
		if required {
			flags = sectionFlagRequired
		}
		out = append(out, section{id: id, flags: flags, payload: payload})
	}

	add(SnRegion, false, encodeRegion(l))
	add(SnCharFlags, true, encodeCharFlags(l))
	add(SnMidword, false, encodeMidword(l))
	add(SnPrefCond, false, encodePrefCond(l))
	add(SnRep, false, encodeRepList(l.Rep))
	add(SnRepSal, false, encodeRepList(l.RepSal))
	add(SnMap, false, encodeMap(l))
	add(SnCompound, false, encodeCompound(l))
	add(SnSyllable, false, encodeSyllable(l))
	if l.Compound.NoBreak {
		add(SnNoBreak, false, []byte{})
	}
	add(SnSofo, false, encodeSofo(l))
	add(SnSal, false, encodeSal(l))
	add(SnWords, false, encodeWords(l))
	return out
}

// Read decodes a .spl file from r into a freshly allocated Language.
func Read(r io.Reader) (*langdata.Language, error) {
	br := bufio.NewReader(r)
	magic := make([]byte, len(splMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("%w: magic: %v", ErrTruncated, err)
	}
	if !bytes.Equal(magic, splMagic) {
		return nil, fmt.Errorf("%w: bad magic", ErrFormat)
	}
	version, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: version: %v", ErrTruncated, err)
	}
	if version < minVersion || version > maxVersion {
		return nil, fmt.Errorf("%w: version %d", ErrVersion, version)
	}

	l := langdata.NewLanguage("", "")
	for {
		id, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: section id: %v", ErrTruncated, err)
		}
		if id == SnEnd {
			break
		}
		flags, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: section flags: %v", ErrTruncated, err)
		}
		length, err := readU32(br)
		if err != nil {
			return nil, err
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(br, payload); err != nil {
			return nil, fmt.Errorf("%w: section payload: %v", ErrTruncated, err)
		}
		if err := applySection(l, id, payload); err != nil {
			if flags&sectionFlagRequired != 0 {
				return nil, err
			}
			log.Warnf("spellfile: skipping unrecognized optional section %d: %v", id, err)
		}
	}

	fold, err := readTree(br, false)
	if err != nil {
		return nil, fmt.Errorf("fold-case tree: %w", err)
	}
	keep, err := readTree(br, false)
	if err != nil {
		return nil, fmt.Errorf("keep-case tree: %w", err)
	}
	pref, err := readTree(br, true)
	if err != nil {
		return nil, fmt.Errorf("prefix tree: %w", err)
	}
	l.FoldCase = fold
	if keep.NodeCount() > 0 {
		l.KeepCase = keep
	}
	if pref.NodeCount() > 0 {
		l.Prefix = pref
	}
	return l, nil
}

func applySection(l *langdata.Language, id byte, payload []byte) error {
	pr := bufio.NewReader(bytes.NewReader(payload))
	switch id {
	case SnRegion:
		return decodeRegion(l, pr)
	case SnCharFlags:
		return decodeCharFlags(l, pr)
	case SnMidword:
		return decodeMidword(l, pr)
	case SnPrefCond:
		return decodePrefCond(l, pr)
	case SnRep:
		rl, err := decodeRepList(pr)
		if err != nil {
			return err
		}
		l.Rep = rl
		return nil
	case SnRepSal:
		rl, err := decodeRepList(pr)
		if err != nil {
			return err
		}
		l.RepSal = rl
		return nil
	case SnMap:
		return decodeMap(l, pr)
	case SnCompound:
		return decodeCompound(l, pr)
	case SnSyllable:
		return decodeSyllable(l, pr)
	case SnNoBreak:
		l.Compound.NoBreak = true
		return nil
	case SnSofo:
		return decodeSofo(l, pr)
	case SnSal:
		return decodeSal(l, pr)
	case SnWords:
		return decodeWords(l, pr)
	case SnInfo, SnSugFile, SnNoSplitSugs:
		return nil // recognized, carries no state this engine acts on
	default:
		return fmt.Errorf("%w: unknown section %d", ErrFormat, id)
	}
}

// --- SN_REGION ---

func encodeRegion(l *langdata.Language) []byte {
	if l.Regions.Count == 0 {
		return nil
	}
	var buf bytes.Buffer
	buf.WriteByte(byte(l.Regions.Count))
	for i := 0; i < l.Regions.Count; i++ {
		buf.WriteString(l.Regions.Names[i])
	}
	return buf.Bytes()
}

func decodeRegion(l *langdata.Language, r *bufio.Reader) error {
	count, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: region count: %v", ErrTruncated, err)
	}
	if int(count) > len(l.Regions.Names) {
		return fmt.Errorf("%w: too many regions", ErrFormat)
	}
	for i := 0; i < int(count); i++ {
		name := make([]byte, 2)
		if _, err := io.ReadFull(r, name); err != nil {
			return fmt.Errorf("%w: region name: %v", ErrTruncated, err)
		}
		l.Regions.Names[i] = string(name)
	}
	l.Regions.Count = int(count)
	return nil
}

// --- SN_CHARFLAGS ---

func encodeCharFlags(l *langdata.Language) []byte {
	buf := make([]byte, 512)
	for i := 0; i < 256; i++ {
		if l.WordChars[i] {
			buf[i] = 1
		}
		if l.UpperChars[i] {
			buf[256+i] = 1
		}
	}
	return buf
}

func decodeCharFlags(l *langdata.Language, r *bufio.Reader) error {
	buf := make([]byte, 512)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: charflags: %v", ErrTruncated, err)
	}
	for i := 0; i < 256; i++ {
		l.WordChars[i] = buf[i] != 0
		l.UpperChars[i] = buf[256+i] != 0
	}
	return nil
}

// --- SN_MIDWORD ---

func encodeMidword(l *langdata.Language) []byte {
	if len(l.Midword) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for b, on := range l.Midword {
		if on {
			buf.WriteByte(b)
		}
	}
	return buf.Bytes()
}

func decodeMidword(l *langdata.Language, r *bufio.Reader) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: midword: %v", ErrTruncated, err)
	}
	for _, b := range body {
		l.Midword[b] = true
	}
	return nil
}

// --- SN_PREFCOND ---

func encodePrefCond(l *langdata.Language) []byte {
	if len(l.PrefixConds.Conditions) == 0 {
		return nil
	}
	var buf bytes.Buffer
	binWriteU16(&buf, uint16(len(l.PrefixConds.Conditions)))
	for _, m := range l.PrefixConds.Conditions {
		src := m.String()
		binWriteU16(&buf, uint16(len(src)))
		buf.WriteString(src)
	}
	return buf.Bytes()
}

func decodePrefCond(l *langdata.Language, r *bufio.Reader) error {
	count, err := readU16(r)
	if err != nil {
		return err
	}
	conds := make([]*affixregex.Matcher, 0, count)
	for i := uint16(0); i < count; i++ {
		n, err := readU16(r)
		if err != nil {
			return err
		}
		raw := make([]byte, n)
		if _, err := io.ReadFull(r, raw); err != nil {
			return fmt.Errorf("%w: prefix condition text: %v", ErrTruncated, err)
		}
		m, err := affixregex.Compile(string(raw))
		if err != nil {
			return fmt.Errorf("%w: prefix condition %q: %v", ErrRule, raw, err)
		}
		conds = append(conds, m)
	}
	l.PrefixConds.Conditions = conds
	return nil
}

// --- SN_REP / SN_REPSAL ---

func encodeRepList(rl *langdata.RepList) []byte {
	if rl == nil || len(rl.Pairs) == 0 {
		return nil
	}
	var buf bytes.Buffer
	binWriteU16(&buf, uint16(len(rl.Pairs)))
	for _, p := range rl.Pairs {
		binWriteU16(&buf, uint16(len(p.From)))
		buf.WriteString(p.From)
		binWriteU16(&buf, uint16(len(p.To)))
		buf.WriteString(p.To)
	}
	return buf.Bytes()
}

func decodeRepList(r *bufio.Reader) (*langdata.RepList, error) {
	count, err := readU16(r)
	if err != nil {
		return nil, err
	}
	pairs := make([]langdata.RepPair, 0, count)
	for i := uint16(0); i < count; i++ {
		from, err := readLenString(r)
		if err != nil {
			return nil, err
		}
		to, err := readLenString(r)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, langdata.RepPair{From: from, To: to})
	}
	return langdata.NewRepList(pairs), nil
}

// --- SN_MAP ---

func encodeMap(l *langdata.Language) []byte {
	groups := mapGroups(l.CharMap)
	if len(groups) == 0 {
		return nil
	}
	var buf bytes.Buffer
	binWriteU16(&buf, uint16(len(groups)))
	for _, g := range groups {
		binWriteU16(&buf, uint16(len(g)))
		buf.WriteString(g)
	}
	return buf.Bytes()
}

// mapGroups is a best-effort reconstruction of MAP groups from the
// flattened CharMap for round-tripping; the low-256 table is grouped by
// head byte.
func mapGroups(cm langdata.CharMap) []string {
	byHead := make(map[byte][]byte)
	for i := 0; i < 256; i++ {
		if cm.Low[i] != 0 {
			byHead[cm.Low[i]] = append(byHead[cm.Low[i]], byte(i))
		}
	}
	var groups []string
	for head, members := range byHead {
		g := append([]byte{head}, members...)
		groups = append(groups, string(g))
	}
	return groups
}

func decodeMap(l *langdata.Language, r *bufio.Reader) error {
	count, err := readU16(r)
	if err != nil {
		return err
	}
	if l.CharMap.High == nil {
		l.CharMap.High = make(map[rune]rune)
	}
	for i := uint16(0); i < count; i++ {
		g, err := readLenString(r)
		if err != nil {
			return err
		}
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
	return nil
}

// --- SN_COMPOUND ---

func encodeCompound(l *langdata.Language) []byte {
	c := l.Compound
	if c.MaxWords == 0 && c.RawRule == "" && len(c.StartFlags) == 0 {
		return nil
	}
	var buf bytes.Buffer
	buf.WriteByte(byte(c.MaxWords))
	buf.WriteByte(byte(c.MinLength))
	buf.WriteByte(byte(c.MaxSyllables))
	buf.WriteByte(c.Options)
	writeFlagSet(&buf, c.StartFlags)
	writeFlagSet(&buf, c.AnyFlags)
	binWriteU16(&buf, uint16(len(c.RawRule)))
	buf.WriteString(c.RawRule)
	binWriteU16(&buf, uint16(len(c.PatternPairs)))
	for _, p := range c.PatternPairs {
		binWriteU16(&buf, uint16(len(p[0])))
		buf.WriteString(p[0])
		binWriteU16(&buf, uint16(len(p[1])))
		buf.WriteString(p[1])
	}
	return buf.Bytes()
}

func writeFlagSet(buf *bytes.Buffer, set map[byte]bool) {
	buf.WriteByte(byte(len(set)))
	for b, on := range set {
		if on {
			buf.WriteByte(b)
		}
	}
}

func readFlagSet(r *bufio.Reader) (map[byte]bool, error) {
	n, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: flag set count: %v", ErrTruncated, err)
	}
	set := make(map[byte]bool, n)
	for i := 0; i < int(n); i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: flag set member: %v", ErrTruncated, err)
		}
		set[b] = true
	}
	return set, nil
}

func decodeCompound(l *langdata.Language, r *bufio.Reader) error {
	maxWords, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: compound maxwords: %v", ErrTruncated, err)
	}
	minLen, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: compound minlen: %v", ErrTruncated, err)
	}
	maxSyl, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: compound maxsyl: %v", ErrTruncated, err)
	}
	opts, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: compound options: %v", ErrTruncated, err)
	}
	start, err := readFlagSet(r)
	if err != nil {
		return err
	}
	any, err := readFlagSet(r)
	if err != nil {
		return err
	}
	rule, err := readLenString(r)
	if err != nil {
		return err
	}
	var matcher *affixregex.Matcher
	if rule != "" {
		matcher, err = affixregex.Compile(rule)
		if err != nil {
			return fmt.Errorf("%w: compound rule %q: %v", ErrRule, rule, err)
		}
	}
	npairs, err := readU16(r)
	if err != nil {
		return err
	}
	pairs := make([][2]string, 0, npairs)
	for i := uint16(0); i < npairs; i++ {
		a, err := readLenString(r)
		if err != nil {
			return err
		}
		b, err := readLenString(r)
		if err != nil {
			return err
		}
		pairs = append(pairs, [2]string{a, b})
	}
	l.Compound.MaxWords = int(maxWords)
	l.Compound.MinLength = int(minLen)
	l.Compound.MaxSyllables = int(maxSyl)
	l.Compound.Options = opts
	l.Compound.StartFlags = start
	l.Compound.AnyFlags = any
	l.Compound.RawRule = rule
	l.Compound.RuleRegex = matcher
	l.Compound.PatternPairs = pairs
	return nil
}

// --- SN_SYLLABLE ---

func encodeSyllable(l *langdata.Language) []byte {
	if len(l.Compound.SyllableSet) == 0 && len(l.Compound.SyllableTable) == 0 {
		return nil
	}
	var buf bytes.Buffer
	binWriteU16(&buf, uint16(len(l.Compound.SyllableSet)))
	buf.Write(l.Compound.SyllableSet)
	binWriteU16(&buf, uint16(len(l.Compound.SyllableTable)))
	for _, entry := range l.Compound.SyllableTable {
		binWriteU16(&buf, uint16(len(entry)))
		buf.Write(entry)
	}
	return buf.Bytes()
}

func decodeSyllable(l *langdata.Language, r *bufio.Reader) error {
	n, err := readU16(r)
	if err != nil {
		return err
	}
	set := make([]byte, n)
	if _, err := io.ReadFull(r, set); err != nil {
		return fmt.Errorf("%w: syllable set: %v", ErrTruncated, err)
	}
	count, err := readU16(r)
	if err != nil {
		return err
	}
	table := make([][]byte, 0, count)
	for i := uint16(0); i < count; i++ {
		elen, err := readU16(r)
		if err != nil {
			return err
		}
		entry := make([]byte, elen)
		if _, err := io.ReadFull(r, entry); err != nil {
			return fmt.Errorf("%w: syllable entry: %v", ErrTruncated, err)
		}
		table = append(table, entry)
	}
	l.Compound.SyllableSet = set
	l.Compound.SyllableTable = table
	return nil
}

// --- SN_SOFO ---

func encodeSofo(l *langdata.Language) []byte {
	if l.Sofo == nil {
		return nil
	}
	from := make([]byte, 256)
	to := make([]byte, 256)
	for i := 0; i < 256; i++ {
		from[i] = byte(i)
		to[i] = l.Sofo.Fold([]byte{byte(i)})[0]
	}
	var buf bytes.Buffer
	buf.Write(from)
	buf.Write(to)
	return buf.Bytes()
}

func decodeSofo(l *langdata.Language, r *bufio.Reader) error {
	from := make([]byte, 256)
	to := make([]byte, 256)
	if _, err := io.ReadFull(r, from); err != nil {
		return fmt.Errorf("%w: sofo from: %v", ErrTruncated, err)
	}
	if _, err := io.ReadFull(r, to); err != nil {
		return fmt.Errorf("%w: sofo to: %v", ErrTruncated, err)
	}
	l.Sofo = soundfold.NewSofoFolder(from, to, nil)
	return nil
}

// --- SN_SAL ---

func encodeSal(l *langdata.Language) []byte {
	if l.Sal == nil {
		return nil
	}
	var buf bytes.Buffer
	flags := byte(0)
	if l.Sal.Followup {
		flags |= 1
	}
	if l.Sal.CollapseEqual {
		flags |= 2
	}
	if l.Sal.StripAccents {
		flags |= 4
	}
	buf.WriteByte(flags)
	binWriteU16(&buf, uint16(len(l.Sal.Rules)))
	for _, rule := range l.Sal.Rules {
		writeSalRule(&buf, rule)
	}
	return buf.Bytes()
}

func writeSalRule(buf *bytes.Buffer, rule soundfold.SalRule) {
	flags := byte(0)
	if rule.AnchorStart {
		flags |= 1
	}
	if rule.AnchorEnd {
		flags |= 2
	}
	if rule.Backtrack {
		flags |= 4
	}
	buf.WriteByte(flags)
	binWriteU16(buf, uint16(rule.Priority))
	writeShortString(buf, rule.Lead)
	writeShortString(buf, rule.OneOf)
	writeShortString(buf, rule.Replace)
}

func writeShortString(buf *bytes.Buffer, s string) {
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
}

func readShortString(r *bufio.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", fmt.Errorf("%w: short string length: %v", ErrTruncated, err)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("%w: short string: %v", ErrTruncated, err)
	}
	return string(b), nil
}

func decodeSal(l *langdata.Language, r *bufio.Reader) error {
	flags, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: sal flags: %v", ErrTruncated, err)
	}
	count, err := readU16(r)
	if err != nil {
		return err
	}
	rules := make([]soundfold.SalRule, 0, count)
	for i := uint16(0); i < count; i++ {
		rule, err := readSalRule(r)
		if err != nil {
			return err
		}
		rules = append(rules, rule)
	}
	l.Sal = soundfold.NewSalFolder(rules, flags&1 != 0, flags&2 != 0, flags&4 != 0)
	return nil
}

func readSalRule(r *bufio.Reader) (soundfold.SalRule, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return soundfold.SalRule{}, fmt.Errorf("%w: sal rule flags: %v", ErrTruncated, err)
	}
	priority, err := readU16(r)
	if err != nil {
		return soundfold.SalRule{}, err
	}
	lead, err := readShortString(r)
	if err != nil {
		return soundfold.SalRule{}, err
	}
	oneOf, err := readShortString(r)
	if err != nil {
		return soundfold.SalRule{}, err
	}
	replace, err := readShortString(r)
	if err != nil {
		return soundfold.SalRule{}, err
	}
	return soundfold.SalRule{
		Lead:        lead,
		OneOf:       oneOf,
		AnchorStart: flags&1 != 0,
		AnchorEnd:   flags&2 != 0,
		Priority:    int(priority),
		Replace:     replace,
		Backtrack:   flags&4 != 0,
	}, nil
}

// --- SN_WORDS ---

func encodeWords(l *langdata.Language) []byte {
	if len(l.CommonWords) == 0 {
		return nil
	}
	var buf bytes.Buffer
	binWriteU32(&buf, uint32(len(l.CommonWords)))
	for word, count := range l.CommonWords {
		binWriteU16(&buf, uint16(len(word)))
		buf.WriteString(word)
		binWriteU32(&buf, uint32(count))
	}
	return buf.Bytes()
}

func decodeWords(l *langdata.Language, r *bufio.Reader) error {
	count, err := readU32(r)
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		word, err := readLenString(r)
		if err != nil {
			return err
		}
		n, err := readU32(r)
		if err != nil {
			return err
		}
		l.CommonWords[word] = int(n)
	}
	return nil
}

// --- small shared helpers ---

func binWriteU16(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v))
}

func binWriteU32(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v >> 24))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v))
}

func readLenString(r *bufio.Reader) (string, error) {
	n, err := readU16(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("%w: string body: %v", ErrTruncated, err)
	}
	return string(b), nil
}
