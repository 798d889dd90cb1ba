package spellfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/bastiangx/gospell/pkg/langdata"
	"github.com/bastiangx/gospell/pkg/trie"
)

var sugMagic = []byte("VIMsug\x9f")

const sugVersion = 1

// WriteSug encodes l's soundfold tree and sugline table as a .sug file.
// timestamp should match the .spl file's build time so ReadSug can
// detect a stale companion.
func WriteSug(w io.Writer, l *langdata.Language, timestamp int64) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(sugMagic); err != nil {
		return fmt.Errorf("%w: sug magic: %v", ErrIO, err)
	}
	if err := bw.WriteByte(sugVersion); err != nil {
		return fmt.Errorf("%w: sug version: %v", ErrIO, err)
	}
	var tsBuf [8]byte
	putU64(tsBuf[:], uint64(timestamp))
	if _, err := bw.Write(tsBuf[:]); err != nil {
		return fmt.Errorf("%w: sug timestamp: %v", ErrIO, err)
	}

	tree := l.SoundFold
	if tree == nil {
		tree = &trie.Store{}
	}
	if err := writeTree(bw, tree, false); err != nil {
		return err
	}

	if err := writeU32(bw, uint32(len(l.SugTable))); err != nil {
		return err
	}
	for _, entry := range l.SugTable {
		if err := writeU16(bw, uint16(len(entry))); err != nil {
			return err
		}
		var prev int64
		for _, v := range entry {
			delta := int64(v) - prev
			prev = int64(v)
			enc := EncodeSugNr(delta)
			if _, err := bw.Write(enc); err != nil {
				return fmt.Errorf("%w: sugline delta: %v", ErrIO, err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// ReadSug decodes a .sug file and attaches it to l, unless its timestamp
// doesn't match splTimestamp (the companion is stale: the caller should
// treat this as "no .sug available" rather than an error, the way a
// stale suggestion cache is silently ignored rather than rejected).
func ReadSug(r io.Reader, l *langdata.Language, splTimestamp int64) error {
	br := bufio.NewReader(r)
	magic := make([]byte, len(sugMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return fmt.Errorf("%w: sug magic: %v", ErrTruncated, err)
	}
	if !bytes.Equal(magic, sugMagic) {
		return fmt.Errorf("%w: bad sug magic", ErrFormat)
	}
	if _, err := br.ReadByte(); err != nil { // version, single supported value
		return fmt.Errorf("%w: sug version: %v", ErrTruncated, err)
	}
	var tsBuf [8]byte
	if _, err := io.ReadFull(br, tsBuf[:]); err != nil {
		return fmt.Errorf("%w: sug timestamp: %v", ErrTruncated, err)
	}
	ts := int64(getU64(tsBuf[:]))
	if ts != splTimestamp {
		l.SugLoadFailed = true
		return nil
	}

	tree, err := readTree(br, false)
	if err != nil {
		return fmt.Errorf("soundfold tree: %w", err)
	}
	count, err := readU32(br)
	if err != nil {
		return err
	}
	table := make([][]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		n, err := readU16(br)
		if err != nil {
			return err
		}
		entry := make([]uint32, 0, n)
		var prev int64
		for j := uint16(0); j < n; j++ {
			delta, err := DecodeSugNr(br)
			if err != nil {
				return err
			}
			prev += delta
			entry = append(entry, uint32(prev))
		}
		table = append(table, entry)
	}

	l.SoundFold = tree
	l.SugTable = table
	l.SugTimestamp = ts
	l.SugLoaded = true
	return nil
}

// EncodeSugNr writes a signed delta as a 1-4 byte variable-length value:
// zigzag-encoded, then biased by +1 so the first byte is never zero.
// Later bytes may be zero; no terminator is looked for, since WriteSug
// stores each entry's count. The top bits of the first byte give the
// total length.
func EncodeSugNr(delta int64) []byte {
	zigzag := uint64(delta<<1) ^ uint64(delta>>63)
	biased := zigzag + 1
	switch {
	case biased < 0x80:
		return []byte{byte(biased)}
	case biased < 0x4000:
		return []byte{0x80 | byte(biased>>8), byte(biased)}
	case biased < 0x200000:
		return []byte{0xC0 | byte(biased>>16), byte(biased >> 8), byte(biased)}
	default:
		return []byte{0xE0 | byte(biased>>24), byte(biased >> 16), byte(biased >> 8), byte(biased)}
	}
}

// DecodeSugNr is the inverse of EncodeSugNr.
func DecodeSugNr(r *bufio.Reader) (int64, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("%w: sugnr: %v", ErrTruncated, err)
	}
	var biased uint64
	switch {
	case first&0x80 == 0:
		biased = uint64(first)
	case first&0xC0 == 0x80:
		b2, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: sugnr: %v", ErrTruncated, err)
		}
		biased = uint64(first&0x3F)<<8 | uint64(b2)
	case first&0xE0 == 0xC0:
		var rest [2]byte
		if _, err := io.ReadFull(r, rest[:]); err != nil {
			return 0, fmt.Errorf("%w: sugnr: %v", ErrTruncated, err)
		}
		biased = uint64(first&0x1F)<<16 | uint64(rest[0])<<8 | uint64(rest[1])
	default:
		var rest [3]byte
		if _, err := io.ReadFull(r, rest[:]); err != nil {
			return 0, fmt.Errorf("%w: sugnr: %v", ErrTruncated, err)
		}
		biased = uint64(first&0x1F)<<24 | uint64(rest[0])<<16 | uint64(rest[1])<<8 | uint64(rest[2])
	}
	zigzag := biased - 1
	return int64(zigzag>>1) ^ -int64(zigzag&1), nil
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> uint(56-8*i))
	}
}

func getU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
