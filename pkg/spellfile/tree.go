package spellfile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/bastiangx/gospell/pkg/langdata"
	"github.com/bastiangx/gospell/pkg/trie"
)

// Sibling discriminator bytes for a word-tree node stream, per spec.md
// §6.1. byNoFlags/byFlags/byFlags2 only ever appear on a NUL sibling
// (word end); byIndex appears on every non-NUL sibling, since our Store
// already addresses every child by an absolute, uniquely-assigned node
// index rather than relying on stream adjacency to find it. That trades
// a few bytes per edge (an explicit 3-byte index even for a child that
// happens to follow immediately) for a codec that never has to guess
// whether a child was "already emitted" while reading forward — see
// DESIGN.md.
const (
	byNoFlags = 0
	byIndex   = 1
	byFlags   = 2
	byFlags2  = 3
)

// writeTree serializes s in node-index order: each node already appears
// exactly once in s.Bytes/s.Idxs (Builder.Finish only emits a distinct
// buildNode once), so the disk stream is simply that array order with
// leaf values re-expanded into their flag encoding.
func writeTree(w *bufio.Writer, s *trie.Store, prefixTree bool) error {
	if err := writeU32(w, uint32(s.NodeCount())); err != nil {
		return err
	}
	for n := 0; n < len(s.Bytes); {
		k := int(s.Bytes[n])
		if err := w.WriteByte(byte(k)); err != nil {
			return fmt.Errorf("%w: node header", ErrIO)
		}
		for i := 0; i < k; i++ {
			b := s.Bytes[n+1+i]
			idx := s.Idxs[n+1+i]
			if b == 0 {
				if err := writeLeaf(w, idx, prefixTree); err != nil {
					return err
				}
				continue
			}
			if err := w.WriteByte(byIndex); err != nil {
				return fmt.Errorf("%w: sibling marker", ErrIO)
			}
			if err := writeU24(w, idx); err != nil {
				return err
			}
			if err := w.WriteByte(b); err != nil {
				return fmt.Errorf("%w: sibling xbyte", ErrIO)
			}
		}
		n += 1 + k
	}
	return nil
}

func writeLeaf(w *bufio.Writer, raw uint32, prefixTree bool) error {
	if prefixTree {
		pm := langdata.DecodePrefix(raw)
		marker := byte(byNoFlags)
		if pm.Flags != 0 {
			marker = byFlags
		}
		if err := w.WriteByte(marker); err != nil {
			return fmt.Errorf("%w: prefix leaf marker", ErrIO)
		}
		if marker == byFlags {
			if err := w.WriteByte(pm.Flags); err != nil {
				return fmt.Errorf("%w: prefix flags", ErrIO)
			}
		}
		if err := w.WriteByte(pm.AffixID); err != nil {
			return fmt.Errorf("%w: prefix affix id", ErrIO)
		}
		return writeU16(w, pm.CondIndex)
	}

	wm := langdata.Decode(raw)
	marker := byte(byNoFlags)
	switch {
	case wm.Extra != 0:
		marker = byFlags2
	case wm.Base != 0:
		marker = byFlags
	}
	if err := w.WriteByte(marker); err != nil {
		return fmt.Errorf("%w: word leaf marker", ErrIO)
	}
	if marker == byNoFlags {
		return nil
	}
	if err := w.WriteByte(wm.Base); err != nil {
		return fmt.Errorf("%w: base flags", ErrIO)
	}
	if marker == byFlags2 {
		if err := w.WriteByte(wm.Extra); err != nil {
			return fmt.Errorf("%w: extra flags", ErrIO)
		}
	}
	if wm.Base&langdata.WFRegion != 0 {
		if err := w.WriteByte(wm.Region); err != nil {
			return fmt.Errorf("%w: region byte", ErrIO)
		}
	}
	if wm.Base&langdata.WFAfx != 0 {
		if err := w.WriteByte(wm.AffixID); err != nil {
			return fmt.Errorf("%w: affix id", ErrIO)
		}
	}
	return nil
}

// readTree is the exact inverse of writeTree.
func readTree(r *bufio.Reader, prefixTree bool) (*trie.Store, error) {
	count, err := readU32(r)
	if err != nil {
		return nil, err
	}
	s := &trie.Store{}
	for node := uint32(0); node < count; node++ {
		kb, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: node header: %v", ErrTruncated, err)
		}
		k := int(kb)
		s.Bytes = append(s.Bytes, kb)
		s.Idxs = append(s.Idxs, 0)
		for i := 0; i < k; i++ {
			marker, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("%w: sibling marker: %v", ErrTruncated, err)
			}
			switch marker {
			case byIndex:
				idx, err := readU24(r)
				if err != nil {
					return nil, err
				}
				xbyte, err := r.ReadByte()
				if err != nil {
					return nil, fmt.Errorf("%w: sibling xbyte: %v", ErrTruncated, err)
				}
				s.Bytes = append(s.Bytes, xbyte)
				s.Idxs = append(s.Idxs, idx)
			case byNoFlags, byFlags, byFlags2:
				raw, err := readLeaf(r, marker, prefixTree)
				if err != nil {
					return nil, err
				}
				s.Bytes = append(s.Bytes, 0)
				s.Idxs = append(s.Idxs, raw)
			default:
				return nil, fmt.Errorf("%w: unknown sibling marker %d", ErrFormat, marker)
			}
		}
	}
	return s, nil
}

func readLeaf(r *bufio.Reader, marker byte, prefixTree bool) (uint32, error) {
	if prefixTree {
		var flags byte
		if marker == byFlags {
			f, err := r.ReadByte()
			if err != nil {
				return 0, fmt.Errorf("%w: prefix flags: %v", ErrTruncated, err)
			}
			flags = f
		}
		affixID, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: prefix affix id: %v", ErrTruncated, err)
		}
		cond, err := readU16(r)
		if err != nil {
			return 0, err
		}
		return langdata.PrefixMeta{AffixID: affixID, CondIndex: cond, Flags: flags}.Encode(), nil
	}

	if marker == byNoFlags {
		return langdata.WordMeta{}.Encode(), nil
	}
	base, err := r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("%w: base flags: %v", ErrTruncated, err)
	}
	var extra byte
	if marker == byFlags2 {
		e, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: extra flags: %v", ErrTruncated, err)
		}
		extra = e
	}
	var region, affixID byte
	if base&langdata.WFRegion != 0 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: region byte: %v", ErrTruncated, err)
		}
		region = b
	}
	if base&langdata.WFAfx != 0 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: affix id: %v", ErrTruncated, err)
		}
		affixID = b
	}
	return langdata.WordMeta{Base: base, Extra: extra, Region: region, AffixID: affixID}.Encode(), nil
}

func writeU32(w *bufio.Writer, v uint32) error {
	b := []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func readU32(r *bufio.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: u32: %v", ErrTruncated, err)
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

func writeU24(w *bufio.Writer, v uint32) error {
	b := []byte{byte(v >> 16), byte(v >> 8), byte(v)}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func readU24(r *bufio.Reader) (uint32, error) {
	var b [3]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: u24: %v", ErrTruncated, err)
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

func writeU16(w *bufio.Writer, v uint16) error {
	b := []byte{byte(v >> 8), byte(v)}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func readU16(r *bufio.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: u16: %v", ErrTruncated, err)
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}
