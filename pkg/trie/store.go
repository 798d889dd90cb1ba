/*
Package trie implements the compressed arena trie that backs every word
tree in a gospell Language: the fold-case tree, the keep-case tree, the
postponed-prefix tree, and the soundfold tree of a .sug file.

A Store is two parallel arrays addressed by the same node index, exactly
as described for the on-disk format: at a node-start index n, Bytes[n] is
the sibling count k, Bytes[n+1..n+k] are the sibling byte values sorted
ascending with NUL (0) siblings first. Idxs[i] holds either a child node
index (non-NUL siblings) or an encoded leaf value (NUL siblings).

Multiple consecutive NUL siblings at one node encode alternative
flag/region/affix combinations for the same spelled word; their relative
order is significant and is preserved exactly as built (see Builder).
*/
package trie

import "sort"

// Store is the flat, index-addressed representation of one word tree.
type Store struct {
	Bytes []byte
	Idxs  []uint32
}

// Root is always node index 0 for a non-empty Store.
const Root = 0

// NodeSiblings returns the sibling byte values and their Idxs slots
// for the node starting at index n.
func (s *Store) NodeSiblings(n int) (bytes []byte, idxStart int, k int) {
	if n < 0 || n >= len(s.Bytes) {
		return nil, 0, 0
	}
	k = int(s.Bytes[n])
	return s.Bytes[n+1 : n+1+k], n + 1, k
}

// Descend performs the binary search for sibling byte b at node n and
// returns the Idxs entry for that sibling. ok is false when no sibling
// matches.
func (s *Store) Descend(n int, b byte) (idx uint32, pos int, ok bool) {
	siblings, _, k := s.NodeSiblings(n)
	// NUL siblings are not valid descend targets except b==0, which a
	// caller would use to enumerate word ends instead.
	lo, hi := 0, k
	for lo < hi {
		mid := (lo + hi) / 2
		if siblings[mid] < b {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < k && siblings[lo] == b {
		return s.Idxs[n+1+lo], lo, true
	}
	return 0, 0, false
}

// NulLeaves returns the Idxs values of every NUL sibling at node n, in
// on-disk order. Per the spec's open question on NUL-run precedence,
// this order is authoritative and must never be re-derived by
// specificity.
func (s *Store) NulLeaves(n int) []uint32 {
	siblings, _, k := s.NodeSiblings(n)
	var out []uint32
	for i := 0; i < k && siblings[i] == 0; i++ {
		out = append(out, s.Idxs[n+1+i])
	}
	return out
}

// ChildIndex returns the node index a non-NUL sibling points to.
func ChildIndex(idx uint32) int { return int(idx) }

// NodeCount reports how many node-start positions exist in the Store,
// used by the SpellFile writer to size the on-disk node-count prefix.
func (s *Store) NodeCount() int {
	count := 0
	for n := 0; n < len(s.Bytes); {
		k := int(s.Bytes[n])
		count++
		n += 1 + k
	}
	return count
}

// Lookup walks b fully, returning the node index reached and whether the
// full byte sequence was consumed by following non-NUL siblings (it does
// not itself decide word-end status — callers inspect NulLeaves at the
// final node for that).
func (s *Store) Lookup(b []byte) (node int, ok bool) {
	node = Root
	for _, c := range b {
		idx, _, found := s.Descend(node, c)
		if !found {
			return 0, false
		}
		node = ChildIndex(idx)
	}
	return node, true
}

// sortSiblings sorts parallel (byte, idx) slices ascending by byte value
// with NUL first (NUL is numerically smallest already, so a plain
// ascending sort satisfies both requirements).
func sortSiblings(bytes []byte, idxs []uint32) {
	type pair struct {
		b byte
		i uint32
	}
	pairs := make([]pair, len(bytes))
	for i := range bytes {
		pairs[i] = pair{bytes[i], idxs[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].b < pairs[j].b })
	for i := range pairs {
		bytes[i] = pairs[i].b
		idxs[i] = pairs[i].i
	}
}
