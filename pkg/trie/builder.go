package trie

import "github.com/charmbracelet/log"

// Entry is one word inserted into a Builder. Leaves holds the NUL-sibling
// leaf values to attach at the word's end, in the order they must appear
// on disk (see Store.NulLeaves).
type Entry struct {
	Word   []byte
	Leaves []uint32
}

// buildNode is the mutable tree shape the Builder constructs before
// flattening and compressing it into a Store.
type buildNode struct {
	children map[byte]*buildNode
	leaves   []uint32 // leaf values if this node is a word end (nil otherwise)
}

func newBuildNode() *buildNode {
	return &buildNode{children: make(map[byte]*buildNode)}
}

// Builder constructs a compressed Store from a stream of Entries.
//
// Shared subtrees are coalesced with a post-order hash+equality pass,
// the same technique paulhankin/trie's suffix-compressed builder uses:
// hash each node from its children up, then verify candidates in the
// same hash bucket with a full structural equality check before treating
// them as the same node. Coalescing collapses what would otherwise be
// millions of duplicate suffix nodes (e.g. every plural "-s" ending)
// into one shared instance.
type Builder struct {
	root *buildNode
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{root: newBuildNode()}
}

// Add inserts one entry. Words must be added in any order; Finish sorts
// sibling runs before flattening.
func (b *Builder) Add(e Entry) {
	n := b.root
	for _, c := range e.Word {
		child, ok := n.children[c]
		if !ok {
			child = newBuildNode()
			n.children[c] = child
		}
		n = child
	}
	n.leaves = append(n.leaves, e.Leaves...)
}

type compressTable struct {
	hashes map[*buildNode]uint64
	bucket map[uint64][]*buildNode
	merged int
	total  int
}

func (ct *compressTable) hash(n *buildNode) uint64 {
	if h, ok := ct.hashes[n]; ok {
		return h
	}
	var h uint64 = 1469598103934665603 // FNV offset basis
	for _, leaf := range n.leaves {
		h = (h ^ uint64(leaf)) * 1099511628211
		h = (h ^ 0xA5A5) * 1099511628211
	}
	for c := 0; c < 256; c++ {
		child, ok := n.children[byte(c)]
		if !ok {
			continue
		}
		ch := ct.hash(child)
		h = (h ^ (uint64(c)+1)*2654435761) * 1099511628211
		h = (h ^ ch) * 1099511628211
	}
	ct.hashes[n] = h
	return h
}

func nodesEqual(a, b *buildNode) bool {
	if a == b {
		return true
	}
	if len(a.leaves) != len(b.leaves) || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.leaves {
		if a.leaves[i] != b.leaves[i] {
			return false
		}
	}
	for c, ca := range a.children {
		cb, ok := b.children[c]
		if !ok || !nodesEqual(ca, cb) {
			return false
		}
	}
	return true
}

func (ct *compressTable) intern(n *buildNode) *buildNode {
	for c := range n.children {
		n.children[c] = ct.intern(n.children[c])
	}
	h := ct.hash(n)
	ct.total++
	for _, cand := range ct.bucket[h] {
		if nodesEqual(cand, n) {
			ct.merged++
			return cand
		}
	}
	ct.bucket[h] = append(ct.bucket[h], n)
	return n
}

// Finish flattens the (now-compressed) tree into a Store.
func (b *Builder) Finish() *Store {
	ct := &compressTable{
		hashes: make(map[*buildNode]uint64),
		bucket: make(map[uint64][]*buildNode),
	}
	root := ct.intern(b.root)
	log.Debugf("trie builder: %d nodes, %d coalesced by subtree compression", ct.total, ct.merged)

	s := &Store{}
	visited := make(map[*buildNode]int)
	var emit func(n *buildNode) int
	emit = func(n *buildNode) int {
		if idx, ok := visited[n]; ok {
			return idx
		}
		start := len(s.Bytes)
		visited[n] = start

		var sibBytes []byte
		var sibIdxs []uint32
		for _, leaf := range n.leaves {
			sibBytes = append(sibBytes, 0)
			sibIdxs = append(sibIdxs, leaf)
		}
		var childBytes []byte
		for c := range n.children {
			childBytes = append(childBytes, c)
		}
		sortBytesOnly(childBytes)

		k := len(sibBytes) + len(childBytes)
		s.Bytes = append(s.Bytes, byte(k))
		s.Idxs = append(s.Idxs, 0)
		s.Bytes = append(s.Bytes, sibBytes...)
		s.Idxs = append(s.Idxs, sibIdxs...)
		// Reserve slots for child bytes; fill idxs after recursing so
		// that indices already emitted (shared subtrees revisited) are
		// simply referenced rather than re-emitted.
		childSlot := len(s.Bytes)
		s.Bytes = append(s.Bytes, childBytes...)
		for range childBytes {
			s.Idxs = append(s.Idxs, 0)
		}
		for i, c := range childBytes {
			childIdx := emit(n.children[c])
			s.Idxs[childSlot+i] = uint32(childIdx)
		}
		return start
	}
	if root != nil {
		emit(root)
	}
	return s
}

func sortBytesOnly(b []byte) {
	for i := 1; i < len(b); i++ {
		for j := i; j > 0 && b[j-1] > b[j]; j-- {
			b[j-1], b[j] = b[j], b[j-1]
		}
	}
}
