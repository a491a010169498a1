package core

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// LeafGroup is one leaf of the Merkle oracle: a folding_factor-sized vector
// of field elements rather than a single value.
type LeafGroup []*FieldElement

// Hasher is the Merkle config capability: a leaf hash and a 2-to-1
// compression function. Swapping implementations never touches tree
// construction or multi-open logic. Every implementation must emit a
// full-width digest: the Merkle binding the whole low-degree test rests on
// is only as strong as the digest's collision resistance.
type Hasher interface {
	LeafHash(leaf LeafGroup) []byte
	TwoToOne(left, right []byte) []byte
}

// Sha3Hasher hashes leaves and inner nodes with SHA3-256, matching the
// sha3 Merkle configuration the reference driver uses by default.
type Sha3Hasher struct{}

func (Sha3Hasher) LeafHash(leaf LeafGroup) []byte {
	h := sha3.New256()
	for _, elem := range leaf {
		h.Write(elem.FixedLEBytes())
	}
	hashCounter.add()
	return h.Sum(nil)
}

func (Sha3Hasher) TwoToOne(left, right []byte) []byte {
	h := sha3.New256()
	h.Write(left)
	h.Write(right)
	hashCounter.add()
	return h.Sum(nil)
}

// Blake2bHasher hashes leaves and inner nodes with BLAKE2b-256, for
// configurations that prefer its throughput over sha3's.
type Blake2bHasher struct{}

func (Blake2bHasher) LeafHash(leaf LeafGroup) []byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(fmt.Sprintf("blake2b init failed: %v", err))
	}
	for _, elem := range leaf {
		h.Write(elem.FixedLEBytes())
	}
	hashCounter.add()
	return h.Sum(nil)
}

func (Blake2bHasher) TwoToOne(left, right []byte) []byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(fmt.Sprintf("blake2b init failed: %v", err))
	}
	h.Write(left)
	h.Write(right)
	hashCounter.add()
	return h.Sum(nil)
}

// NewHasher builds the Hasher named by hashFunction ("sha3" or "blake2b"),
// the same choices params.Parameters.Validate accepts.
func NewHasher(field *Field, hashFunction string) (Hasher, error) {
	switch hashFunction {
	case "sha3":
		return Sha3Hasher{}, nil
	case "blake2b":
		return Blake2bHasher{}, nil
	default:
		return nil, fmt.Errorf("hash function must be 'sha3' or 'blake2b', got %q", hashFunction)
	}
}

// hashCounter is a process-wide, benchmark-only tally of hash invocations.
// It is not part of proof semantics and carries no protocol meaning; tests
// must not assert on its value beyond monotonicity.
var hashCounter atomicCounter

type atomicCounter struct{ v int64 }

func (c *atomicCounter) add() int64   { return atomic.AddInt64(&c.v, 1) }
func (c *atomicCounter) reset()       { atomic.StoreInt64(&c.v, 0) }
func (c *atomicCounter) get() int64   { return atomic.LoadInt64(&c.v) }

// HashCounterReset zeroes the global hash invocation counter.
func HashCounterReset() { hashCounter.reset() }

// HashCounterGet reads the global hash invocation counter.
func HashCounterGet() int64 { return hashCounter.get() }

// MerkleTree commits to a sequence of leaf groups and can open a set of
// indices at once via a compressed multi-proof.
type MerkleTree struct {
	hasher Hasher
	leaves [][]byte // leaf digests
	levels [][][]byte
}

// NewMerkleTree builds the tree over the given leaf groups. len(groups) must
// be a power of two.
func NewMerkleTree(hasher Hasher, groups []LeafGroup) (*MerkleTree, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("cannot commit to zero leaf groups")
	}
	if !isPowerOfTwo(len(groups)) {
		return nil, fmt.Errorf("leaf group count must be a power of two, got %d", len(groups))
	}

	leaves := make([][]byte, len(groups))
	for i, g := range groups {
		leaves[i] = hasher.LeafHash(g)
	}

	levels := [][][]byte{leaves}
	current := leaves
	for len(current) > 1 {
		next := make([][]byte, len(current)/2)
		for i := 0; i < len(current); i += 2 {
			next[i/2] = hasher.TwoToOne(current[i], current[i+1])
		}
		levels = append(levels, next)
		current = next
	}

	return &MerkleTree{hasher: hasher, leaves: leaves, levels: levels}, nil
}

// Root returns the Merkle root digest.
func (mt *MerkleTree) Root() []byte {
	return mt.levels[len(mt.levels)-1][0]
}

// AuthNode is one sibling digest needed to verify a multi-open proof,
// identified by the level (0 = leaves) and index it sits at.
type AuthNode struct {
	Level int
	Index int
	Hash  []byte
}

// MultiPath is a compressed proof opening several leaf indices at once: it
// carries only the sibling digests that cannot be derived from the queried
// leaves or from each other.
type MultiPath struct {
	Nodes []AuthNode
}

// MultiOpen proves the leaf groups at the given indices simultaneously,
// sharing internal nodes across the whole query set.
func (mt *MerkleTree) MultiOpen(indices []int) (*MultiPath, error) {
	numLeaves := len(mt.leaves)
	for _, idx := range indices {
		if idx < 0 || idx >= numLeaves {
			return nil, fmt.Errorf("index %d out of range [0, %d)", idx, numLeaves)
		}
	}

	known := dedupSortInts(indices)
	var nodes []AuthNode

	for level := 0; level < len(mt.levels)-1; level++ {
		levelWidth := uint(len(mt.levels[level]))
		knownSet := bitset.New(levelWidth)
		for _, idx := range known {
			knownSet.Set(uint(idx))
		}

		parents := bitset.New((levelWidth + 1) / 2)
		for _, idx := range known {
			sibling := idx ^ 1
			parents.Set(uint(idx / 2))
			if !knownSet.Test(uint(sibling)) {
				nodes = append(nodes, AuthNode{Level: level, Index: sibling, Hash: mt.levels[level][sibling]})
			}
		}

		next := make([]int, 0, parents.Count())
		for i, ok := parents.NextSet(0); ok; i, ok = parents.NextSet(i + 1) {
			next = append(next, int(i))
		}
		known = next
	}

	return &MultiPath{Nodes: nodes}, nil
}

// VerifyMultiPath checks that leafGroups, claimed to sit at indices within a
// tree of numLeaves total leaves, hash up to root under the given MultiPath.
func VerifyMultiPath(hasher Hasher, root []byte, numLeaves int, indices []int, leafGroups []LeafGroup, proof *MultiPath) bool {
	if len(indices) != len(leafGroups) {
		return false
	}

	byPosition := make(map[[2]int][]byte)
	for i, idx := range indices {
		byPosition[[2]int{0, idx}] = hasher.LeafHash(leafGroups[i])
	}
	for _, n := range proof.Nodes {
		byPosition[[2]int{n.Level, n.Index}] = n.Hash
	}

	known := dedupSortInts(indices)
	level := 0
	for levelWidth := numLeaves; levelWidth > 1; levelWidth /= 2 {
		parents := bitset.New(uint((levelWidth + 1) / 2))
		for _, idx := range known {
			self, ok := byPosition[[2]int{level, idx}]
			if !ok {
				return false
			}
			sibling, ok := byPosition[[2]int{level, idx ^ 1}]
			if !ok {
				return false
			}
			var combined []byte
			if idx%2 == 0 {
				combined = hasher.TwoToOne(self, sibling)
			} else {
				combined = hasher.TwoToOne(sibling, self)
			}
			parentIdx := idx / 2
			byPosition[[2]int{level + 1, parentIdx}] = combined
			parents.Set(uint(parentIdx))
		}

		next := make([]int, 0, parents.Count())
		for i, ok := parents.NextSet(0); ok; i, ok = parents.NextSet(i + 1) {
			next = append(next, int(i))
		}
		known = next
		level++
	}

	final, ok := byPosition[[2]int{level, 0}]
	return ok && bytesEqual(final, root)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DedupSortInts returns the sorted, deduplicated contents of xs.
func DedupSortInts(xs []int) []int {
	return dedupSortInts(xs)
}

func dedupSortInts(xs []int) []int {
	if len(xs) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(xs))
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	sort.Ints(out)
	return out
}
