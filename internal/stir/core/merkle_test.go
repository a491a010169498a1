package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func leafGroups(field *Field, n, width int) []LeafGroup {
	groups := make([]LeafGroup, n)
	for i := range groups {
		group := make(LeafGroup, width)
		for j := range group {
			group[j] = field.NewElementFromInt64(int64(i*width + j))
		}
		groups[i] = group
	}
	return groups
}

func TestMerkleMultiOpenVerifyRoundTrip(t *testing.T) {
	field := DefaultPrimeField
	groups := leafGroups(field, 16, 4)

	for _, hasher := range []Hasher{Sha3Hasher{}, Blake2bHasher{}} {
		tree, err := NewMerkleTree(hasher, groups)
		require.NoError(t, err)

		indices := []int{1, 2, 5, 5, 9, 15}
		proof, err := tree.MultiOpen(indices)
		require.NoError(t, err)

		opened := make([]LeafGroup, len(indices))
		for i, idx := range indices {
			opened[i] = groups[idx]
		}

		ok := VerifyMultiPath(hasher, tree.Root(), len(groups), indices, opened, proof)
		require.True(t, ok, "valid multi-open proof rejected for hasher %T", hasher)
	}
}

func TestMerkleVerifyRejectsTamperedLeaf(t *testing.T) {
	field := DefaultPrimeField
	groups := leafGroups(field, 8, 4)
	tree, err := NewMerkleTree(Sha3Hasher{}, groups)
	require.NoError(t, err)

	indices := []int{0, 3, 7}
	proof, err := tree.MultiOpen(indices)
	require.NoError(t, err)

	opened := []LeafGroup{groups[0], groups[3], groups[7]}
	tampered := make(LeafGroup, len(opened[1]))
	copy(tampered, opened[1])
	tampered[0] = tampered[0].Add(field.One())
	opened[1] = tampered

	ok := VerifyMultiPath(Sha3Hasher{}, tree.Root(), len(groups), indices, opened, proof)
	require.False(t, ok, "tampered leaf should be rejected")
}

func TestMerkleVerifyRejectsTamperedRoot(t *testing.T) {
	field := DefaultPrimeField
	groups := leafGroups(field, 8, 4)
	tree, err := NewMerkleTree(Sha3Hasher{}, groups)
	require.NoError(t, err)

	indices := []int{2, 4}
	proof, err := tree.MultiOpen(indices)
	require.NoError(t, err)

	opened := []LeafGroup{groups[2], groups[4]}
	badRoot := make([]byte, len(tree.Root()))
	copy(badRoot, tree.Root())
	badRoot[0] ^= 0xFF

	ok := VerifyMultiPath(Sha3Hasher{}, badRoot, len(groups), indices, opened, proof)
	require.False(t, ok, "tampered root should be rejected")
}

func TestMerkleVerifyRejectsTamperedSibling(t *testing.T) {
	field := DefaultPrimeField
	groups := leafGroups(field, 8, 4)
	tree, err := NewMerkleTree(Sha3Hasher{}, groups)
	require.NoError(t, err)

	indices := []int{1}
	proof, err := tree.MultiOpen(indices)
	require.NoError(t, err)
	require.NotEmpty(t, proof.Nodes)

	tamperedNodes := make([]AuthNode, len(proof.Nodes))
	copy(tamperedNodes, proof.Nodes)
	tamperedHash := make([]byte, len(tamperedNodes[0].Hash))
	copy(tamperedHash, tamperedNodes[0].Hash)
	tamperedHash[0] ^= 0xFF
	tamperedNodes[0].Hash = tamperedHash
	tampered := &MultiPath{Nodes: tamperedNodes}

	ok := VerifyMultiPath(Sha3Hasher{}, tree.Root(), len(groups), indices, []LeafGroup{groups[1]}, tampered)
	require.False(t, ok, "tampered sibling hash should be rejected")
}

func TestNewHasherRejectsUnknownFunction(t *testing.T) {
	_, err := NewHasher(DefaultPrimeField, "md5")
	require.Error(t, err)
}

func TestNewHasherBuildsEachSupportedKind(t *testing.T) {
	for _, name := range []string{"sha3", "blake2b"} {
		h, err := NewHasher(DefaultPrimeField, name)
		require.NoError(t, err, "hash function %q", name)
		require.NotNil(t, h)
	}
}

// TestHasherDigestsAreFullWidth pins the binding requirement on the Hasher
// capability: every supported Merkle hash must emit a 32-byte digest, never
// a single small-field element.
func TestHasherDigestsAreFullWidth(t *testing.T) {
	field := DefaultPrimeField
	leaf := LeafGroup{field.NewElementFromInt64(1), field.NewElementFromInt64(2)}
	for _, name := range []string{"sha3", "blake2b"} {
		h, err := NewHasher(field, name)
		require.NoError(t, err)
		digest := h.LeafHash(leaf)
		require.Len(t, digest, 32, "hash function %q leaf digest", name)
		require.Len(t, h.TwoToOne(digest, digest), 32, "hash function %q inner digest", name)
	}
}

func TestHashCounterMonotonic(t *testing.T) {
	HashCounterReset()
	groups := leafGroups(DefaultPrimeField, 4, 2)
	_, err := NewMerkleTree(Sha3Hasher{}, groups)
	require.NoError(t, err)
	require.Greater(t, HashCounterGet(), int64(0))
}
