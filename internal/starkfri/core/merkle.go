package core

import (
	"bytes"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/halcyon-zk/stark-fri/pkg/starkfri"
)

// MerkleTree is a binary hash tree over a leaf layer. Every odd-length level
// (the leaf layer included) is right-padded with one copy of the field's zero
// element encoding before it is hashed into the level above, so each level
// below the root has even length. Level 0 holds the raw little-endian byte
// encodings of the leaves;
// every level above hashes the little-endian byte encodings of its two
// children concatenated.
type MerkleTree struct {
	levels [][][]byte // levels[0] = raw leaf bytes ... levels[len-1] = [root]
}

// hashPair computes H(a, b) = BLAKE3(LE(a) || LE(b)).
func hashPair(a, b []byte) []byte {
	h := blake3.New()
	h.Write(a)
	h.Write(b)
	var out [32]byte
	h.Digest().Read(out[:])
	return out[:]
}

// Commit builds a Merkle tree over leaves and returns its root. leaves are
// field elements in their little-endian byte form. An odd-length level is
// right-padded with the field's zero element before hashing, once per level.
func Commit(field *Field, leaves []*FieldElement) (*MerkleTree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("cannot commit to an empty leaf set")
	}

	leafBytes := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		leafBytes[i] = leaf.Bytes()
	}

	levels := [][][]byte{leafBytes}
	zeroBytes := field.Zero().Bytes()

	current := leafBytes
	for len(current) > 1 {
		if len(current)%2 == 1 {
			current = append(append([][]byte{}, current...), zeroBytes)
			levels[len(levels)-1] = current
		}

		next := make([][]byte, len(current)/2)
		for i := 0; i < len(next); i++ {
			next[i] = hashPair(current[2*i], current[2*i+1])
		}
		levels = append(levels, next)
		current = next
	}

	return &MerkleTree{levels: levels}, nil
}

// Root returns the tree's single top-level node.
func (t *MerkleTree) Root() []byte {
	return t.levels[len(t.levels)-1][0]
}

// PathNode is one level of an authentication path: both children, ordered
// left-first.
type PathNode struct {
	Left, Right []byte
}

// Open emits the authentication path for index: at each level, the pair
// (left child, right child) of the node containing index and its sibling.
func (t *MerkleTree) Open(index int) ([]PathNode, error) {
	if index < 0 || index >= len(t.levels[0]) {
		return nil, fmt.Errorf("index %d out of range [0, %d)", index, len(t.levels[0]))
	}

	path := make([]PathNode, 0, len(t.levels)-1)
	idx := index
	for level := 0; level < len(t.levels)-1; level++ {
		nodes := t.levels[level]
		leftIdx := idx - idx%2
		path = append(path, PathNode{Left: nodes[leftIdx], Right: nodes[leftIdx+1]})
		idx /= 2
	}
	return path, nil
}

// Verify walks an authentication path for leaf at index, checking at each
// level that the node in position index%2 equals the running hash, then
// combining both children and shifting index right by one. Finally compares
// the reconstructed root to root.
func Verify(field *Field, root []byte, index int, path []PathNode, leaf *FieldElement) (bool, error) {
	running := leaf.Bytes()
	idx := index

	for _, node := range path {
		var expected []byte
		if idx%2 == 0 {
			expected = node.Left
		} else {
			expected = node.Right
		}
		if !bytes.Equal(expected, running) {
			return false, starkfri.New(starkfri.ErrPathMismatch, "leaf/node at level does not match authentication path")
		}
		running = hashPair(node.Left, node.Right)
		idx /= 2
	}

	if !bytes.Equal(running, root) {
		return false, starkfri.New(starkfri.ErrRootMismatch, "reconstructed root does not match commitment")
	}
	return true, nil
}
