// Package merkletree builds the host-side, out-of-circuit sparse Merkle
// trees the block builder reads sibling proofs from. The circuit package
// only ever sees a root plus a per-call sibling list; actually growing and
// maintaining the tree between blocks happens here, keyed by index exactly
// like circuits.MerklePath expects to authenticate against.
package merkletree

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// Tree is a fixed-depth, index-keyed sparse Merkle tree over the BN254
// scalar field, hashed with MiMC exactly as the in-circuit leaf and node
// hashes are. Unset leaves default to zero, matching an "empty" account,
// balance, or trade-history slot.
type Tree struct {
	depth   int
	leaves  map[uint64]*big.Int
	zeroes  []*big.Int // zeroes[0] = zero leaf, zeroes[i] = hash of two zeroes[i-1]
}

// New builds an empty tree of the given depth.
func New(depth int) *Tree {
	t := &Tree{depth: depth, leaves: make(map[uint64]*big.Int)}
	t.zeroes = make([]*big.Int, depth+1)
	t.zeroes[0] = big.NewInt(0)
	for i := 1; i <= depth; i++ {
		t.zeroes[i] = hashPair(t.zeroes[i-1], t.zeroes[i-1])
	}
	return t
}

func hashPair(a, b *big.Int) *big.Int {
	h := mimc.NewMiMC()
	h.Write(a.FillBytes(make([]byte, 32)))
	h.Write(b.FillBytes(make([]byte, 32)))
	return new(big.Int).SetBytes(h.Sum(nil))
}

// Set writes leaf at index, overwriting whatever was there.
func (t *Tree) Set(index uint64, leaf *big.Int) {
	t.leaves[index] = new(big.Int).Set(leaf)
}

func (t *Tree) leafAt(index uint64) *big.Int {
	if v, ok := t.leaves[index]; ok {
		return v
	}
	return t.zeroes[0]
}

// Root returns the tree's current root.
func (t *Tree) Root() *big.Int {
	return t.nodeAt(t.depth, 0)
}

// nodeAt returns the hash of the subtree rooted at (level, index), where
// level 0 is the leaf layer and level depth is the root.
func (t *Tree) nodeAt(level int, index uint64) *big.Int {
	if level == 0 {
		return t.leafAt(index)
	}
	left := t.nodeAt(level-1, index*2)
	right := t.nodeAt(level-1, index*2+1)
	if left.Cmp(t.zeroes[level-1]) == 0 && right.Cmp(t.zeroes[level-1]) == 0 {
		return t.zeroes[level]
	}
	return hashPair(left, right)
}

// Proof returns the sibling hash at every level along the path from
// leaf index up to (but excluding) the root, ordered leaf-sibling first —
// exactly the order circuits.MerklePath.Siblings expects.
func (t *Tree) Proof(index uint64) []*big.Int {
	siblings := make([]*big.Int, t.depth)
	idx := index
	for level := 0; level < t.depth; level++ {
		siblingIndex := idx ^ 1
		siblings[level] = t.nodeAt(level, siblingIndex)
		idx /= 2
	}
	return siblings
}
