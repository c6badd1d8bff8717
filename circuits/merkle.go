package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// MerklePath carries the sibling hash at every level of a fixed-depth,
// index-keyed sparse Merkle tree, ordered from the leaf's sibling (level 0)
// up to the root's sibling (level depth-1). The four trees this circuit
// authenticates against (accounts, balances, trading history, fee/burn-rate)
// all share this shape and differ only in depth and in what a leaf hashes.
type MerklePath struct {
	Siblings []frontend.Variable
}

// NewMerklePath allocates a path of the given depth as circuit variables,
// for use inside a gnark Circuit struct definition.
func NewMerklePath(depth int) MerklePath {
	return MerklePath{Siblings: make([]frontend.Variable, depth)}
}

// VerifyTransition authenticates oldLeaf at index against root using path,
// then recomputes the root with newLeaf substituted at the same index,
// returning the new root. This is the single gadget every L2 state-update
// (account, balance, trade-history, fee leaf) is built from: authenticate
// once, replay the same sibling path with the new leaf. It is grounded on
// the bit-indexed traversal in the teacher's ResultCircuit.Define (ToBinary
// + Select per level) generalized to variable depth, composed in the
// authenticate-then-recompute shape the vocdoni sequencer's
// MerkleTransition.Verify method uses (one path walked twice, old and new
// in lockstep, rather than two independent proofs).
//
// index must fit in len(path.Siblings) bits; ToBinary enforces that
// internally by fixing the bit count.
func VerifyTransition(api frontend.API, path MerklePath, index frontend.Variable, oldLeaf, newLeaf, root frontend.Variable) (newRoot frontend.Variable, err error) {
	depth := len(path.Siblings)
	indexBits := api.ToBinary(index, depth)

	computedOld := oldLeaf
	computedNew := newLeaf

	for level := 0; level < depth; level++ {
		bit := indexBits[level]
		sibling := path.Siblings[level]

		oldLeft := api.Select(bit, sibling, computedOld)
		oldRight := api.Select(bit, computedOld, sibling)
		oldHasher, err := mimc.NewMiMC(api)
		if err != nil {
			return nil, err
		}
		oldHasher.Write(oldLeft)
		oldHasher.Write(oldRight)
		computedOld = oldHasher.Sum()

		newLeft := api.Select(bit, sibling, computedNew)
		newRight := api.Select(bit, computedNew, sibling)
		newHasher, err := mimc.NewMiMC(api)
		if err != nil {
			return nil, err
		}
		newHasher.Write(newLeft)
		newHasher.Write(newRight)
		computedNew = newHasher.Sum()
	}

	api.AssertIsEqual(computedOld, root)
	return computedNew, nil
}

// VerifyRead authenticates leaf at index against root without changing it;
// it is VerifyTransition with identical old and new leaves, used wherever a
// circuit needs to prove a leaf's current value without updating it (the
// account-leaf read in Cancel).
func VerifyRead(api frontend.API, path MerklePath, index frontend.Variable, leaf, root frontend.Variable) error {
	_, err := VerifyTransition(api, path, index, leaf, leaf, root)
	return err
}
