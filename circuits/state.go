package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// leafHash folds fields through MiMC in order, producing the leaf value a
// Merkle tree actually stores. Every L2 gadget below is this call plus a
// VerifyTransition; the original split these into UpdateXxxGadget wrappers
// purely so the leaf-field order lived in one place per tree.
func leafHash(api frontend.API, fields ...frontend.Variable) (frontend.Variable, error) {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		h.Write(f)
	}
	return h.Sum(), nil
}

// AccountLeafFields is the account tree's leaf preimage, MiMC(pkX, pkY,
// walletID, nonce, balancesRoot).
type AccountLeafFields struct {
	PublicKeyX   frontend.Variable
	PublicKeyY   frontend.Variable
	WalletID     frontend.Variable
	Nonce        frontend.Variable
	BalancesRoot frontend.Variable
}

// UpdateAccount authenticates the account at accountID against
// accountsRootBefore, then recomputes the root with the after-leaf
// substituted in its place.
func UpdateAccount(api frontend.API, path MerklePath, accountID frontend.Variable, before, after AccountLeafFields, accountsRootBefore frontend.Variable) (accountsRootAfter frontend.Variable, err error) {
	oldLeaf, err := leafHash(api, before.PublicKeyX, before.PublicKeyY, before.WalletID, before.Nonce, before.BalancesRoot)
	if err != nil {
		return nil, err
	}
	newLeaf, err := leafHash(api, after.PublicKeyX, after.PublicKeyY, after.WalletID, after.Nonce, after.BalancesRoot)
	if err != nil {
		return nil, err
	}
	return VerifyTransition(api, path, accountID, oldLeaf, newLeaf, accountsRootBefore)
}

// BalanceLeafFields is the per-account balance tree's leaf preimage,
// MiMC(balance, tradingHistoryRoot).
type BalanceLeafFields struct {
	Balance           frontend.Variable
	TradingHistoryRoot frontend.Variable
}

// UpdateBalance authenticates the balance leaf at tokenID against
// balancesRootBefore and recomputes the root with the after-leaf.
func UpdateBalance(api frontend.API, path MerklePath, tokenID frontend.Variable, before, after BalanceLeafFields, balancesRootBefore frontend.Variable) (balancesRootAfter frontend.Variable, err error) {
	oldLeaf, err := leafHash(api, before.Balance, before.TradingHistoryRoot)
	if err != nil {
		return nil, err
	}
	newLeaf, err := leafHash(api, after.Balance, after.TradingHistoryRoot)
	if err != nil {
		return nil, err
	}
	return VerifyTransition(api, path, tokenID, oldLeaf, newLeaf, balancesRootBefore)
}

// TradeHistoryLeafFields is the trading-history tree's leaf preimage,
// MiMC(filled, cancelled).
type TradeHistoryLeafFields struct {
	Filled    frontend.Variable
	Cancelled frontend.Variable
}

// UpdateTradeHistory authenticates the trade-history leaf at address
// (orderID, accountID already folded into a single tree index by the
// caller) and recomputes the root with the after-leaf.
func UpdateTradeHistory(api frontend.API, path MerklePath, address frontend.Variable, before, after TradeHistoryLeafFields, rootBefore frontend.Variable) (rootAfter frontend.Variable, err error) {
	oldLeaf, err := leafHash(api, before.Filled, before.Cancelled)
	if err != nil {
		return nil, err
	}
	newLeaf, err := leafHash(api, after.Filled, after.Cancelled)
	if err != nil {
		return nil, err
	}
	return VerifyTransition(api, path, address, oldLeaf, newLeaf, rootBefore)
}

// FeeBalanceLeafFields is the fee-accounting tree's leaf preimage; a plain
// balance value with no secondary root.
type FeeBalanceLeafFields struct {
	Balance frontend.Variable
}

// UpdateFeeBalance authenticates and updates a single fee-account balance
// leaf, keyed by the account/token composite index the caller supplies.
func UpdateFeeBalance(api frontend.API, path MerklePath, index frontend.Variable, before, after FeeBalanceLeafFields, rootBefore frontend.Variable) (rootAfter frontend.Variable, err error) {
	oldLeaf, err := leafHash(api, before.Balance)
	if err != nil {
		return nil, err
	}
	newLeaf, err := leafHash(api, after.Balance)
	if err != nil {
		return nil, err
	}
	return VerifyTransition(api, path, index, oldLeaf, newLeaf, rootBefore)
}

// FeeTokenLeafFields is the fee-token tree's leaf preimage, MiMC(balance,
// walletsRoot, ringmatchersRoot).
type FeeTokenLeafFields struct {
	Balance          frontend.Variable
	WalletsRoot      frontend.Variable
	RingmatchersRoot frontend.Variable
}

// UpdateFeeToken authenticates and updates a fee-token leaf keyed by
// tokenID.
func UpdateFeeToken(api frontend.API, path MerklePath, tokenID frontend.Variable, before, after FeeTokenLeafFields, rootBefore frontend.Variable) (rootAfter frontend.Variable, err error) {
	oldLeaf, err := leafHash(api, before.Balance, before.WalletsRoot, before.RingmatchersRoot)
	if err != nil {
		return nil, err
	}
	newLeaf, err := leafHash(api, after.Balance, after.WalletsRoot, after.RingmatchersRoot)
	if err != nil {
		return nil, err
	}
	return VerifyTransition(api, path, tokenID, oldLeaf, newLeaf, rootBefore)
}

// CheckBurnRate authenticates (read-only) that the burn-rate tree's leaf at
// tokenID equals burnRate, against the given root. There is no after-state:
// burn rates are governance-set outside this circuit.
func CheckBurnRate(api frontend.API, path MerklePath, tokenID frontend.Variable, burnRate, root frontend.Variable) error {
	leaf, err := leafHash(api, burnRate)
	if err != nil {
		return err
	}
	return VerifyRead(api, path, tokenID, leaf, root)
}
