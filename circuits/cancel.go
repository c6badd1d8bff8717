package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/signature/eddsa"
)

// CancelPublicData is the per-cancellation public-data tuple: account,
// orderID.
type CancelPublicData struct {
	Account, OrderID frontend.Variable
}

// Cancel is the L4 cancellation gadget: authenticates an owner-signed
// message account||orderID||pad, reads (without changing) the account leaf,
// and sets cancelled := 1 in the trading-history leaf indexed by
// (orderID, accountID).
type Cancel struct {
	AccountPath MerklePath
	AccountID   frontend.Variable
	Account     AccountLeafFields

	OrderID frontend.Variable
	Pad     frontend.Variable

	TradeHistoryPath    MerklePath
	TradeHistoryAddress frontend.Variable
	FilledBefore        frontend.Variable
	CancelledBefore      frontend.Variable

	OwnerPublicKey eddsa.PublicKey
	OwnerSignature eddsa.Signature
}

// Define verifies the owner's signature, authenticates the account leaf
// without changing it, forces cancelled from its before-value to 1, and
// returns the new trading-history root plus the public-data tuple.
func (c *Cancel) Define(api frontend.API, curve twistededwards.Curve, accountsRoot, tradingHistoryRootBefore frontend.Variable) (tradingHistoryRootAfter frontend.Variable, pd CancelPublicData, err error) {
	if err := VerifySignature(api, curve, c.OwnerPublicKey, c.OwnerSignature, c.AccountID, c.OrderID, c.Pad); err != nil {
		return nil, pd, err
	}

	leaf, err := leafHash(api, c.Account.PublicKeyX, c.Account.PublicKeyY, c.Account.WalletID, c.Account.Nonce, c.Account.BalancesRoot)
	if err != nil {
		return nil, pd, err
	}
	if err := VerifyRead(api, c.AccountPath, c.AccountID, leaf, accountsRoot); err != nil {
		return nil, pd, err
	}

	cancelledAfter := frontend.Variable(1)
	ForceLeq(api, 1, cancelledAfter, 1)
	api.AssertIsEqual(cancelledAfter, 1)

	tradingHistoryRootAfter, err = UpdateTradeHistory(api, c.TradeHistoryPath, c.TradeHistoryAddress,
		TradeHistoryLeafFields{Filled: c.FilledBefore, Cancelled: c.CancelledBefore},
		TradeHistoryLeafFields{Filled: c.FilledBefore, Cancelled: cancelledAfter},
		tradingHistoryRootBefore)
	if err != nil {
		return nil, pd, err
	}

	pd = CancelPublicData{Account: c.AccountID, OrderID: c.OrderID}
	return tradingHistoryRootAfter, pd, nil
}
