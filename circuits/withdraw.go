package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/signature/eddsa"
)

// WithdrawalPublicData is the per-withdrawal public-data tuple: account,
// amount.
type WithdrawalPublicData struct {
	Account, Amount frontend.Variable
}

// Withdrawal is the L4 withdrawal gadget: authenticates an owner-signed
// message account||amount||pad, then applies UpdateAccount decreasing the
// account's balance by amount.
type Withdrawal struct {
	Step   AccountBalanceStep
	Amount frontend.Variable
	Pad    frontend.Variable

	OwnerPublicKey eddsa.PublicKey
	OwnerSignature eddsa.Signature
}

// Define verifies the owner's signature, enforces balance_before - amount =
// balance_after, and returns the new accounts root plus public-data tuple.
func (w *Withdrawal) Define(api frontend.API, curve twistededwards.Curve, accountsRootBefore frontend.Variable) (accountsRootAfter frontend.Variable, pd WithdrawalPublicData, err error) {
	if err := VerifySignature(api, curve, w.OwnerPublicKey, w.OwnerSignature, w.Step.AccountID, w.Amount, w.Pad); err != nil {
		return nil, pd, err
	}

	api.ToBinary(w.Amount, BitsAmount)

	api.AssertIsEqual(api.Sub(w.Step.BalanceBefore.Balance, w.Amount), w.Step.BalanceAfter.Balance)

	accountsRootAfter, err = w.Step.Apply(api, accountsRootBefore)
	if err != nil {
		return nil, pd, err
	}

	pd = WithdrawalPublicData{Account: w.Step.AccountID, Amount: w.Amount}
	return accountsRootAfter, pd, nil
}
