package circuits

import "github.com/consensys/gnark/frontend"

// DepositPublicData is the per-deposit public-data tuple: address, pubKeyX,
// pubKeyY, walletID, token, amount.
type DepositPublicData struct {
	Address, PublicKeyX, PublicKeyY, WalletID, Token, Amount frontend.Variable
}

// Deposit is the L4 deposit gadget: one account leaf moves from
// empty-but-keyed to populated-with-credited-balance. The underlying
// AccountBalanceStep, same shape as a ring settlement's, does the Merkle
// authenticate+recompute; this gadget only adds the balance-conservation
// and range constraints specific to a deposit.
type Deposit struct {
	Step   AccountBalanceStep
	Amount frontend.Variable
}

// Define enforces balance_after = balance_before + amount, amount < 2^96,
// and returns the new accounts root plus this deposit's public-data tuple.
func (d *Deposit) Define(api frontend.API, accountsRootBefore frontend.Variable) (accountsRootAfter frontend.Variable, pd DepositPublicData, err error) {
	api.ToBinary(d.Amount, BitsAmount) // range check: amount < 2^96

	api.AssertIsEqual(api.Add(d.Step.BalanceBefore.Balance, d.Amount), d.Step.BalanceAfter.Balance)

	accountsRootAfter, err = d.Step.Apply(api, accountsRootBefore)
	if err != nil {
		return nil, pd, err
	}

	pd = DepositPublicData{
		Address:    d.Step.AccountID,
		PublicKeyX: d.Step.AccountAfterFields.PublicKeyX,
		PublicKeyY: d.Step.AccountAfterFields.PublicKeyY,
		WalletID:   d.Step.AccountAfterFields.WalletID,
		Token:      d.Step.TokenID,
		Amount:     d.Amount,
	}
	return accountsRootAfter, pd, nil
}
