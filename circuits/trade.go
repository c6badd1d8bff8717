package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/signature/eddsa"
)

// AccountBalanceStep is one of the chained UpdateBalance+UpdateAccount
// pairs a ring settlement applies: a balance leaf changes inside some
// account's balances subtree, which changes that account's balancesRoot,
// which changes the account leaf and therefore the accounts root.
type AccountBalanceStep struct {
	AccountPath        MerklePath
	AccountID          frontend.Variable
	AccountBefore      AccountLeafFields
	AccountAfterFields AccountLeafFields // BalancesRoot is overwritten with the freshly computed value
	BalancesPath       MerklePath
	TokenID            frontend.Variable
	BalanceBefore      BalanceLeafFields
	BalanceAfter       BalanceLeafFields
}

// Apply runs UpdateBalance then UpdateAccount for one step, threading
// accountsRootBefore to accountsRootAfter.
func (s AccountBalanceStep) Apply(api frontend.API, accountsRootBefore frontend.Variable) (accountsRootAfter frontend.Variable, err error) {
	balancesRootAfter, err := UpdateBalance(api, s.BalancesPath, s.TokenID, s.BalanceBefore, s.BalanceAfter, s.AccountBefore.BalancesRoot)
	if err != nil {
		return nil, err
	}
	after := s.AccountAfterFields
	after.BalancesRoot = balancesRootAfter
	return UpdateAccount(api, s.AccountPath, s.AccountID, s.AccountBefore, after, accountsRootBefore)
}

// assertBalanceMove constrains a ring-settlement step to move its balance
// leaf by exactly amount, in the direction credit selects, and to leave the
// account leaf's key material untouched: a ring settlement only moves value
// between accounts that already exist, it never assigns a key.
func assertBalanceMove(api frontend.API, step AccountBalanceStep, amount frontend.Variable, credit bool) {
	var want frontend.Variable
	if credit {
		want = api.Add(step.BalanceBefore.Balance, amount)
	} else {
		want = api.Sub(step.BalanceBefore.Balance, amount)
	}
	api.AssertIsEqual(step.BalanceAfter.Balance, want)
	api.AssertIsEqual(step.AccountAfterFields.PublicKeyX, step.AccountBefore.PublicKeyX)
	api.AssertIsEqual(step.AccountAfterFields.PublicKeyY, step.AccountBefore.PublicKeyY)
	api.AssertIsEqual(step.AccountAfterFields.WalletID, step.AccountBefore.WalletID)
	api.AssertIsEqual(step.AccountAfterFields.Nonce, step.AccountBefore.Nonce)
}

// FeeTokenStep is one Merkle-authenticated touch of the fee-accounting
// tree's per-token leaf: the token's aggregate collected-fee balance,
// alongside the wallet/ring-matcher sub-commitments the original nests
// under it. This circuit does not decompose those sub-roots further, so it
// only asserts they carry through a touch unchanged.
type FeeTokenStep struct {
	Path    MerklePath
	TokenID frontend.Variable
	Before  FeeTokenLeafFields
	After   FeeTokenLeafFields
}

// Apply constrains the leaf's balance to have grown by exactly amount and
// its sub-roots to be unchanged, then authenticates the transition against
// feesRootBefore.
func (s FeeTokenStep) Apply(api frontend.API, feesRootBefore, amount frontend.Variable) (feesRootAfter frontend.Variable, err error) {
	api.AssertIsEqual(s.After.Balance, api.Add(s.Before.Balance, amount))
	api.AssertIsEqual(s.After.WalletsRoot, s.Before.WalletsRoot)
	api.AssertIsEqual(s.After.RingmatchersRoot, s.Before.RingmatchersRoot)
	return UpdateFeeToken(api, s.Path, s.TokenID, s.Before, s.After, feesRootBefore)
}

// RingSettlement is the L4 gadget for one matched pair of orders: it runs
// OrderMatching, looks up both orders' burn rates, splits each order's fee
// three ways, applies the resulting thirteen balance deltas as a chain of
// AccountBalanceSteps plus a fourteenth step crediting the ring's matcher,
// folds both orders' fee tokens into the fee-accounting tree, updates both
// orders' trade-history leaves, verifies the three ring signatures, and
// exposes the public-data tuple for each side.
//
// The thirteen Steps correspond, in order, to: A's sold-token debit
// (fillSA, which nets the trade transfer and the margin kept back in one
// move), A's bought-token credit (fillBA), A's fee-token debit (fillFA), A's
// wallet fee credit, A's matcher fee credit, A's burned-fee credit (the
// burn amount lands back in the wallet account, same as the wallet share),
// then the mirror image for B, and finally A's margin-token credit to its
// own matcher-fee account. MinerFeeStep is the separate fourteenth touch:
// the ring matcher's account, credited with the fee the block's operator
// pays it (OperatorFee), the one balance delta per ring that is not
// authenticated against any order's own account.
type RingSettlement struct {
	OrderA, OrderB Order

	MinerAccountID frontend.Variable
	MinerPublicKey eddsa.PublicKey
	OperatorFee    frontend.Variable
	Nonce          frontend.Variable

	MinerSignature   eddsa.Signature
	WalletASignature eddsa.Signature
	WalletBSignature eddsa.Signature

	BurnRatePathA, BurnRatePathB       MerklePath
	BurnRateTokenIDA, BurnRateTokenIDB frontend.Variable
	BurnRateA, BurnRateB               frontend.Variable
	BurnRateRoot                       frontend.Variable

	TradeHistoryPathA, TradeHistoryPathB       MerklePath
	TradeHistoryAddressA, TradeHistoryAddressB frontend.Variable

	Steps        [13]AccountBalanceStep
	MinerFeeStep AccountBalanceStep

	FeeTokenStepA, FeeTokenStepB FeeTokenStep
}

// RingPublicData is the per-order tuple a ring settlement exposes: walletID,
// orderID, accountS, counterparty.accountB, fillS, accountF, fillF (the
// 12-bit zero-padding the original wedges between walletID and orderID is
// a wire-format concern of the on-chain verifier, not a constraint here).
type RingPublicData struct {
	WalletID, OrderID, AccountS, CounterpartyAccountB, FillS, AccountF, FillF frontend.Variable
}

// Define runs the full ring-settlement contract and returns the accounts
// root after all fourteen balance-moving steps, the fee-accounting root
// after both orders' fee tokens are folded in, the trade-history root
// after both UpdateTradeHistory calls, this ring's contribution to the
// block's operator-fee debit, and the public-data tuples for both orders.
func (r *RingSettlement) Define(api frontend.API, curve twistededwards.Curve, accountsRootBefore, tradingHistoryRootBefore, feesRootBefore frontend.Variable) (accountsRootAfter, tradingHistoryRootAfter, feesRootAfter, operatorDebit frontend.Variable, pdA, pdB RingPublicData, err error) {
	if err := r.OrderA.VerifySignature(api, curve); err != nil {
		return nil, nil, nil, nil, pdA, pdB, err
	}
	if err := r.OrderB.VerifySignature(api, curve); err != nil {
		return nil, nil, nil, nil, pdA, pdB, err
	}

	match := OrderMatching(api, &r.OrderA, &r.OrderB)

	if err := CheckBurnRate(api, r.BurnRatePathA, r.BurnRateTokenIDA, r.BurnRateA, r.BurnRateRoot); err != nil {
		return nil, nil, nil, nil, pdA, pdB, err
	}
	if err := CheckBurnRate(api, r.BurnRatePathB, r.BurnRateTokenIDB, r.BurnRateB, r.BurnRateRoot); err != nil {
		return nil, nil, nil, nil, pdA, pdB, err
	}

	// An invalid ring must be a no-op: force every amount this ring could
	// move to zero while still consuming the ring's slot in the block.
	fillSA := api.Mul(match.FillSA, match.Valid)
	fillBA := api.Mul(match.FillBA, match.Valid)
	fillFA := api.Mul(match.FillFA, match.Valid)
	fillSB := api.Mul(match.FillSB, match.Valid)
	fillBB := api.Mul(match.FillBB, match.Valid)
	fillFB := api.Mul(match.FillFB, match.Valid)
	margin := api.Mul(match.Margin, match.Valid)
	minerFee := api.Mul(r.OperatorFee, match.Valid)

	feeA := FeePaymentCalculator(api, fillFA, r.BurnRateA, r.OrderA.WalletSplitPercentage, r.OrderA.WaiveFeePercentage)
	feeB := FeePaymentCalculator(api, fillFB, r.BurnRateB, r.OrderB.WalletSplitPercentage, r.OrderB.WaiveFeePercentage)
	// Each share of a split must not exceed the fee it was split from.
	ForceLeq(api, 2*BitsAmount, feeA.Wallet, fillFA)
	ForceLeq(api, 2*BitsAmount, feeA.Matcher, fillFA)
	ForceLeq(api, 2*BitsAmount, feeA.Burned, fillFA)
	ForceLeq(api, 2*BitsAmount, feeB.Wallet, fillFB)
	ForceLeq(api, 2*BitsAmount, feeB.Matcher, fillFB)
	ForceLeq(api, 2*BitsAmount, feeB.Burned, fillFB)

	amounts := [13]frontend.Variable{
		fillSA, fillBA, fillFA, feeA.Wallet, feeA.Matcher, feeA.Burned,
		fillSB, fillBB, fillFB, feeB.Wallet, feeB.Matcher, feeB.Burned,
		margin,
	}
	credits := [13]bool{
		false, true, false, true, true, true,
		false, true, false, true, true, true,
		true,
	}
	accountIDs := [13]frontend.Variable{
		r.OrderA.AccountS, r.OrderA.AccountB, r.OrderA.AccountF, r.OrderA.WalletF, r.OrderA.MinerF, r.OrderA.WalletF,
		r.OrderB.AccountS, r.OrderB.AccountB, r.OrderB.AccountF, r.OrderB.WalletF, r.OrderB.MinerF, r.OrderB.WalletF,
		r.OrderA.MinerS,
	}
	tokenIDs := [13]frontend.Variable{
		r.OrderA.TokenS, r.OrderA.TokenB, r.OrderA.TokenF, r.OrderA.TokenF, r.OrderA.TokenF, r.OrderA.TokenF,
		r.OrderB.TokenS, r.OrderB.TokenB, r.OrderB.TokenF, r.OrderB.TokenF, r.OrderB.TokenF, r.OrderB.TokenF,
		r.OrderA.TokenS,
	}

	root := accountsRootBefore
	for i, step := range r.Steps {
		api.AssertIsEqual(step.AccountID, accountIDs[i])
		api.AssertIsEqual(step.TokenID, tokenIDs[i])
		assertBalanceMove(api, step, amounts[i], credits[i])
		var stepErr error
		root, stepErr = step.Apply(api, root)
		if stepErr != nil {
			return nil, nil, nil, nil, pdA, pdB, stepErr
		}
	}

	api.AssertIsEqual(r.MinerFeeStep.AccountID, r.MinerAccountID)
	api.AssertIsEqual(r.MinerFeeStep.TokenID, TokenIDLRC)
	assertBalanceMove(api, r.MinerFeeStep, minerFee, true)
	root, err = r.MinerFeeStep.Apply(api, root)
	if err != nil {
		return nil, nil, nil, nil, pdA, pdB, err
	}
	accountsRootAfter = root

	api.AssertIsEqual(r.FeeTokenStepA.TokenID, r.OrderA.TokenF)
	api.AssertIsEqual(r.FeeTokenStepB.TokenID, r.OrderB.TokenF)
	totalFeeA := api.Add(api.Add(feeA.Wallet, feeA.Matcher), feeA.Burned)
	totalFeeB := api.Add(api.Add(feeB.Wallet, feeB.Matcher), feeB.Burned)
	feesRoot, err := r.FeeTokenStepA.Apply(api, feesRootBefore, totalFeeA)
	if err != nil {
		return nil, nil, nil, nil, pdA, pdB, err
	}
	feesRoot, err = r.FeeTokenStepB.Apply(api, feesRoot, totalFeeB)
	if err != nil {
		return nil, nil, nil, nil, pdA, pdB, err
	}
	feesRootAfter = feesRoot

	filledAfterA := api.Add(r.OrderA.FilledBefore, fillSA)
	filledAfterB := api.Add(r.OrderB.FilledBefore, fillSB)
	ForceLeq(api, 2*BitsAmount, filledAfterA, r.OrderA.AmountS)
	ForceLeq(api, 2*BitsAmount, filledAfterB, r.OrderB.AmountS)

	historyRoot, err := UpdateTradeHistory(api, r.TradeHistoryPathA, r.TradeHistoryAddressA,
		TradeHistoryLeafFields{Filled: r.OrderA.FilledBefore, Cancelled: r.OrderA.Cancelled},
		TradeHistoryLeafFields{Filled: filledAfterA, Cancelled: r.OrderA.Cancelled},
		tradingHistoryRootBefore)
	if err != nil {
		return nil, nil, nil, nil, pdA, pdB, err
	}
	historyRoot, err = UpdateTradeHistory(api, r.TradeHistoryPathB, r.TradeHistoryAddressB,
		TradeHistoryLeafFields{Filled: r.OrderB.FilledBefore, Cancelled: r.OrderB.Cancelled},
		TradeHistoryLeafFields{Filled: filledAfterB, Cancelled: r.OrderB.Cancelled},
		historyRoot)
	if err != nil {
		return nil, nil, nil, nil, pdA, pdB, err
	}
	tradingHistoryRootAfter = historyRoot

	msgHash, err := hashRingMessage(api, &r.OrderA, &r.OrderB, r.Nonce)
	if err != nil {
		return nil, nil, nil, nil, pdA, pdB, err
	}
	if err := VerifySignature(api, curve, r.MinerPublicKey, r.MinerSignature, msgHash); err != nil {
		return nil, nil, nil, nil, pdA, pdB, err
	}
	if err := VerifySignature(api, curve, r.OrderA.OwnerPublicKey, r.WalletASignature, msgHash); err != nil {
		return nil, nil, nil, nil, pdA, pdB, err
	}
	if err := VerifySignature(api, curve, r.OrderB.OwnerPublicKey, r.WalletBSignature, msgHash); err != nil {
		return nil, nil, nil, nil, pdA, pdB, err
	}

	pdA = RingPublicData{
		WalletID: r.OrderA.WalletID, OrderID: r.OrderA.OrderID, AccountS: r.OrderA.AccountS,
		CounterpartyAccountB: r.OrderB.AccountB, FillS: fillSA, AccountF: r.OrderA.AccountF, FillF: fillFA,
	}
	pdB = RingPublicData{
		WalletID: r.OrderB.WalletID, OrderID: r.OrderB.OrderID, AccountS: r.OrderB.AccountS,
		CounterpartyAccountB: r.OrderA.AccountB, FillS: fillSB, AccountF: r.OrderB.AccountF, FillF: fillFB,
	}
	return accountsRootAfter, tradingHistoryRootAfter, feesRootAfter, minerFee, pdA, pdB, nil
}

// hashRingMessage folds the ring message fields through MiMC, standing in
// for the original's hash(A) || hash(B) || ... concatenation: each order's
// hash there is itself a MiMC digest, so folding the order-hash inputs
// directly through one hasher is the same commitment with one fewer
// intermediate digest.
func hashRingMessage(api frontend.API, a, b *Order, nonce frontend.Variable) (frontend.Variable, error) {
	return leafHash(api,
		a.WalletID, a.OrderID, a.AccountS, a.AccountB, a.AccountF, a.AmountS, a.AmountB, a.AmountF,
		b.WalletID, b.OrderID, b.AccountS, b.AccountB, b.AccountF, b.AmountS, b.AmountB, b.AmountF,
		a.WaiveFeePercentage, b.WaiveFeePercentage, a.MinerF, b.MinerF, a.MinerS, nonce)
}
