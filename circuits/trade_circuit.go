package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
)

// TradeCircuit is the L5 block circuit for a trade block: N chained
// RingSettlement gadgets, each crediting its own ring matcher directly and
// folding its fee tokens into the fee-accounting tree, followed by one
// operator debit that pays out the sum of every ring's matcher fee, with
// every gadget's public-data tuple folded into the block's single
// public-input hash. N is fixed at construction (NewTradeCircuit) and baked
// into the compiled constraint system; see spec's constrained(N) state.
type TradeCircuit struct {
	PublicDataHash frontend.Variable `gnark:",public"`

	StateID                  frontend.Variable
	Timestamp                frontend.Variable
	OperatorAccountID        frontend.Variable
	BurnRateRoot             frontend.Variable
	AccountsRootBefore       frontend.Variable
	AccountsRootAfter        frontend.Variable
	FeesRootBefore           frontend.Variable
	FeesRootAfter            frontend.Variable
	TradingHistoryRootBefore frontend.Variable

	Rings []RingSettlement

	// OperatorStep debits the operator account, once, by the sum of every
	// ring's matcher fee: each ring pays its matcher directly out of
	// MinerFeeStep, so the operator's own account only needs one Merkle
	// touch per block rather than one per ring.
	OperatorStep AccountBalanceStep
}

// NewTradeCircuit allocates the Rings slice to length n so gnark compiles a
// constraint system sized for exactly n ring settlements.
func NewTradeCircuit(n int) *TradeCircuit {
	return &TradeCircuit{Rings: make([]RingSettlement, n)}
}

func (c *TradeCircuit) Define(api frontend.API) error {
	curve, err := twistededwards.NewEdCurve(api, twistededwards.BN254)
	if err != nil {
		return err
	}

	accountsRoot := c.AccountsRootBefore
	historyRoot := c.TradingHistoryRootBefore
	feesRoot := c.FeesRootBefore
	operatorDebitTotal := frontend.Variable(0)
	hasher := NewPublicDataHasher(api)

	for i := range c.Rings {
		ring := &c.Rings[i]
		var pdA, pdB RingPublicData
		var operatorDebit frontend.Variable
		accountsRoot, historyRoot, feesRoot, operatorDebit, pdA, pdB, err = ring.Define(api, curve, accountsRoot, historyRoot, feesRoot)
		if err != nil {
			return err
		}
		operatorDebitTotal = api.Add(operatorDebitTotal, operatorDebit)
		hasher.Add(
			F(pdA.WalletID, BitsWalletID), F(pdA.OrderID, BitsOrderID), F(pdA.AccountS, TreeDepthAccounts),
			F(pdA.CounterpartyAccountB, TreeDepthAccounts), F(pdA.FillS, BitsAmount),
			F(pdA.AccountF, TreeDepthAccounts), F(pdA.FillF, BitsAmount),
		)
		hasher.Add(
			F(pdB.WalletID, BitsWalletID), F(pdB.OrderID, BitsOrderID), F(pdB.AccountS, TreeDepthAccounts),
			F(pdB.CounterpartyAccountB, TreeDepthAccounts), F(pdB.FillS, BitsAmount),
			F(pdB.AccountF, TreeDepthAccounts), F(pdB.FillF, BitsAmount),
		)
	}

	api.AssertIsEqual(c.OperatorStep.AccountID, c.OperatorAccountID)
	assertBalanceMove(api, c.OperatorStep, operatorDebitTotal, false)
	accountsRoot, err = c.OperatorStep.Apply(api, accountsRoot)
	if err != nil {
		return err
	}
	api.AssertIsEqual(accountsRoot, c.AccountsRootAfter)
	api.AssertIsEqual(feesRoot, c.FeesRootAfter)

	return hasher.CheckEqual(c.PublicDataHash)
}

func (c *TradeCircuit) GetConstraintCount() int {
	return len(c.Rings) * 55000
}

func (c *TradeCircuit) GetPublicInputCount() int {
	return 1
}

func (c *TradeCircuit) GetCircuitName() string {
	return "rollup-trade-v1"
}
