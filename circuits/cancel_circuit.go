package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
)

// CancelCircuit is the L5 block circuit for a cancellation block. Unlike
// the other three block circuits, it threads the trading-history root (the
// accounts root is read-only here) and always emits the public-data hash
// equality constraint.
type CancelCircuit struct {
	PublicDataHash frontend.Variable `gnark:",public"`

	StateID                  frontend.Variable
	AccountsRoot             frontend.Variable
	TradingHistoryRootBefore frontend.Variable
	TradingHistoryRootAfter  frontend.Variable

	Cancels []Cancel
}

// NewCancelCircuit allocates Cancels to length n.
func NewCancelCircuit(n int) *CancelCircuit {
	return &CancelCircuit{Cancels: make([]Cancel, n)}
}

func (c *CancelCircuit) Define(api frontend.API) error {
	curve, err := twistededwards.NewEdCurve(api, twistededwards.BN254)
	if err != nil {
		return err
	}

	root := c.TradingHistoryRootBefore
	hasher := NewPublicDataHasher(api)

	for i := range c.Cancels {
		cancel := &c.Cancels[i]
		var pd CancelPublicData
		root, pd, err = cancel.Define(api, curve, c.AccountsRoot, root)
		if err != nil {
			return err
		}
		hasher.Add(F(pd.Account, TreeDepthAccounts), F(pd.OrderID, BitsOrderID))
	}

	api.AssertIsEqual(root, c.TradingHistoryRootAfter)
	return hasher.CheckEqual(c.PublicDataHash)
}

func (c *CancelCircuit) GetConstraintCount() int {
	return len(c.Cancels) * 4000
}

func (c *CancelCircuit) GetPublicInputCount() int {
	return 1
}

func (c *CancelCircuit) GetCircuitName() string {
	return "rollup-cancel-v1"
}
