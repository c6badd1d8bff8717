package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
)

// WithdrawCircuit is the L5 block circuit for a withdrawal block.
type WithdrawCircuit struct {
	PublicDataHash frontend.Variable `gnark:",public"`

	StateID            frontend.Variable
	AccountsRootBefore frontend.Variable
	AccountsRootAfter  frontend.Variable

	Withdrawals []Withdrawal
}

// NewWithdrawCircuit allocates Withdrawals to length n.
func NewWithdrawCircuit(n int) *WithdrawCircuit {
	return &WithdrawCircuit{Withdrawals: make([]Withdrawal, n)}
}

func (c *WithdrawCircuit) Define(api frontend.API) error {
	curve, err := twistededwards.NewEdCurve(api, twistededwards.BN254)
	if err != nil {
		return err
	}

	root := c.AccountsRootBefore
	hasher := NewPublicDataHasher(api)

	for i := range c.Withdrawals {
		w := &c.Withdrawals[i]
		var pd WithdrawalPublicData
		root, pd, err = w.Define(api, curve, root)
		if err != nil {
			return err
		}
		hasher.Add(F(pd.Account, TreeDepthAccounts), F(pd.Amount, BitsAmount))
	}

	api.AssertIsEqual(root, c.AccountsRootAfter)
	return hasher.CheckEqual(c.PublicDataHash)
}

func (c *WithdrawCircuit) GetConstraintCount() int {
	return len(c.Withdrawals) * 6000
}

func (c *WithdrawCircuit) GetPublicInputCount() int {
	return 1
}

func (c *WithdrawCircuit) GetCircuitName() string {
	return "rollup-withdraw-v1"
}
