package circuits

import "github.com/consensys/gnark/frontend"

// DepositCircuit is the L5 block circuit for a deposit block: N chained
// Deposit gadgets, public-data tuples folded into the single public input.
type DepositCircuit struct {
	PublicDataHash frontend.Variable `gnark:",public"`

	StateID            frontend.Variable
	AccountsRootBefore frontend.Variable
	AccountsRootAfter  frontend.Variable

	Deposits []Deposit
}

// NewDepositCircuit allocates Deposits to length n.
func NewDepositCircuit(n int) *DepositCircuit {
	return &DepositCircuit{Deposits: make([]Deposit, n)}
}

func (c *DepositCircuit) Define(api frontend.API) error {
	root := c.AccountsRootBefore
	hasher := NewPublicDataHasher(api)

	for i := range c.Deposits {
		d := &c.Deposits[i]
		var pd DepositPublicData
		var err error
		root, pd, err = d.Define(api, root)
		if err != nil {
			return err
		}
		hasher.Add(
			F(pd.Address, TreeDepthAccounts), F(pd.PublicKeyX, FieldElementBits), F(pd.PublicKeyY, FieldElementBits),
			F(pd.WalletID, BitsWalletID), F(pd.Token, BitsTokenID), F(pd.Amount, BitsAmount),
		)
	}

	api.AssertIsEqual(root, c.AccountsRootAfter)
	return hasher.CheckEqual(c.PublicDataHash)
}

func (c *DepositCircuit) GetConstraintCount() int {
	return len(c.Deposits) * 5000
}

func (c *DepositCircuit) GetPublicInputCount() int {
	return 1
}

func (c *DepositCircuit) GetCircuitName() string {
	return "rollup-deposit-v1"
}
