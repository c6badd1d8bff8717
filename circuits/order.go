package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/signature/eddsa"
)

// Order is the L3 order gadget: every field a ring-settlement order carries,
// plus the runtime-only fields (filledBefore, cancelled, balanceS/B/F) that
// only exist at witness-assignment time, sourced from the current account
// state rather than the signed order itself.
type Order struct {
	WalletID  frontend.Variable
	OrderID   frontend.Variable
	AccountS  frontend.Variable
	AccountB  frontend.Variable
	AccountF  frontend.Variable
	TokenS    frontend.Variable
	TokenB    frontend.Variable
	TokenF    frontend.Variable
	AmountS   frontend.Variable
	AmountB   frontend.Variable
	AmountF   frontend.Variable
	WalletF   frontend.Variable
	MinerF    frontend.Variable
	MinerS    frontend.Variable

	WalletSplitPercentage frontend.Variable
	WaiveFeePercentage    frontend.Variable
	ValidSince            frontend.Variable
	ValidUntil            frontend.Variable
	AllOrNone             frontend.Variable

	OwnerPublicKey eddsa.PublicKey
	OwnerSignature eddsa.Signature

	// Runtime-only: populated from current account/trade-history state,
	// never part of the signed order.
	FilledBefore frontend.Variable
	Cancelled    frontend.Variable
	BalanceS     frontend.Variable
	BalanceB     frontend.Variable
	BalanceF     frontend.Variable
}

// VerifySignature checks the owner's EdDSA signature over the order's
// canonical 8-field message, in the fixed order walletID, orderID,
// accountS, accountB, accountF, amountS, amountB, amountF.
func (o *Order) VerifySignature(api frontend.API, curve twistededwards.Curve) error {
	return VerifySignature(api, curve, o.OwnerPublicKey, o.OwnerSignature,
		o.WalletID, o.OrderID, o.AccountS, o.AccountB, o.AccountF,
		o.AmountS, o.AmountB, o.AmountF)
}

// CheckValidity returns valid = (validSince <= timestamp) && (timestamp <=
// validUntil), the order's time-window gate.
func (o *Order) CheckValidity(api frontend.API, timestamp frontend.Variable) frontend.Variable {
	_, sinceOk := Leq(api, BitsValidity+1, o.ValidSince, timestamp)
	_, untilOk := Leq(api, BitsValidity+1, timestamp, o.ValidUntil)
	return And(api, sinceOk, untilOk)
}

// MaxFillAmounts computes the maximum (fillS, fillB) this order can settle
// given its current on-chain state, resolving the four spendability cases
// in precedence case4 > case3 > case2 > case1 (see spec §4.3).
func MaxFillAmounts(api frontend.API, o *Order) (fillS, fillB frontend.Variable) {
	notCancelled := Not(api, o.Cancelled)
	rawRemaining := api.Sub(o.AmountS, o.FilledBefore)
	remaining := api.Mul(rawRemaining, notCancelled)

	fillS1 := Min(api, 2*BitsAmount, o.BalanceS, remaining)
	fillF, _ := MulDiv(api, BitsAmount, o.AmountF, fillS1, o.AmountS)

	sameFeeToken := Equal(api, o.TokenS, o.TokenF)
	_, case2Bound := Leq(api, 2*BitsAmount, o.BalanceS, api.Add(fillS1, fillF))
	case2 := And(api, sameFeeToken, case2Bound)
	case2Fill, _ := MulDiv(api, BitsAmount+1, o.BalanceS, o.AmountS, api.Add(o.AmountS, o.AmountF))

	diffFeeToken := Not(api, sameFeeToken)
	_, case3Bound := Leq(api, 2*BitsAmount, o.BalanceF, fillF)
	case3 := And(api, diffFeeToken, case3Bound)
	case3Fill, _ := MulDiv(api, BitsAmount, o.BalanceF, o.AmountS, o.AmountF)

	feePaidInBought := Equal(api, o.TokenB, o.TokenF)
	_, feeLeAmountB := Leq(api, 2*BitsAmount, o.AmountF, o.AmountB)
	case4 := And(api, feePaidInBought, feeLeAmountB)

	result := fillS1
	result = Ternary(api, case2, case2Fill, result)
	result = Ternary(api, case3, case3Fill, result)
	result = Ternary(api, case4, fillS1, result)

	fillS = result
	fillB, _ = MulDiv(api, BitsAmount, fillS, o.AmountB, o.AmountS)
	return fillS, fillB
}

// CheckFills reports whether fillS is acceptable for this order:
// when AllOrNone is set, fillS must equal AmountS exactly; otherwise the
// fill is always acceptable.
func CheckFills(api frontend.API, o *Order, fillS frontend.Variable) frontend.Variable {
	_, fillLtAmount := Leq(api, 2*BitsAmount, fillS, o.AmountS)
	filledExactly := And(api, fillLtAmount, Equal(api, fillS, o.AmountS))
	return Or(api, Not(api, o.AllOrNone), filledExactly)
}
