package circuits

import "github.com/consensys/gnark/frontend"

// MatchResult is the output of OrderMatching: the settled fill amounts for
// both legs, the fee-equivalent amounts, the matcher's margin, and the
// overall validity bit.
type MatchResult struct {
	FillSA, FillBA, FillFA frontend.Variable
	FillSB, FillBB, FillFB frontend.Variable
	Margin                 frontend.Variable
	Valid                  frontend.Variable
}

// OrderMatching settles two crossed orders: it verifies the token legs
// cross, computes each order's maximum fill via MaxFillAmounts, pivots on
// whichever order is the binding constraint, derives the matcher's margin,
// and validates the result (price-cross check + both orders' CheckFills).
func OrderMatching(api frontend.API, a, b *Order) MatchResult {
	tokensCross := And(api,
		Equal(api, a.TokenS, b.TokenB),
		Equal(api, a.TokenB, b.TokenS),
	)

	maxSA, maxBA := MaxFillAmounts(api, a)
	maxSB, maxBB := MaxFillAmounts(api, b)

	_, aLimiting := Leq(api, 2*BitsAmount, maxBA, maxSB)

	// A-limiting branch.
	fillSA_ifA := maxSA
	fillBA_ifA := maxBA
	fillSB_ifA := maxSA
	fillBB_ifA, _ := MulDiv(api, BitsAmount, maxSA, b.AmountS, b.AmountB)

	// B-limiting branch.
	fillSB_ifB := maxSB
	fillBB_ifB := maxBB
	fillBA_ifB := maxSB
	fillSA_ifB, _ := MulDiv(api, BitsAmount, maxSB, a.AmountS, a.AmountB)

	fillSA := Ternary(api, aLimiting, fillSA_ifA, fillSA_ifB)
	fillBA := Ternary(api, aLimiting, fillBA_ifA, fillBA_ifB)
	fillSB := Ternary(api, aLimiting, fillSB_ifA, fillSB_ifB)
	fillBB := Ternary(api, aLimiting, fillBB_ifA, fillBB_ifB)

	margin := api.Sub(fillSA, fillBB)

	fillFA, _ := MulDiv(api, BitsAmount, a.AmountF, fillSA, a.AmountS)
	fillFB, _ := MulDiv(api, BitsAmount, b.AmountF, fillSB, b.AmountS)

	_, priceCrossOk := Leq(api, 2*BitsAmount, fillBB, fillSA)

	checkA := CheckFills(api, a, fillSA)
	checkB := CheckFills(api, b, fillSB)

	valid := And(api, tokensCross, And(api, priceCrossOk, And(api, checkA, checkB)))

	return MatchResult{
		FillSA: fillSA, FillBA: fillBA, FillFA: fillFA,
		FillSB: fillSB, FillBB: fillBB, FillFB: fillFB,
		Margin: margin,
		Valid:  valid,
	}
}
