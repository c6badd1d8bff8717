package circuits

import "github.com/consensys/gnark/frontend"

// FeeSplit is the three-way decomposition FeePaymentCalculator produces.
type FeeSplit struct {
	Wallet   frontend.Variable
	Matcher  frontend.Variable
	Burned   frontend.Variable
}

// FeePaymentCalculator splits fee into a wallet share, a matcher share and
// a burned remainder. burnRate is in thousandths [0,1000]; walletSplit and
// waive are percentages [0,100]. All divisions are floor-division via
// MulDiv, matching the original gadget's arithmetic exactly.
func FeePaymentCalculator(api frontend.API, fee, burnRate, walletSplit, waive frontend.Variable) FeeSplit {
	walletFee, _ := MulDiv(api, BitsAmount, fee, walletSplit, 100)
	walletBurn, _ := MulDiv(api, BitsAmount, walletFee, burnRate, 1000)
	walletReceives := api.Sub(walletFee, walletBurn)

	matchingFee := api.Sub(fee, walletFee)
	matchingAfterWaive, _ := MulDiv(api, BitsAmount, matchingFee, waive, 100)
	matchingBurn, _ := MulDiv(api, BitsAmount, matchingAfterWaive, burnRate, 1000)
	matcherReceives := api.Sub(matchingAfterWaive, matchingBurn)

	burned := api.Add(walletBurn, matchingBurn)

	return FeeSplit{Wallet: walletReceives, Matcher: matcherReceives, Burned: burned}
}
