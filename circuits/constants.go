package circuits

// Tree depths and field bit widths, carried over from the original
// circuit's Constants.h except BitsWalletID, widened from 12 to 16 bits,
// and FieldElementBits, which has no counterpart there.
const (
	TreeDepthAccounts       = 24
	TreeDepthBalances       = 12
	TreeDepthTradingHistory = 16
	TreeDepthTokens         = 16

	BitsTokenID  = 12
	BitsWalletID = 16
	BitsOrderID  = 4
	BitsMinerID  = 12

	BitsAmount     = AmountBits // 96
	BitsValidity   = 32
	BitsPercentage = 8

	TokenIDEth = 0
	TokenIDLRC = 1

	// FieldElementBits is the bit width used to pack a full BN254 scalar
	// (an EdDSA public-key coordinate) into the public-data stream, rather
	// than one of the narrower domain-bounded widths above.
	FieldElementBits = 254
)
