package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/consensys/gnark/std/signature/eddsa"
)

// VerifySignature checks an EdDSA signature over the MiMC hash of fields, in
// that order. This mirrors the original SignatureVerifier gadget, which
// wrapped jubjub::PureEdDSA around a message hash built from the same
// ordered field list (account ids, amounts, nonce, ...); gnark's twisted
// Edwards EdDSA gadget plays the role jubjub played in the C++ circuit.
func VerifySignature(api frontend.API, curve twistededwards.Curve, pubKey eddsa.PublicKey, sig eddsa.Signature, fields ...frontend.Variable) error {
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	for _, f := range fields {
		hasher.Write(f)
	}
	msg := hasher.Sum()

	verifyHasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	return eddsa.Verify(curve, sig, msg, pubKey, &verifyHasher)
}
