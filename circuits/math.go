package circuits

import (
	"math/big"

	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/cmp"
)

// AmountBits is the declared bit width of every amount-class field (balances,
// fill amounts, trade history). Two amount-class values summed or compared
// never exceed 2*AmountBits bits, which is why the original Leq gadget sizes
// its comparator at 192 bits rather than 96.
const AmountBits = 96

func init() {
	solver.RegisterHint(mulDivHint)
}

// Ternary returns ifTrue when condition is 1 and ifFalse when condition is 0.
// condition must already be constrained boolean by the caller; gnark's
// Select compiles this to the same T*cond + F*(1-cond) shape the original
// TernaryGadget built out of two multiplication constraints.
func Ternary(api frontend.API, condition, ifTrue, ifFalse frontend.Variable) frontend.Variable {
	return api.Select(condition, ifTrue, ifFalse)
}

// boundedComparator builds a comparator sized for values up to 2^maxBits-1.
// maxBits must be large enough to hold the sum of both operands without
// wraparound; callers pass 2*AmountBits for amount-class comparisons and
// a tighter bound for narrower fields (percentages, burn rates, indices).
func boundedComparator(api frontend.API, maxBits uint) *cmp.BoundedComparator {
	bound := new(big.Int).Lsh(big.NewInt(1), maxBits)
	c := cmp.NewBoundedComparator(api, bound, false)
	return &c
}

// Leq reports, as two boolean wires, whether a < b and a <= b. maxBits must
// cover the combined range of a and b (use 2*AmountBits for amount-class
// operands).
func Leq(api frontend.API, maxBits uint, a, b frontend.Variable) (lt, leq frontend.Variable) {
	c := boundedComparator(api, maxBits)
	lt = c.IsLess(a, b)
	leq = api.Or(lt, api.IsZero(api.Sub(a, b)))
	return lt, leq
}

// ForceLeq asserts a <= b, the single-output form used throughout the
// state-transition gadgets wherever a fill or fee must not exceed its cap.
func ForceLeq(api frontend.API, maxBits uint, a, b frontend.Variable) {
	c := boundedComparator(api, maxBits)
	c.AssertIsLessEq(a, b)
}

// Equal reports whether a == b. The original circuit built this out of Leq,
// Not and And because its constraint system had no native equality gate;
// gnark's field arithmetic makes IsZero(a-b) an equivalent and cheaper
// equality test, so Equal is expressed directly in terms of it rather than
// composed from Leq.
func Equal(api frontend.API, a, b frontend.Variable) frontend.Variable {
	return api.IsZero(api.Sub(a, b))
}

// And requires both inputs to already be boolean-constrained by their
// producer (a Leq, Equal, or explicit AssertIsBoolean call upstream).
func And(api frontend.API, a, b frontend.Variable) frontend.Variable {
	return api.And(a, b)
}

// Or requires both inputs to already be boolean-constrained.
func Or(api frontend.API, a, b frontend.Variable) frontend.Variable {
	return api.Or(a, b)
}

// Not requires a to already be boolean-constrained.
func Not(api frontend.API, a frontend.Variable) frontend.Variable {
	return api.Sub(1, a)
}

// Min returns whichever of a, b is smaller, under a maxBits-bit comparator.
func Min(api frontend.API, maxBits uint, a, b frontend.Variable) frontend.Variable {
	c := boundedComparator(api, maxBits)
	lt := c.IsLess(a, b)
	return Ternary(api, lt, a, b)
}

// mulDivHint computes floor(a*b/c) and the remainder a*b - c*floor(a*b/c)
// outside the constraint system. It must stay registered process-wide
// (see init above) because setup and proving run as separate CLI
// invocations and the solver resolving a witness in the `prove` process
// never ran the code that originally computed this value.
func mulDivHint(_ *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	a, b, c := inputs[0], inputs[1], inputs[2]
	if c.Sign() == 0 {
		outputs[0].SetInt64(0)
		outputs[1].SetInt64(0)
		return nil
	}
	product := new(big.Int).Mul(a, b)
	d, rest := new(big.Int).QuoRem(product, c, new(big.Int))
	outputs[0].Set(d)
	outputs[1].Set(rest)
	return nil
}

// MulDiv computes D = floor(A*B/C) under the contract
// A*B == C*D + rest, 0 <= rest < C (or rest == 0 when C == 0), matching the
// original MulDivGadget's floor-division semantics used throughout fee
// splitting and fill-amount computation. maxBits must cover the bit width of
// C so the rest-vs-C comparison is sound (AmountBits for amount-class
// divisors).
func MulDiv(api frontend.API, maxBits uint, a, b, c frontend.Variable) (d, rest frontend.Variable) {
	outs, err := api.Compiler().NewHint(mulDivHint, 2, a, b, c)
	if err != nil {
		panic(err)
	}
	d, rest = outs[0], outs[1]

	x := api.Mul(a, b)
	y := api.Mul(c, d)
	api.AssertIsEqual(api.Add(y, rest), x)

	cmpC := boundedComparator(api, maxBits)
	ltC := cmpC.IsLess(rest, c)
	restIsZero := api.IsZero(rest)
	api.AssertIsEqual(Or(api, ltC, restIsZero), 1)

	return d, rest
}
