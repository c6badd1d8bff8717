// Package errs holds the sentinel errors surfaced by the circuit-builder
// core and its collaborators, grouped by the four error kinds the core
// distinguishes: parse, shape, unsatisfied-constraint, and numeric
// overflow guards, plus the key-management errors of the createkeys
// runtime.
package errs

import (
	"errors"

	sdkerrors "cosmossdk.io/errors"
)

// ModuleName roots every registered error code below.
const ModuleName = "circuitforge"

var (
	// Parse errors (spec.md §7 kind 1) — malformed or missing JSON input,
	// surfaced from the collaborator layer unchanged.
	ErrFieldMissing  = sdkerrors.Register(ModuleName, 2, "required field missing in block input")
	ErrFieldMalformed = sdkerrors.Register(ModuleName, 3, "field could not be decoded")
	ErrUnknownBlockType = sdkerrors.Register(ModuleName, 4, "unknown block type")

	// Shape errors (kind 2) — e.g. ringSettlements.length != numElements.
	ErrShapeMismatch = sdkerrors.Register(ModuleName, 10, "block input shape does not match declared element count")
	ErrEmptyBlock    = sdkerrors.Register(ModuleName, 11, "block declares zero elements")

	// Constraint-system errors (kind 3) — detected only after witness
	// assignment, via a post-assignment R1CS check.
	ErrUnsatisfiedConstraint = sdkerrors.Register(ModuleName, 20, "witness does not satisfy the compiled constraint system")
	ErrCompileFailed         = sdkerrors.Register(ModuleName, 21, "circuit failed to compile to R1CS")

	// Numeric-overflow guard (kind 4) — not catchable once it has
	// happened; these errors fire when an input value is rejected
	// *before* it can silently wrap in field arithmetic.
	ErrAmountOutOfRange = sdkerrors.Register(ModuleName, 30, "amount-class value exceeds its declared bit width")
	ErrPercentageOutOfRange = sdkerrors.Register(ModuleName, 31, "percentage value outside [0,100]")
	ErrBurnRateOutOfRange   = sdkerrors.Register(ModuleName, 32, "burn rate outside [0,1000]")

	// Key-management errors (createkeys / prove / verify runtime).
	ErrKeyNotFound       = sdkerrors.Register(ModuleName, 40, "proving or verifying key not found")
	ErrKeyDecryptFailed  = sdkerrors.Register(ModuleName, 41, "failed to decrypt key material")
	ErrKeyAlreadyExists  = sdkerrors.Register(ModuleName, 42, "key already exists at destination path")
	ErrProofVerifyFailed = sdkerrors.Register(ModuleName, 43, "proof failed verification against the verifying key")
)

// RecoverySuggestions maps each sentinel to an actionable, non-sensitive
// hint. Suggestions never echo input values or key material — only the
// category of the problem, per the "no leaked key material" requirement.
var RecoverySuggestions = map[error]string{
	ErrFieldMissing:     "Check the block JSON against the schema for its blockType; a required key is absent at some nesting depth.",
	ErrFieldMalformed:   "A numeric field arrived as the wrong JSON type. Decimal/hex-string fields must be JSON strings, percentages and widths must be JSON numbers.",
	ErrUnknownBlockType: "blockType must be one of 0 (trade), 1 (deposit), 2 (withdraw), 3 (cancel).",

	ErrShapeMismatch: "The length of the block's per-element array does not match numElements. Regenerate the block input from the same numElements used to compile the circuit.",
	ErrEmptyBlock:    "numElements must be at least 1.",

	ErrUnsatisfiedConstraint: "The witness violates an emitted constraint. Re-check the reported row's gadget prefix against the input values for that element.",
	ErrCompileFailed:         "The circuit could not be compiled for the requested element count. Verify numElements fits within configured limits.",

	ErrAmountOutOfRange:     "An amount-class field must fit in 96 bits. Values at or above 2^96 cannot be range-checked and are rejected before constraint emission.",
	ErrPercentageOutOfRange: "walletSplitPercentage and waiveFeePercentage must be between 0 and 100 inclusive.",
	ErrBurnRateOutOfRange:   "burnRate must be between 0 and 1000 inclusive (thousandths).",

	ErrKeyNotFound:       "Run createkeys for this block type and element count before prove or verify.",
	ErrKeyDecryptFailed:  "The supplied passphrase does not match the one used to encrypt this key, or the key file is corrupted.",
	ErrKeyAlreadyExists:  "Remove or relocate the existing key file before regenerating, or pick a different keys directory.",
	ErrProofVerifyFailed: "The proof does not verify against the supplied verifying key and public inputs.",
}

// ErrorWithRecovery wraps an error together with a recovery suggestion
// so the CLI can print actionable guidance without leaking internals.
type ErrorWithRecovery struct {
	Err      error
	Recovery string
}

func (e *ErrorWithRecovery) Error() string { return e.Err.Error() }

func (e *ErrorWithRecovery) Unwrap() error { return e.Err }

// WrapWithRecovery wraps err with msg (cosmossdk.io/errors formatting) and,
// if a recovery suggestion is registered for the sentinel, attaches it.
func WrapWithRecovery(err error, msg string, args ...interface{}) error {
	wrapped := sdkerrors.Wrapf(err, msg, args...)
	if suggestion, ok := RecoverySuggestions[err]; ok {
		return &ErrorWithRecovery{Err: wrapped, Recovery: suggestion}
	}
	return wrapped
}

// GetRecoverySuggestion unwraps err down to its root sentinel and returns
// the registered suggestion, or a generic fallback.
func GetRecoverySuggestion(err error) string {
	root := err
	for {
		if unwrapped := errors.Unwrap(root); unwrapped != nil {
			root = unwrapped
			continue
		}
		break
	}
	if suggestion, ok := RecoverySuggestions[root]; ok {
		return suggestion
	}
	return "No recovery suggestion available."
}
