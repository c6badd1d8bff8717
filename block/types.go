// Package block decodes the JSON block files the circuit-builder core
// consumes into strongly-typed records. It is a collaborator, not core:
// the core never sees a dynamic JSON tree, only these structs.
package block

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/rollupforge/circuitforge/errs"
)

// BlockType enumerates the four batch kinds a block file may declare.
type BlockType uint8

const (
	BlockTypeTrade BlockType = iota
	BlockTypeDeposit
	BlockTypeWithdraw
	BlockTypeCancel
)

func (t BlockType) String() string {
	switch t {
	case BlockTypeTrade:
		return "trade"
	case BlockTypeDeposit:
		return "deposit"
	case BlockTypeWithdraw:
		return "withdraw"
	case BlockTypeCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// BigInt decodes a decimal or 0x-prefixed hex JSON string into a
// *big.Int, the wire convention spec.md §6 requires for every
// variable-length integer. Mirrors the MarshalJSON/UnmarshalJSON idiom
// of cosmossdk.io/math.Int: wire representation is always a JSON string.
type BigInt struct {
	*big.Int
}

// NewBigInt wraps v.
func NewBigInt(v *big.Int) BigInt { return BigInt{v} }

// BigIntFromInt64 is a convenience constructor for literal test fixtures.
func BigIntFromInt64(v int64) BigInt { return BigInt{big.NewInt(v)} }

func (b BigInt) MarshalJSON() ([]byte, error) {
	if b.Int == nil {
		return json.Marshal("0")
	}
	return json.Marshal(b.Int.String())
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errs.WrapWithRecovery(errs.ErrFieldMalformed, "decoding big-int field: %v", err)
	}
	v := new(big.Int)
	var ok bool
	if len(s) > 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		v, ok = v.SetString(s[2:], 16)
	} else {
		v, ok = v.SetString(s, 10)
	}
	if !ok {
		return errs.WrapWithRecovery(errs.ErrFieldMalformed, "big-int field %q is neither decimal nor hex", s)
	}
	b.Int = v
	return nil
}

// Point is an EdDSA/Jubjub public-key or signature-R coordinate pair.
type Point struct {
	X BigInt `json:"x"`
	Y BigInt `json:"y"`
}

// Signature is an EdDSA signature over the twisted-Edwards curve.
type Signature struct {
	R Point  `json:"R"`
	S BigInt `json:"s"`
}

// Proof is the ordered list of sibling hashes needed to recompute a
// Merkle root from a leaf (spec.md §3 "Proof").
type Proof struct {
	Data []BigInt `json:"data"`
}

// Order is the strongly-typed decode of one order, spec.md §3.
type Order struct {
	WalletID               uint32    `json:"walletID"`
	OrderID                uint32    `json:"orderID"`
	AccountS               uint32    `json:"accountS"`
	AccountB               uint32    `json:"accountB"`
	AccountF               uint32    `json:"accountF"`
	TokenS                 uint32    `json:"tokenS"`
	TokenB                 uint32    `json:"tokenB"`
	TokenF                 uint32    `json:"tokenF"`
	AmountS                BigInt    `json:"amountS"`
	AmountB                BigInt    `json:"amountB"`
	AmountF                BigInt    `json:"amountF"`
	WalletF                uint32    `json:"walletF"`
	MinerF                 uint32    `json:"minerF"`
	MinerS                 uint32    `json:"minerS"`
	WalletSplitPercentage  uint32    `json:"walletSplitPercentage"`
	WaiveFeePercentage     uint32    `json:"waiveFeePercentage"`
	ValidSince             uint32    `json:"validSince"`
	ValidUntil             uint32    `json:"validUntil"`
	AllOrNone              bool      `json:"allOrNone"`
	PublicKey              Point     `json:"publicKey"`
	WalletPublicKey        Point     `json:"walletPublicKey"`
	MinerPublicKeyF        Point     `json:"minerPublicKeyF"`
	MinerPublicKeyS        Point     `json:"minerPublicKeyS"`
	Signature              Signature `json:"signature"`

	// Runtime-only fields (current on-chain state at settlement time).
	FilledBefore BigInt `json:"filledBefore"`
	Cancelled    bool   `json:"cancelled"`
	BalanceS     BigInt `json:"balanceS"`
	BalanceB     BigInt `json:"balanceB"`
	BalanceF     BigInt `json:"balanceF"`
}

// AccountLeaf is one account-tree leaf's five fields.
type AccountLeaf struct {
	PublicKeyX  BigInt `json:"publicKeyX"`
	PublicKeyY  BigInt `json:"publicKeyY"`
	WalletID    uint32 `json:"walletID"`
	Nonce       BigInt `json:"nonce"`
	BalancesRoot BigInt `json:"balancesRoot"`
}

// AccountUpdate is a before/after account-leaf transition with its
// Merkle proof, the shared shape used by every L2 UpdateAccount call.
type AccountUpdate struct {
	Before AccountLeaf `json:"before"`
	After  AccountLeaf `json:"after"`
	Proof  Proof       `json:"proof"`
}

// BalanceLeaf is one per-account balance-tree leaf.
type BalanceLeaf struct {
	Balance           BigInt `json:"balance"`
	TradingHistoryRoot BigInt `json:"tradingHistoryRoot"`
}

// BalanceUpdate is a before/after balance-leaf transition.
type BalanceUpdate struct {
	Before BalanceLeaf `json:"before"`
	After  BalanceLeaf `json:"after"`
	Proof  Proof       `json:"proof"`
}

// TradeHistoryLeaf is one trading-history-tree leaf.
type TradeHistoryLeaf struct {
	Filled    BigInt `json:"filled"`
	Cancelled bool   `json:"cancelled"`
}

// TradeHistoryUpdate is a before/after trade-history-leaf transition.
type TradeHistoryUpdate struct {
	Before TradeHistoryLeaf `json:"before"`
	After  TradeHistoryLeaf `json:"after"`
	Proof  Proof            `json:"proof"`
}

// RingBalanceStep is the wire form of one Merkle-authenticated
// account/balance touch within a ring settlement: an account-tree leaf
// transition nested with the one balance-tree leaf transition it carries.
// A ring settlement chains fourteen of these, one per balance it moves.
type RingBalanceStep struct {
	AccountID     uint32        `json:"accountID"`
	TokenID       uint32        `json:"tokenID"`
	AccountUpdate AccountUpdate `json:"accountUpdate"`
	BalanceUpdate BalanceUpdate `json:"balanceUpdate"`
}

// FeeTokenLeaf is one fee-accounting-tree leaf: a token's aggregate
// collected-fee balance plus the wallet/ring-matcher sub-roots nested
// under it.
type FeeTokenLeaf struct {
	Balance          BigInt `json:"balance"`
	WalletsRoot      BigInt `json:"walletsRoot"`
	RingmatchersRoot BigInt `json:"ringmatchersRoot"`
}

// FeeTokenUpdate is a before/after fee-token-tree leaf transition.
type FeeTokenUpdate struct {
	Before FeeTokenLeaf `json:"before"`
	After  FeeTokenLeaf `json:"after"`
	Proof  Proof        `json:"proof"`
}

// RingSettlement is one trade-block element: two matched orders plus
// the miner's role and the settlement's own signatures.
type RingSettlement struct {
	OrderA Order `json:"orderA"`
	OrderB Order `json:"orderB"`

	MinerAccountID uint32    `json:"minerAccountID"`
	MinerPublicKey Point     `json:"minerPublicKey"`
	Fee            BigInt    `json:"fee"`
	Nonce          BigInt    `json:"nonce"`
	MinerSignature Signature `json:"minerSignature"`

	BurnRateA      BigInt `json:"burnRateA"`
	BurnRateB      BigInt `json:"burnRateB"`
	BurnRateProofA Proof  `json:"burnRateProofA"`
	BurnRateProofB Proof  `json:"burnRateProofB"`

	TradeHistoryUpdateA TradeHistoryUpdate `json:"tradeHistoryUpdateA"`
	TradeHistoryUpdateB TradeHistoryUpdate `json:"tradeHistoryUpdateB"`

	// Steps holds, in order: A's sold-token debit, A's bought-token
	// credit, A's fee-token debit, A's wallet/matcher/burn fee credits,
	// the same six for B, and A's margin credit. MinerFeeStep is the
	// fourteenth, separate touch: the ring matcher's own account.
	Steps        [13]RingBalanceStep `json:"steps"`
	MinerFeeStep RingBalanceStep     `json:"minerFeeStep"`

	FeeTokenUpdateA FeeTokenUpdate `json:"feeTokenUpdateA"`
	FeeTokenUpdateB FeeTokenUpdate `json:"feeTokenUpdateB"`
}

// Deposit is one deposit-block element.
type Deposit struct {
	Address    uint32        `json:"address"`
	PublicKeyX BigInt        `json:"publicKeyX"`
	PublicKeyY BigInt        `json:"publicKeyY"`
	WalletID   uint32        `json:"walletID"`
	Token      uint32        `json:"token"`
	Amount     BigInt        `json:"amount"`
	AccountUpdate AccountUpdate `json:"accountUpdate"`
}

// Withdrawal is one withdraw-block element.
type Withdrawal struct {
	Account       uint32        `json:"account"`
	Amount        BigInt        `json:"amount"`
	PublicKey     Point         `json:"publicKey"`
	Signature     Signature     `json:"signature"`
	AccountUpdate AccountUpdate `json:"accountUpdate"`
}

// Cancellation is one cancel-block element.
type Cancellation struct {
	Account             uint32             `json:"account"`
	OrderID              uint32             `json:"orderID"`
	PublicKey            Point              `json:"publicKey"`
	Signature            Signature          `json:"signature"`
	TradeHistoryUpdate   TradeHistoryUpdate `json:"tradeHistoryUpdate"`
	AccountUpdate        AccountUpdate      `json:"accountUpdate"`
}

// BlockInput is the top-level decode of a block JSON file. The
// type-specific slices are populated depending on BlockType; only the
// slice matching BlockType is required to have length == NumElements.
type BlockInput struct {
	BlockType         BlockType `json:"blockType"`
	NumElements       uint32    `json:"numElements"`
	StateID           uint32    `json:"stateID"`
	MerkleRootBefore  BigInt    `json:"merkleRootBefore"`
	MerkleRootAfter   BigInt    `json:"merkleRootAfter"`

	// Trade-only.
	BurnRateMerkleRoot BigInt           `json:"burnRateMerkleRoot,omitempty"`
	Timestamp          uint64           `json:"timestamp,omitempty"`
	OperatorAccountID  uint32           `json:"operatorAccountID,omitempty"`
	AccountsRootBefore BigInt           `json:"accountsRootBefore,omitempty"`
	FeesRootBefore     BigInt           `json:"feesRootBefore,omitempty"`
	FeesRootAfter      BigInt           `json:"feesRootAfter,omitempty"`
	OperatorUpdate     AccountUpdate    `json:"accountUpdate_O,omitempty"`
	OperatorBalanceUpdate BalanceUpdate `json:"balanceUpdate_O,omitempty"`
	RingSettlements    []RingSettlement `json:"ringSettlements,omitempty"`

	// Deposit-only.
	Deposits []Deposit `json:"deposits,omitempty"`

	// Withdraw-only.
	Withdrawals []Withdrawal `json:"withdrawals,omitempty"`

	// Cancel-only.
	TradingHistoryMerkleRootBefore BigInt         `json:"tradingHistoryMerkleRootBefore,omitempty"`
	TradingHistoryMerkleRootAfter  BigInt         `json:"tradingHistoryMerkleRootAfter,omitempty"`
	AccountsMerkleRoot             BigInt         `json:"accountsMerkleRoot,omitempty"`
	Cancels                        []Cancellation `json:"cancels,omitempty"`
}

// Decode parses raw JSON bytes into a BlockInput and validates its
// shape (spec.md §7 kind 2: "shape mismatch" surfaces as a single
// failure before any constraint is emitted).
func Decode(data []byte) (*BlockInput, error) {
	var b BlockInput
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errs.WrapWithRecovery(errs.ErrFieldMalformed, "decoding block input: %v", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks the shape invariants spec.md §7 kind 2 names:
// element-count agreement between NumElements and the type-specific
// slice, and a recognized BlockType.
func (b *BlockInput) Validate() error {
	if b.NumElements == 0 {
		return errs.ErrEmptyBlock
	}
	var got int
	switch b.BlockType {
	case BlockTypeTrade:
		got = len(b.RingSettlements)
	case BlockTypeDeposit:
		got = len(b.Deposits)
	case BlockTypeWithdraw:
		got = len(b.Withdrawals)
	case BlockTypeCancel:
		got = len(b.Cancels)
	default:
		return errs.ErrUnknownBlockType
	}
	if uint32(got) != b.NumElements {
		return errs.WrapWithRecovery(errs.ErrShapeMismatch, "blockType %s: numElements=%d but got %d elements", b.BlockType, b.NumElements, got)
	}
	return nil
}

// FieldAt reports a named "field missing at deep offset" error; helper
// for call sites that defensively check an expected sub-structure
// (spec.md §9: one named error, not a silent default).
func FieldAt(path string) error {
	return fmt.Errorf("%w: %s", errs.ErrFieldMissing, path)
}
