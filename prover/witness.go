package prover

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/signature/eddsa"

	"github.com/rollupforge/circuitforge/block"
	"github.com/rollupforge/circuitforge/circuits"
	"github.com/rollupforge/circuitforge/errs"
)

// BuildAssignment translates a decoded block input into the gnark
// assignment struct for blockType at width n. The shape of input's
// type-specific slice must already have been checked against n by
// block.BlockInput.Validate.
func BuildAssignment(blockType block.BlockType, n int, input *block.BlockInput) (frontend.Circuit, error) {
	switch blockType {
	case block.BlockTypeTrade:
		return buildTradeAssignment(n, input)
	case block.BlockTypeDeposit:
		return buildDepositAssignment(n, input)
	case block.BlockTypeWithdraw:
		return buildWithdrawAssignment(n, input)
	case block.BlockTypeCancel:
		return buildCancelAssignment(n, input)
	default:
		return nil, errs.ErrUnknownBlockType
	}
}

func fv(b block.BigInt) frontend.Variable {
	if b.Int == nil {
		return frontend.Variable(0)
	}
	return frontend.Variable(new(big.Int).Set(b.Int))
}

func boolVar(b bool) frontend.Variable {
	if b {
		return frontend.Variable(1)
	}
	return frontend.Variable(0)
}

func point(p block.Point) twistededwards.Point {
	return twistededwards.Point{X: fv(p.X), Y: fv(p.Y)}
}

func publicKey(p block.Point) eddsa.PublicKey {
	return eddsa.PublicKey{A: point(p)}
}

func signature(s block.Signature) eddsa.Signature {
	return eddsa.Signature{R: point(s.R), S: fv(s.S)}
}

func merklePath(p block.Proof, depth int) circuits.MerklePath {
	path := circuits.NewMerklePath(depth)
	for i := 0; i < depth && i < len(p.Data); i++ {
		path.Siblings[i] = fv(p.Data[i])
	}
	return path
}

func accountLeafFields(l block.AccountLeaf) circuits.AccountLeafFields {
	return circuits.AccountLeafFields{
		PublicKeyX:   fv(l.PublicKeyX),
		PublicKeyY:   fv(l.PublicKeyY),
		WalletID:     frontend.Variable(l.WalletID),
		Nonce:        fv(l.Nonce),
		BalancesRoot: fv(l.BalancesRoot),
	}
}

func balanceLeafFields(l block.BalanceLeaf) circuits.BalanceLeafFields {
	return circuits.BalanceLeafFields{Balance: fv(l.Balance), TradingHistoryRoot: fv(l.TradingHistoryRoot)}
}

func tradeHistoryLeafFields(l block.TradeHistoryLeaf) circuits.TradeHistoryLeafFields {
	return circuits.TradeHistoryLeafFields{Filled: fv(l.Filled), Cancelled: boolVar(l.Cancelled)}
}

// accountBalanceStep builds one AccountBalanceStep from an account update and
// a balance update sharing the same account, tokenID and Merkle depths.
func accountBalanceStep(accountID uint32, acct block.AccountUpdate, tokenID uint32, bal block.BalanceUpdate) circuits.AccountBalanceStep {
	return circuits.AccountBalanceStep{
		AccountPath:        merklePath(acct.Proof, circuits.TreeDepthAccounts),
		AccountID:          frontend.Variable(accountID),
		AccountBefore:      accountLeafFields(acct.Before),
		AccountAfterFields: accountLeafFields(acct.After),
		BalancesPath:       merklePath(bal.Proof, circuits.TreeDepthBalances),
		TokenID:            frontend.Variable(tokenID),
		BalanceBefore:      balanceLeafFields(bal.Before),
		BalanceAfter:       balanceLeafFields(bal.After),
	}
}

// ringBalanceStep builds an AccountBalanceStep from one wire RingBalanceStep.
func ringBalanceStep(s block.RingBalanceStep) circuits.AccountBalanceStep {
	return accountBalanceStep(s.AccountID, s.AccountUpdate, s.TokenID, s.BalanceUpdate)
}

func feeTokenLeafFields(l block.FeeTokenLeaf) circuits.FeeTokenLeafFields {
	return circuits.FeeTokenLeafFields{
		Balance:          fv(l.Balance),
		WalletsRoot:      fv(l.WalletsRoot),
		RingmatchersRoot: fv(l.RingmatchersRoot),
	}
}

func feeTokenStep(tokenID uint32, u block.FeeTokenUpdate) circuits.FeeTokenStep {
	return circuits.FeeTokenStep{
		Path:    merklePath(u.Proof, circuits.TreeDepthTokens),
		TokenID: frontend.Variable(tokenID),
		Before:  feeTokenLeafFields(u.Before),
		After:   feeTokenLeafFields(u.After),
	}
}

func buildOrder(o block.Order) circuits.Order {
	return circuits.Order{
		WalletID: frontend.Variable(o.WalletID), OrderID: frontend.Variable(o.OrderID),
		AccountS: frontend.Variable(o.AccountS), AccountB: frontend.Variable(o.AccountB), AccountF: frontend.Variable(o.AccountF),
		TokenS: frontend.Variable(o.TokenS), TokenB: frontend.Variable(o.TokenB), TokenF: frontend.Variable(o.TokenF),
		AmountS: fv(o.AmountS), AmountB: fv(o.AmountB), AmountF: fv(o.AmountF),
		WalletF: frontend.Variable(o.WalletF), MinerF: frontend.Variable(o.MinerF), MinerS: frontend.Variable(o.MinerS),
		WalletSplitPercentage: frontend.Variable(o.WalletSplitPercentage),
		WaiveFeePercentage:    frontend.Variable(o.WaiveFeePercentage),
		ValidSince:            frontend.Variable(o.ValidSince),
		ValidUntil:            frontend.Variable(o.ValidUntil),
		AllOrNone:             boolVar(o.AllOrNone),
		OwnerPublicKey:        publicKey(o.PublicKey),
		OwnerSignature:        signature(o.Signature),
		FilledBefore:          fv(o.FilledBefore),
		Cancelled:             boolVar(o.Cancelled),
		BalanceS:              fv(o.BalanceS),
		BalanceB:              fv(o.BalanceB),
		BalanceF:              fv(o.BalanceF),
	}
}

// buildRingSteps maps a ring settlement's wire RingBalanceSteps onto the
// thirteen generic AccountBalanceSteps circuits.RingSettlement expects, in
// the fixed order circuits.RingSettlement.Define assigns them meaning.
func buildRingSteps(rs block.RingSettlement) [13]circuits.AccountBalanceStep {
	var steps [13]circuits.AccountBalanceStep
	for i, s := range rs.Steps {
		steps[i] = ringBalanceStep(s)
	}
	return steps
}

func buildTradeAssignment(n int, input *block.BlockInput) (*circuits.TradeCircuit, error) {
	c := circuits.NewTradeCircuit(n)
	c.StateID = frontend.Variable(input.StateID)
	c.Timestamp = frontend.Variable(input.Timestamp)
	c.OperatorAccountID = frontend.Variable(input.OperatorAccountID)
	c.BurnRateRoot = fv(input.BurnRateMerkleRoot)
	c.AccountsRootBefore = fv(input.AccountsRootBefore)
	c.AccountsRootAfter = fv(input.MerkleRootAfter)
	c.FeesRootBefore = fv(input.FeesRootBefore)
	c.FeesRootAfter = fv(input.FeesRootAfter)
	c.TradingHistoryRootBefore = fv(input.MerkleRootBefore)

	for i, rs := range input.RingSettlements {
		c.Rings[i] = circuits.RingSettlement{
			OrderA: buildOrder(rs.OrderA),
			OrderB: buildOrder(rs.OrderB),

			MinerAccountID: frontend.Variable(rs.MinerAccountID),
			MinerPublicKey: publicKey(rs.MinerPublicKey),
			OperatorFee:    fv(rs.Fee),
			Nonce:          fv(rs.Nonce),

			MinerSignature:   signature(rs.MinerSignature),
			WalletASignature: signature(rs.OrderA.Signature),
			WalletBSignature: signature(rs.OrderB.Signature),

			BurnRatePathA:    merklePath(rs.BurnRateProofA, circuits.TreeDepthTokens),
			BurnRatePathB:    merklePath(rs.BurnRateProofB, circuits.TreeDepthTokens),
			BurnRateTokenIDA: frontend.Variable(rs.OrderA.TokenS),
			BurnRateTokenIDB: frontend.Variable(rs.OrderB.TokenS),
			BurnRateA:        fv(rs.BurnRateA),
			BurnRateB:        fv(rs.BurnRateB),
			BurnRateRoot:     fv(input.BurnRateMerkleRoot),

			TradeHistoryPathA:    merklePath(rs.TradeHistoryUpdateA.Proof, circuits.TreeDepthTradingHistory),
			TradeHistoryPathB:    merklePath(rs.TradeHistoryUpdateB.Proof, circuits.TreeDepthTradingHistory),
			TradeHistoryAddressA: frontend.Variable(rs.OrderA.OrderID),
			TradeHistoryAddressB: frontend.Variable(rs.OrderB.OrderID),

			Steps:        buildRingSteps(rs),
			MinerFeeStep: ringBalanceStep(rs.MinerFeeStep),

			FeeTokenStepA: feeTokenStep(rs.OrderA.TokenF, rs.FeeTokenUpdateA),
			FeeTokenStepB: feeTokenStep(rs.OrderB.TokenF, rs.FeeTokenUpdateB),
		}
	}

	c.OperatorStep = accountBalanceStep(input.OperatorAccountID, input.OperatorUpdate, circuits.TokenIDLRC, input.OperatorBalanceUpdate)
	return c, nil
}

func buildDepositAssignment(n int, input *block.BlockInput) (*circuits.DepositCircuit, error) {
	c := circuits.NewDepositCircuit(n)
	c.StateID = frontend.Variable(input.StateID)
	c.AccountsRootBefore = fv(input.MerkleRootBefore)
	c.AccountsRootAfter = fv(input.MerkleRootAfter)

	for i, d := range input.Deposits {
		step := accountBalanceStep(d.Address, d.AccountUpdate, d.Token, block.BalanceUpdate{
			Before: block.BalanceLeaf{Balance: block.BigIntFromInt64(0)},
			After:  block.BalanceLeaf{Balance: d.Amount},
			Proof:  d.AccountUpdate.Proof,
		})
		c.Deposits[i] = circuits.Deposit{Step: step, Amount: fv(d.Amount)}
	}
	return c, nil
}

func buildWithdrawAssignment(n int, input *block.BlockInput) (*circuits.WithdrawCircuit, error) {
	c := circuits.NewWithdrawCircuit(n)
	c.StateID = frontend.Variable(input.StateID)
	c.AccountsRootBefore = fv(input.MerkleRootBefore)
	c.AccountsRootAfter = fv(input.MerkleRootAfter)

	for i, w := range input.Withdrawals {
		step := accountBalanceStep(w.Account, w.AccountUpdate, 0, block.BalanceUpdate{Proof: w.AccountUpdate.Proof})
		c.Withdrawals[i] = circuits.Withdrawal{
			Step:           step,
			Amount:         fv(w.Amount),
			Pad:            frontend.Variable(0),
			OwnerPublicKey: publicKey(w.PublicKey),
			OwnerSignature: signature(w.Signature),
		}
	}
	return c, nil
}

func buildCancelAssignment(n int, input *block.BlockInput) (*circuits.CancelCircuit, error) {
	c := circuits.NewCancelCircuit(n)
	c.StateID = frontend.Variable(input.StateID)
	c.AccountsRoot = fv(input.AccountsMerkleRoot)
	c.TradingHistoryRootBefore = fv(input.TradingHistoryMerkleRootBefore)
	c.TradingHistoryRootAfter = fv(input.TradingHistoryMerkleRootAfter)

	for i, cancel := range input.Cancels {
		c.Cancels[i] = circuits.Cancel{
			AccountPath:         merklePath(cancel.AccountUpdate.Proof, circuits.TreeDepthAccounts),
			AccountID:           frontend.Variable(cancel.Account),
			Account:             accountLeafFields(cancel.AccountUpdate.Before),
			OrderID:             frontend.Variable(cancel.OrderID),
			Pad:                 frontend.Variable(0),
			TradeHistoryPath:    merklePath(cancel.TradeHistoryUpdate.Proof, circuits.TreeDepthTradingHistory),
			TradeHistoryAddress: frontend.Variable(cancel.OrderID),
			FilledBefore:        fv(cancel.TradeHistoryUpdate.Before.Filled),
			CancelledBefore:     boolVar(cancel.TradeHistoryUpdate.Before.Cancelled),
			OwnerPublicKey:      publicKey(cancel.PublicKey),
			OwnerSignature:      signature(cancel.Signature),
		}
	}
	return c, nil
}
