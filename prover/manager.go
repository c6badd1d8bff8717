package prover

import (
	"context"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/rollupforge/circuitforge/block"
	"github.com/rollupforge/circuitforge/circuits"
	"github.com/rollupforge/circuitforge/errs"
)

// groth16Setup/groth16Verify are swappable so tests can stub the heavy
// cryptographic operations without running a real trusted setup.
var groth16Setup = groth16.Setup
var groth16Verify = groth16.Verify

// SetGroth16Setup allows tests to stub key generation for fast execution.
func SetGroth16Setup(fn func(constraint.ConstraintSystem) (groth16.ProvingKey, groth16.VerifyingKey, error)) {
	groth16Setup = fn
}

// Groth16SetupFunc returns the currently installed setup function, for tests
// that need to restore it afterward.
func Groth16SetupFunc() func(constraint.ConstraintSystem) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	return groth16Setup
}

// SetGroth16Verify allows tests to stub proof verification.
func SetGroth16Verify(fn func(groth16.Proof, groth16.VerifyingKey, witness.Witness, ...backend.VerifierOption) error) {
	groth16Verify = fn
}

// Groth16VerifyFunc returns the currently installed verify function, for
// tests that need to restore it afterward.
func Groth16VerifyFunc() func(groth16.Proof, groth16.VerifyingKey, witness.Witness, ...backend.VerifierOption) error {
	return groth16Verify
}

// circuitKey identifies a compiled circuit by block type and element count;
// a circuit compiled for N=2 cannot serve a block with N=3, so every
// distinct N gets its own constraint system and key pair.
type circuitKey struct {
	blockType block.BlockType
	n         int
}

func (k circuitKey) String() string {
	return fmt.Sprintf("%s_%d", k.blockType, k.n)
}

// Manager compiles, caches, and serves the constraint systems for every
// (block type, N) pair requested so far, and drives Groth16 setup, proving
// and verification through a KeyGenerator.
type Manager struct {
	mu       sync.RWMutex
	compiled map[circuitKey]constraint.ConstraintSystem
	keygen   *KeyGenerator
}

// NewManager builds a Manager backed by keygen for key persistence.
func NewManager(keygen *KeyGenerator) *Manager {
	return &Manager{compiled: make(map[circuitKey]constraint.ConstraintSystem), keygen: keygen}
}

func newCircuit(blockType block.BlockType, n int) (frontend.Circuit, error) {
	switch blockType {
	case block.BlockTypeTrade:
		return circuits.NewTradeCircuit(n), nil
	case block.BlockTypeDeposit:
		return circuits.NewDepositCircuit(n), nil
	case block.BlockTypeWithdraw:
		return circuits.NewWithdrawCircuit(n), nil
	case block.BlockTypeCancel:
		return circuits.NewCancelCircuit(n), nil
	default:
		return nil, errs.ErrUnknownBlockType
	}
}

// Compile returns the cached constraint system for (blockType, n), compiling
// it on first use. Compilation baking in N is what spec calls the
// constrained(N) state: one compiled circuit serves every block of that
// size from then on.
func (m *Manager) Compile(blockType block.BlockType, n int) (constraint.ConstraintSystem, error) {
	key := circuitKey{blockType, n}

	m.mu.RLock()
	if ccs, ok := m.compiled[key]; ok {
		m.mu.RUnlock()
		return ccs, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if ccs, ok := m.compiled[key]; ok {
		return ccs, nil
	}

	circuit, err := newCircuit(blockType, n)
	if err != nil {
		return nil, err
	}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, errs.WrapWithRecovery(errs.ErrCompileFailed, "compiling %s (N=%d): %v", blockType, n, err)
	}
	m.compiled[key] = ccs
	return ccs, nil
}

// CreateKeys compiles the circuit for (blockType, n) if needed and runs
// Groth16 setup, persisting the resulting key pair under a deterministic
// key id.
func (m *Manager) CreateKeys(ctx context.Context, blockType block.BlockType, n int) error {
	key := circuitKey{blockType, n}
	exists, err := m.keygen.storage.Exists(ctx, key.String())
	if err != nil {
		return err
	}
	if exists {
		return errs.ErrKeyAlreadyExists
	}

	circuit, err := newCircuit(blockType, n)
	if err != nil {
		return err
	}
	if _, err := m.Compile(blockType, n); err != nil {
		return err
	}
	_, err = m.keygen.GenerateKeys(ctx, key.String(), blockType.String(), n, circuit)
	return err
}

// Prove compiles (blockType, n), assigns the witness from input, runs the
// Groth16 prover against the stored proving key, and returns the proof.
func (m *Manager) Prove(ctx context.Context, blockType block.BlockType, n int, input *block.BlockInput) (groth16.Proof, witness.Witness, error) {
	ccs, err := m.Compile(blockType, n)
	if err != nil {
		return nil, nil, err
	}

	assignment, err := BuildAssignment(blockType, n, input)
	if err != nil {
		return nil, nil, err
	}

	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("assigning witness: %w", err)
	}

	pk, _, err := m.keygen.LoadKeys(ctx, circuitKey{blockType, n}.String())
	if err != nil {
		return nil, nil, err
	}

	proof, err := groth16.Prove(ccs, pk, fullWitness)
	if err != nil {
		return nil, nil, errs.WrapWithRecovery(errs.ErrUnsatisfiedConstraint, "proving %s (N=%d): %v", blockType, n, err)
	}

	publicWitness, err := fullWitness.Public()
	if err != nil {
		return nil, nil, fmt.Errorf("extracting public witness: %w", err)
	}
	return proof, publicWitness, nil
}

// Verify checks proof against the stored verifying key and the public
// witness derived from input.
func (m *Manager) Verify(ctx context.Context, blockType block.BlockType, n int, input *block.BlockInput, proof groth16.Proof) error {
	assignment, err := BuildAssignment(blockType, n, input)
	if err != nil {
		return err
	}
	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return fmt.Errorf("assigning witness: %w", err)
	}
	publicWitness, err := fullWitness.Public()
	if err != nil {
		return fmt.Errorf("extracting public witness: %w", err)
	}

	_, vk, err := m.keygen.LoadKeys(ctx, circuitKey{blockType, n}.String())
	if err != nil {
		return err
	}

	if err := groth16Verify(proof, vk, publicWitness); err != nil {
		return errs.WrapWithRecovery(errs.ErrProofVerifyFailed, "verifying %s (N=%d): %v", blockType, n, err)
	}
	return nil
}
