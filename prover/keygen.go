package prover

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"golang.org/x/crypto/argon2"

	"github.com/rollupforge/circuitforge/errs"
)

// KeyMetadata records what a generated key pair is for and how it was
// protected at rest; it is serialized alongside the encrypted key material
// so createkeys output is self-describing.
type KeyMetadata struct {
	KeyID           string
	CircuitName     string
	NumElements     int
	CreatedAt       time.Time
	Algorithm       string
	Curve           string
	ConstraintCount int
	PublicInputs    int
	EncryptionAlg   string
	KDFAlgorithm    string
}

// EncryptedKeyPair is the on-disk shape of a proving/verifying key pair:
// both keys AES-256-GCM-encrypted under an Argon2id-derived key, plus the
// metadata needed to decrypt and describe them.
type EncryptedKeyPair struct {
	Metadata    KeyMetadata
	EncryptedPK []byte
	EncryptedVK []byte
	Salt        []byte
	NoncePK     []byte
	NonceVK     []byte
}

// KeyGenerator runs Groth16 setup for a compiled circuit and persists the
// resulting keys, encrypted under a caller-supplied passphrase, through a
// KeyStorage backend.
type KeyGenerator struct {
	passphrase []byte
	storage    KeyStorage
}

// NewKeyGenerator builds a KeyGenerator. passphrase is the secret the
// caller must also supply to LoadKeys; it is never itself persisted.
func NewKeyGenerator(passphrase []byte, storage KeyStorage) *KeyGenerator {
	return &KeyGenerator{passphrase: passphrase, storage: storage}
}

// GenerateKeys compiles circuit, runs Groth16 setup, and stores the
// encrypted key pair under keyID.
func (kg *KeyGenerator) GenerateKeys(ctx context.Context, keyID, circuitName string, numElements int, circuit frontend.Circuit) (*EncryptedKeyPair, error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, errs.WrapWithRecovery(errs.ErrCompileFailed, "compiling %s circuit (N=%d): %v", circuitName, numElements, err)
	}

	pk, vk, err := groth16Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup: %w", err)
	}

	pkBytes, err := serialize(pk.WriteTo)
	if err != nil {
		return nil, fmt.Errorf("serializing proving key: %w", err)
	}
	vkBytes, err := serialize(vk.WriteTo)
	if err != nil {
		return nil, fmt.Errorf("serializing verifying key: %w", err)
	}

	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	key := deriveKey(kg.passphrase, salt)
	defer zero(key)

	encPK, noncePK, err := encrypt(pkBytes, key)
	if err != nil {
		return nil, fmt.Errorf("encrypting proving key: %w", err)
	}
	encVK, nonceVK, err := encrypt(vkBytes, key)
	if err != nil {
		return nil, fmt.Errorf("encrypting verifying key: %w", err)
	}

	pair := &EncryptedKeyPair{
		Metadata: KeyMetadata{
			KeyID:           keyID,
			CircuitName:     circuitName,
			NumElements:     numElements,
			CreatedAt:       time.Now().UTC(),
			Algorithm:       "groth16",
			Curve:           "bn254",
			ConstraintCount: ccs.GetNbConstraints(),
			PublicInputs:    ccs.GetNbPublicVariables(),
			EncryptionAlg:   "AES-256-GCM",
			KDFAlgorithm:    "Argon2id",
		},
		EncryptedPK: encPK,
		EncryptedVK: encVK,
		Salt:        salt,
		NoncePK:     noncePK,
		NonceVK:     nonceVK,
	}

	data, err := encodeKeyPair(pair)
	if err != nil {
		return nil, fmt.Errorf("encoding key pair: %w", err)
	}
	if err := kg.storage.Store(ctx, keyID, data); err != nil {
		return nil, fmt.Errorf("storing key pair: %w", err)
	}
	return pair, nil
}

// LoadKeys decrypts and deserializes the proving and verifying keys stored
// under keyID.
func (kg *KeyGenerator) LoadKeys(ctx context.Context, keyID string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	data, err := kg.storage.Load(ctx, keyID)
	if err != nil {
		return nil, nil, err
	}
	pair, err := decodeKeyPair(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding key pair: %w", err)
	}

	key := deriveKey(kg.passphrase, pair.Salt)
	defer zero(key)

	pkBytes, err := decrypt(pair.EncryptedPK, key, pair.NoncePK)
	if err != nil {
		return nil, nil, errs.WrapWithRecovery(errs.ErrKeyDecryptFailed, "decrypting proving key for %s: %v", keyID, err)
	}
	vkBytes, err := decrypt(pair.EncryptedVK, key, pair.NonceVK)
	if err != nil {
		return nil, nil, errs.WrapWithRecovery(errs.ErrKeyDecryptFailed, "decrypting verifying key for %s: %v", keyID, err)
	}

	pk := groth16.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(bytes.NewReader(pkBytes)); err != nil {
		return nil, nil, fmt.Errorf("deserializing proving key: %w", err)
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
		return nil, nil, fmt.Errorf("deserializing verifying key: %w", err)
	}
	return pk, vk, nil
}

func deriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func encrypt(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, err
	}
	ciphertext = gcm.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

func decrypt(ciphertext, key, nonce []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func serialize(writeTo func(io.Writer) (int64, error)) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := writeTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
