package prover

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
)

// encodeKeyPair/decodeKeyPair give EncryptedKeyPair a stable on-disk
// encoding independent of the in-memory struct layout; JSON's base64
// handling of []byte fields is sufficient since key material, once
// encrypted, is opaque bytes regardless of encoding.
func encodeKeyPair(pair *EncryptedKeyPair) ([]byte, error) {
	return json.Marshal(pair)
}

func decodeKeyPair(data []byte) (*EncryptedKeyPair, error) {
	var pair EncryptedKeyPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// ProofEnvelope is the on-disk shape of a prove command's output: a
// base64-encoded Groth16 proof plus the public witness it was produced
// against. The verify command reads only the proof; it rebuilds the public
// witness from the block file rather than trusting this field.
type ProofEnvelope struct {
	Proof         string `json:"proof"`
	PublicWitness string `json:"publicWitness"`
}

// EncodeProofEnvelope serializes proof and publicWitness via their WriteTo
// methods into a ProofEnvelope ready for JSON marshaling.
func EncodeProofEnvelope(proofWriteTo, witnessWriteTo func(io.Writer) (int64, error)) (*ProofEnvelope, error) {
	proofBytes, err := writeToBytes(proofWriteTo)
	if err != nil {
		return nil, err
	}
	witnessBytes, err := writeToBytes(witnessWriteTo)
	if err != nil {
		return nil, err
	}
	return &ProofEnvelope{
		Proof:         base64.StdEncoding.EncodeToString(proofBytes),
		PublicWitness: base64.StdEncoding.EncodeToString(witnessBytes),
	}, nil
}

// DecodeProof base64-decodes the envelope's proof field into raw bytes for
// ReadFrom.
func (e *ProofEnvelope) DecodeProof() ([]byte, error) {
	return base64.StdEncoding.DecodeString(e.Proof)
}

func writeToBytes(writeTo func(io.Writer) (int64, error)) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := writeTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
