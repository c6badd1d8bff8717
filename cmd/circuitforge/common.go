package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/rollupforge/circuitforge/block"
	"github.com/rollupforge/circuitforge/prover"
)

const (
	flagKeysDir        = "keys-dir"
	flagPassphraseFile = "passphrase-file"
	flagElements       = "elements"

	defaultKeysDir = "./keys"
)

func readPassphrase(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase file: %w", err)
	}
	return bytes.TrimRight(data, "\n"), nil
}

func newManager(keysDir string, passphrase []byte) (*prover.Manager, error) {
	storage, err := prover.NewFileKeyStorage(keysDir)
	if err != nil {
		return nil, fmt.Errorf("opening keys directory %q: %w", keysDir, err)
	}
	keygen := prover.NewKeyGenerator(passphrase, storage)
	return prover.NewManager(keygen), nil
}

func loadBlock(path string) (*block.BlockInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading block file %q: %w", path, err)
	}
	return block.Decode(data)
}
