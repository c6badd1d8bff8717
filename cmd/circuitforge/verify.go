package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/spf13/cobra"

	"github.com/rollupforge/circuitforge/prover"
)

// CmdVerify checks a proof file against a block's recomputed public witness
// and the stored verifying key.
func CmdVerify() *cobra.Command {
	var keysDir, passphraseFile string

	cmd := &cobra.Command{
		Use:   "verify <block.json> <proof.json>",
		Short: "Verify a Groth16 proof against a block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := loadBlock(args[0])
			if err != nil {
				return err
			}
			proofData, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading proof file %q: %w", args[1], err)
			}
			var envelope prover.ProofEnvelope
			if err := json.Unmarshal(proofData, &envelope); err != nil {
				return fmt.Errorf("decoding proof file: %w", err)
			}
			proofBytes, err := envelope.DecodeProof()
			if err != nil {
				return fmt.Errorf("decoding proof: %w", err)
			}

			proof := groth16.NewProof(ecc.BN254)
			if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
				return fmt.Errorf("deserializing proof: %w", err)
			}

			passphrase, err := readPassphrase(passphraseFile)
			if err != nil {
				return err
			}
			mgr, err := newManager(keysDir, passphrase)
			if err != nil {
				return err
			}

			if err := mgr.Verify(cmd.Context(), input.BlockType, int(input.NumElements), input, proof); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "proof verified")
			return nil
		},
	}

	cmd.Flags().StringVar(&keysDir, flagKeysDir, defaultKeysDir, "directory the verifying key is stored in")
	cmd.Flags().StringVar(&passphraseFile, flagPassphraseFile, "", "file containing the key-decryption passphrase")
	cmd.MarkFlagRequired(flagPassphraseFile)

	return cmd
}
