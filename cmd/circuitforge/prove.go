package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rollupforge/circuitforge/prover"
)

// CmdProve assigns the witness for a block, runs the Groth16 prover, and
// writes the resulting proof and public witness to an output file.
func CmdProve() *cobra.Command {
	var keysDir, passphraseFile string

	cmd := &cobra.Command{
		Use:   "prove <block.json> <out.json>",
		Short: "Generate a Groth16 proof for a block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := loadBlock(args[0])
			if err != nil {
				return err
			}
			passphrase, err := readPassphrase(passphraseFile)
			if err != nil {
				return err
			}
			mgr, err := newManager(keysDir, passphrase)
			if err != nil {
				return err
			}

			proof, publicWitness, err := mgr.Prove(cmd.Context(), input.BlockType, int(input.NumElements), input)
			if err != nil {
				return err
			}

			envelope, err := prover.EncodeProofEnvelope(proof.WriteTo, publicWitness.WriteTo)
			if err != nil {
				return fmt.Errorf("encoding proof: %w", err)
			}
			data, err := json.MarshalIndent(envelope, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling proof envelope: %w", err)
			}
			if err := os.WriteFile(args[1], data, 0o644); err != nil {
				return fmt.Errorf("writing proof file %q: %w", args[1], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "proof written to %s\n", args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&keysDir, flagKeysDir, defaultKeysDir, "directory the proving key is stored in")
	cmd.Flags().StringVar(&passphraseFile, flagPassphraseFile, "", "file containing the key-decryption passphrase")
	cmd.MarkFlagRequired(flagPassphraseFile)

	return cmd
}
