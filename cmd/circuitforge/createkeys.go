package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CmdCreateKeys compiles the circuit matching the given block's type and
// element count, and runs Groth16 setup, persisting the resulting key pair.
func CmdCreateKeys() *cobra.Command {
	var keysDir, passphraseFile string

	cmd := &cobra.Command{
		Use:   "createkeys <block.json>",
		Short: "Compile the circuit for a block and generate its proving/verifying key pair",
		Args:  cobra.ExactArgs(1),
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
			if err := mgr.CreateKeys(cmd.Context(), input.BlockType, int(input.NumElements)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "keys generated for %s (N=%d) under %s\n", input.BlockType, input.NumElements, keysDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&keysDir, flagKeysDir, defaultKeysDir, "directory to store the encrypted key pair")
	cmd.Flags().StringVar(&passphraseFile, flagPassphraseFile, "", "file containing the key-encryption passphrase")
	cmd.MarkFlagRequired(flagPassphraseFile)

	return cmd
}
