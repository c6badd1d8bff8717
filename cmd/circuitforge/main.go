// Command circuitforge compiles, proves, and verifies the rollup block
// circuits: createkeys, prove, and verify, one subcommand each, operating
// on the block JSON files block.Decode understands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rollupforge/circuitforge/errs"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		if recoverable, ok := err.(*errs.ErrorWithRecovery); ok {
			fmt.Fprintf(os.Stderr, "error: %v\nrecovery: %s\n", recoverable.Err, recoverable.Recovery)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		fmt.Fprintln(os.Stdout, "block is not valid")
		os.Exit(1)
	}
}

// NewRootCmd builds the circuitforge command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:                        "circuitforge",
		Short:                      "Groth16 circuit builder and prover for rollup blocks",
		SuggestionsMinimumDistance: 2,
		SilenceUsage:               true,
	}

	root.AddCommand(
		CmdCreateKeys(),
		CmdProve(),
		CmdVerify(),
		CmdVersion(),
	)
	return root
}
