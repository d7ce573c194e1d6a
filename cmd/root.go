// Package cmd implements cacipher's CLI: gen, enc, dec, bench, version.
// Structured as cobra subcommands, one per operation, so a cobra invocation
// names exactly one of them and the mutual exclusion between generating a
// key, encrypting, and decrypting is structural rather than flag-checked.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vrypan/cacipher/errs"
)

var rootCmd = &cobra.Command{
	Use:   "cacipher",
	Short: "Reversible cellular-automaton block cipher",
	Long: `cacipher encrypts and decrypts greyscale images with a reversible
1D binary cellular automaton, using the Wuensche & Lesser chain-rule
construction to run the CA backwards for encryption and forwards for
decryption.`,
}

// Execute runs the root command, rendering any returned error as
// "ERROR : <msg>" on stderr and exiting non-zero.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR : %s\n", renderError(err))
		os.Exit(1)
	}
	return nil
}

// renderError unwraps a *errs.Error down to its Kind-prefixed message;
// anything else (cobra's own flag-parsing errors) is printed as-is.
func renderError(err error) string {
	if e, ok := err.(*errs.Error); ok {
		return e.Error()
	}
	return err.Error()
}

func init() {
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(encCmd)
	rootCmd.AddCommand(decCmd)
	rootCmd.AddCommand(versionCmd)
}
