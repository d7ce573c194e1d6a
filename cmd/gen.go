package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/vrypan/cacipher/errs"
	"github.com/vrypan/cacipher/keyfile"
	"github.com/vrypan/cacipher/logging"
	"github.com/vrypan/cacipher/rule"
)

var (
	genKeyFile string
	genK       int
	genT       int
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a new key file",
	Long: `gen draws a fresh Z_left=1, Z_right>=0.5 rule table for the given
neighbourhood size and writes it, together with k and T, to a key file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if genT < 1 {
			return errs.New(errs.InvalidArg, "T must be >= 1, got %d", genT)
		}
		if genK < 1 || genK%2 == 0 {
			return errs.New(errs.InvalidArg, "K must be odd and >= 1, got %d", genK)
		}

		logging.Logger().Infof("generating a rule table for k=%d (up to 100 attempts)...", genK)
		tbl, err := rule.GenerateReversible(genK, seedFromTime())
		if err != nil {
			return err
		}
		logging.Logger().Infof("found a valid rule table: Z_right=%.4f", tbl.ZRight)

		fs := afero.NewOsFs()
		if err := keyfile.Save(fs, genKeyFile, genK, genT, tbl); err != nil {
			return err
		}
		fmt.Printf("wrote key file %q (k=%d, T=%d)\n", genKeyFile, genK, genT)
		return nil
	},
}

func init() {
	genCmd.Flags().StringVarP(&genKeyFile, "keyFile-name", "f", "key.shared", "key file to write")
	genCmd.Flags().IntVarP(&genK, "K", "k", 7, "neighbourhood size (odd, >= 1)")
	genCmd.Flags().IntVarP(&genT, "T", "T", 5, "step count (>= 1)")
}
