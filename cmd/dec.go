package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/vrypan/cacipher/bitstring"
	"github.com/vrypan/cacipher/ca"
	"github.com/vrypan/cacipher/diagnostics"
	"github.com/vrypan/cacipher/errs"
	"github.com/vrypan/cacipher/image"
	"github.com/vrypan/cacipher/keyfile"
	"github.com/vrypan/cacipher/logging"
	"github.com/vrypan/cacipher/mask"
)

var (
	decKeyFile     string
	decSeed        int64
	decImage       string
	decOutput      string
	decVerboseSave bool
	decVerbose     bool
)

var decCmd = &cobra.Command{
	Use:   "dec",
	Short: "Decrypt a greyscale image",
	Long: `dec loads a key file and a ciphertext greyscale PNG, runs the CA
forwards T steps, XORs the result with the EQaDG mask, and writes the
recovered plaintext as a greyscale PNG. The mask seed used at encryption
time must be supplied explicitly; dec never guesses it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.SetVerbose(decVerbose)
		fs := afero.NewOsFs()

		kf, err := keyfile.Load(fs, decKeyFile)
		if err != nil {
			return err
		}

		if decSeed <= 0 {
			return errs.New(errs.InvalidArg, "dec requires an explicit mask seed -N/--seed > 0 (the one chosen at encryption time)")
		}
		seed := mask.Seed(decSeed)

		bits, dims, err := image.ReadGreyscale(fs, decImage)
		if err != nil {
			return err
		}

		e, err := ca.New(kf.K, kf.T)
		if err != nil {
			return err
		}
		if err := e.SetRule(kf.R); err != nil {
			return err
		}
		e.SetMaskSeed(seed)

		onStep := func(step int, tape bitstring.Bits) {}
		if decVerboseSave {
			onStep = func(step int, tape bitstring.Bits) {
				name := fmt.Sprintf("dec%d.png", step)
				if err := image.WriteGreyscale(fs, name, tape, dims); err != nil {
					logging.Logger().Warnf("saving intermediate step image %q: %v", name, err)
				}
			}
		}

		plaintext, err := ca.Decrypt(e, bits, onStep)
		if err != nil {
			return err
		}

		if err := image.WriteGreyscale(fs, decOutput, plaintext, dims); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%s)\n", decOutput, humanize.Bytes(uint64(len(plaintext)/8)))

		if decVerbose {
			report, err := diagnostics.Analyze(plaintext)
			if err != nil {
				return err
			}
			logging.Logger().Infof("plaintext entropy: %.4f bits/symbol, mean=%.4f stddev=%.4f",
				report.ShannonBits, report.Mean, report.StdDev)
		}
		return nil
	},
}

func init() {
	decCmd.Flags().StringVarP(&decKeyFile, "keyFile-name", "f", "key.shared", "key file to read")
	decCmd.Flags().Int64VarP(&decSeed, "seed", "N", 0, "mask seed used at encryption time (required, > 0)")
	decCmd.Flags().StringVarP(&decImage, "BW", "B", "encrypted.png", "input ciphertext image")
	decCmd.Flags().StringVarP(&decOutput, "output-file", "O", "decrypted.png", "output image")
	decCmd.Flags().BoolVarP(&decVerboseSave, "verbose-save", "S", false, "save each intermediate CA step as dec<i>.png")
	decCmd.Flags().BoolVarP(&decVerbose, "verbose", "V", false, "verbose progress and entropy diagnostics")
}
