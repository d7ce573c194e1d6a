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
	encKeyFile     string
	encSeed        int64
	encImage       string
	encOutput      string
	encVerboseSave bool
	encVerbose     bool
)

var encCmd = &cobra.Command{
	Use:   "enc",
	Short: "Encrypt a greyscale image",
	Long: `enc loads a key file and a greyscale PNG, XORs the plaintext with
the EQaDG mask, runs the CA backwards T steps, and writes the resulting
ciphertext as a greyscale PNG.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.SetVerbose(encVerbose)
		fs := afero.NewOsFs()

		kf, err := keyfile.Load(fs, encKeyFile)
		if err != nil {
			return err
		}

		if encSeed == 0 {
			return errs.New(errs.InvalidArg, "mask seed -N/--seed of 0 is reserved; use a nonzero value or a negative value to choose one at random")
		}

		var seed mask.Seed
		if encSeed < 0 {
			seed, err = randomMaskSeed()
			if err != nil {
				return err
			}
			fmt.Printf("chose random mask seed: %d (record this; dec requires it)\n", seed)
		} else {
			seed = mask.Seed(encSeed)
		}

		bits, dims, err := image.ReadGreyscale(fs, encImage)
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
		if encVerboseSave {
			onStep = func(step int, tape bitstring.Bits) {
				name := fmt.Sprintf("enc%d.png", step)
				if err := image.WriteGreyscale(fs, name, tape, dims); err != nil {
					logging.Logger().Warnf("saving intermediate step image %q: %v", name, err)
				}
			}
		}

		ciphertext, err := ca.Encrypt(e, bits, onStep)
		if err != nil {
			return err
		}

		if err := image.WriteGreyscale(fs, encOutput, ciphertext, dims); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%s)\n", encOutput, humanize.Bytes(uint64(len(ciphertext)/8)))

		if encVerbose {
			report, err := diagnostics.Analyze(ciphertext)
			if err != nil {
				return err
			}
			logging.Logger().Infof("ciphertext entropy: %.4f bits/symbol, mean=%.4f stddev=%.4f",
				report.ShannonBits, report.Mean, report.StdDev)
		}
		return nil
	},
}

func init() {
	encCmd.Flags().StringVarP(&encKeyFile, "keyFile-name", "f", "key.shared", "key file to read")
	encCmd.Flags().Int64VarP(&encSeed, "seed", "N", 0, "mask seed (>0 fixed, <0 random, 0 forbidden)")
	encCmd.Flags().StringVarP(&encImage, "BW", "B", "img.png", "input greyscale image")
	encCmd.Flags().StringVarP(&encOutput, "output-file", "O", "encrypted.png", "output image")
	encCmd.Flags().BoolVarP(&encVerboseSave, "verbose-save", "S", false, "save each intermediate CA step as enc<i>.png")
	encCmd.Flags().BoolVarP(&encVerbose, "verbose", "V", false, "verbose progress and entropy diagnostics")
}
