package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
	GitRepo = "github.com/vrypan/cacipher"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version number and build information for cacipher.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cacipher version %s\n", Version)
		fmt.Printf("Reversible cellular-automaton block cipher (Wuensche & Lesser chain rule)\n")
		fmt.Printf("\n")
		fmt.Printf("Repository: %s\n", GitRepo)
	},
}
