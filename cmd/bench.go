package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vrypan/cacipher/ca"
	"github.com/vrypan/cacipher/rngsrc"
	"github.com/vrypan/cacipher/rule"
)

var (
	benchK     int
	benchBytes int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure CA step throughput",
	Long: `bench generates a rule table and a random tape of the requested size,
then times one full forward-then-backward CA round trip and reports
throughput for each direction.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := rule.GenerateReversible(benchK, seedFromTime())
		if err != nil {
			return err
		}

		bits := benchBytes * 8
		src := rngsrc.New(1)
		tape := make([]byte, bits)
		for i := range tape {
			tape[i] = src.Bit()
		}

		e, err := ca.New(benchK, 1)
		if err != nil {
			return err
		}
		if err := e.SetRule(tbl); err != nil {
			return err
		}
		if err := e.LoadPlaintext(tape); err != nil {
			return err
		}

		start := time.Now()
		if err := e.CASteps(1); err != nil {
			return err
		}
		forwardElapsed := time.Since(start)

		start = time.Now()
		if err := e.CAstepsReverse(1); err != nil {
			return err
		}
		backwardElapsed := time.Since(start)

		fmt.Printf("k=%d, tape=%s\n", benchK, humanize.Bytes(uint64(benchBytes)))
		fmt.Printf("forward:  %v (%s/s)\n", forwardElapsed.Round(time.Microsecond),
			humanize.Bytes(throughput(benchBytes, forwardElapsed)))
		fmt.Printf("backward: %v (%s/s)\n", backwardElapsed.Round(time.Microsecond),
			humanize.Bytes(throughput(benchBytes, backwardElapsed)))
		return nil
	},
}

func throughput(bytesCount int, elapsed time.Duration) uint64 {
	if elapsed <= 0 {
		return 0
	}
	return uint64(float64(bytesCount) / elapsed.Seconds())
}

func init() {
	benchCmd.Flags().IntVarP(&benchK, "K", "k", 7, "neighbourhood size (odd, >= 1)")
	benchCmd.Flags().IntVar(&benchBytes, "bytes", 1024, "tape size in bytes")
	rootCmd.AddCommand(benchCmd)
}
