// Package logging wraps a package-level logrus.Logger configured from the
// CLI's -V/--verbose flag.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    false,
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetVerbose raises the logger to Debug level when verbose is true.
func SetVerbose(verbose bool) {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// Logger returns the shared logger instance.
func Logger() *logrus.Logger { return log }

// Step logs one CA step's progress and timing.
func Step(direction string, i, total int, elapsedMS float64) {
	log.WithFields(logrus.Fields{
		"direction": direction,
		"step":      i,
		"total":     total,
	}).Debugf("CA step took %.3fs", elapsedMS/1000)
}
