// Package logging sets up the process-wide structured logger, grounded
// on the teacher pack's runtime/logger.go: a single zerolog.Logger
// writing timestamped events to stderr, looked up through a package
// function rather than passed down every call chain.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

var root = newRoot()

func newRoot() *zerolog.Logger {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	return &logger
}

// Logger returns the process-wide logger.
func Logger() *zerolog.Logger {
	return root
}

// SetVerbose raises the logger's level to debug; the default is info.
func SetVerbose(verbose bool) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
