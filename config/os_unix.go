//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

// EnableColorOutput reports whether log lines written to stream could be
// colorized: stream must be a terminal and NO_COLOR must not be set.
func EnableColorOutput(stream *os.File) bool {
	if _, off := os.LookupEnv("NO_COLOR"); off {
		return false
	}
	return term.IsTerminal(int(stream.Fd()))
}
