//go:build windows

package config

import (
	"os"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

// EnableColorOutput reports whether log lines written to stream could be
// colorized, switching console into virtual terminal mode. NO_COLOR disables
// colors.
func EnableColorOutput(stream *os.File) bool {
	if _, off := os.LookupEnv("NO_COLOR"); off {
		return false
	}
	if !term.IsTerminal(int(stream.Fd())) {
		return false
	}

	var mode uint32
	if err := windows.GetConsoleMode(windows.Handle(stream.Fd()), &mode); err != nil {
		return false
	}
	return windows.SetConsoleMode(windows.Handle(stream.Fd()), mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
