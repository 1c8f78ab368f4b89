package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"
)

// WaitOnWindows pauses execution on Windows so users can see error messages
// before the console window closes.
func WaitOnWindows() {
	if runtime.GOOS == "windows" {
		fmt.Println()
		fmt.Println("Press Enter to exit...")
		fmt.Scanln()
	}
}

// FatalWithWait logs a fatal error and waits on Windows before exiting.
func FatalWithWait(format string, args ...any) {
	log.Error().Msgf(format, args...)
	WaitOnWindows()
	os.Exit(1)
}
