package bot

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Per-user transcript of the upload and add flows. Disabled until
// InitSessionLog is given a directory.
var (
	sessionLogMu  sync.Mutex
	sessionLogDir string
)

// InitSessionLog sets the directory for session logs. An empty dir disables
// them.
func InitSessionLog(dir string) error {
	sessionLogMu.Lock()
	defer sessionLogMu.Unlock()
	sessionLogDir = dir
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

func sessionLogPath(userID int64) string {
	return filepath.Join(sessionLogDir, fmt.Sprintf("session_%d.log", userID))
}

// StartSessionLog truncates the user's log, starting a fresh transcript for a
// new photo.
func StartSessionLog(userID int64, image string) {
	sessionLogMu.Lock()
	defer sessionLogMu.Unlock()
	if sessionLogDir == "" {
		return
	}

	f, err := os.OpenFile(sessionLogPath(userID), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("failed to start session log")
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "=== Session Log ===\nUser: %d\nImage: %s\nStarted: %s\n\n",
		userID, image, time.Now().Format("2006-01-02 15:04:05"))
}

func appendSessionLog(userID int64, prefix, msg string) {
	sessionLogMu.Lock()
	defer sessionLogMu.Unlock()
	if sessionLogDir == "" {
		return
	}

	f, err := os.OpenFile(sessionLogPath(userID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("failed to write session log")
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "[%s] %s %s\n", time.Now().Format("15:04:05"), prefix, msg)
}

// LogUser logs a user message or button press.
func LogUser(userID int64, format string, args ...any) {
	appendSessionLog(userID, "USER ", fmt.Sprintf(format, args...))
}

// LogAPI logs a service call.
func LogAPI(userID int64, format string, args ...any) {
	appendSessionLog(userID, "API  ", fmt.Sprintf(format, args...))
}

// LogState logs an outcome or flow transition.
func LogState(userID int64, format string, args ...any) {
	appendSessionLog(userID, "STATE", fmt.Sprintf(format, args...))
}

// LogError logs a failure shown to the user.
func LogError(userID int64, format string, args ...any) {
	appendSessionLog(userID, "ERROR", fmt.Sprintf(format, args...))
}
