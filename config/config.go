// Package config loads the bot's settings from the environment and from the
// env file in the user's config directory.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	AppName     = "telegram-sneaker-bot"
	EnvFileName = "config.env"

	DefaultServiceURL = "http://127.0.0.1:5000"
	DefaultDBPath     = "sessions.db"
)

// RequiredVars lists the environment variables the bot cannot start without.
var RequiredVars = []string{"BOT_TOKEN", "ADMIN_TELEGRAM_ID"}

// Config is the validated process configuration.
type Config struct {
	BotToken   string
	AdminID    int64
	ServiceURL string
	DBPath     string
	LogLevel   zerolog.Level
	// SessionLogDir holds per-user transcripts. Empty disables them.
	SessionLogDir string
}

// Dir returns the application's config directory, creating it if needed.
func Dir() (string, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	configDir := filepath.Join(configBase, AppName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// FilePath returns the full path to the env file.
func FilePath() (string, error) {
	configDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, EnvFileName), nil
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
// Variables already set in the environment win.
func LoadEnvFile() {
	configPath, err := FilePath()
	if err != nil {
		return
	}
	_ = godotenv.Load(configPath)
}

// MissingRequired returns the names of required variables that are unset.
func MissingRequired() []string {
	var missing []string
	for _, v := range RequiredVars {
		if strings.TrimSpace(os.Getenv(v)) == "" {
			missing = append(missing, v)
		}
	}
	return missing
}

// Load reads and validates the configuration from the environment.
func Load() (Config, error) {
	if missing := MissingRequired(); len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	cfg := Config{
		BotToken:   strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		ServiceURL: envOr("SNEAKER_API_URL", DefaultServiceURL),
		DBPath:     envOr("SNEAKER_DB_PATH", DefaultDBPath),
		LogLevel:   zerolog.InfoLevel,

		SessionLogDir: strings.TrimSpace(os.Getenv("SESSION_LOG_DIR")),
	}

	adminID, err := strconv.ParseInt(strings.TrimSpace(os.Getenv("ADMIN_TELEGRAM_ID")), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("ADMIN_TELEGRAM_ID must be a valid integer: %w", err)
	}
	cfg.AdminID = adminID

	if err := ValidateServiceURL(cfg.ServiceURL); err != nil {
		return Config{}, fmt.Errorf("SNEAKER_API_URL: %w", err)
	}
	cfg.ServiceURL = strings.TrimRight(cfg.ServiceURL, "/")

	if s := strings.TrimSpace(os.Getenv("LOG_LEVEL")); s != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

// ValidateServiceURL checks that s is an absolute http(s) URL.
func ValidateServiceURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", s)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
