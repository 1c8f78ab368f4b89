package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/term"
)

const (
	telegramAPIURL  = "https://api.telegram.org"
	validateTimeout = 10 * time.Second
	envFileKeyOrder = "BOT_TOKEN ADMIN_TELEGRAM_ID SNEAKER_API_URL"
)

// IsInteractiveTerminal returns true if both stdin and stdout are TTYs.
// This is used to determine if we can run the interactive setup wizard.
func IsInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// RunSetupWizard collects the required configuration interactively and
// writes it to the env file. Returns true if the bot should continue starting.
func RunSetupWizard() bool {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	fmt.Println()
	fmt.Println(titleStyle.Render("👟 Telegram Sneaker Bot - First-time Setup"))
	fmt.Println()

	botToken := os.Getenv("BOT_TOKEN")
	adminID := os.Getenv("ADMIN_TELEGRAM_ID")
	serviceURL := envOr("SNEAKER_API_URL", DefaultServiceURL)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram Bot Token").
				Description("Message @BotFather on Telegram → /newbot → copy token").
				Value(&botToken).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("token is required")
					}
					return validateTelegramToken(telegramAPIURL, s)
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Your Telegram User ID").
				Description("Message @userinfobot to get your ID: https://t.me/userinfobot").
				Value(&adminID).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("user ID is required")
					}
					if _, err := strconv.ParseInt(s, 10, 64); err != nil {
						return errors.New("must be a number")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Sneaker service URL").
				Description("Base URL of the prediction and inventory service").
				Value(&serviceURL).
				Validate(func(s string) error {
					if err := ValidateServiceURL(s); err != nil {
						return err
					}
					return checkService(s)
				}),
		),
	).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("\nSetup cancelled.")
			return false
		}
		fmt.Printf("\nError: %v\n", err)
		return false
	}

	values := map[string]string{
		"BOT_TOKEN":         botToken,
		"ADMIN_TELEGRAM_ID": adminID,
		"SNEAKER_API_URL":   strings.TrimRight(serviceURL, "/"),
	}

	configPath, err := FilePath()
	if err == nil {
		err = WriteEnvFile(configPath, values)
	}
	if err != nil {
		fmt.Printf("\nError saving configuration: %v\n", err)
		WaitOnWindows()
		return false
	}

	// Set values in current process
	for k, v := range values {
		os.Setenv(k, v)
	}

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	fmt.Println()
	fmt.Println(successStyle.Render("✓ Configuration saved"))
	fmt.Println(pathStyle.Render("  " + configPath))
	fmt.Println()
	fmt.Println("Starting bot...")
	fmt.Println()

	return true
}

// validateTelegramToken validates a bot token by calling the getMe API.
func validateTelegramToken(apiURL, token string) error {
	resp, err := resty.New().
		SetTimeout(validateTimeout).
		R().
		Get(fmt.Sprintf("%s/bot%s/getMe", apiURL, token))
	if err != nil {
		return errors.New("connection failed - check your internet")
	}

	result := gjson.ParseBytes(resp.Body())
	if !result.Get("ok").Bool() {
		if desc := result.Get("description").String(); desc != "" {
			return errors.New(desc)
		}
		return errors.New("token rejected by Telegram")
	}
	return nil
}

// checkService confirms the sneaker service answers its inventory endpoint.
func checkService(baseURL string) error {
	resp, err := resty.New().
		SetTimeout(validateTimeout).
		R().
		SetHeader("Accept", "application/json").
		Get(strings.TrimRight(baseURL, "/") + "/inventory")
	if err != nil {
		return errors.New("service is not reachable - is it running?")
	}
	if resp.IsError() {
		return fmt.Errorf("unexpected response (HTTP %d)", resp.StatusCode())
	}
	return nil
}

// WriteEnvFile writes values to path in a stable key order.
// Uses restrictive permissions (0600) since the file contains secrets.
func WriteEnvFile(path string, values map[string]string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	// Quote values to handle special characters
	for _, key := range strings.Fields(envFileKeyOrder) {
		if val, ok := values[key]; ok {
			if _, err := fmt.Fprintf(f, "%s=%q\n", key, val); err != nil {
				return fmt.Errorf("failed to write %s: %w", key, err)
			}
		}
	}
	return nil
}
