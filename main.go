package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/solekit/telegram-sneaker-bot/config"
	"github.com/solekit/telegram-sneaker-bot/internal/bot"
	"github.com/solekit/telegram-sneaker-bot/internal/sneakerapi"
	"github.com/solekit/telegram-sneaker-bot/internal/storage"
)

const logFileName = "telegram-sneaker-bot.log"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Try to load existing .env file
	config.LoadEnvFile()

	// Check if required config is missing
	if missing := config.MissingRequired(); len(missing) > 0 {
		if config.IsInteractiveTerminal() {
			// Interactive terminal - run setup wizard
			if !config.RunSetupWizard() {
				config.WaitOnWindows()
				os.Exit(1)
			}
		} else {
			// Non-interactive (systemd, k8s, etc.) - fail with clear error
			config.FatalWithWait("missing required config: %s", strings.Join(missing, ", "))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		config.FatalWithWait("%v", err)
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	// JOURNAL_STREAM is set by systemd when running as a service.
	// Skip file logging under systemd (journald handles it, and ProtectSystem=strict
	// makes the working directory read-only).
	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); underSystemd {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		// Local development: log to both stderr and file
		logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			config.FatalWithWait("failed to open log file: %v", err)
		}
		defer logFile.Close()

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
		log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))

		log.Info().Str("logFile", logFileName).Msg("logging to file")
	}

	tg, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		config.FatalWithWait("failed to initialize telegram bot: %v", err)
	}
	tg.Debug = false
	log.Info().Str("username", tg.Self.UserName).Msg("authorized on account")

	// Register bot commands for Telegram's command menu
	bot.RegisterCommands(tg)

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		config.FatalWithWait("failed to initialize user store: %v", err)
	}
	defer store.Close()
	log.Info().Str("dbPath", cfg.DBPath).Msg("user store initialized")

	if err := bot.InitSessionLog(cfg.SessionLogDir); err != nil {
		log.Warn().Err(err).Msg("failed to initialize session log")
	}

	service := sneakerapi.NewClient(sneakerapi.ClientOpts{BaseURL: cfg.ServiceURL})
	log.Info().Str("url", cfg.ServiceURL).Msg("sneaker service configured")

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	b := bot.NewBot(tg, store, service, cfg.AdminID)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runBot(ctx, tg, b)
	})
	g.Go(func() error {
		<-ctx.Done()
		b.Shutdown()
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}

func runBot(ctx context.Context, tg *tgbotapi.BotAPI, b *bot.Bot) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := tg.GetUpdatesChan(updateConfig)

	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping bot update loop")
			tg.StopReceivingUpdates()
			log.Info().Msg("waiting for active handlers to finish")
			wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				wg.Wait()
				return errors.New("updates channel closed")
			}
			wg.Add(1)
			go func(u tgbotapi.Update) {
				defer wg.Done()
				b.HandleUpdate(ctx, u)
			}(update)
		}
	}
}
