package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/solekit/telegram-sneaker-bot/internal/sneakerapi"
	"github.com/solekit/telegram-sneaker-bot/internal/storage"
)

// BotAPI defines the interface for Telegram bot API operations.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Bot is the main Telegram bot handler.
type Bot struct {
	tg      BotAPI
	state   BotState
	store   storage.AccessStore // nil means only the admin may use the bot
	service sneakerapi.Service
	adminID int64

	// runAsync starts a background service call. Replaced in tests.
	runAsync func(func())

	// Handlers
	uploadHandler    *UploadHandler
	addHandler       *AddHandler
	dashboardHandler *DashboardHandler
}

// NewBot creates a new Bot instance.
func NewBot(tg BotAPI, store storage.AccessStore, service sneakerapi.Service, adminID int64) *Bot {
	bot := &Bot{
		tg:       tg,
		store:    store,
		service:  service,
		adminID:  adminID,
		runAsync: func(f func()) { go f() },
	}

	bot.state = bot.NewBotState()
	bot.uploadHandler = NewUploadHandler(tg, service, NewImageDownloader(), bot.spawn)
	bot.dashboardHandler = NewDashboardHandler(tg, service, bot.spawn)
	bot.addHandler = NewAddHandler(tg, service, bot.spawn, bot.dashboardHandler)

	return bot
}

func (b *Bot) spawn(f func()) {
	b.runAsync(f)
}

// HandleUpdate is the main message router.
// It dispatches messages to the appropriate session worker for sequential processing.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.dispatchUpdate(ctx, update, false)
}

// handleUpdateSync is like HandleUpdate but waits for message processing to complete.
// Used in tests where we need synchronous behavior.
func (b *Bot) handleUpdateSync(ctx context.Context, update tgbotapi.Update) {
	b.dispatchUpdate(ctx, update, true)
}

// isAllowed reports whether a user may use the bot. The admin always may.
func (b *Bot) isAllowed(userId int64) bool {
	if userId == b.adminID {
		return true
	}
	if b.store == nil {
		return false
	}
	allowed, err := b.store.IsUserAllowed(userId)
	if err != nil {
		log.Error().Err(err).Int64("userId", userId).Msg("whitelist check failed")
		return false // Fail closed
	}
	return allowed
}

// dispatchUpdate routes updates to the appropriate session worker.
// If sync is true, it waits for message processing to complete.
func (b *Bot) dispatchUpdate(ctx context.Context, update tgbotapi.Update, sync bool) {
	var userId int64

	// Determine user ID from the update
	if update.CallbackQuery != nil {
		userId = update.CallbackQuery.From.ID
	} else if update.Message != nil && update.Message.From != nil {
		userId = update.Message.From.ID
	} else {
		return
	}

	// MUST be before getUserSession to prevent memory exhaustion from random user IDs
	if !b.isAllowed(userId) {
		return // Silent drop
	}

	session, err := b.state.getUserSession(userId)
	if err != nil {
		log.Error().Err(err).Send()
		return
	}

	// Helper to send sync or async based on flag
	send := func(msg SessionMessage) {
		if sync {
			session.SendSync(msg)
		} else {
			session.Send(msg)
		}
	}

	if update.CallbackQuery != nil {
		send(SessionMessage{
			Type:          "callback",
			Ctx:           ctx,
			CallbackQuery: update.CallbackQuery,
		})
		return
	}

	log.Info().Int64("userId", userId).Str("text", update.Message.Text).Int("photos", len(update.Message.Photo)).Msg("got message")

	if len(update.Message.Photo) > 0 {
		send(SessionMessage{
			Type:    "photo",
			Ctx:     ctx,
			Message: update.Message,
		})
	} else {
		send(SessionMessage{
			Type:    "text",
			Ctx:     ctx,
			Message: update.Message,
		})
	}
}

// HandleSessionMessage implements MessageHandler interface.
// This is called by the session worker goroutine for sequential processing.
// No mutex locking is needed here since only one goroutine accesses session state.
func (b *Bot) HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage) {
	switch msg.Type {
	case "callback":
		b.handleCallbackQuery(ctx, session, msg.CallbackQuery)
	case "photo":
		b.uploadHandler.HandlePhoto(ctx, session, msg.Message)
	case "text":
		b.handleTextMessage(ctx, session, msg.Message)
	case "predict_complete":
		b.uploadHandler.HandlePredictComplete(session, msg.Predict)
	case "commit_complete":
		b.addHandler.HandleCommitComplete(ctx, session, msg.Commit)
	case "inventory_complete":
		b.dashboardHandler.HandleInventoryComplete(session, msg.Inventory)
	case "image_complete":
		b.dashboardHandler.HandleImageComplete(session, msg.Image)
	}
}

// handleTextMessage processes text messages.
// Called from session worker - no locking needed.
func (b *Bot) handleTextMessage(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	// An open add draft takes price and quantity input
	if !strings.HasPrefix(message.Text, "/") && b.addHandler.HandleInput(session, message.Text) {
		return
	}

	b.handleCommand(ctx, session, message)
}

// handleCommand processes bot commands.
// Called from session worker - no locking needed.
func (b *Bot) handleCommand(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	command, args := parseCommand(message.Text)
	argsStr := strings.Join(args, " ")
	switch command {
	case "/start":
		session.reply(MsgStartPrompt)
	case "/help":
		session.reply(MsgHelp)
	case "/inventory":
		b.dashboardHandler.HandleInventoryCommand(ctx, session)
	case "/cancel":
		session.reset()
		session.reply(MsgResultCleared)
	case "/admin":
		b.handleAdminCommand(session, argsStr)
	case "/version":
		session.reply(MsgVersionInfo, Version, BuildTime)
	default:
		session.reply(MsgStartPrompt)
	}
}

// handleCallbackQuery handles inline keyboard button presses.
// Called from session worker - no locking needed.
func (b *Bot) handleCallbackQuery(ctx context.Context, session *UserSession, query *tgbotapi.CallbackQuery) {
	// Answer the callback to remove the loading state
	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := b.tg.Request(callback); err != nil {
		log.Debug().Err(err).Msg("failed to answer callback")
	}

	LogUser(session.userId, "callback %s", query.Data)

	switch {
	case strings.HasPrefix(query.Data, "add:"):
		b.addHandler.HandleCallback(ctx, session, query)
	case strings.HasPrefix(query.Data, "inv:"):
		b.dashboardHandler.HandleCallback(ctx, session, query)
	default:
		log.Warn().Str("data", query.Data).Msg("unknown callback")
	}
}

// handleAdminCommand handles /admin command with subcommands.
// Only the admin user can use this command (defense in depth check).
func (b *Bot) handleAdminCommand(session *UserSession, args string) {
	if session.userId != b.adminID {
		return // Silent drop for non-admin users
	}
	if b.store == nil {
		session.reply(MsgAdminNoStore)
		return
	}

	parts := strings.Fields(args)
	if len(parts) < 2 || parts[0] != "users" {
		session.reply(MsgAdminUsage)
		return
	}
	b.handleAdminUsersCommand(session, parts[1], parts[2:])
}

// handleAdminUsersCommand handles /admin users subcommands.
func (b *Bot) handleAdminUsersCommand(session *UserSession, action string, args []string) {
	switch action {
	case "add", "remove":
		if len(args) < 1 {
			if action == "add" {
				session.reply(MsgAdminUserAddUsage)
			} else {
				session.reply(MsgAdminUserRemoveUsage)
			}
			return
		}
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			session.reply(MsgAdminUserInvalidID)
			return
		}
		if action == "add" {
			if err := b.store.AddAllowedUser(userID, session.userId); err != nil {
				session.replyWithError(err)
				return
			}
			session.reply(MsgAdminUserAdded, userID)
			return
		}
		if err := b.store.RemoveAllowedUser(userID); err != nil {
			session.replyWithError(err)
			return
		}
		session.reply(MsgAdminUserRemoved, userID)

	case "list":
		users, err := b.store.GetAllowedUsers()
		if err != nil {
			session.replyWithError(err)
			return
		}
		if len(users) == 0 {
			session.reply(MsgAdminNoUsers)
			return
		}
		var sb strings.Builder
		sb.WriteString(MsgAdminAllowedUsers)
		for _, u := range users {
			sb.WriteString(fmt.Sprintf("• `%d` (added %s)\n", u.TelegramID, u.AddedAt.Format("2006-01-02")))
		}
		session.reply(sb.String())

	default:
		session.reply(MsgAdminUsage)
	}
}
