package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/solekit/telegram-sneaker-bot/internal/inventory"
	"github.com/solekit/telegram-sneaker-bot/internal/prediction"
	"github.com/solekit/telegram-sneaker-bot/internal/sneakerapi"
)

// SessionMessage represents a message to be processed by the session worker.
type SessionMessage struct {
	Type string
	Ctx  context.Context
	Done chan struct{} // Closed when processing is complete (for synchronous dispatch)

	// Message data (only one is set based on Type)
	Message       *tgbotapi.Message
	CallbackQuery *tgbotapi.CallbackQuery
	Text          string

	// Results of background service calls
	Predict   *PredictOutcome   // For predict_complete messages
	Commit    *CommitOutcome    // For commit_complete messages
	Inventory *InventoryOutcome // For inventory_complete messages
	Image     *ImageOutcome     // For image_complete messages
}

// PredictOutcome is the result of a background predict call.
type PredictOutcome struct {
	Fingerprint string
	Result      prediction.Result
	Err         error
}

// CommitOutcome is the result of a background add-to-inventory call.
type CommitOutcome struct {
	Ack *sneakerapi.CommitAck
	Err error
}

// InventoryOutcome is the result of a background list-inventory call.
type InventoryOutcome struct {
	Records []sneakerapi.InventoryRecord
	Err     error
}

// ImageOutcome is the result of a background inventory image fetch.
type ImageOutcome struct {
	ImageID string
	Caption string
	Data    []byte
	Err     error
}

// MessageSender abstracts the ability to send Telegram messages.
// This interface decouples UserSession from the full Bot struct,
// improving testability.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// UploadState holds the latest prediction. The result is replaced by the next
// successful prediction and dropped by /cancel.
type UploadState struct {
	Busy        bool // a predict call is outstanding
	Fingerprint string
	Result      *prediction.Result
}

// AddState holds the add-to-inventory draft. The draft owns a copy of the
// result it was opened from.
type AddState struct {
	Busy      bool // a commit call is outstanding
	Draft     *prediction.AddDraft
	MenuMsgID int
	Notice    string // last validation problem, shown in the draft menu
}

// DashboardState holds the inventory browser state.
type DashboardState struct {
	Busy      bool // a list call is outstanding
	ImageBusy bool // an image fetch is outstanding
	MenuMsgID int  // Message ID to edit for navigation
	Page      int  // Current pagination page (1-based)
	Rows      []inventory.Row
	Loaded    bool
}

// MessageHandler is the interface for processing session messages.
// This allows the session to dispatch to external handlers without circular dependencies.
type MessageHandler interface {
	HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage)
}

// UserSession represents a user's session with the bot.
//
// Threading model:
//   - Each session has a dedicated worker goroutine that processes messages sequentially
//   - Message handlers are called only from the worker and can access session
//     state without locks
//   - Service calls run in their own goroutines and report back through the
//     inbox, so their results are applied by the worker too
type UserSession struct {
	userId int64
	sender MessageSender

	// Worker channel for sequential message processing
	inbox   chan SessionMessage
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	handler MessageHandler // Set after construction to avoid circular deps

	upload    UploadState
	add       AddState
	dashboard DashboardState
}

// reset forgets the current result and any add draft. Outstanding calls keep
// their busy flags so a late completion is still accounted for.
func (s *UserSession) reset() {
	log.Info().Int64("userId", s.userId).Msg("reset user session")
	s.upload.Result = nil
	s.upload.Fingerprint = ""
	s.add.Draft = nil
	s.add.MenuMsgID = 0
	s.add.Notice = ""
}

func (s *UserSession) replyWithError(err error) tgbotapi.Message {
	log.Error().Stack().Err(err).Send()
	return s._reply(formatReplyText(MsgUnexpectedErr, escapeMarkdown(err.Error())), false)
}

// sendTypingAction sends a "typing" chat action to show the user that the bot is processing.
func (s *UserSession) sendTypingAction() {
	action := tgbotapi.NewChatAction(s.userId, tgbotapi.ChatTyping)
	// Use Request instead of Send because sendChatAction returns a boolean, not a Message
	_, err := s.sender.Request(action)
	if err != nil {
		log.Debug().Err(err).Int64("userId", s.userId).Msg("failed to send typing action")
	}
}

func (s *UserSession) replyWithMessage(msg tgbotapi.MessageConfig) tgbotapi.Message {
	msg.ChatID = s.userId
	sent, err := s.sender.Send(msg)
	if err != nil {
		log.Error().Stack().
			Interface("msg", msg).
			Err(fmt.Errorf("failed to send reply message: %w", err)).Send()
	} else {
		log.Debug().Int64("userId", s.userId).Int("messageId", sent.MessageID).Msg("sent message")
	}

	return sent
}

func (s *UserSession) _reply(text string, removeReplyKeyboard bool) tgbotapi.Message {
	msg := tgbotapi.MessageConfig{
		Text:      text,
		ParseMode: tgbotapi.ModeMarkdown,
	}

	if removeReplyKeyboard {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	return s.replyWithMessage(msg)
}

func (s *UserSession) reply(text string, a ...any) tgbotapi.Message {
	return s._reply(formatReplyText(text, a...), false)
}

// --- Worker methods ---

// StartWorker starts the session's message processing worker goroutine.
// Must be called after setting the handler.
func (s *UserSession) StartWorker() {
	s.wg.Add(1)
	go s.runWorker()
}

// SetHandler sets the message handler for this session.
func (s *UserSession) SetHandler(handler MessageHandler) {
	s.handler = handler
}

// runWorker is the main worker loop that processes messages sequentially.
func (s *UserSession) runWorker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// Drain any remaining messages and signal completion
			for {
				select {
				case msg := <-s.inbox:
					if msg.Done != nil {
						close(msg.Done)
					}
				default:
					return
				}
			}
		case msg := <-s.inbox:
			s.processMessage(msg)
		}
	}
}

// processMessage handles a single message from the inbox.
func (s *UserSession) processMessage(msg SessionMessage) {
	defer func() {
		// Recover from any panics to keep the worker running
		if r := recover(); r != nil {
			log.Error().
				Int64("userId", s.userId).
				Interface("panic", r).
				Msg("recovered from panic in session worker")
		}
		if msg.Done != nil {
			close(msg.Done)
		}
	}()

	if s.handler == nil {
		log.Error().Int64("userId", s.userId).Msg("session handler not set")
		return
	}

	s.handler.HandleSessionMessage(msg.Ctx, s, msg)
}

// Send queues a message for processing by the worker.
// This is non-blocking - it returns immediately after queuing.
func (s *UserSession) Send(msg SessionMessage) {
	select {
	case s.inbox <- msg:
	case <-s.ctx.Done():
		if msg.Done != nil {
			close(msg.Done)
		}
	}
}

// SendSync queues a message and waits for it to be processed.
// Returns when the message has been fully processed by the worker.
func (s *UserSession) SendSync(msg SessionMessage) {
	msg.Done = make(chan struct{})
	s.Send(msg)
	<-msg.Done
}

// Stop stops the worker and waits for it to finish.
func (s *UserSession) Stop() {
	s.cancel()
	s.wg.Wait()
}
