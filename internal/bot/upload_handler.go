package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/solekit/telegram-sneaker-bot/internal/prediction"
	"github.com/solekit/telegram-sneaker-bot/internal/sneakerapi"
)

// UploadHandler takes photos, sends them to the prediction service and shows
// the interpreted result.
type UploadHandler struct {
	tg         BotAPI
	service    sneakerapi.Service
	downloader *ImageDownloader
	spawn      func(func())
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(tg BotAPI, service sneakerapi.Service, downloader *ImageDownloader, spawn func(func())) *UploadHandler {
	return &UploadHandler{
		tg:         tg,
		service:    service,
		downloader: downloader,
		spawn:      spawn,
	}
}

// HandlePhoto starts a prediction for the largest size of the photo. Only one
// prediction per session runs at a time.
// Called from session worker - no locking needed.
func (h *UploadHandler) HandlePhoto(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	if session.upload.Busy {
		session.reply(MsgPredictInFlight)
		return
	}
	if len(message.Photo) == 0 {
		return
	}

	// Telegram sends the sizes smallest first
	photo := message.Photo[len(message.Photo)-1]
	session.upload.Busy = true
	session.sendTypingAction()
	session.reply(MsgAnalyzingImage)

	userId := session.userId
	h.spawn(func() {
		outcome := &PredictOutcome{}
		data, err := h.downloader.DownloadFromTelegramFileID(ctx, h.tg.GetFileDirectURL, photo.FileID)
		if err != nil {
			outcome.Err = fmt.Errorf("%s: %w", MsgImageDownloadFailed, err)
		} else {
			outcome.Fingerprint = fingerprint(data)
			StartSessionLog(userId, outcome.Fingerprint)
			LogAPI(userId, "predict %s (%d bytes)", outcome.Fingerprint, len(data))
			log.Info().Int64("userId", userId).Str("image", outcome.Fingerprint).Int("bytes", len(data)).Msg("predicting")
			outcome.Result, outcome.Err = h.service.Predict(ctx, data, photo.FileUniqueID+".jpg")
		}
		session.Send(SessionMessage{Type: "predict_complete", Ctx: ctx, Predict: outcome})
	})
}

// HandlePredictComplete shows the result of a finished prediction. A failed
// prediction keeps the previous result.
// Called from session worker - no locking needed.
func (h *UploadHandler) HandlePredictComplete(session *UserSession, outcome *PredictOutcome) {
	session.upload.Busy = false
	if outcome == nil {
		return
	}

	if outcome.Err != nil {
		log.Error().Err(outcome.Err).Int64("userId", session.userId).Msg("prediction failed")
		LogError(session.userId, "prediction failed: %v", outcome.Err)
		session.reply(MsgPredictFailed, escapeMarkdown(outcome.Err.Error()))
		return
	}

	result := outcome.Result.Normalize()
	if err := result.ShapeError(); err != nil {
		log.Warn().Err(err).Int64("userId", session.userId).Str("image", outcome.Fingerprint).Msg("unexpected prediction shape")
	}

	decided := prediction.Decide(result)
	log.Info().
		Int64("userId", session.userId).
		Str("image", outcome.Fingerprint).
		Str("outcome", decided.String()).
		Str("class", result.ClassName).
		Str("decision", string(result.Decision)).
		Msg("prediction complete")
	LogState(session.userId, "outcome %s, decision %q, class %q, price %s",
		decided, result.Decision, result.ClassName, result.PredictedPrice.Money())

	// A new result replaces the old one and closes any add draft of it
	session.upload.Result = &result
	session.upload.Fingerprint = outcome.Fingerprint
	session.add.Draft = nil
	session.add.MenuMsgID = 0
	session.add.Notice = ""

	msg := tgbotapi.NewMessage(session.userId, renderResult(result))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup := resultKeyboard(result, outcome.Fingerprint); markup != nil {
		msg.ReplyMarkup = *markup
	}
	session.replyWithMessage(msg)
}
