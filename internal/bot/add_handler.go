package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/solekit/telegram-sneaker-bot/internal/prediction"
	"github.com/solekit/telegram-sneaker-bot/internal/sneakerapi"
)

// AddHandler runs the add-to-inventory flow for the current result.
type AddHandler struct {
	tg        BotAPI
	service   sneakerapi.Service
	spawn     func(func())
	dashboard *DashboardHandler
}

// NewAddHandler creates a new AddHandler
func NewAddHandler(tg BotAPI, service sneakerapi.Service, spawn func(func()), dashboard *DashboardHandler) *AddHandler {
	return &AddHandler{
		tg:        tg,
		service:   service,
		spawn:     spawn,
		dashboard: dashboard,
	}
}

// HandleCallback routes callbacks starting with "add:"
func (h *AddHandler) HandleCallback(ctx context.Context, session *UserSession, query *tgbotapi.CallbackQuery) {
	switch data := query.Data; {
	case strings.HasPrefix(data, "add:start"):
		h.start(session, strings.TrimPrefix(strings.TrimPrefix(data, "add:start"), ":"))
	case data == "add:save":
		h.save(ctx, session)
	case data == "add:suggest":
		if session.add.Draft == nil {
			return
		}
		if session.add.Draft.UseSuggestedPrice() {
			session.add.Notice = ""
		} else {
			session.add.Notice = MsgAddNoSuggestion
		}
		h.render(session, false)
	case data == "add:cancel":
		deleteMenu(h.tg, session, &session.add.MenuMsgID)
		session.add.Draft = nil
		session.add.Notice = ""
		session.reply(MsgAddCancelled)
	}
}

func (h *AddHandler) start(session *UserSession, imageFingerprint string) {
	if session.upload.Result == nil {
		session.reply(MsgNoResult)
		return
	}
	if imageFingerprint != session.upload.Fingerprint {
		log.Info().Int64("userId", session.userId).Str("image", imageFingerprint).Msg("add tapped on a stale result")
		session.reply(MsgResultStale)
		return
	}
	if session.add.Busy {
		session.reply(MsgAddInFlight)
		return
	}
	if !prediction.CommitActionFor(*session.upload.Result).Offered {
		session.reply(MsgAddNotOffered)
		return
	}

	// The draft keeps its own copy, so a newer prediction can't change it
	session.add.Draft = prediction.NewAddDraft(*session.upload.Result)
	session.add.Notice = ""
	h.render(session, true)
}

func (h *AddHandler) save(ctx context.Context, session *UserSession) {
	draft := session.add.Draft
	if draft == nil {
		session.reply(MsgNoResult)
		return
	}
	if session.add.Busy {
		session.reply(MsgAddInFlight)
		return
	}

	form, err := draft.Validate()
	if err != nil {
		session.add.Notice = fmt.Sprintf(MsgAddInvalid, err.Error())
		h.render(session, false)
		return
	}

	req := sneakerapi.NewCommitRequest(form)
	session.add.Busy = true
	session.add.Notice = MsgAddSaving
	h.render(session, false)

	userId := session.userId
	h.spawn(func() {
		LogAPI(userId, "commit %s/%s price %.2f quantity %d", req.Slug, req.ClassName, req.Price, req.Quantity)
		log.Info().Int64("userId", userId).Str("slug", req.Slug).Str("class", req.ClassName).Int("quantity", req.Quantity).Msg("committing to inventory")
		ack, err := h.service.CommitInventory(ctx, req)
		session.Send(SessionMessage{
			Type:   "commit_complete",
			Ctx:    ctx,
			Commit: &CommitOutcome{Ack: ack, Err: err},
		})
	})
}

// HandleInput takes a price or a quantity ("x3", "qty 3") for an open draft.
// It reports whether the text was consumed.
// Called from session worker - no locking needed.
func (h *AddHandler) HandleInput(session *UserSession, text string) bool {
	draft := session.add.Draft
	if draft == nil {
		return false
	}
	LogUser(session.userId, "draft input %q", text)
	if session.add.Busy {
		session.reply(MsgAddInFlight)
		return true
	}

	if qty, ok := quantityInput(text); ok {
		if _, err := prediction.ParseQuantity(qty); err != nil {
			session.add.Notice = fmt.Sprintf(MsgAddInvalid, err.Error())
		} else {
			draft.QuantityText = qty
			session.add.Notice = ""
		}
	} else {
		if price, err := prediction.ParsePrice(text); err != nil {
			session.add.Notice = fmt.Sprintf(MsgAddInvalid, err.Error())
		} else {
			draft.PriceText = price.StringFixed(2)
			session.add.Notice = ""
		}
	}

	// The user's message pushed the menu up, so send it again below
	h.render(session, true)
	return true
}

// quantityInput extracts the number of "x3", "qty 3" or "quantity 3".
func quantityInput(text string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	for _, prefix := range []string{"quantity", "qty", "x"} {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(s, prefix)), true
		}
	}
	return "", false
}

// HandleCommitComplete applies the result of a commit. On failure the draft
// stays open so the user can retry.
// Called from session worker - no locking needed.
func (h *AddHandler) HandleCommitComplete(ctx context.Context, session *UserSession, outcome *CommitOutcome) {
	session.add.Busy = false
	if outcome == nil {
		return
	}

	if outcome.Err != nil {
		LogError(session.userId, "commit failed: %v", outcome.Err)
		var notice string
		var validationErr *sneakerapi.ValidationError
		if errors.As(outcome.Err, &validationErr) {
			notice = fmt.Sprintf(MsgAddInvalid, validationErr.Error())
		} else {
			log.Error().Err(outcome.Err).Int64("userId", session.userId).Msg("commit failed")
			notice = fmt.Sprintf(MsgAddFailed, outcome.Err.Error())
		}
		if session.add.Draft == nil {
			session.reply("%s", escapeMarkdown(notice))
			return
		}
		session.add.Notice = notice
		h.render(session, false)
		return
	}

	ack := outcome.Ack
	if ack == nil {
		ack = &sneakerapi.CommitAck{}
	}
	LogState(session.userId, "committed, status %q quantity %d", ack.Status, ack.Quantity)
	log.Info().Int64("userId", session.userId).Str("status", ack.Status).Int("quantity", ack.Quantity).Msg("inventory committed")

	deleteMenu(h.tg, session, &session.add.MenuMsgID)
	session.add.Draft = nil
	session.add.Notice = ""
	if ack.Updated() {
		session.reply(MsgAddUpdated, ack.Quantity)
	} else {
		session.reply(MsgAddInserted, ack.Quantity)
	}

	h.dashboard.HandleInventoryCommand(ctx, session)
}

func (h *AddHandler) render(session *UserSession, forceNew bool) {
	draft := session.add.Draft
	if draft == nil {
		return
	}
	text, markup := renderDraft(draft, session.add.Notice)
	editOrSend(h.tg, session, &session.add.MenuMsgID, text, markup, forceNew)
}

func renderDraft(draft *prediction.AddDraft, notice string) (string, tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString(MsgAddDraftHeader + "\n")
	sb.WriteString(escapeMarkdown(resultTitle(draft.Result)) + "\n")
	if action := prediction.CommitActionFor(draft.Result); action.Manual {
		sb.WriteString("⚠️ " + prediction.LabelCommitManual + "\n")
	}

	rec := draft.Reconciliation()
	if rec.Existing {
		sb.WriteString(fmt.Sprintf(MsgAddExisting, rec.CurrentQuantity, rec.EffectivePrice.Money()) + "\n")
	} else {
		sb.WriteString(MsgAddNewItem + "\n")
	}

	price := prediction.Unknown
	if draft.PriceText != "" {
		price = "$" + escapeMarkdown(draft.PriceText)
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(MsgAddPriceLine, price) + "\n")
	sb.WriteString(fmt.Sprintf(MsgAddQuantityLine, escapeMarkdown(draft.QuantityText)) + "\n")

	if notice != "" {
		sb.WriteString("\n" + escapeMarkdown(notice) + "\n")
	}
	sb.WriteString("\n" + MsgAddPricePrompt)

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(BtnSave, "add:save")),
	}
	if draft.Result.PredictedPrice.Valid {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(BtnUseSuggested, "add:suggest")))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(BtnCancel, "add:cancel")))

	return sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}
