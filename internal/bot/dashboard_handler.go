package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/solekit/telegram-sneaker-bot/internal/inventory"
	"github.com/solekit/telegram-sneaker-bot/internal/sneakerapi"
)

// DashboardHandler shows the inventory as a paged menu.
type DashboardHandler struct {
	tg      BotAPI
	service sneakerapi.Service
	spawn   func(func())
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(tg BotAPI, service sneakerapi.Service, spawn func(func())) *DashboardHandler {
	return &DashboardHandler{tg: tg, service: service, spawn: spawn}
}

// HandleInventoryCommand handles the /inventory command
func (h *DashboardHandler) HandleInventoryCommand(ctx context.Context, session *UserSession) {
	session.dashboard.Page = 1
	h.load(ctx, session)
}

// load fetches the inventory in the background. The page shows again once
// the list arrives.
func (h *DashboardHandler) load(ctx context.Context, session *UserSession) {
	if session.dashboard.Busy {
		session.reply(MsgInventoryInFlight)
		return
	}
	session.dashboard.Busy = true
	session.reply(MsgInventoryLoading)

	h.spawn(func() {
		records, err := h.service.ListInventory(ctx)
		session.Send(SessionMessage{
			Type:      "inventory_complete",
			Ctx:       ctx,
			Inventory: &InventoryOutcome{Records: records, Err: err},
		})
	})
}

// HandleInventoryComplete renders the fetched inventory. A failed fetch keeps
// the rows that were shown before.
// Called from session worker - no locking needed.
func (h *DashboardHandler) HandleInventoryComplete(session *UserSession, outcome *InventoryOutcome) {
	session.dashboard.Busy = false
	if outcome == nil {
		return
	}

	if outcome.Err != nil {
		log.Error().Err(outcome.Err).Int64("userId", session.userId).Msg("failed to list inventory")
		session.reply(MsgInventoryFailed, escapeMarkdown(outcome.Err.Error()))
		return
	}

	session.dashboard.Rows = inventory.BuildRows(outcome.Records)
	session.dashboard.Loaded = true
	log.Info().Int64("userId", session.userId).Int("items", len(session.dashboard.Rows)).Msg("inventory loaded")

	if len(session.dashboard.Rows) == 0 {
		deleteMenu(h.tg, session, &session.dashboard.MenuMsgID)
		session.reply(MsgInventoryEmpty)
		return
	}
	h.render(session, true)
}

// HandleCallback routes callbacks starting with "inv:"
func (h *DashboardHandler) HandleCallback(ctx context.Context, session *UserSession, query *tgbotapi.CallbackQuery) {
	data := query.Data

	switch {
	case strings.HasPrefix(data, "inv:page:"):
		session.dashboard.Page = inventory.ParsePage(strings.TrimPrefix(data, "inv:page:"))
		if !session.dashboard.Loaded {
			h.load(ctx, session)
			return
		}
		h.render(session, false)

	case data == "inv:close":
		deleteMenu(h.tg, session, &session.dashboard.MenuMsgID)
		session.dashboard.Rows = nil
		session.dashboard.Loaded = false

	case strings.HasPrefix(data, "inv:img:"):
		h.fetchImage(ctx, session, strings.TrimPrefix(data, "inv:img:"))
	}
}

func (h *DashboardHandler) render(session *UserSession, forceNew bool) {
	view := inventory.Paginate(session.dashboard.Rows, session.dashboard.Page, inventory.PerPage)
	session.dashboard.Page = view.Page

	text, markup := renderDashboard(view)
	editOrSend(h.tg, session, &session.dashboard.MenuMsgID, text, markup, forceNew)
}

func renderDashboard(view inventory.PageView) (string, tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(MsgInventoryHeader, view.Page, view.TotalPages, pluralize("item", "items", view.Total)))
	sb.WriteString("\n")

	var rows [][]tgbotapi.InlineKeyboardButton
	offset := (view.Page - 1) * inventory.PerPage
	for i, row := range view.Rows {
		n := offset + i + 1
		title := escapeMarkdown(row.Title)
		if row.Label != "" {
			title += " " + escapeMarkdown(row.Label)
		}
		sb.WriteString(fmt.Sprintf("\n%d. *%s*\n", n, title))
		if row.Subtitle != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", escapeMarkdown(row.Subtitle)))
		}
		sb.WriteString(fmt.Sprintf("   Qty %d · price %s\n", row.Quantity, row.Effective()))
		sb.WriteString(fmt.Sprintf("   predicted %s · your price %s\n", row.Predicted, row.UserPrice))

		if row.ImageID != "" {
			// Telegram limits callback data to 64 bytes
			data := "inv:img:" + row.ImageID
			if len(data) <= 64 {
				rows = append(rows, tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf(BtnImage, fmt.Sprintf("%d. %s", n, row.Title)), data),
				))
			}
		}
	}

	var navRow []tgbotapi.InlineKeyboardButton
	if view.HasPrev {
		navRow = append(navRow, tgbotapi.NewInlineKeyboardButtonData(BtnPrev, fmt.Sprintf("inv:page:%d", view.Page-1)))
	}
	navRow = append(navRow, tgbotapi.NewInlineKeyboardButtonData(BtnClose, "inv:close"))
	if view.HasNext {
		navRow = append(navRow, tgbotapi.NewInlineKeyboardButtonData(BtnNext, fmt.Sprintf("inv:page:%d", view.Page+1)))
	}
	rows = append(rows, navRow)

	return sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (h *DashboardHandler) fetchImage(ctx context.Context, session *UserSession, imageID string) {
	if imageID == "" {
		return
	}
	if session.dashboard.ImageBusy {
		session.reply(MsgInventoryImageBusy)
		return
	}
	caption := ""
	for _, row := range session.dashboard.Rows {
		if row.ImageID == imageID {
			caption = row.Title
			break
		}
	}

	session.dashboard.ImageBusy = true
	h.spawn(func() {
		data, err := h.service.FetchImage(ctx, imageID)
		session.Send(SessionMessage{
			Type:  "image_complete",
			Ctx:   ctx,
			Image: &ImageOutcome{ImageID: imageID, Caption: caption, Data: data, Err: err},
		})
	})
}

// HandleImageComplete sends a fetched inventory image as a photo.
// Called from session worker - no locking needed.
func (h *DashboardHandler) HandleImageComplete(session *UserSession, outcome *ImageOutcome) {
	session.dashboard.ImageBusy = false
	if outcome == nil {
		return
	}
	if outcome.Err != nil {
		log.Error().Err(outcome.Err).Str("imageId", outcome.ImageID).Msg("failed to fetch inventory image")
		session.reply(MsgInventoryImageFailed, escapeMarkdown(outcome.Err.Error()))
		return
	}

	photo := tgbotapi.NewPhoto(session.userId, tgbotapi.FileBytes{Name: outcome.ImageID + ".jpg", Bytes: outcome.Data})
	photo.Caption = outcome.Caption
	if _, err := h.tg.Send(photo); err != nil {
		log.Error().Err(err).Str("imageId", outcome.ImageID).Msg("failed to send inventory image")
	}
}
