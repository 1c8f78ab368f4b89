package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// editOrSend edits the menu message behind msgID or sends a new one, and
// stores the id of the message that now shows the menu.
func editOrSend(tg BotAPI, session *UserSession, msgID *int, text string, markup tgbotapi.InlineKeyboardMarkup, forceNew bool) {
	if !forceNew && *msgID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(session.userId, *msgID, text, markup)
		edit.ParseMode = tgbotapi.ModeMarkdown

		_, err := tg.Request(edit)
		if err == nil {
			return
		}

		// Ignore "message is not modified" error
		if strings.Contains(err.Error(), "message is not modified") {
			return
		}

		// For other errors (message too old, deleted), fall through to send new
		log.Warn().Err(err).Int("msgID", *msgID).Msg("failed to edit menu")
	}

	msg := tgbotapi.NewMessage(session.userId, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = markup

	sent, err := tg.Send(msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to send menu")
		return
	}

	// Delete old message if exists (to keep chat clean)
	if *msgID != 0 {
		tg.Request(tgbotapi.NewDeleteMessage(session.userId, *msgID))
	}

	*msgID = sent.MessageID
}

// deleteMenu deletes the menu message behind msgID, if any.
func deleteMenu(tg BotAPI, session *UserSession, msgID *int) {
	if *msgID != 0 {
		tg.Request(tgbotapi.NewDeleteMessage(session.userId, *msgID))
		*msgID = 0
	}
}
