package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/solekit/telegram-sneaker-bot/internal/prediction"
)

// resultTitle names the predicted item as precisely as the result allows.
func resultTitle(r prediction.Result) string {
	if r.ProductName != "" {
		return r.ProductName
	}
	if name := strings.TrimSpace(r.Brand + " " + r.ModelName); name != "" {
		return name
	}
	if r.ClassName != "" {
		return r.ClassName
	}
	return "Unknown item"
}

// renderResult builds the result message. The outcome is computed once and
// every section below is chosen from it, never from the raw fields.
func renderResult(r prediction.Result) string {
	outcome := prediction.Decide(r)
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("*%s*\n", escapeMarkdown(resultTitle(r))))
	if r.ClassName != "" {
		sb.WriteString(fmt.Sprintf("Class: %s\n", escapeMarkdown(r.ClassName)))
	}
	if r.Silhouette != "" {
		sb.WriteString(fmt.Sprintf("Silhouette: %s\n", escapeMarkdown(r.Silhouette)))
	}

	if badge := prediction.Badge(r, outcome); badge != "" {
		sb.WriteString(fmt.Sprintf("\n%s %s\n", badgeIcon(outcome), badge))
	}
	if outcome != prediction.OutcomeRejected {
		sb.WriteString(fmt.Sprintf("Confidence: %s\n", r.Confidence.Percent()))
	}

	if outcome != prediction.OutcomeRejected {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Predicted price: %s\n", r.PredictedPrice.Money()))
		sb.WriteString(fmt.Sprintf("Retail price: %s\n", r.RetailPriceUSD.Money()))
		if r.ReleaseAge.Valid {
			sb.WriteString(fmt.Sprintf("Release age: %s years\n", r.ReleaseAge.Fixed(1)))
		}
		sb.WriteString(fmt.Sprintf("Priced from: %s\n", escapeMarkdown(r.SlugDisplay())))

		sb.WriteString("\n")
		sb.WriteString(renderReconciliation(prediction.Reconcile(r)))
	}

	switch panel := prediction.PanelFor(r); panel.Kind {
	case prediction.PanelBuilding:
		sb.WriteString("\n🔄 Similar items: index is still being built\n")
	case prediction.PanelMatches:
		sb.WriteString("\n*Similar items*\n")
		for i, item := range panel.Items {
			name := item.Slug
			if name == "" {
				name = item.ClassName
			}
			if name == "" {
				name = item.Filename
			}
			if name == "" {
				name = item.Path
			}
			line := fmt.Sprintf("%d. %s", i+1, escapeMarkdown(name))
			if item.Score.Valid {
				line += fmt.Sprintf(" (%s)", item.Score.Percent())
			}
			sb.WriteString(line + "\n")
		}
	}

	if r.ServiceError != "" {
		sb.WriteString(fmt.Sprintf("\n⚠️ %s\n", escapeMarkdown(r.ServiceError)))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func renderReconciliation(rec prediction.Reconciliation) string {
	if rec.Existing {
		return "📦 " + fmt.Sprintf(MsgAddExisting, rec.CurrentQuantity, rec.EffectivePrice.Money()) + "\n"
	}
	return fmt.Sprintf("🆕 %s, suggested price %s\n", MsgAddNewItem, rec.SuggestedPrice.Money())
}

func badgeIcon(o prediction.Outcome) string {
	switch o {
	case prediction.OutcomeAccepted:
		return "✅"
	case prediction.OutcomeNeedsConfirmation:
		return "⚠️"
	case prediction.OutcomeRejected:
		return "🚫"
	}
	return ""
}

// resultKeyboard returns nil when the commit action is not offered. The button
// names the upload it belongs to, so a tap on an older result is detectable.
func resultKeyboard(r prediction.Result, imageFingerprint string) *tgbotapi.InlineKeyboardMarkup {
	action := prediction.CommitActionFor(r)
	if !action.Offered {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(action.Label, "add:start:"+imageFingerprint),
		),
	)
	return &markup
}
