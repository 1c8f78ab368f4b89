package bot

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
	"golang.org/x/crypto/blake2b"
)

func formatReplyText(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

func parseCommand(s string) (string, []string) {
	parts := strings.Split(s, " ")
	command := parts[0]
	// Commands in groups arrive as /inventory@botname
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}
	return command, parts[1:]
}

// escapeMarkdown escapes special characters for Telegram Markdown V1
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "*", "\\*")
	text = strings.ReplaceAll(text, "_", "\\_")
	text = strings.ReplaceAll(text, "`", "\\`")
	text = strings.ReplaceAll(text, "[", "\\[")
	return text
}

// fingerprint is a short content hash of an image, used to correlate log
// lines of one upload.
func fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:6])
}

func pluralize(singular string, plural string, count int) string {
	var s string
	if count == 1 {
		s = singular
	} else {
		s = plural
	}
	return fmt.Sprintf("%d %s", count, s)
}
