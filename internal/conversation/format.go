package conversation

import "strings"

// Formatter renders bot text for a presentation layer.
type Formatter func(text string) string

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

var bulletMarkers = []string{"•", "-", "*"}

// FormatBotMessage renders text as HTML. Several lines, or any line that
// starts with a bullet marker, become a <ul class='bot-list'>; a single
// plain line is escaped and returned as is. Blank input yields "".
func FormatBotMessage(text string) string {
	lines := messageLines(text)
	if len(lines) == 0 {
		return ""
	}
	if !isBulleted(lines) {
		return htmlEscaper.Replace(lines[0])
	}

	var b strings.Builder
	b.WriteString("<ul class='bot-list'>")
	for _, line := range lines {
		b.WriteString("<li>")
		b.WriteString(htmlEscaper.Replace(stripBullet(line)))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// PlainText applies the same line rules for terminals: bulleted output
// becomes "• item" lines.
func PlainText(text string) string {
	lines := messageLines(text)
	if len(lines) == 0 {
		return ""
	}
	if !isBulleted(lines) {
		return lines[0]
	}
	items := make([]string, len(lines))
	for i, line := range lines {
		items[i] = "• " + stripBullet(line)
	}
	return strings.Join(items, "\n")
}

func messageLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func isBulleted(lines []string) bool {
	if len(lines) > 1 {
		return true
	}
	for _, line := range lines {
		if hasBullet(line) {
			return true
		}
	}
	return false
}

func hasBullet(line string) bool {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return false
}

func stripBullet(line string) string {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(line, m) {
			return strings.TrimSpace(strings.TrimPrefix(line, m))
		}
	}
	return line
}
