package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBotMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bullets", "• a\n• b", "<ul class='bot-list'><li>a</li><li>b</li></ul>"},
		{"plain", "hello", "hello"},
		{"empty", "", ""},
		{"whitespace", "  \n\t \n", ""},
		{"single bullet", "- only one", "<ul class='bot-list'><li>only one</li></ul>"},
		{"multi line without markers", "first\n\nsecond", "<ul class='bot-list'><li>first</li><li>second</li></ul>"},
		{"mixed markers", "* star\n-dash\n• dot", "<ul class='bot-list'><li>star</li><li>dash</li><li>dot</li></ul>"},
		{"one marker stripped", "-- twice", "<ul class='bot-list'><li>- twice</li></ul>"},
		{"escaping", `<b>"Tom" & 'Jerry'</b>`, "&lt;b&gt;&quot;Tom&quot; &amp; &#x27;Jerry&#x27;&lt;/b&gt;"},
		{"escaped items", "• R&D\n• <script>", "<ul class='bot-list'><li>R&amp;D</li><li>&lt;script&gt;</li></ul>"},
		{"trimmed", "   padded   ", "padded"},
		{"crlf", "• a\r\n• b", "<ul class='bot-list'><li>a</li><li>b</li></ul>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBotMessage(tt.in))
		})
	}
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "• a\n• b", PlainText("- a\n* b"))
	assert.Equal(t, "Tom & Jerry", PlainText("  Tom & Jerry "))
	assert.Equal(t, "", PlainText("\n\n"))
}
