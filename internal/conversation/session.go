package conversation

import (
	"strings"
	"unicode"
)

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Message is one history entry or response bubble.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is what a caller renders after each event.
type Response struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	Options   []string  `json:"options"`
	Stage     Stage     `json:"stage"`
}

// Session is one visitor's walk through the menu. It is mutated only by
// Engine.Handle; callers serialize access per session id.
type Session struct {
	id            string
	stage         Stage
	visitorName   string
	primaryChoice string
	history       []Message
}

// NewSession starts a session at StageAwaitName seeded with the greeting.
func NewSession(id string, format Formatter) *Session {
	if format == nil {
		format = FormatBotMessage
	}
	return &Session{
		id:      id,
		stage:   StageAwaitName,
		history: []Message{{Role: RoleBot, Content: format(GreetingMessage)}},
	}
}

func (s *Session) ID() string { return s.id }
func (s *Session) Stage() Stage { return s.stage }
func (s *Session) VisitorName() string { return s.visitorName }
func (s *Session) PrimaryChoice() string { return s.primaryChoice }

// History returns a copy of the message history.
func (s *Session) History() []Message {
	return append([]Message(nil), s.history...)
}

// InitialResponse replays the latest bot message with no options.
func (s *Session) InitialResponse() Response {
	var last []Message
	if n := len(s.history); n > 0 {
		last = []Message{s.history[n-1]}
	}
	return Response{SessionID: s.id, Messages: last, Options: []string{}, Stage: s.stage}
}

func (s *Session) clone() *Session {
	c := *s
	c.history = s.History()
	return &c
}

func (s *Session) appendUser(text string) {
	s.history = append(s.history, Message{Role: RoleUser, Content: text})
}

// respond appends bot messages to history and builds the response.
func (s *Session) respond(messages []string, options []string) Response {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		msg := Message{Role: RoleBot, Content: m}
		s.history = append(s.history, msg)
		out = append(out, msg)
	}
	return s.reply(out, options)
}

func (s *Session) reply(messages []Message, options []string) Response {
	if options == nil {
		options = []string{}
	}
	return Response{SessionID: s.id, Messages: messages, Options: options, Stage: s.stage}
}

// titleCase upper-cases the first letter of every word and lower-cases the
// rest; a word starts after any non-letter.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToTitle(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
