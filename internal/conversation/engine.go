package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/foundry-guide/internal/answer"
	"github.com/wolfman30/foundry-guide/internal/observability/metrics"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// AnswerMode picks how menu leaves are answered.
type AnswerMode string

const (
	// AnswerModeCanned uses the menu's canned text and asks the FAQ
	// pipeline only for leaves without one.
	AnswerModeCanned AnswerMode = "canned"
	// AnswerModeKnowledge asks the FAQ pipeline with the leaf label and
	// uses canned text only when nothing matched.
	AnswerModeKnowledge AnswerMode = "knowledge"
)

// Answerer is the free-text pipeline used for menu leaves.
type Answerer interface {
	Ask(ctx context.Context, userID, question string) answer.Answer
}

// EngineOptions configure an Engine. Zero values take the defaults.
type EngineOptions struct {
	Menu      *Menu
	Mode      AnswerMode
	Answerer  Answerer
	Formatter Formatter
	Logger    *logging.Logger
	Metrics   *metrics.ChatMetrics
}

// Engine interprets events against the menu tables. It holds no per-session
// state and is safe for concurrent use.
type Engine struct {
	menu     *Menu
	mode     AnswerMode
	answerer Answerer
	format   Formatter
	logger   *logging.Logger
	events   *EventLogger
	metrics  *metrics.ChatMetrics
}

func NewEngine(opts EngineOptions) *Engine {
	e := &Engine{
		menu:     opts.Menu,
		mode:     opts.Mode,
		answerer: opts.Answerer,
		format:   opts.Formatter,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	if e.menu == nil {
		e.menu = DefaultMenu()
	}
	if e.mode != AnswerModeKnowledge {
		e.mode = AnswerModeCanned
	}
	if e.format == nil {
		e.format = FormatBotMessage
	}
	if e.logger == nil {
		e.logger = logging.Default()
	}
	e.events = NewEventLogger(e.logger)
	return e
}

// Menu returns the engine's menu tables.
func (e *Engine) Menu() *Menu { return e.menu }

// NewSession starts a session formatted the way this engine formats.
func (e *Engine) NewSession(id string) *Session {
	return NewSession(id, e.format)
}

// IsResetCommand reports whether input asks to start over.
func IsResetCommand(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "reset", "start over":
		return true
	}
	return false
}

// Handle applies one event to s. It returns the session that owns the
// conversation afterwards: s itself, or a fresh session after a reset.
func (e *Engine) Handle(ctx context.Context, s *Session, input string) (Response, *Session) {
	from := s.stage
	trimmed := strings.TrimSpace(input)

	if IsResetCommand(trimmed) {
		fresh := e.NewSession(s.id)
		e.events.SessionReset(ctx, s.id, from)
		e.metrics.ObserveEvent(from.String(), "reset")
		return fresh.InitialResponse(), fresh
	}

	if trimmed == "" {
		e.metrics.ObserveEvent(from.String(), "empty")
		return s.reply([]Message{{Role: RoleBot, Content: e.format(EmptyInputMessage)}}, e.currentOptions(s)), s
	}

	var resp Response
	var outcome string
	switch s.stage {
	case StageAwaitName:
		resp, outcome = e.handleName(s, trimmed)
	case StageMenuPrimary:
		resp, outcome = e.handlePrimary(ctx, s, trimmed)
	case StageMenuSecondary:
		resp, outcome = e.handleSecondary(ctx, s, trimmed)
	default:
		resp, outcome = e.recover(ctx, s)
	}

	if s.stage != from {
		e.events.StageChanged(ctx, s.id, from, s.stage)
	}
	e.metrics.ObserveEvent(from.String(), outcome)
	return resp, s
}

func (e *Engine) handleName(s *Session, name string) (Response, string) {
	s.visitorName = titleCase(name)
	s.appendUser(name)
	s.stage = StageMenuPrimary
	return s.respond(
		[]string{e.format(fmt.Sprintf(NameAckTemplate, s.visitorName))},
		e.menu.PrimaryOptions(),
	), "accepted"
}

func (e *Engine) handlePrimary(ctx context.Context, s *Session, input string) (Response, string) {
	options := e.menu.PrimaryOptions()
	match, ok := matchOption(input, options)
	if !ok {
		e.events.OptionRejected(ctx, s.id, s.stage, input)
		return s.reply([]Message{{Role: RoleBot, Content: e.format(PrimaryRepromptMessage)}}, options), "rejected"
	}

	s.appendUser(input)
	s.primaryChoice = match
	s.stage = StageMenuSecondary
	return s.respond(
		[]string{e.format(fmt.Sprintf(SecondaryPromptTemplate, match))},
		e.menu.SecondaryOptions(match),
	), "accepted"
}

func (e *Engine) handleSecondary(ctx context.Context, s *Session, input string) (Response, string) {
	options := e.menu.SecondaryOptions(s.primaryChoice)
	if s.primaryChoice == "" || len(options) == 0 {
		return e.recover(ctx, s)
	}

	match, ok := matchOption(input, options)
	if !ok {
		e.events.OptionRejected(ctx, s.id, s.stage, input)
		return s.reply([]Message{{Role: RoleBot, Content: e.format(SecondaryRepromptMessage)}}, options), "rejected"
	}

	s.appendUser(input)
	s.stage = StageShowInfo
	info := e.leafAnswer(ctx, s.id, match)
	s.primaryChoice = ""
	s.stage = StageMenuPrimary

	if info == "" {
		return s.respond([]string{e.format(MissingSnippetMessage)}, e.menu.PrimaryOptions()), "missing"
	}
	return s.respond(
		[]string{e.format(info), e.format(ClosingMessage)},
		e.menu.PrimaryOptions(),
	), "answered"
}

// leafAnswer returns the raw text for a menu leaf, or "" when none exists.
func (e *Engine) leafAnswer(ctx context.Context, sessionID, label string) string {
	canned, hasCanned := e.menu.Answer(label)
	if e.mode == AnswerModeCanned && hasCanned {
		e.events.AnswerComposed(ctx, sessionID, label, "canned", false)
		return canned
	}
	if e.answerer != nil {
		ans := e.answerer.Ask(ctx, sessionID, label)
		if ans.Source != answer.SourceGeneric && ans.Source != answer.SourceRetryLater {
			e.events.AnswerComposed(ctx, sessionID, label, string(ans.Source), ans.Degraded)
			return ans.Text
		}
	}
	if hasCanned {
		e.events.AnswerComposed(ctx, sessionID, label, "canned", false)
		return canned
	}
	return ""
}

// recover handles a session whose stage cannot be interpreted.
func (e *Engine) recover(ctx context.Context, s *Session) (Response, string) {
	from := s.stage
	e.logger.Warn("conversation: inconsistent session state, returning to primary menu",
		"session_id", s.id,
		"stage", from.String(),
		"primary_choice", s.primaryChoice,
	)
	e.events.StateRecovered(ctx, s.id, from)
	s.primaryChoice = ""
	s.stage = StageMenuPrimary
	return s.respond([]string{e.format(RecoveryMessage)}, e.menu.PrimaryOptions()), "recovered"
}

func (e *Engine) currentOptions(s *Session) []string {
	switch s.stage {
	case StageMenuPrimary:
		return e.menu.PrimaryOptions()
	case StageMenuSecondary:
		if s.primaryChoice != "" {
			return e.menu.SecondaryOptions(s.primaryChoice)
		}
	}
	return []string{}
}
