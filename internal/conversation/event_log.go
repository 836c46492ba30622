package conversation

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// SessionEvent is a structured event in a session's lifecycle. All events
// share the same base fields for easy filtering/grep.
type SessionEvent struct {
	Time      string         `json:"time"`
	Event     string         `json:"event"`
	SessionID string         `json:"session_id"`
	Stage     Stage          `json:"stage,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// EventLogger emits one-line JSON events at each decision point:
//
//	grep '"event":"option_rejected"' /var/log/app.log
//	grep '"session_id":"9f2c..."' /var/log/app.log
type EventLogger struct {
	logger *logging.Logger
}

func NewEventLogger(logger *logging.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// Log emits a structured session event.
func (e *EventLogger) Log(_ context.Context, event, sessionID string, stage Stage, data map[string]any) {
	if e == nil || e.logger == nil {
		return
	}
	evt := SessionEvent{
		Time:      time.Now().UTC().Format(time.RFC3339Nano),
		Event:     event,
		SessionID: sessionID,
		Stage:     stage,
		Data:      data,
	}
	b, _ := json.Marshal(evt)
	e.logger.Info(string(b))
}

func (e *EventLogger) SessionCreated(ctx context.Context, sessionID string) {
	e.Log(ctx, "session_created", sessionID, StageAwaitName, nil)
}

func (e *EventLogger) SessionReset(ctx context.Context, sessionID string, from Stage) {
	e.Log(ctx, "session_reset", sessionID, StageAwaitName, map[string]any{"from": from})
}

func (e *EventLogger) StageChanged(ctx context.Context, sessionID string, from, to Stage) {
	e.Log(ctx, "stage_changed", sessionID, to, map[string]any{"from": from})
}

func (e *EventLogger) OptionRejected(ctx context.Context, sessionID string, stage Stage, input string) {
	e.Log(ctx, "option_rejected", sessionID, stage, map[string]any{"input": truncateInput(input, maxLoggedInput)})
}

func (e *EventLogger) AnswerComposed(ctx context.Context, sessionID, label, source string, degraded bool) {
	e.Log(ctx, "answer_composed", sessionID, StageShowInfo, map[string]any{
		"label":    label,
		"source":   source,
		"degraded": degraded,
	})
}

func (e *EventLogger) StateRecovered(ctx context.Context, sessionID string, from Stage) {
	e.Log(ctx, "state_recovered", sessionID, StageMenuPrimary, map[string]any{"from": from})
}

const maxLoggedInput = 200

// truncateInput cuts s to at most max bytes on a rune boundary.
func truncateInput(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
