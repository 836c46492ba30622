package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return nil
}

func TestChatMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChatMetrics(reg)

	m.ObserveSessionCreated()
	m.ObserveSessionCreated()
	m.ObserveEvent("menu_primary", "matched")
	m.ObserveCompletionAttempt("bedrock", "rate_limit")
	m.ObserveAnswerLatency("faq", 0.25)
	m.ObserveLogFailure("redis")

	created := gather(t, reg, "guide_chat_sessions_created_total")
	assert.Equal(t, float64(2), created.GetMetric()[0].GetCounter().GetValue())

	events := gather(t, reg, "guide_chat_events_total")
	require.Len(t, events.GetMetric(), 1)
	labels := map[string]string{}
	for _, lp := range events.GetMetric()[0].GetLabel() {
		labels[lp.GetName()] = lp.GetValue()
	}
	assert.Equal(t, map[string]string{"stage": "menu_primary", "outcome": "matched"}, labels)

	latency := gather(t, reg, "guide_answer_answer_latency_seconds")
	assert.Equal(t, uint64(1), latency.GetMetric()[0].GetHistogram().GetSampleCount())

	failures := gather(t, reg, "guide_interactions_interaction_log_failures_total")
	assert.Equal(t, float64(1), failures.GetMetric()[0].GetCounter().GetValue())
}

func TestChatMetricsNilSafe(t *testing.T) {
	var m *ChatMetrics
	m.ObserveSessionCreated()
	m.ObserveEvent("ask_name", "accepted")
	m.ObserveCompletionAttempt("openai", "ok")
	m.ObserveAnswerLatency("llm", 0.1)
	m.ObserveLogFailure("file")
}
