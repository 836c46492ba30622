package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the guided chat flows.
type ChatMetrics struct {
	sessionsCreated    prometheus.Counter
	eventsTotal        *prometheus.CounterVec
	completionAttempts *prometheus.CounterVec
	answerLatency      *prometheus.HistogramVec
	logFailures        *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "guide",
			Subsystem: "chat",
			Name:      "sessions_created_total",
			Help:      "Total chat sessions created",
		}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guide",
			Subsystem: "chat",
			Name:      "events_total",
			Help:      "Chat events handled, by stage before handling and outcome",
		}, []string{"stage", "outcome"}),
		completionAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guide",
			Subsystem: "answer",
			Name:      "completion_attempts_total",
			Help:      "Completion service calls, by provider and outcome",
		}, []string{"provider", "outcome"}),
		answerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "guide",
			Subsystem: "answer",
			Name:      "answer_latency_seconds",
			Help:      "Latency of answer composition",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		logFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guide",
			Subsystem: "interactions",
			Name:      "interaction_log_failures_total",
			Help:      "Interaction records that could not be persisted",
		}, []string{"sink"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsCreated, m.eventsTotal, m.completionAttempts, m.answerLatency, m.logFailures)
	return m
}

func (m *ChatMetrics) ObserveSessionCreated() {
	if m == nil {
		return
	}
	m.sessionsCreated.Inc()
}

func (m *ChatMetrics) ObserveEvent(stage, outcome string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(stage, outcome).Inc()
}

func (m *ChatMetrics) ObserveCompletionAttempt(provider, outcome string) {
	if m == nil {
		return
	}
	m.completionAttempts.WithLabelValues(provider, outcome).Inc()
}

func (m *ChatMetrics) ObserveAnswerLatency(source string, seconds float64) {
	if m == nil {
		return
	}
	m.answerLatency.WithLabelValues(source).Observe(seconds)
}

func (m *ChatMetrics) ObserveLogFailure(sink string) {
	if m == nil {
		return
	}
	m.logFailures.WithLabelValues(sink).Inc()
}
