package interactions

import (
	"context"
	"errors"
	"time"

	"github.com/wolfman30/foundry-guide/internal/observability/metrics"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// DefaultAppendTimeout bounds one Record call across all sinks.
const DefaultAppendTimeout = 2 * time.Second

// Recorder writes records to a sink and swallows failures after logging
// them.
type Recorder struct {
	sink    Sink
	logger  *logging.Logger
	metrics *metrics.ChatMetrics
	timeout time.Duration
}

func NewRecorder(sink Sink, logger *logging.Logger, m *metrics.ChatMetrics) *Recorder {
	if sink == nil {
		sink = Nop{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Recorder{sink: sink, logger: logger, metrics: m, timeout: DefaultAppendTimeout}
}

// WithTimeout sets how long Record may wait on the sinks. Non-positive
// values keep the current timeout.
func (r *Recorder) WithTimeout(d time.Duration) *Recorder {
	if r != nil && d > 0 {
		r.timeout = d
	}
	return r
}

// Record appends rec. It never fails. The write outlives a cancelled
// caller but never runs past the recorder's own timeout.
func (r *Recorder) Record(ctx context.Context, rec Record) {
	if r == nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	err := r.sink.Append(writeCtx, rec)
	if err == nil {
		return
	}

	for _, failed := range persistErrors(err) {
		r.metrics.ObserveLogFailure(failed.Sink)
		r.logger.Warn("interactions: failed to persist record",
			"sink", failed.Sink,
			"record_id", rec.ID,
			"error", failed.Err,
		)
	}
}

func persistErrors(err error) []*PersistError {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*PersistError
		for _, e := range joined.Unwrap() {
			out = append(out, persistErrors(e)...)
		}
		return out
	}
	var pe *PersistError
	if errors.As(err, &pe) {
		return []*PersistError{pe}
	}
	return []*PersistError{{Sink: "unknown", Err: err}}
}
