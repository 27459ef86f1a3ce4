package logger

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	logMessages     *prometheus.CounterVec //nolint:gochecknoglobals
	logMessagesOnce sync.Once              //nolint:gochecknoglobals
)

// MetricsHook counts written log messages per level in the log_messages_total counter.
type MetricsHook struct {
	counter *prometheus.CounterVec
}

// Run implements zerolog.Hook.
func (h MetricsHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level == zerolog.NoLevel || level == zerolog.Disabled {
		return
	}

	h.counter.WithLabelValues(level.String()).Inc()
}

// NewMetricsHook returns the hook. The counter is registered once per process,
// the service label is the one of the first call.
func NewMetricsHook(service string) MetricsHook {
	logMessagesOnce.Do(func() {
		logMessages = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "log_messages_total",
				Help:        "Number of log messages by level.",
				ConstLabels: prometheus.Labels{"service": service},
			},
			[]string{"level"},
		)
	})

	return MetricsHook{counter: logMessages}
}
