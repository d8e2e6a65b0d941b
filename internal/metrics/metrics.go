// Package metrics exposes Prometheus collectors for tool calls and
// reminder scheduling.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tool call outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePanic   = "panic"
)

// Metrics holds the extension's collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	toolCalls          *prometheus.CounterVec
	toolDuration       *prometheus.HistogramVec
	remindersScheduled prometheus.Counter
	remindersCancelled prometheus.Counter
	remindersFired     *prometheus.CounterVec
}

// New creates the collectors on a fresh registry alongside the Go and
// process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoext_tool_calls_total",
				Help: "Tool and action invocations by outcome",
			},
			[]string{"tool", "outcome"},
		),
		toolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todoext_tool_duration_seconds",
				Help:    "Tool and action latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		remindersScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoext_reminders_scheduled_total",
			Help: "Reminder jobs submitted to the scheduler",
		}),
		remindersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoext_reminders_cancelled_total",
			Help: "Reminder jobs cancelled",
		}),
		remindersFired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoext_reminders_fired_total",
				Help: "Fired reminder jobs by outcome",
			},
			[]string{"outcome"},
		),
	}
	registry.MustRegister(m.toolCalls, m.toolDuration, m.remindersScheduled, m.remindersCancelled, m.remindersFired)
	return m
}

// ObserveTool records one tool call.
func (m *Metrics) ObserveTool(tool, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// ReminderScheduled counts a submitted job.
func (m *Metrics) ReminderScheduled() {
	if m == nil {
		return
	}
	m.remindersScheduled.Inc()
}

// ReminderCancelled counts a cancelled job.
func (m *Metrics) ReminderCancelled() {
	if m == nil {
		return
	}
	m.remindersCancelled.Inc()
}

// ReminderFired counts a fired job. Outcome is "delivered", "skipped" or
// "failed".
func (m *Metrics) ReminderFired(outcome string) {
	if m == nil {
		return
	}
	m.remindersFired.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
