// Package metrics exports Prometheus metrics for every surface that drives
// the machine: the HTML form, the JSON API, gRPC and the CLI.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RowanDark/enigma/internal/observability/tracing"
)

// Outcome labels for enigma_messages_total.
const (
	OutcomeOK            = "ok"
	OutcomeConfigError   = "config_error"
	OutcomeInputError    = "input_error"
	OutcomeInternalError = "internal_error"
)

var (
	registry = prometheus.NewRegistry()

	messages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enigma_messages_total",
		Help: "Messages processed, by surface and outcome.",
	}, []string{"surface", "outcome"})

	letters = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enigma_letters_total",
		Help: "Letters enciphered, by surface. Each letter steps the rotors once.",
	}, []string{"surface"})

	configErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enigma_config_errors_total",
		Help: "Rejected machine configurations, by surface and reason.",
	}, []string{"surface", "reason"})

	processDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "enigma_process_duration_seconds",
		Help:    "Time spent building a machine and processing one message.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"surface"})

	rpcRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enigma_rpc_requests_total",
		Help: "gRPC requests handled, by method and status code.",
	}, []string{"method", "code"})
)

func init() {
	registry.MustRegister(
		messages, letters, configErrors, processDuration, rpcRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the registry backing Handler.
func Registry() *prometheus.Registry {
	return registry
}

// ObserveMessage records one processed message. The duration sample carries
// the active trace id as an exemplar when a span is recording.
func ObserveMessage(ctx context.Context, surface, outcome string, letterCount int, dur time.Duration) {
	messages.WithLabelValues(surface, outcome).Inc()
	if letterCount > 0 {
		letters.WithLabelValues(surface).Add(float64(letterCount))
	}
	observer := processDuration.WithLabelValues(surface)
	if traceID := tracing.TraceIDFromContext(ctx); traceID != "" {
		if eo, ok := observer.(prometheus.ExemplarObserver); ok {
			eo.ObserveWithExemplar(dur.Seconds(), prometheus.Labels{"trace_id": traceID})
			return
		}
	}
	observer.Observe(dur.Seconds())
}

// RecordConfigError counts a rejected configuration.
func RecordConfigError(surface, reason string) {
	configErrors.WithLabelValues(surface, reason).Inc()
}

// RecordRPCRequest counts a handled gRPC call.
func RecordRPCRequest(method, code string) {
	rpcRequests.WithLabelValues(method, code).Inc()
}
