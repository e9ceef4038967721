// Package metrics exposes Prometheus collectors for the progress backend.
package metrics

import (
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	evaluationsTotal  *prometheus.CounterVec
	phaseUnlocksTotal *prometheus.CounterVec
	phaseChangesTotal *prometheus.CounterVec
	httpRequestsTotal *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		evaluationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progress_evaluations_total",
				Help: "Total number of recorded evaluation scores, labeled by phase and completion.",
			},
			[]string{"phase", "completed"},
		)

		phaseUnlocksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progress_phase_unlocks_total",
				Help: "Total number of phases unlocked, labeled by the unlocked phase.",
			},
			[]string{"phase"},
		)

		phaseChangesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progress_phase_changes_total",
				Help: "Total number of phase change attempts, labeled by target phase and result.",
			},
			[]string{"phase", "result"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)
	})
}

// RecordEvaluation counts one recorded score. No-op before Init.
func RecordEvaluation(phase string, completed bool) {
	if evaluationsTotal == nil {
		return
	}
	evaluationsTotal.WithLabelValues(phase, strconv.FormatBool(completed)).Inc()
}

// RecordUnlock counts a phase transitioning from locked to unlocked.
func RecordUnlock(phase string) {
	if phaseUnlocksTotal == nil {
		return
	}
	phaseUnlocksTotal.WithLabelValues(phase).Inc()
}

// RecordPhaseChange counts a phase change attempt with its result
// ("ok", "locked", "invalid", "not_found" or "error").
func RecordPhaseChange(phase, result string) {
	if phaseChangesTotal == nil {
		return
	}
	phaseChangesTotal.WithLabelValues(phase, result).Inc()
}

// Middleware counts every request after the downstream handler ran.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if httpRequestsTotal != nil {
			code := c.Response().StatusCode()
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			httpRequestsTotal.WithLabelValues(c.Method(), strconv.Itoa(code)).Inc()
		}
		return err
	}
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
