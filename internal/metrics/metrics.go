// Package metrics exposes Prometheus metrics for the cache server.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	tcerrors "github.com/mrz1836/turbocache/internal/errors"
)

const namespace = "turbocache"

// Result label values.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Metrics holds the collectors and their registry.
type Metrics struct {
	registry *prometheus.Registry

	artifactOps      *prometheus.CounterVec
	artifactDuration *prometheus.HistogramVec
	gitCommands      *prometheus.CounterVec
	gitDuration      *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
}

// New creates a registry with runtime collectors and the cache metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		artifactOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_operations_total",
			Help:      "Artifact operations by operation and result.",
		}, []string{"op", "result"}),
		artifactDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "artifact_operation_duration_seconds",
			Help:      "Duration of artifact operations, including backend synchronization.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		gitCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "git_commands_total",
			Help:      "Git commands run by the git repository backend.",
		}, []string{"command", "result"}),
		gitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "git_command_duration_seconds",
			Help:      "Duration of git commands.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"command"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}

	reg.MustRegister(m.artifactOps, m.artifactDuration, m.gitCommands, m.gitDuration, m.httpRequests)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveArtifactOp records a facade operation. Signature matches storage.OpObserver.
func (m *Metrics) ObserveArtifactOp(op string, elapsed time.Duration, err error) {
	m.artifactOps.WithLabelValues(op, result(err)).Inc()
	m.artifactDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveGitCommand records a git invocation. Signature matches git.CommandObserver.
func (m *Metrics) ObserveGitCommand(command string, elapsed time.Duration, err error) {
	res := ResultOK
	if err != nil {
		res = ResultError
	}
	m.gitCommands.WithLabelValues(command, res).Inc()
	m.gitDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// ObserveRequest records a served HTTP request.
func (m *Metrics) ObserveRequest(route string, code int) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, tcerrors.ErrArtifactNotFound):
		return ResultNotFound
	default:
		return ResultError
	}
}
