package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "teamsync"

// Recorder owns a private registry so tests and multiple servers in one
// process never collide on the default registerer.
type Recorder struct {
	registry *prometheus.Registry

	transitions    *prometheus.CounterVec
	taskRuns       *prometheus.CounterVec
	taskErrors     *prometheus.CounterVec
	taskAffected   *prometheus.CounterVec
	taskDuration   *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	lastSweepEpoch prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "membership_transitions_total",
			Help:      "Membership operations by outcome",
		}, []string{"operation", "outcome"}),
		taskRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "automation_task_runs_total",
			Help:      "Automation task runs",
		}, []string{"task"}),
		taskErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "automation_task_errors_total",
			Help:      "Automation task failures",
		}, []string{"task"}),
		taskAffected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "automation_task_affected_total",
			Help:      "Records changed by automation tasks",
		}, []string{"task"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "automation_task_duration_seconds",
			Help:      "Duration of automation tasks in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"task"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		lastSweepEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "automation_last_run_time_seconds",
			Help:      "Last automation task run in seconds since epoch",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.transitions,
		r.taskRuns,
		r.taskErrors,
		r.taskAffected,
		r.taskDuration,
		r.httpRequests,
		r.httpDuration,
		r.lastSweepEpoch,
	)
	return r
}

// MembershipTransition counts one membership operation.
func (r *Recorder) MembershipTransition(operation, outcome string) {
	r.transitions.WithLabelValues(operation, outcome).Inc()
}

// AutomationTask records one sweeper task run.
func (r *Recorder) AutomationTask(task string, affected int64, duration time.Duration, err error) {
	r.taskRuns.WithLabelValues(task).Inc()
	if err != nil {
		r.taskErrors.WithLabelValues(task).Inc()
	}
	if affected > 0 {
		r.taskAffected.WithLabelValues(task).Add(float64(affected))
	}
	r.taskDuration.WithLabelValues(task).Observe(duration.Seconds())
	r.lastSweepEpoch.Set(float64(time.Now().Unix()))
}

// HTTPRequest records one served request. route is the gin route template.
func (r *Recorder) HTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
