package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docnotion"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry         *prom.Registry
	stageDuration    *prom.HistogramVec
	runDuration      prom.Histogram
	runOutcome       *prom.CounterVec
	pageOutcome      *prom.CounterVec
	remoteDuration   *prom.HistogramVec
	remoteCalls      *prom.CounterVec
	retries          *prom.CounterVec
	retriesExhausted *prom.CounterVec
	pagesDiscovered  prom.Gauge
	filesRemoved     prom.Gauge
	lastSuccess      prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg (a
// fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual pull stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Total pull duration",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
	})
	pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "run_outcomes_total",
		Help:      "Pull outcomes by final status",
	}, []string{"outcome"})
	pr.pageOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "pages_total",
		Help:      "Pages handled by the output stage, by outcome",
	}, []string{"outcome"})
	pr.remoteDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_call_duration_seconds",
		Help:      "Latency of remote API calls",
		Buckets:   prom.DefBuckets,
	}, []string{"operation"})
	pr.remoteCalls = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "remote_calls_total",
		Help:      "Remote API calls by operation and result",
	}, []string{"operation", "result"})
	pr.retries = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "retries_total",
		Help:      "Retried remote operations (transient failures)",
	}, []string{"operation"})
	pr.retriesExhausted = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "retry_exhausted_total",
		Help:      "Remote operations that failed after the last allowed attempt",
	}, []string{"operation"})
	pr.pagesDiscovered = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pages_discovered",
		Help:      "Pages registered by the outline walk of the last run",
	})
	pr.filesRemoved = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "stale_files_removed",
		Help:      "Stale files deleted by the cleanup stage of the last run",
	})
	pr.lastSuccess = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful pull",
	})
	reg.MustRegister(pr.stageDuration, pr.runDuration, pr.runOutcome, pr.pageOutcome,
		pr.remoteDuration, pr.remoteCalls, pr.retries, pr.retriesExhausted,
		pr.pagesDiscovered, pr.filesRemoved, pr.lastSuccess)
	return pr
}

// Registry returns the registry the recorder's metrics live in.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome RunOutcome) {
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
	if outcome == RunSuccess {
		p.lastSuccess.SetToCurrentTime()
	}
}

func (p *PrometheusRecorder) AddPageOutcome(outcome PageOutcome, n int) {
	p.pageOutcome.WithLabelValues(string(outcome)).Add(float64(n))
}

func (p *PrometheusRecorder) ObserveRemoteCall(operation string, d time.Duration, success bool) {
	res := "failed"
	if success {
		res = "success"
	}
	p.remoteDuration.WithLabelValues(operation).Observe(d.Seconds())
	p.remoteCalls.WithLabelValues(operation, res).Inc()
}

func (p *PrometheusRecorder) IncRetry(operation string) {
	p.retries.WithLabelValues(operation).Inc()
}

func (p *PrometheusRecorder) IncRetryExhausted(operation string) {
	p.retriesExhausted.WithLabelValues(operation).Inc()
}

func (p *PrometheusRecorder) SetPagesDiscovered(n int) { p.pagesDiscovered.Set(float64(n)) }
func (p *PrometheusRecorder) SetFilesRemoved(n int)    { p.filesRemoved.Set(float64(n)) }

// WriteTextfile writes every registered metric to path in the text exposition
// format. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
