package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	registry         *prom.Registry
	stageDuration    *prom.HistogramVec
	buildDuration    prom.Histogram
	stageResults     *prom.CounterVec
	buildOutcome     *prom.CounterVec
	pagesTransformed prom.Counter
	redirectsWritten prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitepipe",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitepipe",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitepipe",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitepipe",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.pagesTransformed = prom.NewCounter(prom.CounterOpts{
			Namespace: "sitepipe",
			Name:      "pages_transformed_total",
			Help:      "Pages run through the transform pipeline",
		})
		pr.redirectsWritten = prom.NewCounter(prom.CounterOpts{
			Namespace: "sitepipe",
			Name:      "redirect_stubs_written_total",
			Help:      "Redirect stub documents written",
		})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults,
			pr.buildOutcome, pr.pagesTransformed, pr.redirectsWritten)
	})
	return pr
}

// Handler exposes the recorder's registry over HTTP for the watch command.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) AddPagesTransformed(n int) {
	if p == nil || p.pagesTransformed == nil {
		return
	}
	p.pagesTransformed.Add(float64(n))
}

func (p *PrometheusRecorder) AddRedirectsWritten(n int) {
	if p == nil || p.redirectsWritten == nil {
		return
	}
	p.redirectsWritten.Add(float64(n))
}
