package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	fetchDuration   *prom.HistogramVec
	resolutions     *prom.CounterVec
	doiLookups      *prom.CounterVec
	batchDuration   prom.Histogram
	batchSize       prom.Histogram
	poolConcurrency prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		fetchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "linktitle",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of individual link fetches",
			Buckets:   prom.DefBuckets,
		}, []string{"status"}),
		resolutions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "linktitle",
			Name:      "resolutions_total",
			Help:      "Link resolutions by outcome and failure kind",
		}, []string{"outcome", "kind"}),
		doiLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "linktitle",
			Name:      "doi_lookups_total",
			Help:      "DOI citation lookups by result",
		}, []string{"result"}),
		batchDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "linktitle",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of resolution batches",
			Buckets:   prom.DefBuckets,
		}),
		batchSize: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "linktitle",
			Name:      "batch_links",
			Help:      "Distinct links per resolution batch",
			Buckets:   prom.ExponentialBuckets(1, 2, 8),
		}),
		poolConcurrency: prom.NewGauge(prom.GaugeOpts{
			Namespace: "linktitle",
			Name:      "pool_concurrency",
			Help:      "Worker count of the most recent batch",
		}),
	}
	reg.MustRegister(pr.fetchDuration, pr.resolutions, pr.doiLookups, pr.batchDuration, pr.batchSize, pr.poolConcurrency)
	return pr
}

func (p *PrometheusRecorder) ObserveFetchDuration(d time.Duration, status string) {
	if p == nil {
		return
	}
	p.fetchDuration.WithLabelValues(status).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncResolution(outcome string, kind string) {
	if p == nil {
		return
	}
	p.resolutions.WithLabelValues(outcome, kind).Inc()
}

func (p *PrometheusRecorder) IncDOILookup(success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.doiLookups.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveBatchDuration(d time.Duration, links int) {
	if p == nil {
		return
	}
	p.batchDuration.Observe(d.Seconds())
	p.batchSize.Observe(float64(links))
}

func (p *PrometheusRecorder) SetPoolConcurrency(n int) {
	if p == nil {
		return
	}
	p.poolConcurrency.Set(float64(n))
}

// HTTPHandler returns an http.Handler that serves the metrics registered on reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
