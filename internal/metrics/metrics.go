// Package metrics экспортирует счётчики сверки в Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"supplier-match/internal/reconcile/model"
)

const namespace = "supplier_match"

// Recorder — nil-safe: с выключенными метриками хендлеры получают nil и ничего не пишут.
type Recorder struct {
	reg         *prometheus.Registry
	duration    prometheus.Histogram
	rows        *prometheus.CounterVec
	comparisons prometheus.Counter
	failures    prometheus.Counter
}

// New регистрирует метрики в собственном реестре (плюс go/process коллекторы).
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		reg: reg,
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Wall time of a catalog reconciliation run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_rows_total",
			Help:      "Matched rows by method (sku, exact, tokens) and unmatched rows (only_a, only_b).",
		}, []string{"method"}),
		comparisons: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Token-set similarity comparisons performed.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_errors_total",
			Help:      "Reconciliation runs that ended with an error.",
		}),
	}
	reg.MustRegister(
		r.duration, r.rows, r.comparisons, r.failures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveReconcile — один вызов на прогон сверки.
func (r *Recorder) ObserveReconcile(d time.Duration, res model.Result, err error) {
	if r == nil {
		return
	}
	r.duration.Observe(d.Seconds())
	if err != nil {
		r.failures.Inc()
		return
	}
	r.rows.WithLabelValues(model.MethodSku).Add(float64(res.Stats.BySku))
	r.rows.WithLabelValues(model.MethodExact).Add(float64(res.Stats.ByExact))
	r.rows.WithLabelValues(model.MethodTokens).Add(float64(res.Stats.ByTokens))
	r.rows.WithLabelValues("only_a").Add(float64(len(res.OnlyA)))
	r.rows.WithLabelValues("only_b").Add(float64(len(res.OnlyB)))
	r.comparisons.Add(float64(res.Stats.Comparisons))
}

// Handler отдаёт /metrics из собственного реестра.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

func (r *Recorder) Registry() *prometheus.Registry { return r.reg }
