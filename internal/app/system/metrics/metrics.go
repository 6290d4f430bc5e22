// Package metrics exposes Prometheus counters for the listing flows and
// serves them on /metrics.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes.
const (
	OutcomeFound    = "found"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// Recorder is what handlers depend on. A nil *Collector is a valid no-op
// Recorder, so handlers built without metrics need no special casing.
type Recorder interface {
	ListingWrite(op string, ok bool)
	Search(outcome string)
	SignIn(method string, ok bool)
	HTTPRequest(method string, status int, d time.Duration)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	listingWrites *prometheus.CounterVec
	searches      *prometheus.CounterVec
	signIns       *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpLatency   prometheus.Histogram
}

// NewCollector creates the metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		listingWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "takeandeat_listing_writes_total",
			Help: "Listing create/update/delete/mark-taken operations by result.",
		}, []string{"op", "result"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "takeandeat_searches_total",
			Help: "Take-food lookups by outcome.",
		}, []string{"outcome"}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "takeandeat_sign_ins_total",
			Help: "Sign-in attempts by method and result.",
		}, []string{"method", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "takeandeat_http_requests_total",
			Help: "HTTP responses by method and status code.",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "takeandeat_http_request_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(c.listingWrites, c.searches, c.signIns, c.httpRequests, c.httpLatency)
	return c
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// ListingWrite counts a listing mutation.
func (c *Collector) ListingWrite(op string, ok bool) {
	if c == nil {
		return
	}
	c.listingWrites.WithLabelValues(op, result(ok)).Inc()
}

// Search counts a take-food lookup.
func (c *Collector) Search(outcome string) {
	if c == nil {
		return
	}
	c.searches.WithLabelValues(outcome).Inc()
}

// SignIn counts a sign-in attempt.
func (c *Collector) SignIn(method string, ok bool) {
	if c == nil {
		return
	}
	c.signIns.WithLabelValues(method, result(ok)).Inc()
}

// HTTPRequest records one served request.
func (c *Collector) HTTPRequest(method string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.httpLatency.Observe(d.Seconds())
}

// Middleware records status and latency for every request.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		c.HTTPRequest(r.Method, sw.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

/*─────────────────────────────────────────────────────────────────────────────*
| Store gauges                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// CountsFunc returns named totals (e.g. "listings_open") read at scrape time.
type CountsFunc func(ctx context.Context) map[string]int64

// storeCollector turns CountsFunc results into gauges on each scrape.
type storeCollector struct {
	desc    *prometheus.Desc
	fetch   CountsFunc
	timeout time.Duration
}

// RegisterStoreGauges exposes fetch's totals as takeandeat_records{kind=...}.
func RegisterStoreGauges(reg prometheus.Registerer, fetch CountsFunc, timeout time.Duration) error {
	return reg.Register(&storeCollector{
		desc: prometheus.NewDesc("takeandeat_records",
			"Current record totals by kind.", []string{"kind"}, nil),
		fetch:   fetch,
		timeout: timeout,
	})
}

func (s *storeCollector) Describe(ch chan<- *prometheus.Desc) { ch <- s.desc }

func (s *storeCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	for kind, n := range s.fetch(ctx) {
		ch <- prometheus.MustNewConstMetric(s.desc, prometheus.GaugeValue, float64(n), kind)
	}
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
