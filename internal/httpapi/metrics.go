package httpapi

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/happyscroll/verdict-service/internal/cache"
	"github.com/happyscroll/verdict-service/internal/orchestrator"
	"github.com/happyscroll/verdict-service/internal/verdict"
)

// Metrics holds all Prometheus collectors for the verdict service.
var Metrics = struct {
	VerdictsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	RequestsInFlight    prometheus.Gauge
	CacheHits           prometheus.GaugeFunc
	CacheMisses         prometheus.GaugeFunc
	CacheSize           prometheus.GaugeFunc
	ClassifierDuration  *prometheus.HistogramVec
	BudgetExhaustedHits prometheus.Counter
}{}

// InitMetrics registers all Prometheus collectors. Call once at startup.
// CacheHits/Misses/Size are GaugeFuncs that read live from c.Stats rather
// than duplicating counters the cache package already tracks.
func InitMetrics(c *cache.Cache) {
	Metrics.VerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "happyscroll_verdicts_total",
			Help: "Total verdicts served, by safety outcome.",
		},
		[]string{"is_safe"},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "happyscroll_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint, method, and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "happyscroll_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	Metrics.ClassifierDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "happyscroll_classifier_duration_seconds",
			Help:    "Duration of a classifier branch call, by branch (transcript, thumbnail).",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"branch"},
	)

	Metrics.BudgetExhaustedHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "happyscroll_budget_exhausted_total",
			Help: "Total requests rejected for daily budget exhaustion (global or per-client).",
		},
	)

	Metrics.CacheHits = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "happyscroll_cache_hits_total",
			Help: "Total verdict cache hits.",
		},
		func() float64 { return float64(c.Stats(context.Background()).Hits) },
	)
	Metrics.CacheMisses = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "happyscroll_cache_misses_total",
			Help: "Total verdict cache misses.",
		},
		func() float64 { return float64(c.Stats(context.Background()).Misses) },
	)
	Metrics.CacheSize = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "happyscroll_cache_size",
			Help: "Approximate number of entries currently in the verdict cache.",
		},
		func() float64 { return float64(c.Stats(context.Background()).Size) },
	)

	prometheus.MustRegister(
		Metrics.VerdictsTotal,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.ClassifierDuration,
		Metrics.BudgetExhaustedHits,
		Metrics.CacheHits,
		Metrics.CacheMisses,
		Metrics.CacheSize,
	)
}

// MetricsMiddleware records request duration and in-flight count for
// Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next() — Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion. The
// verdict API has no path parameters today, but this keeps the same shape
// the metrics label space expects if one is ever added.
func sanitizeEndpoint(path string) string {
	return path
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.Context())
		return nil
	}
}

// InstrumentedTranscript wraps a TranscriptClassifier to record its call
// duration under the "transcript" label.
type InstrumentedTranscript struct {
	orchestrator.TranscriptClassifier
}

func (i InstrumentedTranscript) Classify(ctx context.Context, meta verdict.Metadata) verdict.BranchResult {
	start := time.Now()
	defer func() {
		Metrics.ClassifierDuration.WithLabelValues("transcript").Observe(time.Since(start).Seconds())
	}()
	return i.TranscriptClassifier.Classify(ctx, meta)
}

// InstrumentedThumbnail wraps a ThumbnailClassifier to record its call
// duration under the "thumbnail" label.
type InstrumentedThumbnail struct {
	orchestrator.ThumbnailClassifier
}

func (i InstrumentedThumbnail) Analyze(ctx context.Context, thumbnailURL string) verdict.BranchResult {
	start := time.Now()
	defer func() {
		Metrics.ClassifierDuration.WithLabelValues("thumbnail").Observe(time.Since(start).Seconds())
	}()
	return i.ThumbnailClassifier.Analyze(ctx, thumbnailURL)
}
