package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsgtrends_http_requests_total",
		Help: "HTTP requests by route pattern and status code",
	}, []string{"route", "code"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lsgtrends_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 2000},
	}, []string{"route"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lsgtrends_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})

	DerivationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsgtrends_derivations_total",
		Help: "Derivation passes by outcome",
	}, []string{"outcome"})
	DerivationDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lsgtrends_derivation_duration_ms",
		Help:    "Derivation pass duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	WardsByStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lsgtrends_wards",
		Help: "Wards in the latest derivation by display status",
	}, []string{"status"})
	BodiesByFront = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lsgtrends_bodies_led",
		Help: "Local bodies in the latest derivation by leading front",
	}, []string{"front"})

	GeoFeaturesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsgtrends_geo_features_total",
		Help: "Features processed by the geo join by result",
	}, []string{"result"})

	FeedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsgtrends_feed_requests_total",
		Help: "Trend feed requests by operation and outcome",
	}, []string{"op", "outcome"})
	FeedDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lsgtrends_feed_duration_ms",
		Help:    "Trend feed call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
	}, []string{"op"})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lsgtrends_redis_hits_total",
		Help: "Total redis cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lsgtrends_redis_misses_total",
		Help: "Total redis cache misses",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(RateLimitedTotal)
	prometheus.MustRegister(DerivationsTotal)
	prometheus.MustRegister(DerivationDurationMs)
	prometheus.MustRegister(WardsByStatus)
	prometheus.MustRegister(BodiesByFront)
	prometheus.MustRegister(GeoFeaturesTotal)
	prometheus.MustRegister(FeedRequestsTotal)
	prometheus.MustRegister(FeedDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
}

// Handler serves the default registry for /metrics.
func Handler() http.Handler { return promhttp.Handler() }
