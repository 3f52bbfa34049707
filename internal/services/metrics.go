package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation request outcomes
const (
	OutcomeSuccess          = "success"
	OutcomeCacheHit         = "cache_hit"
	OutcomeInsufficientData = "insufficient_data"
	OutcomeError            = "error"
)

// Metrics holds the Prometheus collectors for the recommendation service
type Metrics struct {
	recommendationRequests *prometheus.CounterVec
	recommendationLatency  prometheus.Histogram
	recommendedItems       prometheus.Histogram
	cacheLookups           *prometheus.CounterVec
	ratingsRecorded        prometheus.Counter
}

// NewMetrics registers the collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		recommendationRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests by outcome",
		}, []string{"outcome"}),

		recommendationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommendation_latency_seconds",
			Help:    "Recommendation request latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0},
		}),

		recommendedItems: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommendation_items_returned",
			Help:    "Number of movies returned per recommendation request",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		}),

		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendation_cache_lookups_total",
			Help: "Recommendation cache lookups by result",
		}, []string{"result"}),

		ratingsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "ratings_recorded_total",
			Help: "Total number of ratings stored",
		}),
	}
}

func (m *Metrics) ObserveRecommendation(outcome string, started time.Time, items int) {
	m.recommendationRequests.WithLabelValues(outcome).Inc()
	m.recommendationLatency.Observe(time.Since(started).Seconds())
	if outcome == OutcomeSuccess || outcome == OutcomeCacheHit {
		m.recommendedItems.Observe(float64(items))
	}
}

func (m *Metrics) ObserveCacheLookup(result string) {
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) RatingRecorded() {
	m.ratingsRecorded.Inc()
}
