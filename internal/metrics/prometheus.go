package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TurnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "capstone_turn_duration_seconds",
			Help:    "End-to-end turn duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"turn_type"},
	)

	TurnTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capstone_turn_total",
			Help: "Turns processed, by outcome",
		},
		[]string{"turn_type", "status"},
	)

	StageDegraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capstone_stage_degraded_total",
			Help: "Best-effort stage failures absorbed by the turn pipeline",
		},
		[]string{"stage"},
	)

	EvidenceRetrieved = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "capstone_evidence_retrieved",
			Help:    "Evidence items retrieved per turn",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 40},
		},
	)

	PersistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "capstone_persist_failures_total",
			Help: "Chat turns that could not be written after a successful generation",
		},
	)

	EmbedCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "capstone_embedding_cache_hits_total",
			Help: "Query embeddings served from cache instead of the embedding backend",
		},
	)
)

func Init() {
	prometheus.MustRegister(TurnDuration)
	prometheus.MustRegister(TurnTotal)
	prometheus.MustRegister(StageDegraded)
	prometheus.MustRegister(EvidenceRetrieved)
	prometheus.MustRegister(PersistFailures)
	prometheus.MustRegister(EmbedCacheHits)
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
