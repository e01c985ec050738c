// Package metrics holds the Prometheus collectors of the dumper.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is private to the dumper so repeated App instances in one
// process do not collide on the default registerer.
var Registry = prometheus.NewRegistry()

var (
	// ModelsTotal counts processed models by cache status.
	ModelsTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "subgraphdumper_models_total",
		Help: "Processed models by cache status",
	}, []string{"status"})

	// CandidatesTotal counts candidates by outcome.
	// Labels: "accepted", "duplicate", "too_simple", "unsupported", "invalid"
	CandidatesTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "subgraphdumper_candidates_total",
		Help: "Candidates proposed by extractors, by outcome",
	}, []string{"extractor", "outcome"})

	ModelDuration = promauto.With(Registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "subgraphdumper_model_duration_seconds",
		Help:    "Wall time spent caching a single model",
		Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60},
	})
)

// Handler serves the dumper registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
