// scraper/metrics.go
package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Endpoint label values.
const (
	endpointSocrata = "socrata"
	endpointWayback = "wayback"
	endpointSitemap = "sitemap"
)

var (
	apiCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datasetdoc_api_calls_total",
			Help: "Total calls made to external services",
		},
		[]string{"endpoint", "status"}, // status=success/failure/not_found
	)

	apiCallDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datasetdoc_api_call_duration_seconds",
			Help:    "Latency of calls made to external services",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"endpoint"},
	)

	unparseableLinesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datasetdoc_unparseable_lines_total",
			Help: "Input lines that could not be mapped to a dataset identifier",
		},
		[]string{"input"}, // downloads, homepages
	)
)
