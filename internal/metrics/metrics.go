package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatvault_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatvault_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	SearchQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatvault_search_queries_total",
			Help: "Total search queries executed",
		},
	)

	ChatsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatvault_chats_ingested_total",
			Help: "Total chats ingested",
		},
	)

	FilesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatvault_files_skipped_total",
			Help: "Total export files skipped during ingestion",
		},
	)
)
