package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "declschema_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ExtractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "declschema_extraction_seconds",
		Help:    "Time spent extracting the declaration schema of a parsed file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	DeclarationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "declschema_declarations_total",
		Help: "Total number of declarations emitted, by declaration kind.",
	}, []string{"kind"})

	FilesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "declschema_files_processed_total",
		Help: "Total number of source files extracted successfully.",
	})

	ExtractionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "declschema_extraction_failures_total",
		Help: "Total number of failed extractions, by error code.",
	}, []string{"code"})

	SyntaxErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "declschema_syntax_errors_total",
		Help: "Total number of parsed files that needed syntax error recovery.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "declschema_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WatcherThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "declschema_watcher_throttled_total",
		Help: "Total number of re-extractions delayed by the watch rate limit.",
	})
)

// WriteTextfile dumps the default registry in the node_exporter textfile
// format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
