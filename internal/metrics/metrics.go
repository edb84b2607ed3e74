package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphgram_runs_enqueued_total",
		Help: "Total number of runs placed on the run queue.",
	})

	RunsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphgram_runs_rejected_total",
		Help: "Total number of runs rejected due to a full queue.",
	})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphgram_runs_total",
		Help: "Total number of finished runs, labelled by grammar and halt reason.",
	}, []string{"grammar", "halt"})

	RunsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphgram_runs_failed_total",
		Help: "Total number of runs that ended in an error, labelled by grammar.",
	}, []string{"grammar"})

	Rewrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphgram_rewrites_total",
		Help: "Total number of rewrite steps applied, labelled by grammar.",
	}, []string{"grammar"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphgram_run_duration_ms",
		Help:    "Generation run latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	RunNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphgram_run_nodes",
		Help:    "Node count of generated graphs.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphgram_queue_utilization_ratio",
		Help: "Current run queue utilization (0–1).",
	})

	CatalogGrammars = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphgram_catalog_grammars",
		Help: "Number of grammars in the active catalog.",
	})
)
