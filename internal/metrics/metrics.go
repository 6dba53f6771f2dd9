package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ============================================
	// Database metrics
	// ============================================
	DBConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "backend_db_connection_status",
		Help: "Database connection status (1=healthy, 0=unhealthy)",
	})

	// ============================================
	// Registry metrics
	// ============================================
	RegistrySize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "backend_registry_entries",
			Help: "Number of entries per registry",
		},
		[]string{"registry"},
	)

	RegistryMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_registry_mutations_total",
			Help: "Total number of successful registry mutations",
		},
		[]string{"registry", "operation"},
	)

	// ============================================
	// Mint metrics
	// ============================================
	MintsRequested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backend_mints_requested_total",
		Help: "Total number of accepted mint requests",
	})

	MintsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backend_mints_completed_total",
		Help: "Total number of completed mints",
	})

	MintsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_mints_failed_total",
			Help: "Total number of failed mints",
		},
		[]string{"reason"},
	)

	PORRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_por_rejections_total",
			Help: "Total number of mints rejected by the POR gate",
		},
		[]string{"reason"},
	)

	SubmissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backend_submission_duration_seconds",
		Help:    "Per-asset transfer submission duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// ============================================
	// Snapshot backup metrics
	// ============================================
	SnapshotsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_snapshots_written_total",
			Help: "Total number of registry backup snapshots written",
		},
		[]string{"registry"},
	)

	SnapshotFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_snapshot_failures_total",
			Help: "Total number of failed or dropped backup snapshots",
		},
		[]string{"registry", "reason"},
	)

	// ============================================
	// NATS metrics
	// ============================================
	NATSConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "backend_nats_connection_status",
		Help: "NATS connection status (1=connected, 0=disconnected)",
	})

	NATSPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_nats_published_total",
			Help: "Total number of NATS events published",
		},
		[]string{"subject"},
	)

	NATSPublishFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_nats_publish_failed_total",
			Help: "Total number of NATS events that failed to publish",
		},
		[]string{"subject"},
	)
)
