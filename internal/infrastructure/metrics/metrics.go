package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Entry metrics
	EntriesCreated prometheus.Counter
	EntriesDeleted prometheus.Counter
	EntryErrors    *prometheus.CounterVec

	// Series metrics
	SeriesExpanded     prometheus.Counter
	SeriesMoved        prometheus.Counter
	SeriesTruncated    prometheus.Counter
	EntriesAnticipated prometheus.Counter
	PartialFailures    *prometheus.CounterVec

	// Bill metrics
	BillsPaid  prometheus.Counter
	BillAmount prometheus.Histogram

	// Reconciliation metrics
	BalanceAdjustments prometheus.Counter
	GoalRecomputes     prometheus.Counter

	// Outbox metrics
	EventsPublished   prometheus.Counter
	EventPublishFails prometheus.Counter

	// Database metrics
	DBConnections prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		EntriesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contas_entries_created_total",
			Help: "Total number of ledger entries created",
		}),
		EntriesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contas_entries_deleted_total",
			Help: "Total number of ledger entries deleted",
		}),
		EntryErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contas_entry_errors_total",
				Help: "Total number of entry operation errors by type",
			},
			[]string{"error_type"},
		),

		SeriesExpanded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contas_series_expanded_total",
			Help: "Total number of series expansions",
		}),
		SeriesMoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contas_series_moved_total",
			Help: "Total number of series moves",
		}),
		SeriesTruncated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contas_series_truncated_total",
			Help: "Total number of series truncations",
		}),
		EntriesAnticipated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contas_entries_anticipated_total",
			Help: "Total number of installments anticipated",
		}),
		PartialFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contas_partial_failures_total",
				Help: "Total number of partially failed bulk operations",
			},
			[]string{"operation"},
		),

		BillsPaid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contas_bills_paid_total",
			Help: "Total number of card bills settled",
		}),
		BillAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "contas_bill_amount",
			Help:    "Settled bill amounts",
			Buckets: []float64{10, 100, 500, 1000, 5000, 10000, 50000},
		}),

		BalanceAdjustments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contas_balance_adjustments_total",
			Help: "Total number of manual balance adjustments",
		}),
		GoalRecomputes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contas_goal_recomputes_total",
			Help: "Total number of goal progress recomputations",
		}),

		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contas_events_published_total",
			Help: "Total number of outbox events published",
		}),
		EventPublishFails: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contas_event_publish_failures_total",
			Help: "Total number of outbox publish failures",
		}),

		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "contas_db_connections",
			Help: "Current number of database connections",
		}),
	}
}
