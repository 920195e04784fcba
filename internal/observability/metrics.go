package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database statement latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "forum_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// StoreErrors counts classified store failures by error code.
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_store_errors_total",
		Help: "Total number of store errors by classification",
	}, []string{"code"})

	// Admissions counts admission attempts by outcome.
	Admissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_comment_admissions_total",
		Help: "Total number of comment admission attempts by outcome",
	}, []string{"outcome"})

	// CascadeDeletedRows counts rows removed by cascading deletes by entity.
	CascadeDeletedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_cascade_deleted_rows_total",
		Help: "Total number of rows removed by cascading deletes",
	}, []string{"entity"})

	// Anonymizations counts anonymized profiles.
	Anonymizations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_profile_anonymizations_total",
		Help: "Total number of anonymized user profiles",
	})
)

const metricsStartKey = "forum:metrics_start"

// DatabaseMetrics records statement latency through gorm callbacks.
type DatabaseMetrics struct{}

// Name implements gorm.Plugin.
func (DatabaseMetrics) Name() string {
	return "forum:metrics"
}

// Initialize implements gorm.Plugin by hooking every callback chain.
func (m DatabaseMetrics) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		operation string
		before    func(string, func(*gorm.DB)) error
		after     func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}

	for _, h := range hooks {
		if err := h.before("forum:metrics_before_"+h.operation, startTimer); err != nil {
			return err
		}
		if err := h.after("forum:metrics_after_"+h.operation, observe(h.operation)); err != nil {
			return err
		}
	}
	return nil
}

func startTimer(db *gorm.DB) {
	db.InstanceSet(metricsStartKey, time.Now())
}

func observe(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(metricsStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
