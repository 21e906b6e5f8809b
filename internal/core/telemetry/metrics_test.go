package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAppMetrics_RecordTaskOperation(t *testing.T) {
	RegisterTestingT(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	metrics.RecordTaskOperation(ctx, "create", nil)
	metrics.RecordTaskOperation(ctx, "create", nil)
	metrics.RecordTaskOperation(ctx, "create", errors.New("boom"))

	Expect(testutil.ToFloat64(metrics.taskOperations.WithLabelValues("create", "success"))).To(Equal(2.0))
	Expect(testutil.ToFloat64(metrics.taskOperations.WithLabelValues("create", "error"))).To(Equal(1.0))
}

func TestAppMetrics_ActiveConnections(t *testing.T) {
	RegisterTestingT(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	metrics.IncrementActiveConnections(ctx)
	metrics.IncrementActiveConnections(ctx)
	metrics.DecrementActiveConnections(ctx)

	Expect(testutil.ToFloat64(metrics.activeConnections)).To(Equal(1.0))
}

func TestAppMetrics_Cache(t *testing.T) {
	RegisterTestingT(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	metrics.RecordCacheHit(ctx, "task")
	metrics.RecordCacheMiss(ctx, "task")
	metrics.RecordCacheMiss(ctx, "task")

	Expect(testutil.ToFloat64(metrics.cacheHits.WithLabelValues("task"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.cacheMisses.WithLabelValues("task"))).To(Equal(2.0))
}

func TestAppMetrics_RegisterDBStats(t *testing.T) {
	RegisterTestingT(t)

	registry := prometheus.NewRegistry()
	metrics := NewAppMetrics(registry)

	db, err := sql.Open("sqlite3", ":memory:")
	Expect(err).NotTo(HaveOccurred())
	defer db.Close()

	Expect(metrics.RegisterDBStats(db, "sqlite")).To(Succeed())
	Expect(metrics.RegisterDBStats(db, "sqlite")).To(HaveOccurred())

	count, err := testutil.GatherAndCount(registry, "go_sql_max_open_connections")
	Expect(err).NotTo(HaveOccurred())
	Expect(count).To(Equal(1))
}
