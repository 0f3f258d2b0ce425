package auditor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/recordseal/recordseal-go/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	a, conf := newAuditor(t, BackendMemory)
	_, err := a.Import(ctx, "reviews", 0, dataset.ReviewSchema())
	require.NoError(t, err)

	_, err = a.Publish(ctx, "reviews")
	require.NoError(t, err)
	_, err = a.Check(ctx, "reviews")
	require.NoError(t, err)

	m := a.metrics
	assert.Equal(t, 1.0, testutil.ToFloat64(m.published.WithLabelValues("reviews")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.buildRecords.WithLabelValues("reviews")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checks.WithLabelValues("reviews", "MATCH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.integrity.WithLabelValues("reviews")))

	// drop a record and check again
	records, err := a.Records(ctx, "reviews")
	require.NoError(t, err)
	require.NoError(t, dataset.Save(conf.DataDir, "reviews", records[1:]))
	_, err = a.Check(ctx, "reviews")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checks.WithLabelValues("reviews", "MISMATCH")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.integrity.WithLabelValues("reviews")))

	n, err := testutil.GatherAndCount(a.Gatherer(), "recordseal_build_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetricsTextfile(t *testing.T) {
	ctx := context.Background()
	a, conf := newAuditor(t, BackendMemory)
	_, err := a.Import(ctx, "reviews", 0, dataset.ReviewSchema())
	require.NoError(t, err)
	_, err = a.Publish(ctx, "reviews")
	require.NoError(t, err)

	conf.MetricsTextfile = filepath.Join(t.TempDir(), "recordseal.prom")
	require.NoError(t, a.Close())

	b, err := os.ReadFile(conf.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(b), `recordseal_snapshots_published_total{dataset="reviews"} 1`)
}
