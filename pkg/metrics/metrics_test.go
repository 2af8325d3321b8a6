package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch("snapshot", time.Now(), nil)
		m.SetSnapshotSize("segment", 3)
		m.IncReconcile("segment", nil)
		m.IncTokenRefresh(errors.New("boom"))
		m.SetCatalogRows("segment", 10)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Records(t *testing.T) {
	m := New()

	m.IncReconcile("theme", nil)
	m.IncReconcile("theme", nil)
	m.IncReconcile("theme", errors.New("fetch failed"))
	m.SetCatalogRows("segment", 53)
	m.IncTokenRefresh(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reconciles.WithLabelValues("theme", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconciles.WithLabelValues("theme", "error")))
	assert.Equal(t, 53.0, testutil.ToFloat64(m.catalogRows.WithLabelValues("segment")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenRefreshes.WithLabelValues("ok")))
}
