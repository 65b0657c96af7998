package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveRollup(time.Now(), nil)
	m.ObserveRollup(time.Now(), errors.New("store down"))
	m.ObserveRollup(time.Now(), nil)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Rollups.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rollups.WithLabelValues("error")))

	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))

	m.ObserveQuery("summary", time.Now(), errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueryErrors.WithLabelValues("summary")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveQuery("summary", time.Now(), nil)
		m.ObserveRollup(time.Now(), nil)
		m.TradeMutation("create")
		m.CacheLookup(true)
		m.ObserveHTTP("/health", "GET", 200, time.Millisecond)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.TradeMutation("create")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `tradejournal_trades_mutations_total{action="create"} 1`)
}
