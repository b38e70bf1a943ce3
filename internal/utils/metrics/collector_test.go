package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveMessage("swap", "ok", 2*time.Millisecond)
	c.ObserveMessage("swap", "CurveClosed", time.Millisecond)
	c.AddTrades("book", 3)
	c.SetOpenOrders(7)
	c.SetGraduatedPairs(1)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.messages.WithLabelValues("swap", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.messages.WithLabelValues("swap", "CurveClosed")))
	assert.Equal(t, float64(3), testutil.ToFloat64(c.trades.WithLabelValues("book")))
	assert.Equal(t, float64(7), testutil.ToFloat64(c.openOrders))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.graduated))

	c.Reset()
	assert.Equal(t, float64(0), testutil.ToFloat64(c.openOrders))
}

func TestCollectorRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)
	_, err = NewCollector(reg)
	assert.Error(t, err)
}
