package curve

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
)

func TestVolumeWindowRollsOff(t *testing.T) {
	var w VolumeWindow
	start := time.Date(2024, 5, 1, 0, 10, 0, 0, time.UTC)

	w.Add(start, math.NewInt(10), math.NewInt(100))
	w.Add(start.Add(20*time.Minute), math.NewInt(5), math.NewInt(50))
	assert.Len(t, w.Buckets, 1)

	w.Add(start.Add(3*time.Hour), math.NewInt(1), math.NewInt(1))
	base, quote := w.Totals(start.Add(3 * time.Hour))
	assert.Equal(t, "16", base.String())
	assert.Equal(t, "151", quote.String())

	// 24 hours after the first bucket it no longer counts
	later := start.Add(24 * time.Hour)
	base, _ = w.Totals(later)
	assert.Equal(t, "1", base.String())

	w.Add(later, math.NewInt(2), math.NewInt(2))
	assert.Len(t, w.Buckets, 2)
}
