// ==============================================
// File: internal/dex/curve/volume.go
// ==============================================
package curve

import (
	"time"

	"cosmossdk.io/math"
)

// volumeHorizon is the number of hourly buckets in the rolling window.
const volumeHorizon = 24

// VolumeBucket is the traded volume within one UTC hour.
type VolumeBucket struct {
	Hour  int64    `json:"hour"`
	Base  math.Int `json:"base"`
	Quote math.Int `json:"quote"`
}

// VolumeWindow keeps hourly buckets ordered by hour. Time always comes from
// the block that carried the trade, never from the wall clock.
type VolumeWindow struct {
	Buckets []VolumeBucket `json:"buckets"`
}

func hourOf(t time.Time) int64 {
	return t.Unix() / int64(time.Hour/time.Second)
}

// Add records a fill at t and prunes buckets that left the window.
func (w *VolumeWindow) Add(t time.Time, base, quote math.Int) {
	h := hourOf(t)
	if n := len(w.Buckets); n > 0 && w.Buckets[n-1].Hour >= h {
		// The engine rejects blocks older than the last one, so a fill is
		// never earlier than the newest bucket. Same-hour fills merge.
		last := &w.Buckets[n-1]
		last.Base = last.Base.Add(base)
		last.Quote = last.Quote.Add(quote)
	} else {
		w.Buckets = append(w.Buckets, VolumeBucket{Hour: h, Base: base, Quote: quote})
	}
	w.prune(h)
}

// Totals sums the buckets inside the 24h window ending at t.
func (w *VolumeWindow) Totals(t time.Time) (base, quote math.Int) {
	base, quote = math.ZeroInt(), math.ZeroInt()
	h := hourOf(t)
	for _, b := range w.Buckets {
		if b.Hour > h-volumeHorizon && b.Hour <= h {
			base = base.Add(b.Base)
			quote = quote.Add(b.Quote)
		}
	}
	return base, quote
}

func (w *VolumeWindow) prune(h int64) {
	i := 0
	for i < len(w.Buckets) && w.Buckets[i].Hour <= h-volumeHorizon {
		i++
	}
	if i > 0 {
		w.Buckets = append([]VolumeBucket(nil), w.Buckets[i:]...)
	}
}

// Clone copies the bucket slice so a staged pool never aliases committed state.
func (w VolumeWindow) Clone() VolumeWindow {
	if w.Buckets == nil {
		return VolumeWindow{}
	}
	return VolumeWindow{Buckets: append([]VolumeBucket(nil), w.Buckets...)}
}
