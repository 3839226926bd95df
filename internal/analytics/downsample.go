package analytics

import (
	"context"
	"log/slog"
	"time"
)

// Downsampler reduces a long day-grain range to at most maxPoints
// fixed-size buckets. Counts, quantities and revenue are all sums, so
// re-bucketing adjacent days preserves totals exactly.
type Downsampler struct {
	store     SeriesStore
	maxPoints int
	now       func() time.Time
}

// NewDownsampler creates a downsampler over the given store. maxPoints
// caps the bucket count; pass 0 for DefaultMaxDataPoints.
func NewDownsampler(store SeriesStore, maxPoints int, now func() time.Time) *Downsampler {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxDataPoints
	}
	if now == nil {
		now = time.Now
	}
	return &Downsampler{store: store, maxPoints: maxPoints, now: now}
}

// BucketSize returns the bucket width in days for a range. Floor
// division guarantees at least one day per bucket; the oldest bucket
// absorbs the remainder and may be narrower than the rest.
func BucketSize(days, maxPoints int) int {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxDataPoints
	}
	size := days / maxPoints
	if size < 1 {
		size = 1
	}
	return size
}

// Series bucketizes the last `days` days into fixed-size buckets,
// zero-filling buckets with no sales.
//
// The happy path reads per-day totals from the daily rollup and does
// the bucketing here, by days-elapsed index counted back from today. If
// that read fails, it retries with a direct aggregation over the fact
// table at the requested grain (more expensive, always correct). If
// that also fails, it degrades to an empty series, which callers treat
// as "no data" rather than a hard error.
func (d *Downsampler) Series(ctx context.Context, grain Grain, days int) []SeriesPoint {
	totals, err := d.store.DailyTotals(ctx, days)
	if err == nil {
		if len(totals) == 0 {
			// No rollup rows at all: "no data", not a series of zeros.
			return nil
		}
		return d.bucketize(totals, days)
	}
	slog.Warn("[Analytics] Bucketed rollup read failed, retrying against fact table",
		"days", days, "error", err)

	points, err := d.store.FactSeries(ctx, grain, days)
	if err != nil {
		slog.Warn("[Analytics] Fact table fallback failed, degrading to empty series",
			"days", days, "error", err)
		return nil
	}
	return points
}

// bucketize assigns each rollup day in [today-days, today] to a bucket
// by truncating its days-elapsed count to a multiple of the bucket
// size, counting backward from today, then sums each bucket. Buckets
// with no rollup rows stay zero. Output ascends by start date, each
// bucket labelled with its earliest day. Work is proportional to the
// bucket count and the row count, never the range length.
func (d *Downsampler) bucketize(totals []SeriesPoint, days int) []SeriesPoint {
	size := BucketSize(days, d.maxPoints)
	today := dateOnly(d.now().UTC())
	start := today.AddDate(0, 0, -days)

	// Floor division can spill one extra bucket at the old end of the
	// range; fold it into the oldest bucket so the point bound holds
	// unconditionally.
	maxIdx := days / size
	if maxIdx > d.maxPoints-1 {
		maxIdx = d.maxPoints - 1
	}

	buckets := make([]SeriesPoint, maxIdx+1)
	for idx := 0; idx <= maxIdx; idx++ {
		bucketStart := today.AddDate(0, 0, -((idx+1)*size - 1))
		if bucketStart.Before(start) {
			bucketStart = start
		}
		buckets[maxIdx-idx] = SeriesPoint{Period: bucketStart}
	}

	for _, p := range totals {
		elapsed := int(today.Sub(dateOnly(p.Period)).Hours() / 24)
		if elapsed < 0 || elapsed > days {
			continue
		}
		idx := elapsed / size
		if idx > maxIdx {
			idx = maxIdx
		}
		b := &buckets[maxIdx-idx]
		b.NumSales += p.NumSales
		b.BooksSold += p.BooksSold
		b.Revenue = b.Revenue.Add(p.Revenue)
	}
	return buckets
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
