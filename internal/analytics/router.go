package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultMaxDataPoints bounds the series length returned to the dashboard.
const DefaultMaxDataPoints = 100

// Source names the backing data source a query was answered from.
// Reported in processing_info for observability.
type Source string

const (
	SourceDailyRollup   Source = "daily_rollup"
	SourceMonthlyRollup Source = "monthly_rollup"
	SourceDownsample    Source = "downsample"
	SourceFactTable     Source = "fact_table"
)

// Router picks the cheapest warehouse source capable of answering a
// timeseries query at the resolved grain.
type Router struct {
	store       SeriesStore
	downsampler *Downsampler
}

// NewRouter creates a router over the given store. maxPoints caps the
// downsampled series length; pass 0 for the default.
func NewRouter(store SeriesStore, maxPoints int, now func() time.Time) *Router {
	return &Router{
		store:       store,
		downsampler: NewDownsampler(store, maxPoints, now),
	}
}

// Query routes (grain, days) to a backing source.
//
// Short ranges come from the daily rollup re-aggregated by truncation;
// long ranges at coarse grains come from the monthly rollup; long
// ranges at day/week grain would blow past the point budget, so they
// are downsampled into fixed-size buckets.
//
// An empty result is "no data", not a failure, and propagates as such.
func (r *Router) Query(ctx context.Context, grain Grain, days int) ([]SeriesPoint, Source, error) {
	switch {
	case days <= 90:
		points, err := r.store.DailyRollupSeries(ctx, grain, days)
		if err != nil {
			return nil, SourceDailyRollup, fmt.Errorf("daily rollup query failed: %w", err)
		}
		return points, SourceDailyRollup, nil

	case grain == GrainMonth || grain == GrainQuarter || grain == GrainYear:
		points, err := r.store.MonthlyRollupSeries(ctx, grain, days)
		if err != nil {
			return nil, SourceMonthlyRollup, fmt.Errorf("monthly rollup query failed: %w", err)
		}
		return points, SourceMonthlyRollup, nil

	default:
		// day/week over a long range: bound the point count.
		slog.Debug("[Analytics] Routing to downsampler", "grain", grain, "days", days)
		points := r.downsampler.Series(ctx, grain, days)
		return points, SourceDownsample, nil
	}
}
