package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory Store with per-method canned results,
// injectable errors, and call counters.
type fakeStore struct {
	fact       []SeriesPoint
	factErr    error
	daily      []SeriesPoint
	dailyErr   error
	monthly    []SeriesPoint
	monthlyErr error
	totals     []SeriesPoint
	totalsErr  error

	topBooks []BookSales
	regions  []RegionSales
	genres   []GenreSales
	summary  *Summary

	calls map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{calls: map[string]int{}}
}

func (f *fakeStore) FactSeries(_ context.Context, _ Grain, _ int) ([]SeriesPoint, error) {
	f.calls["fact"]++
	return f.fact, f.factErr
}

func (f *fakeStore) DailyRollupSeries(_ context.Context, _ Grain, _ int) ([]SeriesPoint, error) {
	f.calls["daily"]++
	return f.daily, f.dailyErr
}

func (f *fakeStore) MonthlyRollupSeries(_ context.Context, _ Grain, _ int) ([]SeriesPoint, error) {
	f.calls["monthly"]++
	return f.monthly, f.monthlyErr
}

func (f *fakeStore) DailyTotals(_ context.Context, _ int) ([]SeriesPoint, error) {
	f.calls["totals"]++
	return f.totals, f.totalsErr
}

func (f *fakeStore) TopBooks(_ context.Context, _, _ int) ([]BookSales, error) {
	f.calls["topBooks"]++
	return f.topBooks, nil
}

func (f *fakeStore) SalesByRegion(_ context.Context, _ int) ([]RegionSales, error) {
	f.calls["regions"]++
	return f.regions, nil
}

func (f *fakeStore) SalesByGenre(_ context.Context, _ int) ([]GenreSales, error) {
	f.calls["genres"]++
	return f.genres, nil
}

func (f *fakeStore) Summary(_ context.Context) (*Summary, bool, error) {
	f.calls["summary"]++
	return f.summary, f.summary != nil, nil
}

func (f *fakeStore) warehouseCalls() int {
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// fakeCache is an in-memory cache.Store recording writes and TTLs.
type fakeCache struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.entries[key]
	return v, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.entries[key] = value
	f.ttls[key] = ttl
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func point(t time.Time, sales, sold int64, revenue string) SeriesPoint {
	return SeriesPoint{
		Period:    t,
		NumSales:  sales,
		BooksSold: sold,
		Revenue:   decimal.RequireFromString(revenue),
	}
}
