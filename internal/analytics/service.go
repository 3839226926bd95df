package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkwell-labs/bookmetrics/internal/cache"
)

// ProcessingInfo describes how an optimized timeseries request was
// answered.
type ProcessingInfo struct {
	Cached           bool   `json:"cached"`
	IntervalUsed     string `json:"interval_used"`
	DataPoints       int    `json:"data_points"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// OptimizedResult is the optimized-timeseries response body.
type OptimizedResult struct {
	TimeseriesResponse
	ProcessingInfo ProcessingInfo `json:"processing_info"`
}

// cachedSeries is the payload stored in the result cache: the formatted
// series plus the grain it was resolved to. The per-request fields of
// ProcessingInfo are recomputed on every hit.
type cachedSeries struct {
	Series       TimeseriesResponse `json:"series"`
	IntervalUsed string             `json:"interval_used"`
}

// Service orchestrates the timeseries pipeline:
// cache lookup → grain resolution → source routing → formatting → cache store.
type Service struct {
	store  Store
	cache  cache.Store
	router *Router
	now    func() time.Time
}

// NewService wires the pipeline. cacheStore may be cache.Disabled{};
// maxPoints <= 0 uses the default; now == nil uses time.Now (tests
// inject a fixed clock).
func NewService(store Store, cacheStore cache.Store, maxPoints int, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	if cacheStore == nil {
		cacheStore = cache.Disabled{}
	}
	return &Service{
		store:  store,
		cache:  cacheStore,
		router: NewRouter(store, maxPoints, now),
		now:    now,
	}
}

// OptimizedTimeseries answers an (interval, days) request from the
// cheapest capable source, caching the formatted result with a TTL
// proportional to range size. Empty results are never cached, so
// genuinely empty ranges always re-hit the warehouse.
func (s *Service) OptimizedTimeseries(ctx context.Context, interval string, days int) (*OptimizedResult, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	started := s.now()

	key := cache.Key(interval, days)
	if payload, ok := s.cacheGet(ctx, key); ok {
		return &OptimizedResult{
			TimeseriesResponse: payload.Series,
			ProcessingInfo: ProcessingInfo{
				Cached:           true,
				IntervalUsed:     payload.IntervalUsed,
				DataPoints:       len(payload.Series.Period),
				ProcessingTimeMs: s.now().Sub(started).Milliseconds(),
			},
		}, nil
	}

	grain, err := ResolveGrain(interval, days)
	if err != nil {
		return nil, err
	}

	points, source, err := s.router.Query(ctx, grain, days)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, ErrNoData
	}

	series := FormatSeries(points, grain)
	s.cacheSet(ctx, key, cachedSeries{Series: series, IntervalUsed: string(grain)}, days)

	slog.Debug("[Analytics] Timeseries computed",
		"interval", interval, "grain", grain, "days", days,
		"source", source, "points", len(points))

	return &OptimizedResult{
		TimeseriesResponse: series,
		ProcessingInfo: ProcessingInfo{
			Cached:           false,
			IntervalUsed:     string(grain),
			DataPoints:       len(series.Period),
			ProcessingTimeMs: s.now().Sub(started).Milliseconds(),
		},
	}, nil
}

// Timeseries is the plain endpoint: a direct fact-table aggregation
// with the narrower {day, week, month} interval set and no caching.
func (s *Service) Timeseries(ctx context.Context, interval string, days int) (*TimeseriesResponse, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	grain := Grain(interval)
	if grain != GrainDay && grain != GrainWeek && grain != GrainMonth {
		return nil, &ValidationError{
			Field:  "interval",
			Reason: fmt.Sprintf("must be one of: %s, %s, %s", GrainDay, GrainWeek, GrainMonth),
		}
	}

	points, err := s.store.FactSeries(ctx, grain, days)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, ErrNoData
	}
	series := FormatSeries(points, grain)
	return &series, nil
}

// TopBooks returns the best-selling books by revenue over the range.
func (s *Service) TopBooks(ctx context.Context, limit, days int) ([]BookSales, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, &ValidationError{Field: "limit", Reason: "must be a positive integer"}
	}
	rows, err := s.store.TopBooks(ctx, limit, days)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}

// SalesByRegion returns the regional breakdown over the range.
func (s *Service) SalesByRegion(ctx context.Context, days int) ([]RegionSales, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	rows, err := s.store.SalesByRegion(ctx, days)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}

// SalesByGenre returns the genre breakdown over the range.
func (s *Service) SalesByGenre(ctx context.Context, days int) ([]GenreSales, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	rows, err := s.store.SalesByGenre(ctx, days)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}

// Summary returns the dashboard headline counters.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	summary, found, err := s.store.Summary(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoData
	}
	return summary, nil
}

// cacheGet treats backend failures as misses so a cache outage degrades
// to recomputation, never to request failure.
func (s *Service) cacheGet(ctx context.Context, key string) (*cachedSeries, bool) {
	raw, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("[Analytics] Cache read failed, treating as miss", "key", key, "error", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var payload cachedSeries
	if err := json.Unmarshal(raw, &payload); err != nil {
		slog.Warn("[Analytics] Cache entry unreadable, treating as miss", "key", key, "error", err)
		return nil, false
	}
	return &payload, true
}

func (s *Service) cacheSet(ctx context.Context, key string, payload cachedSeries, days int) {
	ttl := cache.TTL(days)
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("[Analytics] Cache payload marshal failed", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, raw, ttl); err != nil {
		slog.Warn("[Analytics] Cache write failed", "key", key, "error", err)
	}
}

func validateDays(days int) error {
	if days < 0 {
		return &ValidationError{Field: "days", Reason: "must not be negative"}
	}
	return nil
}
