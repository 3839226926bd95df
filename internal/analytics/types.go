package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SeriesPoint is one aggregated bucket of the sales time series.
// Revenue stays decimal until the response boundary so bucket sums
// don't accumulate float error.
type SeriesPoint struct {
	Period    time.Time
	RawPeriod string // set instead of Period when the warehouse value was not a date
	NumSales  int64
	BooksSold int64
	Revenue   decimal.Decimal
}

// SeriesStore is the warehouse read surface the routing pipeline needs.
// An empty result slice means "no data", never an error.
type SeriesStore interface {
	// FactSeries aggregates fact_sales directly at the given grain.
	FactSeries(ctx context.Context, grain Grain, days int) ([]SeriesPoint, error)
	// DailyRollupSeries re-aggregates the daily rollup to the given grain.
	DailyRollupSeries(ctx context.Context, grain Grain, days int) ([]SeriesPoint, error)
	// MonthlyRollupSeries re-aggregates the monthly rollup to the given grain.
	MonthlyRollupSeries(ctx context.Context, grain Grain, days int) ([]SeriesPoint, error)
	// DailyTotals returns one point per calendar day with data, for downsampling.
	DailyTotals(ctx context.Context, days int) ([]SeriesPoint, error)
}

// BookSales is one row of the top-books breakdown.
type BookSales struct {
	BookID       int64   `json:"book_id"`
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Genre        string  `json:"genre"`
	NumSales     int64   `json:"num_sales"`
	TotalQty     int64   `json:"total_quantity"`
	TotalRevenue float64 `json:"total_revenue"`
}

// RegionSales is one row of the by-region breakdown.
type RegionSales struct {
	Region          string  `json:"region"`
	NumTransactions int64   `json:"num_transactions"`
	BooksSold       int64   `json:"books_sold"`
	Revenue         float64 `json:"revenue"`
}

// GenreSales is one row of the by-genre breakdown.
type GenreSales struct {
	Genre     string  `json:"genre"`
	NumSales  int64   `json:"num_sales"`
	BooksSold int64   `json:"books_sold"`
	Revenue   float64 `json:"revenue"`
}

// Summary holds the dashboard headline counters, zero-filled when the
// fact table is empty.
type Summary struct {
	TotalSales      int64   `json:"total_sales"`
	TotalBooksSold  int64   `json:"total_books_sold"`
	TotalRevenue    float64 `json:"total_revenue"`
	UniqueBooksSold int64   `json:"unique_books_sold"`
}

// Store is the full warehouse surface consumed by the handlers.
type Store interface {
	SeriesStore
	TopBooks(ctx context.Context, limit, days int) ([]BookSales, error)
	SalesByRegion(ctx context.Context, days int) ([]RegionSales, error)
	SalesByGenre(ctx context.Context, days int) ([]GenreSales, error)
	Summary(ctx context.Context) (*Summary, bool, error)
}
