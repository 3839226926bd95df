// Package warehouse is the lib/pq adapter for the analytics star
// schema. Redshift speaks the postgres wire protocol, so the same
// adapter serves both a real Redshift cluster and a local postgres.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // register postgres driver

	"github.com/inkwell-labs/bookmetrics/internal/analytics"
)

const connectPingTimeout = 5 * time.Second

// Adapter implements analytics.Store over a postgres-protocol
// warehouse. Connections are pooled by database/sql and acquired per
// query; every exit path releases them via deferred rows.Close.
type Adapter struct {
	db *sql.DB

	stmtDailyTotals   *sql.Stmt
	stmtTopBooks      *sql.Stmt
	stmtSalesByRegion *sql.Stmt
	stmtSalesByGenre  *sql.Stmt
	stmtSummary       *sql.Stmt
}

// NewAdapter opens the warehouse connection pool and prepares the
// fixed-shape hot queries. Grain-parameterized series queries are
// built per call from the closed grain enum instead.
func NewAdapter(dsn string, maxOpenConns, maxIdleConns int) (*Adapter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse connection: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), connectPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	a, err := newAdapter(db)
	if err != nil {
		return nil, err
	}

	slog.Info("[Warehouse] Adapter initialized",
		"max_open_conns", maxOpenConns,
		"max_idle_conns", maxIdleConns)

	return a, nil
}

// newAdapter prepares the fixed-shape statements on an open pool.
// Split from NewAdapter so tests can drive it with a mock database.
func newAdapter(db *sql.DB) (*Adapter, error) {
	a := &Adapter{db: db}
	prepared := []struct {
		query string
		dst   **sql.Stmt
	}{
		{queryDailyTotals, &a.stmtDailyTotals},
		{queryTopBooks, &a.stmtTopBooks},
		{querySalesByRegion, &a.stmtSalesByRegion},
		{querySalesByGenre, &a.stmtSalesByGenre},
		{querySummary, &a.stmtSummary},
	}
	for _, p := range prepared {
		stmt, err := db.Prepare(p.query)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to prepare warehouse statement: %w", err)
		}
		*p.dst = stmt
	}
	return a, nil
}

// FactSeries implements analytics.SeriesStore.
func (a *Adapter) FactSeries(ctx context.Context, grain analytics.Grain, days int) ([]analytics.SeriesPoint, error) {
	return a.querySeries(ctx, seriesFromFactTable, grain, days)
}

// DailyRollupSeries implements analytics.SeriesStore.
func (a *Adapter) DailyRollupSeries(ctx context.Context, grain analytics.Grain, days int) ([]analytics.SeriesPoint, error) {
	return a.querySeries(ctx, seriesFromDailyRollup, grain, days)
}

// MonthlyRollupSeries implements analytics.SeriesStore.
func (a *Adapter) MonthlyRollupSeries(ctx context.Context, grain analytics.Grain, days int) ([]analytics.SeriesPoint, error) {
	return a.querySeries(ctx, seriesFromMonthlyRollup, grain, days)
}

// DailyTotals implements analytics.SeriesStore.
func (a *Adapter) DailyTotals(ctx context.Context, days int) ([]analytics.SeriesPoint, error) {
	rows, err := a.stmtDailyTotals.QueryContext(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}
	defer rows.Close()
	return scanSeries(rows)
}

func (a *Adapter) querySeries(ctx context.Context, template string, grain analytics.Grain, days int) ([]analytics.SeriesPoint, error) {
	query, err := seriesQuery(template, grain)
	if err != nil {
		return nil, err
	}
	rows, err := a.db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s series: %w", grain, err)
	}
	defer rows.Close()
	return scanSeries(rows)
}

// TopBooks implements analytics.Store.
func (a *Adapter) TopBooks(ctx context.Context, limit, days int) ([]analytics.BookSales, error) {
	rows, err := a.stmtTopBooks.QueryContext(ctx, days, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top books: %w", err)
	}
	defer rows.Close()

	var result []analytics.BookSales
	for rows.Next() {
		var (
			b       analytics.BookSales
			sales   sql.NullInt64
			qty     sql.NullInt64
			revenue sql.NullFloat64
		)
		if err := rows.Scan(&b.BookID, &b.Title, &b.Author, &b.Genre, &sales, &qty, &revenue); err != nil {
			return nil, fmt.Errorf("failed to scan top books row: %w", err)
		}
		b.NumSales = sales.Int64
		b.TotalQty = qty.Int64
		b.TotalRevenue = revenue.Float64
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top books: %w", err)
	}
	return result, nil
}

// SalesByRegion implements analytics.Store.
func (a *Adapter) SalesByRegion(ctx context.Context, days int) ([]analytics.RegionSales, error) {
	rows, err := a.stmtSalesByRegion.QueryContext(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales by region: %w", err)
	}
	defer rows.Close()

	var result []analytics.RegionSales
	for rows.Next() {
		var (
			r       analytics.RegionSales
			txns    sql.NullInt64
			sold    sql.NullInt64
			revenue sql.NullFloat64
		)
		if err := rows.Scan(&r.Region, &txns, &sold, &revenue); err != nil {
			return nil, fmt.Errorf("failed to scan region row: %w", err)
		}
		r.NumTransactions = txns.Int64
		r.BooksSold = sold.Int64
		r.Revenue = revenue.Float64
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating regions: %w", err)
	}
	return result, nil
}

// SalesByGenre implements analytics.Store.
func (a *Adapter) SalesByGenre(ctx context.Context, days int) ([]analytics.GenreSales, error) {
	rows, err := a.stmtSalesByGenre.QueryContext(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales by genre: %w", err)
	}
	defer rows.Close()

	var result []analytics.GenreSales
	for rows.Next() {
		var (
			g       analytics.GenreSales
			sales   sql.NullInt64
			sold    sql.NullInt64
			revenue sql.NullFloat64
		)
		if err := rows.Scan(&g.Genre, &sales, &sold, &revenue); err != nil {
			return nil, fmt.Errorf("failed to scan genre row: %w", err)
		}
		g.NumSales = sales.Int64
		g.BooksSold = sold.Int64
		g.Revenue = revenue.Float64
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating genres: %w", err)
	}
	return result, nil
}

// Summary implements analytics.Store. The scalar query always yields a
// row; over an empty fact table its null aggregates zero-fill, so the
// dashboard sees zero counters rather than a missing resource. found is
// false only if the row is somehow absent.
func (a *Adapter) Summary(ctx context.Context) (*analytics.Summary, bool, error) {
	var (
		totalSales  sql.NullInt64
		booksSold   sql.NullInt64
		revenue     sql.NullFloat64
		uniqueBooks sql.NullInt64
	)
	err := a.stmtSummary.QueryRowContext(ctx).
		Scan(&totalSales, &booksSold, &revenue, &uniqueBooks)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query summary: %w", err)
	}
	return &analytics.Summary{
		TotalSales:      totalSales.Int64,
		TotalBooksSold:  booksSold.Int64,
		TotalRevenue:    revenue.Float64,
		UniqueBooksSold: uniqueBooks.Int64,
	}, true, nil
}

// DB returns the underlying pool. The maintenance and export packages
// share this connection rather than opening a second one.
func (a *Adapter) DB() *sql.DB {
	return a.db
}

// Close closes prepared statements and the connection pool.
func (a *Adapter) Close() error {
	var firstErr error
	for _, stmt := range []*sql.Stmt{
		a.stmtDailyTotals, a.stmtTopBooks, a.stmtSalesByRegion, a.stmtSalesByGenre, a.stmtSummary,
	} {
		if stmt == nil {
			continue
		}
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close warehouse statement: %w", err)
		}
	}
	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close warehouse connection: %w", err)
	}
	return firstErr
}
