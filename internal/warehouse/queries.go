package warehouse

import (
	"fmt"

	"github.com/inkwell-labs/bookmetrics/internal/analytics"
)

// SQL catalog for the analytics read path.
//
// Range length is always a bound parameter ($1). The truncation grain
// cannot be bound, so it is formatted into the text — but only from the
// closed analytics.Grain enum, never from a request string. Redshift
// and postgres both accept `CURRENT_DATE - $1::INT` for date
// subtraction, which keeps the catalog portable across the two.

// seriesFromDailyRollup re-aggregates the per-day rollup to a coarser
// grain by truncation. Returns one row per occurring truncated period;
// empty periods are not filled here.
const seriesFromDailyRollup = `
	SELECT
		DATE_TRUNC('%s', day)::DATE AS period,
		SUM(num_sales)              AS num_sales,
		SUM(total_books_sold)       AS books_sold,
		SUM(total_revenue)          AS revenue
	FROM analytics.sales_by_day
	WHERE day >= CURRENT_DATE - $1::INT
	GROUP BY DATE_TRUNC('%s', day)::DATE
	ORDER BY period
`

// seriesFromMonthlyRollup re-aggregates the per-month rollup, used for
// long ranges at month grain or coarser.
const seriesFromMonthlyRollup = `
	SELECT
		DATE_TRUNC('%s', month)::DATE AS period,
		SUM(num_sales)                AS num_sales,
		SUM(total_books_sold)         AS books_sold,
		SUM(total_revenue)            AS revenue
	FROM analytics.monthly_sales
	WHERE month >= CURRENT_DATE - $1::INT
	GROUP BY DATE_TRUNC('%s', month)::DATE
	ORDER BY period
`

// seriesFromFactTable aggregates the fact table directly. The most
// expensive shape, used by the plain endpoint and as the downsampler's
// always-correct fallback.
const seriesFromFactTable = `
	SELECT
		DATE_TRUNC('%s', sale_date)::DATE AS period,
		COUNT(*)                          AS num_sales,
		SUM(quantity)                     AS books_sold,
		SUM(sale_amount)                  AS revenue
	FROM analytics.fact_sales
	WHERE sale_date >= CURRENT_DATE - $1::INT
	GROUP BY DATE_TRUNC('%s', sale_date)::DATE
	ORDER BY period
`

// queryDailyTotals feeds the downsampler: raw per-day rollup rows for
// the range, bucketed application-side.
const queryDailyTotals = `
	SELECT
		day              AS period,
		num_sales,
		total_books_sold AS books_sold,
		total_revenue    AS revenue
	FROM analytics.sales_by_day
	WHERE day >= CURRENT_DATE - $1::INT
	ORDER BY day
`

const queryTopBooks = `
	SELECT
		b.book_id,
		b.title,
		b.author,
		b.genre,
		COUNT(s.sale_id)   AS num_sales,
		SUM(s.quantity)    AS total_quantity,
		SUM(s.sale_amount) AS total_revenue
	FROM analytics.dim_book b
	JOIN analytics.fact_sales s ON b.book_id = s.book_id
	WHERE s.sale_date >= CURRENT_DATE - $1::INT
	GROUP BY b.book_id, b.title, b.author, b.genre
	ORDER BY total_revenue DESC
	LIMIT $2
`

const querySalesByRegion = `
	SELECT
		region,
		COUNT(*)         AS num_transactions,
		SUM(quantity)    AS books_sold,
		SUM(sale_amount) AS revenue
	FROM analytics.fact_sales
	WHERE sale_date >= CURRENT_DATE - $1::INT
	GROUP BY region
	ORDER BY revenue DESC
`

const querySalesByGenre = `
	SELECT
		b.genre,
		COUNT(s.sale_id)   AS num_sales,
		SUM(s.quantity)    AS books_sold,
		SUM(s.sale_amount) AS revenue
	FROM analytics.dim_book b
	JOIN analytics.fact_sales s ON b.book_id = s.book_id
	WHERE s.sale_date >= CURRENT_DATE - $1::INT
	GROUP BY b.genre
	ORDER BY revenue DESC
`

const querySummary = `
	SELECT
		(SELECT COUNT(*) FROM analytics.fact_sales)                AS total_sales,
		(SELECT SUM(quantity) FROM analytics.fact_sales)           AS total_books_sold,
		(SELECT SUM(sale_amount) FROM analytics.fact_sales)        AS total_revenue,
		(SELECT COUNT(DISTINCT book_id) FROM analytics.fact_sales) AS unique_books_sold
`

// seriesQuery instantiates a series template for a validated grain.
func seriesQuery(template string, grain analytics.Grain) (string, error) {
	if !grain.Valid() {
		return "", fmt.Errorf("refusing to build query for unknown grain %q", grain)
	}
	return fmt.Sprintf(template, grain, grain), nil
}
