package warehouse

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/inkwell-labs/bookmetrics/internal/analytics"
)

// periodLayouts are the date shapes drivers hand back for DATE and
// TIMESTAMP columns when they don't surface time.Time directly.
var periodLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
}

// scanSeries reads (period, num_sales, books_sold, revenue) rows into
// series points. Null measures coerce to zero. A period value that is
// not a recognizable date keeps its raw string form so the formatter
// can degrade the label instead of the request failing.
func scanSeries(rows *sql.Rows) ([]analytics.SeriesPoint, error) {
	var points []analytics.SeriesPoint
	for rows.Next() {
		var (
			rawPeriod any
			numSales  sql.NullInt64
			booksSold sql.NullInt64
			revenue   decimal.NullDecimal
		)
		if err := rows.Scan(&rawPeriod, &numSales, &booksSold, &revenue); err != nil {
			return nil, fmt.Errorf("failed to scan series row: %w", err)
		}

		p := analytics.SeriesPoint{
			NumSales:  numSales.Int64,
			BooksSold: booksSold.Int64,
		}
		if revenue.Valid {
			p.Revenue = revenue.Decimal
		}
		p.Period, p.RawPeriod = coercePeriod(rawPeriod)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating series rows: %w", err)
	}
	return points, nil
}

// coercePeriod normalizes the driver's period representation to UTC
// midnight. Unparseable values land in the raw slot.
func coercePeriod(v any) (time.Time, string) {
	switch val := v.(type) {
	case time.Time:
		return time.Date(val.Year(), val.Month(), val.Day(), 0, 0, 0, 0, time.UTC), ""
	case []byte:
		return parsePeriod(string(val))
	case string:
		return parsePeriod(val)
	case nil:
		return time.Time{}, ""
	default:
		return time.Time{}, fmt.Sprint(val)
	}
}

func parsePeriod(s string) (time.Time, string) {
	for _, layout := range periodLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), ""
		}
	}
	return time.Time{}, s
}
