package analytics

import (
	"fmt"
	"time"
)

// TimeseriesResponse is the JSON contract for all timeseries endpoints:
// parallel arrays with native integer and float values only. Nulls are
// coerced to zero upstream; no sentinel values appear here.
type TimeseriesResponse struct {
	Period    []string  `json:"period"`
	NumSales  []int64   `json:"num_sales"`
	BooksSold []int64   `json:"books_sold"`
	Revenue   []float64 `json:"revenue"`
}

// FormatSeries converts ordered series points into the response
// contract, labelling each period according to the resolved grain.
func FormatSeries(points []SeriesPoint, grain Grain) TimeseriesResponse {
	resp := TimeseriesResponse{
		Period:    make([]string, 0, len(points)),
		NumSales:  make([]int64, 0, len(points)),
		BooksSold: make([]int64, 0, len(points)),
		Revenue:   make([]float64, 0, len(points)),
	}
	for _, p := range points {
		resp.Period = append(resp.Period, PeriodLabel(p, grain))
		resp.NumSales = append(resp.NumSales, p.NumSales)
		resp.BooksSold = append(resp.BooksSold, p.BooksSold)
		resp.Revenue = append(resp.Revenue, p.Revenue.InexactFloat64())
	}
	return resp
}

// PeriodLabel renders one period value for the given grain:
//
//	day, week    YYYY-MM-DD
//	month        YYYY-MM
//	year         YYYY
//	quarter      YYYY-Q{1..4}
//
// Quarter labels are derived from the period's calendar year and
// quarter number, not from the truncated date string. A period the
// warehouse returned in a non-date shape degrades to its raw string
// form rather than failing the whole response.
func PeriodLabel(p SeriesPoint, grain Grain) string {
	if p.RawPeriod != "" || p.Period.IsZero() {
		return p.RawPeriod
	}
	switch grain {
	case GrainMonth:
		return p.Period.Format("2006-01")
	case GrainYear:
		return p.Period.Format("2006")
	case GrainQuarter:
		quarter := (int(p.Period.Month())-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", p.Period.Year(), quarter)
	default:
		return p.Period.Format(time.DateOnly)
	}
}
