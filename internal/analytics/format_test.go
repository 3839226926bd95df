package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPeriodLabel_PerGrain(t *testing.T) {
	p := point(day(2024, time.November, 5), 1, 1, "1.00")

	require.Equal(t, "2024-11-05", PeriodLabel(p, GrainDay))
	require.Equal(t, "2024-11-05", PeriodLabel(p, GrainWeek))
	require.Equal(t, "2024-11", PeriodLabel(p, GrainMonth))
	require.Equal(t, "2024", PeriodLabel(p, GrainYear))
}

func TestPeriodLabel_QuarterComposite(t *testing.T) {
	// DATE_TRUNC('quarter') lands on quarter starts; the label derives
	// year and quarter number from the date, not its string form.
	cases := []struct {
		period time.Time
		want   string
	}{
		{day(2024, time.January, 1), "2024-Q1"},
		{day(2024, time.April, 1), "2024-Q2"},
		{day(2024, time.July, 1), "2024-Q3"},
		{day(2024, time.October, 1), "2024-Q4"},
		{day(2023, time.October, 1), "2023-Q4"},
	}
	for _, tc := range cases {
		p := SeriesPoint{Period: tc.period}
		require.Equal(t, tc.want, PeriodLabel(p, GrainQuarter))
	}
}

func TestPeriodLabel_RawFallback(t *testing.T) {
	// A period the warehouse returned in a non-date shape keeps its raw
	// string instead of failing the response.
	p := SeriesPoint{RawPeriod: "2024-W07"}
	require.Equal(t, "2024-W07", PeriodLabel(p, GrainWeek))
}

func TestFormatSeries_NativeNumericTypes(t *testing.T) {
	points := []SeriesPoint{
		point(day(2024, time.January, 1), 2, 2, "20.00"),
		point(day(2024, time.January, 2), 1, 1, "10.00"),
		point(day(2024, time.January, 5), 3, 5, "45.00"),
	}

	resp := FormatSeries(points, GrainDay)

	require.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-05"}, resp.Period)
	require.Equal(t, []int64{2, 1, 3}, resp.NumSales)
	require.Equal(t, []int64{2, 1, 5}, resp.BooksSold)
	require.Equal(t, []float64{20.0, 10.0, 45.0}, resp.Revenue)
}

func TestFormatSeries_EmptyInputYieldsEmptyArrays(t *testing.T) {
	resp := FormatSeries(nil, GrainDay)

	// Arrays, not nulls, so the JSON contract holds for empty series.
	require.NotNil(t, resp.Period)
	require.Empty(t, resp.Period)
	require.NotNil(t, resp.Revenue)
}
