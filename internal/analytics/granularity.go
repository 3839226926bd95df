package analytics

import "fmt"

// Grain is a closed enum of time bucket widths. Query text is only ever
// built from Grain values, never from raw request strings.
type Grain string

const (
	GrainDay     Grain = "day"
	GrainWeek    Grain = "week"
	GrainMonth   Grain = "month"
	GrainQuarter Grain = "quarter"
	GrainYear    Grain = "year"
)

// IntervalAuto asks the selector to pick a grain from the range length.
const IntervalAuto = "auto"

// ValidGrains is the full set of explicit grains, in selector order.
var ValidGrains = []Grain{GrainDay, GrainWeek, GrainMonth, GrainQuarter, GrainYear}

// Valid reports whether g is one of the five known grains.
func (g Grain) Valid() bool {
	switch g {
	case GrainDay, GrainWeek, GrainMonth, GrainQuarter, GrainYear:
		return true
	}
	return false
}

// ResolveGrain maps a requested interval to a concrete grain.
//
// For "auto" the grain is picked from the range length so the point
// count stays dashboard-friendly: up to a month of days, a quarter of
// weeks, a year of months, and quarters beyond that. Explicit intervals
// are validated against the closed set. Pure; no side effects.
func ResolveGrain(interval string, days int) (Grain, error) {
	if interval == IntervalAuto {
		switch {
		case days <= 30:
			return GrainDay, nil
		case days <= 90:
			return GrainWeek, nil
		case days <= 365:
			return GrainMonth, nil
		default:
			return GrainQuarter, nil
		}
	}

	g := Grain(interval)
	if !g.Valid() {
		return "", &ValidationError{
			Field:  "interval",
			Reason: fmt.Sprintf("must be one of: auto, %s, %s, %s, %s, %s", GrainDay, GrainWeek, GrainMonth, GrainQuarter, GrainYear),
		}
	}
	return g, nil
}
