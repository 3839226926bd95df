package analytics

import (
	"errors"
	"fmt"
)

// ErrNoData marks a well-formed query that matched zero rows. Callers
// branch on it (404, skip cache) without parsing error text.
var ErrNoData = errors.New("no data available for the specified time range")

// ValidationError is a malformed request parameter. Surfaced as a 4xx
// and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
