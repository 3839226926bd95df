package cache

import (
	"context"
	"time"
)

// Disabled is the Store used when no cache backend is configured.
// Every lookup misses and writes are dropped, so the pipeline simply
// recomputes each request.
type Disabled struct{}

// Get implements Store; always a miss.
func (Disabled) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set implements Store; drops the value.
func (Disabled) Set(context.Context, string, []byte, time.Duration) error { return nil }
