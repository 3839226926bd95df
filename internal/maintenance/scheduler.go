package maintenance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the maintainer's refresh on a cron schedule, out of
// band from request handling. Rollup freshness only affects request
// latency, never correctness, so a missed run is benign.
type Scheduler struct {
	c *cron.Cron
}

// NewScheduler registers the refresh job. schedule is a standard
// five-field cron expression.
func NewScheduler(schedule string, m *Maintainer) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		m.Refresh(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("invalid maintenance schedule %q: %w", schedule, err)
	}
	return &Scheduler{c: c}, nil
}

// Start begins the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.c.Start()
	slog.Info("[Maintenance] Refresh schedule started")
}

// Stop stops the schedule, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.c.Stop()
	<-ctx.Done()
	slog.Info("[Maintenance] Refresh schedule stopped")
}
