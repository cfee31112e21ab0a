// Package maintenance runs scheduled housekeeping jobs.
//
// Currently the only job is the nightly catalog cache flush, which keeps
// long-running deployments from serving stale metadata or a stale tool
// catalog indefinitely.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"

	robfigcron "github.com/robfig/cron/v3"
)

// Service schedules periodic housekeeping work.
type Service struct {
	schedule string
	flush    func()
	robfig   *robfigcron.Cron
}

// NewService creates a maintenance Service. schedule is a standard 5-field
// cron expression; an empty schedule disables the flush job. flush is invoked
// each time the schedule fires.
func NewService(schedule string, flush func()) *Service {
	return &Service{
		schedule: schedule,
		flush:    flush,
		robfig:   robfigcron.New(),
	}
}

// Start arms the schedule and blocks until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	if s.schedule == "" {
		slog.Info("maintenance: cache flush disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	_, err := s.robfig.AddFunc(s.schedule, func() {
		slog.Info("maintenance: flushing catalog caches", "schedule", s.schedule)
		s.flush()
	})
	if err != nil {
		return fmt.Errorf("invalid cache flush schedule %q: %w", s.schedule, err)
	}

	s.robfig.Start()
	slog.Info("maintenance: started", "schedule", s.schedule)

	<-ctx.Done()

	<-s.robfig.Stop().Done()
	return ctx.Err()
}
