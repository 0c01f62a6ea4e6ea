package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/sigmadevelopers/portfolio/internal/service"
)

// Scheduler periodically folds the redis share/view counters back into the
// blog rows so the cache stays a write buffer, not the source of truth.
type Scheduler struct {
	cron  *cron.Cron
	blogs *service.BlogService
	log   zerolog.Logger
}

func NewScheduler(blogs *service.BlogService, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		blogs: blogs,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 */5 * * * *", s.flushCounters); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits briefly for a running flush to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) flushCounters() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.blogs.FlushCounters(ctx); err != nil {
		s.log.Error().Err(err).Msg("counter flush failed")
	}
}
