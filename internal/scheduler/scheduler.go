package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/omedacore/someweather/internal/weather"
)

// Sweeper periodically deletes expired forecast rows. Lazy read-time expiry
// keeps the cache correct without it; this job only bounds table growth for
// keys that are never read again.
type Sweeper struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	interval  time.Duration
	log       *zap.SugaredLogger
}

// New creates a Sweeper. An interval <= 0 disables it.
func New(service *weather.Service, interval time.Duration, log *zap.SugaredLogger) *Sweeper {
	return &Sweeper{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (s *Sweeper) Start() error {
	if s.interval <= 0 {
		s.log.Info("cache sweep disabled; relying on read-time expiry only")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		removed, err := s.service.SweepExpired(ctx)
		if err != nil {
			s.log.Warnw("cache sweep failed", "error", err)
			return
		}
		if removed > 0 {
			s.log.Infow("cache sweep removed expired rows", "rows", removed)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Sweeper) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
