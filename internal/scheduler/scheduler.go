package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/cities-weather/internal/logger"
)

// Sweeper removes idle state; session.Registry implements it.
type Sweeper interface {
	Sweep() int
}

// Scheduler periodically sweeps idle sessions.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration
}

// New creates a new Scheduler.
func New(sweeper Sweeper, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		sweeper:   sweeper,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		logger.Info("scheduler: sweep interval not set; idle sessions are kept")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		logger.Debug("scheduler: running session sweep")
		s.sweeper.Sweep()
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
