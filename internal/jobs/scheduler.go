package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler drives the Runner's jobs off cron expressions.
type Scheduler struct {
	cron *cron.Cron
	jobs *Runner
	log  *zap.Logger
}

func NewScheduler(runner *Runner, log *zap.Logger) *Scheduler {
	c := cron.New(
		cron.WithLocation(time.UTC),
	)

	s := &Scheduler{
		cron: c,
		jobs: runner,
		log:  log.With(zap.String("component", "scheduler")),
	}

	s.registerJobs()
	return s
}

func (s *Scheduler) registerJobs() {
	if s.jobs.config.Reminder.Enabled {
		if _, err := s.cron.AddFunc(s.jobs.config.Reminder.Schedule, s.jobs.SendBookingReminders); err != nil {
			s.log.Error("Failed to register SendBookingReminders job", zap.Error(err))
		}
	}

	// Hourly session cleanup.
	if _, err := s.cron.AddFunc("0 * * * *", s.jobs.CleanExpiredSessions); err != nil {
		s.log.Error("Failed to register CleanExpiredSessions job", zap.Error(err))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}
