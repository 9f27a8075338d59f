package jobs

import (
	"slot-booking/internal/data/repository"
	"slot-booking/pkg/database"
	"slot-booking/pkg/mailer"
	"slot-booking/pkg/utils"

	"go.uber.org/zap"
)

// Runner holds the dependencies shared by all scheduled jobs.
type Runner struct {
	db     database.PgxIface
	repo   *repository.Repository
	mail   mailer.Mailer
	config *utils.Config
	log    *zap.Logger
}

func NewRunner(db database.PgxIface, repo *repository.Repository, mail mailer.Mailer, config *utils.Config, log *zap.Logger) *Runner {
	return &Runner{
		db:     db,
		repo:   repo,
		mail:   mail,
		config: config,
		log:    log.With(zap.String("component", "jobs")),
	}
}

// runWithRecovery wraps job execution with panic recovery so a bad job run
// never takes the scheduler down.
func (r *Runner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Job panicked",
				zap.String("job", jobName),
				zap.Any("panic", rec),
			)
		}
	}()

	r.log.Info("Starting job", zap.String("job", jobName))
	jobFunc()
	r.log.Info("Job completed", zap.String("job", jobName))
}
