package scheduler

import (
	"context"
	"time"

	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/asahigaoka/sitehooks/internal/models"
	"github.com/robfig/cron/v3"
)

// Job is a scheduled task. It receives a context bounded by the run timeout.
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron specs evaluated in the site zone.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

func New(timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(models.SiteZone)),
		timeout: timeout,
	}
}

// Add registers job under name. An empty spec disables the job.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		logger.Component("scheduler").Info().Str("job", name).Msg("Schedule disabled")
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return err
	}
	logger.Component("scheduler").Info().Str("job", name).Str("spec", spec).Msg("Job scheduled")
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	log := logger.Component("scheduler")
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	log.Info().Str("job", name).Msg("Scheduled job started")
	if err := job(ctx); err != nil {
		log.Error().Err(err).Str("job", name).Dur("duration", time.Since(start)).Msg("Scheduled job failed")
		return
	}
	log.Info().Str("job", name).Dur("duration", time.Since(start)).Msg("Scheduled job finished")
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs or ctx, whichever
// comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
