package scheduler

import (
	"context"
	"fmt"
	"time"

	"vaccine_slot_notifier/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CycleRunner is satisfied by app.SlotNotificationService.
type CycleRunner interface {
	RunCycle(ctx context.Context, now time.Time) (app.CycleResult, error)
}

// SlotCheckScheduler runs the notifier cycle on a cron schedule inside one
// long-lived process. Overlapping runs are skipped, so the cooldown
// read-decide-write sequence never interleaves within this process.
type SlotCheckScheduler struct {
	cronEngine *cron.Cron
	runner     CycleRunner
	logger     *logrus.Entry
	cronSpec   string
	jobTimeout time.Duration
	loc        *time.Location
	now        func() time.Time
}

func NewSlotCheckScheduler(
	runner CycleRunner,
	logger *logrus.Entry,
	cronSpec string, // e.g., "*/5 * * * *" (every 5 minutes)
	jobTimeout time.Duration,
	loc *time.Location,
) *SlotCheckScheduler {
	logger = logger.WithField("component", "scheduler")
	return &SlotCheckScheduler{
		cronEngine: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
		),
		runner:     runner,
		logger:     logger,
		cronSpec:   cronSpec,
		jobTimeout: jobTimeout,
		loc:        loc,
		now:        time.Now,
	}
}

// Start registers the check job and starts the cron engine.
func (s *SlotCheckScheduler) Start() error {
	s.logger.WithField("cron_spec", s.cronSpec).Info("Starting slot check scheduler")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Debug("Cron job triggered for slot check")
		s.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("could not add slot check cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.Info("Slot check scheduler started")
	return nil
}

// RunOnce executes a single cycle with the job timeout applied. Errors are
// logged; the next tick is the retry.
func (s *SlotCheckScheduler) RunOnce(ctx context.Context) (app.CycleResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	res, err := s.runner.RunCycle(ctx, s.now().In(s.loc))
	if err != nil {
		s.logger.WithError(err).Error("Slot check cycle failed")
		return res, err
	}
	s.logger.WithFields(logrus.Fields{
		"outcome":  res.Outcome,
		"fetched":  res.Fetched,
		"eligible": res.Eligible,
	}).Info("Slot check cycle finished")
	return res, nil
}

// Stop stops the engine and waits for a running job to finish.
func (s *SlotCheckScheduler) Stop() {
	s.logger.Info("Stopping slot check scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Slot check scheduler gracefully stopped")
}
