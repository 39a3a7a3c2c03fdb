package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"okulpazar/backend/config"
)

// jobTimeout upper bound of one run
const jobTimeout = 4 * time.Minute

// UsageExpirer cancels campaign usages whose validation code lapsed
type UsageExpirer interface {
	ExpireStaleUsages(ctx context.Context) (int64, error)
}

// AppointmentSweeper completes confirmed appointments that have ended
type AppointmentSweeper interface {
	CompletePastAppointments(ctx context.Context, grace time.Duration) (int64, error)
}

// Scheduler runs the periodic maintenance jobs
type Scheduler struct {
	cron         *cron.Cron
	usages       UsageExpirer
	appointments AppointmentSweeper
	grace        time.Duration
	logger       *zap.Logger
}

// NewScheduler registers both jobs; an invalid cron spec is an error
func NewScheduler(cfg *config.JobsConfig, usages UsageExpirer, appointments AppointmentSweeper, logger *zap.Logger) (*Scheduler, error) {
	cl := cronLogger{logger.Sugar()}
	s := &Scheduler{
		cron:         cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		usages:       usages,
		appointments: appointments,
		grace:        time.Duration(cfg.CompleteAfterHours) * time.Hour,
		logger:       logger,
	}

	if _, err := s.cron.AddFunc(cfg.UsageExpirySpec, s.expireUsages); err != nil {
		return nil, fmt.Errorf("schedule usage expiry %q: %w", cfg.UsageExpirySpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.AppointmentSweepSpec, s.sweepAppointments); err != nil {
		return nil, fmt.Errorf("schedule appointment sweep %q: %w", cfg.AppointmentSweepSpec, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("job scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("job scheduler stop timed out")
	}
}

func (s *Scheduler) expireUsages() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.usages.ExpireStaleUsages(ctx)
	if err != nil {
		s.logger.Error("expire campaign usages failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("expired campaign usages", zap.Int64("count", n))
	}
}

func (s *Scheduler) sweepAppointments() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.appointments.CompletePastAppointments(ctx, s.grace)
	if err != nil {
		s.logger.Error("complete past appointments failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("completed past appointments", zap.Int64("count", n), zap.Duration("grace", s.grace))
	}
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
