package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/repricer/internal/config"
	"github.com/mamadbah2/repricer/internal/service/engine"
)

// Scheduler triggers repricing cycles on the configured cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	eng    *engine.Engine
	cfg    config.Config
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.Config, eng *engine.Engine, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New()

	return &Scheduler{
		cron:   c,
		eng:    eng,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the repricing job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Repricing.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.Repricing.CronSchedule, s.runCycle)
	if err != nil {
		s.logger.Error("failed to schedule repricing cycle", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	summary, err := s.eng.RunCycle(ctx)
	if err != nil {
		s.logger.Error("repricing cycle failed", zap.Error(err))
		return
	}

	s.logger.Info("repricing cycle completed",
		zap.String("cycle_id", summary.CycleID),
		zap.Int("priced", summary.Priced),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))
}
