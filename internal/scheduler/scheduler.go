package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/labstock/internal/config"
)

// purgeSchedule runs the pending report cleanup every ten minutes.
const purgeSchedule = "*/10 * * * *"

// AlertSender sends the low-stock summary.
type AlertSender interface {
	SendLowStockAlert(ctx context.Context) error
}

// ReportPurger drops expired pending BOM reports.
type ReportPurger interface {
	PurgeReports() int
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	alerts   AlertSender
	reports  ReportPurger
	schedule string
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
func NewScheduler(cfg config.AlertsConfig, alerts AlertSender, reports ReportPurger, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	// Standard 5-field cron expressions (min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		alerts:   alerts,
		reports:  reports,
		schedule: cfg.CronSchedule,
		logger:   logger,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("low_stock_schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.sendLowStockAlert); err != nil {
		return fmt.Errorf("schedule low stock alert %q: %w", s.schedule, err)
	}
	if _, err := s.cron.AddFunc(purgeSchedule, s.purgeReports); err != nil {
		return fmt.Errorf("schedule report purge: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendLowStockAlert() {
	s.logger.Info("checking low stock")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.alerts.SendLowStockAlert(ctx); err != nil {
		s.logger.Error("failed to send low stock alert", zap.Error(err))
	}
}

func (s *Scheduler) purgeReports() {
	if removed := s.reports.PurgeReports(); removed > 0 {
		s.logger.Debug("expired bom reports purged", zap.Int("removed", removed))
	}
}
