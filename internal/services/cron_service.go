package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/internal/config"
)

// CronService schedules the reconciliation sweeps
type CronService struct {
	cron   *cron.Cron
	recon  *ReconciliationService
	cfg    config.BookingConfig
	logger *logrus.Logger
}

// NewCronService creates a new CronService. Schedules fire in the operating
// timezone so the daily rollout lands on the fleet's evening, not the
// host's.
func NewCronService(recon *ReconciliationService, cfg config.BookingConfig, tz string, logger *logrus.Logger) (*CronService, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load cron timezone %q: %w", tz, err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(loc))
	return &CronService{cron: c, recon: recon, cfg: cfg, logger: logger}, nil
}

// Start registers and starts all sweep schedules
func (s *CronService) Start() error {
	jobs := []struct {
		name string
		spec string
		run  func()
	}{
		{"departed services", "0 */5 * * * *", s.recon.SweepDepartedServices},
		{"stale holds", "0 */2 * * * *", s.recon.SweepStaleHolds},
		{"completions", "0 */2 * * * *", s.recon.SweepCompletions},
		{"card payments", "0 */2 * * * *", s.recon.SweepPendingCardPayments},
		{"funding sessions", "0 */2 * * * *", s.recon.SweepFundingSessions},
		{"catalog rollout", fmt.Sprintf("0 %d %d * * *", s.cfg.RolloutMinute, s.cfg.RolloutHour), s.recon.SweepCatalog},
		// backup rollout in case the daily run was missed
		{"catalog backup", "0 */33 * * * *", s.recon.SweepCatalog},
	}

	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.spec, func() {
			s.logger.WithField("job", job.name).Debug("Sweep started")
			job.run()
		})
		if err != nil {
			return fmt.Errorf("failed to schedule %s sweep: %w", job.name, err)
		}
		s.logger.WithFields(logrus.Fields{"job": job.name, "spec": job.spec}).Info("Sweep scheduled")
	}

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running sweeps to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}
