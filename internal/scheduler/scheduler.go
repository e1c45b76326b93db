// Package scheduler runs the periodic maintenance jobs: rolling stale
// active periods over at month boundaries and repairing spent caches
// nightly.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"hearth/internal/logger"
	"hearth/internal/models"
	"hearth/internal/services"
)

// Scheduler owns the cron runner and the jobs it drives.
type Scheduler struct {
	cron      *cron.Cron
	db        *gorm.DB
	periods   services.PeriodServicer
	reconcile services.ReconcileServicer
}

// New creates a scheduler over the given services.
func New(db *gorm.DB, periods services.PeriodServicer, reconcile services.ReconcileServicer) *Scheduler {
	return &Scheduler{cron: cron.New(), db: db, periods: periods, reconcile: reconcile}
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start(rolloverSpec, reconcileSpec string) error {
	if _, err := s.cron.AddFunc(rolloverSpec, s.RolloverSweep); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(reconcileSpec, s.ReconcileSweep); err != nil {
		return err
	}
	s.cron.Start()
	logger.Get().Infow("scheduler started",
		"rollover", rolloverSpec, "reconcile", reconcileSpec)
	return nil
}

// Stop halts the cron runner, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RolloverSweep pushes every user whose active period no longer matches the
// current calendar month through period resolution. Users who never hit the
// API after a month boundary still get their carry-over this way.
func (s *Scheduler) RolloverSweep() {
	log := logger.Get()
	now := time.Now()

	var stale []models.Period
	err := s.db.Where("is_active = ? AND NOT (year = ? AND month = ?)",
		true, now.Year(), int(now.Month())).Find(&stale).Error
	if err != nil {
		log.Errorw("rollover sweep: listing stale periods failed", "error", err)
		return
	}

	for _, period := range stale {
		if _, err := s.periods.ResolveActivePeriod(period.UserID, now); err != nil {
			log.Errorw("rollover sweep: resolve failed",
				"user_id", period.UserID, "error", err)
			continue
		}
	}
	log.Infow("rollover sweep finished", "stale_periods", len(stale))
}

// ReconcileSweep recalculates spent caches for every active period.
func (s *Scheduler) ReconcileSweep() {
	log := logger.Get()

	var active []models.Period
	if err := s.db.Where("is_active = ?", true).Find(&active).Error; err != nil {
		log.Errorw("reconcile sweep: listing active periods failed", "error", err)
		return
	}

	repaired := 0
	for _, period := range active {
		if err := s.reconcile.Recalculate(period.ID); err != nil {
			log.Errorw("reconcile sweep: recalculate failed",
				"period_id", period.ID, "error", err)
			continue
		}
		repaired++
	}
	log.Infow("reconcile sweep finished", "periods", repaired)
}
