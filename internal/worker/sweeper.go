// Package worker runs background maintenance jobs on a cron schedule.
package worker

import (
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"gastobot/internal/logger"
	"gastobot/internal/models"
)

// Sweeper rejects draft expenses whose confirmation prompt was never
// answered. Unanswered drafts older than maxAge flip to rejected so they
// never leak into reports.
type Sweeper struct {
	db     *gorm.DB
	maxAge time.Duration
	cron   *cron.Cron
}

// NewSweeper creates a sweeper for drafts older than maxAge.
func NewSweeper(db *gorm.DB, maxAge time.Duration) *Sweeper {
	return &Sweeper{
		db:     db,
		maxAge: maxAge,
		cron:   cron.New(),
	}
}

// Start schedules the hourly sweep.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("@hourly", func() { s.SweepOnce(time.Now().UTC()) }); err != nil {
		return err
	}
	s.cron.Start()
	logger.Get().Infow("draft sweeper started", "max_age", s.maxAge.String())
	return nil
}

// Stop halts the schedule, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// SweepOnce runs a single sweep anchored at now and returns the number of
// drafts rejected.
func (s *Sweeper) SweepOnce(now time.Time) int64 {
	cutoff := now.Add(-s.maxAge)
	result := s.db.Model(&models.Expense{}).
		Where("status = ? AND created_at < ?", models.ExpenseStatusDraft, cutoff).
		Update("status", models.ExpenseStatusRejected)
	if result.Error != nil {
		logger.Get().Errorw("draft sweep failed", "error", result.Error)
		return 0
	}
	if result.RowsAffected > 0 {
		logger.Get().Infow("stale drafts rejected", "count", result.RowsAffected)
	}
	return result.RowsAffected
}
