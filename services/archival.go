package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Edna112/viral-boast-smm-sub000/models"
)

const (
	archiveMarkerKey = "task_submission_archive"
	archiveMarkerTTL = 48 * time.Hour
)

// ArchivalResult reports one sweep run. Errors holds per-record failures;
// records that fail stay in the live table for the next sweep.
type ArchivalResult struct {
	ArchivedCount int
	Errors        []error
}

// SubmissionArchiver moves live submissions into immutable history, at most
// once per calendar day. The guard lives in a DayMarkerStore so every trigger
// path (first distribution request of the day, the scheduler) shares it.
type SubmissionArchiver struct {
	db      *gorm.DB
	clock   clockwork.Clock
	markers DayMarkerStore
	loc     *time.Location
	log     *zap.Logger
}

func NewSubmissionArchiver(db *gorm.DB, clock clockwork.Clock, markers DayMarkerStore, loc *time.Location, log *zap.Logger) *SubmissionArchiver {
	if loc == nil {
		loc = time.Local
	}
	return &SubmissionArchiver{db: db, clock: clock, markers: markers, loc: loc, log: log}
}

func (a *SubmissionArchiver) today() string {
	return a.clock.Now().In(a.loc).Format("2006-01-02")
}

// RunArchivalSweepIfNeeded archives every live submission unless the sweep
// already ran today. Per-record failures are collected and skipped over; the
// day marker advances even when there was nothing to archive, so a same-day
// re-run is a cheap no-op.
func (a *SubmissionArchiver) RunArchivalSweepIfNeeded(ctx context.Context) (*ArchivalResult, error) {
	today := a.today()

	marked, ok, err := a.markers.GetMarker(ctx, archiveMarkerKey)
	if err != nil {
		return nil, fmt.Errorf("read archival marker: %w", err)
	}
	if ok && marked == today {
		return &ArchivalResult{}, nil
	}

	var live []models.TaskSubmission
	if err := a.db.Order("id ASC").Find(&live).Error; err != nil {
		return nil, fmt.Errorf("load live submissions: %w", err)
	}

	result := &ArchivalResult{}
	for _, sub := range live {
		if err := a.archiveOne(sub, today); err != nil {
			recErr := &ArchivalRecordError{SubmissionID: sub.ID, Err: err}
			result.Errors = append(result.Errors, recErr)
			a.log.Warn("submission archive failed, leaving in live table",
				zap.Uint("submission_id", sub.ID), zap.Error(err))
			continue
		}
		result.ArchivedCount++
	}

	if err := a.markers.SetMarker(ctx, archiveMarkerKey, today, archiveMarkerTTL); err != nil {
		return result, fmt.Errorf("advance archival marker: %w", err)
	}
	a.log.Info("archival sweep done",
		zap.String("day", today),
		zap.Int("archived", result.ArchivedCount),
		zap.Int("failed", len(result.Errors)))
	return result, nil
}

// archiveOne copies a single live row verbatim into history, then removes it.
// Copy and delete share a transaction so a record is never lost or duplicated.
func (a *SubmissionArchiver) archiveOne(sub models.TaskSubmission, today string) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		hist := models.TaskSubmissionArchive{
			Reference:      sub.Reference,
			UserID:         sub.UserID,
			TaskID:         sub.TaskID,
			AssignmentID:   sub.AssignmentID,
			ProofURL:       sub.ProofURL,
			Note:           sub.Note,
			Status:         sub.Status,
			SubmissionDate: sub.SubmittedAt,
			ArchivedDate:   today,
		}
		if err := tx.Create(&hist).Error; err != nil {
			return err
		}
		return tx.Delete(&models.TaskSubmission{}, sub.ID).Error
	})
}
