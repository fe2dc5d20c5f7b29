package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "github.com/ramindav/outreach-crm/internal/domain/imports"
	"github.com/ramindav/outreach-crm/internal/infrastructure/db/models"
)

type ImportJobRepository struct {
	db *gorm.DB
}

func NewImportJobRepository(db *gorm.DB) *ImportJobRepository {
	return &ImportJobRepository{db: db}
}

func (r *ImportJobRepository) Create(ctx context.Context, job domain.Job) error {
	row := models.ImportJob{
		ID:             job.ID,
		UserID:         job.UserID,
		Status:         string(job.Status),
		SourcePath:     job.SourcePath,
		TotalRecords:   job.TotalRecords,
		ErrorDetails:   "[]",
		FileName:       job.FileName,
		FileSize:       job.FileSize,
		UpdateExisting: job.Options.UpdateExisting,
		OnlyNew:        job.Options.OnlyNew,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create import job: %w", err)
	}
	return nil
}

// ClaimNext atomically claims the oldest runnable job: a fresh pending one,
// or a processing one whose worker's lease has lapsed. SKIP LOCKED keeps
// concurrent workers from fighting over the same row.
func (r *ImportJobRepository) ClaimNext(ctx context.Context, leaseDuration time.Duration) (*domain.Job, error) {
	var row models.ImportJob

	result := r.db.WithContext(ctx).Raw(`
UPDATE import_jobs
SET status = 'processing',
    started_at = COALESCE(started_at, NOW()),
    heartbeat_at = NOW(),
    lease_expires_at = NOW() + make_interval(secs => ?),
    updated_at = NOW()
WHERE id = (
    SELECT id FROM import_jobs
    WHERE (status = 'pending' AND cancel_requested = FALSE)
       OR (status = 'processing' AND lease_expires_at < NOW())
    ORDER BY created_at
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
RETURNING *`, leaseDuration.Seconds()).Scan(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("claim import job: %w", result.Error)
	}
	if result.RowsAffected == 0 || row.ID == "" {
		return nil, nil
	}

	job := toDomainJob(row)
	return &job, nil
}

func (r *ImportJobRepository) Heartbeat(ctx context.Context, jobID string, leaseDuration time.Duration) error {
	err := r.db.WithContext(ctx).Model(&models.ImportJob{}).
		Where("id = ? AND status = ?", jobID, string(domain.StatusProcessing)).
		Updates(map[string]any{
			"heartbeat_at":     time.Now(),
			"lease_expires_at": time.Now().Add(leaseDuration),
		}).Error
	if err != nil {
		return fmt.Errorf("heartbeat import job: %w", err)
	}
	return nil
}

func (r *ImportJobRepository) UpdateProgress(ctx context.Context, jobID string, progress domain.Progress) error {
	err := r.db.WithContext(ctx).Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"processed_records": progress.Processed,
			"imported_count":    progress.Imported,
			"error_count":       progress.Errors,
			"skipped_count":     progress.Skipped,
			"progress_message":  progress.Message,
		}).Error
	if err != nil {
		return fmt.Errorf("update import job progress: %w", err)
	}
	return nil
}

func (r *ImportJobRepository) Complete(ctx context.Context, jobID string, summary domain.Summary) error {
	details, err := json.Marshal(summary.Errors)
	if err != nil {
		return fmt.Errorf("marshal error details: %w", err)
	}

	now := time.Now()
	err = r.db.WithContext(ctx).Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status":            string(domain.StatusCompleted),
			"processed_records": summary.Processed,
			"imported_count":    summary.Imported,
			"error_count":       summary.Failed,
			"skipped_count":     summary.Skipped,
			"error_details":     string(details),
			"progress_message":  "import completed",
			"completed_at":      now,
		}).Error
	if err != nil {
		return fmt.Errorf("complete import job: %w", err)
	}
	return nil
}

func (r *ImportJobRepository) Fail(ctx context.Context, jobID string, reason string) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status":           string(domain.StatusFailed),
			"progress_message": reason,
			"completed_at":     now,
		}).Error
	if err != nil {
		return fmt.Errorf("fail import job: %w", err)
	}
	return nil
}

func (r *ImportJobRepository) MarkCancelled(ctx context.Context, jobID string, progress domain.Progress) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status":            string(domain.StatusCancelled),
			"processed_records": progress.Processed,
			"imported_count":    progress.Imported,
			"error_count":       progress.Errors,
			"skipped_count":     progress.Skipped,
			"progress_message":  progress.Message,
			"completed_at":      now,
		}).Error
	if err != nil {
		return fmt.Errorf("mark import job cancelled: %w", err)
	}
	return nil
}

func (r *ImportJobRepository) CancelRequested(ctx context.Context, jobID string) (bool, error) {
	var requested bool
	err := r.db.WithContext(ctx).Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		Pluck("cancel_requested", &requested).Error
	if err != nil {
		return false, fmt.Errorf("read cancel flag: %w", err)
	}
	return requested, nil
}

// RequestCancel flips the cancellation flag. A job still sitting in pending
// is cancelled outright — no worker will ever pick it up; a processing job
// keeps running until its worker observes the flag at a row boundary.
func (r *ImportJobRepository) RequestCancel(ctx context.Context, id, userID string) error {
	err := r.db.WithContext(ctx).Exec(`
UPDATE import_jobs
SET cancel_requested = TRUE,
    status = CASE WHEN status = 'pending' THEN 'cancelled' ELSE status END,
    completed_at = CASE WHEN status = 'pending' THEN NOW() ELSE completed_at END,
    progress_message = CASE WHEN status = 'pending' THEN 'cancelled before start' ELSE progress_message END,
    updated_at = NOW()
WHERE id = ? AND user_id = ? AND status IN ('pending', 'processing')`, id, userID).Error
	if err != nil {
		return fmt.Errorf("request cancel: %w", err)
	}
	return nil
}

func (r *ImportJobRepository) GetByID(ctx context.Context, id, userID string) (*domain.Job, error) {
	var row models.ImportJob
	err := r.db.WithContext(ctx).
		First(&row, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("get import job: %w", err)
	}

	job := toDomainJob(row)
	return &job, nil
}

func (r *ImportJobRepository) List(ctx context.Context, userID string, status domain.Status, limit int) ([]domain.Job, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var rows []models.ImportJob
	if err := query.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list import jobs: %w", err)
	}

	jobs := make([]domain.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, toDomainJob(row))
	}
	return jobs, nil
}

func toDomainJob(row models.ImportJob) domain.Job {
	var details []string
	if row.ErrorDetails != "" {
		// Corrupt details should not make the job unreadable.
		_ = json.Unmarshal([]byte(row.ErrorDetails), &details)
	}

	return domain.Job{
		ID:               row.ID,
		UserID:           row.UserID,
		Status:           domain.Status(row.Status),
		SourcePath:       row.SourcePath,
		TotalRecords:     row.TotalRecords,
		ProcessedRecords: row.ProcessedRecords,
		ImportedCount:    row.ImportedCount,
		ErrorCount:       row.ErrorCount,
		SkippedCount:     row.SkippedCount,
		ErrorDetails:     details,
		FileName:         row.FileName,
		FileSize:         row.FileSize,
		Options: domain.Options{
			Commit:         true,
			UpdateExisting: row.UpdateExisting,
			OnlyNew:        row.OnlyNew,
		},
		ProgressMessage: row.ProgressMessage,
		CancelRequested: row.CancelRequested,
		CreatedAt:       row.CreatedAt,
		StartedAt:       row.StartedAt,
		CompletedAt:     row.CompletedAt,
	}
}
