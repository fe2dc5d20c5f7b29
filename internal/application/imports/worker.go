package imports

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ramindav/outreach-crm/internal/application/contacts"
	contactdomain "github.com/ramindav/outreach-crm/internal/domain/contact"
	domain "github.com/ramindav/outreach-crm/internal/domain/imports"
)

const maxStoredErrors = 100

type workerJobRepo interface {
	ClaimNext(ctx context.Context, leaseDuration time.Duration) (*domain.Job, error)
	Heartbeat(ctx context.Context, jobID string, leaseDuration time.Duration) error
	UpdateProgress(ctx context.Context, jobID string, progress domain.Progress) error
	Complete(ctx context.Context, jobID string, summary domain.Summary) error
	Fail(ctx context.Context, jobID string, reason string) error
	MarkCancelled(ctx context.Context, jobID string, progress domain.Progress) error
	CancelRequested(ctx context.Context, jobID string) (bool, error)
}

type spooledRows interface {
	Load(ctx context.Context, path string) ([]contactdomain.RawRow, error)
	Remove(ctx context.Context, path string) error
}

type WorkerConfig struct {
	Workers           int
	ChunkSize         int
	PollInterval      time.Duration
	LeaseDuration     time.Duration
	HeartbeatInterval time.Duration
}

// Worker drains pending import jobs. Exactly one worker owns a claimed job's
// counters; pollers only ever read. The cancellation flag is checked at
// chunk boundaries — in-flight rows finish, committed rows stay.
type Worker struct {
	repo    workerJobRepo
	source  spooledRows
	engine  *contacts.UpsertEngine
	matcher *contacts.Matcher
	phones  contactdomain.PhonePolicy
	log     *logrus.Logger
	cfg     WorkerConfig

	once sync.Once
}

func NewWorker(
	repo workerJobRepo,
	source spooledRows,
	engine *contacts.UpsertEngine,
	matcher *contacts.Matcher,
	phones contactdomain.PhonePolicy,
	log *logrus.Logger,
	cfg WorkerConfig,
) *Worker {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 25
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.LeaseDuration <= 0 {
		cfg.LeaseDuration = 60 * time.Second
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = cfg.LeaseDuration / 2
	}

	return &Worker{
		repo:    repo,
		source:  source,
		engine:  engine,
		matcher: matcher,
		phones:  phones,
		log:     log,
		cfg:     cfg,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.once.Do(func() {
		for i := 0; i < w.cfg.Workers; i++ {
			go w.workerLoop(ctx)
		}
	})
}

func (w *Worker) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.repo.ClaimNext(ctx, w.cfg.LeaseDuration)
		if err != nil {
			w.log.WithError(err).Warn("claim next import job failed")
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		if job == nil {
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		if err := w.ProcessJob(ctx, *job); err != nil {
			w.log.WithError(err).WithField("job_id", job.ID).Error("process import job failed")
		}
	}
}

// ProcessJob runs one claimed job to a terminal status. Row-level failures
// are counted and reported, never fatal; only an unreadable source or a
// dedup-lookup outage marks the job failed.
func (w *Worker) ProcessJob(ctx context.Context, job domain.Job) error {
	log := w.log.WithFields(logrus.Fields{"job_id": job.ID, "user_id": job.UserID})
	log.Info("import job started")

	raws, err := w.source.Load(ctx, job.SourcePath)
	if err != nil {
		return w.failJob(ctx, job.ID, fmt.Errorf("load import rows: %w", err))
	}

	rows := contactdomain.NormalizeRows(raws, w.phones)

	summary := domain.Summary{}

	if job.Options.OnlyNew {
		duplicates, uniques, err := w.matcher.FindDuplicates(ctx, rows)
		if err != nil {
			return w.failJob(ctx, job.ID, fmt.Errorf("find duplicates: %w", err))
		}
		for _, dup := range duplicates {
			summary.Processed++
			summary.Skipped++
			summary.Report = append(summary.Report, domain.ReportEntry{
				Index:   dup.Row.Raw.Index,
				Name:    dup.Row.Name,
				Email:   dup.Row.Email,
				Status:  domain.ReportNotOK,
				Message: "duplicate, not imported",
			})
		}
		rows = uniques
	}

	ticker := time.NewTicker(w.cfg.HeartbeatInterval)
	defer ticker.Stop()

	batch := w.engine.NewBatch(contacts.UpsertOptions{
		UpdateExisting: job.Options.UpdateExisting,
	})

	for start := 0; start < len(rows); start += w.cfg.ChunkSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.repo.Heartbeat(ctx, job.ID, w.cfg.LeaseDuration); err != nil {
				return w.failJob(ctx, job.ID, fmt.Errorf("heartbeat: %w", err))
			}
		default:
		}

		cancelled, err := w.repo.CancelRequested(ctx, job.ID)
		if err != nil {
			return w.failJob(ctx, job.ID, fmt.Errorf("check cancellation: %w", err))
		}
		if cancelled {
			progress := progressFrom(summary, "cancelled by user")
			if err := w.repo.MarkCancelled(ctx, job.ID, progress); err != nil {
				return fmt.Errorf("mark cancelled: %w", err)
			}
			log.WithField("processed", summary.Processed).Info("import job cancelled")
			return nil
		}

		end := start + w.cfg.ChunkSize
		if end > len(rows) {
			end = len(rows)
		}

		result := batch.Process(ctx, rows[start:end])
		summary.Processed += int64(end - start)
		summary.Imported += result.Imported
		summary.Skipped += result.Skipped
		summary.Failed += result.Failed
		summary.Report = append(summary.Report, result.Report...)
		for _, detail := range result.Errors {
			if len(summary.Errors) < maxStoredErrors {
				summary.Errors = append(summary.Errors, detail)
			}
		}

		progress := progressFrom(summary, fmt.Sprintf("processed %d of %d rows", summary.Processed, job.TotalRecords))
		if err := w.repo.UpdateProgress(ctx, job.ID, progress); err != nil {
			return w.failJob(ctx, job.ID, fmt.Errorf("update progress: %w", err))
		}
	}

	sort.Slice(summary.Report, func(i, j int) bool {
		return summary.Report[i].Index < summary.Report[j].Index
	})

	if err := w.repo.Complete(ctx, job.ID, summary); err != nil {
		return w.failJob(ctx, job.ID, fmt.Errorf("complete job: %w", err))
	}

	if err := w.source.Remove(ctx, job.SourcePath); err != nil {
		log.WithError(err).Warn("remove spooled rows failed")
	}

	log.WithFields(logrus.Fields{
		"imported": summary.Imported,
		"skipped":  summary.Skipped,
		"failed":   summary.Failed,
	}).Info("import job completed")
	return nil
}

func (w *Worker) failJob(ctx context.Context, jobID string, cause error) error {
	if err := w.repo.Fail(ctx, jobID, truncateReason(cause.Error())); err != nil {
		return fmt.Errorf("%v; fail update failed: %w", cause, err)
	}
	return cause
}

func progressFrom(summary domain.Summary, message string) domain.Progress {
	return domain.Progress{
		Processed: summary.Processed,
		Imported:  summary.Imported,
		Errors:    summary.Failed,
		Skipped:   summary.Skipped,
		Message:   message,
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func truncateReason(reason string) string {
	const maxLen = 1000
	reason = strings.TrimSpace(reason)
	if len(reason) <= maxLen {
		return reason
	}
	return reason[:maxLen]
}
