package imports

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ramindav/outreach-crm/internal/application/contacts"
	contactdomain "github.com/ramindav/outreach-crm/internal/domain/contact"
	domain "github.com/ramindav/outreach-crm/internal/domain/imports"
)

// AdmissionPolicy decides whether a commit runs in the request or is
// deferred to a background job. The thresholds trade caller latency against
// server resource predictability and come from configuration.
type AdmissionPolicy struct {
	SyncRowLimit  int
	SyncByteLimit int64
}

func (p AdmissionPolicy) Background(rowCount int, fileSize int64, commit bool) bool {
	if !commit {
		return false
	}
	return rowCount > p.SyncRowLimit || fileSize > p.SyncByteLimit
}

type jobCreator interface {
	Create(ctx context.Context, job domain.Job) error
}

type rowSpool interface {
	Save(ctx context.Context, jobID string, rows []contactdomain.RawRow) (string, error)
	Remove(ctx context.Context, path string) error
}

type SubmitImportInput struct {
	UserID   string
	Rows     []contactdomain.RawRow
	FileName string
	FileSize int64
	Options  domain.Options
}

type PreviewOutput struct {
	Total      int
	Duplicates []contactdomain.MatchResult
	Uniques    int
}

// SubmitImportOutput is one of three shapes: a preview breakdown, a
// synchronous summary, or a job handle for the background path.
type SubmitImportOutput struct {
	Mode    string
	JobID   string
	Status  string
	Preview *PreviewOutput
	Summary *domain.Summary
}

const (
	ModePreview    = "preview"
	ModeSync       = "sync"
	ModeBackground = "background"
)

type SubmitImport interface {
	Execute(ctx context.Context, in SubmitImportInput) (SubmitImportOutput, error)
}

type submitImport struct {
	jobs    jobCreator
	spool   rowSpool
	engine  *contacts.UpsertEngine
	matcher *contacts.Matcher
	policy  AdmissionPolicy
	phones  contactdomain.PhonePolicy
}

func NewSubmitImport(
	jobs jobCreator,
	spool rowSpool,
	engine *contacts.UpsertEngine,
	matcher *contacts.Matcher,
	policy AdmissionPolicy,
	phones contactdomain.PhonePolicy,
) SubmitImport {
	return &submitImport{
		jobs:    jobs,
		spool:   spool,
		engine:  engine,
		matcher: matcher,
		policy:  policy,
		phones:  phones,
	}
}

func (uc *submitImport) Execute(ctx context.Context, in SubmitImportInput) (SubmitImportOutput, error) {
	if len(in.Rows) == 0 {
		return SubmitImportOutput{}, ErrEmptyBatch
	}

	rows := contactdomain.NormalizeRows(in.Rows, uc.phones)

	if !in.Options.Commit {
		return uc.preview(ctx, rows)
	}

	// A commit is irreversible; require either the caller's assertion that a
	// preview happened or the explicit override.
	if !in.Options.Confirmed && !in.Options.Force {
		return SubmitImportOutput{}, ErrCommitNotConfirmed
	}

	if uc.policy.Background(len(in.Rows), in.FileSize, true) {
		return uc.enqueue(ctx, in)
	}

	return uc.runSync(ctx, rows, in.Options)
}

func (uc *submitImport) preview(ctx context.Context, rows []contactdomain.NormalizedRow) (SubmitImportOutput, error) {
	duplicates, uniques, err := uc.matcher.FindDuplicates(ctx, rows)
	if err != nil {
		return SubmitImportOutput{}, err
	}
	return SubmitImportOutput{
		Mode:   ModePreview,
		Status: "previewed",
		Preview: &PreviewOutput{
			Total:      len(rows),
			Duplicates: duplicates,
			Uniques:    len(uniques),
		},
	}, nil
}

// enqueue persists the job before anything else runs: the job id returned to
// the caller always refers to a stored row, never to work that silently
// vanished with the process.
func (uc *submitImport) enqueue(ctx context.Context, in SubmitImportInput) (SubmitImportOutput, error) {
	jobID := uuid.NewString()

	sourcePath, err := uc.spool.Save(ctx, jobID, in.Rows)
	if err != nil {
		return SubmitImportOutput{}, fmt.Errorf("%w: spool rows: %v", ErrCreateJob, err)
	}

	job := domain.Job{
		ID:           jobID,
		UserID:       in.UserID,
		Status:       domain.StatusPending,
		SourcePath:   sourcePath,
		TotalRecords: int64(len(in.Rows)),
		FileName:     in.FileName,
		FileSize:     in.FileSize,
		Options:      in.Options,
	}
	if err := uc.jobs.Create(ctx, job); err != nil {
		_ = uc.spool.Remove(ctx, sourcePath)
		return SubmitImportOutput{}, fmt.Errorf("%w: %v", ErrCreateJob, err)
	}

	return SubmitImportOutput{
		Mode:   ModeBackground,
		JobID:  jobID,
		Status: string(domain.StatusPending),
	}, nil
}

func (uc *submitImport) runSync(ctx context.Context, rows []contactdomain.NormalizedRow, opts domain.Options) (SubmitImportOutput, error) {
	summary := domain.Summary{}

	if opts.OnlyNew {
		duplicates, uniques, err := uc.matcher.FindDuplicates(ctx, rows)
		if err != nil {
			return SubmitImportOutput{}, err
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

	result := uc.engine.UpsertContacts(ctx, rows, contacts.UpsertOptions{
		UpdateExisting: opts.UpdateExisting,
	})
	summary.Processed += int64(len(rows))
	summary.Imported += result.Imported
	summary.Skipped += result.Skipped
	summary.Failed += result.Failed
	summary.Errors = append(summary.Errors, result.Errors...)
	summary.Report = append(summary.Report, result.Report...)

	sort.Slice(summary.Report, func(i, j int) bool {
		return summary.Report[i].Index < summary.Report[j].Index
	})

	return SubmitImportOutput{
		Mode:    ModeSync,
		Status:  string(domain.StatusCompleted),
		Summary: &summary,
	}, nil
}
