package imports

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/ramindav/outreach-crm/internal/domain/imports"
)

type jobQueries interface {
	GetByID(ctx context.Context, id, userID string) (*domain.Job, error)
	List(ctx context.Context, userID string, status domain.Status, limit int) ([]domain.Job, error)
	RequestCancel(ctx context.Context, id, userID string) error
}

// JobService is the polling/control surface the HTTP layer calls. Jobs are
// owner-scoped: another user's job is indistinguishable from a missing one.
type JobService struct {
	repo jobQueries
}

func NewJobService(repo jobQueries) *JobService {
	return &JobService{repo: repo}
}

func (s *JobService) GetJobStatus(ctx context.Context, id, userID string) (domain.Job, error) {
	job, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return domain.Job{}, ErrJobNotFound
		}
		return domain.Job{}, fmt.Errorf("get import job: %w", err)
	}
	return *job, nil
}

func (s *JobService) ListJobs(ctx context.Context, userID string, status domain.Status, limit int) ([]domain.Job, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	jobs, err := s.repo.List(ctx, userID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list import jobs: %w", err)
	}
	return jobs, nil
}

type CancelJobOutput struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// CancelJob flags a pending or processing job for cooperative cancellation.
// Cancelling a terminal job is a no-op, not an error.
func (s *JobService) CancelJob(ctx context.Context, id, userID string) (CancelJobOutput, error) {
	job, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return CancelJobOutput{}, ErrJobNotFound
		}
		return CancelJobOutput{}, fmt.Errorf("get import job: %w", err)
	}

	if !job.CanCancel() {
		return CancelJobOutput{
			Accepted: false,
			Message:  "job may have already completed or failed",
		}, nil
	}

	if err := s.repo.RequestCancel(ctx, id, userID); err != nil {
		return CancelJobOutput{}, fmt.Errorf("request cancel: %w", err)
	}
	return CancelJobOutput{Accepted: true, Message: "cancellation requested"}, nil
}
