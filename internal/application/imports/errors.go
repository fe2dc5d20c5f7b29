package imports

import "errors"

var (
	ErrEmptyBatch         = errors.New("import batch is empty")
	ErrCommitNotConfirmed = errors.New("commit requires a prior preview confirmation")
	ErrCreateJob          = errors.New("failed to create import job")
	ErrJobNotFound        = errors.New("import job not found")
)
