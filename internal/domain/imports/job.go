package imports

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether a job in this status can never change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Options are the caller-supplied commit flags, persisted with the job so a
// worker picking it up later applies the same semantics the caller asked for.
type Options struct {
	Commit         bool
	UpdateExisting bool
	OnlyNew        bool
	Confirmed      bool
	Force          bool
}

// Job is the durable import-job record. It is both the progress surface the
// caller polls and the queue entry a worker claims; the two never race
// because only the claiming worker writes counters, while the requesting
// user may only flip CancelRequested.
type Job struct {
	ID               string
	UserID           string
	Status           Status
	SourcePath       string
	TotalRecords     int64
	ProcessedRecords int64
	ImportedCount    int64
	ErrorCount       int64
	SkippedCount     int64
	ErrorDetails     []string
	FileName         string
	FileSize         int64
	Options          Options
	ProgressMessage  string
	CancelRequested  bool
	CreatedAt        time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
}

// ProgressPercent derives completion from the counters, clamped to [0,100].
// A job whose total is still unknown reports 0.
func (j Job) ProgressPercent() float64 {
	if j.TotalRecords <= 0 {
		return 0
	}
	pct := float64(j.ProcessedRecords) / float64(j.TotalRecords) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// CanCancel reports whether a cancellation request is still meaningful.
func (j Job) CanCancel() bool {
	return j.Status == StatusPending || j.Status == StatusProcessing
}

// Progress is one atomic counter update flushed by the owning worker.
type Progress struct {
	Processed int64
	Imported  int64
	Errors    int64
	Skipped   int64
	Message   string
}

// ReportEntry is the per-row audit line returned to the caller. Status is
// "OK" when the row was written (inserted or updated) and "Not OK"
// otherwise; Message says why.
type ReportEntry struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

const (
	ReportOK    = "OK"
	ReportNotOK = "Not OK"
)

// Summary is the final accounting of a finished run.
type Summary struct {
	Processed int64
	Imported  int64
	Skipped   int64
	Failed    int64
	Errors    []string
	Report    []ReportEntry
}
