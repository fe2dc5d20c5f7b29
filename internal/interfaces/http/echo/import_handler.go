package echo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	app "github.com/ramindav/outreach-crm/internal/application/imports"
	contactdomain "github.com/ramindav/outreach-crm/internal/domain/contact"
	domain "github.com/ramindav/outreach-crm/internal/domain/imports"
)

// RowParser turns an uploaded workbook stream into raw rows. The concrete
// implementation lives in infrastructure; the handler only needs the shape.
type RowParser func(r io.Reader, sheetLabel string) ([]contactdomain.RawRow, error)

type jobControl interface {
	GetJobStatus(ctx context.Context, id, userID string) (domain.Job, error)
	ListJobs(ctx context.Context, userID string, status domain.Status, limit int) ([]domain.Job, error)
	CancelJob(ctx context.Context, id, userID string) (app.CancelJobOutput, error)
}

type ImportHandler struct {
	submit app.SubmitImport
	jobs   jobControl
	parse  RowParser
}

func NewImportHandler(submit app.SubmitImport, jobs jobControl, parse RowParser) *ImportHandler {
	return &ImportHandler{submit: submit, jobs: jobs, parse: parse}
}

type importOptions struct {
	Commit         bool `json:"commit" query:"commit" form:"commit"`
	UpdateExisting bool `json:"update_existing" query:"update_existing" form:"update_existing"`
	OnlyNew        bool `json:"only_new" query:"only_new" form:"only_new"`
	Confirmed      bool `json:"confirmed" query:"confirmed" form:"confirmed"`
	Force          bool `json:"force" query:"force" form:"force"`
}

func (o importOptions) toDomain() domain.Options {
	return domain.Options{
		Commit:         o.Commit,
		UpdateExisting: o.UpdateExisting,
		OnlyNew:        o.OnlyNew,
		Confirmed:      o.Confirmed,
		Force:          o.Force,
	}
}

type importContactsRequest struct {
	Rows  []map[string]string `json:"rows"`
	Sheet string              `json:"sheet"`
	importOptions
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type previewView struct {
	Total      int             `json:"total"`
	Uniques    int             `json:"uniques"`
	Duplicates []duplicateView `json:"duplicates"`
}

type duplicateView struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	MatchedBy string `json:"matched_by"`
	MatchedID string `json:"matched_id"`
}

type summaryView struct {
	Processed int64                `json:"processed"`
	Imported  int64                `json:"imported"`
	Skipped   int64                `json:"skipped"`
	Failed    int64                `json:"failed"`
	Errors    []string             `json:"errors,omitempty"`
	Report    []domain.ReportEntry `json:"report"`
}

type importView struct {
	Mode    string       `json:"mode"`
	JobID   string       `json:"job_id,omitempty"`
	Status  string       `json:"status"`
	Preview *previewView `json:"preview,omitempty"`
	Summary *summaryView `json:"summary,omitempty"`
}

func userID(c echo.Context) string {
	if id := c.Request().Header.Get("X-User-ID"); id != "" {
		return id
	}
	return "anonymous"
}

func (h *ImportHandler) ImportContacts(c echo.Context) error {
	var req importContactsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "invalid request body",
		}})
	}

	sheet := req.Sheet
	if sheet == "" {
		sheet = "api"
	}
	rows := make([]contactdomain.RawRow, 0, len(req.Rows))
	for i, fields := range req.Rows {
		rows = append(rows, contactdomain.RawRow{
			Index:  i + 1,
			Sheet:  sheet,
			Fields: fields,
		})
	}

	return h.run(c, app.SubmitImportInput{
		UserID:  userID(c),
		Rows:    rows,
		Options: req.toDomain(),
	})
}

func (h *ImportHandler) ImportContactsFile(c echo.Context) error {
	var opts importOptions
	if err := c.Bind(&opts); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "invalid request parameters",
		}})
	}

	header, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "missing_file",
			Message: "multipart field \"file\" is required",
		}})
	}

	src, err := header.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "unreadable_file",
			Message: "could not open uploaded file",
		}})
	}
	defer src.Close()

	rows, err := h.parse(src, c.FormValue("sheet"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_file",
			Message: "could not parse workbook: " + err.Error(),
		}})
	}

	return h.run(c, app.SubmitImportInput{
		UserID:   userID(c),
		Rows:     rows,
		FileName: header.Filename,
		FileSize: header.Size,
		Options:  opts.toDomain(),
	})
}

func (h *ImportHandler) run(c echo.Context, in app.SubmitImportInput) error {
	out, err := h.submit.Execute(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, app.ErrEmptyBatch) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "empty_batch",
				Message: "no rows to import",
			}})
		}
		if errors.Is(err, app.ErrCommitNotConfirmed) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "commit_not_confirmed",
				Message: "a commit requires confirmed=true or force=true; run a preview first",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to process import",
		}})
	}

	status := http.StatusOK
	if out.Mode == app.ModeBackground {
		status = http.StatusAccepted
	}
	return c.JSON(status, apiResponse{Data: toImportView(out)})
}

func toImportView(out app.SubmitImportOutput) importView {
	view := importView{
		Mode:   out.Mode,
		JobID:  out.JobID,
		Status: out.Status,
	}
	if out.Preview != nil {
		p := previewView{
			Total:      out.Preview.Total,
			Uniques:    out.Preview.Uniques,
			Duplicates: make([]duplicateView, 0, len(out.Preview.Duplicates)),
		}
		for _, dup := range out.Preview.Duplicates {
			p.Duplicates = append(p.Duplicates, duplicateView{
				Index:     dup.Row.Raw.Index,
				Name:      dup.Row.Name,
				Email:     dup.Row.Email,
				MatchedBy: string(dup.MatchType),
				MatchedID: dup.MatchedContactID,
			})
		}
		view.Preview = &p
	}
	if out.Summary != nil {
		view.Summary = &summaryView{
			Processed: out.Summary.Processed,
			Imported:  out.Summary.Imported,
			Skipped:   out.Summary.Skipped,
			Failed:    out.Summary.Failed,
			Errors:    out.Summary.Errors,
			Report:    out.Summary.Report,
		}
	}
	return view
}

type jobView struct {
	ID              string   `json:"id"`
	Status          string   `json:"status"`
	TotalRecords    int64    `json:"total_records"`
	Processed       int64    `json:"processed_records"`
	Imported        int64    `json:"imported_count"`
	Skipped         int64    `json:"skipped_count"`
	Failed          int64    `json:"error_count"`
	ProgressPercent float64  `json:"progress_percent"`
	ProgressMessage string   `json:"progress_message,omitempty"`
	ErrorDetails    []string `json:"error_details,omitempty"`
	FileName        string   `json:"file_name,omitempty"`
	CreatedAt       string   `json:"created_at"`
	StartedAt       *string  `json:"started_at,omitempty"`
	CompletedAt     *string  `json:"completed_at,omitempty"`
}

func toJobView(job domain.Job) jobView {
	view := jobView{
		ID:              job.ID,
		Status:          string(job.Status),
		TotalRecords:    job.TotalRecords,
		Processed:       job.ProcessedRecords,
		Imported:        job.ImportedCount,
		Skipped:         job.SkippedCount,
		Failed:          job.ErrorCount,
		ProgressPercent: job.ProgressPercent(),
		ProgressMessage: job.ProgressMessage,
		ErrorDetails:    job.ErrorDetails,
		FileName:        job.FileName,
		CreatedAt:       job.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if job.StartedAt != nil {
		s := job.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		view.StartedAt = &s
	}
	if job.CompletedAt != nil {
		s := job.CompletedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		view.CompletedAt = &s
	}
	return view
}

func (h *ImportHandler) GetJob(c echo.Context) error {
	job, err := h.jobs.GetJobStatus(c.Request().Context(), c.Param("id"), userID(c))
	if err != nil {
		if errors.Is(err, app.ErrJobNotFound) {
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "not_found",
				Message: "import job not found",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to get import job",
		}})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: toJobView(job)})
}

func (h *ImportHandler) ListJobs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	status := domain.Status(c.QueryParam("status"))

	jobs, err := h.jobs.ListJobs(c.Request().Context(), userID(c), status, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to list import jobs",
		}})
	}

	views := make([]jobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, toJobView(job))
	}
	return c.JSON(http.StatusOK, apiResponse{Data: views})
}

func (h *ImportHandler) CancelJob(c echo.Context) error {
	out, err := h.jobs.CancelJob(c.Request().Context(), c.Param("id"), userID(c))
	if err != nil {
		if errors.Is(err, app.ErrJobNotFound) {
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "not_found",
				Message: "import job not found",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to cancel import job",
		}})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
