package echo_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	contactapp "github.com/ramindav/outreach-crm/internal/application/contacts"
	app "github.com/ramindav/outreach-crm/internal/application/imports"
	contactdomain "github.com/ramindav/outreach-crm/internal/domain/contact"
	domain "github.com/ramindav/outreach-crm/internal/domain/imports"
	httpecho "github.com/ramindav/outreach-crm/internal/interfaces/http/echo"
)

type fakeSubmit struct {
	output app.SubmitImportOutput
	err    error
	gotIn  app.SubmitImportInput
}

func (f *fakeSubmit) Execute(ctx context.Context, in app.SubmitImportInput) (app.SubmitImportOutput, error) {
	f.gotIn = in
	if f.err != nil {
		return app.SubmitImportOutput{}, f.err
	}
	return f.output, nil
}

type fakeJobControl struct {
	job       domain.Job
	jobs      []domain.Job
	cancelOut app.CancelJobOutput
	err       error
}

func (f *fakeJobControl) GetJobStatus(ctx context.Context, id, userID string) (domain.Job, error) {
	if f.err != nil {
		return domain.Job{}, f.err
	}
	return f.job, nil
}

func (f *fakeJobControl) ListJobs(ctx context.Context, userID string, status domain.Status, limit int) ([]domain.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.jobs, nil
}

func (f *fakeJobControl) CancelJob(ctx context.Context, id, userID string) (app.CancelJobOutput, error) {
	if f.err != nil {
		return app.CancelJobOutput{}, f.err
	}
	return f.cancelOut, nil
}

func staticParser(rows []contactdomain.RawRow, err error) httpecho.RowParser {
	return func(r io.Reader, sheetLabel string) ([]contactdomain.RawRow, error) {
		return rows, err
	}
}

func newServer(submit *fakeSubmit, jobs *fakeJobControl, parse httpecho.RowParser) *echo.Echo {
	e := echo.New()
	importHandler := httpecho.NewImportHandler(submit, jobs, parse)
	contactHandler := httpecho.NewContactHandler(
		contactapp.NewService(nil, nil, nil, contactdomain.DefaultPhonePolicy()),
	)
	httpecho.RegisterRoutes(e, importHandler, contactHandler)
	return e
}

func postJSON(t *testing.T, e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestImportContactsSync(t *testing.T) {
	t.Parallel()

	submit := &fakeSubmit{output: app.SubmitImportOutput{
		Mode:   app.ModeSync,
		Status: "completed",
		Summary: &domain.Summary{
			Processed: 2,
			Imported:  2,
			Report: []domain.ReportEntry{
				{Index: 1, Email: "a@x.com", Status: domain.ReportOK, Message: "imported"},
				{Index: 2, Email: "b@x.com", Status: domain.ReportOK, Message: "imported"},
			},
		},
	}}
	e := newServer(submit, &fakeJobControl{}, staticParser(nil, nil))

	body := `{"rows":[{"email":"a@x.com","name":"A"},{"email":"b@x.com","name":"B"}],"commit":true,"confirmed":true}`
	rec := postJSON(t, e, "/api/v1/contacts/import", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(submit.gotIn.Rows) != 2 {
		t.Fatalf("expected 2 rows forwarded, got %d", len(submit.gotIn.Rows))
	}
	if submit.gotIn.Rows[0].Index != 1 || submit.gotIn.Rows[1].Index != 2 {
		t.Fatalf("row indexes not assigned in order: %+v", submit.gotIn.Rows)
	}
	if !submit.gotIn.Options.Commit || !submit.gotIn.Options.Confirmed {
		t.Fatalf("options not forwarded: %+v", submit.gotIn.Options)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	data := got["data"].(map[string]any)
	summary := data["summary"].(map[string]any)
	if summary["imported"] != float64(2) {
		t.Fatalf("unexpected imported count: %#v", summary["imported"])
	}
}

func TestImportContactsBackgroundReturns202(t *testing.T) {
	t.Parallel()

	submit := &fakeSubmit{output: app.SubmitImportOutput{
		Mode:   app.ModeBackground,
		JobID:  "job-1",
		Status: "pending",
	}}
	e := newServer(submit, &fakeJobControl{}, staticParser(nil, nil))

	rec := postJSON(t, e, "/api/v1/contacts/import",
		`{"rows":[{"email":"a@x.com"}],"commit":true,"force":true}`)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	data := got["data"].(map[string]any)
	if data["job_id"] != "job-1" {
		t.Fatalf("unexpected job_id: %#v", data["job_id"])
	}
}

func TestImportContactsPreview(t *testing.T) {
	t.Parallel()

	submit := &fakeSubmit{output: app.SubmitImportOutput{
		Mode:   app.ModePreview,
		Status: "previewed",
		Preview: &app.PreviewOutput{
			Total:   2,
			Uniques: 1,
			Duplicates: []contactdomain.MatchResult{{
				Row:              contactdomain.NormalizedRow{Email: "a@x.com", Raw: contactdomain.RawRow{Index: 1}},
				IsDuplicate:      true,
				MatchType:        contactdomain.MatchEmail,
				MatchedContactID: "c-1",
			}},
		},
	}}
	e := newServer(submit, &fakeJobControl{}, staticParser(nil, nil))

	rec := postJSON(t, e, "/api/v1/contacts/import",
		`{"rows":[{"email":"a@x.com"},{"email":"b@x.com"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	preview := got["data"].(map[string]any)["preview"].(map[string]any)
	dups := preview["duplicates"].([]any)
	if len(dups) != 1 {
		t.Fatalf("expected 1 duplicate, got %d", len(dups))
	}
	if dups[0].(map[string]any)["matched_by"] != "email" {
		t.Fatalf("unexpected duplicate view: %#v", dups[0])
	}
}

func TestImportContactsCommitNotConfirmed(t *testing.T) {
	t.Parallel()

	e := newServer(&fakeSubmit{err: app.ErrCommitNotConfirmed}, &fakeJobControl{}, staticParser(nil, nil))

	rec := postJSON(t, e, "/api/v1/contacts/import",
		`{"rows":[{"email":"a@x.com"}],"commit":true}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	errBody := got["error"].(map[string]any)
	if errBody["code"] != "commit_not_confirmed" {
		t.Fatalf("unexpected error code: %#v", errBody["code"])
	}
}

func TestImportContactsEmptyBatch(t *testing.T) {
	t.Parallel()

	e := newServer(&fakeSubmit{err: app.ErrEmptyBatch}, &fakeJobControl{}, staticParser(nil, nil))

	rec := postJSON(t, e, "/api/v1/contacts/import", `{"rows":[]}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImportContactsInternalError(t *testing.T) {
	t.Parallel()

	e := newServer(&fakeSubmit{err: errors.New("boom")}, &fakeJobControl{}, staticParser(nil, nil))

	rec := postJSON(t, e, "/api/v1/contacts/import", `{"rows":[{"email":"a@x.com"}]}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestImportContactsFile(t *testing.T) {
	t.Parallel()

	parsed := []contactdomain.RawRow{
		{Index: 1, Sheet: "Leads", Fields: map[string]string{"email": "a@x.com"}},
		{Index: 2, Sheet: "Leads", Fields: map[string]string{"email": "b@x.com"}},
	}
	submit := &fakeSubmit{output: app.SubmitImportOutput{Mode: app.ModePreview, Status: "previewed", Preview: &app.PreviewOutput{Total: 2}}}
	e := newServer(submit, &fakeJobControl{}, staticParser(parsed, nil))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "leads.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("workbook bytes")); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contacts/import/file", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set("X-User-ID", "user-7")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if submit.gotIn.FileName != "leads.xlsx" {
		t.Fatalf("unexpected file name: %q", submit.gotIn.FileName)
	}
	if submit.gotIn.FileSize == 0 {
		t.Fatal("expected file size to be forwarded")
	}
	if submit.gotIn.UserID != "user-7" {
		t.Fatalf("unexpected user id: %q", submit.gotIn.UserID)
	}
	if len(submit.gotIn.Rows) != 2 {
		t.Fatalf("expected parsed rows forwarded, got %d", len(submit.gotIn.Rows))
	}
}

func TestImportContactsFileParseError(t *testing.T) {
	t.Parallel()

	e := newServer(&fakeSubmit{}, &fakeJobControl{}, staticParser(nil, errors.New("bad workbook")))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "leads.xlsx")
	part.Write([]byte("not a workbook"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contacts/import/file", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImportContactsFileMissing(t *testing.T) {
	t.Parallel()

	e := newServer(&fakeSubmit{}, &fakeJobControl{}, staticParser(nil, nil))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("commit", "true")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contacts/import/file", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetJob(t *testing.T) {
	t.Parallel()

	jobs := &fakeJobControl{job: domain.Job{
		ID:               "job-1",
		Status:           domain.StatusProcessing,
		TotalRecords:     100,
		ProcessedRecords: 25,
	}}
	e := newServer(&fakeSubmit{}, jobs, staticParser(nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/jobs/job-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	data := got["data"].(map[string]any)
	if data["status"] != "processing" {
		t.Fatalf("unexpected status: %#v", data["status"])
	}
	if data["progress_percent"] != float64(25) {
		t.Fatalf("unexpected progress: %#v", data["progress_percent"])
	}
}

func TestGetJobNotFound(t *testing.T) {
	t.Parallel()

	e := newServer(&fakeSubmit{}, &fakeJobControl{err: app.ErrJobNotFound}, staticParser(nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/jobs/nope", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListJobs(t *testing.T) {
	t.Parallel()

	e := newServer(&fakeSubmit{}, &fakeJobControl{jobs: []domain.Job{
		{ID: "job-2", Status: domain.StatusCompleted},
		{ID: "job-1", Status: domain.StatusFailed},
	}}, staticParser(nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/jobs?limit=10", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	data := got["data"].([]any)
	if len(data) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(data))
	}
}

func TestCancelJob(t *testing.T) {
	t.Parallel()

	e := newServer(&fakeSubmit{}, &fakeJobControl{cancelOut: app.CancelJobOutput{
		Accepted: true,
		Message:  "cancellation requested",
	}}, staticParser(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/jobs/job-1/cancel", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	data := got["data"].(map[string]any)
	if data["accepted"] != true {
		t.Fatalf("unexpected cancel output: %#v", data)
	}
}

func TestCancelJobNotFound(t *testing.T) {
	t.Parallel()

	e := newServer(&fakeSubmit{}, &fakeJobControl{err: app.ErrJobNotFound}, staticParser(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/jobs/nope/cancel", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
