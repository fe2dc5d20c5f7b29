package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	domain "github.com/ramindav/outreach-crm/internal/domain/contact"
)

// Spool is the durable handoff between a submitting request and the worker
// that later claims the job: rows land on disk before the job record is
// created, and the job record carries the path back.
type Spool struct {
	BaseDir string
}

func NewSpool(baseDir string) *Spool {
	if baseDir == "" {
		baseDir = "imports"
	}
	return &Spool{BaseDir: baseDir}
}

type spooledRow struct {
	Index  int               `json:"index"`
	Sheet  string            `json:"sheet"`
	Fields map[string]string `json:"fields"`
}

func (s *Spool) Save(ctx context.Context, jobID string, rows []domain.RawRow) (string, error) {
	_ = ctx

	if err := os.MkdirAll(s.BaseDir, 0o755); err != nil {
		return "", fmt.Errorf("create spool dir: %w", err)
	}

	payload := make([]spooledRow, 0, len(rows))
	for _, row := range rows {
		payload = append(payload, spooledRow{Index: row.Index, Sheet: row.Sheet, Fields: row.Fields})
	}

	path := filepath.Join(s.BaseDir, jobID+".json")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(payload); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("encode spool file: %w", err)
	}

	return path, nil
}

func (s *Spool) Load(ctx context.Context, path string) ([]domain.RawRow, error) {
	_ = ctx

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spool file %s: %w", path, err)
	}
	defer f.Close()

	var payload []spooledRow
	if err := json.NewDecoder(f).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode spool file %s: %w", path, err)
	}

	rows := make([]domain.RawRow, 0, len(payload))
	for _, row := range payload {
		rows = append(rows, domain.RawRow{Index: row.Index, Sheet: row.Sheet, Fields: row.Fields})
	}
	return rows, nil
}

func (s *Spool) Remove(ctx context.Context, path string) error {
	_ = ctx

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove spool file %s: %w", path, err)
	}
	return nil
}
