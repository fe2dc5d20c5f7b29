package spreadsheet_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ramindav/outreach-crm/internal/infrastructure/spreadsheet"
)

func workbookBytes(t *testing.T, sheet string, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatal(err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestRowsReadsHeaderedSheet(t *testing.T) {
	t.Parallel()

	buf := workbookBytes(t, "Leads", [][]any{
		{"Name", "Email", "Phone", "Company"},
		{"Dana Fox", "dana@example.com", "555-1234", "Acme"},
		{"Rio Vega", "rio@example.com", "", "Globex"},
	})

	rows, err := spreadsheet.Rows(buf, "")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Index != 1 {
		t.Errorf("Index = %d, want 1", first.Index)
	}
	if first.Sheet != "Leads" {
		t.Errorf("Sheet = %q, want Leads", first.Sheet)
	}
	if first.Fields["email"] != "dana@example.com" {
		t.Errorf("email field = %q", first.Fields["email"])
	}
	if first.Fields["name"] != "Dana Fox" {
		t.Errorf("name field = %q", first.Fields["name"])
	}

	// Empty cells are omitted, not stored as empty strings.
	if _, ok := rows[1].Fields["phone"]; ok {
		t.Errorf("expected empty phone cell to be dropped: %v", rows[1].Fields)
	}
}

func TestRowsSheetLabelOverride(t *testing.T) {
	t.Parallel()

	buf := workbookBytes(t, "Sheet1", [][]any{
		{"Email"},
		{"a@x.com"},
	})

	rows, err := spreadsheet.Rows(buf, "Q3 Conference")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 1 || rows[0].Sheet != "Q3 Conference" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestRowsSkipsEmptyRows(t *testing.T) {
	t.Parallel()

	buf := workbookBytes(t, "Sheet1", [][]any{
		{"Name", "Email"},
		{"", ""},
		{"Dana", "dana@example.com"},
	})

	rows, err := spreadsheet.Rows(buf, "")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Index != 1 {
		t.Errorf("Index = %d, want 1", rows[0].Index)
	}
}

func TestRowsHeaderOnly(t *testing.T) {
	t.Parallel()

	buf := workbookBytes(t, "Sheet1", [][]any{{"Name", "Email"}})

	rows, err := spreadsheet.Rows(buf, "")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestRowsInvalidWorkbook(t *testing.T) {
	t.Parallel()

	if _, err := spreadsheet.Rows(bytes.NewReader([]byte("not a workbook")), ""); err == nil {
		t.Fatal("expected error for invalid workbook")
	}
}
