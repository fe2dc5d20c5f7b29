package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	domain "github.com/ramindav/outreach-crm/internal/domain/contact"
)

var ErrNoSheets = errors.New("workbook has no sheets")

// Rows reads the first sheet of an xlsx workbook into raw row maps. Row 1 is
// the header; each following row becomes one RawRow keyed by the lower-cased
// headers, with its 1-based position within the data rows. Entirely empty
// rows are dropped. Anything beyond header→value mapping is the caller's
// concern.
func Rows(r io.Reader, sheetLabel string) ([]domain.RawRow, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	sheet := sheets[0]
	if sheetLabel == "" {
		sheetLabel = sheet
	}

	cells, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(cells) < 2 {
		return nil, nil
	}

	headers := make([]string, 0, len(cells[0]))
	for _, h := range cells[0] {
		headers = append(headers, strings.ToLower(strings.TrimSpace(h)))
	}

	rows := make([]domain.RawRow, 0, len(cells)-1)
	index := 0
	for _, line := range cells[1:] {
		fields := make(map[string]string, len(headers))
		empty := true
		for i, header := range headers {
			if header == "" || i >= len(line) {
				continue
			}
			value := strings.TrimSpace(line[i])
			if value == "" {
				continue
			}
			fields[header] = value
			empty = false
		}
		if empty {
			continue
		}
		index++
		rows = append(rows, domain.RawRow{Index: index, Sheet: sheetLabel, Fields: fields})
	}

	return rows, nil
}
