package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/revops-pilot/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

// ReadRecords parses an .xlsx export into raw records. The first non-empty row is
// the header; its cells become the field names. Empty cells are nil, date-formatted
// cells are time.Time and everything else is the unformatted cell text.
// An empty sheet name selects the first sheet.
func ReadRecords(r io.Reader, source domain.SourceSystem, sheet string) ([]domain.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("no sheets found in spreadsheet")
		}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of sheet %q: %w", sheet, err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	headerIdx := -1
	for i, row := range rows {
		if !isEmptyRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return []domain.RawRecord{}, nil
	}

	headers := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		headers[i] = strings.TrimSpace(h)
	}

	records := []domain.RawRecord{}
	for offset, row := range rows[headerIdx+1:] {
		if isEmptyRow(row) {
			continue
		}
		rowNum := headerIdx + offset + 2
		fields := make(map[string]any, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i >= len(row) || strings.TrimSpace(row[i]) == "" {
				fields[header] = nil
				continue
			}
			if t, ok := dateCell(f, sheet, i+1, rowNum, row[i], date1904); ok {
				fields[header] = t
				continue
			}
			fields[header] = row[i]
		}
		records = append(records, domain.RawRecord{Source: source, Fields: fields})
	}
	return records, nil
}

// dateCell converts a serial number stored in a date-formatted cell
func dateCell(f *excelize.File, sheet string, col, row int, raw string, date1904 bool) (time.Time, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return time.Time{}, false
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return time.Time{}, false
	}
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return time.Time{}, false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || !isDateFormat(style) {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// isDateFormat recognizes the built-in date/time number formats and custom
// formats with date or time tokens outside literals and [..] sections.
func isDateFormat(style *excelize.Style) bool {
	switch id := style.NumFmt; {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47, id >= 50 && id <= 58:
		return true
	}
	if style.CustomNumFmt == nil {
		return false
	}

	var (
		quoted  bool
		bracket bool
	)
	for _, r := range strings.ToLower(*style.CustomNumFmt) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		case r == 'y', r == 'd', r == 'h', r == 's':
			return true
		}
	}
	return false
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
