package register

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reduces a spreadsheet export to a Document: one candidate table
// per sheet that holds at least a header row and a data row. The first row
// of each sheet is taken as its header; the locator scores sheets the same
// way it scores HTML tables.
func ParseXLSX(payload []byte) (Document, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return Document{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var out Document
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}

		t := Table{Caption: CleanText(sheet)}
		for _, cell := range rows[0] {
			t.Headers = append(t.Headers, CleanText(cell))
		}
		for _, row := range rows[1:] {
			cleaned := make([]string, 0, len(row))
			empty := true
			for _, cell := range row {
				c := CleanText(cell)
				if c != "" {
					empty = false
				}
				cleaned = append(cleaned, c)
			}
			if !empty {
				t.Rows = append(t.Rows, cleaned)
			}
		}
		if len(t.Rows) > 0 {
			out.Tables = append(out.Tables, t)
		}
	}
	return out, nil
}
