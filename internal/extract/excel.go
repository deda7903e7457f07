package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hayasui/kotae/internal/models"
)

// extractExcel returns one page per sheet in workbook order. Rows are joined
// by newlines and cells by tabs so tabular values stay in reading order.
func extractExcel(content []byte, source string) ([]models.PageText, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	var pages []models.PageText
	for i, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		var buf strings.Builder
		for _, row := range rows {
			buf.WriteString(strings.Join(row, "\t"))
			buf.WriteByte('\n')
		}
		pages = append(pages, models.PageText{
			Text:       strings.TrimSpace(buf.String()),
			SourceFile: source,
			Page:       i + 1,
		})
	}
	return pages, nil
}
