package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/hayasui/kotae/internal/models"
)

// extractPDF returns one page of text per physical PDF page, 1-based. Pages
// whose text extraction fails are skipped so one broken page does not sink
// the whole document.
func (e *Extractor) extractPDF(content []byte, source string) ([]models.PageText, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var pages []models.PageText
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("skipping unreadable PDF page",
				zap.String("source", source), zap.Int("page", i), zap.Error(err))
			continue
		}
		pages = append(pages, models.PageText{
			Text:       text,
			SourceFile: source,
			Page:       i,
		})
	}
	return pages, nil
}
