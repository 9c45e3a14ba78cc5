package extract

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"docsearch/internal/domain"
)

// PDF extracts per-page text from PDF files.
type PDF struct{}

// Extract returns one Page per PDF page, in document order. Pages with no
// extractable text are returned empty so page numbering stays aligned with
// the source document.
func (PDF) Extract(ctx context.Context, doc domain.Document) ([]domain.Page, error) {
	file, reader, err := pdf.Open(doc.Path)
	if err != nil {
		return nil, fmt.Errorf("extract: opening %s: %w", doc.Path, err)
	}
	defer file.Close()

	pages := make([]domain.Page, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, domain.Page{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract: %s page %d: %w", doc.ID, i, err)
		}
		pages = append(pages, domain.Page{Number: i, Text: text})
	}
	return pages, nil
}
