package extract

import (
	"context"
	"fmt"
	"os"

	"docsearch/internal/domain"
)

// Text extracts plain-text files (.txt, .md) as a single page.
type Text struct{}

func (Text) Extract(ctx context.Context, doc domain.Document) ([]domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return nil, fmt.Errorf("extract: reading %s: %w", doc.Path, err)
	}
	return []domain.Page{{Number: 1, Text: string(data)}}, nil
}
