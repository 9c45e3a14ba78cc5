package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"docsearch/internal/domain"
)

// Auto dispatches extraction by file extension.
type Auto struct {
	pdf  PDF
	text Text
}

// NewAuto creates an extractor covering all supported document types.
func NewAuto() *Auto { return &Auto{} }

func (a *Auto) Extract(ctx context.Context, doc domain.Document) ([]domain.Page, error) {
	switch strings.ToLower(filepath.Ext(doc.Path)) {
	case ".pdf":
		return a.pdf.Extract(ctx, doc)
	case ".txt", ".md":
		return a.text.Extract(ctx, doc)
	default:
		return nil, fmt.Errorf("extract: unsupported document type %q", filepath.Ext(doc.Path))
	}
}

// Discover lists the supported documents under dataDir, sorted by file name
// so corpus order (and therefore chunk indices) is stable across runs. The
// document id is the file name without its extension.
func Discover(dataDir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("extract: reading data dir %s: %w", dataDir, err)
	}

	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".pdf", ".txt", ".md":
		default:
			continue
		}
		docs = append(docs, domain.Document{
			ID:   strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(dataDir, name),
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}
