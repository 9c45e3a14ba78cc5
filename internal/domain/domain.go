package domain

import "context"

// Document identifies a single source file to be indexed.
type Document struct {
	ID   string
	Path string
}

// Page is one page of raw text extracted from a document.
// Page numbers are 1-based.
type Page struct {
	Number int
	Text   string
}

// Chunk is a contiguous, trimmed slice of a document page used as the unit
// of retrieval. Index is the chunk's position in the full chunk sequence
// produced for the whole corpus, and doubles as its row in the vector index.
type Chunk struct {
	DocumentID string
	Page       int
	Index      int
	Text       string
}

// SearchResult is a matching chunk with its cosine similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float32
}

// Extractor yields per-page raw text for a document. A failure applies to
// the whole document.
type Extractor interface {
	Extract(ctx context.Context, doc Document) ([]Page, error)
}
