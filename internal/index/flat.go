package index

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"docsearch/internal/domain"
	"docsearch/internal/mathutil"
)

// Sentinel errors raised by the index.
var (
	ErrEmptyIndex        = errors.New("index: no rows indexed")
	ErrInvalidTopK       = errors.New("index: top_k must be positive")
	ErrDimensionMismatch = errors.New("index: vector dimension mismatch")
	ErrIndexNotFound     = errors.New("index: persisted index missing or inconsistent")
)

// Flat is an exact inner-product vector index over L2-normalized rows.
// Rows and chunk metadata are parallel slices; row i holds the normalized
// embedding of chunk i. Build replaces all contents; Search never mutates,
// so concurrent queries are safe once a build has completed.
type Flat struct {
	mu       sync.RWMutex
	dim      int
	vectors  [][]float32
	chunks   []domain.Chunk
	zeroRows int
}

// NewFlat creates an empty index for vectors of the given dimension.
func NewFlat(dimension int) *Flat {
	return &Flat{dim: dimension}
}

// Build replaces the index contents with the given rows. Every embedding is
// normalized to unit length before storage; zero-norm embeddings are kept as
// zero rows (they can never win a search) and counted.
func (f *Flat) Build(vectors [][]float32, chunks []domain.Chunk) error {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors for %d chunks", ErrDimensionMismatch, len(vectors), len(chunks))
	}
	normalized := make([][]float32, len(vectors))
	zero := 0
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("%w: row %d has dimension %d, expected %d", ErrDimensionMismatch, i, len(v), f.dim)
		}
		normalized[i] = mathutil.Normalize(v)
		if mathutil.IsZero(normalized[i]) {
			zero++
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectors = normalized
	f.chunks = append([]domain.Chunk(nil), chunks...)
	f.zeroRows = zero
	return nil
}

// Search returns up to topK chunks ranked by cosine similarity to the query,
// descending. Ties break by ascending chunk index so results are stable
// across runs.
func (f *Flat) Search(query []float32, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.vectors) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, expected %d", ErrDimensionMismatch, len(query), f.dim)
	}

	q := mathutil.Normalize(query)
	scores := make([]float32, len(f.vectors))
	for i, row := range f.vectors {
		scores[i] = mathutil.Dot(q, row)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if scores[i] != scores[j] {
			return scores[i] > scores[j]
		}
		return f.chunks[i].Index < f.chunks[j].Index
	})

	if topK > len(order) {
		topK = len(order)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, i := range order[:topK] {
		results = append(results, domain.SearchResult{Chunk: f.chunks[i], Score: scores[i]})
	}
	return results, nil
}

// Size returns the current row count.
func (f *Flat) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

// Dimension returns the configured embedding dimension.
func (f *Flat) Dimension() int { return f.dim }

// ZeroRows returns how many stored rows had a zero-norm embedding.
func (f *Flat) ZeroRows() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.zeroRows
}
