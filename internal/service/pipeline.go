package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"docsearch/internal/chunker"
	"docsearch/internal/domain"
	"docsearch/internal/embedding"
	"docsearch/internal/index"
	"docsearch/internal/summarizer"
)

var (
	// ErrNoDocuments is returned when a build is asked to index nothing, or
	// when every document failed extraction.
	ErrNoDocuments = errors.New("service: no documents to index")

	// ErrModelMismatch is returned when a persisted index was built with a
	// different embedding model than the active one; querying it would
	// silently produce garbage scores.
	ErrModelMismatch = errors.New("service: index built with a different embedding model")
)

// ExtractionError records a single document that failed extraction during a
// build. It is collected, not fatal.
type ExtractionError struct {
	DocumentID string
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.DocumentID, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// BuildReport describes the outcome of a build, including per-document
// extraction failures that were skipped.
type BuildReport struct {
	Documents int
	Chunks    int
	Failures  []*ExtractionError
	Summary   string
}

// Pipeline composes the extractor and embedder collaborators with the
// chunker and the vector index into build and query operations. Build is the
// sole mutator and must complete before queries start; queries are read-only
// and safe to run concurrently afterwards.
type Pipeline struct {
	extractor  domain.Extractor
	embedder   embedding.Embedder
	splitter   *chunker.Splitter
	summarizer *summarizer.Frequency
	index      *index.Flat
	summary    string
	maxTopK    int
	logger     *log.Logger
}

// Options tunes pipeline behavior beyond its collaborators.
type Options struct {
	MaxTopK          int // upper bound applied to query top-k, default 20
	SummarySentences int // sentences in the post-build corpus summary
	Logger           *log.Logger
}

// New creates a Pipeline around the given collaborators. The vector index
// dimension is fixed by the embedder.
func New(extractor domain.Extractor, embedder embedding.Embedder, splitter *chunker.Splitter, opts Options) *Pipeline {
	if opts.MaxTopK <= 0 {
		opts.MaxTopK = 20
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Pipeline{
		extractor:  extractor,
		embedder:   embedder,
		splitter:   splitter,
		summarizer: summarizer.NewFrequency(opts.SummarySentences),
		index:      index.NewFlat(embedder.Dimension()),
		maxTopK:    opts.MaxTopK,
		logger:     opts.Logger,
	}
}

// Build extracts, chunks, embeds and indexes the given documents, replacing
// any prior index contents. Documents that fail extraction are skipped and
// reported in the build report for the caller to surface; the build only
// fails when nothing at all could be indexed.
func (p *Pipeline) Build(ctx context.Context, docs []domain.Document) (*BuildReport, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	var (
		chunks   []domain.Chunk
		failures []*ExtractionError
		corpus   strings.Builder
		indexed  int
	)
	next := 0
	for _, doc := range docs {
		pages, err := p.extractor.Extract(ctx, doc)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			failures = append(failures, &ExtractionError{DocumentID: doc.ID, Err: err})
			continue
		}
		indexed++
		for _, page := range pages {
			var out []domain.Chunk
			out, next = p.splitter.Split(page.Text, doc.ID, page.Number, next)
			chunks = append(chunks, out...)
			for _, c := range out {
				corpus.WriteString(c.Text)
				corpus.WriteByte(' ')
			}
		}
	}

	if indexed == 0 || len(chunks) == 0 {
		joined := make([]error, 0, len(failures)+1)
		joined = append(joined, ErrNoDocuments)
		for _, f := range failures {
			joined = append(joined, f)
		}
		return nil, errors.Join(joined...)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	p.logger.Info("embedding corpus", "chunks", len(chunks), "model", p.embedder.Model())
	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("service: embedding corpus: %w", err)
	}

	if err := p.index.Build(vectors, chunks); err != nil {
		return nil, err
	}
	if zero := p.index.ZeroRows(); zero > 0 {
		p.logger.Warn("chunks with zero-norm embeddings never match a query", "count", zero)
	}

	p.summary = p.summarizer.Summarize(corpus.String())

	return &BuildReport{
		Documents: indexed,
		Chunks:    len(chunks),
		Failures:  failures,
		Summary:   p.summary,
	}, nil
}

// Query embeds the text and returns the topK most similar chunks. topK is
// clamped to the configured maximum; a non-positive topK is rejected.
func (p *Pipeline) Query(ctx context.Context, text string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: got %d", index.ErrInvalidTopK, topK)
	}
	if topK > p.maxTopK {
		topK = p.maxTopK
	}

	vectors, err := p.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("service: embedding query: %w", err)
	}
	return p.index.Search(vectors[0], topK)
}

// Size returns the number of indexed chunks.
func (p *Pipeline) Size() int { return p.index.Size() }

// Summary returns the corpus summary produced by the last Build, or restored
// by Load. Empty until one of the two has run.
func (p *Pipeline) Summary() string { return p.summary }
