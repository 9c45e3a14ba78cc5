package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"docsearch/internal/domain"
)

// DefaultExcerptLength caps how much chunk text the console output shows.
const DefaultExcerptLength = 500

// Result is the external result shape, for both console and JSON output.
type Result struct {
	DocumentID string  `json:"doc_id"`
	Page       int     `json:"page"`
	ChunkIndex int     `json:"chunk_id"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

// FromSearch converts search results to the external shape, rounding scores
// to four decimals.
func FromSearch(results []domain.SearchResult) []Result {
	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = Result{
			DocumentID: r.Chunk.DocumentID,
			Page:       r.Chunk.Page,
			ChunkIndex: r.Chunk.Index,
			Score:      math.Round(float64(r.Score)*1e4) / 1e4,
			Text:       r.Chunk.Text,
		}
	}
	return out
}

// Print writes results to w in a readable console layout.
func Print(w io.Writer, results []Result, excerptLength int) {
	if excerptLength <= 0 {
		excerptLength = DefaultExcerptLength
	}
	rule := strings.Repeat("=", 80)
	fmt.Fprintf(w, "%s\nSEARCH RESULTS\n%s\n", rule, rule)
	if len(results) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "\n[Result %d]\n", i+1)
		fmt.Fprintf(w, "Document: %s\n", r.DocumentID)
		fmt.Fprintf(w, "Page: %d\n", r.Page)
		fmt.Fprintf(w, "Score: %.4f\n", r.Score)
		fmt.Fprintf(w, "\n%s\n", excerpt(r.Text, excerptLength))
	}
}

// WriteJSON saves results to path as indented JSON.
func WriteJSON(path string, results []Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
