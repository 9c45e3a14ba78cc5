package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"docsearch/internal/domain"
)

// ErrInvalidConfig is returned for a non-positive chunk size or an overlap
// that is negative or not smaller than the chunk size.
var ErrInvalidConfig = errors.New("chunker: invalid chunk size or overlap")

const (
	// boundaryTolerance is how far (in runes) around a raw window edge the
	// splitter searches for a sentence-ending cut point.
	boundaryTolerance = 100

	// minLineLength drops short lines during cleanup; they are almost always
	// page numbers, headers or footers.
	minLineLength = 10
)

// Splitter turns cleaned page text into overlapping chunks that
// preferentially end on sentence boundaries.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a Splitter. chunkSize is the target chunk length in runes,
// overlap the number of runes shared between consecutive chunks.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk_size=%d overlap=%d", ErrInvalidConfig, chunkSize, overlap)
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// Clean normalizes raw extracted text: horizontal whitespace runs collapse to
// a single space, short letter-free lines are dropped, and paragraph breaks
// are preserved as single newlines.
func Clean(text string) string {
	var b strings.Builder
	pendingBreak := false
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			pendingBreak = b.Len() > 0
			continue
		}
		normalized := strings.Join(fields, " ")
		if len([]rune(normalized)) <= minLineLength && !containsLetter(normalized) {
			continue
		}
		if pendingBreak {
			b.WriteByte('\n')
			pendingBreak = false
		} else if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(normalized)
	}
	return b.String()
}

// Split chunks one page of text. Chunk indices are assigned starting at
// startIndex and the next free index is returned, so a caller can thread a
// single counter across pages and documents. Split is deterministic for a
// fixed input and configuration.
func (s *Splitter) Split(text, documentID string, page, startIndex int) ([]domain.Chunk, int) {
	runes := []rune(Clean(text))
	if len(runes) == 0 {
		return nil, startIndex
	}

	next := startIndex
	var chunks []domain.Chunk
	emit := func(piece string) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			return
		}
		chunks = append(chunks, domain.Chunk{
			DocumentID: documentID,
			Page:       page,
			Index:      next,
			Text:       piece,
		})
		next++
	}

	if len(runes) <= s.chunkSize {
		emit(string(runes))
		return chunks, next
	}

	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			emit(string(runes[start:]))
			break
		}
		if cut := sentenceCut(runes, end); cut > start {
			end = cut
		}
		emit(string(runes[start:end]))
		if end >= len(runes) {
			break
		}
		// Advance by at least one rune so the walk always terminates, even
		// when the boundary search pulled the cut point backwards.
		advanced := end - s.overlap
		if advanced <= start {
			advanced = start + 1
		}
		start = advanced
		if start >= len(runes)-s.overlap {
			break
		}
	}
	return chunks, next
}

// sentenceCut returns the position just after the sentence-ending punctuation
// closest to target within the boundary tolerance, or target when no sentence
// ends nearby.
func sentenceCut(runes []rune, target int) int {
	lo := target - boundaryTolerance
	if lo < 0 {
		lo = 0
	}
	hi := target + boundaryTolerance
	if hi > len(runes) {
		hi = len(runes)
	}

	best := -1
	for i := lo; i < hi; i++ {
		if !isSentenceEnd(runes, i) {
			continue
		}
		cut := i + 1
		if best == -1 || abs(cut-target) < abs(best-target) {
			best = cut
		}
	}
	if best == -1 {
		return target
	}
	return best
}

func isSentenceEnd(runes []rune, i int) bool {
	switch runes[i] {
	case '.', '!', '?':
	default:
		return false
	}
	return i+1 == len(runes) || unicode.IsSpace(runes[i+1])
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
