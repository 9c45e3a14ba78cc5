package chunker

import (
	"reflect"
	"strings"
	"testing"

	"docsearch/internal/domain"
)

func TestNew_RejectsBadConfig(t *testing.T) {
	cases := []struct {
		name      string
		size      int
		overlap   int
		wantError bool
	}{
		{"valid", 500, 50, false},
		{"zero overlap", 100, 0, false},
		{"zero size", 0, 0, true},
		{"negative size", -1, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals size", 100, 100, true},
		{"overlap exceeds size", 100, 150, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.size, tc.overlap)
			if tc.wantError && err == nil {
				t.Fatalf("expected error for size=%d overlap=%d", tc.size, tc.overlap)
			}
			if !tc.wantError && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSplit_EmptyText(t *testing.T) {
	s, _ := New(100, 10)
	chunks, next := s.Split("   \n\t  ", "doc", 1, 7)
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
	if next != 7 {
		t.Errorf("starting index must be unchanged, got %d", next)
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s, _ := New(500, 50)
	text := "Sensor A operates at 1200C."
	chunks, next := s.Split(text, "sensors", 1, 0)
	if len(chunks) != 1 {
		t.Fatalf("expected exactly 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("chunk text = %q, want %q", chunks[0].Text, text)
	}
	if chunks[0].DocumentID != "sensors" || chunks[0].Page != 1 || chunks[0].Index != 0 {
		t.Errorf("bad metadata: %+v", chunks[0])
	}
	if next != 1 {
		t.Errorf("next index = %d, want 1", next)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s, _ := New(80, 20)
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)
	a, nextA := s.Split(text, "doc", 2, 5)
	b, nextB := s.Split(text, "doc", 2, 5)
	if !reflect.DeepEqual(a, b) || nextA != nextB {
		t.Fatal("two runs over identical input produced different chunks")
	}
}

func TestSplit_PrefersSentenceBoundaries(t *testing.T) {
	s, _ := New(60, 0)
	text := "First sentence here talking about things. Second sentence continues the thought. Third sentence wraps it all up nicely in the end."
	chunks, _ := s.Split(text, "doc", 1, 0)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		last := c.Text[len(c.Text)-1]
		if last != '.' && last != '!' && last != '?' {
			t.Errorf("chunk %d does not end on a sentence boundary: %q", i, c.Text)
		}
	}
}

func TestSplit_IndicesThreadAcrossCalls(t *testing.T) {
	s, _ := New(50, 10)
	pageOne := strings.Repeat("One sentence about pumps. ", 10)
	pageTwo := strings.Repeat("Another sentence about valves. ", 10)

	first, next := s.Split(pageOne, "doc", 1, 0)
	second, final := s.Split(pageTwo, "doc", 2, next)

	all := append(append([]int{}, indices(first)...), indices(second)...)
	for i, idx := range all {
		if idx != i {
			t.Fatalf("chunk indices not strictly sequential: %v", all)
		}
	}
	if final != len(all) {
		t.Errorf("final counter = %d, want %d", final, len(all))
	}
}

func TestSplit_ContentOrderPreserved(t *testing.T) {
	s, _ := New(70, 15)
	text := strings.Repeat("Alpha beta gamma delta epsilon zeta. ", 15)
	cleaned := Clean(text)
	chunks, _ := s.Split(text, "doc", 1, 0)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// Every chunk occurs in the cleaned text, at strictly increasing
	// positions; no chunk reorders or duplicates content.
	prev := -1
	offset := 0
	for i, c := range chunks {
		pos := strings.Index(cleaned[offset:], c.Text)
		if pos < 0 {
			t.Fatalf("chunk %d is not a substring of the cleaned text: %q", i, c.Text)
		}
		abs := offset + pos
		if abs <= prev {
			t.Fatalf("chunk %d starts at %d, before previous chunk at %d", i, abs, prev)
		}
		prev = abs
		offset = abs + 1
	}
	// The walk reaches the end of the text.
	tail := chunks[len(chunks)-1].Text
	if !strings.HasSuffix(cleaned, tail) {
		t.Errorf("last chunk does not cover the end of the text")
	}
}

func TestSplit_AlwaysTerminates(t *testing.T) {
	// Dense punctuation plus a small window exercises the backward snap; the
	// walk must still advance.
	s, _ := New(10, 8)
	text := strings.Repeat("A. B. C. D. E. ", 50)
	chunks, _ := s.Split(text, "doc", 1, 0)
	if len(chunks) == 0 {
		t.Fatal("expected chunks from dense punctuation input")
	}
}

func TestClean_DropsHeaderFooterLines(t *testing.T) {
	raw := "- 3 -\nReal content   with   spacing issues that survives cleanup.\n42\n"
	got := Clean(raw)
	want := "Real content with spacing issues that survives cleanup."
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestClean_PreservesParagraphBreaks(t *testing.T) {
	raw := "First paragraph of the document body.\n\n\nSecond paragraph of the document body."
	got := Clean(raw)
	if strings.Count(got, "\n") != 1 {
		t.Errorf("expected a single newline between paragraphs, got %q", got)
	}
}

func indices(chunks []domain.Chunk) []int {
	out := make([]int, len(chunks))
	for i, c := range chunks {
		out[i] = c.Index
	}
	return out
}
