package summarizer

import (
	"strings"
	"testing"
)

func TestSummarize_LimitsSentenceCount(t *testing.T) {
	s := NewFrequency(2)
	text := "Pumps move fluid. Pumps are loud. Valves stop fluid. The sky is blue today. Fluid systems use pumps and valves."
	got := s.Summarize(text)
	if n := strings.Count(got, "."); n > 2 {
		t.Errorf("summary has %d sentences, want at most 2: %q", n, got)
	}
}

func TestSummarize_KeepsOriginalOrder(t *testing.T) {
	s := NewFrequency(3)
	text := "Alpha systems fail rarely. Unrelated filler sentence here. Alpha systems restart quickly. More filler words again. Alpha systems log everything."
	got := s.Summarize(text)
	first := strings.Index(got, "fail")
	last := strings.Index(got, "log")
	if first == -1 || last == -1 || first > last {
		t.Errorf("selected sentences out of original order: %q", got)
	}
}

func TestSummarize_NoSentencePunctuation(t *testing.T) {
	s := NewFrequency(3)
	got := s.Summarize("  just a fragment without punctuation  ")
	if got != "just a fragment without punctuation" {
		t.Errorf("Summarize = %q", got)
	}
}
