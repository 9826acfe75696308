package chunk

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stardex-io/stardex/internal/domain"
)

func mustSplitter(t *testing.T, maxSize, overlap int) *Splitter {
	t.Helper()
	s, err := NewSplitter(maxSize, overlap)
	if err != nil {
		t.Fatalf("NewSplitter(%d, %d): %v", maxSize, overlap, err)
	}
	return s
}

func TestNewSplitter_RejectsInvalidSizing(t *testing.T) {
	cases := []struct {
		name    string
		maxSize int
		overlap int
	}{
		{"zero max size", 0, 0},
		{"negative max size", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals max size", 100, 100},
		{"overlap exceeds max size", 100, 150},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSplitter(tc.maxSize, tc.overlap)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, domain.ErrInvalidChunking) {
				t.Errorf("error %v is not ErrInvalidChunking", err)
			}
		})
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	s := mustSplitter(t, 300, 50)

	for _, text := range []string{"", "   ", "\n\n\t  \n"} {
		chunks := s.Split(text)
		if len(chunks) != 1 || chunks[0] != "" {
			t.Errorf("Split(%q) = %v, want single empty chunk", text, chunks)
		}
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s := mustSplitter(t, 300, 50)

	text := "A short narrative that fits in one chunk."
	chunks := s.Split(text)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1: %v", len(chunks), chunks)
	}
	if chunks[0] != text {
		t.Errorf("chunk modified: %q", chunks[0])
	}
}

func TestSplit_EveryChunkWithinMaxSize(t *testing.T) {
	s := mustSplitter(t, 50, 10)

	texts := []string{
		strings.Repeat("word ", 100),
		"First paragraph about systems.\n\nSecond paragraph about testing. It has two sentences.\n\nThird.",
		strings.Repeat("x", 500), // no separators at all, character fallback
		"Sentence one. Sentence two. Sentence three. Sentence four. Sentence five. Sentence six.",
	}

	for _, text := range texts {
		for i, c := range s.Split(text) {
			if n := utf8.RuneCountInString(c); n > 50 {
				t.Errorf("chunk %d has %d runes, exceeds max size: %q", i, n, c)
			}
		}
	}
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	s := mustSplitter(t, 60, 0)

	text := "First paragraph stays whole here.\n\nSecond paragraph stays whole too."
	chunks := s.Split(text)

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %v", len(chunks), chunks)
	}
	if !strings.HasPrefix(chunks[0], "First paragraph") {
		t.Errorf("chunk 0: %q", chunks[0])
	}
	if !strings.HasPrefix(chunks[1], "Second paragraph") {
		t.Errorf("chunk 1: %q", chunks[1])
	}
}

func TestSplit_AdjacentChunksOverlap(t *testing.T) {
	s := mustSplitter(t, 40, 15)

	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu"
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %v", chunks)
	}

	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1])
		lastWord := prevWords[len(prevWords)-1]
		if !strings.Contains(chunks[i], lastWord) {
			t.Errorf("chunk %d %q does not carry overlap from %q", i, chunks[i], chunks[i-1])
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s := mustSplitter(t, 50, 10)

	text := "One sentence here. Another sentence there.\nA new line follows. " +
		strings.Repeat("some more words ", 20)

	first := s.Split(text)
	second := s.Split(text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs:\nfirst:  %q\nsecond: %q", i, first[i], second[i])
		}
	}
}

func TestSplit_LongNarrativeYieldsAtLeastFourChunks(t *testing.T) {
	s := mustSplitter(t, 300, 50)

	// 1000 characters of sentence-separated prose.
	var b strings.Builder
	for b.Len() < 1000 {
		b.WriteString("The service handled a sustained spike in traffic without downtime. ")
	}
	text := b.String()[:1000]

	chunks := s.Split(text)
	if len(chunks) < 4 {
		t.Errorf("got %d chunks for a 1000-char narrative, want >= 4", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 300 {
			t.Errorf("chunk %d has %d runes", i, n)
		}
	}
}

func TestSplit_UnicodeCountsRunesNotBytes(t *testing.T) {
	s := mustSplitter(t, 10, 0)

	text := strings.Repeat("日本語 ", 10)
	for i, c := range s.Split(text) {
		if n := utf8.RuneCountInString(c); n > 10 {
			t.Errorf("chunk %d has %d runes: %q", i, n, c)
		}
	}
}
