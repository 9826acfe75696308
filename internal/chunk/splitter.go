// Package chunk splits long text into overlapping segments bounded by size,
// preferring the largest semantic boundary that fits: paragraph break, line
// break, sentence boundary, word boundary, character boundary.
package chunk

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/stardex-io/stardex/internal/domain"
)

// defaultSeparators is the boundary preference order. The empty string is the
// character-level last resort and must stay last.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits text into chunks of at most maxSize runes, adjacent chunks
// sharing an overlap-sized suffix. Identical input always produces identical
// output, which keeps chunk ids stable across re-ingestion runs.
type Splitter struct {
	maxSize int
	overlap int
}

// NewSplitter creates a splitter. Overlap must be strictly less than maxSize:
// an overlap that large would make the merge loop lose ground on every step.
func NewSplitter(maxSize, overlap int) (*Splitter, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: max size must be positive, got %d", domain.ErrInvalidChunking, maxSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", domain.ErrInvalidChunking, overlap)
	}
	if overlap >= maxSize {
		return nil, fmt.Errorf(
			"%w: overlap %d must be strictly less than max size %d",
			domain.ErrInvalidChunking, overlap, maxSize,
		)
	}
	return &Splitter{maxSize: maxSize, overlap: overlap}, nil
}

// Split splits text into chunks. Empty or whitespace-only input yields a
// single empty chunk: the caller decides what "no content" means.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{""}
	}
	return s.split(text, defaultSeparators)
}

// split applies the coarsest separator present in text, recursing with the
// finer separators for any segment still over the limit.
func (s *Splitter) split(text string, separators []string) []string {
	sep, finer := pickSeparator(text, separators)
	segments := splitAfter(text, sep)

	var chunks []string
	var fitting []string

	for _, seg := range segments {
		if utf8.RuneCountInString(seg) <= s.maxSize {
			fitting = append(fitting, seg)
			continue
		}

		if len(fitting) > 0 {
			chunks = append(chunks, s.merge(fitting)...)
			fitting = nil
		}

		if len(finer) == 0 {
			// No finer boundary exists; should not happen while "" is last.
			chunks = append(chunks, seg)
			continue
		}
		chunks = append(chunks, s.split(seg, finer)...)
	}

	if len(fitting) > 0 {
		chunks = append(chunks, s.merge(fitting)...)
	}
	return chunks
}

// merge greedily packs adjacent segments into chunks of at most maxSize runes.
// After a chunk is emitted the window keeps an overlap-sized suffix of
// segments, so consecutive chunks share trailing context.
func (s *Splitter) merge(segments []string) []string {
	var chunks []string
	var window []string
	total := 0

	for _, seg := range segments {
		n := utf8.RuneCountInString(seg)

		if total+n > s.maxSize && len(window) > 0 {
			if c := strings.TrimSpace(strings.Join(window, "")); c != "" {
				chunks = append(chunks, c)
			}
			for len(window) > 0 && (total > s.overlap || total+n > s.maxSize) {
				total -= utf8.RuneCountInString(window[0])
				window = window[1:]
			}
		}

		window = append(window, seg)
		total += n
	}

	if c := strings.TrimSpace(strings.Join(window, "")); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}

// pickSeparator returns the first separator present in text, plus the finer
// separators after it. The empty separator matches everything.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return separators[len(separators)-1], nil
}

// splitAfter splits text keeping the separator attached to the preceding
// segment, so sentence punctuation survives merging. The empty separator
// splits into individual runes.
func splitAfter(text, sep string) []string {
	if sep == "" {
		runes := []rune(text)
		out := make([]string, len(runes))
		for i, r := range runes {
			out[i] = string(r)
		}
		return out
	}
	return strings.SplitAfter(text, sep)
}
