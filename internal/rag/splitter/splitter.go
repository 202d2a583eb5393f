// Package splitter cuts extracted text into bounded, overlapping segments.
// Splitting prefers semantic boundaries: paragraph breaks first, then line
// breaks, then spaces, then raw characters as a last resort. The routine is
// pure and deterministic.
package splitter

import (
	"strings"
	"unicode/utf8"

	"docintell/internal/rag/interfaces"
)

// defaultSeparators in priority order. The empty separator means
// rune-by-rune splitting and guarantees any text can be subdivided.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveSplitter produces segments of at most ChunkSize runes, with
// consecutive segments sharing roughly ChunkOverlap trailing/leading runes
// so context survives across chunk boundaries.
type RecursiveSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	separators   []string
}

// NewRecursiveSplitter creates a splitter with the given bounds. Overlap
// larger than the chunk size is clamped below it.
func NewRecursiveSplitter(chunkSize, chunkOverlap int) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize - 1
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	return &RecursiveSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

// Split returns the ordered, trimmed, non-empty segments of text. Empty or
// all-whitespace input yields no segments; input shorter than the chunk
// size yields exactly one segment, the trimmed input.
func (s *RecursiveSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []string
	for _, chunk := range s.splitText(text, s.separators) {
		trimmed := strings.TrimSpace(chunk)
		if trimmed == "" {
			continue
		}
		chunks = append(chunks, trimmed)
	}
	return chunks
}

// splitText splits on the highest-priority separator present in the text,
// recursing with the remaining separators into any piece that is still too
// large on its own.
func (s *RecursiveSplitter) splitText(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	splits := splitOn(text, separator)

	var final []string
	var good []string
	for _, piece := range splits {
		if utf8.RuneCountInString(piece) < s.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.mergeSplits(good, separator)...)
			good = nil
		}
		if len(next) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.splitText(piece, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.mergeSplits(good, separator)...)
	}
	return final
}

// mergeSplits greedily joins pieces with the separator until adding the
// next one would exceed the chunk size, emits the joined chunk, then drops
// leading pieces until at most ChunkOverlap runes remain to seed the next
// chunk.
func (s *RecursiveSplitter) mergeSplits(splits []string, separator string) []string {
	sepLen := utf8.RuneCountInString(separator)

	var docs []string
	var current []string
	total := 0

	join := func() {
		doc := strings.TrimSpace(strings.Join(current, separator))
		if doc != "" {
			docs = append(docs, doc)
		}
	}

	for _, piece := range splits {
		pieceLen := utf8.RuneCountInString(piece)
		extra := 0
		if len(current) > 0 {
			extra = sepLen
		}
		if total+pieceLen+extra > s.ChunkSize && len(current) > 0 {
			join()
			// Slide the window: keep at most ChunkOverlap runes of
			// trailing content, and make room for the next piece.
			for total > s.ChunkOverlap || (total+pieceLen+extra > s.ChunkSize && total > 0) {
				dropped := utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					dropped += sepLen
				}
				total -= dropped
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, piece)
		total += pieceLen
	}
	if len(current) > 0 {
		join()
	}
	return docs
}

// splitOn behaves like strings.Split but treats the empty separator as
// rune-by-rune splitting. Empty pieces are kept so joining with the same
// separator reconstructs the input exactly.
func splitOn(text, separator string) []string {
	if separator == "" {
		runes := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			runes = append(runes, string(r))
		}
		return runes
	}
	return strings.Split(text, separator)
}

// compile-time check to ensure RecursiveSplitter implements the Splitter interface
var _ interfaces.Splitter = (*RecursiveSplitter)(nil)
