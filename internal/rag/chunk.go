// Package rag implements retrieval-augmented answering over the scraped
// document corpus: chunking, an in-memory vector index, and grounded
// answer composition with a relevance gate.
package rag

import "strings"

// separators are tried in order when splitting oversized text, preferring
// paragraph breaks over sentence breaks over word breaks.
var separators = []string{"\n\n", "\n", ". ", " "}

// Chunker splits document text into overlapping chunks sized for embedding.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker producing chunks of at most size characters
// with the given overlap carried between consecutive chunks.
func NewChunker(size, overlap int) *Chunker {
	if overlap >= size {
		overlap = size / 4
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split breaks text into chunks. Short texts come back as a single chunk.
// Splits land on the strongest boundary (paragraph, line, sentence, word)
// available inside the window; consecutive chunks share the overlap tail.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + c.size
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := c.findCut(text, start, end)
		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - c.overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return chunks
}

// findCut picks the split position in text[start:end], preferring the last
// occurrence of the strongest separator. Falls back to a hard cut at end.
func (c *Chunker) findCut(text string, start, end int) int {
	window := text[start:end]
	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return start + idx + len(sep)
		}
	}
	return end
}
