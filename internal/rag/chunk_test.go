package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	chunker := NewChunker(100, 10)

	chunks := chunker.Split("a short document")

	require.Len(t, chunks, 1)
	assert.Equal(t, "a short document", chunks[0])
}

func TestSplitEmptyText(t *testing.T) {
	chunker := NewChunker(100, 10)

	assert.Nil(t, chunker.Split("   "))
}

func TestSplitRespectsSizeLimit(t *testing.T) {
	chunker := NewChunker(50, 10)
	text := strings.Repeat("word ", 100)

	chunks := chunker.Split(text)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 50)
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	first := strings.Repeat("a", 30)
	second := strings.Repeat("b", 30)
	chunker := NewChunker(50, 5)

	chunks := chunker.Split(first + "\n\n" + second)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, first, chunks[0])
}

func TestSplitCoversAllContent(t *testing.T) {
	chunker := NewChunker(40, 8)
	text := "The library opens at eight. Study rooms book fast. Bring your student card. Quiet floors are upstairs."

	chunks := chunker.Split(text)

	joined := strings.Join(chunks, " ")
	for _, sentence := range []string{"library opens", "Study rooms", "student card", "Quiet floors"} {
		assert.Contains(t, joined, sentence)
	}
}

func TestSplitHardCutWithoutSeparators(t *testing.T) {
	chunker := NewChunker(20, 4)
	text := strings.Repeat("x", 55)

	chunks := chunker.Split(text)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 20)
	}
}

func TestNewChunkerClampsOverlap(t *testing.T) {
	chunker := NewChunker(20, 40)

	// Oversized overlap must not stall progress.
	chunks := chunker.Split(strings.Repeat("y", 100))
	assert.NotEmpty(t, chunks)
}
