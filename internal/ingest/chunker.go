// Package ingest turns a workspace document tree into a persisted
// per-conversation vector index: walk, extract, chunk, embed, build.
package ingest

import (
	"fmt"

	"github.com/driftlab/kaiwa/internal/models"
)

// Chunker splits text into overlapping fixed-size windows. Sizes are in
// runes of the source text. Chunking is pure: identical input and parameters
// always yield the identical sequence.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker validates parameters: size must be positive and overlap must be
// non-negative and strictly less than size.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size %d must be positive: %w", size, models.ErrInvalidParameters)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, %d): %w", overlap, size, models.ErrInvalidParameters)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into windows of at most size runes where consecutive
// windows share exactly overlap runes. Stripping the first overlap runes off
// every chunk after the first and concatenating reproduces text exactly.
// Empty text yields no chunks; text shorter than size yields one.
func (c *Chunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= c.size {
		return []string{text}
	}
	step := c.size - c.overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
