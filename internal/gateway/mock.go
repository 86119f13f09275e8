package gateway

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/driftlab/kaiwa/pkg/utils"
)

// MockGateway is a deterministic gateway for tests. Embeddings are derived
// from a text hash so identical text always maps to the same unit vector, and
// completions echo the prompt's question line.
type MockGateway struct {
	dimensions int

	// FailEmbed and FailComplete force the next calls to return the given error.
	FailEmbed    error
	FailComplete error
}

// NewMockGateway returns a mock gateway producing vectors of the given dimension.
func NewMockGateway(dimensions int) *MockGateway {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &MockGateway{dimensions: dimensions}
}

// Embed returns deterministic hash-derived unit vectors.
func (m *MockGateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.FailEmbed != nil {
		return nil, m.FailEmbed
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.embedOne(text)
	}
	return vectors, nil
}

func (m *MockGateway) embedOne(text string) []float32 {
	h := hashString(text)
	vec := make([]float32, m.dimensions)
	for i := 0; i < m.dimensions; i++ {
		vec[i] = float32(math.Sin(float64(h*(uint64(i)+1)))*0.1 + 0.01)
	}
	utils.NormalizeL2(vec)
	return vec
}

// Complete returns a canned answer referencing the prompt's first line.
func (m *MockGateway) Complete(ctx context.Context, prompt string) (string, error) {
	if m.FailComplete != nil {
		return "", m.FailComplete
	}
	first, _, _ := strings.Cut(prompt, "\n")
	return fmt.Sprintf("mock answer for: %s", first), nil
}

// Dimensions returns the embedding vector dimension.
func (m *MockGateway) Dimensions() int {
	return m.dimensions
}

// hashString is a small FNV-1a over the text, stable across runs.
func hashString(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}
