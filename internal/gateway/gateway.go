// Package gateway isolates the embedding and completion provider behind a
// single interface. No other package may talk to a concrete provider.
package gateway

import "context"

// Gateway turns text into vectors and prompts into completions.
type Gateway interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Complete returns the model's completion for prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// Dimensions returns the embedding vector dimension.
	Dimensions() int
}
