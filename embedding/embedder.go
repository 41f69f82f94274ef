// Package embedding defines the interface for text embedding providers, which
// turn a text corpus into a point set for the diffusion map.
package embedding

import (
	"context"
	"fmt"
)

// Embedder is the interface that text embedding providers must implement.
type Embedder interface {
	// Embed converts the provided text into a vector embedding.
	// If the input text is empty, Embed should return nil without error.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ProgressFunc is called after each text is embedded with the number done so
// far and the total.
type ProgressFunc func(done, total int, text string)

// EmbedAll embeds texts in order and stops at the first failure. Empty texts
// are rejected, since every row of the resulting point set needs a vector.
func EmbedAll(ctx context.Context, embedder Embedder, texts []string, progress ProgressFunc) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vector, err := embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed %q: %w", text, err)
		}
		if len(vector) == 0 {
			return nil, fmt.Errorf("embed %q: empty vector", text)
		}
		vectors = append(vectors, vector)

		if progress != nil {
			progress(i+1, len(texts), text)
		}
	}
	return vectors, nil
}
