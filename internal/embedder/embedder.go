// Package embedder turns text into fixed-dimension vectors. The rest of the
// system never cares which backend produced a vector, only that every vector
// in one analysis run came from the same model.
package embedder

import (
	"context"
	"fmt"
	"sync"

	"ctm/internal/models"
)

// Embedder is the contract the analysis pipeline and the query router call.
type Embedder interface {
	// Embed returns the embedding vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Name identifies the backend and model, for logs and sidecars.
	Name() string
}

// New builds an embedder for the configured provider.
func New(provider, model, baseURL string) (Embedder, error) {
	switch provider {
	case "", "ollama":
		return NewOllama(baseURL, model)
	case "openai":
		return NewOpenAI(model)
	default:
		return nil, fmt.Errorf("unknown embeddings provider: %s", provider)
	}
}

// maxConcurrent bounds in-flight embedding calls during a batch run.
const maxConcurrent = 10

// EmbedStore attaches an embedding to every record that does not already
// carry one. A record that fails to embed keeps a nil embedding and is
// counted, never fatal. Records already embedded are left untouched.
func EmbedStore(ctx context.Context, e Embedder, cs *models.CommitStore) (embedded, failed int) {
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := range cs.Records {
		r := &cs.Records[i]
		if r.Embedding != nil {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(r *models.CommitRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			vec, err := e.Embed(ctx, r.EmbeddingText())
			mu.Lock()
			defer mu.Unlock()
			if err != nil || len(vec) == 0 {
				failed++
				return
			}
			r.Embedding = vec
			embedded++
		}(r)
	}
	wg.Wait()
	return embedded, failed
}
