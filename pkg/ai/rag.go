package ai

import (
	"context"
	"fmt"
	"strings"

	"chatstack_backend/pkg/vector"
)

const searchTopK = 4

// Embedder and VectorStore are the two collaborators the orchestrator
// composes; tests substitute fakes for both.
type Embedder interface {
	Embed(ctx context.Context, texts []string, dimensions int) ([][]float32, error)
	Complete(ctx context.Context, prompt string) (string, error)
}

type VectorStore interface {
	Reset(ctx context.Context, collection string) error
	Upsert(ctx context.Context, collection string, vectors [][]float32, chunks []string) error
	Search(ctx context.Context, collection string, vec []float32, limit uint64) ([]string, error)
}

// Orchestrator runs the chunk-embed-store-retrieve-answer pipeline over the
// caller's active resource text. Credit authorization happens before any of
// this; nothing here touches billing state.
type Orchestrator struct {
	AI      Embedder
	Vectors VectorStore
}

func (o *Orchestrator) Answer(ctx context.Context, collection, resourceText, question string) (string, error) {
	chunks := SplitText(resourceText, ChunkSize, ChunkOverlap)
	if len(chunks) == 0 {
		return "", fmt.Errorf("resource has no extractable text")
	}

	embeddings, err := o.AI.Embed(ctx, chunks, vector.EmbeddingDim)
	if err != nil {
		return "", fmt.Errorf("embedding failed: %w", err)
	}

	if err := o.Vectors.Reset(ctx, collection); err != nil {
		return "", fmt.Errorf("vector store reset failed: %w", err)
	}
	if err := o.Vectors.Upsert(ctx, collection, embeddings, chunks); err != nil {
		return "", fmt.Errorf("vector store upsert failed: %w", err)
	}

	queryVecs, err := o.AI.Embed(ctx, []string{question}, vector.EmbeddingDim)
	if err != nil {
		return "", fmt.Errorf("query embedding failed: %w", err)
	}

	matches, err := o.Vectors.Search(ctx, collection, queryVecs[0], searchTopK)
	if err != nil {
		return "", fmt.Errorf("vector search failed: %w", err)
	}

	prompt := fmt.Sprintf(
		"You are a helpful assistant. Use the following context to answer the question:\n\n%s\n\nQuestion: %s\n\nAnswer concisely.",
		strings.Join(matches, "\n"), question,
	)

	answer, err := o.AI.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return answer, nil
}
