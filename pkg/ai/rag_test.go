package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeEmbedder struct {
	embedCalls  int
	completeErr error
	prompt      string
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string, dimensions int) ([][]float32, error) {
	f.embedCalls++
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = make([]float32, dimensions)
	}
	return vecs, nil
}

func (f *fakeEmbedder) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return "the answer", nil
}

type fakeVectorStore struct {
	resetBeforeUpsert bool
	reset             bool
	upserted          []string
	searchLimit       uint64
}

func (f *fakeVectorStore) Reset(ctx context.Context, collection string) error {
	f.reset = true
	return nil
}

func (f *fakeVectorStore) Upsert(ctx context.Context, collection string, vectors [][]float32, chunks []string) error {
	f.resetBeforeUpsert = f.reset
	f.upserted = chunks
	return nil
}

func (f *fakeVectorStore) Search(ctx context.Context, collection string, vec []float32, limit uint64) ([]string, error) {
	f.searchLimit = limit
	return []string{"relevant chunk one", "relevant chunk two"}, nil
}

func TestOrchestratorAnswer(t *testing.T) {
	emb := &fakeEmbedder{}
	store := &fakeVectorStore{}
	o := &Orchestrator{AI: emb, Vectors: store}

	answer, err := o.Answer(context.Background(), "file-doc", "some resource text", "what is this?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer != "the answer" {
		t.Errorf("answer = %q", answer)
	}

	if !store.resetBeforeUpsert {
		t.Error("collection was not reset before upsert")
	}
	if len(store.upserted) == 0 {
		t.Error("no chunks upserted")
	}
	if store.searchLimit != searchTopK {
		t.Errorf("search limit = %d, want %d", store.searchLimit, searchTopK)
	}
	// Resource text once, question once.
	if emb.embedCalls != 2 {
		t.Errorf("embed calls = %d, want 2", emb.embedCalls)
	}

	if !strings.Contains(emb.prompt, "relevant chunk one") {
		t.Errorf("prompt missing retrieved context: %q", emb.prompt)
	}
	if !strings.Contains(emb.prompt, "what is this?") {
		t.Errorf("prompt missing question: %q", emb.prompt)
	}
}

func TestOrchestratorAnswerEmptyResource(t *testing.T) {
	o := &Orchestrator{AI: &fakeEmbedder{}, Vectors: &fakeVectorStore{}}

	if _, err := o.Answer(context.Background(), "file-doc", "   ", "question"); err == nil {
		t.Error("expected error for resource with no text")
	}
}

func TestOrchestratorAnswerCompletionFailure(t *testing.T) {
	emb := &fakeEmbedder{completeErr: errors.New("upstream down")}
	o := &Orchestrator{AI: emb, Vectors: &fakeVectorStore{}}

	if _, err := o.Answer(context.Background(), "file-doc", "text", "question"); err == nil {
		t.Error("expected completion failure to surface")
	}
}
