package ai

import (
	"strings"
	"testing"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("just a short paragraph", ChunkSize, ChunkOverlap)
	if len(chunks) != 1 {
		t.Fatalf("chunk count = %d, want 1", len(chunks))
	}
	if chunks[0] != "just a short paragraph" {
		t.Errorf("chunk = %q", chunks[0])
	}
}

func TestSplitTextEmpty(t *testing.T) {
	if chunks := SplitText("   \n ", ChunkSize, ChunkOverlap); chunks != nil {
		t.Errorf("chunks = %v, want nil", chunks)
	}
}

func TestSplitTextChunkBounds(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 400)
	chunks := SplitText(text, ChunkSize, ChunkOverlap)

	if len(chunks) < 2 {
		t.Fatalf("chunk count = %d, want several", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) == 0 {
			t.Errorf("chunk %d is empty", i)
		}
		if len(chunk) > ChunkSize {
			t.Errorf("chunk %d length = %d, exceeds %d", i, len(chunk), ChunkSize)
		}
	}
}

func TestSplitTextPrefersParagraphBreaks(t *testing.T) {
	para := strings.Repeat("word ", 100)
	text := strings.TrimSpace(strings.Repeat(para+"\n\n", 5))

	chunks := SplitText(text, 600, 0)
	for i, chunk := range chunks {
		if strings.HasPrefix(chunk, " ") || strings.HasSuffix(chunk, " ") {
			t.Errorf("chunk %d not trimmed: %q", i, chunk)
		}
		if strings.Contains(chunk, "wordword") {
			t.Errorf("chunk %d split mid-word: %q", i, chunk)
		}
	}
}

// Every part of the input must land in some chunk.
func TestSplitTextCoversInput(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteString("sentence number ")
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteString(". ")
	}
	text := strings.TrimSpace(b.String())

	chunks := SplitText(text, ChunkSize, ChunkOverlap)
	joined := strings.Join(chunks, " ")
	for _, word := range strings.Fields(text) {
		if !strings.Contains(joined, word) {
			t.Fatalf("word %q missing from output", word)
		}
	}
}
