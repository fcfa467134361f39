package ai

import "strings"

const (
	ChunkSize    = 1000
	ChunkOverlap = 200
)

// SplitText cuts text into chunks of roughly chunkSize characters with
// chunkOverlap characters of carry-over between neighbours. Splits prefer
// paragraph, then line, then word boundaries.
func SplitText(text string, chunkSize, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end >= len(text) {
			chunks = append(chunks, strings.TrimSpace(text[start:]))
			break
		}

		cut := boundaryBefore(text, start, end)
		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// boundaryBefore finds the best split position at or before end, searching
// for a paragraph break, then a newline, then a space.
func boundaryBefore(text string, start, end int) int {
	window := text[start:end]
	for _, sep := range []string{"\n\n", "\n", " "} {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return start + idx + len(sep)
		}
	}
	return end
}
