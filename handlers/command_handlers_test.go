package handlers

import (
	"strings"
	"testing"
)

func TestSplitMessageShortTextIsOneChunk(t *testing.T) {
	chunks := splitMessage("hello", 1900)
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
}

func TestSplitMessageEmptyText(t *testing.T) {
	if chunks := splitMessage("", 1900); len(chunks) != 0 {
		t.Fatalf("empty text should produce no chunks, got %v", chunks)
	}
}

func TestSplitMessageRespectsSize(t *testing.T) {
	text := strings.Repeat("x", 4500)
	chunks := splitMessage(text, 1900)
	if len(chunks) != 3 {
		t.Fatalf("want 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 1900 || len(chunks[1]) != 1900 || len(chunks[2]) != 700 {
		t.Fatalf("chunk sizes wrong: %d %d %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if strings.Join(chunks, "") != text {
		t.Fatal("chunks do not reassemble to the original text")
	}
}

func TestSplitMessageIsRuneSafe(t *testing.T) {
	// Multi-byte emoji must never be cut mid-rune.
	text := strings.Repeat("😹", 10)
	chunks := splitMessage(text, 3)
	if len(chunks) != 4 {
		t.Fatalf("want 4 chunks, got %d", len(chunks))
	}
	for n, chunk := range chunks {
		if !strings.HasPrefix(chunk, "😹") {
			t.Fatalf("chunk %d starts mid-rune: %q", n, chunk)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Fatal("chunks do not reassemble to the original text")
	}
}
