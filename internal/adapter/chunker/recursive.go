package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"leximini/internal/domain"
)

// RecursiveChunker splits document text into overlapping fixed-size passages.
// Chunk boundaries prefer paragraph breaks, then line breaks, then spaces,
// falling back to a hard cut. Sizes are in runes so multi-byte text does not
// split mid-character.
type RecursiveChunker struct {
	size    int
	overlap int
}

func NewRecursiveChunker(size, overlap int) (*RecursiveChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d", overlap)
	}
	return &RecursiveChunker{size: size, overlap: overlap}, nil
}

// Chunk produces an ordered sequence of passages covering the full document
// text. Consecutive passages overlap by up to the configured overlap; the
// final passage always reaches the end of the text. Deterministic for a
// given document and parameters.
func (c *RecursiveChunker) Chunk(doc domain.Document) ([]domain.Passage, error) {
	runes := []rune(doc.Content)
	if len(runes) == 0 {
		return nil, nil
	}

	var passages []domain.Passage
	start := 0
	seq := 0

	for {
		end := start + c.size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = c.snapToBoundary(runes, start, end)
		}

		passages = append(passages, domain.Passage{
			ID:     generatePassageID(doc.ID, seq, start),
			DocID:  doc.ID,
			Source: doc.Source,
			Seq:    seq,
			Offset: start,
			Text:   string(runes[start:end]),
		})

		if end == len(runes) {
			break
		}

		next := end - c.overlap
		if next <= start {
			// Guarantee forward progress for degenerate size/overlap pairs.
			next = start + 1
		}
		start = next
		seq++
	}

	return passages, nil
}

// separators in preference order, mirroring recursive character splitting.
var separators = []string{"\n\n", "\n", " "}

// snapToBoundary moves the cut point back to the most natural break inside
// the window. A break is only taken in the second half of the window so
// snapping never produces tiny passages.
func (c *RecursiveChunker) snapToBoundary(runes []rune, start, end int) int {
	window := string(runes[start:end])
	floor := c.size / 2

	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		// idx is a byte offset into the window; convert to runes.
		breakAt := len([]rune(window[:idx])) + len([]rune(sep))
		if breakAt > floor && start+breakAt < end {
			return start + breakAt
		}
	}

	return end
}

func generatePassageID(docID string, seq, offset int) string {
	data := fmt.Sprintf("%s:%d:%d", docID, seq, offset)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
