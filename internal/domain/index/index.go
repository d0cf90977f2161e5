package index

import (
	"fmt"

	"github.com/kailas-cloud/headrag/internal/domain"
	"github.com/kailas-cloud/headrag/internal/domain/chunk"
)

// Entry pairs a chunk with the embeddings of its body and of its header.
type Entry struct {
	chunk           chunk.Chunk
	textEmbedding   []float32
	headerEmbedding []float32
}

// NewEntry creates an index entry.
func NewEntry(c chunk.Chunk, textEmbedding, headerEmbedding []float32) Entry {
	return Entry{chunk: c, textEmbedding: textEmbedding, headerEmbedding: headerEmbedding}
}

// Chunk returns the indexed chunk.
func (e Entry) Chunk() chunk.Chunk { return e.chunk }

// TextEmbedding returns the chunk body vector.
func (e Entry) TextEmbedding() []float32 { return e.textEmbedding }

// HeaderEmbedding returns the chunk header vector.
func (e Entry) HeaderEmbedding() []float32 { return e.headerEmbedding }

// Index is the immutable in-memory corpus of one document.
type Index struct {
	entries    []Entry
	dimensions int
}

// New assembles an index, enforcing that every vector shares one dimensionality
// and that chunk start offsets are strictly increasing.
func New(entries []Entry) (*Index, error) {
	dims := 0
	for i, e := range entries {
		if i > 0 && e.chunk.StartOffset() <= entries[i-1].chunk.StartOffset() {
			return nil, fmt.Errorf("entry %d out of order: %w",
				i, domain.NewChunkError(e.chunk.StartOffset(), domain.ErrInvalidConfiguration))
		}
		if i == 0 {
			dims = len(e.textEmbedding)
		}
		if len(e.textEmbedding) != dims || len(e.headerEmbedding) != dims {
			return nil, domain.NewChunkError(e.chunk.StartOffset(), fmt.Errorf(
				"text=%d header=%d, want %d: %w",
				len(e.textEmbedding), len(e.headerEmbedding), dims,
				domain.ErrEmbeddingDimensionMismatch,
			))
		}
	}

	owned := make([]Entry, len(entries))
	copy(owned, entries)
	return &Index{entries: owned, dimensions: dims}, nil
}

// Entries returns a copy of the entries in chunk order.
func (x *Index) Entries() []Entry {
	out := make([]Entry, len(x.entries))
	copy(out, x.entries)
	return out
}

// Len returns the number of entries.
func (x *Index) Len() int { return len(x.entries) }

// Dimensions returns the shared vector dimensionality, 0 for an empty index.
func (x *Index) Dimensions() int { return x.dimensions }
