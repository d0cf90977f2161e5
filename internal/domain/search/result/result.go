package result

import (
	"github.com/kailas-cloud/headrag/internal/domain/chunk"
	"github.com/kailas-cloud/headrag/internal/domain/index"
)

// Result is an index entry scored against one query.
type Result struct {
	entry index.Entry
	score float64
}

// New creates a scored entry.
func New(entry index.Entry, score float64) Result {
	return Result{entry: entry, score: score}
}

// Entry returns the scored index entry.
func (r *Result) Entry() index.Entry { return r.entry }

// Chunk returns the chunk behind the entry.
func (r *Result) Chunk() chunk.Chunk { return r.entry.Chunk() }

// Score returns the fused relevance score.
func (r *Result) Score() float64 { return r.score }
