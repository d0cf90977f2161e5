package indexer

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/headrag/internal/domain"
	"github.com/kailas-cloud/headrag/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockHeaders struct {
	failOn string
	err    error
	calls  atomic.Int32
}

func (m *mockHeaders) Synthesize(_ context.Context, text string) (string, error) {
	m.calls.Add(1)
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return "", m.err
	}
	return "title:" + text[:1], nil
}

// mockEmbedder returns a vector derived from the first rune of the text.
// dimsFor overrides the dimensionality for texts with the given prefix.
type mockEmbedder struct {
	mu      sync.Mutex
	calls   []string
	dims    int
	dimsFor map[string]int
	err     error
	block   bool
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return domain.EmbeddingResult{}, ctx.Err()
	}
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}

	dims := m.dims
	for prefix, d := range m.dimsFor {
		if strings.HasPrefix(text, prefix) {
			dims = d
		}
	}
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = float32(text[0]) + float32(i)
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: 1}, nil
}

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func newTestService(t *testing.T, h HeaderSynthesizer, e Embedder, concurrency int) *Service {
	t.Helper()
	s, err := New(Config{WindowSize: 10, Overlap: 4, Concurrency: concurrency}, h, e, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// --- Tests ---

func TestNew_InvalidChunking(t *testing.T) {
	_, err := New(Config{WindowSize: 4, Overlap: 4}, &mockHeaders{}, &mockEmbedder{dims: 2}, zap.NewNop())
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestBuild_AlphabetPreservesOrder(t *testing.T) {
	emb := &mockEmbedder{dims: 3}
	s := newTestService(t, &mockHeaders{}, emb, 3)

	idx, err := s.Build(context.Background(), alphabet)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Len() != 5 {
		t.Fatalf("expected 5 entries, got %d", idx.Len())
	}
	if idx.Dimensions() != 3 {
		t.Errorf("dimensions = %d, expected 3", idx.Dimensions())
	}

	wantStarts := []int{0, 6, 12, 18, 24}
	for i, e := range idx.Entries() {
		c := e.Chunk()
		if c.StartOffset() != wantStarts[i] {
			t.Errorf("entry %d: start = %d, want %d", i, c.StartOffset(), wantStarts[i])
		}
		if c.Header() != "title:"+c.Text()[:1] {
			t.Errorf("entry %d: header = %q", i, c.Header())
		}
		if e.TextEmbedding()[0] != float32(c.Text()[0]) {
			t.Errorf("entry %d: text embedding does not belong to its chunk", i)
		}
		if e.HeaderEmbedding()[0] != float32('t') {
			t.Errorf("entry %d: header embedding does not belong to its header", i)
		}
	}

	if len(emb.calls) != 10 {
		t.Errorf("expected 2 embeddings per chunk (10), got %d", len(emb.calls))
	}
	if s.Current() != idx {
		t.Error("built index must be published")
	}
}

func TestBuild_EmptyDocument(t *testing.T) {
	s := newTestService(t, &mockHeaders{}, &mockEmbedder{dims: 2}, 2)

	idx, err := s.Build(context.Background(), "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("expected empty index, got %d entries", idx.Len())
	}
}

func TestBuild_HeaderFailureAbortsBuild(t *testing.T) {
	headers := &mockHeaders{failOn: "MNOP", err: domain.ErrHeaderGeneration}
	s := newTestService(t, headers, &mockEmbedder{dims: 2}, 1)

	idx, err := s.Build(context.Background(), alphabet)
	if idx != nil {
		t.Fatal("expected no index on failure")
	}
	if !errors.Is(err, domain.ErrHeaderGeneration) {
		t.Fatalf("expected ErrHeaderGeneration, got %v", err)
	}

	var ce *domain.ChunkError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *domain.ChunkError, got %v", err)
	}
	if ce.Offset != 6 {
		t.Errorf("offset = %d, expected 6 (first chunk containing MNOP)", ce.Offset)
	}
	if s.Current() != nil {
		t.Error("failed build must not publish an index")
	}
}

func TestBuild_DimensionMismatchAcrossChunks(t *testing.T) {
	emb := &mockEmbedder{dims: 4, dimsFor: map[string]int{"S": 3}}
	s := newTestService(t, &mockHeaders{}, emb, 2)

	_, err := s.Build(context.Background(), alphabet)
	if !errors.Is(err, domain.ErrEmbeddingDimensionMismatch) {
		t.Fatalf("expected ErrEmbeddingDimensionMismatch, got %v", err)
	}
}

func TestBuild_DimensionMismatchWithinChunk(t *testing.T) {
	emb := &mockEmbedder{dims: 4, dimsFor: map[string]int{"title:": 2}}
	s := newTestService(t, &mockHeaders{}, emb, 2)

	_, err := s.Build(context.Background(), alphabet)
	if !errors.Is(err, domain.ErrEmbeddingDimensionMismatch) {
		t.Fatalf("expected ErrEmbeddingDimensionMismatch, got %v", err)
	}
}

func TestBuild_EmbeddingProviderError(t *testing.T) {
	emb := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	s := newTestService(t, &mockHeaders{}, emb, 4)

	_, err := s.Build(context.Background(), alphabet)
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if !strings.Contains(err.Error(), "chunks failed") {
		t.Errorf("expected a failure summary, got %q", err.Error())
	}
}

func TestBuild_CancelDiscardsPartialWork(t *testing.T) {
	emb := &mockEmbedder{dims: 2, block: true}
	s := newTestService(t, &mockHeaders{}, emb, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	idx, err := s.Build(ctx, alphabet)
	if idx != nil {
		t.Fatal("canceled build must not return an index")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if s.Current() != nil {
		t.Error("canceled build must not publish an index")
	}
}

func TestBuild_RebuildReplacesIndex(t *testing.T) {
	s := newTestService(t, &mockHeaders{}, &mockEmbedder{dims: 2}, 2)

	first, err := s.Build(context.Background(), alphabet)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := s.Build(context.Background(), "ABC")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.Current() != second || first.Len() != 5 || second.Len() != 1 {
		t.Error("second build must replace the published index without mutating the first")
	}
}
