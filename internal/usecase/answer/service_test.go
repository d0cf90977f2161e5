package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/headrag/internal/domain"
	"github.com/kailas-cloud/headrag/internal/domain/chunk"
	"github.com/kailas-cloud/headrag/internal/domain/index"
	"github.com/kailas-cloud/headrag/internal/domain/search/request"
	"github.com/kailas-cloud/headrag/internal/domain/search/result"
)

type mockCompleter struct {
	text       string
	err        error
	lastSystem string
	lastUser   string
}

func (m *mockCompleter) Complete(_ context.Context, system, user string) (domain.CompletionResult, error) {
	m.lastSystem = system
	m.lastUser = user
	return domain.CompletionResult{Text: m.text}, m.err
}

type mockSearcher struct {
	results []result.Result
	err     error
}

func (m *mockSearcher) Search(_ context.Context, _ *request.Request) ([]result.Result, error) {
	return m.results, m.err
}

func sample() []result.Result {
	c1 := chunk.New(0, "Revenue grew 12% in Q3.").WithHeader("Q3 revenue")
	c2 := chunk.New(20, "Costs were flat.").WithHeader("Operating costs")
	return []result.Result{
		result.New(index.NewEntry(c1, []float32{1}, []float32{1}), 0.9),
		result.New(index.NewEntry(c2, []float32{1}, []float32{1}), 0.4),
	}
}

func TestFormatPrompt(t *testing.T) {
	got := FormatPrompt("How did revenue change?", sample())

	want := "Context:\n" +
		"\n[1] Q3 revenue\nRevenue grew 12% in Q3.\n" +
		"\n[2] Operating costs\nCosts were flat.\n" +
		"\nQuestion: How did revenue change?"
	if got != want {
		t.Errorf("FormatPrompt() =\n%s\nwant\n%s", got, want)
	}
}

func TestAsk_Success(t *testing.T) {
	c := &mockCompleter{text: " It grew by 12%. \n"}
	s := New(&mockSearcher{results: sample()}, c, zap.NewNop())

	req, err := request.New("How did revenue change?", 2, 0, request.DefaultLimits())
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	ans, err := s.Ask(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Text != "It grew by 12%." {
		t.Errorf("Text = %q", ans.Text)
	}
	if len(ans.Sources) != 2 {
		t.Errorf("Sources = %d", len(ans.Sources))
	}
	if c.lastSystem != Instruction {
		t.Errorf("system instruction = %q", c.lastSystem)
	}
	if !strings.Contains(c.lastUser, "Q3 revenue") {
		t.Errorf("prompt must carry chunk headers: %q", c.lastUser)
	}
}

func TestAsk_SearchError(t *testing.T) {
	s := New(&mockSearcher{err: domain.ErrIndexNotReady}, &mockCompleter{}, zap.NewNop())

	req, _ := request.New("q", 1, 0, request.DefaultLimits())
	_, err := s.Ask(context.Background(), &req)
	if !errors.Is(err, domain.ErrIndexNotReady) {
		t.Fatalf("expected ErrIndexNotReady, got %v", err)
	}
}

func TestAnswer_CompleterError(t *testing.T) {
	s := New(&mockSearcher{}, &mockCompleter{err: domain.ErrCompletionProviderError}, zap.NewNop())

	_, err := s.Answer(context.Background(), "q", sample())
	if !errors.Is(err, domain.ErrCompletionProviderError) {
		t.Fatalf("expected ErrCompletionProviderError, got %v", err)
	}
}
