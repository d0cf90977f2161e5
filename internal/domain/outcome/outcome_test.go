package outcome

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/headrag/internal/domain"
)

func TestOk(t *testing.T) {
	o := Ok(42)
	if !o.IsOk() {
		t.Fatal("expected ok")
	}
	if o.Value() != 42 || o.Kind() != KindNone || o.Detail() != "" {
		t.Errorf("unexpected outcome: value=%d kind=%q detail=%q", o.Value(), o.Kind(), o.Detail())
	}
}

func TestErr_Classifies(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{fmt.Errorf("x: %w", domain.ErrHeaderGeneration), KindHeaderGeneration},
		{domain.NewChunkError(3, domain.ErrEmbeddingDimensionMismatch), KindDimensionMismatch},
		{fmt.Errorf("wrap: %w", domain.ErrUnparsableScore), KindUnparsableScore},
		{domain.ErrTokenBudgetExceeded, KindBudgetExceeded},
		{fmt.Errorf("wrap: %w: %w", domain.ErrRateLimited, domain.ErrEmbeddingProviderError), KindRateLimited},
		{context.Canceled, KindCanceled},
		{fmt.Errorf("deadline: %w", context.DeadlineExceeded), KindCanceled},
		{errors.New("boom"), KindInternal},
	}
	for _, tc := range tests {
		t.Run(string(tc.want), func(t *testing.T) {
			o := Err[string](tc.err)
			if o.IsOk() {
				t.Fatal("expected failure")
			}
			if o.Kind() != tc.want {
				t.Errorf("got kind %q, want %q", o.Kind(), tc.want)
			}
			if o.Detail() != tc.err.Error() {
				t.Errorf("got detail %q", o.Detail())
			}
			if _, err := o.Unwrap(); !errors.Is(err, tc.err) {
				t.Errorf("Unwrap lost the error: %v", err)
			}
		})
	}
}
