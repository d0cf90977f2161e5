package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/headrag/internal/domain"
)

const eps = 1e-9

func TestCosine_Basic(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 2}, []float32{-1, -2}, -1},
		{"diagonal", []float32{1, 1}, []float32{1, 0}, 1 / math.Sqrt2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Cosine(tc.a, tc.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-6 {
				t.Errorf("got %f, want %f", got, tc.want)
			}
		})
	}
}

func TestCosine_ScaleInvariant(t *testing.T) {
	a := []float32{0.3, -1.2, 2.5, 0.7}
	b := []float32{1.1, 0.4, -0.2, 3.3}

	base, err := Cosine(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, k := range []float32{0.001, 0.5, 3, 1000} {
		scaled := make([]float32, len(a))
		for i, x := range a {
			scaled[i] = x * k
		}
		got, err := Cosine(scaled, b)
		if err != nil {
			t.Fatalf("k=%v: %v", k, err)
		}
		if math.Abs(got-base) > 1e-6 {
			t.Errorf("k=%v: got %f, want %f", k, got, base)
		}
	}
}

func TestCosine_ZeroNorm(t *testing.T) {
	_, err := Cosine([]float32{0, 0, 0}, []float32{1, 2, 3})
	if !errors.Is(err, domain.ErrDegenerateVector) {
		t.Fatalf("expected ErrDegenerateVector, got %v", err)
	}

	_, err = Cosine([]float32{1, 2, 3}, []float32{0, 0, 0})
	if !errors.Is(err, domain.ErrDegenerateVector) {
		t.Fatalf("expected ErrDegenerateVector, got %v", err)
	}
}

func TestCosine_Empty(t *testing.T) {
	_, err := Cosine(nil, nil)
	if !errors.Is(err, domain.ErrDegenerateVector) {
		t.Fatalf("expected ErrDegenerateVector for empty vectors, got %v", err)
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	if !errors.Is(err, domain.ErrEmbeddingDimensionMismatch) {
		t.Fatalf("expected ErrEmbeddingDimensionMismatch, got %v", err)
	}
}

func TestNorm(t *testing.T) {
	if got := Norm([]float32{3, 4}); math.Abs(got-5) > eps {
		t.Errorf("expected 5, got %f", got)
	}
	if got := Norm(nil); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}
