package evaluation

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/headrag/internal/domain"
)

func TestParseScore_Accepted(t *testing.T) {
	tests := []struct {
		raw  string
		want Score
	}{
		{"1", Correct},
		{"1.0", Correct},
		{" 1\n", Correct},
		{"0.5", Partial},
		{".5", Partial},
		{"`0.5`", Partial},
		{"\"0\"", Incorrect},
		{"0", Incorrect},
		{"0.0", Incorrect},
		{"1.", Correct},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseScore(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseScore_Rejected(t *testing.T) {
	for _, raw := range []string{"", "0.7", "2", "-1", "one", "Score: 1", "1/2", "NaN", "0.5 because...",
		"-0", "+0.5", "1e0", "0x1p-1", "0.50", "00", "Inf"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseScore(raw)
			if !errors.Is(err, domain.ErrUnparsableScore) {
				t.Fatalf("expected ErrUnparsableScore, got %v", err)
			}
		})
	}
}

func TestScore_String(t *testing.T) {
	if Partial.String() != "0.5" || Correct.String() != "1" || Incorrect.String() != "0" {
		t.Errorf("unexpected literals: %s %s %s", Incorrect, Partial, Correct)
	}
}

func TestRecord_UnscoredNeverCarriesScore(t *testing.T) {
	r := NewUnscored("q", "gen", "ref", "maybe", domain.ErrUnparsableScore)
	if r.Scored() {
		t.Fatal("unscored record reported as scored")
	}
	if _, ok := r.Score(); ok {
		t.Error("unscored record must not expose a score")
	}
	if !errors.Is(r.Err(), domain.ErrUnparsableScore) {
		t.Errorf("expected ErrUnparsableScore, got %v", r.Err())
	}
}

func TestRecord_Scored(t *testing.T) {
	r := NewScored("q", "gen", "ref", Partial, "0.5")
	s, ok := r.Score()
	if !ok || s != Partial {
		t.Errorf("expected scored 0.5, got %v ok=%v", s, ok)
	}
	if r.Status() != StatusScored {
		t.Errorf("unexpected status %q", r.Status())
	}
}
