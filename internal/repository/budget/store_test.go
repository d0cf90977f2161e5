package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/headrag/internal/db"
)

type expireCall struct {
	key string
	ttl time.Duration
	nx  bool
}

type mockStore struct {
	values  map[string][]byte
	incrErr error
	getErr  error
	incrs   map[string]int64
	expires []expireCall
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) error {
	if m.incrErr != nil {
		return m.incrErr
	}
	if m.incrs == nil {
		m.incrs = make(map[string]int64)
	}
	m.incrs[key] += val
	return nil
}

func (m *mockStore) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	m.expires = append(m.expires, expireCall{key: key, ttl: ttl, nx: nx})
	return nil
}

var testRetention = Retention{
	"daily":   48 * time.Hour,
	"monthly": 62 * 24 * time.Hour,
}

func TestAdd_SetsPeriodRetention(t *testing.T) {
	tests := []struct {
		period string
		key    string
		want   time.Duration
	}{
		{"daily", "headrag:budget:openai:daily:2026-10-14", 48 * time.Hour},
		{"monthly", "headrag:budget:openai:monthly:2026-10", 62 * 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			ms := &mockStore{}
			s := New(ms, testRetention)

			if err := s.Add(context.Background(), tt.period, tt.key, 10); err != nil {
				t.Fatalf("Add: %v", err)
			}
			if ms.incrs[tt.key] != 10 {
				t.Errorf("INCRBY %s = %d, want 10", tt.key, ms.incrs[tt.key])
			}
			if len(ms.expires) != 1 {
				t.Fatalf("expected one EXPIRE, got %d", len(ms.expires))
			}
			got := ms.expires[0]
			if got.ttl != tt.want || !got.nx || got.key != tt.key {
				t.Errorf("expire = %+v, want ttl=%v nx=true", got, tt.want)
			}
		})
	}
}

func TestAdd_UnknownPeriod(t *testing.T) {
	ms := &mockStore{}
	s := New(ms, testRetention)

	if err := s.Add(context.Background(), "weekly", "k", 1); err == nil {
		t.Fatal("expected error for period without retention")
	}
	if len(ms.incrs) != 0 {
		t.Error("nothing must be written for an unknown period")
	}
}

func TestAdd_IncrError(t *testing.T) {
	ms := &mockStore{incrErr: errors.New("boom")}
	s := New(ms, testRetention)

	if err := s.Add(context.Background(), "daily", "k", 1); err == nil {
		t.Fatal("expected error")
	}
	if len(ms.expires) != 0 {
		t.Error("EXPIRE must not run after a failed INCRBY")
	}
}

func TestLoad(t *testing.T) {
	ms := &mockStore{values: map[string][]byte{
		"present": []byte("1234"),
		"garbage": []byte("abc"),
	}}
	s := New(ms, testRetention)
	ctx := context.Background()

	if v, err := s.Load(ctx, "present"); err != nil || v != 1234 {
		t.Errorf("Load(present) = %d, %v", v, err)
	}
	if v, err := s.Load(ctx, "missing"); err != nil || v != 0 {
		t.Errorf("Load(missing) = %d, %v; want 0, nil", v, err)
	}
	if _, err := s.Load(ctx, "garbage"); err == nil {
		t.Error("expected parse error")
	}

	ms.getErr = errors.New("down")
	if _, err := s.Load(ctx, "present"); err == nil {
		t.Error("expected store error")
	}
}
