package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		level     string
		wantErr   bool
		wantDebug bool
	}{
		{name: "local defaults to debug", env: "local", wantDebug: true},
		{name: "prod defaults to info", env: "prod"},
		{name: "prod with override", env: "prod", level: "debug", wantDebug: true},
		{name: "dev raised to warn", env: "dev", level: "warn"},
		{name: "unknown env", env: "staging", wantErr: true},
		{name: "bad level", env: "local", level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if got := l.Core().Enabled(zapcore.DebugLevel); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	fallback := zap.NewExample()
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Error("expected fallback without attached logger")
	}
	if got := FromContext(context.Background(), nil); got == nil {
		t.Error("expected no-op logger, got nil")
	}

	attached := zap.NewExample().With(zap.String("request_id", "r-1"))
	ctx := ContextWithLogger(context.Background(), attached)
	if got := FromContext(ctx, fallback); got != attached {
		t.Error("expected attached logger")
	}
}
