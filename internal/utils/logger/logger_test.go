package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-users/internal/model"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"info+2", slog.LevelInfo + 2, false},
		{"verbose", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWithWriter_level(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, slog.LevelWarn)

	log.Info("hidden")
	log.Warn("shown", slog.String(model.KeyUserID, "42"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "user_id=42")
}

func TestFromContext(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	stored := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	ctx := context.Background()
	assert.Same(t, slog.Default(), FromContext(ctx))
	assert.Same(t, fallback, FromContextOr(ctx, fallback))

	ctx = WithContext(ctx, stored)
	assert.Same(t, stored, FromContext(ctx))
	assert.Same(t, stored, FromContextOr(ctx, fallback))

	wrongType := context.WithValue(context.Background(), model.KeyContextLogger, "oops")
	assert.Same(t, fallback, FromContextOr(wrongType, fallback))
}
