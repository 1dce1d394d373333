package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/talx-hub/gopher-users/internal/model"
)

func New(logLevel slog.Level) *slog.Logger {
	return NewWithWriter(os.Stdout, logLevel)
}

func NewWithWriter(w io.Writer, logLevel slog.Level) *slog.Logger {
	return slog.New(
		slog.NewTextHandler(
			w,
			&slog.HandlerOptions{Level: logLevel},
		))
}

// ParseLevel accepts the slog level names in any case, with an optional
// offset: "debug", "INFO", "warn+2".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("failed to parse log level %q: %w", s, err)
	}
	return level, nil
}

func WithContext(ctx context.Context, log *slog.Logger) context.Context {
	ctxWithLogger := context.WithValue(ctx, model.KeyContextLogger, log)
	return ctxWithLogger
}

func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOr(ctx, slog.Default())
}

// FromContextOr returns the logger stored by WithContext, or fallback.
func FromContextOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	logRaw := ctx.Value(model.KeyContextLogger)
	if logRaw == nil {
		return fallback
	}
	if log, ok := logRaw.(*slog.Logger); ok && log != nil {
		return log
	}
	return fallback
}
