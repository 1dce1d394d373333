package dbmanager

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/talx-hub/gopher-users/internal/model"
)

type queryTracer struct {
	log *slog.Logger
}

func (t *queryTracer) TraceQueryStart(
	ctx context.Context,
	_ *pgx.Conn,
	data pgx.TraceQueryStartData,
) context.Context {
	t.log.LogAttrs(ctx,
		slog.LevelDebug,
		"Running query",
		slog.String("query", data.SQL),
		slog.Int("args", len(data.Args)),
	)
	return ctx
}

func (t *queryTracer) TraceQueryEnd(
	ctx context.Context,
	_ *pgx.Conn,
	data pgx.TraceQueryEndData,
) {
	if data.Err == nil {
		return
	}
	t.log.LogAttrs(ctx,
		slog.LevelDebug,
		"Query failed",
		slog.String("tag", data.CommandTag.String()),
		slog.Any(model.KeyLoggerError, data.Err),
	)
}
