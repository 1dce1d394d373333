package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
)

// Logging puts a request-scoped logger into the context and logs every
// finished request. It must run after middleware.RequestID.
func Logging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		logFunc := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := middleware.GetReqID(r.Context())
			reqLog := log.With(slog.String(model.KeyRequestID, reqID))
			if reqID != "" {
				w.Header().Set(middleware.RequestIDHeader, reqID)
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			reqLog.LogAttrs(r.Context(),
				slog.LevelInfo,
				"request served",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		}
		return http.HandlerFunc(logFunc)
	}
}
