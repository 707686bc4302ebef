package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	logctx "github.com/pribylovaa/authgate/internal/pkg/log"
)

// Logging создаёт request-scoped логгер (с request_id, если он есть),
// кладёт его в контекст и по завершении пишет access-запись "http".
// Уровень записи зависит от класса статуса: 5xx - error, 4xx - warn.
func Logging(l *slog.Logger) Middleware {
	if l == nil {
		l = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := l
			if rid := r.Header.Get(headerRequestID); rid != "" {
				reqLogger = reqLogger.With(slog.String("request_id", rid))
			}
			r = r.WithContext(logctx.Into(r.Context(), reqLogger))

			rec := record(w)
			start := time.Now()
			next.ServeHTTP(rec, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.Status()),
				slog.Duration("dur", time.Since(start)),
				slog.Int("bytes", rec.bytes),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				attrs = append(attrs, slog.String("route", rctx.RoutePattern()))
			}

			reqLogger.LogAttrs(r.Context(), accessLevel(rec.Status()), "http", attrs...)
		})
	}
}

func accessLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
