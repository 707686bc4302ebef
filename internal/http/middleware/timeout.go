package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/pribylovaa/authgate/internal/errors"
	logctx "github.com/pribylovaa/authgate/internal/pkg/log"
)

// Timeout ограничивает время обработки запроса.
//
// Поведение:
//   - d <= 0 - мидлвар ничего не делает;
//   - уже существующий deadline не перекрывается;
//   - если deadline истёк, а обработчик так ничего и не записал,
//     клиент получает 500/INTERNAL_ERROR "request timeout".
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			rec := record(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.written() || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return
			}

			logctx.From(r.Context()).Warn("request_timeout",
				slog.String("path", r.URL.Path),
				slog.Duration("timeout", d),
			)
			apierrors.WriteError(rec, r, apierrors.Internal("request timeout", ctx.Err()))
		})
	}
}
