package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	apierrors "github.com/pribylovaa/authgate/internal/errors"
	logctx "github.com/pribylovaa/authgate/internal/pkg/log"
)

// Recover перехватывает panic и отвечает 500/INTERNAL_ERROR.
// Детали паники остаются в логе. Если ответ уже начат, второй статус
// не пишется: паника только логируется.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := record(w)
			defer func() {
				reason := recover()
				if reason == nil {
					return
				}
				if reason == http.ErrAbortHandler {
					panic(reason)
				}

				logctx.From(r.Context()).
					LogAttrs(r.Context(), slog.LevelError, "panic",
						slog.String("path", r.URL.Path),
						slog.Bool("response_started", rw.written()),
						slog.Any("reason", reason),
						slog.String("stack", string(debug.Stack())),
					)

				if rw.written() {
					return
				}
				apierrors.WriteError(rw, r, apierrors.Internal("internal error", fmt.Errorf("panic: %v", reason)))
			}()
			next.ServeHTTP(rw, r)
		})
	}
}
