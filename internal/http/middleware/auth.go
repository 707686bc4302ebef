package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/pribylovaa/authgate/internal/auth"
	apierrors "github.com/pribylovaa/authgate/internal/errors"
	"github.com/pribylovaa/authgate/internal/metrics"
	logctx "github.com/pribylovaa/authgate/internal/pkg/log"
	"github.com/pribylovaa/authgate/internal/pkg/redact"
)

// RequireAuth пропускает запрос дальше только с валидным Bearer-токеном.
// Личность кладётся в контекст (auth.IdentityFrom), логгер дополняется user_id.
// При отказе отвечает 401/UNAUTHORIZED; внутренняя причина уходит в лог и метрики.
func RequireAuth(v auth.Verifier, m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			id, err := auth.Extract(header, v)
			if err != nil {
				reason := auth.Reason(err)
				m.AuthFailure(reason)

				attrs := []slog.Attr{
					slog.String("reason", reason),
					slog.String("path", r.URL.Path),
				}
				if _, raw, ok := strings.Cut(strings.TrimSpace(header), " "); ok {
					attrs = append(attrs, slog.String("token", redact.Token(strings.TrimSpace(raw))))
				}
				logctx.From(r.Context()).LogAttrs(r.Context(), slog.LevelWarn, "auth_rejected", attrs...)

				apierrors.WriteError(w, r, err)
				return
			}

			ctx := auth.WithIdentity(r.Context(), id)
			ctx = logctx.With(ctx, slog.String("user_id", id.UserID.String()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
