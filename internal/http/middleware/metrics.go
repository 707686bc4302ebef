package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/authgate/internal/metrics"
)

// routeUnmatched - метка для запросов, не попавших ни в один маршрут.
const routeUnmatched = "unmatched"

// Metrics учитывает запросы по шаблону маршрута chi. Должен стоять
// в корневом роутере: шаблон известен только после маршрутизации.
func Metrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := record(w)
			start := time.Now()
			next.ServeHTTP(rec, r)

			route := routeUnmatched
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}

			m.ObserveRequest(r.Method, route, rec.Status(), time.Since(start))
		})
	}
}
