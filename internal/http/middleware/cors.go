package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type, X-Request-Id"
	corsMaxAge       = "600"
)

// CORS разрешает кросс-доменные запросы с перечисленных origin ("*" - любые).
// Preflight (OPTIONS с Access-Control-Request-Method) завершается здесь же ответом 204.
func CORS(allowedOrigins []string) Middleware {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
			continue
		}
		if o != "" {
			allowed[strings.ToLower(o)] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			if origin != "" {
				w.Header().Add("Vary", "Origin")

				_, ok := allowed[strings.ToLower(origin)]
				switch {
				case allowAll:
					w.Header().Set("Access-Control-Allow-Origin", "*")
				case ok:
					w.Header().Set("Access-Control-Allow-Origin", origin)
				}
				if allowAll || ok {
					w.Header().Set("Access-Control-Expose-Headers", headerRequestID)
					if preflight {
						w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
						w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
						w.Header().Set("Access-Control-Max-Age", corsMaxAge)
					}
				}
			}

			if preflight {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
