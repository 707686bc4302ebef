package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/authgate/internal/auth"
	apierrors "github.com/pribylovaa/authgate/internal/errors"
	"github.com/pribylovaa/authgate/internal/http/handlers"
	"github.com/pribylovaa/authgate/internal/http/middleware"
	"github.com/pribylovaa/authgate/internal/metrics"
)

// Options - параметры сборки HTTP-роутера.
type Options struct {
	Logger      *slog.Logger
	Timeout     time.Duration
	Metrics     *metrics.Metrics
	CORSOrigins []string
	Version     string
	// MetricsHandler, если задан, обслуживает GET /metrics (вне JSON-конверта).
	MetricsHandler http.Handler
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc handlers.Service, verifier auth.Verifier, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.RequestID(),          // X-Request-Id до логирования
		middleware.Logging(opts.Logger), // request-scoped логгер в контексте
		middleware.Metrics(opts.Metrics),
		middleware.Recover(), // внутри Logging: паника логируется тем же логгером и попадает в access-лог как 500
		middleware.CORS(opts.CORSOrigins),
		middleware.Timeout(opts.Timeout),
	)

	root.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, r, apierrors.NotFound("route not found"))
	})
	root.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, r, apierrors.BadRequest("method not allowed"))
	})

	h := handlers.New(svc, opts.Version)
	registerRoutes(root, h, middleware.RequireAuth(verifier, opts.Metrics))

	if opts.MetricsHandler != nil {
		root.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	return root
}

// registerRoutes - единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, requireAuth middleware.Middleware) {
	r.Get("/health", h.Health)
	r.Get("/health/ready", h.Ready)

	r.Route("/api", func(r chi.Router) {
		// auth
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		// users
		r.Method(http.MethodGet, "/users/me", middleware.Chain(http.HandlerFunc(h.Me), requireAuth))
	})
}
