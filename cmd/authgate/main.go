package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/authgate/internal/cache"
	"github.com/pribylovaa/authgate/internal/config"
	apphttp "github.com/pribylovaa/authgate/internal/http"
	"github.com/pribylovaa/authgate/internal/metrics"
	"github.com/pribylovaa/authgate/internal/password"
	applog "github.com/pribylovaa/authgate/internal/pkg/log"
	"github.com/pribylovaa/authgate/internal/service"
	"github.com/pribylovaa/authgate/internal/storage"
	"github.com/pribylovaa/authgate/internal/storage/memory"
	"github.com/pribylovaa/authgate/internal/storage/postgres"
	"github.com/pribylovaa/authgate/internal/token"
)

// version проставляется при сборке через -ldflags "-X main.version=...".
var version = "dev"

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := applog.New(cfg.Env, os.Stdout)
	slog.SetDefault(log)
	log.Info("starting authgate", slog.String("env", cfg.Env), slog.String("version", version))

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("service_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("service_stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	hasher, err := password.New(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	codec, err := token.New([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL())
	if err != nil {
		return err
	}

	log.Info("auth_configured",
		slog.Int("bcrypt_cost", hasher.Cost()),
		slog.Duration("token_ttl", codec.TTL()),
	)

	svc := service.New(st, hasher, codec)

	if cfg.Redis.RedisURL != "" {
		pc, err := cache.NewRedisCache(ctx, cfg.Redis.RedisURL, "", cfg.Redis.TTL)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := pc.Close(); cerr != nil {
				log.Warn("cache_close_failed", slog.String("err", cerr.Error()))
			}
		}()

		svc.SetProfileCache(pc)
		log.Info("profile_cache_enabled", slog.Duration("ttl", cfg.Redis.TTL))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := apphttp.NewRouter(svc, codec, apphttp.Options{
		Logger:         log,
		Timeout:        cfg.Timeouts.Service,
		Metrics:        metrics.New(reg),
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		Version:        version,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		return err
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case serveErr = <-serveErrCh:
		if serveErr != nil {
			log.Error("http_serve_failed", slog.String("err", serveErr.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	return serveErr
}

// openStorage выбирает хранилище: PostgreSQL при заданном DATABASE_URL,
// иначе - хранилище в памяти (данные живут до перезапуска процесса).
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	if cfg.DB.DatabaseURL == "" {
		log.Warn("storage_in_memory", slog.String("reason", "database url is empty"))
		return memory.New(), nil
	}

	// Сначала пул с повторами: миграции ходят в ту же БД и без неё сразу упадут.
	st, err := postgres.New(ctx, cfg.DB.DatabaseURL, postgres.Options{
		MaxConns:        cfg.DB.MaxConns,
		ConnectAttempts: cfg.DB.ConnectAttempts,
		ConnectBackoff:  cfg.DB.ConnectBackoff,
	})
	if err != nil {
		return nil, err
	}

	if !cfg.DB.SkipMigrations {
		if err := postgres.Migrate(cfg.DB.DatabaseURL); err != nil {
			st.Close()
			return nil, err
		}
		log.Info("migrations_applied")
	}

	log.Info("storage_postgres_ready", slog.Int("max_conns", int(cfg.DB.MaxConns)))

	return st, nil
}
