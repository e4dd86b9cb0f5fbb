package server

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"defensoria/internal/domain/audit"
	"defensoria/internal/domain/auth"
	"defensoria/internal/domain/deadline"
	"defensoria/internal/domain/matters"
	"defensoria/internal/platform/config"
	"defensoria/internal/platform/db"
	"defensoria/internal/platform/metrics"
	audithandler "defensoria/internal/transport/http/handlers/audit"
	authhandler "defensoria/internal/transport/http/handlers/auth"
	deadlinehandler "defensoria/internal/transport/http/handlers/deadline"
	mattershandler "defensoria/internal/transport/http/handlers/matters"
	"defensoria/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	authStore := auth.NewStore(pool)
	auditSvc := audit.New(pool)
	deadlineSvc := deadline.NewService(deadline.NewStore(pool), cfg.CalculationDayCap)
	mattersSvc := matters.NewService(matters.NewStore(pool))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(collector.Snapshot()); err != nil {
				slog.Warn("metrics write failed", "err", err)
			}
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authStore, cfg.JWTSecret, auditSvc).RegisterRoutes(r)
		deadlinehandler.NewHandler(deadlineSvc, mattersSvc, authStore, auditSvc, collector).RegisterRoutes(r)
		mattershandler.NewHandler(mattersSvc, authStore, auditSvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc, authStore).RegisterRoutes(r)
	})

	log.Printf("deadline service listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
