package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	jwttoken "recordgate/internal/jwt_token"
	"recordgate/internal/platform/config"
	"recordgate/internal/platform/httpserver"
	"recordgate/internal/platform/logger"
	"recordgate/internal/platform/metrics"
	"recordgate/internal/records"
	"recordgate/internal/records/dss"
	"recordgate/internal/records/handler"
	recordsmetrics "recordgate/internal/records/metrics"
	"recordgate/internal/records/policy"
	"recordgate/internal/records/registry"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/records.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogLevel)
	ctx := context.Background()

	infra, err := buildInfra(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise infrastructure", "error", err)
		os.Exit(1)
	}
	defer infra.Close()

	svc := records.New(records.Collaborators{
		Storage:      infra.storage,
		Policy:       policy.NewEnforcer(),
		Decision:     dss.New(dss.WithLogger(log)),
		Registration: registry.NewIndex(),
		Continuation: infra.continuation,
		Auditor:      infra.auditor,
		Localization: infra.localization,
	},
		records.WithNode(cfg.Audit.NodeName, cfg.Audit.PIDRoot),
		records.WithQueryTimeout(cfg.Query.Timeout),
		records.WithWorkerMultiplier(cfg.Query.WorkerMultiplier),
		records.WithLogger(log),
		records.WithMetrics(recordsmetrics.New()),
	)

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer)
	recordsHandler := handler.New(svc, log, metrics.New(), jwttoken.NewJWTServiceAdapter(jwtService), cfg.Query.Timeout+5*time.Second)

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := infra.Health(r.Context()); err != nil {
			log.WarnContext(r.Context(), "health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	recordsHandler.Register(r)

	srv := httpserver.New(cfg.Server.Addr, r, cfg.Query.Timeout)

	log.Info("starting recordgate",
		"addr", cfg.Server.Addr,
		"store", cfg.Store.Backend,
		"node", cfg.Audit.NodeName,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
