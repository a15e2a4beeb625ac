package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inno-sport-inh/backend/internal/api"
	"github.com/inno-sport-inh/backend/internal/auth"
	"github.com/inno-sport-inh/backend/internal/config"
	"github.com/inno-sport-inh/backend/internal/dispatch"
	"github.com/inno-sport-inh/backend/internal/domain"
	"github.com/inno-sport-inh/backend/internal/legacy"
	persistence "github.com/inno-sport-inh/backend/internal/persistence/postgres"
	"github.com/inno-sport-inh/backend/internal/routing"
	"github.com/inno-sport-inh/backend/internal/telemetry"
	httptransport "github.com/inno-sport-inh/backend/internal/transport/http"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := persistence.NewRepository(pool)
	service := domain.NewService(repo)
	handlers := api.New(service)

	routes, err := handlers.Routes()
	if err != nil {
		log.Fatalf("invalid route table: %v", err)
	}
	table, err := routing.NewTable(routes)
	if err != nil {
		log.Fatalf("invalid route table: %v", err)
	}

	dispatcher, err := dispatch.NewDispatcher(table, handlers.Actions())
	if err != nil {
		log.Fatalf("invalid dispatch table: %v", err)
	}

	entries, err := api.LegacyEntries()
	if err != nil {
		log.Fatalf("invalid legacy table: %v", err)
	}
	mappings, err := legacy.NewMappings(table, entries, legacy.Config{
		Sunset:         cfg.DeprecationSunset,
		MigrationGuide: cfg.MigrationGuideURL,
	})
	if err != nil {
		log.Fatalf("invalid legacy table: %v", err)
	}

	sink := telemetry.NewKafkaSink(cfg.KafkaBrokers)
	defer sink.Close()

	recorder := telemetry.NewRecorder(sink, cfg.TelemetryFlushInterval, cfg.TelemetryBatchSize,
		telemetry.WithBuffer(cfg.TelemetryBuffer))
	go recorder.Run(ctx)

	gateway := httptransport.NewGateway(table, dispatcher, mappings, recorder, nil)

	mux := http.NewServeMux()
	mux.Handle("/", gateway)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	authMiddleware := auth.NewMiddleware(
		auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer},
		func(r *http.Request) bool {
			return !strings.HasPrefix(r.URL.Path, "/api/")
		},
	)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, authMiddleware.Wrap(mux))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("sport api listening on %s (%d routes, %d legacy mappings)", cfg.HTTPAddress, table.Len(), mappings.Len())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	recorder.Wait()
}
