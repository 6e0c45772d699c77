package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MrJamesThe3rd/gestobra/internal/config"
	"github.com/MrJamesThe3rd/gestobra/internal/database"
	"github.com/MrJamesThe3rd/gestobra/internal/document"
	docStore "github.com/MrJamesThe3rd/gestobra/internal/document/store"
	gestobraHttp "github.com/MrJamesThe3rd/gestobra/internal/http"
	docHandler "github.com/MrJamesThe3rd/gestobra/internal/http/document"
	importHandler "github.com/MrJamesThe3rd/gestobra/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/gestobra/internal/http/matching"
	materialHandler "github.com/MrJamesThe3rd/gestobra/internal/http/material"
	projectHandler "github.com/MrJamesThe3rd/gestobra/internal/http/project"
	reportHandler "github.com/MrJamesThe3rd/gestobra/internal/http/report"
	schemaHandler "github.com/MrJamesThe3rd/gestobra/internal/http/schema"
	txHandler "github.com/MrJamesThe3rd/gestobra/internal/http/transaction"
	"github.com/MrJamesThe3rd/gestobra/internal/importer"
	"github.com/MrJamesThe3rd/gestobra/internal/logger"
	"github.com/MrJamesThe3rd/gestobra/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/gestobra/internal/matching/store"
	"github.com/MrJamesThe3rd/gestobra/internal/material"
	materialStore "github.com/MrJamesThe3rd/gestobra/internal/material/store"
	"github.com/MrJamesThe3rd/gestobra/internal/metrics"
	"github.com/MrJamesThe3rd/gestobra/internal/project"
	projectStore "github.com/MrJamesThe3rd/gestobra/internal/project/store"
	"github.com/MrJamesThe3rd/gestobra/internal/report"
	"github.com/MrJamesThe3rd/gestobra/internal/report/render"
	"github.com/MrJamesThe3rd/gestobra/internal/schema"
	"github.com/MrJamesThe3rd/gestobra/internal/storage"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
	txStore "github.com/MrJamesThe3rd/gestobra/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger.New(cfg.App.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	bucket, err := storage.New(ctx, storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		slog.Error("failed to configure document storage", "error", err)
		os.Exit(1)
	}

	var (
		registry *prometheus.Registry
		recorder *metrics.Reports
	)

	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.New(registry)
	}

	movementTable := schema.NewResolver(schema.NewProber(db, recorder), schema.MovementTables...)

	if res, err := movementTable.Resolve(ctx); err != nil {
		slog.Warn("could not probe material movement table", "error", err)
	} else if !res.Exists {
		slog.Warn("material movement table missing, movement reports will be empty", "reason", res.Reason)
	}

	var (
		projectService     = project.NewService(projectStore.New(db))
		transactionService = transaction.NewService(txStore.New(db))
		materialService    = material.NewService(materialStore.New(db, movementTable))
		documentService    = document.NewService(docStore.New(db), bucket)
		matchingService    = matching.NewService(matchingStore.New(db))
		importService      = importer.NewService()
		reportService      = report.NewService(report.Sources{
			Projects:     projectService,
			Transactions: transactionService,
			Materials:    materialService,
		}, render.Registry(), recorder, cfg.Location())
	)

	handlers := gestobraHttp.Handlers{
		Projects:     projectHandler.NewHandler(projectService),
		Transactions: txHandler.NewHandler(transactionService),
		Documents:    docHandler.NewHandler(documentService),
		Materials:    materialHandler.NewHandler(materialService),
		Reports:      reportHandler.NewHandler(reportService, cfg.Location()),
		Import:       importHandler.NewHandler(importService, transactionService, matchingService),
		Rules:        matchingHandler.NewHandler(matchingService),
		Schema:       schemaHandler.NewHandler(movementTable),
	}

	opts := gestobraHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
	}
	if registry != nil {
		opts.Metrics = registry
	}

	if cfg.Auth.JWTSecret == "" {
		slog.Warn("AUTH_JWT_SECRET not set, API is unauthenticated")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           gestobraHttp.New(handlers, opts),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", srv.Addr, "env", cfg.App.Env)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
