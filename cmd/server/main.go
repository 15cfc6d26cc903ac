// MF-API - OGC API Moving Features Server with MobilityDB Backend
// Copyright 2026 AIST AIRC
// SPDX-License-Identifier: MIT
// https://github.com/aistairc/mf-api

// Package main is the entry point for the MF-API server.
//
// MF-API serves moving feature data (vehicles, vessels, aircraft,
// pedestrians) over the OGC API - Moving Features interface, backed by
// MobilityDB temporal types on PostgreSQL/PostGIS.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 with defaults, optional YAML file, and
//     MF_API_-prefixed environment variables
//  2. Logging: zerolog, console or JSON format
//  3. Database: MobilityDB connection pool with circuit breaker and
//     optional schema bootstrap
//  4. OpenAPI: generated document parsed and validated with kin-openapi
//  5. HTTP server: chi route table with Swagger UI and Prometheus
//     metrics
//  6. Supervisor: suture tree running the HTTP server and the database
//     keepalive
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the listener
// stops accepting connections, in-flight requests get 10 seconds to
// complete, then the database pool closes.
//
// # Example Usage
//
//	export MF_API_DATABASE_HOST=localhost
//	export MF_API_DATABASE_DBNAME=mobilitydb
//	export MF_API_DATABASE_USER=postgres
//	export MF_API_DATABASE_PASSWORD=postgres
//	./mf-api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aistairc/mf-api/internal/api"
	"github.com/aistairc/mf-api/internal/config"
	"github.com/aistairc/mf-api/internal/database"
	"github.com/aistairc/mf-api/internal/logging"
	"github.com/aistairc/mf-api/internal/supervisor"

	_ "github.com/aistairc/mf-api/docs"
)

//	@title			OGC API - Moving Features
//	@version		1.0
//	@description	Access to data about moving features
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//	@BasePath		/

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("bind", cfg.Server.Bind.Addr()).
		Str("url", cfg.Server.URL).
		Str("database", cfg.Database.Host).
		Msg("Starting MF-API server")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	openapiDoc, err := api.LoadOpenAPIDoc(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load OpenAPI document")
	}

	handler := api.NewHandler(db, cfg, openapiDoc)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:              cfg.Server.Bind.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddStorageService(supervisor.NewKeepaliveService(db, 30*time.Second))
	tree.AddAPIService(supervisor.NewHTTPService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	logging.Info().Str("addr", server.Addr).Msg("Server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree exited with error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Fatal().Err(err).Msg("Supervisor tree failed")
		}
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}

	logging.Info().Msg("Server stopped")
}
