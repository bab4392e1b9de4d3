package app

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"readinglist/internal/bookservice"
	"readinglist/internal/config"
	"readinglist/pkg/logging"
)

// BookServer is the wired BookService.
type BookServer struct {
	Server     *bookservice.Server
	Repository bookservice.Repository
	Registry   *prometheus.Registry

	db *sql.DB
}

// Close releases the database handle, if any.
func (b *BookServer) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// Package-level seams for tests.
var (
	openPostgres  = bookservice.OpenPostgres
	runMigrations = bookservice.RunMigrations
)

// NewBookServer selects the repository, applies migrations for postgres
// and mounts the API together with /metrics.
func NewBookServer(ctx context.Context, settings config.ServerConfig) (*BookServer, error) {
	logger := logging.Logger()
	out := &BookServer{Registry: prometheus.NewRegistry()}

	switch settings.Storage {
	case config.StoragePostgres:
		db, err := openPostgres(ctx, settings.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := runMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		out.db = db
		out.Repository = bookservice.NewPostgresRepository(db)
		out.Registry.MustRegister(collectors.NewDBStatsCollector(db, "books"))
		logging.Info("Serve", "Using postgres storage")
	case config.StorageMemory, "":
		out.Repository = bookservice.NewMemoryRepository()
		logging.Info("Serve", "Using in-memory storage")
	default:
		return nil, fmt.Errorf("unknown storage driver %q", settings.Storage)
	}

	out.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics := bookservice.NewMetrics(out.Registry)
	handler := bookservice.NewHandler(out.Repository, metrics, logger)
	router := bookservice.NewRouter(handler, func(r chi.Router) {
		r.Handle("/metrics", promhttp.HandlerFor(out.Registry, promhttp.HandlerOpts{}))
	})

	addr := net.JoinHostPort(settings.Host, strconv.Itoa(settings.Port))
	out.Server = bookservice.NewServer(addr, router, logger)
	return out, nil
}
