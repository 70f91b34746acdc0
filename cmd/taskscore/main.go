package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"taskscore/internal/config"
	"taskscore/internal/server"
	"taskscore/internal/storage"
	"taskscore/internal/storage/csvfile"
	"taskscore/internal/storage/memory"
	"taskscore/internal/storage/sqlstore"
	"taskscore/internal/util"
)

func main() {
	configFlag := flag.String("config", util.EnvOrDefault("TASKS_CONFIG", "config.yml"), "Path to yaml configuration file")
	flag.Parse()

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("failed to close store", slog.String("error", err.Error()))
		}
	}()

	srv := server.New(store, logger, cfg.StaticDir)

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Location", "X-Request-ID"},
	}).Handler(srv.Engine())

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr), slog.String("store", cfg.Store))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	return nil
}

// openStore builds the configured task store and a function releasing it.
func openStore(cfg config.Config, logger *slog.Logger) (storage.TaskStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store {
	case config.StoreMemory:
		return memory.New(), noop, nil
	case config.StoreCSV:
		s, err := csvfile.Open(cfg.DataDir, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using task file", slog.String("path", s.Path()))
		return s, noop, nil
	default:
		driver, ok := sqlstore.Driver(cfg.Store)
		if !ok {
			return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
		}
		s, err := sqlstore.Open(driver, cfg.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
}
