// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/villemin/feuille/internal/api"
	"github.com/villemin/feuille/internal/docstore"
	"github.com/villemin/feuille/internal/extract"
	"github.com/villemin/feuille/internal/i18n"
	"github.com/villemin/feuille/internal/index"
	"github.com/villemin/feuille/internal/sse"
	"github.com/villemin/feuille/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_path", cfg.Data.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure data directory exists.
	if err := os.MkdirAll(cfg.Data.Path, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Initialize storage and the document store.
	fs, err := storage.NewFS(cfg.Data.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	store := docstore.New(fs, logger)
	store.Load()

	settings := docstore.NewSettingsStore(fs, logger)
	settings.Load()

	// Initialize SQLite search index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Run initial sync, then follow store events.
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	index.Listen(db, store, logger)

	// SSE broker, fed by store events. Deletions carry a localized
	// notification text for the UI.
	broker := sse.NewBroker(2*time.Second, func(ev docstore.Event) string {
		lang := settings.Get().Language
		switch ev.Kind {
		case docstore.EventDocumentDeleted:
			title := ev.Title
			if title == "" {
				title = i18n.T(lang, "document.genericTitle")
			}
			return i18n.T(lang, "notify.documentDeleted", title)
		case docstore.EventExerciseDeleted:
			return i18n.T(lang, "notify.exerciseDeleted")
		}
		return ""
	})
	store.Subscribe(broker.PublishStoreEvent)

	// Image extraction: the settings key wins over the config key.
	analyzer := app.analyzer
	if analyzer == nil {
		analyzer = extract.NewGemini(func() string {
			if key := settings.Get().APIKey; key != "" {
				return key
			}
			return cfg.AI.APIKey
		})
	}
	queue := extract.NewQueue(analyzer, logger)

	// Build API router.
	apiRouter := api.NewRouter(api.Deps{
		Store:       store,
		Settings:    settings,
		Searcher:    db,
		Queue:       queue,
		Analyzer:    analyzer,
		SSEHandler:  broker,
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
	})

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Extraction worker.
	g.Go(func() error {
		queue.Run(gCtx)
		return nil
	})

	// Watch the data file for external edits.
	g.Go(func() error {
		if err := docstore.Watch(gCtx, store, fs, logger); err != nil {
			logger.Warn("data watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		broker.Close()
		if err := store.Flush(); err != nil {
			logger.Error("final flush failed", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
