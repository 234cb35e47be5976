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

	"github.com/nharvey/govpulse/app/api"
	"github.com/nharvey/govpulse/app/cfg"
	"github.com/nharvey/govpulse/app/charts"
	"github.com/nharvey/govpulse/app/database"
	"github.com/nharvey/govpulse/app/feed"
	"github.com/nharvey/govpulse/app/fetch"
	"github.com/nharvey/govpulse/app/sources"
	"github.com/nharvey/govpulse/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting govpulse", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DataDir, appCfg.DBFile)
	if err != nil {
		slog.Error("Stage failed", "stage", "storage", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Stage failed", "stage", "storage", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", db.Path, "migration_version", version, "dirty", dirty)

	repo := database.NewArticleRepository(db)

	srcs, err := loadSources(appCfg)
	if err != nil {
		slog.Error("Stage failed", "stage", "configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("Sources configured", "count", len(srcs))

	client := fetch.NewClient(&http.Client{}, appCfg.UserAgent, time.Duration(appCfg.Timeout)*time.Second)
	renderer := charts.NewRenderer(repo, appCfg.ChartsDir)
	runner := tasks.NewRunner(srcs, client, feed.NewParser(), feed.NewNormalizer(),
		feed.NewPageExtractor(), repo, renderer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.RunOnce(ctx); err != nil {
		slog.Error("Stage failed", "stage", failingStage(err), "error", err)
		os.Exit(1)
	}

	if appCfg.Interval > 0 {
		slog.Info("Periodic mode enabled", "interval_seconds", appCfg.Interval)
		runner.Start()
		defer runner.Stop()
	}

	if appCfg.Serve {
		serveHTTP(ctx, appCfg, repo)
		return
	}

	if appCfg.Interval > 0 {
		<-ctx.Done()
		slog.Info("Shutting down")
	}
}

// failingStage names the pipeline stage for the diagnostic line, so a
// failed run identifies itself without the caller reading a stack trace.
func failingStage(err error) string {
	var fetchErr *fetch.FetchError
	var malformedErr *feed.MalformedEntryError
	var storageErr *database.StorageError

	switch {
	case errors.As(err, &fetchErr):
		return "fetch"
	case errors.As(err, &malformedErr):
		return "normalize"
	case errors.As(err, &storageErr):
		return "storage"
	default:
		return "pipeline"
	}
}

func loadSources(appCfg *cfg.Cfg) ([]*sources.Source, error) {
	loader := sources.NewLoader(appCfg.SourcesDir)
	srcs, err := loader.LoadAll()
	if err != nil {
		return nil, err
	}

	if len(srcs) == 0 {
		srcs = []*sources.Source{sources.Default()}
	}

	return srcs, nil
}

func serveHTTP(ctx context.Context, appCfg *cfg.Cfg, repo database.ArticleRepository) {
	handler := api.NewHandler(repo, appCfg.ChartsDir, appCfg.Version)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
