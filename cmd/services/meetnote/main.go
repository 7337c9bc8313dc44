package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	config "github.com/Theagentvikram/MeetNote/config/meetnote"
	"github.com/Theagentvikram/MeetNote/pkg/gen"
	"github.com/Theagentvikram/MeetNote/pkg/logger"
	"github.com/Theagentvikram/MeetNote/services/meetnote/clients/openrouter"
	"github.com/Theagentvikram/MeetNote/services/meetnote/clients/whisper"
	"github.com/Theagentvikram/MeetNote/services/meetnote/server"
	"github.com/Theagentvikram/MeetNote/services/meetnote/storage"
	"github.com/Theagentvikram/MeetNote/services/meetnote/storage/memory"
	"github.com/Theagentvikram/MeetNote/services/meetnote/storage/postgres"
	"github.com/Theagentvikram/MeetNote/services/meetnote/storage/sqlite"
	"github.com/Theagentvikram/MeetNote/services/meetnote/usecase"
)

func main() {
	log := logger.New(logger.Config{
		Level:      slog.LevelDebug,
		Output:     os.Stderr,
		AddSource:  true,
		JSONFormat: false,
	})

	cfg := config.MustLoad()

	ctx := logger.WithContext(context.Background(), log)

	rootCtx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer cancel()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("failed to run()", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	stg, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer stg.Close()

	transcriber := whisper.New(cfg.Whisper.APIURL, cfg.Whisper.APIKey, cfg.Whisper.Model, cfg.Whisper.Device, cfg.Whisper.ComputeType, log)
	summarizer := openrouter.New(cfg.OpenRouter.APIKey, cfg.OpenRouter.BaseURL, cfg.OpenRouter.Model, log)

	usc := usecase.New(cfg, stg, transcriber, summarizer)
	srv := server.New(cfg, usc, log)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler: srv.Router(),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		serverErrors <- httpServer.ListenAndServe()
	}()
	log.Info("meetnote service started", slog.String("address", httpServer.Addr))

	select {
	case err := <-serverErrors:
		return fmt.Errorf("http server has closed: %w", err)
	case sig := <-shutdown:
		log.Info("start shutdown", slog.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("closing http server due to context cancellation")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openStorage picks the backend from the DATABASE_URL scheme: memory:// for the
// in-process store, postgres:// for pgx, anything else is a sqlite file path.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	ids := gen.UUID()
	url := cfg.DatabaseURL

	switch {
	case strings.HasPrefix(url, "memory://"), url == "memory":
		return memory.New(ids), nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(ctx, url, ids)
	default:
		path := strings.TrimPrefix(url, "sqlite:///")
		path = strings.TrimPrefix(path, "sqlite://")
		return sqlite.Open(ctx, path, ids)
	}
}
