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

	"github.com/spf13/pflag"

	"github.com/letsssgooo/quizweb/internal/catalog"
	"github.com/letsssgooo/quizweb/internal/config"
	"github.com/letsssgooo/quizweb/internal/lib/slogcustom"
	"github.com/letsssgooo/quizweb/internal/quiz"
	"github.com/letsssgooo/quizweb/internal/server"
	"github.com/letsssgooo/quizweb/internal/storage"
	"github.com/letsssgooo/quizweb/internal/storage/mongo"
	"github.com/letsssgooo/quizweb/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot load config:", err)
		os.Exit(2)
	}

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting quiz web...",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage),
	)

	if err = run(cfg, log); err != nil {
		log.Error("quiz web stopped", slogcustom.Err(err))
		os.Exit(1)
	}

	log.Info("quiz web stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	store, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("cannot open %s storage, %w", cfg.Storage, err)
	}
	log.Info("storage ready", slog.String("driver", cfg.Storage))

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := store.Close(closeCtx); err != nil {
			log.Error("cannot close storage", slogcustom.Err(err))
		}
	}()

	router, err := server.NewRouter(server.Options{
		Log:         log,
		Store:       store,
		Engine:      quiz.NewEngine(),
		Catalog:     catalog.MustLoad(),
		QuizSize:    cfg.QuizSize,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		serverErr <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed, %w", err)
	case sig := <-stop:
		log.Info("shutting down", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("cannot shutdown http server, %w", err)
	}

	return nil
}

func newStore(ctx context.Context, cfg *config.Config) (storage.QuestionStore, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		return postgres.NewStorage(ctx, cfg.PostgresDSN)
	case config.StorageMongo:
		return mongo.NewStorage(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return storage.NewMemoryStorage(), nil
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = slog.New(slogcustom.NewCustomHandler(os.Stdout, slog.LevelDebug))
	case config.EnvDev:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	return log
}
