package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/handler"
	"github.com/parleychat/parley/internal/model/catalog"
	"github.com/parleychat/parley/internal/service/ai"
	"github.com/parleychat/parley/internal/service/history"
	"github.com/parleychat/parley/internal/service/turn"
	"github.com/parleychat/parley/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file, using system environment only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := setupLogger(cfg.Server.LogLevel)

	sqlStore, err := store.NewSQLiteStore(ctx, cfg.Store.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.SQLitePath).Msg("failed to open store")
	}
	defer sqlStore.Close()

	catalogStore := catalog.NewMemoryStore(catalog.Seed())

	var runner *turn.Runner
	if cfg.AI.Enabled() {
		registry := ai.NewRegistryFromConfig(cfg.AI)
		aiService := ai.NewService(registry, cfg.AI)
		runner = turn.NewRunner(history.NewAssembler(sqlStore), aiService, turn.NewFinalizer(sqlStore))
		log.Info().Msg("model providers initialized")
	} else {
		log.Warn().Msg("no provider credentials configured, turn endpoints disabled")
	}

	router := handler.NewRouter(logger, sqlStore, catalogStore, runner)

	startServer(ctx, cfg.Server, router)
}

func setupLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("parley backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
