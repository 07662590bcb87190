package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctchen222/tictactoe-bot/internal/api/controller"
	"ctchen222/tictactoe-bot/internal/bot"
	"ctchen222/tictactoe-bot/internal/config"
	"ctchen222/tictactoe-bot/internal/db"
	"ctchen222/tictactoe-bot/internal/logger"
	"ctchen222/tictactoe-bot/internal/repository"
	"ctchen222/tictactoe-bot/internal/server"
	"ctchen222/tictactoe-bot/internal/session"
	"ctchen222/tictactoe-bot/internal/telemetry"
)

const janitorInterval = time.Minute

func main() {
	ctx := context.Background()

	// CONFIG_PATH points at a YAML file; without it only the environment is read.
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open %s session store: %v", cfg.Store, err)
	}
	defer closeStore.Close()

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	if p, ok := repo.(repository.Purger); ok {
		go repository.RunJanitor(janitorCtx, p, cfg.SessionTTL, janitorInterval)
	}

	// Create the computer player
	botOpts := bot.Options{
		StrictAdjacency: cfg.Bot.StrictAdjacency,
		ThinkDelay:      cfg.Bot.ThinkDelay,
	}
	if cfg.Bot.Seed != 0 {
		botOpts.Random = bot.NewSeededRandom(cfg.Bot.Seed)
	}
	computer := bot.New(botOpts)

	defaultDifficulty, err := bot.ParseDifficulty(cfg.Bot.Difficulty)
	if err != nil {
		log.Fatalf("invalid bot difficulty: %v", err)
	}

	// Create services and controllers
	sessionService := session.NewService(repo, computer)
	gameController := controller.NewGameController(sessionService, computer, defaultDifficulty)

	// Create the Gin-based server
	srv := server.NewServer(sessionService, gameController, defaultDifficulty)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "addr", httpServer.Addr, "store", cfg.Store)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop

	slog.Info("Shutting down server...")
	stopJanitor()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Server exiting")
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openStore builds the session repository named by cfg.Store.
func openStore(ctx context.Context, cfg *config.Config) (repository.SessionRepository, io.Closer, error) {
	switch cfg.Store {
	case config.StoreRedis:
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisSessionRepository(rdb, cfg.SessionTTL), rdb, nil
	case config.StoreSQLite:
		conn, err := db.Connect(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteSessionRepository(conn), conn, nil
	case config.StoreMemory:
		return repository.NewMemorySessionRepository(), closerFunc(func() error { return nil }), nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
