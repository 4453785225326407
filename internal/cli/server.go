package cli

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

	"dotnet-quiz-service/internal/app"
	"dotnet-quiz-service/internal/bank"
	"dotnet-quiz-service/internal/config"
	"dotnet-quiz-service/internal/infra/logger"
	"dotnet-quiz-service/internal/infra/memory"
	pgbank "dotnet-quiz-service/internal/infra/postgres"
	redisstore "dotnet-quiz-service/internal/infra/redis"
	"dotnet-quiz-service/internal/infra/sqlite"
	transport "dotnet-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
	cmd.Flags().StringVar(port, "port", os.Getenv("PORT"), "port to listen on (overrides config)")
	return cmd
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	logger.Init(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           transport.NewRouter(service),
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting quiz service", "port", finalPort, "bank", cfg.Bank.Source)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildService assembles the bank source, its cache and the handoff store
// selected by cfg. cleanup releases every connection that was opened.
func buildService(ctx context.Context, cfg config.Config) (*app.QuizService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	loader, closeLoader, err := openBankLoader(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, closeLoader)

	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	handoffTTL := config.TTLDuration(cfg.Quiz.HandoffTTL, time.Hour)

	var (
		repo    app.BankRepository
		handoff app.HandoffStore
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, cleanup, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		repo = redisstore.NewBankRepository(client, loader, cacheTTL)
		handoff = redisstore.NewHandoffStore(client, handoffTTL)
	} else {
		repo = memory.NewBankRepository(loader, cacheTTL)
		handoff = memory.NewHandoffStore(handoffTTL)
	}

	return app.NewQuizService(app.NewQuestionProvider(repo), handoff), cleanup, nil
}

func openBankLoader(ctx context.Context, cfg config.Config) (memory.TopicLoader, func(), error) {
	switch cfg.Bank.Source {
	case config.BankSourcePostgres:
		db, err := openBunDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		err = runMigrations(ctx, db)
		_ = db.Close()
		if err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return pgbank.NewBankLoader(pool), pool.Close, nil
	case config.BankSourceSQLite:
		store, err := sqlite.NewBankStore(cfg.Bank.SQLite)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.BankSourceFile, "":
		b, err := bank.LoadFile(cfg.Bank.Path)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("question bank loaded", "path", cfg.Bank.Path, "topics", len(b.Keys()))
		return bank.NewLoader(b), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown bank source %q", cfg.Bank.Source)
	}
}
