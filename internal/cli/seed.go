package cli

import (
	"context"
	"fmt"
	"log/slog"

	"dotnet-quiz-service/internal/bank"
	"dotnet-quiz-service/internal/config"
	pgbank "dotnet-quiz-service/internal/infra/postgres"
	"dotnet-quiz-service/internal/infra/sqlite"
	"github.com/spf13/cobra"
)

// NewSeedCmd copies a JSON question bank into the configured database.
func NewSeedCmd(configPath *string) *cobra.Command {
	var (
		file   string
		target string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a JSON question bank into Postgres or SQLite",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Bank.Path
			}
			if target == "" {
				target = cfg.Bank.Source
			}
			b, err := bank.LoadFile(file)
			if err != nil {
				return err
			}
			n, err := seedBank(cmd.Context(), cfg, target, b)
			if err != nil {
				return err
			}
			slog.Info("question bank seeded", "target", target, "topics", n, "file", file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "question bank JSON (defaults to bank.path)")
	cmd.Flags().StringVar(&target, "target", "", "postgres or sqlite (defaults to bank.source)")
	return cmd
}

func seedBank(ctx context.Context, cfg config.Config, target string, b bank.Bank) (int, error) {
	switch target {
	case config.BankSourcePostgres:
		db, err := openBunDB(cfg)
		if err != nil {
			return 0, err
		}
		defer db.Close()
		if err := runMigrations(ctx, db); err != nil {
			return 0, err
		}
		return pgbank.Seed(ctx, db, b)
	case config.BankSourceSQLite:
		store, err := sqlite.NewBankStore(cfg.Bank.SQLite)
		if err != nil {
			return 0, err
		}
		defer store.Close()
		return store.Seed(ctx, b)
	default:
		return 0, fmt.Errorf("cannot seed bank source %q", target)
	}
}
