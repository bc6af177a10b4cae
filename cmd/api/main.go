package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cloud-ide/backend/internal/config"
	"cloud-ide/backend/internal/database"
	"cloud-ide/backend/internal/database/postgres"
	"cloud-ide/backend/internal/database/sqlite"
	"cloud-ide/backend/internal/logging"
)

func main() {
	loaded := config.LoadDotEnv(".env", "../../.env")
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:          "cloud-ide",
		Short:        "Cloud IDE backend: projects, file trees and conversations",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v, loaded)
		},
	}
	rootCmd.PersistentFlags().String("database-driver", "", "database driver: postgres or sqlite")
	rootCmd.PersistentFlags().String("database-url", "", "database connection string or sqlite file")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")
	bindFlags(v, rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCmd(v, loaded), migrateCmd(v), tokenCmd(v))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bindFlags binds every flag in fs to the viper key with dashes turned into
// underscores, so DATABASE_URL and --database-url share one setting. Unset
// flags fall back to the environment and the defaults.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
			panic(err)
		}
	})
}

func loadConfig(v *viper.Viper) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	return cfg, logger, nil
}

// openStore connects to the configured database and applies the schema.
func openStore(ctx context.Context, cfg *config.Config) (database.Store, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	case "sqlite":
		return sqlite.Open(ctx, cfg.DatabaseURL)
	default:
		return nil, errors.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}
