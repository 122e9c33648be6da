package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/decisiontree/internal/core/config"
	"github.com/solatis/decisiontree/internal/core/db"
	"github.com/solatis/decisiontree/internal/core/logging"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "decisiontree",
	Short:         "Decision tree evaluator",
	Long:          `decisiontree evaluates JSON records against nested rule trees, locally or as a gRPC service.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

// setup loads config and applies flag overrides; flags beat env and file.
func setup(cmd *cobra.Command) error {
	loaded, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db-url") {
		loaded.DatabaseURL = dbURL
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		loaded.LogFormat = logFormat
	}

	l, err := logging.New(cmd.ErrOrStderr(), loaded.LogLevel, loaded.LogFormat)
	if err != nil {
		return err
	}

	cfg = loaded
	logger = l
	slog.SetDefault(l)
	return nil
}

// openDatabase connects to the configured database and loads named queries.
func openDatabase(ctx context.Context) (*sqlx.DB, *db.Queries, error) {
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return database, queries, nil
}
