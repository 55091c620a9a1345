package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AI2HU/bookapp/internal/config"
	"github.com/AI2HU/bookapp/internal/db"
	"github.com/AI2HU/bookapp/internal/db/mongodb"
	"github.com/AI2HU/bookapp/internal/db/sqldb"
	"github.com/AI2HU/bookapp/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bookapp",
	Short: "Book CRUD service over a relational and a document store",
	Long: `Bookapp serves a small "book" resource over HTTP. Every book route exists
twice: once backed by a relational table (SQLite, PostgreSQL or MySQL) and once
backed by a MongoDB collection. All book routes require HTTP Basic credentials.

Configuration is read from the config file (see 'bookapp init') and can be
overridden with environment variables such as SQL_HOST or MONGO_URI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// These commands work without a resolved configuration
		if cmd.Name() == "init" || cmd.Name() == "hash-password" {
			return nil
		}

		var err error
		cfg, err = config.Resolve(configPath())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger.Init(logger.ParseLogLevel(cfg.LogLevel), os.Stdout)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.GetLogger().Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.bookapp/config.yaml)")

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

// configPath picks the config file: flag, then BOOKAPP_CONFIG_PATH, then the default
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if envPath := os.Getenv("BOOKAPP_CONFIG_PATH"); envPath != "" {
		return envPath
	}
	return config.GetConfigPath()
}

// newStores creates both stores from the configuration without connecting
func newStores(cfg *config.Config) (*sqldb.SQLDatabase, *mongodb.MongoDB, error) {
	sqlStore, err := sqldb.New(cfg.SQLDatabase.ToModel())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create sql database: %w", err)
	}

	docStore, err := mongodb.New(cfg.NoSQLDatabase.ToModel())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create nosql database: %w", err)
	}

	return sqlStore, docStore, nil
}

// newHybrid wraps both stores from the configuration
func newHybrid(cfg *config.Config) (*db.Hybrid, error) {
	sqlStore, docStore, err := newStores(cfg)
	if err != nil {
		return nil, err
	}
	return db.New(sqlStore, docStore), nil
}
