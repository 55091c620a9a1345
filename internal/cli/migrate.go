package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AI2HU/bookapp/internal/db"
	"github.com/AI2HU/bookapp/internal/db/sqldb"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage relational schema migrations",
	Long:  `Apply or inspect the embedded golang-migrate migrations of the relational book table.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run all pending migrations",
	Long:  `Apply all pending migrations. 'bookapp serve' does this on startup as well.`,
	RunE:  runMigrateUp,
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current migration version",
	Long:  `Show the applied schema version of the relational store without changing it.`,
	RunE:  runMigrateVersion,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

// openSQL opens the relational store without applying migrations
func openSQL(ctx context.Context) (*sqldb.SQLDatabase, error) {
	store, err := sqldb.New(cfg.SQLDatabase.ToModel())
	if err != nil {
		return nil, err
	}
	if err := store.Open(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
	defer cancel()

	store, err := openSQL(ctx)
	if err != nil {
		return err
	}
	defer store.Disconnect(ctx)

	sqlDB, err := store.SQLDB()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Running %s migrations...\n", cfg.SQLDatabase.Provider)
	if err := db.RunMigrations(sqlDB, cfg.SQLDatabase.Provider); err != nil {
		fmt.Fprintln(out, FormatError("Migration failed"))
		return fmt.Errorf("migration failed: %w", err)
	}

	version, _, err := db.MigrationVersion(sqlDB, cfg.SQLDatabase.Provider)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, FormatSuccess(fmt.Sprintf("Migrations completed successfully! Schema version: %d", version)))
	return nil
}

func runMigrateVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
	defer cancel()

	store, err := openSQL(ctx)
	if err != nil {
		return err
	}
	defer store.Disconnect(ctx)

	sqlDB, err := store.SQLDB()
	if err != nil {
		return err
	}

	version, dirty, err := db.MigrationVersion(sqlDB, cfg.SQLDatabase.Provider)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, FormatLabelValue("Provider:", cfg.SQLDatabase.Provider))
	fmt.Fprintln(out, FormatLabelValue("Current migration version:", fmt.Sprintf("%d", version)))
	if dirty {
		fmt.Fprintln(out, FormatWarning("Schema is dirty: the last migration failed part-way"))
	}
	return nil
}
