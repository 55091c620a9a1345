package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AI2HU/bookapp/internal/auth"
	"github.com/AI2HU/bookapp/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize bookapp configuration",
	Long:  `Interactive wizard to set up the relational store, the document store and the API credentials.`,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	p := newPrompter(cmd.InOrStdin(), out)

	fmt.Fprintln(out, FormatHeader("Welcome to Bookapp Setup"))
	fmt.Fprintln(out, FormatHeader("========================"))
	fmt.Fprintln(out)

	path := configPath()
	if config.Exists(path) {
		fmt.Fprintf(out, "Configuration file already exists at: %s\n", path)
		overwrite, err := p.confirm("Do you want to overwrite it?", false)
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	newCfg := config.DefaultConfig()
	if err := runInitWizard(p, out, newCfg); err != nil {
		return err
	}
	if err := newCfg.Validate(); err != nil {
		return err
	}

	testConn, err := p.confirm("Test database connections now?", true)
	if err != nil {
		return err
	}
	if testConn {
		if err := testConnections(out, newCfg); err != nil {
			save, err := p.confirm("Save the configuration anyway?", false)
			if err != nil {
				return err
			}
			if !save {
				fmt.Fprintln(out, "Setup cancelled.")
				return nil
			}
		}
	}

	fmt.Fprintln(out, "\nSaving configuration...")
	if err := newCfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintln(out, FormatSuccess("Configuration saved to: "+path))

	fmt.Fprintln(out, "\nConfiguration Summary")
	fmt.Fprintln(out, "=====================")
	fmt.Fprintln(out, FormatLabelValue("Relational store:", newCfg.SQLDatabase.Provider))
	fmt.Fprintln(out, FormatLabelValue("Document store:", newCfg.NoSQLDatabase.URI+" ("+newCfg.NoSQLDatabase.Database+")"))
	fmt.Fprintln(out, FormatLabelValue("API user:", newCfg.Auth.Username))
	fmt.Fprintln(out, FormatLabelValue("Listen address:", newCfg.Server.Address()))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Apply the relational schema: bookapp migrate up")
	fmt.Fprintln(out, "  2. Start the server:            bookapp serve")

	return nil
}

// runInitWizard fills cfg from the answers to the setup questions
func runInitWizard(p *prompter, out io.Writer, cfg *config.Config) error {
	var err error

	fmt.Fprintln(out, "\nRelational Store")
	fmt.Fprintln(out, "----------------")

	sql := &cfg.SQLDatabase
	sql.Provider, err = p.choice("Provider", []string{config.ProviderSQLite, config.ProviderPostgres, config.ProviderMySQL}, sql.Provider)
	if err != nil {
		return err
	}

	switch sql.Provider {
	case config.ProviderSQLite:
		if sql.Database, err = p.optional("Database file", sql.Database); err != nil {
			return err
		}
	default:
		if sql.Host, err = p.optional("Host", "localhost"); err != nil {
			return err
		}
		defaultPort := "5432"
		if sql.Provider == config.ProviderMySQL {
			defaultPort = "3306"
		}
		if sql.Port, err = p.optional("Port", defaultPort); err != nil {
			return err
		}
		if sql.User, err = p.required("User"); err != nil {
			return err
		}
		if sql.Password, err = p.optional("Password", ""); err != nil {
			return err
		}
		if sql.Database, err = p.optional("Database name", "book_app"); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "\nDocument Store")
	fmt.Fprintln(out, "--------------")

	nosql := &cfg.NoSQLDatabase
	if nosql.URI, err = p.optional("MongoDB URI", nosql.URI); err != nil {
		return err
	}
	if nosql.Database, err = p.optional("Database name", nosql.Database); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nAPI Credentials")
	fmt.Fprintln(out, "---------------")

	if cfg.Auth.Username, err = p.optional("Username", cfg.Auth.Username); err != nil {
		return err
	}
	password, err := p.required("Password")
	if err != nil {
		return err
	}

	hashIt, err := p.confirm("Store the password as a bcrypt hash?", true)
	if err != nil {
		return err
	}
	if hashIt {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		cfg.Auth.PasswordHash = hash
		cfg.Auth.Password = ""
	} else {
		cfg.Auth.Password = password
		cfg.Auth.PasswordHash = ""
	}

	return nil
}

// testConnections connects to both stores once and reports the outcome
func testConnections(out io.Writer, cfg *config.Config) error {
	fmt.Fprintln(out, "\nTesting database connections...")

	sqlStore, docStore, err := newStores(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	// Open only: init never changes the schema
	if err := sqlStore.Open(ctx); err != nil {
		fmt.Fprintln(out, FormatError(fmt.Sprintf("Relational store: %v", err)))
		return err
	}
	defer sqlStore.Disconnect(ctx)
	fmt.Fprintln(out, FormatSuccess("Relational store connection successful!"))

	if err := docStore.Connect(ctx); err != nil {
		fmt.Fprintln(out, FormatError(fmt.Sprintf("Document store: %v", err)))
		return err
	}
	defer docStore.Disconnect(ctx)
	fmt.Fprintln(out, FormatSuccess("Document store connection successful!"))

	return nil
}
