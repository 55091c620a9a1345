package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/AI2HU/bookapp/internal/models"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig   `yaml:"server"`
	Auth          AuthConfig     `yaml:"auth"`
	SQLDatabase   DatabaseConfig `yaml:"sql_database"`   // relational book table
	NoSQLDatabase DatabaseConfig `yaml:"nosql_database"` // document book collection
	Monitor       MonitorConfig  `yaml:"monitor"`
	LogLevel      string         `yaml:"log_level"`
}

// ServerConfig represents the HTTP listener configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	BackendTimeout  time.Duration `yaml:"backend_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AuthConfig represents the credential gate configuration
type AuthConfig struct {
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password,omitempty"`
	PasswordHash  string        `yaml:"password_hash,omitempty"` // bcrypt, wins over password
	MaxFailures   int           `yaml:"max_failures"`            // burst of failed attempts per client IP, 0 disables
	FailureRefill time.Duration `yaml:"failure_refill"`          // time to regain one attempt
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Provider        string        `yaml:"provider"` // sqlite, postgres, mysql, mongodb
	URI             string        `yaml:"uri,omitempty"`
	Host            string        `yaml:"host,omitempty"`
	Port            string        `yaml:"port,omitempty"`
	User            string        `yaml:"user,omitempty"`
	Password        string        `yaml:"password,omitempty"`
	Database        string        `yaml:"database"`
	MaxOpenConns    int           `yaml:"max_open_conns,omitempty"`
	MaxIdleConns    int           `yaml:"max_idle_conns,omitempty"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime,omitempty"`
	StrictNotFound  bool          `yaml:"strict_not_found,omitempty"` // relational update/delete report 404 on zero rows
}

// MonitorConfig represents the periodic backend probe
type MonitorConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron spec, e.g. "@every 30s"
}

// Supported relational providers
const (
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
	ProviderMySQL    = "mysql"
	ProviderMongoDB  = "mongodb"
)

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8000",
			BackendTimeout:  5 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Username:      "admin",
			Password:      "password",
			FailureRefill: 6 * time.Second,
		},
		SQLDatabase: DatabaseConfig{
			Provider:        ProviderSQLite,
			Database:        "book_app.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
		},
		NoSQLDatabase: DatabaseConfig{
			Provider: ProviderMongoDB,
			URI:      "mongodb://localhost:27017/",
			Database: "book_db",
		},
		Monitor: MonitorConfig{
			Enabled:  true,
			Schedule: "@every 30s",
		},
		LogLevel: "info",
	}
}

// Load loads configuration from file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Resolve builds the effective configuration: defaults, then the config
// file when present, then environment variables.
func Resolve(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" && Exists(path) {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from environment variables
func (c *Config) ApplyEnv() {
	v := viper.New()
	v.AutomaticEnv()

	// SQL_HOST without SQL_DRIVER is the plain MySQL deployment
	inferMySQL := !v.IsSet("sql_driver") && v.IsSet("sql_host") && c.SQLDatabase.Provider == ProviderSQLite

	v.SetDefault("http_host", c.Server.Host)
	v.SetDefault("http_port", c.Server.Port)
	v.SetDefault("backend_timeout", c.Server.BackendTimeout)
	v.SetDefault("log_level", c.LogLevel)

	v.SetDefault("bookapp_username", c.Auth.Username)
	v.SetDefault("bookapp_password", c.Auth.Password)
	v.SetDefault("bookapp_password_hash", c.Auth.PasswordHash)
	v.SetDefault("bookapp_max_failures", c.Auth.MaxFailures)

	v.SetDefault("sql_driver", c.SQLDatabase.Provider)
	v.SetDefault("sql_dsn", c.SQLDatabase.URI)
	v.SetDefault("sql_host", c.SQLDatabase.Host)
	v.SetDefault("sql_port", c.SQLDatabase.Port)
	v.SetDefault("sql_user", c.SQLDatabase.User)
	v.SetDefault("sql_password", c.SQLDatabase.Password)
	v.SetDefault("sql_database", c.SQLDatabase.Database)
	v.SetDefault("sql_strict_not_found", c.SQLDatabase.StrictNotFound)

	v.SetDefault("mongo_uri", c.NoSQLDatabase.URI)
	v.SetDefault("mongo_database", c.NoSQLDatabase.Database)

	c.Server.Host = v.GetString("http_host")
	c.Server.Port = v.GetString("http_port")
	c.Server.BackendTimeout = v.GetDuration("backend_timeout")
	c.LogLevel = v.GetString("log_level")

	c.Auth.Username = v.GetString("bookapp_username")
	c.Auth.Password = v.GetString("bookapp_password")
	c.Auth.PasswordHash = v.GetString("bookapp_password_hash")
	c.Auth.MaxFailures = v.GetInt("bookapp_max_failures")

	c.SQLDatabase.Provider = v.GetString("sql_driver")
	c.SQLDatabase.URI = v.GetString("sql_dsn")
	c.SQLDatabase.Host = v.GetString("sql_host")
	c.SQLDatabase.Port = v.GetString("sql_port")
	c.SQLDatabase.User = v.GetString("sql_user")
	c.SQLDatabase.Password = v.GetString("sql_password")
	c.SQLDatabase.Database = v.GetString("sql_database")
	c.SQLDatabase.StrictNotFound = v.GetBool("sql_strict_not_found")
	if inferMySQL {
		c.SQLDatabase.Provider = ProviderMySQL
	}

	c.NoSQLDatabase.URI = v.GetString("mongo_uri")
	c.NoSQLDatabase.Database = v.GetString("mongo_database")
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	switch c.SQLDatabase.Provider {
	case ProviderSQLite, ProviderPostgres, ProviderMySQL:
	default:
		return fmt.Errorf("unsupported sql_database provider: %s", c.SQLDatabase.Provider)
	}
	if c.SQLDatabase.Provider == ProviderSQLite && (c.SQLDatabase.Host != "" || c.SQLDatabase.User != "") {
		return fmt.Errorf("sql_database host and user need a server provider (mysql or postgres), not sqlite")
	}
	if c.NoSQLDatabase.Provider != ProviderMongoDB {
		return fmt.Errorf("unsupported nosql_database provider: %s", c.NoSQLDatabase.Provider)
	}
	if c.NoSQLDatabase.URI == "" {
		return fmt.Errorf("nosql_database uri is required")
	}
	if c.Auth.Username == "" {
		return fmt.Errorf("auth username is required")
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return fmt.Errorf("auth password or password_hash is required")
	}
	if c.Auth.MaxFailures > 0 && c.Auth.FailureRefill <= 0 {
		return fmt.Errorf("auth failure_refill must be positive when max_failures is set")
	}
	if c.Server.BackendTimeout <= 0 {
		return fmt.Errorf("server backend_timeout must be positive")
	}
	return nil
}

// Address returns the host:port the HTTP server listens on
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// DSN returns the driver connection string for a relational provider.
// An explicit URI always wins.
func (d DatabaseConfig) DSN() string {
	if d.URI != "" {
		return d.URI
	}

	switch d.Provider {
	case ProviderPostgres:
		port := d.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			d.Host, port, d.User, d.Password, d.Database)
	case ProviderMySQL:
		port := d.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&clientFoundRows=true",
			d.User, d.Password, net.JoinHostPort(d.Host, port), d.Database)
	default:
		return d.Database
	}
}

// ToModel converts the section into the database layer configuration
func (d DatabaseConfig) ToModel() *models.Config {
	return &models.Config{
		Provider:        d.Provider,
		URI:             d.DSN(),
		Database:        d.Database,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bookapp/config.yaml"
	}
	return filepath.Join(home, ".bookapp", "config.yaml")
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
