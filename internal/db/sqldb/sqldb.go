package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/AI2HU/bookapp/internal/db"
	"github.com/AI2HU/bookapp/internal/logger"
	"github.com/AI2HU/bookapp/internal/models"
)

// SQLDatabase implements db.SQLDatabase over gorm.
// The pool behind gorm is shared by all requests.
type SQLDatabase struct {
	db     *gorm.DB
	config *models.Config
}

// New creates a new relational database instance
func New(config *models.Config) (*SQLDatabase, error) {
	switch config.Provider {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported sql database provider: %s", config.Provider)
	}

	return &SQLDatabase{
		config: config,
	}, nil
}

// Connect opens the pool and applies pending migrations
func (s *SQLDatabase) Connect(ctx context.Context) error {
	if err := s.Open(ctx); err != nil {
		return err
	}

	sqlDB, err := s.SQLDB()
	if err != nil {
		return err
	}
	if err := db.RunMigrations(sqlDB, s.config.Provider); err != nil {
		_ = sqlDB.Close()
		s.db = nil
		return err
	}
	return nil
}

// Open opens and verifies the pool without touching the schema
func (s *SQLDatabase) Open(ctx context.Context) error {
	dialector, err := s.dialector()
	if err != nil {
		return err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(logger.GetLogger(), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", s.config.Provider, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("failed to get connection pool: %w", err)
	}
	s.configurePool(sqlDB)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("failed to ping %s database: %w", s.config.Provider, err)
	}

	s.db = gdb
	return nil
}

// dialector picks the gorm driver for the provider
func (s *SQLDatabase) dialector() (gorm.Dialector, error) {
	switch s.config.Provider {
	case "postgres":
		return postgres.Open(s.config.URI), nil
	case "mysql":
		return mysql.Open(s.config.URI), nil
	default:
		path, err := sqlitePath(s.config.URI)
		if err != nil {
			return nil, err
		}
		return sqlite.Open(path), nil
	}
}

// configurePool applies the pool limits. An in-memory SQLite database
// lives in a single connection, so the pool is pinned to one.
func (s *SQLDatabase) configurePool(sqlDB *sql.DB) {
	if s.config.Provider == "sqlite" && strings.Contains(s.config.URI, ":memory:") {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		return
	}

	if s.config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(s.config.MaxOpenConns)
	}
	if s.config.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(s.config.MaxIdleConns)
	}
	if s.config.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(s.config.ConnMaxLifetime)
	}
}

// sqlitePath expands ~ and relative paths and makes sure the directory exists
func sqlitePath(uri string) (string, error) {
	if uri == "" {
		return "", fmt.Errorf("sqlite database path is empty")
	}
	if strings.Contains(uri, ":memory:") || strings.HasPrefix(uri, "file:") {
		return uri, nil
	}

	dbPath := uri
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	} else if !filepath.IsAbs(dbPath) {
		absPath, err := filepath.Abs(dbPath)
		if err != nil {
			return "", fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		dbPath = absPath
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return dbPath, nil
}

// Disconnect closes the pool
func (s *SQLDatabase) Disconnect(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection
func (s *SQLDatabase) Ping(ctx context.Context) error {
	sqlDB, err := s.SQLDB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// SQLDB exposes the underlying pool
func (s *SQLDatabase) SQLDB() (*sql.DB, error) {
	if s.db == nil {
		return nil, db.ErrNotConnected
	}
	return s.db.DB()
}

// Book operations

// CreateBook inserts one row and returns it with its assigned id
func (s *SQLDatabase) CreateBook(ctx context.Context, item models.BookItem) (*models.Book, error) {
	if s.db == nil {
		return nil, db.ErrNotConnected
	}

	book := &models.Book{
		Title:       item.Title,
		Description: item.Description,
		Completed:   item.Completed,
	}
	if err := s.db.WithContext(ctx).Create(book).Error; err != nil {
		return nil, fmt.Errorf("failed to insert book: %w", err)
	}
	return book, nil
}

// GetBook retrieves a book by id
func (s *SQLDatabase) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	if s.db == nil {
		return nil, db.ErrNotConnected
	}

	var book models.Book
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}
	return &book, nil
}

// UpdateBook overwrites all three fields of the row
func (s *SQLDatabase) UpdateBook(ctx context.Context, id int64, item models.BookItem) (int64, error) {
	if s.db == nil {
		return 0, db.ErrNotConnected
	}

	// A map is used so false and empty values are written too
	result := s.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":       item.Title,
			"description": item.Description,
			"completed":   item.Completed,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update book %d: %w", id, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteBook removes the row if present
func (s *SQLDatabase) DeleteBook(ctx context.Context, id int64) (int64, error) {
	if s.db == nil {
		return 0, db.ErrNotConnected
	}

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Book{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete book %d: %w", id, result.Error)
	}
	return result.RowsAffected, nil
}
