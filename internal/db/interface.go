package db

import (
	"context"
	"errors"

	"github.com/AI2HU/bookapp/internal/models"
)

var (
	// ErrNotFound is returned when no record matches an identifier
	ErrNotFound = errors.New("item not found")

	// ErrNotConnected is returned by operations issued before Connect
	ErrNotConnected = errors.New("not connected to database")
)

// Connector is the connection lifecycle shared by both stores
type Connector interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error
}

// SQLDatabase defines the relational book table operations
type SQLDatabase interface {
	Connector

	CreateBook(ctx context.Context, item models.BookItem) (*models.Book, error)
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	// UpdateBook and DeleteBook report the number of affected rows;
	// zero is not an error at this layer.
	UpdateBook(ctx context.Context, id int64, item models.BookItem) (int64, error)
	DeleteBook(ctx context.Context, id int64) (int64, error)
}

// NoSQLDatabase defines the document book collection operations
type NoSQLDatabase interface {
	Connector

	CreateBookDocument(ctx context.Context, item models.BookItem) (*models.BookDocument, error)
	GetBookDocument(ctx context.Context, id string) (*models.BookDocument, error)
	UpdateBookDocument(ctx context.Context, id string, item models.BookItem) error
	DeleteBookDocument(ctx context.Context, id string) error
}
