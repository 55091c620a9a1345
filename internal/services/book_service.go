package services

import (
	"context"
	"time"

	"github.com/AI2HU/bookapp/internal/db"
	"github.com/AI2HU/bookapp/internal/models"
)

// BookService provides business logic over the relational and the
// document book stores. Every store call runs under the backend timeout.
type BookService struct {
	sql     db.SQLDatabase
	nosql   db.NoSQLDatabase
	timeout time.Duration

	// strictNotFound turns zero affected rows on relational update and
	// delete into db.ErrNotFound
	strictNotFound bool
}

// NewBookService creates a new book service
func NewBookService(sql db.SQLDatabase, nosql db.NoSQLDatabase, timeout time.Duration, strictNotFound bool) *BookService {
	return &BookService{
		sql:            sql,
		nosql:          nosql,
		timeout:        timeout,
		strictNotFound: strictNotFound,
	}
}

func (s *BookService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Relational book operations

// CreateBook inserts a row and returns it with its assigned id
func (s *BookService) CreateBook(ctx context.Context, item models.BookItem) (*models.Book, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.sql.CreateBook(ctx, item)
}

// GetBook retrieves a row by id
func (s *BookService) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.sql.GetBook(ctx, id)
}

// UpdateBook overwrites a row. A missing row is only an error in strict mode.
func (s *BookService) UpdateBook(ctx context.Context, id int64, item models.BookItem) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	affected, err := s.sql.UpdateBook(ctx, id, item)
	if err != nil {
		return err
	}
	return s.checkAffected(affected)
}

// DeleteBook removes a row. A missing row is only an error in strict mode.
func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	affected, err := s.sql.DeleteBook(ctx, id)
	if err != nil {
		return err
	}
	return s.checkAffected(affected)
}

func (s *BookService) checkAffected(affected int64) error {
	if affected == 0 && s.strictNotFound {
		return db.ErrNotFound
	}
	return nil
}

// Document book operations

// CreateBookDocument inserts a document and returns it with its hex id
func (s *BookService) CreateBookDocument(ctx context.Context, item models.BookItem) (*models.BookDocument, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.nosql.CreateBookDocument(ctx, item)
}

// GetBookDocument retrieves a document by id
func (s *BookService) GetBookDocument(ctx context.Context, id string) (*models.BookDocument, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.nosql.GetBookDocument(ctx, id)
}

// UpdateBookDocument overwrites the fields of a document
func (s *BookService) UpdateBookDocument(ctx context.Context, id string, item models.BookItem) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.nosql.UpdateBookDocument(ctx, id, item)
}

// DeleteBookDocument removes a document
func (s *BookService) DeleteBookDocument(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.nosql.DeleteBookDocument(ctx, id)
}
