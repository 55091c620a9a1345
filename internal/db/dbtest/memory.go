// Package dbtest provides in-memory book stores for handler and service tests.
package dbtest

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AI2HU/bookapp/internal/db"
	"github.com/AI2HU/bookapp/internal/models"
)

// SQLStore is an in-memory db.SQLDatabase with auto-increment ids
type SQLStore struct {
	mu     sync.Mutex
	rows   map[int64]models.Book
	nextID int64

	// Err, when set, is returned by every call
	Err error
	// Calls counts book operations that reached the store
	Calls int
	// LastDeadline reports whether the last call carried a deadline
	LastDeadline bool
}

// NewSQLStore creates an empty relational store
func NewSQLStore() *SQLStore {
	return &SQLStore{rows: make(map[int64]models.Book), nextID: 1}
}

func (s *SQLStore) Connect(ctx context.Context) error    { return s.Err }
func (s *SQLStore) Disconnect(ctx context.Context) error { return nil }
func (s *SQLStore) Ping(ctx context.Context) error       { return s.Err }

func (s *SQLStore) enter(ctx context.Context) error {
	s.Calls++
	_, s.LastDeadline = ctx.Deadline()
	return s.Err
}

func (s *SQLStore) CreateBook(ctx context.Context, item models.BookItem) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx); err != nil {
		return nil, err
	}

	book := models.Book{ID: s.nextID, Title: item.Title, Description: item.Description, Completed: item.Completed}
	s.rows[book.ID] = book
	s.nextID++
	return &book, nil
}

func (s *SQLStore) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx); err != nil {
		return nil, err
	}

	book, ok := s.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &book, nil
}

func (s *SQLStore) UpdateBook(ctx context.Context, id int64, item models.BookItem) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx); err != nil {
		return 0, err
	}

	if _, ok := s.rows[id]; !ok {
		return 0, nil
	}
	s.rows[id] = models.Book{ID: id, Title: item.Title, Description: item.Description, Completed: item.Completed}
	return 1, nil
}

func (s *SQLStore) DeleteBook(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx); err != nil {
		return 0, err
	}

	if _, ok := s.rows[id]; !ok {
		return 0, nil
	}
	delete(s.rows, id)
	return 1, nil
}

// Len returns the number of stored rows
func (s *SQLStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// DocumentStore is an in-memory db.NoSQLDatabase assigning ObjectID hex ids
type DocumentStore struct {
	mu   sync.Mutex
	docs map[string]models.BookDocument

	Err          error
	Calls        int
	LastDeadline bool
}

// NewDocumentStore creates an empty document store
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]models.BookDocument)}
}

func (s *DocumentStore) Connect(ctx context.Context) error    { return s.Err }
func (s *DocumentStore) Disconnect(ctx context.Context) error { return nil }
func (s *DocumentStore) Ping(ctx context.Context) error       { return s.Err }

func (s *DocumentStore) enter(ctx context.Context) error {
	s.Calls++
	_, s.LastDeadline = ctx.Deadline()
	return s.Err
}

func (s *DocumentStore) CreateBookDocument(ctx context.Context, item models.BookItem) (*models.BookDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx); err != nil {
		return nil, err
	}

	doc := models.BookDocument{
		ID:          primitive.NewObjectID().Hex(),
		Title:       item.Title,
		Description: item.Description,
		Completed:   item.Completed,
	}
	s.docs[doc.ID] = doc
	return &doc, nil
}

func (s *DocumentStore) GetBookDocument(ctx context.Context, id string) (*models.BookDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx); err != nil {
		return nil, err
	}

	doc, ok := s.docs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &doc, nil
}

func (s *DocumentStore) UpdateBookDocument(ctx context.Context, id string, item models.BookItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx); err != nil {
		return err
	}

	if _, ok := s.docs[id]; !ok {
		return db.ErrNotFound
	}
	s.docs[id] = models.BookDocument{ID: id, Title: item.Title, Description: item.Description, Completed: item.Completed}
	return nil
}

func (s *DocumentStore) DeleteBookDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx); err != nil {
		return err
	}

	if _, ok := s.docs[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// Len returns the number of stored documents
func (s *DocumentStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}
