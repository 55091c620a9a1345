package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/bookapp/internal/db"
	"github.com/AI2HU/bookapp/internal/db/dbtest"
	"github.com/AI2HU/bookapp/internal/models"
)

func newTestService(strict bool) (*BookService, *dbtest.SQLStore, *dbtest.DocumentStore) {
	sqlStore := dbtest.NewSQLStore()
	docStore := dbtest.NewDocumentStore()
	return NewBookService(sqlStore, docStore, 5*time.Second, strict), sqlStore, docStore
}

func TestBookService_RelationalRoundTrip(t *testing.T) {
	service, sqlStore, _ := newTestService(false)
	ctx := context.Background()

	item := models.BookItem{Title: "T", Description: "D", Completed: false}
	created, err := service.CreateBook(ctx, item)
	require.NoError(t, err)
	assert.True(t, sqlStore.LastDeadline, "store calls run under the backend timeout")

	got, err := service.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, item, got.Item())

	updated := models.BookItem{Title: "T2", Description: "D2", Completed: true}
	require.NoError(t, service.UpdateBook(ctx, created.ID, updated))

	got, err = service.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got.Item())

	require.NoError(t, service.DeleteBook(ctx, created.ID))
	_, err = service.GetBook(ctx, created.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestBookService_MissingRowCompatibilityMode(t *testing.T) {
	service, _, _ := newTestService(false)
	ctx := context.Background()

	assert.NoError(t, service.UpdateBook(ctx, 999999, models.BookItem{Title: "T"}))
	assert.NoError(t, service.DeleteBook(ctx, 999999))
}

func TestBookService_MissingRowStrictMode(t *testing.T) {
	service, _, _ := newTestService(true)
	ctx := context.Background()

	assert.ErrorIs(t, service.UpdateBook(ctx, 999999, models.BookItem{Title: "T"}), db.ErrNotFound)
	assert.ErrorIs(t, service.DeleteBook(ctx, 999999), db.ErrNotFound)

	created, err := service.CreateBook(ctx, models.BookItem{Title: "T"})
	require.NoError(t, err)
	assert.NoError(t, service.UpdateBook(ctx, created.ID, models.BookItem{Title: "T"}))
	assert.NoError(t, service.DeleteBook(ctx, created.ID))
}

func TestBookService_DocumentRoundTrip(t *testing.T) {
	service, _, docStore := newTestService(false)
	ctx := context.Background()

	item := models.BookItem{Title: "T", Description: "D", Completed: true}
	created, err := service.CreateBookDocument(ctx, item)
	require.NoError(t, err)
	assert.True(t, docStore.LastDeadline)

	got, err := service.GetBookDocument(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	require.NoError(t, service.UpdateBookDocument(ctx, created.ID, models.BookItem{Title: "X"}))
	require.NoError(t, service.DeleteBookDocument(ctx, created.ID))

	assert.ErrorIs(t, service.UpdateBookDocument(ctx, created.ID, item), db.ErrNotFound)
	assert.ErrorIs(t, service.DeleteBookDocument(ctx, created.ID), db.ErrNotFound)
}

func TestBookService_PropagatesStoreErrors(t *testing.T) {
	service, sqlStore, docStore := newTestService(true)
	ctx := context.Background()

	boom := errors.New("connection reset")
	sqlStore.Err = boom
	docStore.Err = boom

	_, err := service.CreateBook(ctx, models.BookItem{})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, service.UpdateBook(ctx, 1, models.BookItem{}), boom)
	assert.ErrorIs(t, service.DeleteBook(ctx, 1), boom)
	_, err = service.GetBookDocument(ctx, "x")
	assert.ErrorIs(t, err, boom)
}

func TestBookService_NoTimeout(t *testing.T) {
	sqlStore := dbtest.NewSQLStore()
	service := NewBookService(sqlStore, dbtest.NewDocumentStore(), 0, false)

	_, err := service.CreateBook(context.Background(), models.BookItem{Title: "T"})
	require.NoError(t, err)
	assert.False(t, sqlStore.LastDeadline)
}
