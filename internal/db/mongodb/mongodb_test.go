package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/AI2HU/bookapp/internal/db"
	"github.com/AI2HU/bookapp/internal/models"
)

func newTestStore(mt *mtest.T) *MongoDB {
	return &MongoDB{
		database: mt.DB,
		config:   &models.Config{Provider: "mongodb", URI: "mongodb://localhost:27017/", Database: mt.DB.Name()},
	}
}

func bookDoc(id interface{}, item models.BookItem) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: item.Title},
		{Key: "description", Value: item.Description},
		{Key: "completed", Value: item.Completed},
	}
}

func TestBookDocuments(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	item := models.BookItem{Title: "T", Description: "D", Completed: false}

	mt.Run("create assigns an ObjectID", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		doc, err := store.CreateBookDocument(ctx, item)
		require.NoError(mt, err)

		_, err = primitive.ObjectIDFromHex(doc.ID)
		assert.NoError(mt, err)
		assert.Equal(mt, item, doc.Item())

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)
	})

	mt.Run("create then read round-trips the hex id", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		created, err := store.CreateBookDocument(ctx, item)
		require.NoError(mt, err)

		objectID, err := primitive.ObjectIDFromHex(created.ID)
		require.NoError(mt, err)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "book_db.book", mtest.FirstBatch, bookDoc(objectID, item)))

		mt.ClearEvents()
		retrieved, err := store.GetBookDocument(ctx, created.ID)
		require.NoError(mt, err)
		assert.Equal(mt, created, retrieved)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		candidates, err := started.Command.Lookup("filter", "_id", "$in").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, candidates, 2)
		filterID, ok := candidates[0].ObjectIDOK()
		require.True(mt, ok, "lookup must use the decoded ObjectID")
		assert.Equal(mt, objectID, filterID)
		assert.Equal(mt, objectID.Hex(), candidates[1].StringValue())
	})

	mt.Run("read reaches hex-shaped string ids", func(mt *mtest.T) {
		store := newTestStore(mt)
		hexLike := "0123456789abcdef01234567"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "book_db.book", mtest.FirstBatch, bookDoc(hexLike, item)))

		retrieved, err := store.GetBookDocument(ctx, hexLike)
		require.NoError(mt, err)
		assert.Equal(mt, hexLike, retrieved.ID)
		assert.Equal(mt, item, retrieved.Item())
	})

	mt.Run("read falls back to string ids", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "book_db.book", mtest.FirstBatch, bookDoc("legacy-id", item)))

		retrieved, err := store.GetBookDocument(ctx, "legacy-id")
		require.NoError(mt, err)
		assert.Equal(mt, "legacy-id", retrieved.ID)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "legacy-id", started.Command.Lookup("filter", "_id").StringValue())
	})

	mt.Run("read missing document", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "book_db.book", mtest.FirstBatch))

		_, err := store.GetBookDocument(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, db.ErrNotFound)
	})

	mt.Run("read command failure is not a miss", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))

		_, err := store.GetBookDocument(ctx, primitive.NewObjectID().Hex())
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, db.ErrNotFound)
	})

	mt.Run("update existing document", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := store.UpdateBookDocument(ctx, primitive.NewObjectID().Hex(), item)
		assert.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
	})

	mt.Run("update with identical values is not a miss", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		err := store.UpdateBookDocument(ctx, primitive.NewObjectID().Hex(), item)
		assert.NoError(mt, err)
	})

	mt.Run("update missing document", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := store.UpdateBookDocument(ctx, "nonexistent-id", item)
		assert.ErrorIs(mt, err, db.ErrNotFound)
	})

	mt.Run("delete existing document", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := store.DeleteBookDocument(ctx, primitive.NewObjectID().Hex())
		assert.NoError(mt, err)
	})

	mt.Run("delete missing document", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := store.DeleteBookDocument(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, db.ErrNotFound)
	})
}

func TestNotConnected(t *testing.T) {
	store, err := New(&models.Config{URI: "mongodb://localhost:27017/", Database: "book_db"})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.CreateBookDocument(ctx, models.BookItem{})
	assert.ErrorIs(t, err, db.ErrNotConnected)
	_, err = store.GetBookDocument(ctx, "x")
	assert.ErrorIs(t, err, db.ErrNotConnected)
	assert.ErrorIs(t, store.UpdateBookDocument(ctx, "x", models.BookItem{}), db.ErrNotConnected)
	assert.ErrorIs(t, store.DeleteBookDocument(ctx, "x"), db.ErrNotConnected)
	assert.ErrorIs(t, store.Ping(ctx), db.ErrNotConnected)
	assert.NoError(t, store.Disconnect(ctx))
}

func TestNewRequiresURI(t *testing.T) {
	_, err := New(&models.Config{Database: "book_db"})
	assert.Error(t, err)
}

func TestIDFilter(t *testing.T) {
	objectID := primitive.NewObjectID()

	assert.Equal(t, bson.M{"_id": bson.M{"$in": bson.A{objectID, objectID.Hex()}}}, idFilter(objectID.Hex()))
	assert.Equal(t, bson.M{"_id": "not-hex"}, idFilter("not-hex"))
}

func TestIDString(t *testing.T) {
	objectID := primitive.NewObjectID()

	got, err := idString(objectID)
	require.NoError(t, err)
	assert.Equal(t, objectID.Hex(), got)

	got, err = idString("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", got)

	_, err = idString(42)
	assert.Error(t, err)
}

func TestGetBool(t *testing.T) {
	assert.True(t, getBool(bson.M{"completed": true}, "completed"))
	assert.True(t, getBool(bson.M{"completed": int32(1)}, "completed"))
	assert.False(t, getBool(bson.M{"completed": int64(0)}, "completed"))
	assert.False(t, getBool(bson.M{}, "completed"))
}
