package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AI2HU/bookapp/internal/db"
	"github.com/AI2HU/bookapp/internal/models"
)

// MongoDB implements db.NoSQLDatabase for MongoDB
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	config   *models.Config
}

const collBooks = "book"

// New creates a new MongoDB database instance
func New(config *models.Config) (*MongoDB, error) {
	if config.URI == "" {
		return nil, fmt.Errorf("mongodb uri is required")
	}
	return &MongoDB{
		config: config,
	}, nil
}

// Connect establishes connection to MongoDB
func (m *MongoDB) Connect(ctx context.Context) error {
	clientOptions := options.Client().ApplyURI(m.config.URI)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.database = client.Database(m.config.Database)

	return nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	return nil
}

// Ping checks the database connection
func (m *MongoDB) Ping(ctx context.Context) error {
	if m.client == nil {
		return db.ErrNotConnected
	}
	return m.client.Ping(ctx, nil)
}

func (m *MongoDB) books() (*mongo.Collection, error) {
	if m.database == nil {
		return nil, db.ErrNotConnected
	}
	return m.database.Collection(collBooks), nil
}

// idFilter matches an _id given in its wire form. A 24-char hex string
// matches either the ObjectID it encodes or the same string stored verbatim;
// anything else is matched verbatim only.
func idFilter(id string) bson.M {
	if objectID, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{objectID, id}}}
	}
	return bson.M{"_id": id}
}

// idString renders an _id back into its wire form
func idString(v interface{}) (string, error) {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case string:
		return id, nil
	default:
		return "", fmt.Errorf("invalid _id type %T in book document", v)
	}
}

// CreateBookDocument inserts a document and lets the store assign its _id
func (m *MongoDB) CreateBookDocument(ctx context.Context, item models.BookItem) (*models.BookDocument, error) {
	coll, err := m.books()
	if err != nil {
		return nil, err
	}

	// No _id is sent, whatever the client supplied
	doc := bson.D{
		{Key: "title", Value: item.Title},
		{Key: "description", Value: item.Description},
		{Key: "completed", Value: item.Completed},
	}

	result, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert book document: %w", err)
	}

	id, err := idString(result.InsertedID)
	if err != nil {
		return nil, err
	}

	return &models.BookDocument{
		ID:          id,
		Title:       item.Title,
		Description: item.Description,
		Completed:   item.Completed,
	}, nil
}

// GetBookDocument retrieves a book document by its wire id
func (m *MongoDB) GetBookDocument(ctx context.Context, id string) (*models.BookDocument, error) {
	coll, err := m.books()
	if err != nil {
		return nil, err
	}

	var doc bson.M
	err = coll.FindOne(ctx, idFilter(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book document %s: %w", id, err)
	}

	docID, err := idString(doc["_id"])
	if err != nil {
		return nil, err
	}

	return &models.BookDocument{
		ID:          docID,
		Title:       getString(doc, "title"),
		Description: getString(doc, "description"),
		Completed:   getBool(doc, "completed"),
	}, nil
}

// UpdateBookDocument replaces the three fields of a book document
func (m *MongoDB) UpdateBookDocument(ctx context.Context, id string, item models.BookItem) error {
	coll, err := m.books()
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"title":       item.Title,
			"description": item.Description,
			"completed":   item.Completed,
		},
	}

	result, err := coll.UpdateOne(ctx, idFilter(id), update)
	if err != nil {
		return fmt.Errorf("failed to update book document %s: %w", id, err)
	}

	// Matched, not modified: rewriting identical values is still a hit
	if result.MatchedCount == 0 {
		return db.ErrNotFound
	}

	return nil
}

// DeleteBookDocument deletes a book document by its wire id
func (m *MongoDB) DeleteBookDocument(ctx context.Context, id string) error {
	coll, err := m.books()
	if err != nil {
		return err
	}

	result, err := coll.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("failed to delete book document %s: %w", id, err)
	}

	if result.DeletedCount == 0 {
		return db.ErrNotFound
	}

	return nil
}

// Helper functions for safe field extraction
func getString(doc bson.M, key string) string {
	if val, ok := doc[key]; ok && val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getBool(doc bson.M, key string) bool {
	if val, ok := doc[key]; ok && val != nil {
		switch b := val.(type) {
		case bool:
			return b
		case int32:
			return b != 0
		case int64:
			return b != 0
		}
	}
	return false
}
