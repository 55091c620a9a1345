package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	connectErr   error
	pingErr      error
	connected    bool
	disconnected bool
}

func (f *fakeStore) Connect(ctx context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeStore) Disconnect(ctx context.Context) error {
	f.disconnected = true
	return nil
}

func (f *fakeStore) Ping(ctx context.Context) error {
	return f.pingErr
}

type fakeSQL struct {
	fakeStore
	SQLDatabase
}

type fakeNoSQL struct {
	fakeStore
	NoSQLDatabase
}

// Resolve the ambiguity between the embedded fake and the interface
func (f *fakeSQL) Connect(ctx context.Context) error      { return f.fakeStore.Connect(ctx) }
func (f *fakeSQL) Disconnect(ctx context.Context) error   { return f.fakeStore.Disconnect(ctx) }
func (f *fakeSQL) Ping(ctx context.Context) error         { return f.fakeStore.Ping(ctx) }
func (f *fakeNoSQL) Connect(ctx context.Context) error    { return f.fakeStore.Connect(ctx) }
func (f *fakeNoSQL) Disconnect(ctx context.Context) error { return f.fakeStore.Disconnect(ctx) }
func (f *fakeNoSQL) Ping(ctx context.Context) error       { return f.fakeStore.Ping(ctx) }

func TestHybridConnect(t *testing.T) {
	sql := &fakeSQL{}
	nosql := &fakeNoSQL{}
	h := New(sql, nosql)

	assert.NoError(t, h.Connect(context.Background()))
	assert.True(t, sql.connected)
	assert.True(t, nosql.connected)
}

func TestHybridConnectRollsBackSQL(t *testing.T) {
	sql := &fakeSQL{}
	nosql := &fakeNoSQL{fakeStore: fakeStore{connectErr: errors.New("refused")}}
	h := New(sql, nosql)

	err := h.Connect(context.Background())
	assert.ErrorContains(t, err, "nosql database")
	assert.True(t, sql.disconnected)
}

func TestHybridCheck(t *testing.T) {
	pingErr := errors.New("down")
	h := New(&fakeSQL{}, &fakeNoSQL{fakeStore: fakeStore{pingErr: pingErr}})

	checks := h.Check(context.Background())
	assert.NoError(t, checks["sql_database"])
	assert.ErrorIs(t, checks["nosql_database"], pingErr)

	err := h.Ping(context.Background())
	assert.ErrorIs(t, err, pingErr)
	assert.ErrorContains(t, err, "nosql_database")
}

func TestHybridDisconnect(t *testing.T) {
	sql := &fakeSQL{}
	nosql := &fakeNoSQL{}
	h := New(sql, nosql)

	assert.NoError(t, h.Disconnect(context.Background()))
	assert.True(t, sql.disconnected)
	assert.True(t, nosql.disconnected)
}

func TestRunMigrationsUnsupportedProvider(t *testing.T) {
	err := RunMigrations(nil, "oracle")
	assert.ErrorContains(t, err, "unsupported migration provider")
}
