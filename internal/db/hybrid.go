package db

import (
	"context"
	"errors"
	"fmt"
)

// Hybrid pairs the relational and the document store.
// The two never interact; Hybrid only manages their lifecycle together.
type Hybrid struct {
	SQL   SQLDatabase
	NoSQL NoSQLDatabase
}

// New creates a hybrid database from both stores
func New(sql SQLDatabase, nosql NoSQLDatabase) *Hybrid {
	return &Hybrid{SQL: sql, NoSQL: nosql}
}

// Connect connects both stores, relational first
func (h *Hybrid) Connect(ctx context.Context) error {
	if err := h.SQL.Connect(ctx); err != nil {
		return fmt.Errorf("sql database: %w", err)
	}
	if err := h.NoSQL.Connect(ctx); err != nil {
		_ = h.SQL.Disconnect(ctx)
		return fmt.Errorf("nosql database: %w", err)
	}
	return nil
}

// Disconnect closes both stores and reports every failure
func (h *Hybrid) Disconnect(ctx context.Context) error {
	var errs []error
	if err := h.SQL.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("sql database: %w", err))
	}
	if err := h.NoSQL.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("nosql database: %w", err))
	}
	return errors.Join(errs...)
}

// Ping checks both stores
func (h *Hybrid) Ping(ctx context.Context) error {
	var errs []error
	for name, err := range h.Check(ctx) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Check pings each store and returns the result per store name
func (h *Hybrid) Check(ctx context.Context) map[string]error {
	return map[string]error{
		"sql_database":   h.SQL.Ping(ctx),
		"nosql_database": h.NoSQL.Ping(ctx),
	}
}
