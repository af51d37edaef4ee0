// Package store defines the document store boundary the audit and rollback
// services are written against, with a Postgres jsonb implementation for
// production and an in-memory one for tests and local development.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no document exists at the address, and
// wrapped by Commit when an update write targets a missing document.
var ErrNotFound = errors.New("document not found")

// WriteOp identifies the kind of a batched write.
type WriteOp string

const (
	OpSet    WriteOp = "set"    // create-or-replace the whole body
	OpUpdate WriteOp = "update" // merge top-level fields into an existing document
	OpDelete WriteOp = "delete" // remove the document; missing documents are a no-op
)

// Write is one document write inside an atomic batch.
type Write struct {
	Op         WriteOp
	Collection string
	ID         string
	Body       map[string]any // full body for OpSet, partial fields for OpUpdate
}

// Document is a stored body together with its address id.
type Document struct {
	ID   string
	Body map[string]any
}

// Store is the engine's view of the document store. Commit applies all
// writes or none; Add appends a document with a store-assigned id; Now
// returns the store's server time.
type Store interface {
	Get(ctx context.Context, collection, id string) (map[string]any, error)
	Set(ctx context.Context, collection, id string, body map[string]any) error
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Add(ctx context.Context, collection string, body map[string]any) (string, error)
	List(ctx context.Context, collection string, limit, offset int) ([]Document, error)
	Commit(ctx context.Context, writes []Write) error
	Now(ctx context.Context) (time.Time, error)
}
