package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

// Store is the document-store facade the domain repositories run on.
// Documents are schemaless JSON values grouped into collections; the
// store owns id generation, merge semantics and numeric field
// increments. Implementations: Postgres (production) and in-memory
// (tests, local development).
type Store interface {
	// Get reads a document into dest. Returns ErrNotFound when the id
	// does not exist in the collection.
	Get(ctx context.Context, collection, id string, dest interface{}) error

	// Set creates or fully replaces a document under a caller-chosen id.
	Set(ctx context.Context, collection, id string, value interface{}) error

	// Update merges the given fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error

	// Delete removes a document. Deleting a missing document is not an
	// error.
	Delete(ctx context.Context, collection, id string) error

	// Add stores a document under a generated id and returns the id.
	Add(ctx context.Context, collection string, value interface{}) (string, error)

	// Query returns documents matching q in the store's scan order:
	// newest write first, stable across calls. The cursor resumes the
	// scan after the row it names; it is only meaningful for the same
	// predicate set that produced it.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)

	// Increment atomically adds delta to a numeric field.
	Increment(ctx context.Context, collection, id, field string, delta int64) error
}

// ErrNotFound is returned by Get for a missing document.
var ErrNotFound = errors.New("document not found")

// Op is a predicate operator.
type Op string

const (
	// OpEqual matches documents whose field equals the value.
	OpEqual Op = "=="
	// OpArrayContainsAny matches documents whose array field shares at
	// least one element with the given []string.
	OpArrayContainsAny Op = "array-contains-any"
)

// Predicate is a single field filter.
type Predicate struct {
	Field string
	Op    Op
	Value interface{}
}

// Where builds a predicate.
func Where(field string, op Op, value interface{}) Predicate {
	return Predicate{Field: field, Op: op, Value: value}
}

// Cursor resumes a scan after the named row. Callers treat it as
// opaque; only the store interprets it.
type Cursor struct {
	LastID string
}

// Query describes a filtered, optionally paginated scan.
type Query struct {
	Predicates []Predicate
	Cursor     *Cursor
	Limit      int
}

// Document is one query result row.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Decode unmarshals the document payload into dest.
func (d Document) Decode(dest interface{}) error {
	return json.Unmarshal(d.Data, dest)
}
