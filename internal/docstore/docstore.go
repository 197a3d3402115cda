// Package docstore provides a collection/document store contract with
// partial field updates, ordered pagination, and optimistic transactions,
// plus an in-memory engine implementing it.
package docstore

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when the addressed document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrTxnConflict is returned when a transaction could not commit within the
// retry budget because of concurrent writes to documents it read.
var ErrTxnConflict = errors.New("transaction conflict")

// Document is a stored record addressed by collection and id.
type Document struct {
	ID     string
	Fields map[string]any
}

// Query describes an ordered, paginated listing. StartAfter is compared
// against the OrderBy field value; documents missing the OrderBy field are
// excluded from the result.
type Query struct {
	OrderBy    string
	Limit      int
	StartAfter string
}

// Txn exposes the operations available inside a transaction. Reads are
// recorded and re-validated at commit; updates are buffered and applied
// atomically on commit.
type Txn interface {
	// Get reads the document snapshot. The second return value reports
	// existence; absence is not an error inside a transaction.
	Get(collection, id string) (Document, bool, error)
	// Update buffers a field-level merge into the document. The target must
	// exist at commit time; Update never creates a document.
	Update(collection, id string, fields map[string]any) error
}

// Store is the document store contract.
type Store interface {
	// Create stores fields under a newly assigned id and returns it.
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Update merges fields into an existing document or returns ErrNotFound.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes the document. Deleting an absent document is not an
	// error.
	Delete(ctx context.Context, collection, id string) error
	// List returns documents matching the query in OrderBy order.
	List(ctx context.Context, collection string, q Query) ([]Document, error)
	// RunTransaction executes fn inside an optimistic transaction, retrying
	// on conflict up to the store's attempt budget. An error returned by fn
	// aborts the transaction with no writes applied.
	RunTransaction(ctx context.Context, fn func(Txn) error) error
}
