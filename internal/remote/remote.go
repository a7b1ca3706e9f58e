// internal/remote/remote.go
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a document does not exist in its collection.
var ErrNotFound = errors.New("document not found")

// Document is a single document as delivered by the service: an identifier
// plus the raw JSON payload.
type Document struct {
	ID        string
	Data      json.RawMessage
	CreatedAt time.Time
}

// Decode unmarshals the document payload into dest.
func (d Document) Decode(dest any) error {
	return json.Unmarshal(d.Data, dest)
}

// Snapshot is a full-collection view delivered to push subscribers. The
// generation increases with every delivery on a collection; consumers must
// ignore snapshots older than the last one they applied, so a slow delivery
// never overwrites a fresh one.
type Snapshot struct {
	Generation uint64
	Docs       []Document
}

// SnapshotHandler receives collection snapshots from a live subscription.
type SnapshotHandler func(Snapshot)

// ErrorHandler receives asynchronous subscription failures.
type ErrorHandler func(error)

// SubscribeOptions control how snapshots are assembled.
type SubscribeOptions struct {
	// OrderByCreatedAtDesc sorts each snapshot newest-first by document
	// creation time.
	OrderByCreatedAtDesc bool
}

// Subscription is a live, cancelable push stream.
type Subscription interface {
	// Unsubscribe stops delivery. Safe to call more than once.
	Unsubscribe()
}

// Collection is a named set of documents in the remote service.
type Collection interface {
	// Add creates a document with a server-assigned identifier.
	Add(ctx context.Context, data any) (string, error)
	// Set writes a document under a known identifier. With merge, top-level
	// fields of data are overlaid onto the existing document; otherwise the
	// document is replaced.
	Set(ctx context.Context, id string, data any, merge bool) error
	// Get reads a single document into dest. Returns ErrNotFound when the
	// document does not exist.
	Get(ctx context.Context, id string, dest any) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) error
	// List returns the current contents of the collection.
	List(ctx context.Context, opts SubscribeOptions) ([]Document, error)
	// Subscribe delivers an initial snapshot and then one snapshot per
	// change notification until the subscription is canceled.
	Subscribe(ctx context.Context, opts SubscribeOptions, onSnapshot SnapshotHandler, onError ErrorHandler) (Subscription, error)
}

// Service is the client surface of the hosted document backend.
type Service interface {
	Collection(name string) Collection
	Close() error
}
