package records

import (
	"context"
	"errors"
)

var (
	// ErrBackingStoreUnavailable indicates the backing store could not be
	// reached or the statement failed outright.
	ErrBackingStoreUnavailable = errors.New("records: backing store unavailable")
	// ErrRecordNotFound indicates no record exists for the requested id.
	ErrRecordNotFound = errors.New("records: record not found")
)

// RecordStore is the persistence contract behind the cache. Implementations
// assign record ids on insert and fill them into the supplied records.
type RecordStore interface {
	// FetchAll returns every persisted record ordered by record id.
	FetchAll(ctx context.Context) ([]EmissionRecord, error)
	// InsertBatch persists the batch in a single transaction. Either every
	// record is inserted with its assigned id filled in, or none are.
	InsertBatch(ctx context.Context, batch []*EmissionRecord) error
	// Update persists the full state of an existing record.
	Update(ctx context.Context, rec *EmissionRecord) error
	// Delete removes the record with the given surrogate id.
	Delete(ctx context.Context, recordID int64) error
}
