package records

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	errMissingStore = errors.New("records: record store is required")
	noOpLogger      = zap.NewNop()
)

// ServiceError carries a dotted operation code alongside the wrapped cause so
// callers can match both the code and the underlying sentinel.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opCacheNew   = "records.cache.new"
	opLoadAll    = "records.load_all"
	opAppend     = "records.append"
	opUpdate     = "records.update"
	opDelete     = "records.delete"
	loadAttempts = 2
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// CacheConfig describes the dependencies of a record cache.
type CacheConfig struct {
	Store  RecordStore
	Logger *zap.Logger
}

// Cache is the authoritative in-process view of the emission records table.
// Mutations are write-through: memory commits only after the backing store
// call succeeds, so a failed store write never leaves phantom local state.
// The mutex is held across each mutation's store call so two edits of the
// same record never interleave their read-modify-write.
type Cache struct {
	store  RecordStore
	logger *zap.Logger

	mu      sync.RWMutex
	records []EmissionRecord
}

// NewCache validates the configuration and returns an empty cache. Call
// LoadAll before serving reads.
func NewCache(cfg CacheConfig) (*Cache, error) {
	if cfg.Store == nil {
		return nil, newServiceError(opCacheNew, "missing_store", errMissingStore)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Cache{store: cfg.Store, logger: logger}, nil
}

// LoadAll replaces the in-memory collection with the full store contents.
// The fetch is retried once; when every attempt fails the prior in-memory
// state is left intact so readers keep a stale-but-available view.
func (c *Cache) LoadAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= loadAttempts; attempt++ {
		recs, err := c.store.FetchAll(ctx)
		if err == nil {
			c.records = recs
			c.logger.Info("emission records loaded",
				zap.Int("count", len(recs)),
				zap.Int("attempt", attempt))
			return nil
		}
		lastErr = err
		c.logError(opLoadAll, "fetch_failed", err, zap.Int("attempt", attempt))
	}
	return newServiceError(opLoadAll, "fetch_failed", lastErr)
}

// Records returns a copy of the in-memory collection in insertion order.
func (c *Cache) Records() []EmissionRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]EmissionRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Append validates the drafts, derives totals, persists the batch in a
// single store transaction and, on success, appends the records to memory.
// Returned ids are the store-assigned surrogate keys in draft order.
func (c *Cache) Append(ctx context.Context, reporter, entryDate string, drafts []Draft) ([]int64, error) {
	if reporter == "" {
		return nil, newServiceError(opAppend, "missing_reporter", ErrValidation)
	}
	if err := ValidateEntryDate(entryDate); err != nil {
		return nil, newServiceError(opAppend, "invalid_entry_date", err)
	}
	if len(drafts) == 0 {
		return nil, newServiceError(opAppend, "empty_batch", ErrValidation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	batch := make([]*EmissionRecord, 0, len(drafts))
	for _, draft := range drafts {
		if err := draft.validate(); err != nil {
			return nil, newServiceError(opAppend, "invalid_draft", err)
		}
		rec := &EmissionRecord{
			Reporter:     reporter,
			EntryDate:    entryDate,
			Month:        draft.Month,
			Year:         draft.Year,
			Unit:         draft.Unit,
			Category:     draft.Category,
			EmissionName: draft.EmissionName,
			EmissionType: draft.EmissionType,
			Factor:       draft.Factor,
			Value:        draft.Value,
			Remarks:      draft.Remarks,
			DocumentRef:  draft.DocumentRef,
		}
		rec.deriveTotal()
		batch = append(batch, rec)
	}

	if err := c.store.InsertBatch(ctx, batch); err != nil {
		c.logError(opAppend, "insert_failed", err, zap.Int("batch_size", len(batch)))
		return nil, newServiceError(opAppend, "insert_failed", err)
	}

	ids := make([]int64, 0, len(batch))
	for _, rec := range batch {
		c.records = append(c.records, *rec)
		ids = append(ids, rec.RecordID)
	}
	c.logger.Info("emission records appended",
		zap.String("reporter", reporter),
		zap.Int("count", len(ids)))
	return ids, nil
}

// Update applies a partial edit to the record with the given id, re-deriving
// the total when factor or value changed, and persists the new state.
func (c *Cache) Update(ctx context.Context, recordID int64, changes FieldChanges) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(recordID)
	if idx < 0 {
		return newServiceError(opUpdate, "not_found", fmt.Errorf("%w: id %d", ErrRecordNotFound, recordID))
	}

	updated := c.records[idx]
	changes.apply(&updated)

	if err := c.store.Update(ctx, &updated); err != nil {
		c.logError(opUpdate, "store_update_failed", err, zap.Int64("record_id", recordID))
		return newServiceError(opUpdate, "store_update_failed", err)
	}

	c.records[idx] = updated
	return nil
}

// Delete removes the record with the given id from the store and, on
// success, from memory.
func (c *Cache) Delete(ctx context.Context, recordID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(recordID)
	if idx < 0 {
		return newServiceError(opDelete, "not_found", fmt.Errorf("%w: id %d", ErrRecordNotFound, recordID))
	}

	if err := c.store.Delete(ctx, recordID); err != nil {
		c.logError(opDelete, "store_delete_failed", err, zap.Int64("record_id", recordID))
		return newServiceError(opDelete, "store_delete_failed", err)
	}

	c.records = append(c.records[:idx], c.records[idx+1:]...)
	return nil
}

// Criteria selects records field by field. An empty string or "All" leaves
// that field unconstrained; set criteria are combined with AND.
type Criteria struct {
	Unit         string
	Month        string
	Year         string
	Category     string
	EmissionName string
	EmissionType string
}

func matches(criterion, value string) bool {
	return criterion == "" || criterion == "All" || criterion == value
}

// Filter returns the records matching every set criterion, preserving
// insertion order. Pure in-memory read, no store access.
func (c *Cache) Filter(criteria Criteria) []EmissionRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []EmissionRecord
	for _, rec := range c.records {
		if matches(criteria.Unit, rec.Unit) &&
			matches(criteria.Month, rec.Month) &&
			matches(criteria.Year, rec.Year) &&
			matches(criteria.Category, string(rec.Category)) &&
			matches(criteria.EmissionName, rec.EmissionName) &&
			matches(criteria.EmissionType, rec.EmissionType) {
			out = append(out, rec)
		}
	}
	return out
}

// indexOf requires c.mu to be held.
func (c *Cache) indexOf(recordID int64) int {
	for i := range c.records {
		if c.records[i].RecordID == recordID {
			return i
		}
	}
	return -1
}

func (c *Cache) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	c.logger.Error("record cache error", attrs...)
}
