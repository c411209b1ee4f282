package records

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var errMissingDatabase = errors.New("records: database handle is required")

// GormStore persists emission records through a GORM handle, the default
// SQLite-backed deployment.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open GORM handle as a RecordStore.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, errMissingDatabase
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) FetchAll(ctx context.Context) ([]EmissionRecord, error) {
	var recs []EmissionRecord
	if err := s.db.WithContext(ctx).Order("record_id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackingStoreUnavailable, err)
	}
	return recs, nil
}

func (s *GormStore) InsertBatch(ctx context.Context, batch []*EmissionRecord) error {
	if len(batch) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range batch {
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackingStoreUnavailable, err)
	}
	return nil
}

func (s *GormStore) Update(ctx context.Context, rec *EmissionRecord) error {
	result := s.db.WithContext(ctx).
		Model(&EmissionRecord{}).
		Where("record_id = ?", rec.RecordID).
		Select("*").
		Omit("record_id").
		Updates(rec)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrBackingStoreUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrRecordNotFound, rec.RecordID)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, recordID int64) error {
	result := s.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Delete(&EmissionRecord{})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrBackingStoreUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrRecordNotFound, recordID)
	}
	return nil
}
