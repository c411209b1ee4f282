package documents

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var errMissingLogDatabase = errors.New("documents: database handle is required")

// GormLogStore persists audit entries to the document_logs table for callers
// that need the upload trail to survive restarts.
type GormLogStore struct {
	db *gorm.DB
}

// NewGormLogStore wraps an open GORM handle.
func NewGormLogStore(db *gorm.DB) (*GormLogStore, error) {
	if db == nil {
		return nil, errMissingLogDatabase
	}
	return &GormLogStore{db: db}, nil
}

// Append stores one audit entry.
func (s *GormLogStore) Append(ctx context.Context, entry DocumentLog) error {
	return s.db.WithContext(ctx).Create(&entry).Error
}

// List returns the persisted audit trail in upload order.
func (s *GormLogStore) List(ctx context.Context) ([]DocumentLog, error) {
	var entries []DocumentLog
	if err := s.db.WithContext(ctx).Order("uploaded_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
