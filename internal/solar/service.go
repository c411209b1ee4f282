package solar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates no solar entry exists for the requested id.
	ErrNotFound = errors.New("solar: entry not found")
	// ErrValidation indicates a rejected entry payload.
	ErrValidation = errors.New("solar: validation failed")

	errMissingDatabase = errors.New("solar: database handle is required")
)

const defaultUnitType = "Kwh"

// ServiceConfig describes the dependencies of the solar service.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service records and lists solar generation entries. Unlike the emission
// record cache this talks to the table directly; the solar views always
// reload from the store.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService validates the configuration and returns the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, logger: logger}, nil
}

// Create derives the generated total, fills defaults and persists the entry.
// The store-assigned id is filled into the entry on success.
func (s *Service) Create(ctx context.Context, entry *Entry) error {
	if strings.TrimSpace(entry.Unit) == "" {
		return fmt.Errorf("%w: unit is required", ErrValidation)
	}
	if strings.TrimSpace(entry.Reporter) == "" {
		return fmt.Errorf("%w: reporter is required", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", entry.GenerationDate); err != nil {
		return fmt.Errorf("%w: generation date %q is not a YYYY-MM-DD date", ErrValidation, entry.GenerationDate)
	}
	if entry.UnitType == "" {
		entry.UnitType = defaultUnitType
	}
	entry.deriveTotal()

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		s.logger.Error("solar entry insert failed", zap.Error(err), zap.String("unit", entry.Unit))
		return err
	}
	s.logger.Info("solar entry recorded",
		zap.Int64("id", entry.ID),
		zap.String("unit", entry.Unit),
		zap.String("generation_date", entry.GenerationDate))
	return nil
}

// List returns every entry ordered by generation date, newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := s.db.WithContext(ctx).
		Order("generation_date DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes the entry with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Entry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}
