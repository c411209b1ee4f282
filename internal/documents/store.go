// Package documents generates deterministic, human-auditable storage
// locations for uploaded evidence files and keeps an append-only audit log
// of every upload. Naming is content-derived so an operator can locate "the
// Diesel receipt for unit C-49, March 2025" without a database lookup; the
// version suffix only exists to avoid silently overwriting a logical
// document uploaded twice.
package documents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const uploadDateLayout = "2006-01-02"

var errMissingStorage = errors.New("documents: storage backend is required")

// StoreConfig describes the dependencies of a document store.
type StoreConfig struct {
	Storage Storage
	Clock   func() time.Time
	Logger  *zap.Logger
}

// Store owns path construction, collision-safe versioning and audit logging
// for uploaded documents. Durable persistence of the audit log is the
// caller's responsibility.
type Store struct {
	storage Storage
	clock   func() time.Time
	logger  *zap.Logger

	// mu guards the log and serializes the probe-and-save sequence so two
	// concurrent uploads of the same code cannot claim the same free key.
	mu  sync.Mutex
	log []DocumentMetadata
}

// NewStore validates the configuration and returns an empty store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Storage == nil {
		return nil, errMissingStorage
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{storage: cfg.Storage, clock: clock, logger: logger}, nil
}

// UniqueCode derives the deterministic document code from the business
// context: unit, the date reformatted as DD_MM_YYYY, emission name and
// emission type, joined by underscores. Same inputs always yield the same
// code.
func UniqueCode(unit, date, emissionName, emissionType string) (string, error) {
	parsed, err := time.Parse(uploadDateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidDateFormat, date)
	}
	return fmt.Sprintf("%s_%s_%s_%s", unit, parsed.Format("02_01_2006"), emissionName, emissionType), nil
}

// storageKey is the slash-separated directory key for a unit and date:
// <unit>/<YYYY>/<MM>_<MonthName>.
func storageKey(unit, date string) (string, error) {
	parsed, err := time.Parse(uploadDateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidDateFormat, date)
	}
	monthDir := fmt.Sprintf("%s_%s", parsed.Format("01"), parsed.Month().String())
	return path.Join(unit, parsed.Format("2006"), monthDir), nil
}

// StoragePath ensures the directory chain for the unit and date exists on
// the backend and returns its location. Idempotent.
func (s *Store) StoragePath(ctx context.Context, unit, date string) (string, error) {
	key, err := storageKey(unit, date)
	if err != nil {
		return "", err
	}
	location, err := s.storage.EnsureDir(ctx, key)
	if err != nil {
		s.logError("documents.storage_path", err, zap.String("key", key))
		return "", err
	}
	return location, nil
}

// SaveDocument copies the source file to its deterministic location, probing
// _v2, _v3, ... suffixes until a free name is found so nothing is ever
// overwritten, then appends the audit entry. The source file is left
// untouched.
func (s *Store) SaveDocument(ctx context.Context, sourcePath, unit, date, emissionName, emissionType, uploader, role string) (DocumentMetadata, error) {
	code, err := UniqueCode(unit, date, emissionName, emissionType)
	if err != nil {
		return DocumentMetadata{}, err
	}
	dirKey, err := storageKey(unit, date)
	if err != nil {
		return DocumentMetadata{}, err
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return DocumentMetadata{}, fmt.Errorf("%w: %s", ErrSourceNotFound, sourcePath)
		}
		return DocumentMetadata{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer source.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	ext := filepath.Ext(sourcePath)
	version := 1
	finalKey := path.Join(dirKey, code+ext)
	for {
		taken, err := s.storage.Exists(ctx, finalKey)
		if err != nil {
			s.logError("documents.save_document", err, zap.String("key", finalKey))
			return DocumentMetadata{}, err
		}
		if !taken {
			break
		}
		version++
		finalKey = path.Join(dirKey, fmt.Sprintf("%s_v%d%s", code, version, ext))
	}

	location, err := s.storage.Save(ctx, finalKey, source)
	if err != nil {
		s.logError("documents.save_document", err, zap.String("key", finalKey))
		return DocumentMetadata{}, err
	}

	metadata := DocumentMetadata{
		UniqueCode:     code,
		StoredPath:     location,
		UploadedAt:     s.clock(),
		Uploader:       uploader,
		Role:           role,
		Unit:           unit,
		AssociatedDate: date,
		EmissionName:   emissionName,
		EmissionType:   emissionType,
		FileStatus:     FileStatusPending,
		Version:        version,
	}
	s.log = append(s.log, metadata)

	s.logger.Info("document uploaded",
		zap.String("unique_code", code),
		zap.String("stored_path", location),
		zap.Int("version", version),
		zap.String("uploader", uploader))
	return metadata, nil
}

// Log returns a copy of the in-memory audit log in upload order.
func (s *Store) Log() []DocumentMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DocumentMetadata, len(s.log))
	copy(out, s.log)
	return out
}

func (s *Store) logError(operation string, err error, fields ...zap.Field) {
	attrs := append([]zap.Field{zap.String("operation", operation), zap.Error(err)}, fields...)
	s.logger.Error("document store error", attrs...)
}
