package documents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	baseDir := t.TempDir()
	storage, err := NewLocalStorage(baseDir)
	if err != nil {
		t.Fatalf("unexpected storage error: %v", err)
	}
	store, err := NewStore(StoreConfig{
		Storage: storage,
		Clock:   func() time.Time { return time.Unix(1741305600, 0).UTC() },
	})
	if err != nil {
		t.Fatalf("unexpected store error: %v", err)
	}
	return store, baseDir
}

func writeSourceFile(t *testing.T, name, content string) string {
	t.Helper()
	sourcePath := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(sourcePath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}
	return sourcePath
}

func TestUniqueCodeIsDeterministic(t *testing.T) {
	first, err := UniqueCode("C-49", "2025-03-07", "Fuel", "Diesel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := UniqueCode("C-49", "2025-03-07", "Fuel", "Diesel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical codes, got %q and %q", first, second)
	}
	if first != "C-49_07_03_2025_Fuel_Diesel" {
		t.Fatalf("unexpected code %q", first)
	}
}

func TestUniqueCodeRejectsBadDate(t *testing.T) {
	tests := []struct {
		name string
		date string
	}{
		{name: "wrong-order", date: "07-03-2025"},
		{name: "not-a-date", date: "March 7"},
		{name: "empty", date: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UniqueCode("C-49", tt.date, "Fuel", "Diesel"); !errors.Is(err, ErrInvalidDateFormat) {
				t.Fatalf("expected ErrInvalidDateFormat, got %v", err)
			}
		})
	}
}

func TestStoragePathCreatesMonthDirectory(t *testing.T) {
	store, baseDir := newTestStore(t)

	location, err := store.StoragePath(context.Background(), "C-49", "2025-03-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := filepath.Join(baseDir, "C-49", "2025", "03_March")
	if location != expected {
		t.Fatalf("expected %q, got %q", expected, location)
	}
	info, err := os.Stat(location)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %q: %v", location, err)
	}

	// Idempotent on repeat.
	if _, err := store.StoragePath(context.Background(), "C-49", "2025-03-07"); err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}
}

func TestSaveDocumentStoresAtDeterministicPath(t *testing.T) {
	store, baseDir := newTestStore(t)
	sourcePath := writeSourceFile(t, "receipt.pdf", "diesel receipt")

	metadata, err := store.SaveDocument(context.Background(), sourcePath, "C-49", "2025-03-07", "Fuel", "Diesel", "manager@gmail.com", "Manager")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := filepath.Join(baseDir, "C-49", "2025", "03_March", "C-49_07_03_2025_Fuel_Diesel.pdf")
	if metadata.StoredPath != expected {
		t.Fatalf("expected stored path %q, got %q", expected, metadata.StoredPath)
	}
	if metadata.Version != 1 {
		t.Fatalf("expected version 1, got %d", metadata.Version)
	}
	if metadata.FileStatus != FileStatusPending {
		t.Fatalf("expected pending status, got %q", metadata.FileStatus)
	}
	if metadata.Uploader != "manager@gmail.com" || metadata.Role != "Manager" {
		t.Fatalf("unexpected uploader metadata: %+v", metadata)
	}

	stored, err := os.ReadFile(metadata.StoredPath)
	if err != nil {
		t.Fatalf("failed to read stored file: %v", err)
	}
	if string(stored) != "diesel receipt" {
		t.Fatalf("stored contents differ: %q", stored)
	}

	// The source file is left untouched.
	if _, err := os.Stat(sourcePath); err != nil {
		t.Fatalf("source file missing after save: %v", err)
	}
}

func TestSaveDocumentVersionsOnCollision(t *testing.T) {
	store, _ := newTestStore(t)
	first := writeSourceFile(t, "first.pdf", "first upload")
	second := writeSourceFile(t, "second.pdf", "second upload")

	firstMetadata, err := store.SaveDocument(context.Background(), first, "C-49", "2025-03-07", "Fuel", "Diesel", "manager@gmail.com", "Manager")
	if err != nil {
		t.Fatalf("unexpected error on first save: %v", err)
	}
	secondMetadata, err := store.SaveDocument(context.Background(), second, "C-49", "2025-03-07", "Fuel", "Diesel", "manager@gmail.com", "Manager")
	if err != nil {
		t.Fatalf("unexpected error on second save: %v", err)
	}

	if firstMetadata.StoredPath == secondMetadata.StoredPath {
		t.Fatalf("expected distinct stored paths, both %q", firstMetadata.StoredPath)
	}
	if secondMetadata.Version != 2 {
		t.Fatalf("expected version 2, got %d", secondMetadata.Version)
	}
	if filepath.Base(secondMetadata.StoredPath) != "C-49_07_03_2025_Fuel_Diesel_v2.pdf" {
		t.Fatalf("unexpected versioned name %q", filepath.Base(secondMetadata.StoredPath))
	}

	firstStored, err := os.ReadFile(firstMetadata.StoredPath)
	if err != nil {
		t.Fatalf("failed to read first stored file: %v", err)
	}
	secondStored, err := os.ReadFile(secondMetadata.StoredPath)
	if err != nil {
		t.Fatalf("failed to read second stored file: %v", err)
	}
	if string(firstStored) != "first upload" || string(secondStored) != "second upload" {
		t.Fatalf("stored contents differ: %q / %q", firstStored, secondStored)
	}
}

func TestConcurrentSavesNeverShareAKey(t *testing.T) {
	store, _ := newTestStore(t)
	const uploads = 4

	sources := make([]string, uploads)
	for i := range sources {
		sources[i] = writeSourceFile(t, fmt.Sprintf("upload%d.pdf", i), fmt.Sprintf("upload %d", i))
	}

	results := make([]DocumentMetadata, uploads)
	errs := make([]error, uploads)
	var wg sync.WaitGroup
	wg.Add(uploads)
	for i := 0; i < uploads; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = store.SaveDocument(context.Background(), sources[i], "C-49", "2025-03-07", "Fuel", "Diesel", "manager@gmail.com", "Manager")
		}(i)
	}
	wg.Wait()

	paths := make(map[string]bool, uploads)
	versions := make(map[int]bool, uploads)
	for i := 0; i < uploads; i++ {
		if errs[i] != nil {
			t.Fatalf("unexpected error on upload %d: %v", i, errs[i])
		}
		if paths[results[i].StoredPath] {
			t.Fatalf("stored path %q claimed twice", results[i].StoredPath)
		}
		paths[results[i].StoredPath] = true
		versions[results[i].Version] = true

		stored, err := os.ReadFile(results[i].StoredPath)
		if err != nil {
			t.Fatalf("failed to read stored file %d: %v", i, err)
		}
		if len(stored) == 0 {
			t.Fatalf("stored file %d is empty", i)
		}
	}
	for version := 1; version <= uploads; version++ {
		if !versions[version] {
			t.Fatalf("expected versions 1..%d to be assigned, missing %d", uploads, version)
		}
	}
	if len(store.Log()) != uploads {
		t.Fatalf("expected %d audit entries, got %d", uploads, len(store.Log()))
	}
}

func TestSaveDocumentMissingSource(t *testing.T) {
	store, _ := newTestStore(t)

	missing := filepath.Join(t.TempDir(), "vanished.pdf")
	if _, err := store.SaveDocument(context.Background(), missing, "C-49", "2025-03-07", "Fuel", "Diesel", "manager@gmail.com", "Manager"); !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestAuditLogRecordsUploads(t *testing.T) {
	store, _ := newTestStore(t)
	sourcePath := writeSourceFile(t, "meter.jpeg", "electricity meter photo")

	if _, err := store.SaveDocument(context.Background(), sourcePath, "B-37", "2025-04-01", "Electricity", "Electricity", "employee@gmail.com", "Employee"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log := store.Log()
	if len(log) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(log))
	}
	entry := log[0]
	if entry.UniqueCode != "B-37_01_04_2025_Electricity_Electricity" {
		t.Fatalf("unexpected unique code %q", entry.UniqueCode)
	}
	if entry.AssociatedDate != "2025-04-01" {
		t.Fatalf("unexpected associated date %q", entry.AssociatedDate)
	}
	if entry.UploadedAt.IsZero() {
		t.Fatalf("expected upload timestamp to be set")
	}
}
