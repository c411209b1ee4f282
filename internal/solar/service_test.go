package solar

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("failed to parse decimal %q: %v", value, err)
	}
	return parsed
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&Entry{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	service, err := NewService(ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return service
}

func testEntry(t *testing.T, generationDate string) *Entry {
	t.Helper()
	return &Entry{
		Reporter:       "employee@gmail.com",
		EntryDate:      generationDate,
		Month:          "March",
		Year:           "2025",
		Unit:           "C-49",
		GenerationDate: generationDate,
		Inverter1:      mustDecimal(t, "10.5"),
		Inverter2:      mustDecimal(t, "20.25"),
		Inverter3:      mustDecimal(t, "5"),
		Inverter4:      mustDecimal(t, "4.25"),
		NewInverter:    mustDecimal(t, "8"),
	}
}

func TestCreateDerivesTotalGenerated(t *testing.T) {
	service := newTestService(t)

	entry := testEntry(t, "2025-03-07")
	if err := service.Create(context.Background(), entry); err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if entry.ID == 0 {
		t.Fatalf("expected store-assigned id")
	}
	if got := entry.TotalGenerated.StringFixed(2); got != "48.00" {
		t.Fatalf("expected total 48.00, got %s", got)
	}
	if entry.UnitType != "Kwh" {
		t.Fatalf("expected default unit type Kwh, got %q", entry.UnitType)
	}
}

func TestCreateValidatesEntry(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	missingUnit := testEntry(t, "2025-03-07")
	missingUnit.Unit = "  "
	if err := service.Create(ctx, missingUnit); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing unit, got %v", err)
	}

	missingReporter := testEntry(t, "2025-03-07")
	missingReporter.Reporter = ""
	if err := service.Create(ctx, missingReporter); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing reporter, got %v", err)
	}

	badDate := testEntry(t, "07-03-2025")
	if err := service.Create(ctx, badDate); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for bad generation date, got %v", err)
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	for _, date := range []string{"2025-03-05", "2025-03-07", "2025-03-06"} {
		if err := service.Create(ctx, testEntry(t, date)); err != nil {
			t.Fatalf("unexpected create error for %s: %v", date, err)
		}
	}

	entries, err := service.List(ctx)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected three entries, got %d", len(entries))
	}
	dates := []string{entries[0].GenerationDate, entries[1].GenerationDate, entries[2].GenerationDate}
	if dates[0] != "2025-03-07" || dates[1] != "2025-03-06" || dates[2] != "2025-03-05" {
		t.Fatalf("expected newest-first order, got %v", dates)
	}
}

func TestDeleteRemovesEntry(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	entry := testEntry(t, "2025-03-07")
	if err := service.Create(ctx, entry); err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if err := service.Delete(ctx, entry.ID); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if err := service.Delete(ctx, entry.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}

	entries, err := service.List(ctx)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty table after delete, got %d entries", len(entries))
	}
}
