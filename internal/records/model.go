package records

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category enumerates the reporting scopes an emission record belongs to.
type Category string

const (
	CategoryScope1 Category = "Scope1"
	CategoryScope2 Category = "Scope2"
	CategoryScope3 Category = "Scope3"
)

const entryDateLayout = "2006-01-02"

var (
	// ErrValidation indicates a draft or field change failed validation.
	ErrValidation = errors.New("records: validation failed")
)

// EmissionRecord is one user-submitted emission measurement. record_id is a
// surrogate key assigned by the backing store on insert; factor is frozen at
// entry time and total is always the rounded product of factor and value.
type EmissionRecord struct {
	RecordID     int64           `gorm:"column:record_id;primaryKey;autoIncrement" json:"record_id"`
	Reporter     string          `gorm:"column:reporter_identity;size:320;not null" json:"reporter_identity"`
	EntryDate    string          `gorm:"column:entry_date;size:10;not null;index:idx_emission_records_entry_date" json:"entry_date"`
	Month        string          `gorm:"column:month;size:50;not null" json:"month"`
	Year         string          `gorm:"column:year;size:10;not null" json:"year"`
	Unit         string          `gorm:"column:unit;size:50;not null" json:"unit"`
	Category     Category        `gorm:"column:category;size:20;not null" json:"category"`
	EmissionName string          `gorm:"column:emission_name;size:100;not null" json:"emission_name"`
	EmissionType string          `gorm:"column:emission_type;size:100;not null" json:"emission_type"`
	Factor       decimal.Decimal `gorm:"column:factor;type:decimal(20,4);not null" json:"factor"`
	Value        decimal.Decimal `gorm:"column:value;type:decimal(20,4);not null" json:"value"`
	Total        decimal.Decimal `gorm:"column:total;type:decimal(20,4);not null" json:"total"`
	Remarks      string          `gorm:"column:remarks;size:500" json:"remarks"`
	DocumentRef  string          `gorm:"column:document_reference;size:512" json:"document_reference"`
}

// TableName provides the explicit table binding for GORM.
func (EmissionRecord) TableName() string {
	return "emission_records"
}

// deriveTotal recomputes the stored total from factor and value, rounded to
// two fractional digits.
func (r *EmissionRecord) deriveTotal() {
	r.Total = r.Factor.Mul(r.Value).Round(2)
}

// Draft supplies every field of a new record except the store-assigned id,
// the derived total, and the reporter identity and entry date the submitting
// caller provides.
type Draft struct {
	Month        string
	Year         string
	Unit         string
	Category     Category
	EmissionName string
	EmissionType string
	Factor       decimal.Decimal
	Value        decimal.Decimal
	Remarks      string
	DocumentRef  string
}

func (d Draft) validate() error {
	if strings.TrimSpace(d.Unit) == "" {
		return fmt.Errorf("%w: unit is required", ErrValidation)
	}
	if strings.TrimSpace(d.Month) == "" {
		return fmt.Errorf("%w: month is required", ErrValidation)
	}
	if strings.TrimSpace(d.Year) == "" {
		return fmt.Errorf("%w: year is required", ErrValidation)
	}
	switch d.Category {
	case CategoryScope1, CategoryScope2, CategoryScope3:
	default:
		return fmt.Errorf("%w: unknown category %q", ErrValidation, d.Category)
	}
	if strings.TrimSpace(d.EmissionName) == "" {
		return fmt.Errorf("%w: emission name is required", ErrValidation)
	}
	if strings.TrimSpace(d.EmissionType) == "" {
		return fmt.Errorf("%w: emission type is required", ErrValidation)
	}
	if d.Factor.IsNegative() {
		return fmt.Errorf("%w: factor must not be negative", ErrValidation)
	}
	if d.Value.IsNegative() {
		return fmt.Errorf("%w: value must not be negative", ErrValidation)
	}
	return nil
}

// ValidateEntryDate checks a submission date against the expected
// YYYY-MM-DD calendar format.
func ValidateEntryDate(value string) error {
	if _, err := time.Parse(entryDateLayout, value); err != nil {
		return fmt.Errorf("%w: entry date %q is not a YYYY-MM-DD date", ErrValidation, value)
	}
	return nil
}

// FieldChanges describes a partial in-place edit. Nil fields are untouched.
// Reporter identity and entry date are not editable; a changed factor or
// value re-derives the total.
type FieldChanges struct {
	Month        *string
	Year         *string
	Unit         *string
	Category     *Category
	EmissionName *string
	EmissionType *string
	Factor       *decimal.Decimal
	Value        *decimal.Decimal
	Remarks      *string
	DocumentRef  *string
}

func (c FieldChanges) apply(rec *EmissionRecord) {
	if c.Month != nil {
		rec.Month = *c.Month
	}
	if c.Year != nil {
		rec.Year = *c.Year
	}
	if c.Unit != nil {
		rec.Unit = *c.Unit
	}
	if c.Category != nil {
		rec.Category = *c.Category
	}
	if c.EmissionName != nil {
		rec.EmissionName = *c.EmissionName
	}
	if c.EmissionType != nil {
		rec.EmissionType = *c.EmissionType
	}
	if c.Factor != nil {
		rec.Factor = *c.Factor
	}
	if c.Value != nil {
		rec.Value = *c.Value
	}
	if c.Remarks != nil {
		rec.Remarks = *c.Remarks
	}
	if c.DocumentRef != nil {
		rec.DocumentRef = *c.DocumentRef
	}
	if c.Factor != nil || c.Value != nil {
		rec.deriveTotal()
	}
}
