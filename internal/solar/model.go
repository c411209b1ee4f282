// Package solar tracks on-site solar generation entries, the companion
// table some sites report alongside their emission records.
package solar

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one day of solar generation for a unit. TotalGenerated is derived
// from the inverter readings and never edited independently.
type Entry struct {
	ID             int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Reporter       string          `gorm:"column:reporter_identity;size:320;not null" json:"reporter_identity"`
	EntryDate      string          `gorm:"column:entry_date;size:10;not null;index:idx_solar_energy_data_entry_date" json:"entry_date"`
	Month          string          `gorm:"column:month;size:50;not null" json:"month"`
	Year           string          `gorm:"column:year;size:10;not null" json:"year"`
	Unit           string          `gorm:"column:unit;size:50;not null" json:"unit"`
	GenerationDate string          `gorm:"column:generation_date;size:10;not null" json:"generation_date"`
	Inverter1      decimal.Decimal `gorm:"column:inverter1;type:decimal(18,4);not null" json:"inverter1"`
	Inverter2      decimal.Decimal `gorm:"column:inverter2;type:decimal(18,4);not null" json:"inverter2"`
	Inverter3      decimal.Decimal `gorm:"column:inverter3;type:decimal(18,4);not null" json:"inverter3"`
	Inverter4      decimal.Decimal `gorm:"column:inverter4;type:decimal(18,4);not null" json:"inverter4"`
	OldTotal       decimal.Decimal `gorm:"column:old_total;type:decimal(18,4);not null" json:"old_total"`
	NewInverter    decimal.Decimal `gorm:"column:new_inverter;type:decimal(18,4);not null" json:"new_inverter"`
	TotalGenerated decimal.Decimal `gorm:"column:total_generated;type:decimal(18,4);not null" json:"total_generated"`
	UnitType       string          `gorm:"column:unit_type;size:50;not null;default:Kwh" json:"unit_type"`
	Remark         string          `gorm:"column:remark;size:500" json:"remark"`
	DocumentRef    string          `gorm:"column:document_reference;size:512" json:"document_reference"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (Entry) TableName() string {
	return "solar_energy_data"
}

func (e *Entry) deriveTotal() {
	e.TotalGenerated = e.Inverter1.
		Add(e.Inverter2).
		Add(e.Inverter3).
		Add(e.Inverter4).
		Add(e.NewInverter)
}
