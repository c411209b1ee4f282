package documents

import "time"

// FileStatusPending is the initial review status stamped on every upload.
const FileStatusPending = "Pending"

// DocumentMetadata is one entry of the append-only upload audit log.
type DocumentMetadata struct {
	UniqueCode     string    `json:"unique_code"`
	StoredPath     string    `json:"stored_path"`
	UploadedAt     time.Time `json:"uploaded_at"`
	Uploader       string    `json:"uploader"`
	Role           string    `json:"role"`
	Unit           string    `json:"unit"`
	AssociatedDate string    `json:"associated_date"`
	EmissionName   string    `json:"emission_name"`
	EmissionType   string    `json:"emission_type"`
	FileStatus     string    `json:"file_status"`
	Version        int       `json:"version"`
}

// DocumentLog is the persisted form of an audit entry. The store itself only
// appends to its in-memory log; callers that need durability create one of
// these per upload.
type DocumentLog struct {
	LogID          string    `gorm:"column:log_id;primaryKey;size:190;not null" json:"log_id"`
	UniqueCode     string    `gorm:"column:unique_code;size:255;not null;index" json:"unique_code"`
	StoredPath     string    `gorm:"column:stored_path;size:512;not null" json:"stored_path"`
	UploadedAt     time.Time `gorm:"column:uploaded_at;not null" json:"uploaded_at"`
	Uploader       string    `gorm:"column:uploader;size:320;not null" json:"uploader"`
	Role           string    `gorm:"column:role;size:50;not null" json:"role"`
	Unit           string    `gorm:"column:unit;size:50;not null" json:"unit"`
	AssociatedDate string    `gorm:"column:associated_date;size:10;not null" json:"associated_date"`
	EmissionName   string    `gorm:"column:emission_name;size:100;not null" json:"emission_name"`
	EmissionType   string    `gorm:"column:emission_type;size:100;not null" json:"emission_type"`
	FileStatus     string    `gorm:"column:file_status;size:50;not null" json:"file_status"`
	Version        int       `gorm:"column:version;not null;default:1" json:"version"`
}

// TableName provides the explicit table binding for GORM.
func (DocumentLog) TableName() string {
	return "document_logs"
}

// LogRecord pairs the metadata with a caller-assigned log id for persistence.
func (m DocumentMetadata) LogRecord(logID string) DocumentLog {
	return DocumentLog{
		LogID:          logID,
		UniqueCode:     m.UniqueCode,
		StoredPath:     m.StoredPath,
		UploadedAt:     m.UploadedAt,
		Uploader:       m.Uploader,
		Role:           m.Role,
		Unit:           m.Unit,
		AssociatedDate: m.AssociatedDate,
		EmissionName:   m.EmissionName,
		EmissionType:   m.EmissionType,
		FileStatus:     m.FileStatus,
		Version:        m.Version,
	}
}
