package records

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists emission records through database/sql against a
// PostgreSQL server, for deployments that keep the table on a shared
// database instead of a local file.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open connection as a RecordStore. The caller is
// responsible for running migrations before first use.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, errMissingDatabase
	}
	return &PostgresStore{db: db}, nil
}

const postgresSelectAll = `
SELECT record_id, reporter_identity, entry_date, month, year, unit, category,
       emission_name, emission_type, factor, value, total, remarks, document_reference
FROM emission_records
ORDER BY record_id ASC`

func (s *PostgresStore) FetchAll(ctx context.Context) ([]EmissionRecord, error) {
	rows, err := s.db.QueryContext(ctx, postgresSelectAll)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackingStoreUnavailable, err)
	}
	defer rows.Close()

	var recs []EmissionRecord
	for rows.Next() {
		var rec EmissionRecord
		if err := rows.Scan(
			&rec.RecordID, &rec.Reporter, &rec.EntryDate, &rec.Month, &rec.Year,
			&rec.Unit, &rec.Category, &rec.EmissionName, &rec.EmissionType,
			&rec.Factor, &rec.Value, &rec.Total, &rec.Remarks, &rec.DocumentRef,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackingStoreUnavailable, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackingStoreUnavailable, err)
	}
	return recs, nil
}

const postgresInsert = `
INSERT INTO emission_records
  (reporter_identity, entry_date, month, year, unit, category,
   emission_name, emission_type, factor, value, total, remarks, document_reference)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
RETURNING record_id`

func (s *PostgresStore) InsertBatch(ctx context.Context, batch []*EmissionRecord) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackingStoreUnavailable, err)
	}
	for _, rec := range batch {
		err := tx.QueryRowContext(ctx, postgresInsert,
			rec.Reporter, rec.EntryDate, rec.Month, rec.Year, rec.Unit, rec.Category,
			rec.EmissionName, rec.EmissionType, rec.Factor, rec.Value, rec.Total,
			rec.Remarks, rec.DocumentRef,
		).Scan(&rec.RecordID)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: %v", ErrBackingStoreUnavailable, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackingStoreUnavailable, err)
	}
	return nil
}

const postgresUpdate = `
UPDATE emission_records SET
  reporter_identity = $1, entry_date = $2, month = $3, year = $4, unit = $5,
  category = $6, emission_name = $7, emission_type = $8, factor = $9,
  value = $10, total = $11, remarks = $12, document_reference = $13
WHERE record_id = $14`

func (s *PostgresStore) Update(ctx context.Context, rec *EmissionRecord) error {
	result, err := s.db.ExecContext(ctx, postgresUpdate,
		rec.Reporter, rec.EntryDate, rec.Month, rec.Year, rec.Unit, rec.Category,
		rec.EmissionName, rec.EmissionType, rec.Factor, rec.Value, rec.Total,
		rec.Remarks, rec.DocumentRef, rec.RecordID,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackingStoreUnavailable, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackingStoreUnavailable, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrRecordNotFound, rec.RecordID)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, recordID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM emission_records WHERE record_id = $1`, recordID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackingStoreUnavailable, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackingStoreUnavailable, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrRecordNotFound, recordID)
	}
	return nil
}
