package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/freightdocs/bol-extractor/internal/bol"
)

// StoredRecord is a persisted extraction result. Payload holds the full
// record as JSON; bol_number is denormalized for lookups.
type StoredRecord struct {
	ID        uuid.UUID `db:"id"`
	JobID     uuid.UUID `db:"job_id"`
	Filename  string    `db:"filename"`
	BOLNumber *string   `db:"bol_number"`
	Payload   string    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

// Record decodes the stored payload back into a bill of lading record.
func (s *StoredRecord) Record() (*bol.Record, error) {
	var rec bol.Record
	if err := json.Unmarshal([]byte(s.Payload), &rec); err != nil {
		return nil, fmt.Errorf("decode record payload %s: %w", s.ID, err)
	}
	return &rec, nil
}

type RecordRepository interface {
	Save(ctx context.Context, jobID uuid.UUID, rec *bol.Record) (*StoredRecord, error)
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*StoredRecord, error)
	ListByBOLNumber(ctx context.Context, bolNumber string) ([]StoredRecord, error)
}

type recordRepo struct {
	db  *sqlx.DB
	log *slog.Logger
}

func NewRecordRepository(db *sqlx.DB, log *slog.Logger) RecordRepository {
	if log == nil {
		log = slog.Default()
	}
	return &recordRepo{db: db, log: log}
}

func (r *recordRepo) Save(ctx context.Context, jobID uuid.UUID, rec *bol.Record) (*StoredRecord, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("recordRepo.Save: encode payload: %w", err)
	}

	stored := &StoredRecord{
		ID:        uuid.New(),
		JobID:     jobID,
		Filename:  rec.Filename,
		BOLNumber: rec.BOLNumber,
		Payload:   string(payload),
		CreatedAt: time.Now().UTC(),
	}

	query := r.db.Rebind(`INSERT INTO bol_records (id, job_id, filename, bol_number, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query,
		stored.ID, stored.JobID, stored.Filename, stored.BOLNumber, stored.Payload, stored.CreatedAt); err != nil {
		r.log.Error("record save failed", "job_id", jobID, "filename", rec.Filename, "error", err)
		return nil, fmt.Errorf("recordRepo.Save: %w", err)
	}
	r.log.Info("record persisted", "record_id", stored.ID, "job_id", jobID, "filename", stored.Filename)
	return stored, nil
}

func (r *recordRepo) GetByJobID(ctx context.Context, jobID uuid.UUID) (*StoredRecord, error) {
	var stored StoredRecord
	query := r.db.Rebind(`SELECT * FROM bol_records WHERE job_id = ? ORDER BY created_at DESC LIMIT 1`)
	if err := r.db.GetContext(ctx, &stored, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("recordRepo.GetByJobID: %w", err)
	}
	return &stored, nil
}

func (r *recordRepo) ListByBOLNumber(ctx context.Context, bolNumber string) ([]StoredRecord, error) {
	var records []StoredRecord
	query := r.db.Rebind(`SELECT * FROM bol_records WHERE bol_number = ? ORDER BY created_at`)
	if err := r.db.SelectContext(ctx, &records, query, bolNumber); err != nil {
		return nil, fmt.Errorf("recordRepo.ListByBOLNumber: %w", err)
	}
	return records, nil
}
