package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/freightdocs/bol-extractor/constants"
)

// Job is one extraction run over one source document.
type Job struct {
	ID           uuid.UUID  `db:"id"`
	SourcePath   string     `db:"source_path"`
	Mode         string     `db:"mode"`
	Status       string     `db:"status"`
	ErrorMessage *string    `db:"error_message"`
	CreatedAt    time.Time  `db:"created_at"`
	StartedAt    *time.Time `db:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"`
}

type JobRepository interface {
	Create(ctx context.Context, sourcePath string, mode constants.ExtractionMode) (*Job, error)
	MarkRunning(ctx context.Context, id uuid.UUID) error
	MarkDone(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
}

type jobRepo struct {
	db  *sqlx.DB
	log *slog.Logger
}

func NewJobRepository(db *sqlx.DB, log *slog.Logger) JobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &jobRepo{db: db, log: log}
}

func (r *jobRepo) Create(ctx context.Context, sourcePath string, mode constants.ExtractionMode) (*Job, error) {
	job := &Job{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		Mode:       string(mode),
		Status:     string(constants.JobStatusQueued),
		CreatedAt:  time.Now().UTC(),
	}

	query := r.db.Rebind(`INSERT INTO extraction_jobs (id, source_path, mode, status, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, job.ID, job.SourcePath, job.Mode, job.Status, job.CreatedAt); err != nil {
		r.log.Error("job create failed", "source", sourcePath, "error", err)
		return nil, fmt.Errorf("jobRepo.Create: %w", err)
	}
	r.log.Info("extraction job created", "job_id", job.ID, "source", sourcePath, "mode", job.Mode)
	return job, nil
}

func (r *jobRepo) MarkRunning(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, "MarkRunning", id,
		`UPDATE extraction_jobs SET status = ?, started_at = ? WHERE id = ?`,
		string(constants.JobStatusRunning), time.Now().UTC(), id)
}

func (r *jobRepo) MarkDone(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, "MarkDone", id,
		`UPDATE extraction_jobs SET status = ?, finished_at = ? WHERE id = ?`,
		string(constants.JobStatusDone), time.Now().UTC(), id)
}

func (r *jobRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	err := r.update(ctx, "MarkFailed", id,
		`UPDATE extraction_jobs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(constants.JobStatusFailed), message, time.Now().UTC(), id)
	if err == nil {
		r.log.Warn("extraction job failed", "job_id", id, "error", message)
	}
	return err
}

func (r *jobRepo) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	var job Job
	query := r.db.Rebind(`SELECT * FROM extraction_jobs WHERE id = ?`)
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("jobRepo.GetByID: %w", err)
	}
	return &job, nil
}

func (r *jobRepo) update(ctx context.Context, op string, id uuid.UUID, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		r.log.Error("job update failed", "op", op, "job_id", id, "error", err)
		return fmt.Errorf("jobRepo.%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrJobNotFound
	}
	return nil
}
