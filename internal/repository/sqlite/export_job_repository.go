package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/repository"
)

const createExportJobsTable = `
CREATE TABLE IF NOT EXISTS export_jobs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	status TEXT NOT NULL,
	filter_category TEXT NOT NULL DEFAULT '',
	filter_search TEXT NOT NULL DEFAULT '',
	filter_low_stock INTEGER NOT NULL DEFAULT 0,
	location TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	requested_by INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	completed_at DATETIME NULL
);
`

type ExportJobRepository struct {
	db *sql.DB
}

func NewExportJobRepository(db *sql.DB) repository.ExportJobRepository {
	return &ExportJobRepository{db: db}
}

func (r *ExportJobRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createExportJobsTable); err != nil {
		return fmt.Errorf("create export jobs table: %w", err)
	}
	return nil
}

func (r *ExportJobRepository) Create(ctx context.Context, job *domain.ExportJob) (int64, error) {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = domain.ExportStatusPending
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO export_jobs (status, filter_category, filter_search, filter_low_stock, location, error_message, requested_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(job.Status),
		job.Filter.Category,
		job.Filter.Search,
		boolToInt(job.Filter.LowStock),
		job.Location,
		job.ErrorMessage,
		job.RequestedBy,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert export job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("export job last insert id: %w", err)
	}
	job.ID = id
	return id, nil
}

func (r *ExportJobRepository) Get(ctx context.Context, id int64) (*domain.ExportJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, status, filter_category, filter_search, filter_low_stock, location, error_message, requested_by, created_at, updated_at, completed_at
FROM export_jobs
WHERE id = ?`,
		id,
	)
	return scanExportJob(row)
}

func (r *ExportJobRepository) List(ctx context.Context) ([]domain.ExportJob, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, status, filter_category, filter_search, filter_low_stock, location, error_message, requested_by, created_at, updated_at, completed_at
FROM export_jobs
ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list export jobs: %w", err)
	}
	defer rows.Close()
	return collectExportJobs(rows)
}

func (r *ExportJobRepository) ListByStatuses(ctx context.Context, statuses ...domain.ExportStatus) ([]domain.ExportJob, error) {
	if len(statuses) == 0 {
		return r.List(ctx)
	}

	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = string(status)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, status, filter_category, filter_search, filter_low_stock, location, error_message, requested_by, created_at, updated_at, completed_at
FROM export_jobs
WHERE status IN (`+strings.Join(placeholders, ", ")+`)
ORDER BY created_at ASC, id ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list export jobs by status: %w", err)
	}
	defer rows.Close()
	return collectExportJobs(rows)
}

func (r *ExportJobRepository) UpdateStatus(ctx context.Context, id int64, status domain.ExportStatus, errorMessage *string) error {
	msg := ""
	if errorMessage != nil {
		msg = *errorMessage
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE export_jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(status), msg, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update export job status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update export job rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NotFoundError("export job not found")
	}
	return nil
}

func (r *ExportJobRepository) MarkCompleted(ctx context.Context, id int64, location string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE export_jobs SET status = ?, location = ?, error_message = '', updated_at = ?, completed_at = ? WHERE id = ?`,
		string(domain.ExportStatusCompleted), location, now, now, id,
	)
	if err != nil {
		return fmt.Errorf("mark export job completed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark export job rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NotFoundError("export job not found")
	}
	return nil
}

func collectExportJobs(rows *sql.Rows) ([]domain.ExportJob, error) {
	var jobs []domain.ExportJob
	for rows.Next() {
		job, err := scanExportJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export jobs: %w", err)
	}
	return jobs, nil
}

func scanExportJob(row interface {
	Scan(dest ...any) error
}) (*domain.ExportJob, error) {
	var job domain.ExportJob
	var status string
	var lowStock int64
	var completedAt sql.NullTime
	if err := row.Scan(
		&job.ID,
		&status,
		&job.Filter.Category,
		&job.Filter.Search,
		&lowStock,
		&job.Location,
		&job.ErrorMessage,
		&job.RequestedBy,
		&job.CreatedAt,
		&job.UpdatedAt,
		&completedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("export job not found")
		}
		return nil, fmt.Errorf("scan export job: %w", err)
	}
	job.Status = domain.ExportStatus(status)
	job.Filter.LowStock = lowStock != 0
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return &job, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
