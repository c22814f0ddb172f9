package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// SQLite driver registration.
	_ "github.com/mattn/go-sqlite3"
)

// Compile-time check that SQLiteRepository implements Repository.
var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepository implements Repository using SQLite. The production
// job table lives in a SQLite-dialect database, so this is also the
// faithful local backend.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the database at the given path
// and ensures the schema exists.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return repo, nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// initSchema creates the generation_jobs table if needed.
func (r *SQLiteRepository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS generation_jobs (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL DEFAULT '',
		aspect_ratio TEXT NOT NULL DEFAULT '',
		duration_sec INTEGER NOT NULL DEFAULT 0,
		resolution TEXT NOT NULL DEFAULT '',
		provider_job_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		video_url TEXT NOT NULL DEFAULT '',
		storage_key TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		actual_duration_sec REAL NOT NULL DEFAULT 0,
		cost REAL NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		conversation_id TEXT NOT NULL DEFAULT '',
		message_id TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		completed_at INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_generation_jobs_status ON generation_jobs(status);
	CREATE INDEX IF NOT EXISTS idx_generation_jobs_created ON generation_jobs(created_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Save persists a job, replacing any existing row with the same ID.
func (r *SQLiteRepository) Save(ctx context.Context, job *Job) error {
	query := `
		INSERT OR REPLACE INTO generation_jobs (
			id, prompt, provider, model, aspect_ratio, duration_sec,
			resolution, provider_job_id, status, video_url, storage_key,
			thumbnail_url, actual_duration_sec, cost, error_message,
			conversation_id, message_id, created_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var completedAt interface{}
	if job.CompletedAt != nil {
		completedAt = job.CompletedAt.Unix()
	}

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.Prompt, job.Provider, job.Model, job.AspectRatio,
		job.DurationSec, job.Resolution, job.ProviderJobID, string(job.Status),
		job.VideoURL, job.StorageKey, job.ThumbnailURL, job.ActualDurationSec,
		job.Cost, job.ErrorMessage, job.ConversationID, job.MessageID,
		job.CreatedAt.Unix(), completedAt,
	)
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

// Update applies a partial update, building the SET clause from the
// fields that are actually set.
func (r *SQLiteRepository) Update(ctx context.Context, id string, fields UpdateFields) error {
	var sets []string
	var args []interface{}

	if fields.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*fields.Status))
	}
	if fields.ProviderJobID != nil {
		sets = append(sets, "provider_job_id = ?")
		args = append(args, *fields.ProviderJobID)
	}
	if fields.VideoURL != nil {
		sets = append(sets, "video_url = ?")
		args = append(args, *fields.VideoURL)
	}
	if fields.StorageKey != nil {
		sets = append(sets, "storage_key = ?")
		args = append(args, *fields.StorageKey)
	}
	if fields.ThumbnailURL != nil {
		sets = append(sets, "thumbnail_url = ?")
		args = append(args, *fields.ThumbnailURL)
	}
	if fields.ActualDurationSec != nil {
		sets = append(sets, "actual_duration_sec = ?")
		args = append(args, *fields.ActualDurationSec)
	}
	if fields.Cost != nil {
		sets = append(sets, "cost = ?")
		args = append(args, *fields.Cost)
	}
	if fields.ErrorMessage != nil {
		sets = append(sets, "error_message = ?")
		args = append(args, *fields.ErrorMessage)
	}
	if fields.CompletedAt != nil {
		sets = append(sets, "completed_at = ?")
		args = append(args, fields.CompletedAt.Unix())
	}

	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE generation_jobs SET %s WHERE id = ?", strings.Join(sets, ", "))
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job rows affected: %w", err)
	}
	if affected == 0 {
		return ErrJobNotFound
	}
	return nil
}

const selectColumns = `
	id, prompt, provider, model, aspect_ratio, duration_sec, resolution,
	provider_job_id, status, video_url, storage_key, thumbnail_url,
	actual_duration_sec, cost, error_message, conversation_id, message_id,
	created_at, completed_at
`

// FindByID retrieves a job by its ID.
func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (*Job, error) {
	query := "SELECT " + selectColumns + " FROM generation_jobs WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, id)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("find job: %w", err)
	}
	return job, nil
}

// List returns all jobs, newest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]*Job, error) {
	query := "SELECT " + selectColumns + " FROM generation_jobs ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Delete removes a job from storage.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM generation_jobs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete job rows affected: %w", err)
	}
	if affected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanJob.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanJob reads one job row.
func scanJob(s scanner) (*Job, error) {
	var (
		job         Job
		status      string
		createdAt   int64
		completedAt sql.NullInt64
	)

	err := s.Scan(
		&job.ID, &job.Prompt, &job.Provider, &job.Model, &job.AspectRatio,
		&job.DurationSec, &job.Resolution, &job.ProviderJobID, &status,
		&job.VideoURL, &job.StorageKey, &job.ThumbnailURL,
		&job.ActualDurationSec, &job.Cost, &job.ErrorMessage,
		&job.ConversationID, &job.MessageID, &createdAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Status = Status(status)
	job.CreatedAt = time.Unix(createdAt, 0)
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0)
		job.CompletedAt = &t
	}
	return &job, nil
}
