package job

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound is returned when a job cannot be found by ID.
var ErrJobNotFound = errors.New("job not found")

// UpdateFields describes a partial update of a job row. Nil fields are
// left untouched, so callers can record only what changed.
type UpdateFields struct {
	Status            *Status
	ProviderJobID     *string
	VideoURL          *string
	StorageKey        *string
	ThumbnailURL      *string
	ActualDurationSec *float64
	Cost              *float64
	ErrorMessage      *string
	CompletedAt       *time.Time
}

// Repository defines the interface for job persistence.
type Repository interface {
	// Save persists a job. If the job already exists, it is replaced.
	Save(ctx context.Context, job *Job) error

	// Update applies a partial update to a job row.
	// Returns ErrJobNotFound if the job does not exist.
	Update(ctx context.Context, id string, fields UpdateFields) error

	// FindByID retrieves a job by its unique identifier.
	// Returns ErrJobNotFound if the job does not exist.
	FindByID(ctx context.Context, id string) (*Job, error)

	// List returns all jobs, newest first.
	List(ctx context.Context) ([]*Job, error)

	// Delete removes a job.
	// Returns ErrJobNotFound if the job does not exist.
	Delete(ctx context.Context, id string) error
}

// apply mutates a job in place according to the set fields.
// Shared by the in-memory and SQLite repositories.
func (f UpdateFields) apply(j *Job) {
	if f.Status != nil {
		j.Status = *f.Status
	}
	if f.ProviderJobID != nil {
		j.ProviderJobID = *f.ProviderJobID
	}
	if f.VideoURL != nil {
		j.VideoURL = *f.VideoURL
	}
	if f.StorageKey != nil {
		j.StorageKey = *f.StorageKey
	}
	if f.ThumbnailURL != nil {
		j.ThumbnailURL = *f.ThumbnailURL
	}
	if f.ActualDurationSec != nil {
		j.ActualDurationSec = *f.ActualDurationSec
	}
	if f.Cost != nil {
		j.Cost = *f.Cost
	}
	if f.ErrorMessage != nil {
		j.ErrorMessage = *f.ErrorMessage
	}
	if f.CompletedAt != nil {
		t := *f.CompletedAt
		j.CompletedAt = &t
	}
}
