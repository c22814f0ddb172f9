// Package job provides the GenerationJob aggregate for AI video
// generation requests. It includes the job entity with monotonic state
// transitions, repository ports for persistence, the generation service,
// and the polling/streaming orchestrator.
package job

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a GenerationJob.
type Status string

const (
	// StatusPending indicates the job was accepted but the provider has
	// not started generating yet.
	StatusPending Status = "pending"
	// StatusProcessing indicates the provider is generating.
	StatusProcessing Status = "processing"
	// StatusComplete indicates the generation finished successfully.
	StatusComplete Status = "complete"
	// StatusError indicates the generation failed.
	StatusError Status = "error"
)

// IsTerminal returns true if the status represents a final state.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusError
}

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
// Transitions are monotonic: terminal states never move backward.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusComplete, StatusError},
	StatusProcessing: {StatusComplete, StatusError},
	StatusComplete:   {},
	StatusError:      {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Job represents one video-generation request and its evolving
// status and result.
type Job struct {
	// ID is the unique identifier for this job.
	ID string
	// Prompt is the text description the video was generated from.
	Prompt string
	// Provider is the provider name that accepted the request.
	Provider string
	// Model is the provider model ID used for generation.
	Model string
	// AspectRatio is the requested aspect ratio.
	AspectRatio string
	// DurationSec is the requested clip length (0 = provider default).
	DurationSec int
	// Resolution is the requested output resolution.
	Resolution string
	// ProviderJobID is the vendor's identifier for the generation task.
	// Immutable once set.
	ProviderJobID string
	// Status is the current job state.
	Status Status
	// VideoURL is the playable source: the object-store URL once the
	// artifact is persisted, or the provider-hosted URL as a fallback.
	VideoURL string
	// StorageKey is the object-store key of the persisted artifact.
	// Set at most once, only for complete jobs.
	StorageKey string
	// ThumbnailURL is an optional thumbnail for the finished video.
	ThumbnailURL string
	// ActualDurationSec is the real clip length reported on completion.
	ActualDurationSec float64
	// Cost is the estimated generation cost from the model's pricing.
	Cost float64
	// ErrorMessage contains the failure message when Status is error.
	ErrorMessage string
	// ConversationID links the job to a chat conversation, if any.
	ConversationID string
	// MessageID links the job to a chat message, if any.
	MessageID string
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// CompletedAt is when the job reached a terminal state.
	CompletedAt *time.Time
}

// New creates a new Job with a generated ID and initial pending status.
func New() *Job {
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}
	j.Status = status
	if status.IsTerminal() {
		now := time.Now()
		j.CompletedAt = &now
	}
	return nil
}

// Complete transitions the job to the complete state and records the
// result fields.
func (j *Job) Complete(videoURL, thumbnailURL string, actualDuration, cost float64) error {
	if err := j.TransitionTo(StatusComplete); err != nil {
		return err
	}
	j.VideoURL = videoURL
	j.ThumbnailURL = thumbnailURL
	j.ActualDurationSec = actualDuration
	j.Cost = cost
	return nil
}

// Fail transitions the job to the error state with a message.
func (j *Job) Fail(message string) error {
	if err := j.TransitionTo(StatusError); err != nil {
		return err
	}
	j.ErrorMessage = message
	return nil
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// Clone creates a copy of the job for safe reads.
func (j *Job) Clone() *Job {
	clone := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		clone.CompletedAt = &t
	}
	return &clone
}
