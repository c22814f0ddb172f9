package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brandforge/videogen-api/internal/provider"
	"github.com/brandforge/videogen-api/internal/storage"
)

// Event is one message emitted on a job's event stream. Terminal events
// (complete or error) are emitted exactly once and nothing follows them.
type Event struct {
	// Status is the job status as of this event.
	Status string `json:"status"`
	// Progress is the completion percentage while processing.
	Progress *float64 `json:"progress,omitempty"`
	// Message carries non-fatal notes, e.g. a transient polling error.
	Message string `json:"message,omitempty"`
	// VideoURL is the playable source, set on terminal complete events.
	VideoURL string `json:"videoUrl,omitempty"`
	// ThumbnailURL is set on terminal complete events when available.
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	// Duration is the actual clip length in seconds.
	Duration float64 `json:"duration,omitempty"`
	// Error is the failure message on terminal error events.
	Error string `json:"error,omitempty"`
}

// EmitFunc delivers one event to the client. Returning an error stops the
// stream (the client is gone).
type EmitFunc func(Event) error

// PollConfig bounds the orchestrator's polling loop.
type PollConfig struct {
	// Interval is the fixed wait between status polls.
	Interval time.Duration
	// MaxDuration is the wall-clock bound on the whole loop.
	MaxDuration time.Duration
	// MaxAttempts is the bound on the number of status polls.
	MaxAttempts int
}

// DefaultPollConfig returns the production polling bounds.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:    3 * time.Second,
		MaxDuration: 10 * time.Minute,
		MaxAttempts: 200,
	}
}

// Orchestrator carries queued jobs to completion. One Stream call runs as
// a single sequential flow per client connection: it polls the provider at
// a fixed interval, emits progress events, persists the finished artifact
// best-effort, and emits exactly one terminal event.
type Orchestrator struct {
	repo      Repository
	registry  *provider.Registry
	artifacts storage.Store
	clock     Clock
	cfg       PollConfig
	logger    *slog.Logger
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(repo Repository, registry *provider.Registry, artifacts storage.Store, clock Clock, cfg PollConfig, logger *slog.Logger) *Orchestrator {
	if clock == nil {
		clock = NewRealClock()
	}
	if cfg.Interval <= 0 {
		cfg = DefaultPollConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		repo:      repo,
		registry:  registry,
		artifacts: artifacts,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// Stream drives one job to a terminal state, emitting events along the
// way. Jobs already terminal yield a single snapshot event and no polling.
// Returns the context error when the client disconnects mid-stream.
func (o *Orchestrator) Stream(ctx context.Context, jobID string, emit EmitFunc) error {
	j, err := o.repo.FindByID(ctx, jobID)
	if err != nil {
		return emit(Event{Status: string(StatusError), Error: "job not found"})
	}

	// Idempotent short-circuit: finished jobs are never polled again.
	if j.IsTerminal() {
		return emit(o.snapshotEvent(j))
	}

	// Keys may have been disabled since submission, so resolve again.
	key, adapter, err := o.registry.ResolveEnabledKey(ctx, j.Provider)
	if err != nil || key == nil {
		return emit(Event{Status: string(StatusError), Error: "no video provider configured"})
	}

	deadline := o.clock.Now().Add(o.cfg.MaxDuration)

	for attempt := 0; ; attempt++ {
		if attempt >= o.cfg.MaxAttempts || o.clock.Now().After(deadline) {
			o.persistFailure(ctx, j, "generation timed out")
			return emit(Event{Status: string(StatusError), Error: "generation timed out"})
		}

		result, err := adapter.GetStatus(ctx, key.APIKey, j.ProviderJobID)
		if err != nil {
			// Transient poll failure: report and keep polling until the
			// overall bound is hit.
			o.logger.Warn("status poll failed",
				slog.String("job_id", j.ID),
				slog.String("error", err.Error()),
			)
			if err := emit(Event{Status: string(StatusProcessing), Message: "temporary polling error"}); err != nil {
				return err
			}
			if err := o.wait(ctx); err != nil {
				return err
			}
			continue
		}

		switch result.Status {
		case provider.StatusError:
			o.persistFailure(ctx, j, result.Error)
			return emit(Event{Status: string(StatusError), Error: result.Error})

		case provider.StatusComplete:
			return o.finish(ctx, j, key, adapter, result, emit)

		default:
			if j.Status == StatusPending && result.Status == provider.StatusProcessing {
				o.markProcessing(ctx, j)
			}
			ev := Event{Status: string(StatusProcessing)}
			if result.Progress > 0 {
				p := result.Progress
				ev.Progress = &p
			}
			if err := emit(ev); err != nil {
				return err
			}
			if err := o.wait(ctx); err != nil {
				return err
			}
		}
	}
}

// finish handles a completed generation: best-effort artifact download and
// upload, cost accounting, best-effort row update, then the terminal
// event. Persistence failures never hide a successful generation from the
// client.
func (o *Orchestrator) finish(ctx context.Context, j *Job, key *provider.KeyConfig, adapter provider.Adapter, result provider.Result, emit EmitFunc) error {
	videoURL := result.VideoURL
	storageKey := ""

	if o.artifacts != nil && result.VideoURL != "" {
		data, contentType, err := adapter.DownloadVideo(ctx, key.APIKey, result.VideoURL)
		if err != nil {
			o.logger.Warn("artifact download failed, falling back to provider URL",
				slog.String("job_id", j.ID),
				slog.String("error", err.Error()),
			)
		} else {
			k := artifactKey(j.ID)
			url, err := o.artifacts.Put(ctx, k, data, contentType)
			if err != nil {
				o.logger.Warn("artifact upload failed, falling back to provider URL",
					slog.String("job_id", j.ID),
					slog.String("error", err.Error()),
				)
			} else {
				storageKey = k
				if url != "" {
					videoURL = url
				}
			}
		}
	}

	duration := result.DurationSec
	if duration == 0 && j.DurationSec > 0 {
		duration = float64(j.DurationSec)
	}
	cost := o.costFor(adapter, j.Model, duration)

	now := o.clock.Now()
	status := StatusComplete
	fields := UpdateFields{
		Status:            &status,
		VideoURL:          &videoURL,
		ActualDurationSec: &duration,
		Cost:              &cost,
		CompletedAt:       &now,
	}
	if storageKey != "" {
		fields.StorageKey = &storageKey
	}
	if result.ThumbnailURL != "" {
		fields.ThumbnailURL = &result.ThumbnailURL
	}
	if err := o.repo.Update(ctx, j.ID, fields); err != nil {
		o.logger.Error("failed to persist completed job",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
	}

	ev := Event{
		Status:       string(StatusComplete),
		VideoURL:     videoURL,
		ThumbnailURL: result.ThumbnailURL,
		Duration:     duration,
	}
	return emit(ev)
}

// wait sleeps one poll interval, honoring client cancellation.
func (o *Orchestrator) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-o.clock.After(o.cfg.Interval):
		return nil
	}
}

// markProcessing records the pending→processing transition, best-effort.
func (o *Orchestrator) markProcessing(ctx context.Context, j *Job) {
	j.Status = StatusProcessing
	status := StatusProcessing
	if err := o.repo.Update(ctx, j.ID, UpdateFields{Status: &status}); err != nil {
		o.logger.Warn("failed to mark job processing",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
	}
}

// persistFailure records a terminal error on the job row, best-effort.
func (o *Orchestrator) persistFailure(ctx context.Context, j *Job, message string) {
	now := o.clock.Now()
	status := StatusError
	if err := o.repo.Update(ctx, j.ID, UpdateFields{
		Status:       &status,
		ErrorMessage: &message,
		CompletedAt:  &now,
	}); err != nil {
		o.logger.Error("failed to persist job failure",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
	}
}

// costFor computes the cost for a model and duration from the adapter's
// catalog pricing.
func (o *Orchestrator) costFor(adapter provider.Adapter, modelID string, duration float64) float64 {
	model, ok := provider.FindModel(adapter.Models(), modelID)
	if !ok {
		return 0
	}
	return model.Pricing.Cost(duration)
}

// snapshotEvent builds the single event emitted for an already-terminal job.
func (o *Orchestrator) snapshotEvent(j *Job) Event {
	if j.Status == StatusError {
		return Event{Status: string(StatusError), Error: j.ErrorMessage}
	}
	return Event{
		Status:       string(StatusComplete),
		VideoURL:     j.VideoURL,
		ThumbnailURL: j.ThumbnailURL,
		Duration:     j.ActualDurationSec,
	}
}

// artifactKey is the deterministic object-store key for a job's artifact.
func artifactKey(jobID string) string {
	return fmt.Sprintf("videos/%s.mp4", jobID)
}
