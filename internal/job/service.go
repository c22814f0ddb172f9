package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brandforge/videogen-api/internal/provider"
	"github.com/brandforge/videogen-api/internal/storage"
)

// MaxPromptLength is the longest prompt accepted for generation.
const MaxPromptLength = 4000

// Static errors mapping to the service's error taxonomy. Handlers
// translate these into HTTP status codes.
var (
	// ErrInvalidPrompt is a client input error: missing, blank, or
	// oversize prompt.
	ErrInvalidPrompt = errors.New("prompt is required and must be at most 4000 characters")
	// ErrNoProviderConfigured is a configuration error: no enabled,
	// video-capable provider key matches the request.
	ErrNoProviderConfigured = errors.New("no video provider configured")
	// ErrProviderFailure is a gateway error: the remote provider rejected
	// or failed the generation.
	ErrProviderFailure = errors.New("provider generation failed")
)

// GenerateInput contains the parameters for a generation request.
type GenerateInput struct {
	Prompt         string
	Provider       string // Optional explicit provider choice
	Model          string // Optional model ID
	AspectRatio    string
	DurationSec    int // 0 = provider default
	Resolution     string
	ConversationID string // Optional chat conversation linkage
	MessageID      string // Optional chat message linkage
}

// Service implements the generation request flow: validate, resolve a
// provider key, sanitize the duration, submit, persist the job row.
type Service struct {
	repo      Repository
	registry  *provider.Registry
	artifacts storage.Store
	logger    *slog.Logger
}

// NewService creates a new generation Service.
func NewService(repo Repository, registry *provider.Registry, artifacts storage.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		registry:  registry,
		artifacts: artifacts,
		logger:    logger,
	}
}

// Generate validates the input, submits it to the resolved provider, and
// persists the resulting job. Synchronous vendor completions come back as
// complete jobs; queued submissions come back pending with the provider
// job ID set for the streaming endpoint to carry to completion.
func (s *Service) Generate(ctx context.Context, input GenerateInput) (*Job, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" || len(prompt) > MaxPromptLength {
		return nil, ErrInvalidPrompt
	}

	key, adapter, err := s.registry.ResolveEnabledKey(ctx, input.Provider)
	if err != nil {
		return nil, fmt.Errorf("resolve provider key: %w", err)
	}
	if key == nil {
		return nil, ErrNoProviderConfigured
	}

	model := s.selectModel(*key, input.Model)

	// Unsupported durations are dropped, not rejected: the adapter falls
	// back to the model's default length.
	duration := input.DurationSec
	if duration != 0 && !model.SupportsDuration(duration) {
		s.logger.Warn("dropping unsupported duration",
			slog.Int("duration", duration),
			slog.String("model", model.ID),
		)
		duration = 0
	}

	j := New()
	j.Prompt = prompt
	j.Provider = key.Provider
	j.Model = model.ID
	j.AspectRatio = input.AspectRatio
	j.DurationSec = duration
	j.Resolution = input.Resolution
	j.ConversationID = input.ConversationID
	j.MessageID = input.MessageID

	result, err := adapter.GenerateVideo(ctx, key.APIKey, provider.Request{
		Prompt:      prompt,
		Model:       model.ID,
		AspectRatio: input.AspectRatio,
		DurationSec: duration,
		Resolution:  input.Resolution,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	if result.Status == provider.StatusError {
		return nil, fmt.Errorf("%w: %s", ErrProviderFailure, result.Error)
	}

	j.ProviderJobID = result.ProviderJobID

	switch result.Status {
	case provider.StatusComplete:
		// Vendor finished synchronously. Bookkeeping failures must not
		// block the success response.
		dur := actualDuration(result.DurationSec, duration, model)
		if err := j.Complete(result.VideoURL, result.ThumbnailURL, dur, model.Pricing.Cost(dur)); err != nil {
			return nil, fmt.Errorf("complete job: %w", err)
		}
		if err := s.repo.Save(ctx, j); err != nil {
			s.logger.Error("failed to persist completed job",
				slog.String("job_id", j.ID),
				slog.String("error", err.Error()),
			)
		}
		return j, nil

	case provider.StatusProcessing:
		if err := j.TransitionTo(StatusProcessing); err != nil {
			return nil, fmt.Errorf("mark job processing: %w", err)
		}
	case provider.StatusQueued:
		// Stays pending.
	}

	// The streaming endpoint reads this row to drive polling, so a
	// persistence failure here is a real error.
	if err := s.repo.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}

	s.logger.Info("generation submitted",
		slog.String("job_id", j.ID),
		slog.String("provider", j.Provider),
		slog.String("model", j.Model),
		slog.String("provider_job_id", j.ProviderJobID),
		slog.String("status", string(j.Status)),
	)

	return j, nil
}

// selectModel picks the model to use for a key: the requested model if the
// key allows it, otherwise the first model the key permits, otherwise the
// adapter's first catalog entry.
func (s *Service) selectModel(key provider.KeyConfig, requested string) provider.Model {
	allowed := s.registry.ModelsForKey(key)
	if requested != "" {
		if m, ok := provider.FindModel(allowed, requested); ok {
			return m
		}
	}
	if len(allowed) > 0 {
		return allowed[0]
	}
	adapter := s.registry.AdapterFor(key.Provider)
	if adapter != nil {
		if catalog := adapter.Models(); len(catalog) > 0 {
			return catalog[0]
		}
	}
	return provider.Model{Provider: key.Provider}
}

// actualDuration resolves the duration used for cost accounting: the
// vendor-reported length when available, else the requested length, else
// the model's first supported duration.
func actualDuration(reported float64, requested int, model provider.Model) float64 {
	if reported > 0 {
		return reported
	}
	if requested > 0 {
		return float64(requested)
	}
	if len(model.SupportedDurations) > 0 {
		return float64(model.SupportedDurations[0])
	}
	return 0
}

// Get retrieves a job by ID.
func (s *Service) Get(ctx context.Context, id string) (*Job, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns all jobs, newest first.
func (s *Service) List(ctx context.Context) ([]*Job, error) {
	return s.repo.List(ctx)
}

// Delete removes a job and best-effort deletes its stored artifact.
func (s *Service) Delete(ctx context.Context, id string) error {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if j.StorageKey != "" && s.artifacts != nil {
		if err := s.artifacts.Delete(ctx, j.StorageKey); err != nil {
			s.logger.Warn("failed to delete artifact",
				slog.String("job_id", id),
				slog.String("storage_key", j.StorageKey),
				slog.String("error", err.Error()),
			)
		}
	}

	return s.repo.Delete(ctx, id)
}
