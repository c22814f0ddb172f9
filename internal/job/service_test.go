package job

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandforge/videogen-api/internal/keystore"
	"github.com/brandforge/videogen-api/internal/provider"
	"github.com/brandforge/videogen-api/internal/storage"
)

// serviceFixture wires a Service over in-memory collaborators.
type serviceFixture struct {
	repo      *MemoryRepository
	artifacts *storage.MemoryStore
	service   *Service
}

func newServiceFixture(t *testing.T, adapter *scriptedAdapter, keys ...provider.KeyConfig) *serviceFixture {
	t.Helper()

	registry := provider.NewRegistry(keystore.NewMemoryStore(keys...), adapter)
	repo := NewMemoryRepository()
	artifacts := storage.NewMemoryStore("")

	return &serviceFixture{
		repo:      repo,
		artifacts: artifacts,
		service:   NewService(repo, registry, artifacts, nil),
	}
}

func enabledKey(providerName string) provider.KeyConfig {
	return provider.KeyConfig{
		Provider:     providerName,
		APIKey:       "sk-test",
		Enabled:      true,
		VideoCapable: true,
	}
}

func TestService_Generate_QueuedSubmission(t *testing.T) {
	adapter := newScriptedAdapter()
	adapter.genResult = provider.Result{Status: provider.StatusQueued, ProviderJobID: "job-123"}
	f := newServiceFixture(t, adapter, enabledKey("testprov"))

	j, err := f.service.Generate(context.Background(), GenerateInput{
		Prompt: "A sunset over the ocean",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, j.ID)
	assert.Equal(t, StatusPending, j.Status)
	assert.Equal(t, "job-123", j.ProviderJobID)
	assert.Equal(t, "testprov", j.Provider)
	assert.Equal(t, testModel.ID, j.Model)

	saved, err := f.repo.FindByID(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, saved.Status)
	assert.Equal(t, "job-123", saved.ProviderJobID)
}

func TestService_Generate_PromptValidation(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
	}{
		{"empty", ""},
		{"blank after trimming", "   \t\n  "},
		{"over 4000 characters", strings.Repeat("a", 4001)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newScriptedAdapter()
			f := newServiceFixture(t, adapter, enabledKey("testprov"))

			_, err := f.service.Generate(context.Background(), GenerateInput{Prompt: tt.prompt})
			assert.ErrorIs(t, err, ErrInvalidPrompt)
			assert.Equal(t, 0, adapter.generateCalls, "validation rejects before any provider call")
		})
	}
}

func TestService_Generate_PromptAtLimitAccepted(t *testing.T) {
	adapter := newScriptedAdapter()
	adapter.genResult = provider.Result{Status: provider.StatusQueued, ProviderJobID: "job-1"}
	f := newServiceFixture(t, adapter, enabledKey("testprov"))

	_, err := f.service.Generate(context.Background(), GenerateInput{
		Prompt: strings.Repeat("a", MaxPromptLength),
	})
	require.NoError(t, err)
}

func TestService_Generate_NoProviderConfigured(t *testing.T) {
	adapter := newScriptedAdapter()
	f := newServiceFixture(t, adapter) // no keys stored

	_, err := f.service.Generate(context.Background(), GenerateInput{Prompt: "a cat"})
	assert.ErrorIs(t, err, ErrNoProviderConfigured)
	assert.Equal(t, 0, adapter.generateCalls)
}

func TestService_Generate_PreferredProviderNotConfigured(t *testing.T) {
	adapter := newScriptedAdapter()
	f := newServiceFixture(t, adapter, enabledKey("testprov"))

	_, err := f.service.Generate(context.Background(), GenerateInput{
		Prompt:   "a cat",
		Provider: "someother",
	})
	assert.ErrorIs(t, err, ErrNoProviderConfigured)
}

func TestService_Generate_UnsupportedDurationDropped(t *testing.T) {
	adapter := newScriptedAdapter()
	adapter.genResult = provider.Result{Status: provider.StatusQueued, ProviderJobID: "job-1"}
	f := newServiceFixture(t, adapter, enabledKey("testprov"))

	j, err := f.service.Generate(context.Background(), GenerateInput{
		Prompt:      "a cat",
		DurationSec: 7, // model supports 4, 8, 12
	})
	require.NoError(t, err)

	assert.Equal(t, 0, adapter.lastRequest.DurationSec, "unsupported duration is dropped, not rejected")
	assert.Equal(t, 0, j.DurationSec)
}

func TestService_Generate_SupportedDurationPassedThrough(t *testing.T) {
	adapter := newScriptedAdapter()
	adapter.genResult = provider.Result{Status: provider.StatusQueued, ProviderJobID: "job-1"}
	f := newServiceFixture(t, adapter, enabledKey("testprov"))

	j, err := f.service.Generate(context.Background(), GenerateInput{
		Prompt:      "a cat",
		DurationSec: 8,
	})
	require.NoError(t, err)

	assert.Equal(t, 8, adapter.lastRequest.DurationSec)
	assert.Equal(t, 8, j.DurationSec)
}

func TestService_Generate_ProviderErrorResult(t *testing.T) {
	adapter := newScriptedAdapter()
	adapter.genResult = provider.Result{Status: provider.StatusError, Error: "safety rejection"}
	f := newServiceFixture(t, adapter, enabledKey("testprov"))

	_, err := f.service.Generate(context.Background(), GenerateInput{Prompt: "a cat"})
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.Contains(t, err.Error(), "safety rejection")
}

func TestService_Generate_TransportError(t *testing.T) {
	adapter := newScriptedAdapter()
	adapter.genErr = errors.New("dial tcp: connection refused")
	f := newServiceFixture(t, adapter, enabledKey("testprov"))

	_, err := f.service.Generate(context.Background(), GenerateInput{Prompt: "a cat"})
	assert.ErrorIs(t, err, ErrProviderFailure)
}

func TestService_Generate_SynchronousComplete(t *testing.T) {
	adapter := newScriptedAdapter()
	adapter.genResult = provider.Result{
		Status:        provider.StatusComplete,
		ProviderJobID: "job-sync",
		VideoURL:      "https://vendor.example.com/out.mp4",
		DurationSec:   4,
	}
	f := newServiceFixture(t, adapter, enabledKey("testprov"))

	j, err := f.service.Generate(context.Background(), GenerateInput{Prompt: "a cat"})
	require.NoError(t, err)

	assert.Equal(t, StatusComplete, j.Status)
	assert.Equal(t, "https://vendor.example.com/out.mp4", j.VideoURL)
	assert.Equal(t, 4.0, j.ActualDurationSec)
	assert.InDelta(t, 0.40, j.Cost, 1e-9, "per-second pricing: 0.10 * 4s")
	assert.NotNil(t, j.CompletedAt)

	saved, err := f.repo.FindByID(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, saved.Status)
}

func TestService_Generate_SynchronousCompleteSaveFailureSwallowed(t *testing.T) {
	adapter := newScriptedAdapter()
	adapter.genResult = provider.Result{
		Status:      provider.StatusComplete,
		VideoURL:    "https://vendor.example.com/out.mp4",
		DurationSec: 4,
	}

	registry := provider.NewRegistry(keystore.NewMemoryStore(enabledKey("testprov")), adapter)
	repo := &failingSaveRepository{MemoryRepository: NewMemoryRepository()}
	svc := NewService(repo, registry, storage.NewMemoryStore(""), nil)

	j, err := svc.Generate(context.Background(), GenerateInput{Prompt: "a cat"})
	require.NoError(t, err, "bookkeeping failure must not block the success response")
	assert.Equal(t, StatusComplete, j.Status)
}

func TestService_Generate_QueuedSaveFailureIsFatal(t *testing.T) {
	adapter := newScriptedAdapter()
	adapter.genResult = provider.Result{Status: provider.StatusQueued, ProviderJobID: "job-1"}

	registry := provider.NewRegistry(keystore.NewMemoryStore(enabledKey("testprov")), adapter)
	repo := &failingSaveRepository{MemoryRepository: NewMemoryRepository()}
	svc := NewService(repo, registry, storage.NewMemoryStore(""), nil)

	_, err := svc.Generate(context.Background(), GenerateInput{Prompt: "a cat"})
	require.Error(t, err, "the stream endpoint needs the row, so this save must not be swallowed")
}

func TestService_Generate_ProcessingResultMarksProcessing(t *testing.T) {
	adapter := newScriptedAdapter()
	adapter.genResult = provider.Result{Status: provider.StatusProcessing, ProviderJobID: "job-1"}
	f := newServiceFixture(t, adapter, enabledKey("testprov"))

	j, err := f.service.Generate(context.Background(), GenerateInput{Prompt: "a cat"})
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, j.Status)
}

func TestService_Generate_ModelSelection(t *testing.T) {
	hq := testModel
	hq.ID = "test-model-hq"
	hq.Pricing = provider.Pricing{Mode: provider.PricePerSecond, Amount: 0.30, Currency: "USD"}

	adapter := newScriptedAdapter()
	adapter.models = []provider.Model{testModel, hq}
	adapter.genResult = provider.Result{Status: provider.StatusQueued, ProviderJobID: "job-1"}

	t.Run("requested model used when allowed", func(t *testing.T) {
		f := newServiceFixture(t, adapter, enabledKey("testprov"))
		j, err := f.service.Generate(context.Background(), GenerateInput{
			Prompt: "a cat",
			Model:  "test-model-hq",
		})
		require.NoError(t, err)
		assert.Equal(t, "test-model-hq", j.Model)
	})

	t.Run("disallowed model falls back to first permitted", func(t *testing.T) {
		key := enabledKey("testprov")
		key.Models = []string{testModel.ID}
		f := newServiceFixture(t, adapter, key)
		j, err := f.service.Generate(context.Background(), GenerateInput{
			Prompt: "a cat",
			Model:  "test-model-hq",
		})
		require.NoError(t, err)
		assert.Equal(t, testModel.ID, j.Model)
	})
}

func TestService_Generate_ChatLinkageCarried(t *testing.T) {
	adapter := newScriptedAdapter()
	adapter.genResult = provider.Result{Status: provider.StatusQueued, ProviderJobID: "job-1"}
	f := newServiceFixture(t, adapter, enabledKey("testprov"))

	j, err := f.service.Generate(context.Background(), GenerateInput{
		Prompt:         "a cat",
		ConversationID: "conv-42",
		MessageID:      "msg-7",
	})
	require.NoError(t, err)
	assert.Equal(t, "conv-42", j.ConversationID)
	assert.Equal(t, "msg-7", j.MessageID)
}

func TestService_Delete_RemovesJobAndArtifact(t *testing.T) {
	adapter := newScriptedAdapter()
	f := newServiceFixture(t, adapter, enabledKey("testprov"))
	ctx := context.Background()

	j := New()
	j.Prompt = "a cat"
	j.Provider = "testprov"
	require.NoError(t, j.Complete("memory://videos/x.mp4", "", 4, 0.4))
	j.StorageKey = "videos/x.mp4"
	require.NoError(t, f.repo.Save(ctx, j))
	_, err := f.artifacts.Put(ctx, "videos/x.mp4", []byte("data"), "video/mp4")
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, j.ID))

	_, err = f.repo.FindByID(ctx, j.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, _, ok := f.artifacts.Get("videos/x.mp4")
	assert.False(t, ok, "artifact removed alongside the row")
}

func TestService_Delete_ArtifactFailureStillDeletesRow(t *testing.T) {
	adapter := newScriptedAdapter()
	registry := provider.NewRegistry(keystore.NewMemoryStore(enabledKey("testprov")), adapter)
	repo := NewMemoryRepository()
	svc := NewService(repo, registry, failingArtifactStore{}, nil)
	ctx := context.Background()

	j := New()
	j.Prompt = "a cat"
	require.NoError(t, j.Complete("memory://videos/x.mp4", "", 4, 0.4))
	j.StorageKey = "videos/x.mp4"
	require.NoError(t, repo.Save(ctx, j))

	require.NoError(t, svc.Delete(ctx, j.ID), "artifact deletion is best-effort")

	_, err := repo.FindByID(ctx, j.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

// failingSaveRepository rejects every Save call.
type failingSaveRepository struct {
	*MemoryRepository
}

func (r *failingSaveRepository) Save(context.Context, *Job) error {
	return errors.New("database unavailable")
}
