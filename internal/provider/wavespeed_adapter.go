package provider

import (
	"context"
	"fmt"

	"github.com/brandforge/videogen-api/internal/wavespeed"
)

// wavespeedModels is the static catalog of WaveSpeed video models.
var wavespeedModels = []Model{
	{
		ID:                 "wavespeed-ai/wan-2.2/t2v-480p",
		Name:               "WAN 2.2 Text-to-Video 480p",
		Provider:           NameWaveSpeed,
		MaxDurationSec:     8,
		SupportedDurations: []int{5, 8},
		AspectRatios:       []string{"16:9", "9:16", "1:1"},
		Resolutions:        []string{"480p"},
		Pricing:            Pricing{Mode: PricePerGeneration, Amount: 0.20, Currency: "USD"},
	},
	{
		ID:                 "wavespeed-ai/wan-2.2/t2v-720p",
		Name:               "WAN 2.2 Text-to-Video 720p",
		Provider:           NameWaveSpeed,
		MaxDurationSec:     8,
		SupportedDurations: []int{5, 8},
		AspectRatios:       []string{"16:9", "9:16", "1:1"},
		Resolutions:        []string{"720p"},
		Pricing:            Pricing{Mode: PricePerGeneration, Amount: 0.40, Currency: "USD"},
	},
	{
		ID:                 "minimax/hailuo-02/standard",
		Name:               "Hailuo 02 Standard",
		Provider:           NameWaveSpeed,
		MaxDurationSec:     10,
		SupportedDurations: []int{6, 10},
		AspectRatios:       []string{"16:9", "9:16"},
		Resolutions:        []string{"768p"},
		Pricing:            Pricing{Mode: PricePerSecond, Amount: 0.045, Currency: "USD"},
	},
}

// WaveSpeedAdapter adapts the WaveSpeed client to the Adapter interface.
type WaveSpeedAdapter struct {
	client wavespeed.Client
}

// NewWaveSpeedAdapter creates a new WaveSpeed provider adapter.
func NewWaveSpeedAdapter(client wavespeed.Client) *WaveSpeedAdapter {
	return &WaveSpeedAdapter{client: client}
}

// Name returns the provider name.
func (a *WaveSpeedAdapter) Name() string {
	return NameWaveSpeed
}

// Models returns the static WaveSpeed model catalog.
func (a *WaveSpeedAdapter) Models() []Model {
	models := make([]Model, len(wavespeedModels))
	copy(models, wavespeedModels)
	return models
}

// GenerateVideo submits a prediction to WaveSpeed. The model ID doubles as
// the endpoint path.
func (a *WaveSpeedAdapter) GenerateVideo(ctx context.Context, apiKey string, req Request) (Result, error) {
	model := req.Model
	if model == "" {
		model = wavespeedModels[0].ID
	}

	prediction, err := a.client.Submit(ctx, apiKey, model, wavespeed.SubmitOptions{
		Prompt:      req.Prompt,
		Duration:    req.DurationSec,
		AspectRatio: req.AspectRatio,
		Resolution:  req.Resolution,
	})
	if err != nil {
		return Result{}, fmt.Errorf("wavespeed adapter generate: %w", err)
	}

	return a.toResult(prediction, req.DurationSec), nil
}

// GetStatus polls WaveSpeed for the current status of a prediction.
func (a *WaveSpeedAdapter) GetStatus(ctx context.Context, apiKey, providerJobID string) (Result, error) {
	prediction, err := a.client.GetResult(ctx, apiKey, providerJobID)
	if err != nil {
		return Result{}, fmt.Errorf("wavespeed adapter status: %w", err)
	}
	return a.toResult(prediction, 0), nil
}

// DownloadVideo fetches the finished artifact from a WaveSpeed output URL.
func (a *WaveSpeedAdapter) DownloadVideo(ctx context.Context, _ string, url string) ([]byte, string, error) {
	data, contentType, err := a.client.Download(ctx, url)
	if err != nil {
		return nil, "", fmt.Errorf("wavespeed adapter download: %w", err)
	}
	return data, contentType, nil
}

// toResult maps a WaveSpeed prediction into the normalized result shape.
// WaveSpeed does not report the actual clip length, so the requested
// duration (when known) is carried through on completion.
func (a *WaveSpeedAdapter) toResult(p wavespeed.Prediction, requestedDuration int) Result {
	result := Result{
		ProviderJobID: p.ID,
	}

	switch p.Status {
	case wavespeed.StatusCreated, wavespeed.StatusQueued:
		result.Status = StatusQueued
	case wavespeed.StatusProcessing:
		result.Status = StatusProcessing
	case wavespeed.StatusCompleted:
		result.Status = StatusComplete
		if len(p.Outputs) > 0 {
			result.VideoURL = p.Outputs[0]
		}
		result.DurationSec = float64(requestedDuration)
	case wavespeed.StatusFailed:
		result.Status = StatusError
		result.Error = p.Error
		if result.Error == "" {
			result.Error = "prediction failed"
		}
	default:
		result.Status = StatusProcessing
	}

	return result
}

// Compile-time check that WaveSpeedAdapter implements Adapter.
var _ Adapter = (*WaveSpeedAdapter)(nil)
