package provider

import (
	"context"
	"fmt"

	"github.com/brandforge/videogen-api/internal/openai"
)

// openaiModels is the static catalog of OpenAI video models.
var openaiModels = []Model{
	{
		ID:                 "sora-2",
		Name:               "Sora 2",
		Provider:           NameOpenAI,
		MaxDurationSec:     12,
		SupportedDurations: []int{4, 8, 12},
		AspectRatios:       []string{"16:9", "9:16"},
		Resolutions:        []string{"720p"},
		Pricing:            Pricing{Mode: PricePerSecond, Amount: 0.10, Currency: "USD"},
	},
	{
		ID:                 "sora-2-pro",
		Name:               "Sora 2 Pro",
		Provider:           NameOpenAI,
		MaxDurationSec:     12,
		SupportedDurations: []int{4, 8, 12},
		AspectRatios:       []string{"16:9", "9:16"},
		Resolutions:        []string{"720p", "1080p"},
		Pricing:            Pricing{Mode: PricePerSecond, Amount: 0.30, Currency: "USD"},
	},
}

// OpenAIAdapter adapts the OpenAI Videos client to the Adapter interface.
type OpenAIAdapter struct {
	client openai.Client
}

// NewOpenAIAdapter creates a new OpenAI provider adapter.
func NewOpenAIAdapter(client openai.Client) *OpenAIAdapter {
	return &OpenAIAdapter{client: client}
}

// Name returns the provider name.
func (a *OpenAIAdapter) Name() string {
	return NameOpenAI
}

// Models returns the static OpenAI model catalog.
func (a *OpenAIAdapter) Models() []Model {
	models := make([]Model, len(openaiModels))
	copy(models, openaiModels)
	return models
}

// GenerateVideo submits a generation request to OpenAI.
func (a *OpenAIAdapter) GenerateVideo(ctx context.Context, apiKey string, req Request) (Result, error) {
	model := req.Model
	if model == "" {
		model = openaiModels[0].ID
	}

	video, err := a.client.CreateVideo(ctx, apiKey, openai.CreateVideoRequest{
		Model:   model,
		Prompt:  req.Prompt,
		Seconds: req.DurationSec,
		Size:    openaiSize(req.AspectRatio, req.Resolution),
	})
	if err != nil {
		return Result{}, fmt.Errorf("openai adapter generate: %w", err)
	}

	return a.toResult(video), nil
}

// GetStatus polls OpenAI for the current status of a video job.
func (a *OpenAIAdapter) GetStatus(ctx context.Context, apiKey, providerJobID string) (Result, error) {
	video, err := a.client.GetVideo(ctx, apiKey, providerJobID)
	if err != nil {
		return Result{}, fmt.Errorf("openai adapter status: %w", err)
	}
	return a.toResult(video), nil
}

// DownloadVideo fetches the finished artifact from OpenAI's content endpoint.
func (a *OpenAIAdapter) DownloadVideo(ctx context.Context, apiKey, url string) ([]byte, string, error) {
	data, contentType, err := a.client.Download(ctx, apiKey, url)
	if err != nil {
		return nil, "", fmt.Errorf("openai adapter download: %w", err)
	}
	return data, contentType, nil
}

// toResult maps an OpenAI video job into the normalized result shape.
func (a *OpenAIAdapter) toResult(video openai.Video) Result {
	result := Result{
		ProviderJobID: video.ID,
		Progress:      video.Progress,
		Resolution:    video.Size,
	}

	switch video.Status {
	case openai.StatusQueued:
		result.Status = StatusQueued
	case openai.StatusInProgress:
		result.Status = StatusProcessing
	case openai.StatusCompleted:
		result.Status = StatusComplete
		result.VideoURL = video.ContentURL
		result.ThumbnailURL = video.ContentURL + "?variant=thumbnail"
		result.DurationSec = video.Seconds
	case openai.StatusFailed:
		result.Status = StatusError
		result.Error = video.Error
		if result.Error == "" {
			result.Error = "generation failed"
		}
	default:
		result.Status = StatusProcessing
	}

	return result
}

// openaiSize maps a normalized aspect ratio and resolution to an OpenAI
// size string. Empty input leaves the size unset so the API default applies.
func openaiSize(aspectRatio, resolution string) string {
	if aspectRatio == "" && resolution == "" {
		return ""
	}
	portrait := aspectRatio == "9:16"
	hd := resolution == "1080p"
	switch {
	case portrait && hd:
		return "1080x1792"
	case portrait:
		return "720x1280"
	case hd:
		return "1792x1080"
	default:
		return "1280x720"
	}
}

// Compile-time check that OpenAIAdapter implements Adapter.
var _ Adapter = (*OpenAIAdapter)(nil)
