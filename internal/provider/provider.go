// Package provider defines the common interface for AI video generation
// providers. Each vendor (OpenAI, WaveSpeed) implements the Adapter
// interface so the rest of the service only sees the normalized result
// shape.
package provider

import "context"

// Status represents the normalized status of a generation request as
// reported by a provider.
type Status string

// Normalized statuses across providers.
const (
	StatusQueued     Status = "queued"     // Accepted by the vendor, not yet running
	StatusProcessing Status = "processing" // Vendor is generating
	StatusComplete   Status = "complete"   // Generation finished, result available
	StatusError      Status = "error"      // Vendor reported a failure
)

// IsTerminal returns true if the status represents a final state.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusError
}

// PricingMode describes how a model's generation cost is computed.
type PricingMode string

const (
	// PricePerSecond bills per second of generated video.
	PricePerSecond PricingMode = "per_second"
	// PricePerGeneration bills a flat amount per generation.
	PricePerGeneration PricingMode = "per_generation"
)

// Pricing describes the cost structure of a model.
type Pricing struct {
	Mode     PricingMode
	Amount   float64
	Currency string
}

// Cost returns the estimated cost for a generation of the given duration.
// Per-second pricing multiplies by the duration; flat pricing ignores it.
func (p Pricing) Cost(durationSec float64) float64 {
	if p.Mode == PricePerSecond {
		return p.Amount * durationSec
	}
	return p.Amount
}

// Model describes a video model offered by a provider.
type Model struct {
	// ID is the provider's model identifier.
	ID string
	// Name is the human-readable display name.
	Name string
	// Provider is the owning provider name.
	Provider string
	// MaxDurationSec is the longest clip the model can generate.
	MaxDurationSec int
	// SupportedDurations lists the durations (seconds) the model accepts.
	// Empty means any duration up to MaxDurationSec.
	SupportedDurations []int
	// AspectRatios lists the supported aspect ratios (e.g. "16:9").
	AspectRatios []string
	// Resolutions lists the supported output resolutions (e.g. "720p").
	Resolutions []string
	// Pricing is the cost descriptor for this model.
	Pricing Pricing
}

// SupportsDuration reports whether the model accepts the given duration.
// A model with no declared duration set accepts anything.
func (m Model) SupportsDuration(seconds int) bool {
	if len(m.SupportedDurations) == 0 {
		return true
	}
	for _, d := range m.SupportedDurations {
		if d == seconds {
			return true
		}
	}
	return false
}

// FindModel returns the model with the given ID from the list.
func FindModel(models []Model, id string) (Model, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// Request contains the normalized parameters for a generation request.
type Request struct {
	// Prompt is the text description of the video to generate.
	Prompt string
	// Model is the provider model ID. Empty selects the adapter default.
	Model string
	// AspectRatio is the requested aspect ratio (e.g. "16:9").
	AspectRatio string
	// DurationSec is the requested clip length. Zero means provider default.
	DurationSec int
	// Resolution is the requested output resolution (e.g. "720p").
	Resolution string
}

// Result is the normalized outcome of a generate or status call.
// Exactly one of three shapes applies: queued/processing carries
// ProviderJobID; complete carries VideoURL and DurationSec; error carries
// Error. Vendor-reported failures are encoded here rather than returned as
// Go errors; only transport-level failures surface as errors.
type Result struct {
	// Status is the normalized generation status.
	Status Status
	// ProviderJobID is the vendor's identifier for the generation task.
	ProviderJobID string
	// Progress is the completion percentage (0-100) while processing.
	Progress float64
	// VideoURL is the vendor-hosted (typically time-limited) result URL.
	VideoURL string
	// ThumbnailURL is an optional vendor-hosted thumbnail.
	ThumbnailURL string
	// DurationSec is the actual duration of the generated clip.
	DurationSec float64
	// Resolution is the actual output resolution.
	Resolution string
	// Error is the vendor-reported failure message.
	Error string
}

// Adapter defines the capability set every video provider implements.
// Adding a provider means one new Adapter plus a registry entry; nothing
// else in the service changes.
type Adapter interface {
	// Name returns the provider name used in key configs and job rows.
	Name() string

	// Models returns the static catalog of models this adapter supports.
	// No side effects, no I/O.
	Models() []Model

	// GenerateVideo submits a generation request to the vendor.
	GenerateVideo(ctx context.Context, apiKey string, req Request) (Result, error)

	// GetStatus polls the vendor for the current status of a task.
	GetStatus(ctx context.Context, apiKey, providerJobID string) (Result, error)

	// DownloadVideo fetches the finished artifact from the vendor's
	// hosting URL. Returns the raw bytes and content type.
	DownloadVideo(ctx context.Context, apiKey, url string) ([]byte, string, error)
}
