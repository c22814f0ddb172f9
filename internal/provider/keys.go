package provider

import "context"

// Provider names used in key configs and job rows.
const (
	NameOpenAI    = "openai"
	NameWaveSpeed = "wavespeed"
)

// KeyConfig is a stored provider API key record. Key configs are managed
// by admins through the key-value config store; the core only reads them.
type KeyConfig struct {
	// Provider is the provider name this key belongs to.
	Provider string `json:"provider"`
	// APIKey is the secret key material.
	APIKey string `json:"apiKey"`
	// Enabled controls whether the key participates in resolution.
	Enabled bool `json:"enabled"`
	// VideoCapable marks keys usable for video generation.
	VideoCapable bool `json:"videoCapable"`
	// Models optionally restricts the key to specific model IDs.
	Models []string `json:"models,omitempty"`
}

// AllowsModel reports whether the key permits the given model ID.
// An empty allowlist permits every model of the provider.
func (k KeyConfig) AllowsModel(id string) bool {
	if len(k.Models) == 0 {
		return true
	}
	for _, m := range k.Models {
		if m == id {
			return true
		}
	}
	return false
}

// KeyStore is the port to the key-value config store holding provider
// key configs. An unconfigured store returns an empty list, not an error.
type KeyStore interface {
	// List returns all stored key configs in stored order.
	List(ctx context.Context) ([]KeyConfig, error)

	// Put replaces the stored key configs.
	Put(ctx context.Context, keys []KeyConfig) error
}
