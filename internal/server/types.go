// Package server provides the HTTP server for the video generation API.
// It includes handlers, middleware, routes, and DTOs separated from domain
// types.
package server

import (
	"time"

	"github.com/brandforge/videogen-api/internal/job"
	"github.com/brandforge/videogen-api/internal/provider"
)

// GenerateRequest is the HTTP request body for submitting a generation.
// Duration is deliberately unconstrained here: unsupported durations are
// dropped by the service, not rejected.
type GenerateRequest struct {
	// Prompt is the text description of the video to generate.
	Prompt string `json:"prompt" validate:"required,max=4000"`
	// Provider optionally forces a specific provider.
	Provider string `json:"provider,omitempty"`
	// Model optionally selects a provider model ID.
	Model string `json:"model,omitempty"`
	// AspectRatio is the requested aspect ratio, e.g. "16:9".
	AspectRatio string `json:"aspectRatio,omitempty"`
	// Duration is the requested clip length in seconds.
	Duration int `json:"duration,omitempty"`
	// Resolution is the requested output resolution, e.g. "720p".
	Resolution string `json:"resolution,omitempty"`
	// ConversationID links the job to a chat conversation.
	ConversationID string `json:"conversationId,omitempty"`
	// MessageID links the job to a chat message.
	MessageID string `json:"messageId,omitempty"`
}

// JobResponse mirrors the client-visible fields of a generation job.
type JobResponse struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	Prompt         string     `json:"prompt"`
	Provider       string     `json:"provider"`
	Model          string     `json:"model,omitempty"`
	ProviderJobID  string     `json:"providerJobId,omitempty"`
	AspectRatio    string     `json:"aspectRatio,omitempty"`
	Resolution     string     `json:"resolution,omitempty"`
	VideoURL       string     `json:"videoUrl,omitempty"`
	StorageKey     string     `json:"storageKey,omitempty"`
	ThumbnailURL   string     `json:"thumbnailUrl,omitempty"`
	Duration       float64    `json:"duration,omitempty"`
	Cost           float64    `json:"cost,omitempty"`
	Error          string     `json:"error,omitempty"`
	ConversationID string     `json:"conversationId,omitempty"`
	MessageID      string     `json:"messageId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// toJobResponse converts a domain job into its client-visible shape.
func toJobResponse(j *job.Job) JobResponse {
	return JobResponse{
		ID:             j.ID,
		Status:         string(j.Status),
		Prompt:         j.Prompt,
		Provider:       j.Provider,
		Model:          j.Model,
		ProviderJobID:  j.ProviderJobID,
		AspectRatio:    j.AspectRatio,
		Resolution:     j.Resolution,
		VideoURL:       j.VideoURL,
		StorageKey:     j.StorageKey,
		ThumbnailURL:   j.ThumbnailURL,
		Duration:       j.ActualDurationSec,
		Cost:           j.Cost,
		Error:          j.ErrorMessage,
		ConversationID: j.ConversationID,
		MessageID:      j.MessageID,
		CreatedAt:      j.CreatedAt,
		CompletedAt:    j.CompletedAt,
	}
}

// ModelResponse describes one available model for client-side pickers.
type ModelResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Provider     string   `json:"provider"`
	MaxDuration  int      `json:"maxDuration"`
	Durations    []int    `json:"durations,omitempty"`
	AspectRatios []string `json:"aspectRatios,omitempty"`
	Resolutions  []string `json:"resolutions,omitempty"`
	PricingMode  string   `json:"pricingMode"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency"`
}

// toModelResponse converts a provider model into its client-visible shape.
func toModelResponse(m provider.Model) ModelResponse {
	return ModelResponse{
		ID:           m.ID,
		Name:         m.Name,
		Provider:     m.Provider,
		MaxDuration:  m.MaxDurationSec,
		Durations:    m.SupportedDurations,
		AspectRatios: m.AspectRatios,
		Resolutions:  m.Resolutions,
		PricingMode:  string(m.Pricing.Mode),
		Price:        m.Pricing.Amount,
		Currency:     m.Pricing.Currency,
	}
}

// KeyConfigRequest is the admin request body for storing provider keys.
type KeyConfigRequest struct {
	Provider     string   `json:"provider" validate:"required"`
	APIKey       string   `json:"apiKey" validate:"required"`
	Enabled      bool     `json:"enabled"`
	VideoCapable bool     `json:"videoCapable"`
	Models       []string `json:"models,omitempty"`
}

// KeyConfigResponse is a stored key config with the secret masked.
type KeyConfigResponse struct {
	Provider     string   `json:"provider"`
	APIKey       string   `json:"apiKey"` // Masked
	Enabled      bool     `json:"enabled"`
	VideoCapable bool     `json:"videoCapable"`
	Models       []string `json:"models,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
