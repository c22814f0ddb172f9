package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/brandforge/videogen-api/internal/job"
	"github.com/brandforge/videogen-api/internal/provider"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service      *job.Service
	orchestrator *job.Orchestrator
	registry     *provider.Registry
	keys         provider.KeyStore
	validator    *validator.Validate
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *job.Service, orchestrator *job.Orchestrator, registry *provider.Registry, keys provider.KeyStore, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		service:      service,
		orchestrator: orchestrator,
		registry:     registry,
		keys:         keys,
		validator:    validator.New(),
		logger:       logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Generate handles POST /v1/videos/generations requests.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	created, err := h.service.Generate(r.Context(), job.GenerateInput{
		Prompt:         req.Prompt,
		Provider:       req.Provider,
		Model:          req.Model,
		AspectRatio:    req.AspectRatio,
		DurationSec:    req.Duration,
		Resolution:     req.Resolution,
		ConversationID: req.ConversationID,
		MessageID:      req.MessageID,
	})
	if err != nil {
		h.writeGenerateError(w, err)
		return
	}

	status := http.StatusAccepted
	if created.Status == job.StatusComplete {
		status = http.StatusOK
	}
	writeJSON(w, status, toJobResponse(created))
}

// writeGenerateError maps service errors onto the error taxonomy:
// client input 400, no provider configured 503, provider failure 502.
func (h *Handlers) writeGenerateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, job.ErrInvalidPrompt):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_PROMPT")
	case errors.Is(err, job.ErrNoProviderConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error(), "NO_PROVIDER_CONFIGURED")
	case errors.Is(err, job.ErrProviderFailure):
		writeError(w, http.StatusBadGateway, err.Error(), "PROVIDER_ERROR")
	default:
		h.logger.Error("generation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create generation", "GENERATION_FAILED")
	}
}

// GetGeneration handles GET /v1/videos/generations/{id} requests.
func (h *Handlers) GetGeneration(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	found, err := h.service.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return
		}
		h.logger.Error("failed to get job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get job", "JOB_FETCH_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(found))
}

// ListGenerations handles GET /v1/videos/generations requests.
func (h *Handlers) ListGenerations(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list jobs",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list jobs", "JOB_LIST_FAILED")
		return
	}

	out := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobResponse(j))
	}
	writeJSON(w, http.StatusOK, out)
}

// DeleteGeneration handles DELETE /v1/videos/generations/{id} requests.
// The stored artifact is deleted best-effort alongside the row.
func (h *Handlers) DeleteGeneration(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	if err := h.service.Delete(r.Context(), jobID); err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return
		}
		h.logger.Error("failed to delete job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete job", "JOB_DELETE_FAILED")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListModels handles GET /v1/videos/models requests. It returns the models
// available across every enabled, video-capable provider key.
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.registry.EnabledModels(r.Context())
	if err != nil {
		h.logger.Error("failed to list models",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list models", "MODEL_LIST_FAILED")
		return
	}

	out := make([]ModelResponse, 0, len(models))
	for _, m := range models {
		out = append(out, toModelResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetProviderKeys handles GET /v1/providers/keys requests.
// Secrets are masked in the response.
func (h *Handlers) GetProviderKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list provider keys",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list provider keys", "KEY_LIST_FAILED")
		return
	}

	out := make([]KeyConfigResponse, 0, len(keys))
	for _, k := range keys {
		out = append(out, KeyConfigResponse{
			Provider:     k.Provider,
			APIKey:       maskSecret(k.APIKey),
			Enabled:      k.Enabled,
			VideoCapable: k.VideoCapable,
			Models:       k.Models,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// PutProviderKeys handles PUT /v1/providers/keys requests, replacing the
// stored key configs.
func (h *Handlers) PutProviderKeys(w http.ResponseWriter, r *http.Request) {
	var reqs []KeyConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	keys := make([]provider.KeyConfig, 0, len(reqs))
	for _, req := range reqs {
		if err := h.validator.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
			return
		}
		keys = append(keys, provider.KeyConfig{
			Provider:     req.Provider,
			APIKey:       req.APIKey,
			Enabled:      req.Enabled,
			VideoCapable: req.VideoCapable,
			Models:       req.Models,
		})
	}

	if err := h.keys.Put(r.Context(), keys); err != nil {
		h.logger.Error("failed to store provider keys",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to store provider keys", "KEY_STORE_FAILED")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// maskSecret hides all but the last four characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
