package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/brandforge/videogen-api/internal/job"
)

// StreamGeneration handles GET /v1/videos/generations/{id}/events.
// It opens a server-sent-event stream and lets the orchestrator carry the
// job to a terminal state. Each event is one JSON object; the terminal
// event is always the last. Closing the client connection cancels the
// polling loop through the request context.
func (h *Handlers) StreamGeneration(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported", "STREAMING_UNSUPPORTED")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	err := h.orchestrator.Stream(r.Context(), jobID, func(ev job.Event) error {
		return writeSSE(w, flusher, ev)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Warn("event stream ended",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
	}
}

// writeSSE serializes one event in server-sent-event framing and flushes
// it to the client.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, ev job.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	flusher.Flush()
	return nil
}
