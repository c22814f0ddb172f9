// Package openai provides an HTTP client for the OpenAI video generation
// (Sora) API.
package openai

// Status represents the status of an OpenAI video job.
type Status string

// OpenAI video job statuses aligned with the Videos API.
const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CreateVideoRequest contains the parameters for creating a video job.
type CreateVideoRequest struct {
	Model   string // Model ID, e.g. "sora-2"
	Prompt  string // Text prompt
	Seconds int    // Clip length in seconds; 0 uses the API default
	Size    string // Output size, e.g. "1280x720"; empty uses the default
}

// Video is the normalized view of an OpenAI video job.
type Video struct {
	ID         string  // Job ID assigned by OpenAI
	Status     Status  // Current status
	Model      string  // Model that ran the job
	Progress   float64 // Completion percentage (0-100)
	Seconds    float64 // Actual clip length
	Size       string  // Actual output size
	Error      string  // Failure message when Status is StatusFailed
	ContentURL string  // URL for downloading the finished video
}

// createVideoRequest is the wire format for POST /v1/videos.
type createVideoRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Seconds string `json:"seconds,omitempty"`
	Size    string `json:"size,omitempty"`
}

// videoResponse is the wire format of a video job resource.
type videoResponse struct {
	ID       string      `json:"id"`
	Object   string      `json:"object"`
	Status   string      `json:"status"`
	Model    string      `json:"model"`
	Progress float64     `json:"progress"`
	Seconds  string      `json:"seconds"`
	Size     string      `json:"size"`
	Error    *videoError `json:"error,omitempty"`
}

// videoError is the wire format of a job failure.
type videoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
