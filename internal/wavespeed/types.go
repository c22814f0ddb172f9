// Package wavespeed provides an HTTP client for the WaveSpeedAI
// prediction API.
package wavespeed

// Status represents the status of a WaveSpeed prediction.
type Status string

// WaveSpeed prediction statuses aligned with the v3 API.
const (
	StatusCreated    Status = "created"
	StatusQueued     Status = "queued" // Some endpoints report "queued" before processing
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SubmitOptions contains the parameters for submitting a prediction.
type SubmitOptions struct {
	Prompt      string // Text prompt
	Duration    int    // Clip length in seconds; 0 uses the model default
	AspectRatio string // Aspect ratio, e.g. "16:9"
	Resolution  string // Output resolution, e.g. "720p"
	Seed        int    // Random seed; 0 lets the vendor choose
}

// Prediction is the normalized view of a WaveSpeed prediction.
type Prediction struct {
	ID        string   // Prediction ID assigned by WaveSpeed
	Status    Status   // Current status
	Model     string   // Model path that ran the prediction
	Outputs   []string // Output URLs (finished artifacts)
	Error     string   // Failure message when Status is StatusFailed
	HasNSFW   bool     // Vendor-side content flag
	CreatedAt string   // Vendor timestamp, passed through opaquely
}

// submitRequest is the wire format for POST /api/v3/{model-path}.
type submitRequest struct {
	Prompt      string `json:"prompt"`
	Duration    int    `json:"duration,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	Seed        int    `json:"seed,omitempty"`
}

// predictionData is the wire format of a prediction resource.
type predictionData struct {
	ID              string   `json:"id"`
	Model           string   `json:"model"`
	Status          string   `json:"status"`
	Outputs         []string `json:"outputs,omitempty"`
	Error           string   `json:"error,omitempty"`
	HasNSFWContents []bool   `json:"has_nsfw_contents,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
}

// apiResponse is the envelope WaveSpeed wraps every response in.
type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    predictionData `json:"data"`
}
