package wavespeed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Static errors for WaveSpeed client operations.
var (
	// ErrModelPathRequired is returned when the model path is not provided.
	ErrModelPathRequired = errors.New("wavespeed: model path is required")
	// ErrPredictionIDRequired is returned when the prediction ID is not provided.
	ErrPredictionIDRequired = errors.New("wavespeed: prediction ID is required")
	// ErrNoPredictionID is returned when the submit response contains no ID.
	ErrNoPredictionID = errors.New("wavespeed: submit failed: no prediction ID returned")
	// ErrServerError is returned when the server returns a 5xx status code.
	ErrServerError = errors.New("wavespeed: server error")
	// ErrRateLimited is returned when the server returns a 429 status code.
	ErrRateLimited = errors.New("wavespeed: rate limited")
	// ErrRequestFailed is returned when the request fails with a non-2xx status code.
	ErrRequestFailed = errors.New("wavespeed: request failed")
)

// Client defines the interface for interacting with the WaveSpeed API.
type Client interface {
	// Submit creates a prediction for the given model path.
	Submit(ctx context.Context, apiKey, modelPath string, opts SubmitOptions) (Prediction, error)

	// GetResult fetches the current state of a prediction.
	GetResult(ctx context.Context, apiKey, predictionID string) (Prediction, error)

	// Download fetches binary content from a WaveSpeed output URL.
	Download(ctx context.Context, url string) ([]byte, string, error)
}

// HTTPClient is the HTTP implementation of the WaveSpeed Client interface.
// API keys are passed per call because they are resolved from stored key
// configs at request time, not fixed at construction.
type HTTPClient struct {
	baseURL     string
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithBaseURL sets a custom base URL for the WaveSpeed API.
func WithBaseURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(hc *HTTPClient) {
		hc.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseBackoff = d
	}
}

// NewClient creates a new WaveSpeed HTTP client.
func NewClient(opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:     "https://api.wavespeed.ai/api/v3",
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		maxRetries:  3,
		baseBackoff: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit creates a prediction for the given model path.
func (c *HTTPClient) Submit(ctx context.Context, apiKey, modelPath string, opts SubmitOptions) (Prediction, error) {
	if modelPath == "" {
		return Prediction{}, ErrModelPathRequired
	}

	bodyBytes, err := json.Marshal(submitRequest{
		Prompt:      opts.Prompt,
		Duration:    opts.Duration,
		AspectRatio: opts.AspectRatio,
		Resolution:  opts.Resolution,
		Seed:        opts.Seed,
	})
	if err != nil {
		return Prediction{}, fmt.Errorf("wavespeed: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, modelPath)

	var resp apiResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, url, apiKey, bodyBytes, &resp); err != nil {
		return Prediction{}, err
	}

	if resp.Data.ID == "" {
		if resp.Message != "" {
			return Prediction{}, fmt.Errorf("%w: %s", ErrNoPredictionID, resp.Message)
		}
		return Prediction{}, ErrNoPredictionID
	}

	return toPrediction(resp.Data), nil
}

// GetResult fetches the current state of a prediction.
func (c *HTTPClient) GetResult(ctx context.Context, apiKey, predictionID string) (Prediction, error) {
	if predictionID == "" {
		return Prediction{}, ErrPredictionIDRequired
	}

	url := fmt.Sprintf("%s/predictions/%s/result", c.baseURL, predictionID)

	var resp apiResponse
	if err := c.doRequestWithRetry(ctx, http.MethodGet, url, apiKey, nil, &resp); err != nil {
		return Prediction{}, err
	}

	return toPrediction(resp.Data), nil
}

// Download fetches binary content from a WaveSpeed output URL.
// Output URLs are pre-signed, so no credential is attached.
func (c *HTTPClient) Download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("wavespeed: create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("wavespeed: download request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("%w with status %d", ErrRequestFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("wavespeed: read download body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	return data, contentType, nil
}

// toPrediction converts the wire format into the normalized Prediction view.
func toPrediction(d predictionData) Prediction {
	p := Prediction{
		ID:        d.ID,
		Status:    Status(d.Status),
		Model:     d.Model,
		Outputs:   d.Outputs,
		Error:     d.Error,
		CreatedAt: d.CreatedAt,
	}
	for _, nsfw := range d.HasNSFWContents {
		if nsfw {
			p.HasNSFW = true
			break
		}
	}
	return p
}

// doRequestWithRetry performs an HTTP request with exponential backoff retry.
func (c *HTTPClient) doRequestWithRetry(ctx context.Context, method, url, apiKey string, body []byte, result interface{}) error {
	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("wavespeed: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		err := c.doRequest(ctx, method, url, apiKey, body, result)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return err
		}

		lastErr = err
	}

	return fmt.Errorf("wavespeed: max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request.
func (c *HTTPClient) doRequest(ctx context.Context, method, url, apiKey string, body []byte, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("wavespeed: create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &retryableError{err: fmt.Errorf("wavespeed: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &retryableError{err: fmt.Errorf("wavespeed: read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			return &retryableError{err: fmt.Errorf("%w %d: %s", ErrServerError, resp.StatusCode, string(respBody))}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return &retryableError{err: fmt.Errorf("%w: %s", ErrRateLimited, string(respBody))}
		}
		return fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("wavespeed: unmarshal response: %w", err)
		}
	}

	return nil
}

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryable returns true if the error should be retried.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
