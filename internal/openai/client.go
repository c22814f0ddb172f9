package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Static errors for OpenAI client operations.
var (
	// ErrVideoIDRequired is returned when the video ID is not provided.
	ErrVideoIDRequired = errors.New("openai: video ID is required")
	// ErrNoVideoIDReturned is returned when the create response contains no ID.
	ErrNoVideoIDReturned = errors.New("openai: create failed: no video ID returned")
	// ErrServerError is returned when the server returns a 5xx status code.
	ErrServerError = errors.New("openai: server error")
	// ErrRateLimited is returned when the server returns a 429 status code.
	ErrRateLimited = errors.New("openai: rate limited")
	// ErrRequestFailed is returned when the request fails with a non-2xx status code.
	ErrRequestFailed = errors.New("openai: request failed")
)

// Client defines the interface for interacting with the OpenAI Videos API.
type Client interface {
	// CreateVideo submits a video generation job.
	CreateVideo(ctx context.Context, apiKey string, req CreateVideoRequest) (Video, error)

	// GetVideo fetches the current state of a video job.
	GetVideo(ctx context.Context, apiKey, videoID string) (Video, error)

	// Download fetches binary content from an authenticated OpenAI URL.
	Download(ctx context.Context, apiKey, url string) ([]byte, string, error)
}

// HTTPClient is the HTTP implementation of the OpenAI Client interface.
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

// WithBaseURL sets a custom base URL for the OpenAI API.
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

// NewClient creates a new OpenAI HTTP client.
func NewClient(opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:     "https://api.openai.com/v1",
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		maxRetries:  3,
		baseBackoff: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateVideo submits a video generation job and returns its initial state.
func (c *HTTPClient) CreateVideo(ctx context.Context, apiKey string, req CreateVideoRequest) (Video, error) {
	body := createVideoRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Size:   req.Size,
	}
	if req.Seconds > 0 {
		body.Seconds = strconv.Itoa(req.Seconds)
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return Video{}, fmt.Errorf("openai: marshal request: %w", err)
	}

	url := c.baseURL + "/videos"

	var resp videoResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, url, apiKey, bodyBytes, &resp); err != nil {
		return Video{}, err
	}

	if resp.ID == "" {
		return Video{}, ErrNoVideoIDReturned
	}

	return c.toVideo(resp), nil
}

// GetVideo fetches the current state of a video job.
func (c *HTTPClient) GetVideo(ctx context.Context, apiKey, videoID string) (Video, error) {
	if videoID == "" {
		return Video{}, ErrVideoIDRequired
	}

	url := fmt.Sprintf("%s/videos/%s", c.baseURL, videoID)

	var resp videoResponse
	if err := c.doRequestWithRetry(ctx, http.MethodGet, url, apiKey, nil, &resp); err != nil {
		return Video{}, err
	}

	return c.toVideo(resp), nil
}

// Download fetches binary content from an authenticated OpenAI URL.
// OpenAI hosts finished videos behind the API, so the bearer credential is
// required for the content endpoint as well.
func (c *HTTPClient) Download(ctx context.Context, apiKey, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("openai: create download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("openai: download request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("%w with status %d", ErrRequestFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("openai: read download body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	return data, contentType, nil
}

// toVideo converts a wire response into the normalized Video view.
func (c *HTTPClient) toVideo(resp videoResponse) Video {
	v := Video{
		ID:       resp.ID,
		Status:   Status(resp.Status),
		Model:    resp.Model,
		Progress: resp.Progress,
		Size:     resp.Size,
	}
	if resp.Seconds != "" {
		if secs, err := strconv.ParseFloat(resp.Seconds, 64); err == nil {
			v.Seconds = secs
		}
	}
	if resp.Error != nil {
		v.Error = resp.Error.Message
	}
	if v.Status == StatusCompleted {
		v.ContentURL = fmt.Sprintf("%s/videos/%s/content", c.baseURL, resp.ID)
	}
	return v
}

// doRequestWithRetry performs an HTTP request with exponential backoff retry.
func (c *HTTPClient) doRequestWithRetry(ctx context.Context, method, url, apiKey string, body []byte, result interface{}) error {
	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("openai: context cancelled: %w", ctx.Err())
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

	return fmt.Errorf("openai: max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request.
func (c *HTTPClient) doRequest(ctx context.Context, method, url, apiKey string, body []byte, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("openai: create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &retryableError{err: fmt.Errorf("openai: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &retryableError{err: fmt.Errorf("openai: read response: %w", err)}
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
			return fmt.Errorf("openai: unmarshal response: %w", err)
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
