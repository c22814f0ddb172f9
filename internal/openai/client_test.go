package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_CreateVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sora-2", body["model"])
		assert.Equal(t, "a sunset over the ocean", body["prompt"])
		assert.Equal(t, "8", body["seconds"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "video_abc",
			"object": "video",
			"status": "queued",
			"model":  "sora-2",
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	video, err := client.CreateVideo(context.Background(), "sk-test", CreateVideoRequest{
		Model:   "sora-2",
		Prompt:  "a sunset over the ocean",
		Seconds: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, "video_abc", video.ID)
	assert.Equal(t, StatusQueued, video.Status)
}

func TestHTTPClient_CreateVideo_NoID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "video"})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.CreateVideo(context.Background(), "sk-test", CreateVideoRequest{Model: "sora-2", Prompt: "x"})
	assert.ErrorIs(t, err, ErrNoVideoIDReturned)
}

func TestHTTPClient_GetVideo_Completed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos/video_abc", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       "video_abc",
			"status":   "completed",
			"model":    "sora-2",
			"progress": 100,
			"seconds":  "8",
			"size":     "1280x720",
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	video, err := client.GetVideo(context.Background(), "sk-test", "video_abc")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, video.Status)
	assert.InDelta(t, 8, video.Seconds, 1e-9)
	assert.Equal(t, server.URL+"/videos/video_abc/content", video.ContentURL)
}

func TestHTTPClient_GetVideo_Failed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "video_abc",
			"status": "failed",
			"error":  map[string]string{"code": "moderation_blocked", "message": "blocked by moderation"},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	video, err := client.GetVideo(context.Background(), "sk-test", "video_abc")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, video.Status)
	assert.Equal(t, "blocked by moderation", video.Error)
}

func TestHTTPClient_GetVideo_EmptyID(t *testing.T) {
	client := NewClient()
	_, err := client.GetVideo(context.Background(), "sk-test", "")
	assert.ErrorIs(t, err, ErrVideoIDRequired)
}

func TestHTTPClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "video_abc", "status": "queued"})
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithMaxRetries(3),
		WithBaseBackoff(time.Millisecond),
	)

	video, err := client.GetVideo(context.Background(), "sk-test", "video_abc")
	require.NoError(t, err)
	assert.Equal(t, "video_abc", video.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithMaxRetries(3),
		WithBaseBackoff(time.Millisecond),
	)

	_, err := client.GetVideo(context.Background(), "bad-key", "video_abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPClient_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("binary-video"))
	}))
	defer server.Close()

	client := NewClient()

	data, contentType, err := client.Download(context.Background(), "sk-test", server.URL+"/videos/video_abc/content")
	require.NoError(t, err)
	assert.Equal(t, []byte("binary-video"), data)
	assert.Equal(t, "video/mp4", contentType)
}
