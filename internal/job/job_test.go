package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	j := New()

	assert.NotEmpty(t, j.ID)
	assert.Equal(t, StatusPending, j.Status)
	assert.False(t, j.CreatedAt.IsZero())
	assert.Nil(t, j.CompletedAt)
}

func TestJob_TransitionTo_ValidPaths(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"pending to processing", StatusPending, StatusProcessing, true},
		{"pending to complete", StatusPending, StatusComplete, true},
		{"pending to error", StatusPending, StatusError, true},
		{"processing to complete", StatusProcessing, StatusComplete, true},
		{"processing to error", StatusProcessing, StatusError, true},
		{"complete is terminal", StatusComplete, StatusProcessing, false},
		{"error is terminal", StatusError, StatusProcessing, false},
		{"no backward transition", StatusProcessing, StatusPending, false},
		{"complete never becomes error", StatusComplete, StatusError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := New()
			j.Status = tt.from

			err := j.TransitionTo(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, j.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, j.Status)
			}
		})
	}
}

func TestJob_Complete(t *testing.T) {
	j := New()

	err := j.Complete("https://cdn.example.com/v.mp4", "https://cdn.example.com/t.jpg", 8, 0.80)
	require.NoError(t, err)

	assert.Equal(t, StatusComplete, j.Status)
	assert.Equal(t, "https://cdn.example.com/v.mp4", j.VideoURL)
	assert.Equal(t, "https://cdn.example.com/t.jpg", j.ThumbnailURL)
	assert.InDelta(t, 8, j.ActualDurationSec, 1e-9)
	assert.InDelta(t, 0.80, j.Cost, 1e-9)
	require.NotNil(t, j.CompletedAt)
	assert.True(t, j.IsTerminal())
}

func TestJob_Fail(t *testing.T) {
	j := New()
	require.NoError(t, j.TransitionTo(StatusProcessing))

	require.NoError(t, j.Fail("provider exploded"))

	assert.Equal(t, StatusError, j.Status)
	assert.Equal(t, "provider exploded", j.ErrorMessage)
	require.NotNil(t, j.CompletedAt)
}

func TestJob_Fail_AlreadyTerminal(t *testing.T) {
	j := New()
	require.NoError(t, j.Complete("url", "", 5, 0.2))

	assert.ErrorIs(t, j.Fail("too late"), ErrInvalidTransition)
	assert.Equal(t, StatusComplete, j.Status)
	assert.Empty(t, j.ErrorMessage)
}

func TestJob_Clone(t *testing.T) {
	j := New()
	require.NoError(t, j.Complete("url", "", 5, 0.2))

	clone := j.Clone()
	require.NotNil(t, clone.CompletedAt)

	// Mutating the clone must not touch the original.
	clone.VideoURL = "other"
	*clone.CompletedAt = clone.CompletedAt.Add(1)
	assert.Equal(t, "url", j.VideoURL)
	assert.NotEqual(t, *j.CompletedAt, *clone.CompletedAt)
}
