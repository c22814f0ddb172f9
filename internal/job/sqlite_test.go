package job

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepository_SaveAndFindByID(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	j := New()
	j.Prompt = "a sunset over the ocean"
	j.Provider = "openai"
	j.Model = "sora-2"
	j.AspectRatio = "16:9"
	j.DurationSec = 8
	j.Resolution = "720p"
	j.ProviderJobID = "video_abc"
	j.ConversationID = "conv-1"
	j.MessageID = "msg-1"

	require.NoError(t, repo.Save(ctx, j))

	found, err := repo.FindByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, j.ID, found.ID)
	assert.Equal(t, j.Prompt, found.Prompt)
	assert.Equal(t, "openai", found.Provider)
	assert.Equal(t, "sora-2", found.Model)
	assert.Equal(t, "16:9", found.AspectRatio)
	assert.Equal(t, 8, found.DurationSec)
	assert.Equal(t, "video_abc", found.ProviderJobID)
	assert.Equal(t, StatusPending, found.Status)
	assert.Equal(t, "conv-1", found.ConversationID)
	assert.Nil(t, found.CompletedAt)
}

func TestSQLiteRepository_FindByID_NotFound(t *testing.T) {
	repo := newTestSQLiteRepository(t)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestSQLiteRepository_Save_ReplacesExisting(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	j := New()
	j.Prompt = "first"
	require.NoError(t, repo.Save(ctx, j))

	j.Prompt = "second"
	require.NoError(t, repo.Save(ctx, j))

	found, err := repo.FindByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", found.Prompt)
}

func TestSQLiteRepository_Update_PartialFields(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	j := New()
	j.Prompt = "a cat"
	j.Provider = "wavespeed"
	require.NoError(t, repo.Save(ctx, j))

	status := StatusComplete
	videoURL := "https://cdn.example.com/v.mp4"
	storageKey := "videos/" + j.ID + ".mp4"
	duration := 5.0
	cost := 0.50
	completedAt := time.Now().Truncate(time.Second)

	require.NoError(t, repo.Update(ctx, j.ID, UpdateFields{
		Status:            &status,
		VideoURL:          &videoURL,
		StorageKey:        &storageKey,
		ActualDurationSec: &duration,
		Cost:              &cost,
		CompletedAt:       &completedAt,
	}))

	found, err := repo.FindByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, found.Status)
	assert.Equal(t, videoURL, found.VideoURL)
	assert.Equal(t, storageKey, found.StorageKey)
	assert.Equal(t, 5.0, found.ActualDurationSec)
	assert.Equal(t, 0.50, found.Cost)
	require.NotNil(t, found.CompletedAt)
	assert.Equal(t, completedAt.Unix(), found.CompletedAt.Unix())

	// Fields not named in the update are untouched.
	assert.Equal(t, "a cat", found.Prompt)
	assert.Equal(t, "wavespeed", found.Provider)
}

func TestSQLiteRepository_Update_NotFound(t *testing.T) {
	repo := newTestSQLiteRepository(t)

	status := StatusError
	err := repo.Update(context.Background(), "missing", UpdateFields{Status: &status})
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestSQLiteRepository_Update_NoFieldsIsNoop(t *testing.T) {
	repo := newTestSQLiteRepository(t)

	assert.NoError(t, repo.Update(context.Background(), "missing", UpdateFields{}))
}

func TestSQLiteRepository_List_NewestFirst(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	older := New()
	older.Prompt = "older"
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, older))

	newer := New()
	newer.Prompt = "newer"
	require.NoError(t, repo.Save(ctx, newer))

	jobs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "newer", jobs[0].Prompt)
	assert.Equal(t, "older", jobs[1].Prompt)
}

func TestSQLiteRepository_Delete(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	j := New()
	j.Prompt = "a cat"
	require.NoError(t, repo.Save(ctx, j))

	require.NoError(t, repo.Delete(ctx, j.ID))

	_, err := repo.FindByID(ctx, j.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, j.ID), ErrJobNotFound)
}

func TestSQLiteRepository_ErrorJobRoundTrip(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	j := New()
	j.Prompt = "a cat"
	require.NoError(t, j.Fail("content policy violation"))
	require.NoError(t, repo.Save(ctx, j))

	found, err := repo.FindByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusError, found.Status)
	assert.Equal(t, "content policy violation", found.ErrorMessage)
	require.NotNil(t, found.CompletedAt)
}
