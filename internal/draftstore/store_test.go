package draftstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"application-wizard/internal/common/logger"
	"application-wizard/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{TTL: time.Hour, KeyPrefix: "draft"}
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *Store) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, NewStore(createTestConfig(), rdb, logger.NewTestLogger(t))
}

func createTestDraft() models.ApplicationDraft {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	savedAt := now.Add(5 * time.Minute)
	d := models.NewDraft("d-1", "job-1", "a-1", now)
	d.Resume.Selection = models.UploadedResume{Name: "cv.pdf", MIMEType: "application/pdf", Size: 1200, StorageKey: "key-1"}
	d.Resume.PortfolioURL = "https://ada.dev"
	d.Questions.Answers = map[string]models.Answer{
		"why":   models.TextAnswer("  keep my spacing "),
		"langs": models.MultiAnswer([]string{"sql", "go"}),
	}
	d.Questions.IsDraft = true
	d.Questions.SavedAt = &savedAt
	d.Consent.GDPRConsent = true
	return d
}

// ==========================
// Core Functionality Tests
// ==========================

func TestSaveLoad_RoundTrip(t *testing.T) {
	mr, store := setupMiniredis(t)
	ctx := context.Background()
	d := createTestDraft()

	require.NoError(t, store.Save(ctx, d))

	assert.True(t, mr.Exists("draft:a-1:job-1"))
	assert.Equal(t, time.Hour, mr.TTL("draft:a-1:job-1"))

	got, err := store.Load(ctx, "a-1", "job-1")
	require.NoError(t, err)

	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, "  keep my spacing ", got.Questions.Answers["why"].Text())
	assert.Equal(t, []string{"sql", "go"}, got.Questions.Answers["langs"].Values())
	assert.True(t, got.Questions.IsDraft)
	assert.Equal(t, *d.Questions.SavedAt, *got.Questions.SavedAt)
	assert.Equal(t, d.Resume.Selection, got.Resume.Selection)
	assert.Equal(t, "https://ada.dev", got.Resume.PortfolioURL)
	assert.True(t, got.Consent.GDPRConsent)
	assert.True(t, got.Consent.CommunicationConsent)
}

func TestSave_OverwritesPreviousDraft(t *testing.T) {
	_, store := setupMiniredis(t)
	ctx := context.Background()
	d := createTestDraft()
	require.NoError(t, store.Save(ctx, d))

	d.Resume.Selection = models.LibraryResume{ID: "r-9", Name: "old.pdf", Size: 10}
	require.NoError(t, store.Save(ctx, d))

	got, err := store.Load(ctx, "a-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ResumeKindLibrary, got.Resume.Selection.Kind())
}

func TestLoad_NotFound(t *testing.T) {
	_, store := setupMiniredis(t)

	_, err := store.Load(context.Background(), "a-1", "missing")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestLoad_Corrupt(t *testing.T) {
	mr, store := setupMiniredis(t)
	require.NoError(t, mr.Set("draft:a-1:job-1", "{not json"))

	_, err := store.Load(context.Background(), "a-1", "job-1")
	assert.ErrorIs(t, err, ErrDraftLoadFailed)
}

func TestDelete(t *testing.T) {
	mr, store := setupMiniredis(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, createTestDraft()))

	require.NoError(t, store.Delete(ctx, "a-1", "job-1"))
	assert.False(t, mr.Exists("draft:a-1:job-1"))

	require.NoError(t, store.Delete(ctx, "a-1", "job-1"), "missing draft is fine")
}

// ==========================
// Failure Paths
// ==========================

func TestSave_RedisError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewStore(createTestConfig(), rdb, logger.NewTestLogger(t))

	mock.Regexp().ExpectSet("draft:a-1:job-1", `.*`, time.Hour).SetErr(errors.New("connection refused"))

	err := store.Save(context.Background(), createTestDraft())
	assert.ErrorIs(t, err, ErrDraftSaveFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_RedisError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewStore(createTestConfig(), rdb, logger.NewTestLogger(t))

	mock.ExpectGet("draft:a-1:job-1").SetErr(errors.New("i/o timeout"))

	_, err := store.Load(context.Background(), "a-1", "job-1")
	assert.ErrorIs(t, err, ErrDraftLoadFailed)
	assert.NotErrorIs(t, err, ErrDraftNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
