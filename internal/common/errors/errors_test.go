package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Normalize
// ==========================

func TestNormalize_Nil(t *testing.T) {
	assert.Nil(t, Normalize(nil))
}

func TestNormalize_StandardErrorPassesThrough(t *testing.T) {
	std := NewDuplicateApplicationError("app-1", "job-1")
	wrapped := fmt.Errorf("submit: %w", std)

	got := Normalize(wrapped)
	assert.Same(t, std, got)
}

func TestNormalize_SentinelKeepsCode(t *testing.T) {
	sentinel := stderrors.New("NOT_READY")
	got := Normalize(fmt.Errorf("%w: consent missing", sentinel))

	require.NotNil(t, got)
	assert.Equal(t, ErrCodeNotReady, got.Code)
	assert.Equal(t, "consent missing", got.Details)
	assert.False(t, got.Retryable)
}

func TestNormalize_WalksWrapChain(t *testing.T) {
	sentinel := stderrors.New("DATABASE_INSERT_FAILED")
	inner := fmt.Errorf("%w: connection reset", sentinel)
	outer := fmt.Errorf("failed after 3 attempts: %w", inner)

	got := Normalize(outer)
	assert.Equal(t, ErrCodeDatabaseInsertFailed, got.Code)
	assert.True(t, got.Retryable)
}

func TestNormalize_UnknownBecomesInternal(t *testing.T) {
	got := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, got.Code)
	assert.Equal(t, "boom", got.Details)
}

// ==========================
// Tables
// ==========================

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeUnknownQuestion, http.StatusBadRequest},
		{ErrCodeUploadRejected, http.StatusBadRequest},
		{ErrCodeSessionNotFound, http.StatusNotFound},
		{ErrCodeAlreadySubmitted, http.StatusConflict},
		{ErrCodeDuplicateApplication, http.StatusConflict},
		{ErrCodeNotReady, http.StatusUnprocessableEntity},
		{ErrCodeStepNotMounted, http.StatusUnprocessableEntity},
		{ErrCodeProfileFetchFailed, http.StatusBadGateway},
		{ErrCodeDraftSaveFailed, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "UPLOAD", GetErrorCategory(ErrCodeResumeNotFound))
	assert.Equal(t, "PROFILE", GetErrorCategory(ErrCodeProfileFetchFailed))
	assert.Equal(t, "NAVIGATION", GetErrorCategory(ErrCodeNoPreviousStep))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDraftSaveFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeUnknownConsent))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestUploadRejectedCarriesKind(t *testing.T) {
	err := NewUploadRejectedError("too_large", "File exceeds 10 MB")
	assert.Equal(t, "too_large", err.Metadata["kind"])
	assert.False(t, err.Retryable)
	assert.Contains(t, err.Error(), "UPLOAD_REJECTED")
}
