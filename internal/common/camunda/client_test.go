package camunda

import (
	"errors"
	"testing"

	apperrors "application-wizard/internal/common/errors"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"rpc error: code = RESOURCE_EXHAUSTED", true},
		{"rpc error: code = NotFound desc = process not found", false},
		{"invalid argument", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(errors.New(tt.msg)))
		})
	}
}

func TestMapZeebeError(t *testing.T) {
	t.Run("not found is permanent", func(t *testing.T) {
		err := mapZeebeError(errors.New("process 'job-application' not found"), "create-instance:job-application", 1)

		assert.Equal(t, apperrors.ErrCodeProcessStartFailed, err.Code)
		assert.False(t, err.Retryable)
		assert.Equal(t, "process_not_found", err.Metadata["reason"])
	})

	t.Run("unavailable stays retryable", func(t *testing.T) {
		err := mapZeebeError(errors.New("unavailable"), "create-instance:job-application", 4)

		assert.True(t, err.Retryable)
		assert.Contains(t, err.Message, "after 4 attempts")
		assert.Equal(t, 4, err.Metadata["attempts"])
	})
}
