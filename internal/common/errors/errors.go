// Package errors provides the standardized error catalogue shared by the wizard, the submission path and the API.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Step-local errors
const (
	ErrCodeUploadRejected     ErrorCode = "UPLOAD_REJECTED"
	ErrCodeUploadFailed       ErrorCode = "UPLOAD_FAILED"
	ErrCodeProfileFetchFailed ErrorCode = "PROFILE_FETCH_FAILED"
	ErrCodeResumeNotFound     ErrorCode = "RESUME_NOT_FOUND"
	ErrCodeUnknownOption      ErrorCode = "UNKNOWN_OPTION"
	ErrCodeUnknownQuestion    ErrorCode = "UNKNOWN_QUESTION"
	ErrCodeUnknownConsent     ErrorCode = "UNKNOWN_CONSENT"
	ErrCodeStepInvalid        ErrorCode = "STEP_INVALID"
)

// Controller errors
const (
	ErrCodeStepNotInSequence ErrorCode = "STEP_NOT_IN_SEQUENCE"
	ErrCodeNotReady          ErrorCode = "NOT_READY"
	ErrCodeAlreadySubmitted  ErrorCode = "ALREADY_SUBMITTED"
	ErrCodeNoNextStep        ErrorCode = "NO_NEXT_STEP"
	ErrCodeNoPreviousStep    ErrorCode = "NO_PREVIOUS_STEP"
	ErrCodeStepNotMounted    ErrorCode = "STEP_NOT_MOUNTED"
)

// Submission / persistence errors
const (
	ErrCodeSubmissionValidationFailed ErrorCode = "SUBMISSION_VALIDATION_FAILED"
	ErrCodeDuplicateApplication       ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeDatabaseInsertFailed       ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDatabaseConnectionFailed   ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDraftSaveFailed            ErrorCode = "DRAFT_SAVE_FAILED"
	ErrCodeDraftNotFound              ErrorCode = "DRAFT_NOT_FOUND"
	ErrCodeProcessStartFailed         ErrorCode = "PROCESS_START_FAILED"
	ErrCodeNotificationSendFailed     ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// API errors
const (
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// New creates a StandardError whose retryability follows the catalogue.
func New(code ErrorCode, message, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadRejectedError creates a non-retryable upload policy error.
func NewUploadRejectedError(kind, message string) *StandardError {
	return New(ErrCodeUploadRejected, message, "").WithMetadata("kind", kind)
}

// NewUploadFailedError creates a retryable persistence error for an accepted upload.
func NewUploadFailedError(err error) *StandardError {
	return New(ErrCodeUploadFailed, "Resume upload failed", err.Error())
}

// NewProfileFetchFailedError creates a retryable profile service error.
func NewProfileFetchFailedError(err error) *StandardError {
	return New(ErrCodeProfileFetchFailed, "Could not load applicant profile", err.Error())
}

// NewSubmissionValidationError creates a non-retryable schema error.
func NewSubmissionValidationError(details string) *StandardError {
	return New(ErrCodeSubmissionValidationFailed, "Application payload failed validation", details)
}

// NewDuplicateApplicationError creates a non-retryable duplicate error.
func NewDuplicateApplicationError(applicantID, jobID string) *StandardError {
	return New(ErrCodeDuplicateApplication, "Application already exists",
		fmt.Sprintf("applicantId: %s, jobId: %s", applicantID, jobID))
}

// NewDatabaseInsertError creates a retryable insert error.
func NewDatabaseInsertError(err error) *StandardError {
	return New(ErrCodeDatabaseInsertFailed, "Failed to insert application record", err.Error())
}

// NewDraftSaveError creates a retryable draft persistence error.
func NewDraftSaveError(err error) *StandardError {
	return New(ErrCodeDraftSaveFailed, "Failed to save draft", err.Error())
}

func NewInvalidInputError(details string) *StandardError {
	return New(ErrCodeInvalidInput, "Invalid request", details)
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return New(ErrCodeSessionNotFound, "Session not found", fmt.Sprintf("sessionId: %s", sessionID))
}

func NewInternalError(err error) *StandardError {
	return New(ErrCodeInternal, "Internal error", err.Error())
}

// ==========================
// 3. Retry / Category Tables
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUploadFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeDraftSaveFailed,
		ErrCodeProcessStartFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeProfileFetchFailed:
		return 1 // manual retry affordance, no automatic loop

	default:
		return 0 // Business errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "UPLOAD") || strings.HasPrefix(codeStr, "RESUME"):
		return "UPLOAD"
	case strings.HasPrefix(codeStr, "PROFILE"):
		return "PROFILE"
	case strings.Contains(codeStr, "STEP") || strings.Contains(codeStr, "READY") ||
		strings.Contains(codeStr, "SUBMITTED") || strings.HasPrefix(codeStr, "NO_"):
		return "NAVIGATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "DRAFT") ||
		strings.Contains(codeStr, "DUPLICATE"):
		return "DATABASE"
	case strings.Contains(codeStr, "PROCESS"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") ||
		strings.HasPrefix(codeStr, "UNKNOWN_"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// ==========================
// 4. HTTP Mapping
// ==========================

// HTTPStatus maps an error code onto the status the API responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeUnknownOption, ErrCodeUploadRejected,
		ErrCodeUnknownQuestion, ErrCodeUnknownConsent, ErrCodeSubmissionValidationFailed:
		return http.StatusBadRequest
	case ErrCodeSessionNotFound, ErrCodeResumeNotFound, ErrCodeDraftNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateApplication, ErrCodeAlreadySubmitted:
		return http.StatusConflict
	case ErrCodeStepInvalid, ErrCodeStepNotInSequence, ErrCodeNotReady,
		ErrCodeNoNextStep, ErrCodeNoPreviousStep, ErrCodeStepNotMounted:
		return http.StatusUnprocessableEntity
	case ErrCodeProfileFetchFailed, ErrCodeProcessStartFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// knownCodes lets package sentinels carry their code in the error text: errors.New("NOT_READY").
var knownCodes = []ErrorCode{
	ErrCodeUploadRejected, ErrCodeUploadFailed, ErrCodeProfileFetchFailed, ErrCodeResumeNotFound,
	ErrCodeUnknownOption, ErrCodeUnknownQuestion, ErrCodeUnknownConsent,
	ErrCodeStepInvalid, ErrCodeStepNotInSequence, ErrCodeNotReady,
	ErrCodeAlreadySubmitted, ErrCodeNoNextStep, ErrCodeNoPreviousStep, ErrCodeStepNotMounted,
	ErrCodeSubmissionValidationFailed, ErrCodeDuplicateApplication, ErrCodeDatabaseInsertFailed,
	ErrCodeDatabaseConnectionFailed, ErrCodeDraftSaveFailed, ErrCodeDraftNotFound,
	ErrCodeProcessStartFailed, ErrCodeNotificationSendFailed, ErrCodeInvalidInput,
	ErrCodeSessionNotFound,
}

// Normalize turns any error into a StandardError. A wrapped StandardError is returned as is;
// sentinel errors whose message starts with a known code keep that code.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var std *StandardError
	if stderrors.As(err, &std) {
		return std
	}

	// walk the wrap chain so "failed after 3 attempts: DATABASE_INSERT_FAILED: ..." keeps its code
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		msg := e.Error()
		for _, code := range knownCodes {
			if strings.HasPrefix(msg, string(code)) {
				details := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, string(code)), ":"))
				return New(code, humanize(code), details)
			}
		}
	}
	return NewInternalError(err)
}

func humanize(code ErrorCode) string {
	s := strings.ToLower(strings.ReplaceAll(string(code), "_", " "))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
