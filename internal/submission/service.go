// Package submission persists finalized applications and hands them to the downstream process.
package submission

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"application-wizard/internal/common/logger"
	"application-wizard/internal/common/metrics"
	"application-wizard/internal/common/observability"
	"application-wizard/internal/common/retry"
	"application-wizard/internal/common/validation"
	"application-wizard/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const StatusSubmitted = "submitted"

var (
	ErrSubmissionValidationFailed = errors.New("SUBMISSION_VALIDATION_FAILED")
	ErrDuplicateApplication       = errors.New("DUPLICATE_APPLICATION")
	ErrDatabaseInsertFailed       = errors.New("DATABASE_INSERT_FAILED")
)

//go:embed schemas/application_payload.json
var payloadSchema []byte

// ProcessStarter starts the downstream workflow for a stored application.
type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, variables map[string]interface{}) (int64, error)
}

// Mailer sends the receipt email.
type Mailer interface {
	SendText(ctx context.Context, to, subject, body string) (string, error)
}

type Service struct {
	config  *Config
	db      *sql.DB
	schema  *validation.SchemaValidator
	starter ProcessStarter
	mailer  Mailer
	obs     *observability.Observability
	logger  logger.Logger
}

// NewService wires the submission pipeline. starter, mailer and obs are optional.
func NewService(config *Config, db *sql.DB, starter ProcessStarter, mailer Mailer, obs *observability.Observability, log logger.Logger) (*Service, error) {
	if config == nil {
		config = LoadConfig()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	schema, err := validation.NewSchemaValidator(payloadSchema)
	if err != nil {
		return nil, err
	}
	return &Service{
		config:  config,
		db:      db,
		schema:  schema,
		starter: starter,
		mailer:  mailer,
		obs:     obs,
		logger:  logger.ForComponent(log, "submission"),
	}, nil
}

// Submit validates the payload, stores it once per applicant and job, and runs the optional followups.
func (s *Service) Submit(ctx context.Context, payload models.ApplicationPayload) (*models.SubmissionResult, error) {
	start := time.Now()
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	result, err := s.submit(ctx, payload)

	outcome := outcomeOf(err)
	metrics.SubmissionsTotal.WithLabelValues(outcome).Inc()
	s.obs.RecordSubmission(ctx, outcome, time.Since(start))
	return result, err
}

func (s *Service) submit(ctx context.Context, payload models.ApplicationPayload) (*models.SubmissionResult, error) {
	log := s.logger.WithFields(map[string]interface{}{
		"applicantId": payload.ApplicantID,
		"jobId":       payload.JobID,
	})

	vr, err := s.schema.Validate(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmissionValidationFailed, err)
	}
	if !vr.Valid {
		msgs := vr.GetErrorMessages()
		log.Warn("payload rejected by schema", map[string]interface{}{"errors": msgs})
		return nil, fmt.Errorf("%w: %s", ErrSubmissionValidationFailed, strings.Join(msgs, "; "))
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal payload: %v", ErrDatabaseInsertFailed, err)
	}

	appID := uuid.New().String()
	submittedAt := s.config.Now().UTC()

	err = retry.Do(ctx, s.config.Retry, isRetryableDBError, func(ctx context.Context) error {
		return s.insert(ctx, appID, payload, payloadJSON, submittedAt)
	})
	if err != nil {
		log.Error("application insert failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	s.audit(ctx, appID, payload, log)

	log.Info("application record created", map[string]interface{}{"applicationId": appID})

	s.startProcess(ctx, appID, payload, log)
	s.sendReceipt(ctx, appID, payload, log)

	return &models.SubmissionResult{
		ApplicationID: appID,
		Status:        StatusSubmitted,
		SubmittedAt:   submittedAt,
	}, nil
}

func (s *Service) insert(ctx context.Context, appID string, payload models.ApplicationPayload, payloadJSON []byte, at time.Time) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE applicant_id = $1 AND job_id = $2
		)`, payload.ApplicantID, payload.JobID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
	}
	if exists {
		return fmt.Errorf("%w: application already exists for applicant %s and job %s",
			ErrDuplicateApplication, payload.ApplicantID, payload.JobID)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (id, job_id, applicant_id, status, payload, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		appID, payload.JobID, payload.ApplicantID, StatusSubmitted, payloadJSON, at,
	)
	if err != nil {
		var pqErr *pq.Error
		// a concurrent submit won the unique constraint
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: application already exists for applicant %s and job %s",
				ErrDuplicateApplication, payload.ApplicantID, payload.JobID)
		}
		return fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}
	return nil
}

// audit is best effort.
func (s *Service) audit(ctx context.Context, appID string, payload models.ApplicationPayload, log logger.Logger) {
	details, err := json.Marshal(map[string]interface{}{
		"applicantId": payload.ApplicantID,
		"jobId":       payload.JobID,
		"draftId":     payload.DraftID,
		"answers":     len(payload.Answers),
		"hasResume":   payload.Resume != nil,
	})
	if err != nil {
		log.Warn("failed to marshal audit log details", map[string]interface{}{"error": err})
		details = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (entity_type, entity_id, action, metadata)
		VALUES ($1, $2, $3, $4)`,
		"application", appID, "application_submitted", details,
	)
	if err != nil {
		log.Warn("audit log insert failed", map[string]interface{}{"error": err, "applicationId": appID})
	}
}

func (s *Service) startProcess(ctx context.Context, appID string, payload models.ApplicationPayload, log logger.Logger) {
	if s.starter == nil {
		return
	}
	key, err := s.starter.StartProcess(ctx, s.config.ProcessID, map[string]interface{}{
		"applicationId": appID,
		"applicantId":   payload.ApplicantID,
		"jobId":         payload.JobID,
		"draftId":       payload.DraftID,
	})
	if err != nil {
		// the record is stored; the process can be started again from the audit trail
		log.Error("failed to start application process", map[string]interface{}{"applicationId": appID, "error": err.Error()})
		return
	}
	log.Info("application process started", map[string]interface{}{"applicationId": appID, "processInstanceKey": key})
}

func (s *Service) sendReceipt(ctx context.Context, appID string, payload models.ApplicationPayload, log logger.Logger) {
	if s.mailer == nil || payload.ApplicantEmail == "" {
		return
	}
	if !validation.IsEmail(payload.ApplicantEmail) {
		log.Warn("receipt skipped: invalid applicant email", map[string]interface{}{"applicationId": appID})
		return
	}
	subject := "We received your application"
	body := fmt.Sprintf("Your application for job %s was submitted.\nReference: %s\n", payload.JobID, appID)
	msgID, err := s.mailer.SendText(ctx, payload.ApplicantEmail, subject, body)
	if err != nil {
		log.Warn("receipt email failed", map[string]interface{}{"applicationId": appID, "error": err.Error()})
		return
	}
	log.Debug("receipt email sent", map[string]interface{}{"applicationId": appID, "messageId": msgID})
}

func isRetryableDBError(err error) bool {
	if errors.Is(err, ErrDuplicateApplication) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrDuplicateApplication):
		return "duplicate"
	case errors.Is(err, ErrSubmissionValidationFailed):
		return "invalid"
	default:
		return "failure"
	}
}
