package submission

import (
	"context"
	"errors"
	"testing"
	"time"

	"application-wizard/internal/common/logger"
	"application-wizard/internal/common/retry"
	"application-wizard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return &Config{
		Timeout:   time.Second,
		ProcessID: "job-application",
		Retry:     retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
		Now:       func() time.Time { return fixedNow },
	}
}

func createTestPayload() models.ApplicationPayload {
	return models.ApplicationPayload{
		DraftID:        "d-1",
		JobID:          "job-1",
		ApplicantID:    "a-1",
		ApplicantEmail: "ada@example.com",
		Profile:        models.PayloadProfile{Completeness: 100},
		Resume:         &models.PayloadResume{Kind: models.ResumeKindLibrary, ID: "r-1", Name: "cv.pdf", Size: 2048},
		Answers: map[string]models.Answer{
			"why":   models.TextAnswer("because"),
			"langs": models.MultiAnswer([]string{"go"}),
		},
		Consent:     models.ConsentRecord{GDPRConsent: true, TermsConsent: true, CommunicationConsent: true},
		FinalizedAt: fixedNow,
	}
}

type fakeStarter struct {
	processID string
	vars      map[string]interface{}
	err       error
}

func (f *fakeStarter) StartProcess(ctx context.Context, processID string, vars map[string]interface{}) (int64, error) {
	f.processID = processID
	f.vars = vars
	return 42, f.err
}

type fakeMailer struct {
	to, subject, body string
	err               error
}

func (f *fakeMailer) SendText(ctx context.Context, to, subject, body string) (string, error) {
	f.to, f.subject, f.body = to, subject, body
	return "msg-1", f.err
}

func expectDuplicateCheck(mock sqlmock.Sqlmock, exists bool) {
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("a-1", "job-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
}

func expectInsert(mock sqlmock.Sqlmock) *sqlmock.ExpectedExec {
	return mock.ExpectExec(`INSERT INTO applications`).
		WithArgs(sqlmock.AnyArg(), "job-1", "a-1", StatusSubmitted, sqlmock.AnyArg(), fixedNow)
}

func expectAudit(mock sqlmock.Sqlmock) *sqlmock.ExpectedExec {
	return mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("application", sqlmock.AnyArg(), "application_submitted", sqlmock.AnyArg())
}

func newService(t *testing.T, starter ProcessStarter, mailer Mailer) (*Service, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc, err := NewService(createTestConfig(), db, starter, mailer, nil, logger.NewTestLogger(t))
	require.NoError(t, err)
	return svc, mock
}

// ==========================
// Core Functionality Tests
// ==========================

func TestSubmit_Success(t *testing.T) {
	starter := &fakeStarter{}
	mailer := &fakeMailer{}
	svc, mock := newService(t, starter, mailer)

	expectDuplicateCheck(mock, false)
	expectInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))
	expectAudit(mock).WillReturnResult(sqlmock.NewResult(1, 1))

	result, err := svc.Submit(context.Background(), createTestPayload())

	require.NoError(t, err)
	assert.NotEmpty(t, result.ApplicationID)
	assert.Equal(t, StatusSubmitted, result.Status)
	assert.Equal(t, fixedNow, result.SubmittedAt)

	assert.Equal(t, "job-application", starter.processID)
	assert.Equal(t, result.ApplicationID, starter.vars["applicationId"])
	assert.Equal(t, "job-1", starter.vars["jobId"])

	assert.Equal(t, "ada@example.com", mailer.to)
	assert.Contains(t, mailer.body, result.ApplicationID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_OptionalCollaboratorsSkipped(t *testing.T) {
	svc, mock := newService(t, nil, nil)

	expectDuplicateCheck(mock, false)
	expectInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))
	expectAudit(mock).WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := svc.Submit(context.Background(), createTestPayload())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_NonCriticalFailuresDoNotFail(t *testing.T) {
	starter := &fakeStarter{err: errors.New("PROCESS_START_FAILED: broker unavailable")}
	mailer := &fakeMailer{err: errors.New("throttled")}
	svc, mock := newService(t, starter, mailer)

	expectDuplicateCheck(mock, false)
	expectInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))
	expectAudit(mock).WillReturnError(errors.New("audit table locked"))

	result, err := svc.Submit(context.Background(), createTestPayload())

	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_NoEmailWithoutAddress(t *testing.T) {
	mailer := &fakeMailer{}
	svc, mock := newService(t, nil, mailer)
	p := createTestPayload()
	p.ApplicantEmail = ""

	expectDuplicateCheck(mock, false)
	expectInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))
	expectAudit(mock).WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := svc.Submit(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, mailer.to)
}

func TestSubmit_LargeLibraryResumeIsAccepted(t *testing.T) {
	svc, mock := newService(t, nil, nil)
	p := createTestPayload()
	p.Resume.Size = 12 << 20

	expectDuplicateCheck(mock, false)
	expectInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))
	expectAudit(mock).WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := svc.Submit(context.Background(), p)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_MalformedEmailSkipsReceipt(t *testing.T) {
	mailer := &fakeMailer{}
	svc, mock := newService(t, nil, mailer)
	p := createTestPayload()
	p.ApplicantEmail = "ada.example"

	expectDuplicateCheck(mock, false)
	expectInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))
	expectAudit(mock).WillReturnResult(sqlmock.NewResult(1, 1))

	result, err := svc.Submit(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, result.Status)
	assert.Empty(t, mailer.to)
}

// ==========================
// Error Handling Tests
// ==========================

func TestSubmit_Duplicate(t *testing.T) {
	svc, mock := newService(t, nil, nil)
	expectDuplicateCheck(mock, true)

	_, err := svc.Submit(context.Background(), createTestPayload())

	assert.ErrorIs(t, err, ErrDuplicateApplication)
	assert.NoError(t, mock.ExpectationsWereMet(), "duplicates are not retried")
}

func TestSubmit_UniqueViolationIsDuplicate(t *testing.T) {
	svc, mock := newService(t, nil, nil)
	expectDuplicateCheck(mock, false)
	expectInsert(mock).WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	_, err := svc.Submit(context.Background(), createTestPayload())

	assert.ErrorIs(t, err, ErrDuplicateApplication)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_InsertRetriedThenFails(t *testing.T) {
	svc, mock := newService(t, nil, nil)
	for i := 0; i < 3; i++ {
		expectDuplicateCheck(mock, false)
		expectInsert(mock).WillReturnError(errors.New("connection reset by peer"))
	}

	_, err := svc.Submit(context.Background(), createTestPayload())

	assert.ErrorIs(t, err, ErrDatabaseInsertFailed)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_InsertRecoversOnRetry(t *testing.T) {
	svc, mock := newService(t, nil, nil)
	expectDuplicateCheck(mock, false)
	expectInsert(mock).WillReturnError(errors.New("connection reset by peer"))
	expectDuplicateCheck(mock, false)
	expectInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))
	expectAudit(mock).WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := svc.Submit(context.Background(), createTestPayload())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_SchemaRejectsPayload(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *models.ApplicationPayload)
	}{
		{"missing job id", func(p *models.ApplicationPayload) { p.JobID = "" }},
		{"missing applicant id", func(p *models.ApplicationPayload) { p.ApplicantID = "" }},
		{"oversized upload", func(p *models.ApplicationPayload) {
			p.Resume = &models.PayloadResume{Kind: models.ResumeKindUploaded, Name: "cv.pdf", Size: 20 * 1024 * 1024, StorageKey: "k-1"}
		}},
		{"completeness out of range", func(p *models.ApplicationPayload) { p.Profile.Completeness = 140 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := newService(t, nil, nil)
			p := createTestPayload()
			tt.mutate(&p)

			_, err := svc.Submit(context.Background(), p)

			assert.ErrorIs(t, err, ErrSubmissionValidationFailed)
			assert.NoError(t, mock.ExpectationsWereMet(), "nothing is written")
		})
	}
}

func TestSubmit_NilResumeIsAccepted(t *testing.T) {
	svc, mock := newService(t, nil, nil)
	p := createTestPayload()
	p.Resume = nil

	expectDuplicateCheck(mock, false)
	expectInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))
	expectAudit(mock).WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := svc.Submit(context.Background(), p)
	assert.NoError(t, err)
}
