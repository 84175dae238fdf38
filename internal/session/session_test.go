package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"application-wizard/internal/common/logger"
	"application-wizard/internal/common/retry"
	"application-wizard/internal/draftstore"
	"application-wizard/internal/models"
	"application-wizard/internal/steps"
	"application-wizard/internal/steps/pretest"
	"application-wizard/internal/steps/questions"
	"application-wizard/internal/steps/resume"
	"application-wizard/internal/steps/review"
	"application-wizard/internal/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeProfiles struct {
	gate    chan struct{}
	profile models.ApplicantProfile
}

func (f *fakeProfiles) FetchProfile(ctx context.Context, applicantID string) (*models.ApplicantProfile, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p := f.profile
	p.ApplicantID = applicantID
	return &p, nil
}

type fakeLibrary struct {
	resumes []models.LibraryResume
}

func (f *fakeLibrary) ListResumes(ctx context.Context, applicantID string) ([]models.LibraryResume, error) {
	return append([]models.LibraryResume(nil), f.resumes...), nil
}

type fakeUploads struct{}

func (fakeUploads) Store(ctx context.Context, applicantID string, file models.UploadedResume) (string, error) {
	return "key-" + file.Name, nil
}

type memoryDrafts struct {
	mu      sync.Mutex
	drafts  map[string]models.ApplicationDraft
	deleted []string
}

func newMemoryDrafts() *memoryDrafts {
	return &memoryDrafts{drafts: map[string]models.ApplicationDraft{}}
}

func (m *memoryDrafts) key(applicantID, jobID string) string { return applicantID + ":" + jobID }

func (m *memoryDrafts) Save(ctx context.Context, d models.ApplicationDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[m.key(d.ApplicantID, d.JobID)] = d.Clone()
	return nil
}

func (m *memoryDrafts) Load(ctx context.Context, applicantID, jobID string) (models.ApplicationDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[m.key(applicantID, jobID)]
	if !ok {
		return models.ApplicationDraft{}, fmt.Errorf("%w: %s", draftstore.ErrDraftNotFound, m.key(applicantID, jobID))
	}
	return d.Clone(), nil
}

func (m *memoryDrafts) Delete(ctx context.Context, applicantID, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, m.key(applicantID, jobID))
	m.deleted = append(m.deleted, m.key(applicantID, jobID))
	return nil
}

type fakeSubmitter struct {
	payloads []models.ApplicationPayload
}

func (f *fakeSubmitter) Submit(ctx context.Context, p models.ApplicationPayload) (*models.SubmissionResult, error) {
	f.payloads = append(f.payloads, p)
	return &models.SubmissionResult{ApplicationID: "app-1", Status: "submitted", SubmittedAt: time.Now()}, nil
}

type fixture struct {
	registry  *Registry
	profiles  *fakeProfiles
	library   *fakeLibrary
	drafts    *memoryDrafts
	submitter *fakeSubmitter
	clock     *time.Time
}

func newFixture(t *testing.T, policy wizard.Policy) *fixture {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	f := &fixture{
		profiles:  &fakeProfiles{profile: models.ApplicantProfile{Name: "Ada", Email: "ada@example.com", Completeness: 100}},
		library:   &fakeLibrary{resumes: []models.LibraryResume{{ID: "r-1", Name: "cv.pdf", Size: 2048, IsDefault: true}}},
		drafts:    newMemoryDrafts(),
		submitter: &fakeSubmitter{},
		clock:     &now,
	}

	cfg := LoadConfig()
	cfg.IdleTTL = time.Hour
	cfg.Now = func() time.Time { return *f.clock }
	cfg.Wizard = &wizard.Config{Policy: policy}
	cfg.Resume.Retry = retry.Config{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	f.registry = NewRegistry(cfg, Deps{
		Profiles:  f.profiles,
		Library:   f.library,
		Uploads:   fakeUploads{},
		Drafts:    f.drafts,
		Submitter: f.submitter,
	}, logger.NewTestLogger(t))
	t.Cleanup(f.registry.Shutdown)
	return f
}

func createTestJob(requiresTest bool) models.JobPosting {
	job := models.JobPosting{
		ID: "job-1", Title: "Backend Engineer", Company: "Acme", Location: "Berlin",
		ScreeningQuestions: []models.ScreeningQuestion{
			{ID: "q1", Prompt: "Why Acme?", Type: models.QuestionTextarea, Required: true, MaxLength: 200},
			{ID: "q2", Prompt: "Work permit?", Type: models.QuestionRadio, Required: true, Options: []string{"yes", "no"}},
		},
	}
	if requiresTest {
		job.RequiresTest = true
		job.TestProvider = "Codility"
		job.TestDuration = "45 minutes"
	}
	return job
}

func open(t *testing.T, f *fixture, job models.JobPosting) *Session {
	s, err := f.registry.Open(context.Background(), job, "a-1")
	require.NoError(t, err)
	s.Wait()
	return s
}

func next(t *testing.T, s *Session, want models.StepID) {
	got, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, want, got)
	s.Wait()
}

// ==========================
// End-to-end Scenarios
// ==========================

func TestScenarioA_ReadyAndSubmitted(t *testing.T) {
	f := newFixture(t, wizard.PolicyAdvisory)
	s := open(t, f, createTestJob(false))

	assert.Equal(t, []models.StepID{models.StepProfile, models.StepResume, models.StepQuestions, models.StepReview}, s.View().Steps)

	next(t, s, models.StepResume)
	rv, ok := s.View().Step.(resume.View)
	require.True(t, ok)
	assert.Equal(t, models.ResumeKindLibrary, rv.SelectionKind, "default resume preselected")

	next(t, s, models.StepQuestions)
	require.NoError(t, s.Answer("q1", "Great team"))
	require.NoError(t, s.Answer("q2", "yes"))

	next(t, s, models.StepReview)
	require.NoError(t, s.SetConsent(models.ConsentGDPR, true))
	require.NoError(t, s.SetConsent(models.ConsentTerms, true))

	v := s.View()
	sum, ok := v.Step.(review.Summary)
	require.True(t, ok)
	assert.True(t, sum.Ready)
	assert.Equal(t, 2, sum.Answered)
	assert.True(t, v.Ready)

	result, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "app-1", result.ApplicationID)

	require.Len(t, f.submitter.payloads, 1)
	p := f.submitter.payloads[0]
	assert.Equal(t, "ada@example.com", p.ApplicantEmail)
	assert.Equal(t, "r-1", p.Resume.ID)
	assert.Nil(t, p.PreTest)
	assert.Equal(t, []string{"a-1:job-1"}, f.drafts.deleted)

	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, wizard.ErrAlreadySubmitted)
	assert.True(t, s.View().Submitted)
}

func TestScenarioB_PreTestIncludedNotReadyWithoutResume(t *testing.T) {
	f := newFixture(t, wizard.PolicyAdvisory)
	f.library.resumes = nil
	s := open(t, f, createTestJob(true))

	assert.Len(t, s.View().Steps, 5)

	next(t, s, models.StepResume)
	next(t, s, models.StepQuestions)
	next(t, s, models.StepPreTest)

	pv, ok := s.View().Step.(pretest.View)
	require.True(t, ok)
	assert.True(t, pv.Acknowledged)
	assert.Equal(t, "Codility", pv.Provider)

	next(t, s, models.StepReview)
	require.NoError(t, s.SetConsent(models.ConsentGDPR, true))
	require.NoError(t, s.SetConsent(models.ConsentTerms, true))

	v := s.View()
	sum := v.Step.(review.Summary)
	assert.False(t, sum.Ready)
	assert.Nil(t, sum.Resume)
	for _, id := range v.Steps {
		assert.True(t, v.Validity[id], "step %s", id)
	}
	assert.True(t, v.Ready, "advisory controller would still accept the submit")
}

// ==========================
// Navigation & Mounting
// ==========================

func TestOperationsRequireCurrentStep(t *testing.T) {
	f := newFixture(t, wizard.PolicyAdvisory)
	s := open(t, f, createTestJob(false))

	assert.ErrorIs(t, s.Answer("q1", "x"), steps.ErrNotMounted)
	assert.ErrorIs(t, s.SelectResume("r-1"), steps.ErrNotMounted)
	assert.ErrorIs(t, s.SetConsent(models.ConsentGDPR, true), steps.ErrNotMounted)

	_, err := s.Back()
	assert.ErrorIs(t, err, wizard.ErrNoPreviousStep)
}

func TestStrictPolicyBlocksNextAndShowsErrors(t *testing.T) {
	f := newFixture(t, wizard.PolicyStrict)
	s := open(t, f, createTestJob(false))

	next(t, s, models.StepResume)
	next(t, s, models.StepQuestions)

	_, err := s.Next()
	assert.ErrorIs(t, err, wizard.ErrStepInvalid)

	qv := s.View().Step.(questions.View)
	assert.Equal(t, models.StepQuestions, s.View().Current)
	assert.NotEmpty(t, qv.Questions[0].Errors)
	assert.NotEmpty(t, qv.Questions[1].Errors)

	require.NoError(t, s.Answer("q1", "Great team"))
	require.NoError(t, s.Answer("q2", "no"))
	next(t, s, models.StepReview)

	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, wizard.ErrNotReady)
	assert.Empty(t, f.submitter.payloads)
}

func TestLateProfileResultDiscardedAfterLeaving(t *testing.T) {
	f := newFixture(t, wizard.PolicyAdvisory)
	f.profiles.gate = make(chan struct{})
	s, err := f.registry.Open(context.Background(), createTestJob(false), "a-1")
	require.NoError(t, err)

	_, err = s.Next()
	require.NoError(t, err)
	close(f.profiles.gate)
	s.Wait()

	assert.Nil(t, s.Controller().Draft().Profile.Profile)
}

func TestBackRemountsPreviousStep(t *testing.T) {
	f := newFixture(t, wizard.PolicyAdvisory)
	s := open(t, f, createTestJob(false))
	next(t, s, models.StepResume)
	next(t, s, models.StepQuestions)
	require.NoError(t, s.Answer("q1", "kept"))

	prev, err := s.Back()
	require.NoError(t, err)
	assert.Equal(t, models.StepResume, prev)
	s.Wait()

	next(t, s, models.StepQuestions)
	qv := s.View().Step.(questions.View)
	assert.Equal(t, "kept", qv.Questions[0].Answer.Text())
}

// ==========================
// Draft Persistence
// ==========================

func TestSavedDraftRestoresOnReopen(t *testing.T) {
	f := newFixture(t, wizard.PolicyAdvisory)
	s := open(t, f, createTestJob(false))
	next(t, s, models.StepResume)
	next(t, s, models.StepQuestions)
	require.NoError(t, s.Answer("q1", "  verbatim text "))
	require.NoError(t, s.SaveDraft(context.Background()))
	draftID := s.View().DraftID
	require.NoError(t, f.registry.Close(s.ID()))

	again := open(t, f, createTestJob(false))
	assert.NotEqual(t, s.ID(), again.ID())
	assert.Equal(t, draftID, again.View().DraftID)
	assert.Equal(t, "  verbatim text ", again.Controller().Draft().Questions.Answers["q1"].Text())
	assert.True(t, again.Controller().Draft().Questions.IsDraft)
}

// ==========================
// Registry
// ==========================

func TestRegistry_OpenRejectsInvalidJob(t *testing.T) {
	f := newFixture(t, wizard.PolicyAdvisory)

	job := createTestJob(false)
	job.Title = ""
	_, err := f.registry.Open(context.Background(), job, "a-1")
	assert.ErrorIs(t, err, ErrInvalidJob)

	job = createTestJob(false)
	job.RequiresTest = true
	_, err = f.registry.Open(context.Background(), job, "a-1")
	assert.ErrorIs(t, err, ErrInvalidJob, "test provider required when a test is")

	_, err = f.registry.Open(context.Background(), createTestJob(false), " ")
	assert.ErrorIs(t, err, ErrInvalidJob)
}

func TestRegistry_GetAndClose(t *testing.T) {
	f := newFixture(t, wizard.PolicyAdvisory)
	s := open(t, f, createTestJob(false))

	got, err := f.registry.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, f.registry.Close(s.ID()))
	_, err = f.registry.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, f.registry.Close(s.ID()), ErrSessionNotFound)
}

func TestRegistry_SweepExpiresIdleSessions(t *testing.T) {
	f := newFixture(t, wizard.PolicyAdvisory)
	idle := open(t, f, createTestJob(false))

	*f.clock = f.clock.Add(50 * time.Minute)
	active := open(t, f, createTestJob(false))

	*f.clock = f.clock.Add(20 * time.Minute)
	assert.Equal(t, 1, f.registry.Sweep())

	_, err := f.registry.Get(idle.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.registry.Get(active.ID())
	assert.NoError(t, err)
	assert.Equal(t, 1, f.registry.Len())
}

// ==========================
// Concurrency
// ==========================

func TestWaitAndViewWhileUploading(t *testing.T) {
	f := newFixture(t, wizard.PolicyAdvisory)
	s := open(t, f, createTestJob(false))
	next(t, s, models.StepResume)

	pdf := []byte("%PDF-1.4\n1 0 obj\n")
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			err := s.UploadResume(context.Background(), resume.FileUpload{
				Name: fmt.Sprintf("cv-%d.pdf", i), MIMEType: "application/pdf", Content: pdf,
			})
			assert.NoError(t, err)
		}
	}()
	for r := 0; r < 2; r++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Wait()
				_ = s.View()
			}
		}()
	}
	wg.Wait()

	s.Wait()
	rv, ok := s.View().Step.(resume.View)
	require.True(t, ok)
	assert.Equal(t, models.ResumeKindUploaded, rv.SelectionKind)
	assert.Equal(t, "cv-49.pdf", rv.Upload.FileName)
	assert.Equal(t, resume.UploadSuccess, rv.Upload.Status)
}
