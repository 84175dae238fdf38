// Package session ties a wizard controller to its step instances and mounts exactly one step at a time.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"application-wizard/internal/common/logger"
	"application-wizard/internal/models"
	"application-wizard/internal/steps"
	"application-wizard/internal/steps/pretest"
	"application-wizard/internal/steps/profile"
	"application-wizard/internal/steps/questions"
	"application-wizard/internal/steps/resume"
	"application-wizard/internal/steps/review"
	"application-wizard/internal/wizard"
)

// DraftStore is the durable side of a session.
type DraftStore interface {
	Save(ctx context.Context, draft models.ApplicationDraft) error
	Load(ctx context.Context, applicantID, jobID string) (models.ApplicationDraft, error)
	Delete(ctx context.Context, applicantID, jobID string) error
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Profiles  profile.Service
	Library   resume.Library
	Uploads   resume.UploadAcceptor
	Drafts    DraftStore
	Submitter wizard.Submitter
}

type step interface {
	ID() models.StepID
	Mount(ctx context.Context)
	Unmount()
}

// Session is one applicant working on one job. Its methods are serialized.
type Session struct {
	mu sync.Mutex

	id     string
	config *Config
	drafts DraftStore
	logger logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	ctrl      *wizard.Controller
	profile   *profile.Step
	resume    *resume.Step
	questions *questions.Step
	pretest   *pretest.Step
	review    *review.Step

	mounted  step
	closed   bool
	lastSeen time.Time
}

func newSession(id string, config *Config, job models.JobPosting, draft models.ApplicationDraft, deps Deps, log logger.Logger) *Session {
	log = logger.ForComponent(log, "session").WithFields(map[string]interface{}{"sessionId": id})
	ctrl := wizard.NewController(config.Wizard, job, draft, deps.Submitter, log)

	var saver questions.DraftSaver
	if deps.Drafts != nil {
		saver = deps.Drafts
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:        id,
		config:    config,
		drafts:    deps.Drafts,
		logger:    log,
		ctx:       ctx,
		cancel:    cancel,
		ctrl:      ctrl,
		profile:   profile.NewStep(config.Profile, ctrl, deps.Profiles, log),
		resume:    resume.NewStep(config.Resume, ctrl, deps.Library, deps.Uploads, log),
		questions: questions.NewStep(config.Questions, ctrl, saver, log),
		pretest:   pretest.NewStep(config.PreTest, ctrl, log),
		review:    review.NewStep(ctrl, log),
		lastSeen:  config.Now(),
	}
	s.mountLocked(ctrl.Current())
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Controller() *wizard.Controller { return s.ctrl }

func (s *Session) stepFor(id models.StepID) step {
	switch id {
	case models.StepProfile:
		return s.profile
	case models.StepResume:
		return s.resume
	case models.StepQuestions:
		return s.questions
	case models.StepPreTest:
		return s.pretest
	case models.StepReview:
		return s.review
	}
	return nil
}

func (s *Session) mountLocked(id models.StepID) {
	if s.mounted != nil {
		s.mounted.Unmount()
	}
	s.mounted = s.stepFor(id)
	s.mounted.Mount(s.ctx)
	s.logger.Debug("step mounted", map[string]interface{}{"step": id})
}

// active returns an error unless id is the mounted step.
func (s *Session) active(id models.StepID) error {
	if s.closed || s.mounted == nil || s.mounted.ID() != id {
		return fmt.Errorf("%w: %s is not the current step", steps.ErrNotMounted, id)
	}
	return nil
}

func (s *Session) touch() { s.lastSeen = s.config.Now() }

// idleSince reports the last time the session was used.
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Next leaves the current step and mounts the following one. Leaving the questions step
// first surfaces its field errors.
func (s *Session) Next() (models.StepID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.mounted != nil && s.mounted.ID() == models.StepQuestions {
		s.questions.ShowErrors()
	}
	next, err := s.ctrl.Next()
	if err != nil {
		return next, err
	}
	s.mountLocked(next)
	return next, nil
}

func (s *Session) Back() (models.StepID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	prev, err := s.ctrl.Back()
	if err != nil {
		return prev, err
	}
	s.mountLocked(prev)
	return prev, nil
}

// Submit hands the application off. A successful submit removes the stored draft.
func (s *Session) Submit(ctx context.Context) (*models.SubmissionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	result, err := s.ctrl.Submit(ctx)
	if err != nil {
		return nil, err
	}
	if s.drafts != nil {
		d := s.ctrl.Draft()
		if derr := s.drafts.Delete(ctx, d.ApplicantID, d.JobID); derr != nil {
			s.logger.Warn("failed to delete submitted draft", map[string]interface{}{"error": derr.Error()})
		}
	}
	return result, nil
}

func (s *Session) RetryProfile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.active(models.StepProfile); err != nil {
		return err
	}
	return s.profile.Retry(ctx)
}

func (s *Session) SelectResume(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.active(models.StepResume); err != nil {
		return err
	}
	return s.resume.SelectLibrary(id)
}

func (s *Session) UploadResume(ctx context.Context, f resume.FileUpload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.active(models.StepResume); err != nil {
		return err
	}
	return s.resume.Upload(ctx, f)
}

func (s *Session) RemoveUpload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.active(models.StepResume); err != nil {
		return err
	}
	return s.resume.RemoveUpload()
}

func (s *Session) SetPortfolioURL(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.active(models.StepResume); err != nil {
		return err
	}
	return s.resume.SetPortfolioURL(url)
}

func (s *Session) Answer(questionID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.active(models.StepQuestions); err != nil {
		return err
	}
	return s.questions.HandleAnswerChange(questionID, value)
}

func (s *Session) SaveDraft(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.active(models.StepQuestions); err != nil {
		return err
	}
	if s.config.DraftTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.DraftTimeout)
		defer cancel()
	}
	return s.questions.HandleSaveDraft(ctx)
}

func (s *Session) SetConsent(kind models.ConsentKind, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.active(models.StepReview); err != nil {
		return err
	}
	return s.review.SetConsent(kind, value)
}

// Wait blocks until async work of the profile and resume steps settles.
func (s *Session) Wait() {
	s.profile.Wait()
	s.resume.Wait()
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.ctrl.Draft()
	submitted, result := s.ctrl.Submitted()
	v := View{
		ID:          s.id,
		JobID:       d.JobID,
		ApplicantID: d.ApplicantID,
		DraftID:     d.ID,
		Steps:       s.ctrl.Steps(),
		Current:     s.ctrl.Current(),
		Index:       s.ctrl.Index(),
		Policy:      s.ctrl.Policy(),
		Validity:    s.ctrl.Validity(),
		Ready:       s.ctrl.Ready(),
		Submitted:   submitted,
		Result:      result,
		UpdatedAt:   d.UpdatedAt,
	}
	switch v.Current {
	case models.StepProfile:
		v.Step = s.profile.View()
	case models.StepResume:
		v.Step = s.resume.View()
	case models.StepQuestions:
		v.Step = s.questions.View()
	case models.StepPreTest:
		v.Step = s.pretest.View()
	case models.StepReview:
		v.Step = s.review.Summary()
	}
	return v
}

// Close unmounts the current step and cancels everything it started.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.mounted != nil {
		s.mounted.Unmount()
		s.mounted = nil
	}
	s.cancel()
	s.mu.Unlock()

	s.Wait()
	s.logger.Debug("session closed", nil)
}
