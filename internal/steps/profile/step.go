// Package profile is the wizard step that loads the applicant profile and grades it against the job.
package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"application-wizard/internal/common/logger"
	"application-wizard/internal/common/metrics"
	"application-wizard/internal/models"
	"application-wizard/internal/steps"
	"application-wizard/internal/wizard"
)

var ErrFetchFailed = errors.New("PROFILE_FETCH_FAILED")

// Service loads an applicant profile.
type Service interface {
	FetchProfile(ctx context.Context, applicantID string) (*models.ApplicantProfile, error)
}

type Step struct {
	mu sync.Mutex

	config   *Config
	reporter wizard.Reporter
	service  Service
	logger   logger.Logger
	life     steps.Lifecycle

	state   State
	profile *models.ApplicantProfile
	match   *models.MatchNarrative
	errMsg  string
}

func NewStep(config *Config, reporter wizard.Reporter, service Service, log logger.Logger) *Step {
	if config == nil {
		config = LoadConfig()
	}
	return &Step{
		config:   config,
		reporter: reporter,
		service:  service,
		logger:   logger.ForComponent(log, "step.profile"),
		state:    StateIdle,
	}
}

func (s *Step) ID() models.StepID { return models.StepProfile }

// Mount shows any profile already in the draft and starts one fetch. There is no automatic retry.
func (s *Step) Mount(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mountCtx, gen := s.life.Begin(ctx)

	d := s.reporter.Draft()
	s.profile = d.Profile.Profile
	s.match = d.Profile.Match

	s.startFetchLocked(mountCtx, gen)
}

func (s *Step) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.life.End()
}

// Retry re-issues the fetch after a failure. It is a no-op in any other state.
func (s *Step) Retry(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mountCtx, gen, err := s.life.Context()
	if err != nil {
		return err
	}
	if s.state != StateFailed {
		return nil
	}
	s.logger.Info("retrying profile fetch", nil)
	s.startFetchLocked(mountCtx, gen)
	return nil
}

// Wait blocks until the in-flight fetch settles.
func (s *Step) Wait() { s.life.Wait() }

func (s *Step) startFetchLocked(ctx context.Context, gen uint64) {
	s.state = StateLoading
	s.errMsg = ""

	applicantID := s.reporter.Draft().ApplicantID
	job := s.reporter.Job()

	s.life.Go(func() {
		fetchCtx := ctx
		if s.config.FetchTimeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(ctx, s.config.FetchTimeout)
			defer cancel()
		}

		start := time.Now()
		profile, err := s.service.FetchProfile(fetchCtx, applicantID)
		if err == nil && profile == nil {
			err = fmt.Errorf("empty profile response")
		}
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		metrics.ProfileFetchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

		s.mu.Lock()
		defer s.mu.Unlock()

		if !s.life.Current(gen) {
			s.logger.Debug("discarding profile result after unmount", map[string]interface{}{
				"applicantId": applicantID,
				"generation":  gen,
			})
			return
		}

		if err != nil {
			s.state = StateFailed
			s.errMsg = fmt.Errorf("%w: %v", ErrFetchFailed, err).Error()
			s.logger.Warn("profile fetch failed", map[string]interface{}{
				"applicantId": applicantID,
				"error":       err.Error(),
			})
			return
		}

		match := BuildMatch(job, *profile)
		s.profile = profile
		s.match = &match
		s.state = StateReady

		valid := s.reporter.Policy().Validity(true)
		if rerr := s.reporter.Report(wizard.ProfilePatch{Profile: profile, Match: &match}, valid); rerr != nil {
			s.logger.Error("failed to report profile", map[string]interface{}{"error": rerr.Error()})
		}
	})
}

func (s *Step) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		State:          s.state,
		Match:          s.match,
		Error:          s.errMsg,
		CanRetry:       s.state == StateFailed,
		EditProfileURL: s.config.EditProfileURL,
	}
	if s.profile != nil {
		p := *s.profile
		v.Profile = &p
		v.Tone, v.Prompts = affordance(p)
	}
	return v
}
