// Package review is the final step: a summary of the application plus the consent flags.
package review

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"application-wizard/internal/common/logger"
	"application-wizard/internal/models"
	"application-wizard/internal/questionrenderer"
	"application-wizard/internal/steps"
	"application-wizard/internal/wizard"
)

var ErrUnknownConsent = errors.New("UNKNOWN_CONSENT")

type Step struct {
	mu sync.Mutex

	reporter wizard.Reporter
	logger   logger.Logger
	life     steps.Lifecycle

	consent models.ConsentRecord
}

func NewStep(reporter wizard.Reporter, log logger.Logger) *Step {
	return &Step{
		reporter: reporter,
		logger:   logger.ForComponent(log, "step.review"),
		consent:  models.DefaultConsent(),
	}
}

func (s *Step) ID() models.StepID { return models.StepReview }

// Mount restores consent from the draft and reports it.
func (s *Step) Mount(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.life.Begin(ctx)
	s.consent = s.reporter.Draft().Consent
	s.reportLocked()
}

func (s *Step) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.life.End()
}

// SetConsent changes one consent flag.
func (s *Step) SetConsent(kind models.ConsentKind, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.life.Mounted() {
		return steps.ErrNotMounted
	}
	switch kind {
	case models.ConsentGDPR:
		s.consent.GDPRConsent = value
	case models.ConsentTerms:
		s.consent.TermsConsent = value
	case models.ConsentCommunication:
		s.consent.CommunicationConsent = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownConsent, kind)
	}
	s.reportLocked()
	return nil
}

func (s *Step) reportLocked() {
	valid := s.reporter.Policy().Validity(s.consent.GDPRConsent && s.consent.TermsConsent)
	patch := wizard.ConsentPatch{
		GDPRConsent:          s.consent.GDPRConsent,
		TermsConsent:         s.consent.TermsConsent,
		CommunicationConsent: s.consent.CommunicationConsent,
	}
	if err := s.reporter.Report(patch, valid); err != nil {
		s.logger.Error("failed to report consent", map[string]interface{}{"error": err.Error()})
	}
}

// Summary aggregates the current draft.
func (s *Step) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildSummary(s.reporter.Job(), s.reporter.Draft())
}

// BuildSummary is the pure projection behind Summary.
func BuildSummary(job models.JobPosting, d models.ApplicationDraft) Summary {
	answered, total := questionrenderer.Completeness(job.ScreeningQuestions, d.Questions.Answers)
	sum := Summary{
		Answered:       answered,
		TotalQuestions: total,
		Consent:        d.Consent,
	}

	profileComplete := false
	if p := d.Profile.Profile; p != nil {
		sum.ProfileCompleteness = p.Completeness
		profileComplete = p.IsComplete()
	}
	if d.Profile.Match != nil {
		m := *d.Profile.Match
		sum.Match = &m
	}

	if sel := d.Resume.Selection; sel != nil {
		sum.Resume = &ResumeSummary{
			Kind:         sel.Kind(),
			Name:         sel.DisplayName(),
			Size:         sel.SizeBytes(),
			PortfolioURL: d.Resume.PortfolioURL,
		}
	}

	if job.RequiresTest {
		sum.PreTest = &PreTestSummary{
			Provider:       job.TestProvider,
			Duration:       job.TestDuration,
			Acknowledged:   d.PreTest.Acknowledged,
			AcknowledgedAt: d.PreTest.AcknowledgedAt,
		}
	}

	sum.Ready = d.Consent.GDPRConsent && d.Consent.TermsConsent && sum.Resume != nil && profileComplete
	return sum
}
