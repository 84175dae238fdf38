package wizard

import (
	"fmt"
	"time"

	"application-wizard/internal/models"
)

// Patch is one step's namespaced contribution to the draft. Each patch type can only
// write its own sub-record.
type Patch interface {
	Step() models.StepID
	apply(d *models.ApplicationDraft)
}

type ProfilePatch struct {
	Profile *models.ApplicantProfile
	Match   *models.MatchNarrative
}

func (ProfilePatch) Step() models.StepID { return models.StepProfile }

func (p ProfilePatch) apply(d *models.ApplicationDraft) {
	d.Profile.Profile = nil
	if p.Profile != nil {
		prof := *p.Profile
		d.Profile.Profile = &prof
	}
	d.Profile.Match = nil
	if p.Match != nil {
		m := *p.Match
		d.Profile.Match = &m
	}
}

type ResumePatch struct {
	Selection    models.ResumeSelection
	PortfolioURL string
}

func (ResumePatch) Step() models.StepID { return models.StepResume }

func (p ResumePatch) apply(d *models.ApplicationDraft) {
	d.Resume.Selection = p.Selection
	d.Resume.PortfolioURL = p.PortfolioURL
}

type QuestionsPatch struct {
	Answers map[string]models.Answer
	IsDraft bool
	SavedAt *time.Time
}

func (QuestionsPatch) Step() models.StepID { return models.StepQuestions }

func (p QuestionsPatch) apply(d *models.ApplicationDraft) {
	d.Questions.Answers = models.CloneAnswers(p.Answers)
	d.Questions.IsDraft = p.IsDraft
	d.Questions.SavedAt = nil
	if p.SavedAt != nil {
		t := *p.SavedAt
		d.Questions.SavedAt = &t
	}
}

type PreTestPatch struct {
	Provider       string
	Duration       string
	Description    string
	AcknowledgedAt time.Time
}

func (PreTestPatch) Step() models.StepID { return models.StepPreTest }

func (p PreTestPatch) apply(d *models.ApplicationDraft) {
	at := p.AcknowledgedAt
	d.PreTest.Acknowledged = true
	d.PreTest.Provider = p.Provider
	d.PreTest.Duration = p.Duration
	d.PreTest.Description = p.Description
	d.PreTest.AcknowledgedAt = &at
}

type ConsentPatch struct {
	GDPRConsent          bool
	TermsConsent         bool
	CommunicationConsent bool
}

func (ConsentPatch) Step() models.StepID { return models.StepReview }

func (p ConsentPatch) apply(d *models.ApplicationDraft) {
	d.Consent.GDPRConsent = p.GDPRConsent
	d.Consent.TermsConsent = p.TermsConsent
	d.Consent.CommunicationConsent = p.CommunicationConsent
}

// Reduce returns a new draft with patch merged into its step's namespace. The input draft is not modified.
// A patch whose step is not part of steps is rejected.
func Reduce(steps []models.StepID, draft models.ApplicationDraft, patch Patch) (models.ApplicationDraft, error) {
	if patch == nil {
		return draft, fmt.Errorf("%w: nil patch", ErrStepNotInSequence)
	}
	if indexOf(steps, patch.Step()) < 0 {
		return draft, fmt.Errorf("%w: %s", ErrStepNotInSequence, patch.Step())
	}
	next := draft.Clone()
	patch.apply(&next)
	return next, nil
}

// withValidity stamps the sub-record validity flag of step.
func withValidity(d models.ApplicationDraft, step models.StepID, valid bool) models.ApplicationDraft {
	switch step {
	case models.StepProfile:
		d.Profile.IsValid = valid
	case models.StepResume:
		d.Resume.IsValid = valid
	case models.StepQuestions:
		d.Questions.IsValid = valid
	case models.StepPreTest:
		d.PreTest.IsValid = valid
	case models.StepReview:
		d.Consent.IsValid = valid
	}
	return d
}
