// internal/models/application.go
package models

import (
	"encoding/json"
	"time"
)

// StepID names a wizard step.
type StepID string

const (
	StepProfile   StepID = "profile"
	StepResume    StepID = "resume"
	StepQuestions StepID = "questions"
	StepPreTest   StepID = "pretest"
	StepReview    StepID = "review"
)

// ApplicationDraft is the step-namespaced aggregate of everything the applicant has entered for one job.
// Values are treated as immutable: reducers return a fresh copy.
type ApplicationDraft struct {
	ID          string          `json:"id"`
	JobID       string          `json:"jobId"`
	ApplicantID string          `json:"applicantId"`
	Profile     ProfileRecord   `json:"profile"`
	Resume      ResumeRecord    `json:"resume"`
	Questions   QuestionsRecord `json:"questions"`
	PreTest     PreTestRecord   `json:"pretest"`
	Consent     ConsentRecord   `json:"consent"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewDraft returns an empty draft with default consent.
func NewDraft(id, jobID, applicantID string, now time.Time) ApplicationDraft {
	return ApplicationDraft{
		ID:          id,
		JobID:       jobID,
		ApplicantID: applicantID,
		Questions:   QuestionsRecord{Answers: map[string]Answer{}},
		Consent:     DefaultConsent(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone deep-copies the mutable parts of the draft.
func (d ApplicationDraft) Clone() ApplicationDraft {
	out := d
	out.Questions.Answers = CloneAnswers(d.Questions.Answers)
	if d.Questions.SavedAt != nil {
		t := *d.Questions.SavedAt
		out.Questions.SavedAt = &t
	}
	if d.Profile.Profile != nil {
		p := *d.Profile.Profile
		out.Profile.Profile = &p
	}
	if d.Profile.Match != nil {
		m := *d.Profile.Match
		out.Profile.Match = &m
	}
	if u, ok := d.Resume.Selection.(UploadedResume); ok && u.Bytes != nil {
		u.Bytes = append([]byte(nil), u.Bytes...)
		out.Resume.Selection = u
	}
	if d.PreTest.AcknowledgedAt != nil {
		t := *d.PreTest.AcknowledgedAt
		out.PreTest.AcknowledgedAt = &t
	}
	return out
}

type ProfileRecord struct {
	Profile *ApplicantProfile `json:"profile,omitempty"`
	Match   *MatchNarrative   `json:"match,omitempty"`
	IsValid bool              `json:"isValid"`
}

// ResumeRecord holds the tagged-union selection plus the optional portfolio link.
type ResumeRecord struct {
	Selection    ResumeSelection `json:"-"`
	PortfolioURL string          `json:"portfolioUrl,omitempty"`
	IsValid      bool            `json:"isValid"`
}

type resumeRecordJSON struct {
	Selection    json.RawMessage `json:"selection"`
	PortfolioURL string          `json:"portfolioUrl,omitempty"`
	IsValid      bool            `json:"isValid"`
}

func (r ResumeRecord) MarshalJSON() ([]byte, error) {
	sel, err := MarshalResumeSelection(r.Selection)
	if err != nil {
		return nil, err
	}
	return json.Marshal(resumeRecordJSON{Selection: sel, PortfolioURL: r.PortfolioURL, IsValid: r.IsValid})
}

func (r *ResumeRecord) UnmarshalJSON(data []byte) error {
	var raw resumeRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sel, err := UnmarshalResumeSelection(raw.Selection)
	if err != nil {
		return err
	}
	*r = ResumeRecord{Selection: sel, PortfolioURL: raw.PortfolioURL, IsValid: raw.IsValid}
	return nil
}

type QuestionsRecord struct {
	Answers map[string]Answer `json:"answers"`
	IsDraft bool              `json:"isDraft"`
	SavedAt *time.Time        `json:"savedAt,omitempty"`
	IsValid bool              `json:"isValid"`
}

// PreTestRecord is the acknowledgement that the applicant saw the assessment notice.
type PreTestRecord struct {
	Acknowledged   bool       `json:"acknowledged"`
	Provider       string     `json:"provider,omitempty"`
	Duration       string     `json:"duration,omitempty"`
	Description    string     `json:"description,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
	IsValid        bool       `json:"isValid"`
}

// ConsentKind names one consent flag.
type ConsentKind string

const (
	ConsentGDPR          ConsentKind = "gdpr"
	ConsentTerms         ConsentKind = "terms"
	ConsentCommunication ConsentKind = "communication"
)

type ConsentRecord struct {
	GDPRConsent          bool `json:"gdprConsent"`
	TermsConsent         bool `json:"termsConsent"`
	CommunicationConsent bool `json:"communicationConsent"`
	IsValid              bool `json:"isValid"`
}

// DefaultConsent opts in to communication only.
func DefaultConsent() ConsentRecord {
	return ConsentRecord{CommunicationConsent: true}
}

// ApplicationPayload is the finalized, byte-free projection handed to the submission service.
type ApplicationPayload struct {
	DraftID        string            `json:"draftId"`
	JobID          string            `json:"jobId"`
	ApplicantID    string            `json:"applicantId"`
	ApplicantEmail string            `json:"applicantEmail,omitempty"`
	Profile        PayloadProfile    `json:"profile"`
	Resume         *PayloadResume    `json:"resume"`
	Answers        map[string]Answer `json:"answers"`
	PreTest        *PreTestRecord    `json:"pretest,omitempty"`
	Consent        ConsentRecord     `json:"consent"`
	FinalizedAt    time.Time         `json:"finalizedAt"`
}

type PayloadProfile struct {
	Completeness int             `json:"completeness"`
	Match        *MatchNarrative `json:"match,omitempty"`
}

type PayloadResume struct {
	Kind         ResumeKind `json:"kind"`
	ID           string     `json:"id,omitempty"`
	Name         string     `json:"name"`
	Size         int64      `json:"size"`
	MIMEType     string     `json:"mimeType,omitempty"`
	StorageKey   string     `json:"storageKey,omitempty"`
	PortfolioURL string     `json:"portfolioUrl,omitempty"`
}

// SubmissionResult is returned by the submission service; opaque to the wizard.
type SubmissionResult struct {
	ApplicationID string    `json:"applicationId"`
	Status        string    `json:"status"`
	SubmittedAt   time.Time `json:"submittedAt"`
}
