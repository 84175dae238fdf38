package session

import (
	"time"

	"application-wizard/internal/models"
	"application-wizard/internal/wizard"
)

// View is the client-facing snapshot of a session. Step holds the view of the mounted step.
type View struct {
	ID          string                   `json:"id"`
	JobID       string                   `json:"jobId"`
	ApplicantID string                   `json:"applicantId"`
	DraftID     string                   `json:"draftId"`
	Steps       []models.StepID          `json:"steps"`
	Current     models.StepID            `json:"current"`
	Index       int                      `json:"index"`
	Policy      wizard.Policy            `json:"policy"`
	Validity    map[models.StepID]bool   `json:"validity"`
	Ready       bool                     `json:"ready"`
	Submitted   bool                     `json:"submitted"`
	Result      *models.SubmissionResult `json:"result,omitempty"`
	Step        interface{}              `json:"step"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

