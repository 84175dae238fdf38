package profile

import "application-wizard/internal/models"

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Tone colours the completeness affordance.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
)

type View struct {
	State          State                    `json:"state"`
	Profile        *models.ApplicantProfile `json:"profile,omitempty"`
	Match          *models.MatchNarrative   `json:"match,omitempty"`
	Tone           Tone                     `json:"tone,omitempty"`
	Prompts        []string                 `json:"prompts,omitempty"`
	Error          string                   `json:"error,omitempty"`
	CanRetry       bool                     `json:"canRetry"`
	EditProfileURL string                   `json:"editProfileUrl,omitempty"`
}
