package session

import (
	"time"

	"application-wizard/internal/steps/pretest"
	"application-wizard/internal/steps/profile"
	"application-wizard/internal/steps/questions"
	"application-wizard/internal/steps/resume"
	"application-wizard/internal/wizard"
)

type Config struct {
	// IdleTTL is how long an untouched session survives the sweep.
	IdleTTL       time.Duration
	SweepInterval time.Duration
	DraftTimeout  time.Duration

	Wizard    *wizard.Config
	Profile   *profile.Config
	Resume    *resume.Config
	Questions *questions.Config
	PreTest   *pretest.Config

	Now func() time.Time
}

func LoadConfig() *Config {
	return &Config{
		IdleTTL:       2 * time.Hour,
		SweepInterval: 5 * time.Minute,
		DraftTimeout:  5 * time.Second,
		Wizard:        wizard.LoadConfig(),
		Profile:       profile.LoadConfig(),
		Resume:        resume.LoadConfig(),
		Questions:     questions.LoadConfig(),
		PreTest:       pretest.LoadConfig(),
		Now:           time.Now,
	}
}
