// Package pretest is the notice step shown when the job requires an external assessment.
package pretest

import (
	"context"
	"sync"
	"time"

	"application-wizard/internal/common/logger"
	"application-wizard/internal/models"
	"application-wizard/internal/steps"
	"application-wizard/internal/wizard"
)

type View struct {
	Required       bool       `json:"required"`
	Provider       string     `json:"provider,omitempty"`
	Duration       string     `json:"duration,omitempty"`
	Description    string     `json:"description,omitempty"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
}

type Step struct {
	mu sync.Mutex

	config   *Config
	reporter wizard.Reporter
	logger   logger.Logger
	life     steps.Lifecycle

	record models.PreTestRecord
}

func NewStep(config *Config, reporter wizard.Reporter, log logger.Logger) *Step {
	if config == nil {
		config = LoadConfig()
	}
	return &Step{
		config:   config,
		reporter: reporter,
		logger:   logger.ForComponent(log, "step.pretest"),
	}
}

func (s *Step) ID() models.StepID { return models.StepPreTest }

// Mount records that the applicant saw the assessment notice. Jobs without a test get no-op mounts.
func (s *Step) Mount(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.life.Begin(ctx)
	job := s.reporter.Job()
	if !job.RequiresTest {
		return
	}

	d := s.reporter.Draft()
	at := s.config.Now()
	if d.PreTest.Acknowledged && d.PreTest.AcknowledgedAt != nil {
		at = *d.PreTest.AcknowledgedAt
	}

	patch := wizard.PreTestPatch{
		Provider:       job.TestProvider,
		Duration:       job.TestDuration,
		Description:    job.TestDescription,
		AcknowledgedAt: at,
	}
	if err := s.reporter.Report(patch, s.reporter.Policy().Validity(true)); err != nil {
		s.logger.Error("failed to report pretest acknowledgement", map[string]interface{}{"error": err.Error()})
		return
	}
	s.record = s.reporter.Draft().PreTest
	s.logger.Debug("pretest acknowledged", map[string]interface{}{"provider": job.TestProvider})
}

func (s *Step) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.life.End()
}

func (s *Step) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := s.reporter.Job()
	return View{
		Required:       job.RequiresTest,
		Provider:       job.TestProvider,
		Duration:       job.TestDuration,
		Description:    job.TestDescription,
		Acknowledged:   s.record.Acknowledged,
		AcknowledgedAt: s.record.AcknowledgedAt,
	}
}
