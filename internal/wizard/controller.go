package wizard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"application-wizard/internal/common/logger"
	"application-wizard/internal/common/metrics"
	"application-wizard/internal/models"
)

// Submitter receives the finalized payload. The result is opaque to the wizard.
type Submitter interface {
	Submit(ctx context.Context, payload models.ApplicationPayload) (*models.SubmissionResult, error)
}

// Reporter is the controller surface steps use to read the draft and report their state.
type Reporter interface {
	Report(patch Patch, valid bool) error
	Draft() models.ApplicationDraft
	Job() models.JobPosting
	Policy() Policy
}

// Controller is the wizard state machine: step list, canonical draft, validity map, navigation and submit.
// It never calls back into steps, so steps may call it while holding their own locks.
type Controller struct {
	mu sync.Mutex

	job       models.JobPosting
	steps     []models.StepID
	index     int
	draft     models.ApplicationDraft
	validity  map[models.StepID]bool
	policy    Policy
	submitter Submitter
	submitted bool
	result    *models.SubmissionResult
	now       func() time.Time
	logger    logger.Logger
}

func NewController(config *Config, job models.JobPosting, draft models.ApplicationDraft, submitter Submitter, log logger.Logger) *Controller {
	if config == nil {
		config = LoadConfig()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	if draft.Questions.Answers == nil {
		draft.Questions.Answers = map[string]models.Answer{}
	}

	return &Controller{
		job:       job,
		steps:     DeriveSteps(job),
		draft:     draft.Clone(),
		validity:  make(map[models.StepID]bool),
		policy:    config.Policy,
		submitter: submitter,
		now:       now,
		logger: logger.ForComponent(log, "wizard").WithFields(map[string]interface{}{
			"draftId": draft.ID,
			"jobId":   job.ID,
		}),
	}
}

func (c *Controller) Job() models.JobPosting { return c.job }

// Steps returns a copy of the step sequence.
func (c *Controller) Steps() []models.StepID {
	return append([]models.StepID(nil), c.steps...)
}

func (c *Controller) Policy() Policy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy
}

// SetPolicy swaps the validation policy. Already recorded validity is kept.
func (c *Controller) SetPolicy(p Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policy = p
}

func (c *Controller) Current() models.StepID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps[c.index]
}

func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Draft returns a copy of the canonical draft.
func (c *Controller) Draft() models.ApplicationDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

// Validity returns the last validity reported per step.
func (c *Controller) Validity() map[models.StepID]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[models.StepID]bool, len(c.validity))
	for k, v := range c.validity {
		out[k] = v
	}
	return out
}

// Report merges a step patch through the reducer and records that step's validity.
func (c *Controller) Report(patch Patch, valid bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Reduce(c.steps, c.draft, patch)
	if err != nil {
		c.logger.Warn("patch rejected", map[string]interface{}{"error": err.Error()})
		return err
	}
	step := patch.Step()
	next = withValidity(next, step, valid)
	next.UpdatedAt = c.now()
	c.draft = next
	c.validity[step] = valid

	metrics.ValidityReports.WithLabelValues(string(step), metrics.BoolLabel(valid)).Inc()
	c.logger.Debug("step reported", map[string]interface{}{"step": step, "valid": valid})
	return nil
}

// Next advances one step. Under a gating policy the current step must have reported valid.
func (c *Controller) Next() (models.StepID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.steps[c.index]
	if c.index >= len(c.steps)-1 {
		metrics.NavigationBlocked.WithLabelValues(string(cur), "last_step").Inc()
		return cur, ErrNoNextStep
	}
	if c.policy.Gates() && !c.validity[cur] {
		metrics.NavigationBlocked.WithLabelValues(string(cur), "invalid").Inc()
		return cur, fmt.Errorf("%w: %s", ErrStepInvalid, cur)
	}

	c.index++
	next := c.steps[c.index]
	metrics.StepTransitions.WithLabelValues(string(cur), string(next), "forward").Inc()
	c.logger.Info("advanced", map[string]interface{}{"from": cur, "to": next})
	return next, nil
}

// Back moves one step back from any index above 0.
func (c *Controller) Back() (models.StepID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.steps[c.index]
	if c.index == 0 {
		metrics.NavigationBlocked.WithLabelValues(string(cur), "first_step").Inc()
		return cur, ErrNoPreviousStep
	}

	c.index--
	prev := c.steps[c.index]
	metrics.StepTransitions.WithLabelValues(string(cur), string(prev), "back").Inc()
	c.logger.Info("went back", map[string]interface{}{"from": cur, "to": prev})
	return prev, nil
}

// Ready reports whether Submit would hand off right now.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readyLocked() == nil
}

func (c *Controller) readyLocked() error {
	if c.index != len(c.steps)-1 {
		return fmt.Errorf("%w: not on the final step", ErrNotReady)
	}
	if !c.policy.Gates() {
		return nil
	}
	for _, s := range c.steps {
		if !c.validity[s] {
			return fmt.Errorf("%w: step %s is not valid", ErrNotReady, s)
		}
	}
	return nil
}

// Submitted reports whether a submission was handed off, and its result if it succeeded.
func (c *Controller) Submitted() (bool, *models.SubmissionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitted, c.result
}

// Submit hands the payload to the submitter once. Any later call returns ErrAlreadySubmitted,
// whether or not the first handoff succeeded.
func (c *Controller) Submit(ctx context.Context) (*models.SubmissionResult, error) {
	if c.submitter == nil {
		return nil, ErrNoSubmitter
	}

	c.mu.Lock()
	if c.submitted {
		c.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	if err := c.readyLocked(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.submitted = true
	payload := BuildPayload(c.draft, c.steps, c.now())
	c.mu.Unlock()

	result, err := c.submitter.Submit(ctx, payload)
	if err != nil {
		c.logger.Error("submission failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	c.mu.Lock()
	c.result = result
	c.mu.Unlock()

	c.logger.Info("application submitted", map[string]interface{}{"applicationId": result.ApplicationID})
	return result, nil
}
