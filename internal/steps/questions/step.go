// Package questions is the wizard step for the employer's screening questions.
package questions

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

var (
	ErrUnknownQuestion = errors.New("UNKNOWN_QUESTION")
	ErrDraftSaveFailed = errors.New("DRAFT_SAVE_FAILED")
)

// DraftSaver persists the whole application draft.
type DraftSaver interface {
	Save(ctx context.Context, draft models.ApplicationDraft) error
}

type Step struct {
	mu sync.Mutex

	config   *Config
	reporter wizard.Reporter
	saver    DraftSaver
	logger   logger.Logger
	life     steps.Lifecycle

	questions []models.ScreeningQuestion
	answers   map[string]models.Answer
	fieldErrs map[string][]models.FieldError
	record    models.QuestionsRecord
}

func NewStep(config *Config, reporter wizard.Reporter, saver DraftSaver, log logger.Logger) *Step {
	if config == nil {
		config = LoadConfig()
	}
	return &Step{
		config:    config,
		reporter:  reporter,
		saver:     saver,
		logger:    logger.ForComponent(log, "step.questions"),
		questions: reporter.Job().ScreeningQuestions,
		answers:   map[string]models.Answer{},
		fieldErrs: map[string][]models.FieldError{},
	}
}

func (s *Step) ID() models.StepID { return models.StepQuestions }

// Mount restores answers from the draft and reports them.
func (s *Step) Mount(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.life.Begin(ctx)
	d := s.reporter.Draft()
	s.record = d.Questions
	s.answers = models.CloneAnswers(d.Questions.Answers)
	s.fieldErrs = map[string][]models.FieldError{}
	s.reportLocked()
}

func (s *Step) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.life.End()
}

// HandleAnswerChange applies one edit with the question's type semantics and clears that field's errors.
func (s *Step) HandleAnswerChange(questionID, input string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.life.Mounted() {
		return steps.ErrNotMounted
	}
	q, ok := s.question(questionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}

	delete(s.fieldErrs, questionID)
	next, err := questionrenderer.Apply(q, s.answers[questionID], input)
	if err != nil {
		s.fieldErrs[questionID] = []models.FieldError{{
			Field:   questionID,
			Code:    questionrenderer.CodeUnknownOption,
			Message: fmt.Sprintf("%q is not one of the available options", input),
		}}
		return err
	}

	s.answers[questionID] = next
	s.reportLocked()
	return nil
}

// ShowErrors computes the advisory field errors for every question, e.g. when the applicant tries to leave the step.
func (s *Step) ShowErrors() map[string][]models.FieldError {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fieldErrs = questionrenderer.ValidateAll(s.questions, s.answers)
	out := make(map[string][]models.FieldError, len(s.fieldErrs))
	for k, v := range s.fieldErrs {
		out[k] = append([]models.FieldError(nil), v...)
	}
	return out
}

// HandleSaveDraft marks the answers as a draft and persists the whole current draft, without validating.
func (s *Step) HandleSaveDraft(ctx context.Context) error {
	s.mu.Lock()
	if !s.life.Mounted() {
		s.mu.Unlock()
		return steps.ErrNotMounted
	}
	now := s.config.Now()
	s.record.IsDraft = true
	s.record.SavedAt = &now
	s.reportLocked()
	draft := s.reporter.Draft()
	s.mu.Unlock()

	if s.saver == nil {
		return nil
	}
	saveCtx := ctx
	if s.config.SaveTimeout > 0 {
		var cancel context.CancelFunc
		saveCtx, cancel = context.WithTimeout(ctx, s.config.SaveTimeout)
		defer cancel()
	}
	if err := s.saver.Save(saveCtx, draft); err != nil {
		s.logger.Error("failed to save draft", map[string]interface{}{"draftId": draft.ID, "error": err.Error()})
		return fmt.Errorf("%w: %v", ErrDraftSaveFailed, err)
	}
	s.logger.Info("draft saved", map[string]interface{}{"draftId": draft.ID, "answers": len(draft.Questions.Answers)})
	return nil
}

// Completeness returns how many of the questions are answered.
func (s *Step) Completeness() (answered, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return questionrenderer.Completeness(s.questions, s.answers)
}

func (s *Step) question(id string) (models.ScreeningQuestion, bool) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, true
		}
	}
	return models.ScreeningQuestion{}, false
}

func (s *Step) reportLocked() {
	computed := len(questionrenderer.ValidateAll(s.questions, s.answers)) == 0
	valid := s.reporter.Policy().Validity(computed)
	patch := wizard.QuestionsPatch{Answers: s.answers, IsDraft: s.record.IsDraft, SavedAt: s.record.SavedAt}
	if err := s.reporter.Report(patch, valid); err != nil {
		s.logger.Error("failed to report answers", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Step) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	answered, total := questionrenderer.Completeness(s.questions, s.answers)
	v := View{
		Questions: make([]QuestionView, 0, len(s.questions)),
		Answered:  answered,
		Total:     total,
		IsDraft:   s.record.IsDraft,
		SavedAt:   s.record.SavedAt,
	}
	for _, q := range s.questions {
		a := s.answers[q.ID]
		v.Questions = append(v.Questions, QuestionView{
			Question: q,
			Answer:   a,
			Budget:   questionrenderer.Budget(q, a),
			Errors:   append([]models.FieldError(nil), s.fieldErrs[q.ID]...),
		})
	}
	return v
}
