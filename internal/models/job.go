// internal/models/job.go
package models

// QuestionType selects the edit semantics of a screening question.
type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionTextarea QuestionType = "textarea"
	QuestionRadio    QuestionType = "radio"
	QuestionSelect   QuestionType = "select"
	QuestionCheckbox QuestionType = "checkbox"
)

// JobPosting is read-only input to a wizard session.
type JobPosting struct {
	ID                 string              `json:"id" validate:"required"`
	Title              string              `json:"title" validate:"required"`
	Company            string              `json:"company" validate:"required"`
	Location           string              `json:"location"`
	Compensation       string              `json:"compensation,omitempty"`
	Remote             bool                `json:"remote"`
	RequiredSkills     []string            `json:"requiredSkills,omitempty"`
	MinExperienceYears int                 `json:"minExperienceYears,omitempty" validate:"min=0"`
	ScreeningQuestions []ScreeningQuestion `json:"screeningQuestions" validate:"dive"`
	RequiresTest       bool                `json:"requiresTest"`
	TestProvider       string              `json:"testProvider,omitempty" validate:"required_if=RequiresTest true"`
	TestDuration       string              `json:"testDuration,omitempty"`
	TestDescription    string              `json:"testDescription,omitempty"`
}

// Question returns the screening question with the given id.
func (j JobPosting) Question(id string) (ScreeningQuestion, bool) {
	for _, q := range j.ScreeningQuestions {
		if q.ID == id {
			return q, true
		}
	}
	return ScreeningQuestion{}, false
}

type ScreeningQuestion struct {
	ID        string       `json:"id" validate:"required"`
	Prompt    string       `json:"prompt" validate:"required"`
	Type      QuestionType `json:"type" validate:"required,oneof=text textarea radio select checkbox"`
	Required  bool         `json:"required"`
	Options   []string     `json:"options,omitempty"`
	MaxLength int          `json:"maxLength,omitempty" validate:"min=0"`
}

// HasOption reports whether value is one of the declared options.
func (q ScreeningQuestion) HasOption(value string) bool {
	for _, o := range q.Options {
		if o == value {
			return true
		}
	}
	return false
}
