// Package questionrenderer implements the edit and validation semantics of screening questions.
package questionrenderer

import (
	"errors"
	"fmt"

	"application-wizard/internal/models"
)

var (
	ErrUnknownOption       = errors.New("UNKNOWN_OPTION")
	ErrUnknownQuestionType = errors.New("UNKNOWN_QUESTION_TYPE")
)

// Field error codes.
const (
	CodeRequired      = "REQUIRED"
	CodeOverBudget    = "OVER_BUDGET"
	CodeUnknownOption = "UNKNOWN_OPTION"
)

// CharacterBudget is the display-only length counter for text answers.
type CharacterBudget struct {
	Limit     int  `json:"limit"`
	Used      int  `json:"used"`
	Remaining int  `json:"remaining"`
	Exceeded  bool `json:"exceeded"`
}

// Apply returns the answer produced by input on top of current.
//
// text/textarea replace the value and never truncate. radio/select replace the value;
// when options are declared the input must be one of them. checkbox toggles membership,
// appending new values so the stored order is insertion order.
func Apply(q models.ScreeningQuestion, current models.Answer, input string) (models.Answer, error) {
	switch q.Type {
	case models.QuestionText, models.QuestionTextarea:
		return models.TextAnswer(input), nil

	case models.QuestionRadio, models.QuestionSelect:
		if len(q.Options) > 0 && input != "" && !q.HasOption(input) {
			return current, fmt.Errorf("%w: %q is not an option of %s", ErrUnknownOption, input, q.ID)
		}
		return models.TextAnswer(input), nil

	case models.QuestionCheckbox:
		if !q.HasOption(input) {
			return current, fmt.Errorf("%w: %q is not an option of %s", ErrUnknownOption, input, q.ID)
		}
		return toggle(current, input), nil

	default:
		return current, fmt.Errorf("%w: %s", ErrUnknownQuestionType, q.Type)
	}
}

func toggle(current models.Answer, value string) models.Answer {
	values := current.Values()
	for i, v := range values {
		if v == value {
			return models.MultiAnswer(append(values[:i], values[i+1:]...))
		}
	}
	return models.MultiAnswer(append(values, value))
}

// Budget reports the character budget for text answers. Limit 0 means unlimited.
func Budget(q models.ScreeningQuestion, value models.Answer) CharacterBudget {
	used := value.RuneCount()
	if q.MaxLength <= 0 {
		return CharacterBudget{Used: used}
	}
	remaining := q.MaxLength - used
	return CharacterBudget{
		Limit:     q.MaxLength,
		Used:      used,
		Remaining: remaining,
		Exceeded:  remaining < 0,
	}
}

// Validate returns advisory field errors for one answer.
func Validate(q models.ScreeningQuestion, value models.Answer) []models.FieldError {
	var errs []models.FieldError

	if q.Required && value.IsEmpty() {
		errs = append(errs, models.FieldError{
			Field:   q.ID,
			Code:    CodeRequired,
			Message: "This question is required",
		})
		return errs
	}

	if b := Budget(q, value); b.Exceeded {
		errs = append(errs, models.FieldError{
			Field:   q.ID,
			Code:    CodeOverBudget,
			Message: fmt.Sprintf("Answer exceeds %d characters by %d", b.Limit, -b.Remaining),
		})
	}

	if len(q.Options) > 0 {
		for _, v := range value.Values() {
			if !q.HasOption(v) {
				errs = append(errs, models.FieldError{
					Field:   q.ID,
					Code:    CodeUnknownOption,
					Message: fmt.Sprintf("%q is not one of the available options", v),
				})
			}
		}
	}

	return errs
}

// ValidateAll validates every question of a job against an answer map.
func ValidateAll(questions []models.ScreeningQuestion, answers map[string]models.Answer) map[string][]models.FieldError {
	out := make(map[string][]models.FieldError)
	for _, q := range questions {
		if errs := Validate(q, answers[q.ID]); len(errs) > 0 {
			out[q.ID] = errs
		}
	}
	return out
}

// Completeness counts answered questions.
func Completeness(questions []models.ScreeningQuestion, answers map[string]models.Answer) (answered, total int) {
	for _, q := range questions {
		if a, ok := answers[q.ID]; ok && !a.IsEmpty() {
			answered++
		}
	}
	return answered, len(questions)
}
