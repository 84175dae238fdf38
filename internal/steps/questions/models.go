package questions

import (
	"time"

	"application-wizard/internal/models"
	"application-wizard/internal/questionrenderer"
)

type QuestionView struct {
	Question models.ScreeningQuestion         `json:"question"`
	Answer   models.Answer                    `json:"answer"`
	Budget   questionrenderer.CharacterBudget `json:"budget"`
	Errors   []models.FieldError              `json:"errors,omitempty"`
}

type View struct {
	Questions []QuestionView `json:"questions"`
	Answered  int            `json:"answered"`
	Total     int            `json:"total"`
	IsDraft   bool           `json:"isDraft"`
	SavedAt   *time.Time     `json:"savedAt,omitempty"`
}
