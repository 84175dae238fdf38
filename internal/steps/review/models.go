package review

import (
	"time"

	"application-wizard/internal/models"
)

type ResumeSummary struct {
	Kind         models.ResumeKind `json:"kind"`
	Name         string            `json:"name"`
	Size         int64             `json:"size"`
	PortfolioURL string            `json:"portfolioUrl,omitempty"`
}

type PreTestSummary struct {
	Provider       string     `json:"provider"`
	Duration       string     `json:"duration,omitempty"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
}

// Summary is the read-only aggregate of the earlier steps. Ready drives the banner only; it never gates submit.
type Summary struct {
	Match               *models.MatchNarrative `json:"match,omitempty"`
	ProfileCompleteness int                    `json:"profileCompleteness"`
	Resume              *ResumeSummary         `json:"resume,omitempty"`
	Answered            int                    `json:"answered"`
	TotalQuestions      int                    `json:"totalQuestions"`
	PreTest             *PreTestSummary        `json:"pretest,omitempty"`
	Consent             models.ConsentRecord   `json:"consent"`
	Ready               bool                   `json:"ready"`
}
