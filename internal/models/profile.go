// internal/models/profile.go
package models

// ApplicantProfile comes from the profile service. The wizard never mutates it.
type ApplicantProfile struct {
	ApplicantID   string            `json:"applicantId"`
	Name          string            `json:"name"`
	Email         string            `json:"email,omitempty"`
	Location      string            `json:"location,omitempty"`
	Completeness  int               `json:"completeness"`
	MissingFields []string          `json:"missingFields,omitempty"`
	Experience    []ExperienceEntry `json:"experience,omitempty"`
	Education     []EducationEntry  `json:"education,omitempty"`
	Skills        []string          `json:"skills,omitempty"`
}

type ExperienceEntry struct {
	Title   string  `json:"title"`
	Company string  `json:"company"`
	Years   float64 `json:"years"`
}

type EducationEntry struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Year        int    `json:"year,omitempty"`
}

// IsComplete is true at 100% completeness.
func (p ApplicantProfile) IsComplete() bool {
	return p.Completeness >= 100
}

func (p ApplicantProfile) TotalExperienceYears() float64 {
	var total float64
	for _, e := range p.Experience {
		total += e.Years
	}
	return total
}

// MatchLevel grades one dimension of job fit.
type MatchLevel string

const (
	MatchStrong  MatchLevel = "strong"
	MatchPartial MatchLevel = "partial"
	MatchWeak    MatchLevel = "weak"
)

// MatchNarrative is the qualitative job-fit summary shown on the profile step.
type MatchNarrative struct {
	Experience    MatchLevel `json:"experience"`
	Skills        MatchLevel `json:"skills"`
	Location      MatchLevel `json:"location"`
	MatchedSkills []string   `json:"matchedSkills,omitempty"`
	MissingSkills []string   `json:"missingSkills,omitempty"`
	Summary       string     `json:"summary"`
}
