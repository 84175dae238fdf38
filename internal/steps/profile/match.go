package profile

import (
	"fmt"
	"strings"

	"application-wizard/internal/models"
)

// BuildMatch grades the profile against the job on experience, skills and location.
func BuildMatch(job models.JobPosting, p models.ApplicantProfile) models.MatchNarrative {
	m := models.MatchNarrative{
		Experience: experienceLevel(job.MinExperienceYears, p.TotalExperienceYears()),
		Location:   locationLevel(job, p.Location),
	}
	m.MatchedSkills, m.MissingSkills = splitSkills(job.RequiredSkills, p.Skills)
	m.Skills = skillsLevel(len(m.MatchedSkills), len(job.RequiredSkills))
	m.Summary = summarize(m, len(job.RequiredSkills))
	return m
}

func experienceLevel(required int, years float64) models.MatchLevel {
	switch {
	case required <= 0 || years >= float64(required):
		return models.MatchStrong
	case years >= float64(required)/2:
		return models.MatchPartial
	default:
		return models.MatchWeak
	}
}

func splitSkills(required, have []string) (matched, missing []string) {
	owned := make(map[string]struct{}, len(have))
	for _, s := range have {
		owned[normalize(s)] = struct{}{}
	}
	for _, s := range required {
		if _, ok := owned[normalize(s)]; ok {
			matched = append(matched, s)
		} else {
			missing = append(missing, s)
		}
	}
	return matched, missing
}

func skillsLevel(matched, required int) models.MatchLevel {
	if required == 0 {
		return models.MatchStrong
	}
	ratio := float64(matched) / float64(required)
	switch {
	case ratio >= 0.75:
		return models.MatchStrong
	case ratio >= 0.4:
		return models.MatchPartial
	default:
		return models.MatchWeak
	}
}

// locationLevel: remote or unspecified jobs match anyone. Otherwise an exact match is strong,
// a shared city or region is partial.
func locationLevel(job models.JobPosting, applicant string) models.MatchLevel {
	if job.Remote || strings.TrimSpace(job.Location) == "" {
		return models.MatchStrong
	}
	if strings.TrimSpace(applicant) == "" {
		return models.MatchWeak
	}
	if normalize(job.Location) == normalize(applicant) {
		return models.MatchStrong
	}

	jobParts := locationParts(job.Location)
	for part := range locationParts(applicant) {
		if _, ok := jobParts[part]; ok {
			return models.MatchPartial
		}
	}
	return models.MatchWeak
}

func locationParts(loc string) map[string]struct{} {
	parts := make(map[string]struct{})
	for _, p := range strings.Split(loc, ",") {
		if n := normalize(p); n != "" {
			parts[n] = struct{}{}
		}
	}
	return parts
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func summarize(m models.MatchNarrative, required int) string {
	skills := fmt.Sprintf("%s skills match", m.Skills)
	if required > 0 {
		skills = fmt.Sprintf("%s skills match (%d of %d required)", m.Skills, len(m.MatchedSkills), required)
	}
	return fmt.Sprintf("%s experience match, %s, %s location match.",
		capitalize(string(m.Experience)), skills, m.Location)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// affordance returns the completeness tone and the prompts for missing fields.
func affordance(p models.ApplicantProfile) (Tone, []string) {
	if p.IsComplete() {
		return ToneSuccess, nil
	}
	prompts := make([]string, 0, len(p.MissingFields))
	for _, f := range p.MissingFields {
		prompts = append(prompts, fmt.Sprintf("Add your %s to strengthen your application", f))
	}
	return ToneWarning, prompts
}
