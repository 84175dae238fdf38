package wizard

import (
	"time"

	"application-wizard/internal/models"
)

// BuildPayload projects a draft onto the submission payload. Uploaded file bytes are
// replaced by their storage key, and pretest data is only carried when the step is in the sequence.
func BuildPayload(d models.ApplicationDraft, steps []models.StepID, now time.Time) models.ApplicationPayload {
	p := models.ApplicationPayload{
		DraftID:     d.ID,
		JobID:       d.JobID,
		ApplicantID: d.ApplicantID,
		Answers:     models.CloneAnswers(d.Questions.Answers),
		Consent:     d.Consent,
		FinalizedAt: now,
	}

	if d.Profile.Profile != nil {
		p.ApplicantEmail = d.Profile.Profile.Email
		p.Profile.Completeness = d.Profile.Profile.Completeness
	}
	if d.Profile.Match != nil {
		m := *d.Profile.Match
		p.Profile.Match = &m
	}

	switch r := d.Resume.Selection.(type) {
	case models.LibraryResume:
		p.Resume = &models.PayloadResume{
			Kind: models.ResumeKindLibrary, ID: r.ID, Name: r.Name, Size: r.Size,
			PortfolioURL: d.Resume.PortfolioURL,
		}
	case models.UploadedResume:
		p.Resume = &models.PayloadResume{
			Kind: models.ResumeKindUploaded, Name: r.Name, Size: r.Size,
			MIMEType: r.MIMEType, StorageKey: r.StorageKey, PortfolioURL: d.Resume.PortfolioURL,
		}
	}

	if indexOf(steps, models.StepPreTest) >= 0 && d.PreTest.Acknowledged {
		pt := d.PreTest
		p.PreTest = &pt
	}

	return p
}
