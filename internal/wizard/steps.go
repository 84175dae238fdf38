package wizard

import "application-wizard/internal/models"

// DeriveSteps returns the ordered step list for a job. PreTest is present iff the job requires a test.
func DeriveSteps(job models.JobPosting) []models.StepID {
	steps := []models.StepID{models.StepProfile, models.StepResume, models.StepQuestions}
	if job.RequiresTest {
		steps = append(steps, models.StepPreTest)
	}
	return append(steps, models.StepReview)
}

func indexOf(steps []models.StepID, id models.StepID) int {
	for i, s := range steps {
		if s == id {
			return i
		}
	}
	return -1
}
