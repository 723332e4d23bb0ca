// internal/engine/evaluate.go
package engine

import (
	"fmt"
	"math"
	"time"

	"scholarship-workers/internal/models"
)

// Evaluate runs every applicable criterion of a scholarship against the
// normalized profile and returns the full check trace. All checks run
// even after a failure so the student sees the complete picture. An
// expired application deadline forces ineligibility on its own, without
// appearing in the trace.
func Evaluate(p NormalizedProfile, s models.Scholarship, now time.Time) models.EligibilityResult {
	rc := resolveCriteria(s.Eligibility)

	result := models.EligibilityResult{
		Scholarship: models.ScholarshipSummary{
			ID:                  s.ID,
			Title:               s.Title,
			Provider:            s.Provider,
			Amount:              s.Amount,
			ApplicationDeadline: s.ApplicationDeadline,
		},
		IsEligible:     true,
		DeadlineStatus: models.DeadlineStatusActive,
		Checks:         []models.EligibilityCheck{},
	}

	addCheck := func(criterion, required, userValue string, passed bool) {
		result.Checks = append(result.Checks, models.EligibilityCheck{
			Criterion: criterion,
			Required:  required,
			UserValue: userValue,
			Passed:    passed,
		})
		if !passed {
			result.IsEligible = false
		}
	}

	addCheck("CGPA",
		fmt.Sprintf("%.1f - %.1f", rc.minCGPA, rc.maxCGPA),
		fmt.Sprintf("%.2f", p.CGPA),
		p.CGPA >= rc.minCGPA && p.CGPA <= rc.maxCGPA)

	if rc.education.Constrained() {
		addCheck("Education Level",
			rc.education.Describe(),
			deref(p.CurrentEducation),
			rc.education.Allows(p.CurrentEducation))
	}

	if rc.fields.Constrained() {
		addCheck("Field of Study",
			rc.fields.Describe(),
			deref(p.FieldOfStudy),
			rc.fields.Allows(p.FieldOfStudy))
	}

	addCheck("Family Income",
		fmt.Sprintf("₹%.0f - ₹%.0f", rc.minIncome, rc.maxIncome),
		fmt.Sprintf("₹%.0f", p.FamilyIncome),
		p.FamilyIncome >= rc.minIncome && p.FamilyIncome <= rc.maxIncome)

	if rc.genders.Constrained() {
		addCheck("Gender",
			rc.genders.Describe(),
			deref(p.Gender),
			rc.genders.Allows(p.Gender))
	}

	if rc.categories.Constrained() {
		addCheck("Category",
			rc.categories.Describe(),
			deref(p.Category),
			rc.categories.Allows(p.Category))
	}

	addCheck("Age",
		fmt.Sprintf("%d - %d years", rc.minAge, rc.maxAge),
		fmt.Sprintf("%d years", p.Age),
		p.Age >= rc.minAge && p.Age <= rc.maxAge)

	if s.ApplicationDeadline != nil && s.ApplicationDeadline.Before(now) {
		result.DeadlineStatus = models.DeadlineStatusExpired
		result.IsEligible = false
	}

	result.MatchPercentage = matchPercentage(result.Checks)
	return result
}

// matchPercentage is the share of emitted checks that passed. With no
// checks emitted the scholarship constrains nothing, so the profile
// vacuously matches in full.
func matchPercentage(checks []models.EligibilityCheck) int {
	if len(checks) == 0 {
		return 100
	}
	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}
	return int(math.Round(100 * float64(passed) / float64(len(checks))))
}
