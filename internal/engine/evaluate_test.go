// internal/engine/evaluate_test.go
package engine

import (
	"testing"
	"time"

	"scholarship-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string       { return &s }
func floatPtr(f float64) *float64   { return &f }
func intPtr(i int) *int             { return &i }
func timePtr(t time.Time) *time.Time { return &t }

func testProfile() NormalizedProfile {
	return NormalizedProfile{
		UserID:           "user-1",
		Name:             "Asha Kumar",
		CGPA:             8.2,
		FamilyIncome:     400000,
		Age:              20,
		CurrentEducation: strPtr("Undergraduate"),
		FieldOfStudy:     strPtr("Engineering"),
		Gender:           strPtr("Female"),
		Category:         strPtr("OBC"),
	}
}

func testScholarship() models.Scholarship {
	return models.Scholarship{
		ID:       "sch-1",
		Title:    "Merit Scholarship",
		Provider: "National Trust",
		Amount:   50000,
		IsActive: true,
		Eligibility: &models.EligibilityCriteria{
			MinCGPA:           floatPtr(7.0),
			RequiredEducation: []string{"Undergraduate", "Postgraduate"},
			RequiredFields:    []string{"Engineering", "Science"},
			MaxFamilyIncome:   floatPtr(600000),
			AllowedGenders:    []string{"Female"},
			AllowedCategories: []string{"OBC", "SC", "ST"},
			MinAge:            intPtr(18),
			MaxAge:            intPtr(25),
		},
	}
}

func checkNames(checks []models.EligibilityCheck) []string {
	names := make([]string, len(checks))
	for i, c := range checks {
		names[i] = c.Criterion
	}
	return names
}

func TestEvaluate_AllChecksPass(t *testing.T) {
	result := Evaluate(testProfile(), testScholarship(), testNow)

	assert.True(t, result.IsEligible)
	assert.Equal(t, models.DeadlineStatusActive, result.DeadlineStatus)
	assert.Equal(t, 100, result.MatchPercentage)
	assert.Equal(t, []string{
		"CGPA", "Education Level", "Field of Study", "Family Income",
		"Gender", "Category", "Age",
	}, checkNames(result.Checks))
}

func TestEvaluate_NoShortCircuit(t *testing.T) {
	profile := testProfile()
	profile.CGPA = 5.0 // fails the first check

	result := Evaluate(profile, testScholarship(), testNow)

	assert.False(t, result.IsEligible)
	// All seven checks are still emitted after the failure.
	require.Len(t, result.Checks, 7)
	assert.False(t, result.Checks[0].Passed)
	for _, c := range result.Checks[1:] {
		assert.True(t, c.Passed, c.Criterion)
	}
	assert.Equal(t, 86, result.MatchPercentage) // round(100*6/7)
}

func TestEvaluate_UnconstrainedChecksOmitted(t *testing.T) {
	s := testScholarship()
	s.Eligibility = &models.EligibilityCriteria{
		MinCGPA: floatPtr(7.0),
	}

	result := Evaluate(testProfile(), s, testNow)

	// Only the always-emitted numeric checks remain.
	assert.Equal(t, []string{"CGPA", "Family Income", "Age"}, checkNames(result.Checks))
	assert.True(t, result.IsEligible)
}

func TestEvaluate_AllGendersMeansUnconstrained(t *testing.T) {
	s := testScholarship()
	s.Eligibility.AllowedGenders = []string{"All"}

	result := Evaluate(testProfile(), s, testNow)

	assert.NotContains(t, checkNames(result.Checks), "Gender")
	assert.True(t, result.IsEligible)
}

func TestEvaluate_MissingCategoricalValueFails(t *testing.T) {
	profile := testProfile()
	profile.Category = nil

	result := Evaluate(profile, testScholarship(), testNow)

	assert.False(t, result.IsEligible)
	for _, c := range result.Checks {
		if c.Criterion == "Category" {
			assert.False(t, c.Passed)
			assert.Equal(t, "", c.UserValue)
		}
	}
}

func TestEvaluate_CaseInsensitiveMembership(t *testing.T) {
	profile := testProfile()
	profile.Gender = strPtr("female")

	result := Evaluate(profile, testScholarship(), testNow)
	assert.True(t, result.IsEligible)
}

func TestEvaluate_ExpiredDeadlineForcesIneligible(t *testing.T) {
	s := testScholarship()
	s.ApplicationDeadline = timePtr(testNow.Add(-24 * time.Hour))

	result := Evaluate(testProfile(), s, testNow)

	assert.False(t, result.IsEligible)
	assert.Equal(t, models.DeadlineStatusExpired, result.DeadlineStatus)
	// The deadline never appears in the check trace.
	assert.NotContains(t, checkNames(result.Checks), "Deadline")
	// Every per-criterion check still passed.
	for _, c := range result.Checks {
		assert.True(t, c.Passed, c.Criterion)
	}
	assert.Equal(t, 100, result.MatchPercentage)
}

func TestEvaluate_FutureDeadlineStaysActive(t *testing.T) {
	s := testScholarship()
	s.ApplicationDeadline = timePtr(testNow.Add(24 * time.Hour))

	result := Evaluate(testProfile(), s, testNow)

	assert.True(t, result.IsEligible)
	assert.Equal(t, models.DeadlineStatusActive, result.DeadlineStatus)
}

func TestEvaluate_DefaultBoundsForHalfOpenRanges(t *testing.T) {
	s := testScholarship()
	s.Eligibility = &models.EligibilityCriteria{
		MinFamilyIncome: floatPtr(100000),
	}

	profile := testProfile()
	profile.FamilyIncome = 50000

	result := Evaluate(profile, s, testNow)

	names := checkNames(result.Checks)
	assert.Equal(t, []string{"CGPA", "Family Income", "Age"}, names)
	assert.False(t, result.IsEligible)
	assert.Equal(t, 67, result.MatchPercentage) // round(100*2/3)
}

func TestEvaluate_NoConstraintsStillEmitsNumericChecks(t *testing.T) {
	s := testScholarship()
	s.Eligibility = &models.EligibilityCriteria{}

	result := Evaluate(testProfile(), s, testNow)

	assert.Equal(t, []string{"CGPA", "Family Income", "Age"}, checkNames(result.Checks))
	assert.True(t, result.IsEligible)
	assert.Equal(t, 100, result.MatchPercentage)
}

func TestEvaluate_Deterministic(t *testing.T) {
	first := Evaluate(testProfile(), testScholarship(), testNow)
	second := Evaluate(testProfile(), testScholarship(), testNow)
	assert.Equal(t, first, second)
}

func TestMatchPercentage_ZeroChecksIsFullMatch(t *testing.T) {
	assert.Equal(t, 100, matchPercentage(nil))
	assert.Equal(t, 100, matchPercentage([]models.EligibilityCheck{}))
}
