// internal/workers/matching/normalize-profile/handler_test.go
package normalizeprofile

import (
	"context"
	"testing"
	"time"

	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newTestHandler(t *testing.T) *Handler {
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))
	h.now = func() time.Time { return testNow }
	return h
}

func TestExecute_NormalizesCompleteProfile(t *testing.T) {
	h := newTestHandler(t)

	dob := time.Date(2005, 3, 10, 0, 0, 0, 0, time.UTC)
	input := &Input{
		UserProfile: models.UserProfile{
			UserID:            "user-1",
			Name:              "Asha",
			DateOfBirth:       &dob,
			FamilyIncomeRaw:   strPtr("4 lakh"),
			CGPARaw:           strPtr("8.2"),
			CurrentEducation:  strPtr("Undergraduate"),
			FieldOfStudy:      strPtr("Engineering"),
			Gender:            strPtr("Female"),
			Category:          strPtr("General"),
			IsProfileComplete: true,
		},
	}

	output := h.Execute(context.Background(), input)

	assert.True(t, output.ProfileComplete)
	assert.Equal(t, "user-1", output.NormalizedProfile.UserID)
	assert.Equal(t, 8.2, output.NormalizedProfile.CGPA)
	assert.Equal(t, 400000.0, output.NormalizedProfile.FamilyIncome)
	assert.Equal(t, 20, output.NormalizedProfile.Age)
	assert.Equal(t, "Undergraduate", output.NormalizedProfile.CurrentEducation)
	assert.Equal(t, "Female", output.NormalizedProfile.Gender)
	assert.Empty(t, output.ParseNotes)
}

func TestExecute_PinnedNowOverridesClock(t *testing.T) {
	h := newTestHandler(t)

	dob := time.Date(2005, 6, 16, 0, 0, 0, 0, time.UTC)
	pinned := time.Date(2026, 6, 16, 0, 0, 0, 0, time.UTC)
	output := h.Execute(context.Background(), &Input{
		UserProfile: models.UserProfile{UserID: "user-5", DateOfBirth: &dob},
		Now:         &pinned,
	})

	assert.Equal(t, 21, output.NormalizedProfile.Age)
}

func TestExecute_ParseNotesFlagUnusableFields(t *testing.T) {
	h := newTestHandler(t)

	output := h.Execute(context.Background(), &Input{
		UserProfile: models.UserProfile{
			UserID:          "user-6",
			CGPARaw:         strPtr("eight point two"),
			FamilyIncomeRaw: strPtr("prefer not to say"),
		},
	})

	assert.Len(t, output.ParseNotes, 3)
	assert.Contains(t, output.ParseNotes[0], "cgpa")
	assert.Contains(t, output.ParseNotes[1], "familyIncome")
	assert.Contains(t, output.ParseNotes[2], "dateOfBirth")
}

func TestExecute_EmptyProfileYieldsZeroValues(t *testing.T) {
	h := newTestHandler(t)

	output := h.Execute(context.Background(), &Input{
		UserProfile: models.UserProfile{UserID: "user-2"},
	})

	assert.False(t, output.ProfileComplete)
	assert.Equal(t, "user-2", output.NormalizedProfile.UserID)
	assert.Equal(t, 0.0, output.NormalizedProfile.CGPA)
	assert.Equal(t, 0.0, output.NormalizedProfile.FamilyIncome)
	assert.Equal(t, 0, output.NormalizedProfile.Age)
	assert.Empty(t, output.NormalizedProfile.Gender)
}

func TestExecute_IncomeRangeTakesMidpoint(t *testing.T) {
	h := newTestHandler(t)

	output := h.Execute(context.Background(), &Input{
		UserProfile: models.UserProfile{
			UserID:            "user-3",
			FamilyIncomeRaw:   strPtr("₹3,00,000 - ₹5,00,000"),
			IsProfileComplete: true,
		},
	})

	assert.Equal(t, 400000.0, output.NormalizedProfile.FamilyIncome)
}

func TestExecute_AgeUsesInjectedClock(t *testing.T) {
	h := newTestHandler(t)

	// Birthday falls the day after the pinned clock, so the age is one
	// year lower than the calendar-year difference.
	dob := time.Date(2005, 6, 16, 0, 0, 0, 0, time.UTC)
	output := h.Execute(context.Background(), &Input{
		UserProfile: models.UserProfile{UserID: "user-4", DateOfBirth: &dob},
	})

	assert.Equal(t, 19, output.NormalizedProfile.Age)
}
