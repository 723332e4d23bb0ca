// internal/engine/normalize.go
package engine

import (
	"strconv"
	"strings"
	"time"

	"scholarship-workers/internal/models"
)

// NormalizedProfile is the cleaned-up view of a student profile that the
// evaluator works from. Categorical fields keep their pointer-ness: nil
// means the student never filled the field in.
type NormalizedProfile struct {
	UserID           string
	Name             string
	CGPA             float64
	FamilyIncome     float64
	Age              int
	CurrentEducation *string
	FieldOfStudy     *string
	Gender           *string
	Category         *string
	State            *string
	City             *string
}

// NormalizeProfile converts the stored profile into numeric and trimmed
// values. The reference time feeds the age computation.
func NormalizeProfile(p models.UserProfile, now time.Time) NormalizedProfile {
	np := NormalizedProfile{
		UserID:           p.UserID,
		Name:             p.Name,
		Age:              CalculateAge(p.DateOfBirth, now),
		CurrentEducation: trimmed(p.CurrentEducation),
		FieldOfStudy:     trimmed(p.FieldOfStudy),
		Gender:           trimmed(p.Gender),
		Category:         trimmed(p.Category),
		State:            trimmed(p.State),
		City:             trimmed(p.City),
	}
	if p.FamilyIncomeRaw != nil {
		np.FamilyIncome = NormalizeIncome(*p.FamilyIncomeRaw)
	}
	if p.CGPARaw != nil {
		np.CGPA = ParseCGPA(*p.CGPARaw)
	}
	return np
}

// ParseCGPA parses the stored CGPA string, returning 0 for anything
// unparsable so a constrained scholarship fails the check cleanly.
func ParseCGPA(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return sanitize(v)
}

// Snapshot renders the normalized profile for echoing back in results.
func (np NormalizedProfile) Snapshot() *models.ProfileSnapshot {
	return &models.ProfileSnapshot{
		UserID:           np.UserID,
		Name:             np.Name,
		CGPA:             np.CGPA,
		FamilyIncome:     np.FamilyIncome,
		Age:              np.Age,
		CurrentEducation: deref(np.CurrentEducation),
		FieldOfStudy:     deref(np.FieldOfStudy),
		Gender:           deref(np.Gender),
		Category:         deref(np.Category),
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
