// internal/engine/rank.go
package engine

import (
	"sort"
	"time"

	"scholarship-workers/internal/models"
)

const incompleteProfileMessage = "Please complete your profile to see matching scholarships"

// Rank evaluates every scholarship against the profile and returns the
// results sorted eligible-first, then by descending match percentage.
// The sort is stable so equal keys keep catalog order. An incomplete
// profile short-circuits to an explanatory result instead of an error.
func Rank(profile models.UserProfile, scholarships []models.Scholarship, now time.Time) models.RankedResults {
	if !profile.IsProfileComplete {
		return models.RankedResults{
			TotalScholarships: len(scholarships),
			Results:           []models.EligibilityResult{},
			IncompleteProfile: true,
			Message:           incompleteProfileMessage,
		}
	}

	np := NormalizeProfile(profile, now)

	results := make([]models.EligibilityResult, 0, len(scholarships))
	var skipped []models.SkippedScholarship
	for _, s := range scholarships {
		if s.Eligibility == nil {
			skipped = append(skipped, models.SkippedScholarship{
				ID:     s.ID,
				Reason: "missing eligibility criteria",
			})
			continue
		}
		if !s.IsActive {
			skipped = append(skipped, models.SkippedScholarship{
				ID:     s.ID,
				Reason: "scholarship inactive",
			})
			continue
		}
		results = append(results, Evaluate(np, s, now))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].IsEligible != results[j].IsEligible {
			return results[i].IsEligible
		}
		return results[i].MatchPercentage > results[j].MatchPercentage
	})

	eligible := 0
	for _, r := range results {
		if r.IsEligible {
			eligible++
		}
	}

	return models.RankedResults{
		TotalScholarships:    len(scholarships),
		EligibleScholarships: eligible,
		Results:              results,
		Skipped:              skipped,
		UserProfile:          np.Snapshot(),
	}
}
