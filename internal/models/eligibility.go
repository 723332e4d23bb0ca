// internal/models/eligibility.go
package models

const (
	DeadlineStatusActive  = "Active"
	DeadlineStatusExpired = "Expired"
)

// EligibilityCheck records a single criterion evaluation. Required and
// UserValue are human-readable strings meant for display.
type EligibilityCheck struct {
	Criterion string `json:"criterion"`
	Required  string `json:"required"`
	UserValue string `json:"userValue"`
	Passed    bool   `json:"passed"`
}

type EligibilityResult struct {
	Scholarship     ScholarshipSummary `json:"scholarship"`
	IsEligible      bool               `json:"isEligible"`
	DeadlineStatus  string             `json:"deadlineStatus"`
	Checks          []EligibilityCheck `json:"checks"`
	MatchPercentage int                `json:"matchPercentage"`
}

// SkippedScholarship names a catalog entry the engine could not evaluate.
type SkippedScholarship struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type RankedResults struct {
	TotalScholarships    int                  `json:"totalScholarships"`
	EligibleScholarships int                  `json:"eligibleScholarships"`
	Results              []EligibilityResult  `json:"results"`
	Skipped              []SkippedScholarship `json:"skipped,omitempty"`
	UserProfile          *ProfileSnapshot     `json:"userProfile,omitempty"`
	IncompleteProfile    bool                 `json:"incompleteProfile,omitempty"`
	Message              string               `json:"message,omitempty"`
}
