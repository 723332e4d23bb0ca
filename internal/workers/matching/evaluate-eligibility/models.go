// internal/workers/matching/evaluate-eligibility/models.go
package evaluateeligibility

import "scholarship-workers/internal/models"

type Input struct {
	UserID      string              `json:"userId,omitempty"`
	UserProfile *models.UserProfile `json:"userProfile,omitempty"`
	Scholarship models.Scholarship  `json:"scholarship"`
}

type Output struct {
	Result models.EligibilityResult `json:"eligibilityResult"`
}
