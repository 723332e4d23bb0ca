// internal/workers/matching/rank-scholarships/models.go
package rankscholarships

import "scholarship-workers/internal/models"

type Input struct {
	UserID       string               `json:"userId,omitempty"`
	UserProfile  *models.UserProfile  `json:"userProfile,omitempty"`
	Scholarships []models.Scholarship `json:"scholarships,omitempty"`
}

type Output struct {
	Ranked models.RankedResults `json:"rankedResults"`
}
