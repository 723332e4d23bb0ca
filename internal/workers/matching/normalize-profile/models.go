// internal/workers/matching/normalize-profile/models.go
package normalizeprofile

import (
	"time"

	"scholarship-workers/internal/models"
)

type Input struct {
	UserProfile models.UserProfile `json:"userProfile"`
	// Now pins the reference time for the age computation. Workflows replay
	// deterministically when they carry it; absent, the wall clock is used.
	Now *time.Time `json:"now,omitempty"`
}

type Output struct {
	NormalizedProfile models.ProfileSnapshot `json:"normalizedProfile"`
	ProfileComplete   bool                   `json:"profileComplete"`
	ParseNotes        []string               `json:"parseNotes,omitempty"`
}
