// internal/workers/data-access/query-scholarships/models.go
package queryscholarships

import "scholarship-workers/internal/models"

type Input struct {
	QueryType      string                 `json:"queryType"`
	ScholarshipID  string                 `json:"scholarshipId,omitempty"`
	ScholarshipIDs []string               `json:"scholarshipIds,omitempty"`
	UserID         string                 `json:"userId,omitempty"`
	Filters        map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

// Export constants for external use
var (
	QueryTypeActiveScholarships    = models.QueryTypeActiveScholarships
	QueryTypeScholarshipDetails    = models.QueryTypeScholarshipDetails
	QueryTypeUserProfile           = models.QueryTypeUserProfile
	QueryTypeUserSavedScholarships = models.QueryTypeUserSavedScholarships
)
