// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeActiveScholarships    QueryType = "active_scholarships"
	QueryTypeScholarshipDetails    QueryType = "scholarship_details"
	QueryTypeUserProfile           QueryType = "user_profile"
	QueryTypeUserSavedScholarships QueryType = "user_saved_scholarships"
)
