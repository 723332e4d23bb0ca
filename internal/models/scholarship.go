// internal/models/scholarship.go
package models

import "time"

type Scholarship struct {
	ID                  string               `json:"id"`
	Title               string               `json:"title"`
	Description         string               `json:"description"`
	Provider            string               `json:"provider"`
	Amount              float64              `json:"amount"`
	ApplicationDeadline *time.Time           `json:"applicationDeadline,omitempty"`
	DocumentsRequired   []string             `json:"documentsRequired,omitempty"`
	ContactInfo         string               `json:"contactInfo,omitempty"`
	IsActive            bool                 `json:"isActive"`
	Eligibility         *EligibilityCriteria `json:"eligibilityCriteria,omitempty"`
}

// EligibilityCriteria holds the constraints a scholarship declares. A nil
// pointer or empty slice means the scholarship does not constrain that
// dimension at all.
type EligibilityCriteria struct {
	MinCGPA           *float64 `json:"minCgpa,omitempty"`
	MaxCGPA           *float64 `json:"maxCgpa,omitempty"`
	RequiredEducation []string `json:"requiredEducation,omitempty"`
	RequiredFields    []string `json:"requiredFields,omitempty"`
	MinFamilyIncome   *float64 `json:"minFamilyIncome,omitempty"`
	MaxFamilyIncome   *float64 `json:"maxFamilyIncome,omitempty"`
	AllowedGenders    []string `json:"allowedGenders,omitempty"`
	AllowedCategories []string `json:"allowedCategories,omitempty"`
	MinAge            *int     `json:"minAge,omitempty"`
	MaxAge            *int     `json:"maxAge,omitempty"`
	AllowedStates     []string `json:"allowedStates,omitempty"`
	AllowedCities     []string `json:"allowedCities,omitempty"`
}

// ScholarshipSummary is the subset of scholarship fields carried into
// ranked results.
type ScholarshipSummary struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Provider            string     `json:"provider"`
	Amount              float64    `json:"amount"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty"`
}
