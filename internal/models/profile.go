// internal/models/profile.go
package models

import "time"

// UserProfile is the student profile as stored by the portal. Fields the
// student has not filled in yet are nil pointers, not zero values, so the
// matching engine can tell "missing" apart from "empty".
type UserProfile struct {
	UserID            string     `json:"userId"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	DateOfBirth       *time.Time `json:"dateOfBirth,omitempty"`
	FamilyIncomeRaw   *string    `json:"familyIncome,omitempty"`
	CGPARaw           *string    `json:"cgpa,omitempty"`
	CurrentEducation  *string    `json:"currentEducation,omitempty"`
	FieldOfStudy      *string    `json:"fieldOfStudy,omitempty"`
	Gender            *string    `json:"gender,omitempty"`
	Category          *string    `json:"category,omitempty"`
	State             *string    `json:"state,omitempty"`
	City              *string    `json:"city,omitempty"`
	IsProfileComplete bool       `json:"isProfileComplete"`
}

// ProfileSnapshot echoes the normalized values that were matched against,
// so callers can show the student what the engine saw.
type ProfileSnapshot struct {
	UserID           string  `json:"userId"`
	Name             string  `json:"name"`
	CGPA             float64 `json:"cgpa"`
	FamilyIncome     float64 `json:"familyIncome"`
	Age              int     `json:"age"`
	CurrentEducation string  `json:"currentEducation"`
	FieldOfStudy     string  `json:"fieldOfStudy"`
	Gender           string  `json:"gender"`
	Category         string  `json:"category"`
}

type UserSavedScholarship struct {
	UserID        string `json:"userId"`
	ScholarshipID string `json:"scholarshipId"`
	SavedAt       string `json:"savedAt"`
}
