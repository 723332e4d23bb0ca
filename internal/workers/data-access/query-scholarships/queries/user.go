// internal/workers/data-access/query-scholarships/queries/user.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func UserProfile(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	userID, ok := params["userId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, name string
	var email, phone, familyIncome, cgpa sql.NullString
	var currentEducation, fieldOfStudy, gender, category, state, city sql.NullString
	var dateOfBirth sql.NullTime
	var isProfileComplete bool

	err := db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, date_of_birth, family_income, cgpa,
		       current_education, field_of_study, gender, category, state, city,
		       is_profile_complete
		FROM user_profiles
		WHERE id = $1`, userID).Scan(
		&id, &name, &email, &phone,
		&dateOfBirth, &familyIncome, &cgpa,
		&currentEducation, &fieldOfStudy, &gender,
		&category, &state, &city,
		&isProfileComplete,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"userId":            id,
		"name":              name,
		"email":             email.String,
		"phone":             phone.String,
		"familyIncome":      familyIncome.String,
		"cgpa":              cgpa.String,
		"currentEducation":  currentEducation.String,
		"fieldOfStudy":      fieldOfStudy.String,
		"gender":            gender.String,
		"category":          category.String,
		"state":             state.String,
		"city":              city.String,
		"isProfileComplete": isProfileComplete,
	}
	if dateOfBirth.Valid {
		result["dateOfBirth"] = dateOfBirth.Time
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func UserSavedScholarships(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	userID, ok := params["userId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT s.id, s.title, s.provider, s.amount, s.application_deadline, us.saved_at
		FROM user_saved_scholarships us
		JOIN scholarships s ON s.id = us.scholarship_id
		WHERE us.user_id = $1
		ORDER BY us.saved_at DESC`, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, title, provider string
		var amount float64
		var deadline, savedAt time.Time
		if err := rows.Scan(&id, &title, &provider, &amount, &deadline, &savedAt); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"scholarshipId":       id,
			"title":               title,
			"provider":            provider,
			"amount":              amount,
			"applicationDeadline": deadline,
			"savedAt":             savedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
