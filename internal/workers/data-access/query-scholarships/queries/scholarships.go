// internal/workers/data-access/query-scholarships/queries/scholarships.go
package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

func ActiveScholarships(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	start := time.Now()

	query := `
		SELECT id, title, description, provider, amount, application_deadline,
		       contact_info, is_active, eligibility_criteria
		FROM scholarships
		WHERE is_active = true`
	args := []interface{}{}

	// Optional provider filter narrows the catalog server-side.
	if filters, ok := params["filters"].(map[string]interface{}); ok {
		if provider, ok := filters["provider"].(string); ok && provider != "" {
			query += ` AND provider = $1`
			args = append(args, provider)
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		row, err := scanScholarshipRow(rows)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func ScholarshipDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	scholarshipID, ok := params["scholarshipId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, title, description, provider string
	var amount float64
	var deadline time.Time
	var contactInfo sql.NullString
	var isActive bool
	var criteria []byte

	err := db.QueryRowContext(ctx, `
		SELECT id, title, description, provider, amount, application_deadline,
		       contact_info, is_active, eligibility_criteria
		FROM scholarships
		WHERE id = $1`, scholarshipID).Scan(
		&id, &title, &description, &provider,
		&amount, &deadline, &contactInfo,
		&isActive, &criteria,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":                  id,
		"title":               title,
		"description":         description,
		"provider":            provider,
		"amount":              amount,
		"applicationDeadline": deadline,
		"contactInfo":         contactInfo.String,
		"isActive":            isActive,
		"eligibilityCriteria": json.RawMessage(criteria),
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func scanScholarshipRow(rows *sql.Rows) (map[string]interface{}, error) {
	var id, title, description, provider string
	var amount float64
	var deadline time.Time
	var contactInfo sql.NullString
	var isActive bool
	var criteria []byte

	err := rows.Scan(
		&id, &title, &description, &provider,
		&amount, &deadline, &contactInfo,
		&isActive, &criteria,
	)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":                  id,
		"title":               title,
		"description":         description,
		"provider":            provider,
		"amount":              amount,
		"applicationDeadline": deadline,
		"contactInfo":         contactInfo.String,
		"isActive":            isActive,
		"eligibilityCriteria": json.RawMessage(criteria),
	}, nil
}
