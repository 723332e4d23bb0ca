// internal/workers/matching/evaluate-eligibility/handler_test.go
package evaluateeligibility

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func newTestHandler(t *testing.T, db *sql.DB, rdb *redis.Client) *Handler {
	h := NewHandler(LoadConfig(), db, rdb, logger.NewTestLogger(t))
	h.now = func() time.Time { return testNow }
	return h
}

func testProfile() *models.UserProfile {
	dob := time.Date(2005, time.March, 10, 0, 0, 0, 0, time.UTC)
	return &models.UserProfile{
		UserID:            "user-1",
		Name:              "Asha Kumar",
		DateOfBirth:       &dob,
		FamilyIncomeRaw:   strPtr("4 lakh"),
		CGPARaw:           strPtr("8.2"),
		CurrentEducation:  strPtr("Undergraduate"),
		FieldOfStudy:      strPtr("Engineering"),
		Gender:            strPtr("Female"),
		Category:          strPtr("OBC"),
		IsProfileComplete: true,
	}
}

func testScholarship() models.Scholarship {
	return models.Scholarship{
		ID:       "sch-1",
		Title:    "Merit Scholarship",
		Provider: "National Trust",
		Amount:   50000,
		IsActive: true,
		Eligibility: &models.EligibilityCriteria{
			MinCGPA:         floatPtr(7.0),
			MaxFamilyIncome: floatPtr(600000),
		},
	}
}

func TestHandler_Execute_WithProvidedProfile(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupTestRedis(t)

	h := newTestHandler(t, db, rdb)

	out, err := h.Execute(context.Background(), &Input{
		UserProfile: testProfile(),
		Scholarship: testScholarship(),
	})

	require.NoError(t, err)
	assert.True(t, out.Result.IsEligible)
	assert.Equal(t, 100, out.Result.MatchPercentage)
	assert.Equal(t, "sch-1", out.Result.Scholarship.ID)
}

func TestHandler_Execute_FetchesProfileFromCache(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	mr, rdb := setupTestRedis(t)

	cached, err := json.Marshal(testProfile())
	require.NoError(t, err)
	require.NoError(t, mr.Set("user:profile:user-1", string(cached)))

	h := newTestHandler(t, db, rdb)

	out, err := h.Execute(context.Background(), &Input{
		UserID:      "user-1",
		Scholarship: testScholarship(),
	})

	require.NoError(t, err)
	assert.True(t, out.Result.IsEligible)
}

func TestHandler_Execute_FetchesProfileFromDB(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupTestRedis(t)

	dob := time.Date(2005, time.March, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "phone", "date_of_birth", "family_income", "cgpa",
		"current_education", "field_of_study", "gender", "category", "state", "city",
		"is_profile_complete",
	}).AddRow(
		"user-1", "Asha Kumar", "asha@example.com", "+911234567890", dob, "4 lakh", "8.2",
		"Undergraduate", "Engineering", "Female", "OBC", "Karnataka", "Bengaluru",
		true,
	)
	mock.ExpectQuery("SELECT id, name, email, phone").
		WithArgs("user-1").
		WillReturnRows(rows)

	h := newTestHandler(t, db, rdb)

	out, err := h.Execute(context.Background(), &Input{
		UserID:      "user-1",
		Scholarship: testScholarship(),
	})

	require.NoError(t, err)
	assert.True(t, out.Result.IsEligible)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ProfileFetchError(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupTestRedis(t)

	mock.ExpectQuery("SELECT id, name, email, phone").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	h := newTestHandler(t, db, rdb)

	_, err := h.Execute(context.Background(), &Input{
		UserID:      "missing",
		Scholarship: testScholarship(),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProfileFetchFailed)
}

func TestHandler_Execute_NoProfileNoUserID(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupTestRedis(t)

	h := newTestHandler(t, db, rdb)

	_, err := h.Execute(context.Background(), &Input{
		Scholarship: testScholarship(),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEligibilityCheckFailed)
}

func TestHandler_Execute_ExpiredDeadline(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupTestRedis(t)

	h := newTestHandler(t, db, rdb)

	s := testScholarship()
	expired := testNow.Add(-48 * time.Hour)
	s.ApplicationDeadline = &expired

	out, err := h.Execute(context.Background(), &Input{
		UserProfile: testProfile(),
		Scholarship: s,
	})

	require.NoError(t, err)
	assert.False(t, out.Result.IsEligible)
	assert.Equal(t, models.DeadlineStatusExpired, out.Result.DeadlineStatus)
}
