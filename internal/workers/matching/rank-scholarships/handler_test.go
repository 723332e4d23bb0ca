// internal/workers/matching/rank-scholarships/handler_test.go
package rankscholarships

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
	"github.com/go-redis/redismock/v9"
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
	h := NewHandler(LoadConfig(), db, rdb, nil, logger.NewTestLogger(t))
	h.now = func() time.Time { return testNow }
	return h
}

func testProfile() *models.UserProfile {
	dob := time.Date(2005, time.March, 10, 0, 0, 0, 0, time.UTC)
	return &models.UserProfile{
		UserID:            "user-1",
		Name:              "Asha Kumar",
		DateOfBirth:       &dob,
		FamilyIncomeRaw:   strPtr("₹4,00,000"),
		CGPARaw:           strPtr("8.2"),
		CurrentEducation:  strPtr("Undergraduate"),
		FieldOfStudy:      strPtr("Engineering"),
		Gender:            strPtr("Female"),
		Category:          strPtr("OBC"),
		IsProfileComplete: true,
	}
}

func catalog() []models.Scholarship {
	return []models.Scholarship{
		{
			ID: "low-match", Title: "Strict Scholarship", IsActive: true,
			Eligibility: &models.EligibilityCriteria{
				MinCGPA:        floatPtr(9.5),
				AllowedGenders: []string{"Male"},
			},
		},
		{
			ID: "full-match", Title: "Open Scholarship", IsActive: true,
			Eligibility: &models.EligibilityCriteria{
				MinCGPA: floatPtr(7.0),
			},
		},
	}
}

func TestHandler_Execute_RanksProvidedScholarships(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupTestRedis(t)

	h := newTestHandler(t, db, rdb)

	out, err := h.Execute(context.Background(), &Input{
		UserProfile:  testProfile(),
		Scholarships: catalog(),
	})

	require.NoError(t, err)
	require.Len(t, out.Ranked.Results, 2)
	assert.Equal(t, "full-match", out.Ranked.Results[0].Scholarship.ID)
	assert.Equal(t, "low-match", out.Ranked.Results[1].Scholarship.ID)
	assert.Equal(t, 1, out.Ranked.EligibleScholarships)
}

func TestHandler_Execute_IncompleteProfile(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupTestRedis(t)

	h := newTestHandler(t, db, rdb)

	profile := testProfile()
	profile.IsProfileComplete = false

	out, err := h.Execute(context.Background(), &Input{
		UserProfile:  profile,
		Scholarships: catalog(),
	})

	require.NoError(t, err)
	assert.True(t, out.Ranked.IncompleteProfile)
	assert.Empty(t, out.Ranked.Results)
	assert.NotEmpty(t, out.Ranked.Message)
}

func TestHandler_Execute_MissingProfile(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupTestRedis(t)

	h := newTestHandler(t, db, rdb)

	_, err := h.Execute(context.Background(), &Input{Scholarships: catalog()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRankingFailed)
}

func TestHandler_Execute_FetchesProfileByUserID(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupTestRedis(t)

	dob := time.Date(2005, time.March, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "phone", "date_of_birth", "family_income", "cgpa",
		"current_education", "field_of_study", "gender", "category", "state", "city",
		"is_profile_complete",
	}).AddRow(
		"user-1", "Asha Kumar", "asha@example.com", "+919876543210", dob,
		"₹4,00,000", "8.2", "Undergraduate", "Engineering", "Female", "OBC",
		"Karnataka", "Bengaluru", true,
	)
	mock.ExpectQuery("SELECT id, name, email, phone").
		WithArgs("user-1").
		WillReturnRows(rows)

	h := newTestHandler(t, db, rdb)

	out, err := h.Execute(context.Background(), &Input{
		UserID:       "user-1",
		Scholarships: catalog(),
	})

	require.NoError(t, err)
	require.Len(t, out.Ranked.Results, 2)
	assert.Equal(t, "full-match", out.Ranked.Results[0].Scholarship.ID)
	assert.Equal(t, 1, out.Ranked.EligibleScholarships)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ProfileFetchError(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupTestRedis(t)

	mock.ExpectQuery("SELECT id, name, email, phone").
		WithArgs("user-gone").
		WillReturnError(sql.ErrNoRows)

	h := newTestHandler(t, db, rdb)

	_, err := h.Execute(context.Background(), &Input{
		UserID:       "user-gone",
		Scholarships: catalog(),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProfileFetchFailed)
}

func TestHandler_Execute_FetchesCatalogFromDB(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupTestRedis(t)

	criteria, _ := json.Marshal(models.EligibilityCriteria{MinCGPA: floatPtr(7.0)})
	deadline := testNow.Add(30 * 24 * time.Hour)
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "provider", "amount", "application_deadline",
		"contact_info", "is_active", "eligibility_criteria",
	}).AddRow(
		"sch-1", "Merit Scholarship", "For high achievers", "National Trust",
		50000.0, deadline, "contact@trust.org", true, criteria,
	)
	mock.ExpectQuery("SELECT id, title, description, provider").
		WillReturnRows(rows)

	h := newTestHandler(t, db, rdb)

	out, err := h.Execute(context.Background(), &Input{UserProfile: testProfile()})

	require.NoError(t, err)
	require.Len(t, out.Ranked.Results, 1)
	assert.Equal(t, "sch-1", out.Ranked.Results[0].Scholarship.ID)
	assert.True(t, out.Ranked.Results[0].IsEligible)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_FetchesCatalogFromCache(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	mr, rdb := setupTestRedis(t)

	cached, err := json.Marshal(catalog())
	require.NoError(t, err)
	require.NoError(t, mr.Set(catalogCacheKey, string(cached)))

	h := newTestHandler(t, db, rdb)

	out, err := h.Execute(context.Background(), &Input{UserProfile: testProfile()})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Ranked.TotalScholarships)
}

func TestHandler_Execute_CatalogFetchError(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupTestRedis(t)

	mock.ExpectQuery("SELECT id, title, description, provider").
		WillReturnError(sql.ErrConnDone)

	h := newTestHandler(t, db, rdb)

	_, err := h.Execute(context.Background(), &Input{UserProfile: testProfile()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogFetchFailed)
}

func TestHandler_Execute_RefillsCatalogCache(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	rdb, rmock := redismock.NewClientMock()

	criteria, _ := json.Marshal(models.EligibilityCriteria{MinCGPA: floatPtr(7.0)})
	deadline := testNow.Add(30 * 24 * time.Hour)
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "provider", "amount", "application_deadline",
		"contact_info", "is_active", "eligibility_criteria",
	}).AddRow(
		"sch-1", "Merit Scholarship", "For high achievers", "National Trust",
		50000.0, deadline, "contact@trust.org", true, criteria,
	)
	mock.ExpectQuery("SELECT id, title, description, provider").
		WillReturnRows(rows)

	expected := []models.Scholarship{{
		ID:                  "sch-1",
		Title:               "Merit Scholarship",
		Description:         "For high achievers",
		Provider:            "National Trust",
		Amount:              50000.0,
		ApplicationDeadline: &deadline,
		ContactInfo:         "contact@trust.org",
		IsActive:            true,
		Eligibility:         &models.EligibilityCriteria{MinCGPA: floatPtr(7.0)},
	}}
	cachePayload, err := json.Marshal(expected)
	require.NoError(t, err)

	rmock.ExpectGet(catalogCacheKey).RedisNil()
	rmock.ExpectSet(catalogCacheKey, cachePayload, LoadConfig().CatalogCacheTTL).SetVal("OK")

	h := newTestHandler(t, db, rdb)

	out, err := h.Execute(context.Background(), &Input{UserProfile: testProfile()})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Ranked.TotalScholarships)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestHandler_Execute_TruncatesOversizedCatalog(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupTestRedis(t)

	h := newTestHandler(t, db, rdb)
	h.config.MaxScholarships = 1

	out, err := h.Execute(context.Background(), &Input{
		UserProfile:  testProfile(),
		Scholarships: catalog(),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Ranked.TotalScholarships)
}
