// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-workers/internal/common/camunda"
	"scholarship-workers/internal/common/config"
	"scholarship-workers/internal/common/database"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/models"

	queryscholarships "scholarship-workers/internal/workers/data-access/query-scholarships"
	evaluateeligibility "scholarship-workers/internal/workers/matching/evaluate-eligibility"
	rankscholarships "scholarship-workers/internal/workers/matching/rank-scholarships"
)

// These tests need the full docker-compose stack (Zeebe, PostgreSQL,
// Redis, Elasticsearch) and only run when RUN_E2E is set.

func e2eConfig(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("RUN_E2E") == "" {
		t.Skip("skipping: set RUN_E2E=1 to run end to end tests")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.URL = "http://localhost:9200"
	cfg.Camunda.BrokerAddress = "localhost:26500"
	return cfg
}

func TestE2E_Connectivity(t *testing.T) {
	cfg := e2eConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()
	require.NoError(t, pg.Ping(ctx), "postgres not reachable")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx), "redis not reachable")

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)
	require.NoError(t, es.Ping(), "elasticsearch not reachable")

	zc, err := camunda.NewClient(cfg.Camunda.BrokerAddress)
	require.NoError(t, err)
	defer zc.Close()
	require.NoError(t, zc.HealthCheck(ctx), "zeebe not reachable")
}

func seedCatalog(t *testing.T, cfg *config.Config) *database.PostgresClient {
	t.Helper()
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	t.Cleanup(func() { pg.Close() })

	ctx := context.Background()
	_, err = pg.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scholarships (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			provider TEXT NOT NULL DEFAULT '',
			amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			application_deadline TIMESTAMPTZ,
			contact_info TEXT,
			is_active BOOLEAN NOT NULL DEFAULT true,
			eligibility_criteria JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	require.NoError(t, err)

	_, err = pg.DB.ExecContext(ctx, `
		INSERT INTO scholarships (id, title, description, provider, amount, application_deadline, is_active, eligibility_criteria)
		VALUES
			('e2e-sch-1', 'E2E Merit Scholarship', 'For strong academics', 'E2E Trust', 50000,
			 now() + interval '90 days', true, '{"minCgpa": 7.0}'),
			('e2e-sch-2', 'E2E Strict Scholarship', 'Very selective', 'E2E Trust', 100000,
			 now() + interval '90 days', true, '{"minCgpa": 9.5, "allowedGenders": ["Male"]}')
		ON CONFLICT (id) DO NOTHING`)
	require.NoError(t, err)

	return pg
}

func e2eProfile() *models.UserProfile {
	dob := time.Date(2005, time.March, 10, 0, 0, 0, 0, time.UTC)
	cgpa := "8.2"
	income := "4 lakh"
	education := "Undergraduate"
	gender := "Female"
	return &models.UserProfile{
		UserID:            "e2e-user-1",
		Name:              "E2E User",
		DateOfBirth:       &dob,
		CGPARaw:           &cgpa,
		FamilyIncomeRaw:   &income,
		CurrentEducation:  &education,
		Gender:            &gender,
		IsProfileComplete: true,
	}
}

func TestE2E_QueryCatalog(t *testing.T) {
	cfg := e2eConfig(t)
	pg := seedCatalog(t, cfg)

	h := queryscholarships.NewHandler(queryscholarships.LoadConfig(), pg.DB, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &queryscholarships.Input{
		QueryType: string(queryscholarships.QueryTypeActiveScholarships),
		Filters:   map[string]interface{}{"provider": "E2E Trust"},
	})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, out.RowCount, 2)
}

func TestE2E_EvaluateAndRank(t *testing.T) {
	cfg := e2eConfig(t)
	pg := seedCatalog(t, cfg)

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdb.Close()

	// Single scholarship evaluation
	eh := evaluateeligibility.NewHandler(evaluateeligibility.LoadConfig(), pg.DB, rdb.Client, logger.NewTestLogger(t))
	deadline := time.Now().Add(90 * 24 * time.Hour)
	minCGPA := 7.0
	evalOut, err := eh.Execute(context.Background(), &evaluateeligibility.Input{
		UserProfile: e2eProfile(),
		Scholarship: models.Scholarship{
			ID: "e2e-sch-1", Title: "E2E Merit Scholarship", IsActive: true,
			ApplicationDeadline: &deadline,
			Eligibility:         &models.EligibilityCriteria{MinCGPA: &minCGPA},
		},
	})
	require.NoError(t, err)
	assert.True(t, evalOut.Result.IsEligible)

	// Full catalog ranking straight from the database
	rh := rankscholarships.NewHandler(rankscholarships.LoadConfig(), pg.DB, rdb.Client, nil, logger.NewTestLogger(t))
	rankOut, err := rh.Execute(context.Background(), &rankscholarships.Input{
		UserProfile: e2eProfile(),
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rankOut.Ranked.TotalScholarships, 2)
	assert.GreaterOrEqual(t, rankOut.Ranked.EligibleScholarships, 1)
	if len(rankOut.Ranked.Results) > 1 {
		first := rankOut.Ranked.Results[0]
		second := rankOut.Ranked.Results[1]
		if first.IsEligible == second.IsEligible {
			assert.GreaterOrEqual(t, first.MatchPercentage, second.MatchPercentage)
		} else {
			assert.True(t, first.IsEligible)
		}
	}
}
