// internal/workers/matching/rank-scholarships/handler.go
package rankscholarships

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cerrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/metrics"
	"scholarship-workers/internal/common/observability"
	"scholarship-workers/internal/engine"
	"scholarship-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "rank-scholarships"
)

var (
	ErrRankingFailed      = errors.New("RANKING_FAILED")
	ErrCatalogFetchFailed = errors.New("CATALOG_FETCH_FAILED")
	ErrProfileFetchFailed = errors.New("PROFILE_FETCH_FAILED")
)

const catalogCacheKey = "scholarships:catalog:active"

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	obs    *observability.Observability
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, cerrors.ConvertToBPMNError(cerrors.NewParseError(TaskType, err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		var stdErr *cerrors.StandardError
		switch {
		case errors.Is(err, ErrCatalogFetchFailed):
			stdErr = cerrors.NewCatalogFetchFailedError(err)
		case errors.Is(err, ErrProfileFetchFailed):
			stdErr = cerrors.NewProfileFetchFailedError(input.UserID, err)
		default:
			stdErr = cerrors.NewRankingFailedError(err)
		}
		h.failJob(client, job, cerrors.ConvertToBPMNError(stdErr))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	profile := input.UserProfile
	if profile == nil && input.UserID != "" {
		var err error
		profile, err = h.getUserProfile(ctx, input.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
		}
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: no userProfile or userId supplied", ErrRankingFailed)
	}

	scholarships := input.Scholarships
	if scholarships == nil {
		var err error
		scholarships, err = h.getActiveScholarships(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCatalogFetchFailed, err)
		}
	}
	if len(scholarships) > h.config.MaxScholarships {
		scholarships = scholarships[:h.config.MaxScholarships]
	}

	ranked := engine.Rank(*profile, scholarships, h.now())

	metrics.RankingCatalogSize.Observe(float64(ranked.TotalScholarships))
	h.obs.RecordMatchingRun(ctx, !ranked.IncompleteProfile)

	h.logger.Info("scholarships ranked", map[string]interface{}{
		"userId":            profile.UserID,
		"total":             ranked.TotalScholarships,
		"eligible":          ranked.EligibleScholarships,
		"skipped":           len(ranked.Skipped),
		"incompleteProfile": ranked.IncompleteProfile,
	})

	return &Output{Ranked: ranked}, nil
}

// getUserProfile loads a profile from Redis, falling back to Postgres and
// refilling the cache on a miss.
func (h *Handler) getUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	cacheKey := "user:profile:" + userID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var profile models.UserProfile
		if err := json.Unmarshal([]byte(val), &profile); err == nil {
			return &profile, nil
		}
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, date_of_birth, family_income, cgpa,
		       current_education, field_of_study, gender, category, state, city,
		       is_profile_complete
		FROM user_profiles WHERE id = $1`, userID)

	var profile models.UserProfile
	err := row.Scan(
		&profile.UserID, &profile.Name, &profile.Email, &profile.Phone,
		&profile.DateOfBirth, &profile.FamilyIncomeRaw, &profile.CGPARaw,
		&profile.CurrentEducation, &profile.FieldOfStudy, &profile.Gender,
		&profile.Category, &profile.State, &profile.City,
		&profile.IsProfileComplete,
	)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(profile)
	h.redis.Set(ctx, cacheKey, data, h.config.ProfileCacheTTL)

	return &profile, nil
}

// getActiveScholarships loads the active catalog, via Redis when warm.
func (h *Handler) getActiveScholarships(ctx context.Context) ([]models.Scholarship, error) {
	if val, err := h.redis.Get(ctx, catalogCacheKey).Result(); err == nil {
		var cached []models.Scholarship
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, title, description, provider, amount, application_deadline,
		       contact_info, is_active, eligibility_criteria
		FROM scholarships
		WHERE is_active = true
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scholarships []models.Scholarship
	for rows.Next() {
		var s models.Scholarship
		var criteria []byte
		err := rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.Provider, &s.Amount,
			&s.ApplicationDeadline, &s.ContactInfo, &s.IsActive, &criteria,
		)
		if err != nil {
			return nil, err
		}
		if len(criteria) > 0 {
			// A malformed criteria document leaves Eligibility nil; the
			// ranking pipeline reports it as skipped rather than failing.
			var ec models.EligibilityCriteria
			if err := json.Unmarshal(criteria, &ec); err == nil {
				s.Eligibility = &ec
			}
		}
		scholarships = append(scholarships, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	data, _ := json.Marshal(scholarships)
	h.redis.Set(ctx, catalogCacheKey, data, h.config.CatalogCacheTTL)

	return scholarships, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, bpmnErr *cerrors.BPMNError) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    bpmnErr.Code,
		"errorMessage": bpmnErr.Message,
		"details":      bpmnErr.Details,
		"retries":      bpmnErr.Retries,
	})
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(fmt.Sprintf("%s: %s", bpmnErr.Message, bpmnErr.Details)).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

// Execute exposes the core logic for tests and embedding.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
