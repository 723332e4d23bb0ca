// internal/workers/matching/evaluate-eligibility/handler.go
package evaluateeligibility

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
	"scholarship-workers/internal/engine"
	"scholarship-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "evaluate-eligibility"
)

var (
	ErrProfileFetchFailed     = errors.New("PROFILE_FETCH_FAILED")
	ErrEligibilityCheckFailed = errors.New("ELIGIBILITY_CHECK_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
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
		if errors.Is(err, ErrProfileFetchFailed) {
			stdErr = cerrors.NewProfileFetchFailedError(input.UserID, err)
		} else {
			stdErr = cerrors.NewEligibilityCheckFailedError(input.Scholarship.ID, err)
		}
		h.failJob(client, job, cerrors.ConvertToBPMNError(stdErr))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	var profile *models.UserProfile
	if input.UserProfile != nil {
		profile = input.UserProfile
	} else if input.UserID != "" {
		var err error
		profile, err = h.getUserProfile(ctx, input.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
		}
	}

	if profile == nil {
		return nil, fmt.Errorf("%w: no profile or userId supplied", ErrEligibilityCheckFailed)
	}

	now := h.now()
	np := engine.NormalizeProfile(*profile, now)
	result := engine.Evaluate(np, input.Scholarship, now)

	metrics.ScholarshipsEvaluated.WithLabelValues(fmt.Sprintf("%t", result.IsEligible)).Inc()

	h.logger.Info("eligibility evaluated", map[string]interface{}{
		"userId":          profile.UserID,
		"scholarshipId":   input.Scholarship.ID,
		"isEligible":      result.IsEligible,
		"matchPercentage": result.MatchPercentage,
		"deadlineStatus":  result.DeadlineStatus,
	})

	return &Output{Result: result}, nil
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
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &profile, nil
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
