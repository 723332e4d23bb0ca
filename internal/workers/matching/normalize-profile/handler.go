// internal/workers/matching/normalize-profile/handler.go
package normalizeprofile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	cerrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/metrics"
	"scholarship-workers/internal/engine"
	"scholarship-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "normalize-profile"
)

type Handler struct {
	config *Config
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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

	output := h.execute(ctx, &input)
	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) *Output {
	now := h.now()
	if input.Now != nil {
		now = *input.Now
	}

	np := engine.NormalizeProfile(input.UserProfile, now)
	notes := parseNotes(input.UserProfile, np)

	h.logger.Debug("profile normalized", map[string]interface{}{
		"userId": np.UserID,
		"age":    np.Age,
		"income": np.FamilyIncome,
		"cgpa":   np.CGPA,
		"notes":  len(notes),
	})

	return &Output{
		NormalizedProfile: *np.Snapshot(),
		ProfileComplete:   input.UserProfile.IsProfileComplete,
		ParseNotes:        notes,
	}
}

// parseNotes flags fields that did not survive normalization so data
// quality problems stay visible to the workflow instead of silently
// becoming zero values.
func parseNotes(p models.UserProfile, np engine.NormalizedProfile) []string {
	var notes []string

	if p.CGPARaw == nil {
		notes = append(notes, "cgpa: not provided")
	} else if raw := strings.TrimSpace(*p.CGPARaw); np.CGPA == 0 && raw != "" && raw != "0" {
		notes = append(notes, fmt.Sprintf("cgpa: could not parse %q", *p.CGPARaw))
	}

	if p.FamilyIncomeRaw == nil {
		notes = append(notes, "familyIncome: not provided")
	} else if raw := strings.TrimSpace(*p.FamilyIncomeRaw); np.FamilyIncome == 0 && raw != "" && raw != "0" {
		notes = append(notes, fmt.Sprintf("familyIncome: could not parse %q", *p.FamilyIncomeRaw))
	}

	if p.DateOfBirth == nil {
		notes = append(notes, "dateOfBirth: not provided, age defaults to 0")
	}

	return notes
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
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	return h.execute(ctx, input)
}
