// internal/workers/notification/notify-match-results/handler.go
package notifymatchresults

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	cerrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/metrics"
	"scholarship-workers/internal/common/validation"
)

const (
	TaskType = "notify-match-results"

	ChannelEmail = "email"
	ChannelSMS   = "sms"

	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
	ErrValidationFailed       = errors.New("VALIDATION_FAILED")
	ErrContactFetchFailed     = errors.New("PROFILE_FETCH_FAILED")

	// errChannelDisabled marks a channel with no configured sender. It is
	// an outcome, not a job failure: the worker completes with the
	// disabled status so the workflow can branch on it.
	errChannelDisabled = errors.New("notification channel disabled")
)

// EmailSender and SMSSender are satisfied by the aws package clients.
type EmailSender interface {
	SendTextEmail(ctx context.Context, from, to, subject, body string) (string, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, message, senderID string) (string, error)
}

type Handler struct {
	config *Config
	db     *sql.DB
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
	now    func() time.Time
}

// NewHandler builds the notification handler. db, email and sms may each be
// nil; a nil db disables the contact lookup and a nil sender disables its
// channel.
func NewHandler(config *Config, db *sql.DB, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		email:  email,
		sms:    sms,
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
		case errors.Is(err, ErrValidationFailed):
			stdErr = cerrors.NewValidationFailedError(err.Error())
		case errors.Is(err, ErrContactFetchFailed):
			stdErr = cerrors.NewProfileFetchFailedError(input.UserID, err)
		default:
			stdErr = cerrors.NewNotificationSendFailedError(input.Channel, err)
		}
		h.failJob(client, job, cerrors.ConvertToBPMNError(stdErr))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Email == "" && input.Phone == "" && input.UserID != "" && h.db != nil {
		if err := h.loadContact(ctx, input); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrContactFetchFailed, err)
		}
	}

	channel, err := h.resolveChannel(input)
	if errors.Is(err, errChannelDisabled) {
		h.logger.Warn("notification channel disabled", map[string]interface{}{
			"userId":  input.UserID,
			"channel": channel,
		})
		return &Output{
			Success: false,
			Status:  StatusDisabled,
			Channel: channel,
			SentAt:  h.now(),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	var messageID string
	switch channel {
	case ChannelEmail:
		subject := buildEmailSubject(h.config.Templates, input.Ranked)
		body := buildEmailBody(h.config.Templates, input.Ranked, h.config.TopMatches)
		messageID, err = h.email.SendTextEmail(ctx, h.config.DefaultFromEmail, input.Email, subject, body)
	case ChannelSMS:
		message := buildSMSMessage(h.config.Templates, input.Ranked, h.config.TopMatches)
		messageID, err = h.sms.SendSMS(ctx, input.Phone, message, h.config.SMSSenderID)
	}
	if err != nil {
		return &Output{
			Success: false,
			Status:  StatusFailed,
			Channel: channel,
			SentAt:  h.now(),
		}, fmt.Errorf("%w: %v", ErrNotificationSendFailed, err)
	}

	notificationID := uuid.New().String()
	h.logger.Info("match results notification sent", map[string]interface{}{
		"userId":         input.UserID,
		"channel":        channel,
		"notificationId": notificationID,
		"eligible":       input.Ranked.EligibleScholarships,
	})

	return &Output{
		Success:        true,
		Status:         StatusSent,
		NotificationID: notificationID,
		Channel:        channel,
		MessageID:      messageID,
		SentAt:         h.now(),
	}, nil
}

// loadContact fills in email and phone from the profile store when the job
// variables carry neither.
func (h *Handler) loadContact(ctx context.Context, input *Input) error {
	row := h.db.QueryRowContext(ctx,
		`SELECT email, phone FROM user_profiles WHERE id = $1`, input.UserID)

	var email, phone sql.NullString
	if err := row.Scan(&email, &phone); err != nil {
		return err
	}
	if email.Valid {
		input.Email = email.String
	}
	if phone.Valid {
		input.Phone = phone.String
	}
	return nil
}

// resolveChannel picks email when a valid address is available, then SMS.
// An explicit channel request must come with a valid matching contact and
// a configured sender.
func (h *Handler) resolveChannel(input *Input) (string, error) {
	switch input.Channel {
	case ChannelEmail:
		if !validation.ValidateEmail(input.Email) {
			return "", fmt.Errorf("%w: invalid email address %q", ErrValidationFailed, input.Email)
		}
		if h.email == nil {
			return ChannelEmail, errChannelDisabled
		}
		return ChannelEmail, nil
	case ChannelSMS:
		if !validation.ValidatePhone(input.Phone) {
			return "", fmt.Errorf("%w: invalid phone number %q", ErrValidationFailed, input.Phone)
		}
		if h.sms == nil {
			return ChannelSMS, errChannelDisabled
		}
		return ChannelSMS, nil
	case "":
		if h.email != nil && validation.ValidateEmail(input.Email) {
			return ChannelEmail, nil
		}
		if h.sms != nil && validation.ValidatePhone(input.Phone) {
			return ChannelSMS, nil
		}
		// Valid contact but every matching channel is off.
		if validation.ValidateEmail(input.Email) {
			return ChannelEmail, errChannelDisabled
		}
		if validation.ValidatePhone(input.Phone) {
			return ChannelSMS, errChannelDisabled
		}
		return "", fmt.Errorf("%w: no usable contact for user %s", ErrValidationFailed, input.UserID)
	default:
		return "", fmt.Errorf("%w: unknown channel %q", ErrValidationFailed, input.Channel)
	}
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
