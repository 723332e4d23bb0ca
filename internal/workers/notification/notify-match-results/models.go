// internal/workers/notification/notify-match-results/models.go
package notifymatchresults

import (
	"time"

	"scholarship-workers/internal/models"
)

type Input struct {
	UserID  string               `json:"userId"`
	Email   string               `json:"email,omitempty"`
	Phone   string               `json:"phone,omitempty"`
	Channel string               `json:"channel,omitempty"` // email, sms or empty for auto
	Ranked  models.RankedResults `json:"rankedResults"`
}

type Output struct {
	Success        bool      `json:"success"`
	Status         string    `json:"status"` // sent, failed or disabled
	NotificationID string    `json:"notificationId,omitempty"`
	Channel        string    `json:"channel,omitempty"`
	MessageID      string    `json:"messageId,omitempty"`
	SentAt         time.Time `json:"sentAt"`
}
