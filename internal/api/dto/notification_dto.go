package dto

import (
	"time"

	"github.com/spec-kit/medcourse-service/internal/domain"
)

// NotificationResponse is the recipient's view of a notification.
type NotificationResponse struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	EntityID  *string    `json:"entity_id,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NotificationFromDomain maps a domain notification to its response view.
func NotificationFromDomain(notification *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		Kind:      notification.Kind,
		Title:     notification.Title,
		Body:      notification.Body,
		EntityID:  notification.EntityID,
		ReadAt:    notification.ReadAt,
		CreatedAt: notification.CreatedAt,
	}
}

// NotificationsFromDomain maps a slice of notifications.
func NotificationsFromDomain(notifications []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(notifications))
	for i := range notifications {
		out[i] = NotificationFromDomain(&notifications[i])
	}
	return out
}

// AuditLogResponse is the admin view of an audit entry.
type AuditLogResponse struct {
	ID         string    `json:"id"`
	ActorType  string    `json:"actor_type"`
	ActorID    *string   `json:"actor_id,omitempty"`
	Command    string    `json:"command"`
	Outcome    string    `json:"outcome"`
	ErrorCode  *string   `json:"error_code,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuditLogsFromDomain maps a slice of audit entries.
func AuditLogsFromDomain(entries []domain.AuditLog) []AuditLogResponse {
	out := make([]AuditLogResponse, len(entries))
	for i, entry := range entries {
		out[i] = AuditLogResponse{
			ID:         entry.ID,
			ActorType:  entry.ActorType,
			ActorID:    entry.ActorID,
			Command:    entry.Command,
			Outcome:    string(entry.Outcome),
			ErrorCode:  entry.ErrorCode,
			DurationMS: entry.DurationMS,
			CreatedAt:  entry.CreatedAt,
		}
	}
	return out
}
