package domain

import "time"

// Notification is an in-app message queued for a user.
type Notification struct {
	ID          string
	RecipientID string
	Kind        string
	Title       string
	Body        string
	EntityID    *string
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// IsRead reports whether the recipient has seen the notification.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
