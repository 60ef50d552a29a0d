package service

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/spec-kit/medcourse-service/internal/cache"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/pipeline"
	"github.com/spec-kit/medcourse-service/internal/repository"
)

// NotificationService manages in-app notifications. Creation is driven by the
// notification worker reacting to domain events.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    *pipeline.Dispatcher
}

// NewNotificationService constructs the service.
func NewNotificationService(notifications repository.NotificationRepository, dispatcher *pipeline.Dispatcher) *NotificationService {
	return &NotificationService{notifications: notifications, dispatcher: dispatcher}
}

type notifyCommand struct {
	RecipientID string
	Kind        string
	Title       string
	Body        string
	EntityID    *string
}

func (c notifyCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.RecipientID, validation.Required),
		validation.Field(&c.Kind, validation.Required),
		validation.Field(&c.Title, validation.Required, validation.Length(1, 200)),
	)
}

func (c notifyCommand) InvalidatePrefixes() []string {
	return []string{notificationPrefix(c.RecipientID), prefixNotificationList}
}

// Notify queues an in-app notification for a user.
func (s *NotificationService) Notify(ctx context.Context, recipientID, kind, title, body string, entityID *string) (*domain.Notification, error) {
	cmd := notifyCommand{RecipientID: recipientID, Kind: kind, Title: title, Body: body, EntityID: entityID}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleNotify)
}

func (s *NotificationService) handleNotify(ctx context.Context, cmd notifyCommand) (*domain.Notification, error) {
	notification := &domain.Notification{
		RecipientID: cmd.RecipientID,
		Kind:        cmd.Kind,
		Title:       cmd.Title,
		Body:        cmd.Body,
		EntityID:    cmd.EntityID,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

type listNotificationsQuery struct {
	RecipientID string
	UnreadOnly  bool
	Limit       int
	Offset      int
}

func (q listNotificationsQuery) CacheKey() string {
	return cache.Key("notifications", q.RecipientID, fmt.Sprintf("%t:%d:%d", q.UnreadOnly, q.Limit, q.Offset))
}

func (q listNotificationsQuery) CachePrefixes() []string {
	return []string{notificationPrefix(q.RecipientID), prefixNotificationList}
}

// ListNotifications returns the caller's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	query := listNotificationsQuery{RecipientID: recipientID, UnreadOnly: unreadOnly, Limit: limit, Offset: offset}
	return pipeline.Dispatch(ctx, s.dispatcher, query, func(ctx context.Context, q listNotificationsQuery) ([]domain.Notification, error) {
		return s.notifications.ListByRecipient(ctx, q.RecipientID, q.UnreadOnly, q.Limit, q.Offset)
	})
}

type markReadCommand struct {
	Actor
	NotificationID string
	All            bool
}

func (c markReadCommand) Validate() error {
	if c.All {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.NotificationID, validation.Required),
	)
}

func (c markReadCommand) InvalidatePrefixes() []string {
	return []string{notificationPrefix(c.Actor.ID), prefixNotificationList}
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, notificationID string) error {
	cmd := markReadCommand{Actor: actor, NotificationID: notificationID}
	_, err := pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleMarkRead)
	return err
}

// MarkAllRead marks every unread notification of the caller as read and
// returns how many were affected.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor Actor) (int, error) {
	cmd := markReadCommand{Actor: actor, All: true}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleMarkRead)
}

func (s *NotificationService) handleMarkRead(ctx context.Context, cmd markReadCommand) (int, error) {
	if cmd.All {
		return s.notifications.MarkAllRead(ctx, cmd.Actor.ID)
	}
	if err := s.notifications.MarkRead(ctx, cmd.NotificationID, cmd.Actor.ID); err != nil {
		return 0, err
	}
	return 1, nil
}
