package service

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/spec-kit/medcourse-service/internal/cache"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/pipeline"
	"github.com/spec-kit/medcourse-service/internal/repository"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// UserService coordinates account profile workflows.
type UserService struct {
	users      repository.UserRepository
	dispatcher *pipeline.Dispatcher
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, dispatcher *pipeline.Dispatcher) *UserService {
	return &UserService{users: users, dispatcher: dispatcher}
}

type getUserQuery struct {
	ID string
}

func (q getUserQuery) CacheKey() string {
	return cache.Key("user", q.ID)
}

func (q getUserQuery) CachePrefixes() []string {
	return []string{userPrefix(q.ID)}
}

// GetUser fetches a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return pipeline.Dispatch(ctx, s.dispatcher, getUserQuery{ID: id}, func(ctx context.Context, q getUserQuery) (*domain.User, error) {
		return s.users.GetByID(ctx, q.ID)
	})
}

type listUsersQuery struct {
	Role   *domain.UserRole
	Limit  int
	Offset int
}

func (q listUsersQuery) CacheKey() string {
	role := ""
	if q.Role != nil {
		role = string(*q.Role)
	}
	return cache.Key("users", role, fmt.Sprintf("%d:%d", q.Limit, q.Offset))
}

func (q listUsersQuery) CachePrefixes() []string {
	return []string{prefixUserList}
}

// ListUsers returns accounts, optionally filtered by role.
func (s *UserService) ListUsers(ctx context.Context, role *domain.UserRole, limit, offset int) ([]domain.User, error) {
	return pipeline.Dispatch(ctx, s.dispatcher, listUsersQuery{Role: role, Limit: limit, Offset: offset}, func(ctx context.Context, q listUsersQuery) ([]domain.User, error) {
		return s.users.List(ctx, q.Role, q.Limit, q.Offset)
	})
}

// UpdateProfileInput holds optional profile fields.
type UpdateProfileInput struct {
	Name      *string
	Bio       *string
	AvatarURL *string
}

type updateProfileCommand struct {
	Actor
	Input UpdateProfileInput
}

func (c updateProfileCommand) Validate() error {
	if c.Input.Name != nil {
		if err := validation.Validate(*c.Input.Name, validation.Required, validation.Length(1, 120)); err != nil {
			return validation.Errors{"name": err}
		}
	}
	return nil
}

func (c updateProfileCommand) InvalidatePrefixes() []string {
	return []string{userPrefix(c.Actor.ID), prefixUserList}
}

// UpdateProfile mutates the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, actor Actor, input UpdateProfileInput) (*domain.User, error) {
	cmd := updateProfileCommand{Actor: actor, Input: input}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleUpdateProfile)
}

func (s *UserService) handleUpdateProfile(ctx context.Context, cmd updateProfileCommand) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, cmd.Actor.ID)
	if err != nil {
		return nil, err
	}
	if cmd.Input.Name != nil {
		user.Name = *cmd.Input.Name
	}
	if cmd.Input.Bio != nil {
		user.Bio = *cmd.Input.Bio
	}
	if cmd.Input.AvatarURL != nil {
		parsed, err := domain.ParseWebURL(*cmd.Input.AvatarURL)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		user.AvatarURL = &parsed
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type setUserStatusCommand struct {
	Actor
	UserID  string
	Suspend bool
}

func (c setUserStatusCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.UserID, validation.Required),
	)
}

func (c setUserStatusCommand) InvalidatePrefixes() []string {
	return []string{userPrefix(c.UserID), prefixUserList}
}

// SuspendUser suspends an account. Admin only.
func (s *UserService) SuspendUser(ctx context.Context, actor Actor, userID string) (*domain.User, error) {
	return s.setStatus(ctx, actor, userID, true)
}

// ReinstateUser re-activates a suspended account. Admin only.
func (s *UserService) ReinstateUser(ctx context.Context, actor Actor, userID string) (*domain.User, error) {
	return s.setStatus(ctx, actor, userID, false)
}

func (s *UserService) setStatus(ctx context.Context, actor Actor, userID string, suspend bool) (*domain.User, error) {
	cmd := setUserStatusCommand{Actor: actor, UserID: userID, Suspend: suspend}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleSetUserStatus)
}

func (s *UserService) handleSetUserStatus(ctx context.Context, cmd setUserStatusCommand) (*domain.User, error) {
	if !cmd.Actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	user, err := s.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if cmd.Suspend {
		user.Suspend()
	} else {
		user.Reinstate()
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
