package service

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/medcourse-service/internal/auth"
	"github.com/spec-kit/medcourse-service/internal/config"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/pipeline"
	"github.com/spec-kit/medcourse-service/internal/repository"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	dispatcher *pipeline.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository, dispatcher *pipeline.Dispatcher) *AuthService {
	return &AuthService{
		users:      users,
		dispatcher: dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// AuthResult bundles the authenticated user with an access token.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type registerUserCommand struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func (c registerUserCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&c.Email, validation.Required),
		validation.Field(&c.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&c.Role, validation.Required,
			validation.In(string(domain.RoleStudent), string(domain.RoleInstructor))),
	)
}

func (c registerUserCommand) InvalidatePrefixes() []string {
	return []string{prefixUserList}
}

// Register creates a new account and returns a signed token.
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (*AuthResult, error) {
	cmd := registerUserCommand{Name: name, Email: email, Password: password, Role: role}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleRegister)
}

func (s *AuthService) handleRegister(ctx context.Context, cmd registerUserCommand) (*AuthResult, error) {
	email, err := domain.ParseEmail(cmd.Email)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	role, _ := domain.ParseUserRole(cmd.Role)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(cmd.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         cmd.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issueToken(user)
}

type loginCommand struct {
	Email    string
	Password string
}

func (c loginCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required),
		validation.Field(&c.Password, validation.Required),
	)
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	cmd := loginCommand{Email: email, Password: password}
	return pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleLogin)
}

func (s *AuthService) handleLogin(ctx context.Context, cmd loginCommand) (*AuthResult, error) {
	parsed, err := domain.ParseEmail(cmd.Email)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	user, err := s.users.GetByEmail(ctx, parsed)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, apperrors.NewForbidden("account suspended")
	}
	if err := auth.ComparePassword(user.PasswordHash, cmd.Password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issueToken(user)
}

type changePasswordCommand struct {
	Actor
	CurrentPassword string
	NewPassword     string
}

func (c changePasswordCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.CurrentPassword, validation.Required),
		validation.Field(&c.NewPassword, validation.Required, validation.Length(8, 72)),
	)
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, actor Actor, currentPassword, newPassword string) error {
	cmd := changePasswordCommand{Actor: actor, CurrentPassword: currentPassword, NewPassword: newPassword}
	_, err := pipeline.Dispatch(ctx, s.dispatcher, cmd, s.handleChangePassword)
	return err
}

func (s *AuthService) handleChangePassword(ctx context.Context, cmd changePasswordCommand) (struct{}, error) {
	user, err := s.users.GetByID(ctx, cmd.Actor.ID)
	if err != nil {
		return struct{}{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, cmd.CurrentPassword); err != nil {
		return struct{}{}, apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(cmd.NewPassword, s.bcryptCost)
	if err != nil {
		return struct{}{}, err
	}
	user.PasswordHash = hash
	return struct{}{}, s.users.Update(ctx, user)
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
