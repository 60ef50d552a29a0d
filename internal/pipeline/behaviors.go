package pipeline

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/spec-kit/medcourse-service/internal/cache"
	"github.com/spec-kit/medcourse-service/internal/domain"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// AuditRecorder persists audit entries for dispatched commands.
type AuditRecorder interface {
	Record(ctx context.Context, entry *domain.AuditLog) error
}

// Logging is the outermost behavior: it logs the dispatch, measures duration
// and writes an audit entry. Audit failures never fail the command.
func Logging(logger *zap.Logger, audit AuditRecorder) Behavior {
	return func(name string, next Handler) Handler {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			result, err := next(ctx, req)
			duration := time.Since(start)

			fields := []zap.Field{
				zap.String("command", name),
				zap.Duration("duration", duration),
			}
			if err != nil {
				logger.Warn("command failed", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("command handled", fields...)
			}

			if audit != nil {
				entry := &domain.AuditLog{
					ActorType:  "SYSTEM",
					Command:    name,
					Outcome:    domain.AuditOutcomeOK,
					DurationMS: duration.Milliseconds(),
				}
				if audited, ok := req.(Audited); ok {
					actorType, actorID := audited.AuditActor()
					entry.ActorType = actorType
					if actorID != "" {
						entry.ActorID = &actorID
					}
				}
				if err != nil {
					entry.Outcome = domain.AuditOutcomeError
					code := apperrors.ToDomainError(err).Code
					entry.ErrorCode = &code
				}
				if auditErr := audit.Record(ctx, entry); auditErr != nil {
					logger.Warn("audit write failed", zap.String("command", name), zap.Error(auditErr))
				}
			}
			return result, err
		}
	}
}

// Validation short-circuits requests whose ozzo rules fail, mapping field
// errors into the error details.
func Validation() Behavior {
	return func(name string, next Handler) Handler {
		return func(ctx context.Context, req any) (any, error) {
			validatable, ok := req.(Validatable)
			if !ok {
				return next(ctx, req)
			}
			if err := validatable.Validate(); err != nil {
				return nil, apperrors.NewValidationError("invalid "+name+" request", validationDetails(err))
			}
			return next(ctx, req)
		}
	}
}

func validationDetails(err error) map[string]any {
	var fieldErrors validation.Errors
	if !errors.As(err, &fieldErrors) {
		return map[string]any{"error": err.Error()}
	}
	details := make(map[string]any, len(fieldErrors))
	for field, fieldErr := range fieldErrors {
		details[field] = fieldErr.Error()
	}
	return details
}

// Caching serves Cacheable queries through the cache service, registering
// their key under the declared prefixes.
func Caching(svc *cache.Service) Behavior {
	return func(name string, next Handler) Handler {
		return func(ctx context.Context, req any) (any, error) {
			cacheable, ok := req.(Cacheable)
			if !ok || svc == nil {
				return next(ctx, req)
			}
			return svc.GetOrFetch(ctx, cacheable.CacheKey(), cacheable.CachePrefixes(), func(ctx context.Context) (any, error) {
				return next(ctx, req)
			})
		}
	}
}

// Invalidation drops the declared cache prefixes after a successful command.
// It wraps outside the transaction behavior so invalidation runs post-commit.
func Invalidation(svc *cache.Service, logger *zap.Logger) Behavior {
	return func(name string, next Handler) Handler {
		return func(ctx context.Context, req any) (any, error) {
			result, err := next(ctx, req)
			if err != nil {
				return result, err
			}
			invalidator, ok := req.(Invalidator)
			if !ok || svc == nil {
				return result, nil
			}
			for _, prefix := range invalidator.InvalidatePrefixes() {
				removed := svc.InvalidatePrefix(ctx, prefix)
				if removed > 0 && logger != nil {
					logger.Debug("cache invalidated",
						zap.String("command", name),
						zap.String("prefix", prefix),
						zap.Int("entries", removed),
					)
				}
			}
			return result, nil
		}
	}
}
