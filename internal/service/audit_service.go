package service

import (
	"context"

	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/repository"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// AuditService exposes the audit trail to administrators. Reads bypass the
// pipeline so inspecting the trail never adds entries to it.
type AuditService struct {
	audits repository.AuditRepository
}

// NewAuditService constructs the service.
func NewAuditService(audits repository.AuditRepository) *AuditService {
	return &AuditService{audits: audits}
}

// ListAuditLogs returns audit entries matching the filter. Admin only.
func (s *AuditService) ListAuditLogs(ctx context.Context, actor Actor, filter repository.AuditFilter) ([]domain.AuditLog, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	entries, err := s.audits.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}
