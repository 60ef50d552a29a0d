package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/medcourse-service/internal/api/dto"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/repository"
	"github.com/spec-kit/medcourse-service/internal/service"
	apperrors "github.com/spec-kit/medcourse-service/pkg/util/errorutil"
)

// AuditHandler exposes the admin-only audit trail.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List handles GET /admin/audit-logs.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	limit, offset := paging(c)
	filter := repository.AuditFilter{
		ActorID: optionalQuery(c, "actor_id"),
		Command: optionalQuery(c, "command"),
		Limit:   limit,
		Offset:  offset,
	}
	if v := c.Query("outcome"); v != "" {
		outcome := domain.AuditOutcome(v)
		filter.Outcome = &outcome
	}
	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return apperrors.NewValidationError("invalid from timestamp", nil)
		}
		filter.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return apperrors.NewValidationError("invalid to timestamp", nil)
		}
		filter.To = &to
	}

	entries, err := h.audit.ListAuditLogs(c.UserContext(), actorFromCtx(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuditLogsFromDomain(entries)})
}
