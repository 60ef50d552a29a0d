// Package handlers contains the fiber HTTP handlers for the public API.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/medcourse-service/internal/auth"
	"github.com/spec-kit/medcourse-service/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// actorFromCtx builds the service-layer actor from the authenticated principal.
// Routes without auth middleware yield the zero actor, which services treat
// as SYSTEM.
func actorFromCtx(c *fiber.Ctx) service.Actor {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{}
	}
	return service.Actor{ID: principal.User.ID, Role: principal.Role}
}

func paging(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}
