package api

import (
	"log/slog"
	"net/http"

	"github.com/alecgard/taskboard/internal/auth"
	"github.com/alecgard/taskboard/internal/ratelimit"
)

// auditLog emits a structured audit log entry for a write.
func auditLog(r *http.Request, action string, resourceType string, resourceID string, detail ...any) {
	attrs := []any{
		"action", action,
		"resource_type", resourceType,
		"resource_id", resourceID,
		"ip", ratelimit.ClientIP(r),
		"request_id", RequestIDFromContext(r.Context()),
	}

	if id := auth.IdentityFromContext(r.Context()); id != nil {
		attrs = append(attrs, "actor_id", id.ID, "actor_username", id.Username, "actor_role", id.Role)
	}

	attrs = append(attrs, detail...)
	slog.Info("audit", attrs...)
}

// committed records a successful write: audit entry, mutation counter, and
// cache invalidation of every path whose cached representation it may have
// changed. Call it before writing the response.
func (b *base) committed(r *http.Request, action, resourceType, resourceID string, paths ...string) {
	auditLog(r, action, resourceType, resourceID)
	if b.metrics != nil {
		b.metrics.IncMutation(resourceType, action)
	}
	if err := b.cache.Invalidate(r.Context(), paths...); err != nil {
		slog.Error("cache invalidation failed", "paths", paths, "error", err)
		if b.metrics != nil {
			b.metrics.IncCacheInvalidationError()
		}
	}
}
