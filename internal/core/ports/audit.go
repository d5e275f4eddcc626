package ports

import (
	"context"

	"github.com/cortexbuild/platform/internal/core/domain"
)

// AuditRecorder accepts auth events for asynchronous recording. Implementations
// must not block the request path.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event domain.AuditEvent) error
}

// AuditService processes a single audit event end-to-end.
type AuditService interface {
	Process(ctx context.Context, event domain.AuditEvent) error
}
