package ports

import (
	"context"

	"github.com/flywinger/bolt-user-auth/internal/core/domain"
)

// AuthEventRepository persists audit events to the auth_events collection.
type AuthEventRepository interface {
	Insert(ctx context.Context, event *domain.AuthEvent) error
}

// AuditSink accepts auth events for asynchronous recording. Record must not
// block the caller beyond queueing and must never fail the operation being
// audited.
type AuditSink interface {
	Record(event domain.AuthEvent)
}
