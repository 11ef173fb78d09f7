package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	audit "romportal/pkg/platform/audit"
	"romportal/pkg/requestcontext"
)

// Publisher captures structured audit events. Every event is logged and
// appended to the outbox; when called inside a store transaction the append
// commits or rolls back with the business write.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit fills request-scoped fields, logs the event and appends it.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ActorID == "" {
		if actor := requestcontext.UserID(ctx); actor != uuid.Nil {
			event.ActorID = actor.String()
		}
	}

	p.logger.InfoContext(ctx, string(event.Action),
		"log_type", "audit",
		"subject", event.Subject,
		"actor_id", event.ActorID,
		"request_id", event.RequestID,
	)

	entry, err := audit.NewEntry(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	if err := p.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}
