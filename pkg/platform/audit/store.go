package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the transactional outbox. Append joins the caller's transaction
// when one is carried in the context; the relay reads Pending entries and
// marks them published once a sink has accepted them.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	Pending(ctx context.Context, limit int) ([]Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}
