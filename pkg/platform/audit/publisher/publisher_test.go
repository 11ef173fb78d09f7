package publisher

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "romportal/pkg/platform/audit"
	"romportal/pkg/platform/audit/store/memory"
	"romportal/pkg/requestcontext"
)

func TestPublisher_Emit(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	actor := uuid.New()
	now := time.Date(2026, 3, 27, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithUserID(ctx, actor)

	err := pub.Emit(ctx, audit.Event{
		Action:  audit.ActionCertificateIssued,
		Subject: "RMMO-26J03D27C01",
		Details: map[string]string{"cohort": "modern"},
	})
	require.NoError(t, err)

	entries := store.All()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionCertificateIssued, entries[0].Action)
	assert.Nil(t, entries[0].PublishedAt)

	event, err := entries[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, "req-1", event.RequestID)
	assert.Equal(t, actor.String(), event.ActorID)
	assert.True(t, now.Equal(event.Timestamp))
	assert.Equal(t, "modern", event.Details["cohort"])
}

func TestPublisher_KeepsExplicitActor(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	ctx := requestcontext.WithUserID(context.Background(), uuid.New())
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: audit.ActionAdminCreated, ActorID: "cli"}))

	event, err := store.All()[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, "cli", event.ActorID)
}
