//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "romportal/pkg/platform/audit"
	"romportal/pkg/testutil/containers"
)

func TestProducerPublishesOutboxEntries(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	broker := containers.GetManager().GetRedpanda(t).Broker
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	const topic = "romportal.audit.test"
	producer, err := NewProducer([]string{broker}, topic)
	require.NoError(t, err)
	defer producer.Close()

	require.NoError(t, producer.EnsureTopic(ctx, 1, 1))
	require.NoError(t, producer.EnsureTopic(ctx, 1, 1), "existing topic is not an error")

	issued, err := audit.NewEntry(audit.Event{
		Timestamp: time.Date(2026, 3, 27, 9, 0, 0, 0, time.UTC),
		Action:    audit.ActionCertificateIssued,
		Subject:   "RMMO-26J03D27C01",
	})
	require.NoError(t, err)
	deleted, err := audit.NewEntry(audit.Event{
		Timestamp: time.Date(2026, 3, 27, 9, 5, 0, 0, time.UTC),
		Action:    audit.ActionCertificateDeleted,
		Subject:   "RMMO-2019-045",
	})
	require.NoError(t, err)
	require.NoError(t, producer.Publish(ctx, []audit.Entry{issued, deleted}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	var records []*kgo.Record
	for len(records) < 2 {
		fetches := consumer.PollFetches(ctx)
		require.NoError(t, ctx.Err(), "timed out waiting for audit records")
		fetches.EachRecord(func(r *kgo.Record) { records = append(records, r) })
	}

	assert.Equal(t, string(audit.ActionCertificateIssued), string(records[0].Key))
	assert.Equal(t, string(audit.ActionCertificateDeleted), string(records[1].Key))
	require.Len(t, records[0].Headers, 1)
	assert.Equal(t, "outbox_id", records[0].Headers[0].Key)
	assert.Equal(t, issued.ID.String(), string(records[0].Headers[0].Value))

	event, err := (audit.Entry{Payload: records[1].Value}).Decode()
	require.NoError(t, err)
	assert.Equal(t, "RMMO-2019-045", event.Subject)
}
