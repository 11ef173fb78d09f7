package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	audit "romportal/pkg/platform/audit"
)

const (
	defaultInterval  = 2 * time.Second
	defaultBatchSize = 100
)

// Sink receives outbox entries. A nil error means every entry in the batch
// was durably accepted.
type Sink interface {
	Publish(ctx context.Context, entries []audit.Entry) error
}

// Relay drains the audit outbox into a Sink on a fixed interval. Entries are
// marked published only after the sink accepts the batch, so delivery is at
// least once.
type Relay struct {
	store     audit.Store
	sink      Sink
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	published prometheus.Counter
	failures  prometheus.Counter
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// WithCounters records published entries and failed batches.
func WithCounters(published, failures prometheus.Counter) Option {
	return func(r *Relay) {
		r.published = published
		r.failures = failures
	}
}

func NewRelay(store audit.Store, sink Sink, opts ...Option) *Relay {
	r := &Relay{
		store:     store,
		sink:      sink,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays until ctx is cancelled. Batch failures are logged and retried
// on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
				r.logger.WarnContext(ctx, "audit relay batch failed", "error", err)
				if r.failures != nil {
					r.failures.Inc()
				}
			}
		}
	}
}

// Flush relays one batch and returns how many entries were published.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	entries, err := r.store.Pending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := r.sink.Publish(ctx, entries); err != nil {
		return 0, err
	}

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := r.store.MarkPublished(ctx, ids, time.Now()); err != nil {
		return 0, err
	}
	if r.published != nil {
		r.published.Add(float64(len(entries)))
	}
	return len(entries), nil
}

// LogSink writes entries to a logger. It stands in for Kafka when no
// brokers are configured.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Publish(ctx context.Context, entries []audit.Entry) error {
	for _, e := range entries {
		s.Logger.InfoContext(ctx, "audit event relayed",
			"outbox_id", e.ID.String(),
			"action", string(e.Action),
		)
	}
	return nil
}
