package revocation

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "romportal:revoked:"

// RedisTRL shares revocations across portal instances. Each JTI is one key
// whose Redis TTL matches the token's remaining lifetime.
type RedisTRL struct {
	client  redis.UniversalClient
	prefix  string
	latency prometheus.Observer
}

type RedisOption func(*RedisTRL)

func WithKeyPrefix(prefix string) RedisOption {
	return func(t *RedisTRL) {
		if prefix != "" {
			t.prefix = prefix
		}
	}
}

// WithLatencyObserver records IsRevoked round trips in seconds.
func WithLatencyObserver(o prometheus.Observer) RedisOption {
	return func(t *RedisTRL) {
		t.latency = o
	}
}

// NewLatencyHistogram registers the lookup histogram on reg.
func NewLatencyHistogram(reg prometheus.Registerer) prometheus.Histogram {
	return promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
		Name:    "romportal_token_revocation_lookup_seconds",
		Help:    "Latency of Redis token revocation lookups",
		Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025},
	})
}

func NewRedisTRL(client redis.UniversalClient, opts ...RedisOption) *RedisTRL {
	t := &RedisTRL{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *RedisTRL) key(jti string) string {
	return t.prefix + jti
}

func (t *RedisTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	return t.client.Set(ctx, t.key(jti), time.Now().Add(ttl).Unix(), ttl).Err()
}

func (t *RedisTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	if t.latency != nil {
		defer func(start time.Time) { t.latency.Observe(time.Since(start).Seconds()) }(time.Now())
	}
	n, err := t.client.Exists(ctx, t.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
