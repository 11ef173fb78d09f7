package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"romportal/internal/certificate/models"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	hit := &models.VerificationResult{
		Found:       true,
		IsModern:    true,
		Certificate: &models.Certificate{ID: 1, CertNumber: "RMMO-26J03D27C01", IssuedTo: "JUAN DELA CRUZ"},
	}

	t.Run("returns stored results until they expire", func(t *testing.T) {
		c := NewMemory(time.Minute)
		now := time.Date(2026, 3, 27, 10, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return now }

		require.NoError(t, c.Set(ctx, "RMMO-26J03D27C01", hit))
		got, ok, err := c.Get(ctx, "RMMO-26J03D27C01")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "JUAN DELA CRUZ", got.Certificate.IssuedTo)

		now = now.Add(time.Minute)
		_, ok, err = c.Get(ctx, "RMMO-26J03D27C01")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("caches misses", func(t *testing.T) {
		c := NewMemory(time.Minute)
		require.NoError(t, c.Set(ctx, "RMMO-NOPE", &models.VerificationResult{Found: false}))
		got, ok, err := c.Get(ctx, "RMMO-NOPE")
		require.NoError(t, err)
		require.True(t, ok)
		assert.False(t, got.Found)
	})

	t.Run("invalidate drops entries", func(t *testing.T) {
		c := NewMemory(time.Minute)
		require.NoError(t, c.Set(ctx, "A", hit))
		require.NoError(t, c.Set(ctx, "B", hit))
		require.NoError(t, c.Invalidate(ctx, "A", "missing"))

		_, ok, _ := c.Get(ctx, "A")
		assert.False(t, ok)
		_, ok, _ = c.Get(ctx, "B")
		assert.True(t, ok)
	})

	t.Run("callers cannot mutate cached entries", func(t *testing.T) {
		c := NewMemory(time.Minute)
		require.NoError(t, c.Set(ctx, "A", hit))
		got, _, _ := c.Get(ctx, "A")
		got.Certificate.IssuedTo = "CHANGED"

		again, _, _ := c.Get(ctx, "A")
		assert.Equal(t, "JUAN DELA CRUZ", again.Certificate.IssuedTo)
	})
}
