package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterSpacesSameHost(t *testing.T) {
	rl := NewRateLimiter(50)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, rl.Wait(ctx, "shop.example"))
	require.NoError(t, rl.Wait(ctx, "shop.example"))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRateLimiterHostsAreIndependent(t *testing.T) {
	rl := NewRateLimiter(10_000)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, rl.Wait(ctx, "a.example"))
	require.NoError(t, rl.Wait(ctx, "b.example"))
}

func TestRateLimiterZeroDelay(t *testing.T) {
	rl := NewRateLimiter(0)
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, rl.Wait(ctx, "shop.example"))
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	rl := NewRateLimiter(10_000)
	require.NoError(t, rl.Wait(context.Background(), "shop.example"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx, "shop.example"))
}
