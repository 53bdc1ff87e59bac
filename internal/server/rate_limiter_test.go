package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(burst int, interval time.Duration) (*rateLimiter, *time.Time) {
	clock := time.Unix(1700000000, 0)
	rl := newRateLimiter(RateLimitConfig{Burst: burst, RefillInterval: interval})
	rl.now = func() time.Time { return clock }
	rl.lastCheck = clock
	return rl, &clock
}

func TestRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	rl, _ := newTestLimiter(3, time.Second)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow(), "frame %d", i)
	}
	assert.False(t, rl.allow())
}

func TestRateLimiterRefills(t *testing.T) {
	rl, clock := newTestLimiter(2, time.Second)
	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())

	*clock = clock.Add(500 * time.Millisecond)
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())

	*clock = clock.Add(time.Hour)
	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow(), "refill is capped at the burst size")
}

func TestRateLimiterSanitizesConfig(t *testing.T) {
	rl, _ := newTestLimiter(0, 0)
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())
}
