package middleware

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(time.Hour, 2)

	assert.True(t, rl.Allow("cust"))
	assert.True(t, rl.Allow("cust"))
	assert.False(t, rl.Allow("cust"))
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(time.Hour, 1)

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiterKeyMapIsBounded(t *testing.T) {
	rl := NewRateLimiter(time.Hour, 1)

	for i := 0; i < maxKeys+10; i++ {
		rl.Allow(fmt.Sprintf("key-%d", i))
	}

	rl.mu.Lock()
	size := len(rl.limits)
	rl.mu.Unlock()
	assert.LessOrEqual(t, size, maxKeys)
	assert.Greater(t, size, 0)
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(10*time.Millisecond, 1)

	assert.True(t, rl.Allow("cust"))
	assert.False(t, rl.Allow("cust"))

	time.Sleep(15 * time.Millisecond)
	assert.True(t, rl.Allow("cust"))
}
