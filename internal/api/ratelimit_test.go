package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterPerUser(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(10, 3)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		ok, _ := limiter.Allow("u1")
		assert.True(t, ok, "burst request %d", i)
	}
	ok, wait := limiter.Allow("u1")
	assert.False(t, ok)
	assert.Equal(t, 100*time.Millisecond, wait)

	// another user has its own bucket
	ok, _ = limiter.Allow("u2")
	assert.True(t, ok)

	now = now.Add(100 * time.Millisecond)
	ok, _ = limiter.Allow("u1")
	assert.True(t, ok, "refilled one token")
}

func TestRateLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, 1)
	limiter.now = func() time.Time { return now }

	limiter.Allow("u1")
	limiter.Allow("u2")
	assert.Equal(t, 2, limiter.Len())

	now = now.Add(limiter.idle)
	limiter.Allow("u3")
	assert.Equal(t, 1, limiter.Len())
}

func TestAuthenticatorRoundTrip(t *testing.T) {
	a := NewAuthenticator("k")
	tok, err := a.IssueToken("user-42", time.Minute)
	assert.NoError(t, err)

	userID, err := a.ParseToken(tok)
	assert.NoError(t, err)
	assert.Equal(t, "user-42", userID)

	_, err = a.IssueToken("", time.Minute)
	assert.Error(t, err)
}
