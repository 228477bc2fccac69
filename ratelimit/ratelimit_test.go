package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowUpToLimit(t *testing.T) {
	l := New(3, time.Hour)

	assert.True(t, l.Allow("ana@example.com"))
	assert.True(t, l.Allow("ana@example.com"))
	assert.True(t, l.Allow("ana@example.com"))
	assert.False(t, l.Allow("ana@example.com"))
	assert.False(t, l.Allow("ana@example.com"))
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(1, time.Hour)

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
}

func TestWindowExpiryResetsCounter(t *testing.T) {
	l := New(3, time.Hour)
	current := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return current })

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("k"))
	}
	assert.False(t, l.Allow("k"))

	// Just past the one hour mark the full quota is available again.
	current = current.Add(time.Hour + time.Second)
	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
}

func TestRejectionDoesNotConsumeQuota(t *testing.T) {
	l := New(2, time.Hour)
	current := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return current })

	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	for i := 0; i < 10; i++ {
		assert.False(t, l.Allow("k"))
	}

	current = current.Add(2 * time.Hour)
	assert.True(t, l.Allow("k"))
}
