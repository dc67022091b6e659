package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffSchedule(t *testing.T) {
	b := Backoff{Base: 500 * time.Millisecond, Max: 4 * time.Second}

	want := []time.Duration{
		500 * time.Millisecond,
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		4000 * time.Millisecond,
	}
	for attempt, expected := range want {
		assert.Equal(t, expected, b.Delay(attempt), "attempt %d", attempt)
	}
}

func TestBackoffCapAndMonotonic(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond, Max: 3 * time.Second}

	prev := time.Duration(0)
	for attempt := 0; attempt < 100; attempt++ {
		d := b.Delay(attempt)
		assert.LessOrEqual(t, d, b.Max, "attempt %d", attempt)
		assert.GreaterOrEqual(t, d, prev, "attempt %d", attempt)
		prev = d
	}
	assert.Equal(t, b.Max, b.Delay(99))
}

func TestBackoffDefaults(t *testing.T) {
	var b Backoff

	assert.Equal(t, DefaultReconnectBase, b.Delay(0))
	assert.Equal(t, DefaultReconnectMax, b.Delay(10))
}

func TestBackoffJitterBounds(t *testing.T) {
	b := Backoff{Base: 500 * time.Millisecond, Max: 4 * time.Second, Jitter: 0.2}

	for range 500 {
		d := b.Delay(1)
		assert.GreaterOrEqual(t, d, 800*time.Millisecond)
		assert.LessOrEqual(t, d, 1200*time.Millisecond)
	}
	// the cap holds even with jitter applied
	for range 500 {
		assert.LessOrEqual(t, b.Delay(10), b.Max)
	}
}

func TestBackoffJitterClamped(t *testing.T) {
	b := Backoff{Base: time.Second, Max: time.Minute, Jitter: 5.0}

	for range 500 {
		d := b.Delay(0)
		assert.GreaterOrEqual(t, d, 800*time.Millisecond)
		assert.LessOrEqual(t, d, 1200*time.Millisecond)
	}
}
