package web

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fevtel/evdash-service-go/log"
	"github.com/fevtel/evdash-service-go/pkg/relay"
)

func TestHubEmitsFrames(t *testing.T) {
	n := 0
	tick := func(time.Duration) ([]byte, error) {
		n++
		return fmt.Appendf(nil, `{"n":%d}`, n), nil
	}
	h := newHub("test", 20*time.Millisecond, tick, relay.Nop{}, log.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := h.bcst.Subscribe()
	h.start(ctx)

	var frames []string
	timeout := time.After(2 * time.Second)
	for len(frames) < 3 {
		select {
		case data := <-sub:
			frames = append(frames, string(data))
		case <-timeout:
			t.Fatal("no frames within deadline")
		}
	}
	assert.Contains(t, frames[0], `"n":`)
	assert.NotNil(t, h.Latest())

	h.stop()
	for range sub { // drain in-flight frames until the close
	}
}

func TestHubDoSerializesWithTicks(t *testing.T) {
	calls := 0
	tick := func(time.Duration) ([]byte, error) {
		calls++
		return []byte(`{}`), nil
	}
	h := newHub("test", 10*time.Millisecond, tick, relay.Nop{}, log.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.start(ctx)

	done := make(chan struct{})
	h.Do(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Do did not run")
	}
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return calls >= 2
	}, 2*time.Second, 10*time.Millisecond)
	h.stop()
}
