package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fevtel/evdash-service-go/testsupport/wsserver"
)

func scriptedConfig(url string) Config[supPayload] {
	return Config[supPayload]{
		Name:     "scripted",
		Endpoint: StaticEndpoint(url),
		Dialer:   &WebsocketDialer{},
		Demo: DemoFunc[supPayload](func(prev *supPayload, _ time.Duration) supPayload {
			if prev == nil {
				return supPayload{N: 1000}
			}
			return supPayload{N: prev.N + 1}
		}),
		DemoInterval:   10 * time.Millisecond,
		ConnectTimeout: 2 * time.Second,
		Backoff:        Backoff{Base: 10 * time.Millisecond, Max: 40 * time.Millisecond},
	}
}

func TestSupervisorAgainstScriptedBackend(t *testing.T) {
	srv := wsserver.New(
		wsserver.SendFrames(`{"n":1}`),
		wsserver.SendAndHold(`{"n":2}`),
	)
	t.Cleanup(srv.Close)

	s, err := NewSupervisor(scriptedConfig(srv.URL()))
	require.NoError(t, err)

	sub := s.Subscribe()
	defer sub.Cancel()

	u := waitForPayload(t, sub, func(p supPayload) bool { return p.N == 1 })
	assert.False(t, u.Status.Demo)
	assert.Equal(t, srv.URL(), u.Status.Endpoint)

	// the first script closes after its frame, the supervisor reconnects
	// and picks up the second script
	u = waitForPayload(t, sub, func(p supPayload) bool { return p.N == 2 })
	assert.Equal(t, StateOpen, u.Status.State)
	assert.False(t, u.Status.Demo)
	assert.GreaterOrEqual(t, srv.Connections(), 2)
}

func TestSupervisorDemoFunnelAgainstDeadBackend(t *testing.T) {
	srv := wsserver.New(wsserver.Idle())
	url := srv.URL()
	srv.Close()

	cfg := scriptedConfig(url)
	cfg.ConnectTimeout = 60 * time.Millisecond
	s, err := NewSupervisor(cfg)
	require.NoError(t, err)

	sub := s.Subscribe()
	defer sub.Cancel()

	u := waitForState(t, sub, StateDemo)
	assert.True(t, u.Status.Demo)
	u = firstPayload(t, sub)
	assert.GreaterOrEqual(t, u.Payload.N, 1000)
}
