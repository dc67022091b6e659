package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registryPayload struct {
	N int `json:"n"`
}

func testSupervisor(t *testing.T, name string) *Supervisor[registryPayload] {
	t.Helper()
	s, err := NewSupervisor(Config[registryPayload]{
		Name:     name,
		Endpoint: StaticEndpoint("ws://localhost:1/ws"),
		Demo: DemoFunc[registryPayload](func(*registryPayload, time.Duration) registryPayload {
			return registryPayload{}
		}),
	})
	require.NoError(t, err)
	return s
}

func TestRegistryGetOrCreate(t *testing.T) {
	r := NewRegistry[registryPayload]()
	created := 0
	create := func() (*Supervisor[registryPayload], error) {
		created++
		return testSupervisor(t, "telemetry"), nil
	}

	first, err := r.GetOrCreate("telemetry", create)
	require.NoError(t, err)
	second, err := r.GetOrCreate("telemetry", create)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, created)
}

func TestRegistryGetAndRemove(t *testing.T) {
	r := NewRegistry[registryPayload]()
	_, ok := r.Get("vehicle")
	assert.False(t, ok)

	s := testSupervisor(t, "vehicle")
	_, err := r.GetOrCreate("vehicle", func() (*Supervisor[registryPayload], error) {
		return s, nil
	})
	require.NoError(t, err)

	got, ok := r.Get("vehicle")
	assert.True(t, ok)
	assert.Same(t, s, got)

	r.Remove("vehicle")
	_, ok = r.Get("vehicle")
	assert.False(t, ok)
}

func TestRegistryNamesAndStatuses(t *testing.T) {
	r := NewRegistry[registryPayload]()
	for _, name := range []string{"vehicle", "adas", "telemetry"} {
		s := testSupervisor(t, name)
		_, err := r.GetOrCreate(name, func() (*Supervisor[registryPayload], error) {
			return s, nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"adas", "telemetry", "vehicle"}, r.Names())

	statuses := r.Statuses()
	require.Len(t, statuses, 3)
	for i, name := range []string{"adas", "telemetry", "vehicle"} {
		assert.Equal(t, name, statuses[i].Channel)
		assert.Equal(t, StateIdle, statuses[i].State)
	}
}
