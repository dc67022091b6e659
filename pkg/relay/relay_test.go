package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "telemetry.vehicle", subject("vehicle"))
	assert.Equal(t, "telemetry.adas", subject("adas"))
}

func TestNopRelay(t *testing.T) {
	var r Relay = Nop{}
	assert.NoError(t, r.Publish("telemetry", []byte(`{}`)))
	r.Close()
}
