package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelSpecs(t *testing.T) {
	require.Len(t, channelSpecs, 4)
	assert.Equal(t, "/ws", channelSpecs["telemetry"].path)
	assert.Equal(t, "/ws/vehicle", channelSpecs["vehicle"].path)
	assert.Equal(t, "/ws/energy", channelSpecs["energy"].path)
	assert.Equal(t, "/ws/adas", channelSpecs["adas"].path)
	assert.Equal(t, "$.telemetrySync.carPosition", channelSpecs["telemetry"].progressPath)
	assert.Equal(t, "$.lap.progress", channelSpecs["vehicle"].progressPath)
	assert.Empty(t, channelSpecs["energy"].progressPath)
	assert.Empty(t, channelSpecs["adas"].progressPath)
}

func TestDemoSourceProgressExtraction(t *testing.T) {
	for _, name := range []string{"telemetry", "vehicle"} {
		t.Run(name, func(t *testing.T) {
			spec := channelSpecs[name]
			src := spec.demo(42)
			payload := src.Tick(nil, time.Second)
			require.IsType(t, map[string]any{}, payload)

			expr, err := jp.ParseString(spec.progressPath)
			require.NoError(t, err)
			res := expr.Get(payload)
			require.NotEmpty(t, res, "progress missing from demo frame")
			progress, ok := asFloat(res[0])
			require.Truef(t, ok, "progress is %T", res[0])
			assert.GreaterOrEqual(t, progress, 0.0)
			assert.Less(t, progress, 1.0)
		})
	}
}

func TestDemoSourceKeepsState(t *testing.T) {
	src := channelSpecs["telemetry"].demo(7)
	expr, err := jp.ParseString("$.telemetrySync.carPosition")
	require.NoError(t, err)

	res := expr.Get(src.Tick(nil, time.Second))
	require.NotEmpty(t, res)
	first, ok := asFloat(res[0])
	require.True(t, ok)

	res = expr.Get(src.Tick(nil, time.Second))
	require.NotEmpty(t, res)
	second, ok := asFloat(res[0])
	require.True(t, ok)

	assert.InDelta(t, 0.03, second-first, 1e-9, "one second advances the car 0.03 laps")
}

func TestLoadChannelsConfig(t *testing.T) {
	empty, err := loadChannelsConfig("")
	require.NoError(t, err)
	assert.Empty(t, empty.Channels)

	path := filepath.Join(t.TempDir(), "channels.yml")
	content := `channels:
  vehicle:
    url: wss://live.example.com
    demoInterval: 250ms
    reconnectMax: 10s
  telemetry:
    progressPath: $.sync.pos
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := loadChannelsConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Channels, 2)
	assert.Equal(t, "wss://live.example.com", cfg.Channels["vehicle"].URL)
	assert.Equal(t, "250ms", cfg.Channels["vehicle"].DemoInterval)
	assert.Equal(t, "10s", cfg.Channels["vehicle"].ReconnectMax)
	assert.Equal(t, "$.sync.pos", cfg.Channels["telemetry"].ProgressPath)

	_, err = loadChannelsConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
}

func TestAsFloat(t *testing.T) {
	got, ok := asFloat(float64(0.25))
	assert.True(t, ok)
	assert.InDelta(t, 0.25, got, 1e-12)

	got, ok = asFloat(int64(1))
	assert.True(t, ok)
	assert.InDelta(t, 1.0, got, 1e-12)

	_, ok = asFloat("0.25")
	assert.False(t, ok)
}
