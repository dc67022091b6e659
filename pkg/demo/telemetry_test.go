//nolint:funlen // ok for tests
package demo

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"

	"github.com/fevtel/evdash-service-go/pkg/model"
)

func TestTelemetryKind(t *testing.T) {
	assert.Equal(t, "telemetry", NewTelemetry(1).Kind())
}

func TestTelemetryDeterministic(t *testing.T) {
	a := NewTelemetry(42)
	b := NewTelemetry(42)
	for range 3 {
		fa := a.Tick(nil, time.Second)
		fb := b.Tick(nil, time.Second)
		diff := cmp.Diff(fa, fb, cmpopts.IgnoreFields(model.TelemetrySnapshot{}, "Timestamp"))
		assert.Empty(t, diff, "same seed must produce the same frames")
	}
}

func TestTelemetryBounds(t *testing.T) {
	g := NewTelemetry(7)
	prevPos := -1.0
	for range 50 {
		f := g.Tick(nil, time.Second)

		assert.GreaterOrEqual(t, f.Driver.HeartRate, 60)
		assert.LessOrEqual(t, f.Driver.HeartRate, 180)
		assert.GreaterOrEqual(t, f.Driver.Stress, 0.0)
		assert.LessOrEqual(t, f.Driver.Stress, 1.0)

		assert.Len(t, f.Biosignals.ECG.Waveform, 100)
		assert.Len(t, f.EEG.Waveform, 100)
		assert.Equal(t, f.Driver.HeartRate, f.Biosignals.ECG.HeartRate)

		assert.GreaterOrEqual(t, f.Sync.CarPosition, 0.0)
		assert.Less(t, f.Sync.CarPosition, 1.0)
		assert.NotEqual(t, prevPos, f.Sync.CarPosition, "car must keep moving")
		prevPos = f.Sync.CarPosition

		assert.Contains(t, []string{"Optimal", "Caution"}, f.Sync.MTeslaPrediction)
		assert.Equal(t, "SILVERSTONE", f.Sync.Circuit)
		assert.Equal(t, "LIVE", f.Sync.Status)

		emo := f.Emotional
		for name, v := range map[string]float64{
			"stress":      emo.Stress,
			"focus":       emo.Focus,
			"fatigue":     emo.Fatigue,
			"alertness":   emo.Alertness,
			"anxiety":     emo.Anxiety,
			"confidence":  emo.Confidence,
			"frustration": emo.Frustration,
			"flowState":   emo.FlowState,
			"readiness":   emo.OverallReadiness,
			"safetyRisk":  emo.SafetyRisk,
		} {
			assert.GreaterOrEqualf(t, v, 0.0, "%s below range", name)
			assert.LessOrEqualf(t, v, 1.0, "%s above range", name)
		}
	}
}

func TestTelemetryECGHasRPeak(t *testing.T) {
	g := NewTelemetry(3)
	f := g.Tick(nil, time.Second)
	peak := 0.0
	for _, v := range f.Biosignals.ECG.Waveform {
		if v > peak {
			peak = v
		}
	}
	assert.Greater(t, peak, 0.4, "R spike missing from the PQRST waveform")
}

func TestTelemetryCarPositionRate(t *testing.T) {
	g := NewTelemetry(9)
	first := g.Tick(nil, time.Second).Sync.CarPosition
	second := g.Tick(nil, time.Second).Sync.CarPosition
	assert.InDelta(t, 0.03, second-first, 1e-9, "one second advances the car 0.03 laps")
}
