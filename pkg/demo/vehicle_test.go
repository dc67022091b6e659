//nolint:funlen // ok for tests
package demo

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fevtel/evdash-service-go/pkg/model"
)

func TestVehicleDeterministic(t *testing.T) {
	a := NewVehicle(42)
	b := NewVehicle(42)
	for range 5 {
		fa := a.Tick(nil, 100*time.Millisecond)
		fb := b.Tick(nil, 100*time.Millisecond)
		diff := cmp.Diff(fa, fb, cmpopts.IgnoreFields(model.VehicleFrame{}, "Timestamp"))
		assert.Empty(t, diff, "same seed must produce the same frames")
	}
}

func TestVehicleBounds(t *testing.T) {
	g := NewVehicle(1)
	for range 300 {
		f := g.Tick(nil, 100*time.Millisecond)

		assert.GreaterOrEqual(t, f.Motor.Temperature, 50.0)
		assert.LessOrEqual(t, f.Motor.Temperature, 95.0)

		assert.GreaterOrEqual(t, f.Battery.SOC, 5.0)
		assert.LessOrEqual(t, f.Battery.SOC, 100.0)
		assert.GreaterOrEqual(t, f.Battery.Voltage, 780.0)
		assert.LessOrEqual(t, f.Battery.Voltage, 900.0)
		assert.GreaterOrEqual(t, f.Battery.Temperature, 25.0)
		assert.LessOrEqual(t, f.Battery.Temperature, 55.0)

		for _, temp := range []float64{
			f.Brakes.FrontLeftTemp, f.Brakes.FrontRightTemp,
			f.Brakes.RearLeftTemp, f.Brakes.RearRightTemp,
		} {
			assert.GreaterOrEqual(t, temp, 150.0)
			assert.LessOrEqual(t, temp, 850.0)
		}

		for _, tire := range []model.TireState{
			f.Tires.FrontLeft, f.Tires.FrontRight, f.Tires.RearLeft, f.Tires.RearRight,
		} {
			assert.GreaterOrEqual(t, tire.Temp, 60.0)
			assert.LessOrEqual(t, tire.Temp, 125.0)
			assert.GreaterOrEqual(t, tire.Wear, 0.0)
			assert.LessOrEqual(t, tire.Wear, 100.0)
		}

		assert.GreaterOrEqual(t, f.Lap.Progress, 0.0)
		assert.Less(t, f.Lap.Progress, 1.0)
		assert.Contains(t, []string{"optimal", "warning", "critical"}, f.OverallStatus)

		assert.Equal(t, 96, f.Cells.CellCount)
		assert.GreaterOrEqual(t, f.Cells.MinCellVoltage, 3.2)
		assert.LessOrEqual(t, f.Cells.MaxCellVoltage, 4.2)
		assert.LessOrEqual(t, len(f.Cells.WeakCells), 5)
	}
}

func TestVehicleAttackMode(t *testing.T) {
	g := NewVehicle(2)
	require.True(t, g.ActivateAttackMode())
	assert.False(t, g.ActivateAttackMode(), "already active")

	f := g.Tick(nil, 100*time.Millisecond)
	assert.True(t, f.Energy.AttackModeActive)
	assert.Equal(t, 1, f.Energy.AttackModeActivations)
	assert.Greater(t, f.Energy.AttackModeRemaining, 200.0)
	assert.Equal(t, 7, f.PowerMap.MapID)
	assert.Equal(t, "ATTACK", f.PowerMap.Name)
	assert.Equal(t, "ATTACK", f.Motor.Mode)
	assert.Equal(t, 8, f.Motor.MapSetting)
	assert.Equal(t, 350.0, f.Battery.PowerLimit)

	// the boost expires after four minutes
	f = g.Tick(nil, 241*time.Second)
	assert.False(t, f.Energy.AttackModeActive)
	assert.Equal(t, "RACE", f.Motor.Mode)
	assert.Equal(t, 5, f.PowerMap.MapID)
	assert.Equal(t, 300.0, f.Battery.PowerLimit)

	require.True(t, g.ActivateAttackMode(), "second activation allowed")
	g.Tick(nil, 241*time.Second)
	assert.False(t, g.ActivateAttackMode(), "two activations per stint")
}

func TestVehicleSetters(t *testing.T) {
	g := NewVehicle(3)

	assert.False(t, g.SetPowerMap(0))
	assert.False(t, g.SetPowerMap(13))
	require.True(t, g.SetPowerMap(12))
	f := g.Tick(nil, 100*time.Millisecond)
	assert.Equal(t, "SAFETY", f.PowerMap.Name)
	assert.Equal(t, 150.0, f.PowerMap.PowerLimitKW)
	assert.False(t, f.PowerMap.TCEnabled)

	assert.False(t, g.SetRegenLevel(-1))
	assert.False(t, g.SetRegenLevel(11))
	require.True(t, g.SetRegenLevel(8))
	f = g.Tick(nil, 100*time.Millisecond)
	assert.Equal(t, 8, f.Energy.RegenLevel)
}

func TestVehicleLapCount(t *testing.T) {
	g := NewVehicle(4)
	var f model.VehicleFrame
	for range 350 {
		f = g.Tick(nil, 100*time.Millisecond)
	}
	assert.Equal(t, 2, f.Lap.Current, "one completed lap")
	assert.Equal(t, 1, f.Lap.Stint)
}

func TestVehiclePitStop(t *testing.T) {
	g := NewVehicle(5)
	var f model.VehicleFrame
	for range 350 {
		f = g.Tick(nil, 100*time.Millisecond)
	}
	require.Equal(t, 1, f.Lap.Stint)
	require.Less(t, f.Battery.SOC, 100.0)

	g.PitStop()
	f = g.Tick(nil, 100*time.Millisecond)
	assert.Greater(t, f.Battery.SOC, 99.0)
	assert.Greater(t, f.Tires.FrontLeft.Wear, 99.0)
	assert.Equal(t, 0, f.Lap.Stint)
	assert.Equal(t, 2, f.Lap.Current, "total laps survive the stop")
}
