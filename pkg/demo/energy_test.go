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

func TestEnergyIdleState(t *testing.T) {
	g := NewEnergy(1)
	f := g.Tick(nil, 1500*time.Millisecond)

	assert.False(t, f.IsCharging)
	assert.Equal(t, "none", f.ChargingMode)
	assert.Equal(t, "Open", f.Contactors.PackPositive)
	assert.Equal(t, "Open", f.Contactors.FastChargePositive)
	assert.Equal(t, "open", f.Contactors.Status)
	assert.Equal(t, "Idle", f.PCS.Mode)
	assert.Equal(t, "offline", f.PCS.Status)
	assert.Equal(t, 12.0, f.CPL.CPVoltage)
	assert.False(t, f.CPL.Connected)
	assert.InDelta(t, 0, f.HVBattery.PackCurrent, 5.0, "only auxiliary loads while idle")
	assert.GreaterOrEqual(t, f.HVBattery.RMSVoltage, 390.0)
	assert.LessOrEqual(t, f.HVBattery.RMSVoltage, 405.0)
}

func TestEnergyDCFastSession(t *testing.T) {
	g := NewEnergy(2)
	g.StartCharging("dc_fast")

	f := g.Tick(nil, 1500*time.Millisecond)
	assert.True(t, f.IsCharging)
	assert.Equal(t, "dc_fast", f.ChargingMode)
	assert.Equal(t, "Closed", f.Contactors.FastChargePositive)
	assert.Equal(t, "Closed", f.Contactors.FastChargeNegative)
	assert.Equal(t, "Open", f.Contactors.PackPositive, "DC path bypasses the pack contactors")
	assert.Equal(t, "Closed", f.Contactors.Precharge)
	assert.Equal(t, "DC Fast Charge", f.PCS.Mode)
	assert.Equal(t, "active", f.PCS.Status)
	assert.Equal(t, "Latched", f.ChargePort.CableState)
	assert.Equal(t, "Engaged", f.ChargePort.LatchState)
	assert.Equal(t, 100.0, f.CPL.PilotSignal)
	assert.Equal(t, 6.0, f.CPL.CPVoltage)
	assert.Greater(t, f.PCS.PowerKW, 50.0)
	assert.Greater(t, f.HVBattery.PackCurrent, 100.0)
	assert.GreaterOrEqual(t, f.ChargePort.InletVoltage, 400.0)
	assert.LessOrEqual(t, f.ChargePort.InletVoltage, 450.0)

	soc := f.HVBattery.SOC
	for range 5 {
		f = g.Tick(nil, 1500*time.Millisecond)
		assert.GreaterOrEqual(t, f.HVBattery.SOC, soc, "state of charge must not drop mid-session")
		soc = f.HVBattery.SOC
	}
}

func TestEnergyACSession(t *testing.T) {
	g := NewEnergy(3)
	g.StartCharging("ac")

	f := g.Tick(nil, 1500*time.Millisecond)
	assert.Equal(t, "AC Charging", f.PCS.Mode)
	assert.Equal(t, "Closed", f.Contactors.PackPositive)
	assert.Equal(t, "Closed", f.Contactors.PackNegative)
	assert.Equal(t, "Open", f.Contactors.FastChargePositive)
	assert.InDelta(t, 11, f.PCS.PowerKW, 1.01)
	assert.GreaterOrEqual(t, f.ChargePort.InletVoltage, 225.0)
	assert.LessOrEqual(t, f.ChargePort.InletVoltage, 235.0)
}

func TestEnergyStopsAtTarget(t *testing.T) {
	g := NewEnergy(4)
	g.SetTargetSOC(78.5)
	g.StartCharging("dc_fast")

	var f model.ChargingState
	for range 10 {
		f = g.Tick(nil, 30*time.Second)
		if !f.IsCharging {
			break
		}
	}

	require.False(t, f.IsCharging, "session must end once the target is reached")
	assert.Equal(t, "none", f.ChargingMode)
	assert.Equal(t, "Open", f.Contactors.FastChargePositive)
	assert.Equal(t, "Disconnected", f.ChargePort.CableState)
	assert.Equal(t, 12.0, f.CPL.CPVoltage)
	assert.GreaterOrEqual(t, f.HVBattery.SOC, 78.5)
}

func TestEnergyECUReset(t *testing.T) {
	g := NewEnergy(5)
	g.StartCharging("dc_fast")
	g.ECUReset()

	f := g.Tick(nil, time.Second)
	assert.False(t, f.IsCharging)
	assert.Equal(t, "OK", f.HVBattery.HVILStatus)
	assert.Equal(t, "Open", f.ChargePort.LatchState)
	assert.Equal(t, "open", f.Contactors.Status)
}

func TestEnergyDeterministic(t *testing.T) {
	a := NewEnergy(42)
	b := NewEnergy(42)
	a.StartCharging("dc_fast")
	b.StartCharging("dc_fast")
	for range 4 {
		fa := a.Tick(nil, 1500*time.Millisecond)
		fb := b.Tick(nil, 1500*time.Millisecond)
		diff := cmp.Diff(fa, fb, cmpopts.IgnoreFields(model.ChargingState{}, "Timestamp"))
		assert.Empty(t, diff, "same seed must produce the same frames")
	}
}
