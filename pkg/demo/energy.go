package demo

import (
	"math"
	"math/rand"
	"time"

	"github.com/fevtel/evdash-service-go/pkg/model"
)

// Energy simulates the charging system ECUs. The generator starts idle;
// StartCharging latches the port and ramps state of charge toward the
// target, StopCharging (or reaching the target) returns everything to
// the idle configuration.
type Energy struct {
	rnd *rand.Rand

	state     model.ChargingState
	targetSOC float64
}

func NewEnergy(seed int64) *Energy {
	return &Energy{
		rnd:       rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic demo data
		targetSOC: 80.0,
		state: model.ChargingState{
			HVBattery: model.HVBatteryState{
				RMSVoltage:          395.0,
				MinCellTemp:         28.0,
				MaxCellTemp:         32.0,
				HVILStatus:          "OK",
				SOC:                 78.0,
				IsolationResistance: 500.0,
				Status:              "optimal",
			},
			ChargePort: model.ChargePort{
				CableState:       "Disconnected",
				LatchState:       "Open",
				BackCoverPresent: true,
				ACPinTemp:        25.0,
				DCPinTemp:        25.0,
				Status:           "idle",
			},
			Contactors: model.Contactors{
				PackPositive:       "Open",
				PackNegative:       "Open",
				FastChargePositive: "Open",
				FastChargeNegative: "Open",
				Precharge:          "Open",
				Status:             "open",
			},
			PCS:          model.PCSState{Mode: "Idle", Status: "offline"},
			CPL:          model.CPLState{CPVoltage: 12.0},
			ChargingMode: "none",
		},
	}
}

func (g *Energy) Kind() string { return "energy" }

// SetTargetSOC changes the charge-to level, default 80%.
func (g *Energy) SetTargetSOC(soc float64) {
	g.targetSOC = clampf(soc, 0, 100)
}

// StartCharging opens a session. Mode is "dc_fast" or "ac".
func (g *Energy) StartCharging(mode string) {
	s := &g.state
	s.IsCharging = true
	s.ChargingMode = mode

	s.ChargePort.CableState = "Latched"
	s.ChargePort.LatchState = "Engaged"
	s.ChargePort.Status = "charging"

	s.CPL.Connected = true
	s.CPL.ProximityDetected = true
	s.CPL.PilotSignal = 100.0
	s.CPL.CPVoltage = 6.0

	if mode == "dc_fast" {
		s.Contactors.FastChargePositive = "Closed"
		s.Contactors.FastChargeNegative = "Closed"
		s.PCS.Mode = "DC Fast Charge"
	} else {
		s.Contactors.PackPositive = "Closed"
		s.Contactors.PackNegative = "Closed"
		s.PCS.Mode = "AC Charging"
	}
	s.PCS.Status = "active"
	s.Contactors.Precharge = "Closed"
	s.Contactors.Status = "closed"
}

// StopCharging ends the session and reopens all contactors.
func (g *Energy) StopCharging() {
	s := &g.state
	s.IsCharging = false
	s.ChargingMode = "none"

	s.ChargePort.CableState = "Disconnected"
	s.ChargePort.LatchState = "Open"
	s.ChargePort.Status = "idle"

	s.CPL.Connected = false
	s.CPL.ProximityDetected = false
	s.CPL.PilotSignal = 0.0
	s.CPL.CPVoltage = 12.0

	s.Contactors.PackPositive = "Open"
	s.Contactors.PackNegative = "Open"
	s.Contactors.FastChargePositive = "Open"
	s.Contactors.FastChargeNegative = "Open"
	s.Contactors.Precharge = "Open"
	s.Contactors.Status = "open"

	s.PCS.Mode = "Idle"
	s.PCS.PowerKW = 0
	s.PCS.Status = "offline"
}

// ECUReset simulates a charge port ECU reset.
func (g *Energy) ECUReset() {
	g.StopCharging()
	g.state.HVBattery.HVILStatus = "OK"
	g.state.ChargePort.LatchState = "Open"
}

func (g *Energy) Tick(_ *model.ChargingState, elapsed time.Duration) model.ChargingState {
	dt := elapsed.Seconds()
	s := &g.state

	s.HVBattery.MinCellTemp = 26 + g.uniform(0, 4)
	s.HVBattery.MaxCellTemp = s.HVBattery.MinCellTemp + 2 + g.uniform(0, 3)
	s.HVBattery.RMSVoltage = 390 + g.uniform(0, 15)

	if s.IsCharging {
		if s.ChargingMode == "dc_fast" {
			s.PCS.PowerKW = 150 - (s.HVBattery.SOC/100)*80 + g.uniform(-5, 5)
			s.PCS.Efficiency = 94 + g.uniform(0, 4)
			s.ChargePort.InletVoltage = 400 + g.uniform(0, 50)
		} else {
			s.PCS.PowerKW = 11 + g.uniform(-1, 1)
			s.PCS.Efficiency = 92 + g.uniform(0, 3)
			s.ChargePort.InletVoltage = 230 + g.uniform(-5, 5)
		}

		chargeRate := s.PCS.PowerKW / (75 * 60) // 75 kWh pack
		s.HVBattery.SOC = math.Min(100, s.HVBattery.SOC+chargeRate*dt)

		s.ChargePort.ACPinTemp = 35 + g.uniform(0, 10)
		s.ChargePort.DCPinTemp = 40 + g.uniform(0, 15)
		s.HVBattery.PackCurrent = s.PCS.PowerKW * 1000 / s.HVBattery.RMSVoltage

		if s.HVBattery.SOC >= g.targetSOC {
			g.StopCharging()
		}
	} else {
		s.ChargePort.ACPinTemp = 25 + g.uniform(0, 5)
		s.ChargePort.DCPinTemp = 25 + g.uniform(0, 5)
		s.HVBattery.PackCurrent = g.uniform(-5, 5) // auxiliary loads
	}

	switch {
	case s.HVBattery.MaxCellTemp > 55:
		s.HVBattery.Status = "critical"
	case s.HVBattery.MaxCellTemp > 45:
		s.HVBattery.Status = "warning"
	default:
		s.HVBattery.Status = "optimal"
	}

	out := g.state
	out.Timestamp = isoNow()
	out.HVBattery.RMSVoltage = roundTo(out.HVBattery.RMSVoltage, 1)
	out.HVBattery.MinCellTemp = roundTo(out.HVBattery.MinCellTemp, 1)
	out.HVBattery.MaxCellTemp = roundTo(out.HVBattery.MaxCellTemp, 1)
	out.HVBattery.SOC = roundTo(out.HVBattery.SOC, 1)
	out.HVBattery.PackCurrent = roundTo(out.HVBattery.PackCurrent, 1)
	out.ChargePort.ACPinTemp = roundTo(out.ChargePort.ACPinTemp, 2)
	out.ChargePort.DCPinTemp = roundTo(out.ChargePort.DCPinTemp, 2)
	out.ChargePort.InletVoltage = roundTo(out.ChargePort.InletVoltage, 1)
	out.PCS.PowerKW = roundTo(out.PCS.PowerKW, 1)
	out.PCS.Efficiency = roundTo(out.PCS.Efficiency, 1)
	out.CPL.PilotSignal = math.Round(out.CPL.PilotSignal)
	out.CPL.CPVoltage = roundTo(out.CPL.CPVoltage, 1)
	return out
}

func (g *Energy) uniform(from, to float64) float64 {
	return from + (to-from)*g.rnd.Float64()
}
