package demo

import (
	"math"
	"math/rand"
	"time"

	"github.com/samber/lo"

	"github.com/fevtel/evdash-service-go/pkg/model"
)

type trackZone struct {
	corner    bool
	length    float64 // lap-progress fraction
	maxSpeed  float64 // km/h
	direction float64 // -1 left, 0 straight, 1 right
}

// lapZones approximates the reference lap as alternating straights and
// corners; the lengths sum to 1.
var lapZones = []trackZone{
	{corner: false, length: 0.15, maxSpeed: 320, direction: 0},
	{corner: true, length: 0.08, maxSpeed: 180, direction: 1},
	{corner: false, length: 0.12, maxSpeed: 290, direction: 0},
	{corner: true, length: 0.10, maxSpeed: 200, direction: -1},
	{corner: true, length: 0.05, maxSpeed: 150, direction: 1},
	{corner: false, length: 0.18, maxSpeed: 340, direction: 0},
	{corner: true, length: 0.06, maxSpeed: 170, direction: -1},
	{corner: true, length: 0.08, maxSpeed: 190, direction: 1},
	{corner: false, length: 0.10, maxSpeed: 280, direction: 0},
	{corner: true, length: 0.08, maxSpeed: 160, direction: 1},
}

type powerMapPreset struct {
	name      string
	powerKW   float64
	torquePct float64
	curve     string
	regenLift bool
	tc        bool
	slip      float64
}

// powerMapPresets are the standard map slots selectable from the wheel.
var powerMapPresets = map[int]powerMapPreset{
	1:  {name: "ECO", powerKW: 200, torquePct: 70, curve: "LINEAR", regenLift: true, tc: true, slip: 3.0},
	2:  {name: "ECO+", powerKW: 220, torquePct: 75, curve: "LINEAR", regenLift: true, tc: true, slip: 3.0},
	3:  {name: "WET", powerKW: 180, torquePct: 60, curve: "PROGRESSIVE", regenLift: true, tc: true, slip: 2.0},
	4:  {name: "WET+", powerKW: 200, torquePct: 65, curve: "PROGRESSIVE", regenLift: true, tc: true, slip: 2.5},
	5:  {name: "RACE", powerKW: 300, torquePct: 90, curve: "PROGRESSIVE", regenLift: true, tc: true, slip: 5.0},
	6:  {name: "RACE+", powerKW: 320, torquePct: 95, curve: "PROGRESSIVE", regenLift: true, tc: true, slip: 6.0},
	7:  {name: "ATTACK", powerKW: 350, torquePct: 100, curve: "AGGRESSIVE", regenLift: false, tc: true, slip: 8.0},
	8:  {name: "QUALI", powerKW: 350, torquePct: 100, curve: "AGGRESSIVE", regenLift: false, tc: false, slip: 10.0},
	9:  {name: "PUSH", powerKW: 330, torquePct: 98, curve: "AGGRESSIVE", regenLift: true, tc: true, slip: 7.0},
	10: {name: "DEFEND", powerKW: 280, torquePct: 85, curve: "PROGRESSIVE", regenLift: true, tc: true, slip: 4.0},
	11: {name: "HARVEST", powerKW: 250, torquePct: 80, curve: "LINEAR", regenLift: true, tc: true, slip: 4.0},
	12: {name: "SAFETY", powerKW: 150, torquePct: 50, curve: "LINEAR", regenLift: true, tc: true, slip: 2.0},
}

const (
	defaultPowerMap    = 5 // RACE
	attackPowerMap     = 7
	attackDuration     = 240.0 // seconds
	maxAttackUses      = 2
	energyTargetPerLap = 1.85 // kWh
)

// Vehicle simulates the car's ECU stream: motor, battery, brakes, tires,
// chassis dynamics, energy strategy and the 96-cell pack monitor. The
// car circulates the zone table; corners heat brakes and tires and cost
// charge, straights cool the motor.
type Vehicle struct {
	rnd *rand.Rand

	clock       float64
	lapProgress float64
	stintLaps   int
	totalLaps   int

	motorTemp   float64
	batterySOC  float64
	batteryTemp float64
	brakeTemps  [4]float64 // FL FR RL RR
	tireTemps   [4]float64
	tireWear    [4]float64

	drivingMode    string
	energyUsed     float64
	regenRecovered float64
	lapStartEnergy float64

	attackActive      bool
	attackTimer       float64
	attackActivations int

	powerMapID  int
	regenLevel  int
	regenMode   string
	harvestRate float64
	deployRate  float64

	cellVoltages []float64
	cellTemps    []float64
	balancing    bool
}

func NewVehicle(seed int64) *Vehicle {
	rnd := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic demo data
	v := &Vehicle{
		rnd:         rnd,
		motorTemp:   65.0,
		batterySOC:  100.0,
		batteryTemp: 30.0,
		brakeTemps:  [4]float64{400, 380, 350, 340},
		tireTemps:   [4]float64{85, 84, 82, 81},
		tireWear:    [4]float64{100, 100, 100, 100},
		drivingMode: "RACE",
		powerMapID:  defaultPowerMap,
		regenLevel:  5,
		regenMode:   "LIFT",
	}
	v.cellVoltages = make([]float64, 96)
	v.cellTemps = make([]float64, 96)
	for i := range v.cellVoltages {
		v.cellVoltages[i] = 3.7 + 0.1*rnd.Float64()
		v.cellTemps[i] = 30.0 + 5.0*rnd.Float64()
	}
	return v
}

func (v *Vehicle) Kind() string { return "vehicle" }

// SetPowerMap selects one of the twelve map slots.
func (v *Vehicle) SetPowerMap(id int) bool {
	if id < 1 || id > 12 {
		return false
	}
	v.powerMapID = id
	return true
}

// SetRegenLevel sets regenerative braking strength on the 0..10 scale.
func (v *Vehicle) SetRegenLevel(level int) bool {
	if level < 0 || level > 10 {
		return false
	}
	v.regenLevel = level
	return true
}

// ActivateAttackMode arms the +35 kW boost for four minutes. At most two
// activations per stint.
func (v *Vehicle) ActivateAttackMode() bool {
	if v.attackActive || v.attackActivations >= maxAttackUses {
		return false
	}
	v.attackActive = true
	v.attackTimer = attackDuration
	v.attackActivations++
	v.drivingMode = "ATTACK"
	v.powerMapID = attackPowerMap
	return true
}

// PitStop recharges, fits fresh tires and resets the stint counters.
func (v *Vehicle) PitStop() {
	v.batterySOC = 100.0
	v.energyUsed = 0
	v.lapStartEnergy = 0
	v.tireWear = [4]float64{100, 100, 100, 100}
	v.tireTemps = [4]float64{90, 90, 90, 90}
	v.stintLaps = 0
}

// PowerMap returns the active preset.
func (v *Vehicle) PowerMap() model.PowerMap {
	return v.powerMapState()
}

// AttackActivations returns how many boosts were used this stint.
func (v *Vehicle) AttackActivations() int {
	return v.attackActivations
}

func (v *Vehicle) Tick(_ *model.VehicleFrame, elapsed time.Duration) model.VehicleFrame {
	v.advance(elapsed)

	motor := v.motorTelemetry()
	battery := v.batteryTelemetry()
	brakes := v.brakeTelemetry()
	tires := v.tireTelemetry()

	overall := "optimal"
	statuses := []string{motor.Status, battery.Status, brakes.Status, tires.Status}
	if lo.Contains(statuses, "critical") {
		overall = "critical"
	} else if lo.Contains(statuses, "warning") {
		overall = "warning"
	}

	return model.VehicleFrame{
		Timestamp: isoNow(),
		Motor:     motor,
		Battery:   battery,
		Brakes:    brakes,
		Tires:     tires,
		Chassis:   v.chassisTelemetry(),
		Energy:    v.energyManagement(),
		PowerMap:  v.powerMapState(),
		Cells:     v.cellMonitoring(elapsed),
		Lap: model.LapInfo{
			Current:  v.totalLaps + 1,
			Stint:    v.stintLaps,
			Progress: roundTo(v.lapProgress, 4),
		},
		OverallStatus: overall,
	}
}

func (v *Vehicle) advance(elapsed time.Duration) {
	dt := elapsed.Seconds()
	u := steps(elapsed)
	v.clock += dt

	prev := v.lapProgress
	v.lapProgress = math.Mod(v.lapProgress+0.003*u, 1.0)
	if v.lapProgress < prev { // wrapped: lap completed
		v.stintLaps++
		v.totalLaps++
		v.lapStartEnergy = v.energyUsed
	}

	if v.attackActive {
		v.attackTimer -= dt
		if v.attackTimer <= 0 {
			v.attackActive = false
			v.attackTimer = 0
			v.drivingMode = "RACE"
			v.powerMapID = defaultPowerMap
		}
	}

	powerDemand := 250.0
	if v.attackActive {
		powerDemand = 300.0
	}
	v.energyUsed += powerDemand * dt / 3600

	zone := v.currentZone()
	if zone.corner {
		v.motorTemp += 0.3 * u * v.uniform(0.8, 1.2)
	} else {
		v.motorTemp -= 0.1 * u * v.uniform(0.8, 1.2)
	}
	v.motorTemp = clampf(v.motorTemp, 50, 95)

	discharge := 0.03
	if zone.corner {
		discharge = 0.02
	}
	v.batterySOC = math.Max(5, v.batterySOC-discharge*u*v.uniform(0.8, 1.2))

	v.batteryTemp += 0.01 * u * (80 - v.batterySOC) / 80
	v.batteryTemp = clampf(v.batteryTemp, 25, 55)

	brakeHeat := -5.0
	if zone.corner {
		brakeHeat = 20.0
	}
	for i := range v.brakeTemps {
		v.brakeTemps[i] = clampf(v.brakeTemps[i]+brakeHeat*u*v.uniform(0.7, 1.3), 150, 850)
	}

	tireHeat := 0.5
	if zone.corner {
		tireHeat = 2.0
	}
	for i := range v.tireTemps {
		v.tireTemps[i] = clampf(v.tireTemps[i]+(tireHeat*v.uniform(0.5, 1.5)-1)*u, 60, 125)
	}

	wearRate := 0.01
	if zone.corner {
		wearRate = 0.03
	}
	for i := range v.tireWear {
		v.tireWear[i] = math.Max(0, v.tireWear[i]-wearRate*u*v.uniform(0.8, 1.2))
	}

	preset := powerMapPresets[v.powerMapID]
	if zone.corner && v.regenLevel > 0 {
		v.harvestRate = math.Min(150, float64(v.regenLevel)*15) * v.uniform(0.8, 1.0)
		v.deployRate = 0
		v.regenRecovered += v.harvestRate * dt / 3600
	} else {
		v.harvestRate = 0
		v.deployRate = preset.powerKW * v.uniform(0.6, 0.95)
	}
}

func (v *Vehicle) currentZone() trackZone {
	cumulative := 0.0
	for _, zone := range lapZones {
		cumulative += zone.length
		if v.lapProgress < cumulative {
			return zone
		}
	}
	return lapZones[len(lapZones)-1]
}

func (v *Vehicle) uniform(from, to float64) float64 {
	return from + (to-from)*v.rnd.Float64()
}

func (v *Vehicle) motorTelemetry() model.MotorTelemetry {
	zone := v.currentZone()
	speed := zone.maxSpeed * (0.8 + 0.2*v.rnd.Float64())
	rpm := int(speed*45) + v.rnd.Intn(401) - 200

	power := 350.0 + 100
	if !zone.corner {
		power = 350 + 200
	}
	power *= 0.9 + 0.1*v.rnd.Float64()

	status := "optimal"
	switch {
	case v.motorTemp > 90:
		status = "critical"
	case v.motorTemp > 80:
		status = "warning"
	}

	torque := 0.0
	if rpm > 0 {
		torque = power * 1000 / (float64(rpm) / 60 * 2 * math.Pi)
	}

	invMode := "SPEED"
	if v.drivingMode == "RACE" || v.drivingMode == "ATTACK" {
		invMode = "TORQUE"
	}
	mapSetting := 5
	if v.drivingMode == "ATTACK" {
		mapSetting = 8
	}

	return model.MotorTelemetry{
		RPM:         rpm,
		PowerKW:     roundTo(power, 1),
		TorqueNM:    roundTo(torque, 1),
		Temperature: roundTo(v.motorTemp, 1),
		Efficiency:  roundTo(92-0.1*(v.motorTemp-60), 1),
		Mode:        v.drivingMode,
		InvMode:     invMode,
		MapSetting:  mapSetting,
		Status:      status,
	}
}

func (v *Vehicle) batteryTelemetry() model.BatteryTelemetry {
	voltage := 780 + (v.batterySOC/100)*120
	current := 200 + 100*v.rnd.Float64()

	status := "optimal"
	switch {
	case v.batterySOC < 15 || v.batteryTemp > 50:
		status = "critical"
	case v.batterySOC < 25 || v.batteryTemp > 45:
		status = "warning"
	}

	powerLimit := 300.0
	if v.drivingMode == "ATTACK" {
		powerLimit = 350.0
	}

	lapEnergy := v.energyUsed - v.lapStartEnergy
	return model.BatteryTelemetry{
		SOC:            roundTo(v.batterySOC, 1),
		Voltage:        roundTo(voltage, 1),
		Current:        roundTo(current, 1),
		Temperature:    roundTo(v.batteryTemp, 1),
		CellBalance:    roundTo(98+2*v.rnd.Float64(), 1),
		PowerLimit:     powerLimit,
		EnergyUsedKWh:  roundTo(v.energyUsed, 2),
		RegenKWh:       roundTo(v.regenRecovered, 2),
		LapEnergyKWh:   roundTo(lapEnergy, 2),
		TargetDeltaKWh: roundTo(lapEnergy-v.lapProgress*energyTargetPerLap, 2),
		RegenEnabled:   v.batterySOC < 95,
		Status:         status,
	}
}

func (v *Vehicle) brakeTelemetry() model.BrakeTelemetry {
	avg := (v.brakeTemps[0] + v.brakeTemps[1] + v.brakeTemps[2] + v.brakeTemps[3]) / 4

	status := "optimal"
	switch {
	case avg > 800:
		status = "critical"
	case avg > 700:
		status = "warning"
	}

	return model.BrakeTelemetry{
		FrontLeftTemp:  math.Round(v.brakeTemps[0]),
		FrontRightTemp: math.Round(v.brakeTemps[1]),
		RearLeftTemp:   math.Round(v.brakeTemps[2]),
		RearRightTemp:  math.Round(v.brakeTemps[3]),
		BrakeBias:      57.5,
		BrakePressure:  roundTo(80+40*v.rnd.Float64(), 1),
		WearFront:      roundTo(95-float64(v.stintLaps)*0.5, 1),
		WearRear:       roundTo(97-float64(v.stintLaps)*0.3, 1),
		Status:         status,
	}
}

func (v *Vehicle) tireTelemetry() model.TireTelemetry {
	tire := func(idx int) model.TireState {
		return model.TireState{
			Temp:     roundTo(v.tireTemps[idx], 1),
			Pressure: roundTo(1.8+0.1*(v.tireTemps[idx]-80)/20, 2),
			Wear:     roundTo(v.tireWear[idx], 1),
		}
	}

	avg := (v.tireTemps[0] + v.tireTemps[1] + v.tireTemps[2] + v.tireTemps[3]) / 4
	minWear := math.Min(math.Min(v.tireWear[0], v.tireWear[1]), math.Min(v.tireWear[2], v.tireWear[3]))

	status := "optimal"
	switch {
	case avg > 115 || minWear < 20:
		status = "critical"
	case avg > 105 || minWear < 40:
		status = "warning"
	}

	return model.TireTelemetry{
		FrontLeft:        tire(0),
		FrontRight:       tire(1),
		RearLeft:         tire(2),
		RearRight:        tire(3),
		Compound:         "MEDIUM",
		OptimalTempRange: []float64{75, 100},
		Status:           status,
	}
}

func (v *Vehicle) chassisTelemetry() model.ChassisTelemetry {
	zone := v.currentZone()
	speed := zone.maxSpeed * (0.85 + 0.15*v.rnd.Float64())

	var lateralG, longG, steering, throttle, brake float64
	if zone.corner {
		lateralG = 3.5 * v.uniform(0.8, 1.0) * zone.direction
		longG = -1.5
		steering = 45 * (lateralG / 3.5)
		throttle = 30
		brake = 60
	} else {
		lateralG = 0.2 * v.uniform(-1, 1)
		longG = v.uniform(0.5, 1.0)
		throttle = 95
	}

	return model.ChassisTelemetry{
		SpeedKph: roundTo(speed, 1),
		AccelerationG: model.GForces{
			Lateral:      roundTo(lateralG, 2),
			Longitudinal: roundTo(longG, 2),
			Vertical:     roundTo(1.0+0.1*v.rnd.NormFloat64(), 2),
		},
		SteeringAngle:    roundTo(steering, 1),
		ThrottlePosition: throttle,
		BrakePosition:    brake,
		SuspensionTravel: model.CornerValues{
			FL: roundTo(10+5*v.rnd.Float64(), 1),
			FR: roundTo(10+5*v.rnd.Float64(), 1),
			RL: roundTo(12+5*v.rnd.Float64(), 1),
			RR: roundTo(12+5*v.rnd.Float64(), 1),
		},
		DownforceKg:     math.Round(500 + (speed/300)*800),
		DragCoefficient: 0.95,
	}
}

func (v *Vehicle) energyManagement() model.EnergyManagement {
	return model.EnergyManagement{
		AttackModeActive:      v.attackActive,
		AttackModeRemaining:   roundTo(v.attackTimer, 1),
		AttackModeActivations: v.attackActivations,
		RegenLevel:            v.regenLevel,
		RegenMode:             v.regenMode,
		DeploymentRate:        roundTo(v.deployRate, 1),
		HarvestRate:           roundTo(v.harvestRate, 1),
		NetEnergyFlow:         roundTo(v.deployRate-v.harvestRate, 1),
		EnergyTarget:          roundTo(energyTargetPerLap*float64(v.totalLaps+1), 2),
		EnergyDelta: roundTo(v.energyUsed-
			(energyTargetPerLap*float64(v.totalLaps)+energyTargetPerLap*v.lapProgress), 2),
	}
}

func (v *Vehicle) powerMapState() model.PowerMap {
	preset := powerMapPresets[v.powerMapID]
	return model.PowerMap{
		MapID:               v.powerMapID,
		Name:                preset.name,
		PowerLimitKW:        preset.powerKW,
		TorqueLimitPct:      preset.torquePct,
		ThrottleCurve:       preset.curve,
		RegenOnThrottleLift: preset.regenLift,
		TCEnabled:           preset.tc,
		TCSlipTarget:        preset.slip,
	}
}

func (v *Vehicle) cellMonitoring(elapsed time.Duration) model.CellMonitoring {
	u := steps(elapsed)
	baseHeat := 0.02
	if v.attackActive {
		baseHeat = 0.05
	}
	for i := range v.cellVoltages {
		v.cellVoltages[i] = clampf(v.cellVoltages[i]+0.002*u*v.rnd.NormFloat64(), 3.2, 4.2)
		v.cellTemps[i] = clampf(v.cellTemps[i]+(0.1*v.rnd.NormFloat64()+baseHeat)*u, 20, 60)
	}

	minV, maxV := lo.Min(v.cellVoltages), lo.Max(v.cellVoltages)
	minT, maxT := lo.Min(v.cellTemps), lo.Max(v.cellTemps)
	avgV := lo.Sum(v.cellVoltages) / float64(len(v.cellVoltages))

	var weak []int
	for i, volt := range v.cellVoltages {
		if volt < avgV-0.1 {
			weak = append(weak, i)
		}
	}
	if len(weak) > 5 {
		weak = weak[:5]
	}

	v.balancing = (maxV - minV) > 0.05

	voltageHealth := 100 - ((maxV-minV)/0.2)*10
	tempHealth := 100 - math.Max(0, (maxT-45)*2)
	packHealth := clampf((voltageHealth+tempHealth)/2, 0, 100)

	return model.CellMonitoring{
		CellCount:       len(v.cellVoltages),
		CellVoltages:    lo.Map(v.cellVoltages, func(f float64, _ int) float64 { return roundTo(f, 3) }),
		CellTemps:       lo.Map(v.cellTemps, func(f float64, _ int) float64 { return roundTo(f, 1) }),
		MinCellVoltage:  roundTo(minV, 3),
		MaxCellVoltage:  roundTo(maxV, 3),
		VoltageDelta:    roundTo(maxV-minV, 3),
		MinCellTemp:     roundTo(minT, 1),
		MaxCellTemp:     roundTo(maxT, 1),
		TempDelta:       roundTo(maxT-minT, 1),
		WeakCells:       weak,
		BalancingActive: v.balancing,
		PackHealthPct:   roundTo(packHealth, 1),
	}
}
