package model

// VehicleFrame is the payload streamed on the vehicle channel.
// Top-level keys are camelCase, nested blocks keep their ECU field names.
//
//nolint:tagliatelle // client compatibility
type VehicleFrame struct {
	Timestamp     string           `json:"timestamp"`
	Motor         MotorTelemetry   `json:"motor"`
	Battery       BatteryTelemetry `json:"battery"`
	Brakes        BrakeTelemetry   `json:"brakes"`
	Tires         TireTelemetry    `json:"tires"`
	Chassis       ChassisTelemetry `json:"chassis"`
	Energy        EnergyManagement `json:"energyManagement"`
	PowerMap      PowerMap         `json:"powerMap"`
	Cells         CellMonitoring   `json:"cellMonitoring"`
	Lap           LapInfo          `json:"lap"`
	OverallStatus string           `json:"overallStatus"`
}

//nolint:tagliatelle // client compatibility
type MotorTelemetry struct {
	RPM         int     `json:"rpm"`
	PowerKW     float64 `json:"power_kw"`
	TorqueNM    float64 `json:"torque_nm"`
	Temperature float64 `json:"temperature"`
	Efficiency  float64 `json:"efficiency"`
	Mode        string  `json:"mode"`
	InvMode     string  `json:"inv_mode"`
	MapSetting  int     `json:"map_setting"`
	Status      string  `json:"status"`
}

//nolint:tagliatelle // client compatibility
type BatteryTelemetry struct {
	SOC            float64 `json:"soc"`
	Voltage        float64 `json:"voltage"`
	Current        float64 `json:"current"`
	Temperature    float64 `json:"temperature"`
	CellBalance    float64 `json:"cell_balance"`
	PowerLimit     float64 `json:"power_limit"`
	EnergyUsedKWh  float64 `json:"energy_used_kwh"`
	RegenKWh       float64 `json:"regen_kwh"`
	LapEnergyKWh   float64 `json:"lap_energy_kwh"`
	TargetDeltaKWh float64 `json:"target_delta_kwh"`
	RegenEnabled   bool    `json:"regen_enabled"`
	Status         string  `json:"status"`
}

//nolint:tagliatelle // client compatibility
type BrakeTelemetry struct {
	FrontLeftTemp  float64 `json:"front_left_temp"`
	FrontRightTemp float64 `json:"front_right_temp"`
	RearLeftTemp   float64 `json:"rear_left_temp"`
	RearRightTemp  float64 `json:"rear_right_temp"`
	BrakeBias      float64 `json:"brake_bias"`
	BrakePressure  float64 `json:"brake_pressure"`
	WearFront      float64 `json:"wear_front"`
	WearRear       float64 `json:"wear_rear"`
	Status         string  `json:"status"`
}

// TireState describes a single corner.
type TireState struct {
	Temp     float64 `json:"temp"`
	Pressure float64 `json:"pressure"`
	Wear     float64 `json:"wear"`
}

//nolint:tagliatelle // client compatibility
type TireTelemetry struct {
	FrontLeft        TireState `json:"front_left"`
	FrontRight       TireState `json:"front_right"`
	RearLeft         TireState `json:"rear_left"`
	RearRight        TireState `json:"rear_right"`
	Compound         string    `json:"compound"`
	OptimalTempRange []float64 `json:"optimal_temp_range"`
	Status           string    `json:"status"`
}

type GForces struct {
	Lateral      float64 `json:"lateral"`
	Longitudinal float64 `json:"longitudinal"`
	Vertical     float64 `json:"vertical"`
}

// CornerValues holds one value per wheel.
type CornerValues struct {
	FL float64 `json:"fl"`
	FR float64 `json:"fr"`
	RL float64 `json:"rl"`
	RR float64 `json:"rr"`
}

//nolint:tagliatelle // client compatibility
type ChassisTelemetry struct {
	SpeedKph         float64      `json:"speed_kph"`
	AccelerationG    GForces      `json:"acceleration_g"`
	SteeringAngle    float64      `json:"steering_angle"`
	ThrottlePosition float64      `json:"throttle_position"`
	BrakePosition    float64      `json:"brake_position"`
	SuspensionTravel CornerValues `json:"suspension_travel"`
	DownforceKg      float64      `json:"downforce_kg"`
	DragCoefficient  float64      `json:"drag_coefficient"`
}

//nolint:tagliatelle // client compatibility
type EnergyManagement struct {
	AttackModeActive      bool    `json:"attack_mode_active"`
	AttackModeRemaining   float64 `json:"attack_mode_remaining"`
	AttackModeActivations int     `json:"attack_mode_activations"`
	RegenLevel            int     `json:"regen_level"`
	RegenMode             string  `json:"regen_mode"`
	DeploymentRate        float64 `json:"deployment_rate"`
	HarvestRate           float64 `json:"harvest_rate"`
	NetEnergyFlow         float64 `json:"net_energy_flow"`
	EnergyTarget          float64 `json:"energy_target"`
	EnergyDelta           float64 `json:"energy_delta"`
}

//nolint:tagliatelle // client compatibility
type PowerMap struct {
	MapID               int     `json:"map_id"`
	Name                string  `json:"name"`
	PowerLimitKW        float64 `json:"power_limit_kw"`
	TorqueLimitPct      float64 `json:"torque_limit_pct"`
	ThrottleCurve       string  `json:"throttle_curve"`
	RegenOnThrottleLift bool    `json:"regen_on_throttle_lift"`
	TCEnabled           bool    `json:"tc_enabled"`
	TCSlipTarget        float64 `json:"tc_slip_target"`
}

//nolint:tagliatelle // client compatibility
type CellMonitoring struct {
	CellCount       int       `json:"cell_count"`
	CellVoltages    []float64 `json:"cell_voltages"`
	CellTemps       []float64 `json:"cell_temps"`
	MinCellVoltage  float64   `json:"min_cell_voltage"`
	MaxCellVoltage  float64   `json:"max_cell_voltage"`
	VoltageDelta    float64   `json:"voltage_delta"`
	MinCellTemp     float64   `json:"min_cell_temp"`
	MaxCellTemp     float64   `json:"max_cell_temp"`
	TempDelta       float64   `json:"temp_delta"`
	WeakCells       []int     `json:"weak_cells"`
	BalancingActive bool      `json:"balancing_active"`
	PackHealthPct   float64   `json:"pack_health_pct"`
}

type LapInfo struct {
	Current  int     `json:"current"`
	Stint    int     `json:"stint"`
	Progress float64 `json:"progress"`
}
