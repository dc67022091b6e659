package model

// ChargingState is the payload streamed on the energy channel. It mirrors
// the charging system ECUs (HV battery, charge port, contactors, PCS, CPL).
type ChargingState struct {
	Timestamp    string         `json:"timestamp"`
	HVBattery    HVBatteryState `json:"hvBattery"`
	ChargePort   ChargePort     `json:"chargePort"`
	Contactors   Contactors     `json:"contactors"`
	PCS          PCSState       `json:"pcs"`
	CPL          CPLState       `json:"cpl"`
	IsCharging   bool           `json:"isCharging"`
	ChargingMode string         `json:"chargingMode"`
}

type HVBatteryState struct {
	RMSVoltage          float64 `json:"rmsVoltage"`
	MinCellTemp         float64 `json:"minCellTemp"`
	MaxCellTemp         float64 `json:"maxCellTemp"`
	HVILStatus          string  `json:"hvilStatus"`
	SOC                 float64 `json:"soc"`
	PackCurrent         float64 `json:"packCurrent"`
	IsolationResistance float64 `json:"isolationResistance"`
	Status              string  `json:"status"`
}

type ChargePort struct {
	CableState          string  `json:"cableState"`
	LatchState          string  `json:"latchState"`
	BackCoverPresent    bool    `json:"backCoverPresent"`
	HandleButtonPressed bool    `json:"handleButtonPressed"`
	ACPinTemp           float64 `json:"acPinTemp"`
	DCPinTemp           float64 `json:"dcPinTemp"`
	InletVoltage        float64 `json:"inletVoltage"`
	Status              string  `json:"status"`
}

type Contactors struct {
	PackPositive       string `json:"packPositive"`
	PackNegative       string `json:"packNegative"`
	FastChargePositive string `json:"fastChargePositive"`
	FastChargeNegative string `json:"fastChargeNegative"`
	Precharge          string `json:"precharge"`
	Status             string `json:"status"`
}

type PCSState struct {
	Mode       string  `json:"mode"`
	PowerKW    float64 `json:"powerKw"`
	Efficiency float64 `json:"efficiency"`
	Status     string  `json:"status"`
}

type CPLState struct {
	Connected         bool    `json:"connected"`
	PilotSignal       float64 `json:"pilotSignal"`
	ProximityDetected bool    `json:"proximityDetected"`
	CPVoltage         float64 `json:"cpVoltage"`
}
