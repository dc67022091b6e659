package model

// TelemetrySnapshot is the payload streamed on the main telemetry channel.
// It combines driver biosignals with the track sync block used by the
// position panels.
type TelemetrySnapshot struct {
	Timestamp  string         `json:"timestamp"`
	Driver     DriverInfo     `json:"driver"`
	EEG        EEGSummary     `json:"eeg"`
	Sync       TelemetrySync  `json:"telemetrySync"`
	Biosignals Biosignals     `json:"biosignals"`
	Emotional  EmotionalState `json:"emotionalState"`
}

type DriverInfo struct {
	Name      string  `json:"name"`
	Mode      string  `json:"mode"`
	HeartRate int     `json:"heartRate"`
	Stress    float64 `json:"stress"`
}

type EEGBands struct {
	Delta float64 `json:"delta"`
	Theta float64 `json:"theta"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

type EEGSummary struct {
	SamplingRate float64   `json:"samplingRate"`
	Status       string    `json:"status"`
	Waveform     []float64 `json:"waveform"`
	ThetaFocus   float64   `json:"thetaFocus"`
	BetaStress   float64   `json:"betaStress"`
	Bands        EEGBands  `json:"bands"`
	Attention    float64   `json:"attention"`
	Meditation   float64   `json:"meditation"`
}

// TelemetrySync carries the car position used by the track map panels.
// CarPosition is the lap progress in [0,1).
type TelemetrySync struct {
	Status           string  `json:"status"`
	MTeslaPrediction string  `json:"mTeslaPrediction"`
	Circuit          string  `json:"circuit"`
	CarPosition      float64 `json:"carPosition"`
}

type Biosignals struct {
	ECG ECGSummary `json:"ecg"`
}

type HRVMetrics struct {
	RMSSD     float64 `json:"rmssd"`
	SDNN      float64 `json:"sdnn"`
	LFHFRatio float64 `json:"lfHfRatio"`
}

type ECGSummary struct {
	Waveform  []float64  `json:"waveform"`
	HeartRate int        `json:"heartRate"`
	HRV       HRVMetrics `json:"hrv"`
	Quality   string     `json:"quality"`
}

//nolint:tagliatelle // client compatibility
type EmotionalState struct {
	Stress             float64 `json:"stress"`
	Focus              float64 `json:"focus"`
	Fatigue            float64 `json:"fatigue"`
	Alertness          float64 `json:"alertness"`
	Anxiety            float64 `json:"anxiety"`
	Confidence         float64 `json:"confidence"`
	Frustration        float64 `json:"frustration"`
	FlowState          float64 `json:"flow_state"`
	OverallReadiness   float64 `json:"overall_readiness"`
	SafetyRisk         float64 `json:"safety_risk"`
	InterventionNeeded bool    `json:"intervention_needed"`
	InterventionType   string  `json:"intervention_type,omitempty"`
}
