package demo

import (
	"math"
	"math/rand"
	"time"

	"github.com/fevtel/evdash-service-go/pkg/model"
)

const waveformPoints = 100

// Telemetry simulates the driver biosignal stream: a PQRST ECG waveform,
// EEG frequency bands, the fused emotional state and the track sync
// block. Stress rises in corners and falls on straights; fatigue creeps
// up over the session.
type Telemetry struct {
	rnd *rand.Rand

	clock     float64 // simulated seconds
	stressPos float64 // lap phase driving the corner stress modulation
	carPos    float64 // lap progress published on telemetrySync
	stress    float64
	fatigue   float64
}

func NewTelemetry(seed int64) *Telemetry {
	return &Telemetry{
		rnd:     rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic demo data
		stress:  0.3,
		fatigue: 0.2,
	}
}

func (g *Telemetry) Kind() string { return "telemetry" }

func (g *Telemetry) Tick(_ *model.TelemetrySnapshot, elapsed time.Duration) model.TelemetrySnapshot {
	g.advance(elapsed)

	hr := 85 + int(30*g.stress) + g.rnd.Intn(7) - 3
	ecgWave := g.ecgWaveform(hr)
	rmssd := 35 - 15*g.stress + 5*g.rnd.NormFloat64()
	sdnn := 45 - 20*g.stress + 5*g.rnd.NormFloat64()
	lfhf := 1.5 + g.stress + 0.2*g.rnd.NormFloat64()
	eeg := g.eegSummary()
	emo := g.emotionalState(hr, rmssd)

	prediction := "Optimal"
	if emo.SafetyRisk >= 0.5 {
		prediction = "Caution"
	}

	return model.TelemetrySnapshot{
		Timestamp: isoNow(),
		Driver: model.DriverInfo{
			Name:      "L. Hamilton",
			Mode:      "Sim",
			HeartRate: hr,
			Stress:    roundTo(emo.Stress, 2),
		},
		EEG: eeg,
		Sync: model.TelemetrySync{
			Status:           "LIVE",
			MTeslaPrediction: prediction,
			Circuit:          "SILVERSTONE",
			CarPosition:      roundTo(g.carPos, 4),
		},
		Biosignals: model.Biosignals{
			ECG: model.ECGSummary{
				Waveform:  ecgWave,
				HeartRate: hr,
				HRV: model.HRVMetrics{
					RMSSD:     roundTo(rmssd, 1),
					SDNN:      roundTo(sdnn, 1),
					LFHFRatio: roundTo(lfhf, 2),
				},
				Quality: "good",
			},
		},
		Emotional: emo,
	}
}

func (g *Telemetry) advance(elapsed time.Duration) {
	u := steps(elapsed)
	g.clock += elapsed.Seconds()
	g.stressPos = math.Mod(g.stressPos+0.002*u, 1.0)
	g.carPos = math.Mod(g.carPos+0.003*u, 1.0)

	cornerStress := 0.3 * math.Sin(g.stressPos*2*math.Pi*5)
	g.stress = clampf(0.3+cornerStress+0.1*math.Sin(g.clock*0.1), 0.1, 0.9)
	g.fatigue = math.Min(0.8, 0.2+0.001*g.clock)
}

// ecgWaveform samples one beat cycle as the simplified piecewise PQRST
// complex at 0.01 s resolution.
func (g *Telemetry) ecgWaveform(hr int) []float64 {
	wave := make([]float64, waveformPoints)
	for i := range wave {
		t := g.clock + float64(i)*0.01
		phase := math.Mod(t*float64(hr)/60, 1.0)
		var v float64
		switch {
		case phase < 0.1: // P
			v = 0.15 * math.Sin(phase*10*math.Pi)
		case phase >= 0.15 && phase < 0.2: // Q
			v = -0.1 * math.Sin((phase-0.15)*20*math.Pi)
		case phase >= 0.2 && phase < 0.25: // R
			v = math.Sin((phase - 0.2) * 20 * math.Pi)
		case phase >= 0.25 && phase < 0.3: // S
			v = -0.2 * math.Sin((phase-0.25)*20*math.Pi)
		case phase >= 0.35 && phase < 0.5: // T
			v = 0.3 * math.Sin((phase-0.35)*6.67*math.Pi)
		}
		wave[i] = v + 0.02*g.rnd.NormFloat64()
	}
	return wave
}

func (g *Telemetry) eegSummary() model.EEGSummary {
	wave := make([]float64, waveformPoints)
	for i := range wave {
		t := g.clock + float64(i)*0.01
		delta := 0.1 * math.Sin(2*math.Pi*2*t)
		theta := 0.3 * (1 - g.stress) * math.Sin(2*math.Pi*6*t)
		alpha := 0.25 * (1 - g.stress) * math.Sin(2*math.Pi*10*t)
		beta := 0.2 * g.stress * math.Sin(2*math.Pi*20*t)
		gamma := 0.1 * g.stress * math.Sin(2*math.Pi*40*t)
		wave[i] = delta + theta + alpha + beta + gamma + 0.05*g.rnd.NormFloat64()
	}
	return model.EEGSummary{
		SamplingRate: 1.5,
		Status:       "Nominal",
		Waveform:     wave,
		ThetaFocus:   roundTo(0.65+0.2*(1-g.stress), 2),
		BetaStress:   roundTo(0.3+0.4*g.stress, 2),
		Bands: model.EEGBands{
			Delta: roundTo(10+5*g.fatigue, 2),
			Theta: roundTo(15*(1-g.stress), 2),
			Alpha: roundTo(20*(1-g.stress), 2),
			Beta:  roundTo(25*g.stress, 2),
			Gamma: roundTo(10*g.stress, 2),
		},
		Attention:  roundTo(0.7-0.3*g.fatigue, 2),
		Meditation: roundTo(0.5*(1-g.stress), 2),
	}
}

// emotionalState fuses the generated signals the way the backend's
// multi-modal predictor does. Signals the channel does not carry (EMG,
// GSR, eye tracking, respiration, SpO2) enter as their closed-form
// expectations over stress and fatigue.
//
//nolint:funlen // one formula per line reads better than helpers here
func (g *Telemetry) emotionalState(hr int, rmssd float64) model.EmotionalState {
	s, f := g.stress, g.fatigue

	arousal := s
	activation := 0.3 + 0.4*s
	betaStress := 0.3 + 0.4*s
	pupil := 4.0 + 2.0*s
	respRate := 12 + float64(int(8*s))
	blinkRate := 15 + 10*f
	drowsy := 0.7 * f
	saccade := 300 - 100*f
	deltaPower := 10 + 5*f
	depth := 0.8 - 0.2*f
	regularity := 0.9 - 0.3*s
	thetaFocus := 0.65 + 0.2*(1-s)
	attention := 0.7 - 0.3*f
	shoulder := 0.3 + 0.3*s + 0.2*f
	spo2 := 98 - 2*f

	stress := clamp01(0.2*(float64(hr)-60)/60 +
		0.2*arousal +
		0.15*activation +
		0.15*betaStress +
		0.1*(pupil-4)/4 +
		0.1*(respRate-12)/8 +
		0.1*(1-rmssd/50))

	focus := clamp01(0.3*thetaFocus +
		0.25*attention +
		0.2*(1-blinkRate/30) +
		0.15*(1-drowsy) +
		0.1*regularity)

	fatigue := clamp01(0.2*drowsy +
		0.2*(1-saccade/400) +
		0.15*f +
		0.15*(deltaPower/20) +
		0.15*(1-depth) +
		0.15*(blinkRate/30))

	alertness := clamp01(1 - fatigue*0.7 - stress*0.3)
	anxiety := clamp01(stress*0.6 + (1-rmssd/50)*0.4)
	confidence := clamp01((1-anxiety)*0.5 + focus*0.3 + (1-fatigue)*0.2)
	frustration := clamp01(stress*0.4 + (1-focus)*0.3 + shoulder*0.3)
	flow := clamp01(focus*0.4 + (1-math.Abs(stress-0.4))*0.3 + (1-fatigue)*0.3)

	readiness := 0.3*alertness + 0.25*focus + 0.2*(1-fatigue) +
		0.15*(1-anxiety) + 0.1*(spo2/100)

	highStress := 0.0
	if stress > 0.7 {
		highStress = stress
	}
	blinkPenalty := 0.0
	if blinkRate > 25 {
		blinkPenalty = 1
	}
	risk := 0.25*fatigue + 0.2*highStress + 0.2*drowsy +
		0.15*blinkPenalty + 0.1*(1-focus) + 0.1*f

	state := model.EmotionalState{
		Stress:           roundTo(stress, 3),
		Focus:            roundTo(focus, 3),
		Fatigue:          roundTo(fatigue, 3),
		Alertness:        roundTo(alertness, 3),
		Anxiety:          roundTo(anxiety, 3),
		Confidence:       roundTo(confidence, 3),
		Frustration:      roundTo(frustration, 3),
		FlowState:        roundTo(flow, 3),
		OverallReadiness: roundTo(readiness, 3),
		SafetyRisk:       roundTo(risk, 3),
	}
	state.InterventionNeeded = risk > 0.6 || fatigue > 0.7 || stress > 0.8
	if state.InterventionNeeded {
		switch {
		case fatigue > 0.7:
			state.InterventionType = "FATIGUE_ALERT"
		case stress > 0.8:
			state.InterventionType = "STRESS_REDUCTION"
		default:
			state.InterventionType = "ATTENTION_BOOST"
		}
	}
	return state
}
