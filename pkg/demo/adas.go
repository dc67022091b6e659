package demo

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/fevtel/evdash-service-go/pkg/model"
)

// Collision warner thresholds, in seconds and meters.
const (
	ttcCritical = 1.0
	ttcDanger   = 2.0
	ttcWarning  = 3.5
	ttcInfo     = 5.0

	distCritical = 3.0
	distDanger   = 8.0
	distWarning  = 15.0

	lateralThreshold = 2.0

	zoneDanger  = 5.0
	zoneWarning = 15.0
)

var warningRank = map[string]int{
	"NONE": 0, "INFO": 1, "WARNING": 2, "DANGER": 3, "CRITICAL": 4,
}

// ADAS synthesizes the vision pipeline output: a lead vehicle whose gap
// opens and closes, an occasional crossing pedestrian, lane drift and
// the frame-rate counters. Warning levels follow the collision warner's
// TTC and distance thresholds.
type ADAS struct {
	rnd     *rand.Rand
	clock   float64
	frameID int
}

func NewADAS(seed int64) *ADAS {
	return &ADAS{rnd: rand.New(rand.NewSource(seed))} //nolint:gosec // deterministic demo data
}

func (g *ADAS) Kind() string { return "adas" }

func (g *ADAS) Tick(_ *model.ADASFrame, elapsed time.Duration) model.ADASFrame {
	g.clock += elapsed.Seconds()
	g.frameID++
	t := g.clock

	// lead vehicle: the gap breathes between roughly 4 m and 32 m
	leadDist := 18 + 14*math.Sin(t*0.25)
	closing := math.Max(0.5, 4+3*math.Sin(t*0.18+1.3))
	leadTTC := clampf(leadDist/closing, 0.5, 10)
	leadLateral := 0.4 * math.Sin(t*0.7)

	threats := []model.Threat{{
		ObjectID:         1,
		ObjectClass:      "car",
		Distance:         roundTo(leadDist, 1),
		RelativeVelocity: roundTo(-closing, 1),
		TTC:              roundTo(leadTTC, 1),
		LateralOffset:    roundTo(leadLateral, 2),
		WarningLevel:     warningLevel(leadTTC, leadDist, leadLateral),
		Confidence:       roundTo(0.85+0.1*g.rnd.Float64(), 2),
	}}

	// a pedestrian crosses now and then
	if math.Sin(t*0.05) > 0.93 {
		pedDist := 12 + 6*math.Sin(t*0.9)
		pedTTC := clampf(pedDist/2.0, 0.5, 10)
		pedLateral := 1.5 * math.Cos(t*0.9)
		threats = append(threats, model.Threat{
			ObjectID:         2,
			ObjectClass:      "person",
			Distance:         roundTo(pedDist, 1),
			RelativeVelocity: -2.0,
			TTC:              roundTo(pedTTC, 1),
			LateralOffset:    roundTo(pedLateral, 2),
			WarningLevel:     warningLevel(pedTTC, pedDist, pedLateral),
			Confidence:       roundTo(0.75+0.15*g.rnd.Float64(), 2),
		})
	}

	// the depth map sees every object, the threat list only active ones
	minDist := math.Inf(1)
	for _, threat := range threats {
		minDist = math.Min(minDist, threat.Distance)
	}
	threats = lo.Filter(threats, func(t model.Threat, _ int) bool {
		return t.WarningLevel != "NONE"
	})

	// primary threat first, overall level is the worst across threats
	sort.Slice(threats, func(i, j int) bool {
		if threats[i].TTC != threats[j].TTC {
			return threats[i].TTC < threats[j].TTC
		}
		return threats[i].Distance < threats[j].Distance
	})
	highest := "NONE"
	for _, threat := range threats {
		if warningRank[threat.WarningLevel] > warningRank[highest] {
			highest = threat.WarningLevel
		}
	}

	message := ""
	if len(threats) > 0 {
		message = warningMessage(threats[0])
	}

	// lane drift with a slow weave
	offset := 0.6*math.Sin(t*0.4) + 0.05*g.rnd.NormFloat64()
	laneStatus := "centered"
	switch {
	case offset > 0.7:
		laneStatus = "departed_right"
	case offset < -0.7:
		laneStatus = "departed_left"
	case offset > 0.3:
		laneStatus = "drifting_right"
	case offset < -0.3:
		laneStatus = "drifting_left"
	}

	processing := 28 + 8*g.rnd.Float64()
	return model.ADASFrame{
		Timestamp:         float64(time.Now().UnixNano()) / 1e9,
		FrameID:           g.frameID,
		WarningLevel:      highest,
		WarningMessage:    message,
		Threats:           threats,
		BrakeAssist:       highest == "CRITICAL",
		LaneStatus:        laneStatus,
		CenterOffset:      roundTo(offset, 2),
		SuggestedSteering: roundTo(clampf(-2.0*offset*10, -25, 25), 1),
		LaneConfidence:    roundTo(0.8+0.15*g.rnd.Float64(), 2),
		MinDistance:       roundTo(minDist, 1),
		DistanceZone:      distanceZone(minDist),
		FPS:               roundTo(1000/processing, 1),
		ProcessingTimeMs:  roundTo(processing, 1),
	}
}

func warningLevel(ttc, distance, lateral float64) string {
	if math.Abs(lateral) > lateralThreshold {
		// off the driving path, reduced severity
		if distance < distWarning {
			return "INFO"
		}
		return "NONE"
	}

	byTTC := "NONE"
	switch {
	case ttc < ttcCritical:
		byTTC = "CRITICAL"
	case ttc < ttcDanger:
		byTTC = "DANGER"
	case ttc < ttcWarning:
		byTTC = "WARNING"
	case ttc < ttcInfo:
		byTTC = "INFO"
	}

	byDist := "NONE"
	switch {
	case distance < distCritical:
		byDist = "DANGER"
	case distance < distDanger:
		byDist = "WARNING"
	case distance < distWarning:
		byDist = "INFO"
	}

	if warningRank[byDist] > warningRank[byTTC] {
		return byDist
	}
	return byTTC
}

func warningMessage(threat model.Threat) string {
	prefix := map[string]string{
		"CRITICAL": "BRAKE NOW!",
		"DANGER":   "Collision risk!",
		"WARNING":  "Caution ahead",
		"INFO":     "Object detected",
	}[threat.WarningLevel]

	target := threat.ObjectClass
	if target == "person" {
		target = "Pedestrian"
	} else if target != "" {
		target = strings.ToUpper(target[:1]) + target[1:]
	}
	return fmt.Sprintf("%s %s at %.1fm (TTC: %.1fs)", prefix, target, threat.Distance, threat.TTC)
}

func distanceZone(distance float64) string {
	switch {
	case distance < zoneDanger:
		return "danger"
	case distance < zoneWarning:
		return "warning"
	default:
		return "safe"
	}
}
