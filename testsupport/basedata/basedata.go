package basedata

import (
	"log"

	"github.com/fevtel/evdash-service-go/pkg/circuit"
	"github.com/fevtel/evdash-service-go/pkg/track"
)

func SampleCircuit() *track.Model {
	return &track.Model{
		ID:      "paddock",
		Name:    "Paddock Test Circuit",
		SVGPath: "M 0 0 L 100 0 L 100 60 L 50 90 L 0 60 Z",
		ViewBox: "0 0 100 90",
		Waypoints: []track.Waypoint{
			{X: 0, Y: 0, Sector: 1},
			{X: 100, Y: 0, Sector: 1},
			{X: 100, Y: 60, Sector: 2},
			{X: 50, Y: 90, Sector: 2},
			{X: 0, Y: 60, Sector: 3},
		},
		Metrics: track.Metrics{
			LengthM:     340,
			CornerCount: 4,
		},
	}
}

func SampleContour() []track.Point {
	return []track.Point{
		{X: 0, Y: 0},
		{X: 100, Y: 0},
		{X: 100, Y: 100},
		{X: 0, Y: 100},
	}
}

func SampleAnalyzeRequest() circuit.AnalyzeRequest {
	return circuit.AnalyzeRequest{
		Name:   "Paddock Sketch",
		Points: SampleContour(),
	}
}

func CreateSampleCircuit(repo *circuit.Repository) *track.Model {
	sample := SampleCircuit()
	if err := repo.Register(sample); err != nil {
		log.Fatalf("createSampleCircuit: %v\n", err)
	}
	return sample
}
