// Package track models circuit geometry and maps lap progress onto it.
package track

import (
	"errors"
	"math"
)

// ErrEmptyGeometry is returned when a model without waypoints is queried.
var ErrEmptyGeometry = errors.New("track geometry has no waypoints")

// Point is a raw contour point without sector information.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Waypoint is a point on the track polyline tagged with its sector.
type Waypoint struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Sector int     `json:"sector"`
}

// Position is the result of mapping a lap progress onto the track.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Sector int     `json:"sector"`
}

// SectorBand describes a named progress range used by the render layer.
type SectorBand struct {
	Name  string  `json:"name"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Color string  `json:"color"`
}

// Metrics summarizes the physical characteristics of a circuit.
type Metrics struct {
	LengthM            float64 `json:"lengthM"`
	CornerCount        int     `json:"cornerCount"`
	AvgCornerRadius    float64 `json:"avgCornerRadius"`
	StraightPercentage float64 `json:"straightPercentage"`
}

// Model is an immutable circuit geometry. SVGPath and ViewBox are carried
// opaquely for the render layer. Models are replaced wholesale, never
// mutated in place.
type Model struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	SVGPath   string       `json:"svgPath"`
	ViewBox   string       `json:"viewbox"`
	Waypoints []Waypoint   `json:"waypoints"`
	Sectors   []SectorBand `json:"sectors"`
	Metrics   Metrics      `json:"metrics"`
}

// PositionAt maps a lap progress in [0,1] onto the track polyline.
// Out of range values are clamped. With a single waypoint that waypoint is
// returned for any progress. Coordinates are interpolated linearly between
// the two surrounding waypoints; the sector comes from the nearest control
// point, so it changes as a step function while x and y stay continuous.
func (m *Model) PositionAt(progress float64) (Position, error) {
	n := len(m.Waypoints)
	if n == 0 {
		return Position{}, ErrEmptyGeometry
	}
	if n == 1 {
		wp := m.Waypoints[0]
		return Position{X: wp.X, Y: wp.Y, Sector: wp.Sector}, nil
	}
	scaled := clamp(progress, 0, 1) * float64(n-1)
	idx := int(math.Floor(scaled))
	if idx > n-2 {
		idx = n - 2
	}
	t := clamp(scaled-float64(idx), 0, 1)
	a := m.Waypoints[idx]
	b := m.Waypoints[idx+1]
	nearest := int(math.Round(scaled))
	if nearest > n-1 {
		nearest = n - 1
	}
	return Position{
		X:      a.X + (b.X-a.X)*t,
		Y:      a.Y + (b.Y-a.Y)*t,
		Sector: m.Waypoints[nearest].Sector,
	}, nil
}

// Length returns the length of the open polyline in model units.
func (m *Model) Length() float64 {
	total := 0.0
	for i := 0; i+1 < len(m.Waypoints); i++ {
		dx := m.Waypoints[i+1].X - m.Waypoints[i].X
		dy := m.Waypoints[i+1].Y - m.Waypoints[i].Y
		total += math.Hypot(dx, dy)
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
