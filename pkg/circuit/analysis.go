package circuit

import (
	"errors"
	"fmt"
	"math"

	"github.com/fevtel/evdash-service-go/pkg/track"
)

// AnalysisResult is the wire shape produced by the circuit analyzer. The
// dashboard core consumes it as-is: only trackPoints, svgPath and viewbox
// feed the geometry model, everything else is carried for rendering.
type AnalysisResult struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	SVGPath     string             `json:"svgPath"`
	Waypoints   []track.Point      `json:"waypoints"`
	TrackPoints []track.Waypoint   `json:"trackPoints"`
	Sectors     []track.SectorBand `json:"sectors"`
	Metrics     track.Metrics      `json:"metrics"`
	ImageData   string             `json:"imageData,omitempty"`
	ViewBox     string             `json:"viewbox"`
}

// Model converts the analysis result into a track model.
func (r *AnalysisResult) Model() (*track.Model, error) {
	if r.ID == "" {
		return nil, errors.New("analysis result has no id")
	}
	if len(r.TrackPoints) == 0 {
		return nil, fmt.Errorf("analysis result %q has no track points", r.ID)
	}
	for i, wp := range r.TrackPoints {
		if wp.Sector < 1 {
			return nil, fmt.Errorf(
				"analysis result %q: track point %d has invalid sector %d",
				r.ID, i, wp.Sector)
		}
	}
	return &track.Model{
		ID:        r.ID,
		Name:      r.Name,
		SVGPath:   r.SVGPath,
		ViewBox:   r.ViewBox,
		Waypoints: r.TrackPoints,
		Sectors:   r.Sectors,
		Metrics:   r.Metrics,
	}, nil
}

// ResultFromModel renders a registered model back into the analyzer wire
// shape for API responses.
func ResultFromModel(m *track.Model) AnalysisResult {
	waypoints := make([]track.Point, 0, len(m.Waypoints))
	for _, wp := range m.Waypoints {
		waypoints = append(waypoints, track.Point{X: wp.X, Y: wp.Y})
	}
	return AnalysisResult{
		ID:          m.ID,
		Name:        m.Name,
		SVGPath:     m.SVGPath,
		Waypoints:   waypoints,
		TrackPoints: m.Waypoints,
		Sectors:     m.Sectors,
		Metrics:     m.Metrics,
		ViewBox:     m.ViewBox,
	}
}

// BuildResult runs the polyline pipeline over an already extracted contour:
// Douglas-Peucker simplification, SVG path rendering, even waypoint spacing
// and sector tagging by progress thirds.
func BuildResult(id, name string, contour []track.Point) (AnalysisResult, error) {
	if len(contour) < 3 {
		return AnalysisResult{}, fmt.Errorf("contour needs at least 3 points, got %d", len(contour))
	}
	simplified := track.Simplify(contour, 5.0)
	spaced := track.SpacedPoints(simplified, 50)
	if len(spaced) == 0 {
		return AnalysisResult{}, errors.New("contour has zero length")
	}
	return AnalysisResult{
		ID:          id,
		Name:        name,
		SVGPath:     track.SVGPath(simplified),
		Waypoints:   spaced,
		TrackPoints: track.TagSectorsByThirds(spaced),
		Sectors:     track.DefaultSectorBands(),
		Metrics:     track.ComputeMetrics(simplified),
		ViewBox:     viewBoxFor(contour),
	}, nil
}

// FallbackResult builds the oval stand-in circuit used when no analyzer
// output is available for an upload.
func FallbackResult(id, name string) AnalysisResult {
	const (
		cx, cy = 400.0, 225.0
		rx, ry = 150.0, 100.0
	)
	outline := track.Oval(cx, cy, rx, ry, 24)
	waypoints := track.Oval(cx, cy, rx, ry, 50)
	trackPoints := make([]track.Waypoint, 0, len(waypoints))
	for i, p := range waypoints {
		trackPoints = append(trackPoints, track.Waypoint{
			X: p.X, Y: p.Y, Sector: i/17 + 1,
		})
	}
	return AnalysisResult{
		ID:          id,
		Name:        name,
		SVGPath:     track.SVGPath(outline),
		Waypoints:   waypoints,
		TrackPoints: trackPoints,
		Sectors:     track.DefaultSectorBands(),
		Metrics: track.Metrics{
			LengthM:            1500,
			CornerCount:        8,
			AvgCornerRadius:    50,
			StraightPercentage: 0.4,
		},
		ViewBox: "0 0 800 450",
	}
}

func viewBoxFor(points []track.Point) string {
	maxX, maxY := 0.0, 0.0
	for _, p := range points {
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return fmt.Sprintf("0 0 %d %d", int(math.Ceil(maxX))+10, int(math.Ceil(maxY))+10)
}
