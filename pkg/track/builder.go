package track

import (
	"fmt"
	"math"
	"strings"
)

// cornerAngle is the direction change (radians) above which a segment
// counts as a corner, roughly 17 degrees.
const cornerAngle = 0.3

// pixelScale converts contour units to meters for the length estimate.
const pixelScale = 5.0

// Simplify reduces a polyline with the Douglas-Peucker algorithm. Points
// further than epsilon from the simplified line are kept.
func Simplify(points []Point, epsilon float64) []Point {
	if len(points) <= 2 {
		return points
	}
	dmax := 0.0
	index := 0
	end := len(points) - 1
	for i := 1; i < end; i++ {
		if d := perpendicularDistance(points[i], points[0], points[end]); d > dmax {
			index = i
			dmax = d
		}
	}
	if dmax > epsilon {
		left := Simplify(points[:index+1], epsilon)
		right := Simplify(points[index:], epsilon)
		out := make([]Point, 0, len(left)+len(right)-1)
		out = append(out, left[:len(left)-1]...)
		out = append(out, right...)
		return out
	}
	return []Point{points[0], points[end]}
}

func perpendicularDistance(p, lineStart, lineEnd Point) float64 {
	dx := lineEnd.X - lineStart.X
	dy := lineEnd.Y - lineStart.Y
	if dx == 0 && dy == 0 {
		return math.Hypot(p.X-lineStart.X, p.Y-lineStart.Y)
	}
	t := ((p.X-lineStart.X)*dx + (p.Y-lineStart.Y)*dy) / (dx*dx + dy*dy)
	t = clamp(t, 0, 1)
	return math.Hypot(p.X-(lineStart.X+t*dx), p.Y-(lineStart.Y+t*dy))
}

// SVGPath renders points as a closed SVG path (M/L/Z).
func SVGPath(points []Point) string {
	if len(points) < 2 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "M %.1f %.1f", points[0].X, points[0].Y)
	for _, p := range points[1:] {
		fmt.Fprintf(&sb, " L %.1f %.1f", p.X, p.Y)
	}
	sb.WriteString(" Z")
	return sb.String()
}

// SpacedPoints resamples a closed contour into count evenly spaced points.
func SpacedPoints(points []Point, count int) []Point {
	if len(points) < 2 || count <= 0 {
		return nil
	}
	segments := make([]float64, len(points))
	total := 0.0
	for i := range points {
		j := (i + 1) % len(points)
		segments[i] = math.Hypot(points[j].X-points[i].X, points[j].Y-points[i].Y)
		total += segments[i]
	}
	if total == 0 {
		return nil
	}
	spacing := total / float64(count)

	out := make([]Point, 0, count)
	segIdx := 0
	segProgress := 0.0
	for range count {
		for segIdx < len(segments) && segProgress >= segments[segIdx] {
			segProgress -= segments[segIdx]
			segIdx = (segIdx + 1) % len(segments)
		}
		j := (segIdx + 1) % len(points)
		t := clamp(segProgress/math.Max(segments[segIdx], 0.001), 0, 1)
		out = append(out, Point{
			X: points[segIdx].X + t*(points[j].X-points[segIdx].X),
			Y: points[segIdx].Y + t*(points[j].Y-points[segIdx].Y),
		})
		segProgress += spacing
	}
	return out
}

// TagSectorsByThirds converts contour points to waypoints whose sector is
// assigned by progress thirds (1, 2, 3).
func TagSectorsByThirds(points []Point) []Waypoint {
	out := make([]Waypoint, 0, len(points))
	total := len(points)
	for i, p := range points {
		progress := float64(i) / float64(total)
		sector := 3
		switch {
		case progress < 0.33:
			sector = 1
		case progress < 0.66:
			sector = 2
		}
		out = append(out, Waypoint{X: p.X, Y: p.Y, Sector: sector})
	}
	return out
}

// DefaultSectorBands returns the standard three-sector split with the
// dashboard's sector colors.
func DefaultSectorBands() []SectorBand {
	return []SectorBand{
		{Name: "Sector 1", Start: 0.0, End: 0.33, Color: "#a855f7"},
		{Name: "Sector 2", Start: 0.33, End: 0.66, Color: "#22d3ee"},
		{Name: "Sector 3", Start: 0.66, End: 1.0, Color: "#4ade80"},
	}
}

// ComputeMetrics derives track metrics from a closed contour: a scaled
// length estimate, the number of direction changes above cornerAngle and
// the share of straight segments.
func ComputeMetrics(points []Point) Metrics {
	if len(points) < 3 {
		return Metrics{}
	}
	perimeter := 0.0
	corners := 0
	straights := 0
	for i := range points {
		j := (i + 1) % len(points)
		k := (i + 2) % len(points)
		perimeter += math.Hypot(points[j].X-points[i].X, points[j].Y-points[i].Y)

		v1x, v1y := points[j].X-points[i].X, points[j].Y-points[i].Y
		v2x, v2y := points[k].X-points[j].X, points[k].Y-points[j].Y
		len1 := math.Hypot(v1x, v1y)
		len2 := math.Hypot(v2x, v2y)
		if len1 == 0 || len2 == 0 {
			continue
		}
		dot := clamp((v1x*v2x+v1y*v2y)/(len1*len2), -1, 1)
		if math.Acos(dot) > cornerAngle {
			corners++
		} else {
			straights++
		}
	}
	estimated := perimeter * pixelScale
	avgRadius := 0.0
	if corners > 0 {
		avgRadius = estimated / float64(corners) / 2
	} else {
		avgRadius = estimated / 2
	}
	return Metrics{
		LengthM:            math.Round(estimated),
		CornerCount:        corners,
		AvgCornerRadius:    math.Round(avgRadius*10) / 10,
		StraightPercentage: math.Round(float64(straights)/float64(len(points))*100) / 100,
	}
}
