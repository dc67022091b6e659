package track

import "math"

// Silverstone returns the built-in default circuit. The polyline matches
// the dashboard's bundled Silverstone outline.
//
//nolint:funlen // data table
func Silverstone() *Model {
	return &Model{
		ID:   "silverstone",
		Name: "Silverstone",
		SVGPath: "M 180 200 " +
			"L 220 180 Q 250 170 280 175 " +
			"L 350 195 Q 380 200 400 220 " +
			"L 420 260 Q 430 290 420 320 " +
			"L 400 350 Q 380 370 350 375 " +
			"L 280 365 Q 250 360 230 340 " +
			"L 200 300 Q 180 270 175 240 " +
			"Z",
		ViewBox: "130 130 340 280",
		Waypoints: []Waypoint{
			{X: 180, Y: 200, Sector: 1}, {X: 200, Y: 188, Sector: 1},
			{X: 230, Y: 178, Sector: 1}, {X: 270, Y: 177, Sector: 1},
			{X: 310, Y: 185, Sector: 1}, {X: 350, Y: 197, Sector: 2},
			{X: 385, Y: 212, Sector: 2}, {X: 408, Y: 235, Sector: 2},
			{X: 420, Y: 265, Sector: 2}, {X: 425, Y: 300, Sector: 2},
			{X: 415, Y: 330, Sector: 3}, {X: 395, Y: 355, Sector: 3},
			{X: 365, Y: 370, Sector: 3}, {X: 325, Y: 370, Sector: 3},
			{X: 285, Y: 362, Sector: 3}, {X: 250, Y: 350, Sector: 1},
			{X: 220, Y: 325, Sector: 1}, {X: 200, Y: 290, Sector: 1},
			{X: 180, Y: 250, Sector: 1}, {X: 175, Y: 220, Sector: 1},
		},
		Sectors: DefaultSectorBands(),
		Metrics: Metrics{
			LengthM:            5891,
			CornerCount:        18,
			AvgCornerRadius:    85,
			StraightPercentage: 0.35,
		},
	}
}

// FSAEThailand returns the student formula circuit: a 396m main straight,
// a right hairpin into a chicane, the pit complex and the back straight.
func FSAEThailand() *Model {
	points := fsaePoints()
	waypoints := make([]Waypoint, 0, len(points))
	total := len(points)
	for i, p := range points {
		progress := float64(i) / float64(total)
		sector := 3
		switch {
		case progress < 0.35:
			sector = 1
		case progress < 0.65:
			sector = 2
		}
		waypoints = append(waypoints, Waypoint{X: p.X, Y: p.Y, Sector: sector})
	}
	return &Model{
		ID:   "fsae_thailand",
		Name: "FSAE Thailand Circuit",
		SVGPath: "M 50 100 " +
			"L 446 100 Q 470 100 485 120 " +
			"L 540 180 L 540 250 " +
			"L 600 250 L 600 350 L 480 350 " +
			"L 480 420 L 400 420 L 400 350 " +
			"L 100 350 Q 60 350 50 310 " +
			"L 50 100 Z",
		ViewBox:   "0 0 650 450",
		Waypoints: waypoints,
		Sectors: []SectorBand{
			{Name: "Main Straight", Start: 0.0, End: 0.35, Color: "#00d4ff"},
			{Name: "Technical Section", Start: 0.35, End: 0.65, Color: "#ff6b35"},
			{Name: "Pit Complex", Start: 0.65, End: 1.0, Color: "#4ade80"},
		},
		Metrics: Metrics{
			LengthM:            1050,
			CornerCount:        12,
			AvgCornerRadius:    15,
			StraightPercentage: 0.40,
		},
	}
}

func fsaePoints() []Point {
	points := make([]Point, 0, 50)
	// main straight (396m section)
	for i := range 15 {
		points = append(points, Point{X: 50 + 396*float64(i)/14, Y: 100})
	}
	// turn 1, right hairpin
	for i := range 5 {
		theta := -math.Pi/2 + math.Pi/2*float64(i)/4
		points = append(points, Point{
			X: 470 + 20*math.Cos(theta),
			Y: 140 + 40*math.Sin(theta),
		})
	}
	// chicane section
	points = append(points,
		Point{X: 540, Y: 200}, Point{X: 540, Y: 250},
		Point{X: 570, Y: 250}, Point{X: 600, Y: 280},
		Point{X: 600, Y: 320}, Point{X: 560, Y: 350},
	)
	// pit lane entry area
	points = append(points,
		Point{X: 480, Y: 350}, Point{X: 480, Y: 400},
		Point{X: 440, Y: 420}, Point{X: 400, Y: 400},
		Point{X: 400, Y: 350},
	)
	// back straight
	for i := range 10 {
		points = append(points, Point{X: 400 - 300*float64(i)/9, Y: 350})
	}
	// final turn back to start
	for i := range 5 {
		theta := math.Pi/2 + math.Pi/2*float64(i)/4
		points = append(points, Point{
			X: 80 + 30*math.Cos(theta),
			Y: 310 + 40*math.Sin(theta),
		})
	}
	// connect back to start
	for i := range 5 {
		points = append(points, Point{X: 50, Y: 270 - 170*float64(i)/4})
	}
	return points
}

// Oval returns count points along an ellipse, used for fallback circuits.
func Oval(cx, cy, rx, ry float64, count int) []Point {
	points := make([]Point, 0, count)
	for i := range count {
		theta := 2 * math.Pi * float64(i) / float64(count)
		points = append(points, Point{
			X: cx + rx*math.Cos(theta),
			Y: cy + ry*math.Sin(theta),
		})
	}
	return points
}
