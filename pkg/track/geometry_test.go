package track

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func sampleModel() *Model {
	return &Model{
		ID:   "sample",
		Name: "Sample",
		Waypoints: []Waypoint{
			{X: 0, Y: 0, Sector: 1},
			{X: 10, Y: 0, Sector: 1},
			{X: 10, Y: 10, Sector: 2},
		},
	}
}

func TestPositionAt(t *testing.T) {
	m := sampleModel()
	type args struct {
		progress float64
	}
	tests := []struct {
		name string
		args args
		want Position
	}{
		{name: "start", args: args{progress: 0}, want: Position{X: 0, Y: 0, Sector: 1}},
		{name: "quarter", args: args{progress: 0.25}, want: Position{X: 5, Y: 0, Sector: 1}},
		{name: "three quarters", args: args{progress: 0.75}, want: Position{X: 10, Y: 5, Sector: 2}},
		{name: "end", args: args{progress: 1}, want: Position{X: 10, Y: 10, Sector: 2}},
		{name: "clamped below", args: args{progress: -0.5}, want: Position{X: 0, Y: 0, Sector: 1}},
		{name: "clamped above", args: args{progress: 1.5}, want: Position{X: 10, Y: 10, Sector: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.PositionAt(tt.args.progress)
			if err != nil {
				t.Errorf("PositionAt() error = %v", err)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PositionAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPositionAtEmptyGeometry(t *testing.T) {
	m := &Model{ID: "empty"}
	if _, err := m.PositionAt(0.5); !errors.Is(err, ErrEmptyGeometry) {
		t.Errorf("PositionAt() error = %v, want ErrEmptyGeometry", err)
	}
}

func TestPositionAtSingleWaypoint(t *testing.T) {
	m := &Model{Waypoints: []Waypoint{{X: 4, Y: 7, Sector: 2}}}
	for _, progress := range []float64{0, 0.3, 1} {
		got, err := m.PositionAt(progress)
		if err != nil {
			t.Fatalf("PositionAt(%v) error = %v", progress, err)
		}
		want := Position{X: 4, Y: 7, Sector: 2}
		if got != want {
			t.Errorf("PositionAt(%v) = %v, want %v", progress, got, want)
		}
	}
}

func TestPositionAtEndpoints(t *testing.T) {
	near := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
	for _, m := range []*Model{Silverstone(), FSAEThailand(), sampleModel()} {
		first := m.Waypoints[0]
		last := m.Waypoints[len(m.Waypoints)-1]

		got, err := m.PositionAt(0)
		if err != nil {
			t.Fatalf("%s: PositionAt(0) error = %v", m.ID, err)
		}
		if !near(got.X, first.X) || !near(got.Y, first.Y) || got.Sector != first.Sector {
			t.Errorf("%s: PositionAt(0) = %v, want first waypoint %v", m.ID, got, first)
		}

		got, err = m.PositionAt(1)
		if err != nil {
			t.Fatalf("%s: PositionAt(1) error = %v", m.ID, err)
		}
		if !near(got.X, last.X) || !near(got.Y, last.Y) || got.Sector != last.Sector {
			t.Errorf("%s: PositionAt(1) = %v, want last waypoint %v", m.ID, got, last)
		}
	}
}

func TestPositionAtContinuity(t *testing.T) {
	m := Silverstone()
	maxSegment := 0.0
	for i := 0; i+1 < len(m.Waypoints); i++ {
		d := math.Hypot(
			m.Waypoints[i+1].X-m.Waypoints[i].X,
			m.Waypoints[i+1].Y-m.Waypoints[i].Y)
		maxSegment = math.Max(maxSegment, d)
	}

	const steps = 1000
	// each step advances at most (n-1)/steps through a single segment
	bound := maxSegment*float64(len(m.Waypoints)-1)/steps + 1e-9
	prev, err := m.PositionAt(0)
	if err != nil {
		t.Fatalf("PositionAt(0) error = %v", err)
	}
	for i := 1; i <= steps; i++ {
		cur, err := m.PositionAt(float64(i) / steps)
		if err != nil {
			t.Fatalf("PositionAt() error = %v", err)
		}
		if d := math.Hypot(cur.X-prev.X, cur.Y-prev.Y); d > bound {
			t.Fatalf("jump of %.3f at progress %.3f exceeds %.3f",
				d, float64(i)/steps, bound)
		}
		prev = cur
	}
}

func TestLength(t *testing.T) {
	m := sampleModel()
	if got := m.Length(); got != 20 {
		t.Errorf("Length() = %v, want 20", got)
	}
}
