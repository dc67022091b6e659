package circuit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fevtel/evdash-service-go/pkg/track"
)

func TestAnalysisResultModel(t *testing.T) {
	type args struct {
		result AnalysisResult
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{
			name: "valid",
			args: args{result: AnalysisResult{
				ID:   "test",
				Name: "Test",
				TrackPoints: []track.Waypoint{
					{X: 0, Y: 0, Sector: 1},
					{X: 1, Y: 0, Sector: 2},
				},
			}},
			wantErr: false,
		},
		{
			name:    "missing id",
			args:    args{result: AnalysisResult{Name: "Test"}},
			wantErr: true,
		},
		{
			name:    "no track points",
			args:    args{result: AnalysisResult{ID: "test"}},
			wantErr: true,
		},
		{
			name: "invalid sector",
			args: args{result: AnalysisResult{
				ID:          "test",
				TrackPoints: []track.Waypoint{{X: 0, Y: 0, Sector: 0}},
			}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.args.result.Model()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.args.result.ID, m.ID)
			assert.Equal(t, tt.args.result.TrackPoints, m.Waypoints)
		})
	}
}

func TestResultFromModelRoundTrip(t *testing.T) {
	orig := track.Silverstone()
	result := ResultFromModel(orig)

	assert.Equal(t, orig.ID, result.ID)
	assert.Len(t, result.Waypoints, len(orig.Waypoints))
	assert.Equal(t, orig.Waypoints, result.TrackPoints)

	back, err := result.Model()
	assert.NoError(t, err)
	assert.Equal(t, orig.ID, back.ID)
	assert.Equal(t, orig.Waypoints, back.Waypoints)
	assert.Equal(t, orig.Metrics, back.Metrics)
}

func TestBuildResult(t *testing.T) {
	contour := []track.Point{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 200, Y: 0},
		{X: 200, Y: 100}, {X: 100, Y: 100}, {X: 0, Y: 100},
	}
	result, err := BuildResult("custom", "Custom Track", contour)
	assert.NoError(t, err)

	assert.Equal(t, "custom", result.ID)
	assert.Len(t, result.Waypoints, 50)
	assert.Len(t, result.TrackPoints, 50)
	assert.True(t, strings.HasPrefix(result.SVGPath, "M "))
	assert.True(t, strings.HasSuffix(result.SVGPath, " Z"))
	assert.Len(t, result.Sectors, 3)
	assert.Equal(t, "0 0 210 110", result.ViewBox)

	// sector tags run 1..3 and never decrease along the lap
	prev := 0
	for _, wp := range result.TrackPoints {
		assert.GreaterOrEqual(t, wp.Sector, 1)
		assert.LessOrEqual(t, wp.Sector, 3)
		assert.GreaterOrEqual(t, wp.Sector, prev)
		prev = wp.Sector
	}
	assert.Equal(t, 1, result.TrackPoints[0].Sector)
	assert.Equal(t, 3, result.TrackPoints[49].Sector)

	model, err := result.Model()
	assert.NoError(t, err)
	assert.Len(t, model.Waypoints, 50)
}

func TestBuildResultTooFewPoints(t *testing.T) {
	_, err := BuildResult("x", "X", []track.Point{{X: 0, Y: 0}, {X: 1, Y: 1}})
	assert.Error(t, err)
}

func TestFallbackResult(t *testing.T) {
	result := FallbackResult("upload", "Uploaded Track")

	assert.Equal(t, "upload", result.ID)
	assert.Equal(t, "Uploaded Track", result.Name)
	assert.Len(t, result.Waypoints, 50)
	assert.Len(t, result.TrackPoints, 50)
	assert.Equal(t, "0 0 800 450", result.ViewBox)
	assert.Equal(t, 1, result.TrackPoints[0].Sector)
	assert.Equal(t, 3, result.TrackPoints[49].Sector)

	model, err := result.Model()
	assert.NoError(t, err)
	assert.NotNil(t, model)
}
