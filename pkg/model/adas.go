package model

// ADASFrame is the payload streamed on the adas channel. Field names follow
// the vision pipeline output.
//
//nolint:tagliatelle // client compatibility
type ADASFrame struct {
	Timestamp float64 `json:"timestamp"`
	FrameID   int     `json:"frame_id"`

	WarningLevel   string   `json:"warning_level"`
	WarningMessage string   `json:"warning_message"`
	Threats        []Threat `json:"threats"`
	BrakeAssist    bool     `json:"brake_assist"`

	LaneStatus        string  `json:"lane_status"`
	CenterOffset      float64 `json:"center_offset"`
	SuggestedSteering float64 `json:"suggested_steering"`
	LaneConfidence    float64 `json:"lane_confidence"`

	MinDistance  float64 `json:"min_distance"`
	DistanceZone string  `json:"distance_zone"`

	FPS              float64 `json:"fps"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
}

//nolint:tagliatelle // client compatibility
type Threat struct {
	ObjectID         int     `json:"object_id"`
	ObjectClass      string  `json:"object_class"`
	Distance         float64 `json:"distance"`
	RelativeVelocity float64 `json:"relative_velocity"`
	TTC              float64 `json:"ttc"`
	LateralOffset    float64 `json:"lateral_offset"`
	WarningLevel     string  `json:"warning_level"`
	Confidence       float64 `json:"confidence"`
}
