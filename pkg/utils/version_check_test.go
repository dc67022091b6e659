package utils

import "testing"

func TestCheckBackendVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    bool
	}{
		{"exact required", "v0.1.0", true},
		{"missing v prefix", "0.1.0", true},
		{"dev pre-release", "0.1.0-dev", true},
		{"newer patch", "v0.1.7", true},
		{"newer minor", "v0.2.3", true},
		{"newer major", "v1.0.0", true},
		{"older minor", "v0.0.9", false},
		{"not a version", "latest", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckBackendVersion(tt.version); got != tt.want {
				t.Errorf("CheckBackendVersion(%q) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}
