// Package demo generates synthetic channel payloads so every dashboard
// panel stays alive without a backend. Each generator mirrors one of the
// backend's simulators: same state variables, same per-tick dynamics,
// same wire shape. Generators are deterministic for a given seed.
package demo

import (
	"math"
	"time"
)

// Generator produces synthetic payloads for one channel. Tick advances
// the internal simulation by elapsed and returns the next payload; prev
// is the previously published payload, nil on the first tick.
type Generator[T any] interface {
	Kind() string
	Tick(prev *T, elapsed time.Duration) T
}

// refTick is the simulation step the original dynamics were tuned for.
// Per-tick rates are scaled by elapsed/refTick so generators behave the
// same at any cadence.
const refTick = 100 * time.Millisecond

func steps(elapsed time.Duration) float64 {
	return float64(elapsed) / float64(refTick)
}

func clampf(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func clamp01(v float64) float64 {
	return clampf(v, 0, 1)
}

func roundTo(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}

func isoNow() string {
	return time.Now().Format(time.RFC3339Nano)
}
