// Package analysis derives roast curves and phase statistics from
// recorded runs.
package analysis

import "github.com/roastlab/roastsim/internal/sim"

// RoRSeries extracts the rate-of-rise curve from a run.
func RoRSeries(samples []sim.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.RoR
	}
	return out
}

// SmoothRoR applies a centered moving average of the given window to the
// rate-of-rise curve. A window below 2 returns the raw curve.
func SmoothRoR(samples []sim.Sample, window int) []float64 {
	raw := RoRSeries(samples)
	if window < 2 || len(raw) == 0 {
		return raw
	}

	half := window / 2
	out := make([]float64, len(raw))
	for i := range raw {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= len(raw) {
			hi = len(raw) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += raw[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

// Phases is the roast split into its three stages as fractions of the
// total time.
type Phases struct {
	YellowPct float64
	BrownPct  float64
	DevPct    float64
}

// SplitPhases computes phase percentages from milestone times. It
// reports ok=false when either milestone is missing.
func SplitPhases(dryTime, firstCrackTime, dropTime float64) (Phases, bool) {
	if dryTime <= 0 || firstCrackTime <= 0 || dropTime <= 0 || firstCrackTime < dryTime || dropTime < firstCrackTime {
		return Phases{}, false
	}
	return Phases{
		YellowPct: dryTime * 100 / dropTime,
		BrownPct:  (firstCrackTime - dryTime) * 100 / dropTime,
		DevPct:    (dropTime - firstCrackTime) * 100 / dropTime,
	}, true
}
