// Package energy implements the C2 Energy Model: estimating a track's
// energy on a 0-1 scale from whatever metadata is available, and scoring
// how well a candidate track continues the mix's energy curve.
//
// Grounded on original_source/src/autodj/generate/energy.py, with the
// variance term adapted from ga.go's segmentFitness energy-delta scoring.
package energy

import "math"

const neutral = 0.5

// Estimate derives a 0-1 energy value from a track's available metadata,
// following the priority chain from spec.md §4.2: explicit energy, then
// cue_in/cue_out energy, then loudness, then BPM, then a neutral default.
func Estimate(explicit, cueIn, cueOut, loudnessDB *float64, bpm float64) float64 {
	if explicit != nil {
		return clamp01(*explicit)
	}
	if cueIn != nil {
		return clamp01(*cueIn)
	}
	if cueOut != nil {
		return clamp01(*cueOut)
	}
	if loudnessDB != nil {
		return clamp01(mapRange(*loudnessDB, -40, 0))
	}
	if bpm > 0 {
		return clamp01(mapRange(bpm, 80, 180))
	}
	return neutral
}

// mapRange linearly maps v from [lo, hi] onto [0, 1]. Values outside
// [lo, hi] map outside [0, 1]; callers clamp the result with clamp01.
func mapRange(v, lo, hi float64) float64 {
	if hi == lo {
		return neutral
	}
	return (v - lo) / (hi - lo)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Distance is the absolute difference between two energy values.
func Distance(current, candidate float64) float64 {
	return math.Abs(current - candidate)
}

// LookaheadVariance is the population variance of the estimated energies of
// the first up-to-window tracks in rest, the items immediately following
// candidate — candidate itself is not part of the window. Matches spec.md
// §4.2's lookahead_variance(candidate, rest, W), 0 if fewer than 2 items.
func LookaheadVariance(candidateEnergy float64, restEnergies []float64, window int) float64 {
	n := window
	if n > len(restEnergies) {
		n = len(restEnergies)
	}
	if n < 2 {
		return 0
	}
	values := restEnergies[:n]

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return sqDiff / float64(len(values))
}

// Score combines energy distance and lookahead variance into the single
// value the Selector minimizes: score = 0.7*distance + 0.3*sqrt(variance).
func Score(current, candidate float64, restEnergies []float64, window int) float64 {
	d := Distance(current, candidate)
	v := LookaheadVariance(candidate, restEnergies, window)
	return 0.7*d + 0.3*math.Sqrt(v)
}
