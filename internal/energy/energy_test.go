package energy

import (
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestEstimatePriorityChain(t *testing.T) {
	if got := Estimate(f(0.9), f(0.1), f(0.1), f(-10), 120); got != 0.9 {
		t.Fatalf("explicit priority: got %v want 0.9", got)
	}
	if got := Estimate(nil, f(0.4), f(0.1), f(-10), 120); got != 0.4 {
		t.Fatalf("cue_in priority: got %v want 0.4", got)
	}
	if got := Estimate(nil, nil, f(0.6), f(-10), 120); got != 0.6 {
		t.Fatalf("cue_out priority: got %v want 0.6", got)
	}
	if got := Estimate(nil, nil, nil, f(-20), 120); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("loudness mapping: got %v want 0.5", got)
	}
	if got := Estimate(nil, nil, nil, nil, 130); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("bpm mapping: got %v want 0.5", got)
	}
	if got := Estimate(nil, nil, nil, nil, 0); got != neutral {
		t.Fatalf("neutral fallback: got %v want %v", got, neutral)
	}
}

func TestLookaheadVariance(t *testing.T) {
	v := LookaheadVariance(0.5, []float64{0.5, 0.5}, 3)
	if v != 0 {
		t.Fatalf("constant series variance = %v, want 0", v)
	}

	v2 := LookaheadVariance(1.0, []float64{0.0}, 3)
	if v2 != 0 {
		t.Fatalf("single following item variance = %v, want 0 (fewer than 2 items)", v2)
	}

	v3 := LookaheadVariance(1.0, []float64{0.0, 1.0}, 3)
	if math.Abs(v3-0.25) > 1e-9 {
		t.Fatalf("two following items variance = %v, want 0.25", v3)
	}
}

func TestScoreLowerIsBetter(t *testing.T) {
	close := Score(0.5, 0.52, []float64{0.5, 0.5}, 3)
	far := Score(0.5, 0.95, []float64{0.2, 0.9}, 3)
	if close >= far {
		t.Fatalf("expected close candidate to score lower: close=%v far=%v", close, far)
	}
}
