package quality

import (
	"math"
	"testing"

	"github.com/maxime-c16/autodj-headless/internal/track"
)

func TestEvaluateEmptyAndSingleton(t *testing.T) {
	if s := Evaluate(nil); s.Value != 0 {
		t.Fatalf("Evaluate(nil).Value = %v, want 0", s.Value)
	}
	if s := Evaluate([]track.Track{{ID: "1"}}); s.Value != 0 {
		t.Fatalf("Evaluate(single track).Value = %v, want 0", s.Value)
	}
}

func TestEvaluatePerfectChainScoresZero(t *testing.T) {
	e := 0.5
	tracks := []track.Track{
		{ID: "1", Key: "8A", Genre: "house", Energy: &e},
		{ID: "2", Key: "8A", Genre: "house", Energy: &e},
	}
	s := Evaluate(tracks)
	if s.Value != 0 {
		t.Fatalf("identical adjacent tracks should score 0, got %v", s.Value)
	}
}

func TestEvaluateRewardsSmoothness(t *testing.T) {
	e1, e2, e3 := 0.5, 0.52, 0.95
	smooth := []track.Track{
		{ID: "1", Key: "8A", Genre: "house", Energy: &e1},
		{ID: "2", Key: "9A", Genre: "house", Energy: &e2},
	}
	rough := []track.Track{
		{ID: "1", Key: "8A", Genre: "house", Energy: &e1},
		{ID: "2", Key: "3B", Genre: "rock", Energy: &e3},
	}

	smoothScore := Evaluate(smooth)
	roughScore := Evaluate(rough)
	if smoothScore.Value >= roughScore.Value {
		t.Fatalf("smooth transition should score lower than rough: smooth=%v rough=%v", smoothScore.Value, roughScore.Value)
	}
}

func TestApplyWeightedPenaltyClampsAtOne(t *testing.T) {
	if got := applyWeightedPenalty(10, 2, 0.4); math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("applyWeightedPenalty should clamp ratio to 1, got %v", got)
	}
}
