package tune

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestRange(t *testing.T) {
	vals := Range(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	if len(vals) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(vals))
	}
	for i := range want {
		if math.Abs(vals[i]-want[i]) > 1e-12 {
			t.Errorf("vals[%d] = %v, want %v", i, vals[i], want[i])
		}
	}

	if got := Range(2, 5, 1); len(got) != 1 || got[0] != 2 {
		t.Errorf("single-value range = %v, want [2]", got)
	}
}

func TestSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch(
		Range(0, 4, 5),
		Range(0, 2, 3),
		Range(0, 2, 3),
		4,
	)

	// quadratic bowl with the minimum at kp=2, ki=1, kd=0
	eval := func(ctx context.Context, c Candidate) (float64, error) {
		return (c.Kp-2)*(c.Kp-2) + (c.Ki-1)*(c.Ki-1) + c.Kd*c.Kd, nil
	}

	best, score, err := g.Search(context.Background(), eval)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if best.Kp != 2 || best.Ki != 1 || best.Kd != 0 {
		t.Errorf("best = %+v, want kp=2 ki=1 kd=0", best)
	}
	if score != 0 {
		t.Errorf("score = %v, want 0", score)
	}
}

func TestSearchSkipsFailedCandidates(t *testing.T) {
	g := NewGridSearch([]float64{1, 2}, []float64{0}, []float64{0}, 2)

	eval := func(ctx context.Context, c Candidate) (float64, error) {
		if c.Kp == 1 {
			return 0, errors.New("diverged")
		}
		return 7.5, nil
	}

	best, score, err := g.Search(context.Background(), eval)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if best.Kp != 2 || score != 7.5 {
		t.Errorf("best = %+v score %v, want kp=2 score 7.5", best, score)
	}
}

func TestSearchAllFailed(t *testing.T) {
	g := NewGridSearch([]float64{1}, []float64{0}, []float64{0}, 1)

	eval := func(ctx context.Context, c Candidate) (float64, error) {
		return 0, errors.New("diverged")
	}

	if _, _, err := g.Search(context.Background(), eval); err == nil {
		t.Error("expected error when every candidate fails")
	}
}

func TestSearchEmptyGrid(t *testing.T) {
	g := NewGridSearch(nil, nil, nil, 1)
	if _, _, err := g.Search(context.Background(), nil); err == nil {
		t.Error("expected error for empty grid")
	}
}

func TestSearchCancelled(t *testing.T) {
	g := NewGridSearch(Range(0, 1, 50), Range(0, 1, 10), Range(0, 1, 10), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eval := func(ctx context.Context, c Candidate) (float64, error) {
		return c.Kp, nil
	}

	if _, _, err := g.Search(ctx, eval); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
