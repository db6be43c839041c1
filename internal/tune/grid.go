package tune

import (
	"context"
	"errors"
	"math"
	"sync"
)

// Candidate is one gain triple under evaluation.
type Candidate struct {
	Kp float64
	Ki float64
	Kd float64
}

// Evaluator scores a candidate; lower is better. It must be safe to call
// from multiple goroutines.
type Evaluator func(ctx context.Context, c Candidate) (float64, error)

// GridSearch exhaustively evaluates the cross product of the gain ranges
// using a bounded pool of workers.
type GridSearch struct {
	Kp      []float64
	Ki      []float64
	Kd      []float64
	Workers int
}

func NewGridSearch(kp, ki, kd []float64, workers int) *GridSearch {
	if workers < 1 {
		workers = 1
	}
	return &GridSearch{Kp: kp, Ki: ki, Kd: kd, Workers: workers}
}

// Range builds n evenly spaced values from lo to hi inclusive.
func Range(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	vals := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range vals {
		vals[i] = lo + float64(i)*step
	}
	return vals
}

func (g *GridSearch) candidates() []Candidate {
	out := make([]Candidate, 0, len(g.Kp)*len(g.Ki)*len(g.Kd))
	for _, kp := range g.Kp {
		for _, ki := range g.Ki {
			for _, kd := range g.Kd {
				out = append(out, Candidate{Kp: kp, Ki: ki, Kd: kd})
			}
		}
	}
	return out
}

// Search returns the best-scoring candidate. Candidates whose evaluation
// fails are skipped; Search errors only when every candidate fails or the
// context is cancelled.
func (g *GridSearch) Search(ctx context.Context, eval Evaluator) (Candidate, float64, error) {
	cands := g.candidates()
	if len(cands) == 0 {
		return Candidate{}, 0, errors.New("tune: empty search grid")
	}

	scores := make([]float64, len(cands))
	errs := make([]error, len(cands))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < g.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				scores[idx], errs[idx] = eval(ctx, cands[idx])
			}
		}()
	}

	for idx := range cands {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return Candidate{}, 0, ctx.Err()
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	best := math.Inf(1)
	bestIdx := -1
	for i := range cands {
		if errs[i] != nil {
			continue
		}
		if scores[i] < best {
			best = scores[i]
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return Candidate{}, 0, errors.New("tune: all candidates failed")
	}
	return cands[bestIdx], best, nil
}
