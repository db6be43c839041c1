package profile

import (
	"fmt"
	"sort"
)

// Point is one breakpoint of a target curve: time in minutes, temperature
// in degrees C.
type Point struct {
	Time float64
	Temp float64
}

// Curve is a piecewise-linear target temperature profile.
type Curve struct {
	points []Point
}

// NewCurve builds a curve from breakpoints, sorting them by time.
func NewCurve(points []Point) (*Curve, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("curve needs at least 2 points, got %d", len(points))
	}
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Time == sorted[i-1].Time {
			return nil, fmt.Errorf("duplicate breakpoint at t=%.2f", sorted[i].Time)
		}
	}
	return &Curve{points: sorted}, nil
}

// DefaultCurve is the classic four-phase roast: drying to 149 by 5 min,
// Maillard to 204 by 10, first crack at 210 by 15, development to 227 by 20.
func DefaultCurve() *Curve {
	c, _ := NewCurve([]Point{
		{Time: 0, Temp: 20},
		{Time: 5, Temp: 149},
		{Time: 10, Temp: 204},
		{Time: 15, Temp: 210},
		{Time: 20, Temp: 227},
	})
	return c
}

// At interpolates the target temperature at time t (minutes). Times before
// the first breakpoint clamp to it, times past the last clamp to the last.
func (c *Curve) At(t float64) float64 {
	pts := c.points
	if t <= pts[0].Time {
		return pts[0].Temp
	}
	last := pts[len(pts)-1]
	if t >= last.Time {
		return last.Temp
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Time > t })
	lo, hi := pts[i-1], pts[i]
	frac := (t - lo.Time) / (hi.Time - lo.Time)
	return lo.Temp + frac*(hi.Temp-lo.Temp)
}

// Points returns a copy of the breakpoints.
func (c *Curve) Points() []Point {
	out := make([]Point, len(c.points))
	copy(out, c.points)
	return out
}
