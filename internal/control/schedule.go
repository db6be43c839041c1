package control

import "github.com/roastlab/roastsim/internal/profile"

// Schedule plays back a manual power schedule. Each step fires once the
// measured temperature reaches its threshold or the clock reaches its
// time; the last fired step's power holds until the next one. The
// setpoint input is ignored.
type Schedule struct {
	steps   []profile.Step
	initial float64
	elapsed float64
}

// NewSchedule builds a schedule controller holding initial power until
// the first step fires.
func NewSchedule(steps []profile.Step, initial float64) *Schedule {
	return &Schedule{steps: steps, initial: initial}
}

func (s *Schedule) Output(measurement, setpoint, dt float64) float64 {
	s.elapsed += dt

	power := s.initial
	for _, step := range s.steps {
		tempHit := step.Temp > 0 && measurement >= step.Temp
		timeHit := step.Time > 0 && s.elapsed >= step.Time
		if tempHit || timeHit {
			power = step.Power
		}
	}
	return power
}
