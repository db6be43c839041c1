package metrics

import "math"

// Overshoot is the worst excursion of the probe above the target curve.
// Never going over reads as zero.
type Overshoot struct {
	name string
	max  float64
}

func NewOvershoot() *Overshoot {
	return &Overshoot{name: "overshoot"}
}

func (m *Overshoot) Name() string { return m.name }

func (m *Overshoot) Observe(measurement, setpoint, power, t float64) {
	m.max = math.Max(m.max, measurement-setpoint)
}

func (m *Overshoot) Value() float64 { return m.max }

func (m *Overshoot) Reset() { m.max = 0 }

// ControlEffort is the mean absolute burner power applied over the run.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (m *ControlEffort) Name() string { return m.name }

func (m *ControlEffort) Observe(measurement, setpoint, power, t float64) {
	m.sum += math.Abs(power)
	m.samples++
}

func (m *ControlEffort) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *ControlEffort) Reset() {
	m.sum = 0
	m.samples = 0
}
