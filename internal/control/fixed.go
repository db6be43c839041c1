package control

// Fixed holds the burner at a constant level regardless of the probe.
type Fixed struct {
	Level float64
}

func NewFixed(level float64) *Fixed {
	return &Fixed{Level: level}
}

func (f *Fixed) Output(measurement, setpoint, dt float64) float64 {
	return f.Level
}
