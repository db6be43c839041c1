package metrics

import "math"

// TrackingError is the RMS deviation of the probe from the target curve.
type TrackingError struct {
	name    string
	sumSq   float64
	samples int
}

func NewTrackingError() *TrackingError {
	return &TrackingError{name: "tracking_error"}
}

func (m *TrackingError) Name() string { return m.name }

func (m *TrackingError) Observe(measurement, setpoint, power, t float64) {
	diff := setpoint - measurement
	m.sumSq += diff * diff
	m.samples++
}

func (m *TrackingError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *TrackingError) Reset() {
	m.sumSq = 0
	m.samples = 0
}

// MeanAbsError is the mean absolute deviation from the target curve.
type MeanAbsError struct {
	name    string
	sum     float64
	samples int
}

func NewMeanAbsError() *MeanAbsError {
	return &MeanAbsError{name: "mean_abs_error"}
}

func (m *MeanAbsError) Name() string { return m.name }

func (m *MeanAbsError) Observe(measurement, setpoint, power, t float64) {
	m.sum += math.Abs(setpoint - measurement)
	m.samples++
}

func (m *MeanAbsError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanAbsError) Reset() {
	m.sum = 0
	m.samples = 0
}
