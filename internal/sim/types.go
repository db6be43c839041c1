package sim

import (
	"fmt"
	"math"
)

// Plant is the physical model driven by the loop. It owns its state and
// advances it one tick at a time under the applied burner power.
type Plant interface {
	// Measurement returns the probe reading the controller sees.
	Measurement() float64
	// Advance steps the model by dt minutes at the given power (percent).
	Advance(power, t, dt float64)
	// Snapshot reports the internals recorded alongside each sample.
	Snapshot() Telemetry
}

// Controller produces a power output from a measurement, the current
// setpoint and the elapsed time since the previous call.
type Controller interface {
	Output(measurement, setpoint, dt float64) float64
}

// Setpoint is the target temperature curve.
type Setpoint interface {
	At(t float64) float64
}

type Metric interface {
	Name() string
	Observe(measurement, setpoint, power, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

// Telemetry is the plant-internal view at one instant.
type Telemetry struct {
	BeanTemp  float64 // true bean temperature
	DrumTemp  float64 // drum environment temperature
	WaterPct  float64 // remaining water, percent of dry mass
	WeightPct float64 // batch weight, percent of charge
	RoR       float64 // rate of rise, degrees/min
}

// Sample is one recorded tick of a run.
type Sample struct {
	Time        float64 `json:"time"`
	Setpoint    float64 `json:"setpoint"`
	Measurement float64 `json:"measurement"`
	BeanTemp    float64 `json:"bean_temp"`
	DrumTemp    float64 `json:"drum_temp"`
	Power       float64 `json:"power"`
	WaterPct    float64 `json:"water_pct"`
	WeightPct   float64 `json:"weight_pct"`
	RoR         float64 `json:"ror"`
}

type Config struct {
	Dt       float64 // tick length, minutes
	Duration float64 // run length, minutes
	MinPower float64 // burner floor, percent
	MaxPower float64 // burner ceiling, percent
}

func DefaultConfig() Config {
	return Config{
		Dt:       0.024,
		Duration: 12.0,
		MinPower: 0,
		MaxPower: 100,
	}
}

type Result struct {
	Samples []Sample
	Metrics map[string]float64
	Steps   int
	Errors  []error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
