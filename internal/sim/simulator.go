package sim

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	plant      Plant
	controller Controller
	setpoint   Setpoint
	metrics    []Metric
	observers  []Observer
}

func New(plant Plant, controller Controller, setpoint Setpoint) *Simulator {
	return &Simulator{
		plant:      plant,
		controller: controller,
		setpoint:   setpoint,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		Samples: make([]Sample, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0

	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		setpoint := s.setpoint.At(t)
		measurement := s.plant.Measurement()

		if math.IsNaN(measurement) || math.IsInf(measurement, 0) {
			err := SimError{Time: t, Step: i, Message: "non-finite measurement"}
			result.Errors = append(result.Errors, err)
			break
		}

		power := clamp(s.controller.Output(measurement, setpoint, cfg.Dt), cfg.MinPower, cfg.MaxPower)

		for _, m := range s.metrics {
			m.Observe(measurement, setpoint, power, t)
		}

		tel := s.plant.Snapshot()
		sample := Sample{
			Time:        t,
			Setpoint:    setpoint,
			Measurement: measurement,
			BeanTemp:    tel.BeanTemp,
			DrumTemp:    tel.DrumTemp,
			Power:       power,
			WaterPct:    tel.WaterPct,
			WeightPct:   tel.WeightPct,
			RoR:         tel.RoR,
		}
		result.Samples = append(result.Samples, sample)

		for _, obs := range s.observers {
			obs.OnStep(sample)
		}

		s.plant.Advance(power, t, cfg.Dt)
		t += cfg.Dt
		result.Steps++
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback streams samples to the callback instead of collecting
// them; returning false from the callback stops the run early.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Sample) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	t := 0.0

	for t <= cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		setpoint := s.setpoint.At(t)
		measurement := s.plant.Measurement()

		if math.IsNaN(measurement) || math.IsInf(measurement, 0) {
			return fmt.Errorf("non-finite measurement at t=%.4f", t)
		}

		power := clamp(s.controller.Output(measurement, setpoint, cfg.Dt), cfg.MinPower, cfg.MaxPower)

		tel := s.plant.Snapshot()
		if !callback(Sample{
			Time:        t,
			Setpoint:    setpoint,
			Measurement: measurement,
			BeanTemp:    tel.BeanTemp,
			DrumTemp:    tel.DrumTemp,
			Power:       power,
			WaterPct:    tel.WaterPct,
			WeightPct:   tel.WeightPct,
			RoR:         tel.RoR,
		}) {
			return nil
		}

		s.plant.Advance(power, t, cfg.Dt)
		t += cfg.Dt
	}

	return nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.MaxPower < cfg.MinPower {
		return fmt.Errorf("max power %f below min power %f", cfg.MaxPower, cfg.MinPower)
	}
	return nil
}
