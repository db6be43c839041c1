package sim

import (
	"context"
	"math"
	"testing"
)

// testPlant relaxes toward the drum ambient at a rate set by power.
type testPlant struct {
	temp float64
}

func (p *testPlant) Measurement() float64 { return p.temp }

func (p *testPlant) Advance(power, t, dt float64) {
	p.temp += power * 0.1 * dt
}

func (p *testPlant) Snapshot() Telemetry {
	return Telemetry{BeanTemp: p.temp}
}

type testController struct {
	out float64
}

func (c *testController) Output(measurement, setpoint, dt float64) float64 {
	return c.out
}

type flatSetpoint float64

func (f flatSetpoint) At(t float64) float64 { return float64(f) }

func TestSimulatorRun(t *testing.T) {
	plant := &testPlant{temp: 20}
	ctrl := &testController{out: 50}

	s := New(plant, ctrl, flatSetpoint(200))

	cfg := Config{Dt: 0.1, Duration: 1.0, MaxPower: 100}
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Samples) != 11 {
		t.Errorf("expected 11 samples, got %d", len(result.Samples))
	}

	final := result.Samples[len(result.Samples)-1]
	if final.Measurement <= 20 {
		t.Errorf("plant should heat under power, got %f", final.Measurement)
	}
	if final.Setpoint != 200 {
		t.Errorf("expected setpoint 200, got %f", final.Setpoint)
	}
}

func TestSimulatorPowerClamping(t *testing.T) {
	plant := &testPlant{temp: 20}
	ctrl := &testController{out: 500}

	s := New(plant, ctrl, flatSetpoint(200))

	cfg := Config{Dt: 0.1, Duration: 0.5, MinPower: 10, MaxPower: 100}
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, sample := range result.Samples {
		if sample.Power < 10 || sample.Power > 100 {
			t.Errorf("power %f outside [10, 100] at t=%f", sample.Power, sample.Time)
		}
	}

	ctrl.out = -500
	result, err = s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, sample := range result.Samples {
		if sample.Power != 10 {
			t.Errorf("expected power clamped to 10, got %f", sample.Power)
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(&testPlant{}, &testController{}, flatSetpoint(0))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0, MaxPower: 100}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0, MaxPower: 100}},
		{"zero duration", Config{Dt: 0.1, Duration: 0, MaxPower: 100}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0, MaxPower: 100}},
		{"inverted power limits", Config{Dt: 0.1, Duration: 1.0, MinPower: 50, MaxPower: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

type nanPlant struct {
	calls int
}

func (p *nanPlant) Measurement() float64 {
	if p.calls > 2 {
		return math.NaN()
	}
	return 20
}

func (p *nanPlant) Advance(power, t, dt float64) { p.calls++ }
func (p *nanPlant) Snapshot() Telemetry          { return Telemetry{} }

func TestSimulatorStopsOnNonFiniteMeasurement(t *testing.T) {
	s := New(&nanPlant{}, &testController{out: 10}, flatSetpoint(100))

	cfg := Config{Dt: 0.1, Duration: 10.0, MaxPower: 100}
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Errors) == 0 {
		t.Fatal("expected a recorded error")
	}
	if len(result.Samples) > 4 {
		t.Errorf("run should stop at the bad measurement, got %d samples", len(result.Samples))
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (m *testMetric) Name() string { return "test" }
func (m *testMetric) Observe(measurement, setpoint, power, t float64) {
	m.count++
	m.sum += setpoint - measurement
}
func (m *testMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *testMetric) Reset() {
	m.count = 0
	m.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	s := New(&testPlant{temp: 20}, &testController{out: 0}, flatSetpoint(100))

	metric := &testMetric{}
	s.AddMetric(metric)

	cfg := Config{Dt: 0.1, Duration: 1.0, MaxPower: 100}
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}

	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}
}

func TestSimulatorRunWithCallback(t *testing.T) {
	s := New(&testPlant{temp: 20}, &testController{out: 50}, flatSetpoint(200))

	cfg := Config{Dt: 0.1, Duration: 1.0, MaxPower: 100}

	count := 0
	err := s.RunWithCallback(context.Background(), cfg, func(sample Sample) bool {
		count++
		return count < 5
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if count != 5 {
		t.Errorf("expected callback to stop the run at 5, got %d", count)
	}
}

func TestSimulatorContextCancel(t *testing.T) {
	s := New(&testPlant{temp: 20}, &testController{out: 50}, flatSetpoint(200))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{Dt: 0.001, Duration: 100.0, MaxPower: 100}
	_, err := s.Run(ctx, cfg)
	if err == nil {
		t.Error("expected context error")
	}
}

func TestSimError(t *testing.T) {
	err := SimError{Time: 1.5, Step: 150, Message: "test error"}
	expected := "step 150 (t=1.5000): test error"
	if err.Error() != expected {
		t.Errorf("SimError.Error() = %q, want %q", err.Error(), expected)
	}
}
