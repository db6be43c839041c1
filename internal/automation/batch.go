// Package automation runs scripted sequences of roasts: YAML-defined
// batches and single-parameter sweeps.
package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roastlab/roastsim/internal/config"
	"github.com/roastlab/roastsim/internal/control"
	"github.com/roastlab/roastsim/internal/metrics"
	"github.com/roastlab/roastsim/internal/roast"
	"github.com/roastlab/roastsim/internal/sim"
)

// Batch defines a scripted sequence of roasts.
type Batch struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Roasts      []BatchRoast `yaml:"roasts"`
}

// BatchRoast is a single roast in a batch. It starts from a preset (or
// the default configuration) and applies the overrides that are set.
type BatchRoast struct {
	Name       string              `yaml:"name"`
	Preset     string              `yaml:"preset"`
	Controller string              `yaml:"controller"`
	Duration   float64             `yaml:"duration"`
	Dt         float64             `yaml:"dt"`
	BatchGrams float64             `yaml:"batch_grams"`
	Gains      *config.GainsConfig `yaml:"gains"`
}

// BatchResult pairs a roast name with its outcome.
type BatchResult struct {
	Name    string
	Result  *sim.Result
	Summary roast.Summary
}

func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, err
	}

	return &batch, nil
}

func (r BatchRoast) buildConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if r.Preset != "" {
		cfg = config.GetPreset(r.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", r.Preset)
		}
	}

	if r.Controller != "" {
		cfg.Controller = r.Controller
	}
	if r.Duration > 0 {
		cfg.Duration = r.Duration
	}
	if r.Dt > 0 {
		cfg.Dt = r.Dt
	}
	if r.BatchGrams > 0 {
		cfg.Roaster.BatchGrams = r.BatchGrams
	}
	if r.Gains != nil {
		cfg.Gains = *r.Gains
	}

	return cfg, nil
}

// RunBatch executes every roast in a batch in order, stopping at the
// first failure.
func RunBatch(ctx context.Context, batch *Batch) ([]BatchResult, error) {
	results := make([]BatchResult, 0, len(batch.Roasts))

	for i, r := range batch.Roasts {
		cfg, err := r.buildConfig()
		if err != nil {
			return results, fmt.Errorf("roast %d (%s): %w", i+1, r.Name, err)
		}

		result, summary, err := runOne(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("roast %d (%s): %w", i+1, r.Name, err)
		}

		results = append(results, BatchResult{Name: r.Name, Result: result, Summary: summary})
	}

	return results, nil
}

// Sweep runs the same roast repeatedly while varying one roaster
// parameter across an even grid.
type Sweep struct {
	Param    string
	Min, Max float64
	NumSteps int
	Base     *config.Config
}

// SweepResult holds the outcome for one parameter value.
type SweepResult struct {
	Value          float64
	DropTemp       float64
	FirstCrackTime float64
	TrackingError  float64
}

// RunSweep executes the sweep. The parameter name must match a roaster
// field: batch_grams, moisture, burner_mj, air_temp, response or
// speed_factor.
func RunSweep(ctx context.Context, sweep *Sweep) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps")
	}
	if _, err := applyParam(sweep.Base.Roaster, sweep.Param, sweep.Min); err != nil {
		return nil, err
	}

	step := (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	results := make([]SweepResult, 0, sweep.NumSteps)

	for i := 0; i < sweep.NumSteps; i++ {
		val := sweep.Min + float64(i)*step

		cfg := *sweep.Base
		roaster, err := applyParam(cfg.Roaster, sweep.Param, val)
		if err != nil {
			return nil, err
		}
		cfg.Roaster = roaster

		result, summary, err := runOne(ctx, &cfg)
		if err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.Param, val, err)
		}

		results = append(results, SweepResult{
			Value:          val,
			DropTemp:       summary.DropTemp,
			FirstCrackTime: summary.Events.FirstCrackTime,
			TrackingError:  result.Metrics["tracking_error"],
		})
	}

	return results, nil
}

func applyParam(r config.RoasterConfig, name string, val float64) (config.RoasterConfig, error) {
	switch name {
	case "batch_grams":
		r.BatchGrams = val
	case "moisture":
		r.Moisture = val
	case "burner_mj":
		r.BurnerMJ = val
	case "air_temp":
		r.AirTemp = val
	case "response":
		r.Response = val
	case "speed_factor":
		r.SpeedFactor = val
	default:
		return r, fmt.Errorf("unknown sweep parameter: %s", name)
	}
	return r, nil
}

func runOne(ctx context.Context, cfg *config.Config) (*sim.Result, roast.Summary, error) {
	drum, err := roast.NewDrum(cfg.GetParams())
	if err != nil {
		return nil, roast.Summary{}, err
	}

	curve, err := cfg.GetCurve()
	if err != nil {
		return nil, roast.Summary{}, err
	}

	var ctrl sim.Controller
	switch cfg.Controller {
	case "", "pid":
		ctrl = control.NewPID(cfg.Gains.Kp, cfg.Gains.Ki, cfg.Gains.Kd)
	case "schedule":
		ctrl = control.NewSchedule(cfg.GetSchedule(), cfg.Roaster.InitialPower)
	case "fixed":
		ctrl = control.NewFixed(cfg.Roaster.InitialPower)
	default:
		return nil, roast.Summary{}, fmt.Errorf("unknown controller: %s", cfg.Controller)
	}

	s := sim.New(drum, ctrl, curve)
	s.AddMetric(metrics.NewTrackingError())
	s.AddMetric(metrics.NewOvershoot())

	result, err := s.Run(ctx, sim.Config{
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		MinPower: cfg.MinPower,
		MaxPower: cfg.MaxPower,
	})
	if err != nil {
		return nil, roast.Summary{}, err
	}

	return result, drum.Summary(), nil
}
