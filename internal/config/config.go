package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roastlab/roastsim/internal/profile"
	"github.com/roastlab/roastsim/internal/roast"
)

const (
	DefaultDt       = 0.024
	DefaultDuration = 12.0
	DefaultMaxPower = 100.0
	DefaultKp       = 2.0
	DefaultKi       = 0.05
	DefaultKd       = 8.0
)

type Config struct {
	Controller string        `yaml:"controller"`
	Dt         float64       `yaml:"dt"`
	Duration   float64       `yaml:"duration"`
	MinPower   float64       `yaml:"min_power"`
	MaxPower   float64       `yaml:"max_power"`
	Seed       int64         `yaml:"seed"`
	Gains      GainsConfig   `yaml:"gains"`
	Roaster    RoasterConfig `yaml:"roaster"`
	Profile    []CurvePoint  `yaml:"profile"`
	Schedule   []string      `yaml:"schedule"`
}

type GainsConfig struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

// CurvePoint is one target-curve breakpoint; times are seconds in config
// files, converted to minutes when the curve is built.
type CurvePoint struct {
	TimeSec float64 `yaml:"time_s"`
	Temp    float64 `yaml:"temp"`
}

type RoasterConfig struct {
	BatchGrams     float64 `yaml:"batch_grams"`
	Moisture       float64 `yaml:"moisture"`
	BurnerMJ       float64 `yaml:"burner_mj"`
	AirTemp        float64 `yaml:"air_temp"`
	ChargeTemp     float64 `yaml:"charge_temp"`
	PreheatTemp    float64 `yaml:"preheat_temp"`
	FirstCrackTemp float64 `yaml:"first_crack_temp"`
	DryingTemp     float64 `yaml:"drying_temp"`
	PostFCFactor   float64 `yaml:"post_fc_factor"`
	SpeedFactor    float64 `yaml:"speed_factor"`
	Response       float64 `yaml:"response"`
	InitialPower   float64 `yaml:"initial_power"`
	BeanDiameter   float64 `yaml:"bean_diameter"`
	BeanDensity    float64 `yaml:"bean_density"`
	BeanCp         float64 `yaml:"bean_cp"`
	DrumRPM        float64 `yaml:"drum_rpm"`
	DrumDiameter   float64 `yaml:"drum_diameter"`
	DrumLength     float64 `yaml:"drum_length"`
	DrumEmissivity float64 `yaml:"drum_emissivity"`
	BeanEmissivity float64 `yaml:"bean_emissivity"`
}

func DefaultConfig() *Config {
	params := roast.DefaultParams()
	return &Config{
		Controller: "pid",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		MinPower:   0,
		MaxPower:   DefaultMaxPower,
		Gains:      GainsConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd},
		Roaster:    roasterFromParams(params),
		Profile: []CurvePoint{
			{TimeSec: 0, Temp: 20},
			{TimeSec: 300, Temp: 149},
			{TimeSec: 600, Temp: 204},
			{TimeSec: 900, Temp: 210},
			{TimeSec: 1200, Temp: 227},
		},
		Schedule: []string{
			"140,4:50,80",
			"160,6:00,70",
			"170,6:45,60",
			"180,7:45,40",
			"190,9:30,20",
		},
	}
}

// Clone returns a deep copy of the config, including the profile and
// schedule slices.
func (c *Config) Clone() *Config {
	out := *c
	if c.Profile != nil {
		out.Profile = make([]CurvePoint, len(c.Profile))
		copy(out.Profile, c.Profile)
	}
	if c.Schedule != nil {
		out.Schedule = make([]string, len(c.Schedule))
		copy(out.Schedule, c.Schedule)
	}
	return &out
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GetParams maps the roaster section onto model parameters; the roast
// length comes from the run duration.
func (c *Config) GetParams() roast.Params {
	r := c.Roaster
	return roast.Params{
		BatchGrams:     r.BatchGrams,
		Moisture:       r.Moisture,
		BurnerMJ:       r.BurnerMJ,
		AirTemp:        r.AirTemp,
		ChargeTemp:     r.ChargeTemp,
		PreheatTemp:    r.PreheatTemp,
		FirstCrackTemp: r.FirstCrackTemp,
		DryingTemp:     r.DryingTemp,
		PostFCFactor:   r.PostFCFactor,
		DropTime:       c.Duration,
		SpeedFactor:    r.SpeedFactor,
		Response:       r.Response,
		InitialPower:   r.InitialPower,
		BeanDiameter:   r.BeanDiameter,
		BeanDensity:    r.BeanDensity,
		BeanCp:         r.BeanCp,
		DrumRPM:        r.DrumRPM,
		DrumDiameter:   r.DrumDiameter,
		DrumLength:     r.DrumLength,
		DrumEmissivity: r.DrumEmissivity,
		BeanEmissivity: r.BeanEmissivity,
	}
}

// GetCurve builds the target curve, converting breakpoint times from
// seconds to minutes.
func (c *Config) GetCurve() (*profile.Curve, error) {
	if len(c.Profile) == 0 {
		return profile.DefaultCurve(), nil
	}
	points := make([]profile.Point, len(c.Profile))
	for i, p := range c.Profile {
		points[i] = profile.Point{Time: p.TimeSec / 60, Temp: p.Temp}
	}
	return profile.NewCurve(points)
}

// GetSchedule parses the manual power schedule.
func (c *Config) GetSchedule() []profile.Step {
	return profile.ParseSteps(c.Schedule)
}

func roasterFromParams(p roast.Params) RoasterConfig {
	return RoasterConfig{
		BatchGrams:     p.BatchGrams,
		Moisture:       p.Moisture,
		BurnerMJ:       p.BurnerMJ,
		AirTemp:        p.AirTemp,
		ChargeTemp:     p.ChargeTemp,
		PreheatTemp:    p.PreheatTemp,
		FirstCrackTemp: p.FirstCrackTemp,
		DryingTemp:     p.DryingTemp,
		PostFCFactor:   p.PostFCFactor,
		SpeedFactor:    p.SpeedFactor,
		Response:       p.Response,
		InitialPower:   p.InitialPower,
		BeanDiameter:   p.BeanDiameter,
		BeanDensity:    p.BeanDensity,
		BeanCp:         p.BeanCp,
		DrumRPM:        p.DrumRPM,
		DrumDiameter:   p.DrumDiameter,
		DrumLength:     p.DrumLength,
		DrumEmissivity: p.DrumEmissivity,
		BeanEmissivity: p.BeanEmissivity,
	}
}
